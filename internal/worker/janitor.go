package worker

import (
	"context"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/database"

	"github.com/rs/zerolog"
)

const defaultPurgeInterval = 5 * time.Minute

// Janitor runs the periodic maintenance loop: purging expired OTP rows
// and, when enabled, producing and pruning database backups.
type Janitor struct {
	db            *database.DB
	backup        *database.Backup
	backupCfg     config.BackupConfig
	purgeInterval time.Duration
	retry         RetryPolicy
	logger        *zerolog.Logger
}

func NewJanitor(db *database.DB, backup *database.Backup, backupCfg config.BackupConfig, logger *zerolog.Logger) *Janitor {
	return &Janitor{
		db:            db,
		backup:        backup,
		backupCfg:     backupCfg,
		purgeInterval: defaultPurgeInterval,
		retry:         DefaultBackupRetry(),
		logger:        logger,
	}
}

// Run blocks until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	purgeTicker := time.NewTicker(j.purgeInterval)
	defer purgeTicker.Stop()

	backupTicker := time.NewTicker(j.backupInterval())
	defer backupTicker.Stop()
	if !j.backupCfg.Enabled || j.backup == nil {
		backupTicker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-purgeTicker.C:
			j.purgeOTPs(ctx)
		case <-backupTicker.C:
			if j.backupCfg.Enabled && j.backup != nil {
				j.runBackup(ctx)
			}
		}
	}
}

func (j *Janitor) purgeOTPs(ctx context.Context) {
	purged, err := j.db.PurgeExpiredOTPs(ctx, time.Now())
	if err != nil {
		j.logger.Error().Err(err).Msg("otp purge failed")
		return
	}
	if purged > 0 {
		j.logger.Info().Int64("purged", purged).Msg("expired otps purged")
	}
}

func (j *Janitor) runBackup(ctx context.Context) {
	for attempt := 1; attempt <= j.retry.MaxRetries; attempt++ {
		err := j.backup.Run(j.db)
		if err == nil {
			j.backup.Prune(j.backupCfg.RetentionDays)
			return
		}

		j.logger.Error().Err(err).Int("attempt", attempt).Msg("backup failed")
		if attempt == j.retry.MaxRetries {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(j.retry.NextDelay(attempt)):
		}
	}
}

// backupInterval reads the schedule as a Go duration, defaulting to
// daily when unset or unparseable.
func (j *Janitor) backupInterval() time.Duration {
	if d, err := time.ParseDuration(j.backupCfg.Schedule); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}
