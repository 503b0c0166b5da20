package database

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Backup produces timestamped copies of the reservations database file.
// The janitor worker drives scheduling and retention.
type Backup struct {
	dbPath      string
	storagePath string
	logger      *zerolog.Logger
}

func NewBackup(dbPath, storagePath string, logger *zerolog.Logger) *Backup {
	return &Backup{dbPath: dbPath, storagePath: storagePath, logger: logger}
}

// Run writes one backup file. Uses VACUUM INTO for a consistent online
// snapshot, falling back to a raw file copy when that fails.
func (b *Backup) Run(db *DB) error {
	if err := os.MkdirAll(b.storagePath, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("backup_%s.db", time.Now().Format("20060102_150405"))
	backupPath := filepath.Join(b.storagePath, name)

	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		b.logger.Warn().Err(err).Msg("VACUUM INTO failed, falling back to file copy")
		return b.copyFile(backupPath)
	}

	b.logger.Info().Str("path", backupPath).Msg("backup completed")
	return nil
}

func (b *Backup) copyFile(backupPath string) error {
	source, err := os.Open(b.dbPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	// Not atomic for SQLite; acceptable only as a fallback.
	if _, err := io.Copy(destination, source); err != nil {
		return err
	}
	return nil
}

// Prune deletes backups older than the retention window.
func (b *Backup) Prune(retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(b.storagePath)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			b.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			os.Remove(filepath.Join(b.storagePath, file.Name()))
		}
	}
}
