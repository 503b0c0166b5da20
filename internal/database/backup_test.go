package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupRunAndPrune(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	storagePath := filepath.Join(dir, "backups")

	logger := zerolog.New(io.Discard)
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.CreateReservation(context.Background(), testReservation("18:00")))

	backup := NewBackup(dbPath, storagePath, &logger)
	require.NoError(t, backup.Run(db))

	files, err := os.ReadDir(storagePath)
	require.NoError(t, err)
	require.Len(t, files, 1)

	// Age the backup past the retention window and prune it.
	old := filepath.Join(storagePath, files[0].Name())
	past := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, past, past))

	backup.Prune(14)

	files, err = os.ReadDir(storagePath)
	require.NoError(t, err)
	assert.Empty(t, files)
}
