package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps the single SQLite file that owns all persistent state:
// active reservations, pending OTP requests and archived reservations.
type DB struct {
	*sql.DB
	logger *zerolog.Logger

	// slotMu serializes dine-in check-and-insert so two concurrent
	// requests cannot both grab the last table (see CreateDineInWithSlotLock).
	slotMu sync.Mutex
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; keep the pool at one
	// so every caller sees the same data.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT NOT NULL,
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            people INTEGER NOT NULL,
            occasion TEXT,
            meal_type TEXT,
            payment_mode TEXT NOT NULL DEFAULT 'Cash',
            payment_status TEXT NOT NULL DEFAULT 'pending',
            message TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            delivery_option TEXT DEFAULT 'Dine-in',
            menu_items TEXT,
            delivery_address TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS otps (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            reservation_data TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT NOT NULL,
            otp_hash TEXT NOT NULL,
            expires_at DATETIME NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS archived_reservations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            original_id INTEGER NOT NULL,
            name TEXT, email TEXT, phone TEXT, date TEXT, time TEXT, people INTEGER,
            occasion TEXT, meal_type TEXT, payment_mode TEXT, payment_status TEXT,
            message TEXT, status TEXT, delivery_option TEXT, menu_items TEXT,
            delivery_address TEXT, created_at DATETIME,
            archived_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            archived_reason TEXT
        )`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations(date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_created_at ON reservations(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_otps_expires_at ON otps(expires_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
