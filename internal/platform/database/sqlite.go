package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"logship/internal/platform/config"
)

// New opens the sink's SQLite database and applies the schema.
func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the received_records table if it does not exist.
func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS received_records (
		id TEXT PRIMARY KEY,
		log_type TEXT NOT NULL,
		body TEXT NOT NULL,
		timestamp_field TEXT,
		x_ms_date TEXT NOT NULL,
		received_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_received_records_log_type ON received_records(log_type);
	`
	_, err := db.Exec(query)
	return err
}
