package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/thechosenone98/MP3Journaling/logger"
)

var DB *sql.DB

// ConnectDB opens the session catalog database, creating the file on first
// use. WAL keeps concurrent writers from the worker pool from tripping
// over each other; busy_timeout covers the rest.
func ConnectDB(path string) error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	var err error
	DB, err = sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping catalog database: %w", err)
	}

	logger.Info("Connected to session catalog", logger.String("path", path))
	return nil
}

// CloseDB closes the catalog connection if one is open.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}

// InitDB initializes the catalog schema, creating tables if they don't
// exist.
func InitDB() error {
	if err := createSessionsTable(); err != nil {
		return err
	}
	if err := createIntervalsTable(); err != nil {
		return err
	}
	if err := createExportsTable(); err != nil {
		return err
	}

	logger.Debug("Catalog schema initialized")
	return nil
}

func createSessionsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		source_prefix TEXT NOT NULL,
		segment_count INTEGER NOT NULL,
		marker_count INTEGER NOT NULL,
		duration REAL NOT NULL,
		created_at REAL NOT NULL,
		processed_at REAL NOT NULL
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

func createIntervalsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS intervals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		pattern TEXT NOT NULL,
		start_sec REAL NOT NULL,
		end_sec REAL NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create intervals table: %w", err)
	}
	return nil
}

func createExportsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		pattern TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		path TEXT NOT NULL,
		start_sec REAL NOT NULL,
		end_sec REAL NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create exports table: %w", err)
	}
	return nil
}
