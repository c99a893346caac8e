package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pipdock/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS activations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp DATETIME NOT NULL,
    outcome TEXT NOT NULL,
    source_title TEXT NOT NULL,
    pip_window TEXT NOT NULL,
    monitor TEXT NOT NULL,
    target_x INTEGER NOT NULL,
    target_y INTEGER NOT NULL,
    target_width INTEGER NOT NULL,
    target_height INTEGER NOT NULL,
    error TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS activations_timestamp ON activations (timestamp);
`

// DefaultPath returns the history database location under the user config dir.
func DefaultPath() (string, error) {
	// Get user config directory
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "pipdock", "history.db"), nil
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Create schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) AddActivation(a models.Activation) (int64, error) {
	query := `
		INSERT INTO activations (
			timestamp, outcome, source_title, pip_window, monitor,
			target_x, target_y, target_width, target_height, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := d.db.Exec(query,
		a.Timestamp.UTC(), a.Outcome, a.SourceTitle, a.PiPWindow, a.Monitor,
		a.Target.X, a.Target.Y, a.Target.Width, a.Target.Height, a.Error)
	if err != nil {
		return 0, fmt.Errorf("failed to insert activation: %w", err)
	}

	return res.LastInsertId()
}

// Recent returns up to limit activations, newest first.
func (d *DB) Recent(limit int) ([]models.Activation, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT id, timestamp, outcome, source_title, pip_window, monitor,
               target_x, target_y, target_width, target_height, error
        FROM activations
        ORDER BY timestamp DESC, id DESC
        LIMIT ?
    `

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activations: %w", err)
	}
	defer rows.Close()

	var out []models.Activation
	for rows.Next() {
		var a models.Activation
		var timestamp time.Time
		err := rows.Scan(
			&a.ID, &timestamp, &a.Outcome, &a.SourceTitle, &a.PiPWindow, &a.Monitor,
			&a.Target.X, &a.Target.Y, &a.Target.Width, &a.Target.Height, &a.Error)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activation: %w", err)
		}
		a.Timestamp = timestamp.Local()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activations: %w", err)
	}

	return out, nil
}

// Cleanup deletes activations older than olderThan and reports how many went.
func (d *DB) Cleanup(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()
	res, err := d.db.Exec("DELETE FROM activations WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old activations: %w", err)
	}
	return res.RowsAffected()
}
