package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite implements Recorder using a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the audit database at dbPath, creating it if needed.
func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	rec := &SQLite{db: db}
	if err := rec.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return rec, nil
}

func (s *SQLite) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS llm_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_llm_events_created ON llm_events(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Append records a single LLM request event.
func (s *SQLite) Append(ctx context.Context, e Entry) error {
	query := `
	INSERT INTO llm_events (provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var errorMessage interface{}
	if e.ErrorMessage != "" {
		errorMessage = e.ErrorMessage
	}

	_, err := s.db.ExecContext(ctx, query,
		e.Provider, e.Model, e.Purpose,
		e.InputTokens, e.OutputTokens, e.LatencyMs,
		e.Success, errorMessage, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert llm event: %w", err)
	}
	return nil
}

// Count returns the number of stored events.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM llm_events`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count llm events: %w", err)
	}
	return n, nil
}

// Prune deletes events older than maxAge.
func (s *SQLite) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	threshold := time.Now().Add(-maxAge).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM llm_events WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("prune llm events: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// isBusy reports whether err is a SQLite concurrency error (SQLITE_BUSY
// or "database is locked"). These clear once the competing writer
// finishes, so callers can retry instead of failing.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
