// Package history persists curation outcomes so runs can be audited later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't handle concurrent writes well

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at  TEXT NOT NULL,
		engine      TEXT NOT NULL,
		model       TEXT NOT NULL,
		template    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS items (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id        INTEGER NOT NULL REFERENCES runs(id),
		post_id       TEXT NOT NULL,
		status        TEXT NOT NULL,
		category      TEXT,
		reason        TEXT,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		total_tokens  INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_id);
	CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun records the start of a curation batch and returns its id.
func (s *Store) StartRun(ctx context.Context, engine, model, template string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (started_at, engine, model, template) VALUES (?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), engine, model, template,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// Item is one recorded curation outcome.
type Item struct {
	PostID   string
	Status   string
	Category string
	Reason   string
	Input    int
	Output   int
	Total    int
}

// RecordItem appends one item to a run.
func (s *Store) RecordItem(ctx context.Context, runID int64, item Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (run_id, post_id, status, category, reason,
			input_tokens, output_tokens, total_tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, item.PostID, item.Status, item.Category, item.Reason,
		item.Input, item.Output, item.Total,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}
