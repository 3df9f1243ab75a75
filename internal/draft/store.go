// Package draft checkpoints the authoring-time scenario between sessions
// and applies author edits to it.
package draft

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"statecraft/internal/deck"
)

// Store provides SQLite-backed persistence for the scenario draft. Saves
// are at-least-once and best-effort: a missed save never corrupts the
// in-memory draft.
type Store struct {
	sqlDB *sql.DB
}

const draftKey = "draft"

// Open opens and migrates a draft SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS drafts (
			draft_key  TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	return err
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the draft scenario.
func (s *Store) Save(ctx context.Context, sc *deck.Scenario) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	payload, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO drafts (draft_key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(draft_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		draftKey, payload, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load returns the checkpointed draft, reporting absence without error.
func (s *Store) Load(ctx context.Context) (*deck.Scenario, bool, error) {
	if s == nil || s.sqlDB == nil {
		return nil, false, fmt.Errorf("storage is not configured")
	}
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload FROM drafts WHERE draft_key = ?`, draftKey,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load draft: %w", err)
	}
	var sc deck.Scenario
	if err := yaml.Unmarshal(payload, &sc); err != nil {
		return nil, false, fmt.Errorf("parse draft: %w", err)
	}
	sc.Normalize()
	return &sc, true, nil
}
