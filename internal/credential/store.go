// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultStorePath returns the credential database location under the
// user config directory.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "scholar-digest", "credentials.db")
}

// Store persists credentials in a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens or creates the credential database at path and creates
// the schema if it does not exist.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating credential directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS credentials (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Set stores value under name, replacing any previous value.
func (s *Store) Set(ctx context.Context, name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidCredential)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing credential %s: %w", name, err)
	}
	return nil
}

// Clear removes name. Clearing an absent credential is not an error.
func (s *Store) Clear(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE name = ?`, name); err != nil {
		return fmt.Errorf("clearing credential %s: %w", name, err)
	}
	return nil
}

// Lookup returns the stored value for name.
func (s *Store) Lookup(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading credential %s: %w", name, err)
	}
	return value, true, nil
}

// UpdatedAt returns when name was last set.
func (s *Store) UpdatedAt(ctx context.Context, name string) (time.Time, bool, error) {
	var ts string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM credentials WHERE name = ?`, name).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading credential %s: %w", name, err)
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing timestamp for %s: %w", name, err)
	}
	return t, true, nil
}
