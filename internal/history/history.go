// Package history keeps an append-only log of update checks and install
// attempts in a local sqlite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultDBPath = "~/.nexhax/history.db"

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Kind is the type of a recorded event.
type Kind string

const (
	KindCheck   Kind = "check"
	KindInstall Kind = "install"
)

// Entry is one recorded event.
type Entry struct {
	ID             int64
	Kind           Kind
	CurrentVersion string
	LatestVersion  string
	Status         string
	PackageURL     string
	Error          string
	CreatedAt      time.Time
}

// Store is a sqlite-backed event log.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path ("" for the default) and
// migrates its schema.
func Open(path string) (*Store, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db, path: resolved}, nil
}

// ResolvePath expands a leading ~ and applies the default path.
func ResolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		p = defaultDBPath
	}
	if strings.HasPrefix(p, "~/") || p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		if p == "~" {
			p = home
		} else {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Clean(p), nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Record appends e and returns its id. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.Kind == "" {
		return 0, errors.New("entry kind is required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (kind, current_version, latest_version, status, package_url, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, string(e.Kind), e.CurrentVersion, e.LatestVersion, e.Status, e.PackageURL, e.Error,
		e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, kind, current_version, latest_version, status, package_url, error, created_at
		FROM events
		ORDER BY created_at DESC, event_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind, created string
		if err := rows.Scan(&e.ID, &kind, &e.CurrentVersion, &e.LatestVersion, &e.Status, &e.PackageURL, &e.Error, &created); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		if t, err := time.Parse(timeLayout, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
