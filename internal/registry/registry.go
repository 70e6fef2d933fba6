// Package registry persists the projects known to mdhtml and which one is
// currently selected. It is backed by SQLite (modernc.org/sqlite, no cgo).
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no project matches an id or path.
var ErrNotFound = errors.New("project not found")

// Project is a registered project directory.
type Project struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Label      string    `json:"label"`
	AddedAt    time.Time `json:"added_at"`
	LastOpened time.Time `json:"last_opened,omitzero"`
}

// Store is the project registry.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// DefaultPath returns $XDG_DATA_HOME/mdhtml/registry.db, falling back to
// ~/.local/share.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "mdhtml", "registry.db")
}

// Open opens (creating if needed) the registry database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("registry: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("registry: open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("registry: enable WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL DEFAULT '',
		added_at INTEGER NOT NULL,
		last_opened INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS selection (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		project_id TEXT NOT NULL
	);`,
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("registry: create schema_version table: %w", err)
	}
	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("registry: get schema version: %w", err)
	}
	for i, stmt := range migrations {
		version := i + 1
		if version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("registry: begin migration %d: %w", version, err)
		}
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("registry: apply migration %d: %w", version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("registry: record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("registry: commit migration %d: %w", version, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Add registers dir, or updates the label of an existing entry with the same
// path. An empty label defaults to the directory name.
func (s *Store) Add(ctx context.Context, dir, label string) (Project, error) {
	clean, err := cleanPath(dir)
	if err != nil {
		return Project{}, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = filepath.Base(clean)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO projects (id, path, label, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET label = excluded.label`,
		uuid.NewString(), clean, label, s.now().UnixMilli())
	if err != nil {
		return Project{}, fmt.Errorf("registry: add %s: %w", clean, err)
	}
	return s.Get(ctx, clean)
}

// List returns all projects, most recently opened first, then by path.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path, label, added_at, last_opened
		FROM projects ORDER BY last_opened DESC, path ASC`)
	if err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	defer rows.Close()
	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("registry: list: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	return projects, nil
}

// Get looks a project up by id or path.
func (s *Store) Get(ctx context.Context, ref string) (Project, error) {
	byPath, _ := cleanPath(ref)
	row := s.db.QueryRowContext(ctx, `SELECT id, path, label, added_at, last_opened
		FROM projects WHERE id = ? OR path = ?`, strings.TrimSpace(ref), byPath)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("registry: %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return Project{}, fmt.Errorf("registry: get %s: %w", ref, err)
	}
	return p, nil
}

// Remove deletes a project by id or path, clearing the selection if it
// pointed at that project.
func (s *Store) Remove(ctx context.Context, ref string) error {
	p, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("registry: remove: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, p.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("registry: remove: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM selection WHERE project_id = ?`, p.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("registry: remove: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("registry: remove: %w", err)
	}
	return nil
}

// Select marks a project as the current one and stamps its last-opened time.
func (s *Store) Select(ctx context.Context, ref string) (Project, error) {
	p, err := s.Get(ctx, ref)
	if err != nil {
		return Project{}, err
	}
	opened := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Project{}, fmt.Errorf("registry: select: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE projects SET last_opened = ? WHERE id = ?`, opened.UnixMilli(), p.ID); err != nil {
		_ = tx.Rollback()
		return Project{}, fmt.Errorf("registry: select: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO selection (slot, project_id) VALUES (1, ?)
		ON CONFLICT(slot) DO UPDATE SET project_id = excluded.project_id`, p.ID); err != nil {
		_ = tx.Rollback()
		return Project{}, fmt.Errorf("registry: select: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Project{}, fmt.Errorf("registry: select: %w", err)
	}
	p.LastOpened = time.UnixMilli(opened.UnixMilli())
	return p, nil
}

// Selected returns the current project, reporting false when none is selected.
func (s *Store) Selected(ctx context.Context) (Project, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT p.id, p.path, p.label, p.added_at, p.last_opened
		FROM selection s JOIN projects p ON p.id = s.project_id WHERE s.slot = 1`)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, false, nil
	}
	if err != nil {
		return Project{}, false, fmt.Errorf("registry: selected: %w", err)
	}
	return p, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (Project, error) {
	var (
		p                 Project
		added, lastOpened int64
	)
	if err := row.Scan(&p.ID, &p.Path, &p.Label, &added, &lastOpened); err != nil {
		return Project{}, err
	}
	p.AddedAt = time.UnixMilli(added)
	if lastOpened > 0 {
		p.LastOpened = time.UnixMilli(lastOpened)
	}
	return p, nil
}

func cleanPath(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("registry: empty project path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("registry: resolve %s: %w", dir, err)
	}
	return abs, nil
}
