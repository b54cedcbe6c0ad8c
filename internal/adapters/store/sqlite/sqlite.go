// Package sqlite provides a task store backed by SQLite through the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tdd/todo-app/internal/domain"
	"github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const insertTask = `INSERT INTO tasks (title, description, created_at) VALUES (?, ?, ?) RETURNING id`

// pragmas applied to every connection:
// WAL journaling, enforced foreign keys, a 5s busy wait and NORMAL sync.
const pragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

var (
	_ ports.TaskStore     = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Store is a [ports.TaskStore] backed by a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file at path and verifies the
// connection. SQLite allows a single writer, so the pool is capped at one
// connection.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&" + pragmas
	} else {
		dsn += "?" + pragmas
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	return New(db), nil
}

// New wraps an already opened database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded *.up.sql files in lexical order. Every
// migration is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		stmt, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
	}

	return nil
}

// Save inserts t and returns a copy carrying the row ID.
func (s *Store) Save(ctx context.Context, t *task.Task) (*task.Task, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, insertTask,
		t.Title, t.Description, time.Now().UTC().Format(time.RFC3339Nano),
	).Scan(&id)
	if err != nil {
		return nil, classify(err)
	}

	return &task.Task{ID: id, Title: t.Title, Description: t.Description}, nil
}

// Name identifies the store in health reports.
func (s *Store) Name() string {
	return "sqlite"
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// classify maps driver errors onto domain sentinels where the cause is known.
func classify(err error) error {
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("saving task: %w: %w", domain.ErrUnavailable, err)
	}

	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return fmt.Errorf("saving task: %w", err)
	}

	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return fmt.Errorf("saving task: %w: %w", domain.ErrConflict, err)
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL:
		return fmt.Errorf("saving task: %w: %w", domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("saving task: %w", err)
	}
}
