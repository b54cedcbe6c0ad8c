// Package postgres provides a task store backed by PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdd/todo-app/internal/domain"
	"github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const insertTask = `INSERT INTO tasks (title, description) VALUES ($1, $2) RETURNING id`

// PostgreSQL SQLSTATE codes and classes used for error classification.
const (
	codeUniqueViolation        = "23505"
	codeAdminShutdown          = "57P01"
	codeCannotConnectNow       = "57P03"
	classConnectionFailure     = "08"
	classInsufficientResources = "53"
)

var (
	_ ports.TaskStore     = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Store is a [ports.TaskStore] backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open parses url, creates a pool and verifies connectivity. maxConns caps
// the pool size when positive.
func Open(ctx context.Context, url string, maxConns int) (*Store, error) {
	if url == "" {
		return nil, errors.New("postgres: database URL is required")
	}

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(min(maxConns, 1<<15)) //nolint:gosec // bounded above
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
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
		if _, err := s.pool.Exec(ctx, string(stmt)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
	}

	return nil
}

// Save inserts t and returns a copy carrying the generated ID.
func (s *Store) Save(ctx context.Context, t *task.Task) (*task.Task, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, insertTask, t.Title, t.Description).Scan(&id); err != nil {
		return nil, classify(err)
	}

	return &task.Task{ID: id, Title: t.Title, Description: t.Description}, nil
}

// Name identifies the store in health reports.
func (s *Store) Name() string {
	return "postgres"
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes every connection in the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// classify maps pgx errors onto domain sentinels where the cause is known.
// Context cancellation is passed through unclassified.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("saving task: %w", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return fmt.Errorf("saving task: %w: %w", domain.ErrConflict, err)
		case pgErr.Code == codeAdminShutdown,
			pgErr.Code == codeCannotConnectNow,
			strings.HasPrefix(pgErr.Code, classConnectionFailure),
			strings.HasPrefix(pgErr.Code, classInsufficientResources):
			return fmt.Errorf("saving task: %w: %w", domain.ErrUnavailable, err)
		default:
			return fmt.Errorf("saving task: %w", err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.Timeout(err) {
		return fmt.Errorf("saving task: %w: %w", domain.ErrUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("saving task: %w: %w", domain.ErrUnavailable, err)
	}

	return fmt.Errorf("saving task: %w", err)
}
