// Package redis provides a task store backed by Redis. IDs come from an
// INCR counter and each task is written as a hash inside a MULTI/EXEC
// transaction.
//
// Key layout:
//
//	{prefix}:seq           counter for task IDs
//	{prefix}:task:{id}     hash with title, description, created_at
//	{prefix}:tasks         set of stored IDs
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tdd/todo-app/internal/domain"
	"github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/ports"
)

var (
	_ ports.TaskStore     = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Store is a [ports.TaskStore] backed by Redis.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

// Open parses url, connects and pings the server.
func Open(ctx context.Context, url, prefix string) (*Store, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return New(client, prefix), nil
}

// New wraps an existing client. Keys are namespaced under prefix.
func New(client goredis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Save allocates an ID and writes t under it. A failed write leaves a gap in
// the ID sequence; IDs are never reused.
func (s *Store) Save(ctx context.Context, t *task.Task) (*task.Task, error) {
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, classify("allocating task id", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, s.taskKey(id), map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"created_at":  time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.SAdd(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return nil, classify("saving task", err)
	}

	return &task.Task{ID: id, Title: t.Title, Description: t.Description}, nil
}

// Name identifies the store in health reports.
func (s *Store) Name() string {
	return "redis"
}

// HealthCheck pings the server.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) seqKey() string {
	return s.prefix + ":seq"
}

func (s *Store) indexKey() string {
	return s.prefix + ":tasks"
}

func (s *Store) taskKey(id int64) string {
	return s.prefix + ":task:" + strconv.FormatInt(id, 10)
}

// classify maps client errors onto domain sentinels where the cause is known.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var netErr net.Error
	if errors.Is(err, goredis.ErrClosed) || errors.Is(err, goredis.ErrPoolTimeout) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
