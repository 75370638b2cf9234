// Package redis stores each key as a Redis string.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aretw0/jotter/pkg/core"
)

// PingTimeout bounds the connection check made by Open.
const PingTimeout = 5 * time.Second

// Option configures a Medium.
type Option func(*Medium)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Medium) {
		m.logger = logger
	}
}

// WithPrefix prepends prefix to every key, for sharing a database.
func WithPrefix(prefix string) Option {
	return func(m *Medium) {
		m.prefix = prefix
	}
}

// Medium is a Redis-backed core.Medium.
type Medium struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// ParseAddr accepts either a redis:// URL or a bare host:port.
func ParseAddr(addr string) (*redis.Options, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis medium: empty address")
	}
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return opts, nil
}

// Open connects to addr and checks the connection.
func Open(ctx context.Context, addr string, opts ...Option) (*Medium, error) {
	redisOpts, err := ParseAddr(addr)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return New(client, opts...), nil
}

// New wraps an existing client. The medium takes ownership and closes it.
func New(client *redis.Client, opts ...Option) *Medium {
	m := &Medium{client: client}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Medium) key(k string) string {
	return m.prefix + k
}

// Get implements core.Medium.
func (m *Medium) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := m.client.Get(ctx, m.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set implements core.Medium. Values never expire.
func (m *Medium) Set(ctx context.Context, key string, value []byte) error {
	if err := m.client.Set(ctx, m.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove implements core.Medium.
func (m *Medium) Remove(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (m *Medium) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Close implements core.Closer.
func (m *Medium) Close() error {
	return m.client.Close()
}

var (
	_ core.Medium = (*Medium)(nil)
	_ core.Closer = (*Medium)(nil)
)
