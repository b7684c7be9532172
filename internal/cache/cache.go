// Package cache wraps Redis for two kinds of callers: read-through caches
// that treat Redis as optional, and writers that must know the write landed.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by strict operations when Redis is not
// configured or did not accept the command.
var ErrUnavailable = errors.New("cache unavailable")

// Client is a Redis client. Get, Set and Delete are best effort and never
// fail; SetStrict reports every failure.
type Client struct {
	rdb *redis.Client
}

// New creates a client for the Redis server at addr.
func New(addr, password string, db int) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *Client) enabled() bool {
	return c != nil && c.rdb != nil
}

// Ping reports whether Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled() {
		return ErrUnavailable
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the stored value, or nil on a miss or when Redis is down.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.enabled() {
		return nil, nil
	}
	res, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		slog.Debug("cache read skipped", "key", key, "error", err)
		return nil, nil
	}
	return res, nil
}

// Set stores value with ttl on a best-effort basis. A zero ttl keeps the key.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.SetStrict(ctx, key, value, ttl); err != nil {
		slog.Debug("cache write skipped", "key", key, "error", err)
	}
	return nil
}

// SetStrict stores value with ttl and fails with ErrUnavailable when the
// write was not acknowledged.
func (c *Client) SetStrict(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.enabled() {
		return ErrUnavailable
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Delete removes keys on a best-effort basis.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Debug("cache delete skipped", "keys", keys, "error", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Close()
}
