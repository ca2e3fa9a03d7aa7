// Package redis stores documents as plain string keys in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"innkeeper/internal/document"
)

var _ document.Backend = (*Store)(nil)

const defaultKeyPrefix = "innkeeper:doc:"

// Store is a Redis-backed document backend. SET replaces a value atomically,
// which gives whole-document replacement for free.
type Store struct {
	client *redis.Client
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix overrides the key namespace documents are stored under.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore wraps an existing client.
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open parses url, connects and pings the server.
func Open(ctx context.Context, url string, opts ...Option) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url required")
	}
	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(parsed)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewStore(client, opts...), nil
}

// Driver returns the backend driver identifier.
func (s *Store) Driver() document.Driver { return document.DriverRedis }

func (s *Store) key(name string) string { return s.prefix + name }

// Read returns the stored value or document.ErrNotExist.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, document.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return data, nil
}

// Write replaces the value without expiry.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// Delete removes the key if present.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("del %s: %w", name, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error { return s.client.Close() }
