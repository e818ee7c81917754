// Package redisstore keeps sessions in Redis so several server processes can
// share logins.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hongminglow/campus-market/internal/session"
)

var _ session.Store = (*Store)(nil)

const keyPrefix = "market:session:"

// Store is a session.Store backed by Redis keys with native expiry.
type Store struct {
	client *redis.Client
}

// New wraps an existing client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Open parses a redis:// URL, connects and pings.
func Open(ctx context.Context, url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client), nil
}

func (s *Store) Save(ctx context.Context, id string, userID int64, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+id, userID, ttl).Err()
}

func (s *Store) Load(ctx context.Context, id string) (int64, error) {
	userID, err := s.client.Get(ctx, keyPrefix+id).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, session.ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	return userID, nil
}

// Delete removes the key; DEL is atomic so no later Load can see it.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}
