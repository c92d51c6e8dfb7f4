// Package redis stores live session IDs in Redis.
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/storefront/internal/session"
)

const sessionKeyPrefix = "session:"

// SessionStore implements session.Store with one expiring key per session.
type SessionStore struct {
	client redis.Cmdable
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore backed by client.
func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Put(ctx context.Context, id string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+id, userID, ttl).Err(); err != nil {
		return errors.Wrap(err, "set session")
	}
	return nil
}

func (s *SessionStore) Lookup(ctx context.Context, id string) (int64, error) {
	userID, err := s.client.Get(ctx, sessionKeyPrefix+id).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, session.ErrNotFound
		}
		return 0, errors.Wrap(err, "get session")
	}
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

// NewClient parses a redis:// URL and returns a connected client.
func NewClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}
