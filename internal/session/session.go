// Package session keeps server-side login sessions keyed by an opaque token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// Session binds an opaque token to a snapshot of the logged-in user.
type Session struct {
	ID        string            `json:"id"`
	User      models.PublicUser `json:"user"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Store persists sessions. Implementations must be safe for concurrent use.
type Store interface {
	Create(ctx context.Context, user models.PublicUser) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Destroy(ctx context.Context, id string) error
}

// RedisStore implements Store with one key per session and a Redis TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (s *RedisStore) Create(ctx context.Context, user models.PublicUser) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+sess.ID, data, s.ttl).Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if sess.ExpiresAt.Before(time.Now()) {
		s.client.Del(ctx, s.prefix+id)
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Destroy removes the session. Destroying an unknown id is not an error.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}
