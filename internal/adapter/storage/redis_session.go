package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/anle/storefront/internal/core/domain"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions server-side under an opaque token; the
// cookie only ever carries the token.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, session domain.Session) (string, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return "", errors.Wrap(err, "marshal session")
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "store session")
	}
	return token, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errors.Wrap(err, "unmarshal session")
	}
	session.Token = token
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return errors.Wrap(s.client.Del(ctx, sessionKeyPrefix+token).Err(), "delete session")
}
