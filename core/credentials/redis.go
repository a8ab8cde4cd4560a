package credentials

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key under which the session record is stored.
const DefaultRedisKey = "sessionguard:session"

// RedisStore implements Store on Redis, for deployments where several
// processes share one logical session (worker fleets behind a single
// service account). The whole record is stored as one JSON value, so the
// atomicity contract holds without transactions.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisKey overrides the storage key. Use distinct keys when several
// logical sessions share one Redis database.
func WithRedisKey(key string) RedisStoreOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewRedisStore creates a Redis-backed store using the provided client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		key:    DefaultRedisKey,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the current session snapshot.
func (s *RedisStore) Get(ctx context.Context) (Session, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNoSession
		}
		return Session{}, errors.Join(ErrStoreFailed, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, errors.Join(ErrStoreFailed, err)
	}
	return sess, nil
}

// Set replaces the stored session wholesale.
func (s *RedisStore) Set(ctx context.Context, sess Session) error {
	if sess.IsZero() {
		return ErrEmptySession
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrStoreFailed, err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

// Clear removes the stored session. Deleting a missing key is a no-op.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}
