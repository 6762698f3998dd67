package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CSRFStore issues and checks per-session anti-forgery tokens. A token is
// minted at login with the session's lifetime and must accompany every
// mutating request.
type CSRFStore interface {
	Issue(ctx context.Context, username string, sessionTTL time.Duration) (string, error)
	Check(ctx context.Context, username, token string) (bool, error)
}

type redisCSRFStore struct {
	client *redis.Client
}

// NewRedisCSRFStore creates a new Redis-backed CSRF token store.
func NewRedisCSRFStore(client *redis.Client) CSRFStore {
	return &redisCSRFStore{client: client}
}

const csrfKeyPrefix = "csrf:"

// Issue mints a fresh token for the user, replacing any previous one.
func (r *redisCSRFStore) Issue(ctx context.Context, username string, sessionTTL time.Duration) (string, error) {
	token := uuid.NewString()
	key := csrfKeyPrefix + username
	if err := r.client.Set(ctx, key, token, sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("storing CSRF token for %s: %w", username, err)
	}
	return token, nil
}

// Check reports whether the presented token matches the stored one.
func (r *redisCSRFStore) Check(ctx context.Context, username, token string) (bool, error) {
	key := csrfKeyPrefix + username
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading CSRF token for %s: %w", username, err)
	}
	return token != "" && val == token, nil
}
