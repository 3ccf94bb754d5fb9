package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baliciaga/passwordless/domain"
	"github.com/redis/go-redis/v9"
)

// CodeStore implements domain.OneTimeCodeRepository on Redis. Expiry rides on
// the key TTL, which Redis enforces precisely, so reads need no staleness
// guard of their own.
type CodeStore struct {
	client *redis.Client
	prefix string
}

// NewCodeStore creates a new CodeStore. The prefix namespaces the keys when
// the Redis instance is shared.
func NewCodeStore(client *redis.Client, prefix string) *CodeStore {
	return &CodeStore{client: client, prefix: prefix}
}

func (r *CodeStore) redisKey(email string) string {
	return fmt.Sprintf("%s:login-code:%s", r.prefix, email)
}

// Save writes the code under the email key with the remaining TTL. SET
// replaces any existing value, which gives the required last-write-wins.
func (r *CodeStore) Save(ctx context.Context, code *domain.OneTimeCode) error {
	ttl := time.Until(code.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refusing to store already-expired code for %s", code.Email)
	}

	payload, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("failed to marshal code: %w", err)
	}
	if err := r.client.Set(ctx, r.redisKey(code.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store code in Redis: %w", err)
	}
	return nil
}

// Get returns the outstanding code for the email, or domain.ErrCodeNotFound.
func (r *CodeStore) Get(ctx context.Context, email string) (*domain.OneTimeCode, error) {
	payload, err := r.client.Get(ctx, r.redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read code from Redis: %w", err)
	}

	var code domain.OneTimeCode
	if err := json.Unmarshal(payload, &code); err != nil {
		return nil, fmt.Errorf("failed to unmarshal code: %w", err)
	}
	return &code, nil
}

// Delete invalidates the code for the email.
func (r *CodeStore) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.redisKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete code from Redis: %w", err)
	}
	return nil
}

var _ domain.OneTimeCodeRepository = (*CodeStore)(nil)
