package cache

import (
	"context"
	"time"

	"github.com/baliciaga/passwordless/domain"
	"github.com/jellydator/ttlcache/v3"
)

// MemoryCodeStore implements domain.OneTimeCodeRepository on ttlcache. It is
// the single-node backend for development and tests; production deployments
// use the Mongo or Redis backend so codes survive process restarts.
type MemoryCodeStore struct {
	cache *ttlcache.Cache[string, *domain.OneTimeCode]
	now   func() time.Time
}

// NewMemoryCodeStore creates an in-memory code store with automatic expiry.
func NewMemoryCodeStore() *MemoryCodeStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *domain.OneTimeCode](),
	)
	go cache.Start()

	return &MemoryCodeStore{cache: cache, now: time.Now}
}

// Save stores the code under its email key, replacing any outstanding one.
func (s *MemoryCodeStore) Save(_ context.Context, code *domain.OneTimeCode) error {
	s.cache.Set(code.Email, code, time.Until(code.ExpiresAt))
	return nil
}

// Get returns the unexpired code for the email, or domain.ErrCodeNotFound.
func (s *MemoryCodeStore) Get(_ context.Context, email string) (*domain.OneTimeCode, error) {
	item := s.cache.Get(email)
	if item == nil {
		return nil, domain.ErrCodeNotFound
	}
	code := item.Value()
	// ttlcache sweeps on its own schedule; never trust a stale read.
	if code.Expired(s.now()) {
		return nil, domain.ErrCodeNotFound
	}
	return code, nil
}

// Delete invalidates the code for the email. Deleting an absent key is a no-op.
func (s *MemoryCodeStore) Delete(_ context.Context, email string) error {
	s.cache.Delete(email)
	return nil
}

// Close stops the background expiry goroutine.
func (s *MemoryCodeStore) Close() error {
	s.cache.Stop()
	return nil
}

var _ domain.OneTimeCodeRepository = (*MemoryCodeStore)(nil)
