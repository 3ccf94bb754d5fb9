package domain

import (
	"context"
	"errors"
)

var (
	// ErrCodeNotFound is returned when no unexpired one-time code exists for an email.
	ErrCodeNotFound = errors.New("one-time code not found")
	// ErrEmailTaken is returned when a sign-up email already belongs to another subject.
	ErrEmailTaken = errors.New("email already registered to another subject")
	// ErrUserNotFound is returned when no user record matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
)

// OneTimeCodeRepository persists login codes keyed by email with a time-to-live.
//
// Save is last-write-wins: issuing a new code for an email silently replaces
// any outstanding one, so at most one code per email exists at a time. Get must
// treat an expired row as absent even when the backing store only expires
// lazily. Delete invalidates a code before its TTL elapses.
type OneTimeCodeRepository interface {
	Save(ctx context.Context, code *OneTimeCode) error
	Get(ctx context.Context, email string) (*OneTimeCode, error)
	Delete(ctx context.Context, email string) error
}

// UserRepository stores the internal account records mirrored from the
// identity provider on confirmed sign-up.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserBySubject(ctx context.Context, subject string) (*User, error)
}
