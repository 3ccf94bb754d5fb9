package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/internal/metrics"
	"github.com/baliciaga/passwordless/log"
	"github.com/google/uuid"
)

// RegistrationService mirrors confirmed identity-provider sign-ups into the
// internal user registry, linking the provider's opaque subject to our own
// user id.
type RegistrationService struct {
	users  domain.UserRepository
	logger log.Logger
	now    func() time.Time
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(users domain.UserRepository, logger log.Logger) *RegistrationService {
	return &RegistrationService{users: users, logger: logger, now: time.Now}
}

// ConfirmSignUp creates the internal user record for a confirmed sign-up.
// A subject that already has a record is a no-op returning the existing user.
// An email already registered to a different subject is rejected with
// domain.ErrEmailTaken so the provider blocks the duplicate registration.
func (s *RegistrationService) ConfirmSignUp(ctx context.Context, subject, email string) (*domain.User, error) {
	if subject == "" || email == "" {
		return nil, fmt.Errorf("subject and email are required")
	}
	email = normalizeEmail(email)

	existing, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil && existing.Subject != subject:
		s.logger.Warn(ctx, "Sign-up email already belongs to another subject", map[string]interface{}{
			"email": email,
		})
		return nil, domain.ErrEmailTaken
	case err == nil:
		s.logger.Info(ctx, "Subject already registered, skipping user creation", map[string]interface{}{
			"user_id": existing.ID,
		})
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	if bysub, err := s.users.GetUserBySubject(ctx, subject); err == nil {
		return bysub, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up subject: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		Subject:   subject,
		Email:     email,
		Profile:   map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user record: %w", err)
	}

	metrics.UsersRegisteredTotal.Inc()
	s.logger.Info(ctx, "User record created for confirmed sign-up", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}
