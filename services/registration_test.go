package services

import (
	"context"
	"testing"

	"github.com/baliciaga/passwordless/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserBySubject(ctx context.Context, subject string) (*domain.User, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestRegistrationService_ConfirmSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a record for a new subject", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewRegistrationService(repo, testLogger())

		repo.On("GetUserByEmail", ctx, "new@example.com").Return(nil, domain.ErrUserNotFound).Once()
		repo.On("GetUserBySubject", ctx, "sub-1").Return(nil, domain.ErrUserNotFound).Once()
		repo.On("CreateUser", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Subject == "sub-1" && u.Email == "new@example.com" && u.ID != ""
		})).Return(nil).Once()

		user, err := svc.ConfirmSignUp(ctx, "sub-1", "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.NotEmpty(t, user.ID)
		repo.AssertExpectations(t)
	})

	t.Run("email owned by another subject is rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewRegistrationService(repo, testLogger())

		repo.On("GetUserByEmail", ctx, "taken@example.com").
			Return(&domain.User{ID: "u-1", Subject: "other-sub", Email: "taken@example.com"}, nil).Once()

		_, err := svc.ConfirmSignUp(ctx, "sub-2", "taken@example.com")
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		repo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("re-confirmation for the same subject is a no-op", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewRegistrationService(repo, testLogger())

		existing := &domain.User{ID: "u-1", Subject: "sub-1", Email: "new@example.com"}
		repo.On("GetUserByEmail", ctx, "new@example.com").Return(existing, nil).Once()

		user, err := svc.ConfirmSignUp(ctx, "sub-1", "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, existing, user)
		repo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("email is normalized before lookup", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewRegistrationService(repo, testLogger())

		repo.On("GetUserByEmail", ctx, "mixed@example.com").Return(nil, domain.ErrUserNotFound).Once()
		repo.On("GetUserBySubject", ctx, "sub-3").Return(nil, domain.ErrUserNotFound).Once()
		repo.On("CreateUser", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "mixed@example.com"
		})).Return(nil).Once()

		_, err := svc.ConfirmSignUp(ctx, "sub-3", " Mixed@Example.com ")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("missing inputs are rejected", func(t *testing.T) {
		svc := NewRegistrationService(new(MockUserRepository), testLogger())

		_, err := svc.ConfirmSignUp(ctx, "", "a@b.c")
		assert.Error(t, err)
		_, err = svc.ConfirmSignUp(ctx, "sub", "")
		assert.Error(t, err)
	})
}
