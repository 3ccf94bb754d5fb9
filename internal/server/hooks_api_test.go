package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baliciaga/passwordless/cache"
	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/dto"
	"github.com/baliciaga/passwordless/internal/mailer"
	"github.com/baliciaga/passwordless/log"
	"github.com/baliciaga/passwordless/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byEmail   map[string]*domain.User
	bySubject map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:   map[string]*domain.User{},
		bySubject: map[string]*domain.User{},
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	f.byEmail[user.Email] = user
	f.bySubject[user.Subject] = user
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetUserBySubject(_ context.Context, subject string) (*domain.User, error) {
	if u, ok := f.bySubject[subject]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func newTestHooks(t *testing.T) (*HooksAPI, *cache.MemoryCodeStore) {
	t.Helper()
	logger := log.NewZerologAdapter(zerolog.Disabled, false)
	store := cache.NewMemoryCodeStore()
	t.Cleanup(func() { store.Close() })

	return NewHooksAPI(
		services.NewChallengeDefiner(logger),
		services.NewChallengeCreator(store, mailer.Noop{}, logger, services.CreatorOptions{}),
		services.NewChallengeVerifier(logger),
		services.NewRegistrationService(newFakeUserRepo(), logger),
	), store
}

func postEvent(t *testing.T, handler echo.HandlerFunc, event *dto.TriggerEvent) (*dto.TriggerEvent, *httptest.ResponseRecorder) {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handlerErr := handler(c)
	if handlerErr != nil {
		e.HTTPErrorHandler(handlerErr, c)
		return nil, rec
	}

	var out dto.TriggerEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return &out, rec
}

func TestHooks_FullCeremony(t *testing.T) {
	hooks, store := newTestHooks(t)
	ctx := context.Background()

	// Round 1: definer starts the ceremony.
	defineOut, rec := postEvent(t, hooks.DefineHandler, &dto.TriggerEvent{
		TriggerSource: dto.TriggerDefineAuthChallenge,
		UserName:      "user@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ChallengeName, defineOut.Response.ChallengeName)
	assert.False(t, defineOut.Response.IssueTokens)

	// Creator issues and persists a code.
	createOut, rec := postEvent(t, hooks.CreateHandler, &dto.TriggerEvent{
		TriggerSource: dto.TriggerCreateAuthChallenge,
		Request: dto.TriggerRequest{
			UserAttributes: map[string]string{"email": "user@example.com"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	code := createOut.Response.PrivateChallengeParameters[dto.ParamCode]
	require.Regexp(t, `^\d{6}$`, code)
	assert.Equal(t, "user@example.com", createOut.Response.PublicChallengeParameters[dto.ParamEmail])

	stored, err := store.Get(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, code, stored.Code)

	// Client answers correctly.
	verifyOut, rec := postEvent(t, hooks.VerifyHandler, &dto.TriggerEvent{
		TriggerSource: dto.TriggerVerifyAuthChallenge,
		Request: dto.TriggerRequest{
			ChallengeAnswer:            code,
			PrivateChallengeParameters: map[string]string{dto.ParamCode: code},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, verifyOut.Response.AnswerCorrect)

	// Round 2: definer sees the passing attempt and issues tokens.
	defineOut, _ = postEvent(t, hooks.DefineHandler, &dto.TriggerEvent{
		TriggerSource: dto.TriggerDefineAuthChallenge,
		UserName:      "user@example.com",
		Request: dto.TriggerRequest{
			Session: []dto.SessionAttempt{{ChallengeName: domain.ChallengeName, ChallengeResult: true}},
		},
	})
	assert.True(t, defineOut.Response.IssueTokens)
	assert.False(t, defineOut.Response.FailAuthentication)
}

func TestHooks_WrongAnswerLoops(t *testing.T) {
	hooks, _ := newTestHooks(t)

	verifyOut, _ := postEvent(t, hooks.VerifyHandler, &dto.TriggerEvent{
		TriggerSource: dto.TriggerVerifyAuthChallenge,
		Request: dto.TriggerRequest{
			ChallengeAnswer:            "000000",
			PrivateChallengeParameters: map[string]string{dto.ParamCode: "482913"},
		},
	})
	assert.False(t, verifyOut.Response.AnswerCorrect)

	// The definer reacts to the failed attempt with another round, not a hard failure.
	defineOut, _ := postEvent(t, hooks.DefineHandler, &dto.TriggerEvent{
		TriggerSource: dto.TriggerDefineAuthChallenge,
		Request: dto.TriggerRequest{
			Session: []dto.SessionAttempt{{ChallengeName: domain.ChallengeName, ChallengeResult: false}},
		},
	})
	assert.Equal(t, domain.ChallengeName, defineOut.Response.ChallengeName)
	assert.False(t, defineOut.Response.FailAuthentication)
}

func TestHooks_PostConfirmation(t *testing.T) {
	hooks, _ := newTestHooks(t)

	event := &dto.TriggerEvent{
		TriggerSource: dto.TriggerPostConfirmation,
		Request: dto.TriggerRequest{
			UserAttributes: map[string]string{"sub": "sub-1", "email": "new@example.com"},
		},
	}
	out, rec := postEvent(t, hooks.PostConfirmationHandler, event)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.TriggerPostConfirmation, out.TriggerSource)

	// Same email under a different subject must block with a conflict.
	_, rec = postEvent(t, hooks.PostConfirmationHandler, &dto.TriggerEvent{
		TriggerSource: dto.TriggerPostConfirmation,
		Request: dto.TriggerRequest{
			UserAttributes: map[string]string{"sub": "sub-2", "email": "new@example.com"},
		},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHooks_PostConfirmation_OtherTriggerPassesThrough(t *testing.T) {
	hooks, _ := newTestHooks(t)

	out, rec := postEvent(t, hooks.PostConfirmationHandler, &dto.TriggerEvent{
		TriggerSource: "PostConfirmation_ConfirmForgotPassword",
		Request: dto.TriggerRequest{
			UserAttributes: map[string]string{"sub": "sub-9", "email": "x@example.com"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PostConfirmation_ConfirmForgotPassword", out.TriggerSource)
}

func TestHooks_MalformedEventRejected(t *testing.T) {
	hooks, _ := newTestHooks(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := hooks.DefineHandler(c)
	require.Error(t, err)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
