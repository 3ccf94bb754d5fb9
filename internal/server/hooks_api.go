package server

import (
	"errors"
	"net/http"

	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/dto"
	"github.com/baliciaga/passwordless/internal/audit"
	"github.com/baliciaga/passwordless/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// HooksAPI exposes the lifecycle hooks over HTTP. Each handler decodes the
// provider's trigger event, runs the corresponding pure service, and returns
// the event with its response half populated.
type HooksAPI struct {
	definer      *services.ChallengeDefiner
	creator      *services.ChallengeCreator
	verifier     *services.ChallengeVerifier
	registration *services.RegistrationService
}

// NewHooksAPI creates the hooks API with its services injected.
func NewHooksAPI(
	definer *services.ChallengeDefiner,
	creator *services.ChallengeCreator,
	verifier *services.ChallengeVerifier,
	registration *services.RegistrationService,
) *HooksAPI {
	return &HooksAPI{
		definer:      definer,
		creator:      creator,
		verifier:     verifier,
		registration: registration,
	}
}

// RegisterRoutes registers the hook endpoints.
func (h *HooksAPI) RegisterRoutes(e *echo.Echo) {
	e.POST("/hooks/define", h.DefineHandler)
	e.POST("/hooks/create", h.CreateHandler)
	e.POST("/hooks/verify", h.VerifyHandler)
	e.POST("/hooks/post-confirmation", h.PostConfirmationHandler)
}

func bindEvent(c echo.Context) (*dto.TriggerEvent, error) {
	var event dto.TriggerEvent
	if err := c.Bind(&event); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed trigger event")
	}
	return &event, nil
}

// DefineHandler runs the ceremony decision step.
func (h *HooksAPI) DefineHandler(c echo.Context) error {
	event, err := bindEvent(c)
	if err != nil {
		return err
	}

	resp := h.definer.Define(c.Request().Context(), event.DefineRequest())
	event.ApplyDefineResponse(resp)

	if resp.IssueTokens {
		audit.Log("passwordless", "ceremony.success", event.UserName, "", "", true, nil)
	}
	return c.JSON(http.StatusOK, event)
}

// CreateHandler issues a one-time code challenge.
func (h *HooksAPI) CreateHandler(c echo.Context) error {
	event, err := bindEvent(c)
	if err != nil {
		return err
	}

	resp, outcome := h.creator.Create(c.Request().Context(), event.CreateRequest())
	event.ApplyCreateResponse(resp)

	audit.Log("passwordless", "challenge.create", resp.PublicParameters.Email, "", "", !outcome.Fallback,
		errors.Join(outcome.PersistErr, outcome.DispatchErr))
	return c.JSON(http.StatusOK, event)
}

// VerifyHandler checks a submitted answer.
func (h *HooksAPI) VerifyHandler(c echo.Context) error {
	event, err := bindEvent(c)
	if err != nil {
		return err
	}

	resp := h.verifier.Verify(c.Request().Context(), event.VerifyRequest())
	event.ApplyVerifyResponse(resp)

	audit.Log("passwordless", "challenge.verify", event.UserName, "", "", resp.AnswerCorrect, nil)
	return c.JSON(http.StatusOK, event)
}

// PostConfirmationHandler mirrors a confirmed sign-up into the user registry.
// Only the confirm-sign-up trigger source is processed; anything else passes
// through untouched. A duplicate email blocks the registration; other storage
// errors are logged and let the sign-up proceed.
func (h *HooksAPI) PostConfirmationHandler(c echo.Context) error {
	event, err := bindEvent(c)
	if err != nil {
		return err
	}
	if event.TriggerSource != dto.TriggerPostConfirmation {
		return c.JSON(http.StatusOK, event)
	}

	ctx := c.Request().Context()
	subject := event.Request.UserAttributes["sub"]
	email := event.Request.UserAttributes["email"]

	user, regErr := h.registration.ConfirmSignUp(ctx, subject, email)
	switch {
	case errors.Is(regErr, domain.ErrEmailTaken):
		audit.Log("passwordless", "user.register", email, "", "duplicate email", false, regErr)
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	case regErr != nil:
		// Storage trouble must not block a confirmed sign-up.
		log.Error().Err(regErr).Msg("Post-confirmation user creation failed, letting sign-up proceed")
	default:
		audit.Log("passwordless", "user.register", email, user.ID, "", true, nil)
	}
	return c.JSON(http.StatusOK, event)
}
