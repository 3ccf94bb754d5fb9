package services

import (
	"context"
	"strings"
	"time"

	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/internal/auth/otp"
	"github.com/baliciaga/passwordless/internal/mailer"
	"github.com/baliciaga/passwordless/internal/metrics"
	"github.com/baliciaga/passwordless/log"
)

// emailAttribute is the only key the creator reads from the attribute bag.
// The provider's opaque subject identifier must never be substituted for it:
// the one-time-code store is keyed by email, and issuing under one key while
// verifying under another silently breaks sign-in.
const emailAttribute = "email"

// CreatorOptions configure a ChallengeCreator.
type CreatorOptions struct {
	CodeLength int
	CodeTTL    time.Duration
	// TestEmailSuffix enables the end-to-end test bypass for matching
	// addresses: fixed code, no outbound mail. Leave empty in production;
	// config.ServerConfig.TestBypassEnabled gates this upstream as well.
	TestEmailSuffix string
	TestBypassCode  string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// CreateOutcome makes the creator's best-effort side effects visible to the
// caller instead of burying them in logs. The ceremony continues regardless of
// what failed; the hosting adapter and tests inspect this.
type CreateOutcome struct {
	Persisted   bool
	PersistErr  error
	Dispatched  bool
	DispatchErr error
	// Fallback is set when no email attribute was available and the returned
	// challenge is unpassable by construction.
	Fallback bool
	// TestBypass is set when the test-domain suffix matched.
	TestBypass bool
}

// ChallengeCreator generates a one-time login code, persists it keyed by the
// subject's email, and dispatches it out of band.
type ChallengeCreator struct {
	codes  domain.OneTimeCodeRepository
	mail   mailer.Mailer
	logger log.Logger
	opts   CreatorOptions
}

// NewChallengeCreator creates a ChallengeCreator with its collaborators
// injected, so tests can substitute fakes for the store and the mailer.
func NewChallengeCreator(codes domain.OneTimeCodeRepository, mail mailer.Mailer, logger log.Logger, opts CreatorOptions) *ChallengeCreator {
	if opts.CodeLength <= 0 {
		opts.CodeLength = otp.DefaultCodeLength
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ChallengeCreator{codes: codes, mail: mail, logger: logger, opts: opts}
}

// Create issues a challenge for the subject described by the request.
//
// Every foreseeable failure degrades rather than aborts: a missing email
// yields an unpassable fallback challenge, and persist or dispatch errors are
// reported through the outcome while the ceremony proceeds. The response's
// private parameters reach only the verifier via the identity provider's
// session channel; the public ones may be echoed to the client.
func (c *ChallengeCreator) Create(ctx context.Context, req domain.CreateChallengeRequest) (domain.CreateChallengeResponse, CreateOutcome) {
	email := normalizeEmail(req.UserAttributes[emailAttribute])
	if email == "" {
		return c.fallbackChallenge(ctx)
	}

	var outcome CreateOutcome
	code := ""
	if c.opts.TestEmailSuffix != "" && strings.HasSuffix(email, c.opts.TestEmailSuffix) {
		code = c.opts.TestBypassCode
		outcome.TestBypass = true
		c.logger.Info(ctx, "Test-domain subject, using fixed bypass code", map[string]interface{}{
			"email": email,
		})
	} else {
		generated, err := otp.GenerateNumericCode(c.opts.CodeLength)
		if err != nil {
			// Without a secure random source there is no secret worth sending.
			c.logger.Error(ctx, "Failed to generate login code, degrading to fallback challenge", err)
			return c.fallbackChallenge(ctx)
		}
		code = generated
	}

	outcome.PersistErr = c.persistCode(ctx, email, code)
	outcome.Persisted = outcome.PersistErr == nil
	if outcome.PersistErr != nil {
		// The ceremony continues with a code that can never verify; failing
		// the whole sign-in here would be worse for availability.
		metrics.PersistFailureTotal.Inc()
		c.logger.Error(ctx, "Failed to persist login code, continuing ceremony", outcome.PersistErr, map[string]interface{}{
			"email": email,
		})
	}

	if outcome.TestBypass {
		outcome.Dispatched = false
	} else {
		outcome.DispatchErr = c.dispatchCode(ctx, email, code)
		outcome.Dispatched = outcome.DispatchErr == nil
		if outcome.DispatchErr != nil {
			// The code is already durable, so an out-of-band copy can still
			// complete the sign-in. Log and continue.
			metrics.DispatchFailureTotal.Inc()
			c.logger.Error(ctx, "Failed to dispatch login code, continuing ceremony", outcome.DispatchErr, map[string]interface{}{
				"email": email,
			})
		} else {
			metrics.CodesDispatchedTotal.Inc()
		}
	}

	return domain.CreateChallengeResponse{
		PublicParameters:  domain.PublicChallengeParameters{Email: email},
		PrivateParameters: domain.PrivateChallengeParameters{Code: code},
	}, outcome
}

// persistCode writes the code last-write-wins under the email key. A second
// concurrent sign-in for the same address overwrites the first one's code;
// that race is accepted, not arbitrated.
func (c *ChallengeCreator) persistCode(ctx context.Context, email, code string) error {
	return c.codes.Save(ctx, &domain.OneTimeCode{
		Email:     email,
		Code:      code,
		ExpiresAt: c.opts.Now().Add(c.opts.CodeTTL),
	})
}

func (c *ChallengeCreator) dispatchCode(ctx context.Context, email, code string) error {
	return c.mail.SendLoginCode(ctx, email, code)
}

// fallbackChallenge completes the ceremony without an email to send to. The
// private secret is random and outside the numeric alphabet, so the attempt is
// fail-closed: no client answer can pass it, but the client still gets the
// generic "check your email" flow instead of an internal error.
func (c *ChallengeCreator) fallbackChallenge(ctx context.Context) (domain.CreateChallengeResponse, CreateOutcome) {
	metrics.FallbackChallengeTotal.Inc()
	secret, err := otp.GenerateUnguessableSecret()
	if err != nil {
		c.logger.Error(ctx, "Failed to generate fallback secret", err)
		// Empty expected code is rejected by the verifier, so the challenge
		// stays unpassable even on this path.
		secret = ""
	}
	c.logger.Warn(ctx, "No email attribute available, issuing unpassable fallback challenge")
	return domain.CreateChallengeResponse{
		PrivateParameters: domain.PrivateChallengeParameters{Code: secret},
	}, CreateOutcome{Fallback: true}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
