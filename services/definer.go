package services

import (
	"context"

	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/internal/metrics"
	"github.com/baliciaga/passwordless/log"
)

// ChallengeDefiner decides, per invocation, whether the ceremony should issue
// tokens, fail, or run another challenge round. It is pure: no store access,
// no side effects beyond logging and counters.
type ChallengeDefiner struct {
	logger log.Logger
}

// NewChallengeDefiner creates a ChallengeDefiner.
func NewChallengeDefiner(logger log.Logger) *ChallengeDefiner {
	return &ChallengeDefiner{logger: logger}
}

// Define implements the decision table of the ceremony:
//
//   - unknown subject: start a challenge round anyway; whether anything useful
//     can be issued is the creator's call, never an auto-fail here
//   - most recent attempt passed: terminate successfully, issue tokens
//   - anything else (no history, failed or pending attempt): challenge again
//
// There is deliberately no cap on consecutive failed rounds; see DESIGN.md
// before adding one.
func (d *ChallengeDefiner) Define(ctx context.Context, req domain.DefineChallengeRequest) domain.DefineChallengeResponse {
	if req.UserNotFound {
		d.logger.Info(ctx, "Unknown subject, starting challenge ceremony")
		metrics.ChallengesIssuedTotal.Inc()
		return domain.DefineChallengeResponse{ChallengeName: domain.ChallengeName}
	}

	if n := len(req.Session); n > 0 && req.Session[n-1].ChallengeResult {
		d.logger.Info(ctx, "Challenge passed, issuing tokens", map[string]interface{}{
			"attempts": n,
		})
		metrics.ChallengeSuccessTotal.Inc()
		return domain.DefineChallengeResponse{IssueTokens: true}
	}

	d.logger.Info(ctx, "Issuing a new challenge round", map[string]interface{}{
		"prior_attempts": len(req.Session),
	})
	metrics.ChallengesIssuedTotal.Inc()
	return domain.DefineChallengeResponse{ChallengeName: domain.ChallengeName}
}
