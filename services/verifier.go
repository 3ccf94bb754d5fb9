package services

import (
	"context"
	"crypto/subtle"

	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/internal/metrics"
	"github.com/baliciaga/passwordless/log"
)

// ChallengeVerifier compares the client's submitted answer against the code
// carried in the private challenge parameters. It never touches the store: the
// expected value arrives through the identity provider's session channel,
// already resolved at issuance time.
type ChallengeVerifier struct {
	logger log.Logger
}

// NewChallengeVerifier creates a ChallengeVerifier.
func NewChallengeVerifier(logger log.Logger) *ChallengeVerifier {
	return &ChallengeVerifier{logger: logger}
}

// Verify reports whether the answer matches the expected code. The comparison
// is constant time; this is a credential check. A mismatch is an ordinary
// false result consumed by the definer's retry loop, never an error.
func (v *ChallengeVerifier) Verify(ctx context.Context, req domain.VerifyChallengeRequest) domain.VerifyChallengeResponse {
	expected := req.PrivateParameters.Code

	// An absent expected code means the creator issued a fallback challenge
	// that must stay unpassable.
	ok := expected != "" &&
		subtle.ConstantTimeCompare([]byte(req.Answer), []byte(expected)) == 1

	if ok {
		metrics.CodeMatchTotal.Inc()
		v.logger.Info(ctx, "Challenge answer accepted")
	} else {
		metrics.CodeMismatchTotal.Inc()
		v.logger.Info(ctx, "Challenge answer rejected")
	}
	return domain.VerifyChallengeResponse{AnswerCorrect: ok}
}
