package domain

// ChallengeName is the challenge type reported back to the identity provider
// when another round of the custom ceremony should run.
const ChallengeName = "CUSTOM_CHALLENGE"

// ChallengeAttempt is one entry of the ceremony session history, as recorded
// by the identity provider between hook invocations.
type ChallengeAttempt struct {
	ChallengeResult bool
}

// DefineChallengeRequest carries the decision inputs for the definer hook.
// Session is ordered oldest first; the identity provider owns it, we only read it.
type DefineChallengeRequest struct {
	UserNotFound bool
	Session      []ChallengeAttempt
}

// DefineChallengeResponse tells the identity provider how to proceed with the
// ceremony: mint tokens, abort, or run another challenge round.
type DefineChallengeResponse struct {
	IssueTokens        bool
	FailAuthentication bool
	ChallengeName      string
}

// PublicChallengeParameters are echoed to the client so the UI can show where
// the code went. Never put secrets here.
type PublicChallengeParameters struct {
	Email string
}

// PrivateChallengeParameters travel through the identity provider's session
// channel from the creator to the verifier and are never exposed to the client.
type PrivateChallengeParameters struct {
	Code string
}

// CreateChallengeRequest carries the verified attribute bag of the subject
// being challenged. The email attribute is the only one the creator consumes;
// the opaque subject identifier must never be used in its place.
type CreateChallengeRequest struct {
	UserAttributes map[string]string
}

// CreateChallengeResponse is the creator's contribution to the ceremony.
type CreateChallengeResponse struct {
	PublicParameters  PublicChallengeParameters
	PrivateParameters PrivateChallengeParameters
}

// VerifyChallengeRequest pairs the client's submitted answer with the expected
// code resolved by the identity provider from the private parameters.
type VerifyChallengeRequest struct {
	Answer            string
	PrivateParameters PrivateChallengeParameters
}

// VerifyChallengeResponse reports the comparison outcome. A mismatch is a
// normal false, never an error; the definer's loop decides what happens next.
type VerifyChallengeResponse struct {
	AnswerCorrect bool
}
