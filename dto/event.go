// Package dto holds the wire-level shapes of the identity provider's
// lifecycle trigger events. Services consume typed domain structs; the
// translation between the two lives here so the provider's event layout never
// leaks past the hosting adapter.
package dto

import "github.com/baliciaga/passwordless/domain"

// Challenge parameter keys used on the wire.
const (
	ParamEmail = "email"
	ParamCode  = "code"
)

// Trigger sources this service responds to.
const (
	TriggerDefineAuthChallenge = "DefineAuthChallenge_Authentication"
	TriggerCreateAuthChallenge = "CreateAuthChallenge_Authentication"
	TriggerVerifyAuthChallenge = "VerifyAuthChallengeResponse_Authentication"
	TriggerPostConfirmation    = "PostConfirmation_ConfirmSignUp"
)

// SessionAttempt is one prior challenge round as recorded by the provider.
type SessionAttempt struct {
	ChallengeName   string `json:"challengeName,omitempty"`
	ChallengeResult bool   `json:"challengeResult"`
}

// TriggerRequest is the request half of a lifecycle event. Only the fields
// relevant to the invoked hook are populated by the provider.
type TriggerRequest struct {
	UserNotFound               bool              `json:"userNotFound,omitempty"`
	Session                    []SessionAttempt  `json:"session,omitempty"`
	UserAttributes             map[string]string `json:"userAttributes,omitempty"`
	ChallengeAnswer            string            `json:"challengeAnswer,omitempty"`
	PrivateChallengeParameters map[string]string `json:"privateChallengeParameters,omitempty"`
}

// TriggerResponse is the response half, filled in by the hook and read back
// by the provider.
type TriggerResponse struct {
	IssueTokens                bool              `json:"issueTokens"`
	FailAuthentication         bool              `json:"failAuthentication"`
	ChallengeName              string            `json:"challengeName,omitempty"`
	PublicChallengeParameters  map[string]string `json:"publicChallengeParameters,omitempty"`
	PrivateChallengeParameters map[string]string `json:"privateChallengeParameters,omitempty"`
	AnswerCorrect              bool              `json:"answerCorrect"`
}

// TriggerEvent is the envelope the identity provider posts to each hook and
// expects back, response populated.
type TriggerEvent struct {
	Version       string          `json:"version,omitempty"`
	TriggerSource string          `json:"triggerSource"`
	UserName      string          `json:"userName,omitempty"`
	Request       TriggerRequest  `json:"request"`
	Response      TriggerResponse `json:"response"`
}

// DefineRequest maps the event onto the definer's typed input.
func (e *TriggerEvent) DefineRequest() domain.DefineChallengeRequest {
	session := make([]domain.ChallengeAttempt, 0, len(e.Request.Session))
	for _, attempt := range e.Request.Session {
		session = append(session, domain.ChallengeAttempt{ChallengeResult: attempt.ChallengeResult})
	}
	return domain.DefineChallengeRequest{
		UserNotFound: e.Request.UserNotFound,
		Session:      session,
	}
}

// ApplyDefineResponse writes the definer's decision back into the event.
func (e *TriggerEvent) ApplyDefineResponse(resp domain.DefineChallengeResponse) {
	e.Response.IssueTokens = resp.IssueTokens
	e.Response.FailAuthentication = resp.FailAuthentication
	e.Response.ChallengeName = resp.ChallengeName
}

// CreateRequest maps the event onto the creator's typed input.
func (e *TriggerEvent) CreateRequest() domain.CreateChallengeRequest {
	return domain.CreateChallengeRequest{UserAttributes: e.Request.UserAttributes}
}

// ApplyCreateResponse writes the issued challenge parameters back into the
// event. The private parameters travel only through the provider's session
// channel; they are never echoed to the client.
func (e *TriggerEvent) ApplyCreateResponse(resp domain.CreateChallengeResponse) {
	e.Response.PublicChallengeParameters = map[string]string{}
	if resp.PublicParameters.Email != "" {
		e.Response.PublicChallengeParameters[ParamEmail] = resp.PublicParameters.Email
	}
	e.Response.PrivateChallengeParameters = map[string]string{
		ParamCode: resp.PrivateParameters.Code,
	}
}

// VerifyRequest maps the event onto the verifier's typed input.
func (e *TriggerEvent) VerifyRequest() domain.VerifyChallengeRequest {
	return domain.VerifyChallengeRequest{
		Answer: e.Request.ChallengeAnswer,
		PrivateParameters: domain.PrivateChallengeParameters{
			Code: e.Request.PrivateChallengeParameters[ParamCode],
		},
	}
}

// ApplyVerifyResponse writes the comparison result back into the event.
func (e *TriggerEvent) ApplyVerifyResponse(resp domain.VerifyChallengeResponse) {
	e.Response.AnswerCorrect = resp.AnswerCorrect
}
