package dto

import (
	"encoding/json"
	"testing"

	"github.com/baliciaga/passwordless/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerEvent_DefineMapping(t *testing.T) {
	raw := `{
		"triggerSource": "DefineAuthChallenge_Authentication",
		"userName": "user@example.com",
		"request": {
			"userNotFound": false,
			"session": [
				{"challengeName": "CUSTOM_CHALLENGE", "challengeResult": false},
				{"challengeName": "CUSTOM_CHALLENGE", "challengeResult": true}
			]
		},
		"response": {}
	}`

	var event TriggerEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &event))

	req := event.DefineRequest()
	assert.False(t, req.UserNotFound)
	require.Len(t, req.Session, 2)
	assert.False(t, req.Session[0].ChallengeResult)
	assert.True(t, req.Session[1].ChallengeResult)

	event.ApplyDefineResponse(domain.DefineChallengeResponse{IssueTokens: true})

	out, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"issueTokens":true`)
	assert.Contains(t, string(out), `"failAuthentication":false`)
}

func TestTriggerEvent_CreateMapping(t *testing.T) {
	event := TriggerEvent{
		TriggerSource: TriggerCreateAuthChallenge,
		Request: TriggerRequest{
			UserAttributes: map[string]string{"sub": "opaque-id", "email": "user@example.com"},
		},
	}

	req := event.CreateRequest()
	assert.Equal(t, "user@example.com", req.UserAttributes["email"])

	event.ApplyCreateResponse(domain.CreateChallengeResponse{
		PublicParameters:  domain.PublicChallengeParameters{Email: "user@example.com"},
		PrivateParameters: domain.PrivateChallengeParameters{Code: "482913"},
	})

	assert.Equal(t, "user@example.com", event.Response.PublicChallengeParameters[ParamEmail])
	assert.Equal(t, "482913", event.Response.PrivateChallengeParameters[ParamCode])
}

func TestTriggerEvent_CreateMapping_FallbackHidesEmail(t *testing.T) {
	var event TriggerEvent
	event.ApplyCreateResponse(domain.CreateChallengeResponse{
		PrivateParameters: domain.PrivateChallengeParameters{Code: "deadbeef"},
	})

	_, present := event.Response.PublicChallengeParameters[ParamEmail]
	assert.False(t, present, "fallback challenge must not expose an email parameter")
	assert.Equal(t, "deadbeef", event.Response.PrivateChallengeParameters[ParamCode])
}

func TestTriggerEvent_VerifyMapping(t *testing.T) {
	raw := `{
		"triggerSource": "VerifyAuthChallengeResponse_Authentication",
		"request": {
			"challengeAnswer": "482913",
			"privateChallengeParameters": {"code": "482913"}
		},
		"response": {}
	}`

	var event TriggerEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &event))

	req := event.VerifyRequest()
	assert.Equal(t, "482913", req.Answer)
	assert.Equal(t, "482913", req.PrivateParameters.Code)

	event.ApplyVerifyResponse(domain.VerifyChallengeResponse{AnswerCorrect: true})
	assert.True(t, event.Response.AnswerCorrect)
}
