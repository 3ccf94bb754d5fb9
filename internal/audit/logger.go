package audit

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Event is one audit record of a ceremony or registration outcome. Audit
// entries are written as plain JSON lines on stdout so they can be shipped
// separately from diagnostic logs.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"` // email or user identifier
	Target    string    `json:"target,omitempty"`
	Details   string    `json:"details,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

var auditLogger = zerolog.New(os.Stdout)

// Log records an audit event.
func Log(service, action, subject, target, details string, success bool, err error) {
	event := Event{
		Timestamp: time.Now().UTC(),
		Service:   service,
		Action:    action,
		Subject:   subject,
		Target:    target,
		Details:   details,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}

	auditLogger.Log().
		Str("kind", "audit").
		Interface("event", event).
		Send()
}
