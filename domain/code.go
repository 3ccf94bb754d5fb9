package domain

import "time"

// OneTimeCode is a short-lived login secret delivered out of band. It is keyed
// by the subject's email address: the same key must be used at issuance and at
// lookup, a mismatch makes the code unfindable and silently breaks sign-in.
type OneTimeCode struct {
	Email     string    `bson:"email" json:"email"`
	Code      string    `bson:"code" json:"code"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}

// Expired reports whether the code's time-to-live has elapsed at the given
// instant. Stores that expire lazily must consult this before returning a row.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
