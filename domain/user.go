package domain

import "time"

// User is the internal account record created once the identity provider
// confirms a sign-up. Subject is the provider's opaque identifier; ID is ours.
// The two are distinct on purpose and must not be conflated with the email.
type User struct {
	ID        string            `bson:"_id"`
	Subject   string            `bson:"subject"`
	Email     string            `bson:"email"`
	Profile   map[string]string `bson:"profile,omitempty"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}
