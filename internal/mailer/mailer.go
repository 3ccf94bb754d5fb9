package mailer

import "context"

// Mailer delivers one-time login codes to subjects. Implementations own their
// transport timeouts; callers treat a send failure as non-fatal because the
// code is persisted independently of dispatch.
type Mailer interface {
	SendLoginCode(ctx context.Context, to, code string) error
}

// Noop discards messages. Used in tests and wherever the test-domain bypass
// suppresses real dispatch.
type Noop struct{}

func (Noop) SendLoginCode(context.Context, string, string) error { return nil }
