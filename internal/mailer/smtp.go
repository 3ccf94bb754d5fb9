package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/rs/zerolog/log"
)

const loginCodeSubject = "Your login code"

var htmlBody = template.Must(template.New("login_code").Parse(
	`<html><body><p>Your Baliciaga login code is: <b>{{.Code}}</b></p></body></html>`))

// SMTPConfig holds the relay settings for outbound mail. From must be an
// address the relay has verified for sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPClient sends login-code mail over an implicit-TLS SMTP relay.
type SMTPClient struct {
	cfg SMTPConfig
}

// NewSMTPClient creates a mailer for the given relay settings.
func NewSMTPClient(cfg SMTPConfig) *SMTPClient {
	return &SMTPClient{cfg: cfg}
}

// SendLoginCode delivers the code to the given address as a
// multipart/alternative message with plain-text and HTML parts.
func (c *SMTPClient) SendLoginCode(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	msg, err := c.buildMessage(to, code)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: c.cfg.Host}}
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP relay: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if c.cfg.Username != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate with SMTP relay: %w", err)
		}
	}
	if err := client.Mail(c.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP session: %w", err)
	}

	log.Info().Str("to", to).Msg("Login code email sent")
	return nil
}

func (c *SMTPClient) buildMessage(to, code string) ([]byte, error) {
	var html bytes.Buffer
	if err := htmlBody.Execute(&html, struct{ Code string }{Code: code}); err != nil {
		return nil, fmt.Errorf("failed to render HTML body: %w", err)
	}

	var msg bytes.Buffer
	mw := multipart.NewWriter(&msg)

	fmt.Fprintf(&msg, "From: %s\r\n", c.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", loginCodeSubject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	fmt.Fprintf(&msg, "\r\n")

	// Plain part first so basic clients fall back to it.
	part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=UTF-8"}})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(part, "Your Baliciaga login code is: %s\r\n", code)

	part, err = mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=UTF-8"}})
	if err != nil {
		return nil, err
	}
	part.Write(html.Bytes())

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return msg.Bytes(), nil
}
