// Package mailer delivers email over SMTP with STARTTLS.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// SMTP implements domain.Mailer.
type SMTP struct {
	host     string
	port     int
	user     string
	pass     string
	timeout  time.Duration
	now      func() time.Time
	tlsConf  *tls.Config
	dialFunc func(ctx context.Context, addr string) (net.Conn, error)
}

// NewSMTP builds a mailer from the SMTP settings in cfg.
func NewSMTP(cfg config.Config) *SMTP {
	d := &net.Dialer{Timeout: 10 * time.Second}
	return &SMTP{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		pass:     cfg.SMTPPass,
		timeout:  30 * time.Second,
		now:      time.Now,
		tlsConf:  &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12},
		dialFunc: func(ctx context.Context, addr string) (net.Conn, error) { return d.DialContext(ctx, "tcp", addr) },
	}
}

// Configured reports whether host, port, user and password are all set.
func (m *SMTP) Configured() bool {
	return m != nil && m.host != "" && m.port > 0 && m.user != "" && m.pass != ""
}

// Send delivers msg from the configured account. The connection is upgraded
// with STARTTLS before authenticating.
func (m *SMTP) Send(ctx context.Context, msg domain.OutgoingEmail) error {
	if !m.Configured() {
		return fmt.Errorf("op=mailer.Send: %w: smtp not configured", domain.ErrInternal)
	}
	data, err := m.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("op=mailer.Send: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := m.dialFunc(ctx, addr)
	if err != nil {
		return fmt.Errorf("op=mailer.Send: dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("op=mailer.Send: handshake: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return fmt.Errorf("op=mailer.Send: server %s does not offer STARTTLS", m.host)
	}
	if err := c.StartTLS(m.tlsConf); err != nil {
		return fmt.Errorf("op=mailer.Send: starttls: %w", err)
	}
	if err := c.Auth(smtp.PlainAuth("", m.user, m.pass, m.host)); err != nil {
		return fmt.Errorf("op=mailer.Send: auth: %w", err)
	}
	if err := c.Mail(m.user); err != nil {
		return fmt.Errorf("op=mailer.Send: mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("op=mailer.Send: rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("op=mailer.Send: data: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("op=mailer.Send: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("op=mailer.Send: data close: %w", err)
	}
	if err := c.Quit(); err != nil {
		obsctx.LoggerFromContext(ctx).Debug("smtp quit failed", slog.Any("error", err))
	}
	obsctx.LoggerFromContext(ctx).Info("email sent", slog.String("recipient", msg.To))
	return nil
}

// buildMessage renders a plain text RFC 5322 message. Header values must
// not contain line breaks.
func (m *SMTP) buildMessage(msg domain.OutgoingEmail) ([]byte, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("%w: recipient required", domain.ErrInvalidArgument)
	}
	for _, v := range []string{msg.To, msg.Subject} {
		if strings.ContainsAny(v, "\r\n") {
			return nil, fmt.Errorf("%w: header contains line break", domain.ErrInvalidArgument)
		}
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.user)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	body := strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n")
	b.WriteString(body)
	return b.Bytes(), nil
}
