package mailer

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

func testConfig() config.Config {
	return config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "bot@example.com", SMTPPass: "secret"}
}

func TestSMTP_Configured(t *testing.T) {
	assert.True(t, NewSMTP(testConfig()).Configured())

	cfg := testConfig()
	cfg.SMTPPass = ""
	assert.False(t, NewSMTP(cfg).Configured())

	var nilMailer *SMTP
	assert.False(t, nilMailer.Configured())
}

func TestSMTP_BuildMessage(t *testing.T) {
	m := NewSMTP(testConfig())
	m.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	raw, err := m.buildMessage(domain.OutgoingEmail{To: "alice@example.com", Subject: "Résumé review", Body: "Hi\nSee you"})
	require.NoError(t, err)
	msg := string(raw)
	assert.Contains(t, msg, "From: bot@example.com\r\n")
	assert.Contains(t, msg, "To: alice@example.com\r\n")
	assert.Contains(t, msg, "Subject: =?utf-8?q?R=C3=A9sum=C3=A9_review?=\r\n")
	assert.Contains(t, msg, "Date: Sat, 01 Mar 2025 09:00:00 +0000\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nHi\r\nSee you"))
}

func TestSMTP_BuildMessageRejectsHeaderInjection(t *testing.T) {
	m := NewSMTP(testConfig())
	_, err := m.buildMessage(domain.OutgoingEmail{To: "a@example.com\r\nBcc: evil@example.com", Subject: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = m.buildMessage(domain.OutgoingEmail{To: " ", Subject: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSMTP_SendUnconfigured(t *testing.T) {
	err := NewSMTP(config.Config{}).Send(context.Background(), domain.OutgoingEmail{To: "a@example.com"})
	require.ErrorIs(t, err, domain.ErrInternal)
}

func TestSMTP_SendDialError(t *testing.T) {
	m := NewSMTP(testConfig())
	m.dialFunc = func(context.Context, string) (net.Conn, error) { return nil, errors.New("connection refused") }
	err := m.Send(context.Background(), domain.OutgoingEmail{To: "a@example.com", Subject: "s", Body: "b"})
	require.ErrorContains(t, err, "connection refused")
}

func TestSMTP_SendRequiresStartTLS(t *testing.T) {
	client, server := net.Pipe()
	go func() {
		defer server.Close()
		r := bufio.NewReader(server)
		_, _ = server.Write([]byte("220 smtp.example.com ESMTP\r\n"))
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"):
				_, _ = server.Write([]byte("250-smtp.example.com\r\n250 AUTH PLAIN\r\n"))
			case strings.HasPrefix(line, "QUIT"):
				_, _ = server.Write([]byte("221 bye\r\n"))
				return
			default:
				_, _ = server.Write([]byte("250 ok\r\n"))
			}
		}
	}()

	m := NewSMTP(testConfig())
	m.dialFunc = func(context.Context, string) (net.Conn, error) { return client, nil }
	err := m.Send(context.Background(), domain.OutgoingEmail{To: "a@example.com", Subject: "s", Body: "b"})
	require.ErrorContains(t, err, "does not offer STARTTLS")
}
