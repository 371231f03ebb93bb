package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	return rec
}

func TestNewLogger_ProdAttributesAndLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(&buf, config.Config{AppEnv: "prod", OTELServiceName: "agent"})
	lg.Debug("hidden")
	lg.Info("interview started", "session_id", "s1")

	rec := decodeLine(t, &buf)
	assert.Equal(t, "agent", rec["service"])
	assert.Equal(t, "prod", rec["env"])
	assert.Equal(t, "s1", rec["session_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLogger_DevDebug(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, config.Config{AppEnv: "dev"}).Debug("provider skipped", "provider", "groq")
	assert.Equal(t, "groq", decodeLine(t, &buf)["provider"])
}

func TestNewLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(&buf, config.Config{AppEnv: "prod"})
	lg.Warn("provider rejected key", "provider", "openai", "api_key", "sk-live-123", "Authorization", "Bearer x")

	rec := decodeLine(t, &buf)
	assert.Equal(t, "[REDACTED]", rec["api_key"])
	assert.Equal(t, "[REDACTED]", rec["Authorization"])
	assert.Equal(t, "openai", rec["provider"])
	assert.NotContains(t, buf.String(), "sk-live-123")
}
