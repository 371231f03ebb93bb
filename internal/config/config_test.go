package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Load_DefaultValues(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.DBURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "activity-events", cfg.ActivityTopic)
	assert.Equal(t, "http://tika:9998", cfg.TikaURL)
	assert.Equal(t, "ai-interview-agent", cfg.OTELServiceName)
	assert.Equal(t, 0.3, cfg.FollowupProbability)
	assert.Equal(t, 5, cfg.QuestionCount)
	assert.Equal(t, 20, cfg.MemoryMaxMessages)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1000, cfg.SessionMax)
	assert.Equal(t, 2, cfg.ExecutorMaxRetries)
	assert.Equal(t, time.Second, cfg.ExecutorRetryDelay)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, 90, cfg.DataRetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.CleanupInterval)
	assert.False(t, cfg.SMTPConfigured())
	assert.False(t, cfg.AuthEnabled())
}

func TestConfig_Load_CustomValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("FOLLOWUP_PROBABILITY", "0.5")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "bot")
	t.Setenv("SMTP_PASS", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 0.5, cfg.FollowupProbability)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.SMTPConfigured())
}

func TestConfig_ProviderGates(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want func(Config) bool
		ok   bool
	}{
		{"gemini placeholder", Config{GeminiAPIKey: "your-gemini-api-key-here"}, Config.GeminiEnabled, false},
		{"gemini key", Config{GeminiAPIKey: "AIza123"}, Config.GeminiEnabled, true},
		{"groq empty", Config{}, Config.GroqEnabled, false},
		{"groq placeholder", Config{GroqAPIKey: "your-groq-key"}, Config.GroqEnabled, false},
		{"groq key", Config{GroqAPIKey: "gsk_abc"}, Config.GroqEnabled, true},
		{"ollama bad scheme", Config{OllamaBaseURL: "ftp://host"}, Config.OllamaEnabled, false},
		{"ollama no host", Config{OllamaBaseURL: "http://"}, Config.OllamaEnabled, false},
		{"ollama ok", Config{OllamaBaseURL: "http://localhost:11434/v1"}, Config.OllamaEnabled, true},
		{"openai missing prefix", Config{OpenAIAPIKey: "abc"}, Config.OpenAIEnabled, false},
		{"openai anthropic key", Config{OpenAIAPIKey: "sk-ant-x"}, Config.OpenAIEnabled, false},
		{"openai ok", Config{OpenAIAPIKey: "sk-proj-1"}, Config.OpenAIEnabled, true},
		{"anthropic wrong prefix", Config{AnthropicAPIKey: "sk-1"}, Config.AnthropicEnabled, false},
		{"anthropic ok", Config{AnthropicAPIKey: "sk-ant-1"}, Config.AnthropicEnabled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.want(tt.cfg))
		})
	}
}

func TestConfig_GetAIBackoffConfig_TestEnv(t *testing.T) {
	cfg := Config{AppEnv: "test", AIBackoffMaxElapsedTime: time.Hour}
	maxElapsed, initial, maxInterval, mult := cfg.GetAIBackoffConfig()
	assert.Equal(t, 5*time.Second, maxElapsed)
	assert.Equal(t, 100*time.Millisecond, initial)
	assert.Equal(t, time.Second, maxInterval)
	assert.Equal(t, 2.0, mult)

	cfg.AppEnv = "prod"
	maxElapsed, _, _, _ = cfg.GetAIBackoffConfig()
	assert.Equal(t, time.Hour, maxElapsed)
}

func clearEnvVars(t *testing.T) {
	envVars := []string{
		"APP_ENV", "PORT", "DB_URL", "REDIS_URL", "KAFKA_BROKERS", "ACTIVITY_TOPIC",
		"GEMINI_API_KEY", "GROQ_API_KEY", "OLLAMA_BASE_URL", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"TIKA_URL", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS",
		"SESSION_TTL", "SESSION_MAX", "FOLLOWUP_PROBABILITY", "QUESTION_COUNT",
		"MEMORY_MAX_MESSAGES", "API_USERNAME", "API_PASSWORD_HASH", "MAX_UPLOAD_MB",
		"CORS_ALLOW_ORIGINS", "RATE_LIMIT_PER_MIN", "EXECUTOR_MAX_RETRIES", "EXECUTOR_RETRY_DELAY",
		"DATA_RETENTION_DAYS", "CLEANUP_INTERVAL",
	}
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}
}
