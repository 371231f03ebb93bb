// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`
	// DBURL enables the interview result archive when non-empty.
	DBURL string `env:"DB_URL"`
	// RedisURL switches session and memory storage to Redis when non-empty.
	RedisURL string `env:"REDIS_URL"`
	// KafkaBrokers enables activity event publishing when non-empty.
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	ActivityTopic string   `env:"ACTIVITY_TOPIC" envDefault:"activity-events"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiBaseURL   string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GroqAPIKey      string `env:"GROQ_API_KEY"`
	GroqBaseURL     string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel       string `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	OllamaBaseURL   string `env:"OLLAMA_BASE_URL"`
	OllamaModel     string `env:"OLLAMA_MODEL" envDefault:"llama3.2"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`
	// LLMTemperature is the default sampling temperature for every provider.
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	// LLMTimeout bounds a single provider HTTP call.
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	// ProviderRatePerMin is the per-provider token bucket size when Redis is configured; 0 disables it.
	ProviderRatePerMin int `env:"PROVIDER_RATE_PER_MIN" envDefault:"0"`

	// TikaURL specifies the base URL for the Apache Tika server used for text extraction
	TikaURL         string `env:"TIKA_URL" envDefault:"http://tika:9998"`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-interview-agent"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	// SessionTTL evicts interview sessions idle for longer than this.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	// SessionMax caps live in-memory sessions; least recently used go first.
	SessionMax          int     `env:"SESSION_MAX" envDefault:"1000"`
	FollowupProbability float64 `env:"FOLLOWUP_PROBABILITY" envDefault:"0.3"`
	QuestionCount       int     `env:"QUESTION_COUNT" envDefault:"5"`
	QuestionBankPath    string  `env:"QUESTION_BANK_PATH"`
	MemoryMaxMessages   int     `env:"MEMORY_MAX_MESSAGES" envDefault:"20"`
	// ResumeTokenBudget truncates resume text fed to prompts.
	ResumeTokenBudget int `env:"RESUME_TOKEN_BUDGET" envDefault:"3000"`

	// APIUsername and APIPasswordHash guard side-effecting agent routes when both are set.
	APIUsername     string `env:"API_USERNAME"`
	APIPasswordHash string `env:"API_PASSWORD_HASH"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	// RequestTimeout bounds a whole request; interview calls chain several model calls.
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"110s"`
	DataRetentionDays int           `env:"DATA_RETENTION_DAYS" envDefault:"90"`
	CleanupInterval   time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`
	// AI Backoff Configuration
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"60s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"1s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"10s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`
	// Executor Retry Configuration
	ExecutorMaxRetries int           `env:"EXECUTOR_MAX_RETRIES" envDefault:"2"`
	ExecutorRetryDelay time.Duration `env:"EXECUTOR_RETRY_DELAY" envDefault:"1s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// validate rejects interview and store settings the services cannot run with.
func (c Config) validate() error {
	switch {
	case c.FollowupProbability < 0 || c.FollowupProbability > 1:
		return fmt.Errorf("FOLLOWUP_PROBABILITY must be within [0,1], got %v", c.FollowupProbability)
	case c.QuestionCount <= 0:
		return fmt.Errorf("QUESTION_COUNT must be positive, got %d", c.QuestionCount)
	case c.SessionMax <= 0:
		return fmt.Errorf("SESSION_MAX must be positive, got %d", c.SessionMax)
	case c.MemoryMaxMessages <= 0:
		return fmt.Errorf("MEMORY_MAX_MESSAGES must be positive, got %d", c.MemoryMaxMessages)
	case c.ExecutorMaxRetries < 0:
		return fmt.Errorf("EXECUTOR_MAX_RETRIES must not be negative, got %d", c.ExecutorMaxRetries)
	}
	return nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// GetAIBackoffConfig returns backoff configuration appropriate for the current environment.
// In test environments, uses much shorter timeouts for faster test execution.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 5 * time.Second, 100 * time.Millisecond, 1 * time.Second, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}

// SMTPConfigured reports whether all SMTP settings needed for real delivery are present.
func (c Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort > 0 && c.SMTPUser != "" && c.SMTPPass != ""
}

// AuthEnabled reports whether the Basic-Auth guard is active.
func (c Config) AuthEnabled() bool { return c.APIUsername != "" && c.APIPasswordHash != "" }

// GeminiEnabled rejects empty keys and the sample placeholder.
func (c Config) GeminiEnabled() bool {
	k := strings.TrimSpace(c.GeminiAPIKey)
	return k != "" && k != "your-gemini-api-key-here"
}

// GroqEnabled rejects empty keys and placeholders.
func (c Config) GroqEnabled() bool {
	k := strings.TrimSpace(c.GroqAPIKey)
	return k != "" && !strings.HasPrefix(k, "your-")
}

// OllamaEnabled requires a parseable http(s) base URL.
func (c Config) OllamaEnabled() bool {
	if strings.TrimSpace(c.OllamaBaseURL) == "" {
		return false
	}
	u, err := url.Parse(c.OllamaBaseURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// OpenAIEnabled requires an sk- prefixed key. Anthropic keys are excluded.
func (c Config) OpenAIEnabled() bool {
	k := strings.TrimSpace(c.OpenAIAPIKey)
	return strings.HasPrefix(k, "sk-") && !strings.HasPrefix(k, "sk-ant-")
}

// AnthropicEnabled requires an sk-ant- prefixed key.
func (c Config) AnthropicEnabled() bool {
	return strings.HasPrefix(strings.TrimSpace(c.AnthropicAPIKey), "sk-ant-")
}
