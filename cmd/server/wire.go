package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	ai "github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai"
	anthropicai "github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai/anthropic"
	openaiai "github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai/openai"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai/real"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai/stub"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/store/inmem"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/store/redisstore"
	"github.com/fairyhunter13/ai-interview-agent/internal/app"
	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	"github.com/fairyhunter13/ai-interview-agent/internal/service/ratelimiter"
)

// memoryTTL expires idle conversation memory.
const memoryTTL = 7 * 24 * time.Hour

// infra holds the optional backends selected by configuration.
type infra struct {
	pool     *pgxpool.Pool
	rdb      *redis.Client
	producer *redpanda.Producer

	sessions domain.SessionStore
	memory   domain.MemoryStore
	archive  domain.ResultArchive
	activity domain.ActivityPublisher
}

// connectInfra connects every configured backend. Postgres and Redis are
// required once configured; Kafka is best-effort.
func connectInfra(ctx context.Context, cfg config.Config) (*infra, error) {
	in := &infra{}

	if cfg.DBURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		in.pool = pool
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			in.Close()
			return nil, err
		}
		in.archive = postgres.NewResultRepo(pool)
		if cfg.DataRetentionDays > 0 {
			cleanupSvc := postgres.NewCleanupService(postgres.PoolBeginner{Pool: pool}, cfg.DataRetentionDays)
			go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
			slog.Info("cleanup service started",
				slog.Int("retention_days", cfg.DataRetentionDays),
				slog.Duration("interval", cfg.CleanupInterval))
		}
		slog.Info("interview result archive enabled")
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("op=main.connectInfra: parse redis url: %w", err)
		}
		in.rdb = redis.NewClient(opts)
		if err := in.rdb.Ping(ctx).Err(); err != nil {
			in.Close()
			return nil, fmt.Errorf("op=main.connectInfra: redis ping: %w", err)
		}
		in.sessions = redisstore.NewSessionStore(in.rdb, cfg.SessionTTL)
		in.memory = redisstore.NewMemoryStore(in.rdb, memoryTTL)
		slog.Info("redis session and memory stores enabled")
	} else {
		sessions := inmem.NewSessionStore(cfg.SessionTTL, cfg.SessionMax)
		if cfg.SessionTTL > 0 {
			go sessions.RunJanitor(ctx, cfg.SessionTTL/4)
		}
		in.sessions = sessions
		memory := inmem.NewMemoryStore(inmem.WithMemoryTTL(memoryTTL))
		go memory.RunJanitor(ctx, time.Hour)
		in.memory = memory
	}

	if len(cfg.KafkaBrokers) > 0 {
		p, err := redpanda.NewProducer(ctx, cfg.KafkaBrokers, cfg.ActivityTopic)
		if err != nil {
			slog.Warn("activity events disabled", slog.Any("error", err))
		} else {
			in.producer = p
			in.activity = p
			slog.Info("activity events enabled", slog.String("topic", cfg.ActivityTopic))
		}
	}
	return in, nil
}

// Close releases every connected backend.
func (in *infra) Close() {
	if in.producer != nil {
		if err := in.producer.Close(); err != nil {
			slog.Error("failed to close producer", slog.Any("error", err))
		}
	}
	if in.rdb != nil {
		_ = in.rdb.Close()
	}
	if in.pool != nil {
		in.pool.Close()
	}
}

func (in *infra) dbPinger() app.Pinger {
	if in.pool == nil {
		return nil
	}
	return in.pool
}

func (in *infra) redisPinger() app.Pinger {
	if in.rdb == nil {
		return nil
	}
	return app.PingFunc(func(ctx context.Context) error { return in.rdb.Ping(ctx).Err() })
}

func (in *infra) kafkaPinger() app.Pinger {
	if in.producer == nil {
		return nil
	}
	return in.producer
}

// buildLLM assembles the enabled providers in priority order behind the
// fallback client, throttled per provider when Redis is available. Dev
// without any key gets the offline provider so every turn uses defaults.
func buildLLM(ctx context.Context, cfg config.Config, in *infra) (*ai.FallbackClient, error) {
	var providers []ai.Provider
	if cfg.GeminiEnabled() {
		providers = append(providers, real.NewGemini(cfg))
	}
	if cfg.GroqEnabled() {
		providers = append(providers, real.NewGroq(cfg))
	}
	if cfg.OllamaEnabled() {
		providers = append(providers, real.NewOllama(cfg))
	}
	if cfg.OpenAIEnabled() {
		providers = append(providers, openaiai.New(cfg))
	}
	if cfg.AnthropicEnabled() {
		providers = append(providers, anthropicai.New(cfg))
	}
	if len(providers) == 0 && cfg.IsDev() {
		slog.Warn("no llm provider configured; running offline with fallback questions and scores")
		providers = append(providers, stub.Echo{})
	}

	var opts []ai.FallbackOption
	if in.rdb != nil && cfg.ProviderRatePerMin > 0 {
		buckets := make(map[string]ratelimiter.BucketConfig, len(providers))
		for _, p := range providers {
			buckets[ai.ThrottleKey(p.Name())] = ratelimiter.NewBucketConfigFromPerMinute(cfg.ProviderRatePerMin)
		}
		var store ratelimiter.BucketStore
		if in.pool != nil {
			store = postgres.NewBucketRepo(in.pool)
		}
		limiter := ratelimiter.NewRedisLuaLimiter(in.rdb, store, buckets)
		if err := limiter.Warm(ctx); err != nil {
			slog.Warn("rate limiter warm-up failed", slog.Any("error", err))
		}
		opts = append(opts, ai.WithThrottle(limiter))
	}

	client, err := ai.NewFallbackClient(providers, opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("llm providers configured", slog.Any("providers", client.Providers()))
	return client, nil
}
