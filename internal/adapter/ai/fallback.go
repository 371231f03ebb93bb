package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// Provider is one configured chat-completion backend.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req domain.ChatRequest) (string, error)
}

// Throttle gates provider calls; ratelimiter.RedisLuaLimiter satisfies it.
type Throttle interface {
	Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error)
}

// ThrottleKey is the limiter bucket key for a provider.
func ThrottleKey(provider string) string { return "llm:" + provider }

// FallbackClient tries providers in order and returns the first success.
type FallbackClient struct {
	providers []Provider
	breakers  map[string]*CircuitBreaker
	throttle  Throttle
}

// FallbackOption configures a FallbackClient.
type FallbackOption func(*FallbackClient)

// WithThrottle skips providers whose token bucket is empty.
func WithThrottle(t Throttle) FallbackOption {
	return func(c *FallbackClient) { c.throttle = t }
}

// NewFallbackClient requires at least one provider and unique names.
func NewFallbackClient(providers []Provider, opts ...FallbackOption) (*FallbackClient, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("op=ai.NewFallbackClient: %w", domain.ErrNoProviders)
	}
	c := &FallbackClient{breakers: make(map[string]*CircuitBreaker, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		name := p.Name()
		if _, dup := c.breakers[name]; dup {
			return nil, fmt.Errorf("op=ai.NewFallbackClient: %w: duplicate provider %q", domain.ErrInvalidArgument, name)
		}
		c.breakers[name] = NewCircuitBreaker(name)
		c.providers = append(c.providers, p)
	}
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("op=ai.NewFallbackClient: %w", domain.ErrNoProviders)
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Providers lists provider names in default order.
func (c *FallbackClient) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// BreakerStats reports every provider's circuit breaker.
func (c *FallbackClient) BreakerStats() []BreakerStats {
	out := make([]BreakerStats, 0, len(c.providers))
	for _, p := range c.providers {
		out = append(out, c.breakers[p.Name()].Stats())
	}
	return out
}

func (c *FallbackClient) order(preferred string) []Provider {
	preferred = strings.ToLower(strings.TrimSpace(preferred))
	if preferred == "" {
		return c.providers
	}
	ordered := make([]Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if p.Name() == preferred {
			ordered = append(ordered, p)
		}
	}
	for _, p := range c.providers {
		if p.Name() != preferred {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// Chat implements domain.LLMClient. When every provider fails the returned
// error wraps domain.ErrUpstream and the last provider error.
func (c *FallbackClient) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	lg := obsctx.LoggerFromContext(ctx)
	op := req.Operation
	if op == "" {
		op = "chat"
	}

	var lastErr error
	for i, p := range c.order(req.Preferred) {
		name := p.Name()
		cb := c.breakers[name]
		if !cb.ShouldAttempt() {
			lg.Debug("skipping llm provider with open circuit", slog.String("provider", name))
			lastErr = fmt.Errorf("%s: circuit open", name)
			continue
		}
		if c.throttle != nil {
			allowed, retryAfter, err := c.throttle.Allow(ctx, ThrottleKey(name), 1)
			if err == nil && !allowed {
				lg.Info("skipping throttled llm provider",
					slog.String("provider", name),
					slog.Duration("retry_after", retryAfter))
				lastErr = fmt.Errorf("%s: %w", name, domain.ErrUpstreamRateLimit)
				continue
			}
		}

		start := time.Now()
		out, err := p.Chat(ctx, req)
		if err == nil && strings.TrimSpace(out) == "" {
			err = errors.New("empty completion")
		}
		observability.ObserveAIRequest(name, op, time.Since(start), err)
		if err != nil {
			cb.RecordFailure()
			lg.Warn("llm provider failed",
				slog.String("provider", name),
				slog.String("operation", op),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err))
			lastErr = fmt.Errorf("%s: %w", name, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		cb.RecordSuccess()
		if i > 0 {
			observability.LLMFallbacksTotal.WithLabelValues(name).Inc()
		}
		lg.Debug("llm provider succeeded",
			slog.String("provider", name),
			slog.String("operation", op),
			slog.Duration("duration", time.Since(start)))
		return out, nil
	}
	return "", fmt.Errorf("op=ai.FallbackClient.Chat: %w: all providers failed: %w", domain.ErrUpstream, lastErr)
}
