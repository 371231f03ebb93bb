// Package ratelimiter implements a Redis token bucket used to budget calls
// to each LLM provider across service replicas.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a call costing cost tokens may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// BucketConfig sizes one token bucket.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64 // tokens per second
}

// NewBucketConfigFromPerMinute returns a bucket holding perMinute tokens that
// refills fully once a minute. Non-positive values disable the bucket.
func NewBucketConfigFromPerMinute(perMinute int) BucketConfig {
	if perMinute <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{
		Capacity:   int64(perMinute),
		RefillRate: float64(perMinute) / 60.0,
	}
}

// BucketSnapshot is the persisted state of one bucket.
type BucketSnapshot struct {
	Key        string
	Capacity   int64
	RefillRate float64
	Tokens     float64
	LastRefill time.Time
}

// BucketStore persists bucket state so a Redis flush does not reset budgets.
// The postgres adapter implements it.
type BucketStore interface {
	SaveBucket(ctx context.Context, b BucketSnapshot) error
	LoadBuckets(ctx context.Context) ([]BucketSnapshot, error)
}

// RedisLuaLimiter runs the bucket arithmetic atomically inside Redis.
type RedisLuaLimiter struct {
	redis   *redis.Client
	store   BucketStore
	buckets map[string]BucketConfig
	script  *redis.Script
	mu      sync.RWMutex
	now     func() time.Time
}

// NewRedisLuaLimiter returns nil when rdb is nil; a nil limiter allows everything.
func NewRedisLuaLimiter(rdb *redis.Client, store BucketStore, buckets map[string]BucketConfig) *RedisLuaLimiter {
	if rdb == nil {
		return nil
	}
	if buckets == nil {
		buckets = map[string]BucketConfig{}
	}
	return &RedisLuaLimiter{
		redis:   rdb,
		store:   store,
		buckets: buckets,
		script:  redis.NewScript(luaTokenBucketScript),
		now:     time.Now,
	}
}

const luaTokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local tokens = capacity
local last_refill = now

local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] ~= false and data[1] ~= nil then
  tokens = tonumber(data[1])
end
if data[2] ~= false and data[2] ~= nil then
  last_refill = tonumber(data[2])
end

local delta = now - last_refill
if delta < 0 then
  delta = 0
end

tokens = math.min(capacity, tokens + delta * refill_rate)

local allowed = 0
local retry_after = 0

if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
elseif refill_rate > 0 then
  retry_after = math.ceil((cost - tokens) / refill_rate)
end

redis.call("HSET", key, "tokens", tostring(tokens), "last_refill", tostring(now))
redis.call("EXPIRE", key, math.ceil(capacity / refill_rate) * 2 + 60)

return { allowed, tostring(tokens), retry_after }
`

func redisKey(key string) string { return "rate:" + key }

// Allow consumes cost tokens from key's bucket. Keys without a bucket are
// always allowed. Redis errors fail open and are returned for logging.
func (l *RedisLuaLimiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l == nil || l.redis == nil {
		return true, 0, nil
	}
	l.mu.RLock()
	cfg, ok := l.buckets[key]
	l.mu.RUnlock()
	if !ok || cfg.Capacity <= 0 || cfg.RefillRate <= 0 {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	now := l.now()
	nowSec := float64(now.UnixNano()) / 1e9
	res, err := l.script.Run(ctx, l.redis, []string{redisKey(key)}, cfg.Capacity, cfg.RefillRate, nowSec, cost).Result()
	if err != nil {
		slog.Error("redis rate limiter script error", slog.String("key", key), slog.Any("error", err))
		return true, 0, fmt.Errorf("op=ratelimiter.Allow: %w", err)
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) < 3 {
		slog.Error("redis rate limiter unexpected script result", slog.String("key", key), slog.Any("result", res))
		return true, 0, nil
	}

	allowed := toInt64(vals[0]) == 1
	tokens := toFloat64(vals[1])
	retryAfter := time.Duration(toInt64(vals[2])) * time.Second

	if l.store != nil {
		snap := BucketSnapshot{Key: key, Capacity: cfg.Capacity, RefillRate: cfg.RefillRate, Tokens: tokens, LastRefill: now}
		if err := l.store.SaveBucket(ctx, snap); err != nil {
			slog.Warn("failed to persist rate limit bucket", slog.String("key", key), slog.Any("error", err))
		}
	}
	return allowed, retryAfter, nil
}

// Warm seeds Redis from persisted buckets that Redis no longer holds.
func (l *RedisLuaLimiter) Warm(ctx context.Context) error {
	if l == nil || l.store == nil || l.redis == nil {
		return nil
	}
	snaps, err := l.store.LoadBuckets(ctx)
	if err != nil {
		return fmt.Errorf("op=ratelimiter.Warm: %w", err)
	}
	for _, s := range snaps {
		lastRefill := float64(s.LastRefill.UnixNano()) / 1e9
		ok, err := l.redis.HSetNX(ctx, redisKey(s.Key), "tokens", s.Tokens).Result()
		if err != nil {
			return fmt.Errorf("op=ratelimiter.Warm: %w", err)
		}
		if ok {
			if err := l.redis.HSet(ctx, redisKey(s.Key), "last_refill", lastRefill).Err(); err != nil {
				return fmt.Errorf("op=ratelimiter.Warm: %w", err)
			}
		}
	}
	return nil
}

// SetBucketConfig updates or creates the bucket for key. Safe for concurrent use.
func (l *RedisLuaLimiter) SetBucketConfig(key string, cfg BucketConfig) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[key] = cfg
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		var f float64
		if _, err := fmt.Sscan(t, &f); err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
