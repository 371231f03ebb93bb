package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// MemoryStore keeps each user's messages in a Redis list and preferences in
// a hash of JSON values.
type MemoryStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMemoryStore returns a store whose keys expire after ttl of inactivity.
func NewMemoryStore(rdb *redis.Client, ttl time.Duration) *MemoryStore {
	return &MemoryStore{rdb: rdb, ttl: ttl}
}

func messagesKey(userID string) string { return "memory:" + userID + ":messages" }
func prefsKey(userID string) string    { return "memory:" + userID + ":prefs" }

// Append pushes msgs and trims the list to the newest limit entries.
func (m *MemoryStore) Append(ctx context.Context, userID string, limit int, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	vals := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		b, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("op=redisstore.Append: %w", err)
		}
		vals = append(vals, b)
	}
	key := messagesKey(userID)
	_, err := m.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, vals...)
		if limit > 0 {
			p.LTrim(ctx, key, int64(-limit), -1)
		}
		if m.ttl > 0 {
			p.Expire(ctx, key, m.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("op=redisstore.Append: %w", err)
	}
	return nil
}

// Recent returns up to n newest messages, oldest first. n <= 0 returns all.
func (m *MemoryStore) Recent(ctx context.Context, userID string, n int) ([]domain.Message, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}
	raw, err := m.rdb.LRange(ctx, messagesKey(userID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("op=redisstore.Recent: %w", err)
	}
	out := make([]domain.Message, 0, len(raw))
	for _, r := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(r), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// SetPreference stores value JSON encoded under key.
func (m *MemoryStore) SetPreference(ctx context.Context, userID, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("op=redisstore.SetPreference: %w", err)
	}
	hk := prefsKey(userID)
	if err := m.rdb.HSet(ctx, hk, key, b).Err(); err != nil {
		return fmt.Errorf("op=redisstore.SetPreference: %w", err)
	}
	if m.ttl > 0 {
		_ = m.rdb.Expire(ctx, hk, m.ttl).Err()
	}
	return nil
}

// Preferences decodes every stored preference.
func (m *MemoryStore) Preferences(ctx context.Context, userID string) (map[string]any, error) {
	raw, err := m.rdb.HGetAll(ctx, prefsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("op=redisstore.Preferences: %w", err)
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal([]byte(v), &val); err != nil {
			val = v
		}
		out[k] = val
	}
	return out, nil
}
