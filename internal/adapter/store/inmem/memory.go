package inmem

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

type userMemory struct {
	messages []domain.Message
	prefs    map[string]any
	lastUsed time.Time
}

// MemoryStore keeps per-user conversation buffers in memory. Users idle for
// longer than ttl are dropped on access and by Sweep. Reads never create
// an entry.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*userMemory
	ttl   time.Duration
	now   func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryTTL expires users idle for longer than ttl; non-positive keeps
// them forever.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(m *MemoryStore) { m.ttl = ttl }
}

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{users: map[string]*userMemory{}, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *MemoryStore) expired(u *userMemory, now time.Time) bool {
	return m.ttl > 0 && now.Sub(u.lastUsed) > m.ttl
}

// lookupLocked returns the live entry for id and touches it. Callers hold m.mu.
func (m *MemoryStore) lookupLocked(id string) (*userMemory, bool) {
	u, ok := m.users[id]
	if !ok {
		return nil, false
	}
	now := m.now()
	if m.expired(u, now) {
		delete(m.users, id)
		return nil, false
	}
	u.lastUsed = now
	return u, true
}

func (m *MemoryStore) upsertLocked(id string) *userMemory {
	if u, ok := m.lookupLocked(id); ok {
		return u
	}
	u := &userMemory{prefs: map[string]any{}, lastUsed: m.now()}
	m.users[id] = u
	return u
}

// Append adds msgs and keeps only the newest limit entries.
func (m *MemoryStore) Append(_ context.Context, userID string, limit int, msgs ...domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.upsertLocked(userID)
	u.messages = append(u.messages, msgs...)
	if limit > 0 && len(u.messages) > limit {
		u.messages = append([]domain.Message(nil), u.messages[len(u.messages)-limit:]...)
	}
	return nil
}

// Recent returns up to n newest messages, oldest first. n <= 0 returns all.
func (m *MemoryStore) Recent(_ context.Context, userID string, n int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.lookupLocked(userID)
	if !ok {
		return []domain.Message{}, nil
	}
	msgs := u.messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return append([]domain.Message{}, msgs...), nil
}

// SetPreference stores one preference value.
func (m *MemoryStore) SetPreference(_ context.Context, userID, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(userID).prefs[key] = value
	return nil
}

// Preferences returns a copy of the user's preferences.
func (m *MemoryStore) Preferences(_ context.Context, userID string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.lookupLocked(userID)
	if !ok {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(u.prefs))
	for k, v := range u.prefs {
		out[k] = v
	}
	return out, nil
}

// Len reports how many users are held, including expired ones not yet swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// Sweep drops expired users and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, u := range m.users {
		if m.expired(u, now) {
			delete(m.users, id)
			n++
		}
	}
	return n
}

// RunJanitor sweeps periodically until ctx is cancelled.
func (m *MemoryStore) RunJanitor(ctx context.Context, every time.Duration) {
	if m.ttl <= 0 {
		return
	}
	if every <= 0 {
		every = m.ttl / 2
	}
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				slog.Info("expired idle conversation memory", slog.Int("count", n))
			}
		}
	}
}
