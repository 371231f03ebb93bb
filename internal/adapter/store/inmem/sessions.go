// Package inmem provides process-local session and memory stores.
package inmem

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

type sessionEntry struct {
	mu       sync.Mutex
	session  *domain.InterviewSession
	lastUsed time.Time
	elem     *list.Element
	refs     int
	// stored is false until an Update succeeds; such entries are dropped
	// when the last holder releases them.
	stored bool
}

// SessionStore keeps sessions in memory. Each id has its own lock, idle
// sessions expire after ttl and at most max sessions are kept, evicting the
// least recently used. Sessions with an Update in flight are never evicted.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	lru     *list.List // front is most recently used
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// Option configures a SessionStore.
type Option func(*SessionStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore returns a store; non-positive ttl or max disable that bound.
func NewSessionStore(ttl time.Duration, max int, opts ...Option) *SessionStore {
	s := &SessionStore{
		entries: map[string]*sessionEntry{},
		lru:     list.New(),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// acquire returns the entry for id, creating it if needed, and pins it.
func (s *SessionStore) acquire(id string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	e, ok := s.entries[id]
	if ok && s.expired(e, now) && e.refs == 0 {
		s.removeLocked(id, e)
		ok = false
	}
	if !ok {
		e = &sessionEntry{session: domain.NewInterviewSession(id)}
		e.elem = s.lru.PushFront(id)
		s.entries[id] = e
	} else {
		s.lru.MoveToFront(e.elem)
	}
	e.lastUsed = now
	e.refs++
	s.evictOverflowLocked()
	return e
}

func (s *SessionStore) release(id string, e *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.refs--
	e.lastUsed = s.now()
	if e.refs == 0 && !e.stored && s.entries[id] == e {
		s.removeLocked(id, e)
	}
}

func (s *SessionStore) expired(e *sessionEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastUsed) > s.ttl
}

func (s *SessionStore) removeLocked(id string, e *sessionEntry) {
	s.lru.Remove(e.elem)
	delete(s.entries, id)
}

func (s *SessionStore) evictOverflowLocked() {
	if s.max <= 0 {
		return
	}
	for el := s.lru.Back(); el != nil && len(s.entries) > s.max; {
		prev := el.Prev()
		id := el.Value.(string)
		if e := s.entries[id]; e.refs == 0 {
			s.removeLocked(id, e)
			slog.Debug("evicted least recently used interview session", slog.String("session_id", id))
		}
		el = prev
	}
}

// Update runs fn on a copy of the session under its lock and stores the copy
// when fn succeeds.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*domain.InterviewSession) error) error {
	if id == "" {
		return fmt.Errorf("op=inmem.Update: %w: empty session id", domain.ErrInvalidArgument)
	}
	e := s.acquire(id)
	defer s.release(id, e)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	working := e.session.Clone()
	if err := fn(working); err != nil {
		return err
	}
	e.session = working
	s.mu.Lock()
	e.stored = true
	s.mu.Unlock()
	return nil
}

// Get returns a copy of a live session.
func (s *SessionStore) Get(_ context.Context, id string) (domain.InterviewSession, bool, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.expired(e, s.now()) && e.refs == 0 {
		s.removeLocked(id, e)
		ok = false
	}
	ok = ok && e.stored
	if ok {
		s.lru.MoveToFront(e.elem)
		e.lastUsed = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return domain.InterviewSession{}, false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.session.Clone(), true, nil
}

// Delete drops a session; deleting an unknown id is not an error.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		s.removeLocked(id, e)
	}
	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes idle sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.entries {
		if e.refs == 0 && s.expired(e, now) {
			s.removeLocked(id, e)
			n++
		}
	}
	return n
}

// RunJanitor sweeps periodically until ctx is cancelled.
func (s *SessionStore) RunJanitor(ctx context.Context, every time.Duration) {
	if s.ttl <= 0 {
		return
	}
	if every <= 0 {
		every = s.ttl / 2
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
			if n := s.Sweep(); n > 0 {
				slog.Info("expired idle interview sessions", slog.Int("count", n))
			}
		}
	}
}
