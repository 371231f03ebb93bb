// Package redisstore keeps interview sessions and conversation memory in
// Redis so several service replicas can share them.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

const (
	sessionKeyPrefix = "interview:session:"
	lockKeyPrefix    = "interview:lock:"
	defaultLockTTL   = 2 * time.Minute
	lockPollInterval = 25 * time.Millisecond
)

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionStore serializes updates per session with a local mutex plus a
// Redis SET NX PX lock, and stores sessions as JSON with a sliding TTL.
type SessionStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration

	mu    sync.Mutex
	local map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionStore returns a store whose keys expire after ttl of inactivity.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl, lockTTL: defaultLockTTL, local: map[string]*keyLock{}}
}

func (s *SessionStore) lockLocal(id string) func() {
	s.mu.Lock()
	l, ok := s.local[id]
	if !ok {
		l = &keyLock{}
		s.local[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.local, id)
		}
		s.mu.Unlock()
	}
}

func (s *SessionStore) lockRemote(ctx context.Context, id string) (func(), error) {
	key := lockKeyPrefix + id
	token := uuid.NewString()
	t := time.NewTicker(lockPollInterval)
	defer t.Stop()
	for {
		ok, err := s.rdb.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("op=redisstore.lock: %w", err)
		}
		if ok {
			return func() {
				// release with a fresh context so a cancelled request still unlocks
				rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(rctx, s.rdb, []string{key}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("op=redisstore.lock: %w", ctx.Err())
		case <-t.C:
		}
	}
}

func (s *SessionStore) load(ctx context.Context, id string) (*domain.InterviewSession, bool, error) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewInterviewSession(id), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var sess domain.InterviewSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}
	return &sess, true, nil
}

// Update runs fn under the session lock and saves the result when fn succeeds.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*domain.InterviewSession) error) error {
	if id == "" {
		return fmt.Errorf("op=redisstore.Update: %w: empty session id", domain.ErrInvalidArgument)
	}
	unlock := s.lockLocal(id)
	defer unlock()
	release, err := s.lockRemote(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	sess, _, err := s.load(ctx, id)
	if err != nil {
		return fmt.Errorf("op=redisstore.Update: %w", err)
	}
	if err := fn(sess); err != nil {
		return err
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("op=redisstore.Update: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+id, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("op=redisstore.Update: %w", err)
	}
	return nil
}

// Get returns the stored session, refreshing its TTL.
func (s *SessionStore) Get(ctx context.Context, id string) (domain.InterviewSession, bool, error) {
	sess, ok, err := s.load(ctx, id)
	if err != nil {
		return domain.InterviewSession{}, false, fmt.Errorf("op=redisstore.Get: %w", err)
	}
	if !ok {
		return domain.InterviewSession{}, false, nil
	}
	if s.ttl > 0 {
		_ = s.rdb.Expire(ctx, sessionKeyPrefix+id, s.ttl).Err()
	}
	return *sess, true, nil
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("op=redisstore.Delete: %w", err)
	}
	return nil
}
