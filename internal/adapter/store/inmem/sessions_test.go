package inmem

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func touch(t *testing.T, s *SessionStore, id string) {
	t.Helper()
	require.NoError(t, s.Update(context.Background(), id, func(sess *domain.InterviewSession) error {
		sess.JobRole = "role-" + id
		return nil
	}))
}

func TestUpdate_CreatesAndPersists(t *testing.T) {
	s := NewSessionStore(time.Hour, 10)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	touch(t, s, "a")
	got, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "role-a", got.JobRole)
	assert.Equal(t, domain.SessionUninitialized, got.State)
}

func TestUpdate_ErrorDiscardsChanges(t *testing.T) {
	s := NewSessionStore(time.Hour, 10)
	ctx := context.Background()
	touch(t, s, "a")

	boom := errors.New("boom")
	err := s.Update(ctx, "a", func(sess *domain.InterviewSession) error {
		sess.JobRole = "mutated"
		sess.Questions = append(sess.Questions, domain.Question{Text: "q"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, _, _ := s.Get(ctx, "a")
	assert.Equal(t, "role-a", got.JobRole)
	assert.Empty(t, got.Questions)
}

func TestUpdate_EmptyID(t *testing.T) {
	s := NewSessionStore(0, 0)
	err := s.Update(context.Background(), "", func(*domain.InterviewSession) error { return nil })
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestUpdate_SerializesPerSession(t *testing.T) {
	s := NewSessionStore(time.Hour, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "shared", func(sess *domain.InterviewSession) error {
				sess.CurrentIndex++
				return nil
			})
		}()
	}
	wg.Wait()

	got, ok, err := s.Get(ctx, "shared")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, got.CurrentIndex)
}

func TestUpdate_DifferentSessionsRunInParallel(t *testing.T) {
	s := NewSessionStore(time.Hour, 10)
	ctx := context.Background()
	inA := make(chan struct{})
	releaseA := make(chan struct{})

	go func() {
		_ = s.Update(ctx, "a", func(*domain.InterviewSession) error {
			close(inA)
			<-releaseA
			return nil
		})
	}()
	<-inA

	done := make(chan struct{})
	go func() {
		touch(t, s, "b")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("update of b blocked behind a")
	}
	close(releaseA)
}

func TestSweep_ExpiresIdleSessions(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000, 0)}
	s := NewSessionStore(time.Minute, 10, WithClock(clock.Now))
	touch(t, s, "old")
	clock.Advance(45 * time.Second)
	touch(t, s, "fresh")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	_, ok, _ := s.Get(context.Background(), "old")
	assert.False(t, ok)
	_, ok, _ = s.Get(context.Background(), "fresh")
	assert.True(t, ok)
}

func TestGet_ExpiredSessionIsGone(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000, 0)}
	s := NewSessionStore(time.Minute, 10, WithClock(clock.Now))
	touch(t, s, "a")
	clock.Advance(2 * time.Minute)
	_, ok, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000, 0)}
	s := NewSessionStore(0, 2, WithClock(clock.Now))
	ctx := context.Background()
	touch(t, s, "a")
	touch(t, s, "b")
	_, _, _ = s.Get(ctx, "a") // b is now least recently used
	touch(t, s, "c")

	assert.Equal(t, 2, s.Len())
	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "a")
	assert.True(t, ok)
	_, ok, _ = s.Get(ctx, "c")
	assert.True(t, ok)
}

func TestLRU_PinnedSessionSurvives(t *testing.T) {
	s := NewSessionStore(0, 1)
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.Update(ctx, "busy", func(sess *domain.InterviewSession) error {
			close(entered)
			<-release
			sess.JobRole = "kept"
			return nil
		})
		close(done)
	}()
	<-entered
	touch(t, s, "other")
	close(release)
	<-done

	got, ok, _ := s.Get(ctx, "busy")
	require.True(t, ok)
	assert.Equal(t, "kept", got.JobRole)
}

func TestDelete(t *testing.T) {
	s := NewSessionStore(time.Hour, 10)
	ctx := context.Background()
	touch(t, s, "a")
	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "missing"))
	_, ok, _ := s.Get(ctx, "a")
	assert.False(t, ok)
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	s := NewSessionStore(time.Hour, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunJanitor(ctx, time.Second)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestUpdate_FailedCreateLeavesNothing(t *testing.T) {
	s := NewSessionStore(time.Hour, 10)
	ctx := context.Background()
	err := s.Update(ctx, "ghost", func(*domain.InterviewSession) error { return domain.ErrNoActiveQuestion })
	require.ErrorIs(t, err, domain.ErrNoActiveQuestion)

	_, ok, err := s.Get(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}
