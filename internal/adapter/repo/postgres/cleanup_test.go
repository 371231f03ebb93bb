package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	execErr    error
	commitErr  error
	statements []string
	args       []any
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.statements = append(t.statements, sql)
	t.args = append(t.args, args...)
	if t.execErr != nil {
		return pgconn.CommandTag{}, t.execErr
	}
	return pgconn.NewCommandTag("DELETE 2"), nil
}
func (t *fakeTx) Commit(_ context.Context) error   { return t.commitErr }
func (t *fakeTx) Rollback(_ context.Context) error { t.rolledBack = true; return nil }

type fakeBeginner struct {
	beginErr error
	tx       *fakeTx
}

func (b *fakeBeginner) Begin(_ context.Context) (Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestCleanupService_CleanupOldData(t *testing.T) {
	tx := &fakeTx{}
	svc := NewCleanupService(&fakeBeginner{tx: tx}, 30)
	svc.now = func() time.Time { return time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, svc.CleanupOldData(context.Background()))
	require.Len(t, tx.statements, 2)
	assert.Contains(t, tx.statements[0], "DELETE FROM interview_results")
	assert.Contains(t, tx.statements[1], "DELETE FROM rate_limit_buckets")
	cutoff := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []any{cutoff, cutoff}, tx.args)
}

func TestCleanupService_DefaultRetention(t *testing.T) {
	assert.Equal(t, 90, NewCleanupService(&fakeBeginner{}, 0).RetentionDays)
}

func TestCleanupService_Errors(t *testing.T) {
	svc := NewCleanupService(&fakeBeginner{beginErr: errors.New("begin")}, 1)
	require.ErrorContains(t, svc.CleanupOldData(context.Background()), "op=cleanup.begin")

	tx := &fakeTx{execErr: errors.New("locked")}
	require.ErrorContains(t, NewCleanupService(&fakeBeginner{tx: tx}, 1).CleanupOldData(context.Background()), "op=cleanup.results")
	assert.True(t, tx.rolledBack)

	tx = &fakeTx{commitErr: errors.New("commit")}
	require.ErrorContains(t, NewCleanupService(&fakeBeginner{tx: tx}, 1).CleanupOldData(context.Background()), "op=cleanup.commit")
}

func TestCleanupService_RunPeriodicStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tx := &fakeTx{}
	done := make(chan struct{})
	go func() {
		NewCleanupService(&fakeBeginner{tx: tx}, 1).RunPeriodic(ctx, time.Hour)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPeriodic did not stop")
	}
}
