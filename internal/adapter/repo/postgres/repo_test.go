package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	"github.com/fairyhunter13/ai-interview-agent/internal/service/ratelimiter"
)

type mockPool struct{ mock.Mock }

func (m *mockPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	a := m.Called(ctx, sql, args)
	return a.Get(0).(pgconn.CommandTag), a.Error(1)
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.Called(ctx, sql, args).Get(0).(pgx.Row)
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	a := m.Called(ctx, sql, args)
	rows, _ := a.Get(0).(pgx.Rows)
	return rows, a.Error(1)
}

type rowStub struct{ scan func(dest ...any) error }

func (r rowStub) Scan(dest ...any) error { return r.scan(dest...) }

// rowsStub serves fixed rows of scan functions.
type rowsStub struct {
	rows []func(dest ...any) error
	i    int
	err  error
}

func (r *rowsStub) Close()                                       {}
func (r *rowsStub) Err() error                                   { return r.err }
func (r *rowsStub) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *rowsStub) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *rowsStub) Next() bool                                   { r.i++; return r.i <= len(r.rows) }
func (r *rowsStub) Scan(dest ...any) error                       { return r.rows[r.i-1](dest...) }
func (r *rowsStub) Values() ([]any, error)                       { return nil, nil }
func (r *rowsStub) RawValues() [][]byte                          { return nil }
func (r *rowsStub) Conn() *pgx.Conn                              { return nil }

var completedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleResult() domain.InterviewResult {
	return domain.InterviewResult{
		SessionID:       "s1",
		JobRole:         "Backend Engineer",
		InterviewType:   domain.InterviewTechnical,
		FinalDifficulty: domain.DifficultyHard,
		Score:           82,
		ReadinessScore:  78,
		Analytics:       domain.Analytics{Score: 82, ReadinessScore: 78, AreasOfImprovement: []string{"Go"}},
		CompletedAt:     completedAt,
	}
}

func TestEnsureSchema(t *testing.T) {
	pool := &mockPool{}
	pool.On("Exec", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS interview_results") &&
			assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS rate_limit_buckets")
	}), mock.Anything).Return(pgconn.CommandTag{}, nil).Once()
	require.NoError(t, postgres.EnsureSchema(context.Background(), pool))

	failing := &mockPool{}
	failing.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, assert.AnError)
	err := postgres.EnsureSchema(context.Background(), failing)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "op=postgres.EnsureSchema")
}

func TestResultRepo_Save(t *testing.T) {
	pool := &mockPool{}
	res := sampleResult()
	pool.On("Exec", mock.Anything, mock.Anything, mock.MatchedBy(func(args []any) bool {
		if len(args) != 8 {
			return false
		}
		var a domain.Analytics
		raw, _ := args[6].([]byte)
		return args[0] == "s1" && args[2] == "technical" && args[3] == "hard" &&
			json.Unmarshal(raw, &a) == nil && a.Score == 82
	})).Return(pgconn.CommandTag{}, nil).Once()
	require.NoError(t, postgres.NewResultRepo(pool).Save(context.Background(), res))
	pool.AssertExpectations(t)
}

func TestResultRepo_SaveError(t *testing.T) {
	pool := &mockPool{}
	pool.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, assert.AnError)
	err := postgres.NewResultRepo(pool).Save(context.Background(), sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=result.save")
}

func TestResultRepo_Get(t *testing.T) {
	want := sampleResult()
	raw, err := json.Marshal(want.Analytics)
	require.NoError(t, err)
	pool := &mockPool{}
	pool.On("QueryRow", mock.Anything, mock.Anything, []any{"s1"}).Return(rowStub{scan: func(dest ...any) error {
		*(dest[0].(*string)) = want.SessionID
		*(dest[1].(*string)) = want.JobRole
		*(dest[2].(*string)) = "technical"
		*(dest[3].(*string)) = "hard"
		*(dest[4].(*float64)) = want.Score
		*(dest[5].(*float64)) = want.ReadinessScore
		*(dest[6].(*[]byte)) = raw
		*(dest[7].(*time.Time)) = completedAt
		return nil
	}})

	got, err := postgres.NewResultRepo(pool).Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, domain.InterviewTechnical, got.InterviewType)
	assert.Equal(t, domain.DifficultyHard, got.FinalDifficulty)
	assert.Equal(t, []string{"Go"}, got.Analytics.AreasOfImprovement)
	assert.Equal(t, completedAt, got.CompletedAt)
}

func TestResultRepo_GetMissing(t *testing.T) {
	pool := &mockPool{}
	pool.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(rowStub{scan: func(...any) error { return pgx.ErrNoRows }}).Once()
	_, err := postgres.NewResultRepo(pool).Get(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	pool.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(rowStub{scan: func(...any) error { return assert.AnError }}).Once()
	_, err = postgres.NewResultRepo(pool).Get(context.Background(), "nope")
	require.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestBucketRepo_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	snap := ratelimiter.BucketSnapshot{Key: "llm:openai", Capacity: 60, RefillRate: 1, Tokens: 12.5, LastRefill: completedAt}

	pool := &mockPool{}
	pool.On("Exec", mock.Anything, mock.Anything, []any{"llm:openai", int64(60), 1.0, 12.5, completedAt}).
		Return(pgconn.CommandTag{}, nil).Once()
	repo := postgres.NewBucketRepo(pool)
	require.NoError(t, repo.SaveBucket(ctx, snap))

	pool.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(&rowsStub{rows: []func(dest ...any) error{
		func(dest ...any) error {
			*(dest[0].(*string)) = snap.Key
			*(dest[1].(*int64)) = snap.Capacity
			*(dest[2].(*float64)) = snap.RefillRate
			*(dest[3].(*float64)) = snap.Tokens
			*(dest[4].(*time.Time)) = snap.LastRefill
			return nil
		},
	}}, nil).Once()
	got, err := repo.LoadBuckets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ratelimiter.BucketSnapshot{snap}, got)
	pool.AssertExpectations(t)
}

func TestBucketRepo_LoadErrors(t *testing.T) {
	ctx := context.Background()
	pool := &mockPool{}
	pool.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
	_, err := postgres.NewBucketRepo(pool).LoadBuckets(ctx)
	require.ErrorIs(t, err, assert.AnError)

	pool.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(&rowsStub{err: errors.New("conn reset")}, nil).Once()
	_, err = postgres.NewBucketRepo(pool).LoadBuckets(ctx)
	require.ErrorContains(t, err, "conn reset")
}

func TestNewPool_InvalidDSN(t *testing.T) {
	_, err := postgres.NewPool(context.Background(), "://bad")
	require.Error(t, err)
}
