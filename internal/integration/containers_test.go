//go:build integration

// Integration tests run the storage adapters against real containers.
// Run with: go test -tags integration ./internal/integration/...

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/store/redisstore"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port nat.Port) string {
	t.Helper()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	p, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return host + ":" + p.Port()
}

func Test_Postgres_ResultArchive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "app"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(90 * time.Second),
	}, "5432/tcp")
	dsn := "postgres://postgres:postgres@" + addr + "/app?sslmode=disable"

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.Eventually(t, func() bool { return pool.Ping(ctx) == nil }, 30*time.Second, time.Second)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	// Schema creation is idempotent.
	require.NoError(t, postgres.EnsureSchema(ctx, pool))

	repo := postgres.NewResultRepo(pool)
	res := domain.InterviewResult{
		SessionID:       "it-session",
		JobRole:         "Backend Engineer",
		InterviewType:   domain.InterviewTechnical,
		FinalDifficulty: domain.DifficultyHard,
		Score:           82.5,
		ReadinessScore:  78,
		Analytics:       domain.Analytics{Score: 82.5, Feedback: "solid", ReadinessScore: 78},
		CompletedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.Save(ctx, res))

	got, err := repo.Get(ctx, "it-session")
	require.NoError(t, err)
	assert.Equal(t, res.JobRole, got.JobRole)
	assert.Equal(t, res.FinalDifficulty, got.FinalDifficulty)
	assert.InDelta(t, res.Score, got.Score, 0.001)
	assert.Equal(t, "solid", got.Analytics.Feedback)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	cleanup := postgres.NewCleanupService(postgres.PoolBeginner{Pool: pool}, 30)
	require.NoError(t, cleanup.CleanupOldData(ctx))
	_, err = repo.Get(ctx, "it-session")
	require.NoError(t, err, "recent results survive retention cleanup")
}

func Test_Redis_Stores(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}, "6379/tcp")
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.Eventually(t, func() bool { return rdb.Ping(ctx).Err() == nil }, 30*time.Second, time.Second)

	sessions := redisstore.NewSessionStore(rdb, time.Hour)
	require.NoError(t, sessions.Update(ctx, "s1", func(s *domain.InterviewSession) error {
		s.JobRole = "Data Engineer"
		return nil
	}))
	got, ok, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Data Engineer", got.JobRole)
	require.NoError(t, sessions.Delete(ctx, "s1"))
	_, ok, err = sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	mem := redisstore.NewMemoryStore(rdb, time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, mem.Append(ctx, "u1", 3, domain.Message{Role: "user", Content: string(rune('a' + i))}))
	}
	msgs, err := mem.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "c", msgs[0].Content)
	assert.Equal(t, "e", msgs[2].Content)
}

func Test_Tika_Extract(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "apache/tika:2.9.0.0",
		ExposedPorts: []string{"9998/tcp"},
		WaitingFor:   wait.ForHTTP("/version").WithPort("9998/tcp").WithStartupTimeout(60 * time.Second),
	}, "9998/tcp")
	base := "http://" + addr

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Get(base + "/version")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	doc, err := tika.New(base).Extract(ctx, "resume.txt", []byte("Jane Doe\nSkills: Go, Kafka"))
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Kafka")
	assert.GreaterOrEqual(t, doc.Pages, 1)
}
