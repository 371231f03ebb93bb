package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx is the subset of pgx.Tx used by cleanup.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner opens cleanup transactions.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// PoolBeginner adapts *pgxpool.Pool to Beginner.
type PoolBeginner struct{ Pool *pgxpool.Pool }

// Begin starts a transaction on the pool.
func (p PoolBeginner) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return pgxTx{tx}, nil
}

type pgxTx struct{ pgx.Tx }

// CleanupService handles data retention and cleanup
type CleanupService struct {
	DB            Beginner
	RetentionDays int
	now           func() time.Time
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db Beginner, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90 // default 90 days
	}
	return &CleanupService{DB: db, RetentionDays: retentionDays, now: time.Now}
}

// CleanupOldData removes archived interviews and idle rate limit buckets
// older than the retention period.
func (s *CleanupService) CleanupOldData(ctx context.Context) error {
	cutoff := s.now().UTC().AddDate(0, 0, -s.RetentionDays)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("op=cleanup.begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results, err := tx.Exec(ctx, `DELETE FROM interview_results WHERE completed_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.results: %w", err)
	}
	buckets, err := tx.Exec(ctx, `DELETE FROM rate_limit_buckets WHERE updated_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.buckets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=cleanup.commit: %w", err)
	}

	slog.Info("data cleanup completed",
		slog.Int64("deleted_results", results.RowsAffected()),
		slog.Int64("deleted_buckets", buckets.RowsAffected()),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

// RunPeriodic starts a periodic cleanup job
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour // daily by default
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.CleanupOldData(ctx); err != nil {
		slog.Error("initial cleanup failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup service stopping")
			return
		case <-ticker.C:
			if err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}
