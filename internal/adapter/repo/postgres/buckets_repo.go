package postgres

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-agent/internal/service/ratelimiter"
)

// BucketRepo persists rate limiter buckets in table rate_limit_buckets.
type BucketRepo struct{ Pool PgxPool }

// NewBucketRepo constructs a BucketRepo with the given pool.
func NewBucketRepo(p PgxPool) *BucketRepo { return &BucketRepo{Pool: p} }

// SaveBucket upserts one bucket snapshot.
func (r *BucketRepo) SaveBucket(ctx context.Context, b ratelimiter.BucketSnapshot) error {
	tracer := otel.Tracer("repo.rate_limit_buckets")
	ctx, span := tracer.Start(ctx, "rate_limit_buckets.Save")
	defer span.End()
	q := `INSERT INTO rate_limit_buckets (bucket_key, capacity, refill_rate, tokens, last_refill, updated_at)
	VALUES ($1,$2,$3,$4,$5,now())
	ON CONFLICT (bucket_key)
	DO UPDATE SET capacity=EXCLUDED.capacity, refill_rate=EXCLUDED.refill_rate, tokens=EXCLUDED.tokens,
		last_refill=EXCLUDED.last_refill, updated_at=now()`
	if _, err := r.Pool.Exec(ctx, q, b.Key, b.Capacity, b.RefillRate, b.Tokens, b.LastRefill.UTC()); err != nil {
		return fmt.Errorf("op=bucket.save: %w", err)
	}
	return nil
}

// LoadBuckets returns every persisted bucket.
func (r *BucketRepo) LoadBuckets(ctx context.Context) ([]ratelimiter.BucketSnapshot, error) {
	tracer := otel.Tracer("repo.rate_limit_buckets")
	ctx, span := tracer.Start(ctx, "rate_limit_buckets.Load")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT bucket_key, capacity, refill_rate, tokens, last_refill FROM rate_limit_buckets`)
	if err != nil {
		return nil, fmt.Errorf("op=bucket.load: %w", err)
	}
	defer rows.Close()
	var out []ratelimiter.BucketSnapshot
	for rows.Next() {
		var b ratelimiter.BucketSnapshot
		if err := rows.Scan(&b.Key, &b.Capacity, &b.RefillRate, &b.Tokens, &b.LastRefill); err != nil {
			return nil, fmt.Errorf("op=bucket.load: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=bucket.load: %w", err)
	}
	return out, nil
}
