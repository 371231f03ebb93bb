package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// ResultRepo archives completed interviews in table interview_results.
type ResultRepo struct{ Pool PgxPool }

// NewResultRepo constructs a ResultRepo with the given pool.
func NewResultRepo(p PgxPool) *ResultRepo { return &ResultRepo{Pool: p} }

// Save inserts or replaces the archived result of a session.
func (r *ResultRepo) Save(ctx domain.Context, res domain.InterviewResult) error {
	tracer := otel.Tracer("repo.interview_results")
	ctx, span := tracer.Start(ctx, "interview_results.Save")
	defer span.End()
	analytics, err := json.Marshal(res.Analytics)
	if err != nil {
		return fmt.Errorf("op=result.save: %w", err)
	}
	q := `INSERT INTO interview_results (session_id, job_role, interview_type, final_difficulty, score, readiness_score, analytics, completed_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	ON CONFLICT (session_id)
	DO UPDATE SET job_role=EXCLUDED.job_role, interview_type=EXCLUDED.interview_type, final_difficulty=EXCLUDED.final_difficulty,
		score=EXCLUDED.score, readiness_score=EXCLUDED.readiness_score, analytics=EXCLUDED.analytics, completed_at=EXCLUDED.completed_at`
	_, err = r.Pool.Exec(ctx, q, res.SessionID, res.JobRole, string(res.InterviewType), string(res.FinalDifficulty),
		res.Score, res.ReadinessScore, analytics, res.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("op=result.save: %w", err)
	}
	return nil
}

// Get loads the archived result of a session.
func (r *ResultRepo) Get(ctx domain.Context, sessionID string) (domain.InterviewResult, error) {
	tracer := otel.Tracer("repo.interview_results")
	ctx, span := tracer.Start(ctx, "interview_results.Get")
	defer span.End()
	q := `SELECT session_id, job_role, interview_type, final_difficulty, score, readiness_score, analytics, completed_at
	FROM interview_results WHERE session_id=$1`
	var (
		res       domain.InterviewResult
		it, diff  string
		analytics []byte
	)
	err := r.Pool.QueryRow(ctx, q, sessionID).Scan(&res.SessionID, &res.JobRole, &it, &diff,
		&res.Score, &res.ReadinessScore, &analytics, &res.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.InterviewResult{}, fmt.Errorf("op=result.get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.InterviewResult{}, fmt.Errorf("op=result.get: %w", err)
	}
	if err := json.Unmarshal(analytics, &res.Analytics); err != nil {
		return domain.InterviewResult{}, fmt.Errorf("op=result.get: %w", err)
	}
	res.InterviewType = domain.InterviewType(it)
	res.FinalDifficulty = domain.Difficulty(diff)
	return res, nil
}
