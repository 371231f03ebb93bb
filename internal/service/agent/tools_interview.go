package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// InterviewAdvisor is the model-backed half of the interview simulator.
// usecase.InterviewService implements it.
type InterviewAdvisor interface {
	GenerateQuestions(ctx context.Context, resumeText, jobRole string, d domain.Difficulty, it domain.InterviewType) []domain.Question
	EvaluateResponse(ctx context.Context, question, response, jobRole, resumeContext string) domain.Evaluation
	GenerateAnalytics(ctx context.Context, turns []domain.Turn, resumeText, jobRole string) domain.Analytics
}

// InterviewTools exposes an InterviewAdvisor as stateless tools.
func InterviewTools(adv InterviewAdvisor) []Tool {
	return []Tool{
		{
			Name:        domain.ToolGenerateQuestions,
			Group:       GroupInterview,
			Description: "Generates interview questions based on resume and job role. Input: {resume_text, job_role, difficulty, interview_type}",
			PrimaryArg:  "job_role",
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				d, ok := domain.ParseDifficulty(argString(args, "difficulty", ""))
				if !ok {
					d = domain.DifficultyMedium
				}
				it := domain.ParseInterviewType(argString(args, "interview_type", ""))
				return adv.GenerateQuestions(ctx, argString(args, "resume_text", ""), argString(args, "job_role", ""), d, it), nil
			},
		},
		{
			Name:        domain.ToolEvaluateResponse,
			Group:       GroupInterview,
			Description: "Evaluates a candidate's response to an interview question. Input: {question, response, job_role, resume_context}",
			PrimaryArg:  "response",
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return adv.EvaluateResponse(ctx,
					argString(args, "question", ""),
					argString(args, "response", ""),
					argString(args, "job_role", ""),
					argString(args, "resume_context", "")), nil
			},
		},
		{
			Name:        domain.ToolGenerateAnalytics,
			Group:       GroupInterview,
			Description: "Generates comprehensive analytics for a completed interview. Input: {questions_and_responses, resume_text, job_role}",
			PrimaryArg:  "questions_and_responses",
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				turns, err := decodeTurns(args["questions_and_responses"])
				if err != nil {
					return nil, err
				}
				return adv.GenerateAnalytics(ctx, turns, argString(args, "resume_text", ""), argString(args, "job_role", "")), nil
			},
		},
	}
}

// decodeTurns accepts an array of turns or a JSON string holding one.
func decodeTurns(v any) ([]domain.Turn, error) {
	var raw []byte
	switch t := v.(type) {
	case nil:
		return []domain.Turn{}, nil
	case string:
		raw = []byte(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var turns []domain.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, fmt.Errorf("%w: questions_and_responses must be a JSON array: %w", domain.ErrInvalidArgument, err)
	}
	return turns, nil
}
