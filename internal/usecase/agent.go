package usecase

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/service/agent"
	"github.com/fairyhunter13/ai-interview-agent/internal/service/memory"
)

// Command processing constants.
const (
	commandHistoryLimit  = 5
	awaitingConfirmation = "Awaiting confirmation for high-risk action"
	confirmationMessage  = "This action requires your confirmation before proceeding."

	StatusSuccess              = "success"
	StatusAwaitingConfirmation = "awaiting_confirmation"
)

// CommandPlanner turns a command into a risk-assessed plan.
type CommandPlanner interface {
	CreatePlan(ctx domain.Context, command string, planCtx map[string]any) (domain.Plan, error)
}

// CommandExecutor runs a command through the tool-calling loop.
type CommandExecutor interface {
	Execute(ctx domain.Context, command, userID string) domain.ExecutionResult
}

// CommandResult is the executor output returned to the client.
type CommandResult struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// CommandOutcome is the response of ProcessCommand. Plans that need
// confirmation carry RiskLevel and Message; executed plans carry Result.
type CommandOutcome struct {
	Status               string           `json:"status"`
	Plan                 domain.Plan      `json:"plan"`
	RequiresConfirmation bool             `json:"requires_confirmation,omitempty"`
	RiskLevel            domain.RiskLevel `json:"risk_level,omitempty"`
	Message              string           `json:"message,omitempty"`
	Result               *CommandResult   `json:"result,omitempty"`
	ExecutionTime        *float64         `json:"execution_time,omitempty"`
	Success              *bool            `json:"success,omitempty"`
}

// AgentService plans and executes natural language commands and exposes
// the email tools directly.
type AgentService struct {
	Planner  CommandPlanner
	Executor CommandExecutor
	Email    *agent.EmailTools
	Memory   *memory.Service
	Activity domain.ActivityPublisher
}

// NewAgentService constructs an AgentService. pub may be nil.
func NewAgentService(planner CommandPlanner, executor CommandExecutor, email *agent.EmailTools, mem *memory.Service, pub domain.ActivityPublisher) *AgentService {
	return &AgentService{Planner: planner, Executor: executor, Email: email, Memory: mem, Activity: pub}
}

// ProcessCommand plans command with the user's recent history and
// preferences. Plans at medium risk or above are returned for confirmation
// without running; others are executed.
func (s *AgentService) ProcessCommand(ctx domain.Context, userID, command string, reqCtx map[string]any) (CommandOutcome, error) {
	if strings.TrimSpace(userID) == "" {
		return CommandOutcome{}, fmt.Errorf("op=usecase.ProcessCommand: %w: user_id required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(command) == "" {
		return CommandOutcome{}, fmt.Errorf("op=usecase.ProcessCommand: %w: command required", domain.ErrInvalidArgument)
	}
	ctx, span := observability.StartSpan(ctx, "agent.ProcessCommand", attribute.String("user_id", userID))
	defer span.End()
	lg := obsctx.LoggerFromContext(ctx).With(slog.String("user_id", userID))

	planCtx := make(map[string]any, len(reqCtx)+2)
	maps.Copy(planCtx, reqCtx)
	history, err := s.Memory.Recent(ctx, userID, commandHistoryLimit)
	if err != nil {
		return CommandOutcome{}, fmt.Errorf("op=usecase.ProcessCommand: %w", err)
	}
	prefs, err := s.Memory.Preferences(ctx, userID)
	if err != nil {
		return CommandOutcome{}, fmt.Errorf("op=usecase.ProcessCommand: %w", err)
	}
	if history == nil {
		history = []domain.Message{}
	}
	planCtx["conversation_history"] = history
	planCtx["user_preferences"] = prefs

	plan, err := s.Planner.CreatePlan(ctx, command, planCtx)
	if err != nil {
		observability.RecordSpanError(span, err)
		return CommandOutcome{}, fmt.Errorf("op=usecase.ProcessCommand: %w", err)
	}
	lg.Info("plan created",
		slog.Int("steps", len(plan.Steps)),
		slog.String("risk", string(plan.OverallRisk)),
		slog.Bool("requires_confirmation", plan.RequiresConfirmation))

	if plan.RequiresConfirmation {
		if err := s.Memory.AddInteraction(ctx, userID, command, awaitingConfirmation); err != nil {
			lg.Warn("failed to record pending command", slog.Any("error", err))
		}
		emitActivity(ctx, s.Activity, domain.ActivityCommandProcessed, userID, map[string]any{
			"status":     StatusAwaitingConfirmation,
			"risk_level": string(plan.OverallRisk),
		})
		return CommandOutcome{
			Status:               StatusAwaitingConfirmation,
			Plan:                 plan,
			RequiresConfirmation: true,
			RiskLevel:            plan.OverallRisk,
			Message:              confirmationMessage,
		}, nil
	}

	res := s.Executor.Execute(ctx, command, userID)
	// The executor records successful runs itself.
	if !res.Success {
		if err := s.Memory.AddInteraction(ctx, userID, command, res.Output); err != nil {
			lg.Warn("failed to record failed command", slog.Any("error", err))
		}
	}
	lg.Info("command executed", slog.Bool("success", res.Success), slog.Int("attempts", res.Attempts))

	data := map[string]any{}
	if res.Tool != "" {
		data["tool"] = res.Tool
	}
	emitActivity(ctx, s.Activity, domain.ActivityCommandProcessed, userID, map[string]any{
		"status":   StatusSuccess,
		"success":  res.Success,
		"attempts": res.Attempts,
	})
	execTime, success := res.ExecutionTime, res.Success
	return CommandOutcome{
		Status:        StatusSuccess,
		Plan:          plan,
		Result:        &CommandResult{Message: res.Output, Data: data},
		ExecutionTime: &execTime,
		Success:       &success,
	}, nil
}

// DraftEmail drafts an email body in tone, defaulting to professional.
func (s *AgentService) DraftEmail(ctx domain.Context, userID, recipient, subject, details, tone string) (agent.EmailDraft, error) {
	draft, err := s.Email.Draft(ctx, recipient, subject, details, tone)
	if err != nil {
		return agent.EmailDraft{}, fmt.Errorf("op=usecase.DraftEmail: %w", err)
	}
	emitActivity(ctx, s.Activity, domain.ActivityEmailDrafted, userID, map[string]any{
		"recipient": recipient,
		"tone":      draft.Tone,
	})
	return draft, nil
}

// SendEmail delivers an email. Delivery failures are reported in the result.
func (s *AgentService) SendEmail(ctx domain.Context, recipient, subject, body string) agent.SendResult {
	res := s.Email.Send(ctx, recipient, subject, body)
	emitActivity(ctx, s.Activity, domain.ActivityEmailSent, recipient, map[string]any{
		"subject": subject,
		"success": res.Success,
	})
	return res
}

// MemoryView returns the user's recent history, summary and preferences.
func (s *AgentService) MemoryView(ctx domain.Context, userID string) (memory.View, error) {
	v, err := s.Memory.Describe(ctx, userID)
	if err != nil {
		return memory.View{}, fmt.Errorf("op=usecase.MemoryView: %w", err)
	}
	return v, nil
}
