package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

const plannerPrompt = `You are an expert AI planner for an automation system.

Available tools:
%s

Your task is to break down user requests into actionable steps.

For each step:
1. Choose the appropriate tool
2. Specify exact parameters
3. Explain your reasoning
4. Assess risk level (low/medium/high)
5. Provide confidence score (0.0-1.0)

Risk Assessment:
- HIGH: Sending emails, deleting data, financial actions
- MEDIUM: Scheduling meetings, modifying existing data
- LOW: Reading data, drafting content, generating reports

Return ONLY a JSON object with this format:
{"steps": [{"tool_name": "...", "tool_input": {...}, "reasoning": "...", "risk_level": "low|medium|high", "confidence": 0.0}], "estimated_duration": seconds}`

// Planner asks the model for a structured plan.
type Planner struct {
	llm      domain.LLMClient
	registry *Registry
}

// NewPlanner builds a planner advertising every tool in registry.
func NewPlanner(llm domain.LLMClient, registry *Registry) *Planner {
	return &Planner{llm: llm, registry: registry}
}

func (p *Planner) catalog() string {
	groups := []struct{ key, label string }{
		{GroupEmail, "Email"},
		{GroupCalendar, "Calendar"},
		{GroupInterview, "Interview"},
	}
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		tools := p.registry.Tools(g.key)
		if len(tools) == 0 {
			continue
		}
		names := make([]string, len(tools))
		for i, t := range tools {
			names[i] = string(t.Name)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", g.label, strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n")
}

// CreatePlan plans command. planCtx, when non-empty, is appended to the user
// prompt. A reply that cannot be decoded is an upstream error.
func (p *Planner) CreatePlan(ctx context.Context, command string, planCtx map[string]any) (domain.Plan, error) {
	user := command
	if len(planCtx) > 0 {
		b, err := json.Marshal(planCtx)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("op=agent.CreatePlan: %w", err)
		}
		user += "\n\nUser Context:\n" + string(b)
	}
	raw, err := p.llm.Chat(ctx, domain.ChatRequest{
		System:    fmt.Sprintf(plannerPrompt, p.catalog()),
		User:      user,
		Operation: "create_plan",
	})
	if err != nil {
		return domain.Plan{}, fmt.Errorf("op=agent.CreatePlan: %w", err)
	}
	plan, err := ai.DecodeJSON[domain.Plan](raw)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("op=agent.CreatePlan: %w: %w", domain.ErrUpstream, err)
	}
	if plan.OriginalCommand == "" {
		plan.OriginalCommand = command
	}
	for _, s := range plan.Steps {
		if _, ok := p.registry.Lookup(s.ToolName); !ok {
			obsctx.LoggerFromContext(ctx).Warn("plan references unknown tool", slog.String("tool", s.ToolName))
		}
	}
	plan.Assess()
	return plan, nil
}
