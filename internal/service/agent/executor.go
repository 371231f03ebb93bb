package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/service/memory"
)

const executorPrompt = `You are an intelligent automation agent.

Available tools:
%s

When you need to use a tool, respond with JSON in this format:
{"action": "tool_name", "action_input": "input_string"}

Otherwise, provide a direct answer.`

// Executor runs a command through the model and dispatches at most one
// email or calendar tool call.
type Executor struct {
	llm      domain.LLMClient
	registry *Registry
	memory   *memory.Service
	retry    config.RetryConfig
}

// NewExecutor returns an executor retrying failed attempts per retry.
func NewExecutor(llm domain.LLMClient, registry *Registry, mem *memory.Service, retry config.RetryConfig) *Executor {
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	return &Executor{llm: llm, registry: registry, memory: mem, retry: retry}
}

func (e *Executor) automationTools() []Tool {
	return e.registry.Tools(GroupEmail, GroupCalendar)
}

func (e *Executor) systemPrompt() string {
	tools := e.automationTools()
	lines := make([]string, len(tools))
	for i, t := range tools {
		lines[i] = fmt.Sprintf("- %s: %s", t.Name, t.Description)
	}
	return fmt.Sprintf(executorPrompt, strings.Join(lines, "\n"))
}

type toolCall struct {
	Action      string          `json:"action"`
	ActionInput json.RawMessage `json:"action_input"`
}

// parseToolCall extracts {"action","action_input"} from a reply.
func parseToolCall(reply string) (toolCall, bool) {
	if !strings.Contains(reply, "{") || !strings.Contains(reply, "action") {
		return toolCall{}, false
	}
	var tc toolCall
	if err := json.Unmarshal([]byte(ai.CleanJSONResponse(reply)), &tc); err != nil || tc.Action == "" {
		return toolCall{}, false
	}
	return tc, true
}

// input renders action_input as the registry's string input.
func (tc toolCall) input() string {
	raw := strings.TrimSpace(string(tc.ActionInput))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(tc.ActionInput, &s); err == nil {
		return s
	}
	return raw
}

func (e *Executor) isAutomationTool(name string) bool {
	t, ok := e.registry.Lookup(name)
	return ok && (t.Group == GroupEmail || t.Group == GroupCalendar)
}

func (e *Executor) attempt(ctx context.Context, command string) (string, string, error) {
	reply, err := e.llm.Chat(ctx, domain.ChatRequest{
		System:    e.systemPrompt(),
		User:      command,
		Operation: "execute_command",
	})
	if err != nil {
		return "", "", err
	}
	tc, ok := parseToolCall(reply)
	if !ok || !e.isAutomationTool(tc.Action) {
		return reply, "", nil
	}
	result, err := e.registry.Invoke(ctx, tc.Action, tc.input())
	observability.ObserveTool(tc.Action, err)
	if err != nil {
		return "", tc.Action, err
	}
	return fmt.Sprintf("Tool '%s' executed successfully. Result: %s", tc.Action, result), tc.Action, nil
}

// Execute runs command for userID. Model and tool failures retry the whole
// attempt with a constant pause; exhaustion yields an unsuccessful result
// rather than an error.
func (e *Executor) Execute(ctx context.Context, command, userID string) domain.ExecutionResult {
	lg := obsctx.LoggerFromContext(ctx)
	attempts := 0
	var (
		output  string
		tool    string
		elapsed time.Duration
	)
	op := func() error {
		attempts++
		start := time.Now()
		out, name, err := e.attempt(ctx, command)
		elapsed = time.Since(start)
		if err != nil {
			lg.Warn("executor attempt failed",
				slog.Int("attempt", attempts),
				slog.String("tool", name),
				slog.Any("error", err))
			return err
		}
		output, tool = out, name
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.retry.Delay), uint64(e.retry.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		observability.ObserveExecution(false, attempts)
		return domain.ExecutionResult{
			Output:   fmt.Sprintf("Failed after %d attempts: %s", attempts, err.Error()),
			Success:  false,
			Error:    err.Error(),
			Attempts: attempts,
		}
	}
	observability.ObserveExecution(true, attempts)

	if e.memory != nil {
		if err := e.memory.AddInteraction(ctx, userID, command, output); err != nil {
			lg.Warn("failed to record executor interaction", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	return domain.ExecutionResult{
		Output:        output,
		Success:       true,
		ExecutionTime: elapsed.Seconds(),
		Attempts:      attempts,
		Tool:          tool,
	}
}
