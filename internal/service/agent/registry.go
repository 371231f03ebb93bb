// Package agent turns natural-language commands into plans and dispatches
// them to a closed set of email, calendar and interview tools.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// Tool groups.
const (
	GroupEmail     = "email"
	GroupCalendar  = "calendar"
	GroupInterview = "interview"
)

// Handler executes a tool with decoded arguments. The result is returned
// verbatim when it is a string and JSON encoded otherwise.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is one registered capability.
type Tool struct {
	Name        domain.ToolName
	Group       string
	Description string
	// PrimaryArg receives plain-text input that is not a JSON object.
	PrimaryArg string
	Handler    Handler
}

// ToolError reports a failed tool invocation.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	err     error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
}

func (e *ToolError) Unwrap() error { return e.err }

// Registry maps tool names to handlers. It is immutable after construction
// and safe for concurrent use.
type Registry struct {
	tools map[domain.ToolName]Tool
	order []domain.ToolName
}

// NewRegistry registers tools in order. Unknown names, duplicates and
// missing handlers are rejected.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[domain.ToolName]Tool, len(tools))}
	for _, t := range tools {
		if !t.Name.Known() {
			return nil, fmt.Errorf("op=agent.NewRegistry: %w: %q", domain.ErrUnknownTool, t.Name)
		}
		if _, dup := r.tools[t.Name]; dup {
			return nil, fmt.Errorf("op=agent.NewRegistry: %w: duplicate tool %q", domain.ErrConflict, t.Name)
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("op=agent.NewRegistry: %w: tool %q has no handler", domain.ErrInvalidArgument, t.Name)
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

// Lookup finds a tool by exact name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[domain.ToolName(name)]
	return t, ok
}

// Tools lists registered tools in registration order, filtered by group
// when groups are given.
func (r *Registry) Tools(groups ...string) []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, n := range r.order {
		t := r.tools[n]
		if len(groups) > 0 && !contains(groups, t.Group) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// Invoke runs name with a string input. A JSON object input is decoded into
// arguments; anything else becomes the tool's primary argument.
func (r *Registry) Invoke(ctx context.Context, name, input string) (string, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("op=agent.Invoke: %w: %q", domain.ErrUnknownTool, name)
	}
	return r.call(ctx, t, ParseInput(input, t.PrimaryArg))
}

// InvokeArgs runs name with already decoded arguments.
func (r *Registry) InvokeArgs(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("op=agent.InvokeArgs: %w: %q", domain.ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return r.call(ctx, t, args)
}

func (r *Registry) call(ctx context.Context, t Tool, args map[string]any) (string, error) {
	res, err := t.Handler(ctx, args)
	if err != nil {
		return "", &ToolError{Tool: string(t.Name), Message: err.Error(), Code: "EXECUTION_ERROR", err: err}
	}
	if s, ok := res.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return "", &ToolError{Tool: string(t.Name), Message: err.Error(), Code: "ENCODING_ERROR", err: err}
	}
	return string(b), nil
}

// ParseInput coerces a tool input string into arguments.
func ParseInput(input, primary string) map[string]any {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var args map[string]any
		if err := json.Unmarshal([]byte(trimmed), &args); err == nil && args != nil {
			return args
		}
	}
	if primary == "" {
		return map[string]any{}
	}
	return map[string]any{primary: input}
}

func argString(args map[string]any, key, def string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return def
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func argInt(args map[string]any, key string, def int) int {
	switch t := args[key].(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

func argBool(args map[string]any, key string, def bool) bool {
	switch t := args[key].(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

// argList accepts a JSON array or a comma separated string.
func argList(args map[string]any, key string) []string {
	var raw []string
	switch t := args[key].(type) {
	case []any:
		for _, v := range t {
			raw = append(raw, fmt.Sprint(v))
		}
	case []string:
		raw = t
	case string:
		raw = strings.Split(t, ",")
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
