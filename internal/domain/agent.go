package domain

import "strings"

// RiskLevel labels how consequential a plan step is.
type RiskLevel string

// Risk levels in ascending severity.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Severity orders risk levels; unknown labels rank as low.
func (r RiskLevel) Severity() int {
	switch RiskLevel(strings.ToLower(string(r))) {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// MaxRisk returns the most severe of levels, low for none.
func MaxRisk(levels ...RiskLevel) RiskLevel {
	out := RiskLow
	for _, l := range levels {
		if l.Severity() > out.Severity() {
			out = RiskLevel(strings.ToLower(string(l)))
		}
	}
	return out
}

// ToolName identifies a registered tool. The set is closed.
type ToolName string

// Tool names known to the agent.
const (
	ToolSendEmail              ToolName = "send_email"
	ToolDraftEmail             ToolName = "draft_email"
	ToolSummarizeEmail         ToolName = "summarize_email"
	ToolDetectTone             ToolName = "detect_tone"
	ToolScheduleMeeting        ToolName = "schedule_meeting"
	ToolCheckCalendarConflicts ToolName = "check_calendar_conflicts"
	ToolCancelMeeting          ToolName = "cancel_meeting"
	ToolRescheduleMeeting      ToolName = "reschedule_meeting"
	ToolGenerateQuestions      ToolName = "generate_interview_questions"
	ToolEvaluateResponse       ToolName = "evaluate_interview_response"
	ToolGenerateAnalytics      ToolName = "generate_interview_analytics"
)

// KnownTools lists every tool name in catalog order.
var KnownTools = []ToolName{
	ToolSendEmail, ToolDraftEmail, ToolSummarizeEmail, ToolDetectTone,
	ToolScheduleMeeting, ToolCheckCalendarConflicts, ToolCancelMeeting, ToolRescheduleMeeting,
	ToolGenerateQuestions, ToolEvaluateResponse, ToolGenerateAnalytics,
}

// Known reports whether n belongs to the closed tool set.
func (n ToolName) Known() bool {
	for _, k := range KnownTools {
		if k == n {
			return true
		}
	}
	return false
}

// PlanStep is one tool invocation proposed by the planner.
type PlanStep struct {
	ToolName   string         `json:"tool_name"`
	ToolInput  map[string]any `json:"tool_input"`
	Reasoning  string         `json:"reasoning"`
	RiskLevel  RiskLevel      `json:"risk_level"`
	Confidence float64        `json:"confidence"`
}

// Plan is an ordered list of steps with aggregate risk metadata.
type Plan struct {
	Steps                []PlanStep `json:"steps"`
	OriginalCommand      string     `json:"original_command"`
	OverallRisk          RiskLevel  `json:"overall_risk"`
	RequiresConfirmation bool       `json:"requires_confirmation"`
	// EstimatedDuration is in seconds when the planner supplies one.
	EstimatedDuration *int `json:"estimated_duration,omitempty"`
}

// Assess fills step defaults and derives the aggregate risk fields.
func (p *Plan) Assess() {
	levels := make([]RiskLevel, 0, len(p.Steps))
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.RiskLevel == "" {
			s.RiskLevel = RiskLow
		}
		if s.Confidence == 0 {
			s.Confidence = 0.8
		}
		if s.ToolInput == nil {
			s.ToolInput = map[string]any{}
		}
		levels = append(levels, s.RiskLevel)
	}
	if p.Steps == nil {
		p.Steps = []PlanStep{}
	}
	p.OverallRisk = MaxRisk(levels...)
	p.RequiresConfirmation = p.OverallRisk.Severity() >= RiskMedium.Severity()
}

// ExecutionResult is the outcome of one executor run.
type ExecutionResult struct {
	Output        string  `json:"output"`
	Success       bool    `json:"success"`
	Error         string  `json:"error,omitempty"`
	ExecutionTime float64 `json:"execution_time"`
	Attempts      int     `json:"attempts"`
	Tool          string  `json:"tool,omitempty"`
}
