package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// DefaultTimeRange is the analysis window used when a request names none.
const DefaultTimeRange = "24h"

// AnalysisMissedMeetings is the only analysis type with canned data.
const AnalysisMissedMeetings = "missed_meetings"

const insightsPrompt = `You are a productivity analytics AI. Generate a comprehensive daily productivity report.

Analyze:
- Email activity
- Meeting attendance
- Focus time utilization
- Task completion

Return JSON with:
- score (0-100)
- summary (brief overview)
- emails_sent (number)
- meetings_attended (number)
- focus_time (hours)
- achievements (top 3)
- improvements (3 suggestions)`

const focusTimePrompt = `You are a productivity scheduling AI. Suggest optimal focus time blocks.

Consider:
- User's working hours and preferences
- Typical meeting patterns
- Energy levels throughout the day
- Minimum 2-hour blocks for deep work

Return JSON with a 'suggestions' array of objects: {duration (hours), time, start, end, reason}.`

// PatternMeeting is one entry of the missed-meeting pattern analysis.
type PatternMeeting struct {
	Title     string   `json:"title"`
	Time      string   `json:"time"`
	Organizer string   `json:"organizer"`
	Attendees []string `json:"attendees"`
	Important bool     `json:"important"`
}

// PatternAnalysis is the result of AnalyzePatterns. Exactly one of
// MissedMeetings or Data is populated.
type PatternAnalysis struct {
	AnalysisType   string           `json:"analysis_type"`
	MissedMeetings []PatternMeeting `json:"missed_meetings,omitempty"`
	Count          *int             `json:"count,omitempty"`
	Data           map[string]any   `json:"data,omitzero"`
}

// ProductivityInsights is the daily report produced by GenerateInsights.
type ProductivityInsights struct {
	Score            float64  `json:"score"`
	Summary          string   `json:"summary"`
	EmailsSent       int      `json:"emails_sent"`
	MeetingsAttended int      `json:"meetings_attended"`
	FocusTime        float64  `json:"focus_time"`
	Achievements     []string `json:"achievements"`
	Improvements     []string `json:"improvements"`
}

// Validate rejects a report without a summary.
func (p *ProductivityInsights) Validate() error {
	if strings.TrimSpace(p.Summary) == "" {
		return fmt.Errorf("summary missing")
	}
	return nil
}

// FocusBlock is one suggested focus period.
type FocusBlock struct {
	Duration float64 `json:"duration"`
	Time     string  `json:"time"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Reason   string  `json:"reason"`
}

type focusReply struct {
	Suggestions []FocusBlock `json:"suggestions"`
}

func (f *focusReply) Validate() error {
	if len(f.Suggestions) == 0 {
		return fmt.Errorf("no suggestions")
	}
	return nil
}

// MissedMeeting is one entry reported by DetectMissedMeetings.
type MissedMeeting struct {
	MeetingID     string `json:"meeting_id"`
	Title         string `json:"title"`
	ScheduledTime string `json:"scheduled_time"`
	Organizer     string `json:"organizer"`
	Importance    string `json:"importance"`
}

// InsightsService serves the productivity analytics endpoints. Calendar and
// mailbox history are not integrated yet, so pattern and missed-meeting
// analyses return fixed sample data.
type InsightsService struct {
	LLM domain.LLMClient
}

// NewInsightsService constructs an InsightsService.
func NewInsightsService(llm domain.LLMClient) InsightsService {
	return InsightsService{LLM: llm}
}

// AnalyzePatterns runs the named pattern analysis.
func (s InsightsService) AnalyzePatterns(ctx domain.Context, userID, analysisType, timeRange string) PatternAnalysis {
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}
	obsctx.LoggerFromContext(ctx).Debug("analyze patterns",
		slog.String("user_id", userID),
		slog.String("analysis_type", analysisType),
		slog.String("time_range", timeRange))
	if analysisType != AnalysisMissedMeetings {
		return PatternAnalysis{AnalysisType: analysisType, Data: map[string]any{}}
	}
	meetings := []PatternMeeting{
		{
			Title:     "Team Standup",
			Time:      "9:00 AM",
			Organizer: "team@company.com",
			Attendees: []string{"alice@company.com", "bob@company.com"},
			Important: false,
		},
		{
			Title:     "Client Review Meeting",
			Time:      "2:00 PM",
			Organizer: "client@external.com",
			Attendees: []string{"client@external.com", "manager@company.com"},
			Important: true,
		},
	}
	n := len(meetings)
	return PatternAnalysis{AnalysisType: analysisType, MissedMeetings: meetings, Count: &n}
}

// FallbackInsights is the report served when the model is unavailable.
func FallbackInsights() ProductivityInsights {
	return ProductivityInsights{
		Score:            75,
		Summary:          "Good productivity day with balanced focus and collaboration time.",
		EmailsSent:       12,
		MeetingsAttended: 4,
		FocusTime:        5.5,
		Achievements: []string{
			"Completed project milestone",
			"Responded to all urgent emails",
			"Attended important client meeting",
		},
		Improvements: []string{
			"Reduce meeting time by 30 minutes",
			"Block more focus time in the morning",
			"Respond to emails in batches",
		},
	}
}

// GenerateInsights asks the model for a productivity report.
func (s InsightsService) GenerateInsights(ctx domain.Context, userID, timeRange string) ProductivityInsights {
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}
	fallback := FallbackInsights()
	if s.LLM == nil {
		return fallback
	}
	out, ok := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      insightsPrompt,
		User:        fmt.Sprintf("Generate insights for user %s for the past %s", userID, timeRange),
		Temperature: 0.7,
		Operation:   "generate_insights",
	}, fallback)
	if ok {
		out.Score = domain.ClampScore(out.Score)
		if out.Achievements == nil {
			out.Achievements = []string{}
		}
		if out.Improvements == nil {
			out.Improvements = []string{}
		}
	}
	return out
}

// FallbackFocusBlocks are the suggestions served when the model is unavailable.
func FallbackFocusBlocks() []FocusBlock {
	return []FocusBlock{
		{
			Duration: 2,
			Time:     "tomorrow morning",
			Start:    "09:00",
			End:      "11:00",
			Reason:   "Morning hours typically have fewer meetings and higher energy levels",
		},
		{
			Duration: 2,
			Time:     "tomorrow afternoon",
			Start:    "14:00",
			End:      "16:00",
			Reason:   "Post-lunch period with minimal scheduled meetings",
		},
	}
}

// SuggestFocusTime asks the model for focus blocks matching preferences.
func (s InsightsService) SuggestFocusTime(ctx domain.Context, userID string, preferences map[string]any) []FocusBlock {
	fallback := focusReply{Suggestions: FallbackFocusBlocks()}
	if s.LLM == nil {
		return fallback.Suggestions
	}
	if preferences == nil {
		preferences = map[string]any{}
	}
	prefs, err := json.Marshal(preferences)
	if err != nil {
		return fallback.Suggestions
	}
	out, _ := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      focusTimePrompt,
		User:        fmt.Sprintf("Suggest focus time for user %s with preferences: %s", userID, prefs),
		Temperature: 0.7,
		Operation:   "suggest_focus_time",
	}, fallback)
	return out.Suggestions
}

// DetectMissedMeetings lists meetings the user did not attend.
func (s InsightsService) DetectMissedMeetings(ctx domain.Context, userID string) []MissedMeeting {
	obsctx.LoggerFromContext(ctx).Debug("detect missed meetings", slog.String("user_id", userID))
	return []MissedMeeting{{
		MeetingID:     "meet_123",
		Title:         "Weekly Team Sync",
		ScheduledTime: "2024-01-14T10:00:00Z",
		Organizer:     "manager@company.com",
		Importance:    "medium",
	}}
}
