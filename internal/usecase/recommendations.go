package usecase

import (
	"fmt"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	"github.com/fairyhunter13/ai-interview-agent/internal/service/memory"
)

// Thresholds of the proactive rules.
const (
	FollowupAfterDays   = 3
	PendingEmailBacklog = 5
	BusyMeetingDay      = 3
)

// SentEmail is one outgoing email the client reports for follow-up checks.
type SentEmail struct {
	Subject   string  `json:"subject"`
	Recipient string  `json:"recipient"`
	Status    string  `json:"status"`
	DaysSince float64 `json:"days_since"`
}

// ActivityContext is the client-supplied activity snapshot.
type ActivityContext struct {
	SentEmails    []SentEmail `json:"sent_emails"`
	PendingEmails int         `json:"pending_emails"`
	MeetingsToday int         `json:"meetings_today"`
}

// Recommendation is one proactive suggestion; Command can be replayed
// through ProcessCommand.
type Recommendation struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Command     string `json:"command"`
	Reasoning   string `json:"reasoning"`
}

// Recommendations is the response of Recommend.
type Recommendations struct {
	Recommendations []Recommendation `json:"recommendations"`
	UserContext     map[string]any   `json:"user_context"`
}

// RecommendationService applies the proactive rules to an activity snapshot.
type RecommendationService struct {
	Memory   *memory.Service
	Activity domain.ActivityPublisher
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(mem *memory.Service, pub domain.ActivityPublisher) RecommendationService {
	return RecommendationService{Memory: mem, Activity: pub}
}

// Recommend evaluates the rules in order: follow-ups, backlog, focus time.
func (s RecommendationService) Recommend(ctx domain.Context, userID string, actx ActivityContext) (Recommendations, error) {
	prefs := map[string]any{}
	if s.Memory != nil {
		p, err := s.Memory.Preferences(ctx, userID)
		if err != nil {
			return Recommendations{}, fmt.Errorf("op=usecase.Recommend: %w", err)
		}
		prefs = p
	}
	recs := BuildRecommendations(actx)
	if len(recs) > 0 {
		emitActivity(ctx, s.Activity, domain.ActivityRecommendationGenerated, userID, map[string]any{
			"count": len(recs),
		})
	}
	return Recommendations{Recommendations: recs, UserContext: prefs}, nil
}

// BuildRecommendations evaluates the proactive rules without side effects.
func BuildRecommendations(actx ActivityContext) []Recommendation {
	recs := []Recommendation{}
	for _, e := range actx.SentEmails {
		if e.Status != "sent" || e.DaysSince <= FollowupAfterDays {
			continue
		}
		recs = append(recs, Recommendation{
			Type:        "follow_up",
			Priority:    "high",
			Title:       "Follow up: " + e.Subject,
			Description: fmt.Sprintf("No reply received for %d days on '%s'", FollowupAfterDays, e.Subject),
			Command:     fmt.Sprintf("Draft follow-up email to %s regarding %s", e.Recipient, e.Subject),
			Reasoning:   "Standard follow-up protocol (3+ days no reply)",
		})
	}
	if actx.PendingEmails > PendingEmailBacklog {
		recs = append(recs, Recommendation{
			Type:        "catch_up",
			Priority:    "high",
			Title:       "Multiple pending emails",
			Description: fmt.Sprintf("You have %d emails waiting for response", actx.PendingEmails),
			Command:     "Draft responses to pending emails",
			Reasoning:   "High email backlog detected",
		})
	}
	if actx.MeetingsToday > BusyMeetingDay {
		recs = append(recs, Recommendation{
			Type:        "focus_time",
			Priority:    "medium",
			Title:       "Schedule focus time",
			Description: "You have many meetings today. Consider blocking focus time.",
			Command:     "Block 2 hours for focused work tomorrow",
			Reasoning:   "Heavy meeting schedule detected",
		})
	}
	return recs
}
