package domain

import "time"

// ChatRequest is one single-turn completion request.
type ChatRequest struct {
	System    string
	User      string
	MaxTokens int
	// Temperature of zero uses the provider default.
	Temperature float64
	// Operation labels the call site in logs and metrics.
	Operation string
	// Preferred moves the named provider to the front of the fallback order.
	Preferred string
}

// LLMClient (port) returns the raw completion text for a request.
type LLMClient interface {
	Chat(ctx Context, req ChatRequest) (string, error)
}

// SessionStore (port) owns interview sessions keyed by id. Update runs fn
// under the session's exclusive lock, creating the session on first
// reference; the mutated session is persisted when fn returns nil.
type SessionStore interface {
	Update(ctx Context, id string, fn func(*InterviewSession) error) error
	// Get returns a copy of the session and whether it exists.
	Get(ctx Context, id string) (InterviewSession, bool, error)
	Delete(ctx Context, id string) error
}

// Message is one entry of a user's conversation memory.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// MemoryStore (port) keeps per-user rolling messages and preferences.
type MemoryStore interface {
	// Append adds messages and trims the buffer to the newest limit entries.
	Append(ctx Context, userID string, limit int, msgs ...Message) error
	// Recent returns up to n newest messages in chronological order.
	Recent(ctx Context, userID string, n int) ([]Message, error)
	SetPreference(ctx Context, userID, key string, value any) error
	Preferences(ctx Context, userID string) (map[string]any, error)
}

// ExtractedDocument is the output of a text extractor.
type ExtractedDocument struct {
	Text  string
	Pages int
}

// TextExtractor (port) turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx Context, fileName string, data []byte) (ExtractedDocument, error)
}

// OutgoingEmail is a message handed to a Mailer.
type OutgoingEmail struct {
	To      string
	Subject string
	Body    string
}

// Mailer (port) delivers an email.
type Mailer interface {
	Send(ctx Context, msg OutgoingEmail) error
	Configured() bool
}

// InterviewResult is an archived completed interview.
type InterviewResult struct {
	SessionID       string        `json:"session_id"`
	JobRole         string        `json:"job_role"`
	InterviewType   InterviewType `json:"interview_type"`
	FinalDifficulty Difficulty    `json:"final_difficulty"`
	Score           float64       `json:"score"`
	ReadinessScore  float64       `json:"readiness_score"`
	Analytics       Analytics     `json:"analytics"`
	CompletedAt     time.Time     `json:"completed_at"`
}

// ResultArchive (port) persists completed interviews.
type ResultArchive interface {
	Save(ctx Context, r InterviewResult) error
	Get(ctx Context, sessionID string) (InterviewResult, error)
}

// ActivityAction enumerates published activity events.
type ActivityAction string

// Activity actions.
const (
	ActivityCommandProcessed        ActivityAction = "command_processed"
	ActivityEmailDrafted            ActivityAction = "email_drafted"
	ActivityEmailSent               ActivityAction = "email_sent"
	ActivityInterviewStarted        ActivityAction = "interview_started"
	ActivityInterviewCompleted      ActivityAction = "interview_completed"
	ActivityRecommendationGenerated ActivityAction = "recommendation_generated"
)

// ActivityEvent is a best-effort audit record.
type ActivityEvent struct {
	ID        string         `json:"id"`
	Action    ActivityAction `json:"action"`
	Subject   string         `json:"subject"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ActivityPublisher (port) emits activity events.
type ActivityPublisher interface {
	Publish(ctx Context, ev ActivityEvent) error
}
