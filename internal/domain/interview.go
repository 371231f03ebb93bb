package domain

import (
	"strings"
	"time"
)

// InterviewType selects the question family of a session.
type InterviewType string

// Interview types accepted at session start.
const (
	InterviewGeneral     InterviewType = "general"
	InterviewHR          InterviewType = "hr"
	InterviewTechnical   InterviewType = "technical"
	InterviewBehavioral  InterviewType = "behavioral"
	InterviewSituational InterviewType = "situational"
)

// ParseInterviewType normalizes a caller supplied type; empty maps to general.
func ParseInterviewType(s string) InterviewType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return InterviewGeneral
	}
	return InterviewType(s)
}

// Difficulty is the adaptive difficulty level of a session.
type Difficulty string

// Difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty returns the level and whether s names a known one.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	default:
		return "", false
	}
}

// SessionState is the lifecycle state of an interview session.
type SessionState string

// Session lifecycle states.
const (
	SessionUninitialized SessionState = "uninitialized"
	SessionActive        SessionState = "active"
	SessionCompleted     SessionState = "completed"
)

// Question is one interview question, either generated at start or injected as a follow-up.
type Question struct {
	Text       string     `json:"question"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	IsFollowup bool       `json:"is_followup,omitempty"`
}

// Evaluation scores a single response. Scores are in [0,100].
type Evaluation struct {
	Confidence      float64 `json:"confidence"`
	Clarity         float64 `json:"clarity"`
	Relevance       float64 `json:"relevance"`
	OverallScore    float64 `json:"overall_score"`
	Feedback        string  `json:"feedback"`
	Strength        string  `json:"strength"`
	Improvement     string  `json:"improvement"`
	ResumeAlignment string  `json:"resume_alignment,omitempty"`
}

// ApplyDefaults pre-fills the scores a model reply may omit.
func (e *Evaluation) ApplyDefaults() {
	e.Confidence, e.Clarity, e.Relevance, e.OverallScore = 70, 70, 70, 70
}

// Clamp bounds every score to [0,100].
func (e *Evaluation) Clamp() {
	e.Confidence = ClampScore(e.Confidence)
	e.Clarity = ClampScore(e.Clarity)
	e.Relevance = ClampScore(e.Relevance)
	e.OverallScore = ClampScore(e.OverallScore)
}

// Turn is one answered question.
type Turn struct {
	Question   string     `json:"question"`
	Response   string     `json:"response"`
	Evaluation Evaluation `json:"evaluation"`
	Timestamp  time.Time  `json:"timestamp,omitempty"`
}

// Metrics holds the parallel per-dimension score series.
type Metrics struct {
	Confidence []float64 `json:"confidence"`
	Clarity    []float64 `json:"clarity"`
	Relevance  []float64 `json:"relevance"`
}

// Averages are running means over all submitted responses.
type Averages struct {
	Confidence float64 `json:"avg_confidence"`
	Clarity    float64 `json:"avg_clarity"`
	Relevance  float64 `json:"avg_relevance"`
}

// QuestionView is the caller facing projection of the current question.
type QuestionView struct {
	Question      string        `json:"question"`
	Index         int           `json:"index"`
	Total         int           `json:"total"`
	Category      string        `json:"category"`
	Difficulty    Difficulty    `json:"difficulty"`
	InterviewType InterviewType `json:"interview_type"`
	IsFollowup    bool          `json:"is_followup"`
}

// InterviewSession is the per-id state of one interview simulation.
// Invariants: CurrentIndex <= len(Questions) and every Metrics series has len(Responses) entries.
type InterviewSession struct {
	ID                  string        `json:"id"`
	JobRole             string        `json:"job_role"`
	Questions           []Question    `json:"questions"`
	CurrentIndex        int           `json:"current_index"`
	Responses           []Turn        `json:"responses"`
	ConversationHistory []Turn        `json:"conversation_history"`
	Metrics             Metrics       `json:"metrics"`
	Difficulty          Difficulty    `json:"difficulty"`
	InterviewType       InterviewType `json:"interview_type"`
	Resume              ResumeData    `json:"resume"`
	ResumeContext       string        `json:"resume_context"`
	State               SessionState  `json:"state"`
	StartedAt           time.Time     `json:"started_at,omitempty"`
	UpdatedAt           time.Time     `json:"updated_at,omitempty"`
	CompletedAt         time.Time     `json:"completed_at,omitempty"`
}

// NewInterviewSession returns an uninitialized session for id.
func NewInterviewSession(id string) *InterviewSession {
	return &InterviewSession{
		ID:            id,
		Difficulty:    DifficultyMedium,
		InterviewType: InterviewGeneral,
		State:         SessionUninitialized,
	}
}

// Begin resets the session and makes it active with the given questions.
func (s *InterviewSession) Begin(jobRole string, difficulty Difficulty, it InterviewType, resume ResumeData, questions []Question, now time.Time) {
	s.JobRole = jobRole
	s.Questions = questions
	s.CurrentIndex = 0
	s.Responses = nil
	s.ConversationHistory = nil
	s.Metrics = Metrics{}
	s.Difficulty = difficulty
	s.InterviewType = it
	s.Resume = resume
	s.ResumeContext = resume.FormatContext()
	s.State = SessionActive
	s.StartedAt = now
	s.UpdatedAt = now
	s.CompletedAt = time.Time{}
}

// CurrentQuestion returns the question at the cursor, if any.
func (s *InterviewSession) CurrentQuestion() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// CurrentView projects the question at the cursor; nil when exhausted.
func (s *InterviewSession) CurrentView() *QuestionView {
	q, ok := s.CurrentQuestion()
	if !ok {
		return nil
	}
	return &QuestionView{
		Question:      q.Text,
		Index:         s.CurrentIndex + 1,
		Total:         len(s.Questions),
		Category:      q.Category,
		Difficulty:    s.Difficulty,
		InterviewType: s.InterviewType,
		IsFollowup:    q.IsFollowup,
	}
}

// Record appends an answered turn and its scores, then advances the cursor.
func (s *InterviewSession) Record(q Question, response string, ev Evaluation, now time.Time) {
	turn := Turn{Question: q.Text, Response: response, Evaluation: ev, Timestamp: now}
	s.Metrics.Confidence = append(s.Metrics.Confidence, ev.Confidence)
	s.Metrics.Clarity = append(s.Metrics.Clarity, ev.Clarity)
	s.Metrics.Relevance = append(s.Metrics.Relevance, ev.Relevance)
	s.ConversationHistory = append(s.ConversationHistory, turn)
	s.Responses = append(s.Responses, Turn{Question: q.Text, Response: response, Evaluation: ev})
	if s.CurrentIndex < len(s.Questions) {
		s.CurrentIndex++
	}
	s.UpdatedAt = now
}

// InsertFollowup places q at the cursor so it becomes the next question.
func (s *InterviewSession) InsertFollowup(q Question) {
	if s.CurrentIndex > len(s.Questions) {
		return
	}
	q.IsFollowup = true
	s.Questions = append(s.Questions, Question{})
	copy(s.Questions[s.CurrentIndex+1:], s.Questions[s.CurrentIndex:])
	s.Questions[s.CurrentIndex] = q
}

// Exhausted reports whether the cursor has passed the last question.
func (s *InterviewSession) Exhausted() bool { return s.CurrentIndex >= len(s.Questions) }

// Averages returns the arithmetic means of each metric series; empty series report 0.
func (s *InterviewSession) Averages() Averages {
	return Averages{
		Confidence: mean(s.Metrics.Confidence),
		Clarity:    mean(s.Metrics.Clarity),
		Relevance:  mean(s.Metrics.Relevance),
	}
}

// RecentTurns returns up to n most recent conversation turns.
func (s *InterviewSession) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.ConversationHistory) <= n {
		return s.ConversationHistory
	}
	return s.ConversationHistory[len(s.ConversationHistory)-n:]
}

// Complete marks the session completed.
func (s *InterviewSession) Complete(now time.Time) {
	s.State = SessionCompleted
	s.CompletedAt = now
	s.UpdatedAt = now
}

// SessionSnapshot is the read-only state projection returned to callers.
type SessionSnapshot struct {
	SessionState        SessionState  `json:"session_state"`
	InterviewType       InterviewType `json:"interview_type"`
	CurrentDifficulty   Difficulty    `json:"current_difficulty"`
	QuestionsAnswered   int           `json:"questions_answered"`
	TotalQuestions      int           `json:"total_questions"`
	CurrentMetrics      Averages      `json:"current_metrics"`
	ConversationHistory []Turn        `json:"conversation_history"`
}

// Snapshot projects the session without mutating it.
func (s *InterviewSession) Snapshot() SessionSnapshot {
	history := make([]Turn, len(s.ConversationHistory))
	copy(history, s.ConversationHistory)
	return SessionSnapshot{
		SessionState:        s.State,
		InterviewType:       s.InterviewType,
		CurrentDifficulty:   s.Difficulty,
		QuestionsAnswered:   len(s.Responses),
		TotalQuestions:      len(s.Questions),
		CurrentMetrics:      s.Averages(),
		ConversationHistory: history,
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Clone returns a copy whose slices can be mutated without touching s.
func (s *InterviewSession) Clone() *InterviewSession {
	c := *s
	c.Questions = append([]Question(nil), s.Questions...)
	c.Responses = append([]Turn(nil), s.Responses...)
	c.ConversationHistory = append([]Turn(nil), s.ConversationHistory...)
	c.Metrics = Metrics{
		Confidence: append([]float64(nil), s.Metrics.Confidence...),
		Clarity:    append([]float64(nil), s.Metrics.Clarity...),
		Relevance:  append([]float64(nil), s.Metrics.Relevance...),
	}
	c.Resume = ResumeData{
		Skills:       append([]string(nil), s.Resume.Skills...),
		Projects:     append([]ResumeProject(nil), s.Resume.Projects...),
		Experience:   append([]ResumeExperience(nil), s.Resume.Experience...),
		Education:    append([]ResumeEducation(nil), s.Resume.Education...),
		Technologies: append([]string(nil), s.Resume.Technologies...),
	}
	return &c
}
