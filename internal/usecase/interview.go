package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// Interview defaults.
const (
	DefaultQuestionCount       = 5
	DefaultFollowupProbability = 0.3
	followupContextTurns       = 3
)

// InterviewConfig tunes question generation and follow-up injection.
type InterviewConfig struct {
	QuestionCount       int
	FollowupProbability float64
}

// InterviewService drives interview sessions through start, respond and complete.
type InterviewService struct {
	LLM      domain.LLMClient
	Sessions domain.SessionStore
	Resumes  ResumeService
	Bank     domain.QuestionBank
	Archive  domain.ResultArchive
	Activity domain.ActivityPublisher

	cfg  InterviewConfig
	rand func() float64
	now  func() time.Time
}

// InterviewOption customizes an InterviewService.
type InterviewOption func(*InterviewService)

// WithRandom injects the source of the follow-up decision; fn returns values in [0,1).
func WithRandom(fn func() float64) InterviewOption {
	return func(s *InterviewService) { s.rand = fn }
}

// WithInterviewClock overrides the time source.
func WithInterviewClock(fn func() time.Time) InterviewOption {
	return func(s *InterviewService) { s.now = fn }
}

// WithQuestionBank replaces the built-in fallback questions.
func WithQuestionBank(b domain.QuestionBank) InterviewOption {
	return func(s *InterviewService) { s.Bank = b }
}

// WithResultArchive archives completed interviews.
func WithResultArchive(a domain.ResultArchive) InterviewOption {
	return func(s *InterviewService) { s.Archive = a }
}

// WithActivityPublisher emits interview activity events.
func WithActivityPublisher(p domain.ActivityPublisher) InterviewOption {
	return func(s *InterviewService) { s.Activity = p }
}

// NewInterviewService constructs the service with its required dependencies.
func NewInterviewService(llm domain.LLMClient, sessions domain.SessionStore, resumes ResumeService, cfg InterviewConfig, opts ...InterviewOption) *InterviewService {
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultQuestionCount
	}
	if cfg.FollowupProbability < 0 {
		cfg.FollowupProbability = 0
	}
	s := &InterviewService{
		LLM:      llm,
		Sessions: sessions,
		Resumes:  resumes,
		Bank:     domain.DefaultQuestionBank,
		cfg:      cfg,
		rand:     rand.Float64,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StartInput holds the parameters of an interview start.
type StartInput struct {
	SessionID     string
	ResumeText    string
	JobRole       string
	Difficulty    string
	InterviewType string
}

// Start (re)initializes a session and returns its first question.
func (s *InterviewService) Start(ctx domain.Context, in StartInput) (*domain.QuestionView, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return nil, fmt.Errorf("op=usecase.Start: %w: session_id required", domain.ErrInvalidArgument)
	}
	difficulty := domain.DifficultyMedium
	if strings.TrimSpace(in.Difficulty) != "" {
		d, ok := domain.ParseDifficulty(in.Difficulty)
		if !ok {
			return nil, fmt.Errorf("op=usecase.Start: %w: unknown difficulty %q", domain.ErrInvalidArgument, in.Difficulty)
		}
		difficulty = d
	}
	it := domain.ParseInterviewType(in.InterviewType)

	ctx, span := observability.StartSpan(ctx, "interview.Start",
		attribute.String("session_id", in.SessionID),
		attribute.String("interview_type", string(it)))
	defer span.End()
	lg := obsctx.LoggerFromContext(ctx).With(slog.String("session_id", in.SessionID))

	resume := s.Resumes.Parse(ctx, in.ResumeText)
	questions := s.generateQuestions(ctx, in.ResumeText, in.JobRole, difficulty, it, resume.FormatContext())

	var view *domain.QuestionView
	err := s.Sessions.Update(ctx, in.SessionID, func(sess *domain.InterviewSession) error {
		sess.Begin(in.JobRole, difficulty, it, resume, questions, s.now())
		view = sess.CurrentView()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("op=usecase.Start: %w", err)
	}
	observability.StartInterview(string(it))
	lg.Info("interview started",
		slog.String("interview_type", string(it)),
		slog.String("difficulty", string(difficulty)),
		slog.Int("questions", len(questions)),
		slog.Int("resume_skills", len(resume.Skills)))
	emitActivity(ctx, s.Activity, domain.ActivityInterviewStarted, in.SessionID, map[string]any{
		"job_role":       in.JobRole,
		"interview_type": it,
		"difficulty":     difficulty,
	})
	return view, nil
}

// RespondInput holds one candidate answer.
type RespondInput struct {
	SessionID  string
	Response   string
	ResumeText string
	JobRole    string
}

// SubmitResult is returned after an answer is evaluated.
type SubmitResult struct {
	Evaluation   domain.Evaluation    `json:"evaluation"`
	NextQuestion *domain.QuestionView `json:"next_question"`
	Metrics      domain.Averages      `json:"metrics"`
}

// SubmitResponse evaluates the answer to the current question, adapts the
// difficulty, and may inject a follow-up. It fails with
// domain.ErrNoActiveQuestion, leaving the session untouched, once every
// question has been answered.
func (s *InterviewService) SubmitResponse(ctx domain.Context, in RespondInput) (SubmitResult, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return SubmitResult{}, fmt.Errorf("op=usecase.SubmitResponse: %w: session_id required", domain.ErrInvalidArgument)
	}
	ctx, span := observability.StartSpan(ctx, "interview.SubmitResponse", attribute.String("session_id", in.SessionID))
	defer span.End()

	var res SubmitResult
	err := s.Sessions.Update(ctx, in.SessionID, func(sess *domain.InterviewSession) error {
		q, ok := sess.CurrentQuestion()
		if !ok {
			return domain.ErrNoActiveQuestion
		}
		role := in.JobRole
		if role == "" {
			role = sess.JobRole
		}
		ev := s.evaluate(ctx, sess.InterviewType, q.Text, in.Response, role, sess.ResumeContext)
		sess.Record(q, in.Response, ev, s.now())
		observability.ObserveEvaluation(ev.OverallScore)

		if len(sess.Responses) >= 2 {
			s.adjustDifficulty(ctx, sess)
		}
		s.maybeFollowup(ctx, sess, in.Response)

		res = SubmitResult{Evaluation: ev, NextQuestion: sess.CurrentView(), Metrics: sess.Averages()}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveQuestion) {
			return SubmitResult{}, err
		}
		return SubmitResult{}, fmt.Errorf("op=usecase.SubmitResponse: %w", err)
	}
	return res, nil
}

// CompleteInput identifies the session to finish.
type CompleteInput struct {
	SessionID  string
	ResumeText string
	JobRole    string
}

// Complete produces the final analytics and marks the session completed.
// A session that was never started completes as an empty one. The caller
// deletes the session afterwards.
func (s *InterviewService) Complete(ctx domain.Context, in CompleteInput) (domain.Analytics, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return domain.Analytics{}, fmt.Errorf("op=usecase.Complete: %w: session_id required", domain.ErrInvalidArgument)
	}
	ctx, span := observability.StartSpan(ctx, "interview.Complete", attribute.String("session_id", in.SessionID))
	defer span.End()

	var (
		analytics domain.Analytics
		done      domain.InterviewSession
	)
	err := s.Sessions.Update(ctx, in.SessionID, func(sess *domain.InterviewSession) error {
		role := in.JobRole
		if role == "" {
			role = sess.JobRole
		}
		resumeText := in.ResumeText
		if resumeText == "" {
			resumeText = sess.ResumeContext
		}
		summary := s.summarize(ctx, sess)
		analytics = s.analytics(ctx, sess.Responses, resumeText, role, sess.Metrics)
		avg := sess.Averages()
		analytics.ConversationalMetrics = &domain.ConversationalMetrics{
			AvgConfidence:       avg.Confidence,
			AvgClarity:          avg.Clarity,
			AvgRelevance:        avg.Relevance,
			InterviewType:       sess.InterviewType,
			FinalDifficulty:     sess.Difficulty,
			TotalQuestions:      len(sess.Responses),
			ConversationSummary: summary,
		}
		sess.Complete(s.now())
		done = *sess
		return nil
	})
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("op=usecase.Complete: %w", err)
	}
	observability.CompleteInterview(string(done.InterviewType))
	s.archive(ctx, done, analytics)
	emitActivity(ctx, s.Activity, domain.ActivityInterviewCompleted, in.SessionID, map[string]any{
		"job_role":        done.JobRole,
		"score":           analytics.Score,
		"readiness_score": analytics.ReadinessScore,
		"total_questions": len(done.Responses),
	})
	return analytics, nil
}

// State returns the read-only projection of a session. Unknown ids report
// an uninitialized session without creating one.
func (s *InterviewService) State(ctx domain.Context, sessionID string) (domain.SessionSnapshot, error) {
	sess, ok, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("op=usecase.State: %w", err)
	}
	if !ok {
		return domain.NewInterviewSession(sessionID).Snapshot(), nil
	}
	return sess.Snapshot(), nil
}

// Clear deletes a session.
func (s *InterviewService) Clear(ctx domain.Context, sessionID string) error {
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("op=usecase.Clear: %w", err)
	}
	return nil
}

// Result returns an archived interview.
func (s *InterviewService) Result(ctx domain.Context, sessionID string) (domain.InterviewResult, error) {
	if s.Archive == nil {
		return domain.InterviewResult{}, fmt.Errorf("op=usecase.Result: %w: result archive disabled", domain.ErrNotFound)
	}
	r, err := s.Archive.Get(ctx, sessionID)
	if err != nil {
		return domain.InterviewResult{}, fmt.Errorf("op=usecase.Result: %w", err)
	}
	return r, nil
}

func (s *InterviewService) archive(ctx domain.Context, sess domain.InterviewSession, a domain.Analytics) {
	if s.Archive == nil {
		return
	}
	completed := sess.CompletedAt
	if completed.IsZero() {
		completed = s.now()
	}
	err := s.Archive.Save(ctx, domain.InterviewResult{
		SessionID:       sess.ID,
		JobRole:         sess.JobRole,
		InterviewType:   sess.InterviewType,
		FinalDifficulty: sess.Difficulty,
		Score:           a.Score,
		ReadinessScore:  a.ReadinessScore,
		Analytics:       a,
		CompletedAt:     completed,
	})
	if err != nil {
		obsctx.LoggerFromContext(ctx).Error("archive interview result failed",
			slog.String("session_id", sess.ID),
			slog.Any("error", err))
	}
}

const questionPrompt = `You are an expert technical interviewer. Generate %d %s interview questions for a %s position based on the candidate's resume.

Questions should:
1. Be relevant to the candidate's experience
2. Test both technical and behavioral skills
3. Be appropriate for %s difficulty level
4. Include a mix of technical, problem-solving, and situational questions

Return ONLY a JSON array of questions with this format:
[{"question": "...", "category": "technical/behavioral/situational", "difficulty": "..."}]`

// GenerateQuestions asks the model for questions; the static bank for it
// is used when the reply is unusable.
func (s *InterviewService) GenerateQuestions(ctx domain.Context, resumeText, jobRole string, d domain.Difficulty, it domain.InterviewType) []domain.Question {
	return s.generateQuestions(ctx, resumeText, jobRole, d, it, "")
}

func (s *InterviewService) generateQuestions(ctx domain.Context, resumeText, jobRole string, d domain.Difficulty, it domain.InterviewType, resumeContext string) []domain.Question {
	user := fmt.Sprintf("Resume:\n%s\n\nJob Role: %s", s.Resumes.PromptText(resumeText), jobRole)
	if resumeContext != "" {
		user += "\n\nResume Context:\n" + resumeContext
	}
	raw, _ := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      fmt.Sprintf(questionPrompt, s.cfg.QuestionCount, d, jobRole, d),
		User:        user,
		Temperature: 0.7,
		Operation:   "generate_questions",
	}, []domain.Question(nil))

	out := make([]domain.Question, 0, len(raw))
	for _, q := range raw {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			continue
		}
		if q.Category == "" {
			q.Category = string(it)
		}
		if parsed, ok := domain.ParseDifficulty(string(q.Difficulty)); ok {
			q.Difficulty = parsed
		} else {
			q.Difficulty = d
		}
		q.IsFollowup = false
		out = append(out, q)
	}
	if len(out) == 0 {
		return s.Bank.Fallback(it, jobRole, d)
	}
	return out
}

const evaluationPrompt = `You are an expert interviewer evaluating a %s interview response for a %s position.

Evaluate the response on THREE key metrics:

1. **Confidence** (0-100): How certain and decisive does the candidate sound?
   - High (80-100): Definitive statements, no hedging, clear assertions
   - Medium (50-79): Some uncertainty, occasional hedging
   - Low (0-49): Very uncertain, excessive "I think", "maybe", "probably"

2. **Clarity** (0-100): How well-structured and easy to follow is the communication?
   - High (80-100): Logical flow, concise, well-organized, easy to understand
   - Medium (50-79): Somewhat clear but could be more concise
   - Low (0-49): Rambling, unclear, poorly structured

3. **Relevance** (0-100): How well does the answer address the question and align with their resume?
   - High (80-100): Directly answers question, provides resume-backed examples, demonstrates claimed skills
   - Medium (50-79): Partially relevant, some alignment with resume
   - Low (0-49): Off-topic, doesn't align with resume claims, vague

Resume Context (for alignment check):
%s

CRITICAL: If the question asks about something from their resume, check if their answer demonstrates actual knowledge of that skill/project/technology.

Return ONLY a JSON object:
{"confidence": 0-100, "clarity": 0-100, "relevance": 0-100, "overall_score": 0-100, "feedback": "Brief constructive feedback (1-2 sentences)", "strength": "What they did well", "improvement": "One specific thing to improve", "resume_alignment": "How well their answer aligns with resume claims (if applicable)"}`

const noResumeContext = "No structured context available"

// EvaluateResponse scores one answer, substituting the default evaluation
// when the model reply is unusable.
func (s *InterviewService) EvaluateResponse(ctx domain.Context, question, response, jobRole, resumeContext string) domain.Evaluation {
	return s.evaluate(ctx, domain.InterviewGeneral, question, response, jobRole, resumeContext)
}

func (s *InterviewService) evaluate(ctx domain.Context, it domain.InterviewType, question, response, jobRole, resumeContext string) domain.Evaluation {
	if resumeContext == "" {
		resumeContext = noResumeContext
	}
	ev, _ := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      fmt.Sprintf(evaluationPrompt, it, jobRole, resumeContext),
		User:        fmt.Sprintf("Question: %s\n\nCandidate Response: %s", question, response),
		Temperature: 0.3,
		Operation:   "evaluate_response",
	}, domain.DefaultEvaluation())
	ev.Clamp()
	return ev
}

const difficultyPrompt = `You are an adaptive interview system analyzer.

Analyze the conversation history and evaluation scores to determine if difficulty should be adjusted.

Current difficulty: %s

Rules:
- If average scores are consistently above 80: Increase difficulty
- If average scores are consistently below 50: Decrease difficulty
- If scores are between 50-80: Maintain current difficulty
- Consider the trend (improving vs declining)

Difficulty levels: easy, medium, hard

Return ONLY a JSON object:
{"recommended_difficulty": "easy/medium/hard", "should_change": true/false, "reasoning": "Why this adjustment makes sense", "average_performance": 0-100}`

type difficultyAdvice struct {
	RecommendedDifficulty string  `json:"recommended_difficulty"`
	ShouldChange          bool    `json:"should_change"`
	Reasoning             string  `json:"reasoning"`
	AveragePerformance    float64 `json:"average_performance"`
}

// adjustDifficulty applies the model's recommendation when it asks for a
// change to a known level. Any failure keeps the current difficulty.
func (s *InterviewService) adjustDifficulty(ctx domain.Context, sess *domain.InterviewSession) {
	history, err := json.Marshal(sess.Responses)
	if err != nil {
		return
	}
	advice, ok := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      fmt.Sprintf(difficultyPrompt, sess.Difficulty),
		User:        "Conversation History with Scores:\n" + string(history),
		Temperature: 0.3,
		Operation:   "adjust_difficulty",
	}, difficultyAdvice{})
	if !ok || !advice.ShouldChange {
		return
	}
	next, valid := domain.ParseDifficulty(advice.RecommendedDifficulty)
	if !valid || next == sess.Difficulty {
		return
	}
	observability.InterviewDifficultyChanges.WithLabelValues(string(sess.Difficulty), string(next)).Inc()
	obsctx.LoggerFromContext(ctx).Info("interview difficulty adjusted",
		slog.String("session_id", sess.ID),
		slog.String("from", string(sess.Difficulty)),
		slog.String("to", string(next)),
		slog.String("reasoning", advice.Reasoning))
	sess.Difficulty = next
}

const followupPrompt = `You are an expert interviewer conducting a %s interview.

Generate a follow-up question that:
1. Digs deeper into what the candidate just said
2. References their resume (specific projects, skills, technologies, experiences)
3. Asks for concrete examples from their listed experience
4. Probes technical details if they mentioned a technology from their resume
5. Challenges them to elaborate on claims made in their resume

Resume Context:
%s

Question Style Examples:
- "You mentioned [TECHNOLOGY] in your answer. I see it's also in your resume. How did you specifically use it in [PROJECT]?"
- "That's interesting. In your resume, you listed [SKILL]. Can you give me a specific example of when you used it?"
- "You worked on [PROJECT] according to your resume. How does what you just described relate to that project?"

CRITICAL: The follow-up must feel natural and reference something from their resume or previous answer.

Return ONLY a JSON object:
{"question": "Your follow-up question here that references resume items", "category": "%s", "difficulty": "%s", "reasoning": "Why this follow-up makes sense based on their answer and resume"}`

type followupReply struct {
	Question   string `json:"question"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Reasoning  string `json:"reasoning"`
}

// maybeFollowup inserts a follow-up at the cursor with the configured
// probability, provided the session has history and questions remain.
func (s *InterviewService) maybeFollowup(ctx domain.Context, sess *domain.InterviewSession, lastResponse string) {
	if sess.Exhausted() || len(sess.ConversationHistory) == 0 {
		return
	}
	if s.rand() >= s.cfg.FollowupProbability {
		return
	}
	turns := sess.RecentTurns(followupContextTurns)
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = fmt.Sprintf("Q: %s\nA: %s", t.Question, t.Response)
	}
	resumeContext := sess.ResumeContext
	if resumeContext == "" {
		resumeContext = noResumeContext
	}
	reply, ok := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      fmt.Sprintf(followupPrompt, sess.InterviewType, resumeContext, sess.InterviewType, sess.Difficulty),
		User:        fmt.Sprintf("Conversation History:\n%s\n\nLast Response: %s", strings.Join(lines, "\n"), lastResponse),
		Temperature: 0.8,
		Operation:   "generate_followup",
	}, followupReply{})
	text := strings.TrimSpace(reply.Question)
	if !ok || text == "" {
		return
	}
	sess.InsertFollowup(domain.Question{
		Text:       text,
		Category:   string(sess.InterviewType),
		Difficulty: sess.Difficulty,
	})
	observability.InterviewFollowupsTotal.Inc()
}

const summaryPrompt = `You are an interview analyst summarizing a %s interview.

Analyze the conversation and provide:
1. Key topics discussed
2. Candidate's main strengths shown
3. Areas that need more exploration
4. Overall interview flow quality

Return ONLY a JSON object:
{"key_topics": ["topic1", "topic2", "topic3"], "demonstrated_strengths": ["strength1", "strength2"], "areas_to_explore": ["area1", "area2"], "flow_quality": "excellent/good/fair/poor", "summary": "2-3 sentence summary of the interview"}`

func (s *InterviewService) summarize(ctx domain.Context, sess *domain.InterviewSession) domain.ConversationSummary {
	history, err := json.Marshal(sess.ConversationHistory)
	if err != nil {
		return domain.ConversationSummary{}
	}
	summary, _ := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      fmt.Sprintf(summaryPrompt, sess.InterviewType),
		User:        "Interview Conversation:\n" + string(history),
		Temperature: 0.3,
		Operation:   "conversation_summary",
	}, domain.ConversationSummary{})
	return summary
}

const analyticsPrompt = `You are an expert interview analyst. Generate comprehensive analytics for this %s interview.

Provide:
1. Overall score (0-100)
2. Detailed feedback (3-4 sentences)
3. Skill-wise breakdown (technical, communication, problem-solving)
4. Areas for improvement (3-5 specific points)
5. Recommended resources (3-5 specific resources/topics)
6. Resume vs Performance alignment
7. Readiness score for the role (0-100)

Return as JSON:
{"score": 0-100, "feedback": "...", "skill_breakdown": {"technical": 0-100, "communication": 0-100, "problem_solving": 0-100, "domain_knowledge": 0-100}, "areas_of_improvement": ["...", "...", "..."], "recommended_resources": ["...", "...", "..."], "resume_alignment": "...", "readiness_score": 0-100, "next_steps": "..."}`

// GenerateAnalytics reports on answered turns, deriving the report from
// their scores when the model reply is unusable.
func (s *InterviewService) GenerateAnalytics(ctx domain.Context, turns []domain.Turn, resumeText, jobRole string) domain.Analytics {
	var m domain.Metrics
	for _, t := range turns {
		m.Confidence = append(m.Confidence, t.Evaluation.Confidence)
		m.Clarity = append(m.Clarity, t.Evaluation.Clarity)
		m.Relevance = append(m.Relevance, t.Evaluation.Relevance)
	}
	return s.analytics(ctx, turns, resumeText, jobRole, m)
}

func (s *InterviewService) analytics(ctx domain.Context, turns []domain.Turn, resumeText, jobRole string, m domain.Metrics) domain.Analytics {
	fallback := domain.FallbackAnalytics(m)
	if turns == nil {
		turns = []domain.Turn{}
	}
	qa, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fallback
	}
	a, ok := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      fmt.Sprintf(analyticsPrompt, jobRole),
		User:        fmt.Sprintf("Interview Data:\n%s\n\nResume:\n%s\n\nJob Role: %s", qa, s.Resumes.PromptText(resumeText), jobRole),
		Temperature: 0.3,
		Operation:   "generate_analytics",
	}, fallback)
	if !ok {
		return a
	}
	a.Score = domain.ClampScore(a.Score)
	a.ReadinessScore = domain.ClampScore(a.ReadinessScore)
	a.SkillBreakdown = domain.SkillBreakdown{
		Technical:       domain.ClampScore(a.SkillBreakdown.Technical),
		Communication:   domain.ClampScore(a.SkillBreakdown.Communication),
		ProblemSolving:  domain.ClampScore(a.SkillBreakdown.ProblemSolving),
		DomainKnowledge: domain.ClampScore(a.SkillBreakdown.DomainKnowledge),
	}
	if a.AreasOfImprovement == nil {
		a.AreasOfImprovement = []string{}
	}
	if a.RecommendedResources == nil {
		a.RecommendedResources = []string{}
	}
	a.ConversationalMetrics = nil
	return a
}
