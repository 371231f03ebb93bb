package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)
	AIFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_failures_total",
			Help: "Total number of failed AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	// LLMFallbacksTotal counts calls served by a provider after an earlier one failed.
	LLMFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_fallbacks_total",
			Help: "Total number of LLM calls answered by a fallback provider",
		},
		[]string{"provider"},
	)
	// StructuredDefaultsTotal counts model outputs replaced by a default value.
	StructuredDefaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_structured_defaults_total",
			Help: "Total number of structured model calls that fell back to a default",
		},
		[]string{"operation"},
	)

	InterviewSessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sessions_started_total",
			Help: "Total number of interview sessions started",
		},
		[]string{"interview_type"},
	)
	InterviewSessionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sessions_completed_total",
			Help: "Total number of interview sessions completed",
		},
		[]string{"interview_type"},
	)
	InterviewFollowupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_followups_total",
			Help: "Total number of follow-up questions injected",
		},
	)
	InterviewDifficultyChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_difficulty_changes_total",
			Help: "Total number of adaptive difficulty changes",
		},
		[]string{"from", "to"},
	)
	EvaluationScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_evaluation_overall_score",
			Help:    "Distribution of per-response overall scores ([0,100])",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	ExecutorRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "executor_runs_total",
			Help: "Total number of executor runs by outcome",
		},
		[]string{"outcome"},
	)
	ExecutorAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "executor_attempts",
			Help:    "Attempts needed per executor run",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)
	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_invocations_total",
			Help: "Total number of tool invocations by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	ActivityEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_events_total",
			Help: "Total number of activity events by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	ExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "text_extraction_duration_seconds",
			Help:    "Document text extraction duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(AIRequestsTotal)
		prometheus.MustRegister(AIRequestDuration)
		prometheus.MustRegister(AIFailuresTotal)
		prometheus.MustRegister(LLMFallbacksTotal)
		prometheus.MustRegister(StructuredDefaultsTotal)
		prometheus.MustRegister(InterviewSessionsStarted)
		prometheus.MustRegister(InterviewSessionsCompleted)
		prometheus.MustRegister(InterviewFollowupsTotal)
		prometheus.MustRegister(InterviewDifficultyChanges)
		prometheus.MustRegister(EvaluationScoreHistogram)
		prometheus.MustRegister(ExecutorRunsTotal)
		prometheus.MustRegister(ExecutorAttempts)
		prometheus.MustRegister(ToolInvocationsTotal)
		prometheus.MustRegister(ActivityEventsTotal)
		prometheus.MustRegister(ExtractionDuration)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest records one provider call.
func ObserveAIRequest(provider, operation string, dur time.Duration, err error) {
	AIRequestsTotal.WithLabelValues(provider, operation).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(dur.Seconds())
	if err != nil {
		AIFailuresTotal.WithLabelValues(provider, operation).Inc()
	}
}

// StartInterview counts a started session.
func StartInterview(interviewType string) {
	InterviewSessionsStarted.WithLabelValues(interviewType).Inc()
}

// CompleteInterview counts a completed session.
func CompleteInterview(interviewType string) {
	InterviewSessionsCompleted.WithLabelValues(interviewType).Inc()
}

// ObserveEvaluation records the overall score of an evaluated response.
func ObserveEvaluation(overall float64) {
	if overall >= 0 && overall <= 100 {
		EvaluationScoreHistogram.Observe(overall)
	}
}

// ObserveExecution records an executor run.
func ObserveExecution(success bool, attempts int) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	ExecutorRunsTotal.WithLabelValues(outcome).Inc()
	ExecutorAttempts.Observe(float64(attempts))
}

// ObserveTool records a tool invocation.
func ObserveTool(tool string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ToolInvocationsTotal.WithLabelValues(tool, outcome).Inc()
}

// ObserveExtraction records one document extraction.
func ObserveExtraction(dur time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ExtractionDuration.WithLabelValues(outcome).Observe(dur.Seconds())
}
