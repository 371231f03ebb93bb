package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/ai-interview-agent/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	// Security & instrumentation middleware
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 110 * time.Second
	}
	r.Use(httpserver.TimeoutMiddleware(timeout))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Model-backed and side-effecting endpoints are rate limited per IP.
	r.Group(func(wr chi.Router) {
		if cfg.RateLimitPerMin > 0 {
			wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		}
		wr.Post("/interview/start", srv.StartInterviewHandler())
		wr.Post("/interview/respond", srv.RespondHandler())
		wr.Post("/interview/complete", srv.CompleteInterviewHandler())
		wr.Post("/parse-resume", srv.ParseResumeHandler())
		wr.Post("/draft-email", srv.DraftEmailHandler())
		wr.Post("/proactive/recommendations", srv.RecommendationsHandler())
		wr.Post("/analyze-patterns", srv.AnalyzePatternsHandler())
		wr.Post("/generate-insights", srv.GenerateInsightsHandler())
		wr.Post("/suggest-focus-time", srv.SuggestFocusTimeHandler())
		wr.Post("/detect-missed-meetings", srv.DetectMissedMeetingsHandler())

		// Commands and email delivery act on the user's behalf.
		wr.Group(func(gr chi.Router) {
			gr.Use(srv.BasicAuthGuard())
			gr.Post("/process-command", srv.ProcessCommandHandler())
			gr.Post("/send-email", srv.SendEmailHandler())
		})
	})

	// Read-only endpoints
	r.Get("/interview/session/{session_id}", srv.SessionStateHandler())
	r.Get("/interview/results/{session_id}", srv.InterviewResultHandler())
	r.Get("/memory/{user_id}", srv.MemoryHandler())

	// Banner, health and metrics
	r.Get("/", srv.RootHandler())
	r.Get("/health", srv.HealthHandler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.SecurityHeaders(r)
}
