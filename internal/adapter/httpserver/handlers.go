// Package httpserver contains HTTP handlers and middleware.
//
// It exposes the interview simulator, the command agent, resume parsing,
// conversation memory and the productivity analytics endpoints as a JSON
// REST API. Handlers only map requests to use case calls and shape the
// responses.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/fairyhunter13/ai-interview-agent/internal/config"
	"github.com/fairyhunter13/ai-interview-agent/internal/usecase"
)

// Service banner values returned by GET / and GET /health.
const (
	ServiceName    = "AI Agent"
	ServiceVersion = "2.0.0"
)

var serviceFeatures = []string{
	"Command Processing",
	"Email Automation",
	"Calendar Management",
	"Interview Simulation",
	"Proactive Recommendations",
}

// Server aggregates handlers dependencies.
type Server struct {
	Cfg             config.Config
	Interview       *usecase.InterviewService
	Resumes         usecase.ResumeService
	Agent           *usecase.AgentService
	Insights        usecase.InsightsService
	Recommendations usecase.RecommendationService

	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
	TikaCheck  func(ctx context.Context) error
	KafkaCheck func(ctx context.Context) error

	now func() time.Time
}

// Checks are the optional readiness probes of the server's backends.
type Checks struct {
	DB    func(ctx context.Context) error
	Redis func(ctx context.Context) error
	Tika  func(ctx context.Context) error
	Kafka func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, interview *usecase.InterviewService, resumes usecase.ResumeService, agentSvc *usecase.AgentService, insights usecase.InsightsService, recs usecase.RecommendationService, checks Checks) *Server {
	return &Server{
		Cfg:             cfg,
		Interview:       interview,
		Resumes:         resumes,
		Agent:           agentSvc,
		Insights:        insights,
		Recommendations: recs,
		DBCheck:         checks.DB,
		RedisCheck:      checks.Redis,
		TikaCheck:       checks.Tika,
		KafkaCheck:      checks.Kafka,
		now:             time.Now,
	}
}

func (s *Server) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// RootHandler returns the service banner.
func (s *Server) RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "AI Agent Service Running",
			"version":  ServiceVersion,
			"features": serviceFeatures,
		})
	}
}

// HealthHandler reports which agent components are wired. It never fails
// the request; unwired components make the service unhealthy.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		components := map[string]string{
			"planner":   "operational",
			"executor":  "operational",
			"memory":    "operational",
			"interview": "operational",
		}
		healthy := true
		mark := func(name string, ok bool) {
			if !ok {
				components[name] = "unavailable"
				healthy = false
			}
		}
		mark("planner", s.Agent != nil && s.Agent.Planner != nil)
		mark("executor", s.Agent != nil && s.Agent.Executor != nil)
		mark("memory", s.Agent != nil && s.Agent.Memory != nil)
		mark("interview", s.Interview != nil)

		status := "healthy"
		if !healthy {
			status = "unhealthy"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     status,
			"service":    ServiceName,
			"version":    ServiceVersion,
			"components": components,
			"timestamp":  s.clock().UTC().Format(time.RFC3339),
		})
	}
}

// ReadyzHandler returns a readiness handler that probes the configured
// backends: Postgres, Redis, Tika and Kafka.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name string
			fn   func(context.Context) error
		}{
			{"db", s.DBCheck},
			{"redis", s.RedisCheck},
			{"tika", s.TikaCheck},
			{"kafka", s.KafkaCheck},
		}
		checks := make([]check, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				continue
			}
			if err := p.fn(ctx); err != nil {
				ok = false
				checks = append(checks, check{Name: p.name, OK: false, Details: err.Error()})
				continue
			}
			checks = append(checks, check{Name: p.name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
