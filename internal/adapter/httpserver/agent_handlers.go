package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-interview-agent/internal/service/agent"
	"github.com/fairyhunter13/ai-interview-agent/internal/usecase"
)

type commandRequest struct {
	Command string         `json:"command" validate:"required"`
	UserID  string         `json:"user_id" validate:"required,max=100"`
	Context map[string]any `json:"context"`
}

type draftEmailRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
	Subject   string `json:"subject" validate:"required"`
	Context   string `json:"context"`
	Tone      string `json:"tone"`
	UserID    string `json:"user_id" validate:"required,max=100"`
}

type sendEmailRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type recommendationsRequest struct {
	UserID  string                  `json:"user_id" validate:"required,max=100"`
	Context usecase.ActivityContext `json:"context"`
}

// ProcessCommandHandler handles POST /process-command. Unexpected failures
// are reported as {"detail": {"error", "message", "type"}}.
func (s *Server) ProcessCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commandRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		out, err := s.Agent.ProcessCommand(r.Context(), req.UserID, req.Command, req.Context)
		if err != nil {
			writeFailure(w, r, "Command processing failed", err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DraftEmailHandler handles POST /draft-email.
func (s *Server) DraftEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req draftEmailRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		tone := req.Tone
		if tone == "" {
			tone = agent.DefaultTone
		}
		draft, err := s.Agent.DraftEmail(r.Context(), req.UserID, req.Recipient, SanitizeString(req.Subject), req.Context, tone)
		if err != nil {
			writeFailure(w, r, "Email drafting failed", err)
			return
		}
		writeSuccess(w, draft)
	}
}

// SendEmailHandler handles POST /send-email. Delivery failures are part of
// the result body, not an HTTP error.
func (s *Server) SendEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendEmailRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		res := s.Agent.SendEmail(r.Context(), req.Recipient, req.Subject, req.Body)
		writeJSON(w, http.StatusOK, res)
	}
}

// RecommendationsHandler handles POST /proactive/recommendations.
func (s *Server) RecommendationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendationsRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		recs, err := s.Recommendations.Recommend(r.Context(), req.UserID, req.Context)
		if err != nil {
			writeFailure(w, r, "Recommendation generation failed", err)
			return
		}
		writeSuccess(w, recs)
	}
}

// MemoryHandler handles GET /memory/{user_id}.
func (s *Server) MemoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "user_id")
		if !s.validID(w, r, "user_id", id) {
			return
		}
		view, err := s.Agent.MemoryView(r.Context(), id)
		if err != nil {
			writeFailure(w, r, "Memory lookup failed", err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
