package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	"github.com/fairyhunter13/ai-interview-agent/internal/usecase"
)

type startInterviewRequest struct {
	SessionID     string `json:"session_id" validate:"required,max=100"`
	ResumeText    string `json:"resume_text"`
	JobRole       string `json:"job_role" validate:"required"`
	Difficulty    string `json:"difficulty"`
	InterviewType string `json:"interview_type"`
}

type respondRequest struct {
	SessionID  string `json:"session_id" validate:"required,max=100"`
	Response   string `json:"response"`
	ResumeText string `json:"resume_text"`
	JobRole    string `json:"job_role"`
}

type completeRequest struct {
	SessionID  string `json:"session_id" validate:"required,max=100"`
	ResumeText string `json:"resume_text"`
	JobRole    string `json:"job_role"`
}

type startInterviewResponse struct {
	SessionID string `json:"session_id"`
	*domain.QuestionView
}

// StartInterviewHandler handles POST /interview/start.
func (s *Server) StartInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startInterviewRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		if !s.validID(w, r, "session_id", req.SessionID) {
			return
		}
		view, err := s.Interview.Start(r.Context(), usecase.StartInput{
			SessionID:     req.SessionID,
			ResumeText:    req.ResumeText,
			JobRole:       SanitizeString(req.JobRole),
			Difficulty:    req.Difficulty,
			InterviewType: req.InterviewType,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeSuccess(w, startInterviewResponse{SessionID: req.SessionID, QuestionView: view})
	}
}

// RespondHandler handles POST /interview/respond. Answering after the last
// question is a state error reported as {"error": "No active question"}.
func (s *Server) RespondHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req respondRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		if !s.validID(w, r, "session_id", req.SessionID) {
			return
		}
		res, err := s.Interview.SubmitResponse(r.Context(), usecase.RespondInput{
			SessionID:  req.SessionID,
			Response:   req.Response,
			ResumeText: req.ResumeText,
			JobRole:    SanitizeString(req.JobRole),
		})
		if errors.Is(err, domain.ErrNoActiveQuestion) {
			writeStateError(w, http.StatusConflict, domain.ErrNoActiveQuestion.Error())
			return
		}
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeSuccess(w, res)
	}
}

// CompleteInterviewHandler handles POST /interview/complete and deletes the
// session once the analytics are produced.
func (s *Server) CompleteInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		if !s.validID(w, r, "session_id", req.SessionID) {
			return
		}
		analytics, err := s.Interview.Complete(r.Context(), usecase.CompleteInput{
			SessionID:  req.SessionID,
			ResumeText: req.ResumeText,
			JobRole:    SanitizeString(req.JobRole),
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Interview.Clear(r.Context(), req.SessionID); err != nil {
			LoggerFrom(r).Warn("clear completed session failed",
				slog.String("session_id", req.SessionID),
				slog.Any("error", err))
		}
		writeSuccess(w, map[string]any{"analytics": analytics})
	}
}

// SessionStateHandler handles GET /interview/session/{session_id}.
func (s *Server) SessionStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session_id")
		if !s.validID(w, r, "session_id", id) {
			return
		}
		snap, err := s.Interview.State(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// InterviewResultHandler handles GET /interview/results/{session_id}.
func (s *Server) InterviewResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session_id")
		if !s.validID(w, r, "session_id", id) {
			return
		}
		res, err := s.Interview.Result(r.Context(), id)
		if err != nil {
			writeError(w, r, err, map[string]string{"session_id": id})
			return
		}
		writeSuccess(w, res)
	}
}

func (s *Server) validID(w http.ResponseWriter, r *http.Request, field, id string) bool {
	v := ValidateID(field, id)
	if v.Valid {
		return true
	}
	writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, v.Errors[0].Message), v.Errors)
	return false
}
