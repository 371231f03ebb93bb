package httpserver

import (
	"net/http"
)

type analyzePatternsRequest struct {
	UserID       string `json:"user_id" validate:"required,max=100"`
	AnalysisType string `json:"analysis_type" validate:"required"`
	TimeRange    string `json:"time_range"`
}

type insightsRequest struct {
	UserID    string `json:"user_id" validate:"required,max=100"`
	TimeRange string `json:"time_range"`
}

type focusTimeRequest struct {
	UserID      string         `json:"user_id" validate:"required,max=100"`
	Preferences map[string]any `json:"preferences"`
}

type userRequest struct {
	UserID string `json:"user_id" validate:"required,max=100"`
}

// AnalyzePatternsHandler handles POST /analyze-patterns.
func (s *Server) AnalyzePatternsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzePatternsRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		writeSuccess(w, s.Insights.AnalyzePatterns(r.Context(), req.UserID, req.AnalysisType, req.TimeRange))
	}
}

// GenerateInsightsHandler handles POST /generate-insights.
func (s *Server) GenerateInsightsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req insightsRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		writeSuccess(w, s.Insights.GenerateInsights(r.Context(), req.UserID, req.TimeRange))
	}
}

// SuggestFocusTimeHandler handles POST /suggest-focus-time.
func (s *Server) SuggestFocusTimeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req focusTimeRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		blocks := s.Insights.SuggestFocusTime(r.Context(), req.UserID, req.Preferences)
		writeSuccess(w, map[string]any{"suggestions": blocks})
	}
}

// DetectMissedMeetingsHandler handles POST /detect-missed-meetings.
func (s *Server) DetectMissedMeetingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		missed := s.Insights.DetectMissedMeetings(r.Context(), req.UserID)
		writeSuccess(w, map[string]any{"missed_meetings": missed, "count": len(missed)})
	}
}
