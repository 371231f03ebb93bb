package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// allowedExt enforces an allowlist for uploads: .txt, .pdf, .docx
func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".pdf", ".docx":
		return true
	}
	return false
}

func allowedMIMEFor(m string, filename string) bool {
	m = strings.ToLower(m)
	// For .txt files, accept any text/* including text/html as some detectors misclassify rich text
	if strings.HasSuffix(strings.ToLower(filename), ".txt") {
		if strings.HasPrefix(m, "text/") {
			return true
		}
	}
	if strings.HasPrefix(m, "text/plain") { // allow parameters such as charset
		return true
	}
	// DOCX is a zip container; older detectors report the container type.
	if strings.HasSuffix(strings.ToLower(filename), ".docx") && m == "application/zip" {
		return true
	}
	return m == "application/pdf" || m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

type parseResumeResponse struct {
	Text  string `json:"text"`
	Pages int    `json:"pages"`
}

// ParseResumeHandler handles POST /parse-resume with a multipart "file"
// field and returns the extracted text and page count.
func (s *Server) ParseResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		if maxBytes <= 0 {
			maxBytes = 10 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(strings.ToLower(err.Error()), "too large") {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_ = json.NewEncoder(w).Encode(errorEnvelope{Error: apiError{
					Code:    "INVALID_ARGUMENT",
					Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file required", domain.ErrInvalidArgument), map[string]string{"field": "file"})
			return
		}
		defer func() { _ = file.Close() }()

		if !allowedExt(header.Filename) {
			writeError(w, r, fmt.Errorf("%w: unsupported file type", domain.ErrInvalidArgument), map[string]string{"file": header.Filename})
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: read upload: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if mt := mimetype.Detect(data); !allowedMIMEFor(mt.String(), header.Filename) {
			writeError(w, r, fmt.Errorf("%w: content does not match file type", domain.ErrInvalidArgument),
				map[string]string{"file": header.Filename, "detected": mt.String()})
			return
		}

		doc, err := s.Resumes.Extract(r.Context(), header.Filename, data)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeSuccess(w, parseResumeResponse{Text: doc.Text, Pages: doc.Pages})
	}
}
