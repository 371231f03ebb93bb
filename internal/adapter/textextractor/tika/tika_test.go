package tika_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

func TestClient_Extract(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		meta      string
		wantCT    string
		wantPages int
	}{
		{name: "pdf with string page count", fileName: "cv.pdf", meta: `{"xmpTPg:NPages":"3"}`, wantCT: "application/pdf", wantPages: 3},
		{name: "docx with array page count", fileName: "cv.DOCX", meta: `{"meta:page-count":["2"]}`,
			wantCT: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", wantPages: 2},
		{name: "text without page count", fileName: "cv.txt", meta: `{"Content-Type":"text/plain"}`, wantCT: "text/plain", wantPages: 1},
		{name: "unparseable metadata", fileName: "cv.txt", meta: `not json`, wantCT: "text/plain", wantPages: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, tc.wantCT, r.Header.Get("Content-Type"))
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, "raw bytes", string(body))
				switch r.URL.Path {
				case "/tika":
					assert.Equal(t, "text/plain", r.Header.Get("Accept"))
					_, _ = w.Write([]byte("Jane Doe\n\nEXPERIENCE: Acme"))
				case "/meta":
					assert.Equal(t, "application/json", r.Header.Get("Accept"))
					_, _ = w.Write([]byte(tc.meta))
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			}))
			defer srv.Close()

			doc, err := tika.New(srv.URL+"/").Extract(context.Background(), tc.fileName, []byte("raw bytes"))
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe\n\nEXPERIENCE: Acme", doc.Text)
			assert.Equal(t, tc.wantPages, doc.Pages)
		})
	}
}

func TestClient_ExtractRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tika" && calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Path == "/meta" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("text"))
	}))
	defer srv.Close()

	doc, err := tika.New(srv.URL).Extract(context.Background(), "cv.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, domain.ExtractedDocument{Text: "text", Pages: 1}, doc)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ExtractRejectedDocument(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := tika.New(srv.URL).Extract(context.Background(), "cv.pdf", []byte("x"))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}
