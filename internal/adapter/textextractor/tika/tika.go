// Package tika provides Apache Tika integration for text extraction.
//
// It extracts text content and page counts from uploaded resumes in PDF,
// Word and plain text formats.
package tika

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// maxResponseBytes caps the extracted text read from Tika.
const maxResponseBytes = 10 << 20

// pageCountKeys are the metadata fields Tika uses for page counts.
var pageCountKeys = []string{"xmpTPg:NPages", "meta:page-count", "Page-Count"}

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
// It performs PUT /tika with Accept: text/plain for text and PUT /meta for
// the page count. See: https://tika.apache.org/server/ for API details.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
}

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9998"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "Tika " + r.Method + " " + r.URL.Path
				}),
			),
		},
		maxRetries: 2,
	}
}

// Extract returns the plain text and page count of an uploaded document.
// A missing page count is reported as one page.
func (c *Client) Extract(ctx context.Context, fileName string, data []byte) (domain.ExtractedDocument, error) {
	ctx, span := observability.StartSpan(ctx, "tika.Extract",
		attribute.String("file_name", fileName),
		attribute.Int("size", len(data)))
	defer span.End()
	start := time.Now()

	ct := contentTypeFromExt(filepath.Ext(fileName))
	text, err := c.put(ctx, "/tika", "text/plain", ct, data)
	observability.ObserveExtraction(time.Since(start), err)
	if err != nil {
		observability.RecordSpanError(span, err)
		return domain.ExtractedDocument{}, fmt.Errorf("op=tika.Extract: %w", err)
	}

	pages := 1
	meta, err := c.put(ctx, "/meta", "application/json", ct, data)
	if err != nil {
		obsctx.LoggerFromContext(ctx).Warn("tika metadata unavailable", slog.Any("error", err))
	} else if n, ok := pageCount(meta); ok {
		pages = n
	}
	return domain.ExtractedDocument{Text: string(text), Pages: pages}, nil
}

// put sends data to path, retrying transport errors and 5xx responses.
func (c *Client) put(ctx context.Context, path, accept, contentType string, data []byte) ([]byte, error) {
	var out []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", accept)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("tika status %d", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("%w: tika status %d", domain.ErrInvalidArgument, resp.StatusCode))
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return err
		}
		out = b
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return out, nil
}

// pageCount reads the page count from a /meta JSON document. Tika may
// encode values as strings, numbers or arrays of either.
func pageCount(meta []byte) (int, bool) {
	var m map[string]any
	if err := json.Unmarshal(meta, &m); err != nil {
		return 0, false
	}
	for _, k := range pageCountKeys {
		if n, ok := toInt(m[k]); ok && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	case []any:
		if len(x) > 0 {
			return toInt(x[0])
		}
	}
	return 0, false
}

func contentTypeFromExt(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		if ext != "" {
			return mime.TypeByExtension(ext)
		}
	}
	return ""
}
