package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestHTTPMetricsMiddleware_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	mw := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) }))
	mw.ServeHTTP(rec, r)
	if rec.Result().StatusCode != 204 {
		t.Fatalf("want 204")
	}
}

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}

func TestObserveAIRequest_CountsFailures(t *testing.T) {
	before := counterValue(t, AIFailuresTotal.WithLabelValues("groq", "evaluate"))
	ObserveAIRequest("groq", "evaluate", time.Millisecond, errors.New("boom"))
	ObserveAIRequest("groq", "evaluate", time.Millisecond, nil)
	assert.Equal(t, before+1, counterValue(t, AIFailuresTotal.WithLabelValues("groq", "evaluate")))
}

func TestDomainMetricHelpers(t *testing.T) {
	StartInterview("technical")
	CompleteInterview("technical")
	ObserveEvaluation(82)
	ObserveEvaluation(140) // ignored
	ObserveExecution(false, 3)
	ObserveTool("send_email", nil)
	assert.GreaterOrEqual(t, counterValue(t, InterviewSessionsStarted.WithLabelValues("technical")), 1.0)
	assert.GreaterOrEqual(t, counterValue(t, ExecutorRunsTotal.WithLabelValues("failure")), 1.0)
}
