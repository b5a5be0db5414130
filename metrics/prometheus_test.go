package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestExporterHandler(t *testing.T) {
	exporter := NewExporter(DefaultConfig())

	exporter.RecordRequest("generate-content", 200, 1500*time.Millisecond)
	exporter.RecordOutcome("generate", "success", "")
	exporter.RecordCacheHit("catalog")
	exporter.RecordCacheMiss("post")
	exporter.RecordTurn("user")
	exporter.GenerationStarted()

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, name := range []string{
		"crea_client_requests_total",
		"crea_client_request_latency_seconds",
		"crea_client_outcomes_total",
		"crea_cache_hits_total",
		"crea_cache_misses_total",
		"crea_conversation_turns_total",
		"crea_conversation_generating",
	} {
		assert.True(t, strings.Contains(body, name), "expected %s in output", name)
	}
}

func TestExporterCounts(t *testing.T) {
	exporter := NewExporter(Config{})

	exporter.RecordOutcome("regenerate", "error", "REGENERATION_ERROR")
	exporter.RecordOutcome("regenerate", "error", "REGENERATION_ERROR")
	assert.Equal(t, 2.0, testutil.ToFloat64(exporter.outcomes.WithLabelValues("regenerate", "error", "REGENERATION_ERROR")))

	exporter.GenerationStarted()
	exporter.GenerationFinished()
	assert.Equal(t, 0.0, testutil.ToFloat64(exporter.generating))
}

func TestNilExporterIsNoop(t *testing.T) {
	var exporter *Exporter

	assert.NotPanics(t, func() {
		exporter.RecordRequest("x", 500, time.Second)
		exporter.RecordOutcome("x", "error", "INTERNAL_ERROR")
		exporter.RecordCacheHit("x")
		exporter.RecordCacheMiss("x")
		exporter.RecordTurn("assistant")
		exporter.GenerationStarted()
		exporter.GenerationFinished()
	})

	w := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
