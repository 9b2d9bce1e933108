package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/bookshelf/domain/enrichment"
)

func TestRecorder_CountsAttemptsByOutcome(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.RecordAttempt(enrichment.OutcomeCallFailure)
	r.RecordAttempt(enrichment.OutcomeCallFailure)
	r.RecordAttempt(enrichment.OutcomeSuccess)

	assert.InDelta(t, 2, testutil.ToFloat64(r.attempts.WithLabelValues("call_failure")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(r.attempts.WithLabelValues("success")), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(r.attempts.WithLabelValues("parse_failure")), 1e-9)
}

func TestRecorder_RejectionsAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.RecordRejection()
	r.RecordDuration(6 * time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(r.rejections), 1e-9)
	count, err := testutil.GatherAndCount(reg, "bookshelf_enrichment_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	NewRecorder(reg).RecordRejection()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookshelf_enrichment_rejections_total 1")
	assert.Contains(t, w.Body.String(), `bookshelf_enrichment_attempts_total{outcome="success"} 0`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
