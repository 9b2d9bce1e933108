// Package metrics exposes enrichment pipeline metrics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixml/bookshelf/domain/enrichment"
)

const namespace = "bookshelf"

// Recorder implements enrichment.Recorder with Prometheus collectors.
type Recorder struct {
	attempts   *prometheus.CounterVec
	rejections prometheus.Counter
	duration   prometheus.Histogram
}

// NewRecorder registers the enrichment collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	r := &Recorder{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrichment_attempts_total",
				Help:      "Generation attempts by outcome.",
			},
			[]string{"outcome"},
		),
		rejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_rejections_total",
			Help:      "Reviews rejected because every generation attempt failed.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enrichment_duration_seconds",
			Help:      "End-to-end enrichment time including backoff.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
	// Known outcomes start at zero so dashboards see every series.
	for _, o := range []enrichment.Outcome{
		enrichment.OutcomeSuccess,
		enrichment.OutcomeParseFailure,
		enrichment.OutcomeCallFailure,
	} {
		r.attempts.WithLabelValues(string(o))
	}
	return r
}

// RecordAttempt counts one generation attempt.
func (r *Recorder) RecordAttempt(outcome enrichment.Outcome) {
	r.attempts.WithLabelValues(string(outcome)).Inc()
}

// RecordRejection counts one rejected review.
func (r *Recorder) RecordRejection() {
	r.rejections.Inc()
}

// RecordDuration observes one enrichment run.
func (r *Recorder) RecordDuration(d time.Duration) {
	r.duration.Observe(d.Seconds())
}

var _ enrichment.Recorder = (*Recorder)(nil)

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
