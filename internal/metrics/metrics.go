// Package metrics records batch statistics in a private Prometheus registry.
// A CLI run is short-lived, so the registry is written out as a node-exporter
// textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "profilepack"

// Recorder holds the batch collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	outcomes    *prometheus.CounterVec
	evaluations prometheus.Counter
	searchTime  prometheus.Histogram
	families    prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_outcomes_total",
			Help:      "Profiles processed, by outcome kind.",
		}, []string{"kind"}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_evaluations_total",
			Help:      "Divisor-pair candidates evaluated by the box search.",
		}),
		searchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time of one box search.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		families: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "box_families",
			Help:      "Shared box footprints chosen by the last consolidation.",
		}),
	}
	r.registry.MustRegister(r.outcomes, r.evaluations, r.searchTime, r.families)
	return r
}

// ObserveSearch records one finished box search.
func (r *Recorder) ObserveSearch(evaluations int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.evaluations.Add(float64(evaluations))
	r.searchTime.Observe(elapsed.Seconds())
}

// ObserveOutcome counts one profile result. kind is "packed" or an error kind.
func (r *Recorder) ObserveOutcome(kind string) {
	if r == nil {
		return
	}
	if kind == "" {
		kind = "packed"
	}
	r.outcomes.WithLabelValues(kind).Inc()
}

func (r *Recorder) SetFamilies(n int) {
	if r == nil {
		return
	}
	r.families.Set(float64(n))
}

// Registry exposes the underlying registry, or nil for a nil recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes every collector in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
