// Package observability exposes engine metrics and tracing setup.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"telecom_subsidy/pkg/models"
)

// EngineMetrics bundles the batch runner's Prometheus metrics.
type EngineMetrics struct {
	gatherer prometheus.Gatherer

	Tuples          *prometheus.CounterVec
	TupleDurations  *prometheus.HistogramVec
	RegionsAssessed *prometheus.CounterVec
	RegionFailures  *prometheus.CounterVec
	StateSubsidy    *prometheus.GaugeVec
	TuplesInFlight  prometheus.Gauge
}

// NewEngineMetrics registers the engine metrics against reg, defaulting to
// the global registry when nil. Registering twice returns the existing
// collectors.
func NewEngineMetrics(reg prometheus.Registerer) (*EngineMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	tuples, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_tuples_total",
		Help: "Completed (country, scenario, strategy) tuples, labeled by country and outcome.",
	}, []string{"country", "status"}), "engine_tuples_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_tuple_duration_seconds",
		Help:    "Wall time to run one tuple through demand, cost and assessment.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"country"}), "engine_tuple_duration_seconds")
	if err != nil {
		return nil, err
	}

	assessed, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_regions_assessed_total",
		Help: "Regions that reached the assessment output.",
	}, []string{"country"}), "engine_regions_assessed_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_region_failures_total",
		Help: "Regions skipped by a recoverable error, labeled by stage and error kind.",
	}, []string{"stage", "kind"}), "engine_region_failures_total")
	if err != nil {
		return nil, err
	}

	subsidy, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_required_state_subsidy",
		Help: "Required state subsidy of the last completed tuple.",
	}, []string{"country", "scenario", "strategy"}), "engine_required_state_subsidy")
	if err != nil {
		return nil, err
	}

	inFlight, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "engine_tuples_in_flight",
		Help: "Tuples currently being processed.",
	}), "engine_tuples_in_flight")
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		gatherer:        gatherer,
		Tuples:          tuples,
		TupleDurations:  durations,
		RegionsAssessed: assessed,
		RegionFailures:  failures,
		StateSubsidy:    subsidy,
		TuplesInFlight:  inFlight,
	}, nil
}

// TupleStarted marks a tuple as in flight. The returned func records its
// outcome and duration.
func (m *EngineMetrics) TupleStarted(country string) func(err error) {
	if m == nil {
		return func(error) {}
	}
	start := time.Now()
	m.TuplesInFlight.Inc()
	return func(err error) {
		m.TuplesInFlight.Dec()
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.Tuples.WithLabelValues(country, status).Inc()
		m.TupleDurations.WithLabelValues(country).Observe(time.Since(start).Seconds())
	}
}

// RecordResult updates the per-tuple counters from a finished result.
func (m *EngineMetrics) RecordResult(res *models.TupleResult) {
	if m == nil || res == nil {
		return
	}
	m.RegionsAssessed.WithLabelValues(res.Key.Country).Add(float64(len(res.Regions)))
	for _, f := range res.Failures {
		m.RegionFailures.WithLabelValues(f.Stage, f.Kind).Inc()
	}
	m.StateSubsidy.WithLabelValues(res.Key.Country, res.Key.Scenario, res.Key.Strategy).
		Set(res.Summary.RequiredStateSubsidy)
}

// Gatherer returns the gatherer the metrics were registered with.
func (m *EngineMetrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return nil
	}
	return m.gatherer
}

// Handler exposes a /metrics handler.
func (m *EngineMetrics) Handler() http.Handler {
	gatherer := m.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
