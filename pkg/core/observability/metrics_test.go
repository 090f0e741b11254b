package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/ternarybob/arbor"

	"telecom_subsidy/pkg/models"
)

func TestTupleStartedRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewEngineMetrics(reg)
	if err != nil {
		t.Fatalf("NewEngineMetrics: %v", err)
	}

	done := m.TupleStarted("MWI")
	if got := testutil.ToFloat64(m.TuplesInFlight); got != 1 {
		t.Fatalf("engine_tuples_in_flight = %v, want 1", got)
	}
	done(nil)
	m.TupleStarted("MWI")(errors.New("boom"))

	if got := testutil.ToFloat64(m.TuplesInFlight); got != 0 {
		t.Fatalf("engine_tuples_in_flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.Tuples.WithLabelValues("MWI", "ok")); got != 1 {
		t.Fatalf("engine_tuples_total{status=ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Tuples.WithLabelValues("MWI", "error")); got != 1 {
		t.Fatalf("engine_tuples_total{status=error} = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "engine_tuple_duration_seconds", map[string]string{"country": "MWI"}); count != 2 {
		t.Fatalf("engine_tuple_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestRecordResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewEngineMetrics(reg)
	if err != nil {
		t.Fatalf("NewEngineMetrics: %v", err)
	}

	key := models.RunKey{Country: "MWI", Scenario: "S1_50_50_50", Strategy: "4G_epc_wireless_baseline_baseline_baseline_baseline"}
	m.RecordResult(&models.TupleResult{
		Key:     key,
		Regions: make([]models.AssessedRegion, 3),
		Failures: []models.RegionFailure{
			{RegionID: "A", Stage: "costs", Kind: "configuration"},
			{RegionID: "B", Stage: "costs", Kind: "configuration"},
		},
		Summary: models.NationalSummary{RequiredStateSubsidy: 1234.5},
	})

	if got := testutil.ToFloat64(m.RegionsAssessed.WithLabelValues("MWI")); got != 3 {
		t.Fatalf("engine_regions_assessed_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.RegionFailures.WithLabelValues("costs", "configuration")); got != 2 {
		t.Fatalf("engine_region_failures_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.StateSubsidy.WithLabelValues(key.Country, key.Scenario, key.Strategy)); got != 1234.5 {
		t.Fatalf("engine_required_state_subsidy = %v, want 1234.5", got)
	}
}

func TestNewEngineMetricsReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewEngineMetrics(reg)
	if err != nil {
		t.Fatalf("first NewEngineMetrics: %v", err)
	}
	second, err := NewEngineMetrics(reg)
	if err != nil {
		t.Fatalf("second NewEngineMetrics: %v", err)
	}
	if first.Tuples != second.Tuples {
		t.Fatalf("expected the existing counter to be reused")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *EngineMetrics
	m.TupleStarted("MWI")(nil)
	m.RecordResult(&models.TupleResult{})
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewEngineMetrics(reg)
	if err != nil {
		t.Fatalf("NewEngineMetrics: %v", err)
	}
	m.TupleStarted("MWI")(nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	for _, metric := range []string{"engine_tuples_total", "engine_tuple_duration_seconds", "engine_tuples_in_flight"} {
		if !strings.Contains(rr.Body.String(), metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, arbor.NewLogger())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := Tracer().Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Fatalf("expected a noop span when tracing is disabled")
	}
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "carrier-pigeon"}, nil)
	if err == nil {
		t.Fatalf("expected an error for an unknown exporter")
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
