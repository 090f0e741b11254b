package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecom_subsidy/pkg/core/assess"
	"telecom_subsidy/pkg/core/config"
	"telecom_subsidy/pkg/core/store"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("testdata/engine.toml", "")
	require.NoError(t, err)
	return cfg
}

func TestPlan(t *testing.T) {
	cfg := loadTestConfig(t)
	in, err := LoadInputs(cfg.Inputs)
	require.NoError(t, err)
	assert.Len(t, in.Regions, 3)
	require.Contains(t, in.Countries, "MWI")

	tuples, err := Plan(cfg, in)
	require.NoError(t, err)

	// 2 scenarios x 2 strategies x 2 confidence levels
	require.Len(t, tuples, 8)

	first := tuples[0]
	assert.Equal(t, "MWI", first.Key.Country)
	assert.Equal(t, "low_10_10_10", first.Key.Scenario)
	assert.Equal(t, "baseline", first.Key.InputCost)
	assert.Equal(t, 5, first.Key.Confidence)
	assert.Equal(t, 50, tuples[1].Key.Confidence)
	assert.Equal(t, []int{2020, 2021}, first.Years)
	assert.Equal(t, assess.FirstComeFirstServed, first.Policy)
	assert.Len(t, first.Regions, 2, "only Malawian regions")
	assert.InDelta(t, 52, first.Penetration[2021], 1e-9)
	assert.InDelta(t, 58, tuples[4].Penetration[2021], 1e-9, "baseline scenario forecast")
	assert.NotEmpty(t, first.Inputs)
	assert.Equal(t, first.Inputs, tuples[7].Inputs, "one digest per country")

	// population_km2 is derived when the column is absent
	assert.InDelta(t, 5000, first.Regions[0].PopulationKm2, 1e-9)
	assert.Equal(t, "suburban 1", first.Regions[0].Geotype)
}

func TestPlanRejectsUnknownCountry(t *testing.T) {
	cfg := loadTestConfig(t)
	in, err := LoadInputs(cfg.Inputs)
	require.NoError(t, err)

	cfg.Jobs[0].Country = "UGA"
	_, err = Plan(cfg, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no country parameters")
}

func TestPlanRejectsBadStrategy(t *testing.T) {
	cfg := loadTestConfig(t)
	in, err := LoadInputs(cfg.Inputs)
	require.NoError(t, err)

	cfg.Jobs[0].Strategies = []string{"6G_epc_wireless_baseline_baseline_baseline_baseline"}
	_, err = Plan(cfg, in)
	require.Error(t, err)
}

func TestPlanEndToEnd(t *testing.T) {
	cfg := loadTestConfig(t)
	in, err := LoadInputs(cfg.Inputs)
	require.NoError(t, err)
	tuples, err := Plan(cfg, in)
	require.NoError(t, err)

	sink, err := store.NewCSVSink(t.TempDir())
	require.NoError(t, err)
	o := newOrchestrator(t)
	o.SetSink(sink)

	batch, err := NewRunner(o, cfg.Run.Workers).RunAll(context.Background(), tuples)
	require.NoError(t, err)
	require.NoError(t, sink.Close(context.Background()))

	require.Len(t, batch.Results, len(tuples))
	assert.Empty(t, batch.Failed)
	for _, res := range batch.Results {
		assert.Len(t, res.Regions, 2)
		assert.Empty(t, res.Failures)
		assert.Len(t, res.Annual, 4, "two regions over two years")

		var required float64
		for _, r := range res.Regions {
			assert.InDelta(t, r.Deficit, r.UsedCrossSubsidy+r.RequiredStateSubsidy, 0.01)
			required += r.RequiredStateSubsidy
		}
		assert.InDelta(t, required, res.Summary.RequiredStateSubsidy, 0.01)
	}
}
