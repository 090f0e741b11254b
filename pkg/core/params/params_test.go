package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecom_subsidy/pkg/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const globalYAML = `
opex_percentage_of_capex: 10
traffic_in_the_busy_hour_perc: 20
return_period: 2
discount_rate: 5
input_cost: baseline
costs:
  equipment_capex: 40000
  site_rental_opex: {urban: 9600, suburban: 4000, rural: 2000}
  fiber_m_capex: {urban: 10, suburban: 5, rural: 2}
  core_node_capex: {epc: 100000}
  regional_node_capex: {epc: 100000}
`

const countriesHJSON = `
[
  {
    iso3: MWI
    arpu: { high: 15, medium: 5, low: 2 }
    luminosity: { high: 5, medium: 1 }
    networks: {
      baseline_urban: 3
      baseline_suburban: 3
      baseline_rural: 3
    }
    frequencies: {
      4G: [ { frequency: 800, bandwidth: "2x10" } ]
    }
    financials: { wacc: 15, profit_margin: 20, tax_baseline: 25 }
  }
]
`

func TestLoadGlobal(t *testing.T) {
	gp, err := LoadGlobal(writeFile(t, "global.yaml", globalYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, gp.ReturnPeriod)
	assert.Equal(t, "baseline", gp.InputCost)

	rent, err := gp.Costs.SiteRental(models.Rural)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, rent)

	node, err := gp.Costs.CoreNode("epc")
	require.NoError(t, err)
	assert.Equal(t, 100000.0, node)

	_, err = gp.Costs.CoreNode("5gc")
	assert.Equal(t, "configuration", models.ErrorKind(err))
}

func TestLoadGlobalRejects(t *testing.T) {
	t.Run("missing rural rent", func(t *testing.T) {
		bad := `
traffic_in_the_busy_hour_perc: 20
return_period: 2
costs:
  site_rental_opex: {urban: 9600, suburban: 4000}
  fiber_m_capex: {urban: 10, suburban: 5, rural: 2}
  core_node_capex: {epc: 1}
  regional_node_capex: {epc: 1}
`
		_, err := LoadGlobal(writeFile(t, "global.yml", bad))
		require.Error(t, err)
		assert.True(t, models.IsRecoverable(err))
	})

	t.Run("zero return period", func(t *testing.T) {
		bad := "traffic_in_the_busy_hour_perc: 20\nreturn_period: 0\n"
		_, err := LoadGlobal(writeFile(t, "global.yaml", bad))
		require.Error(t, err)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := LoadGlobal(writeFile(t, "global.toml", "return_period = 2"))
		require.Error(t, err)
		assert.Equal(t, "unsupported_variant", models.ErrorKind(err))
	})
}

func TestLoadCountries(t *testing.T) {
	countries, err := LoadCountries(writeFile(t, "countries.hjson", countriesHJSON))
	require.NoError(t, err)
	require.Contains(t, countries, "MWI")

	mwi := countries["MWI"]
	n, err := mwi.BaselineNetworks(models.Suburban)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	freqs, err := mwi.GenerationFrequencies(models.Gen4G)
	require.NoError(t, err)
	require.Len(t, freqs, 1)
	mhz, err := freqs[0].BandwidthMHz()
	require.NoError(t, err)
	assert.Equal(t, 20.0, mhz)

	assert.Error(t, mwi.ValidateRegime(models.NetworksSRN), "no srn entries")
	assert.NoError(t, mwi.ValidateRegime(models.NetworksBaseline))
}

func TestLoadCountriesRejectsDuplicates(t *testing.T) {
	dup := `[{"iso3": "MWI", "networks": {"baseline_urban": 3, "baseline_suburban": 3, "baseline_rural": 3}},
	         {"iso3": "MWI", "networks": {"baseline_urban": 3, "baseline_suburban": 3, "baseline_rural": 3}}]`
	_, err := LoadCountries(writeFile(t, "countries.json", dup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate country")
}

func TestFinancialTiers(t *testing.T) {
	f := Financials{TaxLow: 10, TaxBaseline: 25, TaxHigh: 40, SpectrumCostLow: 50, SpectrumCostHigh: 50}

	rate, err := f.TaxRate(models.TierHigh)
	require.NoError(t, err)
	assert.Equal(t, 40.0, rate)

	m, err := f.SpectrumMultiplier(models.TierLow)
	require.NoError(t, err)
	assert.Equal(t, 0.5, m)
	m, err = f.SpectrumMultiplier(models.TierHigh)
	require.NoError(t, err)
	assert.Equal(t, 1.5, m)

	_, err = f.TaxRate(models.Tier("extreme"))
	assert.Equal(t, "unsupported_variant", models.ErrorKind(err))
}

func TestLookupTables(t *testing.T) {
	pen := PenetrationLUT{2020: 50}
	v, err := pen.At(2020)
	require.NoError(t, err)
	assert.Equal(t, 50.0, v)
	_, err = pen.At(2030)
	assert.Error(t, err)

	sp := SmartphoneLUT{models.Urban: {2020: 60}}
	v, err = sp.At(models.Suburban, 2020)
	require.NoError(t, err)
	assert.Equal(t, 60.0, v, "suburban uses the urban curve")
	_, err = sp.At(models.Rural, 2020)
	assert.Error(t, err)

	lut := NewCoreLookupTable()
	lut.Set(CoreNode, "R1", AgeNew, 2)
	n, err := lut.Get(CoreNode, "R1", AgeNew)
	require.NoError(t, err)
	assert.Equal(t, 2.0, n)
	_, ok := lut.Lookup(CoreNode, "R1", AgeExisting)
	assert.False(t, ok)
	_, err = lut.Get(CoreEdge, "R1", AgeNew)
	assert.Equal(t, "configuration", models.ErrorKind(err))
	assert.True(t, CoreEdge.IsEdge())
	assert.False(t, RegionalNode.IsEdge())
}
