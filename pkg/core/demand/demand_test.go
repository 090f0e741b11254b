package demand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"telecom_subsidy/pkg/core/fixtures"
	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/strategy"
	"telecom_subsidy/pkg/models"
)

func baseInput() Input {
	country := fixtures.Country()
	country.Networks["baseline_urban"] = 2

	return Input{
		Key:         models.RunKey{Country: "MWI", Scenario: "S1_50_50_50", Confidence: 50},
		Regions:     []models.RawRegion{fixtures.Region()},
		Strategy:    strategy.MustParse("4G_epc_wireless_baseline_baseline_baseline_baseline"),
		Scenario:    fixtures.Scenario(),
		Global:      fixtures.Global(),
		Country:     country,
		Years:       []int{2020},
		Penetration: fixtures.Penetration(),
		Smartphones: fixtures.Smartphones(),
		Logger:      arbor.NewLogger(),
	}
}

func TestEstimate_SingleUrbanRegion(t *testing.T) {
	out, err := Estimate(baseInput())
	require.NoError(t, err)
	require.Len(t, out.Regions, 1)

	r := out.Regions[0]
	assert.Equal(t, models.Urban, r.SettlementClass)
	assert.Equal(t, 2, r.DemandNetworks)
	assert.Equal(t, 5000.0, r.PopulationWithPhones)
	assert.Equal(t, 2500.0, r.PhonesOnNetwork)
	assert.Equal(t, 1250.0, r.SmartphonesOnNetwork)
	assert.Equal(t, 15.0, r.ARPUDiscountedMonthly)

	// high ARPU x phones on network x 12 months
	assert.Equal(t, 450000.0, r.TotalRevenue)
	assert.Equal(t, 225000.0, r.RevenueKm2)

	// 50 GB/month at 20% busy hour is 0.74 Mbps per user
	assert.InDelta(t, 1250*0.74/2, r.DemandMbpsKm2, 1e-9)

	require.Len(t, out.Annual, 1)
	assert.Equal(t, 2020, out.Annual[0].Year)
	assert.Equal(t, "MWI", out.Annual[0].Country)
	assert.Equal(t, 450000.0, out.Annual[0].Revenue)
}

func TestEstimate_DropsRegionsWithoutArea(t *testing.T) {
	in := baseInput()
	zero := fixtures.Region()
	zero.ID = "MWI.zero"
	zero.AreaKm2 = 0
	negative := fixtures.Region()
	negative.ID = "MWI.negative"
	negative.AreaKm2 = -1
	in.Regions = append(in.Regions, zero, negative)

	out, err := Estimate(in)
	require.NoError(t, err)

	assert.Len(t, out.Regions, 1)
	assert.Equal(t, 2, out.Dropped)
	for _, a := range out.Annual {
		assert.Equal(t, fixtures.RegionID, a.RegionID)
	}
}

func TestEstimate_PeakYearDemandAndDiscountedRevenue(t *testing.T) {
	in := baseInput()
	in.Years = []int{2020, 2021}
	in.Penetration = params.PenetrationLUT{2020: 50, 2021: 80}
	in.Smartphones = params.SmartphoneLUT{
		models.Urban: {2020: 50, 2021: 40},
	}

	out, err := Estimate(in)
	require.NoError(t, err)
	r := out.Regions[0]

	// 2020: 2500 phones, 1250 smartphones; 2021: 4000 phones, 1600 smartphones
	assert.InDelta(t, 1600*0.74/2, r.DemandMbpsKm2, 1e-9)
	want := 15*2500*12 + 15/1.05*4000*12
	assert.Equal(t, float64(int64(want+0.5)), r.TotalRevenue)

	// point-in-time fields carry the final year
	assert.Equal(t, 4000.0, r.PhonesOnNetwork)
	assert.Len(t, out.Annual, 2)
}

func TestEstimate_SuburbanUsesUrbanSmartphoneCurve(t *testing.T) {
	in := baseInput()
	sub := fixtures.Region()
	sub.Geotype = "suburban 1"
	in.Regions = []models.RawRegion{sub}
	in.Smartphones = params.SmartphoneLUT{models.Urban: {2020: 30}}

	out, err := Estimate(in)
	require.NoError(t, err)
	require.Len(t, out.Regions, 1)
	assert.Equal(t, 30.0, out.Regions[0].SmartphonePenetration)
}

func TestEstimate_SRNRegimeUsesItsNetworkCount(t *testing.T) {
	in := baseInput()
	rural := fixtures.Region()
	rural.Geotype = "rural 2"
	in.Regions = []models.RawRegion{rural}
	in.Strategy = strategy.MustParse("4G_epc_wireless_srn_srn_baseline_baseline")

	out, err := Estimate(in)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Regions[0].DemandNetworks)
	assert.Equal(t, 5000.0, out.Regions[0].PhonesOnNetwork)
}

func TestEstimate_MissingForecastSkipsOnlyThatRegion(t *testing.T) {
	in := baseInput()
	rural := fixtures.Region()
	rural.ID = "MWI.rural"
	rural.Geotype = "rural 1"
	in.Regions = append(in.Regions, rural)
	in.Smartphones = params.SmartphoneLUT{models.Urban: {2020: 50}}

	out, err := Estimate(in)
	require.NoError(t, err)

	require.Len(t, out.Regions, 1)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "MWI.rural", out.Failures[0].RegionID)
	assert.Equal(t, "configuration", out.Failures[0].Kind)
}

func TestEstimate_RequiresYears(t *testing.T) {
	in := baseInput()
	in.Years = nil

	_, err := Estimate(in)
	assert.Equal(t, "configuration", models.ErrorKind(err))
}

func TestPerUserMbps(t *testing.T) {
	assert.Equal(t, 0.74, PerUserMbps(50, 20))
	assert.Equal(t, 0.0, PerUserMbps(0, 20))
	// 30 GB a month, whole day in the busy hour: 1 GB/h
	assert.Equal(t, 2.22, PerUserMbps(30, 100))
}

func TestEstimateARPU(t *testing.T) {
	country := fixtures.Country()

	assert.Equal(t, 15.0, EstimateARPU(10, country, 5, 2020, 2020))
	assert.Equal(t, 5.0, EstimateARPU(2, country, 5, 2020, 2020))
	assert.Equal(t, 2.0, EstimateARPU(0, country, 5, 2020, 2020))
	// thresholds are strict
	assert.Equal(t, 5.0, EstimateARPU(5, country, 5, 2020, 2020))
	assert.InDelta(t, 15/(1.1*1.1), EstimateARPU(10, country, 10, 2022, 2020), 1e-12)
}

func TestSummarise(t *testing.T) {
	out, err := Estimate(baseInput())
	require.NoError(t, err)

	s := Summarise(out.Regions)
	assert.Equal(t, 1, s.Regions)
	assert.Equal(t, 450000.0, s.TotalRevenue)
}
