// Package fixtures provides the reference parameter set shared by package
// tests: one urban Malawian region, three competing networks, 15% WACC.
package fixtures

import (
	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/models"
)

const RegionID = "MWI.1.1.1_1"

// Region returns an urban region of 10,000 people on 2 km2 with bright
// night lights (high ARPU tier).
func Region() models.RawRegion {
	return models.RawRegion{
		CountryCode:       "MWI",
		ID:                RegionID,
		Population:        10000,
		AreaKm2:           2,
		PopulationKm2:     5000,
		Geotype:           "urban",
		MeanLuminosityKm2: 26.736407691655717,
		Decile:            100,
		NewSites:          1,
		UpgradedSites:     1,
		BackhaulNew:       1,
		Integration:       models.IntegrationBaseline,
	}
}

// Global returns the scenario-wide parameters.
func Global() *params.GlobalParameters {
	return &params.GlobalParameters{
		OpexPercentageOfCapex: 10,
		TrafficInBusyHourPerc: 20,
		ReturnPeriod:          2,
		DiscountRate:          5,
		BaseYear:              2020,
		InputCost:             "baseline",
		Costs: params.Costs{
			EquipmentCapex:              40000,
			SiteBuildCapex:              30000,
			InstallationCapex:           30000,
			OperationAndMaintenanceOpex: 7400,
			PowerOpex:                   2200,
			SiteRentalOpex: map[string]float64{
				"urban":    9600,
				"suburban": 4000,
				"rural":    2000,
			},
			FiberCapexPerM: map[string]float64{
				"urban":    10,
				"suburban": 5,
				"rural":    2,
			},
			WirelessSmallCapex:    10000,
			WirelessMediumCapex:   20000,
			WirelessLargeCapex:    40000,
			CoreNodeCapex:         map[string]float64{"epc": 100000},
			CoreEdgeCapexPerM:     20,
			RegionalNodeCapex:     map[string]float64{"epc": 100000},
			RegionalEdgeCapexPerM: 10,
		},
	}
}

// Country returns the per-country parameters.
func Country() *params.CountryParameters {
	return &params.CountryParameters{
		ISO3:       "MWI",
		Luminosity: params.LuminosityThresholds{High: 5, Medium: 1},
		ARPU:       params.ARPUTiers{High: 15, Medium: 5, Low: 2},
		Networks: map[string]int{
			"baseline_urban":    3,
			"baseline_suburban": 3,
			"baseline_rural":    3,
			"srn_urban":         3,
			"srn_suburban":      3,
			"srn_rural":         1,
		},
		Frequencies: map[string][]params.Frequency{
			"4G": {
				{FrequencyMHz: 800, Bandwidth: "2x10"},
				{FrequencyMHz: 1800, Bandwidth: "2x10"},
			},
			"3G": {
				{FrequencyMHz: 2100, Bandwidth: "2x5"},
			},
		},
		Financials: params.Financials{
			WACC:                      15,
			ProfitMargin:              20,
			SpectrumCoverageUSDMHzPop: 1,
			SpectrumCapacityUSDMHzPop: 1,
			SpectrumCostLow:           50,
			SpectrumCostHigh:          50,
			TaxLow:                    10,
			TaxBaseline:               25,
			TaxHigh:                   40,
			AdministrationPercentage:  10,
			AcquisitionPerSubscriber:  10,
		},
	}
}

// CoreLUT holds 1 km of edge and two nodes, new and existing, for every
// asset type in the fixture region.
func CoreLUT() *params.CoreLookupTable {
	lut := params.NewCoreLookupTable()
	for _, age := range []params.Age{params.AgeNew, params.AgeExisting} {
		lut.Set(params.CoreEdge, RegionID, age, 1000)
		lut.Set(params.CoreNode, RegionID, age, 2)
		lut.Set(params.RegionalEdge, RegionID, age, 1000)
		lut.Set(params.RegionalNode, RegionID, age, 2)
	}
	return lut
}

// Penetration is a flat 50% forecast for 2020.
func Penetration() params.PenetrationLUT {
	return params.PenetrationLUT{2020: 50}
}

// Smartphones is a flat 50% adoption forecast for 2020.
func Smartphones() params.SmartphoneLUT {
	return params.SmartphoneLUT{
		models.Urban: {2020: 50},
		models.Rural: {2020: 50},
	}
}

// Scenario targets 50 GB a month everywhere.
func Scenario() models.Scenario {
	return models.Scenario{Name: "S1", UrbanGB: 50, SuburbanGB: 50, RuralGB: 50}
}
