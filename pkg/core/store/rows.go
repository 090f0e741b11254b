package store

import (
	"fmt"
	"strconv"

	"telecom_subsidy/pkg/models"
)

// Column sets shared by the CSV and Postgres sinks.
var (
	keyColumns = []string{"run_id", "gid_0", "scenario", "strategy", "input_cost", "confidence"}

	regionColumns = append(append([]string{}, keyColumns...),
		"gid_id", "geotype", "decile", "population", "area_km2", "population_km2",
		"demand_networks", "arpu_discounted_monthly", "phones_on_network", "smartphones_on_network",
		"demand_mbps_km2", "total_mno_revenue", "revenue_km2",
		"mno_network_cost", "mno_network_capex", "mno_network_opex",
		"ran_capex", "ran_opex", "backhaul_capex", "backhaul_opex", "civils_capex", "core_capex", "core_opex",
		"spectrum_cost", "tax", "administration", "profit_margin", "total_mno_cost",
		"available_cross_subsidy", "deficit", "used_cross_subsidy", "required_state_subsidy",
		"total_market_revenue", "total_market_network_cost", "total_administration",
		"total_spectrum_cost", "total_tax", "total_profit_margin", "total_market_cost",
		"total_available_cross_subsidy", "total_deficit", "total_used_cross_subsidy",
		"total_required_state_subsidy",
	)

	annualColumns = append(append([]string{}, keyColumns...),
		"gid_id", "year", "population", "area_km2", "population_km2", "geotype",
		"arpu_discounted_monthly", "penetration", "population_with_phones", "phones_on_network",
		"smartphone_penetration", "population_with_smartphones", "smartphones_on_network",
		"demand_mbps_km2", "revenue",
	)

	summaryColumns = append(append([]string{}, keyColumns...),
		"regions", "failed_regions", "dropped_regions", "population", "total_mno_revenue",
		"mno_network_cost", "total_mno_cost", "available_cross_subsidy",
		"used_cross_subsidy", "required_state_subsidy",
	)

	failureColumns = append(append([]string{}, keyColumns...), "gid_id", "stage", "kind", "error")
)

func keyValues(k models.RunKey) []any {
	return []any{k.RunID, k.Country, k.Scenario, k.Strategy, k.InputCost, k.Confidence}
}

func regionRow(k models.RunKey, r models.AssessedRegion) []any {
	b := r.Buckets
	m := r.Market
	return append(keyValues(k),
		r.ID, r.Geotype, r.Decile, r.Population, r.AreaKm2, r.PopulationKm2,
		r.DemandNetworks, r.ARPUDiscountedMonthly, r.PhonesOnNetwork, r.SmartphonesOnNetwork,
		r.DemandMbpsKm2, r.TotalRevenue, r.RevenueKm2,
		r.NetworkCost, r.NetworkCapex, r.NetworkOpex,
		b.RANCapex, b.RANOpex, b.BackhaulCapex, b.BackhaulOpex, b.CivilsCapex, b.CoreCapex, b.CoreOpex,
		r.SpectrumCost, r.Tax, r.Administration, r.ProfitMargin, r.TotalCost,
		r.AvailableCrossSubsidy, r.Deficit, r.UsedCrossSubsidy, r.RequiredStateSubsidy,
		m.Revenue, m.NetworkCost, m.Administration,
		m.SpectrumCost, m.Tax, m.ProfitMargin, m.Cost,
		m.AvailableCrossSubsidy, m.Deficit, m.UsedCrossSubsidy,
		m.RequiredStateSubsidy,
	)
}

func annualRow(k models.RunKey, a models.AnnualDemand) []any {
	return append(keyValues(k),
		a.RegionID, a.Year, a.Population, a.AreaKm2, a.PopulationKm2, a.SettlementClass,
		a.ARPUDiscountedMonthly, a.Penetration, a.PopulationWithPhones, a.PhonesOnNetwork,
		a.SmartphonePenetration, a.PopulationWithSmartphones, a.SmartphonesOnNetwork,
		a.DemandMbpsKm2, a.Revenue,
	)
}

func summaryRow(res *models.TupleResult) []any {
	s := res.Summary
	return append(keyValues(res.Key),
		s.Regions, len(res.Failures), res.Dropped, s.Population, s.TotalRevenue,
		s.NetworkCost, s.TotalCost, s.AvailableCrossSubsidy,
		s.UsedCrossSubsidy, s.RequiredStateSubsidy,
	)
}

func failureRow(k models.RunKey, f models.RegionFailure) []any {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return append(keyValues(k), f.RegionID, f.Stage, f.Kind, msg)
}

// record renders a row for the CSV writer.
func record(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case string:
			out[i] = x
		case int:
			out[i] = strconv.Itoa(x)
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
