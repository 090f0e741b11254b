// Package params holds the scenario-wide and per-country parameter tables
// consumed by the engine, and the lookup tables produced by preprocessing.
package params

import (
	"fmt"
	"strconv"
	"strings"

	"telecom_subsidy/pkg/models"
)

// Costs lists per-asset unit costs in USD.
type Costs struct {
	EquipmentCapex              float64 `yaml:"equipment_capex" json:"equipment_capex" validate:"gte=0"`
	SiteBuildCapex              float64 `yaml:"site_build_capex" json:"site_build_capex" validate:"gte=0"`
	InstallationCapex           float64 `yaml:"installation_capex" json:"installation_capex" validate:"gte=0"`
	OperationAndMaintenanceOpex float64 `yaml:"operation_and_maintenance_opex" json:"operation_and_maintenance_opex" validate:"gte=0"`
	PowerOpex                   float64 `yaml:"power_opex" json:"power_opex" validate:"gte=0"`

	// Keyed by settlement class: urban, suburban, rural.
	SiteRentalOpex map[string]float64 `yaml:"site_rental_opex" json:"site_rental_opex" validate:"required"`
	FiberCapexPerM map[string]float64 `yaml:"fiber_m_capex" json:"fiber_m_capex" validate:"required"`

	WirelessSmallCapex  float64 `yaml:"wireless_small_capex" json:"wireless_small_capex" validate:"gte=0"`
	WirelessMediumCapex float64 `yaml:"wireless_medium_capex" json:"wireless_medium_capex" validate:"gte=0"`
	WirelessLargeCapex  float64 `yaml:"wireless_large_capex" json:"wireless_large_capex" validate:"gte=0"`

	// Node costs are keyed by core type (e.g. "epc").
	CoreNodeCapex         map[string]float64 `yaml:"core_node_capex" json:"core_node_capex" validate:"required"`
	CoreEdgeCapexPerM     float64            `yaml:"core_edge_capex" json:"core_edge_capex" validate:"gte=0"`
	RegionalNodeCapex     map[string]float64 `yaml:"regional_node_capex" json:"regional_node_capex" validate:"required"`
	RegionalEdgeCapexPerM float64            `yaml:"regional_edge_capex" json:"regional_edge_capex" validate:"gte=0"`
}

// GlobalParameters are scenario-wide constants.
type GlobalParameters struct {
	OpexPercentageOfCapex float64 `yaml:"opex_percentage_of_capex" json:"opex_percentage_of_capex" validate:"gte=0,lte=100"`
	TrafficInBusyHourPerc float64 `yaml:"traffic_in_the_busy_hour_perc" json:"traffic_in_the_busy_hour_perc" validate:"gt=0,lte=100"`
	ReturnPeriod          int     `yaml:"return_period" json:"return_period" validate:"gte=1"`
	DiscountRate          float64 `yaml:"discount_rate" json:"discount_rate" validate:"gte=0"`
	// BaseYear anchors ARPU discounting; zero means the first assessment year.
	BaseYear  int    `yaml:"base_year" json:"base_year" validate:"gte=0"`
	InputCost string `yaml:"input_cost" json:"input_cost"`

	Costs Costs `yaml:"costs" json:"costs"`
}

// SiteRental returns the annual site rental for a settlement class.
func (c Costs) SiteRental(class models.SettlementClass) (float64, error) {
	v, ok := c.SiteRentalOpex[string(class)]
	if !ok {
		return 0, models.NewConfigError("costs.site_rental_opex", string(class), "missing settlement class")
	}
	return v, nil
}

// FiberPerMetre returns the fiber cost per metre for a settlement class.
func (c Costs) FiberPerMetre(class models.SettlementClass) (float64, error) {
	v, ok := c.FiberCapexPerM[string(class)]
	if !ok {
		return 0, models.NewConfigError("costs.fiber_m_capex", string(class), "missing settlement class")
	}
	return v, nil
}

// CoreNode returns the per-node core cost for a core type.
func (c Costs) CoreNode(core string) (float64, error) {
	v, ok := c.CoreNodeCapex[core]
	if !ok {
		return 0, models.NewConfigError("costs.core_node_capex", core, "missing core type")
	}
	return v, nil
}

// RegionalNode returns the per-node regional cost for a core type.
func (c Costs) RegionalNode(core string) (float64, error) {
	v, ok := c.RegionalNodeCapex[core]
	if !ok {
		return 0, models.NewConfigError("costs.regional_node_capex", core, "missing core type")
	}
	return v, nil
}

// LuminosityThresholds split regions into ARPU tiers.
type LuminosityThresholds struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium" validate:"ltefield=High"`
}

// ARPUTiers are monthly ARPU values in USD.
type ARPUTiers struct {
	High   float64 `yaml:"high" json:"high" validate:"gte=0"`
	Medium float64 `yaml:"medium" json:"medium" validate:"gte=0"`
	Low    float64 `yaml:"low" json:"low" validate:"gte=0"`
}

// Frequency is one spectrum band allocation.
type Frequency struct {
	FrequencyMHz int    `yaml:"frequency" json:"frequency" validate:"gt=0"`
	Bandwidth    string `yaml:"bandwidth" json:"bandwidth" validate:"required"` // "2x10", "1x50"
}

// BandwidthMHz converts "2x10" into 20 MHz.
func (f Frequency) BandwidthMHz() (float64, error) {
	parts := strings.Split(strings.ToLower(f.Bandwidth), "x")
	if len(parts) != 2 {
		return 0, models.NewConfigError("frequencies.bandwidth", f.Bandwidth, "expected <channels>x<MHz>")
	}
	channels, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, models.NewConfigError("frequencies.bandwidth", f.Bandwidth, err.Error())
	}
	width, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, models.NewConfigError("frequencies.bandwidth", f.Bandwidth, err.Error())
	}
	return channels * width, nil
}

// Financials are per-country financial constants, percentages as 0-100.
type Financials struct {
	WACC                      float64 `yaml:"wacc" json:"wacc" validate:"gte=0"`
	ProfitMargin              float64 `yaml:"profit_margin" json:"profit_margin" validate:"gte=0"`
	SpectrumCoverageUSDMHzPop float64 `yaml:"spectrum_coverage_baseline_usd_mhz_pop" json:"spectrum_coverage_baseline_usd_mhz_pop" validate:"gte=0"`
	SpectrumCapacityUSDMHzPop float64 `yaml:"spectrum_capacity_baseline_usd_mhz_pop" json:"spectrum_capacity_baseline_usd_mhz_pop" validate:"gte=0"`
	SpectrumCostLow           float64 `yaml:"spectrum_cost_low" json:"spectrum_cost_low" validate:"gte=0,lte=100"`
	SpectrumCostHigh          float64 `yaml:"spectrum_cost_high" json:"spectrum_cost_high" validate:"gte=0"`
	TaxLow                    float64 `yaml:"tax_low" json:"tax_low" validate:"gte=0"`
	TaxBaseline               float64 `yaml:"tax_baseline" json:"tax_baseline" validate:"gte=0"`
	TaxHigh                   float64 `yaml:"tax_high" json:"tax_high" validate:"gte=0"`
	AdministrationPercentage  float64 `yaml:"administration_percentage_of_network_cost" json:"administration_percentage_of_network_cost" validate:"gte=0"`
	AcquisitionPerSubscriber  float64 `yaml:"acquisition_per_subscriber" json:"acquisition_per_subscriber" validate:"gte=0"`
}

// TaxRate returns the tax percentage for a tier.
func (f Financials) TaxRate(tier models.Tier) (float64, error) {
	switch tier {
	case models.TierBaseline:
		return f.TaxBaseline, nil
	case models.TierHigh:
		return f.TaxHigh, nil
	case models.TierLow:
		return f.TaxLow, nil
	}
	return 0, models.NewUnsupported("tax_tier", string(tier))
}

// SpectrumMultiplier returns the factor applied to baseline spectrum prices.
// High raises prices by SpectrumCostHigh percent, low cuts them by
// SpectrumCostLow percent.
func (f Financials) SpectrumMultiplier(tier models.Tier) (float64, error) {
	switch tier {
	case models.TierBaseline:
		return 1, nil
	case models.TierHigh:
		return 1 + f.SpectrumCostHigh/100, nil
	case models.TierLow:
		return 1 - f.SpectrumCostLow/100, nil
	}
	return 0, models.NewUnsupported("spectrum_tier", string(tier))
}

// CountryParameters are the per-country constants.
type CountryParameters struct {
	ISO3       string               `yaml:"iso3" json:"iso3" validate:"required"`
	Luminosity LuminosityThresholds `yaml:"luminosity" json:"luminosity"`
	ARPU       ARPUTiers            `yaml:"arpu" json:"arpu"`
	// Networks is keyed "<regime>_<settlement class>", e.g. "baseline_rural".
	Networks    map[string]int         `yaml:"networks" json:"networks" validate:"required,dive,gt=0"`
	Frequencies map[string][]Frequency `yaml:"frequencies" json:"frequencies" validate:"dive,dive"`
	Financials  Financials             `yaml:"financials" json:"financials"`
}

// NetworkKey builds the Networks table key.
func NetworkKey(regime string, class models.SettlementClass) string {
	return fmt.Sprintf("%s_%s", regime, class)
}

// NetworkCount returns the number of competing networks for a regime and
// settlement class.
func (c CountryParameters) NetworkCount(regime string, class models.SettlementClass) (int, error) {
	key := NetworkKey(regime, class)
	n, ok := c.Networks[key]
	if !ok {
		return 0, models.NewConfigError("networks", key, "missing network count")
	}
	if n <= 0 {
		return 0, models.NewConfigError("networks", key, "network count must be positive")
	}
	return n, nil
}

// BaselineNetworks is the network count used for cost sharing.
func (c CountryParameters) BaselineNetworks(class models.SettlementClass) (int, error) {
	return c.NetworkCount(string(models.NetworksBaseline), class)
}

// GenerationFrequencies returns the band plan for a generation.
func (c CountryParameters) GenerationFrequencies(gen models.Generation) ([]Frequency, error) {
	freqs, ok := c.Frequencies[string(gen)]
	if !ok {
		return nil, models.NewConfigError("frequencies", string(gen), "no band plan for generation")
	}
	return freqs, nil
}
