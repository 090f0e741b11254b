package models

// RawRegion is one sub-national unit as produced by geospatial preprocessing.
// Site and backhaul counts come from the supply-side preprocessing step.
type RawRegion struct {
	CountryCode       string      `json:"GID_0"`
	ID                string      `json:"GID_id"`
	Population        float64     `json:"population"`
	PopUnder10        float64     `json:"pop_under_10_pop"`
	AreaKm2           float64     `json:"area_km2"`
	PopulationKm2     float64     `json:"population_km2"`
	Geotype           string      `json:"geotype"` // e.g. "urban", "suburban 1", "rural 4"
	MeanLuminosityKm2 float64     `json:"mean_luminosity_km2"`
	Decile            int         `json:"decile"`
	ExistingSites     int         `json:"existing_mno_sites"`
	NewSites          int         `json:"new_mno_sites"`
	UpgradedSites     int         `json:"upgraded_mno_sites"`
	BackhaulNew       int         `json:"backhaul_new"`
	Integration       Integration `json:"integration"`
}

// Class returns the settlement class of the region's geotype.
func (r RawRegion) Class() (SettlementClass, error) {
	return ParseSettlementClass(r.Geotype)
}

// AllSites is the number of sites costed for the modelled operator.
func (r RawRegion) AllSites() int {
	return r.UpgradedSites + r.NewSites
}

// DemandRegion adds the demand stage outputs. Point-in-time fields hold the
// values of the final assessment year.
type DemandRegion struct {
	RawRegion

	SettlementClass SettlementClass `json:"settlement_class"`
	DemandNetworks  int             `json:"demand_networks"`

	ARPUDiscountedMonthly         float64 `json:"arpu_discounted_monthly"`
	Penetration                   float64 `json:"penetration"`
	PopulationWithPhones          float64 `json:"population_with_phones"`
	PhonesOnNetwork               float64 `json:"phones_on_network"`
	PhoneDensityOnNetworkKm2      float64 `json:"phone_density_on_network_km2"`
	SmartphonePenetration         float64 `json:"smartphone_penetration"`
	PopulationWithSmartphones     float64 `json:"population_with_smartphones"`
	SmartphonesOnNetwork          float64 `json:"smartphones_on_network"`
	SmartphoneDensityOnNetworkKm2 float64 `json:"sp_density_on_network_km2"`

	DemandMbpsKm2 float64 `json:"demand_mbps_km2"` // peak year
	TotalRevenue  float64 `json:"total_mno_revenue"`
	RevenueKm2    float64 `json:"revenue_km2"`
}

// AnnualDemand is one row of the per-region, per-year demand log.
type AnnualDemand struct {
	RunKey
	RegionID                  string  `json:"GID_id"`
	Year                      int     `json:"year"`
	Population                float64 `json:"population"`
	AreaKm2                   float64 `json:"area_km2"`
	PopulationKm2             float64 `json:"population_km2"`
	SettlementClass           string  `json:"geotype"`
	ARPUDiscountedMonthly     float64 `json:"arpu_discounted_monthly"`
	Penetration               float64 `json:"penetration"`
	PopulationWithPhones      float64 `json:"population_with_phones"`
	PhonesOnNetwork           float64 `json:"phones_on_network"`
	SmartphonePenetration     float64 `json:"smartphone_penetration"`
	PopulationWithSmartphones float64 `json:"population_with_smartphones"`
	SmartphonesOnNetwork      float64 `json:"smartphones_on_network"`
	DemandMbpsKm2             float64 `json:"demand_mbps_km2"`
	Revenue                   float64 `json:"revenue"`
}

// CostBuckets groups discounted, WACC-adjusted costs by category.
type CostBuckets struct {
	RANCapex      float64 `json:"ran_capex"`
	RANOpex       float64 `json:"ran_opex"`
	BackhaulCapex float64 `json:"backhaul_capex"`
	BackhaulOpex  float64 `json:"backhaul_opex"`
	CivilsCapex   float64 `json:"civils_capex"`
	CoreCapex     float64 `json:"core_capex"`
	CoreOpex      float64 `json:"core_opex"`
}

// Add returns the element-wise sum of two bucket sets.
func (b CostBuckets) Add(o CostBuckets) CostBuckets {
	return CostBuckets{
		RANCapex:      b.RANCapex + o.RANCapex,
		RANOpex:       b.RANOpex + o.RANOpex,
		BackhaulCapex: b.BackhaulCapex + o.BackhaulCapex,
		BackhaulOpex:  b.BackhaulOpex + o.BackhaulOpex,
		CivilsCapex:   b.CivilsCapex + o.CivilsCapex,
		CoreCapex:     b.CoreCapex + o.CoreCapex,
		CoreOpex:      b.CoreOpex + o.CoreOpex,
	}
}

// Total is the sum of all seven buckets.
func (b CostBuckets) Total() float64 {
	return b.RANCapex + b.RANOpex + b.BackhaulCapex + b.BackhaulOpex +
		b.CivilsCapex + b.CoreCapex + b.CoreOpex
}

// CostedRegion adds the network cost stage outputs.
type CostedRegion struct {
	DemandRegion

	NetworkCost  float64     `json:"mno_network_cost"`
	NetworkCapex float64     `json:"mno_network_capex"`
	NetworkOpex  float64     `json:"mno_network_opex"`
	Buckets      CostBuckets `json:"buckets"`
}

// MarketTotals scales operator quantities to all networks in the region.
type MarketTotals struct {
	Revenue               float64 `json:"total_market_revenue"`
	NetworkCost           float64 `json:"total_market_network_cost"`
	Administration        float64 `json:"total_administration"`
	SpectrumCost          float64 `json:"total_spectrum_cost"`
	Tax                   float64 `json:"total_tax"`
	ProfitMargin          float64 `json:"total_profit_margin"`
	Cost                  float64 `json:"total_market_cost"`
	AvailableCrossSubsidy float64 `json:"total_available_cross_subsidy"`
	Deficit               float64 `json:"total_deficit"`
	UsedCrossSubsidy      float64 `json:"total_used_cross_subsidy"`
	RequiredStateSubsidy  float64 `json:"total_required_state_subsidy"`
}

// AssessedRegion is the terminal output record of the engine.
type AssessedRegion struct {
	CostedRegion

	SpectrumCost   float64 `json:"spectrum_cost"`
	Tax            float64 `json:"tax"`
	Administration float64 `json:"administration"`
	ProfitMargin   float64 `json:"profit_margin"`
	TotalCost      float64 `json:"total_mno_cost"`

	AvailableCrossSubsidy float64 `json:"available_cross_subsidy"`
	Deficit               float64 `json:"deficit"`
	UsedCrossSubsidy      float64 `json:"used_cross_subsidy"`
	RequiredStateSubsidy  float64 `json:"required_state_subsidy"`

	Market MarketTotals `json:"market"`
}

// RunKey identifies one (country, scenario, strategy, confidence) tuple.
type RunKey struct {
	RunID      string `json:"run_id"`
	Country    string `json:"GID_0"`
	Scenario   string `json:"scenario"`
	Strategy   string `json:"strategy"`
	InputCost  string `json:"input_cost"`
	Confidence int    `json:"confidence"`
}

// RegionFailure records a region skipped by a recoverable error.
type RegionFailure struct {
	RegionID string `json:"GID_id"`
	Stage    string `json:"stage"`
	Kind     string `json:"kind"`
	Err      error  `json:"-"`
}

// NationalSummary aggregates a tuple's assessed regions.
type NationalSummary struct {
	RunKey
	Regions               int     `json:"regions"`
	Population            float64 `json:"population"`
	TotalRevenue          float64 `json:"total_mno_revenue"`
	NetworkCost           float64 `json:"mno_network_cost"`
	TotalCost             float64 `json:"total_mno_cost"`
	AvailableCrossSubsidy float64 `json:"available_cross_subsidy"`
	UsedCrossSubsidy      float64 `json:"used_cross_subsidy"`
	RequiredStateSubsidy  float64 `json:"required_state_subsidy"`
}
