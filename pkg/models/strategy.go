package models

import "strings"

// Generation is the radio technology generation being deployed.
type Generation string

const (
	Gen3G Generation = "3G"
	Gen4G Generation = "4G"
)

// BackhaulTech is the site-to-node transport technology.
type BackhaulTech string

const (
	BackhaulWireless BackhaulTech = "wireless"
	BackhaulFiber    BackhaulTech = "fiber"
)

// SharingModel is the infrastructure-sharing business model.
type SharingModel string

const (
	SharingBaseline SharingModel = "baseline" // no sharing
	SharingPassive  SharingModel = "psb"      // passive: civils, rental, backhaul
	SharingActive   SharingModel = "moran"    // active (MORAN): radio equipment too
	SharingSRN      SharingModel = "srn"      // shared rural network
)

// NetworksRegime selects the competing-network counts used for demand.
type NetworksRegime string

const (
	NetworksBaseline NetworksRegime = "baseline"
	NetworksSRN      NetworksRegime = "srn"
)

// Tier is a baseline/high/low policy level for spectrum prices and tax.
type Tier string

const (
	TierBaseline Tier = "baseline"
	TierHigh     Tier = "high"
	TierLow      Tier = "low"
)

// Integration marks whether regions belong to a regionally integrated market.
type Integration string

const (
	IntegrationBaseline Integration = "baseline"
	IntegrationOn       Integration = "integration"
)

// Strategy is the validated, immutable form of a strategy identifier.
// Construct it with strategy.Parse; fields are never accessed by position.
type Strategy struct {
	Generation  Generation     `json:"generation"`
	Core        string         `json:"core"`
	Backhaul    BackhaulTech   `json:"backhaul"`
	Sharing     SharingModel   `json:"sharing"`
	Networks    NetworksRegime `json:"networks"`
	Spectrum    Tier           `json:"spectrum"`
	Tax         Tier           `json:"tax"`
	Integration Integration    `json:"integration"`
}

// Scenario is a per-user monthly data target by settlement class.
type Scenario struct {
	Name       string `json:"name"` // keys the penetration/smartphone forecasts
	UrbanGB    int    `json:"urban_gb"`
	SuburbanGB int    `json:"suburban_gb"`
	RuralGB    int    `json:"rural_gb"`
}

// MonthlyGB returns the monthly gigabyte target for a settlement class.
func (s Scenario) MonthlyGB(class SettlementClass) (int, error) {
	switch class {
	case Urban:
		return s.UrbanGB, nil
	case Suburban:
		return s.SuburbanGB, nil
	case Rural:
		return s.RuralGB, nil
	default:
		return 0, NewUnsupported("settlement_class", string(class))
	}
}

// SettlementClass is the coarse urban/suburban/rural geotype.
type SettlementClass string

const (
	Urban    SettlementClass = "urban"
	Suburban SettlementClass = "suburban"
	Rural    SettlementClass = "rural"
)

// ParseSettlementClass reduces a geotype such as "rural 3" to its class.
func ParseSettlementClass(geotype string) (SettlementClass, error) {
	fields := strings.Fields(strings.ToLower(geotype))
	if len(fields) == 0 {
		return "", NewConfigError("geotype", geotype, "empty geotype")
	}
	switch SettlementClass(fields[0]) {
	case Urban:
		return Urban, nil
	case Suburban:
		return Suburban, nil
	case Rural:
		return Rural, nil
	}
	return "", NewUnsupported("settlement_class", geotype)
}
