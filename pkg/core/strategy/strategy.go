// Package strategy encodes and decodes strategy and scenario identifiers.
//
// Strategy layout: generation_core_backhaul_sharing_networks_spectrum_tax[_integration]
// e.g. "4G_epc_wireless_srn_srn_baseline_baseline_baseline".
//
// Scenario layout: name_urbanGB_suburbanGB_ruralGB, e.g. "baseline_10_10_10".
package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"telecom_subsidy/pkg/models"
)

const separator = "_"

const (
	minFields = 7
	maxFields = 8
)

var (
	generations = map[string]models.Generation{
		"3G": models.Gen3G,
		"4G": models.Gen4G,
	}
	backhauls = map[string]models.BackhaulTech{
		"wireless": models.BackhaulWireless,
		"fiber":    models.BackhaulFiber,
	}
	sharings = map[string]models.SharingModel{
		"baseline": models.SharingBaseline,
		"psb":      models.SharingPassive,
		"moran":    models.SharingActive,
		"srn":      models.SharingSRN,
	}
	networkRegimes = map[string]models.NetworksRegime{
		"baseline": models.NetworksBaseline,
		"srn":      models.NetworksSRN,
	}
	tiers = map[string]models.Tier{
		"baseline": models.TierBaseline,
		"high":     models.TierHigh,
		"low":      models.TierLow,
	}
	integrations = map[string]models.Integration{
		"baseline":    models.IntegrationBaseline,
		"integration": models.IntegrationOn,
	}
)

// Parse validates a strategy identifier and returns its tagged form.
func Parse(s string) (models.Strategy, error) {
	parts := strings.Split(strings.TrimSpace(s), separator)
	if len(parts) < minFields || len(parts) > maxFields {
		return models.Strategy{}, models.NewConfigError("strategy", s,
			fmt.Sprintf("expected %d or %d fields, got %d", minFields, maxFields, len(parts)))
	}

	var st models.Strategy
	var ok bool

	if st.Generation, ok = generations[strings.ToUpper(parts[0])]; !ok {
		return models.Strategy{}, models.NewUnsupported("generation", parts[0])
	}
	st.Core = strings.ToLower(parts[1])
	if st.Core == "" {
		return models.Strategy{}, models.NewConfigError("strategy", s, "empty core type")
	}
	if st.Backhaul, ok = backhauls[strings.ToLower(parts[2])]; !ok {
		return models.Strategy{}, models.NewUnsupported("backhaul", parts[2])
	}
	if st.Sharing, ok = sharings[strings.ToLower(parts[3])]; !ok {
		return models.Strategy{}, models.NewUnsupported("sharing", parts[3])
	}
	if st.Networks, ok = networkRegimes[strings.ToLower(parts[4])]; !ok {
		return models.Strategy{}, models.NewUnsupported("networks", parts[4])
	}
	if st.Spectrum, ok = tiers[strings.ToLower(parts[5])]; !ok {
		return models.Strategy{}, models.NewUnsupported("spectrum_tier", parts[5])
	}
	if st.Tax, ok = tiers[strings.ToLower(parts[6])]; !ok {
		return models.Strategy{}, models.NewUnsupported("tax_tier", parts[6])
	}

	st.Integration = models.IntegrationBaseline
	if len(parts) == maxFields {
		if st.Integration, ok = integrations[strings.ToLower(parts[7])]; !ok {
			return models.Strategy{}, models.NewUnsupported("integration", parts[7])
		}
	}

	return st, nil
}

// MustParse is Parse for identifiers known at compile time.
func MustParse(s string) models.Strategy {
	st, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return st
}

// String renders the canonical eight-field identifier.
func String(st models.Strategy) string {
	integration := st.Integration
	if integration == "" {
		integration = models.IntegrationBaseline
	}
	return strings.Join([]string{
		string(st.Generation),
		st.Core,
		string(st.Backhaul),
		string(st.Sharing),
		string(st.Networks),
		string(st.Spectrum),
		string(st.Tax),
		string(integration),
	}, separator)
}

// ParseScenario decodes a scenario identifier into monthly GB targets.
func ParseScenario(s string) (models.Scenario, error) {
	parts := strings.Split(strings.TrimSpace(s), separator)
	if len(parts) != 4 {
		return models.Scenario{}, models.NewConfigError("scenario", s,
			fmt.Sprintf("expected 4 fields, got %d", len(parts)))
	}
	if parts[0] == "" {
		return models.Scenario{}, models.NewConfigError("scenario", s, "empty scenario name")
	}

	values := make([]int, 3)
	for i, raw := range parts[1:] {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return models.Scenario{}, models.NewConfigError("scenario", s,
				fmt.Sprintf("invalid monthly GB %q", raw))
		}
		values[i] = v
	}

	return models.Scenario{
		Name:       parts[0],
		UrbanGB:    values[0],
		SuburbanGB: values[1],
		RuralGB:    values[2],
	}, nil
}

// ScenarioString renders a scenario back to its identifier.
func ScenarioString(sc models.Scenario) string {
	return fmt.Sprintf("%s_%d_%d_%d", sc.Name, sc.UrbanGB, sc.SuburbanGB, sc.RuralGB)
}
