// Package costs builds per-site cost structures, prices backhaul and shared
// core/regional assets, and folds site costs into region totals.
package costs

import (
	"sort"
	"strings"

	"telecom_subsidy/pkg/models"
)

// Asset names a single cost line. The suffix carries the cost kind.
type Asset string

const (
	EquipmentCapex              Asset = "equipment_capex"
	SiteBuildCapex              Asset = "site_build_capex"
	InstallationCapex           Asset = "installation_capex"
	SiteRentalOpex              Asset = "site_rental_opex"
	OperationAndMaintenanceOpex Asset = "operation_and_maintenance_opex"
	PowerOpex                   Asset = "power_opex"
	BackhaulCapex               Asset = "backhaul_capex"
	BackhaulOpex                Asset = "backhaul_opex"
	CoreEdgeCapex               Asset = "core_edge_capex"
	CoreNodeCapex               Asset = "core_node_capex"
	RegionalEdgeCapex           Asset = "regional_edge_capex"
	RegionalNodeCapex           Asset = "regional_node_capex"
	CoreEdgeOpex                Asset = "core_edge_opex"
	CoreNodeOpex                Asset = "core_node_opex"
	RegionalEdgeOpex            Asset = "regional_edge_opex"
	RegionalNodeOpex            Asset = "regional_node_opex"
)

// AllAssets fixes the iteration order of every cost line.
var AllAssets = []Asset{
	EquipmentCapex,
	SiteBuildCapex,
	InstallationCapex,
	SiteRentalOpex,
	OperationAndMaintenanceOpex,
	PowerOpex,
	BackhaulCapex,
	BackhaulOpex,
	CoreEdgeCapex,
	CoreNodeCapex,
	RegionalEdgeCapex,
	RegionalNodeCapex,
	CoreEdgeOpex,
	CoreNodeOpex,
	RegionalEdgeOpex,
	RegionalNodeOpex,
}

// Kind is capex or opex.
type Kind string

const (
	Capex Kind = "capex"
	Opex  Kind = "opex"
)

// Kind derives the cost kind from the asset suffix.
func (a Asset) Kind() (Kind, error) {
	switch {
	case strings.HasSuffix(string(a), "_capex"):
		return Capex, nil
	case strings.HasSuffix(string(a), "_opex"):
		return Opex, nil
	}
	return "", models.NewUnsupported("asset_kind", string(a))
}

// IsBackhaul reports whether the line is only charged to new-backhaul sites.
func (a Asset) IsBackhaul() bool {
	return a == BackhaulCapex || a == BackhaulOpex
}

// IsRegional reports whether the line belongs to the regional aggregation
// network, which wireless backhaul does not use.
func (a Asset) IsRegional() bool {
	switch a {
	case RegionalEdgeCapex, RegionalNodeCapex, RegionalEdgeOpex, RegionalNodeOpex:
		return true
	}
	return false
}

// IsShared reports whether the line is a core or regional asset whose
// region total is spread over every site.
func (a Asset) IsShared() bool {
	switch a {
	case CoreEdgeCapex, CoreNodeCapex, CoreEdgeOpex, CoreNodeOpex:
		return true
	}
	return a.IsRegional()
}

// CostStructure maps each asset to its value for one representative site.
type CostStructure map[Asset]float64

// Lines returns the assets present in AllAssets order, followed by any
// unrecognised names in lexical order.
func (cs CostStructure) Lines() []Asset {
	lines := make([]Asset, 0, len(cs))
	known := make(map[Asset]bool, len(AllAssets))
	for _, a := range AllAssets {
		known[a] = true
		if _, ok := cs[a]; ok {
			lines = append(lines, a)
		}
	}

	var extra []string
	for a := range cs {
		if !known[a] {
			extra = append(extra, string(a))
		}
	}
	sort.Strings(extra)
	for _, a := range extra {
		lines = append(lines, Asset(a))
	}
	return lines
}

// Total sums every line without discounting.
func (cs CostStructure) Total() float64 {
	var total float64
	for _, a := range cs.Lines() {
		total += cs[a]
	}
	return total
}
