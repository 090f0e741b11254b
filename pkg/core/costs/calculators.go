package costs

import (
	"math"

	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/models"
)

const (
	wirelessSmallMaxM  = 15000.0
	wirelessMediumMaxM = 30000.0
)

// NodeDistance is the average distance in metres from a site to its nearest
// core or regional node. With no nodes at all the region's side length is
// used instead.
func NodeDistance(nodes, areaKm2 float64) float64 {
	if areaKm2 <= 0 {
		return 0
	}
	density := nodes / areaKm2
	if density > 0 {
		return math.Sqrt(1/density) / 2 * 1000
	}
	return math.RoundToEven(math.Sqrt(areaKm2) * 1000)
}

// WirelessBackhaulCost prices a microwave link by distance tier:
// below 15 km small, below 30 km medium, otherwise large scaled by d/30 km.
func WirelessBackhaulCost(distanceM float64, c params.Costs) float64 {
	switch {
	case distanceM < wirelessSmallMaxM:
		return c.WirelessSmallCapex
	case distanceM < wirelessMediumMaxM:
		return c.WirelessMediumCapex
	default:
		return c.WirelessLargeCapex * (distanceM / wirelessMediumMaxM)
	}
}

// BackhaulCost prices the backhaul link of one site from the density of
// all core and regional nodes, new and existing.
func BackhaulCost(region models.DemandRegion, tech models.BackhaulTech, c params.Costs, lut *params.CoreLookupTable) (float64, error) {
	var nodes float64
	for _, asset := range []params.CoreAsset{params.CoreNode, params.RegionalNode} {
		for _, age := range []params.Age{params.AgeNew, params.AgeExisting} {
			n, err := lut.Get(asset, region.ID, age)
			if err != nil {
				return 0, err
			}
			nodes += n
		}
	}

	distance := NodeDistance(nodes, region.AreaKm2)

	switch tech {
	case models.BackhaulWireless:
		return WirelessBackhaulCost(distance, c), nil
	case models.BackhaulFiber:
		perM, err := c.FiberPerMetre(region.SettlementClass)
		if err != nil {
			return 0, err
		}
		return perM * distance, nil
	}
	return 0, models.NewUnsupported("backhaul", string(tech))
}

// SitesPerOperator is the modelled operator's share of the region's sites.
func SitesPerOperator(region models.DemandRegion, networks int) float64 {
	if networks <= 0 {
		return 0
	}
	return float64(region.AllSites()) / float64(networks)
}

// amortise spreads a region-level cost over the operator's sites. No sites
// costs nothing; a single site or less bears the whole cost.
func amortise(cost, sites float64) float64 {
	switch {
	case sites <= 0:
		return 0
	case sites <= 1:
		return cost
	default:
		return cost / sites
	}
}

// planned returns the incremental quantity of an asset to be built in a
// region. Regions with nothing planned have no entry.
func planned(lut *params.CoreLookupTable, asset params.CoreAsset, regionID string) float64 {
	v, ok := lut.Lookup(asset, regionID, params.AgeNew)
	if !ok {
		return 0
	}
	return v
}

// sharedAssetCost prices the new quantity of a core or regional asset:
// metres x unit cost for edges, nodes x unit cost for nodes, truncated to
// whole currency units.
func sharedAssetCost(quantity, unit float64) float64 {
	return math.Trunc(quantity * unit)
}

// CoreCapex returns one site's share of the new core edge or core node
// cost in the region. Existing infrastructure is free.
func CoreCapex(region models.DemandRegion, asset params.CoreAsset, st models.Strategy,
	c params.Costs, lut *params.CoreLookupTable, networks int) (float64, error) {

	var unit float64
	switch asset {
	case params.CoreEdge:
		unit = c.CoreEdgeCapexPerM
	case params.CoreNode:
		var err error
		if unit, err = c.CoreNode(st.Core); err != nil {
			return 0, err
		}
	default:
		return 0, models.NewUnsupported("core_asset", string(asset))
	}

	cost := sharedAssetCost(planned(lut, asset, region.ID), unit)
	return amortise(cost, SitesPerOperator(region, networks)), nil
}

// RegionalNetCapex is CoreCapex for the regional aggregation network.
func RegionalNetCapex(region models.DemandRegion, asset params.CoreAsset, st models.Strategy,
	c params.Costs, lut *params.CoreLookupTable, networks int) (float64, error) {

	var unit float64
	switch asset {
	case params.RegionalEdge:
		unit = c.RegionalEdgeCapexPerM
	case params.RegionalNode:
		var err error
		if unit, err = c.RegionalNode(st.Core); err != nil {
			return 0, err
		}
	default:
		return 0, models.NewUnsupported("regional_asset", string(asset))
	}

	cost := sharedAssetCost(planned(lut, asset, region.ID), unit)
	return amortise(cost, SitesPerOperator(region, networks)), nil
}
