package costs

import (
	"fmt"

	"telecom_subsidy/pkg/core/valuation"
	"telecom_subsidy/pkg/models"
)

// BackhaulQuantity is 1 when site i (1-based) is one of the region's first
// newBackhaul sites, else 0.
func BackhaulQuantity(i, newBackhaul int) int {
	if i <= newBackhaul {
		return 1
	}
	return 0
}

// SiteCost is one site's discounted, WACC-adjusted cost.
type SiteCost struct {
	Total   float64
	Capex   float64
	Opex    float64
	Buckets models.CostBuckets
	ByAsset map[Asset]float64
}

// CalcSiteCosts prices one site's cost structure:
//   - backhaul lines are skipped unless the site receives new backhaul
//   - regional lines are skipped for wireless backhaul
//   - core and regional lines are spread over every site in the region
//   - capex gets the WACC markup; opex is discounted over the return
//     period, rounded, then marked up
func CalcSiteCosts(ctx Context, cs CostStructure, backhaulQuantity int) (SiteCost, error) {
	if ctx.Global == nil || ctx.Country == nil {
		return SiteCost{}, models.NewConfigError("cost_context", ctx.Region.ID, "parameters are required")
	}

	wacc := ctx.Country.Financials.WACC
	opexTerms := valuation.OpexInput{
		ReturnPeriod: ctx.Global.ReturnPeriod,
		DiscountRate: ctx.Global.DiscountRate,
		WACC:         wacc,
	}
	allSites := float64(ctx.Region.AllSites())

	out := SiteCost{ByAsset: make(map[Asset]float64, len(cs))}

	for _, asset := range cs.Lines() {
		kind, err := asset.Kind()
		if err != nil {
			return SiteCost{}, err
		}
		if asset.IsBackhaul() && backhaulQuantity == 0 {
			continue
		}
		if asset.IsRegional() && ctx.Strategy.Backhaul == models.BackhaulWireless {
			continue
		}

		cost := cs[asset]
		if asset.IsShared() {
			if allSites <= 0 {
				cost = 0
			} else {
				cost /= allSites
			}
		}

		switch kind {
		case Capex:
			cost = valuation.ApplyWACC(cost, wacc)
			out.Capex += cost
		case Opex:
			cost = valuation.DiscountOpex(cost, opexTerms)
			out.Opex += cost
		}

		out.Total += cost
		out.ByAsset[asset] = cost
		addToBucket(&out.Buckets, asset, cost)
	}

	return out, nil
}

func addToBucket(b *models.CostBuckets, asset Asset, cost float64) {
	switch asset {
	case EquipmentCapex:
		b.RANCapex += cost
	case SiteRentalOpex, OperationAndMaintenanceOpex, PowerOpex:
		b.RANOpex += cost
	case BackhaulCapex:
		b.BackhaulCapex += cost
	case BackhaulOpex:
		b.BackhaulOpex += cost
	case SiteBuildCapex, InstallationCapex:
		b.CivilsCapex += cost
	case CoreEdgeCapex, CoreNodeCapex, RegionalEdgeCapex, RegionalNodeCapex:
		b.CoreCapex += cost
	case CoreEdgeOpex, CoreNodeOpex, RegionalEdgeOpex, RegionalNodeOpex:
		b.CoreOpex += cost
	}
}

// FindNetworkCost costs every site in the region: the first upgraded-site
// count are upgrades, the rest new builds, and the first backhaul_new sites
// receive new backhaul.
func FindNetworkCost(ctx Context) (models.CostedRegion, error) {
	region := ctx.Region
	out := models.CostedRegion{DemandRegion: region}

	allSites := region.AllSites()
	if allSites <= 0 {
		return out, nil
	}

	// Every site of a build type has the same structure.
	structures := make(map[BuildType]CostStructure, 2)
	structureFor := func(build BuildType) (CostStructure, error) {
		if cs, ok := structures[build]; ok {
			return cs, nil
		}
		cs, err := BuildCostStructure(ctx, build)
		if err != nil {
			return nil, err
		}
		structures[build] = cs
		return cs, nil
	}

	for i := 1; i <= allSites; i++ {
		build := Greenfield
		if i <= region.UpgradedSites {
			build = Upgrade
		}

		cs, err := structureFor(build)
		if err != nil {
			return models.CostedRegion{}, err
		}

		site, err := CalcSiteCosts(ctx, cs, BackhaulQuantity(i, region.BackhaulNew))
		if err != nil {
			return models.CostedRegion{}, fmt.Errorf("site %d: %w", i, err)
		}

		out.NetworkCost += site.Total
		out.NetworkCapex += site.Capex
		out.NetworkOpex += site.Opex
		out.Buckets = out.Buckets.Add(site.Buckets)
	}

	return out, nil
}
