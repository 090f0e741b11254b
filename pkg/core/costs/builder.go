package costs

import (
	"fmt"

	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/models"
)

// Context carries what the cost stage needs for one region.
type Context struct {
	Region   models.DemandRegion
	Strategy models.Strategy
	Global   *params.GlobalParameters
	Country  *params.CountryParameters
	CoreLUT  *params.CoreLookupTable
}

// BuildType distinguishes upgrading an existing site from a new build.
type BuildType string

const (
	Upgrade    BuildType = "upgrade"
	Greenfield BuildType = "greenfield"
)

// UpgradeTo3G costs one existing site upgraded to 3G.
func UpgradeTo3G(ctx Context) (CostStructure, error) {
	return buildSite(ctx, models.Gen3G, Upgrade)
}

// UpgradeTo4G costs one existing site upgraded to 4G.
func UpgradeTo4G(ctx Context) (CostStructure, error) {
	return buildSite(ctx, models.Gen4G, Upgrade)
}

// Greenfield3G costs one new 3G site.
func Greenfield3G(ctx Context) (CostStructure, error) {
	return buildSite(ctx, models.Gen3G, Greenfield)
}

// Greenfield4G costs one new 4G site.
func Greenfield4G(ctx Context) (CostStructure, error) {
	return buildSite(ctx, models.Gen4G, Greenfield)
}

// BuildCostStructure selects the variant for the strategy's generation.
func BuildCostStructure(ctx Context, build BuildType) (CostStructure, error) {
	switch ctx.Strategy.Generation {
	case models.Gen3G:
		if build == Upgrade {
			return UpgradeTo3G(ctx)
		}
		return Greenfield3G(ctx)
	case models.Gen4G:
		if build == Upgrade {
			return UpgradeTo4G(ctx)
		}
		return Greenfield4G(ctx)
	}
	return nil, models.NewUnsupported("generation", string(ctx.Strategy.Generation))
}

// buildSite assembles the baseline bundle for one site and applies the
// sharing division. Both generations use the same asset bundle; only the
// strategy fields change the prices.
func buildSite(ctx Context, gen models.Generation, build BuildType) (CostStructure, error) {
	if ctx.Global == nil || ctx.Country == nil || ctx.CoreLUT == nil {
		return nil, models.NewConfigError("cost_context", ctx.Region.ID, "parameters and core lookup table are required")
	}
	if build != Upgrade && build != Greenfield {
		return nil, models.NewUnsupported("build_type", string(build))
	}

	region := ctx.Region
	class := region.SettlementClass
	c := ctx.Global.Costs

	networks, err := ctx.Country.BaselineNetworks(class)
	if err != nil {
		return nil, err
	}

	rental, err := c.SiteRental(class)
	if err != nil {
		return nil, err
	}

	backhaul, err := BackhaulCost(region, ctx.Strategy.Backhaul, c, ctx.CoreLUT)
	if err != nil {
		return nil, fmt.Errorf("%s %s backhaul: %w", gen, build, err)
	}

	coreEdge, err := CoreCapex(region, params.CoreEdge, ctx.Strategy, c, ctx.CoreLUT, networks)
	if err != nil {
		return nil, err
	}
	coreNode, err := CoreCapex(region, params.CoreNode, ctx.Strategy, c, ctx.CoreLUT, networks)
	if err != nil {
		return nil, err
	}
	regionalEdge, err := RegionalNetCapex(region, params.RegionalEdge, ctx.Strategy, c, ctx.CoreLUT, networks)
	if err != nil {
		return nil, err
	}
	regionalNode, err := RegionalNetCapex(region, params.RegionalNode, ctx.Strategy, c, ctx.CoreLUT, networks)
	if err != nil {
		return nil, err
	}

	opexShare := ctx.Global.OpexPercentageOfCapex / 100

	base := CostStructure{
		EquipmentCapex:              c.EquipmentCapex,
		InstallationCapex:           c.InstallationCapex,
		SiteRentalOpex:              rental,
		OperationAndMaintenanceOpex: c.OperationAndMaintenanceOpex,
		PowerOpex:                   c.PowerOpex,
		BackhaulCapex:               backhaul,
		BackhaulOpex:                0,
		CoreEdgeCapex:               coreEdge,
		CoreNodeCapex:               coreNode,
		RegionalEdgeCapex:           regionalEdge,
		RegionalNodeCapex:           regionalNode,
		CoreEdgeOpex:                coreEdge * opexShare,
		CoreNodeOpex:                coreNode * opexShare,
		RegionalEdgeOpex:            regionalEdge * opexShare,
		RegionalNodeOpex:            regionalNode * opexShare,
	}
	if build == Greenfield {
		base[SiteBuildCapex] = c.SiteBuildCapex
	}

	return ApplySharing(base, ctx.Strategy.Sharing, class, networks)
}
