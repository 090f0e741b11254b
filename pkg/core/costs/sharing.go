package costs

import (
	"fmt"

	"telecom_subsidy/pkg/models"
)

var passiveAssets = []Asset{
	SiteBuildCapex,
	InstallationCapex,
	SiteRentalOpex,
	BackhaulCapex,
	BackhaulOpex,
}

var activeAssets = append(append([]Asset{}, passiveAssets...),
	EquipmentCapex,
	OperationAndMaintenanceOpex,
	PowerOpex,
)

var srnAssets = append(append([]Asset{}, activeAssets...),
	RegionalEdgeCapex,
	RegionalEdgeOpex,
	RegionalNodeCapex,
	RegionalNodeOpex,
	CoreEdgeCapex,
	CoreEdgeOpex,
	CoreNodeCapex,
	CoreNodeOpex,
)

// sharedAssets lists, per sharing model, the lines split between operators.
var sharedAssets = map[models.SharingModel]map[Asset]bool{
	models.SharingBaseline: assetSet(),
	models.SharingPassive:  assetSet(passiveAssets...),
	models.SharingActive:   assetSet(activeAssets...),
	models.SharingSRN:      assetSet(srnAssets...),
}

// SharingModels is the closed set of supported sharing models.
var SharingModels = []models.SharingModel{
	models.SharingBaseline,
	models.SharingPassive,
	models.SharingActive,
	models.SharingSRN,
}

func assetSet(assets ...Asset) map[Asset]bool {
	set := make(map[Asset]bool, len(assets))
	for _, a := range assets {
		set[a] = true
	}
	return set
}

// ValidateSharingTable checks that every sharing model has an asset set and
// that every listed asset is a known cost line. Run it once at startup.
func ValidateSharingTable() error {
	known := assetSet(AllAssets...)
	for _, sm := range SharingModels {
		set, ok := sharedAssets[sm]
		if !ok {
			return models.NewConfigError("sharing_assets", string(sm), "no asset set for sharing model")
		}
		for a := range set {
			if !known[a] {
				return fmt.Errorf("sharing model %s: %w", sm, models.NewUnsupported("asset", string(a)))
			}
		}
	}
	if len(sharedAssets) != len(SharingModels) {
		return models.NewConfigError("sharing_assets", "", "asset table lists unknown sharing models")
	}
	return nil
}

// SharedAssets returns the asset set divided between operators for a model.
func SharedAssets(sm models.SharingModel) (map[Asset]bool, error) {
	set, ok := sharedAssets[sm]
	if !ok {
		return nil, models.NewUnsupported("sharing", string(sm))
	}
	return set, nil
}

// ShareDivisor returns what an asset's cost is divided by under a sharing
// model. The shared rural network only splits costs outside urban and
// suburban areas, where operators are assumed to keep their own networks.
func ShareDivisor(sm models.SharingModel, class models.SettlementClass, asset Asset, networks int) (float64, error) {
	set, err := SharedAssets(sm)
	if err != nil {
		return 0, err
	}
	if !set[asset] {
		return 1, nil
	}
	if sm == models.SharingSRN && (class == models.Urban || class == models.Suburban) {
		return 1, nil
	}
	if networks <= 0 {
		return 0, models.NewConfigError("networks", string(class), "network count must be positive")
	}
	return float64(networks), nil
}

// ApplySharing divides each shared line of a baseline structure.
func ApplySharing(base CostStructure, sm models.SharingModel, class models.SettlementClass, networks int) (CostStructure, error) {
	out := make(CostStructure, len(base))
	for _, a := range base.Lines() {
		div, err := ShareDivisor(sm, class, a, networks)
		if err != nil {
			return nil, err
		}
		out[a] = base[a] / div
	}
	return out, nil
}
