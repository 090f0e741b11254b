package params

import (
	"fmt"
	"strconv"

	"telecom_subsidy/pkg/models"
)

// PenetrationLUT maps year to mobile penetration percentage.
type PenetrationLUT map[int]float64

// At returns the penetration for a year.
func (l PenetrationLUT) At(year int) (float64, error) {
	v, ok := l[year]
	if !ok {
		return 0, models.NewConfigError("penetration", strconv.Itoa(year), "year not in forecast")
	}
	return v, nil
}

// SmartphoneLUT maps settlement class to year to smartphone adoption
// percentage. Only urban and rural curves are forecast.
type SmartphoneLUT map[models.SettlementClass]map[int]float64

// At returns the adoption for a class and year. Suburban regions use the
// urban curve.
func (l SmartphoneLUT) At(class models.SettlementClass, year int) (float64, error) {
	curveClass := class
	if class == models.Suburban {
		curveClass = models.Urban
	}
	curve, ok := l[curveClass]
	if !ok {
		return 0, models.NewConfigError("smartphones", string(curveClass), "settlement class not in forecast")
	}
	v, ok := curve[year]
	if !ok {
		return 0, models.NewConfigError("smartphones",
			fmt.Sprintf("%s/%d", curveClass, year), "year not in forecast")
	}
	return v, nil
}

// CoreAsset is one of the four shared network asset types.
type CoreAsset string

const (
	CoreEdge     CoreAsset = "core_edge"
	CoreNode     CoreAsset = "core_node"
	RegionalEdge CoreAsset = "regional_edge"
	RegionalNode CoreAsset = "regional_node"
)

// ParseCoreAsset validates an asset name from the lookup table.
func ParseCoreAsset(s string) (CoreAsset, error) {
	switch CoreAsset(s) {
	case CoreEdge, CoreNode, RegionalEdge, RegionalNode:
		return CoreAsset(s), nil
	}
	return "", models.NewUnsupported("core_asset", s)
}

// IsEdge reports whether the asset is measured in metres rather than nodes.
func (a CoreAsset) IsEdge() bool {
	return a == CoreEdge || a == RegionalEdge
}

// Age distinguishes infrastructure to be built from what is already there.
type Age string

const (
	AgeNew      Age = "new"
	AgeExisting Age = "existing"
)

// ParseAge validates the source column of the lookup table.
func ParseAge(s string) (Age, error) {
	switch Age(s) {
	case AgeNew, AgeExisting:
		return Age(s), nil
	}
	return "", models.NewUnsupported("asset_age", s)
}

type coreKey struct {
	asset  CoreAsset
	region string
	age    Age
}

// CoreLookupTable holds node counts and edge lengths (metres) per region.
// "new" values are incremental build requirements, not cumulative totals.
type CoreLookupTable struct {
	values map[coreKey]float64
}

// NewCoreLookupTable returns an empty table.
func NewCoreLookupTable() *CoreLookupTable {
	return &CoreLookupTable{values: make(map[coreKey]float64)}
}

// Set stores a value, replacing any previous one.
func (t *CoreLookupTable) Set(asset CoreAsset, region string, age Age, value float64) {
	t.values[coreKey{asset, region, age}] = value
}

// Get returns the value for an asset, region and age.
func (t *CoreLookupTable) Get(asset CoreAsset, region string, age Age) (float64, error) {
	v, ok := t.values[coreKey{asset, region, age}]
	if !ok {
		return 0, models.NewConfigError("core_lut",
			fmt.Sprintf("%s/%s/%s", asset, region, age), "asset not in lookup table")
	}
	return v, nil
}

// Len is the number of stored entries.
func (t *CoreLookupTable) Len() int {
	return len(t.values)
}

// Lookup is Get without the error, for optional entries.
func (t *CoreLookupTable) Lookup(asset CoreAsset, region string, age Age) (float64, bool) {
	v, ok := t.values[coreKey{asset, region, age}]
	return v, ok
}
