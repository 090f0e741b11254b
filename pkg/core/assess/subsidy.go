package assess

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"telecom_subsidy/pkg/models"
)

// Policy decides how the cross-subsidy pool is shared between deficit
// regions when it cannot cover all of them.
type Policy string

const (
	// FirstComeFirstServed funds deficits in region order until the pool
	// runs dry.
	FirstComeFirstServed Policy = "fcfs"
	// Proportional scales every deficit by pool / total deficit, so the
	// result does not depend on region order.
	Proportional Policy = "proportional"
)

// proportionalPlaces truncates proportional shares so they never sum past
// the pool.
const proportionalPlaces = 8

// ParsePolicy validates a policy name. Empty selects FirstComeFirstServed.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FirstComeFirstServed:
		return FirstComeFirstServed, nil
	case Proportional:
		return Proportional, nil
	}
	return "", models.NewUnsupported("subsidy_policy", s)
}

// Ledger is the exact account of one allocation pass.
type Ledger struct {
	Pool      decimal.Decimal // sum of available cross-subsidy
	Deficit   decimal.Decimal // sum of deficits
	Used      decimal.Decimal // cross-subsidy drawn by deficit regions
	Remaining decimal.Decimal // pool left unspent
	Required  decimal.Decimal // state subsidy
}

// DrawFromPool funds as much of one deficit as the pool allows and returns
// the amount used and the pool left.
func DrawFromPool(deficit, pool decimal.Decimal) (used, remaining decimal.Decimal) {
	if !deficit.IsPositive() || !pool.IsPositive() {
		return decimal.Zero, pool
	}
	used = decimal.Min(deficit, pool)
	return used, pool.Sub(used)
}

// AllocateSubsidies folds the cross-subsidy pool over the regions in the
// order given and fills UsedCrossSubsidy and RequiredStateSubsidy. For
// every region Deficit == UsedCrossSubsidy + RequiredStateSubsidy, and the
// total used never exceeds the total available.
func AllocateSubsidies(regions []models.AssessedRegion, policy Policy) ([]models.AssessedRegion, Ledger, error) {
	out := make([]models.AssessedRegion, len(regions))
	copy(out, regions)

	var ledger Ledger
	deficits := make([]decimal.Decimal, len(out))
	for i := range out {
		ledger.Pool = ledger.Pool.Add(decimal.NewFromFloat(out[i].AvailableCrossSubsidy))
		deficits[i] = decimal.NewFromFloat(out[i].Deficit)
		ledger.Deficit = ledger.Deficit.Add(deficits[i])
	}

	used := make([]decimal.Decimal, len(out))
	switch policy {
	case FirstComeFirstServed, "":
		pool := ledger.Pool
		for i := range out {
			used[i], pool = DrawFromPool(deficits[i], pool)
		}
	case Proportional:
		if ledger.Pool.GreaterThanOrEqual(ledger.Deficit) {
			copy(used, deficits)
		} else if ledger.Deficit.IsPositive() {
			for i := range out {
				used[i] = deficits[i].Mul(ledger.Pool).
					Div(ledger.Deficit).
					Truncate(proportionalPlaces)
			}
		}
	default:
		return nil, Ledger{}, models.NewUnsupported("subsidy_policy", string(policy))
	}

	for i := range out {
		required := deficits[i].Sub(used[i])
		ledger.Used = ledger.Used.Add(used[i])
		ledger.Required = ledger.Required.Add(required)

		out[i].UsedCrossSubsidy = used[i].InexactFloat64()
		out[i].RequiredStateSubsidy = required.InexactFloat64()
	}
	ledger.Remaining = ledger.Pool.Sub(ledger.Used)

	return out, ledger, nil
}

// MarketTotals scales the operator's figures to every network in the
// region, rounded to whole currency units.
func MarketTotals(r models.AssessedRegion, networks int) models.MarketTotals {
	n := float64(networks)
	scale := func(v float64) float64 { return math.RoundToEven(v * n) }

	return models.MarketTotals{
		Revenue:               scale(r.TotalRevenue),
		NetworkCost:           scale(r.NetworkCost),
		Administration:        scale(r.Administration),
		SpectrumCost:          scale(r.SpectrumCost),
		Tax:                   scale(r.Tax),
		ProfitMargin:          scale(r.ProfitMargin),
		Cost:                  scale(r.TotalCost),
		AvailableCrossSubsidy: scale(r.AvailableCrossSubsidy),
		Deficit:               scale(r.Deficit),
		UsedCrossSubsidy:      scale(r.UsedCrossSubsidy),
		RequiredStateSubsidy:  scale(r.RequiredStateSubsidy),
	}
}
