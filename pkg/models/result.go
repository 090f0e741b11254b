package models

import "time"

// TupleResult is everything one (country, scenario, strategy) run
// produces, as handed to the result sinks.
type TupleResult struct {
	Key      RunKey
	Regions  []AssessedRegion
	Annual   []AnnualDemand
	Failures []RegionFailure
	Summary  NationalSummary
	Dropped  int // regions without a positive area

	// Exact ledger totals, formatted with two decimals.
	PoolExact     string
	UsedExact     string
	RequiredExact string

	StartedAt time.Time
	Duration  time.Duration
}
