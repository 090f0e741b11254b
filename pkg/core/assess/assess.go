// Package assess adds spectrum, tax, administration and profit to each
// region's network cost and resolves deficits through cross-subsidy and
// state subsidy.
package assess

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/models"
)

const stage = "assess"

// coverageBandMaxMHz separates coverage spectrum from capacity spectrum.
const coverageBandMaxMHz = 1000

// Input is one (country, scenario, strategy) batch of costed regions.
type Input struct {
	Key      models.RunKey
	Regions  []models.CostedRegion
	Strategy models.Strategy
	Country  *params.CountryParameters
	Policy   Policy
	Logger   arbor.ILogger
}

// Output holds the assessed regions in region ID order.
type Output struct {
	Regions  []models.AssessedRegion
	Failures []models.RegionFailure
	Ledger   Ledger
	Summary  models.NationalSummary
}

// SpectrumCost prices the generation's band plan for the region population.
// Bands below 1 GHz use the coverage price, the rest the capacity price.
func SpectrumCost(population float64, st models.Strategy, country *params.CountryParameters) (float64, error) {
	freqs, err := country.GenerationFrequencies(st.Generation)
	if err != nil {
		return 0, err
	}
	multiplier, err := country.Financials.SpectrumMultiplier(st.Spectrum)
	if err != nil {
		return 0, err
	}

	var cost float64
	for _, f := range freqs {
		bw, err := f.BandwidthMHz()
		if err != nil {
			return 0, err
		}
		unit := country.Financials.SpectrumCapacityUSDMHzPop
		if f.FrequencyMHz < coverageBandMaxMHz {
			unit = country.Financials.SpectrumCoverageUSDMHzPop
		}
		cost += unit * bw * population
	}
	return cost * multiplier, nil
}

// Tax is the network cost times the strategy's tax rate.
func Tax(networkCost float64, st models.Strategy, country *params.CountryParameters) (float64, error) {
	rate, err := country.Financials.TaxRate(st.Tax)
	if err != nil {
		return 0, err
	}
	return networkCost * rate / 100, nil
}

// Administration is the overhead charged as a share of network cost.
func Administration(networkCost float64, country *params.CountryParameters) float64 {
	return networkCost * country.Financials.AdministrationPercentage / 100
}

// ProfitMargin is the operator's margin on every other cost.
func ProfitMargin(networkCost, spectrum, tax, administration float64, country *params.CountryParameters) float64 {
	return (networkCost + spectrum + tax + administration) * country.Financials.ProfitMargin / 100
}

// AssessRegion computes the cost build-up for one region. Subsidy fields
// are filled later by AllocateSubsidies.
func AssessRegion(region models.CostedRegion, st models.Strategy, country *params.CountryParameters) (models.AssessedRegion, error) {
	out := models.AssessedRegion{CostedRegion: region}

	spectrum, err := SpectrumCost(region.Population, st, country)
	if err != nil {
		return models.AssessedRegion{}, err
	}
	tax, err := Tax(region.NetworkCost, st, country)
	if err != nil {
		return models.AssessedRegion{}, err
	}
	admin := Administration(region.NetworkCost, country)
	profit := ProfitMargin(region.NetworkCost, spectrum, tax, admin, country)

	out.SpectrumCost = spectrum
	out.Tax = tax
	out.Administration = admin
	out.ProfitMargin = profit
	out.TotalCost = region.NetworkCost + spectrum + tax + admin + profit

	AllocateAvailableExcess(&out)
	return out, nil
}

// AllocateAvailableExcess classifies a region as surplus or deficit.
func AllocateAvailableExcess(r *models.AssessedRegion) {
	r.AvailableCrossSubsidy, r.Deficit = 0, 0
	switch {
	case r.TotalRevenue > r.TotalCost:
		r.AvailableCrossSubsidy = r.TotalRevenue - r.TotalCost
	case r.TotalCost > r.TotalRevenue:
		r.Deficit = r.TotalCost - r.TotalRevenue
	}
}

// Assess runs the assessment stage for one batch. Regions keep their input
// order, which is the order first-come-first-served allocation draws from
// the pool.
func Assess(in Input) (Output, error) {
	if in.Country == nil {
		return Output{}, models.NewConfigError("country_parameters", in.Key.Country, "missing")
	}
	policy := in.Policy
	if policy == "" {
		policy = FirstComeFirstServed
	}

	var out Output
	assessed := make([]models.AssessedRegion, 0, len(in.Regions))
	for _, r := range in.Regions {
		a, err := AssessRegion(r, in.Strategy, in.Country)
		if err != nil {
			if !models.IsRecoverable(err) {
				return Output{}, fmt.Errorf("region %s: %w", r.ID, err)
			}
			out.Failures = append(out.Failures, models.RegionFailure{
				RegionID: r.ID,
				Stage:    stage,
				Kind:     models.ErrorKind(err),
				Err:      err,
			})
			if in.Logger != nil {
				in.Logger.Warn().
					Str("region", r.ID).
					Str("kind", models.ErrorKind(err)).
					Err(err).
					Msg("Skipping region in assessment stage")
			}
			continue
		}
		assessed = append(assessed, a)
	}

	allocated, ledger, err := AllocateSubsidies(assessed, policy)
	if err != nil {
		return Output{}, err
	}

	for i := range allocated {
		allocated[i].Market = MarketTotals(allocated[i], allocated[i].DemandNetworks)
	}

	out.Regions = allocated
	out.Ledger = ledger
	out.Summary = Summarise(in.Key, allocated)

	if in.Logger != nil {
		in.Logger.Debug().
			Str("country", in.Key.Country).
			Str("policy", string(policy)).
			Int("regions", len(allocated)).
			Str("pool", ledger.Pool.StringFixed(2)).
			Str("used", ledger.Used.StringFixed(2)).
			Str("state_subsidy", ledger.Required.StringFixed(2)).
			Msg("Subsidy allocation complete")
	}

	return out, nil
}

// Summarise totals a batch's assessed regions.
func Summarise(key models.RunKey, regions []models.AssessedRegion) models.NationalSummary {
	s := models.NationalSummary{RunKey: key, Regions: len(regions)}
	for _, r := range regions {
		s.Population += r.Population
		s.TotalRevenue += r.TotalRevenue
		s.NetworkCost += r.NetworkCost
		s.TotalCost += r.TotalCost
		s.AvailableCrossSubsidy += r.AvailableCrossSubsidy
		s.UsedCrossSubsidy += r.UsedCrossSubsidy
		s.RequiredStateSubsidy += r.RequiredStateSubsidy
	}
	return s
}
