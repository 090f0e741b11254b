// Package demand estimates subscribers, smartphones, revenue and peak
// traffic density per region over the assessment years.
package demand

import (
	"fmt"
	"math"

	"github.com/ternarybob/arbor"

	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/valuation"
	"telecom_subsidy/pkg/models"
)

const stage = "demand"

// Input is everything the estimator needs for one tuple.
type Input struct {
	Key         models.RunKey
	Regions     []models.RawRegion
	Strategy    models.Strategy
	Scenario    models.Scenario
	Global      *params.GlobalParameters
	Country     *params.CountryParameters
	Years       []int
	Penetration params.PenetrationLUT
	Smartphones params.SmartphoneLUT
	Logger      arbor.ILogger
}

// Output holds the demand stage records.
type Output struct {
	Regions  []models.DemandRegion
	Annual   []models.AnnualDemand
	Failures []models.RegionFailure
	Dropped  int // regions without a positive area
}

// Estimate runs the demand stage. Regions with area <= 0 are dropped.
// Configuration errors abort only the region they occur in; the region is
// reported in Output.Failures.
func Estimate(in Input) (Output, error) {
	if len(in.Years) == 0 {
		return Output{}, models.NewConfigError("years", "", "no assessment years")
	}
	if in.Global == nil || in.Country == nil {
		return Output{}, models.NewConfigError("parameters", "", "global and country parameters are required")
	}

	baseYear := in.Global.BaseYear
	if baseYear == 0 {
		baseYear = in.Years[0]
	}

	var out Output
	for _, raw := range in.Regions {
		if !(raw.AreaKm2 > 0) {
			out.Dropped++
			continue
		}

		region, annual, err := estimateRegion(in, raw, baseYear)
		if err != nil {
			if !models.IsRecoverable(err) {
				return out, fmt.Errorf("region %s: %w", raw.ID, err)
			}
			out.Failures = append(out.Failures, models.RegionFailure{
				RegionID: raw.ID,
				Stage:    stage,
				Kind:     models.ErrorKind(err),
				Err:      err,
			})
			if in.Logger != nil {
				in.Logger.Warn().
					Str("region", raw.ID).
					Str("kind", models.ErrorKind(err)).
					Err(err).
					Msg("Skipping region in demand stage")
			}
			continue
		}

		out.Regions = append(out.Regions, region)
		out.Annual = append(out.Annual, annual...)
	}

	return out, nil
}

func estimateRegion(in Input, raw models.RawRegion, baseYear int) (models.DemandRegion, []models.AnnualDemand, error) {
	class, err := raw.Class()
	if err != nil {
		return models.DemandRegion{}, nil, err
	}

	networks, err := in.Country.NetworkCount(string(in.Strategy.Networks), class)
	if err != nil {
		return models.DemandRegion{}, nil, err
	}

	monthlyGB, err := in.Scenario.MonthlyGB(class)
	if err != nil {
		return models.DemandRegion{}, nil, err
	}
	mbps := PerUserMbps(monthlyGB, in.Global.TrafficInBusyHourPerc)

	region := models.DemandRegion{
		RawRegion:       raw,
		SettlementClass: class,
		DemandNetworks:  networks,
	}

	var (
		revenue  float64
		peak     float64
		annualLg = make([]models.AnnualDemand, 0, len(in.Years))
	)

	for _, year := range in.Years {
		penetration, err := in.Penetration.At(year)
		if err != nil {
			return models.DemandRegion{}, nil, err
		}
		spPenetration, err := in.Smartphones.At(class, year)
		if err != nil {
			return models.DemandRegion{}, nil, err
		}

		arpu := EstimateARPU(raw.MeanLuminosityKm2, in.Country, in.Global.DiscountRate, year, baseYear)

		withPhones := (raw.Population - raw.PopUnder10) * penetration / 100
		onNetwork := withPhones / float64(networks)
		withSmartphones := withPhones * spPenetration / 100
		spOnNetwork := onNetwork * spPenetration / 100

		density := spOnNetwork * mbps / raw.AreaKm2
		if density > peak {
			peak = density
		}

		annualRevenue := arpu * onNetwork * 12
		revenue += annualRevenue

		region.ARPUDiscountedMonthly = arpu
		region.Penetration = penetration
		region.PopulationWithPhones = withPhones
		region.PhonesOnNetwork = onNetwork
		region.PhoneDensityOnNetworkKm2 = onNetwork / raw.AreaKm2
		region.SmartphonePenetration = spPenetration
		region.PopulationWithSmartphones = withSmartphones
		region.SmartphonesOnNetwork = spOnNetwork
		region.SmartphoneDensityOnNetworkKm2 = spOnNetwork / raw.AreaKm2

		annualLg = append(annualLg, models.AnnualDemand{
			RunKey:                    in.Key,
			RegionID:                  raw.ID,
			Year:                      year,
			Population:                raw.Population,
			AreaKm2:                   raw.AreaKm2,
			PopulationKm2:             raw.PopulationKm2,
			SettlementClass:           string(class),
			ARPUDiscountedMonthly:     arpu,
			Penetration:               penetration,
			PopulationWithPhones:      withPhones,
			PhonesOnNetwork:           onNetwork,
			SmartphonePenetration:     spPenetration,
			PopulationWithSmartphones: withSmartphones,
			SmartphonesOnNetwork:      spOnNetwork,
			DemandMbpsKm2:             density,
			Revenue:                   annualRevenue,
		})
	}

	region.DemandMbpsKm2 = peak
	region.TotalRevenue = math.RoundToEven(revenue)
	region.RevenueKm2 = math.RoundToEven(revenue / raw.AreaKm2)

	return region, annualLg, nil
}

// PerUserMbps converts a monthly data target into the busy-hour rate each
// user must be served at, rounded to two decimals.
func PerUserMbps(monthlyGB int, busyHourPerc float64) float64 {
	perDayGB := float64(monthlyGB) / 30
	busyHourGB := perDayGB * busyHourPerc / 100
	mbps := busyHourGB * 1000 * 8 / 3600
	return math.Round(mbps*100) / 100
}

// ARPUTier picks the monthly ARPU for a luminosity.
func ARPUTier(luminosity float64, country *params.CountryParameters) float64 {
	switch {
	case luminosity > country.Luminosity.High:
		return country.ARPU.High
	case luminosity > country.Luminosity.Medium:
		return country.ARPU.Medium
	default:
		return country.ARPU.Low
	}
}

// EstimateARPU returns the luminosity-tiered ARPU discounted to baseYear.
func EstimateARPU(luminosity float64, country *params.CountryParameters, discountRate float64, year, baseYear int) float64 {
	return valuation.DiscountARPU(ARPUTier(luminosity, country), discountRate, year, baseYear)
}

// Summary is a coarse national view of one demand run.
type Summary struct {
	Regions         int
	PhonesOnNetwork float64
	TotalRevenue    float64
	PeakDemandMbps  float64 // highest regional density
}

// Summarise aggregates the demand stage for logging.
func Summarise(regions []models.DemandRegion) Summary {
	s := Summary{Regions: len(regions)}
	for _, r := range regions {
		s.PhonesOnNetwork += r.PhonesOnNetwork
		s.TotalRevenue += r.TotalRevenue
		if r.DemandMbpsKm2 > s.PeakDemandMbps {
			s.PeakDemandMbps = r.DemandMbpsKm2
		}
	}
	return s
}
