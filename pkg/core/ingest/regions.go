package ingest

import (
	"io"

	"telecom_subsidy/pkg/models"
)

// Geotype classifies a region by population density (people per km2).
func Geotype(populationKm2 float64) string {
	switch {
	case populationKm2 > 5000:
		return "urban"
	case populationKm2 > 1500:
		return "suburban 1"
	case populationKm2 > 1000:
		return "suburban 2"
	case populationKm2 > 500:
		return "rural 1"
	case populationKm2 > 100:
		return "rural 2"
	case populationKm2 > 50:
		return "rural 3"
	case populationKm2 > 10:
		return "rural 4"
	default:
		return "rural 5"
	}
}

// IntegrationFor marks regions of a multi-country market ("KEN-UGA").
func IntegrationFor(countryCode string) models.Integration {
	if len(countryCode) > 3 {
		return models.IntegrationOn
	}
	return models.IntegrationBaseline
}

// LoadRegions reads a region table from disk.
func LoadRegions(path string) ([]models.RawRegion, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	return parseRegions(t)
}

// ReadRegions reads a region table. Required columns are GID_0, GID_id,
// population and area_km2; geotype is derived from density when absent.
func ReadRegions(name string, r io.Reader) ([]models.RawRegion, error) {
	t, err := readTable(name, r)
	if err != nil {
		return nil, err
	}
	return parseRegions(t)
}

func parseRegions(t *table) ([]models.RawRegion, error) {
	if err := t.require("GID_0", "GID_id", "population", "area_km2"); err != nil {
		return nil, err
	}

	regions := make([]models.RawRegion, 0, len(t.rows))
	seen := make(map[string]bool, len(t.rows))

	for i, row := range t.rows {
		line := i + 2
		r := models.RawRegion{
			CountryCode: t.str(row, "GID_0"),
			ID:          t.str(row, "GID_id"),
			Geotype:     t.str(row, "geotype"),
		}
		if r.ID == "" {
			return nil, models.NewConfigError(t.name, "GID_id", "empty region id")
		}
		if seen[r.ID] {
			return nil, models.NewConfigError(t.name, r.ID, "duplicate region id")
		}
		seen[r.ID] = true

		var err error
		floats := []struct {
			col string
			dst *float64
		}{
			{"population", &r.Population},
			{"pop_under_10_pop", &r.PopUnder10},
			{"area_km2", &r.AreaKm2},
			{"population_km2", &r.PopulationKm2},
			{"mean_luminosity_km2", &r.MeanLuminosityKm2},
		}
		for _, f := range floats {
			if *f.dst, err = t.number(row, line, f.col); err != nil {
				return nil, err
			}
		}

		counts := []struct {
			col string
			dst *int
		}{
			{"decile", &r.Decile},
			{"existing_mno_sites", &r.ExistingSites},
			{"new_mno_sites", &r.NewSites},
			{"upgraded_mno_sites", &r.UpgradedSites},
			{"backhaul_new", &r.BackhaulNew},
		}
		for _, c := range counts {
			if *c.dst, err = t.count(row, line, c.col); err != nil {
				return nil, err
			}
		}

		if !t.has("population_km2") && r.AreaKm2 > 0 {
			r.PopulationKm2 = r.Population / r.AreaKm2
		}
		if r.Geotype == "" {
			r.Geotype = Geotype(r.PopulationKm2)
		}
		r.Integration = models.Integration(t.str(row, "integration"))
		if r.Integration == "" {
			r.Integration = IntegrationFor(r.CountryCode)
		}

		regions = append(regions, r)
	}

	return regions, nil
}

// ForCountry returns the regions of one country in file order. The subsidy
// allocation draws from the pool in this order.
func ForCountry(regions []models.RawRegion, country string) []models.RawRegion {
	var out []models.RawRegion
	for _, r := range regions {
		if r.CountryCode == country {
			out = append(out, r)
		}
	}
	return out
}
