package ingest

import (
	"sort"

	"telecom_subsidy/pkg/models"
)

// Checkpoint statuses.
const (
	StatusMatch            = "MATCH"
	StatusImmaterial       = "IMMATERIAL"
	StatusMaterialMismatch = "MATERIAL_MISMATCH"
)

// DensityTolerancePct is the relative difference, in percent, below which a
// reported density is treated as rounding noise.
const DensityTolerancePct = 0.05

// AuditCheckpoint compares a density column written by preprocessing with
// the value derived from population and area.
type AuditCheckpoint struct {
	RegionID        string
	ReportedValue   float64
	CalculatedValue float64
	Variance        float64
	Status          string
}

// VerifyDensity audits population_km2 against population / area_km2 for
// each region with a positive area. Results are sorted by region id.
func VerifyDensity(regions []models.RawRegion) []AuditCheckpoint {
	checks := []AuditCheckpoint{}

	for _, r := range regions {
		if r.AreaKm2 <= 0 {
			continue
		}
		calc := r.Population / r.AreaKm2
		diff := calc - r.PopulationKm2

		status := StatusMatch
		if diff != 0 {
			pct := 100.0
			if r.PopulationKm2 != 0 {
				pct = diff / r.PopulationKm2 * 100
			}
			if pct > DensityTolerancePct || pct < -DensityTolerancePct {
				status = StatusMaterialMismatch
			} else {
				status = StatusImmaterial
			}
		}

		checks = append(checks, AuditCheckpoint{
			RegionID:        r.ID,
			ReportedValue:   r.PopulationKm2,
			CalculatedValue: calc,
			Variance:        diff,
			Status:          status,
		})
	}

	sort.Slice(checks, func(i, j int) bool { return checks[i].RegionID < checks[j].RegionID })
	return checks
}

// Mismatches filters the checkpoints down to material mismatches.
func Mismatches(checks []AuditCheckpoint) []AuditCheckpoint {
	var out []AuditCheckpoint
	for _, c := range checks {
		if c.Status == StatusMaterialMismatch {
			out = append(out, c)
		}
	}
	return out
}
