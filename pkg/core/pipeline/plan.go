package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"telecom_subsidy/pkg/core/assess"
	"telecom_subsidy/pkg/core/config"
	"telecom_subsidy/pkg/core/ingest"
	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/strategy"
	"telecom_subsidy/pkg/models"
)

// defaultConfidence is used by jobs that list no confidence levels.
const defaultConfidence = 50

// Inputs are the tables shared by every job of a run.
type Inputs struct {
	Regions   []models.RawRegion
	Global    *params.GlobalParameters
	Countries map[string]*params.CountryParameters
}

// LoadInputs reads the run-wide tables named in cfg.
func LoadInputs(cfg config.InputsConfig) (*Inputs, error) {
	regions, err := ingest.LoadRegions(cfg.Regions)
	if err != nil {
		return nil, err
	}
	global, err := params.LoadGlobal(cfg.Global)
	if err != nil {
		return nil, err
	}
	countries, err := params.LoadCountries(cfg.Countries)
	if err != nil {
		return nil, err
	}
	return &Inputs{Regions: regions, Global: global, Countries: countries}, nil
}

// countryTables are the per-country lookup tables.
type countryTables struct {
	coreLUT *params.CoreLookupTable
	digest  string
}

// Plan expands the jobs of cfg into tuples. Tables are read once per
// country and penetration forecasts once per (country, scenario).
func Plan(cfg *config.Config, in *Inputs) ([]Tuple, error) {
	policy, err := assess.ParsePolicy(cfg.Run.Policy)
	if err != nil {
		return nil, err
	}
	years := cfg.Run.Years()

	var tuples []Tuple
	for _, job := range cfg.Jobs {
		country, ok := in.Countries[job.Country]
		if !ok {
			return nil, models.NewConfigError("country", job.Country, "no country parameters")
		}
		regions := ingest.ForCountry(in.Regions, job.Country)
		if len(regions) == 0 {
			return nil, models.NewConfigError("regions", job.Country, "no regions for country")
		}

		tables, err := loadCountryTables(cfg.Inputs, job.Country)
		if err != nil {
			return nil, err
		}

		confidence := job.Confidence
		if len(confidence) == 0 {
			confidence = []int{defaultConfidence}
		}

		for _, scenarioID := range job.Scenarios {
			scenario, err := strategy.ParseScenario(scenarioID)
			if err != nil {
				return nil, err
			}
			penetration, err := ingest.LoadPenetration(config.ForCountry(cfg.Inputs.Penetration, job.Country), scenario.Name)
			if err != nil {
				return nil, err
			}
			smartphones, err := ingest.LoadSmartphones(config.ForCountry(cfg.Inputs.Smartphones, job.Country), scenario.Name)
			if err != nil {
				return nil, err
			}

			for _, strategyID := range job.Strategies {
				st, err := strategy.Parse(strategyID)
				if err != nil {
					return nil, err
				}
				for _, level := range confidence {
					tuples = append(tuples, Tuple{
						Key: models.RunKey{
							Country:    job.Country,
							Scenario:   scenarioID,
							Strategy:   strategyID,
							InputCost:  in.Global.InputCost,
							Confidence: level,
						},
						Strategy:    st,
						Scenario:    scenario,
						Regions:     regions,
						Global:      in.Global,
						Country:     country,
						CoreLUT:     tables.coreLUT,
						Penetration: penetration,
						Smartphones: smartphones,
						Years:       years,
						Policy:      policy,
						Inputs:      tables.digest,
					})
				}
			}
		}
	}
	return tuples, nil
}

func loadCountryTables(cfg config.InputsConfig, iso3 string) (*countryTables, error) {
	corePath := config.ForCountry(cfg.CoreLUT, iso3)
	lut, err := ingest.LoadCoreLUT(corePath)
	if err != nil {
		return nil, err
	}

	digest, err := digestFiles(
		cfg.Regions, cfg.Global, cfg.Countries, corePath,
		config.ForCountry(cfg.Penetration, iso3),
		config.ForCountry(cfg.Smartphones, iso3),
	)
	if err != nil {
		return nil, err
	}
	return &countryTables{coreLUT: lut, digest: digest}, nil
}

// digestFiles hashes the contents of the given files in order.
func digestFiles(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", p, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", p, err)
		}
		fmt.Fprintf(h, "\x00%s\x00", p)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
