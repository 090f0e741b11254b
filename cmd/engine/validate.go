package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"telecom_subsidy/pkg/core/config"
	"telecom_subsidy/pkg/core/ingest"
	"telecom_subsidy/pkg/core/logging"
	"telecom_subsidy/pkg/core/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load every input and expand the jobs without running them",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}
	logger := logging.InitLogger(cfg.Logging)

	in, err := pipeline.LoadInputs(cfg.Inputs)
	if err != nil {
		return err
	}
	tuples, err := pipeline.Plan(cfg, in)
	if err != nil {
		return err
	}

	mismatches := ingest.Mismatches(ingest.VerifyDensity(in.Regions))
	for _, m := range mismatches {
		logger.Warn().
			Str("region", m.RegionID).
			Float64("reported", m.ReportedValue).
			Float64("calculated", m.CalculatedValue).
			Float64("variance", m.Variance).
			Msg("Population density mismatch")
	}

	logger.Info().
		Int("regions", len(in.Regions)).
		Int("countries", len(in.Countries)).
		Int("tuples", len(tuples)).
		Int("density_mismatches", len(mismatches)).
		Msg("Configuration valid")
	fmt.Printf("%d tuples ready\n", len(tuples))
	return nil
}
