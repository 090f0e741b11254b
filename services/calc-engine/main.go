// Command calc-engine assesses a handful of regions passed inline as a
// JSON or Hjson payload and prints the assessed regions as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"telecom_subsidy/pkg/api/assessment"
	"telecom_subsidy/pkg/core/logging"
	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/pipeline"
)

func main() {
	mode := flag.String("mode", "assess", "Mode: check or assess")
	dataStr := flag.String("data", "", "JSON or Hjson request payload")
	globalPath := flag.String("global", "global.yaml", "Global parameter file")
	countriesPath := flag.String("countries", "countries.yaml", "Country parameter file")
	flag.Parse()

	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	req, err := assessment.ParseRequest(*dataStr)
	if err != nil {
		fmt.Printf("Error parsing request: %v\n", err)
		os.Exit(1)
	}
	global, err := params.LoadGlobal(*globalPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	countries, err := params.LoadCountries(*countriesPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	tuple, err := req.Tuple(global, countries)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	switch *mode {
	case "check":
		fmt.Printf("Success: %d regions, strategy %s, scenario %s\n", len(tuple.Regions), tuple.Key.Strategy, tuple.Key.Scenario)
	case "assess":
		if err := runAssessment(tuple); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

func runAssessment(tuple pipeline.Tuple) error {
	orch, err := pipeline.NewOrchestrator(logging.GetLogger())
	if err != nil {
		return err
	}
	res, err := orch.RunTuple(context.Background(), tuple)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
