package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"telecom_subsidy/pkg/models"
)

// CSVSink writes one regional and one annual demand file per tuple under
// dir/<country>/, and national_summary.csv plus failures.csv on Close.
type CSVSink struct {
	dir string

	mu        sync.Mutex
	summaries []*models.TupleResult
}

// NewCSVSink creates the output directory.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	return &CSVSink{dir: dir}, nil
}

// TupleFileName is the per-tuple file stem, e.g.
// "baseline_10_10_10_4G_epc_wireless_baseline_baseline_baseline_baseline_50".
func TupleFileName(k models.RunKey) string {
	name := strings.Join([]string{k.Scenario, k.Strategy, strconv.Itoa(k.Confidence)}, "_")
	return strings.NewReplacer("/", "-", string(os.PathSeparator), "-").Replace(name)
}

// Save writes the tuple's regional and annual files.
func (s *CSVSink) Save(_ context.Context, res *models.TupleResult) error {
	countryDir := filepath.Join(s.dir, res.Key.Country)
	if err := os.MkdirAll(countryDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", countryDir, err)
	}
	stem := TupleFileName(res.Key)

	regions := make([][]any, 0, len(res.Regions))
	for _, r := range res.Regions {
		regions = append(regions, regionRow(res.Key, r))
	}
	if err := writeCSV(filepath.Join(countryDir, "regional_"+stem+".csv"), regionColumns, regions); err != nil {
		return err
	}

	annual := make([][]any, 0, len(res.Annual))
	for _, a := range res.Annual {
		annual = append(annual, annualRow(res.Key, a))
	}
	if err := writeCSV(filepath.Join(countryDir, "annual_demand_"+stem+".csv"), annualColumns, annual); err != nil {
		return err
	}

	s.mu.Lock()
	s.summaries = append(s.summaries, res)
	s.mu.Unlock()
	return nil
}

// Close writes the national summary and failure files, sorted by country,
// scenario, strategy and confidence.
func (s *CSVSink) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.summaries, func(i, j int) bool {
		a, b := s.summaries[i].Key, s.summaries[j].Key
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Scenario != b.Scenario {
			return a.Scenario < b.Scenario
		}
		if a.Strategy != b.Strategy {
			return a.Strategy < b.Strategy
		}
		return a.Confidence < b.Confidence
	})

	var summaries, failures [][]any
	for _, res := range s.summaries {
		summaries = append(summaries, summaryRow(res))
		for _, f := range res.Failures {
			failures = append(failures, failureRow(res.Key, f))
		}
	}

	if err := writeCSV(filepath.Join(s.dir, "national_summary.csv"), summaryColumns, summaries); err != nil {
		return err
	}
	return writeCSV(filepath.Join(s.dir, "failures.csv"), failureColumns, failures)
}

func writeCSV(path string, header []string, rows [][]any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(record(row)); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
