package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"telecom_subsidy/pkg/core/utils"
	"telecom_subsidy/pkg/models"
)

// ReportSink collects national summaries and writes one markdown report on
// Close. A path ending in .html is rendered to HTML.
type ReportSink struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	results []*models.TupleResult
}

// NewReportSink returns a sink writing to path.
func NewReportSink(path string) *ReportSink {
	return &ReportSink{path: path, now: time.Now}
}

// Save records a tuple for the report.
func (s *ReportSink) Save(_ context.Context, res *models.TupleResult) error {
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
	return nil
}

// Close renders and writes the report.
func (s *ReportSink) Close(_ context.Context) error {
	s.mu.Lock()
	body := BuildReport(s.results, s.now())
	s.mu.Unlock()

	if strings.EqualFold(filepath.Ext(s.path), ".html") {
		html, err := utils.RenderHTML(body)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		body = html
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", s.path, err)
	}
	return nil
}

// BuildReport renders the national summaries as a markdown document with
// one table per country.
func BuildReport(results []*models.TupleResult, generated time.Time) string {
	byCountry := make(map[string][]*models.TupleResult)
	for _, r := range results {
		byCountry[r.Key.Country] = append(byCountry[r.Key.Country], r)
	}
	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	var b strings.Builder
	b.WriteString("# Infrastructure cost and subsidy summary\n\n")
	fmt.Fprintf(&b, "Generated %s. Values in USD, modelled operator.\n", generated.UTC().Format(time.RFC3339))

	for _, country := range countries {
		rows := byCountry[country]
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].Key, rows[j].Key
			if a.Scenario != b.Scenario {
				return a.Scenario < b.Scenario
			}
			if a.Strategy != b.Strategy {
				return a.Strategy < b.Strategy
			}
			return a.Confidence < b.Confidence
		})

		fmt.Fprintf(&b, "\n## %s\n\n", utils.EscapeCell(country))
		b.WriteString("| Scenario | Strategy | Confidence | Regions | Failed | Revenue | Network cost | Total cost | Cross-subsidy used | State subsidy |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, r := range rows {
			s := r.Summary
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %s | %s | %s | %s | %s |\n",
				utils.EscapeCell(r.Key.Scenario), utils.EscapeCell(r.Key.Strategy), r.Key.Confidence,
				s.Regions, len(r.Failures),
				money(s.TotalRevenue), money(s.NetworkCost), money(s.TotalCost),
				money(s.UsedCrossSubsidy), money(s.RequiredStateSubsidy))
		}
	}
	return b.String()
}

// money formats a value in millions with two decimals.
func money(v float64) string {
	return fmt.Sprintf("%.2fm", v/1e6)
}
