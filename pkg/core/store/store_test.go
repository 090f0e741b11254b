package store

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecom_subsidy/pkg/core/utils"
	"telecom_subsidy/pkg/models"
)

func sampleResult(country, scenario string, confidence int) *models.TupleResult {
	key := models.RunKey{
		RunID:      "run-1",
		Country:    country,
		Scenario:   scenario,
		Strategy:   "4G_epc_wireless_baseline_baseline_baseline_baseline",
		InputCost:  "baseline",
		Confidence: confidence,
	}
	region := models.AssessedRegion{}
	region.ID = country + ".1.1_1"
	region.CountryCode = country
	region.Geotype = "urban"
	region.Population = 10000
	region.NetworkCost = 286306.3
	region.TotalCost = 400000
	region.Deficit = 100000
	region.RequiredStateSubsidy = 100000

	return &models.TupleResult{
		Key:     key,
		Regions: []models.AssessedRegion{region},
		Annual: []models.AnnualDemand{
			{RunKey: key, RegionID: region.ID, Year: 2020, Revenue: 450000},
			{RunKey: key, RegionID: region.ID, Year: 2021, Revenue: 440000},
		},
		Failures: []models.RegionFailure{
			{RegionID: country + ".9_1", Stage: "costs", Kind: "configuration", Err: errors.New("missing core node")},
		},
		Summary: models.NationalSummary{
			RunKey:               key,
			Regions:              1,
			Population:           10000,
			TotalRevenue:         450000,
			NetworkCost:          286306.3,
			TotalCost:            400000,
			RequiredStateSubsidy: 2500000,
		},
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRowWidthsMatchColumns(t *testing.T) {
	res := sampleResult("MWI", "S1_50_50_50", 50)
	assert.Len(t, regionRow(res.Key, res.Regions[0]), len(regionColumns))
	assert.Len(t, annualRow(res.Key, res.Annual[0]), len(annualColumns))
	assert.Len(t, summaryRow(res), len(summaryColumns))
	assert.Len(t, failureRow(res.Key, res.Failures[0]), len(failureColumns))
}

func TestCSVSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewCSVSink(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Save(ctx, sampleResult("UGA", "S1_50_50_50", 50)))
	require.NoError(t, sink.Save(ctx, sampleResult("MWI", "S1_50_50_50", 50)))
	require.NoError(t, sink.Close(ctx))

	stem := "S1_50_50_50_4G_epc_wireless_baseline_baseline_baseline_baseline_50"
	regional := readCSV(t, filepath.Join(dir, "MWI", "regional_"+stem+".csv"))
	require.Len(t, regional, 2)
	assert.Equal(t, regionColumns, regional[0])
	assert.Equal(t, "MWI.1.1_1", regional[1][6])

	annual := readCSV(t, filepath.Join(dir, "MWI", "annual_demand_"+stem+".csv"))
	assert.Len(t, annual, 3)

	summary := readCSV(t, filepath.Join(dir, "national_summary.csv"))
	require.Len(t, summary, 3)
	assert.Equal(t, "MWI", summary[1][1], "summaries are sorted by country")
	assert.Equal(t, "UGA", summary[2][1])

	failures := readCSV(t, filepath.Join(dir, "failures.csv"))
	require.Len(t, failures, 3)
	assert.Equal(t, "missing core node", failures[1][len(failureColumns)-1])
}

type copyCall struct {
	table   string
	columns []string
	rows    int
}

type fakeTx struct {
	pgx.Tx
	copies    []copyCall
	execs     []string
	args      [][]any
	committed bool
	execErr   error
}

func (f *fakeTx) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	n := 0
	for src.Next() {
		if _, err := src.Values(); err != nil {
			return 0, err
		}
		n++
	}
	f.copies = append(f.copies, copyCall{table: table.Sanitize(), columns: columns, rows: n})
	return int64(n), src.Err()
}

func (f *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct{ tx *fakeTx }

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) { return d.tx, nil }

func TestPostgresSinkSave(t *testing.T) {
	tx := &fakeTx{}
	sink := NewPostgresSink(&fakeDB{tx: tx})

	require.NoError(t, sink.Save(context.Background(), sampleResult("MWI", "S1_50_50_50", 50)))

	require.Len(t, tx.copies, 2)
	assert.Equal(t, `"assessed_regions"`, tx.copies[0].table)
	assert.Equal(t, 1, tx.copies[0].rows)
	assert.Equal(t, `"annual_demand"`, tx.copies[1].table)
	assert.Equal(t, 2, tx.copies[1].rows)

	require.Len(t, tx.execs, 1)
	assert.Contains(t, tx.execs[0], "INSERT INTO national_summaries")
	assert.Contains(t, tx.execs[0], "ON CONFLICT")
	assert.Len(t, tx.args[0], len(summaryColumns)+4)
	assert.True(t, tx.committed)
}

func TestPostgresSinkDoesNotCommitOnError(t *testing.T) {
	tx := &fakeTx{execErr: errors.New("relation does not exist")}
	sink := NewPostgresSink(&fakeDB{tx: tx})

	err := sink.Save(context.Background(), sampleResult("MWI", "S1_50_50_50", 50))
	require.Error(t, err)
	assert.False(t, tx.committed)
}

func TestPostgresSinkWithoutPool(t *testing.T) {
	err := NewPostgresSink(nil).Save(context.Background(), sampleResult("MWI", "S1", 50))
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	ddl := Schema()
	for _, table := range []string{RegionsTable, AnnualTable, SummariesTable} {
		assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, ddl, "confidence INTEGER")
	assert.Contains(t, ddl, "required_state_subsidy DOUBLE PRECISION")
	assert.Contains(t, ddl, "failures JSONB")
}

func TestResultCache(t *testing.T) {
	cache, err := NewResultCache(t.TempDir())
	require.NoError(t, err)

	res := sampleResult("MWI", "S1_50_50_50", 50)
	fp := Fingerprint(res.Key, RunSettings{Years: []int{2020}, Policy: "fcfs"}, "inputs-v1")

	got, err := cache.Get(fp)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, cache.Exists(fp))

	require.NoError(t, cache.Put(fp, res))
	assert.True(t, cache.Exists(fp))

	got, err = cache.Get(fp)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, res.Key, got.Key)
	assert.Equal(t, res.Summary.RequiredStateSubsidy, got.Summary.RequiredStateSubsidy)
	require.Len(t, got.Regions, 1)
	assert.Equal(t, "MWI.1.1_1", got.Regions[0].ID)
	assert.Equal(t, "configuration", got.Failures[0].Kind)
}

func TestFingerprint(t *testing.T) {
	key := sampleResult("MWI", "S1", 50).Key
	other := key
	other.RunID = "run-2"
	settings := RunSettings{Years: []int{2020}, Policy: "fcfs", BaseYear: 2020}

	assert.Equal(t, Fingerprint(key, settings, "a"), Fingerprint(other, settings, "a"), "run id is not part of the fingerprint")
	assert.NotEqual(t, Fingerprint(key, settings, "a"), Fingerprint(key, settings, "b"))

	other.Confidence = 95
	assert.NotEqual(t, Fingerprint(key, settings, "a"), Fingerprint(other, settings, "a"))

	t.Run("run settings", func(t *testing.T) {
		base := Fingerprint(key, settings, "a")

		years := settings
		years.Years = []int{2020, 2021}
		assert.NotEqual(t, base, Fingerprint(key, years, "a"))

		policy := settings
		policy.Policy = "proportional"
		assert.NotEqual(t, base, Fingerprint(key, policy, "a"))

		baseYear := settings
		baseYear.BaseYear = 2021
		assert.NotEqual(t, base, Fingerprint(key, baseYear, "a"))
	})
}

func TestReportSinkHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	sink := NewReportSink(path)

	ctx := context.Background()
	require.NoError(t, sink.Save(ctx, sampleResult("MWI", "S2_100_100_100", 50)))
	require.NoError(t, sink.Save(ctx, sampleResult("MWI", "S1_50_50_50", 50)))
	require.NoError(t, sink.Save(ctx, sampleResult("KEN", "S1_50_50_50", 50)))
	require.NoError(t, sink.Close(ctx))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)

	headings := doc.Find("h2").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"KEN", "MWI"}, headings)
	assert.Equal(t, 2, doc.Find("table").Length())

	mwiRows := doc.Find("table").Eq(1).Find("tbody tr")
	require.Equal(t, 2, mwiRows.Length())
	assert.Equal(t, "S1_50_50_50", mwiRows.First().Find("td").First().Text())
	assert.Equal(t, "2.50m", mwiRows.First().Find("td").Last().Text())
}

func TestBuildReportMarkdown(t *testing.T) {
	md := BuildReport([]*models.TupleResult{sampleResult("MWI", "S1_50_50_50", 50)}, time.Unix(0, 0))
	assert.True(t, strings.HasPrefix(md, "# Infrastructure cost and subsidy summary"))
	assert.Contains(t, md, "| S1_50_50_50 |")
	assert.Equal(t, 1, utils.CountTables(md))
}

type stubSink struct {
	saved  int
	closed bool
	err    error
}

func (s *stubSink) Save(context.Context, *models.TupleResult) error {
	s.saved++
	return s.err
}

func (s *stubSink) Close(context.Context) error {
	s.closed = true
	return nil
}

func TestMultiSink(t *testing.T) {
	ok := &stubSink{}
	bad := &stubSink{err: errors.New("disk full")}
	multi := MultiSink{bad, ok}

	err := multi.Save(context.Background(), sampleResult("MWI", "S1", 50))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, ok.saved, "later sinks still receive the result")

	require.NoError(t, multi.Close(context.Background()))
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
}
