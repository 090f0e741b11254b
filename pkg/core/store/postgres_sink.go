package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"telecom_subsidy/pkg/models"
)

// Table names written by PostgresSink.
const (
	RegionsTable   = "assessed_regions"
	AnnualTable    = "annual_demand"
	SummariesTable = "national_summaries"
)

// TxBeginner is the part of *pgxpool.Pool the sink uses.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresSink bulk-loads region and annual rows with COPY and upserts the
// national summary, all in one transaction per tuple.
type PostgresSink struct {
	db TxBeginner
}

// NewPostgresSink wraps a pool. A nil db falls back to the shared pool.
func NewPostgresSink(db TxBeginner) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) conn() (TxBeginner, error) {
	if s.db != nil {
		return s.db, nil
	}
	if p := GetPool(); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("database pool not initialized")
}

func columnType(col string) string {
	switch col {
	case "confidence", "decile", "demand_networks", "year", "regions", "failed_regions", "dropped_regions":
		return "INTEGER"
	case "run_id", "gid_0", "scenario", "strategy", "input_cost", "gid_id", "geotype", "stage", "kind", "error":
		return "TEXT"
	}
	return "DOUBLE PRECISION"
}

func createTable(name string, columns []string, extra ...string) string {
	defs := make([]string, 0, len(columns)+len(extra))
	for _, c := range columns {
		defs = append(defs, c+" "+columnType(c))
	}
	defs = append(defs, extra...)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n);", name, strings.Join(defs, ",\n\t"))
}

// Schema returns the DDL for the sink's tables.
func Schema() string {
	return strings.Join([]string{
		createTable(RegionsTable, regionColumns),
		createTable(AnnualTable, annualColumns),
		createTable(SummariesTable, summaryColumns,
			"failures JSONB",
			"started_at TIMESTAMPTZ",
			"duration_ms BIGINT",
			"updated_at TIMESTAMPTZ",
			"PRIMARY KEY (run_id, gid_0, scenario, strategy, input_cost, confidence)",
		),
	}, "\n")
}

// EnsureSchema creates missing tables.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, Schema()); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return tx.Commit(ctx)
}

type failureJSON struct {
	RegionID string `json:"GID_id"`
	Stage    string `json:"stage"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

func summaryUpsert() string {
	cols := append(append([]string{}, summaryColumns...), "failures", "started_at", "duration_ms", "updated_at")
	params := make([]string, len(cols))
	for i := range cols {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	var updates []string
	for _, c := range cols[len(keyColumns):] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	return fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES (%s)
		ON CONFLICT (run_id, gid_0, scenario, strategy, input_cost, confidence)
		DO UPDATE SET %s`,
		SummariesTable, strings.Join(cols, ", "), strings.Join(params, ", "), strings.Join(updates, ", "))
}

// Save writes one tuple.
func (s *PostgresSink) Save(ctx context.Context, res *models.TupleResult) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	regions := make([][]any, 0, len(res.Regions))
	for _, r := range res.Regions {
		regions = append(regions, regionRow(res.Key, r))
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{RegionsTable}, regionColumns, pgx.CopyFromRows(regions)); err != nil {
		return fmt.Errorf("failed to copy %s: %w", RegionsTable, err)
	}

	annual := make([][]any, 0, len(res.Annual))
	for _, a := range res.Annual {
		annual = append(annual, annualRow(res.Key, a))
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{AnnualTable}, annualColumns, pgx.CopyFromRows(annual)); err != nil {
		return fmt.Errorf("failed to copy %s: %w", AnnualTable, err)
	}

	failures := make([]failureJSON, 0, len(res.Failures))
	for _, f := range res.Failures {
		fj := failureJSON{RegionID: f.RegionID, Stage: f.Stage, Kind: f.Kind}
		if f.Err != nil {
			fj.Error = f.Err.Error()
		}
		failures = append(failures, fj)
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("failed to marshal failures: %w", err)
	}

	args := append(summaryRow(res), failuresJSON, res.StartedAt, res.Duration.Milliseconds(), time.Now())
	if _, err := tx.Exec(ctx, summaryUpsert(), args...); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return tx.Commit(ctx)
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresSink) Close(context.Context) error {
	return nil
}
