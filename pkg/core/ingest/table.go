// Package ingest loads the preprocessed region, core asset and forecast
// tables the engine consumes.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"telecom_subsidy/pkg/models"
)

// table is a header-addressed CSV document.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readTable(name string, r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, models.NewConfigError(name, "", "missing header row")
	}

	t := &table{name: name, columns: make(map[string]int), rows: records[1:]}
	for i, col := range records[0] {
		t.columns[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	return t, nil
}

func openTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return readTable(path, f)
}

func (t *table) require(cols ...string) error {
	for _, c := range cols {
		if _, ok := t.columns[c]; !ok {
			return models.NewConfigError(t.name, c, "missing column")
		}
	}
	return nil
}

func (t *table) has(col string) bool {
	_, ok := t.columns[col]
	return ok
}

// str returns a trimmed cell, empty when the column is absent.
func (t *table) str(row []string, col string) string {
	i, ok := t.columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// number parses a numeric cell. Empty cells read as zero.
func (t *table) number(row []string, line int, col string) (float64, error) {
	s := t.str(row, col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, models.NewConfigError(t.name, fmt.Sprintf("line %d, %s", line, col), err.Error())
	}
	return v, nil
}

// count parses a count cell. Preprocessing writes some counts as floats
// ("3.0"), so those are accepted when integral.
func (t *table) count(row []string, line int, col string) (int, error) {
	v, err := t.number(row, line, col)
	if err != nil {
		return 0, err
	}
	if v != float64(int(v)) {
		return 0, models.NewConfigError(t.name, fmt.Sprintf("line %d, %s", line, col), "expected a whole number")
	}
	return int(v), nil
}
