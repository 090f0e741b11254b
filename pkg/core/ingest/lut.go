package ingest

import (
	"io"
	"strings"

	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/models"
)

// LoadCoreLUT reads a core asset table with columns GID_id, asset, source
// (new|existing) and value (metres or node count).
func LoadCoreLUT(path string) (*params.CoreLookupTable, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	return parseCoreLUT(t)
}

// ReadCoreLUT is LoadCoreLUT for an open reader.
func ReadCoreLUT(name string, r io.Reader) (*params.CoreLookupTable, error) {
	t, err := readTable(name, r)
	if err != nil {
		return nil, err
	}
	return parseCoreLUT(t)
}

func parseCoreLUT(t *table) (*params.CoreLookupTable, error) {
	if err := t.require("GID_id", "asset", "source", "value"); err != nil {
		return nil, err
	}

	lut := params.NewCoreLookupTable()
	for i, row := range t.rows {
		asset, err := params.ParseCoreAsset(t.str(row, "asset"))
		if err != nil {
			return nil, err
		}
		age, err := params.ParseAge(t.str(row, "source"))
		if err != nil {
			return nil, err
		}
		value, err := t.number(row, i+2, "value")
		if err != nil {
			return nil, err
		}
		lut.Set(asset, t.str(row, "GID_id"), age, value)
	}
	return lut, nil
}

// LoadPenetration reads the mobile penetration forecast for one scenario
// from a table with columns scenario, year, penetration.
func LoadPenetration(path, scenario string) (params.PenetrationLUT, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	return parsePenetration(t, scenario)
}

// ReadPenetration is LoadPenetration for an open reader.
func ReadPenetration(name string, r io.Reader, scenario string) (params.PenetrationLUT, error) {
	t, err := readTable(name, r)
	if err != nil {
		return nil, err
	}
	return parsePenetration(t, scenario)
}

func parsePenetration(t *table, scenario string) (params.PenetrationLUT, error) {
	if err := t.require("scenario", "year", "penetration"); err != nil {
		return nil, err
	}

	lut := make(params.PenetrationLUT)
	for i, row := range t.rows {
		if !strings.EqualFold(t.str(row, "scenario"), scenario) {
			continue
		}
		year, err := t.count(row, i+2, "year")
		if err != nil {
			return nil, err
		}
		if lut[year], err = t.number(row, i+2, "penetration"); err != nil {
			return nil, err
		}
	}
	if len(lut) == 0 {
		return nil, models.NewConfigError(t.name, scenario, "no penetration forecast for scenario")
	}
	return lut, nil
}

// LoadSmartphones reads the smartphone adoption forecast for one scenario
// from a table with columns scenario, settlement_type, year, penetration.
func LoadSmartphones(path, scenario string) (params.SmartphoneLUT, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	return parseSmartphones(t, scenario)
}

// ReadSmartphones is LoadSmartphones for an open reader.
func ReadSmartphones(name string, r io.Reader, scenario string) (params.SmartphoneLUT, error) {
	t, err := readTable(name, r)
	if err != nil {
		return nil, err
	}
	return parseSmartphones(t, scenario)
}

func parseSmartphones(t *table, scenario string) (params.SmartphoneLUT, error) {
	if err := t.require("scenario", "settlement_type", "year", "penetration"); err != nil {
		return nil, err
	}

	lut := make(params.SmartphoneLUT)
	for i, row := range t.rows {
		if !strings.EqualFold(t.str(row, "scenario"), scenario) {
			continue
		}
		class, err := models.ParseSettlementClass(t.str(row, "settlement_type"))
		if err != nil {
			return nil, err
		}
		year, err := t.count(row, i+2, "year")
		if err != nil {
			return nil, err
		}
		value, err := t.number(row, i+2, "penetration")
		if err != nil {
			return nil, err
		}
		if lut[class] == nil {
			lut[class] = make(map[int]float64)
		}
		lut[class][year] = value
	}
	if len(lut) == 0 {
		return nil, models.NewConfigError(t.name, scenario, "no smartphone forecast for scenario")
	}
	return lut, nil
}
