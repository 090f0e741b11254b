package assessment

import (
	"fmt"

	"telecom_subsidy/pkg/core/assess"
	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/pipeline"
	"telecom_subsidy/pkg/core/strategy"
	"telecom_subsidy/pkg/core/utils"
	"telecom_subsidy/pkg/models"
)

// CoreEntry is one row of the core lookup table.
type CoreEntry struct {
	Region string  `json:"GID_id"`
	Asset  string  `json:"asset"`
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

// Request describes a small batch of regions to assess. Forecasts are
// given inline; parameter tables come from files.
type Request struct {
	Country     string                `json:"country"`
	Strategy    string                `json:"strategy"`
	Scenario    string                `json:"scenario"`
	Policy      string                `json:"policy"`
	Years       []int                 `json:"years"`
	Penetration params.PenetrationLUT `json:"penetration"`
	Smartphones params.SmartphoneLUT  `json:"smartphones"`
	CoreLUT     []CoreEntry           `json:"core_lut"`
	Regions     []models.RawRegion    `json:"regions"`
}

// ParseRequest decodes a payload that may be Hjson, strict JSON or sloppy
// JSON. Hjson goes first: repairing Hjson as JSON can yield the wrong shape.
func ParseRequest(payload string) (*Request, error) {
	var req Request
	if err := utils.ParseHJSONToStruct(payload, &req); err != nil {
		req = Request{}
		if _, err := utils.SmartParse(payload, &req); err != nil {
			return nil, err
		}
	}
	if len(req.Regions) == 0 {
		return nil, fmt.Errorf("request has no regions")
	}
	if len(req.Years) == 0 {
		return nil, fmt.Errorf("request has no years")
	}
	return &req, nil
}

// Tuple resolves the request against the loaded parameter tables.
func (r *Request) Tuple(global *params.GlobalParameters, countries map[string]*params.CountryParameters) (pipeline.Tuple, error) {
	country := r.Country
	if country == "" {
		country = r.Regions[0].CountryCode
	}
	cp, ok := countries[country]
	if !ok {
		return pipeline.Tuple{}, models.NewConfigError("country", country, "no country parameters")
	}

	st, err := strategy.Parse(r.Strategy)
	if err != nil {
		return pipeline.Tuple{}, err
	}
	scenario, err := strategy.ParseScenario(r.Scenario)
	if err != nil {
		return pipeline.Tuple{}, err
	}
	policy, err := assess.ParsePolicy(r.Policy)
	if err != nil {
		return pipeline.Tuple{}, err
	}

	lut := params.NewCoreLookupTable()
	for _, e := range r.CoreLUT {
		asset, err := params.ParseCoreAsset(e.Asset)
		if err != nil {
			return pipeline.Tuple{}, err
		}
		age, err := params.ParseAge(e.Source)
		if err != nil {
			return pipeline.Tuple{}, err
		}
		lut.Set(asset, e.Region, age, e.Value)
	}

	return pipeline.Tuple{
		Key: models.RunKey{
			RunID:     "calc",
			Country:   country,
			Scenario:  r.Scenario,
			Strategy:  r.Strategy,
			InputCost: global.InputCost,
		},
		Strategy:    st,
		Scenario:    scenario,
		Regions:     r.Regions,
		Global:      global,
		Country:     cp,
		CoreLUT:     lut,
		Penetration: r.Penetration,
		Smartphones: r.Smartphones,
		Years:       r.Years,
		Policy:      policy,
	}, nil
}
