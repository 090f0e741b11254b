package assessment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecom_subsidy/pkg/core/fixtures"
	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/pipeline"
	"telecom_subsidy/pkg/models"
)

const hjsonRequest = `
# one urban Malawian region
{
  strategy: 4G_epc_wireless_baseline_baseline_baseline_baseline
  scenario: S1_50_50_50
  years: [2020]
  penetration: { "2020": 50 }
  smartphones: {
    urban: { "2020": 50 }
    rural: { "2020": 50 }
  }
  core_lut: [
    { "GID_id": "MWI.1.1.1_1", "asset": "core_node", "source": "new", "value": 2 }
    { "GID_id": "MWI.1.1.1_1", "asset": "core_node", "source": "existing", "value": 2 }
    { "GID_id": "MWI.1.1.1_1", "asset": "regional_node", "source": "new", "value": 2 }
    { "GID_id": "MWI.1.1.1_1", "asset": "regional_node", "source": "existing", "value": 2 }
    { "GID_id": "MWI.1.1.1_1", "asset": "core_edge", "source": "new", "value": 1000 }
    { "GID_id": "MWI.1.1.1_1", "asset": "regional_edge", "source": "new", "value": 1000 }
  ]
  regions: [
    {
      GID_0: MWI
      GID_id: MWI.1.1.1_1
      population: 10000
      area_km2: 2
      population_km2: 5000
      geotype: urban
      mean_luminosity_km2: 26.7
      decile: 100
      new_mno_sites: 1
      upgraded_mno_sites: 1
      backhaul_new: 1
      integration: baseline
    }
  ]
}
`

func countries() map[string]*params.CountryParameters {
	return map[string]*params.CountryParameters{"MWI": fixtures.Country()}
}

func TestParseRequestHjson(t *testing.T) {
	req, err := ParseRequest(hjsonRequest)
	require.NoError(t, err)

	require.Len(t, req.Regions, 1)
	assert.Equal(t, fixtures.RegionID, req.Regions[0].ID)
	assert.Equal(t, 1, req.Regions[0].BackhaulNew)
	assert.InDelta(t, 50, req.Penetration[2020], 1e-9)
	assert.InDelta(t, 50, req.Smartphones[models.Urban][2020], 1e-9)
	assert.Len(t, req.CoreLUT, 6)
}

func TestParseRequestRepairsJSON(t *testing.T) {
	payload := `{'strategy': '4G_epc_wireless_baseline_baseline_baseline_baseline', 'scenario': 'S1_50_50_50', 'years': [2020,], 'regions': [{'GID_0': 'MWI', 'GID_id': 'MWI.1_1', 'population': 10,},],}`
	req, err := ParseRequest(payload)
	require.NoError(t, err)
	assert.Equal(t, "MWI.1_1", req.Regions[0].ID)
}

func TestParseRequestRejectsEmpty(t *testing.T) {
	_, err := ParseRequest(`{"strategy": "x", "years": [2020]}`)
	assert.Error(t, err)

	_, err = ParseRequest(`not a payload at all [`)
	assert.Error(t, err)
}

func TestRequestTuple(t *testing.T) {
	req, err := ParseRequest(hjsonRequest)
	require.NoError(t, err)

	tuple, err := req.Tuple(fixtures.Global(), countries())
	require.NoError(t, err)
	assert.Equal(t, "MWI", tuple.Key.Country)
	assert.Equal(t, 6, tuple.CoreLUT.Len())

	orch, err := pipeline.NewOrchestrator(nil)
	require.NoError(t, err)
	res, err := orch.RunTuple(context.Background(), tuple)
	require.NoError(t, err)
	require.Len(t, res.Regions, 1)
	assert.InDelta(t, 286306.3*2+23000, res.Regions[0].NetworkCost, 0.01)
}

func TestRequestTupleUnknownCountry(t *testing.T) {
	req, err := ParseRequest(hjsonRequest)
	require.NoError(t, err)
	req.Country = "ZMB"

	_, err = req.Tuple(fixtures.Global(), countries())
	require.Error(t, err)
	assert.Equal(t, "configuration", models.ErrorKind(err))
}
