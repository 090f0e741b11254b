package assessment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecom_subsidy/pkg/core/fixtures"
	"telecom_subsidy/pkg/core/pipeline"
	"telecom_subsidy/pkg/models"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	orch, err := pipeline.NewOrchestrator(nil)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(fixtures.Global(), countries(), orch, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleAssess(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/assess", "application/hjson", strings.NewReader(hjsonRequest))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var res models.TupleResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Len(t, res.Regions, 1)
	assert.Equal(t, fixtures.RegionID, res.Regions[0].ID)
	assert.Equal(t, "MWI", res.Key.Country)
	assert.NotEmpty(t, res.RequiredExact)
}

func TestHandleAssessRejectsBadStrategy(t *testing.T) {
	srv := newServer(t)

	payload := strings.Replace(hjsonRequest, "4G_epc_wireless", "4G_epc_satellite", 1)
	resp, err := http.Post(srv.URL+"/api/assess", "application/hjson", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unsupported_variant", body.Kind)
}

func TestHandleAssessMethod(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/assess")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/assess", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleParameters(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/parameters")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body ParametersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"MWI"}, body.Countries)
	assert.Equal(t, "baseline", body.InputCost)
	assert.Contains(t, body.Policies, "proportional")
}
