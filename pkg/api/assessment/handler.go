// Package assessment serves single-batch assessments over HTTP and defines
// the request payload shared with the calc-engine service.
package assessment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/ternarybob/arbor"

	"telecom_subsidy/pkg/core/params"
	"telecom_subsidy/pkg/core/pipeline"
	"telecom_subsidy/pkg/models"
)

// maxBody caps request payloads.
const maxBody = 8 << 20

// ParametersResponse lists what the server can assess.
type ParametersResponse struct {
	InputCost string   `json:"input_cost"`
	Countries []string `json:"countries"`
	Policies  []string `json:"policies"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Handler holds dependencies for the assessment endpoints.
type Handler struct {
	Global    *params.GlobalParameters
	Countries map[string]*params.CountryParameters
	Orch      *pipeline.Orchestrator
	Logger    arbor.ILogger
}

// NewHandler creates a handler over loaded parameter tables.
func NewHandler(global *params.GlobalParameters, countries map[string]*params.CountryParameters, orch *pipeline.Orchestrator, logger arbor.ILogger) *Handler {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &Handler{Global: global, Countries: countries, Orch: orch, Logger: logger}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/parameters", h.HandleParameters)
	mux.HandleFunc("/api/assess", h.HandleAssess)
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleParameters reports the loaded countries and allocation policies.
func (h *Handler) HandleParameters(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	countries := make([]string, 0, len(h.Countries))
	for iso3 := range h.Countries {
		countries = append(countries, iso3)
	}
	sort.Strings(countries)

	writeJSON(w, http.StatusOK, ParametersResponse{
		InputCost: h.Global.InputCost,
		Countries: countries,
		Policies:  []string{"fcfs", "proportional"},
	})
}

// HandleAssess runs one request through the pipeline and returns the
// tuple result. Configuration and unsupported-variant errors are the
// caller's fault and map to 400.
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	cors(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Kind: "request"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error(), Kind: "request"})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "request"})
		return
	}

	req, err := ParseRequest(string(body))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "request"})
		return
	}
	tuple, err := req.Tuple(h.Global, h.Countries)
	if err != nil {
		h.fail(w, err)
		return
	}

	res, err := h.Orch.RunTuple(r.Context(), tuple)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Logger.Info().
		Str("country", tuple.Key.Country).
		Str("strategy", tuple.Key.Strategy).
		Int("regions", len(res.Regions)).
		Int("failed", len(res.Failures)).
		Msg("Assessment served")
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if models.IsRecoverable(err) {
		status = http.StatusBadRequest
	} else {
		h.Logger.Error().Err(err).Msg("Assessment failed")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: models.ErrorKind(err)})
}
