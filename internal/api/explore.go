package api

import (
	"log/slog"
	"net/http"

	"github.com/gocarina/gocsv"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
	"github.com/MikeSquared-Agency/Madra/internal/catalog"
	"github.com/MikeSquared-Agency/Madra/internal/explorer"
	"github.com/MikeSquared-Agency/Madra/internal/scoring"
)

type ExploreHandler struct {
	explorer *explorer.Explorer
	logger   *slog.Logger
}

func NewExploreHandler(x *explorer.Explorer, logger *slog.Logger) *ExploreHandler {
	return &ExploreHandler{explorer: x, logger: logger}
}

type NormalizeRequest struct {
	Weights aura.Composition `json:"weights"`
}

type NormalizeResponse struct {
	Weights aura.Composition `json:"weights"`
	Sum     float64          `json:"sum"`
}

func (h *ExploreHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Weights.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, NormalizeResponse{
		Weights: aura.Normalize(req.Weights),
		Sum:     req.Weights.Sum(),
	})
}

// MatchRequest names the technique by ID or by its required categories, and
// the environment by ID or by a raw composition.
type MatchRequest struct {
	TechniqueID   string           `json:"technique_id,omitempty"`
	Requires      []aura.Category  `json:"requires,omitempty"`
	EnvironmentID string           `json:"environment_id,omitempty"`
	Composition   aura.Composition `json:"composition,omitempty"`
}

type MatchResponse struct {
	Technique   catalog.Technique   `json:"technique"`
	Environment catalog.Environment `json:"environment"`
	Match       scoring.MatchResult `json:"match"`
}

func (h *ExploreHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TechniqueID == "" && len(req.Requires) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "technique_id or requires is required"})
		return
	}
	if req.EnvironmentID == "" && req.Composition == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "environment_id or composition is required"})
		return
	}

	s := explorer.Scenario{
		TechniqueID:   req.TechniqueID,
		Requires:      req.Requires,
		EnvironmentID: req.EnvironmentID,
	}
	if req.Composition != nil {
		if err := req.Composition.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		s.Custom = &explorer.CustomEnvironment{Weights: req.Composition}
	}

	match, tech, env, err := h.explorer.Match(s)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MatchResponse{Technique: tech, Environment: env, Match: match})
}

// Simulate runs one scenario. Omitted fields take their default values.
// With ?format=csv only the samples are returned.
func (h *ExploreHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	s := explorer.DefaultScenario()
	if !decodeJSON(w, r, &s) {
		return
	}

	res, err := h.explorer.Run(s)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("X-Run-ID", res.RunID.String())
		w.WriteHeader(http.StatusOK)
		if err := gocsv.Marshal(res.Samples, w); err != nil {
			h.logger.Error("failed to write csv", "run_id", res.RunID, "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ExploreHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	req := explorer.SweepRequest{Base: explorer.DefaultScenario()}
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.explorer.Sweep(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
