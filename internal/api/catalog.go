package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
	"github.com/MikeSquared-Agency/Madra/internal/catalog"
	"github.com/MikeSquared-Agency/Madra/internal/explorer"
	"github.com/MikeSquared-Agency/Madra/internal/scoring"
)

type CatalogHandler struct {
	explorer *explorer.Explorer
}

func NewCatalogHandler(x *explorer.Explorer) *CatalogHandler {
	return &CatalogHandler{explorer: x}
}

type CategoryInfo struct {
	Name          aura.Category `json:"name"`
	Environmental bool          `json:"environmental"`
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats := aura.AllCategories()
	out := make([]CategoryInfo, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryInfo{Name: c, Environmental: c.Environmental()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) Techniques(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.explorer.Registry().Techniques())
}

func (h *CatalogHandler) Technique(w http.ResponseWriter, r *http.Request) {
	t, err := h.explorer.Registry().Technique(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *CatalogHandler) Environments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.explorer.Registry().Environments())
}

func (h *CatalogHandler) Environment(w http.ResponseWriter, r *http.Request) {
	e, err := h.explorer.Registry().Environment(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type RankingsResponse struct {
	Environment catalog.Environment `json:"environment"`
	Rankings    []scoring.Ranked    `json:"rankings"`
}

func (h *CatalogHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	env, ranked, err := h.explorer.Rankings(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RankingsResponse{Environment: env, Rankings: ranked})
}

type FrontierResponse struct {
	Technique catalog.Technique `json:"technique"`
	Frontier  []scoring.Site    `json:"frontier"`
}

// Frontier lists the environments worth considering for a technique.
func (h *CatalogHandler) Frontier(w http.ResponseWriter, r *http.Request) {
	tech, sites, err := h.explorer.Frontier(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FrontierResponse{Technique: tech, Frontier: sites})
}

type ReloadResponse struct {
	Techniques   int `json:"techniques"`
	Environments int `json:"environments"`
}

// Reload re-reads the catalog file. On failure the previous catalog stays in service.
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.explorer.ReloadCatalog(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	reg := h.explorer.Registry()
	writeJSON(w, http.StatusOK, ReloadResponse{
		Techniques:   len(reg.Techniques()),
		Environments: len(reg.Environments()),
	})
}
