package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
	"github.com/MikeSquared-Agency/Madra/internal/catalog"
	"github.com/MikeSquared-Agency/Madra/internal/explorer"
	"github.com/MikeSquared-Agency/Madra/internal/hermes"
	"github.com/MikeSquared-Agency/Madra/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	router  http.Handler
	metrics http.Handler
}

func newTestServer(t *testing.T, adminToken string) testServer {
	t.Helper()
	reg, err := catalog.NewRegistry("", discardLogger())
	require.NoError(t, err)
	promReg := prometheus.NewRegistry()
	x := explorer.New(reg, hermes.NewPublisher(nil, discardLogger()), metrics.New(promReg),
		explorer.DefaultLimits(), explorer.DefaultSweepConfig(), discardLogger())
	return testServer{
		router:  NewRouter(x, adminToken, 0, discardLogger()),
		metrics: NewMetricsRouter(promReg),
	}
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "GET", "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)

	cats := decode[[]CategoryInfo](t, w)
	require.Len(t, cats, len(aura.AllCategories()))
	assert.Equal(t, aura.Fire, cats[0].Name)
	assert.True(t, cats[0].Environmental)
	last := cats[len(cats)-1]
	assert.Equal(t, aura.Pure, last.Name)
	assert.False(t, last.Environmental)
}

func TestTechniquesAndEnvironments(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "GET", "/api/v1/techniques", "")
	require.Equal(t, http.StatusOK, w.Code)
	techs := decode[[]catalog.Technique](t, w)
	assert.Len(t, techs, 4)

	w = do(t, srv.router, "GET", "/api/v1/techniques/blackflame", "")
	require.Equal(t, http.StatusOK, w.Code)
	tech := decode[catalog.Technique](t, w)
	assert.Equal(t, []aura.Category{aura.Fire, aura.Destruction}, tech.Requires)

	w = do(t, srv.router, "GET", "/api/v1/environments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]catalog.Environment](t, w), 3)

	w = do(t, srv.router, "GET", "/api/v1/environments/night-wheel", "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode[catalog.Environment](t, w)
	assert.InDelta(t, 0.85, env.Density, 1e-12)
	assert.InDelta(t, 0.7, env.Composition[aura.Shadow], 1e-12)
}

func TestNotFoundSuggests(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "GET", "/api/v1/techniques/blackflam", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode[errorBody](t, w)
	assert.Contains(t, body.Error, "blackflam")
	assert.Equal(t, []string{"blackflame"}, body.Suggestions)

	w = do(t, srv.router, "GET", "/api/v1/environments/night-whel/rankings", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"night-wheel"}, decode[errorBody](t, w).Suggestions)
}

func TestRankings(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "GET", "/api/v1/environments/night-wheel/rankings", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[RankingsResponse](t, w)
	assert.Equal(t, "night-wheel", resp.Environment.ID)
	require.Len(t, resp.Rankings, 4)
	ids := make([]string, len(resp.Rankings))
	for i, r := range resp.Rankings {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"shadow", "twin-stars", "blackflame", "sword"}, ids)
	assert.InDelta(t, 0.7, resp.Rankings[0].Match.Score, 1e-12)
	assert.InDelta(t, 0.05, resp.Rankings[1].Match.Score, 1e-12)
}

func TestFrontier(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "GET", "/api/v1/techniques/shadow/frontier", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[FrontierResponse](t, w)
	assert.Equal(t, "shadow", resp.Technique.ID)
	require.Len(t, resp.Frontier, 1)
	assert.Equal(t, "night-wheel", resp.Frontier[0].ID)

	w = do(t, srv.router, "GET", "/api/v1/techniques/shadw/frontier", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNormalize(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "POST", "/api/v1/compositions/normalize", `{"weights":{"fire":3,"Earth":1}}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[NormalizeResponse](t, w)
	assert.InDelta(t, 4, resp.Sum, 1e-12)
	assert.InDelta(t, 0.75, resp.Weights[aura.Fire], 1e-12)
	assert.InDelta(t, 0.25, resp.Weights[aura.Earth], 1e-12)

	w = do(t, srv.router, "POST", "/api/v1/compositions/normalize", `{"weights":{"Fyre":1}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Fire"}, decode[errorBody](t, w).Suggestions)

	w = do(t, srv.router, "POST", "/api/v1/compositions/normalize", `{"weights":{"Fire":-1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv.router, "POST", "/api/v1/compositions/normalize", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatch(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "POST", "/api/v1/match", `{"technique_id":"blackflame","composition":{"Fire":1,"Earth":1}}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[MatchResponse](t, w)
	assert.InDelta(t, 0.5, resp.Match.Score, 1e-12)
	assert.Equal(t, catalog.CustomEnvironmentID, resp.Environment.ID)
	require.Len(t, resp.Match.Contributions, 2)

	w = do(t, srv.router, "POST", "/api/v1/match", `{"requires":["Pure","Shadow"],"environment_id":"night-wheel"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 0.75, decode[MatchResponse](t, w).Match.Score, 1e-12)

	w = do(t, srv.router, "POST", "/api/v1/match", `{"environment_id":"night-wheel"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv.router, "POST", "/api/v1/match", `{"technique_id":"sword"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv.router, "POST", "/api/v1/match", `{"technique_id":"sword","environment_id":"nowhere"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSimulateJSON(t *testing.T) {
	srv := newTestServer(t, "")

	body := `{"technique_id":"blackflame","custom_environment":{"density":0.5,"weights":{"Fire":0.5,"Earth":0.5}}}`
	w := do(t, srv.router, "POST", "/api/v1/simulate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[explorer.Result](t, w)
	assert.Equal(t, "blackflame", res.Technique.ID)
	assert.InDelta(t, 0.5, res.Match.Score, 1e-12)
	require.Len(t, res.Samples, 241)
	assert.Equal(t, 0.0, res.Samples[0].T)
	assert.InDelta(t, 35, res.Samples[0].Reserve, 1e-9)
	assert.InDelta(t, 120, res.Samples[240].T, 1e-9)
	assert.Equal(t, 241, res.Summary.Samples)
}

func TestSimulateCSV(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "POST", "/api/v1/simulate?format=csv", `{"duration_min":10,"dt_min":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 12)
	assert.Equal(t, []string{"t", "reserve", "capacity", "strain"}, records[0])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "35", records[1][1])
	assert.Equal(t, "100", records[1][2])
}

func TestSimulateValidation(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "POST", "/api/v1/simulate", `{"initial_capacity":5}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "initial_capacity", body.Fields[0].Field)

	w = do(t, srv.router, "POST", "/api/v1/simulate", `{"direction":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv.router, "POST", "/api/v1/simulate", `{"technique_id":"swrod"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"sword"}, decode[errorBody](t, w).Suggestions)
}

func TestSweep(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.router, "POST", "/api/v1/sweep", `{"knob":"ease","values":[0.2,0.8]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[explorer.SweepResult](t, w)
	assert.Equal(t, explorer.KnobEase, res.Knob)
	require.Len(t, res.Points, 2)
	assert.Equal(t, 0.2, res.Points[0].Value)
	assert.Equal(t, 0.8, res.Points[1].Value)
	assert.Less(t, res.Points[0].Summary.FinalReserve, res.Points[1].Summary.FinalReserve)

	w = do(t, srv.router, "POST", "/api/v1/sweep", `{"knob":"bogus","values":[1]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv.router, "POST", "/api/v1/sweep", `{"knob":"ease","from":0,"to":1,"steps":4611686018427387904}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "steps", body.Fields[0].Field)
}

func TestCatalogReloadRequiresAdmin(t *testing.T) {
	srv := newTestServer(t, "secret")

	w := do(t, srv.router, "POST", "/api/v1/catalog/reload", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, srv.router, "POST", "/api/v1/catalog/reload", "", "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ReloadResponse](t, w)
	assert.Equal(t, 4, resp.Techniques)
	assert.Equal(t, 3, resp.Environments)
}

func TestMetricsRouter(t *testing.T) {
	srv := newTestServer(t, "")

	w := do(t, srv.metrics, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.Equal(t, http.StatusOK, do(t, srv.router, "POST", "/api/v1/simulate", `{}`).Code)

	w = do(t, srv.metrics, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `madra_simulations_total{context="resting",direction="inward"} 1`)
}
