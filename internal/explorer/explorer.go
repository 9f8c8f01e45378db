package explorer

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
	"github.com/MikeSquared-Agency/Madra/internal/catalog"
	"github.com/MikeSquared-Agency/Madra/internal/hermes"
	"github.com/MikeSquared-Agency/Madra/internal/metrics"
	"github.com/MikeSquared-Agency/Madra/internal/scoring"
	"github.com/MikeSquared-Agency/Madra/internal/sim"
)

// Result is everything one scenario evaluation produces.
type Result struct {
	RunID        uuid.UUID           `json:"run_id"`
	Technique    catalog.Technique   `json:"technique"`
	Environment  catalog.Environment `json:"environment"`
	Match        scoring.MatchResult `json:"match"`
	Params       sim.Params          `json:"params"`
	Coefficients sim.Coefficients    `json:"coefficients"`
	Equilibrium  float64             `json:"equilibrium"`
	Summary      sim.Summary         `json:"summary"`
	Samples      []sim.Sample        `json:"samples,omitempty"`
}

// Explorer resolves scenarios against the catalog and runs them.
type Explorer struct {
	registry *catalog.Registry
	events   *hermes.Publisher
	metrics  *metrics.Metrics
	limits   Limits
	sweep    SweepConfig
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an Explorer. events and m may be nil.
func New(registry *catalog.Registry, events *hermes.Publisher, m *metrics.Metrics, limits Limits, sweep SweepConfig, logger *slog.Logger) *Explorer {
	return &Explorer{
		registry: registry,
		events:   events,
		metrics:  m,
		limits:   limits,
		sweep:    sweep,
		logger:   logger,
		now:      time.Now,
	}
}

// Registry exposes the catalog the explorer resolves against.
func (x *Explorer) Registry() *catalog.Registry {
	return x.registry
}

// Limits returns the accepted input ranges.
func (x *Explorer) Limits() Limits {
	return x.limits
}

// Resolve picks the technique and environment a scenario refers to. The
// returned environment's composition is normalized.
func (x *Explorer) Resolve(s Scenario) (catalog.Technique, catalog.Environment, error) {
	var tech catalog.Technique
	if len(s.Requires) > 0 {
		tech = catalog.Technique{ID: "adhoc", Name: "Ad hoc technique", Requires: s.Requires}
	} else {
		t, err := x.registry.Technique(s.TechniqueID)
		if err != nil {
			return catalog.Technique{}, catalog.Environment{}, err
		}
		tech = t
	}

	var env catalog.Environment
	if s.Custom != nil {
		env = catalog.CustomEnvironment(s.Custom.Density, s.Custom.Weights)
	} else {
		e, err := x.registry.Environment(s.EnvironmentID)
		if err != nil {
			return catalog.Technique{}, catalog.Environment{}, err
		}
		e.Composition = aura.Normalize(e.Composition)
		env = e
	}
	return tech, env, nil
}

// Run validates, resolves and simulates one scenario.
func (x *Explorer) Run(s Scenario) (*Result, error) {
	if err := x.limits.Validate(s); err != nil {
		x.metrics.ObserveRejected("validation")
		return nil, err
	}
	tech, env, err := x.Resolve(s)
	if err != nil {
		var nf *catalog.NotFoundError
		if errors.As(err, &nf) {
			x.metrics.ObserveRejected("not_found")
		}
		return nil, err
	}

	res := x.evaluate(s, tech, env, true)
	x.logger.Debug("simulation complete",
		"run_id", res.RunID,
		"technique", tech.ID,
		"environment", env.ID,
		"match", res.Match.Score,
		"final_reserve", res.Summary.FinalReserve,
	)
	x.events.Publish(hermes.SubjectSimulationCompleted(res.RunID.String()), hermes.SimulationCompletedEvent{
		RunID:         res.RunID.String(),
		TechniqueID:   tech.ID,
		EnvironmentID: env.ID,
		Direction:     string(res.Params.Direction),
		Context:       string(res.Params.Context),
		Match:         res.Match.Score,
		FinalReserve:  res.Summary.FinalReserve,
		Fullness:      res.Summary.Fullness,
		Equilibrium:   res.Equilibrium,
		Samples:       res.Summary.Samples,
		Timestamp:     x.now(),
	})
	return res, nil
}

// evaluate runs the core pipeline: match, simulate, summarize. env must
// already be normalized.
func (x *Explorer) evaluate(s Scenario, tech catalog.Technique, env catalog.Environment, keepSamples bool) *Result {
	if d, err := sim.ParseDirection(string(s.Direction)); err == nil {
		s.Direction = d
	}
	if c, err := sim.ParseContext(string(s.Context)); err == nil {
		s.Context = c
	}
	match := scoring.ExplainMatch(env.Composition, tech.Requires)
	params := sim.Params{
		DurationMin:       s.DurationMin,
		DtMin:             s.DtMin,
		InitialReservePct: s.InitialReservePct,
		InitialCapacity:   s.InitialCapacity,
		Direction:         s.Direction,
		Ease:              s.Ease,
		Density:           env.Density,
		Match:             match.Score,
		Context:           s.Context,
	}

	start := time.Now()
	samples := sim.Simulate(params)
	x.metrics.ObserveSimulation(string(params.Direction), string(params.Context), len(samples), time.Since(start))

	res := &Result{
		RunID:        uuid.New(),
		Technique:    tech,
		Environment:  env,
		Match:        match,
		Params:       params,
		Coefficients: sim.Derive(params),
		Equilibrium:  sim.Equilibrium(params),
		Summary:      sim.Summarize(samples),
	}
	if keepSamples {
		res.Samples = samples
	}
	return res
}

// Match scores a technique against an environment without simulating.
func (x *Explorer) Match(s Scenario) (scoring.MatchResult, catalog.Technique, catalog.Environment, error) {
	tech, env, err := x.Resolve(s)
	if err != nil {
		return scoring.MatchResult{}, catalog.Technique{}, catalog.Environment{}, err
	}
	return scoring.ExplainMatch(env.Composition, tech.Requires), tech, env, nil
}

// Rankings orders every catalog technique by match against an environment.
func (x *Explorer) Rankings(environmentID string) (catalog.Environment, []scoring.Ranked, error) {
	env, err := x.registry.Environment(environmentID)
	if err != nil {
		return catalog.Environment{}, nil, err
	}
	env.Composition = aura.Normalize(env.Composition)
	return env, scoring.Rank(env.Composition, x.registry.Candidates()), nil
}

// ReloadCatalog re-reads the catalog file and announces the outcome.
func (x *Explorer) ReloadCatalog() error {
	err := x.registry.Reload()
	x.metrics.ObserveCatalogReload(err)

	ev := hermes.CatalogReloadedEvent{
		Techniques:   len(x.registry.Techniques()),
		Environments: len(x.registry.Environments()),
		Timestamp:    x.now(),
	}
	if err != nil {
		ev.Error = err.Error()
		x.logger.Error("catalog reload failed", "error", err)
	}
	x.events.Publish(hermes.SubjectCatalogReloaded, ev)
	return err
}

// Frontier scores every catalog environment for a technique and keeps the ones
// no other environment beats on both match and density.
func (x *Explorer) Frontier(techniqueID string) (catalog.Technique, []scoring.Site, error) {
	tech, err := x.registry.Technique(techniqueID)
	if err != nil {
		return catalog.Technique{}, nil, err
	}
	envs := x.registry.Environments()
	sites := make([]scoring.Site, 0, len(envs))
	for _, e := range envs {
		sites = append(sites, scoring.Site{
			ID:      e.ID,
			Match:   scoring.MatchScore(aura.Normalize(e.Composition), tech.Requires),
			Density: e.Density,
		})
	}
	return tech, scoring.Frontier(sites), nil
}
