package explorer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/MikeSquared-Agency/Madra/internal/catalog"
	"github.com/MikeSquared-Agency/Madra/internal/hermes"
	"github.com/MikeSquared-Agency/Madra/internal/sim"
)

// Knob is the scenario input a sweep varies.
type Knob string

const (
	KnobEase              Knob = "ease"
	KnobDensity           Knob = "density"
	KnobInitialReservePct Knob = "initial_reserve_pct"
	KnobInitialCapacity   Knob = "initial_capacity"
	KnobTechnique         Knob = "technique"
)

// SweepConfig bounds sweep size and parallelism.
type SweepConfig struct {
	MaxPoints int
	Workers   int
}

func DefaultSweepConfig() SweepConfig {
	return SweepConfig{MaxPoints: 64, Workers: 4}
}

// SweepRequest varies one knob of Base. Values are used as given; otherwise
// Steps evenly spaced values from From to To inclusive. The technique knob
// ignores values and runs every catalog technique.
type SweepRequest struct {
	Base   Scenario  `json:"base"`
	Knob   Knob      `json:"knob"`
	Values []float64 `json:"values,omitempty"`
	From   float64   `json:"from,omitempty"`
	To     float64   `json:"to,omitempty"`
	Steps  int       `json:"steps,omitempty"`
}

// SweepPoint is one evaluated variation. Samples are omitted to keep sweeps
// small. Value is zero for technique sweeps; TechniqueID identifies the point.
type SweepPoint struct {
	Value       float64     `json:"value"`
	TechniqueID string      `json:"technique_id"`
	Match       float64     `json:"match"`
	Equilibrium float64     `json:"equilibrium"`
	Summary     sim.Summary `json:"summary"`
}

// SweepResult holds the points in request order.
type SweepResult struct {
	SweepID uuid.UUID    `json:"sweep_id"`
	Knob    Knob         `json:"knob"`
	Points  []SweepPoint `json:"points"`
}

// values expands the request into at most maxPoints knob values.
func (r SweepRequest) values(maxPoints int) ([]float64, *FieldError) {
	if len(r.Values) > 0 {
		if len(r.Values) > maxPoints {
			return nil, &FieldError{Field: "values", Message: fmt.Sprintf("sweep has %d points, limit is %d", len(r.Values), maxPoints)}
		}
		return r.Values, nil
	}
	if r.Steps < 2 {
		return nil, &FieldError{Field: "steps", Message: "steps must be at least 2 when values are not given"}
	}
	if r.Steps > maxPoints {
		return nil, &FieldError{Field: "steps", Message: fmt.Sprintf("sweep has %d points, limit is %d", r.Steps, maxPoints)}
	}
	return floats.Span(make([]float64, r.Steps), r.From, r.To), nil
}

// Sweep evaluates the base scenario once per knob value on a bounded worker
// pool. Results keep the order of the values. Cancelling ctx stops
// scheduling new points.
func (x *Explorer) Sweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	tech, env, err := x.Resolve(req.Base)
	if err != nil {
		return nil, err
	}

	type job struct {
		scenario Scenario
		tech     catalog.Technique
		env      catalog.Environment
		value    float64
	}
	var jobs []job

	switch req.Knob {
	case KnobTechnique:
		for _, t := range x.registry.Techniques() {
			jobs = append(jobs, job{scenario: req.Base, tech: t, env: env})
		}
	case KnobEase, KnobDensity, KnobInitialReservePct, KnobInitialCapacity:
		values, ferr := req.values(x.sweep.MaxPoints)
		if ferr != nil {
			x.metrics.ObserveRejected("validation")
			return nil, &ValidationError{Fields: []FieldError{*ferr}}
		}
		for _, v := range values {
			j := job{scenario: req.Base, tech: tech, env: env, value: v}
			switch req.Knob {
			case KnobEase:
				j.scenario.Ease = v
			case KnobInitialReservePct:
				j.scenario.InitialReservePct = v
			case KnobInitialCapacity:
				j.scenario.InitialCapacity = v
			case KnobDensity:
				if !inRange(v, 0, 1) {
					return nil, &ValidationError{Fields: []FieldError{{Field: "values", Message: fmt.Sprintf("density must be within [0, 1], got %g", v)}}}
				}
				j.env.Density = v
			}
			jobs = append(jobs, j)
		}
	default:
		return nil, &ValidationError{Fields: []FieldError{{Field: "knob", Message: fmt.Sprintf("unknown knob %q", req.Knob)}}}
	}

	if len(jobs) > x.sweep.MaxPoints {
		return nil, &ValidationError{Fields: []FieldError{{Field: "values", Message: fmt.Sprintf("sweep has %d points, limit is %d", len(jobs), x.sweep.MaxPoints)}}}
	}
	for _, j := range jobs {
		if err := x.limits.Validate(j.scenario); err != nil {
			x.metrics.ObserveRejected("validation")
			return nil, err
		}
	}

	points := make([]SweepPoint, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, x.sweep.Workers))
	for i, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		i, j := i, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := x.evaluate(j.scenario, j.tech, j.env, false)
			points[i] = SweepPoint{
				Value:       j.value,
				TechniqueID: j.tech.ID,
				Match:       res.Match.Score,
				Equilibrium: res.Equilibrium,
				Summary:     res.Summary,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &SweepResult{SweepID: uuid.New(), Knob: req.Knob, Points: points}
	x.metrics.ObserveSweep(string(req.Knob))
	x.events.Publish(hermes.SubjectSweepCompleted(out.SweepID.String()), hermes.SweepCompletedEvent{
		SweepID:   out.SweepID.String(),
		Knob:      string(req.Knob),
		Points:    len(points),
		Timestamp: x.now(),
	})
	return out, nil
}
