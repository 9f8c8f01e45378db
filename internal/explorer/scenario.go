package explorer

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
	"github.com/MikeSquared-Agency/Madra/internal/sim"
)

// CustomEnvironment is a caller-assembled environment. Weights are raw and
// get normalized before use.
type CustomEnvironment struct {
	Density float64          `json:"density"`
	Weights aura.Composition `json:"weights"`
}

// Scenario is one what-if question. Requires wins over TechniqueID and Custom
// wins over EnvironmentID when both are given.
type Scenario struct {
	TechniqueID   string             `json:"technique_id,omitempty"`
	Requires      []aura.Category    `json:"requires,omitempty"`
	EnvironmentID string             `json:"environment_id,omitempty"`
	Custom        *CustomEnvironment `json:"custom_environment,omitempty"`

	DurationMin       float64       `json:"duration_min"`
	DtMin             float64       `json:"dt_min"`
	InitialReservePct float64       `json:"initial_reserve_pct"`
	InitialCapacity   float64       `json:"initial_capacity"`
	Direction         sim.Direction `json:"direction"`
	Ease              float64       `json:"ease"`
	Context           sim.Context   `json:"context"`
}

// DefaultScenario is the starting point offered to a new caller. Decoding a
// request on top of it leaves omitted fields at these values.
func DefaultScenario() Scenario {
	return Scenario{
		TechniqueID:       "twin-stars",
		EnvironmentID:     "sacred-valley",
		DurationMin:       120,
		DtMin:             0.5,
		InitialReservePct: 0.35,
		InitialCapacity:   100,
		Direction:         sim.DirectionInward,
		Ease:              0.6,
		Context:           sim.ContextResting,
	}
}

// Limits are the accepted input ranges.
type Limits struct {
	MinCapacity    float64
	MaxCapacity    float64
	MaxDurationMin float64
	MinDtMin       float64
	MaxDtMin       float64
}

// DefaultLimits are the ranges the explorer accepts out of the box.
func DefaultLimits() Limits {
	return Limits{
		MinCapacity:    10,
		MaxCapacity:    500,
		MaxDurationMin: 360,
		MinDtMin:       0.1,
		MaxDtMin:       2,
	}
}

// FieldError names one rejected input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected input of a scenario.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid scenario: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks s against the limits. Every offending field is reported.
func (l Limits) Validate(s Scenario) error {
	v := &ValidationError{}

	if !inRange(s.InitialReservePct, 0, 1) {
		v.add("initial_reserve_pct", "must be within [0, 1], got %g", s.InitialReservePct)
	}
	if !inRange(s.InitialCapacity, l.MinCapacity, l.MaxCapacity) {
		v.add("initial_capacity", "must be within [%g, %g], got %g", l.MinCapacity, l.MaxCapacity, s.InitialCapacity)
	}
	if !inRange(s.Ease, 0, 1) {
		v.add("ease", "must be within [0, 1], got %g", s.Ease)
	}
	durationOK := s.DurationMin > 0 && s.DurationMin <= l.MaxDurationMin
	if !durationOK {
		v.add("duration_min", "must be within (0, %g], got %g", l.MaxDurationMin, s.DurationMin)
	}
	if !inRange(s.DtMin, l.MinDtMin, l.MaxDtMin) {
		v.add("dt_min", "must be within [%g, %g], got %g", l.MinDtMin, l.MaxDtMin, s.DtMin)
	} else if durationOK && s.DtMin > s.DurationMin {
		v.add("dt_min", "must not exceed duration_min (%g)", s.DurationMin)
	}
	if _, err := sim.ParseDirection(string(s.Direction)); err != nil {
		v.add("direction", "%v", err)
	}
	if _, err := sim.ParseContext(string(s.Context)); err != nil {
		v.add("context", "%v", err)
	}
	if s.Custom != nil {
		if !inRange(s.Custom.Density, 0, 1) {
			v.add("custom_environment.density", "must be within [0, 1], got %g", s.Custom.Density)
		}
		if err := s.Custom.Weights.Validate(); err != nil {
			v.add("custom_environment.weights", "%v", err)
		}
	}
	if len(s.Requires) == 0 && s.TechniqueID == "" {
		v.add("technique_id", "technique_id or requires is required")
	}
	if s.Custom == nil && s.EnvironmentID == "" {
		v.add("environment_id", "environment_id or custom_environment is required")
	}

	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

// inRange is false for NaN.
func inRange(x, lo, hi float64) bool {
	return x >= lo && x <= hi
}
