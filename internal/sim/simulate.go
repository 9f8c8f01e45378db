package sim

import "math"

const (
	// BaseIntake is the regen ceiling before any multipliers, in units per minute.
	BaseIntake = 10.0
	// LossRate is the proportional passive loss per minute. It keeps the reserve
	// from settling exactly at capacity.
	LossRate = 0.01

	// MaxSamples bounds the length of one trajectory. Longer runs are truncated.
	MaxSamples = 1 << 20

	// boundaryEpsilon lets the final sample land on the duration despite
	// floating-point step accumulation.
	boundaryEpsilon = 1e-9
)

// Params are the inputs to one simulation run. Density and Match come from
// evaluating the environment and technique.
type Params struct {
	DurationMin       float64   `json:"duration_min"`
	DtMin             float64   `json:"dt_min"`
	InitialReservePct float64   `json:"initial_reserve_pct"`
	InitialCapacity   float64   `json:"initial_capacity"`
	Direction         Direction `json:"direction"`
	Ease              float64   `json:"ease"`
	Density           float64   `json:"density"`
	Match             float64   `json:"match"`
	Context           Context   `json:"context"`
}

// Sample is one point of a trajectory. Capacity and strain never change within
// a run; they are carried so the output shape stays stable.
type Sample struct {
	T        float64 `json:"t" csv:"t"`
	Reserve  float64 `json:"reserve" csv:"reserve"`
	Capacity float64 `json:"capacity" csv:"capacity"`
	Strain   float64 `json:"strain" csv:"strain"`
}

// Coefficients are the multipliers derived from Params once per run.
type Coefficients struct {
	DirectionMult   float64 `json:"direction_mult"`
	ContextUptime   float64 `json:"context_uptime"`
	EaseUptime      float64 `json:"ease_uptime"`
	Uptime          float64 `json:"uptime"`
	MatchEff        float64 `json:"match_eff"`
	EaseCeilingMult float64 `json:"ease_ceiling_mult"`
	Ceiling         float64 `json:"ceiling"`
}

// Derive computes the run's constant multipliers.
//
//	uptime  = clamp01(contextUptime * (0.35 + 0.65*ease))
//	ceiling = BaseIntake * density * (0.15 + 0.85*match) * direction * (1 - 0.7*ease)
//
// Easy cycling raises uptime and lowers the ceiling.
func Derive(p Params) Coefficients {
	e := clamp01(p.Ease)
	c := Coefficients{
		DirectionMult:   p.Direction.Multiplier(),
		ContextUptime:   p.Context.Uptime(),
		EaseUptime:      0.35 + 0.65*e,
		MatchEff:        0.15 + 0.85*clamp01(p.Match),
		EaseCeilingMult: 1 - 0.7*e,
	}
	c.Uptime = clamp01(c.ContextUptime * c.EaseUptime)
	c.Ceiling = BaseIntake * clamp01(p.Density) * c.MatchEff * c.DirectionMult * c.EaseCeilingMult
	return c
}

// Capacity returns the run's capacity, floored at 1. Non-finite capacities
// fall back to the floor.
func Capacity(p Params) float64 {
	if math.IsNaN(p.InitialCapacity) || math.IsInf(p.InitialCapacity, 0) {
		return 1
	}
	return math.Max(1, p.InitialCapacity)
}

// Simulate integrates the reserve with forward Euler at a fixed step and
// returns every sample from t=0 through the duration. The first sample is the
// initial condition. The result is never empty.
//
// A step that is not positive and finite cannot advance time, and a duration
// that is negative or NaN covers no steps; both yield only the initial sample.
// At most MaxSamples samples are produced, so a duration that dwarfs the step
// still terminates.
func Simulate(p Params) []Sample {
	k := Capacity(p)
	m := clamp(clamp01(p.InitialReservePct)*k, 0, k)
	coef := Derive(p)
	rate := coef.Uptime * coef.Ceiling

	if !(p.DtMin > 0) || math.IsInf(p.DtMin, 0) || !(p.DurationMin >= 0) || math.IsInf(p.DurationMin, 0) {
		return []Sample{{T: 0, Reserve: m, Capacity: k}}
	}

	n := SampleCount(p.DurationMin, p.DtMin)
	limit := min(n+1, MaxSamples)
	samples := make([]Sample, 0, n)
	for t := 0.0; t <= p.DurationMin+boundaryEpsilon && len(samples) < limit; t += p.DtMin {
		samples = append(samples, Sample{T: t, Reserve: m, Capacity: k})

		fullness := 0.0
		if k > 0 {
			fullness = m / k
		}
		regen := rate * math.Max(0, 1-fullness)
		loss := LossRate * m
		m = clamp(m+(regen-loss)*p.DtMin, 0, k)
	}
	return samples
}

// SampleCount is the expected trajectory length: floor(duration/dt) + 1,
// capped at MaxSamples. Accumulated rounding can make Simulate differ from it
// by one below the cap.
func SampleCount(durationMin, dtMin float64) int {
	if !(dtMin > 0) || !(durationMin >= 0) || math.IsInf(durationMin, 0) || math.IsInf(dtMin, 0) {
		return 1
	}
	n := math.Floor(durationMin/dtMin+boundaryEpsilon) + 1
	if n >= MaxSamples {
		return MaxSamples
	}
	return int(n)
}

// Equilibrium returns the reserve level where regen balances loss,
//
//	a*(1 - M/K) = LossRate*M  =>  M = a*K / (a + LossRate*K),  a = uptime*ceiling
//
// Because loss is proportional to M, this sits strictly below capacity whenever
// regen is positive.
func Equilibrium(p Params) float64 {
	k := Capacity(p)
	coef := Derive(p)
	a := coef.Uptime * coef.Ceiling
	if a <= 0 {
		return 0
	}
	return clamp(a*k/(a+LossRate*k), 0, k)
}

func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}

// clamp maps NaN to lo so it cannot propagate into the trajectory.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
