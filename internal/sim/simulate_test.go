package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceParams() Params {
	return Params{
		DurationMin:       120,
		DtMin:             0.5,
		InitialReservePct: 0.35,
		InitialCapacity:   100,
		Direction:         DirectionInward,
		Ease:              0.6,
		Density:           0.5,
		Match:             0.5,
		Context:           ContextResting,
	}
}

func TestSimulateReferenceRun(t *testing.T) {
	samples := Simulate(referenceParams())
	require.Len(t, samples, 241)
	assert.Equal(t, Sample{T: 0, Reserve: 35, Capacity: 100, Strain: 0}, samples[0])
	assert.InDelta(t, 120.0, samples[len(samples)-1].T, 1e-9)

	// Regen at 35% fullness outweighs the 0.35 loss, so the reserve climbs.
	for i := 1; i <= 20; i++ {
		assert.Greater(t, samples[i].Reserve, samples[i-1].Reserve, "sample %d", i)
	}
	for _, s := range samples {
		assert.LessOrEqual(t, s.Reserve, 100.0)
	}

	// First step by hand: a = 0.74 * 1.6675, regen = a*0.65, loss = 0.35.
	a := 0.74 * 1.6675
	want := 35 + (a*0.65-0.35)*0.5
	assert.InDelta(t, want, samples[1].Reserve, 1e-9)
}

func TestDeriveReferenceCoefficients(t *testing.T) {
	c := Derive(referenceParams())
	assert.InDelta(t, 1.0, c.DirectionMult, 1e-12)
	assert.InDelta(t, 1.0, c.ContextUptime, 1e-12)
	assert.InDelta(t, 0.74, c.EaseUptime, 1e-12)
	assert.InDelta(t, 0.74, c.Uptime, 1e-12)
	assert.InDelta(t, 0.575, c.MatchEff, 1e-12)
	assert.InDelta(t, 0.58, c.EaseCeilingMult, 1e-12)
	assert.InDelta(t, 1.6675, c.Ceiling, 1e-12)
}

func TestPolicyTables(t *testing.T) {
	dirs := map[Direction]float64{DirectionInward: 1.0, DirectionBalanced: 0.7, DirectionOutward: 0.4}
	for d, want := range dirs {
		assert.Equal(t, want, d.Multiplier(), string(d))
	}
	ctxs := map[Context]float64{ContextResting: 1.0, ContextMoving: 0.7, ContextFighting: 0.45}
	for c, want := range ctxs {
		assert.Equal(t, want, c.Uptime(), string(c))
	}
	assert.Len(t, Directions(), 3)
	assert.Len(t, Contexts(), 3)
}

func TestParseDirectionAndContext(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"inward", DirectionInward},
		{"Reserve-Favoring", DirectionInward},
		{"balanced", DirectionBalanced},
		{"low-regen", DirectionOutward},
		{" OUTWARD ", DirectionOutward},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)

	c, err := ParseContext("Fighting")
	require.NoError(t, err)
	assert.Equal(t, ContextFighting, c)
	_, err = ParseContext("sleeping")
	assert.Error(t, err)
}

func TestSimulateInvariants(t *testing.T) {
	base := referenceParams()
	var cases []Params
	for _, d := range Directions() {
		for _, c := range Contexts() {
			for _, ease := range []float64{0, 0.5, 1} {
				for _, pct := range []float64{0, 0.35, 1} {
					p := base
					p.Direction, p.Context, p.Ease, p.InitialReservePct = d, c, ease, pct
					cases = append(cases, p)
				}
			}
		}
	}
	// Small capacities with coarse steps overshoot; the clamp must hold them.
	tiny := base
	tiny.InitialCapacity, tiny.DtMin, tiny.Density, tiny.Match, tiny.Ease = 1, 2, 1, 1, 0
	cases = append(cases, tiny)

	for _, p := range cases {
		samples := Simulate(p)
		require.NotEmpty(t, samples)
		k := samples[0].Capacity
		for _, s := range samples {
			assert.GreaterOrEqual(t, s.Reserve, 0.0)
			assert.LessOrEqual(t, s.Reserve, s.Capacity)
			assert.Equal(t, k, s.Capacity)
			assert.Equal(t, 0.0, s.Strain)
		}
	}
}

func TestSimulateSampleCount(t *testing.T) {
	tests := []struct {
		duration, dt float64
	}{
		{120, 0.5},
		{10, 0.1},
		{360, 2},
		{7, 0.3},
		{100, 0.7},
		{0.5, 0.5},
	}
	for _, tt := range tests {
		p := referenceParams()
		p.DurationMin, p.DtMin = tt.duration, tt.dt
		got := len(Simulate(p))
		want := int(math.Floor(tt.duration/tt.dt)) + 1
		assert.InDelta(t, want, got, 1, "duration=%v dt=%v", tt.duration, tt.dt)
		assert.InDelta(t, SampleCount(tt.duration, tt.dt), got, 1)
	}
}

func TestSimulateDegenerateInputs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
		want   int
	}{
		{"zero duration", func(p *Params) { p.DurationMin = 0 }, 1},
		{"zero dt", func(p *Params) { p.DtMin = 0 }, 1},
		{"negative dt", func(p *Params) { p.DtMin = -1 }, 1},
		{"NaN dt", func(p *Params) { p.DtMin = math.NaN() }, 1},
		{"negative duration", func(p *Params) { p.DurationMin = -5 }, 1},
		{"NaN duration", func(p *Params) { p.DurationMin = math.NaN() }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := referenceParams()
			tt.modify(&p)
			samples := Simulate(p)
			require.Len(t, samples, tt.want)
			assert.Equal(t, 35.0, samples[0].Reserve)
		})
	}
}

func TestSimulateCapsTrajectoryLength(t *testing.T) {
	p := referenceParams()
	p.DurationMin, p.DtMin = 1e20, 1

	samples := Simulate(p)
	require.Len(t, samples, MaxSamples)
	last := samples[len(samples)-1]
	assert.Equal(t, float64(MaxSamples-1), last.T)
	assert.LessOrEqual(t, last.Reserve, last.Capacity)
}

func TestSampleCountCapped(t *testing.T) {
	assert.Equal(t, MaxSamples, SampleCount(1e20, 1))
	assert.Equal(t, MaxSamples, SampleCount(1e300, 1e-300))
	assert.Equal(t, MaxSamples, SampleCount(MaxSamples, 1))
	assert.Equal(t, MaxSamples-1, SampleCount(MaxSamples-2, 1))
}

func TestSimulateCapacityFloor(t *testing.T) {
	for _, c := range []float64{0, -50, 0.2, math.NaN(), math.Inf(1)} {
		p := referenceParams()
		p.InitialCapacity = c
		samples := Simulate(p)
		for _, s := range samples {
			assert.Equal(t, 1.0, s.Capacity)
			assert.False(t, math.IsNaN(s.Reserve))
			assert.LessOrEqual(t, s.Reserve, 1.0)
		}
	}
}

func TestSimulateClampsFractions(t *testing.T) {
	p := referenceParams()
	p.InitialReservePct = 1.7
	assert.Equal(t, 100.0, Simulate(p)[0].Reserve)

	p.InitialReservePct = -0.2
	assert.Equal(t, 0.0, Simulate(p)[0].Reserve)

	p.InitialReservePct = math.NaN()
	assert.Equal(t, 0.0, Simulate(p)[0].Reserve)
}

func TestSimulateZeroDensityOnlyDecays(t *testing.T) {
	p := referenceParams()
	p.Density = 0
	samples := Simulate(p)
	for i := 1; i < len(samples); i++ {
		assert.Less(t, samples[i].Reserve, samples[i-1].Reserve)
	}
	assert.Equal(t, 0.0, Equilibrium(p))
}

func TestSimulateDeterministic(t *testing.T) {
	assert.Equal(t, Simulate(referenceParams()), Simulate(referenceParams()))
}

func TestSimulateConvergesToEquilibrium(t *testing.T) {
	p := referenceParams()
	p.DurationMin = 5000
	samples := Simulate(p)
	final := samples[len(samples)-1].Reserve

	mStar := Equilibrium(p)
	assert.InDelta(t, mStar, final, 1e-6)
	assert.Less(t, mStar, 100.0)

	c := Derive(p)
	assert.InDelta(t, c.Uptime*c.Ceiling*(1-mStar/100), LossRate*mStar, 1e-9)
}

func TestEquilibriumBelowCapacity(t *testing.T) {
	p := referenceParams()
	p.Density, p.Match, p.Ease = 1, 1, 0
	p.InitialCapacity = 10
	m := Equilibrium(p)
	assert.Greater(t, m, 0.0)
	assert.Less(t, m, 10.0)
}

func TestSummarize(t *testing.T) {
	samples := Simulate(referenceParams())
	s := Summarize(samples)
	assert.Equal(t, 241, s.Samples)
	assert.InDelta(t, 120.0, s.FinalT, 1e-9)
	assert.Equal(t, samples[240].Reserve, s.FinalReserve)
	assert.InDelta(t, s.FinalReserve/100, s.Fullness, 1e-12)
	assert.Equal(t, 35.0, s.MinReserve)
	assert.GreaterOrEqual(t, s.MaxReserve, s.FinalReserve)
	assert.Greater(t, s.MeanReserve, s.MinReserve)
	assert.Less(t, s.MeanReserve, s.MaxReserve)
	assert.Equal(t, 100.0, s.FinalCapacity)
	assert.Equal(t, 0.0, s.FinalStrain)

	assert.Equal(t, Summary{}, Summarize(nil))
}
