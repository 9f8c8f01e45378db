package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a trajectory into the figures a caller usually shows.
type Summary struct {
	Samples       int     `json:"samples"`
	FinalT        float64 `json:"final_t"`
	FinalReserve  float64 `json:"final_reserve"`
	Fullness      float64 `json:"fullness"`
	MinReserve    float64 `json:"min_reserve"`
	MaxReserve    float64 `json:"max_reserve"`
	MeanReserve   float64 `json:"mean_reserve"`
	FinalCapacity float64 `json:"final_capacity"`
	FinalStrain   float64 `json:"final_strain"`
}

// Summarize reports the end state and reserve range of samples.
func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	last := samples[len(samples)-1]
	reserve := Series(samples, func(s Sample) float64 { return s.Reserve })

	sum := Summary{
		Samples:       len(samples),
		FinalT:        last.T,
		FinalReserve:  last.Reserve,
		MinReserve:    floats.Min(reserve),
		MaxReserve:    floats.Max(reserve),
		MeanReserve:   stat.Mean(reserve, nil),
		FinalCapacity: last.Capacity,
		FinalStrain:   last.Strain,
	}
	if last.Capacity > 0 {
		sum.Fullness = last.Reserve / last.Capacity
	}
	return sum
}

// Series extracts one column of a trajectory.
func Series(samples []Sample, f func(Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = f(s)
	}
	return out
}
