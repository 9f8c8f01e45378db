package scoring

import (
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
)

// PureBaseline is what a Pure requirement contributes in any environment:
// always somewhat usable, never a perfect match.
const PureBaseline = 0.05

// Contribution captures one required category's share of the match score.
type Contribution struct {
	Category aura.Category `json:"category"`
	Weight   float64       `json:"weight"`
	Reason   string        `json:"reason"`
}

// MatchResult is the full breakdown behind a match score.
type MatchResult struct {
	Score         float64        `json:"score"`
	Raw           float64        `json:"raw"`
	Saturated     bool           `json:"saturated"`
	Contributions []Contribution `json:"contributions"`
}

// MatchScore returns the compatibility between a normalized composition and a
// technique's required categories, in [0,1].
func MatchScore(comp aura.Composition, required []aura.Category) float64 {
	return ExplainMatch(comp, required).Score
}

// ExplainMatch computes the match score along with each category's contribution.
// Contributions are summed, so the result does not depend on the order of required.
func ExplainMatch(comp aura.Composition, required []aura.Category) MatchResult {
	result := MatchResult{Contributions: make([]Contribution, 0, len(required))}

	for _, cat := range required {
		c := contribution(comp, cat)
		result.Raw += c.Weight
		result.Contributions = append(result.Contributions, c)
	}

	result.Score = clamp(result.Raw, 0, 1)
	result.Saturated = result.Raw > 1
	return result
}

func contribution(comp aura.Composition, cat aura.Category) Contribution {
	if cat == aura.Pure {
		return Contribution{Category: cat, Weight: PureBaseline, Reason: "pure baseline"}
	}
	w, ok := comp[cat]
	if !ok {
		return Contribution{Category: cat, Weight: 0, Reason: "absent from environment"}
	}
	return Contribution{Category: cat, Weight: w, Reason: "environment weight"}
}

// Candidate is anything that can be ranked by match: an ID and its required categories.
type Candidate struct {
	ID       string
	Requires []aura.Category
}

// Ranked pairs a candidate ID with its match breakdown.
type Ranked struct {
	ID    string      `json:"id"`
	Match MatchResult `json:"match"`
}

// Rank scores every candidate against comp, best first. Ties sort by ID.
func Rank(comp aura.Composition, candidates []Candidate) []Ranked {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Ranked{ID: c.ID, Match: ExplainMatch(comp, c.Requires)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Match.Score == out[j].Match.Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Match.Score > out[j].Match.Score
	})
	return out
}

// clamp maps NaN to min.
func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
