package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
)

// Technique is a cultivation path and the categories its core requires.
type Technique struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Requires []aura.Category `json:"requires" yaml:"requires"`
}

// Clone returns t with its own copy of Requires.
func (t Technique) Clone() Technique {
	t.Requires = slices.Clone(t.Requires)
	return t
}

// Environment is a place with an aura density and composition.
type Environment struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Density     float64          `json:"density" yaml:"density"`
	Composition aura.Composition `json:"composition" yaml:"composition"`
}

// CustomEnvironmentID identifies an environment assembled by the caller.
const CustomEnvironmentID = "custom"

// NotFoundError is returned for unknown catalog IDs.
type NotFoundError struct {
	Kind        string
	ID          string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s %q not found (did you mean %s?)", e.Kind, e.ID, strings.Join(e.Suggestions, ", "))
}

// BuiltinTechniques returns the techniques shipped with the service.
func BuiltinTechniques() []Technique {
	return []Technique{
		{ID: "twin-stars", Name: "Twin Stars (Pure + Destruction)", Requires: []aura.Category{aura.Pure, aura.Destruction}},
		{ID: "blackflame", Name: "Blackflame (Fire + Destruction)", Requires: []aura.Category{aura.Fire, aura.Destruction}},
		{ID: "shadow", Name: "Shadow Path (Shadow)", Requires: []aura.Category{aura.Shadow}},
		{ID: "sword", Name: "Sword Path (Sword)", Requires: []aura.Category{aura.Sword}},
	}
}

// BuiltinEnvironments returns the environments shipped with the service.
func BuiltinEnvironments() []Environment {
	return []Environment{
		{
			ID:          "sacred-valley",
			Name:        "Sacred Valley (Low density)",
			Density:     0.15,
			Composition: aura.Composition{aura.Earth: 0.35, aura.Wind: 0.25, aura.Water: 0.2, aura.Light: 0.2},
		},
		{
			ID:          "night-wheel",
			Name:        "Night Wheel Valley (High shadow density)",
			Density:     0.85,
			Composition: aura.Composition{aura.Shadow: 0.7, aura.Dream: 0.2, aura.Wind: 0.1},
		},
		{
			ID:          "average-wilds",
			Name:        "Average wilderness",
			Density:     0.5,
			Composition: DefaultCustomWeights(),
		},
	}
}

// DefaultCustomWeights is the starting composition offered for a custom environment.
func DefaultCustomWeights() aura.Composition {
	return aura.Composition{aura.Earth: 0.3, aura.Wind: 0.25, aura.Water: 0.2, aura.Fire: 0.15, aura.Light: 0.1}
}

// CustomEnvironment builds a caller-assembled environment. Density is clamped to
// [0,1] and the weights are normalized; the input map is not modified.
func CustomEnvironment(density float64, weights aura.Composition) Environment {
	comp := aura.Composition{}
	for _, c := range aura.AuraCategories() {
		comp[c] = 0
	}
	for k, v := range weights {
		comp[k] = v
	}
	return Environment{
		ID:          CustomEnvironmentID,
		Name:        "Custom environment",
		Density:     clamp01(density),
		Composition: aura.Normalize(comp),
	}
}

// Validate checks a technique definition.
func (t Technique) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("technique id required")
	}
	if len(t.Requires) == 0 {
		return fmt.Errorf("technique %s: at least one required category", t.ID)
	}
	for _, c := range t.Requires {
		if !c.Valid() {
			return fmt.Errorf("technique %s: unknown category %q", t.ID, c)
		}
	}
	return nil
}

// Validate checks an environment definition.
func (e Environment) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("environment id required")
	}
	if e.Density < 0 || e.Density > 1 {
		return fmt.Errorf("environment %s: density %f outside [0,1]", e.ID, e.Density)
	}
	if err := e.Composition.Validate(); err != nil {
		return fmt.Errorf("environment %s: %w", e.ID, err)
	}
	return nil
}

func sortTechniques(ts []Technique) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
}

func sortEnvironments(es []Environment) {
	sort.Slice(es, func(i, j int) bool { return es[i].ID < es[j].ID })
}

func clamp01(x float64) float64 {
	if x != x || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
