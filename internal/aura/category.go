package aura

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Category is a resource-affinity tag. The set is closed.
type Category string

const (
	Fire        Category = "Fire"
	Water       Category = "Water"
	Earth       Category = "Earth"
	Wind        Category = "Wind"
	Shadow      Category = "Shadow"
	Light       Category = "Light"
	Sword       Category = "Sword"
	Force       Category = "Force"
	Dream       Category = "Dream"
	Destruction Category = "Destruction"
	Death       Category = "Death"

	// Pure exists in a core but never in the environment.
	Pure Category = "Pure"
)

var auraCategories = []Category{
	Fire, Water, Earth, Wind, Shadow, Light, Sword, Force, Dream, Destruction, Death,
}

// AuraCategories returns the environmental categories in canonical order.
func AuraCategories() []Category {
	out := make([]Category, len(auraCategories))
	copy(out, auraCategories)
	return out
}

// AllCategories returns the environmental categories followed by Pure.
func AllCategories() []Category {
	return append(AuraCategories(), Pure)
}

// Environmental reports whether c can appear in an environment composition.
func (c Category) Environmental() bool {
	return c != Pure && c.Valid()
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c.order() >= 0
}

func (c Category) order() int {
	if c == Pure {
		return len(auraCategories)
	}
	for i, a := range auraCategories {
		if a == c {
			return i
		}
	}
	return -1
}

// UnknownError is returned when a name matches no category.
type UnknownError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown category %q", e.Name)
	}
	return fmt.Sprintf("unknown category %q (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	name := strings.TrimSpace(s)
	for _, c := range AllCategories() {
		if strings.EqualFold(name, string(c)) {
			return c, nil
		}
	}
	names := make([]string, 0, len(auraCategories)+1)
	for _, c := range AllCategories() {
		names = append(names, string(c))
	}
	return "", &UnknownError{Name: name, Suggestions: Suggest(name, names, 3)}
}

// ParseCategories resolves every name, stopping at the first failure.
func ParseCategories(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Suggest returns up to limit candidates within edit distance of name, closest first.
func Suggest(name string, candidates []string, limit int) []string {
	type hit struct {
		name string
		dist int
	}
	needle := strings.ToLower(name)
	if needle == "" {
		return nil
	}
	var hits []hit
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(needle, strings.ToLower(cand))
		if dist > suggestLimit(len(cand)) {
			continue
		}
		hits = append(hits, hit{name: cand, dist: dist})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist == hits[j].dist {
			return hits[i].name < hits[j].name
		}
		return hits[i].dist < hits[j].dist
	})
	out := make([]string, 0, limit)
	for _, h := range hits {
		if len(out) >= limit {
			break
		}
		out = append(out, h.name)
	}
	return out
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// UnmarshalText lets JSON and YAML inputs name categories case-insensitively.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
