package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
)

// parseRequires reads "Pure,Destruction".
func parseRequires(s string) ([]aura.Category, error) {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no categories in %q", s)
	}
	return aura.ParseCategories(names)
}

// parseWeights reads "Fire=0.5,Earth=0.5". Repeated categories add up.
func parseWeights(s string) (aura.Composition, error) {
	comp := aura.Composition{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("weight %q: expected Category=value", part)
		}
		cat, err := aura.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", part, err)
		}
		comp[cat] += w
	}
	if err := comp.Validate(); err != nil {
		return nil, err
	}
	return comp, nil
}
