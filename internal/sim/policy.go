package sim

import (
	"fmt"
	"strings"
)

// Direction selects how strongly regeneration is weighted toward the reserve.
type Direction string

const (
	DirectionInward   Direction = "inward"   // reserve-favoring
	DirectionBalanced Direction = "balanced"
	DirectionOutward  Direction = "outward"  // low reserve regen
)

// Context is what the character is doing while cycling.
type Context string

const (
	ContextResting  Context = "resting"
	ContextMoving   Context = "moving"
	ContextFighting Context = "fighting"
)

// Multiplier returns the direction's regen weighting.
func (d Direction) Multiplier() float64 {
	switch d {
	case DirectionInward:
		return 1.0
	case DirectionBalanced:
		return 0.7
	case DirectionOutward:
		return 0.4
	default:
		// Unrecognised directions get the weakest weighting.
		return 0.4
	}
}

// Uptime returns the fraction of time the context allows for cycling.
func (c Context) Uptime() float64 {
	switch c {
	case ContextResting:
		return 1.0
	case ContextMoving:
		return 0.7
	case ContextFighting:
		return 0.45
	default:
		return 0.45
	}
}

// Directions lists every direction, most reserve-favoring first.
func Directions() []Direction {
	return []Direction{DirectionInward, DirectionBalanced, DirectionOutward}
}

// Contexts lists every context, most restful first.
func Contexts() []Context {
	return []Context{ContextResting, ContextMoving, ContextFighting}
}

// ParseDirection accepts the canonical names and the descriptive aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inward", "reserve-favoring", "reserve_favoring":
		return DirectionInward, nil
	case "balanced":
		return DirectionBalanced, nil
	case "outward", "low-regen", "low_regen":
		return DirectionOutward, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// ParseContext accepts the context names case-insensitively.
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resting":
		return ContextResting, nil
	case "moving":
		return ContextMoving, nil
	case "fighting":
		return ContextFighting, nil
	}
	return "", fmt.Errorf("unknown context %q", s)
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (c *Context) UnmarshalText(text []byte) error {
	parsed, err := ParseContext(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
