package aura

import (
	"fmt"
	"math"
	"sort"
)

// Composition maps categories to non-negative weights. Raw weights need not sum to 1.
type Composition map[Category]float64

// Keys returns the composition's categories in canonical order.
func (c Composition) Keys() []Category {
	keys := make([]Category, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, oj := keys[i].order(), keys[j].order()
		if oi == oj {
			return keys[i] < keys[j]
		}
		return oi < oj
	})
	return keys
}

// Sum adds every finite weight. Non-finite weights count as zero.
func (c Composition) Sum() float64 {
	var sum float64
	for _, k := range c.Keys() {
		sum += finite(c[k])
	}
	return sum
}

// Weight returns the weight of cat, or 0 when absent.
func (c Composition) Weight(cat Category) float64 {
	return c[cat]
}

// Clone returns an independent copy.
func (c Composition) Clone() Composition {
	if c == nil {
		return nil
	}
	out := make(Composition, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Validate rejects compositions a caller should not submit: unknown or
// non-environmental categories and negative or non-finite weights.
func (c Composition) Validate() error {
	for _, k := range c.Keys() {
		if !k.Valid() {
			return fmt.Errorf("unknown category %q", k)
		}
		if !k.Environmental() {
			return fmt.Errorf("category %s has no environmental counterpart", k)
		}
		v := c[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight for %s is not finite", k)
		}
		if v < 0 {
			return fmt.Errorf("weight for %s is negative: %f", k, v)
		}
	}
	return nil
}

// Normalize rescales c so its weights sum to 1. When the sum is not positive
// the input is returned unchanged; that means "no preference", not an error.
func Normalize(c Composition) Composition {
	sum := c.Sum()
	if sum <= 0 {
		return c
	}
	out := make(Composition, len(c))
	for k, v := range c {
		out[k] = finite(v) / sum
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
