package scoring

// Site is an environment scored for one technique. Both dimensions are
// higher-is-better.
type Site struct {
	ID      string  `json:"id"`
	Match   float64 `json:"match"`
	Density float64 `json:"density"`
}

// Frontier returns the sites no other site beats on both match and density,
// in input order. O(n^2), which is fine for catalog-sized inputs.
func Frontier(sites []Site) []Site {
	if len(sites) <= 1 {
		return sites
	}

	var frontier []Site
	for i := range sites {
		dominated := false
		for j := range sites {
			if i == j {
				continue
			}
			if dominates(sites[j], sites[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, sites[i])
		}
	}
	return frontier
}

// dominates reports whether a is at least as good as b everywhere and strictly
// better somewhere.
func dominates(a, b Site) bool {
	if a.Match < b.Match || a.Density < b.Density {
		return false
	}
	return a.Match > b.Match || a.Density > b.Density
}
