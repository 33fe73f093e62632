package geo

import "github.com/paulmach/orb"

// serviceArea covers the Alicante and Murcia provinces with a little margin.
// Feed coordinates outside it are junk (swapped fields, 0/0 placeholders)
// and are treated as absent.
var serviceArea = orb.Bound{
	Min: orb.Point{-2.35, 36.6},
	Max: orb.Point{0.55, 39.2},
}

// InServiceArea reports whether a latitude/longitude pair plausibly lies in
// the served coastal area.
func InServiceArea(lat, lng float64) bool {
	return serviceArea.Contains(orb.Point{lng, lat})
}
