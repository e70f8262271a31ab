package ontology

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// containsTolerance absorbs boundary-sharing artifacts in the source
// geometry: a vertex may sit up to this far (degrees) outside the
// enclosing polygon and still count as contained.
const containsTolerance = 1e-6

// multiPolygonCovers reports whether every vertex of inner's outer rings
// lies inside outer, within containsTolerance of its boundary.
func multiPolygonCovers(outer, inner orb.MultiPolygon) bool {
	ob, ib := outer.Bound(), inner.Bound()
	if ib.Min[0] < ob.Min[0]-containsTolerance || ib.Min[1] < ob.Min[1]-containsTolerance ||
		ib.Max[0] > ob.Max[0]+containsTolerance || ib.Max[1] > ob.Max[1]+containsTolerance {
		return false
	}

	tol2 := containsTolerance * containsTolerance
	for _, poly := range inner {
		if len(poly) == 0 {
			continue
		}
		for _, v := range poly[0] {
			if planar.MultiPolygonContains(outer, v) {
				continue
			}
			if boundaryDistSq(outer, v) <= tol2 {
				continue
			}
			return false
		}
	}
	return true
}

// boundaryDistSq returns the squared distance from p to the closest
// boundary segment of mp.
func boundaryDistSq(mp orb.MultiPolygon, p orb.Point) float64 {
	min := math.Inf(1)
	for _, poly := range mp {
		for _, ring := range poly {
			for i := 1; i < len(ring); i++ {
				if d := segDistSq(p[0], p[1], ring[i-1], ring[i]); d < min {
					min = d
				}
			}
		}
	}
	return min
}
