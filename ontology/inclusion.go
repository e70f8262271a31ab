package ontology

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/royalcat/geontology/geoindex"
	"github.com/royalcat/geontology/geomodel"
)

// findInclusions computes, for every area with geometry, the list of
// other areas whose geometry contains it, ordered by ascending enclosing
// size (tightest containment first). Candidates are pruned through the
// shape tree before the exact containment test. The tree is returned for
// reuse by later phases.
func findInclusions(areas []geomodel.Area, sizes []float64) ([][]geomodel.AreaID, *geoindex.ShapeTree[geomodel.AreaID]) {
	tree := geoindex.NewShapeTree[geomodel.AreaID]()
	for i := range areas {
		if areas[i].HasBoundary() {
			tree.Insert(areas[i].ID, areas[i].Boundary)
		}
	}

	inclusions := make([][]geomodel.AreaID, len(areas))
	for i := range areas {
		a := &areas[i]
		if !a.HasBoundary() {
			continue
		}

		var list []geomodel.AreaID
		tree.Search(a.Boundary.Bound(), func(id geomodel.AreaID, poly orb.MultiPolygon) bool {
			if id != a.ID && multiPolygonCovers(poly, a.Boundary) {
				list = append(list, id)
			}
			return true
		})

		sort.Slice(list, func(x, y int) bool {
			if sizes[list[x]] != sizes[list[y]] {
				return sizes[list[x]] < sizes[list[y]]
			}
			return list[x] < list[y]
		})
		inclusions[i] = list
	}

	return inclusions, tree
}

// areaSizes precomputes the absolute planar area of every boundary.
func areaSizes(areas []geomodel.Area) []float64 {
	sizes := make([]float64, len(areas))
	for i := range areas {
		if areas[i].HasBoundary() {
			sizes[i] = math.Abs(planar.Area(areas[i].Boundary))
		}
	}
	return sizes
}
