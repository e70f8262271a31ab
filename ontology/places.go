package ontology

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/fogleman/poissondisc"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/royalcat/geontology/geoindex"
	"github.com/royalcat/geontology/geomodel"
	"github.com/royalcat/geontology/pointindex"
)

// placeCellSamples controls the sampling density of the tessellation:
// the parent bound is sampled at roughly this many points per dimension.
const placeCellSamples = 48

// computeAdditionalPlaces extends the hierarchy with synthetic areas for
// named point places that no administrative relation represents. The
// covered space is partitioned by nearest-seed tessellation over the
// city-level areas; each place receives the cell of its nearest seed,
// kept inside the administrative area containing the place, and that
// area as parent. Places outside all administrative coverage are
// skipped. Returns the extended area slice.
func computeAdditionalPlaces(areas []geomodel.Area, places []geomodel.Place, tree *geoindex.ShapeTree[geomodel.AreaID], sizes []float64, log *slog.Logger) []geomodel.Area {
	var seedPts []pointindex.Point[geomodel.AreaID]
	for i := range areas {
		a := &areas[i]
		if isTessellationSeed(a) {
			p := representativePoint(a)
			seedPts = append(seedPts, pointindex.Point[geomodel.AreaID]{X: p[0], Y: p[1], Data: a.ID})
		}
	}
	if len(seedPts) == 0 {
		log.Info("no tessellation seeds found, skipping additional places")
		return areas
	}

	pc := &placeComputer{
		areas: areas,
		sizes: sizes,
		tree:  tree,
		seeds: pointindex.New(seedPts, 16),
		cells: map[cellKey]orb.MultiPolygon{},
	}

	added := 0
	for i := range places {
		area, ok := pc.placeArea(&places[i])
		if !ok {
			continue
		}
		area.ID = geomodel.AreaID(len(areas))
		areas = append(areas, area)
		added++
	}

	log.Info("additional places computed", "places", len(places), "added", added, "seeds", len(seedPts))
	return areas
}

func isTessellationSeed(a *geomodel.Area) bool {
	return a.HasBoundary() && a.Type == geomodel.TypeCity
}

type cellKey struct {
	seed, parent geomodel.AreaID
}

type placeComputer struct {
	areas []geomodel.Area
	sizes []float64
	tree  *geoindex.ShapeTree[geomodel.AreaID]
	seeds *pointindex.Index[geomodel.AreaID]
	cells map[cellKey]orb.MultiPolygon
}

func (pc *placeComputer) placeArea(place *geomodel.Place) (geomodel.Area, bool) {
	parent := pc.tightestContaining(place.Point)
	if parent == geomodel.NoArea {
		return geomodel.Area{}, false
	}
	seed, ok := pc.seeds.Nearest(place.Point[0], place.Point[1])
	if !ok {
		return geomodel.Area{}, false
	}

	pa := &pc.areas[parent]
	return geomodel.Area{
		OsmID:       place.OsmID,
		Name:        place.Name,
		Names:       place.Names,
		Type:        geomodel.TypeNonAdministrative,
		CountryCode: pa.CountryCode,
		Parent:      parent,
		Boundary:    pc.cell(seed.Data, parent),
		Center:      place.Point,
	}, true
}

// tightestContaining returns the smallest typed administrative area
// containing p, or NoArea.
func (pc *placeComputer) tightestContaining(p orb.Point) geomodel.AreaID {
	best := geomodel.NoArea
	pc.tree.Covering(p, func(id geomodel.AreaID, _ orb.MultiPolygon) bool {
		if !pc.areas[id].Typed() {
			return true
		}
		if best == geomodel.NoArea || pc.sizes[id] < pc.sizes[best] {
			best = id
		}
		return true
	})
	return best
}

// cell approximates the Voronoi cell of seed inside parent: the parent
// bound is poisson-disc sampled, samples inside the parent boundary are
// assigned to their nearest seed, and the seed's share is hulled and
// then clipped against the parent geometry. Voronoi cells are convex,
// so the hull stays inside the cell and sibling cells never overlap;
// the clip keeps the boundary inside concave parents. Sampling is
// seeded per (seed, parent), so identical inputs produce identical
// cells. Cells are cached per (seed, parent).
func (pc *placeComputer) cell(seed, parent geomodel.AreaID) orb.MultiPolygon {
	key := cellKey{seed: seed, parent: parent}
	if cell, ok := pc.cells[key]; ok {
		return cell
	}

	boundary := pc.areas[parent].Boundary
	bound := boundary.Bound()
	step := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]) / placeCellSamples

	var cellPts []orb.Point
	if step > 0 {
		rnd := rand.New(rand.NewSource(int64(parent)<<32 ^ int64(seed)))
		samples := poissondisc.Sample(bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1], step, 10, rnd)
		for _, s := range samples {
			p := orb.Point{s.X, s.Y}
			if !planar.MultiPolygonContains(boundary, p) {
				continue
			}
			if n, ok := pc.seeds.Nearest(p[0], p[1]); !ok || n.Data != seed {
				continue
			}
			cellPts = append(cellPts, p)
		}
	}

	var cell orb.MultiPolygon
	if hull := convexHull(cellPts); len(hull) >= 3 {
		cell = clipToBoundary(hull, boundary)
	}
	pc.cells[key] = cell
	return cell
}
