// Package locator answers point-in-area queries over a built ontology.
package locator

import (
	"log/slog"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/royalcat/geontology/geoindex"
	"github.com/royalcat/geontology/geomodel"
	"github.com/royalcat/geontology/ontosave"
)

type Locator struct {
	areas []geomodel.Area
	sizes []float64
	tree  *geoindex.ShapeTree[geomodel.AreaID]
}

func New(ont ontosave.Ontology) *Locator {
	l := &Locator{
		areas: ont.Areas,
		sizes: make([]float64, len(ont.Areas)),
		tree:  geoindex.NewShapeTree[geomodel.AreaID](),
	}
	for i, a := range ont.Areas {
		l.sizes[i] = math.Abs(planar.Area(a.Boundary))
		l.tree.Insert(a.ID, a.Boundary)
	}
	return l
}

func LoadFromFile(path string, log *slog.Logger) (*Locator, error) {
	ont, err := ontosave.LoadFromFile(path, log)
	if err != nil {
		return nil, err
	}
	return New(ont), nil
}

func (l *Locator) Len() int {
	return len(l.areas)
}

func (l *Locator) Area(id geomodel.AreaID) (geomodel.Area, bool) {
	if id < 0 || int(id) >= len(l.areas) {
		return geomodel.Area{}, false
	}
	return l.areas[id], true
}

// Find returns the tightest area containing the point.
func (l *Locator) Find(lat, lon float64) (geomodel.Area, bool) {
	point := orb.Point{lon, lat}

	best := geomodel.NoArea
	l.tree.Covering(point, func(id geomodel.AreaID, _ orb.MultiPolygon) bool {
		if best == geomodel.NoArea || l.sizes[id] < l.sizes[best] {
			best = id
		}
		return true
	})

	if best == geomodel.NoArea {
		return geomodel.Area{}, false
	}
	return l.areas[best], true
}

// Chain returns the area followed by its ancestors up to the root.
func (l *Locator) Chain(id geomodel.AreaID) []geomodel.Area {
	var chain []geomodel.Area
	for id != geomodel.NoArea && int(id) < len(l.areas) {
		chain = append(chain, l.areas[id])
		id = l.areas[id].Parent
		if len(chain) > len(l.areas) {
			break
		}
	}
	return chain
}
