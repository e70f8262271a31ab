package ontology

import (
	"slices"

	"github.com/royalcat/geontology/geomodel"
)

// buildHierarchy assigns every area exactly one parent: the tightest
// enclosing area from its containment list. Ties between equal-size
// candidates prefer the numerically higher (more local) admin level,
// then the lower index.
//
// Containment is a strict partial order except for numerically identical
// polygons, where two areas can mutually contain each other. For such
// pairs only the lower-index area may become the parent, so the relation
// stays a forest by construction.
func buildHierarchy(areas []geomodel.Area, inclusions [][]geomodel.AreaID, sizes []float64) {
	for i := range areas {
		a := &areas[i]

		best := geomodel.NoArea
		for _, id := range inclusions[i] {
			if id > a.ID && slices.Contains(inclusions[id], a.ID) {
				continue
			}
			if best == geomodel.NoArea {
				best = id
				continue
			}
			switch {
			case sizes[id] < sizes[best]:
				best = id
			case sizes[id] == sizes[best]:
				c, b := &areas[id], &areas[best]
				if c.AdminLevel > b.AdminLevel ||
					(c.AdminLevel == b.AdminLevel && id < best) {
					best = id
				}
			}
		}

		a.Parent = best
	}
}
