package ontology

import (
	"strings"

	"github.com/royalcat/geontology/geoindex"
	"github.com/royalcat/geontology/geomodel"
)

// countryAdminLevel is the admin_level of whole-country boundaries.
const countryAdminLevel = 2

type countryRef struct {
	ID   geomodel.AreaID
	Code string
}

// CountryFinder answers "which country contains this area" from the
// subset of areas that carry a country identity (ISO3166-1 code at
// country level).
type CountryFinder struct {
	tree *geoindex.ShapeTree[countryRef]
}

func newCountryFinder(areas []geomodel.Area) *CountryFinder {
	f := &CountryFinder{tree: geoindex.NewShapeTree[countryRef]()}
	for i := range areas {
		a := &areas[i]
		if isCountryAnchor(a) {
			f.tree.Insert(countryRef{ID: a.ID, Code: strings.ToUpper(a.ISOCode)}, a.Boundary)
		}
	}
	return f
}

func isCountryAnchor(a *geomodel.Area) bool {
	return a.ISOCode != "" && a.AdminLevel == countryAdminLevel && a.HasBoundary()
}

// Empty reports that no country anchor exists in the input. Without a
// global country code this is fatal for the build.
func (f *CountryFinder) Empty() bool {
	return f.tree.Len() == 0
}

// Find resolves the country code of area: its own code first, then a
// country in its containment list, then a containment query for its
// representative point. Pure read, idempotent.
func (f *CountryFinder) Find(area *geomodel.Area, inclusions []geomodel.AreaID, areas []geomodel.Area) (string, bool) {
	if area.ISOCode != "" {
		return strings.ToUpper(area.ISOCode), true
	}
	for _, id := range inclusions {
		if c := &areas[id]; isCountryAnchor(c) {
			return strings.ToUpper(c.ISOCode), true
		}
	}
	ref, ok := f.tree.QueryPoint(representativePoint(area))
	if !ok {
		return "", false
	}
	return ref.Code, true
}
