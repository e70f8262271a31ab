package geoparser

import (
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/royalcat/geontology/geomodel"
)

const nameKey = "name"

// place kinds dense enough to be worth a synthetic area later
var placeKinds = []string{
	"city", "town", "village", "hamlet",
	"suburb", "neighbourhood", "quarter",
}

func isAdminRelation(rel *osm.Relation) bool {
	return rel.Tags.Find("boundary") == "administrative" &&
		rel.Tags.Find("admin_level") != ""
}

func parsePlace(node *osm.Node) (geomodel.Place, bool) {
	kind := node.Tags.Find("place")
	if !slices.Contains(placeKinds, kind) {
		return geomodel.Place{}, false
	}
	name := node.Tags.Find(nameKey)
	if name == "" {
		return geomodel.Place{}, false
	}

	return geomodel.Place{
		OsmID: int64(node.ID),
		Name:  name,
		Names: collectNames(node.Tags),
		Point: orb.Point{node.Lon, node.Lat},
	}, true
}

// collectNames gathers every name:{lang} tag. The bare name tag is kept
// separately on the model.
func collectNames(tags osm.Tags) geomodel.Names {
	var names geomodel.Names
	for _, t := range tags {
		lang, ok := strings.CutPrefix(t.Key, nameKey+":")
		if !ok || lang == "" || t.Value == "" {
			continue
		}
		if names == nil {
			names = geomodel.Names{}
		}
		names[lang] = t.Value
	}
	return names
}

func isoCode(tags osm.Tags) string {
	if code := tags.Find("ISO3166-1:alpha2"); code != "" {
		return code
	}
	return tags.Find("ISO3166-1")
}
