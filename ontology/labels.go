package ontology

import (
	"strings"

	"github.com/royalcat/geontology/geomodel"
)

// computeLabels derives the hierarchical label of every area for every
// requested language by walking the ancestor chain. Each iteration
// mutates only the area at the current index against read-only access to
// the rest; labels never depend on other areas' labels, only on their
// names, so processing order is irrelevant.
func computeLabels(areas []geomodel.Area, langs []string) {
	for i := range areas {
		a := &areas[i]
		chain := ancestorChain(areas, a)

		a.Label = composeLabel(a, chain, "")
		if len(langs) > 0 {
			a.Labels = make(map[string]string, len(langs))
			for _, lang := range langs {
				a.Labels[lang] = composeLabel(a, chain, lang)
			}
		}
	}
}

func ancestorChain(areas []geomodel.Area, a *geomodel.Area) []*geomodel.Area {
	var chain []*geomodel.Area
	for id := a.Parent; id != geomodel.NoArea && len(chain) < len(areas); id = areas[id].Parent {
		chain = append(chain, &areas[id])
	}
	return chain
}

// composeLabel joins the area's own name with the disambiguating names
// of its ancestors, skipping empty names and consecutive duplicates
// (a city sharing its department's name appears once).
func composeLabel(a *geomodel.Area, chain []*geomodel.Area, lang string) string {
	var parts []string
	if n := a.NameIn(lang); n != "" {
		parts = append(parts, n)
	}
	for _, anc := range chain {
		n := anc.NameIn(lang)
		if n == "" || (len(parts) > 0 && parts[len(parts)-1] == n) {
			continue
		}
		parts = append(parts, n)
	}
	return strings.Join(parts, ", ")
}
