package geomodel

import (
	"github.com/paulmach/orb"
)

// AreaID is the position of an area in the ontology's area slice.
// It is only stable within a single build; the final prune remaps it.
type AreaID int32

const NoArea AreaID = -1

// Names maps a language code ("fr", "ru", ...) to a localized name.
type Names map[string]string

// Area is a unit of the geographic ontology, either parsed from an
// administrative boundary relation or synthesized around a place node.
type Area struct {
	ID    AreaID `json:"id"`
	OsmID int64  `json:"osm_id"`

	Name  string `json:"name"`
	Names Names  `json:"names,omitempty"`

	// Label is the hierarchical human-readable label in the default
	// language, Labels the per-language variants.
	Label  string            `json:"label,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`

	// AdminLevel is the raw admin_level tag, 0 when the source had none.
	AdminLevel int      `json:"admin_level,omitempty"`
	Type       AreaType `json:"type"`

	CountryCode string `json:"country_code,omitempty"`
	// ISOCode is the ISO3166-1 alpha2 tag carried by country relations,
	// used as the country-identity anchor during typing.
	ISOCode string `json:"-"`

	Parent AreaID `json:"parent"`

	// Boundary is nil for synthetic point-derived areas that could not
	// be given a cell polygon.
	Boundary orb.MultiPolygon `json:"-"`
	Center   orb.Point        `json:"center"`
}

func (a *Area) HasBoundary() bool {
	return len(a.Boundary) > 0
}

// Typed reports whether the typing phase resolved a semantic type.
// Untyped areas never survive the final prune.
func (a *Area) Typed() bool {
	return a.Type != TypeNone
}

// NameIn returns the localized name for lang, falling back to the
// default name. An empty lang always selects the default name.
func (a *Area) NameIn(lang string) string {
	if lang != "" {
		if n, ok := a.Names[lang]; ok && n != "" {
			return n
		}
	}
	return a.Name
}

// Place is a named point place (village, neighbourhood, ...) that is not
// represented by an administrative relation. The orphan-place phase may
// turn it into a synthetic NonAdministrative area.
type Place struct {
	OsmID int64     `json:"osm_id"`
	Name  string    `json:"name"`
	Names Names     `json:"names,omitempty"`
	Point orb.Point `json:"point"`
}
