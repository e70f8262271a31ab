package geomodel

// Stats accumulates per-build observability counters. Counters are only
// written from the sequential merge phase and merged by addition; they do
// not affect correctness of the ontology.
type Stats struct {
	AreaCount      int `json:"area_count"`
	TypedAreaCount int `json:"typed_area_count"`

	AreasWithoutCountry int `json:"areas_without_country"`

	// UnknownCountryRules counts areas whose country has no rule table,
	// keyed by country code.
	UnknownCountryRules map[string]int `json:"areas_with_unknown_country_rules,omitempty"`

	// UnhandledAdminLevels counts areas whose admin level has no rule,
	// keyed by country code and raw level.
	UnhandledAdminLevels map[string]map[int]int `json:"unhandled_admin_levels,omitempty"`

	AreasByType map[string]int `json:"areas_by_type,omitempty"`
}

func NewStats() Stats {
	return Stats{
		UnknownCountryRules:  map[string]int{},
		UnhandledAdminLevels: map[string]map[int]int{},
		AreasByType:          map[string]int{},
	}
}

func (s *Stats) CountUnknownCountry(country string) {
	s.UnknownCountryRules[country]++
}

func (s *Stats) CountUnhandledLevel(country string, level int) {
	levels, ok := s.UnhandledAdminLevels[country]
	if !ok {
		levels = map[int]int{}
		s.UnhandledAdminLevels[country] = levels
	}
	levels[level]++
}

// Merge adds all counters of o into s.
func (s *Stats) Merge(o Stats) {
	s.AreaCount += o.AreaCount
	s.TypedAreaCount += o.TypedAreaCount
	s.AreasWithoutCountry += o.AreasWithoutCountry
	for country, n := range o.UnknownCountryRules {
		s.UnknownCountryRules[country] += n
	}
	for country, levels := range o.UnhandledAdminLevels {
		dst, ok := s.UnhandledAdminLevels[country]
		if !ok {
			dst = map[int]int{}
			s.UnhandledAdminLevels[country] = dst
		}
		for level, n := range levels {
			dst[level] += n
		}
	}
	for t, n := range o.AreasByType {
		s.AreasByType[t] += n
	}
}

// Compute fills the aggregate counts from the final area set.
func (s *Stats) Compute(areas []Area) {
	s.AreaCount = len(areas)
	s.TypedAreaCount = 0
	s.AreasByType = map[string]int{}
	for i := range areas {
		if areas[i].Typed() {
			s.TypedAreaCount++
		}
		s.AreasByType[areas[i].Type.String()]++
	}
}
