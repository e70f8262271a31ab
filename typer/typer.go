// Package typer maps raw administrative levels to semantic area types
// through per-country rule tables. Missing countries and missing levels
// are recoverable outcomes reported through typed errors, never failures.
package typer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/royalcat/geontology/geomodel"
)

//go:embed rules.json
var defaultRulesJSON []byte

// Rules is the injected, read-only rule-table set loaded once per run.
type Rules struct {
	countries map[string]map[int]geomodel.AreaType
}

// Default returns the embedded rule tables.
func Default() (*Rules, error) {
	return parse(defaultRulesJSON)
}

// LoadFile reads rule tables from a JSON file of the shape
// {"FR": {"2": "country", "4": "state", ...}, ...}.
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rules, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	return rules, nil
}

func parse(data []byte) (*Rules, error) {
	var raw map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	rules := &Rules{countries: make(map[string]map[int]geomodel.AreaType, len(raw))}
	for country, levels := range raw {
		table := make(map[int]geomodel.AreaType, len(levels))
		for levelS, typeS := range levels {
			level, err := strconv.Atoi(levelS)
			if err != nil {
				return nil, fmt.Errorf("country %s: bad admin level %q", country, levelS)
			}
			t, err := geomodel.ParseAreaType(typeS)
			if err != nil {
				return nil, fmt.Errorf("country %s level %d: %w", country, level, err)
			}
			table[level] = t
		}
		rules.countries[strings.ToUpper(country)] = table
	}
	return rules, nil
}

func (r *Rules) HasCountry(countryCode string) bool {
	_, ok := r.countries[strings.ToUpper(countryCode)]
	return ok
}

// Type resolves the semantic type of area under countryCode. The
// containment list and the full area set are part of the contract so
// rule tables may disambiguate by context; the plain level tables here
// do not consult them.
//
// Returns UnknownCountryError when the country has no table and
// UnknownLevelError when the table has no entry for the area's level.
func (r *Rules) Type(area *geomodel.Area, countryCode string, inclusions []geomodel.AreaID, areas []geomodel.Area) (geomodel.AreaType, error) {
	_ = inclusions
	_ = areas

	table, ok := r.countries[strings.ToUpper(countryCode)]
	if !ok {
		return geomodel.TypeNone, &UnknownCountryError{Country: countryCode}
	}
	t, ok := table[area.AdminLevel]
	if !ok {
		return geomodel.TypeNone, &UnknownLevelError{Country: countryCode, Level: area.AdminLevel}
	}
	return t, nil
}

// UnknownCountryError reports that no rule table exists for a country.
type UnknownCountryError struct {
	Country string
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("no rules for country %s", e.Country)
}

// UnknownLevelError reports that a country's table has no entry for an
// administrative level.
type UnknownLevelError struct {
	Country string
	Level   int
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("no rule for admin level %d in country %s", e.Level, e.Country)
}
