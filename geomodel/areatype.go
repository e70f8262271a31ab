package geomodel

import (
	"encoding/json"
	"fmt"
)

// AreaType is the semantic classification of an area, ordered from the
// most local to the widest.
type AreaType uint8

const (
	// TypeNone marks an area the typer could not resolve.
	TypeNone AreaType = iota
	TypeNonAdministrative
	TypeSuburb
	TypeCityDistrict
	TypeCity
	TypeStateDistrict
	TypeState
	TypeCountryRegion
	TypeCountry
)

var areaTypeNames = map[AreaType]string{
	TypeNonAdministrative: "non_administrative",
	TypeSuburb:            "suburb",
	TypeCityDistrict:      "city_district",
	TypeCity:              "city",
	TypeStateDistrict:     "state_district",
	TypeState:             "state",
	TypeCountryRegion:     "country_region",
	TypeCountry:           "country",
}

var areaTypeValues = func() map[string]AreaType {
	m := make(map[string]AreaType, len(areaTypeNames))
	for t, n := range areaTypeNames {
		m[n] = t
	}
	return m
}()

func (t AreaType) String() string {
	if n, ok := areaTypeNames[t]; ok {
		return n
	}
	return "none"
}

func ParseAreaType(s string) (AreaType, error) {
	if t, ok := areaTypeValues[s]; ok {
		return t, nil
	}
	return TypeNone, fmt.Errorf("unknown area type %q", s)
}

func (t AreaType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *AreaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAreaType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
