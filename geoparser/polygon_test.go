package geoparser

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

func testParser() *GeoParser {
	return New(1, nil)
}

func TestBuildPolygonJoinsOuterWays(t *testing.T) {
	p := testParser()
	p.wayCache.Set(1, orb.LineString{{0, 0}, {10, 0}, {10, 10}})
	p.wayCache.Set(2, orb.LineString{{10, 10}, {0, 10}, {0, 0}})

	mp, err := p.buildPolygon(osm.Members{
		{Type: osm.TypeWay, Ref: 1, Role: "outer"},
		{Type: osm.TypeWay, Ref: 2, Role: "outer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mp) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(mp))
	}
	ring := mp[0][0]
	if !ring.Closed() {
		t.Fatalf("outer ring is not closed: %v", ring)
	}
	if ring.Orientation() != orb.CCW {
		t.Fatalf("outer ring should be counter-clockwise")
	}
}

func TestBuildPolygonReversesMisorientedWay(t *testing.T) {
	p := testParser()
	p.wayCache.Set(1, orb.LineString{{0, 0}, {10, 0}, {10, 10}})
	// same endpoints as the continuation, but running the wrong way
	p.wayCache.Set(2, orb.LineString{{0, 0}, {0, 10}, {10, 10}})

	mp, err := p.buildPolygon(osm.Members{
		{Type: osm.TypeWay, Ref: 1, Role: "outer"},
		{Type: osm.TypeWay, Ref: 2, Role: "outer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mp) != 1 || !mp[0][0].Closed() {
		t.Fatalf("expected a single closed ring, got %v", mp)
	}
}

func TestBuildPolygonOldStyleWithHole(t *testing.T) {
	p := testParser()
	p.wayCache.Set(1, orb.LineString{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}})
	p.wayCache.Set(2, orb.LineString{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}})

	mp, err := p.buildPolygon(osm.Members{
		{Type: osm.TypeWay, Ref: 1, Role: "outer"},
		{Type: osm.TypeWay, Ref: 2, Role: "inner"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mp) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(mp))
	}
	if len(mp[0]) != 2 {
		t.Fatalf("expected outer ring plus hole, got %d rings", len(mp[0]))
	}
	if mp[0][1].Orientation() != orb.CW {
		t.Fatalf("inner ring should be clockwise")
	}
}

func TestBuildPolygonDanglingWay(t *testing.T) {
	p := testParser()
	p.wayCache.Set(1, orb.LineString{{0, 0}, {10, 0}, {10, 10}})

	_, err := p.buildPolygon(osm.Members{
		{Type: osm.TypeWay, Ref: 1, Role: "outer"},
	})
	if err == nil {
		t.Fatalf("expected an error for an unclosed boundary")
	}
}

func TestBuildPolygonIgnoresUnknownMembers(t *testing.T) {
	p := testParser()
	p.wayCache.Set(1, orb.LineString{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}})

	mp, err := p.buildPolygon(osm.Members{
		{Type: osm.TypeNode, Ref: 5, Role: "admin_centre"},
		{Type: osm.TypeWay, Ref: 1, Role: "outer"},
		{Type: osm.TypeWay, Ref: 99, Role: "outer"}, // not in the extract
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mp) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(mp))
	}
}

func TestMakeLineStringResolvesNodes(t *testing.T) {
	p := testParser()
	p.nodeCache.Set(1, orb.Point{1, 2})
	p.nodeCache.Set(2, orb.Point{3, 4})

	ls := p.makeLineString(osm.WayNodes{
		{ID: 1},
		{ID: 2},
		{ID: 3}, // outside the extract, dropped
	})
	if len(ls) != 2 {
		t.Fatalf("expected 2 points, got %d", len(ls))
	}
	if !ls[0].Equal(orb.Point{1, 2}) || !ls[1].Equal(orb.Point{3, 4}) {
		t.Fatalf("unexpected linestring %v", ls)
	}
}

func TestParsePlace(t *testing.T) {
	node := &osm.Node{
		ID:  7,
		Lat: 48.8,
		Lon: 2.3,
		Tags: osm.Tags{
			{Key: "place", Value: "village"},
			{Key: "name", Value: "Trifouillis"},
			{Key: "name:ru", Value: "Трифуйи"},
		},
	}

	place, ok := parsePlace(node)
	if !ok {
		t.Fatalf("expected a place")
	}
	if place.Name != "Trifouillis" || place.Names["ru"] != "Трифуйи" {
		t.Fatalf("unexpected place %+v", place)
	}
	if !place.Point.Equal(orb.Point{2.3, 48.8}) {
		t.Fatalf("unexpected point %v", place.Point)
	}

	node.Tags = osm.Tags{{Key: "place", Value: "continent"}, {Key: "name", Value: "x"}}
	if _, ok := parsePlace(node); ok {
		t.Fatalf("continent should not be a candidate place")
	}

	node.Tags = osm.Tags{{Key: "place", Value: "city"}}
	if _, ok := parsePlace(node); ok {
		t.Fatalf("unnamed places should be skipped")
	}
}

func TestIsAdminRelation(t *testing.T) {
	rel := &osm.Relation{Tags: osm.Tags{
		{Key: "boundary", Value: "administrative"},
		{Key: "admin_level", Value: "8"},
	}}
	if !isAdminRelation(rel) {
		t.Fatalf("expected an administrative relation")
	}

	rel.Tags = osm.Tags{{Key: "boundary", Value: "administrative"}}
	if isAdminRelation(rel) {
		t.Fatalf("missing admin_level should disqualify the relation")
	}

	rel.Tags = osm.Tags{{Key: "boundary", Value: "maritime"}, {Key: "admin_level", Value: "2"}}
	if isAdminRelation(rel) {
		t.Fatalf("non-administrative boundary should be skipped")
	}
}

func TestIsoCode(t *testing.T) {
	tags := osm.Tags{{Key: "ISO3166-1", Value: "FRA"}, {Key: "ISO3166-1:alpha2", Value: "FR"}}
	if got := isoCode(tags); got != "FR" {
		t.Fatalf("alpha2 tag should win, got %q", got)
	}
	tags = osm.Tags{{Key: "ISO3166-1", Value: "FR"}}
	if got := isoCode(tags); got != "FR" {
		t.Fatalf("expected FR, got %q", got)
	}
}
