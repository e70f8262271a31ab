package locator_test

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/royalcat/geontology/geomodel"
	"github.com/royalcat/geontology/locator"
	"github.com/royalcat/geontology/ontosave"
)

func square(minX, minY, maxX, maxY float64) orb.MultiPolygon {
	return orb.MultiPolygon{orb.Polygon{orb.Ring{
		orb.Point{minX, minY},
		orb.Point{maxX, minY},
		orb.Point{maxX, maxY},
		orb.Point{minX, maxY},
		orb.Point{minX, minY},
	}}}
}

func testLocator() *locator.Locator {
	return locator.New(ontosave.Ontology{
		Areas: []geomodel.Area{
			{ID: 0, Name: "France", Type: geomodel.TypeCountry, Parent: geomodel.NoArea, Boundary: square(0, 0, 10, 10)},
			{ID: 1, Name: "Occitanie", Type: geomodel.TypeState, Parent: 0, Boundary: square(1, 1, 9, 9)},
			{ID: 2, Name: "Toulouse", Type: geomodel.TypeCity, Parent: 1, Boundary: square(2, 2, 8, 8)},
		},
	})
}

func TestFindTightest(t *testing.T) {
	loc := testLocator()

	a, ok := loc.Find(5, 5)
	if !ok {
		t.Fatalf("expected an area")
	}
	if a.Name != "Toulouse" {
		t.Fatalf("expected the tightest area, got %s", a.Name)
	}

	a, ok = loc.Find(1.5, 0.5)
	if !ok {
		t.Fatalf("expected an area")
	}
	if a.Name != "France" {
		t.Fatalf("expected France, got %s", a.Name)
	}

	if _, ok := loc.Find(50, 50); ok {
		t.Fatalf("expected no area outside coverage")
	}
}

func TestChain(t *testing.T) {
	loc := testLocator()

	chain := loc.Chain(2)
	if len(chain) != 3 {
		t.Fatalf("expected 3 areas in the chain, got %d", len(chain))
	}
	if chain[0].Name != "Toulouse" || chain[1].Name != "Occitanie" || chain[2].Name != "France" {
		t.Fatalf("unexpected chain order: %v, %v, %v", chain[0].Name, chain[1].Name, chain[2].Name)
	}
}

func TestArea(t *testing.T) {
	loc := testLocator()

	if _, ok := loc.Area(geomodel.NoArea); ok {
		t.Fatalf("NoArea must not resolve")
	}
	if _, ok := loc.Area(99); ok {
		t.Fatalf("out-of-range id must not resolve")
	}
	a, ok := loc.Area(1)
	if !ok || a.Name != "Occitanie" {
		t.Fatalf("unexpected area: %+v", a)
	}
}
