package ontology

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestConvexHull(t *testing.T) {
	pts := []orb.Point{
		{0, 0}, {4, 0}, {4, 4}, {0, 4},
		{2, 2}, {1, 3}, {3, 1}, // interior points
	}

	hull := convexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("expected 4 hull points, got %d: %v", len(hull), hull)
	}

	corners := map[orb.Point]bool{{0, 0}: true, {4, 0}: true, {4, 4}: true, {0, 4}: true}
	for _, p := range hull {
		if !corners[p] {
			t.Fatalf("unexpected hull point %v", p)
		}
	}

	// counter-clockwise and unclosed
	ring := orb.Ring(append(append([]orb.Point{}, hull...), hull[0]))
	if ring.Orientation() != orb.CCW {
		t.Fatalf("hull should be counter-clockwise")
	}
}

func TestConvexHullDegenerate(t *testing.T) {
	if h := convexHull(nil); h != nil {
		t.Fatalf("expected nil hull for no points, got %v", h)
	}
	if h := convexHull([]orb.Point{{0, 0}, {1, 1}}); h != nil {
		t.Fatalf("expected nil hull for two points, got %v", h)
	}
	// collinear points have no area
	if h := convexHull([]orb.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}); h != nil {
		t.Fatalf("expected nil hull for collinear points, got %v", h)
	}
}

func TestPolylabelSquare(t *testing.T) {
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

	p := Polylabel(ring, 1e-4)
	if math.Abs(p[0]-5) > 0.01 || math.Abs(p[1]-5) > 0.01 {
		t.Fatalf("expected the square center, got %v", p)
	}
}

func TestPolylabelLShape(t *testing.T) {
	// L-shaped ring, the centroid falls near the concave corner but the
	// pole of inaccessibility must stay inside
	ring := orb.Ring{
		{0, 0}, {10, 0}, {10, 4}, {4, 4}, {4, 10}, {0, 10}, {0, 0},
	}

	p := Polylabel(ring, 1e-4)
	inside := (p[0] > 0 && p[0] < 10 && p[1] > 0 && p[1] < 4) ||
		(p[0] > 0 && p[0] < 4 && p[1] > 0 && p[1] < 10)
	if !inside {
		t.Fatalf("pole %v is outside the L shape", p)
	}
}

func TestMultiPolygonCoversTolerance(t *testing.T) {
	outer := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
	}}}

	contained := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2},
	}}}
	if !multiPolygonCovers(outer, contained) {
		t.Fatalf("expected containment")
	}

	// shares the left edge exactly; vertices on the boundary count
	sharingEdge := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{0, 2}, {5, 2}, {5, 8}, {0, 8}, {0, 2},
	}}}
	if !multiPolygonCovers(outer, sharingEdge) {
		t.Fatalf("expected containment for a boundary-sharing polygon")
	}

	// sticks out slightly beyond the tolerance
	poking := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{-0.001, 2}, {5, 2}, {5, 8}, {-0.001, 8}, {-0.001, 2},
	}}}
	if multiPolygonCovers(outer, poking) {
		t.Fatalf("expected no containment beyond the tolerance")
	}

	// within tolerance just outside the edge
	within := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{-1e-7, 2}, {5, 2}, {5, 8}, {-1e-7, 8}, {-1e-7, 2},
	}}}
	if !multiPolygonCovers(outer, within) {
		t.Fatalf("expected containment within the tolerance")
	}

	disjoint := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{20, 20}, {30, 20}, {30, 30}, {20, 30}, {20, 20},
	}}}
	if multiPolygonCovers(outer, disjoint) {
		t.Fatalf("expected no containment for disjoint polygons")
	}
}
