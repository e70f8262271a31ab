package pointindex_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/royalcat/geontology/pointindex"
)

func testPoints(n int, seed int64) []pointindex.Point[int] {
	rnd := rand.New(rand.NewSource(seed))
	points := make([]pointindex.Point[int], n)
	for i := range points {
		points[i] = pointindex.Point[int]{
			X:    rnd.Float64()*200 - 100,
			Y:    rnd.Float64()*200 - 100,
			Data: i,
		}
	}
	return points
}

func TestRangeMatchesBruteForce(t *testing.T) {
	points := testPoints(1000, 1)
	idx := pointindex.New(points, 8)

	minX, minY, maxX, maxY := -30.0, -20.0, 40.0, 50.0

	want := map[int]bool{}
	for _, p := range points {
		if p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY {
			want[p.Data] = true
		}
	}

	got := map[int]bool{}
	idx.Range(minX, minY, maxX, maxY, func(p pointindex.Point[int]) bool {
		got[p.Data] = true
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for d := range want {
		if !got[d] {
			t.Fatalf("missing point %d", d)
		}
	}
}

func TestWithinMatchesBruteForce(t *testing.T) {
	points := testPoints(1000, 2)
	idx := pointindex.New(points, 8)

	qx, qy, radius := 10.0, -5.0, 25.0

	want := map[int]bool{}
	for _, p := range points {
		dx, dy := p.X-qx, p.Y-qy
		if dx*dx+dy*dy <= radius*radius {
			want[p.Data] = true
		}
	}

	got := map[int]bool{}
	idx.Within(qx, qy, radius, func(p pointindex.Point[int]) bool {
		got[p.Data] = true
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for d := range want {
		if !got[d] {
			t.Fatalf("missing point %d", d)
		}
	}
}

func TestNearestMatchesBruteForce(t *testing.T) {
	points := testPoints(500, 3)
	idx := pointindex.New(points, 8)

	rnd := rand.New(rand.NewSource(4))
	for q := 0; q < 100; q++ {
		qx := rnd.Float64()*300 - 150
		qy := rnd.Float64()*300 - 150

		bestDist := math.Inf(1)
		for _, p := range points {
			dx, dy := p.X-qx, p.Y-qy
			if d := dx*dx + dy*dy; d < bestDist {
				bestDist = d
			}
		}

		got, ok := idx.Nearest(qx, qy)
		if !ok {
			t.Fatalf("expected a nearest point")
		}
		dx, dy := got.X-qx, got.Y-qy
		if d := dx*dx + dy*dy; d != bestDist {
			t.Fatalf("query (%f, %f): expected distance %f, got %f", qx, qy, bestDist, d)
		}
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := pointindex.New[int](nil, 0)

	if idx.Len() != 0 {
		t.Fatalf("expected empty index")
	}
	if _, ok := idx.Nearest(0, 0); ok {
		t.Fatalf("expected no nearest point in empty index")
	}
	idx.Range(-1, -1, 1, 1, func(pointindex.Point[int]) bool {
		t.Fatalf("unexpected point in empty index")
		return false
	})
}
