package ontology

import "github.com/paulmach/orb"

// clipToBoundary intersects a convex region (unclosed counter-clockwise
// hull) with a multipolygon. Every ring of the multipolygon is clipped
// against the hull separately; the hull is convex, so Sutherland-Hodgman
// yields the exact intersection per ring. Outer rings of the result stay
// counter-clockwise, holes clockwise.
func clipToBoundary(hull []orb.Point, boundary orb.MultiPolygon) orb.MultiPolygon {
	var out orb.MultiPolygon
	for _, poly := range boundary {
		if len(poly) == 0 {
			continue
		}
		outer := clipRingToConvex(poly[0], hull)
		if len(outer) < 3 {
			continue
		}
		clipped := orb.Polygon{closeRing(outer, orb.CCW)}
		for _, hole := range poly[1:] {
			if h := clipRingToConvex(hole, hull); len(h) >= 3 {
				clipped = append(clipped, closeRing(h, orb.CW))
			}
		}
		out = append(out, clipped)
	}
	return out
}

// clipRingToConvex clips ring against the convex counter-clockwise
// polygon clip, returning the surviving vertices unclosed. Result
// vertices lie on the ring or on clip edges, never outside either.
func clipRingToConvex(ring orb.Ring, clip []orb.Point) []orb.Point {
	pts := []orb.Point(ring)
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	for i := range clip {
		if len(pts) == 0 {
			return nil
		}
		a, b := clip[i], clip[(i+1)%len(clip)]

		kept := make([]orb.Point, 0, len(pts)+1)
		prev := pts[len(pts)-1]
		prevIn := cross(a, b, prev) >= 0
		for _, cur := range pts {
			curIn := cross(a, b, cur) >= 0
			if curIn != prevIn {
				kept = append(kept, lineCut(prev, cur, a, b))
			}
			if curIn {
				kept = append(kept, cur)
			}
			prev, prevIn = cur, curIn
		}
		pts = kept
	}
	return pts
}

// lineCut returns the intersection of segment pq with the infinite line
// through a and b.
func lineCut(p, q, a, b orb.Point) orb.Point {
	dp := cross(a, b, p)
	dq := cross(a, b, q)
	t := dp / (dp - dq)
	return orb.Point{p[0] + t*(q[0]-p[0]), p[1] + t*(q[1]-p[1])}
}

func closeRing(pts []orb.Point, o orb.Orientation) orb.Ring {
	ring := make(orb.Ring, 0, len(pts)+1)
	ring = append(ring, pts...)
	ring = append(ring, pts[0])
	if ring.Orientation() != o {
		ring.Reverse()
	}
	return ring
}
