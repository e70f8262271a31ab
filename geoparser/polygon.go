package geoparser

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

var (
	errInvalidOuterRing = errors.New("not a valid outer ring")
	errNoValidOuterWays = errors.New("no valid outer ways")
)

func (p *GeoParser) makeLineString(nodes osm.WayNodes) orb.LineString {
	ls := make(orb.LineString, 0, len(nodes))
	for _, node := range nodes {
		if node.Lat != 0 || node.Lon != 0 {
			ls = append(ls, orb.Point{node.Lon, node.Lat})
			continue
		}
		point, ok := p.nodeCache.Get(node.ID)
		if !ok {
			// way references a node outside the extract
			continue
		}
		ls = append(ls, point)
	}
	return ls
}

// buildPolygon assembles the relation's way members into a multipolygon,
// joining way segments into closed rings and mapping inner rings to the
// outer ring that contains them.
func (p *GeoParser) buildPolygon(members osm.Members) (orb.MultiPolygon, error) {
	var outer, inner []segment

	for _, m := range members {
		if m.Type != osm.TypeWay {
			continue
		}
		if m.Role != "inner" && m.Role != "outer" {
			continue
		}

		line, ok := p.wayCache.Get(osm.WayID(m.Ref))
		if !ok || len(line) == 0 {
			continue
		}

		s := segment{
			Orientation: m.Orientation,
			Line:        line.Clone(),
		}
		if m.Role == "outer" {
			outer = append(outer, s)
		} else {
			inner = append(inner, s)
		}
	}

	if len(outer) == 1 {
		// Old style multipolygon: a single outer way with the relation
		// only adding holes.
		outerRing := multiSegment(outer).Ring(orb.CCW)
		if len(outerRing) < 4 || !outerRing.Closed() {
			return nil, errInvalidOuterRing
		}

		innerSections := join(inner)
		polygon := make(orb.Polygon, 0, len(innerSections)+1)
		polygon = append(polygon, outerRing)
		for _, is := range innerSections {
			polygon = append(polygon, is.Ring(orb.CW))
		}

		return orb.MultiPolygon{polygon}, nil
	}

	// multiple outers, each inner belongs to the outer that contains it
	outerSections := join(outer)

	mp := make(orb.MultiPolygon, 0, len(outerSections))
	for _, os := range outerSections {
		ring := os.Ring(orb.CCW)
		if len(ring) < 4 || !ring.Closed() {
			continue
		}
		mp = append(mp, orb.Polygon{ring})
	}
	if len(mp) == 0 {
		return nil, errNoValidOuterWays
	}

	for _, is := range join(inner) {
		mp = addToMultiPolygon(mp, is.Ring(orb.CW))
	}

	return mp, nil
}

func addToMultiPolygon(mp orb.MultiPolygon, ring orb.Ring) orb.MultiPolygon {
	for i := range mp {
		if ringContains(mp[i][0], ring) {
			mp[i] = append(mp[i], ring)
			return mp
		}
	}

	// no outer claims this hole; park it on a polygon with an empty
	// outer so the geometry is at least preserved
	for i := range mp {
		if len(mp[i][0]) == 0 {
			mp[i] = append(mp[i], ring)
			return mp
		}
	}
	return append(mp, orb.Polygon{nil, ring})
}

func ringContains(outer orb.Ring, r orb.Ring) bool {
	for _, p := range r {
		inside := false

		x, y := p[0], p[1]
		i, j := 0, len(outer)-1
		for i < len(outer) {
			xi, yi := outer[i][0], outer[i][1]
			xj, yj := outer[j][0], outer[j][1]

			if ((yi > y) != (yj > y)) &&
				(x < (xj-xi)*(y-yi)/(yj-yi)+xi) {
				inside = !inside
			}

			j = i
			i++
		}

		if inside {
			return true
		}
	}

	return false
}

// join glues loose way segments into continuous sections, reversing
// segments as needed to match endpoints.
func join(segments []segment) []multiSegment {
	lists := []multiSegment{}
	segments = compact(segments)

	for len(segments) != 0 {
		current := multiSegment{segments[len(segments)-1]}
		segments = segments[:len(segments)-1]

		for len(segments) != 0 && !current.First().Equal(current.Last()) {
			first := current.First()
			last := current.Last()

			foundAt := -1
			for i, s := range segments {
				switch {
				case last.Equal(s.First()):
					s.Line = s.Line[1:]
					current = append(current, s)
					foundAt = i
				case last.Equal(s.Last()):
					s.Reverse()
					s.Line = s.Line[1:]
					current = append(current, s)
					foundAt = i
				case first.Equal(s.Last()):
					s.Line = s.Line[:len(s.Line)-1]
					current = append(multiSegment{s}, current...)
					foundAt = i
				case first.Equal(s.First()):
					s.Reverse()
					s.Line = s.Line[:len(s.Line)-1]
					current = append(multiSegment{s}, current...)
					foundAt = i
				}
				if foundAt != -1 {
					break
				}
			}

			if foundAt == -1 {
				// dangling way, the ring stays unclosed
				break
			}
			segments = append(segments[:foundAt], segments[foundAt+1:]...)
		}

		lists = append(lists, current)
	}

	return lists
}

func compact(ms []segment) []segment {
	at := 0
	for _, s := range ms {
		if len(s.Line) <= 1 {
			continue
		}
		ms[at] = s
		at++
	}
	return ms[:at]
}

// multiSegment is an ordered set of segments forming a continuous
// section of a ring.
type multiSegment []segment

func (ms multiSegment) First() orb.Point {
	return ms[0].Line[0]
}

func (ms multiSegment) Last() orb.Point {
	line := ms[len(ms)-1].Line
	return line[len(line)-1]
}

// Ring converts the multisegment to a ring of the given orientation,
// honoring the member orientation when the source provided one.
func (ms multiSegment) Ring(o orb.Orientation) orb.Ring {
	length := 0
	for _, s := range ms {
		length += len(s.Line)
	}

	ring := make(orb.Ring, 0, length)

	haveOrient := false
	reversed := false
	for _, s := range ms {
		if s.Orientation != 0 {
			haveOrient = true
			if (s.Orientation == o) == s.Reversed {
				reversed = true
			}
		}
		ring = append(ring, s.Line...)
	}

	if (haveOrient && reversed) || (!haveOrient && len(ring) >= 3 && ring.Orientation() != o) {
		ring.Reverse()
	}

	return ring
}

type segment struct {
	Orientation orb.Orientation
	Reversed    bool
	Line        orb.LineString
}

func (s *segment) Reverse() {
	s.Reversed = !s.Reversed
	s.Line.Reverse()
}

func (s segment) First() orb.Point {
	return s.Line[0]
}

func (s segment) Last() orb.Point {
	return s.Line[len(s.Line)-1]
}
