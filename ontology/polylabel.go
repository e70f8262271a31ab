package ontology

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/royalcat/geontology/geomodel"
)

// Polylabel returns the pole of inaccessibility of a ring: the interior
// point farthest from the boundary, found within the given precision by
// iterative grid refinement.
func Polylabel(ring orb.Ring, precision float64) orb.Point {
	b := ring.Bound()
	width := b.Max[0] - b.Min[0]
	height := b.Max[1] - b.Min[1]
	cellSize := math.Min(width, height)
	if cellSize == 0 {
		return b.Min
	}
	h := cellSize / 2

	q := &plQueue{}
	for x := b.Min[0]; x < b.Max[0]; x += cellSize {
		for y := b.Min[1]; y < b.Max[1]; y += cellSize {
			heap.Push(q, newPlCell(x+h, y+h, h, ring))
		}
	}

	best := centroidCell(ring)
	if c := newPlCell(b.Min[0]+width/2, b.Min[1]+height/2, 0, ring); c.d > best.d {
		best = c
	}

	for q.Len() > 0 {
		cell := heap.Pop(q).(plCell)
		if cell.d > best.d {
			best = cell
		}
		// no chance of a better solution inside this cell
		if cell.max-best.d <= precision {
			continue
		}

		h := cell.h / 2
		heap.Push(q, newPlCell(cell.x-h, cell.y-h, h, ring))
		heap.Push(q, newPlCell(cell.x+h, cell.y-h, h, ring))
		heap.Push(q, newPlCell(cell.x-h, cell.y+h, h, ring))
		heap.Push(q, newPlCell(cell.x+h, cell.y+h, h, ring))
	}

	return orb.Point{best.x, best.y}
}

// representativePoint returns a point interior to the area's geometry:
// the pole of inaccessibility of its largest polygon, or the precomputed
// center for areas without a boundary.
func representativePoint(a *geomodel.Area) orb.Point {
	if !a.HasBoundary() {
		return a.Center
	}

	var largest orb.Polygon
	largestSize := -1.0
	for _, poly := range a.Boundary {
		if len(poly) == 0 || len(poly[0]) == 0 {
			continue
		}
		if s := math.Abs(planar.Area(poly)); s > largestSize {
			largest, largestSize = poly, s
		}
	}
	if len(largest) == 0 {
		return a.Center
	}
	return Polylabel(largest[0], 1e-5)
}

type plCell struct {
	x, y float64 // cell center
	h    float64 // half size
	d    float64 // signed distance from center to the ring
	max  float64 // upper bound of d within the cell
}

func newPlCell(x, y, h float64, ring orb.Ring) plCell {
	d := pointToRingDist(x, y, ring)
	return plCell{x: x, y: y, h: h, d: d, max: d + h*math.Sqrt2}
}

// pointToRingDist returns the distance from (x, y) to the ring boundary,
// negative when the point is outside.
func pointToRingDist(x, y float64, ring orb.Ring) float64 {
	inside := false
	minDistSq := math.MaxFloat64

	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if ((a[1] > y) != (b[1] > y)) &&
			(x < (b[0]-a[0])*(y-a[1])/(b[1]-a[1])+a[0]) {
			inside = !inside
		}
		minDistSq = math.Min(minDistSq, segDistSq(x, y, a, b))
	}

	if inside {
		return math.Sqrt(minDistSq)
	}
	return -math.Sqrt(minDistSq)
}

func centroidCell(ring orb.Ring) plCell {
	area, x, y := 0.0, 0.0, 0.0
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		f := a[0]*b[1] - b[0]*a[1]
		x += (a[0] + b[0]) * f
		y += (a[1] + b[1]) * f
		area += f * 3
	}
	if area == 0 {
		return newPlCell(ring[0][0], ring[0][1], 0, ring)
	}
	return newPlCell(x/area, y/area, 0, ring)
}

// segDistSq returns the squared distance from (px, py) to segment ab.
func segDistSq(px, py float64, a, b orb.Point) float64 {
	x, y := a[0], a[1]
	dx, dy := b[0]-x, b[1]-y

	if dx != 0 || dy != 0 {
		t := ((px-x)*dx + (py-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = b[0], b[1]
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx, dy = px-x, py-y
	return dx*dx + dy*dy
}

type plQueue []plCell

func (q plQueue) Len() int            { return len(q) }
func (q plQueue) Less(i, j int) bool  { return q[i].max > q[j].max }
func (q plQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *plQueue) Push(x interface{}) { *q = append(*q, x.(plCell)) }
func (q *plQueue) Pop() interface{} {
	old := *q
	n := len(old)
	cell := old[n-1]
	*q = old[:n-1]
	return cell
}
