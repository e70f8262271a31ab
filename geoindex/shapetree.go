// Package geoindex provides a read-only spatial index over multipolygons:
// bounding-box candidate search plus exact point-containment queries.
package geoindex

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/qtree"
)

type ShapeTree[D any] struct {
	mu     sync.RWMutex
	shapes []shape[D]
	qt     qtree.QTree
}

type shape[D any] struct {
	Data    D
	Polygon orb.MultiPolygon
}

func NewShapeTree[D any]() *ShapeTree[D] {
	return &ShapeTree[D]{}
}

// Insert adds a multipolygon to the index. Empty or degenerate geometries
// (zero-size bound) are silently excluded.
func (t *ShapeTree[D]) Insert(data D, poly orb.MultiPolygon) {
	if len(poly) == 0 {
		return
	}
	bound := poly.Bound()
	if bound.IsZero() || bound.IsEmpty() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := uint64(len(t.shapes))
	t.shapes = append(t.shapes, shape[D]{Data: data, Polygon: poly})
	t.qt.Insert(bound.Min, bound.Max, id)
}

func (t *ShapeTree[D]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.shapes)
}

// Search calls fn for every indexed shape whose bounding box intersects b.
// Containment is not verified, callers do the exact tests they need.
func (t *ShapeTree[D]) Search(b orb.Bound, fn func(data D, poly orb.MultiPolygon) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	t.qt.Search(b.Min, b.Max, func(_, _ [2]float64, data interface{}) bool {
		s := t.shapes[data.(uint64)]
		return fn(s.Data, s.Polygon)
	})
}

// Covering calls fn for every indexed shape whose polygon contains point.
func (t *ShapeTree[D]) Covering(point orb.Point, fn func(data D, poly orb.MultiPolygon) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	t.qt.Search(point, point, func(_, _ [2]float64, data interface{}) bool {
		s := t.shapes[data.(uint64)]
		if planar.MultiPolygonContains(s.Polygon, point) {
			return fn(s.Data, s.Polygon)
		}
		return true
	})
}

// QueryPoint returns the payload of a shape containing point, if any.
func (t *ShapeTree[D]) QueryPoint(point orb.Point) (D, bool) {
	var out D
	found := false
	t.Covering(point, func(data D, _ orb.MultiPolygon) bool {
		out = data
		found = true
		return false
	})
	return out, found
}
