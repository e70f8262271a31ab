// Package pointindex implements a static 2D point index in the kd-bush
// layout: points are bucketed into a flat implicit kd-tree at build time,
// after which range, radius and nearest-neighbor queries run without
// allocation. The index is immutable once built.
package pointindex

import "math"

type Point[T any] struct {
	X, Y float64
	Data T
}

type Index[T any] struct {
	nodeSize int
	points   []Point[T]

	idxs   []int
	coords []float64
}

const DefaultNodeSize = 64

// New builds the index over points. The slice is retained, not copied.
func New[T any](points []Point[T], nodeSize int) *Index[T] {
	if nodeSize <= 0 {
		nodeSize = DefaultNodeSize
	}

	idx := &Index[T]{
		nodeSize: nodeSize,
		points:   points,
		idxs:     make([]int, len(points)),
		coords:   make([]float64, 2*len(points)),
	}
	for i, p := range points {
		idx.idxs[i] = i
		idx.coords[2*i] = p.X
		idx.coords[2*i+1] = p.Y
	}
	idx.build(0, len(points)-1, 0)
	return idx
}

func (idx *Index[T]) Len() int {
	return len(idx.points)
}

// Range calls fn for every point inside the given box, in tree order.
func (idx *Index[T]) Range(minX, minY, maxX, maxY float64, fn func(p Point[T]) bool) {
	if len(idx.idxs) == 0 {
		return
	}

	stack := []int{0, len(idx.idxs) - 1, 0}
	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= idx.nodeSize {
			for i := left; i <= right; i++ {
				x, y := idx.coords[2*i], idx.coords[2*i+1]
				if x >= minX && x <= maxX && y >= minY && y <= maxY {
					if !fn(idx.points[idx.idxs[i]]) {
						return
					}
				}
			}
			continue
		}

		m := (left + right) / 2
		x, y := idx.coords[2*m], idx.coords[2*m+1]
		if x >= minX && x <= maxX && y >= minY && y <= maxY {
			if !fn(idx.points[idx.idxs[m]]) {
				return
			}
		}

		if (axis == 0 && minX <= x) || (axis == 1 && minY <= y) {
			stack = append(stack, left, m-1, 1-axis)
		}
		if (axis == 0 && maxX >= x) || (axis == 1 && maxY >= y) {
			stack = append(stack, m+1, right, 1-axis)
		}
	}
}

// Within calls fn for every point within radius of (qx, qy).
func (idx *Index[T]) Within(qx, qy, radius float64, fn func(p Point[T]) bool) {
	if len(idx.idxs) == 0 {
		return
	}

	r2 := radius * radius
	stack := []int{0, len(idx.idxs) - 1, 0}
	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= idx.nodeSize {
			for i := left; i <= right; i++ {
				if sqDist(idx.coords[2*i], idx.coords[2*i+1], qx, qy) <= r2 {
					if !fn(idx.points[idx.idxs[i]]) {
						return
					}
				}
			}
			continue
		}

		m := (left + right) / 2
		x, y := idx.coords[2*m], idx.coords[2*m+1]
		if sqDist(x, y, qx, qy) <= r2 {
			if !fn(idx.points[idx.idxs[m]]) {
				return
			}
		}

		if (axis == 0 && qx-radius <= x) || (axis == 1 && qy-radius <= y) {
			stack = append(stack, left, m-1, 1-axis)
		}
		if (axis == 0 && qx+radius >= x) || (axis == 1 && qy+radius >= y) {
			stack = append(stack, m+1, right, 1-axis)
		}
	}
}

// Nearest returns the closest point to (qx, qy) by planar distance.
// Ties are resolved in favor of the point met first in tree order.
func (idx *Index[T]) Nearest(qx, qy float64) (Point[T], bool) {
	if len(idx.idxs) == 0 {
		return Point[T]{}, false
	}

	best := -1
	bestDist := math.Inf(1)

	var walk func(left, right, axis int)
	walk = func(left, right, axis int) {
		if right-left <= idx.nodeSize {
			for i := left; i <= right; i++ {
				if d := sqDist(idx.coords[2*i], idx.coords[2*i+1], qx, qy); d < bestDist {
					bestDist, best = d, idx.idxs[i]
				}
			}
			return
		}

		m := (left + right) / 2
		x, y := idx.coords[2*m], idx.coords[2*m+1]
		if d := sqDist(x, y, qx, qy); d < bestDist {
			bestDist, best = d, idx.idxs[m]
		}

		delta := qx - x
		if axis == 1 {
			delta = qy - y
		}

		// descend the near side first, then the far side only if the
		// splitting plane is closer than the current best.
		if delta <= 0 {
			walk(left, m-1, 1-axis)
			if delta*delta < bestDist {
				walk(m+1, right, 1-axis)
			}
		} else {
			walk(m+1, right, 1-axis)
			if delta*delta < bestDist {
				walk(left, m-1, 1-axis)
			}
		}
	}
	walk(0, len(idx.idxs)-1, 0)

	return idx.points[best], true
}

func (idx *Index[T]) build(left, right, axis int) {
	if right-left <= idx.nodeSize {
		return
	}

	m := (left + right) / 2
	idx.selectMedian(m, left, right, axis)
	idx.build(left, m-1, 1-axis)
	idx.build(m+1, right, 1-axis)
}

// selectMedian partially sorts [left, right] along axis so that the k-th
// element is in its sorted position (quickselect, median-of-three pivot).
func (idx *Index[T]) selectMedian(k, left, right, axis int) {
	for right > left {
		mid := (left + right) / 2
		if idx.coord(mid, axis) < idx.coord(left, axis) {
			idx.swap(mid, left)
		}
		if idx.coord(right, axis) < idx.coord(left, axis) {
			idx.swap(right, left)
		}
		if idx.coord(right, axis) < idx.coord(mid, axis) {
			idx.swap(right, mid)
		}

		pivot := idx.coord(mid, axis)
		i, j := left, right
		for i <= j {
			for idx.coord(i, axis) < pivot {
				i++
			}
			for idx.coord(j, axis) > pivot {
				j--
			}
			if i <= j {
				idx.swap(i, j)
				i++
				j--
			}
		}

		if k <= j {
			right = j
		} else if k >= i {
			left = i
		} else {
			return
		}
	}
}

func (idx *Index[T]) coord(i, axis int) float64 {
	return idx.coords[2*i+axis]
}

func (idx *Index[T]) swap(i, j int) {
	idx.idxs[i], idx.idxs[j] = idx.idxs[j], idx.idxs[i]
	idx.coords[2*i], idx.coords[2*j] = idx.coords[2*j], idx.coords[2*i]
	idx.coords[2*i+1], idx.coords[2*j+1] = idx.coords[2*j+1], idx.coords[2*i+1]
}

func sqDist(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}
