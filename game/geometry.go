package game

import "sort"

// Step moves p one cell in direction d. No bounds check is applied.
func (p Point) Step(d Direction) Point {
	dx, dy := d.Offset()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// InBounds reports whether p lies in [0,width) x [0,height).
func InBounds(p Point, width, height int32) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height
}

// Neighbours returns the in-bounds cells adjacent to p, in direction order.
func Neighbours(p Point, width, height int32) []Point {
	out := make([]Point, 0, 4)
	for _, d := range AllDirections {
		n := p.Step(d)
		if InBounds(n, width, height) {
			out = append(out, n)
		}
	}
	return out
}

// PointSet is a set of board cells.
type PointSet map[Point]struct{}

func NewPointSet(points ...Point) PointSet {
	set := make(PointSet, len(points))
	for _, p := range points {
		set[p] = struct{}{}
	}
	return set
}

func (s PointSet) Contains(p Point) bool {
	_, ok := s[p]
	return ok
}

// Without returns a copy of s minus p. s itself is not modified.
func (s PointSet) Without(p Point) PointSet {
	out := make(PointSet, len(s))
	for q := range s {
		if q != p {
			out[q] = struct{}{}
		}
	}
	return out
}

// Points returns the members sorted by (x, y).
func (s PointSet) Points() []Point {
	out := make([]Point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	SortPoints(out)
	return out
}

// SortPoints sorts in place by (x, y).
func SortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
}

// ContainsPoint reports whether p appears in points.
func ContainsPoint(points []Point, p Point) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}
