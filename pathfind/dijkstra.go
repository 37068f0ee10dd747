// Package pathfind implements single-source shortest paths over the board.
//
// Every move costs one, so the result is a hop count. Obstacles are
// discovered lazily: a blocked cell can be queued but is never expanded.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/brensch/floodsnek/game"
)

// Unreachable is the distance reported for cells the search never reached.
const Unreachable uint32 = math.MaxUint32

type queueItem struct {
	cost     uint32
	position game.Point
}

// frontier is a min-heap on cost. A position can be queued more than once;
// only the entry matching its final distance is ever expanded.
type frontier []queueItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool { return f[i].cost < f[j].cost }
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any) { *f = append(*f, x.(queueItem)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// Result is a read-only snapshot of one search. It is only meaningful for
// the obstacle set it was computed against.
type Result struct {
	start        game.Point
	distances    map[game.Point]uint32
	predecessors map[game.Point]game.Point
}

// Dijkstra searches from start across the width x height board, never
// expanding a cell in blocked. If start itself is blocked nothing but start
// gets a distance.
func Dijkstra(start game.Point, width, height int32, blocked game.PointSet) *Result {
	r := &Result{
		start:        start,
		distances:    map[game.Point]uint32{start: 0},
		predecessors: map[game.Point]game.Point{},
	}

	unvisited := &frontier{{cost: 0, position: start}}

	for unvisited.Len() > 0 {
		current := heap.Pop(unvisited).(queueItem)

		if blocked.Contains(current.position) {
			continue
		}
		if current.cost > r.distances[current.position] {
			// Stale: a shorter route was found after this entry was queued.
			continue
		}

		alt := current.cost + 1
		for _, neighbour := range game.Neighbours(current.position, width, height) {
			known, ok := r.distances[neighbour]
			if ok && alt >= known {
				continue
			}
			r.distances[neighbour] = alt
			r.predecessors[neighbour] = current.position
			heap.Push(unvisited, queueItem{cost: alt, position: neighbour})
		}
	}

	// Blocked cells get a tentative distance when relaxed but can never be
	// entered, so drop them from the result.
	for p := range r.distances {
		if p != start && blocked.Contains(p) {
			delete(r.distances, p)
			delete(r.predecessors, p)
		}
	}

	return r
}

func (r *Result) Start() game.Point {
	return r.start
}

// DistanceTo returns the hop count to p, or Unreachable.
func (r *Result) DistanceTo(p game.Point) uint32 {
	if d, ok := r.distances[p]; ok {
		return d
	}
	return Unreachable
}

func (r *Result) Reachable(p game.Point) bool {
	return r.DistanceTo(p) != Unreachable
}

// Predecessor returns the cell before p on a shortest path from start.
func (r *Result) Predecessor(p game.Point) (game.Point, bool) {
	prev, ok := r.predecessors[p]
	return prev, ok
}

// ReconstructPath returns start..p inclusive. For a cell that was never
// reached the walk stops as soon as predecessors run out, so gate on
// Reachable first.
func (r *Result) ReconstructPath(p game.Point) []game.Point {
	path := []game.Point{p}
	current := p
	for current != r.start {
		prev, ok := r.predecessors[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// NearestGoalDirection returns the first move on a shortest path to the
// closest goal. Equal distances go to the earlier goal in the slice.
func (r *Result) NearestGoalDirection(goals []game.Point) (game.Direction, bool) {
	best := Unreachable
	var target game.Point
	for _, g := range goals {
		if d := r.DistanceTo(g); d < best {
			best = d
			target = g
		}
	}
	if best == Unreachable {
		return 0, false
	}

	path := r.ReconstructPath(target)
	if len(path) < 2 {
		return 0, false
	}
	return game.DirectionFromOffset(path[1].X-r.start.X, path[1].Y-r.start.Y)
}
