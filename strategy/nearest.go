package strategy

import (
	"github.com/brensch/floodsnek/game"
	"github.com/brensch/floodsnek/pathfind"
)

// NearestSpace shares SpaceGoal's safety filter but breaks ties differently:
// among the maximal-space moves it takes the one whose destination is
// closest to any food. It never consults the head's own shortest path.
type NearestSpace struct {
	Rand     *Rand
	Parallel bool
}

func (n *NearestSpace) Name() string { return "nearest" }

func (n *NearestSpace) Decide(state *game.GameState) game.Direction {
	return n.Evaluate(state).Move
}

func (n *NearestSpace) Evaluate(state *game.GameState) *Decision {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return &Decision{Move: Fallback, Reason: ReasonNoLegalMove}
	}

	obstacles := game.Obstacles(state)
	d := scoreSpace(state, you, obstacles, n.Parallel)
	if len(d.Candidates) == 0 {
		return d
	}

	best := pathfind.Unreachable
	var closest []game.Direction
	for _, dir := range d.Safe {
		next := you.Head().Step(dir)
		search := pathfind.Dijkstra(next, state.Width, state.Height, obstacles)
		dist := pathfind.Unreachable
		for _, f := range state.Food {
			if fd := search.DistanceTo(f); fd < dist {
				dist = fd
			}
		}
		switch {
		case dist < best:
			best = dist
			closest = []game.Direction{dir}
		case dist == best && dist != pathfind.Unreachable:
			closest = append(closest, dir)
		}
	}

	if len(closest) == 0 {
		d.Move = n.Rand.Pick(d.Safe)
		d.Reason = ReasonSpace
		return d
	}

	d.Move = n.Rand.Pick(closest)
	d.Goal, d.HasGoal = d.Move, true
	d.Reason = ReasonDistance
	return d
}
