package strategy

import (
	"context"

	"github.com/brensch/floodsnek/floodfill"
	"github.com/brensch/floodsnek/game"
	"github.com/brensch/floodsnek/pathfind"
	"golang.org/x/sync/errgroup"
)

// Reason records which rule produced a Decision.
type Reason string

const (
	ReasonNoLegalMove Reason = "no-legal-move"
	ReasonGoal        Reason = "goal"
	ReasonSpace       Reason = "space"
	ReasonDistance    Reason = "distance"
)

// Decision is everything a space-based strategy worked out for one turn.
type Decision struct {
	Move   game.Direction
	Reason Reason

	// Candidates survived the self-collision and bounds filters.
	Candidates []game.Direction
	// Space is the flood-fill area behind each candidate.
	Space map[game.Direction]int
	// MaxSpace is the largest value in Space.
	MaxSpace int
	// Safe are the candidates scoring MaxSpace, in direction order.
	Safe []game.Direction

	Goal    game.Direction
	HasGoal bool
}

// IsSafe reports whether d is one of the maximal-space candidates.
func (d *Decision) IsSafe(dir game.Direction) bool {
	for _, s := range d.Safe {
		if s == dir {
			return true
		}
	}
	return false
}

// SpaceGoal never picks a move that leaves less room than the best move
// available. Among equally roomy moves it heads for the nearest food, or
// picks at random when the food route is not one of them.
type SpaceGoal struct {
	Rand     *Rand
	Parallel bool
}

func (s *SpaceGoal) Name() string { return "simple" }

func (s *SpaceGoal) Decide(state *game.GameState) game.Direction {
	return s.Evaluate(state).Move
}

// Evaluate runs the full decision procedure and keeps the workings.
func (s *SpaceGoal) Evaluate(state *game.GameState) *Decision {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return &Decision{Move: Fallback, Reason: ReasonNoLegalMove}
	}

	obstacles := game.Obstacles(state)
	d := scoreSpace(state, you, obstacles, s.Parallel)
	if len(d.Candidates) == 0 {
		return d
	}

	head := you.Head()
	search := pathfind.Dijkstra(head, state.Width, state.Height, obstacles.Without(head))
	d.Goal, d.HasGoal = search.NearestGoalDirection(state.Food)

	if d.HasGoal && d.IsSafe(d.Goal) {
		d.Move = d.Goal
		d.Reason = ReasonGoal
		return d
	}

	d.Move = s.Rand.Pick(d.Safe)
	d.Reason = ReasonSpace
	return d
}

// LegalMoves applies the self-collision and bounds filters, keeping
// direction order.
func LegalMoves(state *game.GameState, you *game.Snake) []game.Direction {
	head := you.Head()
	out := make([]game.Direction, 0, 4)
	for _, dir := range game.AllDirections {
		next := head.Step(dir)
		if game.ContainsPoint(you.Body, next) {
			continue
		}
		if !game.InBounds(next, state.Width, state.Height) {
			continue
		}
		out = append(out, dir)
	}
	return out
}

// scoreSpace filters the candidate moves and scores each by flood fill.
// Move is left as the fallback when nothing is legal.
func scoreSpace(state *game.GameState, you *game.Snake, obstacles game.PointSet, parallel bool) *Decision {
	d := &Decision{
		Move:       Fallback,
		Reason:     ReasonNoLegalMove,
		Candidates: LegalMoves(state, you),
		Space:      make(map[game.Direction]int, 4),
	}
	if len(d.Candidates) == 0 {
		return d
	}

	head := you.Head()
	scores := make([]int, len(d.Candidates))
	fill := func(i int) {
		scores[i] = floodfill.Size(head.Step(d.Candidates[i]), obstacles, state.Width, state.Height)
	}

	if parallel {
		g, _ := errgroup.WithContext(context.Background())
		for i := range d.Candidates {
			i := i
			g.Go(func() error {
				fill(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range d.Candidates {
			fill(i)
		}
	}

	d.MaxSpace = -1
	for i, dir := range d.Candidates {
		d.Space[dir] = scores[i]
		if scores[i] > d.MaxSpace {
			d.MaxSpace = scores[i]
		}
	}
	for _, dir := range d.Candidates {
		if d.Space[dir] == d.MaxSpace {
			d.Safe = append(d.Safe, dir)
		}
	}
	return d
}
