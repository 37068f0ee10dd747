package replay

import (
	"fmt"

	"github.com/brensch/floodsnek/game"
	"github.com/brensch/floodsnek/strategy"
)

// Turn compares one real move with what the strategy would have done.
type Turn struct {
	Turn   int
	Actual game.Direction
	Chosen game.Direction
	// Decision is set for strategies that explain their moves.
	Decision *strategy.Decision
}

func (t Turn) Agree() bool { return t.Actual == t.Chosen }

// ActualUnsafe reports whether the real move gave up room the strategy
// considered available. It is false when there is no decision to judge by
// or nothing was legal.
func (t Turn) ActualUnsafe() bool {
	if t.Decision == nil || len(t.Decision.Safe) == 0 {
		return false
	}
	return !t.Decision.IsSafe(t.Actual)
}

type Report struct {
	GameID   string
	SnakeID  string
	Strategy string
	Turns    []Turn
}

func (r Report) Agreements() int {
	n := 0
	for _, t := range r.Turns {
		if t.Agree() {
			n++
		}
	}
	return n
}

// UnsafeActual counts real moves outside the strategy's safe set.
func (r Report) UnsafeActual() int {
	n := 0
	for _, t := range r.Turns {
		if t.ActualUnsafe() {
			n++
		}
	}
	return n
}

// AgreementRate is the share of compared turns where the moves matched.
func (r Report) AgreementRate() float64 {
	if len(r.Turns) == 0 {
		return 0
	}
	return float64(r.Agreements()) / float64(len(r.Turns))
}

type evaluator interface {
	Evaluate(state *game.GameState) *strategy.Decision
}

// Analyze walks consecutive frames, derives the move the snake made from its
// head positions and asks s what it would have done on the earlier frame.
// The snake is given by id or name. Turns where it is dead or did not move
// exactly one cell are skipped.
func Analyze(g *Game, snake string, s strategy.Strategy) (Report, error) {
	rep := Report{GameID: g.ID, Strategy: s.Name()}
	found, ok := g.FindSnake(snake)
	if !ok {
		return rep, fmt.Errorf("snake %q not in game %s", snake, g.ID)
	}
	snakeID := found.ID
	rep.SnakeID = snakeID
	ev, explains := s.(evaluator)

	for i := 0; i+1 < len(g.Frames); i++ {
		from, ok := liveHead(g.Frames[i], snakeID)
		if !ok {
			continue
		}
		to, ok := head(g.Frames[i+1], snakeID)
		if !ok {
			continue
		}
		actual, ok := game.DirectionFromOffset(to.X-from.X, to.Y-from.Y)
		if !ok {
			continue
		}

		state := g.State(i, snakeID)
		t := Turn{Turn: g.Frames[i].Turn, Actual: actual}
		if explains {
			t.Decision = ev.Evaluate(state)
			t.Chosen = t.Decision.Move
		} else {
			t.Chosen = s.Decide(state)
		}
		rep.Turns = append(rep.Turns, t)
	}
	return rep, nil
}

func liveHead(f Frame, id string) (game.Point, bool) {
	for _, s := range f.Snakes {
		if s.ID == id && s.Death == nil && len(s.Body) > 0 {
			return game.Point{X: s.Body[0].X, Y: s.Body[0].Y}, true
		}
	}
	return game.Point{}, false
}

// head also accepts a snake that died on this frame, since its body still
// shows the move that killed it.
func head(f Frame, id string) (game.Point, bool) {
	for _, s := range f.Snakes {
		if s.ID == id && len(s.Body) > 0 {
			return game.Point{X: s.Body[0].X, Y: s.Body[0].Y}, true
		}
	}
	return game.Point{}, false
}
