// Package game defines the board types shared by the decision engines,
// the local rules engine and the HTTP transport.
//
// Coordinates follow Battlesnake conventions: (0,0) is bottom-left, x grows
// to the right and y grows upwards.
package game

// Point is a board coordinate.
type Point struct {
	X int32
	Y int32
}

// Less orders points by (x, y).
func (p Point) Less(o Point) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

type Snake struct {
	Id     string
	Health int32
	Body   []Point
}

// Head returns Body[0]. Callers must not ask a snake with no body.
func (s *Snake) Head() Point {
	return s.Body[0]
}

func (s *Snake) Length() int {
	return len(s.Body)
}

// GameState is a single turn snapshot.
// YouId selects the ego snake the decision is made for.
type GameState struct {
	Width   int32
	Height  int32
	Snakes  []Snake
	Food    []Point
	Hazards []Point
	YouId   string
	Turn    int32
}

// You returns the ego snake, or nil if it is not on the board.
func (s *GameState) You() *Snake {
	for i := range s.Snakes {
		if s.Snakes[i].Id == s.YouId {
			return &s.Snakes[i]
		}
	}
	return nil
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		Width:  s.Width,
		Height: s.Height,
		YouId:  s.YouId,
		Turn:   s.Turn,
	}

	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}
	if len(s.Hazards) > 0 {
		out.Hazards = make([]Point, len(s.Hazards))
		copy(out.Hazards, s.Hazards)
	}

	if len(s.Snakes) > 0 {
		out.Snakes = make([]Snake, len(s.Snakes))
		for i := range s.Snakes {
			out.Snakes[i] = Snake{Id: s.Snakes[i].Id, Health: s.Snakes[i].Health}
			if len(s.Snakes[i].Body) > 0 {
				out.Snakes[i].Body = make([]Point, len(s.Snakes[i].Body))
				copy(out.Snakes[i].Body, s.Snakes[i].Body)
			}
		}
	}

	return out
}

// Obstacles returns the union of every snake's body for this turn.
func Obstacles(state *GameState) PointSet {
	n := 0
	for _, s := range state.Snakes {
		n += len(s.Body)
	}
	set := make(PointSet, n)
	for _, s := range state.Snakes {
		for _, p := range s.Body {
			set[p] = struct{}{}
		}
	}
	return set
}
