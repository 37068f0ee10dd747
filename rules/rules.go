// Package rules resolves turns of a standard Battlesnake game locally.
//
// The decision engines never use it; it drives the arena that benchmarks
// strategies against each other.
package rules

import (
	"math/rand"

	"github.com/brensch/floodsnek/game"
)

const MaxHealth = 100

// Elimination causes, named as the Battlesnake engine names them.
const (
	CauseWallCollision  = "wall-collision"
	CauseSelfCollision  = "snake-self-collision"
	CauseSnakeCollision = "snake-collision"
	CauseHeadToHead     = "head-collision"
	CauseStarvation     = "starvation"
	CauseNoMove         = "no-move"
)

// Elimination records why a snake left the board.
type Elimination struct {
	SnakeId string
	Cause   string
	By      string
}

// Outcome is the result of advancing one turn.
type Outcome struct {
	State      *game.GameState
	Eliminated []Elimination
	// Ate lists the snakes that ate this turn.
	Ate []string
}

// GetLegalMoves returns the moves for YouId that stay on the board and avoid
// every body segment, including tails.
func GetLegalMoves(state *game.GameState) []game.Direction {
	you := state.You()
	if you == nil || you.Health <= 0 || len(you.Body) == 0 {
		return []game.Direction{}
	}

	obstacles := game.Obstacles(state)
	moves := []game.Direction{}
	for _, d := range game.AllDirections {
		p := you.Head().Step(d)
		if game.InBounds(p, state.Width, state.Height) && !obstacles.Contains(p) {
			moves = append(moves, d)
		}
	}
	return moves
}

// NextStateSimultaneous advances the game with moves for all snakes, without
// spawning food.
func NextStateSimultaneous(state *game.GameState, moves map[string]game.Direction) *game.GameState {
	return Advance(state, moves, nil, FoodSettings{}).State
}

// NextStateSimultaneousWithFoodSettings advances the game and then applies
// food spawning. A nil rng uses deterministic pseudo-randomness.
func NextStateSimultaneousWithFoodSettings(state *game.GameState, moves map[string]game.Direction, rng *rand.Rand, settings FoodSettings) *game.GameState {
	return Advance(state, moves, rng, settings).State
}

// Advance applies one turn: move, reduce health, feed, eliminate, spawn food.
// A live snake with no entry in moves is eliminated.
func Advance(state *game.GameState, moves map[string]game.Direction, rng *rand.Rand, settings FoodSettings) Outcome {
	newState := state.Clone()
	newState.Turn++

	eliminated := make(map[string]Elimination)

	// 1. Move heads; the tail follows.
	for i := range newState.Snakes {
		s := &newState.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		move, ok := moves[s.Id]
		if !ok {
			eliminated[s.Id] = Elimination{SnakeId: s.Id, Cause: CauseNoMove}
			continue
		}

		newBody := make([]game.Point, 0, len(s.Body)+1)
		newBody = append(newBody, s.Body[0].Step(move))
		newBody = append(newBody, s.Body[:len(s.Body)-1]...)
		s.Body = newBody
		s.Health--
	}

	// 2. Feed. Every snake whose head lands on a food eats it; the food is
	// consumed once regardless of how many snakes share it.
	var ate []string
	eaten := make(map[game.Point]bool)
	for i := range newState.Snakes {
		s := &newState.Snakes[i]
		if _, gone := eliminated[s.Id]; gone || s.Health < 0 || len(s.Body) == 0 {
			continue
		}
		head := s.Body[0]
		if game.ContainsPoint(newState.Food, head) {
			eaten[head] = true
			s.Health = MaxHealth
			s.Body = append(s.Body, s.Body[len(s.Body)-1])
			ate = append(ate, s.Id)
		}
	}
	if len(eaten) > 0 {
		remaining := make([]game.Point, 0, len(newState.Food))
		for _, f := range newState.Food {
			if !eaten[f] {
				remaining = append(remaining, f)
			}
		}
		newState.Food = remaining
	}

	// 3. Starvation and walls.
	for _, s := range newState.Snakes {
		if _, gone := eliminated[s.Id]; gone || len(s.Body) == 0 {
			continue
		}
		if s.Health <= 0 {
			eliminated[s.Id] = Elimination{SnakeId: s.Id, Cause: CauseStarvation}
			continue
		}
		if !game.InBounds(s.Body[0], newState.Width, newState.Height) {
			eliminated[s.Id] = Elimination{SnakeId: s.Id, Cause: CauseWallCollision}
		}
	}

	// 4. Body and head-to-head collisions, judged against every snake that
	// survived step 3.
	alive := make([]game.Snake, 0, len(newState.Snakes))
	for _, s := range newState.Snakes {
		if _, gone := eliminated[s.Id]; !gone && len(s.Body) > 0 && s.Health > 0 {
			alive = append(alive, s)
		}
	}
	collisions := make(map[string]Elimination)
	for _, s := range alive {
		head := s.Body[0]
		for _, other := range alive {
			for j, p := range other.Body {
				if j == 0 || p != head {
					continue
				}
				if other.Id == s.Id {
					collisions[s.Id] = Elimination{SnakeId: s.Id, Cause: CauseSelfCollision, By: s.Id}
				} else {
					collisions[s.Id] = Elimination{SnakeId: s.Id, Cause: CauseSnakeCollision, By: other.Id}
				}
			}
		}
		if _, hit := collisions[s.Id]; hit {
			continue
		}
		for _, other := range alive {
			if other.Id == s.Id || other.Body[0] != head {
				continue
			}
			if len(s.Body) <= len(other.Body) {
				collisions[s.Id] = Elimination{SnakeId: s.Id, Cause: CauseHeadToHead, By: other.Id}
				break
			}
		}
	}
	for id, e := range collisions {
		eliminated[id] = e
	}

	finalSnakes := make([]game.Snake, 0, len(newState.Snakes))
	out := Outcome{Ate: ate}
	for _, s := range newState.Snakes {
		if e, gone := eliminated[s.Id]; gone {
			out.Eliminated = append(out.Eliminated, e)
			continue
		}
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		finalSnakes = append(finalSnakes, s)
	}
	newState.Snakes = finalSnakes

	applyFoodRules(newState, rng, settings, 0x5455524E) // "TURN"
	out.State = newState
	return out
}

// IsGameOver reports whether the game has ended. Solo games end when the
// only snake dies; others end when at most one snake is left.
func IsGameOver(state *game.GameState, solo bool) bool {
	living := 0
	for _, s := range state.Snakes {
		if s.Health > 0 {
			living++
		}
	}
	if solo {
		return living == 0
	}
	return living <= 1
}
