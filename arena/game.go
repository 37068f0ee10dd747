// Package arena plays local games between strategies so they can be
// benchmarked without the public engine.
package arena

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/floodsnek/game"
	"github.com/brensch/floodsnek/rules"
	"github.com/brensch/floodsnek/strategy"
)

// DefaultMaxTurns stops games that would otherwise never end, e.g. a solo
// snake circling on a board with no food rules.
const DefaultMaxTurns = 10000

var ErrNoPlayers = errors.New("no players")

type Player struct {
	Id       string
	Strategy strategy.Strategy
}

type GameConfig struct {
	// GameId is generated when empty.
	GameId   string
	Width    int32
	Height   int32
	MaxTurns int
	Food     rules.FoodSettings
	// Seed drives spawn order and food. 0 picks one from the clock.
	Seed int64
}

type PlayerResult struct {
	Id       string
	Strategy string
	// Survived is the number of turns the snake lived through.
	Survived  int
	Length    int
	Cause     string
	Decisions int
	// DecisionTime is the total time spent in Decide.
	DecisionTime time.Duration
}

// AvgTurnTime is the mean time per decision.
func (p PlayerResult) AvgTurnTime() time.Duration {
	if p.Decisions == 0 {
		return 0
	}
	return p.DecisionTime / time.Duration(p.Decisions)
}

type GameResult struct {
	GameId string
	// Strategy and GameNumber identify the benchmark case; they are filled
	// in by Run.
	Strategy   string
	GameNumber int
	Width      int32
	Height     int32
	Turns      int
	// Winner is empty for solo games and draws.
	Winner    string
	TimedOut  bool
	Players   []PlayerResult
	StartedAt time.Time
	Elapsed   time.Duration
}

// PlayGame plays one game to completion or MaxTurns. A single player makes
// it a solo game that lasts until that snake dies. The context is checked
// between turns; on cancellation the partial result is returned with the
// context's error.
func PlayGame(ctx context.Context, cfg GameConfig, players []Player) (GameResult, error) {
	if len(players) == 0 {
		return GameResult{}, ErrNoPlayers
	}
	if cfg.GameId == "" {
		cfg.GameId = uuid.NewString()
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	state, err := InitialState(cfg.Width, cfg.Height, players, rng, cfg.Food)
	if err != nil {
		return GameResult{}, err
	}

	solo := len(players) == 1
	res := GameResult{
		GameId:    cfg.GameId,
		Width:     cfg.Width,
		Height:    cfg.Height,
		StartedAt: time.Now(),
		Players:   make([]PlayerResult, len(players)),
	}
	byID := make(map[string]*PlayerResult, len(players))
	for i, p := range players {
		res.Players[i] = PlayerResult{Id: p.Id, Strategy: p.Strategy.Name(), Length: len(state.Snakes[i].Body)}
		byID[p.Id] = &res.Players[i]
	}

	for !rules.IsGameOver(state, solo) {
		if state.Turn >= int32(cfg.MaxTurns) {
			res.TimedOut = true
			break
		}
		if err := ctx.Err(); err != nil {
			finish(&res, state)
			return res, err
		}

		moves := make(map[string]game.Direction, len(state.Snakes))
		for _, p := range players {
			if !alive(state, p.Id) {
				continue
			}
			view := *state
			view.YouId = p.Id
			started := time.Now()
			moves[p.Id] = p.Strategy.Decide(&view)
			pr := byID[p.Id]
			pr.DecisionTime += time.Since(started)
			pr.Decisions++
		}

		out := rules.Advance(state, moves, rng, cfg.Food)
		for _, e := range out.Eliminated {
			if pr, ok := byID[e.SnakeId]; ok {
				pr.Cause = e.Cause
				pr.Survived = int(state.Turn)
			}
		}
		state = out.State
	}

	finish(&res, state)
	return res, nil
}

func finish(res *GameResult, state *game.GameState) {
	res.Turns = int(state.Turn)
	res.Elapsed = time.Since(res.StartedAt)
	for i := range res.Players {
		pr := &res.Players[i]
		for _, s := range state.Snakes {
			if s.Id == pr.Id {
				pr.Survived = res.Turns
				pr.Length = len(s.Body)
			}
		}
	}
	if len(res.Players) > 1 && len(state.Snakes) == 1 {
		res.Winner = state.Snakes[0].Id
	}
}

func alive(state *game.GameState, id string) bool {
	for _, s := range state.Snakes {
		if s.Id == id {
			return true
		}
	}
	return false
}

// InitialState places every player on a stacked three-segment body at a
// distinct spawn point and tops up the starting food. With a nil rng the
// spawn order is fixed.
func InitialState(width, height int32, players []Player, rng *rand.Rand, food rules.FoodSettings) (*game.GameState, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid board %dx%d", width, height)
	}
	spawns := SpawnPoints(width, height)
	if len(players) > len(spawns) {
		return nil, fmt.Errorf("%d players do not fit on a %dx%d board", len(players), width, height)
	}
	if len(players) > 1 && rng != nil {
		rng.Shuffle(len(spawns), func(i, j int) { spawns[i], spawns[j] = spawns[j], spawns[i] })
	}

	state := &game.GameState{
		Width:  width,
		Height: height,
		YouId:  players[0].Id,
		Snakes: make([]game.Snake, len(players)),
	}
	for i, p := range players {
		at := spawns[i]
		state.Snakes[i] = game.Snake{
			Id:     p.Id,
			Health: rules.MaxHealth,
			Body:   []game.Point{at, at, at},
		}
	}

	rules.ApplyFoodSettings(state, rng, rules.FoodSettings{MinimumFood: food.MinimumFood})
	return state, nil
}

// SpawnPoints lists the distinct start cells for a board: the corners inset
// by one, then the middle of each edge inset by one.
func SpawnPoints(width, height int32) []game.Point {
	lo := func(n int32) int32 { return min(1, n-1) }
	hi := func(n int32) int32 { return max(n-2, 0) }
	midX, midY := width/2, height/2

	candidates := []game.Point{
		{X: lo(width), Y: lo(height)},
		{X: hi(width), Y: hi(height)},
		{X: lo(width), Y: hi(height)},
		{X: hi(width), Y: lo(height)},
		{X: midX, Y: lo(height)},
		{X: midX, Y: hi(height)},
		{X: lo(width), Y: midY},
		{X: hi(width), Y: midY},
	}
	seen := game.PointSet{}
	out := make([]game.Point, 0, len(candidates))
	for _, p := range candidates {
		if seen.Contains(p) {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
