package arena

import (
	"context"
	"testing"
	"time"

	"github.com/brensch/floodsnek/game"
	"github.com/brensch/floodsnek/rules"
	"github.com/brensch/floodsnek/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStrategy(t *testing.T, name string, seed int64) strategy.Strategy {
	t.Helper()
	s, err := strategy.New(name, strategy.WithSeed(seed))
	require.NoError(t, err)
	return s
}

func TestPlayGame_SoloRunsUntilDeath(t *testing.T) {
	res, err := PlayGame(context.Background(), GameConfig{
		Width: 7, Height: 7, Food: rules.DefaultFoodSettings, Seed: 11,
	}, []Player{{Id: "me", Strategy: mustStrategy(t, "simple", 1)}})
	require.NoError(t, err)

	assert.NotEmpty(t, res.GameId)
	assert.False(t, res.TimedOut)
	assert.Positive(t, res.Turns)
	assert.Empty(t, res.Winner)
	require.Len(t, res.Players, 1)

	p := res.Players[0]
	assert.Equal(t, "simple", p.Strategy)
	assert.NotEmpty(t, p.Cause, "a solo game only ends when the snake dies")
	assert.Equal(t, res.Turns, p.Decisions)
	assert.Equal(t, res.Turns-1, p.Survived)
}

func TestPlayGame_RandomDiesFast(t *testing.T) {
	// Random never filters, so on a 3x3 board it hits a wall or itself
	// well before the turn limit.
	res, err := PlayGame(context.Background(), GameConfig{Width: 3, Height: 3, Seed: 5, MaxTurns: 500},
		[]Player{{Id: "r", Strategy: mustStrategy(t, "random", 5)}})
	require.NoError(t, err)
	assert.False(t, res.TimedOut)
	assert.Less(t, res.Turns, 500)
}

func TestPlayGame_MaxTurns(t *testing.T) {
	res, err := PlayGame(context.Background(), GameConfig{
		Width: 11, Height: 11, MaxTurns: 5, Food: rules.DefaultFoodSettings, Seed: 2,
	}, []Player{{Id: "me", Strategy: mustStrategy(t, "simple", 2)}})
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Equal(t, 5, res.Turns)
	assert.Empty(t, res.Players[0].Cause)
	assert.Equal(t, 5, res.Players[0].Survived)
}

func TestPlayGame_Duel(t *testing.T) {
	res, err := PlayGame(context.Background(), GameConfig{
		Width: 11, Height: 11, Food: rules.DefaultFoodSettings, Seed: 3,
	}, []Player{
		{Id: "a", Strategy: mustStrategy(t, "simple", 3)},
		{Id: "b", Strategy: mustStrategy(t, "random", 4)},
	})
	require.NoError(t, err)
	require.Len(t, res.Players, 2)

	dead := 0
	for _, p := range res.Players {
		if p.Cause != "" {
			dead++
		}
	}
	assert.GreaterOrEqual(t, dead, 1)
	if res.Winner != "" {
		assert.Contains(t, []string{"a", "b"}, res.Winner)
	}
}

func TestPlayGame_Errors(t *testing.T) {
	_, err := PlayGame(context.Background(), GameConfig{Width: 5, Height: 5}, nil)
	assert.ErrorIs(t, err, ErrNoPlayers)

	_, err = PlayGame(context.Background(), GameConfig{Width: 0, Height: 5},
		[]Player{{Id: "a", Strategy: mustStrategy(t, "simple", 1)}})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := PlayGame(ctx, GameConfig{Width: 11, Height: 11, Seed: 1},
		[]Player{{Id: "a", Strategy: mustStrategy(t, "simple", 1)}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Turns)
}

func TestInitialState(t *testing.T) {
	players := []Player{
		{Id: "a", Strategy: mustStrategy(t, "simple", 1)},
		{Id: "b", Strategy: mustStrategy(t, "simple", 1)},
	}
	state, err := InitialState(11, 11, players, nil, rules.FoodSettings{MinimumFood: 2})
	require.NoError(t, err)
	t.Logf("\n%s", game.Render(state))

	require.Len(t, state.Snakes, 2)
	assert.Equal(t, "a", state.YouId)
	assert.Equal(t, []game.Point{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}, state.Snakes[0].Body)
	assert.Equal(t, []game.Point{{X: 9, Y: 9}, {X: 9, Y: 9}, {X: 9, Y: 9}}, state.Snakes[1].Body)
	assert.Equal(t, int32(rules.MaxHealth), state.Snakes[1].Health)
	assert.Len(t, state.Food, 2)

	_, err = InitialState(3, 3, players, nil, rules.FoodSettings{})
	assert.Error(t, err, "a 3x3 board has a single spawn point")
}

func TestSpawnPoints(t *testing.T) {
	pts := SpawnPoints(11, 11)
	assert.Len(t, pts, 8)
	assert.Equal(t, game.Point{X: 1, Y: 1}, pts[0])
	assert.Equal(t, game.Point{X: 9, Y: 9}, pts[1])
	for _, p := range pts {
		assert.True(t, game.InBounds(p, 11, 11), "%v", p)
	}

	assert.Equal(t, []game.Point{{X: 0, Y: 0}}, SpawnPoints(1, 1))
	assert.Len(t, SpawnPoints(3, 3), 1)
}

func TestRun(t *testing.T) {
	cfg := Config{
		Strategies: []string{"random", "simple"},
		BoardSizes: []BoardSize{{5, 5}, {7, 7}},
		Games:      3,
		Workers:    4,
		MaxTurns:   200,
		Food:       rules.DefaultFoodSettings,
		Seed:       99,
	}
	require.Equal(t, 12, cfg.Total())

	var results []GameResult
	require.NoError(t, Run(context.Background(), cfg, func(r GameResult) {
		results = append(results, r)
	}))
	require.Len(t, results, 12)

	perCase := map[string]int{}
	for _, r := range results {
		perCase[Case{Strategy: r.Strategy, Board: BoardSize{r.Width, r.Height}}.Key()]++
		assert.GreaterOrEqual(t, r.GameNumber, 1)
		assert.LessOrEqual(t, r.GameNumber, 3)
	}
	assert.Equal(t, map[string]int{"random_5x5": 3, "random_7x7": 3, "simple_5x5": 3, "simple_7x7": 3}, perCase)

	agg := Aggregate(results)
	assert.Equal(t, []string{"random_5x5", "random_7x7", "simple_5x5", "simple_7x7"}, agg.Keys())
	for _, k := range agg.Keys() {
		assert.Positive(t, agg[k].AverageTurns, k)
	}
}

func TestRun_UnknownStrategy(t *testing.T) {
	err := Run(context.Background(), Config{Strategies: []string{"greedy"}, BoardSizes: DefaultBoardSizes, Games: 1}, nil)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, Config{Strategies: []string{"simple"}, BoardSizes: DefaultBoardSizes, Games: 10, Workers: 2}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate(t *testing.T) {
	mk := func(s string, turns int, per time.Duration) GameResult {
		return GameResult{
			Strategy: s, Width: 10, Height: 10, Turns: turns,
			Players: []PlayerResult{{Decisions: 4, DecisionTime: 4 * per}},
		}
	}
	agg := Aggregate([]GameResult{
		mk("simple", 10, 2*time.Millisecond),
		mk("simple", 20, 4*time.Millisecond),
		mk("random", 3, time.Millisecond),
	})

	assert.Equal(t, Aggregates{
		"simple_10x10": {AverageTurns: 15, AverageTurnTime: 0.003},
		"random_10x10": {AverageTurns: 3, AverageTurnTime: 0.001},
	}, agg)
	assert.Empty(t, Aggregate(nil))
}

func TestParseBoardSize(t *testing.T) {
	b, err := ParseBoardSize("15x20")
	require.NoError(t, err)
	assert.Equal(t, BoardSize{Width: 15, Height: 20}, b)
	assert.Equal(t, "15x20", b.String())

	for _, bad := range []string{"", "15", "0x3", "axb"} {
		_, err := ParseBoardSize(bad)
		assert.Error(t, err, bad)
	}
}
