package strategy

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/brensch/floodsnek/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solo(w, h int32, body []game.Point, food ...game.Point) *game.GameState {
	return &game.GameState{
		Width:  w,
		Height: h,
		YouId:  "me",
		Snakes: []game.Snake{{Id: "me", Health: 100, Body: body}},
		Food:   food,
	}
}

// 4x4, food in a one-cell pocket to the left of the head.
//
//	....
//	aa..
//	*A..
//	BB..
func TestSpaceGoal_PrefersRoomOverFood(t *testing.T) {
	state := &game.GameState{
		Width: 4, Height: 4, YouId: "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}},
			{Id: "them", Health: 50, Body: []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}},
		},
		Food: []game.Point{{X: 0, Y: 1}},
	}

	s := &SpaceGoal{Rand: NewRand(1)}
	d := s.Evaluate(state)
	t.Logf("\n%s", game.Render(state))

	assert.Equal(t, []game.Direction{game.Down, game.Left, game.Right}, d.Candidates)
	assert.Equal(t, map[game.Direction]int{game.Down: 0, game.Left: 1, game.Right: 10}, d.Space)
	assert.Equal(t, 10, d.MaxSpace)
	assert.Equal(t, []game.Direction{game.Right}, d.Safe)
	require.True(t, d.HasGoal)
	assert.Equal(t, game.Left, d.Goal)
	assert.Equal(t, game.Right, d.Move)
	assert.Equal(t, ReasonSpace, d.Reason)
}

func TestSpaceGoal_BoxedInFallsBack(t *testing.T) {
	state := solo(5, 5, []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, game.Point{X: 4, Y: 4})

	d := (&SpaceGoal{Rand: NewRand(1)}).Evaluate(state)
	assert.Empty(t, d.Candidates)
	assert.Equal(t, game.Down, d.Move)
	assert.Equal(t, ReasonNoLegalMove, d.Reason)

	assert.Equal(t, game.Down, (&NearestSpace{Rand: NewRand(1)}).Decide(state))
}

func TestSpaceGoal_MissingSnakeFallsBack(t *testing.T) {
	state := solo(5, 5, []game.Point{{X: 2, Y: 2}})
	state.YouId = "ghost"
	assert.Equal(t, Fallback, (&SpaceGoal{}).Decide(state))
}

func TestSpaceGoal_SeeksFoodWhenSafe(t *testing.T) {
	state := solo(11, 11, []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}}, game.Point{X: 8, Y: 5}, game.Point{X: 5, Y: 10})

	d := (&SpaceGoal{Rand: NewRand(1)}).Evaluate(state)
	assert.Equal(t, []game.Direction{game.Up, game.Left, game.Right}, d.Safe)
	assert.Equal(t, 118, d.MaxSpace)
	assert.Equal(t, game.Right, d.Move)
	assert.Equal(t, ReasonGoal, d.Reason)
}

func TestSpaceGoal_BoundsFilter(t *testing.T) {
	tests := []struct {
		name string
		head game.Point
		want []game.Direction
	}{
		{"bottom left", game.Point{X: 0, Y: 0}, []game.Direction{game.Up, game.Right}},
		{"top right", game.Point{X: 2, Y: 2}, []game.Direction{game.Down, game.Left}},
		{"left edge", game.Point{X: 0, Y: 1}, []game.Direction{game.Up, game.Down, game.Right}},
		{"centre", game.Point{X: 1, Y: 1}, []game.Direction{game.Up, game.Down, game.Left, game.Right}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := solo(3, 3, []game.Point{tt.head})
			assert.Equal(t, tt.want, LegalMoves(state, state.You()))
		})
	}
}

func TestSpaceGoal_RandomAmongSafeWithoutFood(t *testing.T) {
	state := solo(7, 7, []game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}})
	s := &SpaceGoal{Rand: NewRand(42)}

	seen := map[game.Direction]int{}
	for i := 0; i < 200; i++ {
		d := s.Evaluate(state)
		require.False(t, d.HasGoal)
		require.Equal(t, ReasonSpace, d.Reason)
		require.True(t, d.IsSafe(d.Move))
		seen[d.Move]++
	}
	// Up, Left and Right all leave 47 cells; Down is the neck.
	assert.Len(t, seen, 3)
	assert.Zero(t, seen[game.Down])
}

func TestSpaceGoal_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 30; trial++ {
		state := randomState(rng)
		seq := (&SpaceGoal{Rand: NewRand(9)}).Evaluate(state)
		par := (&SpaceGoal{Rand: NewRand(9), Parallel: true}).Evaluate(state)
		require.Equal(t, seq, par, "\n%s", game.Render(state))
	}
}

func TestSpaceGoal_ConcurrentDecide(t *testing.T) {
	s, err := New("simple", WithSeed(5), WithParallelScoring(true))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(17))
	states := make([]*game.GameState, 16)
	for i := range states {
		states[i] = randomState(rng)
	}

	var wg sync.WaitGroup
	for _, st := range states {
		wg.Add(1)
		go func(st *game.GameState) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				assert.True(t, s.Decide(st).Valid())
			}
		}(st)
	}
	wg.Wait()
}

func TestNearestSpace_PicksClosestSafeMove(t *testing.T) {
	state := solo(11, 11, []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}}, game.Point{X: 1, Y: 5})

	d := (&NearestSpace{Rand: NewRand(1)}).Evaluate(state)
	assert.Equal(t, game.Left, d.Move)
	assert.Equal(t, ReasonDistance, d.Reason)

	// Without food it is SpaceGoal's random tie-break.
	state.Food = nil
	d = (&NearestSpace{Rand: NewRand(1)}).Evaluate(state)
	assert.Equal(t, ReasonSpace, d.Reason)
	assert.True(t, d.IsSafe(d.Move))
}

func TestNearestSpace_NeverTradesRoomForFood(t *testing.T) {
	state := &game.GameState{
		Width: 4, Height: 4, YouId: "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}},
			{Id: "them", Health: 50, Body: []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}},
		},
		Food: []game.Point{{X: 0, Y: 1}},
	}
	assert.Equal(t, game.Right, (&NearestSpace{Rand: NewRand(1)}).Decide(state))
}

func TestRandom(t *testing.T) {
	s := NewRandom(NewRand(8))
	seen := map[game.Direction]bool{}
	for i := 0; i < 100; i++ {
		d := s.Decide(nil)
		require.True(t, d.Valid())
		seen[d] = true
	}
	assert.Len(t, seen, 4)

	// Same seed, same sequence.
	a, b := NewRandom(NewRand(99)), NewRandom(NewRand(99))
	for i := 0; i < 20; i++ {
		require.Equal(t, a.Decide(nil), b.Decide(nil))
	}

	// A nil source uses the global one.
	assert.True(t, NewRandom(nil).Decide(nil).Valid())
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"nearest", "random", "simple"}, Names())

	for _, name := range Names() {
		s, err := New(name, WithSeed(1))
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := New("greedy")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func randomState(rng *rand.Rand) *game.GameState {
	const w, h = 7, 7
	state := &game.GameState{Width: w, Height: h, YouId: "me"}

	occupied := game.PointSet{}
	walk := func(id string, n int) {
		p := game.Point{X: rng.Int31n(w), Y: rng.Int31n(h)}
		for occupied.Contains(p) {
			p = game.Point{X: rng.Int31n(w), Y: rng.Int31n(h)}
		}
		body := []game.Point{p}
		occupied[p] = struct{}{}
		for len(body) < n {
			next := p.Step(game.AllDirections[rng.Intn(4)])
			if !game.InBounds(next, w, h) || occupied.Contains(next) {
				break
			}
			body = append(body, next)
			occupied[next] = struct{}{}
			p = next
		}
		state.Snakes = append(state.Snakes, game.Snake{Id: id, Health: 100, Body: body})
	}
	walk("me", 2+rng.Intn(8))
	walk("them", 2+rng.Intn(8))

	for i := 0; i < 2; i++ {
		f := game.Point{X: rng.Int31n(w), Y: rng.Int31n(h)}
		if !occupied.Contains(f) {
			state.Food = append(state.Food, f)
		}
	}
	return state
}
