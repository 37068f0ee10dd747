package rules

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/brensch/floodsnek/game"
)

// FoodSettings are the standard engine food knobs.
type FoodSettings struct {
	// MinimumFood is topped up after every turn.
	MinimumFood int
	// FoodSpawnChance is the percentage chance (0-100) of one extra food per turn.
	FoodSpawnChance int
}

// DefaultFoodSettings matches the public engine defaults.
var DefaultFoodSettings = FoodSettings{MinimumFood: 1, FoodSpawnChance: 15}

func (s FoodSettings) clamped() FoodSettings {
	if s.MinimumFood < 0 {
		s.MinimumFood = 0
	}
	if s.FoodSpawnChance < 0 {
		s.FoodSpawnChance = 0
	}
	if s.FoodSpawnChance > 100 {
		s.FoodSpawnChance = 100
	}
	return s
}

// ApplyFoodSettings tops up food on an existing state, e.g. at game start.
func ApplyFoodSettings(state *game.GameState, rng *rand.Rand, settings FoodSettings) {
	applyFoodRules(state, rng, settings, 0x464F4F445F494E49) // "FOOD_INI"
}

// applyFoodRules spawns food on free cells. A nil rng is replaced by one
// seeded from the state so replays of the same turn place the same food.
func applyFoodRules(state *game.GameState, rng *rand.Rand, settings FoodSettings, salt uint64) {
	if state == nil || state.Width <= 0 || state.Height <= 0 {
		return
	}
	settings = settings.clamped()

	deficit := settings.MinimumFood - len(state.Food)
	if deficit < 0 {
		deficit = 0
	}

	spawnExtra := false
	if settings.FoodSpawnChance > 0 {
		if rng != nil {
			spawnExtra = rng.Intn(100) < settings.FoodSpawnChance
		} else {
			spawnExtra = int(stateHash(state, salt)%100) < settings.FoodSpawnChance
		}
	}
	if deficit == 0 && !spawnExtra {
		return
	}

	if rng == nil {
		seed := int64(stateHash(state, salt^0xF00D))
		if seed == 0 {
			seed = 1
		}
		rng = rand.New(rand.NewSource(seed))
	}

	available := freeCells(state)
	spawnOne := func() bool {
		if len(available) == 0 {
			return false
		}
		i := rng.Intn(len(available))
		state.Food = append(state.Food, available[i])
		available[i] = available[len(available)-1]
		available = available[:len(available)-1]
		return true
	}

	for ; deficit > 0; deficit-- {
		if !spawnOne() {
			return
		}
	}
	if spawnExtra {
		spawnOne()
	}
}

// freeCells lists cells holding neither a live snake nor food, row by row.
func freeCells(state *game.GameState) []game.Point {
	occupied := game.PointSet{}
	for _, s := range state.Snakes {
		if s.Health <= 0 {
			continue
		}
		for _, p := range s.Body {
			occupied[p] = struct{}{}
		}
	}
	for _, f := range state.Food {
		occupied[f] = struct{}{}
	}

	free := make([]game.Point, 0, int(state.Width*state.Height)-len(occupied))
	for y := int32(0); y < state.Height; y++ {
		for x := int32(0); x < state.Width; x++ {
			p := game.Point{X: x, Y: y}
			if !occupied.Contains(p) {
				free = append(free, p)
			}
		}
	}
	return free
}

// stateHash mixes board size, turn, food count and snake heads.
func stateHash(state *game.GameState, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	write(uint64(uint32(state.Width)) | uint64(uint32(state.Height))<<32)
	write(uint64(uint32(state.Turn)))
	write(salt)
	write(uint64(len(state.Food)))
	for _, s := range state.Snakes {
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		_, _ = h.Write([]byte(s.Id))
		head := s.Body[0]
		write(uint64(uint32(head.X))<<32 | uint64(uint32(head.Y)))
	}
	return h.Sum64()
}
