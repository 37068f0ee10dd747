// Package strategy turns a turn snapshot into a move.
//
// A Strategy keeps no state between turns, so one instance can serve any
// number of concurrent games.
package strategy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/brensch/floodsnek/game"
)

// Fallback is returned when no move survives the safety filters.
const Fallback = game.Down

var ErrUnknownStrategy = errors.New("unknown strategy")

type Strategy interface {
	Name() string
	Decide(state *game.GameState) game.Direction
}

// Option configures strategies built by New.
type Option func(*options)

type options struct {
	seed     int64
	seeded   bool
	parallel bool
}

// WithSeed makes the random tie-breaks reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithParallelScoring scores candidate moves concurrently.
func WithParallelScoring(enabled bool) Option {
	return func(o *options) { o.parallel = enabled }
}

var constructors = map[string]func(options) Strategy{
	"random":  func(o options) Strategy { return NewRandom(o.rng()) },
	"simple":  func(o options) Strategy { return &SpaceGoal{Rand: o.rng(), Parallel: o.parallel} },
	"nearest": func(o options) Strategy { return &NearestSpace{Rand: o.rng(), Parallel: o.parallel} },
}

// New builds the strategy registered under name.
func New(name string, opts ...Option) (Strategy, error) {
	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownStrategy, name, Names())
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return build(o), nil
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o options) rng() *Rand {
	seed := o.seed
	if !o.seeded {
		seed = time.Now().UnixNano()
	}
	return NewRand(seed)
}

// Rand is a *rand.Rand that is safe to share between goroutines.
type Rand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a value in [0,n). A nil Rand falls back to the global source.
func (r *Rand) Intn(n int) int {
	if r == nil {
		return rand.Intn(n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Pick returns a uniformly random element of dirs, which must be non-empty.
func (r *Rand) Pick(dirs []game.Direction) game.Direction {
	return dirs[r.Intn(len(dirs))]
}

// Random ignores the board entirely.
type Random struct {
	rng *Rand
}

func NewRandom(rng *Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Decide(*game.GameState) game.Direction {
	return r.rng.Pick(game.AllDirections[:])
}
