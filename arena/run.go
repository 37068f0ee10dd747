package arena

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/brensch/floodsnek/rules"
	"github.com/brensch/floodsnek/strategy"
)

type BoardSize struct {
	Width  int32
	Height int32
}

func (b BoardSize) String() string {
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}

// ParseBoardSize reads "WxH".
func ParseBoardSize(s string) (BoardSize, error) {
	var b BoardSize
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%dx%d", &b.Width, &b.Height); err != nil {
		return BoardSize{}, fmt.Errorf("board size %q: %w", s, err)
	}
	if b.Width < 1 || b.Height < 1 {
		return BoardSize{}, fmt.Errorf("board size %q: dimensions must be positive", s)
	}
	return b, nil
}

// DefaultBoardSizes are the sizes the benchmark has always been run on.
var DefaultBoardSizes = []BoardSize{{10, 10}, {15, 15}, {20, 20}}

// Case is one (strategy, board size) benchmark cell.
type Case struct {
	Strategy string
	Board    BoardSize
}

// Key names the case the way aggregate files do: "<strategy>_<W>x<H>".
func (c Case) Key() string {
	return c.Strategy + "_" + c.Board.String()
}

type Config struct {
	Strategies []string
	BoardSizes []BoardSize
	// Games is the number of games per case.
	Games int
	// Opponents, when set, join every game; each entry is a strategy name.
	// Without opponents games are solo.
	Opponents []string
	Workers   int
	MaxTurns  int
	Food      rules.FoodSettings
	// Seed makes a run reproducible; game i of a run uses Seed+i. 0 means
	// unseeded.
	Seed     int64
	Parallel bool
}

// Cases lists every case in strategy-major order.
func (c Config) Cases() []Case {
	out := make([]Case, 0, len(c.Strategies)*len(c.BoardSizes))
	for _, s := range c.Strategies {
		for _, b := range c.BoardSizes {
			out = append(out, Case{Strategy: s, Board: b})
		}
	}
	return out
}

// Total is the number of games Run will play.
func (c Config) Total() int {
	return len(c.Cases()) * c.Games
}

type job struct {
	index  int
	c      Case
	number int
}

// Run plays every game in cfg on a bounded worker pool. onResult is called
// once per finished game, never concurrently. The first strategy error or
// the context's cancellation stops the run.
func Run(ctx context.Context, cfg Config, onResult func(GameResult)) error {
	for _, name := range append(append([]string(nil), cfg.Strategies...), cfg.Opponents...) {
		if _, err := strategy.New(name); err != nil {
			return err
		}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan job)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		i := 0
		for _, c := range cfg.Cases() {
			for n := 1; n <= cfg.Games; n++ {
				select {
				case jobs <- job{index: i, c: c, number: n}:
				case <-ctx.Done():
					return ctx.Err()
				}
				i++
			}
		}
		return nil
	})

	var mu sync.Mutex
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for j := range jobs {
				res, err := playJob(ctx, cfg, j)
				if err != nil {
					return err
				}
				if onResult != nil {
					mu.Lock()
					onResult(res)
					mu.Unlock()
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func playJob(ctx context.Context, cfg Config, j job) (GameResult, error) {
	var seed int64
	if cfg.Seed != 0 {
		seed = cfg.Seed + int64(j.index)
	}

	names := append([]string{j.c.Strategy}, cfg.Opponents...)
	players := make([]Player, len(names))
	for i, name := range names {
		opts := []strategy.Option{strategy.WithParallelScoring(cfg.Parallel)}
		if seed != 0 {
			opts = append(opts, strategy.WithSeed(seed*31+int64(i)))
		}
		s, err := strategy.New(name, opts...)
		if err != nil {
			return GameResult{}, err
		}
		players[i] = Player{Id: fmt.Sprintf("%s-%d", name, i), Strategy: s}
	}

	res, err := PlayGame(ctx, GameConfig{
		Width:    j.c.Board.Width,
		Height:   j.c.Board.Height,
		MaxTurns: cfg.MaxTurns,
		Food:     cfg.Food,
		Seed:     seed,
	}, players)
	if err != nil {
		return GameResult{}, fmt.Errorf("%s game %d: %w", j.c.Key(), j.number, err)
	}
	res.Strategy = j.c.Strategy
	res.GameNumber = j.number
	return res, nil
}
