// Command replay downloads finished games and reports how often a strategy
// agrees with the moves a snake actually made.
//
//	replay -snake <id|name> [-strategy simple] [-discover <stats page>] [game ids...]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/brensch/floodsnek/config"
	"github.com/brensch/floodsnek/logging"
	"github.com/brensch/floodsnek/replay"
	"github.com/brensch/floodsnek/store"
	"github.com/brensch/floodsnek/strategy"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	snake     string
	strategy  string
	seed      int64
	engineURL string
	discover  string
	limit     int
	seenLog   string
	delay     time.Duration
}

func run(args []string, out io.Writer) error {
	if _, err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	env := config.NewEnv(os.LookupEnv)

	var o options
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.StringVar(&o.snake, "snake", env.String("REPLAY_SNAKE", ""), "Snake id or name to follow")
	fs.StringVar(&o.strategy, "strategy", env.String("STRATEGY", "simple"), "Strategy to compare against")
	fs.Int64Var(&o.seed, "seed", env.Int64("SEED", 1), "Seed for the strategy's random tie-breaks")
	fs.StringVar(&o.engineURL, "engine-url", env.String("ENGINE_URL", replay.DefaultEngineURL), "Engine event stream URL template")
	fs.StringVar(&o.discover, "discover", env.String("DISCOVER_URL", ""), "Page to scrape game ids from, e.g. a player's stats page")
	fs.IntVar(&o.limit, "limit", env.Int("REPLAY_LIMIT", 10), "Maximum games to replay (0 = all)")
	fs.StringVar(&o.seenLog, "seen-log", env.String("SEEN_LOG", ""), "Append-only log of replayed game ids; listed games are skipped")
	fs.DurationVar(&o.delay, "delay", env.Duration("DELAY", 500*time.Millisecond), "Pause between downloads")
	logFormat := fs.String("log-format", env.String("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	logLevel := fs.String("log-level", env.String("LOG_LEVEL", "info"), "Log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if o.snake == "" {
		return fmt.Errorf("-snake is required")
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, logging.Options{Format: *logFormat, Level: level})
	if err != nil {
		return err
	}

	s, err := strategy.New(o.strategy, strategy.WithSeed(o.seed))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids := fs.Args()
	if o.discover != "" {
		found, err := replay.NewDiscoverer().GameIDs(ctx, o.discover)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
		logger.Info("discovered games", "url", o.discover, "games", len(found))
		ids = append(ids, found...)
	}

	var seen *store.SeenLog
	if o.seenLog != "" {
		if seen, err = store.OpenSeenLog(o.seenLog); err != nil {
			return err
		}
		defer seen.Close()
	}

	dl := replay.NewDownloader()
	dl.EngineURL = o.engineURL
	dl.Log = logger

	var reports []replay.Report
	for _, id := range ids {
		if o.limit > 0 && len(reports) >= o.limit {
			break
		}
		if seen != nil && seen.Has(id) {
			logger.Debug("already replayed", "game", id)
			continue
		}
		if len(reports) > 0 && o.delay > 0 {
			select {
			case <-time.After(o.delay):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			break
		}

		g, err := dl.Download(ctx, id)
		if err != nil {
			logger.Warn("download failed", "game", id, "err", err)
			continue
		}
		rep, err := replay.Analyze(g, o.snake, s)
		if err != nil {
			logger.Warn("snake not in game", "game", id, "snake", o.snake)
			continue
		}
		logger.Info("replayed",
			"game", id,
			"turns", len(rep.Turns),
			"agree", rep.Agreements(),
			"unsafe_actual", rep.UnsafeActual(),
			"winner", g.Winner(),
		)
		reports = append(reports, rep)
		if seen != nil {
			if err := seen.Add(id); err != nil {
				logger.Error("record replayed game", "game", id, "err", err)
			}
		}
	}

	if len(reports) == 0 {
		return fmt.Errorf("no games replayed")
	}
	fmt.Fprintln(out, renderReports(reports))
	return nil
}

func renderReports(reports []replay.Report) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Game", "Strategy", "Turns", "Agree", "Agree %", "Unsafe Real Moves")

	var turns, agree, unsafe int
	for _, r := range reports {
		turns += len(r.Turns)
		agree += r.Agreements()
		unsafe += r.UnsafeActual()
		t.Row(r.GameID, r.Strategy,
			fmt.Sprint(len(r.Turns)),
			fmt.Sprint(r.Agreements()),
			fmt.Sprintf("%.1f%%", r.AgreementRate()*100),
			fmt.Sprint(r.UnsafeActual()),
		)
	}
	rate := 0.0
	if turns > 0 {
		rate = float64(agree) / float64(turns) * 100
	}
	t.Row("total", "", fmt.Sprint(turns), fmt.Sprint(agree), fmt.Sprintf("%.1f%%", rate), fmt.Sprint(unsafe))
	return t.String()
}
