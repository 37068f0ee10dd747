package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/brensch/floodsnek/arena"
	"github.com/brensch/floodsnek/store"
)

// resultWriter archives finished games in Parquet batches of flushGames and
// keeps them in memory for the final aggregate.
type resultWriter struct {
	dir        string
	flushGames int
	log        *slog.Logger

	batch *store.BatchWriter
}

func newResultWriter(dir string, flushGames int, log *slog.Logger) *resultWriter {
	if flushGames <= 0 {
		flushGames = 500
	}
	return &resultWriter{dir: dir, flushGames: flushGames, log: log}
}

// loop drains in until it is closed and returns every result it saw. Write
// failures are logged; the results are still returned for aggregation.
func (w *resultWriter) loop(in <-chan arena.GameResult) []arena.GameResult {
	var all []arena.GameResult
	lastReport := time.Now()

	for r := range in {
		all = append(all, r)
		w.log.Debug("game finished",
			"case", arena.Case{Strategy: r.Strategy, Board: arena.BoardSize{Width: r.Width, Height: r.Height}}.Key(),
			"game", r.GameNumber,
			"turns", r.Turns,
			"avg_turn_time", r.AvgTurnTime(),
		)
		if time.Since(lastReport) > 5*time.Second {
			w.log.Info("progress", "games", len(all))
			lastReport = time.Now()
		}

		if err := w.write(r); err != nil {
			w.log.Error("archive game", "game", r.GameId, "err", err)
		}
		if w.batch != nil && w.batch.Rows() >= w.flushGames {
			w.flush()
		}
	}
	w.flush()
	return all
}

func (w *resultWriter) write(r arena.GameResult) error {
	if w.batch == nil {
		b, err := store.NewBatchWriter(w.dir)
		if err != nil {
			return err
		}
		w.batch = b
	}
	return w.batch.Write(store.RowFromResult(r))
}

func (w *resultWriter) flush() {
	if w.batch == nil {
		return
	}
	rows := w.batch.Rows()
	path, err := w.batch.Finalize()
	w.batch = nil
	if err != nil {
		w.log.Error("parquet flush failed", "games", rows, "err", err)
		return
	}
	if path != "" {
		w.log.Info("parquet flush ok", "path", path, "games", rows)
	}
}

// summaryTable prints the aggregates the way they are written to disk, with
// turn time in milliseconds.
func summaryTable(agg arena.Aggregates) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Test Case", "Avg Turns", "Avg Turn Time (ms)")
	for _, k := range agg.Keys() {
		s := agg[k]
		t.Row(k, fmt.Sprintf("%.2f", s.AverageTurns), fmt.Sprintf("%.5f", s.AverageTurnTime*1000))
	}
	return t.String()
}
