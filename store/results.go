// Package store persists benchmark output: per-game results as Parquet
// batches, per-case aggregates as JSON, and a log of replayed game ids.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/floodsnek/arena"
)

const resultSchema = "game_result_v1"

// GameResultRow is one finished arena game. Times are stored as plain
// integers so any Parquet reader can aggregate them.
type GameResultRow struct {
	GameID     string `parquet:"game_id"`
	Strategy   string `parquet:"strategy,dict"`
	BoardSize  string `parquet:"board_size,dict"`
	Width      int32  `parquet:"width"`
	Height     int32  `parquet:"height"`
	GameNumber int32  `parquet:"game_number"`
	Turns      int32  `parquet:"turns"`
	// AvgTurnTime is the benchmarked player's mean decision time in seconds.
	AvgTurnTime float64 `parquet:"avg_turn_time"`
	TimedOut    bool    `parquet:"timed_out"`
	Winner      string  `parquet:"winner,dict"`
	StartedAtMs int64   `parquet:"started_at_ms"`
	ElapsedMs   int64   `parquet:"elapsed_ms"`

	Players []PlayerRow `parquet:"players"`
}

type PlayerRow struct {
	ID             string `parquet:"id,dict"`
	Strategy       string `parquet:"strategy,dict"`
	Survived       int32  `parquet:"survived"`
	Length         int32  `parquet:"length"`
	Cause          string `parquet:"cause,dict"`
	Decisions      int32  `parquet:"decisions"`
	DecisionTimeNs int64  `parquet:"decision_time_ns"`
}

// RowFromResult flattens an arena result.
func RowFromResult(r arena.GameResult) GameResultRow {
	row := GameResultRow{
		GameID:      r.GameId,
		Strategy:    r.Strategy,
		BoardSize:   arena.BoardSize{Width: r.Width, Height: r.Height}.String(),
		Width:       r.Width,
		Height:      r.Height,
		GameNumber:  int32(r.GameNumber),
		Turns:       int32(r.Turns),
		AvgTurnTime: r.AvgTurnTime().Seconds(),
		TimedOut:    r.TimedOut,
		Winner:      r.Winner,
		StartedAtMs: r.StartedAt.UnixMilli(),
		ElapsedMs:   r.Elapsed.Milliseconds(),
		Players:     make([]PlayerRow, len(r.Players)),
	}
	for i, p := range r.Players {
		row.Players[i] = PlayerRow{
			ID:             p.Id,
			Strategy:       p.Strategy,
			Survived:       int32(p.Survived),
			Length:         int32(p.Length),
			Cause:          p.Cause,
			Decisions:      int32(p.Decisions),
			DecisionTimeNs: p.DecisionTime.Nanoseconds(),
		}
	}
	return row
}

// Result rebuilds the arena result, so archived games can be aggregated
// again.
func (row GameResultRow) Result() arena.GameResult {
	r := arena.GameResult{
		GameId:     row.GameID,
		Strategy:   row.Strategy,
		GameNumber: int(row.GameNumber),
		Width:      row.Width,
		Height:     row.Height,
		Turns:      int(row.Turns),
		Winner:     row.Winner,
		TimedOut:   row.TimedOut,
		StartedAt:  time.UnixMilli(row.StartedAtMs),
		Elapsed:    time.Duration(row.ElapsedMs) * time.Millisecond,
		Players:    make([]arena.PlayerResult, len(row.Players)),
	}
	for i, p := range row.Players {
		r.Players[i] = arena.PlayerResult{
			Id:           p.ID,
			Strategy:     p.Strategy,
			Survived:     int(p.Survived),
			Length:       int(p.Length),
			Cause:        p.Cause,
			Decisions:    int(p.Decisions),
			DecisionTime: time.Duration(p.DecisionTimeNs),
		}
	}
	return r
}

// BatchWriter streams rows into outDir/tmp and moves the finished file into
// outDir on Finalize, so readers never see a partial batch.
type BatchWriter struct {
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[GameResultRow]
	rows   int
}

func NewBatchWriter(outDir string) (*BatchWriter, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("results_%d.parquet", time.Now().UnixNano())
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[GameResultRow](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", resultSchema)

	return &BatchWriter{
		tmpPath: tmpPath,
		outPath: filepath.Join(outDir, name),
		file:    f,
		writer:  w,
	}, nil
}

func (b *BatchWriter) Rows() int { return b.rows }

func (b *BatchWriter) Write(rows ...GameResultRow) error {
	if b.writer == nil {
		return fmt.Errorf("batch writer is closed")
	}
	if len(rows) == 0 {
		return nil
	}
	n, err := b.writer.Write(rows)
	b.rows += n
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// Finalize closes the file and publishes it. An empty batch is discarded
// and reported with an empty path.
func (b *BatchWriter) Finalize() (string, error) {
	if b.writer == nil {
		return "", nil
	}
	closeErr := b.writer.Close()
	b.writer = nil
	_ = b.file.Sync()
	fileErr := b.file.Close()
	b.file = nil

	if closeErr != nil {
		_ = os.Remove(b.tmpPath)
		return "", fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		_ = os.Remove(b.tmpPath)
		return "", fmt.Errorf("close parquet file: %w", fileErr)
	}
	if b.rows == 0 {
		_ = os.Remove(b.tmpPath)
		return "", nil
	}
	if err := os.Rename(b.tmpPath, b.outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return b.outPath, nil
}

// ReadResults loads every finished batch in dir, oldest file first. The tmp
// subdirectory is ignored.
func ReadResults(dir string) ([]GameResultRow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read results dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".parquet") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []GameResultRow
	for _, name := range names {
		rows, err := parquet.ReadFile[GameResultRow](filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}
