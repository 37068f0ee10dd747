// Package report compares two benchmark aggregate files.
package report

import (
	"fmt"
	"sort"

	"github.com/brensch/floodsnek/arena"
)

// Row is the change for one case between two runs. A case
// missing from one run is compared against zeros.
type Row struct {
	Case string
	// Mismatch is set when the case appears in only one run.
	Mismatch bool

	TurnsDelta   float64
	TurnsPercent float64
	// TimeDeltaMs is the change in mean decision time in milliseconds.
	TimeDeltaMs float64
	TimePercent float64
}

// FewerTurns reports whether games got shorter.
func (r Row) FewerTurns() bool { return r.TurnsDelta < 0 }

// Faster reports whether decisions got quicker.
func (r Row) Faster() bool { return r.TimeDeltaMs < 0 }

// Compare lines up the cases of two runs, sorted by case key. Cases present
// in only one run are dropped unless includeMismatches is set.
func Compare(before, after arena.Aggregates, includeMismatches bool) []Row {
	keys := map[string]struct{}{}
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	rows := make([]Row, 0, len(sorted))
	for _, k := range sorted {
		a, inBefore := before[k]
		b, inAfter := after[k]
		mismatch := !inBefore || !inAfter
		if mismatch && !includeMismatches {
			continue
		}

		r := Row{
			Case:        k,
			Mismatch:    mismatch,
			TurnsDelta:  b.AverageTurns - a.AverageTurns,
			TimeDeltaMs: (b.AverageTurnTime - a.AverageTurnTime) * 1000,
		}
		if a.AverageTurns != 0 {
			r.TurnsPercent = r.TurnsDelta / a.AverageTurns * 100
		}
		if a.AverageTurnTime != 0 {
			r.TimePercent = r.TimeDeltaMs / (a.AverageTurnTime * 1000) * 100
		}
		rows = append(rows, r)
	}
	return rows
}

// Cells formats a row the way the table prints it.
func (r Row) Cells() []string {
	return []string{
		r.Case,
		fmt.Sprintf("%+.2f", r.TurnsDelta),
		fmt.Sprintf("%+.2f%%", r.TurnsPercent),
		fmt.Sprintf("%+.5f", r.TimeDeltaMs),
		fmt.Sprintf("%+.2f%%", r.TimePercent),
	}
}
