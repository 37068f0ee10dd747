package arena

import (
	"sort"
	"time"
)

// Summary is the per-case line of an aggregate file. AverageTurnTime is in
// seconds.
type Summary struct {
	AverageTurns    float64 `json:"average_turns"`
	AverageTurnTime float64 `json:"average_turn_time"`
}

// Aggregates maps case keys ("simple_10x10") to their summary.
type Aggregates map[string]Summary

// Keys returns the case keys in sorted order.
func (a Aggregates) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Aggregate averages game length and the benchmarked player's mean decision
// time over every game of each case.
func Aggregate(results []GameResult) Aggregates {
	type totals struct {
		turns float64
		time  time.Duration
		games int
	}
	acc := map[string]*totals{}
	for _, r := range results {
		key := Case{Strategy: r.Strategy, Board: BoardSize{Width: r.Width, Height: r.Height}}.Key()
		t := acc[key]
		if t == nil {
			t = &totals{}
			acc[key] = t
		}
		t.turns += float64(r.Turns)
		t.time += r.AvgTurnTime()
		t.games++
	}

	out := make(Aggregates, len(acc))
	for key, t := range acc {
		out[key] = Summary{
			AverageTurns:    t.turns / float64(t.games),
			AverageTurnTime: (t.time / time.Duration(t.games)).Seconds(),
		}
	}
	return out
}

// AvgTurnTime is the benchmarked (first) player's mean decision time.
func (r GameResult) AvgTurnTime() time.Duration {
	if len(r.Players) == 0 {
		return 0
	}
	return r.Players[0].AvgTurnTime()
}
