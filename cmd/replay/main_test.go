package main

import (
	"io"
	"testing"

	"github.com/brensch/floodsnek/game"
	"github.com/brensch/floodsnek/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReports(t *testing.T) {
	reports := []replay.Report{
		{GameID: "g1", Strategy: "simple", Turns: []replay.Turn{
			{Turn: 0, Actual: game.Up, Chosen: game.Up},
			{Turn: 1, Actual: game.Left, Chosen: game.Up},
		}},
		{GameID: "g2", Strategy: "simple", Turns: []replay.Turn{
			{Turn: 0, Actual: game.Right, Chosen: game.Right},
			{Turn: 1, Actual: game.Right, Chosen: game.Right},
		}},
	}

	out := renderReports(reports)
	t.Log("\n" + out)
	assert.Contains(t, out, "g1")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "total")
}

func TestRun_Errors(t *testing.T) {
	err := run([]string{"-strategy", "simple"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-snake")

	err = run([]string{"-snake", "me", "-strategy", "greedy"}, io.Discard)
	require.Error(t, err)

	err = run([]string{"-snake", "me", "-no-such-flag"}, io.Discard)
	require.Error(t, err)

	// Nothing to replay.
	err = run([]string{"-snake", "me", "-limit", "1"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no games replayed")
}
