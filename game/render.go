package game

import (
	"fmt"
	"strings"
)

// Render draws the board top row first. Heads are upper-case letters (one per
// snake, in slice order), bodies lower-case, food '*', hazards '~'.
// Boards larger than 40x40 only get the header.
func Render(state *GameState) string {
	if state == nil {
		return "<nil state>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Turn=%d Size=%dx%d You=%s\n", state.Turn, state.Width, state.Height, state.YouId)

	w, h := int(state.Width), int(state.Height)
	if w <= 0 || h <= 0 || w > 40 || h > 40 {
		return b.String()
	}

	grid := make([][]byte, h)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", w))
	}
	put := func(p Point, c byte) {
		if InBounds(p, state.Width, state.Height) {
			grid[p.Y][p.X] = c
		}
	}

	for _, p := range state.Hazards {
		put(p, '~')
	}
	for _, f := range state.Food {
		put(f, '*')
	}
	for i, s := range state.Snakes {
		sym := byte('a' + i%26)
		// Tail first so stacked segments keep the head visible.
		for j := len(s.Body) - 1; j >= 0; j-- {
			if j == 0 {
				put(s.Body[j], sym-32)
			} else {
				put(s.Body[j], sym)
			}
		}
	}

	for y := h - 1; y >= 0; y-- {
		b.Write(grid[y])
		b.WriteByte('\n')
	}
	return b.String()
}
