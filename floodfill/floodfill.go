// Package floodfill computes the region reachable from a cell.
//
// The strategy layer only uses the size of the region, as a measure of how
// much room a move leaves the snake.
package floodfill

import "github.com/brensch/floodsnek/game"

// Fill returns every cell reachable from start by 4-connected moves that stay
// on the board and avoid blocked. start is included. A blocked start yields
// an empty result: the snake is already trapped there.
func Fill(start game.Point, blocked game.PointSet, width, height int32) []game.Point {
	if blocked.Contains(start) || !game.InBounds(start, width, height) {
		return []game.Point{}
	}

	idx := func(p game.Point) int { return int(p.Y)*int(width) + int(p.X) }
	visited := make([]bool, int(width)*int(height))

	queue := make([]game.Point, 0, 16)
	queue = append(queue, start)
	visited[idx(start)] = true
	result := make([]game.Point, 0, 16)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, d := range game.AllDirections {
			next := current.Step(d)
			if !game.InBounds(next, width, height) || blocked.Contains(next) || visited[idx(next)] {
				continue
			}
			visited[idx(next)] = true
			queue = append(queue, next)
		}
	}

	return result
}

// Size is len(Fill(...)).
func Size(start game.Point, blocked game.PointSet, width, height int32) int {
	return len(Fill(start, blocked, width, height))
}
