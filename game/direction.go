package game

import "fmt"

// Direction is one of the four moves a snake can make.
// The numeric order matches the move order used by the rules engine.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// AllDirections lists every direction in enumeration order.
var AllDirections = [4]Direction{Up, Down, Left, Right}

var directionNames = [4]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Valid reports whether d is one of the four enumerated directions.
func (d Direction) Valid() bool {
	return d <= Right
}

// Offset returns the unit vector for d.
func (d Direction) Offset() (dx, dy int32) {
	switch d {
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// DirectionFromOffset is the inverse of Offset. It reports false for any
// vector that is not exactly one unit step.
func DirectionFromOffset(dx, dy int32) (Direction, bool) {
	switch {
	case dx == 0 && dy == 1:
		return Up, true
	case dx == 0 && dy == -1:
		return Down, true
	case dx == -1 && dy == 0:
		return Left, true
	case dx == 1 && dy == 0:
		return Right, true
	}
	return 0, false
}

// ParseDirection accepts the lowercase wire names.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(directionNames[d]), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
