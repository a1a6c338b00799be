// Package grid provides the integer tile geometry shared by the spell
// interpreter and the world: positions, unit directions, and the spatial
// queries (beam trace, ring outline, grid line walk) that Form
// instructions and movement translation are built on.
package grid

import "fmt"

// Position identifies a single tile by its integer coordinates. It is a
// plain value: compare with ==, copy freely, use as a map key.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Shift returns the tile one step away in the given direction.
func (p Position) Shift(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a unit step between adjacent tiles. Diagonal steps move on
// both axes at once.
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	North = Direction{DX: 0, DY: 1}
	South = Direction{DX: 0, DY: -1}
	East  = Direction{DX: 1, DY: 0}
	West  = Direction{DX: -1, DY: 0}

	NorthEast = Direction{DX: 1, DY: 1}
	NorthWest = Direction{DX: -1, DY: 1}
	SouthEast = Direction{DX: 1, DY: -1}
	SouthWest = Direction{DX: -1, DY: -1}
)

// Zero reports whether the direction carries no movement.
func (d Direction) Zero() bool {
	return d.DX == 0 && d.DY == 0
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	case NorthEast:
		return "northeast"
	case NorthWest:
		return "northwest"
	case SouthEast:
		return "southeast"
	case SouthWest:
		return "southwest"
	}
	return fmt.Sprintf("(%+d,%+d)", d.DX, d.DY)
}

// CrossSteps lists the four cardinal steps in the sweep order used when a
// Form grows the target set around a tile: up, right, down, left.
func CrossSteps() [4]Direction {
	return [4]Direction{North, East, South, West}
}

// CardinalBeams lists the four cardinal beam directions in firing order:
// north, south, east, west.
func CardinalBeams() [4]Direction {
	return [4]Direction{North, South, East, West}
}

// DiagonalBeams lists the four diagonal beam directions in firing order:
// northeast, northwest, southeast, southwest.
func DiagonalBeams() [4]Direction {
	return [4]Direction{NorthEast, NorthWest, SouthEast, SouthWest}
}
