package navigation

import (
	"math"

	"github.com/lixenwraith/holdout/core"
)

// Direction is a cardinal flow direction stored per cell
type Direction int8

// Direction constants, declaration order is the neighbor tie-break order
const (
	DirNone  Direction = -1 // Occupied, unreachable or not yet built
	DirUp    Direction = 0
	DirLeft  Direction = 1
	DirRight Direction = 2
	DirDown  Direction = 3
	DirCount Direction = 4
)

// DirVectors holds (dx, dy) per direction, Up is row+1 (world +Y)
var DirVectors = [DirCount][2]int{
	{0, 1}, {-1, 0}, {1, 0}, {0, -1},
}

// DirOpposite maps a direction to its reverse
var DirOpposite = [DirCount]Direction{
	DirDown, DirRight, DirLeft, DirUp,
}

var dirNames = [DirCount]string{"up", "left", "right", "down"}

func (d Direction) String() string {
	if d < 0 || d >= DirCount {
		return "none"
	}
	return dirNames[d]
}

// Valid is true for the four cardinals
func (d Direction) Valid() bool {
	return d >= 0 && d < DirCount
}

// Step returns the neighbor of p in direction d
func (d Direction) Step(p core.Point) core.Point {
	return p.Add(DirVectors[d][0], DirVectors[d][1])
}

// Unit returns the world-space unit vector of d
func (d Direction) Unit() core.Vec2 {
	if !d.Valid() {
		return core.Vec2{}
	}
	return core.Vec2{X: float64(DirVectors[d][0]), Y: float64(DirVectors[d][1])}
}

// Facing angles in radians; 0 faces down and angles grow clockwise through left, up, right
const (
	FacingDown      = 0.0
	FacingDownLeft  = math.Pi / 4
	FacingLeft      = math.Pi / 2
	FacingUpLeft    = 3 * math.Pi / 4
	FacingUp        = math.Pi
	FacingUpRight   = 5 * math.Pi / 4
	FacingRight     = 3 * math.Pi / 2
	FacingDownRight = 7 * math.Pi / 4
)

var dirFacing = [DirCount]float64{FacingUp, FacingLeft, FacingRight, FacingDown}

// Facing returns the fixed angle for a cardinal direction
func (d Direction) Facing() float64 {
	if !d.Valid() {
		return FacingDown
	}
	return dirFacing[d]
}

// FacingToward maps the step from one cell to the next onto one of eight fixed angles
// A zero step keeps the current facing
func FacingToward(from, to core.Point, current float64) float64 {
	dx := to.X - from.X
	dy := to.Y - from.Y
	switch {
	case dx > 0 && dy > 0:
		return FacingUpRight
	case dx > 0 && dy < 0:
		return FacingDownRight
	case dx > 0:
		return FacingRight
	case dx < 0 && dy > 0:
		return FacingUpLeft
	case dx < 0 && dy < 0:
		return FacingDownLeft
	case dx < 0:
		return FacingLeft
	case dy > 0:
		return FacingUp
	case dy < 0:
		return FacingDown
	}
	return current
}

// FreeFacing returns the continuous angle from one world point toward another
// using the same zero-faces-down convention as the fixed angles
func FreeFacing(from, to core.Vec2) float64 {
	d := to.Sub(from)
	if d.X == 0 && d.Y == 0 {
		return FacingDown
	}
	// atan2 is counter-clockwise from +X; mirror it and rotate so -Y is zero
	a := math.Mod(-math.Atan2(d.Y, d.X)-math.Pi/2, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
