package core

// Area represents a rectangular footprint anchored at its bottom-left cell
type Area struct {
	X, Y          int // Bottom-left corner (col, row)
	Width, Height int // Dimensions in cells (minimum 1x1)
}

// PointArea returns a 1x1 area covering p
func PointArea(p Point) Area {
	return Area{X: p.X, Y: p.Y, Width: 1, Height: 1}
}

// Right returns the exclusive right column
func (a Area) Right() int { return a.X + a.Width }

// Top returns the exclusive top row
func (a Area) Top() int { return a.Y + a.Height }

// Contains reports whether p lies inside the footprint
func (a Area) Contains(p Point) bool {
	return p.X >= a.X && p.X < a.X+a.Width && p.Y >= a.Y && p.Y < a.Y+a.Height
}

// Overlaps reports whether two footprints share at least one cell
func (a Area) Overlaps(b Area) bool {
	return a.X < b.Right() && b.X < a.Right() && a.Y < b.Top() && b.Y < a.Top()
}

// Empty is true for degenerate footprints
func (a Area) Empty() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Cells calls fn for every cell of the footprint, row by row from the bottom
func (a Area) Cells(fn func(p Point)) {
	for y := a.Y; y < a.Top(); y++ {
		for x := a.X; x < a.Right(); x++ {
			fn(Point{X: x, Y: y})
		}
	}
}

// Clamp returns the footprint cell closest to p
func (a Area) Clamp(p Point) Point {
	return Point{
		X: min(max(p.X, a.X), a.Right()-1),
		Y: min(max(p.Y, a.Y), a.Top()-1),
	}
}
