package navigation

import (
	"math"

	"github.com/pkg/errors"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/parameter"
)

// Placement errors
var (
	ErrInvalidStructure     = errors.New("invalid structure")
	ErrPlacementOutOfBounds = errors.New("structure footprint out of bounds")
	ErrPlacementOverlap     = errors.New("structure footprint overlaps occupied cell")
	ErrDuplicateStructure   = errors.New("structure id already placed")
)

// StructureID identifies a placed structure, 0 means no structure
type StructureID uint32

// StructureKind selects whether a structure attracts the flow field
type StructureKind uint8

const (
	// KindObjective seeds the flow field; enemies converge on it
	KindObjective StructureKind = iota
	// KindBarrier blocks movement without attracting anything
	KindBarrier
)

func (k StructureKind) String() string {
	if k == KindBarrier {
		return "barrier"
	}
	return "objective"
}

// Structure is a placed rectangular footprint with health
type Structure struct {
	ID        StructureID
	Kind      StructureKind
	Area      core.Area
	Health    float64
	MaxHealth float64
}

// Cell is one quantized grid square
type Cell struct {
	Occupant StructureID // 0 if walkable
	Dir      Direction   // DirNone if occupied or unreached
	Depth    int         // Breadth-first ring from the nearest perimeter seed, -1 if unreached
}

// Occupied reports whether a structure covers the cell
func (c Cell) Occupied() bool {
	return c.Occupant != 0
}

// GridMap owns the discretized battlefield
type GridMap struct {
	extent   float64
	cellSize float64
	side     int
	cells    []Cell // Flat grid, index row*side + col
}

// NewGridMap allocates an empty grid covering [-extent, extent] and marks every initial footprint
func NewGridMap(extent, cellSize float64, structures []Structure) (*GridMap, error) {
	if extent <= 0 || cellSize <= 0 {
		return nil, errors.Errorf("invalid grid geometry: extent %v, cell size %v", extent, cellSize)
	}
	side := parameter.GridSide(extent, cellSize)
	g := &GridMap{
		extent:   extent,
		cellSize: cellSize,
		side:     side,
		cells:    make([]Cell, side*side),
	}
	g.resetField()

	for _, s := range structures {
		if err := g.place(s); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Side returns the number of cells per axis
func (g *GridMap) Side() int { return g.side }

// CellSize returns the world units per cell
func (g *GridMap) CellSize() float64 { return g.cellSize }

// Extent returns the world half-size
func (g *GridMap) Extent() float64 { return g.extent }

// InBounds reports whether p addresses a cell
func (g *GridMap) InBounds(p core.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.side && p.Y < g.side
}

// CellAt returns the cell at p; p must be in bounds
func (g *GridMap) CellAt(p core.Point) Cell {
	return g.cells[p.Y*g.side+p.X]
}

// Walkable reports whether p is in bounds and unoccupied
func (g *GridMap) Walkable(p core.Point) bool {
	return g.InBounds(p) && g.cells[p.Y*g.side+p.X].Occupant == 0
}

// ToCell maps a world position to its cell, clamping to the nearest edge cell
func (g *GridMap) ToCell(pos core.Vec2) core.Point {
	return core.Point{X: g.toIndex(pos.X), Y: g.toIndex(pos.Y)}
}

func (g *GridMap) toIndex(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	f := math.Floor((v + g.extent) / g.cellSize)
	if f < 0 {
		return 0
	}
	if f >= float64(g.side) {
		return g.side - 1
	}
	return int(f)
}

// ToWorld returns the world-space center of a cell
func (g *GridMap) ToWorld(p core.Point) core.Vec2 {
	half := g.cellSize / 2
	return core.Vec2{
		X: float64(p.X)*g.cellSize - g.extent + half,
		Y: float64(p.Y)*g.cellSize - g.extent + half,
	}
}

// ClampWorld pins a world position inside [-extent, extent]
func (g *GridMap) ClampWorld(pos core.Vec2) core.Vec2 {
	return core.Vec2{
		X: min(max(pos.X, -g.extent), g.extent),
		Y: min(max(pos.Y, -g.extent), g.extent),
	}
}

// CanPlace validates a footprint against bounds and existing occupancy
func (g *GridMap) CanPlace(a core.Area) error {
	if a.Empty() {
		return errors.Wrapf(ErrInvalidStructure, "footprint %dx%d", a.Width, a.Height)
	}
	if a.X < 0 || a.Y < 0 || a.Right() > g.side || a.Top() > g.side {
		return errors.Wrapf(ErrPlacementOutOfBounds, "footprint (%d,%d) %dx%d on %d grid", a.X, a.Y, a.Width, a.Height, g.side)
	}
	for y := a.Y; y < a.Top(); y++ {
		for x := a.X; x < a.Right(); x++ {
			if occ := g.cells[y*g.side+x].Occupant; occ != 0 {
				return errors.Wrapf(ErrPlacementOverlap, "cell (%d,%d) held by structure %d", x, y, occ)
			}
		}
	}
	return nil
}

// place marks a structure footprint as occupied; nothing is written on failure
// Only NewGridMap and Navigator mutate occupancy so the field cache sees every change
func (g *GridMap) place(s Structure) error {
	if s.ID == 0 {
		return errors.Wrap(ErrInvalidStructure, "structure id 0 is reserved")
	}
	if err := g.CanPlace(s.Area); err != nil {
		return errors.WithMessagef(err, "place structure %d", s.ID)
	}
	s.Area.Cells(func(p core.Point) {
		c := &g.cells[p.Y*g.side+p.X]
		c.Occupant = s.ID
		c.Dir = DirNone
		c.Depth = -1
	})
	return nil
}

// clear releases every cell of the footprint held by id, returns cleared cell count
func (g *GridMap) clear(id StructureID, a core.Area) int {
	cleared := 0
	a.Cells(func(p core.Point) {
		if !g.InBounds(p) {
			return
		}
		c := &g.cells[p.Y*g.side+p.X]
		if c.Occupant == id {
			c.Occupant = 0
			cleared++
		}
	})
	return cleared
}

// resetField drops every propagated direction
func (g *GridMap) resetField() {
	for i := range g.cells {
		g.cells[i].Dir = DirNone
		g.cells[i].Depth = -1
	}
}

// setField assigns a direction and ring to a walkable cell
func (g *GridMap) setField(p core.Point, d Direction, depth int) {
	c := &g.cells[p.Y*g.side+p.X]
	c.Dir = d
	c.Depth = depth
}

// Directions returns a copy of the per-cell direction layer
func (g *GridMap) Directions() []Direction {
	out := make([]Direction, len(g.cells))
	for i, c := range g.cells {
		out[i] = c.Dir
	}
	return out
}
