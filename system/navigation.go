package system

import (
	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/parameter"
)

// NavigationMode tags how a mover picks its next displacement
type NavigationMode uint8

const (
	// ModeField follows the shared flow field toward the nearest objective
	ModeField NavigationMode = iota
	// ModeSearch replays a precomputed waypoint path
	ModeSearch
)

func (m NavigationMode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "field"
}

// StepKind is the outcome of one movement step
type StepKind uint8

const (
	StepMoved   StepKind = iota
	StepStalled          // No direction under the mover: unreachable pocket or blocked cell
	StepReached          // Mover stands on an objective footprint
	StepArrived          // Path exhausted
)

func (k StepKind) String() string {
	switch k {
	case StepStalled:
		return "stalled"
	case StepReached:
		return "reached"
	case StepArrived:
		return "arrived"
	}
	return "moved"
}

// StepResult reports a step outcome; Structure is set for StepReached
type StepResult struct {
	Kind      StepKind
	Dir       navigation.Direction
	Structure navigation.StructureID
}

// Mover is the navigation state shared by enemies and workers
type Mover struct {
	ID     uint64
	Pos    core.Vec2
	Speed  float64 // World units per second
	Facing float64 // Radians, see navigation.Facing*
	Mode   NavigationMode

	// ModeSearch state
	Path        []core.Point
	PathElapsed float64
}

// SetPath switches the mover to ModeSearch and restarts playback
func (m *Mover) SetPath(path []core.Point) {
	m.Mode = ModeSearch
	m.Path = path
	m.PathElapsed = 0
}

// PathIndex returns the waypoint index the mover currently occupies, within [0, len(Path)]
// Non-positive or NaN progress stays on the first waypoint
func (m *Mover) PathIndex(cellSize float64) int {
	f := m.PathElapsed * m.Speed / cellSize
	switch {
	case !(f > 0):
		return 0
	case f >= float64(len(m.Path)):
		return len(m.Path)
	}
	return int(f)
}

// LUT of world displacement unit vectors per field direction
var flowDirLUT [navigation.DirCount]core.Vec2

func init() {
	for d := navigation.Direction(0); d < navigation.DirCount; d++ {
		flowDirLUT[d] = d.Unit()
	}
}

// MovementController advances movers from the flow field or their paths
// It reads the navigator; the only grid mutation it can trigger is a lazy field rebuild
type MovementController struct {
	nav     *navigation.Navigator
	maxStep float64
}

// NewMovementController binds a controller to the shared navigator
func NewMovementController(nav *navigation.Navigator) *MovementController {
	return &MovementController{
		nav:     nav,
		maxStep: nav.Grid().CellSize() * parameter.NavMaxStepCells,
	}
}

// Name returns system's name
func (c *MovementController) Name() string {
	return "navigation"
}

// Step advances m by dt seconds
func (c *MovementController) Step(m *Mover, dt float64) StepResult {
	if m.Mode == ModeSearch {
		return c.stepPath(m, dt)
	}
	return c.stepField(m, dt)
}

func (c *MovementController) stepField(m *Mover, dt float64) StepResult {
	if id, ok := c.nav.QueryObjectiveReached(m.Pos); ok {
		return StepResult{Kind: StepReached, Dir: navigation.DirNone, Structure: id}
	}
	dir, ok := c.nav.QueryDirection(m.Pos)
	if !ok {
		return StepResult{Kind: StepStalled, Dir: navigation.DirNone}
	}

	dist := m.Speed * dt
	if dist < 0 {
		dist = 0
	}
	// No sub-stepping: capping at one cell keeps every crossed cell observed
	if dist > c.maxStep {
		dist = c.maxStep
	}
	m.Pos = c.nav.Grid().ClampWorld(m.Pos.Add(flowDirLUT[dir].Scale(dist)))
	m.Facing = dir.Facing()
	return StepResult{Kind: StepMoved, Dir: dir}
}

func (c *MovementController) stepPath(m *Mover, dt float64) StepResult {
	grid := c.nav.Grid()
	if len(m.Path) == 0 {
		return StepResult{Kind: StepArrived, Dir: navigation.DirNone}
	}
	if dt > 0 {
		m.PathElapsed += dt
	}
	idx := m.PathIndex(grid.CellSize())
	if idx >= len(m.Path) {
		m.Pos = grid.ToWorld(m.Path[len(m.Path)-1])
		return StepResult{Kind: StepArrived, Dir: navigation.DirNone}
	}
	m.Pos = grid.ToWorld(m.Path[idx])
	if idx+1 < len(m.Path) {
		m.Facing = navigation.FacingToward(m.Path[idx], m.Path[idx+1], m.Facing)
	}
	return StepResult{Kind: StepMoved, Dir: navigation.DirNone}
}
