package feed

import (
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/system"
)

// Structure is the wire form of a placed structure
type Structure struct {
	ID        uint32  `json:"id"`
	Kind      string  `json:"kind" jsonschema:"enum=objective,enum=barrier"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
}

// Entity is the wire form of an enemy or worker
type Entity struct {
	ID     uint64  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Facing float64 `json:"facing" jsonschema:"description=radians clockwise from facing down"`
	Mode   string  `json:"mode" jsonschema:"enum=field,enum=search"`
	State  string  `json:"state,omitempty"`
	Health float64 `json:"health"`
	Size   float64 `json:"size,omitempty"`
}

// Corpse is an uncollected enemy body
type Corpse struct {
	ID uint64  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Snapshot is one broadcast frame of the battlefield
type Snapshot struct {
	Tick       uint64             `json:"tick"`
	Elapsed    float64            `json:"elapsed"`
	Extent     float64            `json:"extent"`
	CellSize   float64            `json:"cellSize"`
	Side       int                `json:"side"`
	BaseHealth float64            `json:"baseHealth"`
	Queued     int                `json:"queued"`
	Structures []Structure        `json:"structures"`
	Enemies    []Entity           `json:"enemies"`
	Workers    []Entity           `json:"workers"`
	Corpses    []Corpse           `json:"corpses"`
	Stats      map[string]float64 `json:"stats"`
	// Field holds one glyph per cell, bottom row first, when requested
	Field string `json:"field,omitempty"`
}

// Capture copies the battlefield state; the result shares no memory with it
// Must run on the simulation goroutine
func Capture(b *system.Battlefield, withField bool) Snapshot {
	nav := b.Navigator()
	grid := nav.Grid()

	s := Snapshot{
		Tick:       b.TickCount(),
		Elapsed:    b.Elapsed(),
		Extent:     grid.Extent(),
		CellSize:   grid.CellSize(),
		Side:       grid.Side(),
		BaseHealth: b.BaseHealth(),
		Queued:     b.Workforce().Queued(),
		Stats:      b.Registry().Values(),
	}

	for _, st := range nav.Structures() {
		s.Structures = append(s.Structures, Structure{
			ID:        uint32(st.ID),
			Kind:      st.Kind.String(),
			X:         st.Area.X,
			Y:         st.Area.Y,
			Width:     st.Area.Width,
			Height:    st.Area.Height,
			Health:    st.Health,
			MaxHealth: st.MaxHealth,
		})
	}
	for _, e := range b.Horde().Enemies() {
		s.Enemies = append(s.Enemies, Entity{
			ID:     e.ID,
			X:      e.Pos.X,
			Y:      e.Pos.Y,
			Facing: e.Facing,
			Mode:   e.Mode.String(),
			Health: e.Health,
			Size:   e.Size,
		})
	}
	for _, w := range b.Workforce().Workers() {
		s.Workers = append(s.Workers, Entity{
			ID:     w.ID,
			X:      w.Pos.X,
			Y:      w.Pos.Y,
			Facing: w.Facing,
			Mode:   w.Mode.String(),
			State:  w.State.String(),
			Health: w.Health,
		})
	}
	for _, c := range b.Corpses() {
		s.Corpses = append(s.Corpses, Corpse{ID: c.ID, X: c.Pos.X, Y: c.Pos.Y})
	}

	if withField {
		nav.EnsureBuilt()
		dirs := grid.Directions()
		buf := make([]byte, len(dirs))
		for i, d := range dirs {
			buf[i] = fieldGlyph(d)
		}
		s.Field = string(buf)
	}
	return s
}

// Field glyphs, ASCII so one cell is one byte
var dirGlyphs = [navigation.DirCount]byte{'^', '<', '>', 'v'}

func fieldGlyph(d navigation.Direction) byte {
	if !d.Valid() {
		return '.'
	}
	return dirGlyphs[d]
}
