package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/system"
)

// Indexed by navigation.Direction; screen rows grow downward so DirUp is drawn as ↑
var fieldArrows = [navigation.DirCount]rune{'↑', '←', '→', '↓'}

var (
	styleBase      = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleUnreached = styleBase.Foreground(tcell.NewRGBColor(60, 60, 60))
	styleObjective = styleBase.Foreground(tcell.NewRGBColor(255, 200, 0)).Bold(true)
	styleBarrier   = styleBase.Foreground(tcell.NewRGBColor(140, 140, 140))
	styleEnemy     = styleBase.Foreground(tcell.NewRGBColor(255, 60, 60)).Bold(true)
	styleWorker    = styleBase.Foreground(tcell.NewRGBColor(80, 255, 120)).Bold(true)
	styleCorpse    = styleBase.Foreground(tcell.NewRGBColor(150, 110, 90))
	styleStatus    = tcell.StyleDefault.Background(tcell.NewRGBColor(30, 30, 60)).Foreground(tcell.ColorWhite)
)

// viewport maps grid cells onto screen cells, one screen cell per stride x stride block
// Grid row 0 is the bottom of the world and is drawn on the last map row
type viewport struct {
	side   int
	stride int
	cols   int
	rows   int
}

func newViewport(side, width, height int) viewport {
	rows := height - 1 // Status line
	if width < 1 {
		width = 1
	}
	if rows < 1 {
		rows = 1
	}
	stride := max((side+width-1)/width, (side+rows-1)/rows, 1)
	return viewport{side: side, stride: stride, cols: width, rows: rows}
}

// cellAt returns the grid cell sampled for screen position (sx, sy)
func (v viewport) cellAt(sx, sy int) (core.Point, bool) {
	p := core.Point{X: sx * v.stride, Y: v.side - 1 - sy*v.stride}
	if p.X >= v.side || p.Y < 0 {
		return p, false
	}
	return p, true
}

// screenOf is the inverse of cellAt for any cell inside the block
func (v viewport) screenOf(p core.Point) (int, int) {
	return p.X / v.stride, (v.side - 1 - p.Y) / v.stride
}

type drawOptions struct {
	showField bool
	paused    bool
	speed     int
	message   string
}

// drawFrame paints the battlefield and the status line; the caller calls Show
func drawFrame(s tcell.Screen, b *system.Battlefield, opts drawOptions) {
	s.Clear()
	width, height := s.Size()
	nav := b.Navigator()
	grid := nav.Grid()
	vp := newViewport(grid.Side(), width, height)

	barriers := make(map[navigation.StructureID]bool)
	for _, st := range nav.Structures() {
		if st.Kind == navigation.KindBarrier {
			barriers[st.ID] = true
		}
	}

	maxRing := nav.FieldStats().MaxRing
	if maxRing <= 0 {
		maxRing = 1
	}

	for sy := 0; sy < vp.rows; sy++ {
		for sx := 0; sx < vp.cols; sx++ {
			p, ok := vp.cellAt(sx, sy)
			if !ok {
				continue
			}
			c := grid.CellAt(p)
			switch {
			case c.Occupied() && barriers[c.Occupant]:
				s.SetContent(sx, sy, '=', nil, styleBarrier)
			case c.Occupied():
				s.SetContent(sx, sy, '#', nil, styleObjective)
			case !opts.showField:
			case c.Dir == navigation.DirNone:
				s.SetContent(sx, sy, '·', nil, styleUnreached)
			default:
				s.SetContent(sx, sy, fieldArrows[c.Dir], nil, depthStyle(c.Depth, maxRing))
			}
		}
	}

	plot := func(pos core.Vec2, r rune, style tcell.Style) {
		sx, sy := vp.screenOf(nav.WorldToGrid(pos))
		if sx < vp.cols && sy < vp.rows {
			s.SetContent(sx, sy, r, nil, style)
		}
	}
	for _, c := range b.Corpses() {
		plot(c.Pos, 'x', styleCorpse)
	}
	for _, w := range b.Workforce().Workers() {
		plot(w.Pos, 'w', styleWorker)
	}
	for _, e := range b.Horde().Enemies() {
		plot(e.Pos, 'e', styleEnemy)
	}

	drawStatus(s, b, opts, width, height-1)
}

// depthStyle fades from bright cyan next to a structure to dim blue at the deepest ring
func depthStyle(depth, maxRing int) tcell.Style {
	t := 1.0 - float64(depth)/float64(maxRing)
	if t < 0 {
		t = 0
	}
	return styleBase.Foreground(tcell.NewRGBColor(
		int32(40+t*60),
		int32(80+t*175),
		int32(120+t*135),
	))
}

func statusLine(b *system.Battlefield, opts drawOptions) string {
	state := "running"
	if opts.paused {
		state = "paused"
	}
	line := fmt.Sprintf(" tick %d  base %.0f  enemies %d  workers %d  corpses %d  queued %d  x%d  %s ",
		b.TickCount(), b.BaseHealth(), b.Horde().Len(), len(b.Workforce().Workers()),
		len(b.Corpses()), b.Workforce().Queued(), opts.speed, state)
	if opts.message != "" {
		line += "| " + opts.message + " "
	}
	return line
}

func drawStatus(s tcell.Screen, b *system.Battlefield, opts drawOptions, width, y int) {
	if y < 0 {
		return
	}
	line := []rune(statusLine(b, opts))
	for x := 0; x < width; x++ {
		r := ' '
		if x < len(line) {
			r = line[x]
		}
		s.SetContent(x, y, r, nil, styleStatus)
	}
}
