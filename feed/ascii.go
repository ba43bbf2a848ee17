package feed

import (
	"strings"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/system"
)

// Map legend for RenderASCII
const (
	glyphObjective = '#'
	glyphBarrier   = '='
	glyphEnemy     = 'e'
	glyphWorker    = 'w'
	glyphCorpse    = 'x'
)

// RenderASCII draws the battlefield as text, top row first
// Every stride x stride block of cells becomes one character, sampled at its bottom-left cell
func RenderASCII(b *system.Battlefield, stride int) string {
	if stride < 1 {
		stride = 1
	}
	nav := b.Navigator()
	grid := nav.Grid()
	nav.EnsureBuilt()

	side := grid.Side()
	cols := (side + stride - 1) / stride
	rows := cols
	canvas := make([][]byte, rows)
	for r := range canvas {
		canvas[r] = make([]byte, cols)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := grid.CellAt(core.Point{X: c * stride, Y: r * stride})
			ch := fieldGlyph(cell.Dir)
			if cell.Occupied() {
				ch = glyphObjective
				if s, ok := nav.Structure(cell.Occupant); ok && s.Kind == navigation.KindBarrier {
					ch = glyphBarrier
				}
			}
			canvas[r][c] = ch
		}
	}

	plot := func(pos core.Vec2, ch byte) {
		p := grid.ToCell(pos)
		canvas[p.Y/stride][p.X/stride] = ch
	}
	for _, c := range b.Corpses() {
		plot(c.Pos, glyphCorpse)
	}
	for _, w := range b.Workforce().Workers() {
		plot(w.Pos, glyphWorker)
	}
	for _, e := range b.Horde().Enemies() {
		plot(e.Pos, glyphEnemy)
	}

	var sb strings.Builder
	sb.Grow(rows * (cols + 1))
	for r := rows - 1; r >= 0; r-- {
		sb.Write(canvas[r])
		sb.WriteByte('\n')
	}
	return sb.String()
}
