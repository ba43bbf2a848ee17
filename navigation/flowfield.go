package navigation

import (
	"sort"

	"github.com/lixenwraith/holdout/core"
)

// FieldStats summarizes one flow field build
type FieldStats struct {
	Seeds   int // Perimeter cells that started propagation
	Reached int // Walkable cells holding a direction, seeds included
	MaxRing int // Deepest breadth-first ring assigned
}

// FlowFieldBuilder fills grid cells with directions leading toward the nearest objective
// The queue buffer is reused across builds
type FlowFieldBuilder struct {
	queue []core.Point
}

// Build runs a full multi-source breadth-first propagation over g
//
// Seeds are the edge-adjacent perimeter cells of every objective, visited by ascending id
// and within a structure left, bottom, right, top. Each seed points into its structure.
// Neighbors expand in up, left, right, down order; the first discovery wins and points
// back at the cell that discovered it. Cells never reached keep DirNone.
func (b *FlowFieldBuilder) Build(g *GridMap, structures []*Structure) FieldStats {
	g.resetField()

	ordered := make([]*Structure, 0, len(structures))
	for _, s := range structures {
		if s != nil && s.Kind == KindObjective {
			ordered = append(ordered, s)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	b.queue = b.queue[:0]
	var stats FieldStats

	seed := func(p core.Point, d Direction) {
		if !g.Walkable(p) || g.CellAt(p).Dir != DirNone {
			return
		}
		g.setField(p, d, 0)
		b.queue = append(b.queue, p)
		stats.Seeds++
	}

	for _, s := range ordered {
		a := s.Area
		for y := a.Y; y < a.Top(); y++ {
			seed(core.Point{X: a.X - 1, Y: y}, DirRight)
		}
		for x := a.X; x < a.Right(); x++ {
			seed(core.Point{X: x, Y: a.Y - 1}, DirUp)
		}
		for y := a.Y; y < a.Top(); y++ {
			seed(core.Point{X: a.Right(), Y: y}, DirLeft)
		}
		for x := a.X; x < a.Right(); x++ {
			seed(core.Point{X: x, Y: a.Top()}, DirDown)
		}
	}

	// FIFO over the slice; head advances instead of reslicing the front
	for head := 0; head < len(b.queue); head++ {
		cur := b.queue[head]
		depth := g.CellAt(cur).Depth
		stats.Reached++
		if depth > stats.MaxRing {
			stats.MaxRing = depth
		}

		for d := Direction(0); d < DirCount; d++ {
			n := d.Step(cur)
			if !g.Walkable(n) || g.CellAt(n).Dir != DirNone {
				continue
			}
			g.setField(n, DirOpposite[d], depth+1)
			b.queue = append(b.queue, n)
		}
	}

	return stats
}
