package maze

import (
	"math/rand/v2"

	"github.com/lixenwraith/holdout/core"
)

// Node types
const (
	Wall    = true
	Passage = false
)

type node struct {
	x, y int
}

// Config describes a barrier maze laid over a square cell grid
type Config struct {
	Side  int // Grid side in cells
	Scale int // Cells per maze node along each axis

	// Braiding: 0.0 (perfect maze, one route between rooms) to 1.0 (no dead ends)
	// Plaza and pillar constraints take precedence
	Braiding float64

	Seed uint64

	// Keep lists footprints the maze leaves clear, each grown by Margin cells
	Keep   []core.Area
	Margin int
}

// Result holds the node grid; Nodes[y][x] is Wall or Passage
type Result struct {
	Nodes      [][]bool
	Cols, Rows int
	Scale      int
	Side       int
}

// Generate carves a maze over the node grid and opens its border so every passage is
// reachable from the grid edge. Nodes touching a Keep footprint are forced open.
func Generate(cfg Config) Result {
	scale := max(cfg.Scale, 1)
	cols := ensureOdd(cfg.Side / scale)
	rows := cols

	nodes := make([][]bool, rows)
	for y := range nodes {
		nodes[y] = make([]bool, cols)
		for x := range nodes[y] {
			nodes[y][x] = Wall
		}
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5851f42d4c957f2d))

	recursiveBacktracker(nodes, node{(cols / 2) | 1, (rows / 2) | 1}, rng)

	// Border goes first so braiding sees the outside connections
	stripBorders(nodes)

	if cfg.Braiding > 0 {
		applySmartBraiding(nodes, cfg.Braiding, rng)
	}

	res := Result{Nodes: nodes, Cols: cols, Rows: rows, Scale: scale, Side: cfg.Side}
	for _, k := range cfg.Keep {
		grown := core.Area{
			X:      k.X - cfg.Margin,
			Y:      k.Y - cfg.Margin,
			Width:  k.Width + 2*cfg.Margin,
			Height: k.Height + 2*cfg.Margin,
		}
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if res.nodeArea(x, y).Overlaps(grown) {
					nodes[y][x] = Passage
				}
			}
		}
	}
	return res
}

func (r Result) nodeArea(x, y int) core.Area {
	return core.Area{X: x * r.Scale, Y: y * r.Scale, Width: r.Scale, Height: r.Scale}
}

// Barriers merges horizontal wall runs into footprints, bottom row first
// Footprints are clipped to the grid side
func (r Result) Barriers() []core.Area {
	var out []core.Area
	for y := 0; y < r.Rows; y++ {
		if y*r.Scale >= r.Side {
			break
		}
		for x := 0; x < r.Cols; {
			if r.Nodes[y][x] == Passage {
				x++
				continue
			}
			start := x
			for x < r.Cols && r.Nodes[y][x] == Wall {
				x++
			}
			a := core.Area{
				X:      start * r.Scale,
				Y:      y * r.Scale,
				Width:  min(x*r.Scale, r.Side) - start*r.Scale,
				Height: min(r.Scale, r.Side-y*r.Scale),
			}
			if !a.Empty() {
				out = append(out, a)
			}
		}
	}
	return out
}

// Barriers is a shorthand for Generate(cfg).Barriers()
func Barriers(cfg Config) []core.Area {
	return Generate(cfg).Barriers()
}

// --- Core Algorithms ---

// recursiveBacktracker carves a uniform spanning tree over the odd nodes
func recursiveBacktracker(nodes [][]bool, start node, rng *rand.Rand) {
	rows, cols := len(nodes), len(nodes[0])
	if start.x <= 0 || start.x >= cols-1 || start.y <= 0 || start.y >= rows-1 {
		start = node{1, 1}
	}

	stack := []node{start}
	nodes[start.y][start.x] = Passage

	jumps := [4]node{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}
	candidates := make([]node, 0, 4)

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates = candidates[:0]

		for _, d := range jumps {
			nx, ny := curr.x+d.x, curr.y+d.y
			if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 && nodes[ny][nx] == Wall {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		d := candidates[rng.IntN(len(candidates))]
		nodes[curr.y+d.y/2][curr.x+d.x/2] = Passage
		next := node{curr.x + d.x, curr.y + d.y}
		nodes[next.y][next.x] = Passage
		stack = append(stack, next)
	}
}

// applySmartBraiding opens one wall next to a dead end with the given probability
func applySmartBraiding(nodes [][]bool, probability float64, rng *rand.Rand) {
	rows, cols := len(nodes), len(nodes[0])
	steps := [4]node{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	candidates := make([]node, 0, 4)

	for y := 1; y < rows-1; y += 2 {
		for x := 1; x < cols-1; x += 2 {
			if nodes[y][x] == Wall {
				continue
			}

			exits := 0
			for _, d := range steps {
				if nodes[y+d.y][x+d.x] == Passage {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			candidates = candidates[:0]
			for _, d := range steps {
				nx, ny := x+2*d.x, y+2*d.y
				wx, wy := x+d.x, y+d.y
				if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
					continue
				}
				if nodes[ny][nx] == Passage && nodes[wy][wx] == Wall && canSafelyRemoveWall(nodes, wx, wy) {
					candidates = append(candidates, node{wx, wy})
				}
			}
			if len(candidates) > 0 {
				c := candidates[rng.IntN(len(candidates))]
				nodes[c.y][c.x] = Passage
			}
		}
	}
}

// canSafelyRemoveWall rejects openings that would create a 2x2 plaza or leave an isolated pillar
func canSafelyRemoveWall(nodes [][]bool, x, y int) bool {
	rows, cols := len(nodes), len(nodes[0])
	inside := func(tx, ty int) bool { return tx >= 0 && tx < cols && ty >= 0 && ty < rows }
	open := func(tx, ty int) bool { return inside(tx, ty) && nodes[ty][tx] == Passage }

	// Each quadrant around (x,y)
	for _, q := range [4]node{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		if open(x+q.x, y) && open(x, y+q.y) && open(x+q.x, y+q.y) {
			return false
		}
	}

	steps := [4]node{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	for _, d := range steps {
		nx, ny := x+d.x, y+d.y
		if !inside(nx, ny) || nodes[ny][nx] != Wall {
			continue
		}
		links := 0
		for _, d2 := range steps {
			ax, ay := nx+d2.x, ny+d2.y
			if ax == x && ay == y {
				continue
			}
			if inside(ax, ay) && nodes[ay][ax] == Wall {
				links++
			}
		}
		if links == 0 {
			return false
		}
	}
	return true
}

func stripBorders(nodes [][]bool) {
	rows, cols := len(nodes), len(nodes[0])
	for x := 0; x < cols; x++ {
		nodes[0][x] = Passage
		nodes[rows-1][x] = Passage
	}
	for y := 0; y < rows; y++ {
		nodes[y][0] = Passage
		nodes[y][cols-1] = Passage
	}
}

// ensureOdd rounds down to an odd node count of at least 3
func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}
