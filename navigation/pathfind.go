package navigation

import (
	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/parameter"
)

// Heuristic selects the A* distance estimate
type Heuristic uint8

const (
	// HeuristicChebyshev is exact on an open 8-connected unit-cost grid
	HeuristicChebyshev Heuristic = iota
	// HeuristicLegacy is Manhattan distance divided by three
	HeuristicLegacy
)

// ParseHeuristic maps a config name onto a Heuristic, ok is false for unknown names
func ParseHeuristic(name string) (Heuristic, bool) {
	switch name {
	case "", "chebyshev":
		return HeuristicChebyshev, true
	case "legacy", "manhattan3":
		return HeuristicLegacy, true
	}
	return HeuristicChebyshev, false
}

func (h Heuristic) String() string {
	if h == HeuristicLegacy {
		return "legacy"
	}
	return "chebyshev"
}

// searchDirs is the 8-neighbor expansion order: cardinals first, then diagonals
var searchDirs = [8][2]int{
	{0, 1}, {-1, 0}, {1, 0}, {0, -1},
	{-1, 1}, {1, 1}, {-1, -1}, {1, -1},
}

// PathFinder runs A* over a GridMap; buffers are reused between queries
type PathFinder struct {
	Heuristic     Heuristic
	MaxExpansions int // 0 disables the cap

	gScore []int
	parent []int
	closed []bool
	open   minHeap

	// LastExpansions records the node count of the most recent query
	LastExpansions int
}

const unvisited = -1

func (pf *PathFinder) estimate(p core.Point, goal core.Area) int {
	target := goal.Clamp(p)
	if pf.Heuristic == HeuristicLegacy {
		return p.Manhattan(target) / parameter.NavSearchLegacyDivisor
	}
	return p.Chebyshev(target)
}

// FindPath searches from start to any cell of goal
//
// Returns the waypoint sequence including start and the reached goal cell.
// start inside goal yields [start]. ok is false when start is blocked or out of bounds,
// when a 1x1 goal is blocked, when no route exists, or when the expansion cap is hit.
// Goal cells may be occupied (a structure footprint); other occupied cells are never entered.
// Diagonal steps require both adjacent cardinals to be walkable.
func (pf *PathFinder) FindPath(g *GridMap, start core.Point, goal core.Area) ([]core.Point, bool) {
	pf.LastExpansions = 0
	if goal.Empty() || !g.Walkable(start) {
		return nil, false
	}
	if goal.Contains(start) {
		return []core.Point{start}, true
	}

	enterable := func(p core.Point) bool {
		if !g.InBounds(p) {
			return false
		}
		return g.Walkable(p) || goal.Contains(p)
	}

	if goal.Width == 1 && goal.Height == 1 && !enterable(core.Point{X: goal.X, Y: goal.Y}) {
		return nil, false
	}

	side := g.Side()
	size := side * side
	pf.reset(size)

	startIdx := start.Y*side + start.X
	pf.gScore[startIdx] = 0
	seq := 0
	h0 := pf.estimate(start, goal)
	pf.open.push(heapEntry{idx: startIdx, f: h0, h: h0, seq: seq})

	for len(pf.open) > 0 {
		e := pf.open.pop()
		if pf.closed[e.idx] {
			continue
		}
		pf.closed[e.idx] = true
		pf.LastExpansions++

		cur := core.Point{X: e.idx % side, Y: e.idx / side}
		if goal.Contains(cur) {
			return pf.reconstruct(e.idx, side), true
		}
		if pf.MaxExpansions > 0 && pf.LastExpansions >= pf.MaxExpansions {
			return nil, false
		}

		curG := pf.gScore[e.idx]
		for _, d := range searchDirs {
			n := cur.Add(d[0], d[1])
			if !enterable(n) {
				continue
			}
			if d[0] != 0 && d[1] != 0 {
				if !g.Walkable(cur.Add(d[0], 0)) || !g.Walkable(cur.Add(0, d[1])) {
					continue
				}
			}
			nIdx := n.Y*side + n.X
			if pf.closed[nIdx] {
				continue
			}
			ng := curG + 1
			if pf.gScore[nIdx] != unvisited && ng >= pf.gScore[nIdx] {
				continue
			}
			pf.gScore[nIdx] = ng
			pf.parent[nIdx] = e.idx
			h := pf.estimate(n, goal)
			seq++
			pf.open.push(heapEntry{idx: nIdx, f: ng + h, h: h, seq: seq})
		}
	}
	return nil, false
}

func (pf *PathFinder) reset(size int) {
	if cap(pf.gScore) < size {
		pf.gScore = make([]int, size)
		pf.parent = make([]int, size)
		pf.closed = make([]bool, size)
	} else {
		pf.gScore = pf.gScore[:size]
		pf.parent = pf.parent[:size]
		pf.closed = pf.closed[:size]
	}
	for i := 0; i < size; i++ {
		pf.gScore[i] = unvisited
		pf.parent[i] = unvisited
		pf.closed[i] = false
	}
	pf.open = pf.open[:0]
}

func (pf *PathFinder) reconstruct(end, side int) []core.Point {
	var path []core.Point
	for idx := end; idx != unvisited; idx = pf.parent[idx] {
		path = append(path, core.Point{X: idx % side, Y: idx / side})
	}
	// Reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
