package navigation

import (
	"math/rand/v2"
	"testing"

	"github.com/lixenwraith/holdout/core"
)

func smallGrid(t *testing.T, structures ...Structure) *GridMap {
	t.Helper()
	g, err := NewGridMap(40, 4, structures) // 21x21
	if err != nil {
		t.Fatalf("NewGridMap failed: %v", err)
	}
	return g
}

func assertContiguous(t *testing.T, g *GridMap, path []core.Point, goal core.Area) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		if path[i-1].Chebyshev(path[i]) != 1 {
			t.Fatalf("Step %d jumps from %v to %v", i, path[i-1], path[i])
		}
	}
	for i, p := range path {
		if !g.Walkable(p) && !goal.Contains(p) {
			t.Fatalf("Waypoint %d at %v is blocked", i, p)
		}
	}
	if !goal.Contains(path[len(path)-1]) {
		t.Fatalf("Path ends at %v outside goal %v", path[len(path)-1], goal)
	}
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	g := smallGrid(t)
	var pf PathFinder
	p := core.Point{X: 5, Y: 5}
	path, ok := pf.FindPath(g, p, core.PointArea(p))
	if !ok {
		t.Fatal("Expected a path when start equals goal")
	}
	if len(path) != 1 || path[0] != p {
		t.Errorf("Expected [%v], got %v", p, path)
	}
}

func TestFindPath_OpenGridIsOptimal(t *testing.T) {
	g := smallGrid(t)
	for _, h := range []Heuristic{HeuristicChebyshev, HeuristicLegacy} {
		pf := PathFinder{Heuristic: h}
		start := core.Point{X: 0, Y: 0}
		goal := core.Point{X: 17, Y: 6}
		path, ok := pf.FindPath(g, start, core.PointArea(goal))
		if !ok {
			t.Fatalf("%v: expected a path on open grid", h)
		}
		assertContiguous(t, g, path, core.PointArea(goal))
		if steps := len(path) - 1; steps != start.Chebyshev(goal) {
			t.Errorf("%v: expected %d steps, got %d", h, start.Chebyshev(goal), steps)
		}
		if path[0] != start {
			t.Errorf("%v: path must begin at start, got %v", h, path[0])
		}
	}
}

func TestFindPath_ChebyshevExpandsLess(t *testing.T) {
	g := smallGrid(t)
	start, goal := core.Point{X: 0, Y: 0}, core.Point{X: 20, Y: 20}

	exact := PathFinder{Heuristic: HeuristicChebyshev}
	if _, ok := exact.FindPath(g, start, core.PointArea(goal)); !ok {
		t.Fatal("Expected a path")
	}
	legacy := PathFinder{Heuristic: HeuristicLegacy}
	if _, ok := legacy.FindPath(g, start, core.PointArea(goal)); !ok {
		t.Fatal("Expected a path")
	}
	if exact.LastExpansions > legacy.LastExpansions {
		t.Errorf("Expected chebyshev to expand no more than legacy: %d vs %d",
			exact.LastExpansions, legacy.LastExpansions)
	}
}

func TestFindPath_AroundWall(t *testing.T) {
	// Wall across column 10 with a gap at the top row
	g := smallGrid(t, Structure{ID: 1, Kind: KindBarrier, Area: core.Area{X: 10, Y: 0, Width: 1, Height: 20}})
	var pf PathFinder
	goal := core.PointArea(core.Point{X: 18, Y: 0})
	path, ok := pf.FindPath(g, core.Point{X: 2, Y: 0}, goal)
	if !ok {
		t.Fatal("Expected a path through the gap")
	}
	assertContiguous(t, g, path, goal)
	crossed := false
	for _, p := range path {
		if p.X == 10 && p.Y == 20 {
			crossed = true
		}
	}
	if !crossed {
		t.Error("Expected path to cross column 10 at the gap")
	}
}

func TestFindPath_NoCornerCutting(t *testing.T) {
	// Two blocks touching only at a corner; the diagonal between them is sealed
	g := smallGrid(t,
		Structure{ID: 1, Kind: KindBarrier, Area: core.Area{X: 0, Y: 5, Width: 5, Height: 1}},
		Structure{ID: 2, Kind: KindBarrier, Area: core.Area{X: 5, Y: 0, Width: 1, Height: 5}},
	)
	var pf PathFinder
	if path, ok := pf.FindPath(g, core.Point{X: 4, Y: 4}, core.PointArea(core.Point{X: 6, Y: 6})); ok {
		t.Errorf("Expected sealed corner to block, got %v", path)
	}
}

func TestFindPath_Unreachable(t *testing.T) {
	g := smallGrid(t,
		Structure{ID: 1, Kind: KindBarrier, Area: core.Area{X: 3, Y: 0, Width: 1, Height: 4}},
		Structure{ID: 2, Kind: KindBarrier, Area: core.Area{X: 0, Y: 3, Width: 3, Height: 1}},
	)
	var pf PathFinder
	if _, ok := pf.FindPath(g, core.Point{X: 0, Y: 0}, core.PointArea(core.Point{X: 15, Y: 15})); ok {
		t.Error("Expected no path out of an enclosed pocket")
	}
	if _, ok := pf.FindPath(g, core.Point{X: 3, Y: 0}, core.PointArea(core.Point{X: 15, Y: 15})); ok {
		t.Error("Expected no path from a blocked start")
	}
	if _, ok := pf.FindPath(g, core.Point{X: 15, Y: 15}, core.PointArea(core.Point{X: 3, Y: 1})); ok {
		t.Error("Expected no path to a blocked point goal")
	}
	if _, ok := pf.FindPath(g, core.Point{X: -1, Y: 0}, core.PointArea(core.Point{X: 15, Y: 15})); ok {
		t.Error("Expected no path from out of bounds")
	}
}

func TestFindPath_AreaGoalEndsOnFootprint(t *testing.T) {
	base := core.Area{X: 9, Y: 9, Width: 3, Height: 3}
	g := smallGrid(t, Structure{ID: 1, Area: base})
	var pf PathFinder
	path, ok := pf.FindPath(g, core.Point{X: 0, Y: 10}, base)
	if !ok {
		t.Fatal("Expected a path onto the structure")
	}
	assertContiguous(t, g, path, base)
	for _, p := range path[:len(path)-1] {
		if base.Contains(p) {
			t.Fatalf("Only the last waypoint may be on the footprint, got %v", p)
		}
	}
	if got := path[len(path)-1]; got.X != 9 {
		t.Errorf("Expected to enter through the west face, got %v", got)
	}
	if steps := len(path) - 1; steps != 9 {
		t.Errorf("Expected 9 steps to the footprint, got %d", steps)
	}
}

func TestFindPath_MaxExpansions(t *testing.T) {
	g := smallGrid(t)
	pf := PathFinder{MaxExpansions: 3}
	if _, ok := pf.FindPath(g, core.Point{X: 0, Y: 0}, core.PointArea(core.Point{X: 20, Y: 20})); ok {
		t.Error("Expected capped search to give up")
	}
	if pf.LastExpansions != 3 {
		t.Errorf("Expected 3 expansions, got %d", pf.LastExpansions)
	}
}

func TestFindPath_Deterministic(t *testing.T) {
	g := smallGrid(t, Structure{ID: 1, Kind: KindBarrier, Area: core.Area{X: 8, Y: 4, Width: 2, Height: 12}})
	var pf PathFinder
	goal := core.PointArea(core.Point{X: 19, Y: 10})
	p1, _ := pf.FindPath(g, core.Point{X: 1, Y: 10}, goal)
	p2, _ := pf.FindPath(g, core.Point{X: 1, Y: 10}, goal)
	if len(p1) != len(p2) {
		t.Fatalf("Path lengths differ between identical calls: %d vs %d", len(p1), len(p2))
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("Waypoint %d differs: %v vs %v", i, p1[i], p2[i])
		}
	}
}

// floodLabels assigns a 4-connected component label to every walkable cell, -1 otherwise
func floodLabels(g *GridMap) []int {
	side := g.Side()
	labels := make([]int, side*side)
	for i := range labels {
		labels[i] = -1
	}
	next := 0
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			p := core.Point{X: x, Y: y}
			if !g.Walkable(p) || labels[y*side+x] != -1 {
				continue
			}
			stack := []core.Point{p}
			labels[y*side+x] = next
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, v := range DirVectors {
					n := cur.Add(v[0], v[1])
					if g.Walkable(n) && labels[n.Y*side+n.X] == -1 {
						labels[n.Y*side+n.X] = next
						stack = append(stack, n)
					}
				}
			}
			next++
		}
	}
	return labels
}

func TestFindPath_NoneIffDisconnected(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for layout := 0; layout < 8; layout++ {
		g := smallGrid(t)
		id := StructureID(1)
		for i := 0; i < 40; i++ {
			a := core.Area{X: rng.IntN(21), Y: rng.IntN(21), Width: 1 + rng.IntN(4), Height: 1 + rng.IntN(4)}
			if g.place(Structure{ID: id, Kind: KindBarrier, Area: a}) == nil {
				id++
			}
		}
		labels := floodLabels(g)
		side := g.Side()
		var pf PathFinder
		for pair := 0; pair < 60; pair++ {
			s := core.Point{X: rng.IntN(side), Y: rng.IntN(side)}
			e := core.Point{X: rng.IntN(side), Y: rng.IntN(side)}
			if !g.Walkable(s) || !g.Walkable(e) {
				continue
			}
			want := labels[s.Y*side+s.X] == labels[e.Y*side+e.X]
			path, ok := pf.FindPath(g, s, core.PointArea(e))
			if ok != want {
				t.Fatalf("Layout %d: FindPath(%v,%v) ok=%v, flood fill connected=%v", layout, s, e, ok, want)
			}
			if ok {
				assertContiguous(t, g, path, core.PointArea(e))
			}
		}
	}
}

func TestParseHeuristic(t *testing.T) {
	tests := []struct {
		in   string
		want Heuristic
		ok   bool
	}{
		{"", HeuristicChebyshev, true},
		{"chebyshev", HeuristicChebyshev, true},
		{"legacy", HeuristicLegacy, true},
		{"manhattan3", HeuristicLegacy, true},
		{"euclid", HeuristicChebyshev, false},
	}
	for _, tt := range tests {
		got, ok := ParseHeuristic(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseHeuristic(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
