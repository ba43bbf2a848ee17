package system

import (
	"testing"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/status"
)

func newTestHorde(t *testing.T, structures ...navigation.Structure) (*Horde, *navigation.Navigator) {
	t.Helper()
	nav := newTestNav(t, structures...)
	return NewHorde(nav, NewMovementController(nav), status.NewRegistry(), nil), nav
}

func hordeIDs(h *Horde) []uint64 {
	ids := make([]uint64, 0, h.Len())
	for _, e := range h.Enemies() {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestHorde_AdjacentRemovalsNotSkipped(t *testing.T) {
	h, nav := newTestHorde(t, centerBase)
	far := nav.GridToWorld(core.Point{X: 20, Y: 20})
	onBase := nav.GridToWorld(core.Point{X: 120, Y: 120})

	// 2 and 3 die, 4 and 5 reach the base; both pairs are adjacent in the slice
	h.Add(Enemy{Mover: Mover{ID: 1, Pos: far, Speed: 15}, Health: 10})
	h.Add(Enemy{Mover: Mover{ID: 2, Pos: far, Speed: 15}, Health: 0})
	h.Add(Enemy{Mover: Mover{ID: 3, Pos: far, Speed: 15}, Health: -5})
	h.Add(Enemy{Mover: Mover{ID: 4, Pos: onBase, Speed: 15}, Health: 30})
	h.Add(Enemy{Mover: Mover{ID: 5, Pos: onBase, Speed: 15}, Health: 20})
	h.Add(Enemy{Mover: Mover{ID: 6, Pos: far, Speed: 15}, Health: 10})

	report := h.Update(0.1)

	if ids := hordeIDs(h); len(ids) != 2 || ids[0] != 1 || ids[1] != 6 {
		t.Fatalf("Expected survivors [1 6], got %v", ids)
	}
	if len(report.Died) != 2 {
		t.Fatalf("Expected 2 deaths, got %d", len(report.Died))
	}
	if len(report.Hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(report.Hits))
	}
	seen := map[uint64]int{}
	for _, c := range report.Died {
		seen[c.ID]++
	}
	for _, hit := range report.Hits {
		seen[hit.Enemy]++
	}
	for _, id := range []uint64{2, 3, 4, 5} {
		if seen[id] != 1 {
			t.Errorf("Enemy %d processed %d times", id, seen[id])
		}
	}

	s, _ := nav.Structure(1)
	if s.Health != 950 {
		t.Errorf("Expected base health 950, got %v", s.Health)
	}
}

func TestHorde_ArrivalDestroysStructure(t *testing.T) {
	weak := navigation.Structure{ID: 7, Area: core.Area{X: 50, Y: 50, Width: 2, Height: 2}, Health: 25}
	h, nav := newTestHorde(t, centerBase, weak)
	nav.EnsureBuilt()

	h.Add(Enemy{Mover: Mover{ID: 1, Pos: nav.GridToWorld(core.Point{X: 50, Y: 50}), Speed: 15}, Health: 40})
	report := h.Update(0.1)
	if len(report.Hits) != 1 || !report.Hits[0].Destroyed || report.Hits[0].Structure != 7 {
		t.Fatalf("Expected structure 7 destroyed, got %+v", report.Hits)
	}
	if _, ok := nav.Structure(7); ok {
		t.Error("Expected destroyed structure removed from registry")
	}
	if !nav.Dirty() {
		t.Error("Expected destruction to invalidate the field")
	}
}

func TestHorde_DamageMarksForRemoval(t *testing.T) {
	h, nav := newTestHorde(t, centerBase)
	h.Add(Enemy{Mover: Mover{ID: 9, Pos: nav.GridToWorld(core.Point{X: 3, Y: 3}), Speed: 15}, Health: 50})
	if !h.Damage(9, 60) {
		t.Fatal("Expected damage to find enemy 9")
	}
	if h.Damage(10, 1) {
		t.Error("Expected unknown enemy to report false")
	}
	report := h.Update(0.1)
	if len(report.Died) != 1 || report.Died[0].ID != 9 || h.Len() != 0 {
		t.Errorf("Expected enemy 9 removed as corpse, got %+v (len=%d)", report.Died, h.Len())
	}
}

func TestHorde_StalledInPocket(t *testing.T) {
	h, nav := newTestHorde(t, centerBase,
		navigation.Structure{ID: 2, Kind: navigation.KindBarrier, Area: core.Area{X: 10, Y: 0, Width: 1, Height: 11}},
		navigation.Structure{ID: 3, Kind: navigation.KindBarrier, Area: core.Area{X: 0, Y: 10, Width: 10, Height: 1}},
	)
	pos := nav.GridToWorld(core.Point{X: 4, Y: 4})
	h.Add(Enemy{Mover: Mover{ID: 1, Pos: pos, Speed: 15}, Health: 10})
	for i := 0; i < 10; i++ {
		if r := h.Update(0.1); r.Stalled != 1 {
			t.Fatalf("Tick %d: expected 1 stalled, got %d", i, r.Stalled)
		}
	}
	if h.Enemies()[0].Pos != pos {
		t.Error("Stalled enemy must stay in place")
	}
}
