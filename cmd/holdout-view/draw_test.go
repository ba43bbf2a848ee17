package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/system"
)

func newTestScreen(t *testing.T) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Screen init failed: %v", err)
	}
	screen.SetSize(80, 40)
	t.Cleanup(screen.Fini)
	return screen
}

func newTestBattlefield(t *testing.T) *system.Battlefield {
	t.Helper()
	cfg := system.DefaultBattlefieldConfig()
	cfg.SpawnInterval = 0
	cfg.Workers = 0
	b, err := system.NewBattlefield(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewBattlefield failed: %v", err)
	}
	return b
}

func runeAt(s tcell.Screen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestViewport_RoundTrip(t *testing.T) {
	vp := newViewport(251, 80, 40)
	if vp.stride != 7 || vp.rows != 39 {
		t.Fatalf("Expected stride 7 over 39 rows, got stride %d rows %d", vp.stride, vp.rows)
	}
	for _, pos := range [][2]int{{0, 0}, {17, 17}, {35, 35}} {
		p, ok := vp.cellAt(pos[0], pos[1])
		if !ok {
			t.Fatalf("Expected screen %v inside the grid", pos)
		}
		if x, y := vp.screenOf(p); x != pos[0] || y != pos[1] {
			t.Errorf("Screen %v sampled %v which maps back to (%d,%d)", pos, p, x, y)
		}
	}
	if _, ok := vp.cellAt(40, 0); ok {
		t.Error("Expected columns past the grid to be rejected")
	}
}

func TestDrawFrame(t *testing.T) {
	screen := newTestScreen(t)
	b := newTestBattlefield(t)
	nav := b.Navigator()
	b.AddEnemy(system.Enemy{
		Mover:  system.Mover{Pos: nav.GridToWorld(core.Point{X: 0, Y: 250}), Speed: 15},
		Health: 100,
	})
	b.Tick(1.0 / 60)

	drawFrame(screen, b, drawOptions{showField: true, speed: 1})
	screen.Show()

	if r := runeAt(screen, 0, 0); r != 'e' {
		t.Errorf("Expected enemy in the top-left corner, got %q", r)
	}
	if r := runeAt(screen, 17, 17); r != '#' {
		t.Errorf("Expected home footprint at (17,17), got %q", r)
	}
	// Column 70 row 131 lies due west of home
	if r := runeAt(screen, 10, 17); r != '→' {
		t.Errorf("Expected east arrow west of home, got %q", r)
	}

	var sb strings.Builder
	for x := 0; x < 20; x++ {
		sb.WriteRune(runeAt(screen, x, 39))
	}
	if got := sb.String(); !strings.HasPrefix(got, " tick 1") {
		t.Errorf("Expected status line on the last row, got %q", got)
	}

	drawFrame(screen, b, drawOptions{showField: false, speed: 1})
	screen.Show()
	if r := runeAt(screen, 10, 17); r != ' ' {
		t.Errorf("Expected hidden field, got %q", r)
	}
	if r := runeAt(screen, 17, 17); r != '#' {
		t.Error("Structures must stay visible without the field")
	}
}

func TestStatusLine(t *testing.T) {
	b := newTestBattlefield(t)
	line := statusLine(b, drawOptions{paused: true, speed: 2, message: "board copied"})
	for _, want := range []string{"base 1000", "enemies 0", "x2", "paused", "board copied"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}
