package system

import (
	"slices"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/status"
)

// Enemy is a hostile mover following the flow field
type Enemy struct {
	Mover
	Health float64
	Size   float64
}

// Corpse marks where an enemy died; workers collect corpses by reference id
type Corpse struct {
	ID   uint64
	Pos  core.Vec2
	Size float64
}

// Hit records an enemy reaching an objective during one update
type Hit struct {
	Enemy     uint64
	Structure navigation.StructureID
	Damage    float64
	Destroyed bool
}

// HordeReport summarizes one Horde.Update pass
type HordeReport struct {
	Hits    []Hit
	Died    []Corpse
	Stalled int
}

// Horde owns the live enemies and applies arrival damage to structures
type Horde struct {
	nav      *navigation.Navigator
	movement *MovementController
	log      logrus.FieldLogger

	enemies []Enemy

	statAlive   *atomic.Int64
	statKilled  *atomic.Int64
	statHits    *atomic.Int64
	statStalled *atomic.Int64
}

// NewHorde creates an empty horde bound to the navigator
func NewHorde(nav *navigation.Navigator, movement *MovementController, reg *status.Registry, log logrus.FieldLogger) *Horde {
	return &Horde{
		nav:         nav,
		movement:    movement,
		log:         orDiscard(log),
		statAlive:   reg.Counter("horde.alive"),
		statKilled:  reg.Counter("horde.killed"),
		statHits:    reg.Counter("horde.hits"),
		statStalled: reg.Counter("horde.stalled"),
	}
}

// Name returns system's name
func (h *Horde) Name() string {
	return "horde"
}

// Add appends an enemy in field mode
func (h *Horde) Add(e Enemy) {
	e.Mode = ModeField
	h.enemies = append(h.enemies, e)
	h.statAlive.Store(int64(len(h.enemies)))
}

// Enemies returns the live enemies; the slice is owned by the horde
func (h *Horde) Enemies() []Enemy {
	return h.enemies
}

// Len returns the number of live enemies
func (h *Horde) Len() int {
	return len(h.enemies)
}

// Damage lowers an enemy's health; removal happens on the next Update
func (h *Horde) Damage(id uint64, amount float64) bool {
	for i := range h.enemies {
		if h.enemies[i].ID == id {
			h.enemies[i].Health -= amount
			return true
		}
	}
	return false
}

// Update steps every enemy once
// Iterates from the end so in-place removal never skips or repeats an element
func (h *Horde) Update(dt float64) HordeReport {
	var report HordeReport

	for i := len(h.enemies) - 1; i >= 0; i-- {
		e := &h.enemies[i]

		if e.Health <= 0 {
			report.Died = append(report.Died, Corpse{ID: e.ID, Pos: e.Pos, Size: e.Size})
			h.enemies = slices.Delete(h.enemies, i, i+1)
			continue
		}

		res := h.movement.Step(&e.Mover, dt)
		switch res.Kind {
		case StepReached:
			destroyed := h.nav.DamageStructure(res.Structure, e.Health)
			report.Hits = append(report.Hits, Hit{
				Enemy:     e.ID,
				Structure: res.Structure,
				Damage:    e.Health,
				Destroyed: destroyed,
			})
			h.log.WithFields(logrus.Fields{
				"enemy":     e.ID,
				"structure": res.Structure,
				"damage":    e.Health,
				"destroyed": destroyed,
			}).Debug("Enemy reached structure")
			h.enemies = slices.Delete(h.enemies, i, i+1)
		case StepStalled:
			report.Stalled++
		}
	}

	h.statAlive.Store(int64(len(h.enemies)))
	h.statKilled.Add(int64(len(report.Died)))
	h.statHits.Add(int64(len(report.Hits)))
	h.statStalled.Store(int64(report.Stalled))
	return report
}
