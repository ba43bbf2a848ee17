package system

import (
	"slices"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/logger"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/parameter"
	"github.com/lixenwraith/holdout/status"
)

var (
	ErrUnknownCorpse = errors.New("unknown corpse")
	ErrCorpseClaimed = errors.New("corpse already claimed")
)

// HomeID is the structure id reserved for the home base
const HomeID navigation.StructureID = 1

// BattlefieldConfig assembles the simulation
type BattlefieldConfig struct {
	Nav  navigation.Config
	Seed uint64

	// Home is the objective footprint workers return to
	Home       core.Area
	HomeHealth float64
	// Structures are placed after home; ids must not collide with HomeID
	Structures []navigation.Structure

	SpawnInterval float64

	Workers      int
	WorkerSpeed  float64
	WorkerHealth float64
	CollectTime  float64
	DepositTime  float64
	RetryDelay   float64
	// AutoCollect queues a collection errand for every new corpse
	AutoCollect bool
}

// DefaultBattlefieldConfig returns the stock layout: home at the center, two workers
func DefaultBattlefieldConfig() BattlefieldConfig {
	return BattlefieldConfig{
		Nav:  navigation.DefaultConfig(),
		Seed: 1,
		Home: core.Area{
			X:      parameter.BaseCellX,
			Y:      parameter.BaseCellY,
			Width:  parameter.BaseCellWidth,
			Height: parameter.BaseCellHeight,
		},
		HomeHealth:    parameter.BaseMaxHealth,
		SpawnInterval: parameter.EnemySpawnInterval,
		Workers:       2,
		WorkerSpeed:   parameter.WorkerSpeed,
		WorkerHealth:  parameter.WorkerHealth,
		CollectTime:   parameter.WorkerCollectTime,
		DepositTime:   parameter.WorkerDepositTime,
		RetryDelay:    parameter.WorkerRetryDelay,
		AutoCollect:   true,
	}
}

// TickReport aggregates what happened during one Battlefield.Tick
type TickReport struct {
	Tick      uint64
	Rebuilt   bool
	Spawned   int
	Hits      []Hit
	Died      []Corpse
	Collected []uint64
	Completed []Task
}

// Battlefield owns the navigator and every collection that moves on it
// Single writer: only the simulation goroutine calls its methods
type Battlefield struct {
	cfg BattlefieldConfig
	log logrus.FieldLogger
	reg *status.Registry

	nav       *navigation.Navigator
	movement  *MovementController
	horde     *Horde
	workforce *Workforce
	spawner   *SpawnSystem

	corpses []Corpse
	claimed map[uint64]bool

	nextEntity uint64
	tick       uint64
	elapsed    float64

	statTick       *atomic.Int64
	statRebuilds   *atomic.Int64
	statCorpses    *atomic.Int64
	statBaseHealth *status.Gauge
}

// NewBattlefield places home and the configured structures and hires the workers
func NewBattlefield(cfg BattlefieldConfig, reg *status.Registry, log logrus.FieldLogger) (*Battlefield, error) {
	log = orDiscard(log)
	if reg == nil {
		reg = status.NewRegistry()
	}

	nav, err := navigation.NewNavigator(cfg.Nav, log)
	if err != nil {
		return nil, errors.Wrap(err, "navigator")
	}
	home := navigation.Structure{
		ID:     HomeID,
		Kind:   navigation.KindObjective,
		Area:   cfg.Home,
		Health: cfg.HomeHealth,
	}
	if err := nav.AddStructure(home); err != nil {
		return nil, errors.Wrap(err, "home")
	}
	for _, s := range cfg.Structures {
		if err := nav.AddStructure(s); err != nil {
			return nil, errors.Wrapf(err, "structure %d", s.ID)
		}
	}

	movement := NewMovementController(nav)
	b := &Battlefield{
		cfg:            cfg,
		log:            log,
		reg:            reg,
		nav:            nav,
		movement:       movement,
		horde:          NewHorde(nav, movement, reg, log),
		workforce:      NewWorkforce(nav, movement, cfg.RetryDelay, reg, log),
		spawner:        NewSpawnSystem(cfg.Seed, cfg.Nav.Extent, cfg.SpawnInterval, reg),
		claimed:        make(map[uint64]bool),
		statTick:       reg.Counter("battlefield.tick"),
		statRebuilds:   reg.Counter("navigation.rebuilds"),
		statCorpses:    reg.Counter("battlefield.corpses"),
		statBaseHealth: reg.Gauge("battlefield.base_health"),
	}

	homePos := b.HomePosition()
	for i := 0; i < cfg.Workers; i++ {
		b.workforce.Hire(b.newEntityID(), homePos, cfg.WorkerSpeed, cfg.WorkerHealth)
	}
	b.statBaseHealth.Set(b.BaseHealth())

	log.WithFields(logrus.Fields{
		"side":       nav.Grid().Side(),
		"structures": len(cfg.Structures) + 1,
		"workers":    cfg.Workers,
	}).Info("Battlefield ready")
	return b, nil
}

func (b *Battlefield) newEntityID() uint64 {
	b.nextEntity++
	return b.nextEntity
}

// Tick advances the simulation by dt seconds
func (b *Battlefield) Tick(dt float64) TickReport {
	b.tick++
	b.elapsed += dt
	report := TickReport{Tick: b.tick}

	report.Rebuilt = b.nav.EnsureBuilt()

	for n := b.spawner.Due(dt); n > 0; n-- {
		b.horde.Add(b.spawner.Roll(b.newEntityID()))
		report.Spawned++
	}

	hr := b.horde.Update(dt)
	report.Hits = hr.Hits
	report.Died = hr.Died
	for _, c := range hr.Died {
		b.corpses = append(b.corpses, c)
		if b.cfg.AutoCollect {
			if err := b.CollectCorpse(c.ID); err != nil {
				b.log.WithError(err).WithField("corpse", c.ID).Warn("Collection not queued")
			}
		}
	}

	wr := b.workforce.Update(dt)
	report.Completed = wr.Completed
	for _, leg := range wr.LegsDone {
		// Leg 0 is the pickup; the corpse leaves the field with the worker
		if leg.Leg == 0 && b.removeCorpse(leg.Ref) {
			report.Collected = append(report.Collected, leg.Ref)
		}
	}
	for _, t := range wr.Completed {
		delete(b.claimed, t.Ref)
	}

	b.statTick.Store(int64(b.tick))
	b.statRebuilds.Store(int64(b.nav.Rebuilds()))
	b.statCorpses.Store(int64(len(b.corpses)))
	b.statBaseHealth.Set(b.BaseHealth())
	return report
}

// Spawn rolls one enemy immediately and returns it
func (b *Battlefield) Spawn() Enemy {
	e := b.spawner.Roll(b.newEntityID())
	b.horde.Add(e)
	return e
}

// AddEnemy inserts e, assigning an id when e.ID is zero
func (b *Battlefield) AddEnemy(e Enemy) uint64 {
	if e.ID == 0 {
		e.ID = b.newEntityID()
	}
	b.horde.Add(e)
	return e.ID
}

// HireWorker adds an idle worker at pos
func (b *Battlefield) HireWorker(pos core.Vec2) uint64 {
	id := b.newEntityID()
	b.workforce.Hire(id, pos, b.cfg.WorkerSpeed, b.cfg.WorkerHealth)
	return id
}

// CollectCorpse queues the two-leg errand: walk to the corpse, then back home
func (b *Battlefield) CollectCorpse(id uint64) error {
	idx := slices.IndexFunc(b.corpses, func(c Corpse) bool { return c.ID == id })
	if idx < 0 {
		return errors.Wrapf(ErrUnknownCorpse, "corpse %d", id)
	}
	if b.claimed[id] {
		return errors.Wrapf(ErrCorpseClaimed, "corpse %d", id)
	}
	_, err := b.workforce.Enqueue(Task{
		Ref:       id,
		Goals:     []core.Vec2{b.corpses[idx].Pos, b.HomePosition()},
		WorkTimes: []float64{b.cfg.CollectTime, b.cfg.DepositTime},
	})
	if err != nil {
		return err
	}
	b.claimed[id] = true
	return nil
}

// CollectNext queues collection of the oldest unclaimed corpse
func (b *Battlefield) CollectNext() (uint64, bool) {
	for _, c := range b.corpses {
		if !b.claimed[c.ID] {
			return c.ID, b.CollectCorpse(c.ID) == nil
		}
	}
	return 0, false
}

func (b *Battlefield) removeCorpse(id uint64) bool {
	idx := slices.IndexFunc(b.corpses, func(c Corpse) bool { return c.ID == id })
	if idx < 0 {
		return false
	}
	b.corpses = slices.Delete(b.corpses, idx, idx+1)
	return true
}

// HomePosition returns the world center of the home footprint
func (b *Battlefield) HomePosition() core.Vec2 {
	a := b.cfg.Home
	return b.nav.GridToWorld(core.Point{X: a.X + a.Width/2, Y: a.Y + a.Height/2})
}

// BaseHealth sums the health of every standing objective
func (b *Battlefield) BaseHealth() float64 {
	total := 0.0
	for _, s := range b.nav.Structures() {
		if s.Kind == navigation.KindObjective {
			total += s.Health
		}
	}
	return total
}

// Navigator returns the shared navigator
func (b *Battlefield) Navigator() *navigation.Navigator { return b.nav }

// Horde returns the enemy collection
func (b *Battlefield) Horde() *Horde { return b.horde }

// Workforce returns the worker collection
func (b *Battlefield) Workforce() *Workforce { return b.workforce }

// Corpses returns uncollected corpses; the slice is owned by the battlefield
func (b *Battlefield) Corpses() []Corpse { return b.corpses }

// Registry returns the counter registry
func (b *Battlefield) Registry() *status.Registry { return b.reg }

// TickCount returns the number of completed ticks
func (b *Battlefield) TickCount() uint64 { return b.tick }

// Elapsed returns simulated seconds
func (b *Battlefield) Elapsed() float64 { return b.elapsed }

func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	return logger.Discard()
}
