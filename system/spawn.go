package system

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/parameter"
	"github.com/lixenwraith/holdout/status"
)

// Spawn sides, rolled uniformly
const (
	sideLeft = iota
	sideRight
	sideBottom
	sideTop
	sideCount
)

// SpawnSystem rolls enemies on the world border on a fixed interval
// One ratio drives health, size and border offset together so large enemies cluster off-center
type SpawnSystem struct {
	rng      *rand.Rand
	extent   float64
	interval float64
	elapsed  float64

	statSpawned *atomic.Int64
}

// NewSpawnSystem creates a spawner with a deterministic PCG stream
func NewSpawnSystem(seed uint64, extent, interval float64, reg *status.Registry) *SpawnSystem {
	return &SpawnSystem{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		extent:      extent,
		interval:    interval,
		statSpawned: reg.Counter("spawn.total"),
	}
}

// Name returns system's name
func (s *SpawnSystem) Name() string {
	return "spawn"
}

// Due advances the timer and returns how many spawns fell inside dt
func (s *SpawnSystem) Due(dt float64) int {
	if s.interval <= 0 || dt <= 0 {
		return 0
	}
	s.elapsed += dt
	n := 0
	for s.elapsed >= s.interval {
		s.elapsed -= s.interval
		n++
	}
	return n
}

// Roll creates one enemy with the given id on a random border point
func (s *SpawnSystem) Roll(id uint64) Enemy {
	ratio := s.rng.Float64()
	scale := ratio + parameter.EnemyRatioOffset

	offset := s.extent * ratio
	if s.rng.IntN(2) == 0 {
		offset = -offset
	}

	var pos core.Vec2
	switch s.rng.IntN(sideCount) {
	case sideLeft:
		pos = core.Vec2{X: -s.extent, Y: offset}
	case sideRight:
		pos = core.Vec2{X: s.extent, Y: offset}
	case sideBottom:
		pos = core.Vec2{X: offset, Y: -s.extent}
	default:
		pos = core.Vec2{X: offset, Y: s.extent}
	}

	s.statSpawned.Add(1)
	return Enemy{
		Mover: Mover{
			ID:    id,
			Pos:   pos,
			Speed: parameter.EnemySpeed,
			Mode:  ModeField,
		},
		Health: parameter.EnemyBaseHealth * scale,
		Size:   parameter.EnemyBaseSize * scale,
	}
}
