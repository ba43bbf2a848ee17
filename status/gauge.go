package status

import (
	"math"
	"sync/atomic"
)

// Gauge is a float64 level written by the simulation and sampled by readers
// Zero value reads as 0.0
type Gauge struct {
	bits atomic.Uint64
}

// Set stores val
func (g *Gauge) Set(val float64) {
	g.bits.Store(math.Float64bits(val))
}

// Load returns the last stored value
func (g *Gauge) Load() float64 {
	return math.Float64frombits(g.bits.Load())
}
