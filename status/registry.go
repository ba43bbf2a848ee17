package status

import "sync/atomic"

// Registry holds the simulation counters and gauges read by the feed and the viewer
// Systems fetch their cells once at construction and write them every tick; readers only see Values
type Registry struct {
	counters *cells[atomic.Int64]
	gauges   *cells[Gauge]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		counters: newCells[atomic.Int64](),
		gauges:   newCells[Gauge](),
	}
}

// Counter returns the integer cell registered under name
func (r *Registry) Counter(name string) *atomic.Int64 {
	return r.counters.get(name)
}

// Gauge returns the float cell registered under name
func (r *Registry) Gauge(name string) *Gauge {
	return r.gauges.get(name)
}

// Values samples every metric into one flat map, counters widened to float64
// A name registered as both counter and gauge reports the gauge
func (r *Registry) Values() map[string]float64 {
	out := make(map[string]float64, r.counters.len()+r.gauges.len())
	r.counters.collect(out, func(v *atomic.Int64) float64 { return float64(v.Load()) })
	r.gauges.collect(out, (*Gauge).Load)
	return out
}
