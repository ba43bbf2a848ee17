package status

import (
	"sync"
	"testing"
)

func TestRegistry_CellsAreStable(t *testing.T) {
	r := NewRegistry()
	a := r.Counter("horde.alive")
	if a != r.Counter("horde.alive") {
		t.Fatal("Expected cached pointer on second lookup")
	}
	a.Store(7)
	if v := r.Values()["horde.alive"]; v != 7 {
		t.Errorf("Expected 7 through Values, got %v", v)
	}
	if r.Gauge("horde.alive") == nil {
		t.Fatal("Expected a gauge cell")
	}
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Counter("frames").Add(1)
				r.Values()
			}
		}()
	}
	wg.Wait()
	if v := r.Values()["frames"]; v != 8000 {
		t.Errorf("Expected 8000, got %v", v)
	}
}

func TestRegistry_Values(t *testing.T) {
	r := NewRegistry()
	r.Counter("b").Store(3)
	r.Gauge("a").Set(1.5)
	r.Gauge("c").Set(-2)
	v := r.Values()
	if len(v) != 3 || v["a"] != 1.5 || v["b"] != 3 || v["c"] != -2 {
		t.Errorf("Unexpected values %v", v)
	}
	if got := r.Gauge("a").Load(); got != 1.5 {
		t.Errorf("Expected gauge 1.5, got %v", got)
	}
}
