package status

import "sync"

// cells maps metric names to stable cells of type T
// Lookup takes a lock; the returned pointer is then used lock-free by the simulation
type cells[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func newCells[T any]() *cells[T] {
	return &cells[T]{items: make(map[string]*T)}
}

// get returns the cell for name, allocating it on first use
func (c *cells[T]) get(name string) *T {
	c.mu.RLock()
	if ptr, ok := c.items[name]; ok {
		c.mu.RUnlock()
		return ptr
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have created it between the locks
	if ptr, ok := c.items[name]; ok {
		return ptr
	}
	ptr := new(T)
	c.items[name] = ptr
	return ptr
}

// collect samples every cell into out
func (c *cells[T]) collect(out map[string]float64, read func(*T) float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, ptr := range c.items {
		out[name] = read(ptr)
	}
}

func (c *cells[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
