package navigation

// heapEntry is an open-list node for path search
type heapEntry struct {
	idx int // Flat grid index (row*side + col)
	f   int // g + h
	h   int // Heuristic, lower wins on equal f
	seq int // Insertion order, lower wins on equal f and h
}

func (e heapEntry) less(o heapEntry) bool {
	if e.f != o.f {
		return e.f < o.f
	}
	if e.h != o.h {
		return e.h < o.h
	}
	return e.seq < o.seq
}

type minHeap []heapEntry

func (h *minHeap) push(e heapEntry) {
	*h = append(*h, e)
	// Sift up
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !(*h)[i].less((*h)[parent]) {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *minHeap) pop() heapEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]

	// Sift down
	i := 0
	for {
		left := 2*i + 1
		if left >= len(*h) {
			break
		}
		smallest := left
		if right := left + 1; right < len(*h) && (*h)[right].less((*h)[left]) {
			smallest = right
		}
		if !(*h)[smallest].less((*h)[i]) {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return e
}
