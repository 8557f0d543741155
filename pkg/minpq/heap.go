package minpq

// Heap is a MinPQ backed by a binary min-heap with an element index.
//
// entries is a complete binary tree in level order: the parent of slot i is
// (i-1)/2 and its children are 2i+1 and 2i+2. No entry has a lower priority
// than its parent, and index[e] is the slot currently holding e. Slots only
// move through swap, which keeps both structures in step.
type Heap[E comparable] struct {
	entries []entry[E]
	index   map[E]int
}

var _ MinPQ[string] = (*Heap[string])(nil)

// NewHeap returns an empty heap.
func NewHeap[E comparable]() *Heap[E] {
	return &Heap[E]{
		entries: make([]entry[E], 0),
		index:   make(map[E]int),
	}
}

// NewHeapFrom builds a heap holding every pair in m.
// The pairs are loaded as-is and then heapified bottom-up in O(n), which is
// cheaper than n calls to Add.
func NewHeapFrom[E comparable](m map[E]float64) (*Heap[E], error) {
	h := &Heap[E]{
		entries: make([]entry[E], 0, len(m)),
		index:   make(map[E]int, len(m)),
	}
	for elem, priority := range m {
		if err := checkPriority(priority); err != nil {
			return nil, err
		}
		h.index[elem] = len(h.entries)
		h.entries = append(h.entries, entry[E]{elem: elem, priority: priority})
	}
	n := len(h.entries)
	for i := n/2 - 1; i >= 0; i-- {
		h.down(i)
	}
	return h, nil
}

// Grow makes room for n more elements without reallocating.
func (h *Heap[E]) Grow(n int) {
	if n <= 0 {
		return
	}
	if free := cap(h.entries) - len(h.entries); free < n {
		grown := make([]entry[E], len(h.entries), len(h.entries)+n)
		copy(grown, h.entries)
		h.entries = grown
	}
	if len(h.index) == 0 {
		h.index = make(map[E]int, n)
	}
}

// Add inserts elem and sifts it up to its place. O(log n).
func (h *Heap[E]) Add(elem E, priority float64) error {
	if _, ok := h.index[elem]; ok {
		return duplicateError(elem)
	}
	if err := checkPriority(priority); err != nil {
		return err
	}
	h.entries = append(h.entries, entry[E]{elem: elem, priority: priority})
	i := len(h.entries) - 1
	h.index[elem] = i
	h.up(i)
	return nil
}

// Contains reports whether elem is queued. O(1).
func (h *Heap[E]) Contains(elem E) bool {
	_, ok := h.index[elem]
	return ok
}

// Priority returns the priority of elem. O(1).
func (h *Heap[E]) Priority(elem E) (float64, error) {
	i, ok := h.index[elem]
	if !ok {
		return 0, notFoundError(elem)
	}
	return h.entries[i].priority, nil
}

// PeekMin returns the root. O(1).
func (h *Heap[E]) PeekMin() (E, error) {
	if len(h.entries) == 0 {
		var zero E
		return zero, ErrEmptyQueue
	}
	return h.entries[0].elem, nil
}

// RemoveMin moves the last slot to the root, drops the old root and sifts the
// new root down. O(log n).
func (h *Heap[E]) RemoveMin() (E, error) {
	if len(h.entries) == 0 {
		var zero E
		return zero, ErrEmptyQueue
	}
	last := len(h.entries) - 1
	top := h.entries[0].elem
	h.swap(0, last)
	h.entries[last] = entry[E]{} // GC safety
	h.entries = h.entries[:last]
	delete(h.index, top)
	if len(h.entries) > 0 {
		h.down(0)
	}
	return top, nil
}

// ChangePriority updates elem in place. A lower priority can only move it
// toward the root and a higher one only toward the leaves, so a single
// directional repair restores the heap. O(log n).
func (h *Heap[E]) ChangePriority(elem E, priority float64) error {
	i, ok := h.index[elem]
	if !ok {
		return notFoundError(elem)
	}
	if err := checkPriority(priority); err != nil {
		return err
	}
	old := h.entries[i].priority
	h.entries[i].priority = priority
	if priority < old {
		h.up(i)
	} else {
		h.down(i)
	}
	return nil
}

// Len returns the number of elements.
func (h *Heap[E]) Len() int { return len(h.entries) }

// IsEmpty reports whether the heap has no elements.
func (h *Heap[E]) IsEmpty() bool { return len(h.entries) == 0 }

func (h *Heap[E]) less(i, j int) bool {
	return h.entries[i].priority < h.entries[j].priority
}

// swap exchanges slots i and j and repoints both index entries.
func (h *Heap[E]) swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.index[h.entries[i].elem] = i
	h.index[h.entries[j].elem] = j
}

// up bubbles slot j toward the root until its parent is not larger.
func (h *Heap[E]) up(j int) {
	for j > 0 {
		parent := (j - 1) / 2
		if !h.less(j, parent) {
			break
		}
		h.swap(j, parent)
		j = parent
	}
}

// down sinks slot i toward the leaves, always swapping with the smaller child.
func (h *Heap[E]) down(i int) {
	n := len(h.entries)
	for {
		left := 2*i + 1
		if left >= n || left < 0 { // left < 0 after int overflow
			break
		}
		smallest := left
		if right := left + 1; right < n && h.less(right, left) {
			smallest = right
		}
		if !h.less(smallest, i) {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
}
