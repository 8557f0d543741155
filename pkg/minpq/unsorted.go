package minpq

// UnsortedArray is a MinPQ that keeps its pairs in insertion order and finds
// everything by linear scan. It is simple enough to be obviously correct,
// which makes it the oracle the heap is tested against.
type UnsortedArray[E comparable] struct {
	entries []entry[E]
}

var _ MinPQ[string] = (*UnsortedArray[string])(nil)

// NewUnsortedArray returns an empty queue.
func NewUnsortedArray[E comparable]() *UnsortedArray[E] {
	return &UnsortedArray[E]{entries: make([]entry[E], 0)}
}

// NewUnsortedArrayFrom returns a queue holding every pair in m.
func NewUnsortedArrayFrom[E comparable](m map[E]float64) (*UnsortedArray[E], error) {
	q := &UnsortedArray[E]{entries: make([]entry[E], 0, len(m))}
	for elem, priority := range m {
		if err := q.Add(elem, priority); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// Add appends elem after checking it is not already present.
func (q *UnsortedArray[E]) Add(elem E, priority float64) error {
	if q.indexOf(elem) >= 0 {
		return duplicateError(elem)
	}
	if err := checkPriority(priority); err != nil {
		return err
	}
	q.entries = append(q.entries, entry[E]{elem: elem, priority: priority})
	return nil
}

// Contains reports whether elem is queued.
func (q *UnsortedArray[E]) Contains(elem E) bool {
	return q.indexOf(elem) >= 0
}

// Priority returns the priority of elem.
func (q *UnsortedArray[E]) Priority(elem E) (float64, error) {
	i := q.indexOf(elem)
	if i < 0 {
		return 0, notFoundError(elem)
	}
	return q.entries[i].priority, nil
}

// PeekMin returns the first element holding the lowest priority.
func (q *UnsortedArray[E]) PeekMin() (E, error) {
	i := q.minIndex()
	if i < 0 {
		var zero E
		return zero, ErrEmptyQueue
	}
	return q.entries[i].elem, nil
}

// RemoveMin removes the minimum by moving the last pair into its slot.
func (q *UnsortedArray[E]) RemoveMin() (E, error) {
	i := q.minIndex()
	if i < 0 {
		var zero E
		return zero, ErrEmptyQueue
	}
	top := q.entries[i].elem
	last := len(q.entries) - 1
	q.entries[i] = q.entries[last]
	q.entries[last] = entry[E]{}
	q.entries = q.entries[:last]
	return top, nil
}

// ChangePriority sets the priority of elem.
func (q *UnsortedArray[E]) ChangePriority(elem E, priority float64) error {
	i := q.indexOf(elem)
	if i < 0 {
		return notFoundError(elem)
	}
	if err := checkPriority(priority); err != nil {
		return err
	}
	q.entries[i].priority = priority
	return nil
}

// Len returns the number of elements.
func (q *UnsortedArray[E]) Len() int { return len(q.entries) }

// IsEmpty reports whether the queue has no elements.
func (q *UnsortedArray[E]) IsEmpty() bool { return len(q.entries) == 0 }

func (q *UnsortedArray[E]) indexOf(elem E) int {
	for i := range q.entries {
		if q.entries[i].elem == elem {
			return i
		}
	}
	return -1
}

// minIndex returns the first slot with the lowest priority, or -1 when empty.
func (q *UnsortedArray[E]) minIndex() int {
	if len(q.entries) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(q.entries); i++ {
		if q.entries[i].priority < q.entries[best].priority {
			best = i
		}
	}
	return best
}
