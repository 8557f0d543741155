/*
Package minpq provides indexed minimum-priority queues.

A MinPQ holds unique elements, each paired with a float64 priority. The element
with the lowest priority is extracted first. Priorities of queued elements can
be raised or lowered at any time, which is what the ranking code relies on to
turn occurrence counts into a top-k list:

	pq := minpq.New[string](minpq.KindHeap)
	for _, tag := range tags {
		if p, err := pq.Priority(tag); err == nil {
			_ = pq.ChangePriority(tag, p-1)
		} else {
			_ = pq.Add(tag, -1)
		}
	}
	first, _ := pq.RemoveMin() // most frequent tag

# Backends

Two backends implement the same contract and are selected with a Kind:

  - KindHeap: a binary heap stored in a slice plus a map from element to slot.
    Add, RemoveMin and ChangePriority are O(log n); Contains, Priority and
    PeekMin are O(1). NewHeapFrom builds a heap from a map in O(n).
  - KindUnsortedArray: an unordered slice. Add is O(1), everything else is a
    linear scan. It is kept as a reference to check the heap against.

Which of several equal-priority elements is returned first is up to the
backend and may differ between them.

Queues are not safe for concurrent use. Callers that share one across
goroutines must guard every call with the same lock.
*/
package minpq

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrDuplicateElement is returned by Add when the element is already queued.
	ErrDuplicateElement = errors.New("minpq: duplicate element")
	// ErrNotFound is returned when a lookup or update names an absent element.
	ErrNotFound = errors.New("minpq: element not found")
	// ErrEmptyQueue is returned by PeekMin and RemoveMin on an empty queue.
	ErrEmptyQueue = errors.New("minpq: queue is empty")
	// ErrInvalidPriority is returned for NaN priorities, which have no order.
	ErrInvalidPriority = errors.New("minpq: invalid priority")
	// ErrUnknownKind is returned by ParseKind for unrecognised backend names.
	ErrUnknownKind = errors.New("minpq: unknown backend")
)

// MinPQ is a priority queue of unique elements ordered by ascending priority.
type MinPQ[E comparable] interface {
	// Add inserts an element that is not yet in the queue.
	Add(elem E, priority float64) error
	// Contains reports whether elem is in the queue.
	Contains(elem E) bool
	// Priority returns the current priority of elem.
	Priority(elem E) (float64, error)
	// PeekMin returns an element with the lowest priority without removing it.
	PeekMin() (E, error)
	// RemoveMin removes and returns an element with the lowest priority.
	RemoveMin() (E, error)
	// ChangePriority sets a new priority for an element already in the queue.
	ChangePriority(elem E, priority float64) error
	// Len returns the number of queued elements.
	Len() int
	// IsEmpty reports whether Len is zero.
	IsEmpty() bool
}

// Kind selects a MinPQ backend.
type Kind int

const (
	KindHeap Kind = iota
	KindUnsortedArray
)

var kindNames = map[Kind]string{
	KindHeap:          "heap",
	KindUnsortedArray: "array",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a backend name from config or flags to a Kind.
// Matching is case-insensitive; "unsorted" is accepted as an alias for "array".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "heap", "":
		return KindHeap, nil
	case "array", "unsorted":
		return KindUnsortedArray, nil
	}
	return KindHeap, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// New returns an empty queue of the given kind. Unknown kinds get a heap.
func New[E comparable](kind Kind) MinPQ[E] {
	if kind == KindUnsortedArray {
		return NewUnsortedArray[E]()
	}
	return NewHeap[E]()
}

// NewFrom returns a queue of the given kind holding every pair in m.
func NewFrom[E comparable](kind Kind, m map[E]float64) (MinPQ[E], error) {
	if kind == KindUnsortedArray {
		q, err := NewUnsortedArrayFrom(m)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
	h, err := NewHeapFrom(m)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// entry pairs an element with its priority.
type entry[E comparable] struct {
	elem     E
	priority float64
}

func checkPriority(priority float64) error {
	if math.IsNaN(priority) {
		return fmt.Errorf("%w: NaN", ErrInvalidPriority)
	}
	return nil
}

func duplicateError[E comparable](elem E) error {
	return fmt.Errorf("%w: %v", ErrDuplicateElement, elem)
}

func notFoundError[E comparable](elem E) error {
	return fmt.Errorf("%w: %v", ErrNotFound, elem)
}
