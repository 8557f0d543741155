// Package rank counts occurrences of items and ranks them by frequency using a
// minpq.MinPQ keyed on the negated count, so the queue minimum is always the
// most frequent item.
package rank

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bastiangx/wordrank/pkg/minpq"
	"github.com/tchap/go-patricia/v2/patricia"
)

var (
	ErrInvalidWeight = errors.New("rank: weight must be positive")
	ErrInvalidK      = errors.New("rank: k must be positive")
	ErrEmptyItem     = errors.New("rank: empty item")
)

// Entry is an item with the number of times it was observed.
type Entry struct {
	Item  string
	Count int
}

// Ranker tracks item frequencies.
//
// The live queue holds every observed item with priority -count. counts is a
// patricia trie over the same items that serves prefix queries and non-destructive
// snapshots. Top results are cached until the next change. A Ranker is not safe
// for concurrent use.
type Ranker struct {
	kind         minpq.Kind
	queue        minpq.MinPQ[string]
	counts       *patricia.Trie
	cache        *topCache
	observations int
}

// CacheStats reports how many Top calls were answered from the cache.
type CacheStats struct {
	Hits   int
	Misses int
	Size   int
}

// New returns an empty Ranker whose queues use the given backend.
func New(kind minpq.Kind) *Ranker {
	return &Ranker{
		kind:   kind,
		queue:  minpq.New[string](kind),
		counts: patricia.NewTrie(),
		cache:  newTopCache(defaultCacheSize),
	}
}

// Observe records one occurrence of item.
func (r *Ranker) Observe(item string) error {
	return r.ObserveN(item, 1)
}

// ObserveN records n occurrences of item. A new item is added with priority
// -n; a known one has its priority lowered by n.
func (r *Ranker) ObserveN(item string, n int) error {
	if item == "" {
		return ErrEmptyItem
	}
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWeight, n)
	}

	p, err := r.queue.Priority(item)
	switch {
	case err == nil:
		err = r.queue.ChangePriority(item, p-float64(n))
	case errors.Is(err, minpq.ErrNotFound):
		err = r.queue.Add(item, -float64(n))
	}
	if err != nil {
		return err
	}

	r.counts.Set(patricia.Prefix(item), r.Count(item)+n)
	r.observations += n
	r.cache.invalidate()
	return nil
}

// Count returns how often item has been observed since it was last drained.
func (r *Ranker) Count(item string) int {
	if item == "" {
		return 0
	}
	if v, ok := r.counts.Get(patricia.Prefix(item)).(int); ok {
		return v
	}
	return 0
}

// Len returns the number of distinct items currently ranked.
func (r *Ranker) Len() int { return r.queue.Len() }

// Observations returns the total weight observed, drained items included.
func (r *Ranker) Observations() int { return r.observations }

// Kind returns the queue backend in use.
func (r *Ranker) Kind() minpq.Kind { return r.kind }

// CacheStats returns the Top cache counters.
func (r *Ranker) CacheStats() CacheStats {
	return CacheStats{Hits: r.cache.hits, Misses: r.cache.misses, Size: len(r.cache.results)}
}

// Reset forgets every item.
func (r *Ranker) Reset() {
	r.queue = minpq.New[string](r.kind)
	r.counts = patricia.NewTrie()
	r.observations = 0
	r.cache.invalidate()
}

// Drain removes and returns up to k items from the live queue, most frequent
// first. Drained items stop being ranked until they are observed again. The
// order among equal counts is whatever the backend yields.
func (r *Ranker) Drain(k int) ([]Entry, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	out := make([]Entry, 0, min(k, r.queue.Len()))
	for len(out) < k && !r.queue.IsEmpty() {
		item, err := r.queue.RemoveMin()
		if err != nil {
			return out, err
		}
		out = append(out, Entry{Item: item, Count: r.Count(item)})
		r.counts.Delete(patricia.Prefix(item))
		r.cache.invalidate()
	}
	return out, nil
}

// Top returns the k most frequent items without changing the Ranker.
// Equal counts are ordered by item.
func (r *Ranker) Top(k int) ([]Entry, error) {
	return r.TopPrefix("", k)
}

// TopPrefix is Top restricted to items starting with prefix.
func (r *Ranker) TopPrefix(prefix string, k int) ([]Entry, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	if cached, ok := r.cache.get(prefix, k); ok {
		return cached, nil
	}

	snapshot := make(map[string]float64)
	collect := func(p patricia.Prefix, item patricia.Item) error {
		if count, ok := item.(int); ok {
			snapshot[string(p)] = -float64(count)
		}
		return nil
	}

	var err error
	if prefix == "" {
		err = r.counts.Visit(collect)
	} else {
		err = r.counts.VisitSubtree(patricia.Prefix(prefix), collect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to visit counts: %w", err)
	}
	top, err := topOf(r.kind, snapshot, k)
	if err != nil {
		return nil, err
	}
	r.cache.put(prefix, k, top)
	return top, nil
}

// topOf heapifies the snapshot and extracts k items. Extraction continues past
// k while the priority stays equal to the k-th one, so the cut can be made
// after sorting ties by item.
func topOf(kind minpq.Kind, snapshot map[string]float64, k int) ([]Entry, error) {
	pq, err := minpq.NewFrom(kind, snapshot)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, min(k, len(snapshot)))
	var last float64
	for !pq.IsEmpty() {
		if len(out) >= k {
			next, _ := pq.PeekMin()
			if snapshot[next] != last {
				break
			}
		}
		item, err := pq.RemoveMin()
		if err != nil {
			return nil, err
		}
		last = snapshot[item]
		out = append(out, Entry{Item: item, Count: int(-last)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Item < out[j].Item
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
