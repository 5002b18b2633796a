package stats

import "slices"

// Tally counts occurrences of keys and remembers the order keys were first seen.
// Iteration, Max and Top all follow first-seen order, so results are
// deterministic for a given input sequence.
type Tally[K comparable] struct {
	order  []K
	counts map[K]int
}

// Count pairs a key with its tally.
type Count[K comparable] struct {
	Key   K
	Count int
}

func NewTally[K comparable]() *Tally[K] {
	return &Tally[K]{counts: make(map[K]int)}
}

// Inc adds one to k, starting from zero for unseen keys, and returns the new count.
func (t *Tally[K]) Inc(k K) int {
	n, seen := t.counts[k]
	if !seen {
		t.order = append(t.order, k)
	}
	n++
	t.counts[k] = n
	return n
}

func (t *Tally[K]) Count(k K) int {
	return t.counts[k]
}

func (t *Tally[K]) Len() int {
	return len(t.order)
}

// Entries returns every key with its count in first-seen order.
func (t *Tally[K]) Entries() []Count[K] {
	out := make([]Count[K], 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Count[K]{Key: k, Count: t.counts[k]})
	}
	return out
}

// Max returns the key with the highest count. Ties go to the key seen first.
// ok is false when the tally is empty.
func (t *Tally[K]) Max() (key K, count int, ok bool) {
	for _, k := range t.order {
		if n := t.counts[k]; !ok || n > count {
			key, count, ok = k, n, true
		}
	}
	return key, count, ok
}

// Top returns up to n entries ordered by count descending. Equal counts keep
// first-seen order.
func (t *Tally[K]) Top(n int) []Count[K] {
	entries := t.Entries()
	slices.SortStableFunc(entries, func(a, b Count[K]) int {
		return b.Count - a.Count
	})
	if n < 0 {
		n = 0
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
