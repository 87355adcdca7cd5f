package store

import "sync"

// Ring is a fixed-capacity, append-at-tail, evict-from-head sequence.
type Ring[T any] struct {
	mu       sync.RWMutex
	buf      []T
	head     int // oldest item
	count    int
	capacity int

	// Stats
	totalAppended int64
	totalEvicted  int64
}

// New creates an empty ring holding at most capacity items.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
	}
}

// Append adds items at the tail in order, evicting from the head whenever the
// ring is full. It returns the number of items evicted. The whole batch is
// applied under one lock, so readers see either none or all of it.
func (r *Ring[T]) Append(items ...T) int {
	if len(items) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for _, item := range items {
		if r.count == r.capacity {
			// Overwrite the oldest slot; it becomes the newest.
			r.buf[r.head] = item
			r.head = (r.head + 1) % r.capacity
			evicted++
			continue
		}
		r.buf[(r.head+r.count)%r.capacity] = item
		r.count++
	}

	r.totalAppended += int64(len(items))
	r.totalEvicted += int64(evicted)
	return evicted
}

// Snapshot returns a copy of all items, oldest first.
func (r *Ring[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyLast(r.count)
}

// Last returns a copy of the newest n items, oldest first.
// n larger than Len() returns everything; n <= 0 returns an empty slice.
func (r *Ring[T]) Last(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyLast(n)
}

// Latest returns the newest item, or false if the ring is empty.
func (r *Ring[T]) Latest() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest()
}

// Peek returns the newest item together with the length it was observed at.
func (r *Ring[T]) Peek() (latest T, count int, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest, ok = r.latest()
	return latest, r.count, ok
}

// Len returns the current number of items.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Stats returns ring statistics.
func (r *Ring[T]) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Count:         r.count,
		Capacity:      r.capacity,
		TotalAppended: r.totalAppended,
		TotalEvicted:  r.totalEvicted,
	}
}

// Stats contains ring statistics.
type Stats struct {
	Count         int
	Capacity      int
	TotalAppended int64
	TotalEvicted  int64
}

// latest must be called with the lock held.
func (r *Ring[T]) latest() (T, bool) {
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return r.buf[(r.head+r.count-1)%r.capacity], true
}

// copyLast must be called with the lock held.
func (r *Ring[T]) copyLast(n int) []T {
	if n > r.count {
		n = r.count
	}
	if n < 0 {
		n = 0
	}

	result := make([]T, n)
	start := (r.head + r.count - n) % r.capacity
	if start+n <= r.capacity {
		copy(result, r.buf[start:start+n])
	} else {
		// Wrapped: [start...end) + [0...rest)
		k := copy(result, r.buf[start:])
		copy(result[k:], r.buf[:n-k])
	}
	return result
}
