package work

import "sync"

// RingBuffer keeps the most recent finished items. Goroutine-safe.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []Item
	size  int
	head  int // next write position
	count int // number of valid entries (0..size)
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 1
	}
	return &RingBuffer{
		buf:  make([]Item, size),
		size: size,
	}
}

// Push adds an item, overwriting the oldest if full.
func (r *RingBuffer) Push(item Item) {
	r.mu.Lock()
	r.buf[r.head] = item
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
	r.mu.Unlock()
}

// All returns every item, newest first.
func (r *RingBuffer) All() []Item {
	return r.Recent(r.Len())
}

// Recent returns up to n items, newest first.
func (r *RingBuffer) Recent(n int) []Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}

	result := make([]Item, n)
	for i := 0; i < n; i++ {
		idx := (r.head - 1 - i + r.size) % r.size
		result[i] = r.buf[idx]
	}
	return result
}

// Len returns the number of items held.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
