package attempt

import "sync"

// Log is a fixed-capacity append-only ring. Append is O(1); once full,
// every append evicts the oldest entry. Safe for concurrent use.
type Log[T any] struct {
	mu      sync.Mutex
	entries []T
	start   int
	count   int
}

func NewLog[T any](capacity int) *Log[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log[T]{entries: make([]T, capacity)}
}

func (l *Log[T]) Append(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count < len(l.entries) {
		l.entries[(l.start+l.count)%len(l.entries)] = v
		l.count++
		return
	}
	l.entries[l.start] = v
	l.start = (l.start + 1) % len(l.entries)
}

func (l *Log[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Snapshot returns a copy of the retained entries, most recent first.
func (l *Log[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.entries[(l.start+l.count-1-i)%len(l.entries)]
	}
	return out
}
