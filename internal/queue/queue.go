// Package queue provides the FIFO hand-off between the sampler and the log writer.
package queue

import (
	"errors"
	"sync"
)

// ErrFull is returned by Enqueue when a bounded queue is at capacity.
var ErrFull = errors.New("queue is full")

// Queue is a FIFO safe for concurrent Enqueue and TryDequeue. A zero limit
// means unbounded.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
	limit int
}

// New creates an unbounded queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// NewBounded creates a queue that rejects new items once limit are pending.
// A limit of zero or less behaves like New.
func NewBounded[T any](limit int) *Queue[T] {
	if limit < 0 {
		limit = 0
	}
	return &Queue[T]{limit: limit}
}

// Enqueue appends v to the tail. The newest item is the one rejected when a
// bounded queue is full.
func (q *Queue[T]) Enqueue(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && len(q.items)-q.head >= q.limit {
		return ErrFull
	}
	q.items = append(q.items, v)
	return nil
}

// TryDequeue removes and returns the head item. ok is false when empty.
func (q *Queue[T]) TryDequeue() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return v, false
	}

	v = q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++

	// Compact once the consumed prefix dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return v, true
}

// Len reports the number of pending items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
