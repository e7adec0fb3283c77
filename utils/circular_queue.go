package utils

import (
	"iter"

	"github.com/oomph-ac/locomotion/oerror"
)

// CircularQueue is a fixed capacity FIFO. Appending to a full queue drops the
// oldest element.
type CircularQueue[T any] struct {
	items []T
	head  int
	tail  int
	count int
}

func NewCircularQueue[T any](capacity int) *CircularQueue[T] {
	return &CircularQueue[T]{items: make([]T, capacity)}
}

// Get returns the element at logical position index (0 = oldest).
func (q *CircularQueue[T]) Get(index int) (T, error) {
	var zero T
	if index < 0 || index >= q.count {
		return zero, oerror.New("circular queue: index %d out of range [0,%d)", index, q.count)
	}
	return q.items[(q.head+index)%len(q.items)], nil
}

func (q *CircularQueue[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for index := range q.count {
			if !yield(q.items[(q.head+index)%len(q.items)]) {
				return
			}
		}
	}
}

// Len returns the number of queued elements.
func (q *CircularQueue[T]) Len() int {
	return q.count
}

// Cap returns the maximum number of elements the queue can hold.
func (q *CircularQueue[T]) Cap() int {
	return len(q.items)
}

// Peek returns the oldest element without removing it.
func (q *CircularQueue[T]) Peek() (item T, ok bool) {
	if q.count == 0 {
		return item, false
	}
	return q.items[q.head], true
}

// Pop removes and returns the oldest element. The boolean ok is false if the
// queue is empty.
func (q *CircularQueue[T]) Pop() (item T, ok bool) {
	if q.count == 0 {
		return item, false
	}
	var zero T
	item = q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return item, true
}

// Append appends an item. It returns true if the oldest element had to be
// dropped to make room.
func (q *CircularQueue[T]) Append(item T) (dropped bool, err error) {
	if len(q.items) == 0 {
		return false, oerror.New("circular queue: append on zero-capacity queue")
	}

	q.items[q.tail] = item
	if q.count == len(q.items) {
		q.head = (q.head + 1) % len(q.items)
		dropped = true
	} else {
		q.count++
	}
	q.tail = (q.tail + 1) % len(q.items)
	return dropped, nil
}

// Clear empties the queue without releasing its storage.
func (q *CircularQueue[T]) Clear() {
	clear(q.items)
	q.head, q.tail, q.count = 0, 0, 0
}
