package utils

import "testing"

func TestCircularQueueOverwritesOldest(t *testing.T) {
	q := NewCircularQueue[int](3)
	for i := 1; i <= 4; i++ {
		dropped, err := q.Append(i)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if dropped != (i == 4) {
			t.Fatalf("append %d: unexpected dropped=%v", i, dropped)
		}
	}
	if q.Len() != 3 || q.Cap() != 3 {
		t.Fatalf("expected len/cap 3/3, got %d/%d", q.Len(), q.Cap())
	}
	var got []int
	for v := range q.Iter() {
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 2 || got[2] != 4 {
		t.Fatalf("unexpected contents %v", got)
	}
	if v, ok := q.Pop(); !ok || v != 2 {
		t.Fatalf("expected to pop 2, got %d %v", v, ok)
	}
	if v, _ := q.Peek(); v != 3 {
		t.Fatalf("expected peek 3, got %d", v)
	}
	if _, err := q.Get(5); err == nil {
		t.Fatalf("expected out of range error")
	}
	q.Clear()
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestCircularQueueZeroCapacity(t *testing.T) {
	q := NewCircularQueue[string](0)
	if _, err := q.Append("x"); err == nil {
		t.Fatalf("expected error on zero capacity queue")
	}
}
