package core

import (
	"container/heap"
	"sync"
)

// seqHeap orders pending records by the sequential comparator: scalar
// counter ascending, ties broken by node id ascending (spec.md §3).
type seqHeap []*Record

func (h seqHeap) Len() int            { return len(h) }
func (h seqHeap) Less(i, j int) bool  { return h[i].Scalar.Less(h[j].Scalar) }
func (h seqHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *seqHeap) Push(x interface{}) { *h = append(*h, x.(*Record)) }
func (h *seqHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// sequentialQueue is a thread-safe priority queue of pending records
// for the SequentialScheduler. Insertions and head-inspections are
// linearizable with respect to each other, per spec.md §5.
type sequentialQueue struct {
	mu sync.Mutex
	h  seqHeap
}

func newSequentialQueue() *sequentialQueue {
	return &sequentialQueue{}
}

// Insert atomically adds rec to the queue in priority order.
func (q *sequentialQueue) Insert(rec *Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.h, rec)
}

// Head returns the current minimum without removing it, or nil if the
// queue is empty.
func (q *sequentialQueue) Head() *Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return nil
	}
	return q.h[0]
}

// PopIfHead removes rec from the queue only if it is still the
// current head, preventing a delivery from racing a concurrent
// enqueue that changed the minimum. Returns whether it removed rec.
func (q *sequentialQueue) PopIfHead(rec *Record) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 || q.h[0] != rec {
		return false
	}
	heap.Pop(&q.h)
	return true
}

// Len reports the number of pending records.
func (q *sequentialQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// causalQueue holds pending records for the CausalScheduler. Ordering
// inside the queue is not meaningful for the causal delivery
// predicate (spec.md §3), so FIFO-on-enqueue storage in a plain slice
// is sufficient as long as the delivery loop scans every candidate.
type causalQueue struct {
	mu    sync.Mutex
	items []*Record
}

func newCausalQueue() *causalQueue {
	return &causalQueue{}
}

// Insert appends rec to the queue.
func (q *causalQueue) Insert(rec *Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, rec)
}

// Snapshot returns a copy of the current pending records for the
// delivery loop to scan. Copying avoids holding the lock while the
// predicate and delivery side effects run.
func (q *causalQueue) Snapshot() []*Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Record, len(q.items))
	copy(out, q.items)
	return out
}

// Remove deletes rec from the queue, if present.
func (q *causalQueue) Remove(rec *Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, item := range q.items {
		if item == rec {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Len reports the number of pending records.
func (q *causalQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
