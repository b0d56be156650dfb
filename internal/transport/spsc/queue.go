// Package spsc implements the bounded, single-producer/single-consumer
// lock-free ring buffer that decouples the pipeline stages (§4.1). It
// generalizes the teacher's infra/memory.RetireRing (and its near-duplicate
// rbq.retireRing) — both fixed to *order_book.Order — into a generic queue
// parameterized over element type, since this engine needs one instance for
// ingress->matcher requests and a second for matcher->egress events.
package spsc

import (
	"sync/atomic"
)

const cacheLinePad = 64 - 8 // one uint64 already occupies 8 bytes of the line

// Queue is a fixed-capacity ring buffer with exactly one producer and one
// consumer. Capacity must be a power of two; one slot is always sacrificed
// to disambiguate full from empty, so effective capacity is N-1 (§4.1).
type Queue[T any] struct {
	head uint64
	_    [cacheLinePad]byte
	tail uint64
	_    [cacheLinePad]byte

	buf  []T
	mask uint64
}

// New allocates a queue of capacity n, which must be a power of two.
func New[T any](n uint64) *Queue[T] {
	if n == 0 || n&(n-1) != 0 {
		panic("spsc: capacity must be a power of two")
	}
	return &Queue[T]{
		buf:  make([]T, n),
		mask: n - 1,
	}
}

// Push enqueues item. It is non-blocking and writer-only; it returns false
// if the queue is full.
//
// The writer reads tail with relaxed ordering (it owns that index) and head
// with acquire ordering to observe the reader's latest position, then
// writes the slot and publishes the new tail with a release store so the
// reader is guaranteed to see the slot write before it observes the
// advanced tail — the canonical Lamport SPSC protocol (§4.1).
func (q *Queue[T]) Push(item T) bool {
	tail := q.tail
	head := atomic.LoadUint64(&q.head)
	if tail-head == uint64(len(q.buf)-1) {
		return false
	}
	q.buf[tail&q.mask] = item
	atomic.StoreUint64(&q.tail, tail+1)
	return true
}

// Pop dequeues the oldest item. It is non-blocking and reader-only; ok is
// false if the queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	head := q.head
	tail := atomic.LoadUint64(&q.tail)
	if head == tail {
		return item, false
	}
	item = q.buf[head&q.mask]
	var zero T
	q.buf[head&q.mask] = zero
	atomic.StoreUint64(&q.head, head+1)
	return item, true
}

// IsEmpty reports whether the queue currently has no items. The result may
// be stale by the time the caller observes it.
func (q *Queue[T]) IsEmpty() bool {
	return atomic.LoadUint64(&q.head) == atomic.LoadUint64(&q.tail)
}

// Len returns an approximate current occupancy, for metrics gauges. May be
// stale.
func (q *Queue[T]) Len() int {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	return int(tail - head)
}

// Cap returns the queue's raw slot count (effective capacity is Cap()-1).
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}
