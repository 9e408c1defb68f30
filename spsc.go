// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncq

import (
	"code.hybscloud.com/atomix"
)

// SPSC is a lock-free single-producer single-consumer bounded queue.
//
// The ring buffer has no mutex. Each index field has exactly one writer:
// only the producer advances tail, only the consumer advances head, and
// the shared size counter is incremented by the producer and decremented
// by the consumer. Under that one-writer-per-field discipline a plain
// load-check-update sequence is race-free; no compare-and-swap is needed.
//
// The size counter is the sole cross-side synchronization point. The
// producer publishes a written slot with a release increment, and the
// consumer's acquire load of size makes the slot contents visible before
// it reads them. The mirror argument covers slot reuse on the producer
// side.
//
// Violating the SPSC discipline (a second producer or consumer) is
// undefined behavior: use MPMC for that. There is no runtime check.
//
// Memory: O(capacity) with no per-slot overhead.
type SPSC[T any] struct {
	_    pad
	size atomix.Int64 // producer increments, consumer decrements
	_    pad
	tail uint64 // producer-owned: next slot to enqueue into
	_    pad
	head uint64 // consumer-owned: next slot to dequeue from
	_    pad
	buffer []T
	mask   uint64
}

// NewSPSC creates a new SPSC queue.
// Capacity rounds up to the next power of 2.
// Panics if capacity < 2.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity < 2 {
		panic("syncq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &SPSC[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Enqueue adds an element to the queue (producer only).
// Returns ErrWouldBlock if the queue is full.
func (q *SPSC[T]) Enqueue(elem *T) error {
	if q.size.LoadAcquire() > int64(q.mask) {
		return ErrWouldBlock
	}

	q.buffer[q.tail&q.mask] = *elem
	q.tail++
	q.size.AddAcqRel(1)
	return nil
}

// Dequeue removes and returns an element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *SPSC[T]) Dequeue() (T, error) {
	if q.size.LoadAcquire() == 0 {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := q.buffer[q.head&q.mask]
	var zero T
	q.buffer[q.head&q.mask] = zero
	q.head++
	q.size.AddAcqRel(-1)
	return elem, nil
}

// Len returns the number of elements currently in the queue.
// The count is exact for whichever side reads it, conservative for an
// outside observer.
func (q *SPSC[T]) Len() int {
	return int(q.size.LoadAcquire())
}

// Cap returns the queue capacity.
func (q *SPSC[T]) Cap() int {
	return int(q.mask + 1)
}

// SPSCIndirect is an SPSC queue for uintptr values.
// Useful for index-based pools and free lists; see QueueIndirect.
type SPSCIndirect struct {
	_    pad
	size atomix.Int64
	_    pad
	tail uint64
	_    pad
	head uint64
	_    pad
	buffer []uintptr
	mask   uint64
}

// NewSPSCIndirect creates a new SPSC queue for uintptr values.
// Capacity rounds up to the next power of 2.
// Panics if capacity < 2.
func NewSPSCIndirect(capacity int) *SPSCIndirect {
	if capacity < 2 {
		panic("syncq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	return &SPSCIndirect{
		buffer: make([]uintptr, n),
		mask:   n - 1,
	}
}

// Enqueue adds an element (producer only).
// Returns ErrWouldBlock if the queue is full.
func (q *SPSCIndirect) Enqueue(elem uintptr) error {
	if q.size.LoadAcquire() > int64(q.mask) {
		return ErrWouldBlock
	}

	q.buffer[q.tail&q.mask] = elem
	q.tail++
	q.size.AddAcqRel(1)
	return nil
}

// Dequeue removes and returns an element (consumer only).
// Returns (0, ErrWouldBlock) if the queue is empty.
func (q *SPSCIndirect) Dequeue() (uintptr, error) {
	if q.size.LoadAcquire() == 0 {
		return 0, ErrWouldBlock
	}

	elem := q.buffer[q.head&q.mask]
	q.head++
	q.size.AddAcqRel(-1)
	return elem, nil
}

// Len returns the number of elements currently in the queue.
func (q *SPSCIndirect) Len() int {
	return int(q.size.LoadAcquire())
}

// Cap returns the queue capacity.
func (q *SPSCIndirect) Cap() int {
	return int(q.mask + 1)
}
