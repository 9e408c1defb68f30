// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPMC is a lock-free multi-producer multi-consumer bounded queue.
//
// The SPSC field-update sequence does not survive multiple writers: two
// producers doing load-then-store on the same tail would claim the same
// slot. MPMC therefore separates slot claim from slot publication, using
// per-slot sequence numbers (Vyukov's bounded MPMC design):
//
//   - Slot i starts with seq == i.
//   - A producer reads tail t; the slot at t&mask is free exactly when its
//     seq == t. The producer claims it with a CAS of tail from t to t+1,
//     writes the element, then publishes with a release store of seq=t+1.
//   - A consumer reads head h; the slot holds an element exactly when its
//     seq == h+1. The consumer claims with a CAS of head from h to h+1,
//     reads the element, then releases the slot for the next lap with a
//     store of seq = h+capacity.
//
// The sequence check before the CAS is what makes the protocol safe: a
// producer can never claim a slot whose consumer has not finished with it,
// a consumer can never observe a half-written element, and a stale index
// (ABA) fails the sequence comparison instead of corrupting a slot.
//
// A lost CAS race retries after a CPU pause; a full or empty queue is
// detected from the sequence lagging the index and returns ErrWouldBlock
// without retrying.
//
// Memory: O(capacity) with one sequence word per slot, slots padded to
// the cache line.
type MPMC[T any] struct {
	_        pad
	tail     atomix.Uint64 // Producer claim index
	_        pad
	head     atomix.Uint64 // Consumer claim index
	_        pad
	buffer   []mpmcSlot[T]
	mask     uint64
	capacity uint64
}

type mpmcSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort // Pad to cache line
}

// NewMPMC creates a new MPMC queue.
// Capacity rounds up to the next power of 2.
// Panics if capacity < 2.
func NewMPMC[T any](capacity int) *MPMC[T] {
	if capacity < 2 {
		panic("syncq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	q := &MPMC[T]{
		buffer:   make([]mpmcSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q
}

// Enqueue adds an element to the queue.
// Safe for concurrent use by any number of producers.
// Returns ErrWouldBlock if the queue is full.
func (q *MPMC[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		slot := &q.buffer[tail&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = *elem
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			return ErrWouldBlock // Slot still owned by a lapped consumer: full
		}
		sw.Once()
	}
}

// Dequeue removes and returns an element from the queue.
// Safe for concurrent use by any number of consumers.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *MPMC[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.capacity)
				return elem, nil
			}
		} else if diff < 0 {
			var zero T
			return zero, ErrWouldBlock // Slot not yet published: empty
		}
		sw.Once()
	}
}

// Cap returns the queue capacity.
func (q *MPMC[T]) Cap() int {
	return int(q.capacity)
}

// MPMCIndirect is an MPMC queue for uintptr values.
// Same claim/publish protocol as MPMC; see QueueIndirect for the
// index-passing idiom.
type MPMCIndirect struct {
	_        pad
	tail     atomix.Uint64
	_        pad
	head     atomix.Uint64
	_        pad
	buffer   []mpmcIndirectSlot
	mask     uint64
	capacity uint64
}

type mpmcIndirectSlot struct {
	seq  atomix.Uint64
	data uintptr
	_    [64 - 16]byte // Pad to cache line
}

// NewMPMCIndirect creates a new MPMC queue for uintptr values.
// Capacity rounds up to the next power of 2.
// Panics if capacity < 2.
func NewMPMCIndirect(capacity int) *MPMCIndirect {
	if capacity < 2 {
		panic("syncq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	q := &MPMCIndirect{
		buffer:   make([]mpmcIndirectSlot, n),
		mask:     n - 1,
		capacity: n,
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full.
func (q *MPMCIndirect) Enqueue(elem uintptr) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		slot := &q.buffer[tail&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = elem
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// Dequeue removes and returns an element from the queue.
// Returns (0, ErrWouldBlock) if the queue is empty.
func (q *MPMCIndirect) Dequeue() (uintptr, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				slot.seq.StoreRelease(head + q.capacity)
				return elem, nil
			}
		} else if diff < 0 {
			return 0, ErrWouldBlock
		}
		sw.Once()
	}
}

// Cap returns the queue capacity.
func (q *MPMCIndirect) Cap() int {
	return int(q.capacity)
}
