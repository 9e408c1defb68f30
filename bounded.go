// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncq

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Bounded is a mutex-protected bounded FIFO queue.
//
// Every Enqueue/Dequeue serializes through an internal mutex, which makes
// the queue safe for any number of producers and consumers with no access
// discipline to uphold. Capacity is exact: no power-of-2 rounding.
//
// Enqueue and Dequeue are non-blocking and return ErrWouldBlock on a full
// or empty queue, like every queue in this package. Put and Take layer the
// blocking contract on top, waiting according to the WaitPolicy chosen at
// construction.
//
// Memory: O(capacity), one slot per element.
type Bounded[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	policy   WaitPolicy

	buffer []T
	head   int // next slot to dequeue from
	tail   int // next slot to enqueue into
	size   atomix.Int64

	capacity int
}

// NewBounded creates a mutex-protected queue holding exactly capacity
// elements. The optional policy selects how Put/Take wait; the default is
// WaitCond.
//
// Panics if capacity < 1.
func NewBounded[T any](capacity int, policy ...WaitPolicy) *Bounded[T] {
	if capacity < 1 {
		panic("syncq: capacity must be >= 1")
	}

	q := &Bounded[T]{
		policy:   pickPolicy(policy),
		buffer:   make([]T, capacity),
		capacity: capacity,
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// enqueueLocked stores elem at tail. Caller holds mu and has verified the
// queue is not full.
func (q *Bounded[T]) enqueueLocked(elem *T) {
	q.buffer[q.tail] = *elem
	q.tail = (q.tail + 1) % q.capacity
	q.size.Add(1)
	q.notEmpty.Signal()
}

// dequeueLocked removes and returns the element at head. Caller holds mu
// and has verified the queue is not empty.
func (q *Bounded[T]) dequeueLocked() T {
	elem := q.buffer[q.head]
	var zero T
	q.buffer[q.head] = zero
	q.head = (q.head + 1) % q.capacity
	q.size.Add(-1)
	q.notFull.Signal()
	return elem
}

// Enqueue adds an element to the queue (non-blocking).
// Returns ErrWouldBlock if the queue is full.
func (q *Bounded[T]) Enqueue(elem *T) error {
	q.mu.Lock()
	if int(q.size.Load()) == q.capacity {
		q.mu.Unlock()
		return ErrWouldBlock
	}
	q.enqueueLocked(elem)
	q.mu.Unlock()
	return nil
}

// Dequeue removes and returns an element from the queue (non-blocking).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Bounded[T]) Dequeue() (T, error) {
	q.mu.Lock()
	if q.size.Load() == 0 {
		q.mu.Unlock()
		var zero T
		return zero, ErrWouldBlock
	}
	elem := q.dequeueLocked()
	q.mu.Unlock()
	return elem, nil
}

// Put adds an element to the queue, waiting until space is available.
//
// Under WaitCond the goroutine parks on a condition variable; under
// WaitPoll it retries Enqueue with adaptive backoff. Put cannot be
// cancelled; use PutMax for a bounded number of attempts.
func (q *Bounded[T]) Put(elem *T) {
	if q.policy == WaitPoll {
		backoff := iox.Backoff{}
		for q.Enqueue(elem) != nil {
			backoff.Wait()
		}
		return
	}

	q.mu.Lock()
	for int(q.size.Load()) == q.capacity {
		q.notFull.Wait()
	}
	q.enqueueLocked(elem)
	q.mu.Unlock()
}

// Take removes and returns an element, waiting until one is available.
//
// Under WaitCond the goroutine parks on a condition variable; under
// WaitPoll it retries Dequeue with adaptive backoff. Take cannot be
// cancelled; use TakeMax for a bounded number of attempts.
func (q *Bounded[T]) Take() T {
	if q.policy == WaitPoll {
		backoff := iox.Backoff{}
		for {
			elem, err := q.Dequeue()
			if err == nil {
				return elem
			}
			backoff.Wait()
		}
	}

	q.mu.Lock()
	for q.size.Load() == 0 {
		q.notEmpty.Wait()
	}
	elem := q.dequeueLocked()
	q.mu.Unlock()
	return elem
}

// PutMax adds an element, retrying with backoff at most attempts times.
// Returns ErrWouldBlock if the queue stayed full for every attempt.
// Exhaustion is the caller's drop/fatal condition to handle.
//
// PutMax always polls, regardless of the queue's WaitPolicy: a bounded
// attempt budget has no condition variable rendering.
//
// Panics if attempts < 1.
func (q *Bounded[T]) PutMax(elem *T, attempts int) error {
	if attempts < 1 {
		panic("syncq: attempts must be >= 1")
	}
	backoff := iox.Backoff{}
	for range attempts {
		if q.Enqueue(elem) == nil {
			return nil
		}
		backoff.Wait()
	}
	return ErrWouldBlock
}

// TakeMax removes and returns an element, retrying with backoff at most
// attempts times. Returns (zero-value, ErrWouldBlock) if the queue stayed
// empty for every attempt.
//
// Panics if attempts < 1.
func (q *Bounded[T]) TakeMax(attempts int) (T, error) {
	if attempts < 1 {
		panic("syncq: attempts must be >= 1")
	}
	backoff := iox.Backoff{}
	for range attempts {
		elem, err := q.Dequeue()
		if err == nil {
			return elem, nil
		}
		backoff.Wait()
	}
	var zero T
	return zero, ErrWouldBlock
}

// Len returns the number of elements currently in the queue.
//
// The count is read atomically without taking the mutex: it is exact at
// the instant of the read but may be stale relative to concurrent
// mutations. Advisory use only.
func (q *Bounded[T]) Len() int {
	return int(q.size.Load())
}

// IsEmpty reports whether the queue is empty. Advisory snapshot; see Len.
func (q *Bounded[T]) IsEmpty() bool {
	return q.size.Load() == 0
}

// IsFull reports whether the queue is full. Advisory snapshot; see Len.
func (q *Bounded[T]) IsFull() bool {
	return int(q.size.Load()) == q.capacity
}

// Cap returns the queue capacity.
func (q *Bounded[T]) Cap() int {
	return q.capacity
}
