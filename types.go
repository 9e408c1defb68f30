// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncq

// Queue is the combined producer-consumer interface for a bounded FIFO
// queue.
//
// Queue provides non-blocking Enqueue and Dequeue operations. Both
// operations return ErrWouldBlock when they cannot proceed (queue full or
// empty). All queue variants in this package (Bounded, SPSC, MPMC)
// implement Queue.
//
// The interface intentionally excludes length: not every variant can
// report one cheaply (see the package doc). Variants that can (Bounded,
// SPSC) expose Len on the concrete type.
//
// Example:
//
//	q := syncq.NewMPMC[int](1024)
//
//	// Enqueue
//	val := 42
//	if err := q.Enqueue(&val); err != nil {
//	    // Handle full queue
//	}
//
//	// Dequeue
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Cap() int
}

// Producer is the interface for enqueueing elements.
//
// Producer provides non-blocking enqueue operations. The element is passed
// by pointer to avoid copying large structs. The queue stores a copy of
// the pointed-to value, so the original can be modified after Enqueue
// returns. The queue never retains the pointer itself.
type Producer[T any] interface {
	// Enqueue adds an element to the queue (non-blocking).
	// The element is copied into the queue's internal buffer.
	// Returns nil on success, ErrWouldBlock if the queue is full.
	//
	// Thread safety depends on queue type:
	//   - Bounded/MPMC: multiple producers safe
	//   - SPSC: single producer only
	Enqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// Consumer provides non-blocking dequeue operations. The element is
// returned by value (copied from the queue's internal buffer). The
// original slot is cleared to allow garbage collection of referenced
// objects; the queue never frees or finalizes payloads itself.
type Consumer[T any] interface {
	// Dequeue removes and returns an element from the queue (non-blocking).
	// Returns the dequeued element on success.
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	//
	// Thread safety depends on queue type:
	//   - Bounded/MPMC: multiple consumers safe
	//   - SPSC: single consumer only
	Dequeue() (T, error)
}

// QueueIndirect is the combined interface for indirect (uintptr) queues.
//
// QueueIndirect passes indices or handles instead of full objects. This is
// useful for buffer pools, object pools, or any index-based data
// structure.
//
// Example (buffer pool):
//
//	pool := make([][]byte, 1024)
//	freeList := syncq.NewSPSCIndirect(1024)
//
//	// Initialize pool
//	for i := range pool {
//	    pool[i] = make([]byte, 4096)
//	    freeList.Enqueue(uintptr(i))
//	}
//
//	// Allocate
//	idx, _ := freeList.Dequeue()
//	buf := pool[idx]
//
//	// Free
//	freeList.Enqueue(idx)
type QueueIndirect interface {
	ProducerIndirect
	ConsumerIndirect
	Cap() int
}

// ProducerIndirect enqueues uintptr values (non-blocking).
type ProducerIndirect interface {
	// Enqueue adds an element to the queue.
	// Returns ErrWouldBlock immediately if the queue is full.
	Enqueue(elem uintptr) error
}

// ConsumerIndirect dequeues uintptr values (non-blocking).
type ConsumerIndirect interface {
	// Dequeue removes and returns an element from the queue.
	// Returns (0, ErrWouldBlock) immediately if the queue is empty.
	Dequeue() (uintptr, error)
}

// WaitPolicy selects how a primitive waits for a condition to hold.
//
// Primitives that can wait (Bounded's Put/Take, RWLock, Barrier) accept a
// WaitPolicy at construction. The policy is fixed for the object's
// lifetime.
type WaitPolicy int

const (
	// WaitCond parks the waiting goroutine on a condition variable and
	// relies on signal/broadcast for wakeup. Zero CPU while idle.
	// This is the default.
	WaitCond WaitPolicy = iota

	// WaitPoll re-checks the condition in a loop, yielding with adaptive
	// backoff between attempts. CPU is spent proportionally to contention
	// duration. Useful when wakeup latency matters more than burned
	// cycles, and for exercising primitives under a polling regime.
	WaitPoll
)

// pickPolicy resolves the optional trailing WaitPolicy argument accepted
// by constructors. At most one policy may be supplied.
func pickPolicy(policy []WaitPolicy) WaitPolicy {
	switch len(policy) {
	case 0:
		return WaitCond
	case 1:
		return policy[0]
	default:
		panic("syncq: at most one WaitPolicy may be supplied")
	}
}
