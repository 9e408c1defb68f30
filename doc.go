// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package syncq provides bounded queues and low-level synchronization
// primitives for preemptively scheduled goroutines.
//
// The package offers five independent primitives that share one design
// vocabulary (fixed-capacity ring buffers, atomic counters, non-blocking
// operations with caller-driven waiting):
//
//   - Bounded: mutex-protected ring queue with optional blocking helpers
//   - SPSC: lock-free single-producer single-consumer queue
//   - MPMC: lock-free multi-producer multi-consumer queue
//   - RWLock: writer-priority reader-writer lock
//   - Barrier: cyclic generation-counted rendezvous point
//
// # Quick Start
//
// Direct constructors (recommended for most cases):
//
//	q := syncq.NewSPSC[Event](1024)
//	q := syncq.NewMPMC[*Request](4096)
//	q := syncq.NewBounded[Job](64)
//
// Builder API auto-selects the queue algorithm based on constraints:
//
//	q := syncq.Build[Event](syncq.New(1024).SingleProducer().SingleConsumer()) // → SPSC
//	q := syncq.Build[Event](syncq.New(1024))                                   // → MPMC
//	q := syncq.Build[Event](syncq.New(1024).Locked())                          // → Bounded
//
// # Basic Usage
//
// All queues share the same interface for enqueueing and dequeueing:
//
//	q := syncq.NewMPMC[int](1024)
//
//	// Enqueue (non-blocking)
//	value := 42
//	err := q.Enqueue(&value)
//	if syncq.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	// Dequeue (non-blocking)
//	elem, err := q.Dequeue()
//	if syncq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// Enqueue and Dequeue never block: they return [ErrWouldBlock] immediately
// when the queue is full or empty. Waiting is the caller's decision, not the
// queue's. The canonical retry loop uses iox.Backoff:
//
//	backoff := iox.Backoff{}
//	for q.Enqueue(&item) != nil {
//	    backoff.Wait()
//	}
//	backoff.Reset()
//
// The Bounded queue additionally packages that loop as Put/Take with a
// configurable wait policy (see below); the lock-free queues never do.
//
// # Choosing a Queue
//
// Bounded serializes every operation through a mutex and keeps the exact
// capacity requested. Use it when producers and consumers are few, when
// capacity must not round up, or when the blocking Put/Take helpers are
// wanted.
//
// SPSC is the fastest variant but its access discipline is strict: exactly
// one goroutine may enqueue and exactly one may dequeue. Violating the
// discipline causes data corruption. There is no runtime check.
//
// MPMC admits any number of producers and consumers without a mutex. It
// uses per-slot sequence numbers (claim-then-publish, see [MPMC]) so that
// two producers can never write the same slot and a consumer can never
// observe a half-written element.
//
// # Wait Policies
//
// Primitives that wait (Bounded's Put/Take, RWLock, Barrier) accept an
// optional [WaitPolicy]:
//
//	WaitCond - park on a condition variable until signaled (default)
//	WaitPoll - retry with adaptive backoff between attempts
//
//	l := syncq.NewRWLock(syncq.WaitPoll)
//	b := syncq.NewBarrier(8, syncq.WaitPoll)
//
// WaitCond costs nothing while idle. WaitPoll trades CPU for latency and
// exists for workloads where wakeup latency matters more than burned
// cycles, and for exercising the primitives under a polling regime.
//
// # Reader-Writer Lock
//
// RWLock grants shared access to readers and exclusive access to writers,
// with writer priority: once a writer is waiting, new readers queue behind
// it. This prevents writer starvation at the cost of reader throughput
// under write-heavy load.
//
//	var cache map[string]string
//	l := syncq.NewRWLock()
//
//	// Reader
//	l.RLock()
//	v := cache["key"]
//	l.RUnlock()
//
//	// Writer
//	l.Lock()
//	cache["key"] = "value"
//	l.Unlock()
//
// Lock acquisition order among contenders of the same class is not
// guaranteed; there is no FIFO ticketing.
//
// # Barrier
//
// Barrier synchronizes a fixed party of goroutines at a rendezvous point.
// It is cyclic: after all parties arrive and release, the same Barrier is
// ready for the next round. A generation counter distinguishes rounds so a
// late arriver can never count into the wrong round.
//
//	b := syncq.NewBarrier(workers)
//	for round := range rounds {
//	    compute(round)
//	    b.Wait() // nobody starts round+1 until everyone finished round
//	}
//
// Wait returns the serial number of the completed round, so one goroutine
// per round can be elected for per-round work by checking the serial.
//
// # Capacity and Length
//
// Lock-free queue capacity rounds up to the next power of 2:
//
//	q := syncq.NewMPMC[int](1000) // Actual capacity: 1024
//
// Minimum lock-free capacity is 2. The Bounded queue keeps the exact
// capacity requested (minimum 1). Constructors panic on smaller values.
//
// Bounded and SPSC expose Len as an advisory snapshot: the value is exact
// at the instant it is read but may be stale by the time the caller acts
// on it. MPMC intentionally has no Len because an accurate count in a
// lock-free multi-access algorithm requires cross-core synchronization
// that would defeat the point.
//
// # Error Handling
//
// The only error these primitives produce is [ErrWouldBlock], a control
// flow signal sourced from [code.hybscloud.com/iox] for ecosystem
// consistency. RWLock and Barrier never fail; they only delay. None of
// the operations support cancellation: a caller wanting a deadline must
// bound its own retry loop, for example with Bounded's PutMax/TakeMax.
//
// # Race Detection
//
// Go's race detector cannot observe happens-before relationships that the
// lock-free queues establish through atomic memory orderings on separate
// variables, and reports false positives on the generic variants. Tests
// that exercise those paths are excluded via //go:build !race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// backoff, [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions.
package syncq
