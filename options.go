// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncq

// Options configures queue creation and algorithm selection.
type Options struct {
	// Producer/Consumer constraints (determines queue type)
	singleProducer bool
	singleConsumer bool

	// Locked selects the mutex-protected Bounded queue
	locked bool

	// Wait policy for the Bounded queue's blocking helpers
	policy WaitPolicy

	// Capacity (lock-free variants round up to the next power of 2)
	capacity int
}

// Builder creates queues with fluent configuration.
//
// Builder provides a fluent API for configuring and creating queues.
// The builder automatically selects the algorithm based on
// producer/consumer constraints and the Locked hint.
//
// Example:
//
//	// SPSC queue (optimal for single producer/consumer)
//	q := syncq.BuildSPSC[Event](syncq.New(1024).SingleProducer().SingleConsumer())
//
//	// MPMC queue (default, general purpose)
//	q := syncq.BuildMPMC[Request](syncq.New(4096))
//
//	// Mutex-protected queue with exact capacity and polling waits
//	q := syncq.Build[Job](syncq.New(100).Locked().Polling())
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Lock-free variants round capacity up to the next power of 2. The Locked
// variant keeps the exact capacity.
//
// Panics if capacity < 2.
//
// Example:
//
//	// Create builder, then configure and build
//	b := syncq.New(1024)
//	q := syncq.BuildSPSC[int](b.SingleProducer().SingleConsumer())
//
//	// Or chain directly
//	q := syncq.Build[int](syncq.New(1024))
func New(capacity int) *Builder {
	if capacity < 2 {
		panic("syncq: capacity must be >= 2")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// SingleProducer declares that only one goroutine will enqueue.
// Combined with SingleConsumer it enables the SPSC algorithm.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will dequeue.
// Combined with SingleProducer it enables the SPSC algorithm.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Locked selects the mutex-protected Bounded queue instead of a lock-free
// algorithm.
//
// Trade-off: every operation serializes through a mutex, but capacity is
// exact (no power-of-2 rounding), Len is available, and the blocking
// Put/Take helpers exist.
func (b *Builder) Locked() *Builder {
	b.opts.locked = true
	return b
}

// Polling selects WaitPoll for the Bounded queue's blocking helpers.
// Only meaningful together with Locked; ignored otherwise since the
// lock-free queues never wait.
func (b *Builder) Polling() *Builder {
	b.opts.policy = WaitPoll
	return b
}

// Build creates a Queue[T] with automatic algorithm selection.
//
// Algorithm selection:
//
//	Locked()                        → Bounded (mutex ring buffer)
//	SingleProducer + SingleConsumer → SPSC (size-counter ring buffer)
//	Anything else                   → MPMC (sequence-based ring buffer)
//
// A single-producer-only or single-consumer-only constraint maps to MPMC:
// the algorithm is correct for any narrower discipline, merely not
// specialized for it.
//
// For type-safe returns with concrete types, use:
//   - BuildSPSC[T](b) → *SPSC[T]
//   - BuildMPMC[T](b) → *MPMC[T]
//   - BuildBounded[T](b) → *Bounded[T]
func Build[T any](b *Builder) Queue[T] {
	switch {
	case b.opts.locked:
		return NewBounded[T](b.opts.capacity, b.opts.policy)
	case b.opts.singleProducer && b.opts.singleConsumer:
		return NewSPSC[T](b.opts.capacity)
	default:
		return NewMPMC[T](b.opts.capacity)
	}
}

// BuildSPSC creates an SPSC queue with compile-time type safety.
// Panics if builder is not configured with SingleProducer().SingleConsumer().
func BuildSPSC[T any](b *Builder) *SPSC[T] {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("syncq: BuildSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSC[T](b.opts.capacity)
}

// BuildMPMC creates an MPMC queue with compile-time type safety.
// Panics if builder has producer/consumer constraints or Locked set.
func BuildMPMC[T any](b *Builder) *MPMC[T] {
	if b.opts.singleProducer || b.opts.singleConsumer || b.opts.locked {
		panic("syncq: BuildMPMC requires no constraints")
	}
	return NewMPMC[T](b.opts.capacity)
}

// BuildBounded creates a mutex-protected Bounded queue.
// Panics if builder is not configured with Locked().
func BuildBounded[T any](b *Builder) *Bounded[T] {
	if !b.opts.locked {
		panic("syncq: BuildBounded requires Locked()")
	}
	return NewBounded[T](b.opts.capacity, b.opts.policy)
}

// BuildIndirect creates a QueueIndirect for uintptr values.
//
// Algorithm selection mirrors Build: SPSC for a single
// producer/consumer pair, MPMC otherwise. There is no Locked indirect
// flavor; panics if Locked() is set.
func (b *Builder) BuildIndirect() QueueIndirect {
	if b.opts.locked {
		panic("syncq: Locked queues have no indirect flavor")
	}
	if b.opts.singleProducer && b.opts.singleConsumer {
		return NewSPSCIndirect(b.opts.capacity)
	}
	return NewMPMCIndirect(b.opts.capacity)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
