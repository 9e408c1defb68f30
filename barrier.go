// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncq

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Barrier is a cyclic rendezvous point for a fixed party of goroutines.
//
// Each arrival increments a count; the arrival that completes the party
// resets the count and advances the generation counter, releasing every
// waiter of that round. The barrier is then immediately ready for the
// next round with the same object.
//
// The generation counter is what makes reuse safe: a waiter is released
// by the generation moving past the value it captured on arrival, never
// by the count, so a fast goroutine re-arriving for round N+1 cannot be
// confused with a straggler of round N.
//
// Between releases 0 <= count < parties holds; no goroutine observes the
// effects of round N+1 before all parties have arrived for round N.
type Barrier struct {
	mu   sync.Mutex
	cond *sync.Cond

	policy WaitPolicy

	count      int // arrivals in the current round, guarded by mu
	parties    int
	generation atomix.Uint64
}

// NewBarrier creates a barrier for the given party size. The optional
// policy selects how arrivals wait; the default is WaitCond.
//
// Panics if parties < 1.
func NewBarrier(parties int, policy ...WaitPolicy) *Barrier {
	if parties < 1 {
		panic("syncq: parties must be >= 1")
	}
	b := &Barrier{policy: pickPolicy(policy), parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have called Wait for the current round,
// then returns the serial number of the completed round (0 for the first
// round). The return value is the same for every goroutine released by
// the same round, so rounds can be correlated across goroutines.
//
// Wait cannot be cancelled.
func (b *Barrier) Wait() uint64 {
	b.mu.Lock()
	gen := b.generation.LoadAcquire()
	b.count++

	if b.count == b.parties {
		// Last arrival: release the round. Broadcasting under mu means no
		// waiter can be between its generation check and its park.
		b.count = 0
		b.generation.AddAcqRel(1)
		b.cond.Broadcast()
		b.mu.Unlock()
		return gen
	}

	if b.policy == WaitPoll {
		backoff := iox.Backoff{}
		for b.generation.LoadAcquire() == gen {
			b.mu.Unlock()
			backoff.Wait()
			b.mu.Lock()
		}
	} else {
		for b.generation.LoadAcquire() == gen {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
	return gen
}

// Parties returns the fixed party size.
func (b *Barrier) Parties() int {
	return b.parties
}

// Generation returns the number of completed rounds. Advisory snapshot.
func (b *Barrier) Generation() uint64 {
	return b.generation.LoadAcquire()
}
