// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncq

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// RWLock is a reader-writer lock with writer priority.
//
// Any number of readers may hold the lock simultaneously; a writer holds
// it exclusively. Once a writer is waiting, new readers queue behind it,
// so a steady stream of readers cannot starve writers. The reverse is
// accepted: heavy write traffic delays readers.
//
// State machine: Idle → Shared(n readers) or Exclusive. The invariant is
// that an active writer excludes all readers. There is no acquisition
// ordering among waiters of the same class and no upgrade/downgrade.
//
// Acquisition never fails; it only delays, according to the WaitPolicy
// chosen at construction. RUnlock and Unlock are single atomic updates
// and never wait.
type RWLock struct {
	mu   sync.Mutex
	cond *sync.Cond

	policy WaitPolicy

	readers        atomix.Int32
	writersWaiting atomix.Int32
	writerActive   atomix.Bool
}

// NewRWLock creates a reader-writer lock. The optional policy selects how
// acquisitions wait; the default is WaitCond.
func NewRWLock(policy ...WaitPolicy) *RWLock {
	l := &RWLock{policy: pickPolicy(policy)}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// awaitLocked blocks until ready() holds. Caller holds mu; mu is held
// again on return. Under WaitPoll the mutex is released around each
// backoff so other acquirers can make progress.
func (l *RWLock) awaitLocked(ready func() bool) {
	if l.policy == WaitPoll {
		backoff := iox.Backoff{}
		for !ready() {
			l.mu.Unlock()
			backoff.Wait()
			l.mu.Lock()
		}
		return
	}
	for !ready() {
		l.cond.Wait()
	}
}

// RLock acquires the lock for reading.
//
// A reader waits while a writer is active or waiting. The latter is the
// writer-priority rule: an already-queued writer gates new readers.
func (l *RWLock) RLock() {
	l.mu.Lock()
	l.awaitLocked(func() bool {
		return !l.writerActive.Load() && l.writersWaiting.Load() == 0
	})
	l.readers.Add(1)
	l.mu.Unlock()
}

// RUnlock releases one read hold.
//
// The reader count narrows monotonically from the unlocking side, so no
// mutex is needed: a single atomic decrement suffices. The last reader
// out wakes any waiting writer.
func (l *RWLock) RUnlock() {
	if l.readers.Add(-1) == 0 && l.policy == WaitCond {
		l.wake()
	}
}

// wake broadcasts to cond-mode waiters. The empty critical section orders
// the caller's counter update before any waiter's predicate re-check: a
// waiter either sees the new state and never parks, or is already parked
// when the broadcast fires. Without it the broadcast can land between a
// waiter's predicate check and its park and be lost.
func (l *RWLock) wake() {
	l.mu.Lock()
	l.mu.Unlock()
	l.cond.Broadcast()
}

// Lock acquires the lock for writing.
//
// The writer registers in writersWaiting first, which immediately blocks
// new readers, then waits for active readers to drain and any current
// writer to finish.
func (l *RWLock) Lock() {
	l.mu.Lock()
	l.writersWaiting.Add(1)
	l.awaitLocked(func() bool {
		return l.readers.Load() == 0 && !l.writerActive.Load()
	})
	l.writersWaiting.Add(-1)
	l.writerActive.Store(true)
	l.mu.Unlock()
}

// Unlock releases the write hold. A single atomic store; the wakeup
// broadcast lets both reader and writer waiters re-race for the lock.
func (l *RWLock) Unlock() {
	l.writerActive.Store(false)
	if l.policy == WaitCond {
		l.wake()
	}
}
