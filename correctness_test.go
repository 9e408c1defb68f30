// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncq_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/syncq"
)

// =============================================================================
// Test Helpers
// =============================================================================

// waitGroupTimeout waits for wg or fails the test after timeout.
// Keeps a buggy primitive from hanging the whole test binary.
func waitGroupTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration, msg string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("timeout after %v: %s", timeout, msg)
	}
}

// =============================================================================
// Bounded - Concurrent Producers/Consumers
// =============================================================================

// boundedScenario runs 3 producers enqueueing 50 tagged values each against
// 2 consumers collectively dequeueing all 150, on a capacity-5 queue, and
// verifies conservation: every value dequeued exactly once, nothing
// fabricated, nothing lost, final length zero.
func boundedScenario(t *testing.T, policy syncq.WaitPolicy) {
	const (
		capacity     = 5
		numP         = 3
		numC         = 2
		itemsPerProd = 50
	)
	total := numP * itemsPerProd

	q := syncq.NewBounded[int](capacity, policy)
	seen := make([]atomix.Int32, total)
	var produced, tickets atomix.Int64

	var wg sync.WaitGroup
	for p := range numP {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range itemsPerProd {
				v := id*itemsPerProd + i
				q.Put(&v)
				produced.Add(1)
			}
		}(p)
	}

	for c := 0; c < numC; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each ticket licenses exactly one Take; together the
			// consumers take exactly total items.
			for tickets.Add(1) <= int64(total) {
				v := q.Take()
				if v < 0 || v >= total {
					t.Errorf("dequeued fabricated value %d", v)
					return
				}
				seen[v].Add(1)
			}
		}()
	}

	waitGroupTimeout(t, &wg, 30*time.Second, "bounded producer/consumer scenario")

	if got := produced.Load(); got != int64(total) {
		t.Fatalf("total produced: got %d, want %d", got, total)
	}
	for i := range seen {
		if count := seen[i].Load(); count != 1 {
			t.Fatalf("value %d dequeued %d times, want exactly 1", i, count)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("final Len: got %d, want 0", q.Len())
	}
}

func TestBoundedConcurrentCond(t *testing.T) {
	boundedScenario(t, syncq.WaitCond)
}

func TestBoundedConcurrentPoll(t *testing.T) {
	boundedScenario(t, syncq.WaitPoll)
}

// TestBoundedConcurrentNonBlocking drives the same conservation property
// through the non-blocking API with caller-side backoff, the documented
// usage pattern for all queues in this package.
func TestBoundedConcurrentNonBlocking(t *testing.T) {
	const (
		numP         = 4
		numC         = 3
		itemsPerProd = 200
	)
	total := numP * itemsPerProd

	q := syncq.NewBounded[int](8)
	seen := make([]atomix.Int32, total)
	var consumed atomix.Int64

	var wg sync.WaitGroup
	for p := range numP {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := range itemsPerProd {
				v := id*itemsPerProd + i
				for q.Enqueue(&v) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	for c := 0; c < numC; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for consumed.Load() < int64(total) {
				v, err := q.Dequeue()
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				seen[v].Add(1)
				consumed.Add(1)
			}
		}()
	}

	waitGroupTimeout(t, &wg, 30*time.Second, "bounded non-blocking scenario")

	for i := range seen {
		if count := seen[i].Load(); count != 1 {
			t.Fatalf("value %d dequeued %d times, want exactly 1", i, count)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("final Len: got %d, want 0", q.Len())
	}
}

// =============================================================================
// SPSC - Pipeline Order and Conservation
// =============================================================================

// TestSPSCConcurrentFIFO runs one producer against one consumer and checks
// that values arrive complete and in enqueue order.
func TestSPSCConcurrentFIFO(t *testing.T) {
	if syncq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}

	const total = 100000
	q := syncq.NewSPSC[int](64)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() { // Producer
		defer wg.Done()
		backoff := iox.Backoff{}
		for i := range total {
			v := i
			for q.Enqueue(&v) != nil {
				backoff.Wait()
			}
			backoff.Reset()
		}
	}()

	var outOfOrder atomix.Int64
	go func() { // Consumer
		defer wg.Done()
		backoff := iox.Backoff{}
		want := 0
		for want < total {
			v, err := q.Dequeue()
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			if v != want {
				outOfOrder.Add(1)
				return
			}
			want++
		}
	}()

	waitGroupTimeout(t, &wg, 60*time.Second, "SPSC pipeline")

	if outOfOrder.Load() != 0 {
		t.Fatal("consumer observed values out of enqueue order")
	}
	if q.Len() != 0 {
		t.Fatalf("final Len: got %d, want 0", q.Len())
	}
}

// TestSPSCIndirectFreeList drives the free-list idiom: indices circulate
// between an allocator side and a releaser side without loss.
func TestSPSCIndirectFreeList(t *testing.T) {
	if syncq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}

	const slots = 16
	const rounds = 50000

	free := syncq.NewSPSCIndirect(slots)
	used := syncq.NewSPSCIndirect(slots)
	for i := range slots {
		if err := free.Enqueue(uintptr(i)); err != nil {
			t.Fatalf("seed free list: %v", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() { // Allocator: free -> used
		defer wg.Done()
		backoff := iox.Backoff{}
		for range rounds {
			for {
				idx, err := free.Dequeue()
				if err == nil {
					for used.Enqueue(idx) != nil {
						backoff.Wait()
					}
					break
				}
				backoff.Wait()
			}
			backoff.Reset()
		}
	}()

	go func() { // Releaser: used -> free
		defer wg.Done()
		backoff := iox.Backoff{}
		for range rounds {
			for {
				idx, err := used.Dequeue()
				if err == nil {
					for free.Enqueue(idx) != nil {
						backoff.Wait()
					}
					break
				}
				backoff.Wait()
			}
			backoff.Reset()
		}
	}()

	waitGroupTimeout(t, &wg, 60*time.Second, "SPSC indirect free list")

	if got := free.Len() + used.Len(); got != slots {
		t.Fatalf("indices conserved: got %d, want %d", got, slots)
	}
}

// =============================================================================
// MPMC - Linearizability
// =============================================================================

// mpmcScenario launches numP producers and numC consumers over producer-
// tagged values and verifies each value is consumed exactly once.
func mpmcScenario(t *testing.T, numP, numC, itemsPerProd int) {
	total := numP * itemsPerProd

	q := syncq.NewMPMC[int](64)
	seen := make([]atomix.Int32, total)
	var consumed atomix.Int64

	var wg sync.WaitGroup
	for p := range numP {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := range itemsPerProd {
				v := id*itemsPerProd + i
				for q.Enqueue(&v) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	for c := 0; c < numC; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for consumed.Load() < int64(total) {
				v, err := q.Dequeue()
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				if v < 0 || v >= total {
					t.Errorf("dequeued fabricated value %d", v)
					return
				}
				seen[v].Add(1)
				consumed.Add(1)
			}
		}()
	}

	waitGroupTimeout(t, &wg, 60*time.Second, "MPMC linearizability scenario")

	for i := range seen {
		if count := seen[i].Load(); count != 1 {
			t.Fatalf("value %d consumed %d times, want exactly 1", i, count)
		}
	}
	if _, err := q.Dequeue(); !syncq.IsWouldBlock(err) {
		t.Fatalf("drained queue should be empty, got %v", err)
	}
}

func TestMPMCConcurrent(t *testing.T) {
	if syncq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	mpmcScenario(t, 4, 4, 10000)
}

// TestMPMCManyProducersOneConsumer exercises slot claim contention on the
// producer side only.
func TestMPMCManyProducersOneConsumer(t *testing.T) {
	if syncq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	mpmcScenario(t, 8, 1, 5000)
}

// TestMPMCOneProducerManyConsumers mirrors it on the consumer side.
func TestMPMCOneProducerManyConsumers(t *testing.T) {
	if syncq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	mpmcScenario(t, 1, 8, 40000)
}
