// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples that use atomix concurrency primitives.
// These trigger false positives with Go's race detector because atomix
// atomic operations appear as regular memory accesses to the detector.
// The examples are correct; they're excluded from race testing.

package syncq_test

import (
	"fmt"
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/syncq"
)

// ExampleNewSPSC demonstrates a basic SPSC queue for pipeline stages.
func ExampleNewSPSC() {
	// Create a single-producer single-consumer queue
	q := syncq.NewSPSC[int](8)

	// Producer sends 5 values
	for i := 1; i <= 5; i++ {
		v := i * 10
		q.Enqueue(&v)
	}

	// Consumer receives values
	for range 5 {
		v, _ := q.Dequeue()
		fmt.Println(v)
	}

	// Output:
	// 10
	// 20
	// 30
	// 40
	// 50
}

// ExampleNewMPMC demonstrates the full/empty signaling contract.
func ExampleNewMPMC() {
	q := syncq.NewMPMC[string](2)

	for _, s := range []string{"a", "b"} {
		q.Enqueue(&s)
	}

	// Queue is full: Enqueue signals backpressure
	extra := "c"
	if err := q.Enqueue(&extra); syncq.IsWouldBlock(err) {
		fmt.Println("full")
	}

	for range 2 {
		v, _ := q.Dequeue()
		fmt.Println(v)
	}

	// Queue is empty: Dequeue signals no data
	if _, err := q.Dequeue(); syncq.IsWouldBlock(err) {
		fmt.Println("empty")
	}

	// Output:
	// full
	// a
	// b
	// empty
}

// ExampleNewBounded demonstrates the blocking Put/Take helpers with a
// producer and a consumer goroutine.
func ExampleNewBounded() {
	q := syncq.NewBounded[int](4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 5; i++ {
			v := i
			q.Put(&v) // waits whenever the queue is full
		}
	}()

	sum := 0
	for range 5 {
		sum += q.Take() // waits whenever the queue is empty
	}
	wg.Wait()

	fmt.Println(sum)
	// Output:
	// 15
}

// ExampleNewRWLock demonstrates shared reads and exclusive writes over a
// plain map.
func ExampleNewRWLock() {
	l := syncq.NewRWLock()
	cache := map[string]int{}

	// Writer
	l.Lock()
	cache["answer"] = 42
	l.Unlock()

	// Readers
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RLock()
			_ = cache["answer"]
			l.RUnlock()
		}()
	}
	wg.Wait()

	l.RLock()
	fmt.Println(cache["answer"])
	l.RUnlock()
	// Output:
	// 42
}

// ExampleNewBarrier demonstrates round synchronization between two
// goroutines.
func ExampleNewBarrier() {
	b := syncq.NewBarrier(2)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Wait() // round 0
		b.Wait() // round 1
	}()

	first := b.Wait()
	second := b.Wait()
	wg.Wait()

	fmt.Println(first, second)
	// Output:
	// 0 1
}

// ExampleQueue demonstrates the caller-side retry loop that turns the
// non-blocking contract into a blocking one.
func ExampleQueue() {
	var q syncq.Queue[int] = syncq.NewMPMC[int](4)

	backoff := iox.Backoff{}
	for i := range 3 {
		v := i + 1
		for q.Enqueue(&v) != nil {
			backoff.Wait()
		}
		backoff.Reset()
	}

	for range 3 {
		v, _ := q.Dequeue()
		fmt.Println(v)
	}

	// Output:
	// 1
	// 2
	// 3
}
