package blockpool

import (
	"sync/atomic"
	"testing"
)

func TestMapOrderedPreservesOrder(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}

	results := MapOrdered(items, 8, func(n int) int { return n * n })
	for i, got := range results {
		want := i * i
		if got != want {
			t.Fatalf("index %d: got %d, want %d", i, got, want)
		}
	}
}

func TestMapOrderedBoundsConcurrency(t *testing.T) {
	items := make([]int, 100)
	var inFlight, maxInFlight int64

	MapOrdered(items, 4, func(n int) int {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			prev := atomic.LoadInt64(&maxInFlight)
			if cur <= prev || atomic.CompareAndSwapInt64(&maxInFlight, prev, cur) {
				break
			}
		}
		atomic.AddInt64(&inFlight, -1)
		return n
	})

	if maxInFlight > 4 {
		t.Fatalf("observed %d goroutines in flight, want <= 4", maxInFlight)
	}
}

func TestMapOrderedEmpty(t *testing.T) {
	results := MapOrdered[int, int](nil, 4, func(n int) int { return n })
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestWorkersPositive(t *testing.T) {
	if Workers() < 1 {
		t.Fatalf("Workers() = %d, want >= 1", Workers())
	}
}
