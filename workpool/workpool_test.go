package workpool

import (
	"sync/atomic"
	"testing"
)

func TestRunCoversEveryIndexSerial(t *testing.T) {
	p := New()
	defer p.Stop()

	n := 10 // below Threshold, exercises the serial path
	seen := make([]int32, n)
	p.Run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Errorf("index %d visited %d times, want 1", i, v)
		}
	}
}

func TestRunCoversEveryIndexParallel(t *testing.T) {
	p := New()
	defer p.Stop()

	n := Threshold * 4
	seen := make([]int32, n)
	p.Run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, v)
		}
	}
}

func TestRunZeroIsNoop(t *testing.T) {
	p := New()
	defer p.Stop()
	called := false
	p.Run(0, func(lo, hi int) { called = true })
	if called {
		t.Error("Run(0,...) should not invoke fn")
	}
}

func TestStopIdempotentWithoutStart(t *testing.T) {
	p := New()
	p.Stop() // must not panic even though the pool never started
}
