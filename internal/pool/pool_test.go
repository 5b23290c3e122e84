package pool

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEach_RunsAllTasks(t *testing.T) {
	p := New(3)

	results := make([]int, 10)
	err := p.Each(10, func(i int) error {
		results[i] = i * 2
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range results {
		if v != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, v, i*2)
		}
	}
}

func TestEach_BoundsConcurrency(t *testing.T) {
	p := New(3)

	var inFlight, peak atomic.Int32
	err := p.Each(20, func(_ int) error {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := peak.Load(); got > 3 {
		t.Errorf("peak concurrency %d exceeds pool size 3", got)
	}
}

func TestEach_ReturnsLowestIndexError(t *testing.T) {
	p := New(2)

	errA := errors.New("a")
	errB := errors.New("b")
	err := p.Each(6, func(i int) error {
		switch i {
		case 2:
			return errA
		case 4:
			return errB
		}
		return nil
	})
	if !errors.Is(err, errA) {
		t.Errorf("expected lowest-index error %v, got %v", errA, err)
	}
}

func TestEach_AllTasksFinishDespiteError(t *testing.T) {
	p := New(2)

	var done atomic.Int32
	err := p.Each(8, func(i int) error {
		defer done.Add(1)
		if i == 0 {
			return errors.New("first task failed")
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := done.Load(); got != 8 {
		t.Errorf("expected all 8 tasks to finish, got %d", got)
	}
}

func TestEach_ZeroTasks(t *testing.T) {
	p := New(3)
	if err := p.Each(0, func(_ int) error { return errors.New("never") }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEach_SharedAcrossCallSites(t *testing.T) {
	p := New(2)

	var inFlight, peak atomic.Int32
	task := func(_ int) error {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}

	var wg sync.WaitGroup
	for s := 0; s < 2; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Each(6, task)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("two concurrent fan-outs exceeded the shared capacity: peak %d", got)
	}
}
