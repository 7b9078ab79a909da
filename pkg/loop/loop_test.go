package loop

import (
	"sync"
	"testing"
	"time"
)

func TestDoRunsOnLoop(t *testing.T) {
	l := New()
	defer l.Stop()

	var on bool
	l.Do(func() {
		on = l.IsOn()
	})
	if !on {
		t.Error("task did not run on the loop goroutine")
	}
	if l.IsOn() {
		t.Error("test goroutine reported as loop goroutine")
	}
}

func TestDoInlineWhenOnLoop(t *testing.T) {
	l := New()
	defer l.Stop()

	var nested bool
	l.Do(func() {
		// Nested Do from the loop must run inline, not deadlock.
		l.Do(func() {
			nested = true
		})
	})
	if !nested {
		t.Error("nested Do did not run")
	}
}

func TestPostOrdering(t *testing.T) {
	l := New()
	defer l.Stop()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	l.Do(func() {}) // barrier

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 10 {
		t.Fatalf("got %d tasks, want 10", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task order = %v, want ascending", got)
		}
	}
}

func TestPostFromLoop(t *testing.T) {
	l := New()
	defer l.Stop()

	var ran bool
	l.Do(func() {
		l.Post(func() { ran = true })
	})
	l.Do(func() {}) // barrier

	l.Do(func() {
		if !ran {
			t.Error("task posted from the loop did not run")
		}
	})
}

func TestMustBeOnPanics(t *testing.T) {
	l := New()
	defer l.Stop()

	defer func() {
		if recover() == nil {
			t.Error("MustBeOn did not panic off the loop")
		}
	}()
	l.MustBeOn()
}

func TestMustBeOnOnLoop(t *testing.T) {
	l := New()
	defer l.Stop()

	l.Do(func() {
		l.MustBeOn() // must not panic
	})
}

func TestStopDrainsPostedTasks(t *testing.T) {
	l := New()

	var mu sync.Mutex
	count := 0
	for i := 0; i < 5; i++ {
		l.Post(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}
	l.Stop()

	mu.Lock()
	defer mu.Unlock()
	if count != 5 {
		t.Errorf("ran %d tasks before stop, want 5", count)
	}
}

func TestPostAfterStopDropped(t *testing.T) {
	l := New()
	l.Stop()

	l.Post(func() {
		t.Error("task ran after stop")
	})
	time.Sleep(10 * time.Millisecond)
}

func TestDoAfterStopReturns(t *testing.T) {
	l := New()
	l.Stop()

	done := make(chan struct{})
	go func() {
		l.Do(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Do on stopped loop did not return")
	}
}

func TestStopIdempotent(t *testing.T) {
	l := New()
	l.Stop()
	l.Stop()
}
