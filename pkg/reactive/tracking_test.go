package reactive

import (
	"sync"
	"testing"
)

func countTrackingContexts() int {
	n := 0
	trackingContexts.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestTrackingContextsReleasedAfterGoroutinesExit(t *testing.T) {
	before := countTrackingContexts()

	s := NewSignal(0)
	l := newTestListener()
	s.Subscribe(l)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Batch(func() {
				s.Set(i + 1)
			})
			WithListener(newTestListener(), func() {
				_ = s.Get()
			})
			Untracked(func() {
				_ = s.Get()
			})
			_ = InBatch()
		}(i)
	}
	wg.Wait()

	if after := countTrackingContexts(); after != before {
		t.Errorf("tracking contexts before=%d after=%d", before, after)
	}
}

func TestTrackingContextKeptWhileBatchOpen(t *testing.T) {
	before := countTrackingContexts()

	Batch(func() {
		if countTrackingContexts() != before+1 {
			t.Error("open batch should hold a tracking context")
		}
		Untracked(func() {})
		if !InBatch() {
			t.Error("Untracked inside a batch should not end it")
		}
	})

	if after := countTrackingContexts(); after != before {
		t.Errorf("tracking contexts before=%d after=%d", before, after)
	}
}
