package reveal

import (
	"sync"
	"testing"
)

func TestNotifyFiresOnceAcrossVisibilityToggles(t *testing.T) {
	obs := NewObserver()
	calls := 0
	if !obs.Observe("revenue", func(string) { calls++ }) {
		t.Fatalf("expected registration to succeed")
	}

	reports := []bool{false, true, false, true, true, false, true}
	fired := 0
	for _, visible := range reports {
		if obs.Notify("revenue", visible) {
			fired++
		}
	}

	if calls != 1 || fired != 1 {
		t.Fatalf("expected one reveal, got calls=%d fired=%d", calls, fired)
	}
	if !obs.Revealed("revenue") {
		t.Fatalf("expected revenue to be marked revealed")
	}
	if len(obs.Pending()) != 0 {
		t.Fatalf("expected no pending elements, got %v", obs.Pending())
	}
}

func TestObserveRejectsRevealedAndDuplicateIDs(t *testing.T) {
	obs := NewObserver()
	noop := func(string) {}

	if obs.Observe("", noop) {
		t.Fatalf("blank id should be rejected")
	}
	if obs.Observe("employees", nil) {
		t.Fatalf("nil callback should be rejected")
	}
	if !obs.Observe("employees", noop) {
		t.Fatalf("first registration should succeed")
	}
	if obs.Observe("employees", noop) {
		t.Fatalf("duplicate registration should be rejected")
	}
	obs.Notify("employees", true)
	if obs.Observe("employees", noop) {
		t.Fatalf("re-registering a revealed element should be rejected")
	}
}

func TestUnobserveCancelsPendingReveal(t *testing.T) {
	obs := NewObserver()
	called := false
	obs.Observe("chart", func(string) { called = true })
	obs.Unobserve("chart")

	if obs.Notify("chart", true) {
		t.Fatalf("unobserved element should not fire")
	}
	if called {
		t.Fatalf("callback ran after unobserve")
	}
	if obs.Revealed("chart") {
		t.Fatalf("unobserved element should not be marked revealed")
	}
}

func TestNotifyIgnoresUnknownIDs(t *testing.T) {
	obs := NewObserver()
	if obs.Notify("missing", true) {
		t.Fatalf("unknown id should not fire")
	}
}

func TestConcurrentNotifyFiresOnce(t *testing.T) {
	obs := NewObserver()
	var mu sync.Mutex
	calls := 0
	obs.Observe("stat", func(string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obs.Notify("stat", true)
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("expected exactly one callback, got %d", calls)
	}
}
