package strand

import (
	"errors"
	"testing"
)

func TestEffectRerunsOnDependencyChange(t *testing.T) {
	r := NewRef(1)
	var seen []int
	Effect(func() {
		seen = append(seen, r.Get())
	}, WithFlush(FlushSync), Detached())

	r.Set(2)
	r.Set(3)

	want := []int{1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestEffectDropsStaleDependencies(t *testing.T) {
	cond := NewRef(true)
	a := NewRef("a")
	b := NewRef("b")
	runs := 0
	Effect(func() {
		runs++
		if cond.Get() {
			a.Get()
		} else {
			b.Get()
		}
	}, WithFlush(FlushSync), Detached())

	if runs != 1 {
		t.Fatalf("initial runs = %d, want 1", runs)
	}

	// b is not a dependency yet.
	b.Set("b2")
	if runs != 1 {
		t.Errorf("runs after write to unread b = %d, want 1", runs)
	}

	cond.Set(false)
	if runs != 2 {
		t.Fatalf("runs after branch switch = %d, want 2", runs)
	}

	// a must have been unlinked by the re-run.
	a.Set("a2")
	if runs != 2 {
		t.Errorf("runs after write to stale a = %d, want 2", runs)
	}
	if got := a.SubscriberCount(); got != 0 {
		t.Errorf("a.SubscriberCount() = %d, want 0", got)
	}

	b.Set("b3")
	if runs != 3 {
		t.Errorf("runs after write to live b = %d, want 3", runs)
	}
}

func TestPreWatcherCoalescesTriggers(t *testing.T) {
	r := NewRef(0)
	runs := 0
	Effect(func() {
		r.Get()
		runs++
	}, Detached()) // default FlushPre

	for i := 1; i <= 5; i++ {
		r.Set(i)
	}
	if runs != 1 {
		t.Fatalf("runs before flush = %d, want 1", runs)
	}
	if !HasPendingJobs() {
		t.Fatal("expected a pending job")
	}
	Flush()
	if runs != 2 {
		t.Errorf("runs after flush = %d, want 2 (five triggers, one run)", runs)
	}
}

func TestPostWatchersRunAfterPreWatchers(t *testing.T) {
	r := NewRef(0)
	var order []string
	Effect(func() {
		r.Get()
		order = append(order, "post")
	}, WithFlush(FlushPost), Detached())
	Effect(func() {
		r.Get()
		order = append(order, "pre")
	}, Detached())

	order = nil
	r.Set(1)
	Flush()

	if len(order) != 2 || order[0] != "pre" || order[1] != "post" {
		t.Errorf("order = %v, want [pre post]", order)
	}
}

func TestWatchCallbackReceivesNewAndOld(t *testing.T) {
	r := NewRef(1)
	type pair struct{ n, o int }
	var calls []pair
	Watch(func() int { return r.Get() }, func(n, o int) {
		calls = append(calls, pair{n, o})
	}, WithFlush(FlushSync), Detached())

	if len(calls) != 0 {
		t.Fatalf("callback ran on creation without Immediate: %v", calls)
	}
	r.Set(2)
	r.Set(7)
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want 2 entries", calls)
	}
	if calls[0] != (pair{2, 1}) || calls[1] != (pair{7, 2}) {
		t.Errorf("calls = %v, want [{2 1} {7 2}]", calls)
	}
}

func TestWatchImmediate(t *testing.T) {
	r := NewRef(9)
	called := false
	Watch(func() int { return r.Get() }, func(n, o int) {
		called = true
		if n != 9 || o != 0 {
			t.Errorf("callback got (%d, %d), want (9, 0)", n, o)
		}
	}, Immediate(), Detached())

	if !called {
		t.Error("Immediate watch did not invoke callback on creation")
	}
}

func TestWatchSkipsEqualValues(t *testing.T) {
	r := NewRef(4)
	even := 0
	Watch(func() bool { return r.Get()%2 == 0 }, func(bool, bool) {
		even++
	}, WithFlush(FlushSync), Detached())

	r.Set(6) // still even, derived value unchanged
	if even != 0 {
		t.Errorf("callback ran %d times for unchanged derived value", even)
	}
	r.Set(7)
	if even != 1 {
		t.Errorf("callback ran %d times, want 1", even)
	}
}

func TestWatchCallbackRunsUntracked(t *testing.T) {
	r := NewRef(1)
	other := NewRef(1)
	runs := 0
	Watch(func() int { runs++; return r.Get() }, func(int, int) {
		other.Get() // must not become a dependency
	}, WithFlush(FlushSync), Detached())

	r.Set(2)
	getterRuns := runs
	other.Set(99)
	if runs != getterRuns {
		t.Errorf("getter re-ran after write to callback-read signal")
	}
}

func TestWatchFilter(t *testing.T) {
	m := NewReactiveMap(map[string]any{"a": 1, "b": 1})
	aRuns := 0
	Watch(func() any { return m.Get("a") }, func(any, any) { aRuns++ },
		WithFlush(FlushSync), Detached(), WithFilter(func(ch Change) bool { return ch.Key == "a" }))

	m.Set("b", 2)
	if aRuns != 0 {
		t.Errorf("filtered watcher ran for key b")
	}
	m.Set("a", 2)
	if aRuns != 1 {
		t.Errorf("filtered watcher runs = %d, want 1", aRuns)
	}
}

func TestWatcherPauseResume(t *testing.T) {
	r := NewRef(0)
	runs := 0
	w := Effect(func() {
		r.Get()
		runs++
	}, WithFlush(FlushSync), Detached())

	if err := w.Pause(); err != nil {
		t.Fatalf("Pause() = %v", err)
	}
	r.Set(1)
	r.Set(2)
	if runs != 1 {
		t.Fatalf("paused watcher ran: runs = %d", runs)
	}
	if err := w.Resume(); err != nil {
		t.Fatalf("Resume() = %v", err)
	}
	if runs != 2 {
		t.Errorf("runs after resume = %d, want 2 (single deferred run)", runs)
	}
}

func TestWatcherInvalidTransitions(t *testing.T) {
	w := Effect(func() {}, Detached())

	if err := w.Resume(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Resume() on active = %v, want ErrInvalidTransition", err)
	}
	if err := w.Dispose(); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}
	if err := w.Dispose(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Dispose() = %v, want ErrInvalidTransition", err)
	}
	if err := w.Pause(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Pause() on disposed = %v, want ErrInvalidTransition", err)
	}
}

func TestDisposedWatcherStopsRunning(t *testing.T) {
	r := NewRef(0)
	runs := 0
	w := Effect(func() {
		r.Get()
		runs++
	}, WithFlush(FlushSync), Detached())

	if err := w.Dispose(); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}
	r.Set(1)
	if runs != 1 {
		t.Errorf("disposed watcher ran: runs = %d", runs)
	}
	if got := r.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0 after dispose", got)
	}
}

func TestOnCleanupRunsBeforeRerunAndOnDispose(t *testing.T) {
	r := NewRef(0)
	var events []string
	w := Effect(func() {
		v := r.Get()
		OnCleanup(func() { events = append(events, "cleanup") })
		events = append(events, "run")
		_ = v
	}, WithFlush(FlushSync), Detached())

	r.Set(1)
	if err := w.Dispose(); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}

	want := []string{"run", "cleanup", "run", "cleanup"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestWatcherErrorIsolation(t *testing.T) {
	scope := NewScope(false)
	var caught []*ComputationError
	scope.OnError(func(cerr *ComputationError) {
		caught = append(caught, cerr)
	})

	r := NewRef(0)
	siblingRuns := 0
	scope.Run(func() {
		Effect(func() {
			if r.Get() > 0 {
				panic("boom")
			}
		}, WithFlush(FlushSync))
		Effect(func() {
			r.Get()
			siblingRuns++
		}, WithFlush(FlushSync))
	})

	r.Set(1)

	if len(caught) != 1 {
		t.Fatalf("caught %d errors, want 1", len(caught))
	}
	if caught[0].Source != SourceGetter {
		t.Errorf("Source = %q, want %q", caught[0].Source, SourceGetter)
	}
	if siblingRuns != 2 {
		t.Errorf("sibling runs = %d, want 2 (failure must not break siblings)", siblingRuns)
	}
}

func TestSelfTriggeringWatcherReportsCycle(t *testing.T) {
	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("self-triggering watcher did not panic")
		}
		err, ok := rec.(error)
		if !ok || !containsCode(err.Error(), "E003") {
			t.Fatalf("panic = %v, want E003 coded error", rec)
		}
		var cerr *ComputationError
		if !errors.As(err, &cerr) {
			t.Fatal("no ComputationError in the wrap chain")
		}
		if cerr.Source != SourceGetter {
			t.Errorf("Source = %q, want %q", cerr.Source, SourceGetter)
		}
	}()

	r := NewRef(0)
	Effect(func() {
		r.Set(r.Get() + 1)
	}, WithFlush(FlushSync), Detached())
}

func TestSyncWatcherCanDisposeSiblingDuringTrigger(t *testing.T) {
	r := NewRef(0)
	var second *Watcher
	secondRuns := 0

	Effect(func() {
		if r.Get() > 0 && second != nil {
			second.Dispose() //nolint:errcheck
		}
	}, WithFlush(FlushSync), Detached())
	second = Effect(func() {
		r.Get()
		secondRuns++
	}, WithFlush(FlushSync), Detached())

	// The first watcher runs inside the trigger and tears the second one
	// down before its turn in the walk.
	r.Set(1)

	if second.State() != StateDisposed {
		t.Fatalf("second state = %s, want disposed", second.State())
	}
	if secondRuns != 1 {
		t.Errorf("secondRuns = %d, want 1 (initial run only)", secondRuns)
	}

	r.Set(2)
	if secondRuns != 1 {
		t.Errorf("disposed watcher ran: secondRuns = %d", secondRuns)
	}
}

func TestPauseKeepsQueuedUpdate(t *testing.T) {
	r := NewRef(0)
	calls := 0
	w := Watch(func() int { return r.Get() }, func(int, int) {
		calls++
	}, Detached()) // FlushPre

	r.Set(1) // queued
	if err := w.Pause(); err != nil {
		t.Fatalf("Pause() = %v", err)
	}
	if err := w.Resume(); err != nil {
		t.Fatalf("Resume() = %v", err)
	}
	Flush()

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (queued update must survive pause)", calls)
	}
}

func containsCode(s, code string) bool {
	for i := 0; i+len(code) <= len(s); i++ {
		if s[i:i+len(code)] == code {
			return true
		}
	}
	return false
}
