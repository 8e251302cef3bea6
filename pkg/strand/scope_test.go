package strand

import (
	"errors"
	"testing"
)

func TestScopeAdoptsWatchers(t *testing.T) {
	scope := NewScope(false)
	r := NewRef(0)

	scope.Run(func() {
		Effect(func() { r.Get() })
		Effect(func() { r.Get() })
		Watch(func() int { return r.Get() }, nil)
	})

	if got := scope.WatcherCount(); got != 3 {
		t.Errorf("WatcherCount() = %d, want 3", got)
	}
	if got := r.SubscriberCount(); got != 3 {
		t.Errorf("SubscriberCount() = %d, want 3", got)
	}
}

func TestScopeBulkDispose(t *testing.T) {
	scope := NewScope(false)
	r := NewRef(0)
	runs := 0

	var watchers []*Watcher
	scope.Run(func() {
		for i := 0; i < 3; i++ {
			watchers = append(watchers, Effect(func() {
				r.Get()
				runs++
			}, WithFlush(FlushSync)))
		}
	})

	if err := scope.Dispose(); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}

	for i, w := range watchers {
		if w.State() != StateDisposed {
			t.Errorf("watcher %d state = %s, want disposed", i, w.State())
		}
	}
	if got := scope.WatcherCount(); got != 0 {
		t.Errorf("WatcherCount() = %d, want 0", got)
	}
	if got := r.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}

	r.Set(1)
	if runs != 3 {
		t.Errorf("disposed watchers ran: runs = %d, want 3", runs)
	}
}

func TestScopePauseResumeCascades(t *testing.T) {
	parent := NewScope(false)
	var child *Scope
	r := NewRef(0)
	runs := 0

	parent.Run(func() {
		child = NewScope(true)
		child.Run(func() {
			Effect(func() {
				r.Get()
				runs++
			}, WithFlush(FlushSync))
		})
	})

	if err := parent.Pause(); err != nil {
		t.Fatalf("Pause() = %v", err)
	}
	if child.State() != StatePaused {
		t.Errorf("child state = %s, want paused", child.State())
	}
	r.Set(1)
	if runs != 1 {
		t.Fatalf("paused subtree ran: runs = %d", runs)
	}

	if err := parent.Resume(); err != nil {
		t.Fatalf("Resume() = %v", err)
	}
	if runs != 2 {
		t.Errorf("runs after resume = %d, want 2 (deferred run)", runs)
	}
}

func TestScopeDisposeCascadesToChildren(t *testing.T) {
	parent := NewScope(false)
	var child *Scope
	parent.Run(func() {
		child = NewScope(true)
	})

	if err := parent.Dispose(); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}
	if child.State() != StateDisposed {
		t.Errorf("child state = %s, want disposed", child.State())
	}
}

func TestScopeCleanupOrder(t *testing.T) {
	scope := NewScope(false)
	var order []string
	scope.OnCleanup(func() { order = append(order, "first") })
	scope.OnCleanup(func() { order = append(order, "second") })

	if err := scope.Dispose(); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}
	// Reverse registration order.
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("order = %v, want [second first]", order)
	}
}

func TestScopeCleanupOnDisposedScopeRunsImmediately(t *testing.T) {
	scope := NewScope(false)
	scope.Dispose() //nolint:errcheck
	ran := false
	scope.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup on disposed scope did not run immediately")
	}
}

func TestScopeInvalidTransitions(t *testing.T) {
	scope := NewScope(false)

	if err := scope.Resume(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Resume() on active = %v, want ErrInvalidTransition", err)
	}
	if err := scope.Dispose(); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}
	if err := scope.Dispose(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Dispose() = %v, want ErrInvalidTransition", err)
	}
	if err := scope.Pause(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Pause() on disposed = %v, want ErrInvalidTransition", err)
	}
}

func TestScopeErrorBubblesToAncestorHandler(t *testing.T) {
	root := NewScope(false)
	var caught *ComputationError
	root.OnError(func(cerr *ComputationError) { caught = cerr })

	r := NewRef(0)
	root.Run(func() {
		// Child without its own handler.
		child := NewScope(true)
		child.Run(func() {
			Effect(func() {
				if r.Get() > 0 {
					panic("nested failure")
				}
			}, WithFlush(FlushSync))
		})
	})

	r.Set(1)
	if caught == nil {
		t.Fatal("error did not bubble to ancestor handler")
	}
	if caught.Err.Error() != "nested failure" {
		t.Errorf("Err = %q, want %q", caught.Err.Error(), "nested failure")
	}
}

func TestDetachedWatcherIgnoresScope(t *testing.T) {
	scope := NewScope(false)
	var w *Watcher
	scope.Run(func() {
		w = Effect(func() {}, Detached())
	})

	if got := scope.WatcherCount(); got != 0 {
		t.Errorf("WatcherCount() = %d, want 0", got)
	}
	scope.Dispose() //nolint:errcheck
	if w.State() != StateActive {
		t.Errorf("detached watcher state = %s, want active", w.State())
	}
	w.Dispose() //nolint:errcheck
}
