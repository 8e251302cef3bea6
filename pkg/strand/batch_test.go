package strand

import "testing"

func TestBatchCoalescesSyncWatchers(t *testing.T) {
	first := NewRef("John")
	last := NewRef("Doe")
	runs := 0
	var lastSeen string
	Effect(func() {
		lastSeen = first.Get() + " " + last.Get()
		runs++
	}, WithFlush(FlushSync), Detached())

	Batch(func() {
		first.Set("Jane")
		last.Set("Smith")
		// Nothing has run yet; both writes are already applied.
		if runs != 1 {
			t.Errorf("watcher ran inside batch: runs = %d", runs)
		}
	})

	if runs != 2 {
		t.Errorf("runs after batch = %d, want 2", runs)
	}
	if lastSeen != "Jane Smith" {
		t.Errorf("lastSeen = %q, want %q", lastSeen, "Jane Smith")
	}
}

func TestNestedBatchFlushesOnceAtOutermost(t *testing.T) {
	r := NewRef(0)
	runs := 0
	Effect(func() {
		r.Get()
		runs++
	}, WithFlush(FlushSync), Detached())

	Batch(func() {
		r.Set(1)
		Batch(func() {
			r.Set(2)
		})
		// Inner batch end must not release the watchers.
		if runs != 1 {
			t.Errorf("watcher ran at inner batch end: runs = %d", runs)
		}
		r.Set(3)
	})

	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if got := r.Peek(); got != 3 {
		t.Errorf("value = %d, want 3", got)
	}
}

func TestBatchFlushesPreWatchers(t *testing.T) {
	r := NewRef(0)
	runs := 0
	Effect(func() {
		r.Get()
		runs++
	}, Detached()) // FlushPre

	Batch(func() {
		r.Set(1)
		r.Set(2)
	})

	// Batch end flushes the queues without an explicit Flush call.
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if HasPendingJobs() {
		t.Error("jobs still pending after batch")
	}
}

func TestBatchReadsSeeIntermediateValues(t *testing.T) {
	r := NewRef(1)
	Batch(func() {
		r.Set(2)
		if got := r.Get(); got != 2 {
			t.Errorf("read inside batch = %d, want 2", got)
		}
	})
}
