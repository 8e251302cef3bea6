package strand

import (
	"fmt"
	"log/slog"
)

// FlushMode controls when a triggered watcher runs.
type FlushMode uint8

const (
	// FlushSync runs the watcher immediately inside the triggering write.
	FlushSync FlushMode = iota

	// FlushPre enqueues the watcher; it runs before the host's commit
	// step on the next Flush. This is the default.
	FlushPre

	// FlushPost enqueues the watcher; it runs after the host's commit
	// step on the next Flush.
	FlushPost
)

// String returns a human-readable name for the flush mode.
func (m FlushMode) String() string {
	switch m {
	case FlushSync:
		return "sync"
	case FlushPre:
		return "pre"
	case FlushPost:
		return "post"
	default:
		return "unknown"
	}
}

// Cleanup is a function registered by a watcher computation. It is called
// before the watcher re-runs and when the watcher is disposed.
type Cleanup func()

// Watcher is a re-runnable computation. It re-executes whenever any signal
// it read during its most recent run changes, honoring its flush mode.
//
// State machine: active ⇄ paused, → disposed (terminal). A disposed
// watcher holds no dependency links and never runs again; a paused watcher
// accumulates a dirty flag and defers execution until Resume.
type Watcher struct {
	sub subscriberNode

	// runFn performs one tracked execution; assembled by Watch/Effect.
	runFn func() *ComputationError

	flush     FlushMode
	state     RunState
	dirty     bool
	immediate bool
	detached  bool
	filter    func(Change) bool

	scope    *Scope
	cleanups []Cleanup
}

// node implements the subscriber interface.
func (w *Watcher) node() *subscriberNode {
	return &w.sub
}

// notify is the trigger entry point for this watcher. Sync watchers run
// inside the triggering write (or at batch end); pre/post watchers coalesce
// into the job queue.
func (w *Watcher) notify(ch Change) {
	if w.state == StateDisposed {
		return
	}
	if w.filter != nil && !w.filter(ch) {
		return
	}
	if w.state == StatePaused {
		w.dirty = true
		return
	}
	if w.flush == FlushSync {
		ctx := currentContext()
		if ctx.batchDepth > 0 {
			deferSync(ctx, w)
			return
		}
		w.execute()
		return
	}
	enqueue(w)
}

// execute performs one run: previous cleanups fire, old dependency links
// are destroyed, then the computation runs with this watcher installed as
// the tracking target, re-collecting its dependency set from scratch.
func (w *Watcher) execute() {
	if w.state != StateActive {
		return
	}
	w.dirty = false

	w.runCleanups()

	clearDeps(w)
	old := setCurrentSubscriber(w)
	cerr := w.runFn()
	setCurrentSubscriber(old)

	instrumentation().WatcherRan(w.flush)
	if cerr != nil {
		deliver(w.scope, cerr)
	}
}

// runCleanups fires registered cleanups in registration order and clears
// the list. Cleanup failures are delivered with the "cleanup" source tag.
func (w *Watcher) runCleanups() {
	if len(w.cleanups) == 0 {
		return
	}
	cleanups := w.cleanups
	w.cleanups = nil
	for _, fn := range cleanups {
		if cerr := runGuarded(SourceCleanup, w.sub.id, fn); cerr != nil {
			deliver(w.scope, cerr)
		}
	}
}

// OnCleanup registers a cleanup to run before the next re-run or on
// disposal. Registering on a disposed watcher runs fn immediately.
func (w *Watcher) OnCleanup(fn Cleanup) {
	if w.state == StateDisposed {
		fn()
		return
	}
	w.cleanups = append(w.cleanups, fn)
}

// ID returns the unique identifier for this watcher.
func (w *Watcher) ID() uint64 {
	return w.sub.id
}

// State returns the watcher's current lifecycle state.
func (w *Watcher) State() RunState {
	return w.state
}

// Flush returns the watcher's flush mode.
func (w *Watcher) Flush() FlushMode {
	return w.flush
}

// Pause suspends the watcher. Triggers received while paused set a dirty
// flag; the deferred run happens on Resume. A pre/post watcher that was
// already queued keeps its pending update as dirtiness. Pausing a
// non-active watcher is an error.
func (w *Watcher) Pause() error {
	if w.state != StateActive {
		return fmt.Errorf("%w: cannot pause %s watcher", ErrInvalidTransition, w.state)
	}
	w.state = StatePaused
	if dequeue(w) {
		w.dirty = true
	}
	return nil
}

// Resume reactivates a paused watcher. If it went dirty while paused, it
// runs immediately (sync) or re-enqueues (pre/post). Resuming a non-paused
// watcher is an error.
func (w *Watcher) Resume() error {
	if w.state != StatePaused {
		return fmt.Errorf("%w: cannot resume %s watcher", ErrInvalidTransition, w.state)
	}
	w.state = StateActive
	if w.dirty {
		if w.flush == FlushSync {
			w.execute()
		} else {
			enqueue(w)
		}
	}
	return nil
}

// Dispose permanently stops the watcher: cleanups fire, all dependency
// links are destroyed, and any pending queue entry is dropped. Disposing an
// already-disposed watcher is an error.
func (w *Watcher) Dispose() error {
	if w.state == StateDisposed {
		return fmt.Errorf("%w: watcher already disposed", ErrInvalidTransition)
	}
	w.teardown()
	if w.scope != nil {
		w.scope.drop(w)
	}
	return nil
}

// disposeOwned is the scope-driven disposal path; the scope already removed
// the watcher from its list.
func (w *Watcher) disposeOwned() {
	if w.state == StateDisposed {
		return
	}
	w.teardown()
}

func (w *Watcher) teardown() {
	w.state = StateDisposed
	w.runCleanups()
	clearDeps(w)
	dequeue(w)
}

// WatchOption configures a Watcher at creation.
type WatchOption interface {
	applyWatch(w *Watcher)
}

type watchOptionFunc func(*Watcher)

func (f watchOptionFunc) applyWatch(w *Watcher) { f(w) }

// WithFlush sets the watcher's flush mode. The default is FlushPre.
func WithFlush(mode FlushMode) WatchOption {
	return watchOptionFunc(func(w *Watcher) {
		w.flush = mode
	})
}

// Immediate makes Watch invoke the callback on the initial run, with the
// zero value as the old value.
func Immediate() WatchOption {
	return watchOptionFunc(func(w *Watcher) {
		w.immediate = true
	})
}

// Detached opts the watcher out of auto-registration with the current
// scope. The caller becomes responsible for disposal.
func Detached() WatchOption {
	return watchOptionFunc(func(w *Watcher) {
		w.detached = true
	})
}

// WithFilter installs a change filter. Triggers whose Change payload fails
// the predicate are ignored, letting a watcher subscribe to a reactive
// container but react only to specific keys.
func WithFilter(fn func(Change) bool) WatchOption {
	return watchOptionFunc(func(w *Watcher) {
		w.filter = fn
	})
}

func newWatcher(opts []WatchOption) *Watcher {
	w := &Watcher{
		sub:   subscriberNode{id: nextID()},
		flush: FlushPre,
		state: StateActive,
	}
	for _, opt := range opts {
		opt.applyWatch(w)
	}
	if !w.detached {
		if scope := CurrentScope(); scope != nil {
			w.scope = scope
			scope.adopt(w)
		}
	}
	return w
}

// Watch creates a watcher over a getter. The getter runs tracked; whenever
// any signal it read changes, the getter re-runs and, if the produced value
// differs from the previous one, callback is invoked with (new, old). The
// callback itself runs untracked.
//
// Example:
//
//	count := NewRef(1)
//	Watch(func() int { return count.Get() }, func(n, o int) {
//	    fmt.Println("count:", o, "->", n)
//	}, WithFlush(FlushSync))
func Watch[T any](getter func() T, callback func(newVal, oldVal T), opts ...WatchOption) *Watcher {
	w := newWatcher(opts)

	var prev T
	first := true
	w.runFn = func() *ComputationError {
		var next T
		if cerr := runGuarded(SourceGetter, w.sub.id, func() { next = getter() }); cerr != nil {
			return cerr
		}
		if first {
			first = false
			prev = next
			if w.immediate && callback != nil {
				var zero T
				return invokeCallback(w, callback, next, zero)
			}
			return nil
		}
		if defaultEquals(prev, next) {
			return nil
		}
		old := prev
		prev = next
		if callback == nil {
			return nil
		}
		return invokeCallback(w, callback, next, old)
	}

	w.execute()
	return w
}

func invokeCallback[T any](w *Watcher, callback func(T, T), next, old T) *ComputationError {
	var cerr *ComputationError
	Untracked(func() {
		cerr = runGuarded(SourceCallback, w.sub.id, func() { callback(next, old) })
	})
	return cerr
}

// Effect creates a watcher that re-runs fn whenever any signal it reads
// changes. The function runs once immediately to collect dependencies.
//
// Example:
//
//	Effect(func() {
//	    fmt.Println("count is", count.Get())
//	    OnCleanup(func() { fmt.Println("re-running") })
//	})
func Effect(fn func(), opts ...WatchOption) *Watcher {
	w := newWatcher(opts)
	w.runFn = func() *ComputationError {
		return runGuarded(SourceGetter, w.sub.id, fn)
	}
	w.execute()
	return w
}

// OnCleanup registers a cleanup with the currently running watcher. Outside
// a watcher run it falls back to the current scope's disposal; with neither
// in context the registration is dropped with a warning.
func OnCleanup(fn Cleanup) {
	if w, ok := currentSubscriber().(*Watcher); ok {
		w.OnCleanup(fn)
		return
	}
	if scope := CurrentScope(); scope != nil {
		scope.OnCleanup(fn)
		return
	}
	slog.Warn("strand: OnCleanup called outside watcher or scope; cleanup dropped")
}
