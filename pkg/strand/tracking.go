package strand

import (
	"sync"

	"github.com/petermattis/goid"
)

// trackingContext holds the reactive state for one goroutine. Scheduling is
// single-threaded and cooperative: every goroutine gets its own context, its
// own job queues, and its own batch depth, so reactive graphs on different
// goroutines never interleave.
type trackingContext struct {
	// currentScope is the Scope that adopts newly created watchers.
	currentScope *Scope

	// currentSub is what's currently collecting dependencies. When a
	// signal is read, it links itself to this subscriber. nil means no
	// tracking (plain reads don't create subscriptions).
	currentSub subscriber

	// batchDepth tracks nested Batch() calls. When > 0, sync watchers are
	// deferred and the job queues are not flushed until the outermost
	// batch completes.
	batchDepth int

	// triggerDepth guards against unbounded synchronous re-trigger cycles.
	triggerDepth int

	// deferredSync holds sync-flush watchers collected during a batch, in
	// notification order.
	deferredSync []*Watcher

	// pre and post are the batched job queues, deduplicated via queued.
	pre    []*Watcher
	post   []*Watcher
	queued map[uint64]struct{}

	// flushing is set while Flush drains the queues, so nested flushes
	// fold into the running one.
	flushing bool

	// currentValue carries an arbitrary runtime value (the vnode package
	// stores the widget instance being set up). Stored as any to avoid a
	// dependency on higher layers.
	currentValue any
}

// contexts stores per-goroutine tracking contexts.
var contexts sync.Map

// currentContext returns the tracking context for the current goroutine,
// creating it on first use.
func currentContext() *trackingContext {
	gid := goid.Get()
	if ctx, ok := contexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	contexts.Store(gid, ctx)
	return ctx
}

// currentSubscriber returns the subscriber currently collecting
// dependencies, or nil when no tracking is active.
func currentSubscriber() subscriber {
	return currentContext().currentSub
}

// setCurrentSubscriber installs sub as the tracking target and returns the
// previous one so it can be restored.
func setCurrentSubscriber(sub subscriber) subscriber {
	ctx := currentContext()
	old := ctx.currentSub
	ctx.currentSub = sub
	return old
}

// CurrentScope returns the scope that adopts newly created watchers, or nil
// outside any Scope.Run.
func CurrentScope() *Scope {
	return currentContext().currentScope
}

// setCurrentScope installs s as the current scope and returns the previous
// one.
func setCurrentScope(s *Scope) *Scope {
	ctx := currentContext()
	old := ctx.currentScope
	ctx.currentScope = s
	return old
}

// Untracked runs fn without tracking signal reads as dependencies.
//
// Example:
//
//	Untracked(func() {
//	    // Reading count here won't subscribe the current watcher
//	    value := count.Get()
//	})
//
// For a single read, Peek on the signal is more direct.
func Untracked(fn func()) {
	old := setCurrentSubscriber(nil)
	defer setCurrentSubscriber(old)
	fn()
}

// WithValue runs fn with v installed as the goroutine's current runtime
// value. The vnode package uses this to make the widget instance being set
// up reachable from lifecycle hook registrars.
func WithValue(v any, fn func()) {
	ctx := currentContext()
	old := ctx.currentValue
	ctx.currentValue = v
	defer func() { ctx.currentValue = old }()
	fn()
}

// CurrentValue returns the goroutine's current runtime value, or nil.
func CurrentValue() any {
	return currentContext().currentValue
}
