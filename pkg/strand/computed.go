package strand

import (
	"log/slog"

	interrors "github.com/strand-ui/strand/internal/errors"
)

// Computed is a derived reactive value. The getter runs lazily: a write to
// any dependency only marks the value stale, and recomputation happens on
// the next Get. A Computed is both a signal (readers subscribe to it) and a
// subscriber (it subscribes to whatever its getter reads).
//
// Example:
//
//	first := NewRef("Ada")
//	last := NewRef("Lovelace")
//	full := NewComputed(func() string { return first.Get() + " " + last.Get() })
//	full.Get() // "Ada Lovelace", computed now
//	last.Set("Byron")
//	full.Get() // recomputes on read
type Computed[T any] struct {
	sig signalNode
	sub subscriberNode

	getter func() T
	setter func(T)

	value     T
	stale     bool
	computing bool
}

// NewComputed creates a read-only computed value. The getter is not called
// until the first Get.
func NewComputed[T any](getter func() T) *Computed[T] {
	c := &Computed[T]{
		sig:    signalNode{id: nextID()},
		sub:    subscriberNode{id: nextID()},
		getter: getter,
		stale:  true,
	}
	if scope := CurrentScope(); scope != nil {
		scope.OnCleanup(c.release)
	}
	return c
}

// NewWritableComputed creates a computed with a setter. Set invokes the
// setter, which is expected to write the underlying sources; the computed
// value itself is still derived exclusively by the getter.
func NewWritableComputed[T any](getter func() T, setter func(T)) *Computed[T] {
	c := NewComputed(getter)
	c.setter = setter
	return c
}

func (c *Computed[T]) signalID() uint64 { return c.sig.id }

// node implements the subscriber interface.
func (c *Computed[T]) node() *subscriberNode { return &c.sub }

// notify marks the value stale and forwards the invalidation to this
// computed's own subscribers. The recomputation itself is deferred to the
// next read; repeated notifications while already stale are dropped.
func (c *Computed[T]) notify(Change) {
	if c.stale {
		return
	}
	c.stale = true
	c.sig.trigger(Change{Old: c.value})
}

// Get returns the derived value, recomputing if stale, and subscribes the
// running watcher.
func (c *Computed[T]) Get() T {
	c.sig.track()
	if c.stale {
		c.recompute()
	}
	return c.value
}

// Peek returns the derived value (recomputing if stale) without subscribing
// the caller. The getter itself still tracks its own dependencies.
func (c *Computed[T]) Peek() T {
	if c.stale {
		c.recompute()
	}
	return c.value
}

// Set forwards v to the setter. A computed without a setter is read-only;
// writing it is reported and ignored rather than treated as fatal.
func (c *Computed[T]) Set(v T) {
	if c.setter == nil {
		slog.Warn("strand: write to read-only computed ignored", "computed", c.sig.id)
		return
	}
	c.setter(v)
}

// recompute runs the getter with this computed installed as the tracking
// target, rebuilding its dependency set. A getter that reads its own value
// re-enters here and is reported as a cycle.
func (c *Computed[T]) recompute() {
	if c.computing {
		panic(interrors.New("E002").
			WithDetailf("computed %d depends on itself", c.sig.id).
			WithSuggestion("derive the value from other signals only"))
	}
	c.computing = true
	defer func() { c.computing = false }()

	clearDeps(c)
	old := setCurrentSubscriber(c)
	defer setCurrentSubscriber(old)
	c.value = c.getter()
	// Cleared only after a successful compute; a getter that panicked
	// stays stale and recomputes on the next read.
	c.stale = false
}

// Stale reports whether the next Get will recompute.
func (c *Computed[T]) Stale() bool {
	return c.stale
}

// release drops every graph edge touching this computed. Wired to the
// owning scope's disposal so discarded widgets don't leave derived values
// pinned to their sources.
func (c *Computed[T]) release() {
	clearDeps(c)
	clearSubscribers(&c.sig)
	c.stale = true
}

// DependencyCount returns the number of signals the most recent
// recomputation read.
func (c *Computed[T]) DependencyCount() int {
	n := 0
	for l := c.sub.deps; l != nil; l = l.nextDep {
		n++
	}
	return n
}
