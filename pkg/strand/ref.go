package strand

import (
	interrors "github.com/strand-ui/strand/internal/errors"
)

// Signal is the marker interface shared by every reactive source (Ref,
// Computed, ReactiveMap, ReactiveList). It exists so container code can
// detect an already-reactive value without reflection; signals compare by
// identity, never structurally.
type Signal interface {
	signalID() uint64
}

// IsSignal reports whether v is a reactive source.
func IsSignal(v any) bool {
	_, ok := v.(Signal)
	return ok
}

// Ref is a single reactive value. Get inside a watcher subscribes the
// watcher; Set notifies subscribers when the value actually changed.
//
// Example:
//
//	count := NewRef(0)
//	Effect(func() { fmt.Println(count.Get()) })
//	count.Set(1) // effect re-runs
//	count.Set(1) // no-op, value unchanged
type Ref[T any] struct {
	node   signalNode
	value  T
	equals func(a, b T) bool
}

// NewRef creates a reactive reference holding initial. Passing a value that
// is already a signal is a programming error and panics: nesting a signal
// inside a Ref would double-wrap it and split its subscribers.
func NewRef[T any](initial T) *Ref[T] {
	if IsSignal(any(initial)) {
		panic(interrors.New("E001").
			WithDetailf("NewRef received a %T", initial).
			WithSuggestion("pass the underlying value, or use the existing signal directly"))
	}
	return &Ref[T]{
		node:   signalNode{id: nextID()},
		value:  initial,
		equals: defaultEquals[T],
	}
}

// NewRefWithEquals creates a Ref with a custom equality function used to
// suppress notifications for writes that do not change the value.
func NewRefWithEquals[T any](initial T, equals func(a, b T) bool) *Ref[T] {
	r := NewRef(initial)
	r.equals = equals
	return r
}

func (r *Ref[T]) signalID() uint64 { return r.node.id }

// Get returns the current value, subscribing the running watcher if any.
func (r *Ref[T]) Get() T {
	r.node.track()
	return r.value
}

// Peek returns the current value without creating a subscription.
func (r *Ref[T]) Peek() T {
	return r.value
}

// Set replaces the value and notifies subscribers. Writes that leave the
// value equal under the Ref's equality function are dropped without
// notification.
func (r *Ref[T]) Set(v T) {
	if r.equals(r.value, v) {
		return
	}
	old := r.value
	r.value = v
	r.node.trigger(Change{Old: old, New: v})
}

// Update applies fn to the current value and stores the result. The read is
// untracked, so calling Update inside a watcher does not self-subscribe.
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.value))
}

// SubscriberCount returns the number of live dependency links on this Ref.
func (r *Ref[T]) SubscriberCount() int {
	n := 0
	for l := r.node.subs; l != nil; l = l.nextSub {
		n++
	}
	return n
}
