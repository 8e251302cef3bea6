package strand

import (
	"errors"
	"fmt"

	interrors "github.com/strand-ui/strand/internal/errors"
)

// ErrInvalidTransition is returned when a Watcher or Scope operation is
// applied in a state that does not permit it. State-machine violations
// indicate a caller bug, so they are never silently ignored.
var ErrInvalidTransition = errors.New("strand: invalid state transition")

// ErrorSource tags where in a watcher's lifecycle a failure occurred.
type ErrorSource string

const (
	SourceGetter   ErrorSource = "getter"
	SourceCallback ErrorSource = "callback"
	SourceCleanup  ErrorSource = "cleanup"
)

// ComputationError wraps a failure inside a watcher or computed
// computation. It is delivered to the nearest enclosing scope's error
// handler; with no handler it propagates as a panic from the triggering
// write's call stack.
type ComputationError struct {
	// Source is the lifecycle stage that failed.
	Source ErrorSource

	// Subscriber is the ID of the watcher or computed that failed.
	Subscriber uint64

	// Err is the underlying error or recovered panic value.
	Err error
}

// Error implements the error interface.
func (e *ComputationError) Error() string {
	return fmt.Sprintf("strand: %s failed in subscriber %d: %v", e.Source, e.Subscriber, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ComputationError) Unwrap() error {
	return e.Err
}

// runGuarded executes fn, converting an escaped panic into a
// ComputationError tagged with the given source. All user computations
// (getters, callbacks, cleanups) funnel through this single boundary.
func runGuarded(source ErrorSource, id uint64, fn func()) (cerr *ComputationError) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			cerr = &ComputationError{Source: source, Subscriber: id, Err: err}
		}
	}()
	fn()
	return nil
}

// deliver routes a computation error to the nearest scope handler, walking
// up the scope hierarchy. Unhandled errors panic as a coded error so the
// failure surfaces at the triggering write; the ComputationError stays
// reachable through the wrap chain.
func deliver(scope *Scope, cerr *ComputationError) {
	for s := scope; s != nil; s = s.parent {
		if s.handle(cerr) {
			return
		}
	}
	panic(interrors.New("E003").
		WithDetailf("%s failed in subscriber %d", cerr.Source, cerr.Subscriber).
		WithSuggestion("register a handler with Scope.OnError on an enclosing scope").
		Wrap(cerr))
}
