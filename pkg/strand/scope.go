package strand

import (
	"fmt"
	"sync"
)

// Scope is a container of watchers enabling bulk pause/resume/dispose.
// Disposing a Scope disposes every watcher it owns plus all child scopes.
// Watchers created while a scope is current (inside Run) are auto-registered
// unless created with Detached().
//
// Scopes form a hierarchy mirroring the widget tree: each widget instance
// owns a scope that is a child of its parent widget's scope.
type Scope struct {
	id     uint64
	parent *Scope

	mu       sync.Mutex
	state    RunState
	children []*Scope
	watchers []*Watcher
	cleanups []func()

	// errHandler receives computation errors from owned watchers. When
	// nil, errors bubble to the parent scope.
	errHandler func(*ComputationError)
}

// NewScope creates a new Scope. When attachToParent is true and a scope is
// current on this goroutine, the new scope becomes its child and is disposed
// with it.
func NewScope(attachToParent bool) *Scope {
	s := &Scope{id: nextID()}
	if attachToParent {
		if parent := CurrentScope(); parent != nil {
			s.parent = parent
			parent.addChild(s)
		}
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// State returns the scope's current lifecycle state.
func (s *Scope) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes fn with this scope as the goroutine's current scope, so
// watchers and child scopes created inside fn are owned by it.
func (s *Scope) Run(fn func()) {
	old := setCurrentScope(s)
	defer setCurrentScope(old)
	fn()
}

// OnCleanup registers a function to run when this scope is disposed.
// Registering on an already-disposed scope runs fn immediately.
func (s *Scope) OnCleanup(fn func()) {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// OnError registers the scope's error handler. Computation errors from
// owned watchers (and from descendant scopes without their own handler) are
// delivered here instead of panicking at the triggering write.
func (s *Scope) OnError(handler func(*ComputationError)) {
	s.mu.Lock()
	s.errHandler = handler
	s.mu.Unlock()
}

// handle invokes the scope's error handler if one is registered.
func (s *Scope) handle(cerr *ComputationError) bool {
	s.mu.Lock()
	h := s.errHandler
	s.mu.Unlock()
	if h == nil {
		return false
	}
	h(cerr)
	return true
}

// WatcherCount returns the number of watchers currently owned by this
// scope. After Dispose it is zero.
func (s *Scope) WatcherCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// Pause suspends the scope and every active watcher it owns, transitively
// through child scopes. Paused watchers accumulate dirtiness but defer
// execution until Resume. Pausing a non-active scope is an error.
func (s *Scope) Pause() error {
	s.mu.Lock()
	if s.state != StateActive {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot pause %s scope", ErrInvalidTransition, state)
	}
	s.state = StatePaused
	watchers := append([]*Watcher(nil), s.watchers...)
	children := append([]*Scope(nil), s.children...)
	s.mu.Unlock()

	for _, w := range watchers {
		if w.State() == StateActive {
			w.Pause() //nolint:errcheck // guarded by the state check above
		}
	}
	for _, c := range children {
		if c.State() == StateActive {
			c.Pause() //nolint:errcheck
		}
	}
	return nil
}

// Resume reactivates a paused scope. Watchers that went dirty while paused
// re-run (sync) or re-enqueue (pre/post) per their flush mode. Resuming a
// non-paused scope is an error.
func (s *Scope) Resume() error {
	s.mu.Lock()
	if s.state != StatePaused {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot resume %s scope", ErrInvalidTransition, state)
	}
	s.state = StateActive
	watchers := append([]*Watcher(nil), s.watchers...)
	children := append([]*Scope(nil), s.children...)
	s.mu.Unlock()

	for _, w := range watchers {
		if w.State() == StatePaused {
			w.Resume() //nolint:errcheck
		}
	}
	for _, c := range children {
		if c.State() == StatePaused {
			c.Resume() //nolint:errcheck
		}
	}
	return nil
}

// Dispose tears the scope down: child scopes are disposed in reverse
// creation order, then owned watchers, then cleanups in reverse
// registration order. Disposing an already-disposed scope is an error.
func (s *Scope) Dispose() error {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		return fmt.Errorf("%w: scope already disposed", ErrInvalidTransition)
	}
	s.state = StateDisposed
	children := s.children
	watchers := s.watchers
	cleanups := s.cleanups
	s.children = nil
	s.watchers = nil
	s.cleanups = nil
	s.mu.Unlock()

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	for i := len(children) - 1; i >= 0; i-- {
		if children[i].State() != StateDisposed {
			children[i].Dispose() //nolint:errcheck
		}
	}
	for _, w := range watchers {
		w.disposeOwned()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	return nil
}

func (s *Scope) addChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = append(s.children, child)
}

func (s *Scope) removeChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// adopt registers a watcher with this scope.
func (s *Scope) adopt(w *Watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisposed {
		return
	}
	s.watchers = append(s.watchers, w)
}

// drop removes a watcher from this scope, typically because the watcher was
// disposed individually.
func (s *Scope) drop(w *Watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, owned := range s.watchers {
		if owned == w {
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			return
		}
	}
}
