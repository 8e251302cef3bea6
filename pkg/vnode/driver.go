package vnode

import (
	"fmt"
	"log/slog"
	"sync"

	interrors "github.com/strand-ui/strand/internal/errors"
	"github.com/strand-ui/strand/pkg/strand"
)

// Driver implements the lifecycle of one node kind. Drivers receive the
// runtime for adapter access and recursion into children.
//
// Activate, Deactivate, and Unmount take an attach/detach flag: only the
// topmost host node of the affected subtree is actually re-attached or
// detached, while the recursion below it flips states and widget scopes
// without touching the host tree.
type Driver interface {
	Render(rt *Runtime, n *VNode) error
	Mount(rt *Runtime, n *VNode, parent HostNode) error
	Activate(rt *Runtime, n *VNode, attach bool) error
	Deactivate(rt *Runtime, n *VNode, detach bool) error
	Unmount(rt *Runtime, n *VNode, detach bool) error

	// UpdateProps replaces the node's props and returns the keys whose
	// values changed, in sorted order. Kinds without props return nil.
	UpdateProps(rt *Runtime, n *VNode, props map[string]any) ([]string, error)
}

// Registry maps node kinds to drivers. A fresh registry carries the
// built-in drivers; Register replaces the driver for a kind, which is how
// hosts override behavior for specific kinds. An optional default driver
// catches kinds with no registration of their own.
type Registry struct {
	mu       sync.RWMutex
	drivers  map[VKind]Driver
	fallback Driver
}

// NewRegistry returns a registry pre-populated with the built-in drivers.
func NewRegistry() *Registry {
	el := &elementDriver{}
	wd := &widgetDriver{}
	return &Registry{
		drivers: map[VKind]Driver{
			KindElement:     el,
			KindVoidElement: el,
			KindText:        &textDriver{comment: false},
			KindComment:     &textDriver{comment: true},
			KindFragment:    &fragmentDriver{},
			KindStateful:    wd,
			KindStateless:   wd,
		},
	}
}

// Register installs d as the driver for kind, replacing any previous one.
func (r *Registry) Register(kind VKind, d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[kind] = d
}

// RegisterDefault installs d as the fallback for kinds that have no
// driver of their own.
func (r *Registry) RegisterDefault(d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = d
}

// driver returns the driver for kind, falling back to the default driver
// when the kind has no registration. A kind that resolves to neither is a
// wiring bug, not a runtime condition, so the lookup panics with a coded
// error.
func (r *Registry) driver(kind VKind) Driver {
	r.mu.RLock()
	d := r.drivers[kind]
	if d == nil {
		d = r.fallback
	}
	r.mu.RUnlock()
	if d == nil {
		panic(interrors.New("E201").
			WithDetailf("node kind %s", kind).
			WithSuggestion("call Registry.Register for this kind before rendering"))
	}
	return d
}

// Runtime drives virtual nodes through their lifecycle against a host
// Adapter. One Runtime serves one host tree; it is not safe for concurrent
// use, matching the engine's per-goroutine scheduling.
type Runtime struct {
	adapter  Adapter
	registry *Registry
	log      *slog.Logger
	observer Observer

	// patchOps counts host mutations within one Patch pass.
	patchOps int
}

// RuntimeOption configures a Runtime at creation.
type RuntimeOption interface {
	applyRuntime(rt *Runtime)
}

type runtimeOptionFunc func(*Runtime)

func (f runtimeOptionFunc) applyRuntime(rt *Runtime) { f(rt) }

// WithRegistry uses a custom driver registry instead of the defaults.
func WithRegistry(r *Registry) RuntimeOption {
	return runtimeOptionFunc(func(rt *Runtime) {
		rt.registry = r
	})
}

// WithLogger sets the runtime's logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) RuntimeOption {
	return runtimeOptionFunc(func(rt *Runtime) {
		rt.log = log
	})
}

// WithObserver installs a lifecycle observer, typically the metrics
// collector.
func WithObserver(o Observer) RuntimeOption {
	return runtimeOptionFunc(func(rt *Runtime) {
		rt.observer = o
	})
}

// NewRuntime creates a runtime over the given host adapter.
func NewRuntime(adapter Adapter, opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		adapter:  adapter,
		registry: NewRegistry(),
		log:      slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt.applyRuntime(rt)
	}
	return rt
}

// Adapter returns the host adapter the runtime drives.
func (rt *Runtime) Adapter() Adapter {
	return rt.adapter
}

// Render creates host resources for n and its subtree, detached from any
// parent. Only a freshly created node can be rendered.
func (rt *Runtime) Render(n *VNode) error {
	if n.state != StateCreated {
		return fmt.Errorf("vnode: cannot render %s node in state %s: %w",
			n.Kind, n.state, strand.ErrInvalidTransition)
	}
	if err := rt.registry.driver(n.Kind).Render(rt, n); err != nil {
		return err
	}
	n.state = StateRendered
	rt.observer.NodeRendered(n.Kind)
	return nil
}

// Mount attaches a rendered node under parent and activates its subtree.
// Widget mounted hooks fire bottom-up as the recursion unwinds.
func (rt *Runtime) Mount(n *VNode, parent HostNode) error {
	if n.state != StateRendered {
		return fmt.Errorf("vnode: cannot mount %s node in state %s: %w",
			n.Kind, n.state, strand.ErrInvalidTransition)
	}
	if err := rt.registry.driver(n.Kind).Mount(rt, n, parent); err != nil {
		return err
	}
	n.state = StateActivated
	rt.observer.NodeMounted(n.Kind)
	return nil
}

// Activate re-attaches a deactivated subtree. Only the topmost host node
// moves; widget scopes below resume and their activated hooks fire.
func (rt *Runtime) Activate(n *VNode) error {
	return rt.activate(n, true)
}

func (rt *Runtime) activate(n *VNode, attach bool) error {
	if n.state != StateDeactivated {
		return fmt.Errorf("vnode: cannot activate %s node in state %s: %w",
			n.Kind, n.state, strand.ErrInvalidTransition)
	}
	if err := rt.registry.driver(n.Kind).Activate(rt, n, attach); err != nil {
		return err
	}
	n.state = StateActivated
	return nil
}

// Deactivate detaches an activated subtree while keeping its host
// resources and widget state alive for later re-activation. Widget scopes
// pause, so their watchers accumulate dirtiness instead of running.
func (rt *Runtime) Deactivate(n *VNode) error {
	return rt.deactivate(n, true)
}

func (rt *Runtime) deactivate(n *VNode, detach bool) error {
	if n.state != StateActivated {
		return fmt.Errorf("vnode: cannot deactivate %s node in state %s: %w",
			n.Kind, n.state, strand.ErrInvalidTransition)
	}
	if err := rt.registry.driver(n.Kind).Deactivate(rt, n, detach); err != nil {
		return err
	}
	n.state = StateDeactivated
	return nil
}

// Unmount permanently tears a node down: widget before-unmount hooks fire
// top-down, children unmount, scopes dispose, and the topmost host node
// detaches. Unmounting is terminal and valid from every other state: a
// rendered-but-never-mounted node releases its host resources, and a
// created node has nothing to release.
func (rt *Runtime) Unmount(n *VNode) error {
	return rt.unmount(n, true)
}

func (rt *Runtime) unmount(n *VNode, detach bool) error {
	if n.state == StateUnmounted {
		return fmt.Errorf("vnode: cannot unmount %s node in state %s: %w",
			n.Kind, n.state, strand.ErrInvalidTransition)
	}
	if err := rt.registry.driver(n.Kind).Unmount(rt, n, detach); err != nil {
		return err
	}
	n.state = StateUnmounted
	n.hostParent = nil
	rt.observer.NodeUnmounted(n.Kind)
	return nil
}

// Tick drains the reactive job queues, running pending widget re-renders
// and watchers. Hosts call this once per event-loop turn.
func (rt *Runtime) Tick() {
	strand.Flush()
}
