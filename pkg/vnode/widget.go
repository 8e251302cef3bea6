package vnode

import (
	"fmt"

	interrors "github.com/strand-ui/strand/internal/errors"
	"github.com/strand-ui/strand/pkg/strand"
)

// SetupFunc builds a stateful widget. It runs exactly once, inside the
// widget's scope, with the widget's reactive props. Signals and watchers
// created here are owned by the widget and disposed with it. The returned
// render function re-runs reactively: any signal it reads becomes a render
// dependency.
type SetupFunc func(props *strand.ReactiveMap) func() *VNode

// StatelessFunc renders a widget purely from its props. Reads of the
// reactive props subscribe the render, so prop updates re-render the
// widget; there is no other state.
type StatelessFunc func(props *strand.ReactiveMap) *VNode

// widgetInstance is the live state behind a mounted widget node.
type widgetInstance struct {
	node  *VNode
	scope *strand.Scope
	props *strand.ReactiveMap

	render  func() *VNode
	output  *VNode
	watcher *strand.Watcher

	hooks struct {
		mounted       []func()
		beforeUnmount []func()
		activated     []func()
		deactivated   []func()
	}
}

func (inst *widgetInstance) renderOnce() *VNode {
	out := inst.render()
	if out == nil {
		// A widget that renders nothing still needs a node to anchor
		// reconciliation at its position.
		out = Comment("")
	}
	return out
}

func fire(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}

// currentInstance returns the widget currently in setup. Lifecycle hooks
// are only meaningful during setup; anywhere else is a programming error.
func currentInstance() *widgetInstance {
	inst, ok := strand.CurrentValue().(*widgetInstance)
	if !ok {
		panic(interrors.New("E101").
			WithSuggestion("call lifecycle hooks synchronously inside the widget's setup function"))
	}
	return inst
}

// OnMounted registers fn to run after the widget attaches to the host
// tree. Must be called during setup.
func OnMounted(fn func()) {
	inst := currentInstance()
	inst.hooks.mounted = append(inst.hooks.mounted, fn)
}

// OnBeforeUnmount registers fn to run just before the widget is torn down,
// while its subtree is still attached. Must be called during setup.
func OnBeforeUnmount(fn func()) {
	inst := currentInstance()
	inst.hooks.beforeUnmount = append(inst.hooks.beforeUnmount, fn)
}

// OnActivated registers fn to run each time the widget re-attaches after a
// deactivation, and once on initial mount. Must be called during setup.
func OnActivated(fn func()) {
	inst := currentInstance()
	inst.hooks.activated = append(inst.hooks.activated, fn)
}

// OnDeactivated registers fn to run each time the widget is detached but
// kept alive. Must be called during setup.
func OnDeactivated(fn func()) {
	inst := currentInstance()
	inst.hooks.deactivated = append(inst.hooks.deactivated, fn)
}

// UpdateProps replaces a node's props through its driver and returns the
// keys whose values changed, in sorted order. For widgets the write goes
// through the reactive props map, so renders and watchers that read the
// changed keys re-run on the next tick; for elements the diff is applied
// to the host directly.
func (rt *Runtime) UpdateProps(n *VNode, props map[string]any) ([]string, error) {
	return rt.registry.driver(n.Kind).UpdateProps(rt, n, props)
}

// widgetDriver handles stateful and stateless widgets. The widget's output
// subtree is produced by a reactive render effect owned by the widget's
// scope; lifecycle operations cascade into the output and pause, resume,
// or dispose the scope.
type widgetDriver struct{}

func (d *widgetDriver) Render(rt *Runtime, n *VNode) error {
	scope := strand.NewScope(true)
	inst := &widgetInstance{
		node:  n,
		scope: scope,
		props: strand.NewReactiveMap(n.Props),
	}
	n.widget = inst

	scope.OnError(func(cerr *strand.ComputationError) {
		rt.log.Error("widget computation failed",
			"widget", n.Tag, "source", string(cerr.Source), "error", cerr.Err)
	})

	if n.Kind == KindStateful {
		var setupErr error
		scope.Run(func() {
			strand.WithValue(inst, func() {
				defer func() {
					if r := recover(); r != nil {
						setupErr = fmt.Errorf("vnode: widget %q setup panicked: %v", n.Tag, r)
					}
				}()
				inst.render = n.Setup(inst.props)
			})
		})
		if setupErr != nil {
			scope.Dispose() //nolint:errcheck
			return setupErr
		}
		if inst.render == nil {
			scope.Dispose() //nolint:errcheck
			return fmt.Errorf("vnode: widget %q setup returned no render function", n.Tag)
		}
	} else {
		inst.render = func() *VNode { return n.Fn(inst.props) }
	}

	// The render effect runs once now to produce the initial output and
	// re-runs on the pre queue whenever a render dependency changes.
	scope.Run(func() {
		inst.watcher = strand.Effect(func() {
			next := inst.renderOnce()
			if inst.output == nil {
				inst.output = next
				return
			}
			// Nested widgets created during the patch parent their
			// scopes to this widget's scope.
			strand.Untracked(func() {
				scope.Run(func() {
					patched, err := rt.Patch(inst.output, next, n.hostParent)
					if err != nil {
						rt.log.Error("widget re-render failed", "widget", n.Tag, "error", err)
						return
					}
					inst.output = patched
				})
			})
		})
	})

	if inst.output == nil {
		scope.Dispose() //nolint:errcheck
		return fmt.Errorf("vnode: widget %q initial render failed", n.Tag)
	}
	var err error
	scope.Run(func() { err = rt.Render(inst.output) })
	return err
}

func (d *widgetDriver) Mount(rt *Runtime, n *VNode, parent HostNode) error {
	n.hostParent = parent
	inst := n.widget
	if err := rt.Mount(inst.output, parent); err != nil {
		return err
	}
	fire(inst.hooks.mounted)
	fire(inst.hooks.activated)
	return nil
}

func (d *widgetDriver) Activate(rt *Runtime, n *VNode, attach bool) error {
	inst := n.widget
	if err := inst.scope.Resume(); err != nil {
		return err
	}
	if err := rt.activate(inst.output, attach); err != nil {
		return err
	}
	fire(inst.hooks.activated)
	return nil
}

func (d *widgetDriver) Deactivate(rt *Runtime, n *VNode, detach bool) error {
	inst := n.widget
	if err := rt.deactivate(inst.output, detach); err != nil {
		return err
	}
	if err := inst.scope.Pause(); err != nil {
		return err
	}
	fire(inst.hooks.deactivated)
	return nil
}

func (d *widgetDriver) UpdateProps(rt *Runtime, n *VNode, props map[string]any) ([]string, error) {
	if n.widget == nil {
		return nil, fmt.Errorf("vnode: cannot update props on unrendered %s widget", n.Kind)
	}
	set, removed := DiffProps(n.Props, props)
	n.Props = props
	n.widget.props.Replace(props)
	return changedKeys(set, removed), nil
}

func (d *widgetDriver) Unmount(rt *Runtime, n *VNode, detach bool) error {
	inst := n.widget
	if inst == nil {
		// Never rendered: no output, no scope, nothing to tear down.
		return nil
	}
	fire(inst.hooks.beforeUnmount)
	if err := rt.unmount(inst.output, detach); err != nil {
		return err
	}
	if inst.scope.State() != strand.StateDisposed {
		if err := inst.scope.Dispose(); err != nil {
			return err
		}
	}
	return nil
}
