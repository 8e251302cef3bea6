// Package vnode is the virtual node runtime: a tree of lightweight node
// descriptions driven through a lifecycle state machine against a host
// platform adapter.
//
// Nodes move through created → rendered → activated ⇄ deactivated →
// unmounted. Render builds host resources detached; Mount attaches and
// activates; Deactivate detaches the subtree while keeping widget state
// warm; Unmount is terminal.
//
// Each node kind has a Driver, looked up in a Registry. Hosts can replace
// the driver for any kind to specialize behavior.
//
// Widgets bridge to the strand reactivity engine: a stateful widget's setup
// runs once inside its own scope, and the returned render function re-runs
// whenever a signal it read changes, reconciling the previous output
// against the new one.
//
//	counter := vnode.Stateful("counter", func(props *strand.ReactiveMap) func() *vnode.VNode {
//	    count := strand.NewRef(0)
//	    return func() *vnode.VNode {
//	        return vnode.El("button", map[string]any{
//	            "onclick": func() { count.Update(func(n int) int { return n + 1 }) },
//	        }, vnode.Textf("%d", count.Get()))
//	    }
//	}, nil)
//
//	rt := vnode.NewRuntime(adapter)
//	rt.Render(counter)
//	rt.Mount(counter, root)
package vnode
