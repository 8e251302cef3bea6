package vnode

// Observer receives lifecycle events from a Runtime. The metrics package
// provides a Prometheus-backed implementation; the default is a no-op.
type Observer interface {
	// NodeRendered is called after a node's host resources are created.
	NodeRendered(kind VKind)

	// NodeMounted is called after a node attaches to a parent.
	NodeMounted(kind VKind)

	// NodeUnmounted is called after a node is permanently torn down.
	NodeUnmounted(kind VKind)

	// PatchApplied is called after a reconciliation pass with the number
	// of host mutations it performed.
	PatchApplied(ops int)
}

type nopObserver struct{}

func (nopObserver) NodeRendered(VKind)  {}
func (nopObserver) NodeMounted(VKind)   {}
func (nopObserver) NodeUnmounted(VKind) {}
func (nopObserver) PatchApplied(int)    {}
