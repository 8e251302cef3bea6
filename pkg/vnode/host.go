package vnode

// HostNode is an opaque handle to a node owned by the host platform. The
// runtime never inspects it; it only passes it back to the Adapter.
type HostNode any

// Adapter is the host platform boundary. The runtime calls it to create,
// mutate, and reparent host nodes; everything above this interface is
// platform-independent. The hosttest package provides a recording
// implementation for tests.
//
// Adapter methods are infallible: a host that can fail these primitives
// should surface errors through its own channel rather than into the
// reconciler.
type Adapter interface {
	// CreateElement creates a detached element node.
	CreateElement(tag string) HostNode

	// CreateText creates a detached text node.
	CreateText(text string) HostNode

	// CreateComment creates a detached comment node.
	CreateComment(text string) HostNode

	// SetProperty sets a property on an element node.
	SetProperty(node HostNode, key string, value any)

	// RemoveProperty removes a property from an element node.
	RemoveProperty(node HostNode, key string)

	// SetText replaces the content of a text or comment node.
	SetText(node HostNode, text string)

	// AppendChild attaches child as the last child of parent.
	AppendChild(parent, child HostNode)

	// InsertBefore attaches child immediately before ref under parent.
	// A nil ref behaves like AppendChild.
	InsertBefore(parent, child, ref HostNode)

	// RemoveChild detaches child from parent. The child's subtree stays
	// intact and may be re-attached later.
	RemoveChild(parent, child HostNode)
}
