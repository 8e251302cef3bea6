package vnode

// VKind identifies the kind of a virtual node and selects the driver that
// handles its lifecycle.
type VKind uint8

const (
	// KindElement is a host element with a tag, props, and children.
	KindElement VKind = iota

	// KindVoidElement is a host element that cannot have children
	// (img, br, input, ...).
	KindVoidElement

	// KindText is a text node.
	KindText

	// KindComment is a comment node.
	KindComment

	// KindFragment groups children without a host node of its own.
	KindFragment

	// KindStateful is a widget with setup state, a reactive render
	// function, and lifecycle hooks.
	KindStateful

	// KindStateless is a widget that is a pure function of its props.
	KindStateless
)

// String returns a human-readable name for the kind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindVoidElement:
		return "void-element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindFragment:
		return "fragment"
	case KindStateful:
		return "stateful"
	case KindStateless:
		return "stateless"
	default:
		return "unknown"
	}
}

// NodeState is the lifecycle state of a virtual node.
//
// created → rendered → activated ⇄ deactivated → unmounted
//
// Rendered nodes have host resources but are not attached to a parent.
// Deactivated nodes keep their host subtree alive while detached, so
// re-activation is cheap. Unmounted is terminal.
type NodeState uint8

const (
	StateCreated NodeState = iota
	StateRendered
	StateActivated
	StateDeactivated
	StateUnmounted
)

// String returns a human-readable name for the state.
func (s NodeState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRendered:
		return "rendered"
	case StateActivated:
		return "activated"
	case StateDeactivated:
		return "deactivated"
	case StateUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// VNode is a virtual node. Element and void-element nodes describe host
// elements; text and comment nodes carry literal content; fragments group
// siblings; stateful and stateless nodes are widgets whose output subtree
// is produced at render time.
//
// Construct nodes with the helpers (El, Text, Fragment, Stateful, ...)
// rather than by hand; they normalize children and extract keys.
type VNode struct {
	Kind VKind

	// Tag is the element tag, or the widget name for diagnostics.
	Tag string

	// Props holds element properties or the widget's initial props.
	Props map[string]any

	// Text is the content of text and comment nodes.
	Text string

	// Key identifies the node among its siblings during reconciliation.
	Key string

	// Children of elements and fragments. Empty for void elements,
	// text, comments, and widgets (a widget's subtree lives in its
	// instance output).
	Children []*VNode

	// Setup builds a stateful widget's render function. Set by Stateful.
	Setup SetupFunc

	// Fn renders a stateless widget from its props. Set by Stateless.
	Fn StatelessFunc

	state      NodeState
	host       HostNode
	hostParent HostNode
	widget     *widgetInstance
}

// State returns the node's current lifecycle state.
func (n *VNode) State() NodeState {
	return n.state
}

// Host returns the node's host handle, or nil before render. Fragments and
// widgets have no host of their own.
func (n *VNode) Host() HostNode {
	return n.host
}

// SetHost assigns the node's host handle. For Driver implementations; the
// built-in drivers set it during Render.
func (n *VNode) SetHost(h HostNode) {
	n.host = h
}

// HostParent returns the host node this node is attached under, or nil
// while detached.
func (n *VNode) HostParent() HostNode {
	return n.hostParent
}

// SetHostParent records the attachment parent. For Driver implementations;
// the built-in drivers set it during Mount.
func (n *VNode) SetHostParent(h HostNode) {
	n.hostParent = h
}

// IsWidget reports whether the node is a stateful or stateless widget.
func (n *VNode) IsWidget() bool {
	return n.Kind == KindStateful || n.Kind == KindStateless
}

// Output returns a widget node's rendered subtree, or nil for non-widgets
// and unrendered widgets.
func (n *VNode) Output() *VNode {
	if n.widget == nil {
		return nil
	}
	return n.widget.output
}
