// Package hosttest provides an in-memory host adapter for exercising the
// vnode runtime in tests. It keeps a real node tree, records every
// operation, and can render the tree as HTML for golden comparisons.
package hosttest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/strand-ui/strand/pkg/vnode"
)

// Node is one node in the mock host tree.
type Node struct {
	Kind     string // "root", "element", "text", "comment"
	Tag      string
	Text     string
	Props    map[string]any
	Children []*Node

	parent *Node
}

// Adapter is a recording vnode.Adapter backed by an in-memory tree.
// HostNode handles are *Node.
type Adapter struct {
	root *Node

	// Ops is the log of every adapter call, in order, formatted as
	// "createElement(div)" style entries.
	Ops []string
}

// New creates an empty mock host with a root container node.
func New() *Adapter {
	return &Adapter{root: &Node{Kind: "root"}}
}

// NewRuntime creates a mock host and a vnode runtime over it.
func NewRuntime(opts ...vnode.RuntimeOption) (*Adapter, *vnode.Runtime) {
	a := New()
	return a, vnode.NewRuntime(a, opts...)
}

// Root returns the root container, the usual mount target.
func (a *Adapter) Root() vnode.HostNode {
	return a.root
}

func (a *Adapter) record(format string, args ...any) {
	a.Ops = append(a.Ops, fmt.Sprintf(format, args...))
}

// OpCount returns the number of recorded operations with the given prefix,
// or all operations when prefix is empty.
func (a *Adapter) OpCount(prefix string) int {
	if prefix == "" {
		return len(a.Ops)
	}
	n := 0
	for _, op := range a.Ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

// ResetOps clears the operation log, keeping the tree.
func (a *Adapter) ResetOps() {
	a.Ops = nil
}

func (a *Adapter) CreateElement(tag string) vnode.HostNode {
	a.record("createElement(%s)", tag)
	return &Node{Kind: "element", Tag: tag}
}

func (a *Adapter) CreateText(text string) vnode.HostNode {
	a.record("createText(%q)", text)
	return &Node{Kind: "text", Text: text}
}

func (a *Adapter) CreateComment(text string) vnode.HostNode {
	a.record("createComment(%q)", text)
	return &Node{Kind: "comment", Text: text}
}

func (a *Adapter) SetProperty(node vnode.HostNode, key string, value any) {
	n := node.(*Node)
	a.record("setProperty(%s, %s)", n.Tag, key)
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[key] = value
}

func (a *Adapter) RemoveProperty(node vnode.HostNode, key string) {
	n := node.(*Node)
	a.record("removeProperty(%s, %s)", n.Tag, key)
	delete(n.Props, key)
}

func (a *Adapter) SetText(node vnode.HostNode, text string) {
	n := node.(*Node)
	a.record("setText(%q)", text)
	n.Text = text
}

// AppendChild moves child to the end of parent's children, detaching it
// from any previous parent first, matching DOM appendChild semantics.
func (a *Adapter) AppendChild(parent, child vnode.HostNode) {
	p, c := parent.(*Node), child.(*Node)
	a.record("appendChild(%s <- %s)", p.label(), c.label())
	detach(c)
	c.parent = p
	p.Children = append(p.Children, c)
}

// InsertBefore moves child immediately before ref under parent. A nil ref
// appends.
func (a *Adapter) InsertBefore(parent, child, ref vnode.HostNode) {
	p, c := parent.(*Node), child.(*Node)
	if ref == nil {
		a.AppendChild(parent, child)
		return
	}
	r := ref.(*Node)
	if c == r {
		return
	}
	a.record("insertBefore(%s <- %s, %s)", p.label(), c.label(), r.label())
	detach(c)
	c.parent = p
	for i, existing := range p.Children {
		if existing == r {
			p.Children = append(p.Children[:i], append([]*Node{c}, p.Children[i:]...)...)
			return
		}
	}
	p.Children = append(p.Children, c)
}

func (a *Adapter) RemoveChild(parent, child vnode.HostNode) {
	p, c := parent.(*Node), child.(*Node)
	a.record("removeChild(%s -> %s)", p.label(), c.label())
	if c.parent == p {
		detach(c)
	}
}

func detach(n *Node) {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) label() string {
	switch n.Kind {
	case "root":
		return "#root"
	case "element":
		return n.Tag
	case "text":
		return fmt.Sprintf("%q", n.Text)
	default:
		return "#comment"
	}
}

// HTML renders the host tree as an HTML-ish string. Props print in sorted
// order; function-valued props are elided, since handlers have no textual
// form.
func (a *Adapter) HTML() string {
	var b strings.Builder
	for _, c := range a.root.Children {
		writeHTML(&b, c)
	}
	return b.String()
}

func writeHTML(b *strings.Builder, n *Node) {
	switch n.Kind {
	case "text":
		b.WriteString(n.Text)
	case "comment":
		fmt.Fprintf(b, "<!--%s-->", n.Text)
	case "element":
		b.WriteByte('<')
		b.WriteString(n.Tag)
		keys := make([]string, 0, len(n.Props))
		for k := range n.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := n.Props[k]
			if _, isFunc := v.(func()); isFunc {
				continue
			}
			fmt.Fprintf(b, " %s=%q", k, fmt.Sprint(v))
		}
		b.WriteByte('>')
		for _, c := range n.Children {
			writeHTML(b, c)
		}
		fmt.Fprintf(b, "</%s>", n.Tag)
	}
}
