package vnode

import (
	"fmt"
	"log/slog"
)

// voidElements cannot have children per the HTML spec.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// El creates an element node. Void tags (img, br, input, ...) become void
// elements; children passed to a void tag are dropped with a warning. A
// "key" prop becomes the node's reconciliation key.
func El(tag string, props map[string]any, children ...*VNode) *VNode {
	kind := KindElement
	if voidElements[tag] {
		kind = KindVoidElement
		if len(children) > 0 {
			slog.Warn("vnode: void element cannot have children; dropped",
				"tag", tag, "children", len(children))
			children = nil
		}
	}
	return &VNode{
		Kind:     kind,
		Tag:      tag,
		Props:    props,
		Key:      extractKey(props),
		Children: normalizeChildren(children),
	}
}

// Text creates a text node.
func Text(text string) *VNode {
	return &VNode{Kind: KindText, Text: text}
}

// Textf creates a text node from a format string.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment node. Widgets that render nothing produce an
// empty comment as a reconciliation anchor.
func Comment(text string) *VNode {
	return &VNode{Kind: KindComment, Text: text}
}

// Fragment groups children without introducing a host node.
func Fragment(children ...*VNode) *VNode {
	return &VNode{Kind: KindFragment, Children: normalizeChildren(children)}
}

// Stateful creates a widget node. name identifies the widget in logs and
// reconciliation; setup runs once at render time.
func Stateful(name string, setup SetupFunc, props map[string]any) *VNode {
	return &VNode{
		Kind:  KindStateful,
		Tag:   name,
		Props: props,
		Key:   extractKey(props),
		Setup: setup,
	}
}

// Stateless creates a widget node rendered purely from its props.
func Stateless(name string, fn StatelessFunc, props map[string]any) *VNode {
	return &VNode{
		Kind:  KindStateless,
		Tag:   name,
		Props: props,
		Key:   extractKey(props),
		Fn:    fn,
	}
}

// Keyed sets the node's reconciliation key and returns it.
func Keyed(key string, n *VNode) *VNode {
	n.Key = key
	return n
}

func extractKey(props map[string]any) string {
	if props == nil {
		return ""
	}
	if k, ok := props["key"].(string); ok {
		return k
	}
	return ""
}
