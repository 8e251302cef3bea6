package vnode

// Patch reconciles a live node against a freshly built description and
// returns the node that survives: old, mutated in place, when the two
// describe the same thing, or next after a replacement. parent is the host
// node old is attached under.
func (rt *Runtime) Patch(old, next *VNode, parent HostNode) (*VNode, error) {
	rt.patchOps = 0
	result, err := rt.reconcile(old, next, parent)
	if err != nil {
		return nil, err
	}
	rt.observer.PatchApplied(rt.patchOps)
	return result, nil
}

// sameNode reports whether old can be patched in place by next.
func sameNode(old, next *VNode) bool {
	return old.Kind == next.Kind && old.Tag == next.Tag && old.Key == next.Key
}

func (rt *Runtime) reconcile(old, next *VNode, parent HostNode) (*VNode, error) {
	if sameNode(old, next) {
		return old, rt.patchInPlace(old, next)
	}

	// Replace: build the new subtree, slot it where old sits, then tear
	// old down.
	if err := rt.Render(next); err != nil {
		return nil, err
	}
	if old.state == StateRendered {
		// Old was never attached (a widget output patched before
		// mount); the replacement stays detached too.
		if err := rt.unmount(old, false); err != nil {
			return nil, err
		}
		return next, nil
	}

	anchor := firstHost(old)
	if err := rt.Mount(next, parent); err != nil {
		return nil, err
	}
	if anchor != nil {
		moveBefore(rt.adapter, parent, next, anchor)
	}
	if err := rt.Unmount(old); err != nil {
		return nil, err
	}
	rt.patchOps += 2
	return next, nil
}

func (rt *Runtime) patchInPlace(old, next *VNode) error {
	switch old.Kind {
	case KindElement, KindVoidElement:
		changed, err := rt.registry.driver(old.Kind).UpdateProps(rt, old, next.Props)
		if err != nil {
			return err
		}
		rt.patchOps += len(changed)
		if old.Kind == KindElement {
			kids, err := rt.reconcileChildren(old.host, old.Children, next.Children)
			if err != nil {
				return err
			}
			old.Children = kids
		}
		return nil

	case KindText, KindComment:
		if old.Text != next.Text {
			rt.adapter.SetText(old.host, next.Text)
			old.Text = next.Text
			rt.patchOps++
		}
		return nil

	case KindFragment:
		kids, err := rt.reconcileChildren(old.hostParent, old.Children, next.Children)
		if err != nil {
			return err
		}
		old.Children = kids
		return nil

	case KindStateful, KindStateless:
		if !PropsEqual(old.Props, next.Props) {
			changed, err := rt.registry.driver(old.Kind).UpdateProps(rt, old, next.Props)
			if err != nil {
				return err
			}
			rt.patchOps += len(changed)
		}
		return nil

	default:
		return nil
	}
}

// reconcileChildren matches old children to next children, keyed children
// by key and unkeyed children by order, then fixes host sibling order with
// a backward insert pass. Unmatched old children unmount; unmatched next
// children render and mount fresh.
func (rt *Runtime) reconcileChildren(parent HostNode, oldKids, nextKids []*VNode) ([]*VNode, error) {
	var byKey map[string]*VNode
	for _, c := range oldKids {
		if c.Key != "" {
			if byKey == nil {
				byKey = make(map[string]*VNode)
			}
			byKey[c.Key] = c
		}
	}

	used := make(map[*VNode]bool, len(oldKids))
	result := make([]*VNode, 0, len(nextKids))
	oldIdx := 0

	for _, nk := range nextKids {
		var match *VNode
		if nk.Key != "" {
			match = byKey[nk.Key]
		} else {
			for oldIdx < len(oldKids) && (used[oldKids[oldIdx]] || oldKids[oldIdx].Key != "") {
				oldIdx++
			}
			if oldIdx < len(oldKids) {
				match = oldKids[oldIdx]
			}
		}

		if match != nil && !used[match] && sameNode(match, nk) {
			used[match] = true
			patched, err := rt.reconcile(match, nk, parent)
			if err != nil {
				return nil, err
			}
			result = append(result, patched)
			continue
		}

		if err := rt.Render(nk); err != nil {
			return nil, err
		}
		if err := rt.Mount(nk, parent); err != nil {
			return nil, err
		}
		rt.patchOps++
		result = append(result, nk)
	}

	for _, ok := range oldKids {
		if !used[ok] {
			if err := rt.Unmount(ok); err != nil {
				return nil, err
			}
			rt.patchOps++
		}
	}

	// Order pass: walking backwards and inserting before the previous
	// sibling settles every host into its final position regardless of
	// how matching shuffled them.
	var anchor HostNode
	for i := len(result) - 1; i >= 0; i-- {
		hosts := hostNodes(result[i])
		for j := len(hosts) - 1; j >= 0; j-- {
			rt.adapter.InsertBefore(parent, hosts[j], anchor)
			anchor = hosts[j]
		}
	}
	return result, nil
}

// hostNodes collects the concrete host nodes of n in document order.
// Fragments and widgets contribute the hosts of their children or output.
func hostNodes(n *VNode) []HostNode {
	switch n.Kind {
	case KindFragment:
		var hosts []HostNode
		for _, c := range n.Children {
			hosts = append(hosts, hostNodes(c)...)
		}
		return hosts
	case KindStateful, KindStateless:
		if n.widget == nil || n.widget.output == nil {
			return nil
		}
		return hostNodes(n.widget.output)
	default:
		if n.host == nil {
			return nil
		}
		return []HostNode{n.host}
	}
}

// firstHost returns n's first concrete host node, or nil.
func firstHost(n *VNode) HostNode {
	hosts := hostNodes(n)
	if len(hosts) == 0 {
		return nil
	}
	return hosts[0]
}

// moveBefore repositions every host of n immediately before anchor.
func moveBefore(a Adapter, parent HostNode, n *VNode, anchor HostNode) {
	hosts := hostNodes(n)
	for i := len(hosts) - 1; i >= 0; i-- {
		a.InsertBefore(parent, hosts[i], anchor)
		anchor = hosts[i]
	}
}
