package vnode

// elementDriver handles element and void-element nodes. Render builds the
// detached subtree; Mount attaches it and recurses so children transition
// in lockstep with the parent.
type elementDriver struct{}

func (d *elementDriver) Render(rt *Runtime, n *VNode) error {
	n.host = rt.adapter.CreateElement(n.Tag)
	applyProps(rt.adapter, n.host, n.Props)
	for _, c := range n.Children {
		if err := rt.Render(c); err != nil {
			return err
		}
	}
	return nil
}

func (d *elementDriver) Mount(rt *Runtime, n *VNode, parent HostNode) error {
	rt.adapter.AppendChild(parent, n.host)
	n.hostParent = parent
	for _, c := range n.Children {
		if err := rt.Mount(c, n.host); err != nil {
			return err
		}
	}
	return nil
}

func (d *elementDriver) Activate(rt *Runtime, n *VNode, attach bool) error {
	if attach {
		rt.adapter.AppendChild(n.hostParent, n.host)
	}
	// Children stayed attached to n.host; they only flip state.
	for _, c := range n.Children {
		if err := rt.activate(c, false); err != nil {
			return err
		}
	}
	return nil
}

func (d *elementDriver) Deactivate(rt *Runtime, n *VNode, detach bool) error {
	for _, c := range n.Children {
		if err := rt.deactivate(c, false); err != nil {
			return err
		}
	}
	if detach {
		rt.adapter.RemoveChild(n.hostParent, n.host)
	}
	return nil
}

func (d *elementDriver) Unmount(rt *Runtime, n *VNode, detach bool) error {
	for _, c := range n.Children {
		if err := rt.unmount(c, false); err != nil {
			return err
		}
	}
	if detach && n.hostParent != nil {
		rt.adapter.RemoveChild(n.hostParent, n.host)
	}
	return nil
}

func (d *elementDriver) UpdateProps(rt *Runtime, n *VNode, props map[string]any) ([]string, error) {
	set, removed := DiffProps(n.Props, props)
	for k, v := range set {
		rt.adapter.SetProperty(n.host, k, v)
	}
	for _, k := range removed {
		rt.adapter.RemoveProperty(n.host, k)
	}
	n.Props = props
	return changedKeys(set, removed), nil
}

// textDriver handles text and comment nodes.
type textDriver struct {
	comment bool
}

func (d *textDriver) Render(rt *Runtime, n *VNode) error {
	if d.comment {
		n.host = rt.adapter.CreateComment(n.Text)
	} else {
		n.host = rt.adapter.CreateText(n.Text)
	}
	return nil
}

func (d *textDriver) Mount(rt *Runtime, n *VNode, parent HostNode) error {
	rt.adapter.AppendChild(parent, n.host)
	n.hostParent = parent
	return nil
}

func (d *textDriver) Activate(rt *Runtime, n *VNode, attach bool) error {
	if attach {
		rt.adapter.AppendChild(n.hostParent, n.host)
	}
	return nil
}

func (d *textDriver) Deactivate(rt *Runtime, n *VNode, detach bool) error {
	if detach {
		rt.adapter.RemoveChild(n.hostParent, n.host)
	}
	return nil
}

func (d *textDriver) Unmount(rt *Runtime, n *VNode, detach bool) error {
	if detach && n.hostParent != nil {
		rt.adapter.RemoveChild(n.hostParent, n.host)
	}
	return nil
}

// Text and comment nodes carry no props.
func (d *textDriver) UpdateProps(*Runtime, *VNode, map[string]any) ([]string, error) {
	return nil, nil
}

// fragmentDriver handles fragments. A fragment has no host node; its
// children are siblings under the fragment's mount parent, so attach and
// detach flags pass straight through to each child.
type fragmentDriver struct{}

func (d *fragmentDriver) Render(rt *Runtime, n *VNode) error {
	for _, c := range n.Children {
		if err := rt.Render(c); err != nil {
			return err
		}
	}
	return nil
}

func (d *fragmentDriver) Mount(rt *Runtime, n *VNode, parent HostNode) error {
	n.hostParent = parent
	for _, c := range n.Children {
		if err := rt.Mount(c, parent); err != nil {
			return err
		}
	}
	return nil
}

func (d *fragmentDriver) Activate(rt *Runtime, n *VNode, attach bool) error {
	for _, c := range n.Children {
		if err := rt.activate(c, attach); err != nil {
			return err
		}
	}
	return nil
}

func (d *fragmentDriver) Deactivate(rt *Runtime, n *VNode, detach bool) error {
	for _, c := range n.Children {
		if err := rt.deactivate(c, detach); err != nil {
			return err
		}
	}
	return nil
}

func (d *fragmentDriver) Unmount(rt *Runtime, n *VNode, detach bool) error {
	for _, c := range n.Children {
		if err := rt.unmount(c, detach); err != nil {
			return err
		}
	}
	return nil
}

// Fragments carry no props of their own.
func (d *fragmentDriver) UpdateProps(*Runtime, *VNode, map[string]any) ([]string, error) {
	return nil, nil
}
