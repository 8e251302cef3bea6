package vnode

import (
	"reflect"
	"sort"
)

// applyProps writes every prop to the host element. The "key" prop is
// reconciliation metadata and never reaches the host.
func applyProps(a Adapter, host HostNode, props map[string]any) {
	for k, v := range props {
		if k == "key" {
			continue
		}
		a.SetProperty(host, k, v)
	}
}

// DiffProps compares two prop maps and returns the entries to set and the
// keys to remove. Function-valued props always count as changed, since Go
// functions have no usable equality.
func DiffProps(old, next map[string]any) (set map[string]any, removed []string) {
	for k, v := range next {
		if k == "key" {
			continue
		}
		ov, existed := old[k]
		if !existed || !propEqual(ov, v) {
			if set == nil {
				set = make(map[string]any)
			}
			set[k] = v
		}
	}
	for k := range old {
		if k == "key" {
			continue
		}
		if _, kept := next[k]; !kept {
			removed = append(removed, k)
		}
	}
	return set, removed
}

func propEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a).Kind() == reflect.Func {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// PropsEqual reports whether two prop maps would produce no host changes.
func PropsEqual(old, next map[string]any) bool {
	set, removed := DiffProps(old, next)
	return len(set) == 0 && len(removed) == 0
}

// changedKeys flattens a prop diff into a sorted list of affected keys.
func changedKeys(set map[string]any, removed []string) []string {
	if len(set) == 0 && len(removed) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set)+len(removed))
	for k := range set {
		keys = append(keys, k)
	}
	keys = append(keys, removed...)
	sort.Strings(keys)
	return keys
}
