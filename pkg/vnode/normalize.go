package vnode

import "log/slog"

// normalizeChildren drops nil children (conditional rendering produces
// them) and reports duplicate keys among the survivors. Duplicate keys
// break keyed matching: only the last duplicate would be found, so the
// earlier ones would be unmounted and rebuilt on every patch.
func normalizeChildren(children []*VNode) []*VNode {
	out := children[:0]
	var seen map[string]bool
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Key != "" {
			if seen == nil {
				seen = make(map[string]bool)
			}
			if seen[c.Key] {
				slog.Warn("vnode: duplicate key among siblings", "key", c.Key)
			}
			seen[c.Key] = true
		}
		out = append(out, c)
	}
	return out
}
