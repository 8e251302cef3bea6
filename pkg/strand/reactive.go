package strand

import (
	"log/slog"
	"sort"
)

// ReactiveMap is a reactive string-keyed container. Reads subscribe the
// running watcher to the whole container; every Change carries the mutated
// key, so a watcher that only cares about one key can narrow itself with
// WithFilter.
//
// Deep maps wrap nested map[string]any and []any values in reactive
// containers on first access and cache the wrapper, so repeated reads of
// the same key return the same container. Shallow maps return nested
// values as-is.
type ReactiveMap struct {
	node    signalNode
	data    map[string]any
	wrapped map[string]any
	shallow bool
}

// NewReactiveMap creates a deep reactive map seeded from initial. The
// backing map is copied; later mutations of initial are not observed.
func NewReactiveMap(initial map[string]any) *ReactiveMap {
	return newReactiveMap(initial, false)
}

// NewShallowMap creates a reactive map that does not wrap nested values.
func NewShallowMap(initial map[string]any) *ReactiveMap {
	return newReactiveMap(initial, true)
}

func newReactiveMap(initial map[string]any, shallow bool) *ReactiveMap {
	data := make(map[string]any, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &ReactiveMap{
		node:    signalNode{id: nextID()},
		data:    data,
		shallow: shallow,
	}
}

func (m *ReactiveMap) signalID() uint64 { return m.node.id }

// Get returns the value under key, subscribing the running watcher. Deep
// maps return nested maps and slices as reactive containers; the wrapper
// for a given key is created once and reused until the key is overwritten.
func (m *ReactiveMap) Get(key string) any {
	m.node.track()
	v, ok := m.data[key]
	if !ok || m.shallow {
		return v
	}
	return m.wrapNested(key, v)
}

// Peek returns the value under key without subscribing.
func (m *ReactiveMap) Peek(key string) any {
	v, ok := m.data[key]
	if !ok || m.shallow {
		return v
	}
	return m.wrapNested(key, v)
}

func (m *ReactiveMap) wrapNested(key string, v any) any {
	if w, ok := m.wrapped[key]; ok {
		return w
	}
	w := wrapValue(v)
	if w == nil {
		return v
	}
	if m.wrapped == nil {
		m.wrapped = make(map[string]any)
	}
	m.wrapped[key] = w
	return w
}

// wrapValue returns a reactive container for v, or nil when v does not need
// wrapping. Values that are already signals pass through untouched.
func wrapValue(v any) any {
	if IsSignal(v) {
		return v
	}
	switch nested := v.(type) {
	case map[string]any:
		rm := newReactiveMap(nil, false)
		rm.data = nested
		return rm
	case []any:
		rl := newReactiveList(nil, false)
		rl.items = nested
		return rl
	default:
		return nil
	}
}

// Set stores v under key and notifies subscribers. Writes that leave the
// stored value equal are dropped; signals stored in the map compare by
// identity.
func (m *ReactiveMap) Set(key string, v any) {
	old, existed := m.data[key]
	if existed && anyEquals(old, v) {
		return
	}
	m.data[key] = v
	delete(m.wrapped, key)
	m.node.trigger(Change{Key: key, Old: old, New: v})
}

// Delete removes key and notifies subscribers. Deleting an absent key is a
// no-op.
func (m *ReactiveMap) Delete(key string) {
	old, existed := m.data[key]
	if !existed {
		return
	}
	delete(m.data, key)
	delete(m.wrapped, key)
	m.node.trigger(Change{Key: key, Old: old})
}

// Clear removes every entry inside a single batch. Each removed key emits
// its own change so key filters still see what went away.
func (m *ReactiveMap) Clear() {
	Batch(func() {
		for k := range m.Raw() {
			m.Delete(k)
		}
	})
}

// Has reports whether key is present, subscribing the running watcher.
func (m *ReactiveMap) Has(key string) bool {
	m.node.track()
	_, ok := m.data[key]
	return ok
}

// Len returns the number of entries, subscribing the running watcher.
func (m *ReactiveMap) Len() int {
	m.node.track()
	return len(m.data)
}

// Keys returns the keys in sorted order, subscribing the running watcher.
func (m *ReactiveMap) Keys() []string {
	m.node.track()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls fn for every entry until fn returns false, subscribing the
// running watcher. Iteration order follows Keys.
func (m *ReactiveMap) Range(fn func(key string, value any) bool) {
	for _, k := range m.Keys() {
		v := m.data[k]
		if !m.shallow {
			v = m.wrapNested(k, v)
		}
		if !fn(k, v) {
			return
		}
	}
}

// Raw returns an untracked copy of the underlying plain values, without
// reactive wrappers.
func (m *ReactiveMap) Raw() map[string]any {
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// Replace swaps the whole contents for next inside a single batch, emitting
// per-key changes for removed, added, and updated entries.
func (m *ReactiveMap) Replace(next map[string]any) {
	Batch(func() {
		for k := range m.Raw() {
			if _, keep := next[k]; !keep {
				m.Delete(k)
			}
		}
		for k, v := range next {
			m.Set(k, v)
		}
	})
}

// Readonly returns a read-only view of this map. Reads delegate (and still
// subscribe); writes through the view are reported and ignored.
func (m *ReactiveMap) Readonly() *ReadonlyMap {
	return &ReadonlyMap{source: m}
}

// ReadonlyMap is a write-protected view over a ReactiveMap. Nested
// containers read through the view are wrapped read-only as well.
type ReadonlyMap struct {
	source *ReactiveMap
}

func (r *ReadonlyMap) signalID() uint64 { return r.source.node.id }

// Get returns the value under key, subscribing the running watcher.
func (r *ReadonlyMap) Get(key string) any {
	v := r.source.Get(key)
	if nested, ok := v.(*ReactiveMap); ok {
		return nested.Readonly()
	}
	return v
}

// Has reports whether key is present.
func (r *ReadonlyMap) Has(key string) bool { return r.source.Has(key) }

// Len returns the number of entries.
func (r *ReadonlyMap) Len() int { return r.source.Len() }

// Keys returns the keys in sorted order.
func (r *ReadonlyMap) Keys() []string { return r.source.Keys() }

// Raw returns an untracked copy of the underlying plain values.
func (r *ReadonlyMap) Raw() map[string]any { return r.source.Raw() }

// Set is rejected: the view is read-only.
func (r *ReadonlyMap) Set(key string, _ any) {
	slog.Warn("strand: write to readonly map ignored", "key", key)
}

// Delete is rejected: the view is read-only.
func (r *ReadonlyMap) Delete(key string) {
	slog.Warn("strand: delete on readonly map ignored", "key", key)
}

// ReactiveList is a reactive ordered container. Element writes emit a
// Change keyed by index; structural changes (append, insert, remove) emit a
// Change with a nil key carrying the old and new lengths.
type ReactiveList struct {
	node    signalNode
	items   []any
	wrapped map[int]any
	shallow bool
}

// NewReactiveList creates a deep reactive list seeded from initial. The
// backing slice is copied.
func NewReactiveList(initial []any) *ReactiveList {
	return newReactiveList(initial, false)
}

// NewShallowList creates a reactive list that does not wrap nested values.
func NewShallowList(initial []any) *ReactiveList {
	return newReactiveList(initial, true)
}

func newReactiveList(initial []any, shallow bool) *ReactiveList {
	items := make([]any, len(initial))
	copy(items, initial)
	return &ReactiveList{
		node:    signalNode{id: nextID()},
		items:   items,
		shallow: shallow,
	}
}

func (l *ReactiveList) signalID() uint64 { return l.node.id }

// Get returns the element at index i, subscribing the running watcher.
// Out-of-range reads return nil rather than panicking, mirroring map reads
// of absent keys.
func (l *ReactiveList) Get(i int) any {
	l.node.track()
	if i < 0 || i >= len(l.items) {
		return nil
	}
	v := l.items[i]
	if l.shallow {
		return v
	}
	if w, ok := l.wrapped[i]; ok {
		return w
	}
	w := wrapValue(v)
	if w == nil {
		return v
	}
	if l.wrapped == nil {
		l.wrapped = make(map[int]any)
	}
	l.wrapped[i] = w
	return w
}

// Set replaces the element at index i. Out-of-range writes are reported and
// ignored; equal writes are dropped.
func (l *ReactiveList) Set(i int, v any) {
	if i < 0 || i >= len(l.items) {
		slog.Warn("strand: list write out of range ignored", "index", i, "len", len(l.items))
		return
	}
	old := l.items[i]
	if anyEquals(old, v) {
		return
	}
	l.items[i] = v
	delete(l.wrapped, i)
	l.node.trigger(Change{Key: i, Old: old, New: v})
}

// Append adds values to the end of the list.
func (l *ReactiveList) Append(values ...any) {
	if len(values) == 0 {
		return
	}
	oldLen := len(l.items)
	l.items = append(l.items, values...)
	l.node.trigger(Change{Old: oldLen, New: len(l.items)})
}

// Insert places v at index i, shifting later elements right. i may equal
// Len to append.
func (l *ReactiveList) Insert(i int, v any) {
	if i < 0 || i > len(l.items) {
		slog.Warn("strand: list insert out of range ignored", "index", i, "len", len(l.items))
		return
	}
	oldLen := len(l.items)
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	l.invalidateFrom(i)
	l.node.trigger(Change{Old: oldLen, New: len(l.items)})
}

// Remove deletes the element at index i, shifting later elements left, and
// returns the removed value.
func (l *ReactiveList) Remove(i int) any {
	if i < 0 || i >= len(l.items) {
		slog.Warn("strand: list remove out of range ignored", "index", i, "len", len(l.items))
		return nil
	}
	oldLen := len(l.items)
	removed := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.invalidateFrom(i)
	l.node.trigger(Change{Old: oldLen, New: len(l.items)})
	return removed
}

// invalidateFrom drops cached wrappers at or after index i; a shift moved
// the values they were wrapping.
func (l *ReactiveList) invalidateFrom(i int) {
	for idx := range l.wrapped {
		if idx >= i {
			delete(l.wrapped, idx)
		}
	}
}

// Len returns the number of elements, subscribing the running watcher.
func (l *ReactiveList) Len() int {
	l.node.track()
	return len(l.items)
}

// Raw returns an untracked copy of the underlying plain values.
func (l *ReactiveList) Raw() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}
