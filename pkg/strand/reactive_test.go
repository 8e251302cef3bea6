package strand

import (
	"testing"
)

func TestReactiveMapBasics(t *testing.T) {
	m := NewReactiveMap(map[string]any{"name": "ada", "age": 36})

	if got := m.Get("name"); got != "ada" {
		t.Errorf(`Get("name") = %v, want "ada"`, got)
	}
	if !m.Has("age") {
		t.Error(`Has("age") = false`)
	}
	if got := m.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}

	m.Set("age", 37)
	if got := m.Get("age"); got != 37 {
		t.Errorf(`Get("age") = %v, want 37`, got)
	}

	m.Delete("name")
	if m.Has("name") {
		t.Error("key survived Delete")
	}

	keys := m.Keys()
	if len(keys) != 1 || keys[0] != "age" {
		t.Errorf("Keys() = %v, want [age]", keys)
	}
}

func TestReactiveMapChangeCarriesKey(t *testing.T) {
	m := NewReactiveMap(map[string]any{"a": 1})
	var changes []Change
	Watch(func() any { return m.Get("a") }, nil,
		WithFlush(FlushSync), Detached(),
		WithFilter(func(ch Change) bool {
			changes = append(changes, ch)
			return false
		}))

	m.Set("a", 2)
	m.Delete("a")

	if len(changes) != 2 {
		t.Fatalf("observed %d changes, want 2", len(changes))
	}
	if changes[0].Key != "a" || changes[0].Old != 1 || changes[0].New != 2 {
		t.Errorf("set change = %+v", changes[0])
	}
	if changes[1].Key != "a" || changes[1].Old != 2 || changes[1].New != nil {
		t.Errorf("delete change = %+v", changes[1])
	}
}

func TestReactiveMapEqualWriteIsDropped(t *testing.T) {
	m := NewReactiveMap(map[string]any{"n": 1})
	runs := 0
	Effect(func() {
		m.Get("n")
		runs++
	}, WithFlush(FlushSync), Detached())

	m.Set("n", 1)
	if runs != 1 {
		t.Errorf("runs after equal write = %d, want 1", runs)
	}
}

func TestReactiveMapWrapsNestedValues(t *testing.T) {
	m := NewReactiveMap(map[string]any{
		"profile": map[string]any{"city": "london"},
		"tags":    []any{"x", "y"},
	})

	profile, ok := m.Get("profile").(*ReactiveMap)
	if !ok {
		t.Fatalf("Get(profile) = %T, want *ReactiveMap", m.Get("profile"))
	}
	if got := profile.Get("city"); got != "london" {
		t.Errorf(`nested Get("city") = %v`, got)
	}

	tags, ok := m.Get("tags").(*ReactiveList)
	if !ok {
		t.Fatalf("Get(tags) = %T, want *ReactiveList", m.Get("tags"))
	}
	if got := tags.Len(); got != 2 {
		t.Errorf("tags.Len() = %d, want 2", got)
	}
}

func TestReactiveMapNestedWrapperIsStable(t *testing.T) {
	m := NewReactiveMap(map[string]any{
		"profile": map[string]any{"city": "london"},
	})

	first := m.Get("profile")
	second := m.Get("profile")
	if first != second {
		t.Error("repeated reads returned distinct wrappers")
	}

	// Overwriting the key invalidates the cached wrapper.
	m.Set("profile", map[string]any{"city": "paris"})
	third := m.Get("profile")
	if third == first {
		t.Error("wrapper survived overwrite of its key")
	}
}

func TestShallowMapDoesNotWrap(t *testing.T) {
	m := NewShallowMap(map[string]any{
		"profile": map[string]any{"city": "london"},
	})
	if _, wrapped := m.Get("profile").(*ReactiveMap); wrapped {
		t.Error("shallow map wrapped a nested value")
	}
}

func TestNestedWriteNotifiesNestedReaders(t *testing.T) {
	m := NewReactiveMap(map[string]any{
		"profile": map[string]any{"city": "london"},
	})

	var seen []any
	Effect(func() {
		profile := m.Get("profile").(*ReactiveMap)
		seen = append(seen, profile.Get("city"))
	}, WithFlush(FlushSync), Detached())

	m.Get("profile").(*ReactiveMap).Set("city", "paris")

	if len(seen) != 2 || seen[1] != "paris" {
		t.Errorf("seen = %v, want [london paris]", seen)
	}
}

func TestReadonlyMapRejectsWrites(t *testing.T) {
	m := NewReactiveMap(map[string]any{"a": 1})
	ro := m.Readonly()

	ro.Set("a", 2)
	ro.Delete("a")
	if got := ro.Get("a"); got != 1 {
		t.Errorf("readonly view mutated: %v", got)
	}

	// Reads through the view still subscribe.
	runs := 0
	Effect(func() {
		ro.Get("a")
		runs++
	}, WithFlush(FlushSync), Detached())
	m.Set("a", 5)
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestReadonlyMapWrapsNestedReadonly(t *testing.T) {
	m := NewReactiveMap(map[string]any{
		"profile": map[string]any{"city": "london"},
	})
	ro := m.Readonly()
	nested, ok := ro.Get("profile").(*ReadonlyMap)
	if !ok {
		t.Fatalf("nested = %T, want *ReadonlyMap", ro.Get("profile"))
	}
	nested.Set("city", "paris")
	if got := nested.Get("city"); got != "london" {
		t.Errorf("nested readonly mutated: %v", got)
	}
}

func TestReactiveMapStoresSignalByIdentity(t *testing.T) {
	inner := NewRef(1)
	m := NewReactiveMap(nil)
	m.Set("ref", inner)

	got := m.Get("ref")
	if got != Signal(inner) {
		t.Errorf("stored signal not returned by identity: %T", got)
	}

	runs := 0
	Effect(func() {
		m.Get("ref")
		runs++
	}, WithFlush(FlushSync), Detached())

	// Same signal written again: identity-equal, no notification.
	m.Set("ref", inner)
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestReactiveMapReplaceEmitsPerKeyChanges(t *testing.T) {
	m := NewReactiveMap(map[string]any{"a": 1, "b": 2})
	runs := 0
	Effect(func() {
		m.Get("a")
		m.Get("b")
		m.Get("c")
		runs++
	}, WithFlush(FlushSync), Detached())

	m.Replace(map[string]any{"a": 1, "c": 3})

	// One batched run despite delete(b) + set(c).
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if m.Has("b") {
		t.Error("b survived Replace")
	}
	if got := m.Get("c"); got != 3 {
		t.Errorf("c = %v, want 3", got)
	}
}

func TestReactiveListBasics(t *testing.T) {
	l := NewReactiveList([]any{"a", "b", "c"})

	if got := l.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	if got := l.Get(1); got != "b" {
		t.Errorf("Get(1) = %v, want b", got)
	}
	if got := l.Get(9); got != nil {
		t.Errorf("out-of-range Get = %v, want nil", got)
	}

	l.Set(1, "B")
	if got := l.Get(1); got != "B" {
		t.Errorf("Get(1) after Set = %v, want B", got)
	}

	l.Append("d")
	l.Insert(0, "z")
	if got := l.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	if got := l.Get(0); got != "z" {
		t.Errorf("Get(0) = %v, want z", got)
	}

	if removed := l.Remove(0); removed != "z" {
		t.Errorf("Remove(0) = %v, want z", removed)
	}
	if got := l.Get(0); got != "a" {
		t.Errorf("Get(0) after Remove = %v, want a", got)
	}
}

func TestReactiveListNotifies(t *testing.T) {
	l := NewReactiveList([]any{1, 2})
	runs := 0
	Effect(func() {
		l.Len()
		runs++
	}, WithFlush(FlushSync), Detached())

	l.Append(3)
	if runs != 2 {
		t.Errorf("runs after Append = %d, want 2", runs)
	}
	l.Set(0, 1) // equal write
	if runs != 2 {
		t.Errorf("runs after equal element write = %d, want 2", runs)
	}
	l.Set(0, 10)
	if runs != 3 {
		t.Errorf("runs after element write = %d, want 3", runs)
	}
}

func TestReactiveListWrapperInvalidatedByShift(t *testing.T) {
	l := NewReactiveList([]any{
		map[string]any{"id": 1},
		map[string]any{"id": 2},
	})

	first := l.Get(0).(*ReactiveMap)
	if got := first.Get("id"); got != 1 {
		t.Fatalf("id = %v, want 1", got)
	}

	l.Remove(0)
	next := l.Get(0).(*ReactiveMap)
	if got := next.Get("id"); got != 2 {
		t.Errorf("id after shift = %v, want 2 (stale wrapper reused)", got)
	}
}
