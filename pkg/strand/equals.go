package strand

import "reflect"

// defaultEquals provides type-appropriate equality checking.
// Uses == for comparable scalar types and reflect.DeepEqual for others.
// The two-value assertions matter when T is any: the dynamic types of a
// and b may differ, and a mismatch means not-equal rather than a panic.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int8:
		bv, ok := any(b).(int8)
		return ok && av == bv
	case int16:
		bv, ok := any(b).(int16)
		return ok && av == bv
	case int32:
		bv, ok := any(b).(int32)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case uint:
		bv, ok := any(b).(uint)
		return ok && av == bv
	case uint8:
		bv, ok := any(b).(uint8)
		return ok && av == bv
	case uint16:
		bv, ok := any(b).(uint16)
		return ok && av == bv
	case uint32:
		bv, ok := any(b).(uint32)
		return ok && av == bv
	case uint64:
		bv, ok := any(b).(uint64)
		return ok && av == bv
	case float32:
		bv, ok := any(b).(float32)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	case nil:
		return any(b) == nil
	default:
		// Fall back to reflect.DeepEqual for slices, maps, structs, etc.
		return reflect.DeepEqual(a, b)
	}
}

// anyEquals compares two dynamically-typed container values. Signals stored
// in a container compare by identity, never structurally.
func anyEquals(a, b any) bool {
	if sa, ok := a.(Signal); ok {
		sb, ok := b.(Signal)
		return ok && sa == sb
	}
	return defaultEquals(a, b)
}
