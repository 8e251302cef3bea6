package strand

// RunState is the lifecycle state shared by Watcher and Scope.
//
// active ⇄ paused are reversible; disposed is terminal.
type RunState uint8

const (
	StateActive RunState = iota
	StatePaused
	StateDisposed
)

// String returns a human-readable name for the state.
func (s RunState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
