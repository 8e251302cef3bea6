// Package errors provides structured, actionable error messages for Strand.
//
// Each fatal error raised by the runtime carries a stable code (e.g., "E201")
// that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
// Errors are organized into categories:
//   - runtime: Reactivity errors (double-wrapped signals, update cycles)
//   - lifecycle: Node/widget lifecycle misuse
//   - driver: Driver registry configuration errors
//   - config: Runtime configuration errors
//
// # Usage
//
//	err := errors.New("E201").
//	    WithDetailf("no driver registered for kind %q", kind).
//	    WithSuggestion("register a driver with Registry.Register, or set a default driver")
//
//	panic(err)
package errors
