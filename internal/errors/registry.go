package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Value is already a signal",
		Detail:   "Refs and reactive containers cannot wrap a value that is itself a signal. Pass the raw value instead, or reuse the existing signal.",
		DocURL:   "https://strand-ui.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Reactive update cycle exceeded depth limit",
		Detail:   "A signal write inside a watcher re-triggered the same watcher past the maximum re-entrancy depth. This almost always indicates a write to a signal from within its own notification path.",
		DocURL:   "https://strand-ui.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Unhandled watcher error",
		Detail:   "A watcher computation failed and no enclosing scope registered an error handler. Register one with Scope.OnError.",
		DocURL:   "https://strand-ui.dev/docs/errors/E003",
	},

	// ============================================
	// Lifecycle Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryLifecycle,
		Message:  "Lifecycle hook called outside widget setup",
		Detail:   "OnMounted, OnBeforeUnmount, OnActivated and OnDeactivated may only be called while a widget instance is being set up.",
		DocURL:   "https://strand-ui.dev/docs/errors/E101",
	},

	// ============================================
	// Driver Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryDriver,
		Message:  "No driver registered for node kind",
		Detail:   "Every node kind encountered by the runtime must have a registered driver (or a default driver). This usually means the host adapter package was not loaded.",
		DocURL:   "https://strand-ui.dev/docs/errors/E201",
	},
}

// Register adds a template to the registry. Intended for host adapter
// packages that define their own error codes.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
