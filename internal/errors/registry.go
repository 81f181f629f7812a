package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Sync Errors (Q001-Q019)
	// ============================================

	"Q001": {
		Category:   CategorySync,
		Message:    "Object was never synced",
		Detail:     "Unsync was called for an object that has no binding on this location.",
		Suggestion: "call Sync before Unsync, and Unsync each object only once",
	},
	"Q005": {
		Category: CategorySync,
		Message:  "Watcher not found",
		Detail:   "The watch handle does not belong to this object or was already released.",
	},

	// ============================================
	// Validation Errors (Q020-Q039)
	// ============================================

	"Q020": {
		Category: CategoryValidation,
		Message:  "Invalid field value",
		Detail:   "The value does not satisfy the field's constraint or cannot be converted to the field's kind.",
	},
	"Q021": {
		Category:   CategoryValidation,
		Message:    "Field is read-only",
		Detail:     "Read-only location fields (href, hostname, protocol, port) are only updated from browser snapshots.",
		Suggestion: "set pathname, search or hash instead",
	},
	"Q022": {
		Category: CategoryValidation,
		Message:  "Unknown field",
		Detail:   "The object does not declare a field with this name.",
	},

	// ============================================
	// CLI Errors (Q040-Q059)
	// ============================================

	"Q040": {
		Category:   CategoryCLI,
		Message:    "Malformed key=value argument",
		Detail:     "Query arguments must be written as key=value.",
		Suggestion: "quote arguments containing spaces, e.g. 'q=hello world'",
	},
	"Q041": {
		Category:   CategoryCLI,
		Message:    "Invalid field declaration",
		Detail:     "Fields are declared as name[:kind]=default with a default that parses as the kind.",
		Suggestion: "use one of the kinds string, int, float, bool, strings",
	},
	CodeCommandFailed: {
		Category: CategoryCLI,
		Message:  "Command failed",
	},
}

// CodeCommandFailed is used for CLI errors that carry no code of their own.
const CodeCommandFailed = "Q059"

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
