package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Runtime Errors (E001-E099)
	// ============================================

	"E001": {
		Category:   CategoryRuntime,
		Message:    "Hook called outside component evaluation",
		Detail:     "State and effect hooks are only valid while the engine is evaluating the component that received them. The hooks value was used after the component returned.",
		Suggestion: "Call hooks in the component body; call setters, not hooks, from callbacks.",
	},
	"E002": {
		Category:   CategoryRuntime,
		Message:    "Hook order changed",
		Detail:     "A component called a different number of hooks than on its previous render. Hooks are matched by call position.",
		Suggestion: "Do not call hooks inside conditions or loops.",
	},
	"E003": {
		Category:   CategoryRuntime,
		Message:    "Nothing to render",
		Detail:     "The engine was asked to flush before any element was scheduled with Render.",
		Suggestion: "Call Render(element) first.",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Render turn panicked",
		Detail:   "A component or effect panicked during a scheduling turn. The in-flight render was abandoned.",
	},

	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	"E120": {
		Category:   CategoryConfig,
		Message:    "Cannot read configuration",
		Detail:     "The configuration file could not be read or written.",
		Suggestion: "Check the path passed with --config.",
	},
	"E121": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration syntax",
		Detail:     "The configuration file is not valid JSON or YAML.",
		Suggestion: "Validate the file with a JSON or YAML linter.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// CLI Errors (E140-E149)
	// ============================================

	"E140": {
		Category:   CategoryCLI,
		Message:    "Unknown demo application",
		Suggestion: "Run with --app counter or --app todo.",
	},
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
