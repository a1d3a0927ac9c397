package errors

// Registered error codes.
const (
	CodeParse        = "E001"
	CodeMissingType  = "E002"
	CodeDuplicateID  = "E003"
	CodeInvalidField = "E004"

	CodeContainerNotFound = "E010"
	CodeCreateFailed      = "E011"

	CodeMissingTarget = "E020"
	CodeInvalidPatch  = "E021"
	CodeImmutable     = "E022"

	CodeThemeInvalid  = "E030"
	CodeThemeNotFound = "E031"

	CodeStore = "E040"

	CodeSourceFetch       = "E050"
	CodeSourceUnsupported = "E051"

	CodeConfigParse    = "E120"
	CodeConfigInvalid  = "E122"
	CodeConfigNotFound = "E141"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Parse Errors (E001-E009)
	// ============================================

	CodeParse: {
		Category: CategoryParse,
		Message:  "Invalid JSON document",
	},
	CodeMissingType: {
		Category: CategoryParse,
		Message:  "Node is missing its type",
		Detail:   "Every node object needs a string \"type\" field such as \"View\" or \"Label\".",
	},
	CodeDuplicateID: {
		Category: CategoryParse,
		Message:  "Duplicate node id",
	},
	CodeInvalidField: {
		Category: CategoryParse,
		Message:  "Invalid field value",
	},

	// ============================================
	// Reconcile Errors (E010-E019)
	// ============================================

	CodeContainerNotFound: {
		Category: CategoryReconcile,
		Message:  "Container not found",
		Detail:   "The render target must be a live element.",
	},
	CodeCreateFailed: {
		Category: CategoryReconcile,
		Message:  "Element creation failed",
	},

	// ============================================
	// Patch Errors (E020-E029)
	// ============================================

	CodeMissingTarget: {
		Category: CategoryPatch,
		Message:  "Patch target not found",
	},
	CodeInvalidPatch: {
		Category: CategoryPatch,
		Message:  "Invalid patch",
	},
	CodeImmutable: {
		Category: CategoryPatch,
		Message:  "Property cannot be patched",
	},

	// ============================================
	// Theme Errors (E030-E039)
	// ============================================

	CodeThemeInvalid: {
		Category: CategoryTheme,
		Message:  "Invalid theme document",
	},
	CodeThemeNotFound: {
		Category: CategoryTheme,
		Message:  "Theme not found",
	},

	// ============================================
	// Store Errors (E040-E049)
	// ============================================

	CodeStore: {
		Category: CategoryStore,
		Message:  "Preference store failure",
	},

	// ============================================
	// Source Errors (E050-E059)
	// ============================================

	CodeSourceFetch: {
		Category: CategorySource,
		Message:  "Failed to fetch document",
	},
	CodeSourceUnsupported: {
		Category: CategorySource,
		Message:  "Unsupported document location",
		Detail:   "Use a file path, an http(s) URL or an s3://bucket/key URI.",
	},

	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Configuration value out of range",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
