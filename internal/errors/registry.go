package errors

import "sort"

// Template defines a registered error.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Configuration (E100-E119)
	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The configuration file given on the command line does not exist or cannot be read.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value has the wrong type or is out of range.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Malformed configuration file",
		Detail:   "The configuration file is not valid YAML.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unknown configuration field",
		Detail:   "The configuration file contains a field that reflow does not recognize. Check the spelling.",
	},

	// Tree files (E120-E139)
	"E120": {
		Category: CategoryTree,
		Message:  "Tree file not found",
		Detail:   "The tree file given on the command line does not exist or cannot be read.",
	},
	"E121": {
		Category: CategoryTree,
		Message:  "Malformed tree file",
		Detail:   "The tree file is not valid YAML.",
	},
	"E122": {
		Category: CategoryTree,
		Message:  "Invalid node",
		Detail:   "A node must be a string (text), null, or a mapping with a \"tag\" field (element).",
	},
	"E123": {
		Category: CategoryTree,
		Message:  "Invalid attribute value",
		Detail:   "Attribute values must be strings or booleans.",
	},

	// Command line (E140-E159)
	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Connection failed",
		Detail:   "Could not open a live session with the server.",
	},

	// Protocol (E160-E179)
	"E160": {
		Category: CategoryProtocol,
		Message:  "Session ended with an error",
		Detail:   "The server closed the live session after reporting an error.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
