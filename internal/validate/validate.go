// Package validate holds the input validators that question definitions
// refer to by name.
package validate

import (
	"regexp"
	"strings"

	"github.com/jorge-barreto/stgen/internal/answers"
)

const (
	MissingAppID  = "Missing app identifier"
	InvalidAppID  = "Invalid app identifier"
	RequiredField = "This field is required."
)

var appIDRe = regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9-]*$`)

// Func validates a raw answer. It returns "" to accept the input, or a
// human-readable rejection reason.
type Func func(v answers.Value) string

// AppID accepts identifiers made of letters, digits and dashes that do not
// start with a dash.
func AppID(id string) string {
	if id == "" {
		return MissingAppID
	}
	if !appIDRe.MatchString(id) {
		return InvalidAppID
	}
	return ""
}

// NotEmpty reports whether name has at least one character.
func NotEmpty(name string) bool {
	return len(name) > 0
}

var registry = map[string]Func{
	"app-id": func(v answers.Value) string {
		return AppID(v.Str())
	},
	"not-empty": func(v answers.Value) string {
		if !NotEmpty(v.Str()) {
			return RequiredField
		}
		return ""
	},
	"required": func(v answers.Value) string {
		if strings.TrimSpace(v.Str()) == "" {
			return RequiredField
		}
		return ""
	},
}

// Lookup returns the validator registered under name.
func Lookup(name string) (Func, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns the registered validator names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
