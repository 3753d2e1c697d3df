// Package naming derives identifiers from free-text names.
package naming

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9]`)
	nonLetterRe = regexp.MustCompile(`[^A-Za-z ]`)
)

// Slug lowercases s and replaces every character outside [a-z0-9] with a dash.
// "My Test App" becomes "my-test-app".
func Slug(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "-")
}

// UpperCamel drops everything but letters and spaces, then title-cases and
// joins the words. "My Test App!" becomes "MyTestApp".
func UpperCamel(s string) string {
	words := strings.Fields(nonLetterRe.ReplaceAllString(s, ""))
	title := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// LowerCamel is UpperCamel with the first letter lowercased.
func LowerCamel(s string) string {
	u := UpperCamel(s)
	if u == "" {
		return u
	}
	return strings.ToLower(u[:1]) + u[1:]
}

// Compact is UpperCamel lowercased. "My Test App" becomes "mytestapp".
func Compact(s string) string {
	return cases.Lower(language.English).String(UpperCamel(s))
}

// PackagePath turns a dotted Java package name into a slash-separated path.
func PackagePath(s string) string {
	return strings.ReplaceAll(s, ".", "/")
}

// Transform is a named string derivation.
type Transform func(string) string

var transforms = map[string]Transform{
	"":             func(s string) string { return s },
	"slug":         Slug,
	"upper-camel":  UpperCamel,
	"lower-camel":  LowerCamel,
	"compact":      Compact,
	"package-path": PackagePath,
}

// Lookup returns the transform registered under name. The empty name is
// the identity.
func Lookup(name string) (Transform, bool) {
	t, ok := transforms[name]
	return t, ok
}
