package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"
)

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"toJSON": toJSON,
	"join":   strings.Join,
	"lower":  strings.ToLower,
	"upper":  strings.ToUpper,
}

func toJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Parse parses text as a template named name. Missing keys are errors.
func Parse(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(Funcs).Option("missingkey=error").Parse(text)
}

// Execute renders text with data.
func Execute(name, text string, data any) (string, error) {
	t, err := Parse(name, text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
