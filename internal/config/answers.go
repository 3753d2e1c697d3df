package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/stgen/internal/answers"
)

// LoadAnswers reads a YAML mapping of question id to answer and checks each
// entry against the question's kind.
func LoadAnswers(path string, g *Generator) (map[answers.Key]answers.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAnswers(data, g)
}

// ParseAnswers is LoadAnswers on an in-memory document.
func ParseAnswers(data []byte, g *Generator) (map[answers.Key]answers.Value, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("answers: %w", err)
	}
	out := make(map[answers.Key]answers.Value, len(raw))
	for k, rv := range raw {
		q := g.Question(answers.Key(k))
		if q == nil {
			return nil, fmt.Errorf("answers: unknown question %q", k)
		}
		v, err := answers.FromAny(rv)
		if err != nil {
			return nil, fmt.Errorf("answers: %q: %w", k, err)
		}
		if v.IsAbsent() {
			continue
		}
		v, err = Coerce(q, v)
		if err != nil {
			return nil, fmt.Errorf("answers: %w", err)
		}
		out[q.ID] = v
	}
	return out, nil
}

// Coerce converts v to the value kind q produces and rejects values the
// question could not have produced.
func Coerce(q *Question, v answers.Value) (answers.Value, error) {
	switch q.Kind {
	case KindConfirm:
		if v.Kind() == answers.KindBool {
			return v, nil
		}
		switch v.Str() {
		case "true", "yes", "y":
			return answers.Bool(true), nil
		case "false", "no", "n":
			return answers.Bool(false), nil
		}
		return answers.Value{}, fmt.Errorf("%q: expected a boolean, got %q", q.ID, v.Str())
	case KindCheckbox:
		items := v.List()
		if v.Kind() == answers.KindList && len(items) == 0 {
			return answers.List(), nil
		}
		if v.Kind() == answers.KindBool {
			return answers.Value{}, fmt.Errorf("%q: expected a list, got %q", q.ID, v.Str())
		}
		for _, it := range items {
			if err := checkChoice(q, it); err != nil {
				return answers.Value{}, err
			}
		}
		return answers.List(items...), nil
	case KindList:
		if v.Kind() != answers.KindString {
			return answers.Value{}, fmt.Errorf("%q: expected a single value, got %s", q.ID, v.Kind())
		}
		if err := checkChoice(q, v.Str()); err != nil {
			return answers.Value{}, err
		}
		return v, nil
	default:
		if v.Kind() == answers.KindList {
			return answers.Value{}, fmt.Errorf("%q: expected text, got a list", q.ID)
		}
		return answers.String(v.Str()), nil
	}
}

func checkChoice(q *Question, value string) error {
	c, ok := q.Choice(value)
	if !ok {
		return fmt.Errorf("%q: %q is not one of the choices", q.ID, value)
	}
	if c.Disabled != "" {
		return fmt.Errorf("%q: %q is not available (%s)", q.ID, value, c.Disabled)
	}
	return nil
}
