package pipeline

import (
	"fmt"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/naming"
)

// Default computes the suggested answer for q from its literal default, a
// derivation of an earlier answer, or the checked choices of a checkbox.
func Default(q *config.Question, r *answers.Store) (answers.Value, error) {
	if d := q.DefaultFrom; d != nil {
		s := r.String(d.From)
		if d.Transform != "" {
			fn, ok := naming.Lookup(d.Transform)
			if !ok {
				return answers.Value{}, fmt.Errorf("question %q: unknown transform %q", q.ID, d.Transform)
			}
			s = fn(s)
		}
		if s == "" {
			return answers.Value{}, nil
		}
		if d.Format != "" {
			s = fmt.Sprintf(d.Format, s)
		}
		return answers.String(s), nil
	}
	if q.Default != nil {
		v, err := answers.FromAny(q.Default)
		if err != nil {
			return answers.Value{}, fmt.Errorf("question %q: default: %w", q.ID, err)
		}
		return config.Coerce(q, v)
	}
	if q.Kind == config.KindCheckbox {
		var checked []string
		for _, c := range q.Choices {
			if c.Checked && c.Disabled == "" {
				checked = append(checked, c.Value)
			}
		}
		if len(checked) > 0 {
			return answers.List(checked...), nil
		}
	}
	return answers.Value{}, nil
}
