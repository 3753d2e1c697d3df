package prompt

import (
	"context"
	"fmt"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/config"
)

// Canned answers from a prepared map. Questions missing from the map take
// their default, or fail with ErrUnavailable when Strict is set. A rejected
// answer cannot be corrected, so asking the same question again fails.
type Canned struct {
	Answers map[answers.Key]answers.Value
	Strict  bool

	rejected map[answers.Key]string
	asked    []answers.Key
}

func NewCanned(m map[answers.Key]answers.Value) *Canned {
	return &Canned{Answers: m}
}

func (c *Canned) Ask(ctx context.Context, q *config.Question, def answers.Value) (answers.Value, error) {
	if err := ctx.Err(); err != nil {
		return answers.Value{}, err
	}
	if reason, ok := c.rejected[q.ID]; ok {
		return answers.Value{}, fmt.Errorf("%s: %s: %w", q.ID, reason, ErrUnavailable)
	}
	c.asked = append(c.asked, q.ID)
	if v, ok := c.Answers[q.ID]; ok {
		return v, nil
	}
	if c.Strict {
		return answers.Value{}, fmt.Errorf("no answer for %q: %w", q.ID, ErrUnavailable)
	}
	if def.IsAbsent() {
		return Zero(q), nil
	}
	return def, nil
}

func (c *Canned) Reject(q *config.Question, reason string) {
	if c.rejected == nil {
		c.rejected = make(map[answers.Key]string)
	}
	c.rejected[q.ID] = reason
}

// Asked returns the questions posed so far, in order.
func (c *Canned) Asked() []answers.Key {
	return append([]answers.Key(nil), c.asked...)
}

// Zero is the answer an empty response produces for q.
func Zero(q *config.Question) answers.Value {
	switch q.Kind {
	case config.KindConfirm:
		return answers.Bool(false)
	case config.KindCheckbox:
		return answers.List()
	case config.KindList:
		return firstEnabled(q)
	default:
		return answers.String("")
	}
}
