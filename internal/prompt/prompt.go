// Package prompt asks questions. Terminal talks to a user; Canned answers
// from a prepared map.
package prompt

import (
	"context"
	"errors"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/config"
)

// ErrUnavailable is returned when an answer is needed but nobody can give
// one: stdin is closed, or a canned run has no answer for the question.
var ErrUnavailable = errors.New("prompt unavailable")

// Prompter poses one question. def is the suggested answer (possibly
// absent). Reject reports why the previous answer was refused; the
// pipeline then asks again.
type Prompter interface {
	Ask(ctx context.Context, q *config.Question, def answers.Value) (answers.Value, error)
	Reject(q *config.Question, reason string)
}
