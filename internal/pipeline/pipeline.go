// Package pipeline asks a generator's questions in order and records the
// answers.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/filter"
	"github.com/jorge-barreto/stgen/internal/logger"
	"github.com/jorge-barreto/stgen/internal/prompt"
	"github.com/jorge-barreto/stgen/internal/ux"
	"github.com/jorge-barreto/stgen/internal/validate"
)

// Runner drives the question list against a Prompter.
type Runner struct {
	Generator *config.Generator
	Store     *answers.Store
	Prompter  prompt.Prompter
	// Overrides are preset answers, typically from an answers file.
	Overrides map[answers.Key]answers.Value
	// Options are raw command-line option values keyed by option name.
	Options map[string]string
	Log     *logger.Logger
}

// Run asks every applicable question and freezes the store. Presets are
// applied first; a preset that fails its validator is dropped and the
// question is asked instead.
func (r *Runner) Run(ctx context.Context) error {
	if r.Log == nil {
		r.Log = logger.Nop()
	}
	if err := r.applyPresets(); err != nil {
		return err
	}

	for i := range r.Generator.Questions {
		q := &r.Generator.Questions[i]

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if r.Store.Preset(q.ID) {
			r.Log.Debug("preset answer", string(q.ID), r.Store.Get(q.ID).String())
			continue
		}

		if !filter.Evaluate(q.When, r.Store) {
			if err := r.fallback(q); err != nil {
				return err
			}
			continue
		}

		v, err := r.ask(ctx, q)
		if err != nil {
			return err
		}
		if err := r.Store.Set(q.ID, v); err != nil {
			return err
		}
		r.Log.Debug("answered", string(q.ID), v.String())
	}

	r.Store.Freeze()
	return nil
}

// ask repeats the question until the answer is accepted.
func (r *Runner) ask(ctx context.Context, q *config.Question) (answers.Value, error) {
	def, err := Default(q, r.Store)
	if err != nil {
		return answers.Value{}, err
	}
	if r.Prompter == nil {
		return answers.Value{}, fmt.Errorf("question %q: %w", q.ID, prompt.ErrUnavailable)
	}
	for {
		raw, err := r.Prompter.Ask(ctx, q, def)
		if err != nil {
			return answers.Value{}, fmt.Errorf("question %q: %w", q.ID, err)
		}
		if reason := check(q, raw); reason != "" {
			r.Log.Debug("answer rejected", "question", string(q.ID), "reason", reason)
			r.Prompter.Reject(q, reason)
			continue
		}
		return config.Coerce(q, raw)
	}
}

func (r *Runner) fallback(q *config.Question) error {
	if q.Fallback == nil {
		r.Log.Debug("skipped", "question", string(q.ID), "when", q.When.String())
		return nil
	}
	v, err := answers.FromAny(q.Fallback)
	if err != nil {
		return fmt.Errorf("question %q: fallback: %w", q.ID, err)
	}
	v, err = config.Coerce(q, v)
	if err != nil {
		return fmt.Errorf("question %q: fallback: %w", q.ID, err)
	}
	r.Log.Debug("fallback", string(q.ID), v.String())
	return r.Store.Set(q.ID, v)
}

func (r *Runner) applyPresets() error {
	keys := make([]answers.Key, 0, len(r.Overrides))
	for k := range r.Overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		q := r.Generator.Question(k)
		if q == nil {
			return fmt.Errorf("preset answer for unknown question %q", k)
		}
		r.preset(q, r.Overrides[k], "answers")
	}

	names := make([]string, 0, len(r.Options))
	for n := range r.Options {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, name := range names {
		raw := r.Options[name]
		if raw == "" {
			continue
		}
		q := r.Generator.QuestionByOption(name)
		if q == nil {
			return fmt.Errorf("unknown option %q", name)
		}
		opt := q.Option
		if len(opt.Values) > 0 && !slices.Contains(opt.Values, raw) {
			r.Log.Warn("ignoring option value", "option", name, "value", raw)
			ux.Warn(fmt.Sprintf("Ignoring --%s %s: expected one of %s", name, raw, strings.Join(opt.Values, ", ")))
			continue
		}
		r.preset(enabled(q), answers.String(opt.Prefix+raw), "--"+name)
	}
	return nil
}

func (r *Runner) preset(q *config.Question, v answers.Value, source string) {
	if reason := check(q, v); reason != "" {
		r.Log.Warn("ignoring preset answer", "question", string(q.ID), "source", source, "reason", reason)
		ux.Warn(fmt.Sprintf("Ignoring %s for %q: %s", source, q.ID, reason))
		return
	}
	v, _ = config.Coerce(q, v)
	// Override only fails on a frozen store, which Run never starts with.
	_ = r.Store.Override(q.ID, v)
}

// enabled returns a copy of q with every choice enabled. An option's
// values are listed explicitly and may name choices the prompt disables.
func enabled(q *config.Question) *config.Question {
	cp := *q
	cp.Choices = slices.Clone(q.Choices)
	for i := range cp.Choices {
		cp.Choices[i].Disabled = ""
	}
	return &cp
}

// check returns why v cannot answer q, or "".
func check(q *config.Question, v answers.Value) string {
	v, err := config.Coerce(q, v)
	if err != nil {
		return err.Error()
	}
	if q.Validate == "" {
		return ""
	}
	fn, ok := validate.Lookup(q.Validate)
	if !ok {
		return fmt.Sprintf("unknown validator %q", q.Validate)
	}
	return fn(v)
}
