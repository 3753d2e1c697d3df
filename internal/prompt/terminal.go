package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/ux"
)

// Terminal asks questions on a line-oriented terminal. Build one per input
// stream: its reader owns the buffered input.
type Terminal struct {
	in  *lineReader
	out io.Writer

	// readSecret reads a password without echo. Nil when in is not a TTY,
	// in which case secrets are read as plain lines.
	readSecret func() (string, error)
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: newLineReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		t.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return "", fmt.Errorf("reading input: %w", err)
			}
			return string(b), nil
		}
	}
	return t
}

// Ask prints q and reads one answer. An empty line selects def. Input is
// parsed but not checked against the choices; the caller validates it.
func (t *Terminal) Ask(ctx context.Context, q *config.Question, def answers.Value) (answers.Value, error) {
	t.header(q)
	switch q.Kind {
	case config.KindList:
		return t.askList(ctx, q, def)
	case config.KindCheckbox:
		return t.askCheckbox(ctx, q, def)
	case config.KindConfirm:
		return t.askConfirm(ctx, def)
	default:
		return t.askText(ctx, q, def)
	}
}

func (t *Terminal) Reject(q *config.Question, reason string) {
	fmt.Fprintf(t.out, "  %s>> %s%s\n", ux.Red, reason, ux.Reset)
}

func (t *Terminal) header(q *config.Question) {
	fmt.Fprintf(t.out, "%s?%s %s%s%s%s%s\n", ux.Green, ux.Reset, q.Prefix, ux.Bold, q.Message, ux.Reset, q.Suffix)
}

func (t *Terminal) printChoices(q *config.Question, marked func(config.Choice) bool) {
	for i, c := range q.Choices {
		mark := " "
		if marked(c) {
			mark = ux.Cyan + ">" + ux.Reset
		}
		if c.Disabled != "" {
			fmt.Fprintf(t.out, "  %s %s%2d) %s (%s)%s\n", mark, ux.Dim, i+1, c.Name, c.Disabled, ux.Reset)
			continue
		}
		fmt.Fprintf(t.out, "  %s %2d) %s\n", mark, i+1, c.Name)
	}
}

func (t *Terminal) askList(ctx context.Context, q *config.Question, def answers.Value) (answers.Value, error) {
	if def.IsAbsent() {
		def = firstEnabled(q)
	}
	t.printChoices(q, func(c config.Choice) bool { return c.Value == def.Str() })
	fmt.Fprintf(t.out, "  Answer: ")
	line, err := t.in.next(ctx)
	if err != nil {
		return answers.Value{}, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return answers.String(choiceValue(q, line)), nil
}

func (t *Terminal) askCheckbox(ctx context.Context, q *config.Question, def answers.Value) (answers.Value, error) {
	selected := make(map[string]bool)
	for _, v := range def.List() {
		selected[v] = true
	}
	t.printChoices(q, func(c config.Choice) bool { return selected[c.Value] })
	fmt.Fprintf(t.out, "  Answer %s(numbers or values separated by commas, \"none\" for no selection)%s: ", ux.Dim, ux.Reset)
	line, err := t.in.next(ctx)
	if err != nil {
		return answers.Value{}, err
	}
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		if def.IsAbsent() {
			return answers.List(), nil
		}
		return def, nil
	case "none", "-":
		return answers.List(), nil
	}
	var out []string
	for _, f := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, choiceValue(q, f))
	}
	return answers.List(out...), nil
}

func (t *Terminal) askConfirm(ctx context.Context, def answers.Value) (answers.Value, error) {
	hint := "y/N"
	if def.Bool() {
		hint = "Y/n"
	}
	fmt.Fprintf(t.out, "  (%s): ", hint)
	line, err := t.in.next(ctx)
	if err != nil {
		return answers.Value{}, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return answers.Bool(def.Bool()), nil
	case "y", "yes":
		return answers.Bool(true), nil
	case "n", "no":
		return answers.Bool(false), nil
	default:
		return answers.String(strings.TrimSpace(line)), nil
	}
}

func (t *Terminal) askText(ctx context.Context, q *config.Question, def answers.Value) (answers.Value, error) {
	if def.Truthy() {
		if q.Secret() {
			fmt.Fprintf(t.out, "  %s(press enter to keep the current value)%s: ", ux.Dim, ux.Reset)
		} else {
			fmt.Fprintf(t.out, "  %s(%s)%s: ", ux.Dim, def.Str(), ux.Reset)
		}
	} else {
		fmt.Fprintf(t.out, "  : ")
	}
	read := t.in.readLine
	if q.Secret() && t.readSecret != nil {
		read = t.readSecret
	}
	line, err := t.in.do(ctx, read)
	if err != nil {
		return answers.Value{}, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return answers.String(def.Str()), nil
	}
	return answers.String(line), nil
}

// choiceValue maps a 1-based index to the choice value. Anything else is
// returned as typed.
func choiceValue(q *config.Question, in string) string {
	n, err := strconv.Atoi(in)
	if err != nil || n < 1 || n > len(q.Choices) {
		return in
	}
	return q.Choices[n-1].Value
}

func firstEnabled(q *config.Question) answers.Value {
	for _, c := range q.Choices {
		if c.Disabled == "" {
			return answers.String(c.Value)
		}
	}
	return answers.Value{}
}
