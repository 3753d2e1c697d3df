// Package filter decides whether a question or file action applies, given
// the answers collected so far.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jorge-barreto/stgen/internal/answers"
)

// Op is the condition variant.
type Op int

const (
	OpTruthy Op = iota + 1
	OpIn
	OpNotIn
)

// Condition is one test over a single answer. TypeIn and TypeNotIn are
// membership tests on the type key.
type Condition struct {
	Op   Op
	Key  answers.Key
	Set  []string
	Want bool // OpTruthy only
}

func KeyTruthy(k answers.Key, want bool) Condition {
	return Condition{Op: OpTruthy, Key: k, Want: want}
}

func KeyIn(k answers.Key, values ...string) Condition {
	return Condition{Op: OpIn, Key: k, Set: values}
}

func KeyNotIn(k answers.Key, values ...string) Condition {
	return Condition{Op: OpNotIn, Key: k, Set: values}
}

func TypeIn(values ...string) Condition { return KeyIn(answers.Type, values...) }

func TypeNotIn(values ...string) Condition { return KeyNotIn(answers.Type, values...) }

// Reader is the read side of the answer store.
type Reader interface {
	Lookup(k answers.Key) (answers.Value, bool)
}

// Holds evaluates c against r. An absent answer is never a member of a set.
func (c Condition) Holds(r Reader) bool {
	v, ok := r.Lookup(c.Key)
	switch c.Op {
	case OpTruthy:
		return (ok && v.Truthy()) == c.Want
	case OpIn:
		return ok && slices.Contains(c.Set, v.Str())
	case OpNotIn:
		return !ok || !slices.Contains(c.Set, v.Str())
	default:
		return false
	}
}

func (c Condition) String() string {
	switch c.Op {
	case OpTruthy:
		if c.Want {
			return string(c.Key)
		}
		return "!" + string(c.Key)
	case OpIn:
		return fmt.Sprintf("%s in [%s]", c.Key, strings.Join(c.Set, ","))
	case OpNotIn:
		return fmt.Sprintf("%s not in [%s]", c.Key, strings.Join(c.Set, ","))
	default:
		return fmt.Sprintf("invalid(%d)", c.Op)
	}
}

// Predicate is a conjunction of conditions. The empty predicate is true.
type Predicate []Condition

// Evaluate reports whether every condition of p holds against r.
func Evaluate(p Predicate, r Reader) bool {
	for _, c := range p {
		if !c.Holds(r) {
			return false
		}
	}
	return true
}

func (p Predicate) Eval(r Reader) bool { return Evaluate(p, r) }

// Keys returns the distinct answer keys p reads, in first-use order.
func (p Predicate) Keys() []answers.Key {
	var keys []answers.Key
	for _, c := range p {
		if !slices.Contains(keys, c.Key) {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func (p Predicate) String() string {
	if len(p) == 0 {
		return "always"
	}
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, " && ")
}
