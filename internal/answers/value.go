package answers

import (
	"fmt"
	"strings"
)

// Kind identifies which variant a Value holds. The zero Kind means the
// answer is absent.
type Kind int

const (
	KindAbsent Kind = iota
	KindBool
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "absent"
	}
}

// Value is a single answer: a boolean, a string, or an ordered list of strings.
type Value struct {
	kind Kind
	b    bool
	s    string
	list []string
}

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func String(s string) Value { return Value{kind: KindString, s: s} }

// List copies items so later mutation by the caller cannot leak into the store.
func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Bool returns the boolean form. Strings "true"/"yes"/"y" count as true.
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.s)) {
		case "true", "yes", "y":
			return true
		}
	}
	return false
}

// Str returns the string form used for set membership and interpolation.
// Lists are joined with commas.
func (v Value) Str() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindString:
		return v.s
	case KindList:
		return strings.Join(v.list, ",")
	}
	return ""
}

func (v Value) String() string {
	if v.kind == KindAbsent {
		return "<absent>"
	}
	return v.Str()
}

// List returns a copy of the list form. A string answer becomes a
// one-element list.
func (v Value) List() []string {
	switch v.kind {
	case KindList:
		cp := make([]string, len(v.list))
		copy(cp, v.list)
		return cp
	case KindString:
		if v.s == "" {
			return nil
		}
		return []string{v.s}
	}
	return nil
}

// Truthy reports whether the value is defined and non-empty: a non-empty
// string, a non-empty list, or boolean true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) > 0
	}
	return false
}

// Interface returns the Go value handed to templates.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.s
	case KindList:
		return v.List()
	}
	return nil
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
	}
	return true
}

// FromAny converts a decoded YAML/JSON scalar or sequence into a Value.
// nil maps to an absent value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int, int64, float64, uint64:
		return String(fmt.Sprint(x)), nil
	case []string:
		return List(x...), nil
	case []any:
		items := make([]string, 0, len(x))
		for i, item := range x {
			switch it := item.(type) {
			case string:
				items = append(items, it)
			case bool, int, int64, float64:
				items = append(items, fmt.Sprint(it))
			default:
				return Value{}, fmt.Errorf("list item %d: unsupported type %T", i, item)
			}
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported answer type %T", raw)
	}
}
