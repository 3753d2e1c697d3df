// Package ordered provides a JSON object that remembers key order, so
// merged package.json files keep the layout of their base template.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Object is a string-keyed map that preserves insertion order. Values are
// scalars, []any, or *Object.
type Object struct {
	keys   []string
	values map[string]any
}

func New() *Object {
	return &Object{values: make(map[string]any)}
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	cp := make([]string, len(o.keys))
	copy(cp, o.keys)
	return cp
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// GetString returns the value at key when it is a string.
func (o *Object) GetString(key string) string {
	v, _ := o.Get(key)
	s, _ := v.(string)
	return s
}

// GetObject returns the nested object at key, or nil.
func (o *Object) GetObject(key string) *Object {
	v, _ := o.Get(key)
	obj, _ := v.(*Object)
	return obj
}

// Set stores v at key. An existing key keeps its position.
func (o *Object) Set(key string, v any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Merge copies src into o. Nested objects merge recursively; any other
// value, arrays included, replaces what o holds at that key.
func (o *Object) Merge(src *Object) {
	if src == nil {
		return
	}
	for _, k := range src.keys {
		sv := src.values[k]
		switch x := sv.(type) {
		case *Object:
			if dobj := o.GetObject(k); dobj != nil {
				dobj.Merge(x)
				continue
			}
			o.Set(k, x.Clone())
		default:
			o.Set(k, cloneValue(sv))
		}
	}
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	cp := New()
	for _, k := range o.keys {
		cp.Set(k, cloneValue(o.values[k]))
	}
	return cp
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order at every depth.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	obj, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*o = *obj
	return nil
}

func decodeObject(dec *json.Decoder) (*Object, error) {
	obj := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, err
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return t, nil
	}
}

// Encode writes o as indented JSON followed by a newline.
func (o *Object) Encode(w io.Writer) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
