package ordered

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML reads a mapping node, keeping key order at every depth.
func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	obj, err := fromMapping(node)
	if err != nil {
		return err
	}
	*o = *obj
	return nil
}

func fromMapping(node *yaml.Node) (*Object, error) {
	obj := New()
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, vn := node.Content[i], node.Content[i+1]
		v, err := fromNode(vn)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k.Value, err)
		}
		obj.Set(k.Value, v)
	}
	return obj, nil
}

func fromNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return fromMapping(node)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.AliasNode:
		return fromNode(node.Alias)
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
