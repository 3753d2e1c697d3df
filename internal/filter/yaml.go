package filter

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/stgen/internal/answers"
)

// rawCondition is the YAML shape of one list entry under `when:`.
// A single entry may combine in and not-in for the same key.
type rawCondition struct {
	TypeIn    []string `yaml:"type-in"`
	TypeNotIn []string `yaml:"type-not-in"`
	Key       string   `yaml:"key"`
	Truthy    *bool    `yaml:"truthy"`
	In        []string `yaml:"in"`
	NotIn     []string `yaml:"not-in"`
}

// UnmarshalYAML decodes a sequence of condition entries.
func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	var raw []rawCondition
	if err := node.Decode(&raw); err != nil {
		return err
	}
	var out Predicate
	for i, rc := range raw {
		conds, err := rc.conditions()
		if err != nil {
			return fmt.Errorf("when[%d]: %w", i, err)
		}
		out = append(out, conds...)
	}
	*p = out
	return nil
}

func (rc rawCondition) conditions() ([]Condition, error) {
	var out []Condition
	if rc.TypeIn != nil {
		out = append(out, TypeIn(rc.TypeIn...))
	}
	if rc.TypeNotIn != nil {
		out = append(out, TypeNotIn(rc.TypeNotIn...))
	}
	if rc.Key == "" {
		if rc.Truthy != nil || rc.In != nil || rc.NotIn != nil {
			return nil, fmt.Errorf("'key' is required with truthy, in, or not-in")
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("empty condition")
		}
		return out, nil
	}
	if rc.TypeIn != nil || rc.TypeNotIn != nil {
		return nil, fmt.Errorf("key %q: type-in/type-not-in must be separate entries", rc.Key)
	}
	k := answers.Key(rc.Key)
	if rc.Truthy != nil {
		out = append(out, KeyTruthy(k, *rc.Truthy))
	}
	if rc.In != nil {
		out = append(out, KeyIn(k, rc.In...))
	}
	if rc.NotIn != nil {
		out = append(out, KeyNotIn(k, rc.NotIn...))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("key %q: one of truthy, in, or not-in is required", rc.Key)
	}
	return out, nil
}
