package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"text/template"

	"golang.org/x/mod/semver"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/filter"
	"github.com/jorge-barreto/stgen/internal/naming"
	"github.com/jorge-barreto/stgen/internal/ordered"
	"github.com/jorge-barreto/stgen/internal/validate"
)

var envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var validKinds = map[Kind]bool{
	KindList:     true,
	KindCheckbox: true,
	KindInput:    true,
	KindConfirm:  true,
	KindPassword: true,
}

// Validate checks a generator definition for errors.
func Validate(g *Generator) error {
	if g.Name == "" {
		return fmt.Errorf("config: 'name' is required")
	}
	if len(g.Questions) == 0 {
		return fmt.Errorf("config: at least one question is required")
	}

	seen := make(map[answers.Key]bool)
	options := make(map[string]bool)
	for i := range g.Questions {
		q := &g.Questions[i]
		if q.ID == "" {
			return fmt.Errorf("config: question %d: 'id' is required", i+1)
		}
		if seen[q.ID] {
			return fmt.Errorf("config: duplicate question id %q", q.ID)
		}
		if err := validateQuestion(q, seen); err != nil {
			return err
		}
		if q.Option != nil {
			if q.Option.Name == "" {
				return fmt.Errorf("config: question %q: option.name is required", q.ID)
			}
			if options[q.Option.Name] {
				return fmt.Errorf("config: question %q: duplicate option %q", q.ID, q.Option.Name)
			}
			options[q.Option.Name] = true
		}
		seen[q.ID] = true
	}

	if g.FolderKey == "" {
		return fmt.Errorf("config: 'folder-key' is required")
	}
	if !seen[g.FolderKey] {
		return fmt.Errorf("config: folder-key %q is not a question", g.FolderKey)
	}
	if g.VariantKey != "" && !seen[g.VariantKey] {
		return fmt.Errorf("config: variant-key %q is not a question", g.VariantKey)
	}

	if len(g.Variants) == 0 {
		return fmt.Errorf("config: at least one variant is required")
	}
	if g.VariantKey == "" && len(g.Variants) > 1 {
		return fmt.Errorf("config: 'variant-key' is required with more than one variant")
	}
	ids := make(map[string]bool)
	for i := range g.Variants {
		v := &g.Variants[i]
		if v.ID == "" {
			return fmt.Errorf("config: variant %d: 'id' is required", i+1)
		}
		if ids[v.ID] || (v.Short != "" && ids[v.Short]) {
			return fmt.Errorf("config: duplicate variant %q", v.ID)
		}
		ids[v.ID] = true
		if v.Short != "" {
			ids[v.Short] = true
		}
		if err := validateVariant(v, seen); err != nil {
			return err
		}
	}

	for i := range g.Axes {
		a := &g.Axes[i]
		if a.Key == "" {
			return fmt.Errorf("config: axis %d: 'key' is required", i+1)
		}
		if !seen[a.Key] {
			return fmt.Errorf("config: axis %q: key is not a question", a.Key)
		}
		for _, id := range a.Variants {
			if g.Variant(id) == nil {
				return fmt.Errorf("config: axis %q: unknown variant %q", a.Key, id)
			}
		}
		for value, av := range a.Values {
			for _, id := range av.Variants {
				if g.Variant(id) == nil {
					return fmt.Errorf("config: axis %q: value %q: unknown variant %q", a.Key, value, id)
				}
			}
			if err := validateFragment(&av.Fragment); err != nil {
				return fmt.Errorf("config: axis %q: value %q: %w", a.Key, value, err)
			}
		}
	}

	return nil
}

func validateQuestion(q *Question, earlier map[answers.Key]bool) error {
	if q.Kind == "" {
		return fmt.Errorf("config: question %q: 'kind' is required", q.ID)
	}
	if !validKinds[q.Kind] {
		return fmt.Errorf("config: question %q: unknown kind %q (must be list, checkbox, input, confirm, or password)", q.ID, q.Kind)
	}
	if q.Message == "" {
		return fmt.Errorf("config: question %q: 'message' is required", q.ID)
	}

	switch q.Kind {
	case KindList, KindCheckbox:
		if len(q.Choices) == 0 {
			return fmt.Errorf("config: %s question %q: 'choices' is required", q.Kind, q.ID)
		}
		values := make(map[string]bool)
		for _, c := range q.Choices {
			if c.Value == "" {
				return fmt.Errorf("config: question %q: choice %q has no value", q.ID, c.Name)
			}
			if values[c.Value] {
				return fmt.Errorf("config: question %q: duplicate choice %q", q.ID, c.Value)
			}
			values[c.Value] = true
		}
	default:
		if len(q.Choices) > 0 {
			return fmt.Errorf("config: question %q: 'choices' is only valid on list and checkbox questions", q.ID)
		}
	}

	if q.Default != nil && q.DefaultFrom != nil {
		return fmt.Errorf("config: question %q: 'default' and 'default-from' cannot be combined", q.ID)
	}
	if q.Default != nil {
		def, err := answers.FromAny(q.Default)
		if err != nil {
			return fmt.Errorf("config: question %q: default: %w", q.ID, err)
		}
		if q.Kind == KindList {
			c, ok := q.Choice(def.Str())
			if !ok {
				return fmt.Errorf("config: question %q: default %q is not a choice", q.ID, def.Str())
			}
			if c.Disabled != "" {
				return fmt.Errorf("config: question %q: default %q is disabled", q.ID, def.Str())
			}
		}
	}
	if d := q.DefaultFrom; d != nil {
		if d.From == "" {
			return fmt.Errorf("config: question %q: default-from.from is required", q.ID)
		}
		if !earlier[d.From] {
			return fmt.Errorf("config: question %q: default-from %q must reference an earlier question", q.ID, d.From)
		}
		if _, ok := naming.Lookup(d.Transform); !ok {
			return fmt.Errorf("config: question %q: unknown transform %q", q.ID, d.Transform)
		}
		if d.Format != "" && strings.Count(d.Format, "%s") != 1 {
			return fmt.Errorf("config: question %q: default-from.format must contain exactly one %%s", q.ID)
		}
	}

	if q.Validate != "" {
		if _, ok := validate.Lookup(q.Validate); !ok {
			return fmt.Errorf("config: question %q: unknown validator %q", q.ID, q.Validate)
		}
	}
	if err := checkPredicate(q.When, earlier); err != nil {
		return fmt.Errorf("config: question %q: %w", q.ID, err)
	}
	if q.Fallback != nil {
		if _, err := answers.FromAny(q.Fallback); err != nil {
			return fmt.Errorf("config: question %q: fallback: %w", q.ID, err)
		}
	}
	if o := q.Option; o != nil && q.Kind == KindList {
		for _, v := range o.Values {
			if _, ok := q.Choice(o.Prefix + v); !ok {
				return fmt.Errorf("config: question %q: option value %q is not a choice", q.ID, v)
			}
		}
	}
	return nil
}

// checkPredicate requires every key a predicate reads to be a question
// asked before it.
func checkPredicate(p filter.Predicate, earlier map[answers.Key]bool) error {
	for _, k := range p.Keys() {
		if !earlier[k] {
			return fmt.Errorf("when: key %q must reference an earlier question", k)
		}
	}
	return nil
}

var validActions = map[ActionKind]bool{
	ActionCopy:      true,
	ActionTemplate:  true,
	ActionEnv:       true,
	ActionMergeJSON: true,
	ActionTree:      true,
}

func validateVariant(v *Variant, questions map[answers.Key]bool) error {
	if v.Unavailable == "" && v.Root == "" && len(v.Files) > 0 {
		return fmt.Errorf("config: variant %q: 'root' is required", v.ID)
	}
	if err := validateFragment(&v.Base); err != nil {
		return fmt.Errorf("config: variant %q: base: %w", v.ID, err)
	}
	for i := range v.Files {
		f := &v.Files[i]
		where := fmt.Sprintf("config: variant %q: file %d", v.ID, i+1)
		if f.Kind == "" {
			return fmt.Errorf("%s: 'kind' is required", where)
		}
		if !validActions[f.Kind] {
			return fmt.Errorf("%s: unknown kind %q (must be copy, template, env, merge-json, or tree)", where, f.Kind)
		}
		switch f.Kind {
		case ActionCopy, ActionTemplate:
			if f.Src == "" || f.Dest == "" {
				return fmt.Errorf("%s: %s needs 'src' and 'dest'", where, f.Kind)
			}
		case ActionEnv:
			if f.Dest == "" {
				return fmt.Errorf("%s: env needs 'dest'", where)
			}
			if len(f.Env) == 0 {
				return fmt.Errorf("%s: env needs at least one variable", where)
			}
			for _, e := range f.Env {
				if !envNameRe.MatchString(e.Name) {
					return fmt.Errorf("%s: %q is not a valid variable name (must match [A-Za-z_][A-Za-z0-9_]*)", where, e.Name)
				}
				if _, err := template.New(e.Name).Parse(e.Value); err != nil {
					return fmt.Errorf("%s: env variable %q: %w", where, e.Name, err)
				}
			}
		case ActionMergeJSON:
			if f.Dest == "" {
				return fmt.Errorf("%s: merge-json needs 'dest'", where)
			}
			if f.Merge != MergePackage && f.Merge != MergeExtensions {
				return fmt.Errorf("%s: merge must be %q or %q", where, MergePackage, MergeExtensions)
			}
		case ActionTree:
			if f.Src == "" {
				return fmt.Errorf("%s: tree needs 'src'", where)
			}
			for _, r := range f.Rename {
				if r.Token == "" || !questions[r.Key] {
					return fmt.Errorf("%s: rename %q must name a question", where, r.Token)
				}
				if _, ok := naming.Lookup(r.Transform); !ok {
					return fmt.Errorf("%s: rename %q: unknown transform %q", where, r.Token, r.Transform)
				}
			}
		}
		if err := checkPredicate(f.When, questions); err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
	}
	return nil
}

func validateFragment(f *Fragment) error {
	for _, sec := range []struct {
		name string
		obj  *ordered.Object
	}{
		{"dependencies", f.Dependencies},
		{"devDependencies", f.DevDependencies},
	} {
		for _, pkg := range sec.obj.Keys() {
			ver := sec.obj.GetString(pkg)
			if !ValidRange(ver) {
				return fmt.Errorf("%s: %q: invalid version range %q", sec.name, pkg, ver)
			}
		}
	}
	for _, name := range f.Scripts.Keys() {
		if f.Scripts.GetString(name) == "" {
			return fmt.Errorf("scripts: %q must be a non-empty string", name)
		}
	}
	if slices.Contains(f.Recommendations, "") {
		return fmt.Errorf("recommendations: entries must be non-empty")
	}
	return nil
}

// ValidRange reports whether r is a semantic version, optionally prefixed
// with a ^ or ~ range operator.
func ValidRange(r string) bool {
	v := strings.TrimLeft(r, "^~")
	if v == "" || strings.HasPrefix(v, "v") {
		return false
	}
	return semver.IsValid("v" + v)
}
