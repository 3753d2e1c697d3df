// Package config defines the declarative generator definitions: the ordered
// question list, the variant table, the per-axis fragment tables and the
// file manifests.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/filter"
	"github.com/jorge-barreto/stgen/internal/ordered"
)

// Kind is the prompt kind of a question.
type Kind string

const (
	KindList     Kind = "list"
	KindCheckbox Kind = "checkbox"
	KindInput    Kind = "input"
	KindConfirm  Kind = "confirm"
	KindPassword Kind = "password"
)

// Choice is one entry of a list or checkbox question. A non-empty Disabled
// holds the reason the entry cannot be picked.
type Choice struct {
	Name     string `yaml:"name"`
	Value    string `yaml:"value"`
	Disabled string `yaml:"disabled"`
	Checked  bool   `yaml:"checked"`
}

// UnmarshalYAML accepts either a mapping or a bare scalar used as both name
// and value.
func (c *Choice) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Name, c.Value = node.Value, node.Value
		return nil
	}
	type plain Choice
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Choice(p)
	if c.Name == "" {
		c.Name = c.Value
	}
	return nil
}

// Derived computes a default from an earlier answer. Format, when set, is a
// fmt pattern with a single %s verb applied after the transform.
type Derived struct {
	From      answers.Key `yaml:"from"`
	Transform string      `yaml:"transform"`
	Format    string      `yaml:"format"`
}

// Option binds a question to a command-line flag. Values restricts the
// accepted flag values; Prefix is prepended before the answer is stored.
type Option struct {
	Name   string   `yaml:"name"`
	Prefix string   `yaml:"prefix"`
	Values []string `yaml:"values"`
}

type Question struct {
	ID          answers.Key      `yaml:"id"`
	Kind        Kind             `yaml:"kind"`
	Message     string           `yaml:"message"`
	Prefix      string           `yaml:"prefix"`
	Suffix      string           `yaml:"suffix"`
	Choices     []Choice         `yaml:"choices"`
	Default     any              `yaml:"default"`
	DefaultFrom *Derived         `yaml:"default-from"`
	Validate    string           `yaml:"validate"`
	When        filter.Predicate `yaml:"when"`
	Fallback    any              `yaml:"fallback"`
	Option      *Option          `yaml:"option"`
}

// Secret reports whether the answer must never be echoed or logged.
func (q *Question) Secret() bool { return q.Kind == KindPassword }

// Choice returns the choice whose value is v.
func (q *Question) Choice(v string) (Choice, bool) {
	for _, c := range q.Choices {
		if c.Value == v {
			return c, true
		}
	}
	return Choice{}, false
}

// Fragment is a set of package manifest entries contributed by one choice.
// Config holds extra top-level manifest keys such as the xo settings.
type Fragment struct {
	Dependencies    *ordered.Object `yaml:"dependencies"`
	DevDependencies *ordered.Object `yaml:"devDependencies"`
	Scripts         *ordered.Object `yaml:"scripts"`
	Config          *ordered.Object `yaml:"config"`
	Recommendations []string        `yaml:"recommendations"`
}

// Empty reports whether f contributes nothing.
func (f *Fragment) Empty() bool {
	return f.Dependencies.Len() == 0 && f.DevDependencies.Len() == 0 &&
		f.Scripts.Len() == 0 && f.Config.Len() == 0 && len(f.Recommendations) == 0
}

// AxisValue is the fragment for one answer of an axis. Variants, when set,
// limits it to those variants.
type AxisValue struct {
	Fragment `yaml:",inline"`
	Variants []string `yaml:"variants"`
}

// Axis maps the answer at Key to a fragment. An axis with no Variants
// applies to every variant.
type Axis struct {
	Key      answers.Key          `yaml:"key"`
	Variants []string             `yaml:"variants"`
	Values   map[string]AxisValue `yaml:"values"`
}

// ActionKind is the kind of a file manifest entry.
type ActionKind string

const (
	ActionCopy      ActionKind = "copy"
	ActionTemplate  ActionKind = "template"
	ActionEnv       ActionKind = "env"
	ActionMergeJSON ActionKind = "merge-json"
	ActionTree      ActionKind = "tree"
)

// Merge targets of a merge-json action.
const (
	MergePackage    = "package"
	MergeExtensions = "extensions"
)

// EnvVar is one line of a generated .env file. Value is a template
// rendered with the answer context.
type EnvVar struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Rename replaces Token in tree paths with the answer at Key after the
// named transform.
type Rename struct {
	Token     string      `yaml:"token"`
	Key       answers.Key `yaml:"key"`
	Transform string      `yaml:"transform"`
}

// FileAction is one entry of a variant's file manifest. Src is relative to
// the variant root; Dest is relative to the project folder.
type FileAction struct {
	Kind    ActionKind       `yaml:"kind"`
	Src     string           `yaml:"src"`
	Dest    string           `yaml:"dest"`
	When    filter.Predicate `yaml:"when"`
	Merge   string           `yaml:"merge"`
	Env     []EnvVar         `yaml:"env"`
	Include []string         `yaml:"include"`
	Rename  []Rename         `yaml:"rename"`
}

// Registration marks a variant as registered with the SmartThings API.
type Registration struct {
	Classifications []string `yaml:"classifications"`
}

type Variant struct {
	ID          string        `yaml:"id"`
	Short       string        `yaml:"short"`
	Root        string        `yaml:"root"`
	Register    *Registration `yaml:"register"`
	Install     bool          `yaml:"install"`
	Unavailable string        `yaml:"unavailable"`
	Base        Fragment      `yaml:"base"`
	Files       []FileAction  `yaml:"files"`
}

// Generator is one complete generator definition.
type Generator struct {
	Name       string      `yaml:"name"`
	Title      string      `yaml:"title"`
	FolderKey  answers.Key `yaml:"folder-key"`
	VariantKey answers.Key `yaml:"variant-key"`
	Questions  []Question  `yaml:"questions"`
	Variants   []Variant   `yaml:"variants"`
	Axes       []Axis      `yaml:"axes"`
}

// Parse decodes and validates a generator definition.
func Parse(data []byte) (*Generator, error) {
	var g Generator
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := Validate(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Load reads a YAML generator definition file and returns it validated.
func Load(path string) (*Generator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// QuestionIndex returns the index of the question with the given id, or -1.
func (g *Generator) QuestionIndex(id answers.Key) int {
	for i := range g.Questions {
		if g.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// Question returns the question with the given id, or nil.
func (g *Generator) Question(id answers.Key) *Question {
	if i := g.QuestionIndex(id); i >= 0 {
		return &g.Questions[i]
	}
	return nil
}

// QuestionByOption returns the question bound to the named flag, or nil.
func (g *Generator) QuestionByOption(name string) *Question {
	for i := range g.Questions {
		if o := g.Questions[i].Option; o != nil && o.Name == name {
			return &g.Questions[i]
		}
	}
	return nil
}

// Variant returns the variant with the given id, or nil.
func (g *Generator) Variant(id string) *Variant {
	for i := range g.Variants {
		if g.Variants[i].ID == id {
			return &g.Variants[i]
		}
	}
	return nil
}
