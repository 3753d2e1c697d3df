// Package compose turns a final answer set into a generation plan: the
// active variant, its template root, the merged manifest descriptor and the
// file actions that apply.
package compose

import (
	"path"
	"slices"

	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/filter"
	"github.com/jorge-barreto/stgen/internal/ordered"
)

// Descriptor accumulates the fragments of every applicable choice. It is
// not modified after Compose returns; accessors hand out copies.
type Descriptor struct {
	deps    *ordered.Object
	devDeps *ordered.Object
	scripts *ordered.Object
	config  *ordered.Object
	recs    []string
	sources []string
}

func newDescriptor() *Descriptor {
	return &Descriptor{
		deps:    ordered.New(),
		devDeps: ordered.New(),
		scripts: ordered.New(),
		config:  ordered.New(),
	}
}

// apply merges f, later fragments winning per leaf key.
func (d *Descriptor) apply(source string, f *config.Fragment) {
	d.deps.Merge(f.Dependencies)
	d.devDeps.Merge(f.DevDependencies)
	d.scripts.Merge(f.Scripts)
	d.config.Merge(f.Config)
	for _, r := range f.Recommendations {
		if !slices.Contains(d.recs, r) {
			d.recs = append(d.recs, r)
		}
	}
	if !f.Empty() {
		d.sources = append(d.sources, source)
	}
}

func (d *Descriptor) Dependencies() *ordered.Object    { return d.deps.Clone() }
func (d *Descriptor) DevDependencies() *ordered.Object { return d.devDeps.Clone() }
func (d *Descriptor) Scripts() *ordered.Object         { return d.scripts.Clone() }
func (d *Descriptor) Config() *ordered.Object          { return d.config.Clone() }
func (d *Descriptor) Recommendations() []string        { return slices.Clone(d.recs) }

// Sources names the fragments that contributed, in merge order, as
// "base" or "<axis>=<value>".
func (d *Descriptor) Sources() []string { return slices.Clone(d.sources) }

// Dependency returns the version range of a runtime dependency.
func (d *Descriptor) Dependency(name string) (string, bool) {
	v, ok := d.deps.Get(name)
	s, _ := v.(string)
	return s, ok
}

// DevDependency returns the version range of a development dependency.
func (d *Descriptor) DevDependency(name string) (string, bool) {
	v, ok := d.devDeps.Get(name)
	s, _ := v.(string)
	return s, ok
}

// Package is the patch merged onto package.json.
func (d *Descriptor) Package() *ordered.Object {
	p := ordered.New()
	p.Set("scripts", d.Scripts())
	p.Set("dependencies", d.Dependencies())
	p.Set("devDependencies", d.DevDependencies())
	p.Merge(d.config)
	return p
}

// Extensions is the patch merged onto .vscode/extensions.json.
func (d *Descriptor) Extensions() *ordered.Object {
	p := ordered.New()
	recs := make([]any, len(d.recs))
	for i, r := range d.recs {
		recs[i] = r
	}
	p.Set("recommendations", recs)
	return p
}

// Plan is everything the writer needs for one run.
type Plan struct {
	Generator  *config.Generator
	Variant    *config.Variant
	Root       string
	Descriptor *Descriptor
	Files      []config.FileAction
}

// Compose selects the variant, merges the base fragment and every
// applicable axis fragment, and filters the variant's file manifest.
func Compose(g *config.Generator, r filter.Reader) (*Plan, error) {
	v, err := SelectVariant(g, r)
	if err != nil {
		return nil, err
	}
	d := newDescriptor()
	d.apply("base", &v.Base)
	for i := range g.Axes {
		a := &g.Axes[i]
		if len(a.Variants) > 0 && !slices.Contains(a.Variants, v.ID) {
			continue
		}
		ans, ok := r.Lookup(a.Key)
		if !ok {
			continue
		}
		val, ok := a.Values[ans.Str()]
		if !ok {
			continue
		}
		if len(val.Variants) > 0 && !slices.Contains(val.Variants, v.ID) {
			continue
		}
		d.apply(string(a.Key)+"="+ans.Str(), &val.Fragment)
	}

	plan := &Plan{Generator: g, Variant: v, Root: v.Root, Descriptor: d}
	for _, f := range v.Files {
		if filter.Evaluate(f.When, r) {
			plan.Files = append(plan.Files, f)
		}
	}
	return plan, nil
}

// Source resolves a manifest path against the template root.
func (p *Plan) Source(src string) string {
	return path.Join(p.Root, src)
}

// HasFile reports whether some action writes dest.
func (p *Plan) HasFile(dest string) bool {
	for _, f := range p.Files {
		if f.Dest == dest {
			return true
		}
	}
	return false
}

// Available reports whether the variant can be generated.
func (p *Plan) Available() bool { return p.Variant.Unavailable == "" }
