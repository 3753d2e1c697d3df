package compose

import (
	"errors"
	"fmt"

	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/filter"
)

// ErrUnknownVariant is returned when the type answer names no variant.
var ErrUnknownVariant = errors.New("unknown app type")

// SelectVariant derives the single active variant from the answer at the
// generator's variant key. Both the full id (app-smartapp) and the short
// form (smartapp) are accepted. A generator without a variant key has
// exactly one variant.
func SelectVariant(g *config.Generator, r filter.Reader) (*config.Variant, error) {
	if g.VariantKey == "" {
		return &g.Variants[0], nil
	}
	v, ok := r.Lookup(g.VariantKey)
	if !ok || v.Str() == "" {
		return nil, fmt.Errorf("%s is not set: %w", g.VariantKey, ErrUnknownVariant)
	}
	name := v.Str()
	for i := range g.Variants {
		if g.Variants[i].ID == name || (g.Variants[i].Short != "" && g.Variants[i].Short == name) {
			return &g.Variants[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownVariant)
}
