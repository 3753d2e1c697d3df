// Package blueprint embeds the built-in generator definitions and their
// template trees.
package blueprint

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jorge-barreto/stgen/internal/config"
)

//go:embed node.yaml java.yaml
var definitions embed.FS

//go:embed all:templates
var templates embed.FS

var files = map[string]string{
	"node": "node.yaml",
	"java": "java.yaml",
}

// Load returns the validated built-in generator with the given name.
func Load(name string) (*config.Generator, error) {
	file, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("unknown generator %q (must be one of %v)", name, Names())
	}
	data, err := definitions.ReadFile(file)
	if err != nil {
		return nil, err
	}
	g, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return g, nil
}

// Names lists the built-in generators.
func Names() []string {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Templates returns the template trees. Variant roots are relative to it.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
