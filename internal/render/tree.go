// Package render materializes a project tree. Files are written into a
// hidden staging directory next to the destination and moved into place
// by Commit, so an aborted run leaves nothing behind.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"

	"github.com/jorge-barreto/stgen/internal/ordered"
)

// ErrExists is returned by Commit when the destination is already present.
var ErrExists = errors.New("destination already exists")

// Tree is one staged output tree.
type Tree struct {
	src     fs.FS
	dest    string
	staging string
	written map[string]bool
}

// New stages a tree that Commit will move to dest. src holds the template
// sources; id makes the staging directory name unique per run.
func New(src fs.FS, dest, id string) (*Tree, error) {
	dest = filepath.Clean(dest)
	if _, err := os.Stat(dest); err == nil {
		return nil, fmt.Errorf("%s: %w", dest, ErrExists)
	}
	staging := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+"-"+id)
	if err := os.MkdirAll(staging, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &Tree{src: src, dest: dest, staging: staging, written: make(map[string]bool)}, nil
}

// Dest is the final location of the tree.
func (t *Tree) Dest() string { return t.dest }

// Staging is the directory files are written to before Commit.
func (t *Tree) Staging() string { return t.staging }

// Files returns the written paths, relative to the tree root, sorted.
func (t *Tree) Files() []string {
	out := make([]string, 0, len(t.written))
	for p := range t.written {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (t *Tree) target(rel string) (string, error) {
	clean := path.Clean(filepath.ToSlash(rel))
	if clean == "." || path.IsAbs(clean) || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", fmt.Errorf("invalid output path %q", rel)
	}
	return filepath.Join(t.staging, filepath.FromSlash(clean)), nil
}

func (t *Tree) write(rel string, data []byte) error {
	full, err := t.target(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}
	f, err := os.CreateTemp(filepath.Dir(full), ".write-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), full); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	t.written[path.Clean(filepath.ToSlash(rel))] = true
	return nil
}

// Copy copies the source file or directory src to dest verbatim.
func (t *Tree) Copy(src, dest string) error {
	info, err := fs.Stat(t.src, src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if !info.IsDir() {
		data, err := fs.ReadFile(t.src, src)
		if err != nil {
			return fmt.Errorf("copy %s: %w", src, err)
		}
		return t.write(dest, data)
	}
	return fs.WalkDir(t.src, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(p, src+"/")
		data, err := fs.ReadFile(t.src, p)
		if err != nil {
			return fmt.Errorf("copy %s: %w", p, err)
		}
		return t.write(path.Join(dest, rel), data)
	})
}

// CopyTemplate renders the source file src with data and writes it to dest.
func (t *Tree) CopyTemplate(src, dest string, data any) error {
	text, err := fs.ReadFile(t.src, src)
	if err != nil {
		return fmt.Errorf("template %s: %w", src, err)
	}
	out, err := Execute(src, string(text), data)
	if err != nil {
		return fmt.Errorf("template %s: %w", src, err)
	}
	return t.write(dest, []byte(out))
}

// MergeJSON deep-merges patch onto the JSON object at dest, creating it if
// absent. Keys already in the file keep their position.
func (t *Tree) MergeJSON(dest string, patch *ordered.Object) error {
	full, err := t.target(dest)
	if err != nil {
		return err
	}
	base := ordered.New()
	data, err := os.ReadFile(full)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, base); err != nil {
			return fmt.Errorf("merge %s: %w", dest, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("merge %s: %w", dest, err)
	}
	base.Merge(patch)
	var buf bytes.Buffer
	if err := base.Encode(&buf); err != nil {
		return fmt.Errorf("merge %s: %w", dest, err)
	}
	return t.write(dest, buf.Bytes())
}

// WriteEnv writes vars as a dotenv file at dest. Empty values are dropped.
func (t *Tree) WriteEnv(dest string, vars map[string]string) error {
	env := make(map[string]string, len(vars))
	for k, v := range vars {
		if v != "" {
			env[k] = v
		}
	}
	content, err := godotenv.Marshal(env)
	if err != nil {
		return fmt.Errorf("env %s: %w", dest, err)
	}
	if content != "" {
		content += "\n"
	}
	return t.write(dest, []byte(content))
}

// WalkOptions controls Walk.
type WalkOptions struct {
	// Include are doublestar patterns matched against paths relative to
	// the walked directory. Empty includes everything.
	Include []string
	// Rename maps a relative output path to its final form.
	Rename func(string) string
}

// Walk renders a template tree. Files ending in .tmpl are rendered and
// .raw files copied, both losing the suffix; a further .h suffix turns the
// output into a dot-file. Other files are skipped and returned.
func (t *Tree) Walk(src, dest string, data any, opts WalkOptions) ([]string, error) {
	var skipped []string
	err := fs.WalkDir(t.src, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := p
		if src != "." {
			rel = strings.TrimPrefix(p, src+"/")
		}
		if !matchAny(opts.Include, rel) {
			skipped = append(skipped, rel)
			return nil
		}
		out, render, ok := outputName(rel)
		if !ok {
			skipped = append(skipped, rel)
			return nil
		}
		if opts.Rename != nil {
			out = opts.Rename(out)
		}
		out = path.Join(dest, out)
		if render {
			return t.CopyTemplate(p, out, data)
		}
		return t.Copy(p, out)
	})
	return skipped, err
}

func matchAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, name); ok {
			return true
		}
	}
	return false
}

// outputName strips the source suffix from rel and reports whether the file
// is a template.
func outputName(rel string) (string, bool, bool) {
	var render bool
	switch {
	case strings.HasSuffix(rel, ".tmpl"):
		rel, render = strings.TrimSuffix(rel, ".tmpl"), true
	case strings.HasSuffix(rel, ".raw"):
		rel = strings.TrimSuffix(rel, ".raw")
	default:
		return "", false, false
	}
	if strings.HasSuffix(rel, ".h") {
		dir, base := path.Split(strings.TrimSuffix(rel, ".h"))
		rel = dir + "." + base
	}
	return rel, render, true
}

// Commit moves the staged tree to its destination.
func (t *Tree) Commit() error {
	if _, err := os.Stat(t.dest); err == nil {
		return fmt.Errorf("%s: %w", t.dest, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(t.dest), 0755); err != nil {
		return err
	}
	if err := os.Rename(t.staging, t.dest); err != nil {
		return fmt.Errorf("committing %s: %w", t.dest, err)
	}
	return nil
}

// Discard removes the staging directory.
func (t *Tree) Discard() error {
	return os.RemoveAll(t.staging)
}
