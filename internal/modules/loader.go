package modules

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/astload"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
)

// Loader reads serialized units into a session. Library roots are searched
// for package directories when an import names a package nobody loaded.
type Loader struct {
	ctx    *pipeline.PipelineContext
	roots  []string
	loaded map[string]bool
}

// NewLoader creates a loader and installs it as the import resolver of ctx.
func NewLoader(ctx *pipeline.PipelineContext, roots ...string) *Loader {
	l := &Loader{ctx: ctx, roots: roots, loaded: map[string]bool{}}
	ctx.External = l
	return l
}

// Load reads a unit file, or every unit file of a directory, and adds the
// units to the session.
func (l *Loader) Load(path string, library bool) ([]*ast.Unit, error) {
	units, err := l.read(path, library)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		l.ctx.AddUnit(u)
	}
	return units, nil
}

func (l *Loader) read(path string, library bool) ([]*ast.Unit, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}
	if !info.IsDir() {
		u, err := l.readFile(path, library)
		if err != nil || u == nil {
			return nil, err
		}
		return []*ast.Unit{u}, nil
	}
	files, err := sourceFiles(path)
	if err != nil {
		return nil, err
	}
	var units []*ast.Unit
	for _, f := range files {
		u, err := l.readFile(f, library)
		if err != nil {
			return nil, err
		}
		if u != nil {
			units = append(units, u)
		}
	}
	return units, nil
}

// readFile returns nil for a file already loaded.
func (l *Loader) readFile(path string, library bool) (*ast.Unit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}
	if l.loaded[abs] {
		return nil, nil
	}
	l.loaded[abs] = true
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}
	u, err := astload.Decode(l.ctx.Arena, path, data)
	if err != nil {
		return nil, err
	}
	u.Library = u.Library || library
	l.ctx.Logger.Debug("modules.load", "unit", u.Name, "package", strings.Join(u.PackagePath, "."), "library", u.Library)
	return u, nil
}

func sourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", dir)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), config.SourceFileExt) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ResolveImport loads the longest package directory found under a library
// root that prefixes path, brings its units up to the running pass and
// resolves path again.
func (l *Loader) ResolveImport(path []string) ast.Node {
	for n := len(path); n > 0; n-- {
		for _, root := range l.roots {
			dir := filepath.Join(append([]string{root}, path[:n]...)...)
			files, err := sourceFiles(dir)
			if err != nil || len(files) == 0 {
				continue
			}
			units, err := l.read(dir, true)
			if err != nil {
				contract.Fail(err)
			}
			if len(units) == 0 {
				continue
			}
			nodes := make([]ast.Node, len(units))
			for i, u := range units {
				l.ctx.AddExtra(u)
				nodes[i] = u
			}
			l.ctx.SetupAll(nodes)
			l.ctx.Logger.Info("modules.import", "package", strings.Join(path[:n], "."), "units", len(units))
			return l.ctx.Symbols.ResolveQualified(path)
		}
	}
	return nil
}
