package modules

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/pipeline"
)

// Install adds one library unit per registered built-in package to ctx.
func Install(ctx *pipeline.PipelineContext) error {
	for _, p := range libraries {
		u, err := build(ctx.Arena, p)
		if err != nil {
			return err
		}
		ctx.AddUnit(u)
	}
	ctx.Logger.Debug("modules.install", "packages", len(libraries))
	return nil
}

func build(a *ast.Arena, p LibraryPackage) (*ast.Unit, error) {
	u := a.Unit("<"+p.Path+">", p.Path)
	u.Library = true
	for _, c := range p.Classes {
		cls := a.LibClass(c.Name)
		for _, name := range c.Params {
			cls.GenericParams = append(cls.GenericParams, a.TypeParam(name))
		}
		for _, m := range c.Methods {
			sig, err := ast.ParseSignature(a, m)
			if err != nil {
				return nil, errors.Wrapf(err, "library %s.%s", p.Path, c.Name)
			}
			f := a.LibFunc(sig.Name, sig.Spec, c.Name+"."+sig.Name)
			f.Static = sig.Static
			cls.AddDefinition(f)
		}
		u.Definitions = append(u.Definitions, cls)
	}
	return u, nil
}

// methodName extracts the function name from a signature string.
func methodName(sig string) string {
	sig = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(sig), "static "))
	if i := strings.IndexByte(sig, '('); i >= 0 {
		sig = sig[:i]
	}
	return strings.TrimSpace(sig)
}
