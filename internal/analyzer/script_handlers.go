package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
)

func init() {
	RegisterScript(config.NameScript, nameScript{})
	RegisterScript(config.SingletonScript, singletonScript{})
	RegisterScript(config.MixinScript, mixinScript{})
	RegisterScript(config.LoggerScript, loggerScript{})
	RegisterScript(config.StaticMethodScript, staticMethodScript{})
}

type noResolve struct{}

func (noResolve) Resolve(*pipeline.PipelineContext, *ast.Script, ast.Node) {}

func classTarget(s *ast.Script, target ast.Node) *ast.ClassDef {
	cls, ok := target.(*ast.ClassDef)
	contract.Assertf(ok, "script %s applies to classes, not %v", s.Name, target.Kind())
	return cls
}

// nameScript synthesizes getClassName() => String.
type nameScript struct{ noResolve }

func (nameScript) Inheritable() bool { return true }

func (nameScript) Process(ctx *pipeline.PipelineContext, s *ast.Script, target ast.Node) {
	cls := classTarget(s, target)
	if ownMember(cls, config.GetClassNameFunc) {
		return
	}
	a := ctx.Arena
	f := a.Func(config.GetClassNameFunc, a.Spec(a.Named(config.StringTypeName)), a.Body(a.Return(a.Str(cls.Name))))
	addMember(ctx, cls, f)
}

// singletonScript marks the class and synthesizes the static accessor.
type singletonScript struct{ noResolve }

func (singletonScript) Inheritable() bool { return false }

func (singletonScript) Process(ctx *pipeline.PipelineContext, s *ast.Script, target ast.Node) {
	cls := classTarget(s, target)
	cls.Singleton = true
	if ownMember(cls, config.InstanceFunc) {
		return
	}
	a := ctx.Arena
	f := a.Func(config.InstanceFunc, a.Spec(selfType(a, cls)), a.Body())
	f.Static = true
	f.SingletonAccessor = true
	addMember(ctx, cls, f)
}

// loggerScript injects a logger field named after the class.
type loggerScript struct{ noResolve }

func (loggerScript) Inheritable() bool { return true }

func (loggerScript) Process(ctx *pipeline.PipelineContext, s *ast.Script, target ast.Node) {
	cls := classTarget(s, target)
	if ownMember(cls, config.LoggerVar) {
		return
	}
	a := ctx.Arena
	sys := config.SysPackage + "."
	initial := a.Call(a.Path(sys+config.LoggingClass+"."+config.GetLoggerFunc), a.Str(cls.Name))
	addMember(ctx, cls, a.Var(config.LoggerVar, a.Named(sys+config.LoggerClass), initial))
}

// staticMethodScript marks a function as static.
type staticMethodScript struct{ noResolve }

func (staticMethodScript) Inheritable() bool { return false }

func (staticMethodScript) Process(_ *pipeline.PipelineContext, s *ast.Script, target ast.Node) {
	f, ok := target.(*ast.FuncDef)
	contract.Assertf(ok, "script %s applies to functions, not %v", s.Name, target.Kind())
	f.Static = true
}

// mixinScript is mixin(Type, field, getter, args...). Process declares the
// field (and the getter), constructed with the remaining positional and
// named script arguments; Resolve forwards every public method of Type and
// its bases that the class does not define itself.
type mixinScript struct{}

func (mixinScript) Inheritable() bool { return false }

type mixinArgs struct {
	path   []string
	field  string
	getter string
}

func parseMixin(s *ast.Script) mixinArgs {
	contract.Assertf(len(s.Args) >= 1, "mixin needs the mixed-in type")
	m := mixinArgs{path: exprPath(s.Args[0])}
	m.field = lowerFirst(m.path[len(m.path)-1])
	if len(s.Args) > 1 {
		m.field = exprPath(s.Args[1])[0]
	}
	if len(s.Args) > 2 {
		m.getter = exprPath(s.Args[2])[0]
	}
	return m
}

func (mixinScript) Process(ctx *pipeline.PipelineContext, s *ast.Script, target ast.Node) {
	cls := classTarget(s, target)
	m := parseMixin(s)
	a := ctx.Arena
	if !ownMember(cls, m.field) {
		var args []ast.Expr
		if len(s.Args) > 3 {
			args = make([]ast.Expr, 0, len(s.Args)-3)
			for _, x := range s.Args[3:] {
				args = append(args, ast.Clone(a, x))
			}
		}
		named := make([]*ast.NamedArg, len(s.NamedArgs))
		for i, n := range s.NamedArgs {
			named[i] = ast.Clone(a, n)
		}
		initial := a.CallNamed(a.Path(strings.Join(m.path, ".")), args, named...)
		addMember(ctx, cls, a.Var(m.field, a.UserType(m.path), initial))
	}
	if m.getter != "" && !ownMember(cls, m.getter) {
		getter := a.Func(m.getter, a.Spec(a.UserType(m.path)), a.Body(a.Return(a.Ident(m.field))))
		addMember(ctx, cls, getter)
	}
}

func (mixinScript) Resolve(ctx *pipeline.PipelineContext, s *ast.Script, target ast.Node) {
	cls := classTarget(s, target)
	m := parseMixin(s)
	mix, ok := ctx.Symbols.ResolvePath(cls, m.path).(*ast.ClassDef)
	contract.Assertf(ok, "mixin %s of %s is not a class", strings.Join(m.path, "."), cls.Name)
	s.Resolved = mix.ID

	a := ctx.Arena
	for _, src := range mixinChain(ctx, mix) {
		for _, d := range src.Definitions {
			f, ok := d.(*ast.FuncDef)
			if !ok || f.Static || f.FuncKind != ast.FuncNormal || !exported(f.Name) {
				continue
			}
			if ctx.Symbols.FindLocal(cls, f.Name) != nil {
				continue
			}
			spec := ast.Clone(a, f.Spec)
			args := make([]ast.Expr, len(spec.Params))
			for i, p := range spec.Params {
				args[i] = a.Ident(p.Name)
			}
			call := a.Call(a.Attr(a.Ident(m.field), f.Name), args...)
			addMember(ctx, cls, a.Func(f.Name, spec, a.Body(a.Return(call))))
			ctx.Logger.Debug("scripts.mixin_forward", "class", cls.Name, "method", f.Name, "mixin", src.Name)
		}
	}
}

// mixinChain lists mix followed by its bases, nearest first. Bases are
// looked up by path when their own unit has not been through the names
// pass yet.
func mixinChain(ctx *pipeline.PipelineContext, mix *ast.ClassDef) []*ast.ClassDef {
	seen := map[ast.NodeID]bool{}
	var out []*ast.ClassDef
	queue := []*ast.ClassDef{mix}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
		for _, u := range c.Bases {
			base, ok := ctx.Arena.Get(u.Target).(*ast.ClassDef)
			if !ok {
				base, ok = ctx.Symbols.ResolvePath(c, u.Path).(*ast.ClassDef)
			}
			if ok {
				queue = append(queue, base)
			}
		}
	}
	return out
}

// exprPath reads an identifier or attribute chain as a dotted path.
func exprPath(e ast.Expr) []string {
	switch x := e.(type) {
	case *ast.Identifier:
		return []string{x.Name}
	case *ast.AttrRef:
		return append(exprPath(x.Object), x.Name)
	}
	contract.Failf("expected a name, got %v", e.Kind())
	return nil
}

func isVoid(t ast.Type) bool {
	return t == nil || t.String() == config.VoidTypeName
}

func exported(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}
