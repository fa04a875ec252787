package analyzer

import (
	"strings"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
	"github.com/funvibe/gml/internal/symbols"
	"github.com/funvibe/gml/internal/typesystem"
)

// NameProcessor resolves imports, identifiers, type references, base lists
// and extension receivers, instantiating generic classes on the way.
type NameProcessor struct{}

func (p *NameProcessor) Name() string { return NamesPass }

func (p *NameProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return processUnits(ctx, p)
}

func (p *NameProcessor) Unit(ctx *pipeline.PipelineContext, u *ast.Unit) {
	p.visitor(ctx).Visit(u)
}

func (p *NameProcessor) Visit(ctx *pipeline.PipelineContext, n ast.Node) {
	p.visitor(ctx).Visit(n)
}

type resolver struct {
	ctx *pipeline.PipelineContext
	a   *ast.Arena
	t   *symbols.Table
}

func (p *NameProcessor) visitor(ctx *pipeline.PipelineContext) *ast.Visitor {
	r := &resolver{ctx: ctx, a: ctx.Arena, t: ctx.Symbols}
	return ast.NewVisitor(NamesPass).
		On(ast.KindUnit, r.unit).
		On(ast.KindClass, r.class).
		On(ast.KindExtension, r.extension).
		On(ast.KindFunc, r.function).
		On(ast.KindUserType, r.userType).
		On(ast.KindIdent, r.ident).
		On(ast.KindStringEval, r.stringEval).
		On(ast.KindGenericExpr, r.genericExpr).
		On(ast.KindScript, skip).
		On(ast.KindImport, skip)
}

func (r *resolver) unit(v *ast.Visitor, n ast.Node) any {
	u := n.(*ast.Unit)
	for _, imp := range u.Imports {
		r.importDecl(u, imp)
	}
	ast.VisitEach(v, u.Definitions)
	return nil
}

func (r *resolver) importDecl(u *ast.Unit, imp *ast.Import) {
	if imp.Target != ast.NoNode {
		return
	}
	target := r.t.ResolveQualified(imp.Path)
	if target == nil && r.ctx.External != nil {
		target = r.ctx.External.ResolveImport(imp.Path)
	}
	contract.Assertf(target != nil, "unresolved import %s", strings.Join(imp.Path, "."))
	imp.Target = target.Meta().ID
	r.t.MustDeclare(u, imp.LocalName(), target)
}

func (r *resolver) class(v *ast.Visitor, n ast.Node) any {
	cls := n.(*ast.ClassDef)
	if cls.IsPrototype() || cls.Flags.Named {
		return nil
	}
	r.header(v, cls)
	cls.Flags.Named = true
	v.VisitChildren(cls)
	return nil
}

// header resolves the base list of cls, records the subclass links, copies
// inheritable scripts down and runs the Resolve hook of every script.
func (r *resolver) header(v *ast.Visitor, cls *ast.ClassDef) {
	if cls.Flags.Headed {
		return
	}
	cls.Flags.Headed = true
	for _, b := range cls.Bases {
		v.Visit(b)
		base, ok := typesystem.TypeClassOf(r.a, b).(*ast.ClassDef)
		contract.Assertf(ok, "base %s of %s is not a class", b, cls.Name)
		r.header(v, base)
		contract.Assertf(!typesystem.IsSubClass(r.a, base, cls), "cyclic inheritance between %s and %s", cls.Name, base.Name)
		base.Subclasses = append(base.Subclasses, cls.ID)
		r.inherit(cls, base)
	}
	for _, s := range cls.Scripts {
		if s.MarkResolved() {
			continue
		}
		scriptHandler(s).Resolve(r.ctx, s, cls)
	}
}

func (r *resolver) inherit(cls, base *ast.ClassDef) {
	for _, s := range base.Scripts {
		h := scriptHandler(s)
		if !h.Inheritable() || hasScript(cls, s.Name) {
			continue
		}
		c := ast.Clone(r.a, s)
		c.Inherited = true
		cls.Scripts = append(cls.Scripts, c)
		r.ctx.Setup(c, cls)
		if !c.MarkProcessed() {
			h.Process(r.ctx, c, cls)
		}
		r.ctx.Logger.Debug("names.inherit_script", "script", s.Name, "class", cls.Name, "base", base.Name)
	}
}

func (r *resolver) extension(v *ast.Visitor, n ast.Node) any {
	ext := n.(*ast.ExtensionDef)
	if ext.Flags.Named {
		return nil
	}
	ext.Flags.Named = true
	v.Visit(ext.Receiver)
	cls, ok := typesystem.TypeClassOf(r.a, ext.Receiver).(*ast.ClassDef)
	contract.Assertf(ok, "extension receiver %s is not a class", ext.Receiver)
	ext.Class = cls.ID
	for _, d := range ext.Definitions {
		switch x := d.(type) {
		case *ast.FuncDef:
			x.Class = cls.ID
			x.Injected = true
			r.t.MustDeclare(cls, x.Name, x)
		case *ast.VarDef:
			x.Class = cls.ID
			r.t.MustDeclare(cls, x.Name, x)
		}
	}
	ast.VisitEach(v, ext.Definitions)
	return nil
}

func (r *resolver) function(v *ast.Visitor, n ast.Node) any {
	f := n.(*ast.FuncDef)
	if f.Flags.Named {
		return nil
	}
	f.Flags.Named = true
	if f.FuncKind == ast.FuncConstructor && f.Spec.Return == nil {
		ret := selfType(r.a, r.a.Get(f.Class))
		f.Spec.Return = ret
		r.a.SetOwner(ret, f.Spec)
	}
	v.VisitChildren(f)
	return nil
}

func (r *resolver) userType(v *ast.Visitor, n ast.Node) any {
	u := n.(*ast.UserType)
	if u.Target != ast.NoNode {
		return nil
	}
	ast.VisitEach(v, u.GenericArgs)
	target := r.t.ResolvePath(u, u.Path)
	contract.Assertf(target != nil, "unresolved type %s", u)
	if cls, ok := target.(*ast.ClassDef); ok && cls.IsPrototype() {
		contract.Assertf(len(u.GenericArgs) > 0, "generic class %s used without arguments", cls.Name)
		target = r.ctx.Generics.Instantiate(cls, u.GenericArgs)
	} else {
		contract.Assertf(len(u.GenericArgs) == 0, "%s is not generic", strings.Join(u.Path, "."))
	}
	u.Target = target.Meta().ID
	return nil
}

func (r *resolver) ident(_ *ast.Visitor, n ast.Node) any {
	id := n.(*ast.Identifier)
	if id.Target != ast.NoNode {
		return nil
	}
	target := r.t.Lookup(id, id.Name)
	contract.Assertf(target != nil, "unresolved name %s", id.Name)
	id.Target = target.Meta().ID
	return nil
}

func (r *resolver) stringEval(v *ast.Visitor, n ast.Node) any {
	s := n.(*ast.StringEval)
	if s.Rewritten {
		ast.VisitEach(v, s.Args)
		return nil
	}
	format, paths := interpolate(s.Raw)
	s.Format = format
	s.Rewritten = true
	for _, p := range paths {
		arg := r.a.Path(p)
		s.Args = append(s.Args, arg)
		r.ctx.Setup(arg, s)
	}
	return nil
}

func (r *resolver) genericExpr(v *ast.Visitor, n ast.Node) any {
	g := n.(*ast.GenericExpr)
	if g.Target != ast.NoNode {
		return nil
	}
	v.Visit(g.Base)
	ast.VisitEach(v, g.GenericArgs)
	proto, ok := r.staticTarget(g.Base).(*ast.ClassDef)
	contract.Assertf(ok && proto.IsPrototype(), "generic arguments applied to a non-generic value")
	g.Target = r.ctx.Generics.Instantiate(proto, g.GenericArgs).ID
	return nil
}

// staticTarget resolves a name or a package/class member chain without
// types.
func (r *resolver) staticTarget(e ast.Expr) ast.Node {
	switch x := e.(type) {
	case *ast.Identifier:
		return r.a.Get(x.Target)
	case *ast.AttrRef:
		if x.Target == ast.NoNode {
			if m := r.t.FindMember(r.staticTarget(x.Object), x.Name); m != nil {
				x.Target = m.Meta().ID
			}
		}
		return r.a.Get(x.Target)
	}
	return nil
}

// interpolate splits a `$name` / `${a.b}` template into a format string
// with %s placeholders and the referenced paths. `$$` is a literal dollar.
func interpolate(raw string) (string, []string) {
	var b strings.Builder
	var paths []string
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		next := byte(0)
		if i+1 < len(raw) {
			next = raw[i+1]
		}
		switch {
		case c == '%':
			b.WriteString("%%")
		case c == '$' && next == '$':
			b.WriteByte('$')
			i++
		case c == '$' && next == '{':
			end := strings.IndexByte(raw[i+2:], '}')
			contract.Assertf(end >= 0, "unterminated interpolation in %q", raw)
			path := strings.TrimSpace(raw[i+2 : i+2+end])
			contract.Assertf(path != "", "empty interpolation in %q", raw)
			paths = append(paths, path)
			b.WriteString("%s")
			i += 2 + end
		case c == '$' && isIdentStart(next):
			j := i + 1
			for j < len(raw) && isIdentPart(raw[j]) {
				j++
			}
			paths = append(paths, raw[i+1:j])
			b.WriteString("%s")
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), paths
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}
