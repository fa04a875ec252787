package analyzer

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
	"github.com/funvibe/gml/internal/symbols"
	"github.com/funvibe/gml/internal/typesystem"
)

// TypeProcessor infers a type for every expression. Types flow both ways:
// up from literals and definitions, and down as the expected type of
// initializers, arguments, assigned values and returned values.
type TypeProcessor struct{}

func (p *TypeProcessor) Name() string { return TypesPass }

func (p *TypeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	processUnits(ctx, p)
	ty := newTyper(ctx)
	for _, u := range ctx.Ordered() {
		ctx.CurrentUnit = u
		ty.verify(u)
	}
	ctx.CurrentUnit = nil
	for _, x := range ctx.Extras() {
		ty.verify(x)
	}
	return ctx
}

func (p *TypeProcessor) Unit(ctx *pipeline.PipelineContext, u *ast.Unit) {
	newTyper(ctx).v.Visit(u)
}

func (p *TypeProcessor) Visit(ctx *pipeline.PipelineContext, n ast.Node) {
	newTyper(ctx).v.Visit(n)
}

type typer struct {
	ctx *pipeline.PipelineContext
	a   *ast.Arena
	t   *symbols.Table
	v   *ast.Visitor
}

// resolveAttr finds a member on the type-class of an attribute's object.
var resolveAttr = ast.NewOperation("resolveAttr", ast.MustExist)

func init() {
	member := func(target ast.Node, args ...any) any {
		ty, name := args[0].(*typer), args[1].(string)
		m := ty.t.FindMember(target, name)
		if m == nil {
			contract.Failf("%s has no member %s", describe(target), name)
		}
		return m
	}
	resolveAttr.Register(ast.KindClass, member).
		Register(ast.KindEnum, member).
		Register(ast.KindPackage, member)
}

func newTyper(ctx *pipeline.PipelineContext) *typer {
	ty := &typer{ctx: ctx, a: ctx.Arena, t: ctx.Symbols}
	v := ast.NewVisitor(TypesPass)
	ty.v = v

	v.On(ast.KindUnit, func(v *ast.Visitor, n ast.Node) any {
		ast.VisitEach(v, n.(*ast.Unit).Definitions)
		return nil
	})
	v.On(ast.KindClass, ty.class)
	v.On(ast.KindExtension, func(v *ast.Visitor, n ast.Node) any {
		ast.VisitEach(v, n.(*ast.ExtensionDef).Definitions)
		return nil
	})
	v.On(ast.KindFunc, func(_ *ast.Visitor, n ast.Node) any {
		ty.function(n.(*ast.FuncDef))
		return nil
	})
	v.On(ast.KindVar, func(_ *ast.Visitor, n ast.Node) any {
		ty.variable(n.(*ast.VarDef))
		return nil
	})
	for _, k := range []ast.Kind{
		ast.KindType, ast.KindGenericArg, ast.KindGenericParam, ast.KindScript,
		ast.KindImport, ast.KindEnum, ast.KindTypeDef,
	} {
		v.On(k, skip)
	}
	ty.expressions()
	ty.statements()
	return ty
}

// on registers an expression handler that runs only while n is untyped.
func (ty *typer) on(kind ast.Kind, fn func(n ast.Node)) {
	ty.v.On(kind, func(_ *ast.Visitor, n ast.Node) any {
		if n.Meta().Type == nil {
			fn(n)
		}
		return nil
	})
}

// expr types e with an optional expected type and returns the result,
// which is nil only for empty literals that wait for a context.
func (ty *typer) expr(e ast.Expr, expected ast.Type) ast.Type {
	if e == nil {
		return nil
	}
	m := e.Meta()
	if expected != nil && m.Expected == nil {
		m.Expected = expected
	}
	if m.Type == nil {
		ty.v.Visit(e)
	}
	return m.Type
}

func (ty *typer) lang(name string) ast.Type { return ty.ctx.LangType(name) }

// classOf returns the type-class of t: a class, an enum or a package.
func (ty *typer) classOf(t ast.Type) ast.Node {
	if t == nil {
		return nil
	}
	switch x := typesystem.Normalize(ty.a, t).(type) {
	case *ast.FuncSpec:
		return ty.ctx.LangClass(config.FunctionTypeName)
	case *ast.UserType:
		switch target := ty.a.Get(x.Target).(type) {
		case *ast.ClassDef, *ast.EnumDef, *ast.Package:
			return target
		}
	}
	return nil
}

func (ty *typer) classDefOf(t ast.Type) *ast.ClassDef {
	cls, _ := ty.classOf(t).(*ast.ClassDef)
	return cls
}

// builtin reports the sys.lang name of cls or of its prototype.
func (ty *typer) builtin(cls *ast.ClassDef) string {
	if cls == nil || !cls.IsLibrary() {
		return ""
	}
	if proto, ok := ty.a.Get(cls.Prototype).(*ast.ClassDef); ok {
		return proto.Name
	}
	return cls.Name
}

func binding(cls *ast.ClassDef, name string) ast.Type {
	arg, ok := cls.Instantiation.Binding(name)
	contract.Assertf(ok, "%s has no parameter %s", cls.Name, name)
	return arg.Type
}

func (ty *typer) listOf(elem ast.Type) ast.Type {
	proto := ty.ctx.LangClass(config.ListTypeName)
	contract.Assertf(proto != nil, "sys.lang.List is not registered")
	inst := ty.ctx.Generics.Instantiate(proto, []*ast.GenericArg{ty.a.TypeArg(elem)})
	return selfType(ty.a, inst)
}

func (ty *typer) dictOf(k, v ast.Type) ast.Type {
	proto := ty.ctx.LangClass(config.DictTypeName)
	contract.Assertf(proto != nil, "sys.lang.Dict is not registered")
	inst := ty.ctx.Generics.Instantiate(proto, []*ast.GenericArg{ty.a.TypeArg(k), ty.a.TypeArg(v)})
	return selfType(ty.a, inst)
}

func (ty *typer) class(v *ast.Visitor, n ast.Node) any {
	cls := n.(*ast.ClassDef)
	if cls.IsPrototype() || cls.Flags.BeginTyping() {
		return nil
	}
	v.VisitChildren(cls)
	cls.Flags.Typed = true
	return nil
}

func (ty *typer) function(f *ast.FuncDef) {
	if f.Flags.BeginTyping() {
		return
	}
	ty.params(f.Spec)
	if f.Body != nil {
		ty.v.Visit(f.Body)
		if f.Spec.Return == nil {
			f.Spec.Return = ty.inferReturn(f.Body)
		}
	}
	if f.Spec.Return == nil {
		f.Spec.Return = ty.lang(config.VoidTypeName)
	}
	f.Flags.Typed = true
}

func (ty *typer) params(spec *ast.FuncSpec) {
	for _, p := range spec.Params {
		ty.param(p)
	}
}

func (ty *typer) param(p *ast.Param) {
	if p.Meta().Type != nil {
		return
	}
	contract.Assertf(p.Type != nil, "parameter %s has no type", p.Name)
	p.Meta().SetType(p.Type)
	ty.expr(p.Default, p.Type)
}

// inferReturn takes the type of the last return statement, or Void.
func (ty *typer) inferReturn(body ast.Node) ast.Type {
	last := lastReturn(body)
	if last == nil || last.Value == nil {
		return ty.lang(config.VoidTypeName)
	}
	t := last.Value.Meta().Type
	contract.Assertf(t != nil, "type of the returned value cannot be inferred")
	return t
}

func lastReturn(n ast.Node) *ast.Return {
	var last *ast.Return
	for _, c := range n.Children() {
		switch x := c.(type) {
		case *ast.Return:
			last = x
		case *ast.Closure:
		default:
			if r := lastReturn(c); r != nil {
				last = r
			}
		}
	}
	return last
}

func (ty *typer) variable(x *ast.VarDef) {
	if x.Flags.BeginTyping() {
		return
	}
	switch {
	case x.Decl != nil:
		ty.expr(x.Initial, x.Decl)
		x.SetType(x.Decl)
	case x.Initial != nil:
		if t := ty.expr(x.Initial, nil); t != nil {
			x.SetType(t)
		} else {
			x.Pending = true
		}
	default:
		contract.Failf("variable %s has neither a type nor an initial value", x.Name)
	}
	x.Flags.Typed = true
}

// bind gives a pending variable the type its first usage expects.
func (ty *typer) bind(x *ast.VarDef, t ast.Type) {
	x.SetType(t)
	x.Pending = false
	ty.expr(x.Initial, t)
	ty.ctx.Logger.Debug("types.bind_pending", "var", x.Name, "type", t.String())
}

// typeOfDef returns the type an expression referring to def has; use is
// the referring expression, consulted for its expected type.
func (ty *typer) typeOfDef(def ast.Node, use ast.Expr) ast.Type {
	switch x := def.(type) {
	case *ast.VarDef:
		ty.v.Visit(x)
		if x.Pending {
			expected := use.Meta().Expected
			contract.Assertf(expected != nil, "type of %s cannot be inferred from this use", x.Name)
			ty.bind(x, expected)
		}
		contract.Assertf(x.Type != nil, "variable %s is used in its own initializer", x.Name)
		return x.Type
	case *ast.Param:
		ty.param(x)
		return x.Meta().Type
	case *ast.FuncDef:
		ty.v.Visit(x)
		return x.Spec
	case *ast.ClassDef, *ast.EnumDef, *ast.Package:
		return selfType(ty.a, x)
	case *ast.EnumItem:
		return selfType(ty.a, ty.a.Owner(x))
	case *ast.Literal:
		ty.v.Visit(x)
		return x.Type
	}
	contract.Failf("%s cannot be used as a value", describe(def))
	return nil
}

// verify checks that every expression under n has a type with a type-class
// and that no variable stayed pending.
func (ty *typer) verify(n ast.Node) {
	for _, c := range n.Children() {
		switch c.Kind() {
		case ast.KindUserType, ast.KindFuncSpec, ast.KindScript, ast.KindGenericArg,
			ast.KindTypeParam, ast.KindVariadicParam, ast.KindLiteralParam, ast.KindImport:
			continue
		}
		if x, ok := c.(*ast.VarDef); ok {
			contract.Assertf(!x.Pending && x.Type != nil, "type of variable %s cannot be inferred", x.Name)
		}
		if s, ok := c.(*ast.Switch); ok && !s.IsExpr {
			ty.verify(c)
			continue
		}
		if _, ok := c.(ast.Expr); ok {
			t := c.Meta().Type
			contract.Assertf(t != nil, "%s has no type", describe(c))
			contract.Assertf(ty.classOf(t) != nil, "type %s of %s has no type-class", t, describe(c))
		}
		ty.verify(c)
	}
}

func describe(n ast.Node) string {
	switch x := n.(type) {
	case *ast.ClassDef:
		if x == nil {
			return "a non-class value"
		}
		return "class " + x.Name
	case *ast.EnumDef:
		return "enum " + x.Name
	case *ast.Package:
		return "package " + x.QualifiedName()
	case *ast.FuncDef:
		return "function " + x.Name
	case *ast.VarDef:
		return "variable " + x.Name
	case *ast.Identifier:
		return "name " + x.Name
	case *ast.AttrRef:
		return "attribute " + x.Name
	case nil:
		return "nothing"
	}
	return n.Kind().String()
}
