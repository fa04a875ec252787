package analyzer

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/typesystem"
)

var literalTypes = map[ast.LiteralKind]string{
	ast.LitInt:    config.IntTypeName,
	ast.LitFloat:  config.FloatTypeName,
	ast.LitBool:   config.BoolTypeName,
	ast.LitChar:   config.CharTypeName,
	ast.LitString: config.StringTypeName,
}

var boolOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true, "and": true, "or": true, "in": true, "not in": true,
}

func (ty *typer) expressions() {
	a := ty.a

	ty.on(ast.KindPrimitive, func(n ast.Node) {
		n.Meta().SetType(ty.lang(literalTypes[n.(*ast.Literal).LitKind]))
	})

	ty.on(ast.KindNil, func(n ast.Node) {
		if e := n.Meta().Expected; e != nil {
			n.Meta().SetType(e)
		}
	})

	ty.on(ast.KindIdent, func(n ast.Node) {
		id := n.(*ast.Identifier)
		target := a.Get(id.Target)
		contract.Assertf(target != nil, "name %s is unresolved", id.Name)
		id.SetType(ty.typeOfDef(target, id))
	})

	ty.on(ast.KindThis, func(n ast.Node) {
		owner := a.OwnerOfKind(n, ast.KindClass, ast.KindExtension)
		if ext, ok := owner.(*ast.ExtensionDef); ok {
			owner = a.Get(ext.Class)
		}
		contract.Assertf(owner != nil, "this outside of a class")
		n.Meta().SetType(selfType(a, owner))
	})

	ty.on(ast.KindStringEval, func(n ast.Node) {
		s := n.(*ast.StringEval)
		for _, arg := range s.Args {
			ty.expr(arg, nil)
		}
		s.SetType(ty.lang(config.StringTypeName))
	})

	ty.on(ast.KindListLiteral, ty.listLiteral)
	ty.on(ast.KindDictLiteral, ty.dictLiteral)
	ty.on(ast.KindCall, ty.call)
	ty.on(ast.KindAttr, ty.attr)
	ty.on(ast.KindSubscript, ty.subscript)
	ty.on(ast.KindClosure, ty.closure)

	ty.on(ast.KindBinary, func(n ast.Node) {
		b := n.(*ast.BinaryOp)
		lt := ty.expr(b.Left, nil)
		rt := ty.expr(b.Right, lt)
		if lt == nil && rt != nil {
			lt = ty.expr(b.Left, rt)
		}
		contract.Assertf(lt != nil && rt != nil, "operands of %s cannot be typed", b.Op)
		switch {
		case boolOps[b.Op]:
			b.SetType(ty.lang(config.BoolTypeName))
		case ty.builtin(ty.classDefOf(lt)) == config.IntTypeName && ty.builtin(ty.classDefOf(rt)) == config.FloatTypeName:
			b.SetType(rt)
		default:
			b.SetType(lt)
		}
	})

	ty.on(ast.KindUnary, func(n ast.Node) {
		u := n.(*ast.UnaryOp)
		t := ty.expr(u.Operand, nil)
		contract.Assertf(t != nil, "operand of %s cannot be typed", u.Op)
		if u.Op == "!" || u.Op == "not" {
			t = ty.lang(config.BoolTypeName)
		}
		u.SetType(t)
	})

	ty.on(ast.KindIfElse, func(n ast.Node) {
		x := n.(*ast.IfElseExpr)
		ty.expr(x.Cond, ty.lang(config.BoolTypeName))
		t := ty.expr(x.Then, x.Expected)
		if et := ty.expr(x.Else, t); t == nil {
			t = et
			ty.expr(x.Then, t)
		}
		contract.Assertf(t != nil, "branches of a conditional expression cannot be typed")
		x.SetType(t)
	})

	ty.on(ast.KindGenericExpr, func(n ast.Node) {
		g := n.(*ast.GenericExpr)
		ty.expr(g.Base, nil)
		g.SetType(selfType(a, a.Get(g.Target)))
	})

	ty.on(ast.KindTypeCast, func(n ast.Node) {
		c := n.(*ast.TypeCast)
		ty.expr(c.Value, nil)
		c.SetType(c.To)
	})

	ty.on(ast.KindSwitch, ty.match)
}

func (ty *typer) listLiteral(n ast.Node) {
	l := n.(*ast.ListLiteral)
	exp := l.Expected
	var elem ast.Type
	isList := false
	if cls := ty.classDefOf(exp); ty.builtin(cls) == config.ListTypeName {
		elem, isList = binding(cls, config.ListItemParam), true
	}
	for _, e := range l.Values {
		if t := ty.expr(e, elem); elem == nil {
			elem = t
		}
	}
	switch {
	case isList:
		l.SetType(exp)
	case elem != nil:
		l.SetType(ty.listOf(elem))
	case exp != nil:
		l.SetType(exp)
	}
}

func (ty *typer) dictLiteral(n ast.Node) {
	d := n.(*ast.DictLiteral)
	exp := d.Expected
	var kt, vt ast.Type
	isDict := false
	if cls := ty.classDefOf(exp); ty.builtin(cls) == config.DictTypeName {
		kt, vt, isDict = binding(cls, config.DictKeyParam), binding(cls, config.DictValueParam), true
	}
	for _, it := range d.Items {
		if t := ty.expr(it.Key, kt); kt == nil {
			kt = t
		}
		if t := ty.expr(it.Value, vt); vt == nil {
			vt = t
		}
	}
	switch {
	case isDict:
		d.SetType(exp)
	case kt != nil && vt != nil:
		d.SetType(ty.dictOf(kt, vt))
	case exp != nil:
		d.SetType(exp)
	}
}

// callee returns the definition a caller expression names, if any.
func (ty *typer) callee(e ast.Expr) ast.Node {
	switch x := e.(type) {
	case *ast.Identifier:
		return ty.a.Get(x.Target)
	case *ast.AttrRef:
		return ty.a.Get(x.Target)
	case *ast.GenericExpr:
		return ty.a.Get(x.Target)
	}
	return nil
}

func accepts(spec *ast.FuncSpec, n int) bool {
	return n >= spec.MinArgs() && (spec.Variadic() || n <= len(spec.Params))
}

func paramType(spec *ast.FuncSpec, i int) ast.Type {
	if i >= len(spec.Params)-1 && spec.Variadic() {
		return spec.Params[len(spec.Params)-1].Type
	}
	return spec.Params[i].Type
}

func (ty *typer) call(n ast.Node) {
	c := n.(*ast.Call)
	ct := ty.expr(c.Caller, nil)
	contract.Assertf(ct != nil, "callee cannot be typed")

	if cls, ok := ty.callee(c.Caller).(*ast.ClassDef); ok {
		ctor := ty.constructor(cls, c)
		var spec *ast.FuncSpec
		if ctor != nil {
			c.Target = ctor.ID
			spec = ctor.Spec
			ty.arguments(spec, c)
		} else {
			c.Target = cls.ID
		}
		ty.namedArgs(spec, cls, c)
		c.SetType(selfType(ty.a, cls))
		return
	}

	spec, ok := typesystem.Normalize(ty.a, ct).(*ast.FuncSpec)
	contract.Assertf(ok, "%s is not callable", describe(ty.callee(c.Caller)))
	if f, ok := ty.callee(c.Caller).(*ast.FuncDef); ok {
		c.Target = f.ID
	}
	ty.arguments(spec, c)
	ty.namedArgs(spec, nil, c)
	contract.Assertf(spec.Return != nil, "return type of %s is needed before it is inferred", describe(ty.callee(c.Caller)))
	c.SetType(spec.Return)
}

func (ty *typer) constructor(cls *ast.ClassDef, c *ast.Call) *ast.FuncDef {
	for _, f := range cls.Constructors {
		if accepts(f.Spec, len(c.Args)) {
			ty.v.Visit(f)
			return f
		}
	}
	contract.Assertf(len(cls.Constructors) == 0 && len(c.Args) == 0,
		"no constructor of %s takes %d arguments", cls.Name, len(c.Args))
	return nil
}

func (ty *typer) arguments(spec *ast.FuncSpec, c *ast.Call) {
	contract.Assertf(accepts(spec, len(c.Args)), "call expects %d arguments, got %d", len(spec.Params), len(c.Args))
	for i, arg := range c.Args {
		ty.expr(arg, paramType(spec, i))
	}
}

// namedArgs binds name=value arguments to parameters, or to fields of cls
// for construction calls.
func (ty *typer) namedArgs(spec *ast.FuncSpec, cls *ast.ClassDef, c *ast.Call) {
	for _, na := range c.NamedArgs {
		var target ast.Node
		if spec != nil {
			for _, p := range spec.Params {
				if p.Name == na.Name {
					target = p
				}
			}
		}
		if target == nil && cls != nil {
			if f, ok := ty.t.FindMember(cls, na.Name).(*ast.VarDef); ok {
				target = f
			}
		}
		contract.Assertf(target != nil, "no parameter or field %s", na.Name)
		na.Target = target.Meta().ID
		ty.expr(na.Value, ty.typeOfDef(target, na.Value))
	}
}

func (ty *typer) attr(n ast.Node) {
	r := n.(*ast.AttrRef)
	ot := ty.expr(r.Object, nil)
	contract.Assertf(ot != nil, "type of the object of .%s is unknown", r.Name)
	if r.Target == ast.NoNode {
		owner := ty.classOf(ot)
		contract.Assertf(owner != nil, "%s has no members", ot)
		r.Target = resolveAttr.Invoke(owner, ty, r.Name).(ast.Node).Meta().ID
	}
	r.SetType(ty.typeOfDef(ty.a.Get(r.Target), r))
}

func (ty *typer) indexTypes(cls *ast.ClassDef) (key, item ast.Type) {
	switch ty.builtin(cls) {
	case config.ListTypeName:
		return ty.lang(config.IntTypeName), binding(cls, config.ListItemParam)
	case config.DictTypeName:
		return binding(cls, config.DictKeyParam), binding(cls, config.DictValueParam)
	case config.StringTypeName:
		return ty.lang(config.IntTypeName), ty.lang(config.CharTypeName)
	}
	contract.Failf("%s cannot be indexed", describe(cls))
	return nil, nil
}

func (ty *typer) subscript(n ast.Node) {
	s := n.(*ast.Subscript)
	ct := ty.expr(s.Collection, nil)
	key, item := ty.indexTypes(ty.classDefOf(ct))
	ty.expr(s.Key, key)
	s.SetType(item)
}

func (ty *typer) closure(n ast.Node) {
	c := n.(*ast.Closure)
	a := ty.a
	exp, _ := typesystem.Normalize(a, c.Expected).(*ast.FuncSpec)
	if c.Spec == nil {
		c.Spec = a.Spec(nil)
		a.SetOwner(c.Spec, c)
	}
	for i, p := range c.Spec.Params {
		if p.Type == nil && exp != nil && i < len(exp.Params) {
			p.Type = ast.Clone(a, exp.Params[i].Type)
			a.SetOwner(p.Type, p)
		}
	}
	if c.Spec.Return == nil && exp != nil && exp.Return != nil && !isVoid(exp.Return) {
		c.Spec.Return = exp.Return
	}
	ty.params(c.Spec)
	ty.v.Visit(c.Body)
	if c.Spec.Return == nil {
		c.Spec.Return = ty.inferReturn(c.Body)
	}
	c.SetType(c.Spec)
}

// match types a switch and checks that some case can match statically.
func (ty *typer) match(n ast.Node) {
	s := n.(*ast.Switch)
	st := ty.expr(s.Subject, nil)
	subject := ty.classDefOf(st)
	viable := s.Default() != nil
	var result ast.Type
	for _, e := range s.Entries {
		if e.Pattern != nil {
			ty.v.Visit(e.Pattern)
			p := ty.classDefOf(e.Pattern.Type)
			contract.Assertf(p != nil, "case pattern %s is not a class", e.Pattern.Name)
			if subject != nil && (typesystem.IsSubClass(ty.a, subject, p) || typesystem.IsSubClass(ty.a, p, subject)) {
				viable = true
			}
		}
		if e.Body != nil {
			ty.v.Visit(e.Body)
		}
		if e.Value != nil {
			if t := ty.expr(e.Value, s.Expected); result == nil {
				result = t
			}
		}
	}
	contract.Assertf(viable, "no case of the match on %s can apply and there is no default", st)
	if s.IsExpr {
		contract.Assertf(result != nil, "match expression has no typed case")
		s.SetType(result)
	}
}
