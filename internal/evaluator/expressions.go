package evaluator

import (
	"fmt"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/typesystem"
)

func (ev *Evaluator) eval(e ast.Expr, f *Frame) Object {
	switch x := e.(type) {
	case *ast.Literal:
		return literal(x)
	case *ast.Nil:
		return NIL
	case *ast.This:
		contract.Assertf(f.This != nil, "this outside of a method")
		return f.This
	case *ast.Identifier:
		return ev.evalIdent(x, f)
	case *ast.AttrRef:
		return ev.evalAttr(x, f)
	case *ast.Call:
		return ev.evalCall(x, f)
	case *ast.ListLiteral:
		l := &List{Class: ev.classDef(x.Type)}
		for _, v := range x.Values {
			l.Elements = append(l.Elements, ev.eval(v, f))
		}
		return l
	case *ast.DictLiteral:
		d := newDict(ev.classDef(x.Type))
		for _, it := range x.Items {
			k := ev.eval(it.Key, f)
			d.Set(k, ev.eval(it.Value, f))
		}
		return d
	case *ast.StringEval:
		args := make([]any, len(x.Args))
		for i, a := range x.Args {
			args[i] = ev.eval(a, f).Inspect()
		}
		return &String{Value: fmt.Sprintf(x.Format, args...)}
	case *ast.Subscript:
		return ev.evalIndex(x, f)
	case *ast.BinaryOp:
		return ev.evalBinary(x, f)
	case *ast.UnaryOp:
		v := ev.eval(x.Operand, f)
		return ev.unaryOp(ev.typeClass(x.Operand.Meta().Type), x.Op, v)
	case *ast.IfElseExpr:
		if ev.truthy(ev.eval(x.Cond, f)) {
			return ev.eval(x.Then, f)
		}
		return ev.eval(x.Else, f)
	case *ast.Closure:
		return &Closure{Def: x, Env: f.capture()}
	case *ast.GenericExpr:
		return &TypeRef{Def: ev.a.Get(x.Target)}
	case *ast.TypeCast:
		return ev.cast(ev.eval(x.Value, f), x.To)
	case *ast.Switch:
		return ev.match(x, f)
	}
	contract.Failf("cannot evaluate %v", e.Kind())
	return nil
}

func literal(l *ast.Literal) Object {
	switch l.LitKind {
	case ast.LitInt:
		return &Integer{Value: l.Int}
	case ast.LitFloat:
		return &Float{Value: l.Float}
	case ast.LitBool:
		return nativeBool(l.Bool)
	case ast.LitChar:
		return &Char{Value: []rune(l.Str)[0]}
	}
	return &String{Value: l.Str}
}

func (ev *Evaluator) truthy(o Object) bool {
	b, ok := o.(*Boolean)
	contract.Assertf(ok, "condition is %s, not Bool", repr(o))
	return b.Value
}

func (ev *Evaluator) evalIdent(id *ast.Identifier, f *Frame) Object {
	target := ev.a.Get(id.Target)
	switch d := target.(type) {
	case *ast.VarDef, *ast.Param:
		if v, ok := f.lookup(target.Meta().ID); ok {
			return v
		}
		if x, ok := d.(*ast.VarDef); ok && isGlobal(ev.a, x) {
			return ev.global(x)
		}
		contract.Failf("%s is not bound", id.Name)
	case *ast.FuncDef:
		return ev.funcValue(d, f.This)
	}
	return ev.defValue(target, id.Name)
}

// funcValue binds instance methods to the receiver in scope.
func (ev *Evaluator) funcValue(fn *ast.FuncDef, this Object) Object {
	if fn.Static || fn.Class == ast.NoNode {
		return &Function{Def: fn}
	}
	return &Function{Def: fn, This: this}
}

// defValue is the value of a definition that needs no frame.
func (ev *Evaluator) defValue(def ast.Node, name string) Object {
	switch d := def.(type) {
	case *ast.ClassDef, *ast.EnumDef:
		return &TypeRef{Def: d}
	case *ast.Package:
		return &PackageRef{Package: d}
	case *ast.EnumItem:
		return &EnumValue{Enum: ev.a.Owner(d).(*ast.EnumDef), Item: d}
	case *ast.Literal:
		return literal(d)
	case *ast.VarDef:
		contract.Assertf(isGlobal(ev.a, d), "%s is not a global", d.Name)
		return ev.global(d)
	case *ast.FuncDef:
		return ev.funcValue(d, nil)
	}
	contract.Failf("%s cannot be used as a value", name)
	return nil
}

func (ev *Evaluator) evalAttr(r *ast.AttrRef, f *Frame) Object {
	target := ev.a.Get(r.Target)
	obj := ev.eval(r.Object, f)
	switch d := target.(type) {
	case *ast.VarDef:
		if inst, ok := obj.(*Instance); ok {
			v, found := inst.Field(d.ID)
			contract.Assertf(found, "%s has no field %s", inst.Class.Name, d.Name)
			return v
		}
		contract.Assertf(obj.Type() == TYPE_OBJ || obj.Type() == PACKAGE_OBJ, "%s has no field %s", repr(obj), d.Name)
	case *ast.FuncDef:
		switch obj.(type) {
		case *TypeRef, *PackageRef:
			return ev.funcValue(d, nil)
		}
		return ev.funcValue(d, obj)
	}
	return ev.defValue(target, r.Name)
}

func (ev *Evaluator) evalCall(c *ast.Call, f *Frame) Object {
	inv := &invocation{ev: ev}
	target := ev.a.Get(c.Target)
	var callee Object
	switch d := target.(type) {
	case *ast.ClassDef:
		callee = &TypeRef{Def: d}
	case *ast.FuncDef:
		if d.FuncKind == ast.FuncConstructor {
			callee = &Function{Def: d}
		}
	}
	if callee == nil {
		callee = ev.eval(c.Caller, f)
	}
	for _, a := range c.Args {
		inv.args = append(inv.args, ev.eval(a, f))
	}
	for _, na := range c.NamedArgs {
		inv.named = append(inv.named, namedValue{target: ev.a.Get(na.Target), value: ev.eval(na.Value, f)})
	}
	return ev.apply(callee, inv)
}

func (ev *Evaluator) evalIndex(s *ast.Subscript, f *Frame) Object {
	coll := ev.eval(s.Collection, f)
	key := ev.eval(s.Key, f)
	switch c := coll.(type) {
	case *List:
		return c.Elements[listIndex(c, key)]
	case *String:
		runes := []rune(c.Value)
		i := index(key, len(runes))
		return &Char{Value: runes[i]}
	case *Dict:
		v, ok := c.Get(key)
		if !ok {
			contract.Failf("key %s not found", repr(key))
		}
		return v
	}
	contract.Failf("%s cannot be indexed", repr(coll))
	return nil
}

func listIndex(l *List, key Object) int { return index(key, len(l.Elements)) }

func index(key Object, n int) int {
	i, ok := key.(*Integer)
	contract.Assertf(ok, "index %s is not an Int", repr(key))
	contract.Assertf(i.Value >= 0 && i.Value < int64(n), "index %d out of range [0, %d)", i.Value, n)
	return int(i.Value)
}

func (ev *Evaluator) evalBinary(b *ast.BinaryOp, f *Frame) Object {
	switch b.Op {
	case "&&", "and":
		return nativeBool(ev.truthy(ev.eval(b.Left, f)) && ev.truthy(ev.eval(b.Right, f)))
	case "||", "or":
		return nativeBool(ev.truthy(ev.eval(b.Left, f)) || ev.truthy(ev.eval(b.Right, f)))
	}
	l := ev.eval(b.Left, f)
	r := ev.eval(b.Right, f)
	return ev.binaryOp(ev.typeClass(b.Left.Meta().Type), b.Op, l, r)
}

// cast converts numbers and strings and checks class casts.
func (ev *Evaluator) cast(v Object, to ast.Type) Object {
	target := ev.typeClass(to)
	cls, _ := target.(*ast.ClassDef)
	switch ev.libName(cls) {
	case config.FloatTypeName:
		if i, ok := v.(*Integer); ok {
			return &Float{Value: float64(i.Value)}
		}
	case config.IntTypeName:
		switch x := v.(type) {
		case *Float:
			return &Integer{Value: int64(x.Value)}
		case *Char:
			return &Integer{Value: int64(x.Value)}
		}
	case config.StringTypeName:
		return &String{Value: v.Inspect()}
	case config.AnyTypeName:
		return v
	}
	if inst, ok := v.(*Instance); ok && cls != nil {
		contract.Assertf(typesystem.IsSubClass(ev.a, inst.Class, cls), "cannot cast %s to %s", inst.Class.Name, cls.Name)
	}
	return v
}
