package evaluator

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/typesystem"
)

// invocation carries the evaluated arguments of a call to its target.
type invocation struct {
	ev      *Evaluator
	this    Object
	args    []Object
	named   []namedValue
	closure *Closure
}

type namedValue struct {
	target ast.Node
	value  Object
}

// evaluateCall runs a call on the kind of its target definition.
var evaluateCall = ast.NewOperation("evaluateCall", ast.MustExist)

func init() {
	evaluateCall.
		Register(ast.KindFunc, func(target ast.Node, args ...any) any {
			inv := args[0].(*invocation)
			fn := target.(*ast.FuncDef)
			if fn.FuncKind == ast.FuncConstructor {
				cls := inv.ev.a.Get(fn.Class).(*ast.ClassDef)
				return inv.ev.construct(cls, fn, inv)
			}
			return inv.ev.callFunction(fn, inv)
		}).
		Register(ast.KindLibFunc, func(target ast.Node, args ...any) any {
			inv := args[0].(*invocation)
			return inv.ev.callFunction(target.(*ast.FuncDef), inv)
		}).
		Register(ast.KindClass, func(target ast.Node, args ...any) any {
			inv := args[0].(*invocation)
			return inv.ev.construct(target.(*ast.ClassDef), nil, inv)
		}).
		Register(ast.KindLibClass, func(target ast.Node, args ...any) any {
			inv := args[0].(*invocation)
			contract.Assertf(len(inv.args) == 0, "library class %s is constructed without arguments", target.(*ast.ClassDef).Name)
			return evaluateNil.Invoke(target, inv.ev)
		}).
		Register(ast.KindClosure, func(target ast.Node, args ...any) any {
			inv := args[0].(*invocation)
			return inv.ev.callClosure(inv.closure, inv)
		})
}

// Call applies a callable value to positional arguments. Natives use it to
// call back into the program.
func (ev *Evaluator) Call(callee Object, args ...Object) Object {
	return ev.apply(callee, &invocation{ev: ev, args: args})
}

func (ev *Evaluator) apply(callee Object, inv *invocation) Object {
	switch fn := callee.(type) {
	case *Function:
		inv.this = fn.This
		return evaluateCall.Invoke(fn.Def, inv).(Object)
	case *Closure:
		inv.closure = fn
		return evaluateCall.Invoke(fn.Def, inv).(Object)
	case *TypeRef:
		return evaluateCall.Invoke(fn.Def, inv).(Object)
	}
	contract.Failf("%s is not callable", repr(callee))
	return nil
}

func (ev *Evaluator) callFunction(fn *ast.FuncDef, inv *invocation) Object {
	if fn.SingletonAccessor {
		return ev.singleton(ev.a.Get(fn.Class).(*ast.ClassDef))
	}
	if inst, ok := inv.this.(*Instance); ok && !fn.Static {
		fn = ev.override(inst.Class, fn)
	}
	if fn.IsLibrary() {
		return ev.callNative(fn, inv)
	}
	contract.Assertf(fn.Body != nil, "function %s has no body", fn.Name)
	f := newFrame(fn, inv.this, nil)
	ev.bindParams(f, fn.Spec, inv)
	ev.enter(f)
	ev.execStmts(fn.Body.Statements, f)
	ev.leave()
	return result(f)
}

// override returns the most-derived method of cls with fn's name, so
// calls through a base reference reach the subclass version.
func (ev *Evaluator) override(cls *ast.ClassDef, fn *ast.FuncDef) *ast.FuncDef {
	if cls.ID == fn.Class || fn.FuncKind != ast.FuncNormal {
		return fn
	}
	if m, ok := ev.t.FindLocal(cls, fn.Name).(*ast.FuncDef); ok && !m.Static && m.FuncKind == ast.FuncNormal {
		return m
	}
	return fn
}

func (ev *Evaluator) callClosure(c *Closure, inv *invocation) Object {
	f := newFrame(c.Def, c.Env.This, c.Env)
	ev.bindParams(f, c.Def.Spec, inv)
	ev.enter(f)
	ev.execStmts(c.Def.Body.Statements, f)
	ev.leave()
	return result(f)
}

func result(f *Frame) Object {
	if f.Flow == FlowReturn && f.Result != nil {
		return f.Result
	}
	return NIL
}

// bindParams declares the parameters of spec in f: positional arguments
// first, then named ones, then defaults. A variadic parameter collects the
// rest into a list.
func (ev *Evaluator) bindParams(f *Frame, spec *ast.FuncSpec, inv *invocation) {
	params := spec.Params
	slots := make([]Object, len(params))
	fixed := len(params)
	if spec.Variadic() {
		fixed--
		rest := &List{}
		if len(inv.args) > fixed {
			rest.Elements = append(rest.Elements, inv.args[fixed:]...)
		}
		slots[fixed] = rest
	}
	contract.Assertf(spec.Variadic() || len(inv.args) <= len(params),
		"call expects at most %d arguments, got %d", len(params), len(inv.args))
	for i := 0; i < fixed && i < len(inv.args); i++ {
		slots[i] = inv.args[i]
	}
	for _, na := range inv.named {
		for i, p := range params {
			if na.target == ast.Node(p) {
				slots[i] = na.value
			}
		}
	}
	for i, p := range params {
		if slots[i] == nil {
			contract.Assertf(p.Default != nil, "missing argument %s", p.Name)
			slots[i] = ev.eval(p.Default, f)
		}
		f.declare(p.ID, slots[i])
	}
	f.Args = slots
}

// construct builds an instance of cls: base sub-objects first, then fields
// at their type default, field initializers, the constructor body and
// finally the named arguments.
func (ev *Evaluator) construct(cls *ast.ClassDef, ctor *ast.FuncDef, inv *invocation) Object {
	if cls.IsLibrary() {
		return evaluateNil.Invoke(cls, ev).(Object)
	}
	contract.Assertf(cls.Variety != ast.VarietyInterface, "interface %s cannot be constructed", cls.Name)
	inst := &Instance{Class: cls, Fields: map[ast.NodeID]Object{}}
	for _, base := range typesystem.Bases(ev.a, cls) {
		if sub, ok := ev.construct(base, defaultConstructor(base), &invocation{ev: ev}).(*Instance); ok {
			inst.Bases = append(inst.Bases, sub)
		}
	}
	fields := instanceFields(cls)
	for _, x := range fields {
		inst.Fields[x.ID] = ev.zero(x.Type)
	}
	inst.order = fields

	f := newFrame(ctor, inst, nil)
	if ctor != nil {
		ev.bindParams(f, ctor.Spec, &invocation{ev: ev, args: inv.args, named: paramArgs(inv.named)})
	}
	ev.enter(f)
	for _, x := range fields {
		if x.Initial != nil {
			inst.Fields[x.ID] = ev.eval(x.Initial, f)
		}
	}
	if ctor != nil && ctor.Body != nil {
		ev.execStmts(ctor.Body.Statements, f)
	}
	ev.leave()
	for _, na := range inv.named {
		if x, ok := na.target.(*ast.VarDef); ok {
			contract.Assertf(inst.SetField(x.ID, na.value), "%s has no field %s", cls.Name, x.Name)
		}
	}
	return inst
}

func paramArgs(named []namedValue) []namedValue {
	var out []namedValue
	for _, na := range named {
		if _, ok := na.target.(*ast.Param); ok {
			out = append(out, na)
		}
	}
	return out
}

// defaultConstructor is the zero-argument constructor of cls, if any.
func defaultConstructor(cls *ast.ClassDef) *ast.FuncDef {
	for _, c := range cls.Constructors {
		if c.Spec.MinArgs() == 0 {
			return c
		}
	}
	return nil
}

// instanceFields are the header fields then the variables of the body.
func instanceFields(cls *ast.ClassDef) []*ast.VarDef {
	out := append([]*ast.VarDef{}, cls.Fields...)
	for _, d := range cls.Definitions {
		if x, ok := d.(*ast.VarDef); ok {
			out = append(out, x)
		}
	}
	return out
}

// singleton returns the one instance of cls, constructing it on first use.
func (ev *Evaluator) singleton(cls *ast.ClassDef) Object {
	if inst, ok := ev.singletons[cls.ID]; ok {
		return inst
	}
	inst := ev.construct(cls, defaultConstructor(cls), &invocation{ev: ev})
	ev.singletons[cls.ID] = inst
	ev.Logger.Debug("eval.singleton", "class", cls.Name)
	return inst
}

// callNative runs the registered callback of a library function.
func (ev *Evaluator) callNative(fn *ast.FuncDef, inv *invocation) Object {
	native, ok := natives[fn.Native]
	contract.Assertf(ok, "no native registered for %s", fn.Native)
	args := inv.args
	if len(inv.named) > 0 {
		args = ev.orderNamed(fn.Spec, inv)
	}
	f := newFrame(fn, inv.this, nil)
	f.Args = args
	ev.enter(f)
	out, err := native(ev, inv.this, args)
	if err != nil {
		fail(err, "%s", fn.Native)
	}
	ev.leave()
	if out == nil {
		return NIL
	}
	ev.stamp(out, fn.Spec.Return)
	return out
}

// orderNamed merges named arguments into positional order.
func (ev *Evaluator) orderNamed(spec *ast.FuncSpec, inv *invocation) []Object {
	out := make([]Object, len(spec.Params))
	copy(out, inv.args)
	for _, na := range inv.named {
		for i, p := range spec.Params {
			if na.target == ast.Node(p) {
				out[i] = na.value
			}
		}
	}
	for i, v := range out {
		if v == nil {
			p := spec.Params[i]
			contract.Assertf(p.Default != nil, "missing argument %s", p.Name)
			out[i] = ev.eval(p.Default, newFrame(nil, nil, nil))
		}
	}
	return out
}

// stamp records the static class on containers created by natives.
func (ev *Evaluator) stamp(o Object, t ast.Type) {
	switch x := o.(type) {
	case *List:
		if x.Class == nil {
			if cls := ev.classDef(t); ev.libName(cls) == config.ListTypeName {
				x.Class = cls
			}
		}
	case *Dict:
		if x.Class == nil {
			if cls := ev.classDef(t); ev.libName(cls) == config.DictTypeName {
				x.Class = cls
			}
		}
	}
}
