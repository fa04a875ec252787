package evaluator

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
)

func (ev *Evaluator) execStmts(stmts []ast.Stmt, f *Frame) {
	for _, s := range stmts {
		if !f.running() {
			return
		}
		ev.exec(s, f)
	}
}

func (ev *Evaluator) exec(s ast.Stmt, f *Frame) {
	switch x := s.(type) {
	case *ast.VarDef:
		f.declare(x.ID, ev.initialValue(x, f))
	case *ast.Block:
		ev.execBlock(x, f)
	case *ast.If:
		for _, br := range x.Branches {
			if ev.truthy(ev.eval(br.Cond, f)) {
				ev.execBlock(br.Body, f)
				return
			}
		}
		if x.Else != nil {
			ev.execBlock(x.Else, f)
		}
	case *ast.While:
		for f.running() && ev.truthy(ev.eval(x.Cond, f)) {
			ev.execBlock(x.Body, f)
			if !ev.loopContinues(f) {
				return
			}
		}
	case *ast.ForEach:
		ev.execForEach(x, f)
	case *ast.Return:
		if x.Value != nil {
			f.Result = ev.eval(x.Value, f)
		}
		f.Flow = FlowReturn
	case *ast.Break:
		f.Flow = FlowBreak
	case *ast.Continue:
		f.Flow = FlowContinue
	case *ast.Assign:
		ev.execAssign(x, f)
	case *ast.ExprStmt:
		ev.eval(x.X, f)
	case *ast.Switch:
		ev.match(x, f)
	case *ast.Assert:
		if !ev.truthy(ev.eval(x.Cond, f)) {
			msg := "assertion failed"
			if x.Message != nil {
				msg = ev.eval(x.Message, f).Inspect()
			}
			contract.Failf("%s", msg)
		}
	default:
		contract.Failf("cannot execute %v", s.Kind())
	}
}

func (ev *Evaluator) execBlock(b *ast.Block, f *Frame) {
	f.push()
	ev.execStmts(b.Statements, f)
	f.pop()
}

// loopContinues consumes a break or continue raised by the loop body and
// reports whether the loop should run another iteration.
func (ev *Evaluator) loopContinues(f *Frame) bool {
	switch f.Flow {
	case FlowBreak:
		f.Flow = FlowNormal
		return false
	case FlowContinue:
		f.Flow = FlowNormal
	}
	return f.running()
}

func (ev *Evaluator) execForEach(x *ast.ForEach, f *Frame) {
	iter := func(item, value Object) bool {
		f.push()
		f.declare(x.Item.ID, item)
		if x.Value != nil {
			f.declare(x.Value.ID, value)
		}
		ev.execStmts(x.Body.Statements, f)
		f.pop()
		return ev.loopContinues(f)
	}
	switch c := ev.eval(x.Collection, f).(type) {
	case *List:
		for _, e := range append([]Object{}, c.Elements...) {
			if !iter(e, nil) {
				return
			}
		}
	case *String:
		for _, r := range c.Value {
			if !iter(&Char{Value: r}, nil) {
				return
			}
		}
	case *Dict:
		keys := append([]Object{}, c.Keys...)
		values := append([]Object{}, c.Values...)
		for i := range keys {
			if !iter(keys[i], values[i]) {
				return
			}
		}
	default:
		contract.Failf("%s is not iterable", repr(c))
	}
}

func (ev *Evaluator) execAssign(x *ast.Assign, f *Frame) {
	v := ev.eval(x.Value, f)
	if x.Op != "" && x.Op != "=" {
		cur := ev.eval(x.Target, f)
		v = ev.binaryOp(ev.typeClass(x.Target.Meta().Type), x.Op[:len(x.Op)-1], cur, v)
	}
	switch t := x.Target.(type) {
	case *ast.Identifier:
		target := ev.a.Get(t.Target)
		if f.assign(t.Target, v) {
			return
		}
		if g, ok := target.(*ast.VarDef); ok && isGlobal(ev.a, g) {
			ev.global(g)
			ev.globals[g.ID] = v
			return
		}
		contract.Failf("%s is not assignable", t.Name)
	case *ast.AttrRef:
		obj := ev.eval(t.Object, f)
		field, ok := ev.a.Get(t.Target).(*ast.VarDef)
		contract.Assertf(ok, "%s is not a field", t.Name)
		if inst, ok := obj.(*Instance); ok {
			contract.Assertf(inst.SetField(field.ID, v), "%s has no field %s", inst.Class.Name, t.Name)
			return
		}
		contract.Assertf(isGlobal(ev.a, field), "%s is not assignable", t.Name)
		ev.global(field)
		ev.globals[field.ID] = v
	case *ast.Subscript:
		switch c := ev.eval(t.Collection, f).(type) {
		case *List:
			c.Elements[listIndex(c, ev.eval(t.Key, f))] = v
		case *Dict:
			c.Set(ev.eval(t.Key, f), v)
		default:
			contract.Failf("%s does not support item assignment", repr(c))
		}
	default:
		contract.Failf("cannot assign to %v", x.Target.Kind())
	}
}
