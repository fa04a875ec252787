package ast

import (
	"testing"

	"github.com/funvibe/gml/internal/contract"
)

func TestChainIsMostDerivedFirst(t *testing.T) {
	got := Chain(KindLibClass)
	want := []Kind{KindLibClass, KindClass, KindDef, KindNode, KindTypeClass}
	if len(got) != len(want) {
		t.Fatalf("chain = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chain = %v, want %v", got, want)
		}
	}
	if !IsA(KindSwitch, KindExpr) || !IsA(KindSwitch, KindStmt) {
		t.Error("switch must be both statement and expression")
	}
}

func TestVisitorPrefersMostDerivedHandler(t *testing.T) {
	a := NewArena()
	cls := a.LibClass("List")
	var hit string
	v := NewVisitor("probe").
		On(KindClass, func(v *Visitor, n Node) any { hit = "class"; return nil }).
		On(KindDef, func(v *Visitor, n Node) any { hit = "def"; return nil })
	v.Visit(cls)
	if hit != "class" {
		t.Errorf("hit = %q, want class", hit)
	}
}

func TestVisitorPassthroughFallsToNodeOpThenChildren(t *testing.T) {
	a := NewArena()
	body := a.Body(a.ExprStmt(a.Ident("x")), a.ExprStmt(a.Int(1)))

	var order []string
	RegisterNodeOp("probe-pass", KindPrimitive, func(v *Visitor, n Node) any {
		order = append(order, "builtin-literal")
		return nil
	})
	v := NewVisitor("probe-pass").
		On(KindBody, func(v *Visitor, n Node) any { order = append(order, "body"); return Pass }).
		On(KindIdent, func(v *Visitor, n Node) any { order = append(order, "ident"); return nil })
	v.Visit(body)

	want := []string{"body", "ident", "builtin-literal"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestPrototypeChildrenAreGenericParamsOnly(t *testing.T) {
	a := NewArena()
	cls := a.Class("Box", a.Func("get", nil, a.Body()))
	cls.GenericParams = []*GenericParam{a.TypeParam("T")}
	if got := len(cls.Children()); got != 1 {
		t.Fatalf("prototype children = %d, want 1", got)
	}
	cls.Instantiation = &Instantiation{}
	if got := len(cls.Children()); got != 2 {
		t.Fatalf("instantiated children = %d, want 2", got)
	}
}

func TestOperationPolicies(t *testing.T) {
	a := NewArena()
	fn := a.LibFunc("size", a.Spec(a.Named("Int")), "List.size")
	lit := a.Int(3)

	op := NewOperation("probe", MustExist).
		Register(KindFunc, func(target Node, args ...any) any { return "func" })
	if r := op.Invoke(fn); r != "func" {
		t.Errorf("lib func should fall back to func handler, got %v", r)
	}
	if err := contract.Catch(func() { op.Invoke(lit) }); err == nil {
		t.Error("MustExist should fail on a miss")
	}

	if r := NewOperation("orig", ReturnOriginal).Invoke(lit); r != Node(lit) {
		t.Errorf("ReturnOriginal returned %v", r)
	}
	if r := NewOperation("none", ReturnNone).Invoke(lit); r != nil {
		t.Errorf("ReturnNone returned %v", r)
	}
	if r := NewOperation("fallback", Fallback).Invoke(lit); r != Pass {
		t.Errorf("Fallback returned %v", r)
	}
}

func TestOperationPassContinuesAlongChain(t *testing.T) {
	a := NewArena()
	cls := a.LibClass("String")
	op := NewOperation("probe", ReturnNone).
		Register(KindLibClass, func(target Node, args ...any) any { return Pass }).
		Register(KindClass, func(target Node, args ...any) any { return args[0] })
	if r := op.Invoke(cls, 42); r != 42 {
		t.Errorf("got %v, want 42", r)
	}
}

func TestSetTypeOnce(t *testing.T) {
	a := NewArena()
	id := a.Ident("x")
	id.SetType(a.Named("Int"))
	if err := contract.Catch(func() { id.SetType(a.Named("Int")) }); err == nil {
		t.Fatal("second SetType must fail")
	}
}
