package ast

import "testing"

func TestCloneAllocatesFreshNodes(t *testing.T) {
	a := NewArena()
	ret := a.Named("T")
	ret.Target = 7
	fn := a.Func("get", a.Spec(ret), a.Body(a.Return(a.Ident("value"))))
	cls := a.Class("Box", fn)
	cls.GenericParams = []*GenericParam{a.TypeParam("T")}
	cls.Fields = []*VarDef{a.Var("value", a.Named("T"), nil)}
	cls.Owner = 1

	before := a.Len()
	c := Clone(a, cls)
	if a.Len() <= before {
		t.Fatal("clone did not allocate")
	}
	if c.ID == cls.ID || c.Owner != NoNode {
		t.Errorf("clone meta not reset: id=%d owner=%d", c.ID, c.Owner)
	}
	cf := c.Definitions[0].(*FuncDef)
	if cf == fn || cf.Body == fn.Body {
		t.Error("clone shares children with the original")
	}
	if got := cf.Spec.Return.(*UserType).Target; got != 7 {
		t.Errorf("type target not kept: %d", got)
	}
	if c.Fields[0].Name != "value" || c.GenericParams[0].Name != "T" {
		t.Error("clone lost fields or generic params")
	}
}

func TestCloneResetsExpressionTargets(t *testing.T) {
	a := NewArena()
	id := a.Ident("x")
	id.Target = 3
	id.SetType(a.Named("Int"))
	c := Clone(a, id)
	if c.Target != NoNode || c.Type != nil {
		t.Errorf("clone kept resolution state: target=%d type=%v", c.Target, c.Type)
	}
}
