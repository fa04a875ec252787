package typesystem

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
)

type fixture struct {
	a      *ast.Arena
	intCls *ast.ClassDef
	strCls *ast.ClassDef
	box    *ast.ClassDef
}

func newFixture() *fixture {
	a := ast.NewArena()
	f := &fixture{a: a, intCls: a.LibClass("Int"), strCls: a.LibClass("String")}
	f.box = a.Class("Box", a.Func("get", a.Spec(a.Named("T")), a.Body(a.Return(a.Ident("value")))))
	f.box.GenericParams = []*ast.GenericParam{a.TypeParam("T")}
	f.box.Fields = []*ast.VarDef{a.Var("value", a.Named("T"), nil)}
	return f
}

func (f *fixture) ref(cls ast.Node) *ast.UserType {
	var name string
	switch c := cls.(type) {
	case *ast.ClassDef:
		name = c.Name
	case *ast.TypeDef:
		name = c.Name
	}
	u := f.a.Named(name)
	u.Target = cls.Meta().ID
	return u
}

func TestInstantiateIsIdempotent(t *testing.T) {
	f := newFixture()
	e := NewEngine(f.a)
	setups := 0
	e.OnSetup(func(clone, proto *ast.ClassDef) { setups++ })

	first := e.Instantiate(f.box, []*ast.GenericArg{f.a.TypeArg(f.ref(f.intCls))})
	second := e.Instantiate(f.box, []*ast.GenericArg{f.a.TypeArg(f.ref(f.intCls))})
	if first != second {
		t.Fatal("equivalent arguments produced two instantiations")
	}
	if e.Created() != 1 || e.Requests() != 2 || setups != 1 {
		t.Errorf("created=%d requests=%d setups=%d", e.Created(), e.Requests(), setups)
	}
	if first.Prototype != f.box.ID || first.IsPrototype() {
		t.Error("clone not linked to its prototype")
	}
	bound, ok := first.Instantiation.Binding("T")
	if !ok || TypeClassOf(f.a, bound.Type) != ast.Node(f.intCls) {
		t.Errorf("T bound to %v", bound)
	}

	other := e.Instantiate(f.box, []*ast.GenericArg{f.a.TypeArg(f.ref(f.strCls))})
	if other == first || e.Created() != 2 {
		t.Error("different arguments must produce a new instantiation")
	}
	if got := len(e.Instantiator(f.box).Instances()); got != 2 {
		t.Errorf("instances = %d", got)
	}
}

func TestInstantiateNormalizesAliases(t *testing.T) {
	f := newFixture()
	e := NewEngine(f.a)
	alias := f.a.TypeDef("Number", f.ref(f.intCls))

	viaAlias := e.Instantiate(f.box, []*ast.GenericArg{f.a.TypeArg(f.ref(alias))})
	direct := e.Instantiate(f.box, []*ast.GenericArg{f.a.TypeArg(f.ref(f.intCls))})
	if viaAlias != direct {
		t.Fatal("alias and aliased type must share an instantiation")
	}
}

func TestInstantiateRejectsIncompatibleArgs(t *testing.T) {
	f := newFixture()
	e := NewEngine(f.a)
	err := contract.Catch(func() {
		e.Instantiate(f.box, []*ast.GenericArg{f.a.LiteralArg(f.a.Int(3))})
	})
	if err == nil || !errors.Is(err, ErrGenericArgs) {
		t.Fatalf("expected ErrGenericArgs, got %v", err)
	}
	if e.Created() != 0 {
		t.Error("failed instantiation was cached")
	}
}

func TestCheckArgs(t *testing.T) {
	a := ast.NewArena()
	intT := a.Named("Int")
	maybe := a.TypeArg(a.Named("N"))
	maybe.MayBeTypeParam = true
	tests := []struct {
		name   string
		params []*ast.GenericParam
		args   []*ast.GenericArg
		ok     bool
	}{
		{"type", []*ast.GenericParam{a.TypeParam("T")}, []*ast.GenericArg{a.TypeArg(intT)}, true},
		{"arity", []*ast.GenericParam{a.TypeParam("K"), a.TypeParam("V")}, []*ast.GenericArg{a.TypeArg(intT)}, false},
		{"literal", []*ast.GenericParam{a.LiteralParam("N", intT)}, []*ast.GenericArg{a.LiteralArg(a.Int(4))}, true},
		{"literal-from-param", []*ast.GenericParam{a.LiteralParam("N", intT)}, []*ast.GenericArg{maybe}, true},
		{"literal-from-type", []*ast.GenericParam{a.LiteralParam("N", intT)}, []*ast.GenericArg{a.TypeArg(a.Named("List"))}, false},
		{"variadic-rest", []*ast.GenericParam{a.TypeParam("R"), a.VariadicParam("A")},
			[]*ast.GenericArg{a.TypeArg(intT), a.TypeArg(intT), a.TypeArg(intT)}, true},
		{"variadic-empty", []*ast.GenericParam{a.VariadicParam("A")}, nil, true},
		{"variadic-literal", []*ast.GenericParam{a.VariadicParam("A")}, []*ast.GenericArg{a.LiteralArg(a.Int(1))}, false},
	}
	for _, tt := range tests {
		err := CheckArgs(tt.params, tt.args)
		if (err == nil) != tt.ok {
			t.Errorf("%s: err = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestVariadicInstantiationComparesElementwise(t *testing.T) {
	f := newFixture()
	a := f.a
	tuple := a.Class("Tuple")
	tuple.GenericParams = []*ast.GenericParam{a.VariadicParam("Items")}
	e := NewEngine(a)

	one := e.Instantiate(tuple, []*ast.GenericArg{a.TypeArg(f.ref(f.intCls)), a.TypeArg(f.ref(f.strCls))})
	two := e.Instantiate(tuple, []*ast.GenericArg{a.VariadicArg(f.ref(f.intCls), f.ref(f.strCls))})
	three := e.Instantiate(tuple, []*ast.GenericArg{a.TypeArg(f.ref(f.intCls))})
	if one != two {
		t.Error("flattened and explicit variadic arguments differ")
	}
	if one == three {
		t.Error("variadic arity ignored")
	}
}
