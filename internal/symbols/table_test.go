package symbols

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/ast"
)

func link(a *ast.Arena, owner ast.Node, children ...ast.Node) {
	for _, c := range children {
		a.SetOwner(c, owner)
	}
}

func TestShadowingAcrossLevelsButNotWithin(t *testing.T) {
	a := ast.NewArena()
	tab := NewTable(a)
	fn := a.Func("f", nil, a.Body())
	inner := a.Block()
	link(a, fn, inner)

	outerX := a.Var("x", nil, nil)
	innerX := a.Var("x", nil, nil)
	if err := tab.Declare(fn, "x", outerX); err != nil {
		t.Fatalf("outer declare: %v", err)
	}
	if err := tab.Declare(inner, "x", innerX); err != nil {
		t.Fatalf("shadowing declare: %v", err)
	}
	err := tab.Declare(inner, "x", a.Var("x", nil, nil))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("same-level redeclare: got %v, want ErrDuplicate", err)
	}
	if got := tab.Lookup(inner, "x"); got != ast.Node(innerX) {
		t.Errorf("inner lookup = %v, want inner x", got)
	}
	if got := tab.Lookup(fn, "x"); got != ast.Node(outerX) {
		t.Errorf("outer lookup = %v, want outer x", got)
	}
}

func TestLookupDelegatesToOwnerChain(t *testing.T) {
	a := ast.NewArena()
	tab := NewTable(a)
	unit := a.Unit("main", "app")
	a.SetOwner(unit, tab.Package([]string{"app"}))
	fn := a.Func("f", nil, a.Body())
	stmt := a.ExprStmt(a.Ident("y"))
	link(a, unit, fn)
	link(a, fn, fn.Body)
	link(a, fn.Body, stmt)

	y := a.Var("y", nil, nil)
	tab.MustDeclare(unit, "y", y)
	if got := tab.Lookup(stmt, "y"); got != ast.Node(y) {
		t.Errorf("lookup through simple contexts = %v", got)
	}
	if got := tab.Lookup(stmt, "missing"); got != nil {
		t.Errorf("missing name resolved to %v", got)
	}
}

func TestUnitDeclarationsPropagateToPackage(t *testing.T) {
	a := ast.NewArena()
	tab := NewTable(a)
	unit := a.Unit("models", "app.models")
	a.SetOwner(unit, tab.Package(unit.PackagePath))
	cls := a.Class("User")
	tab.MustDeclare(unit, "User", cls)

	if got := tab.ResolveQualified([]string{"app", "models", "User"}); got != ast.Node(cls) {
		t.Errorf("qualified lookup = %v", got)
	}
	if got := tab.Scope(tab.Package([]string{"app", "models"})).Category(CatClass); len(got) != 1 {
		t.Errorf("package classes = %v", got)
	}
	// Another unit of the same package declaring the same name keeps the
	// first entry in the package and its own locally.
	other := a.Unit("other", "app.models")
	a.SetOwner(other, tab.Package(other.PackagePath))
	cls2 := a.Class("User")
	tab.MustDeclare(other, "User", cls2)
	if got := tab.ResolveQualified([]string{"app", "models", "User"}); got != ast.Node(cls) {
		t.Errorf("package entry replaced: %v", got)
	}
	if got := tab.Lookup(other, "User"); got != ast.Node(cls2) {
		t.Errorf("unit-local lookup = %v", got)
	}
}

func TestPackagesAreCached(t *testing.T) {
	a := ast.NewArena()
	tab := NewTable(a)
	p1 := tab.Package([]string{"sys", "lang"})
	n := a.Len()
	p2 := tab.Package([]string{"sys", "lang"})
	if p1 != p2 || a.Len() != n {
		t.Fatal("requesting an existing package allocated nodes")
	}
	if p1.QualifiedName() != "sys.lang" {
		t.Errorf("name = %q", p1.QualifiedName())
	}
	if got := tab.ResolveQualified([]string{"sys", "lang"}); got != ast.Node(p1) {
		t.Errorf("package member lookup = %v", got)
	}
}

func TestClassLookupSeesBasesAndBindings(t *testing.T) {
	a := ast.NewArena()
	tab := NewTable(a)
	base := a.Class("Animal")
	name := a.Var("name", nil, nil)
	tab.MustDeclare(base, "name", name)

	dog := a.Class("Dog")
	ref := a.Named("Animal")
	ref.Target = base.ID
	dog.Bases = []*ast.UserType{ref}
	if got := tab.FindMember(dog, "name"); got != ast.Node(name) {
		t.Errorf("inherited member = %v", got)
	}

	intType := a.Named("Int")
	dog.Instantiation = &ast.Instantiation{Named: map[string]*ast.GenericArg{"T": a.TypeArg(intType)}}
	if got := tab.FindLocal(dog, "T"); got != ast.Node(intType) {
		t.Errorf("binding lookup = %v", got)
	}
}

func TestResolvePathThroughEnum(t *testing.T) {
	a := ast.NewArena()
	tab := NewTable(a)
	unit := a.Unit("u", "app")
	a.SetOwner(unit, tab.Package(unit.PackagePath))
	color := a.Enum("Color", "Red", "Green")
	tab.MustDeclare(unit, "Color", color)
	got := tab.ResolvePath(unit, []string{"Color", "Green"})
	item, ok := got.(*ast.EnumItem)
	if !ok || item.Value != 1 {
		t.Fatalf("Color.Green = %v", got)
	}
	if tab.ResolvePath(unit, []string{"Color", "Blue"}) != nil {
		t.Error("unknown enum item resolved")
	}
}
