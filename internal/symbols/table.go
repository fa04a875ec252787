// Package symbols implements owner-chain lexical scoping and the package
// namespace tree of a session.
package symbols

import (
	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
)

// ErrDuplicate is returned when a name is declared twice at the same level.
var ErrDuplicate = errors.New("duplicate declaration")

// maxBaseDepth bounds base-class walks so a cyclic hierarchy fails instead
// of recursing forever.
const maxBaseDepth = 64

// Table holds every scope of a session, keyed by the owning node.
type Table struct {
	arena   *ast.Arena
	scopes  map[ast.NodeID]*Scope
	project *ast.Project
	root    *ast.Package
}

// NewTable creates the project node and the root package.
func NewTable(a *ast.Arena) *Table {
	t := &Table{arena: a, scopes: map[ast.NodeID]*Scope{}}
	t.project = a.Project()
	t.root = a.Package(nil)
	t.root.Owner = t.project.ID
	t.project.Root = t.root
	return t
}

func (t *Table) Arena() *ast.Arena         { return t.arena }
func (t *Table) Project() *ast.Project     { return t.project }
func (t *Table) Root() *ast.Package        { return t.root }
func (t *Table) Owner(n ast.Node) ast.Node { return t.arena.Owner(n) }

// Scope returns the scope of n, creating it on first use. Nodes with a
// simple context have none.
func (t *Table) Scope(n ast.Node) *Scope {
	kind := ContextOf(n.Kind())
	if kind == SimpleContext {
		return nil
	}
	id := n.Meta().ID
	s, ok := t.scopes[id]
	if !ok {
		s = newScope(kind)
		t.scopes[id] = s
	}
	return s
}

// ScopeOwner returns n or its nearest owner that carries a scope.
func (t *Table) ScopeOwner(n ast.Node) ast.Node {
	for ; n != nil; n = t.arena.Owner(n) {
		if ContextOf(n.Kind()) != SimpleContext {
			return n
		}
	}
	return nil
}

// Declare binds name to n in the scope of owner (or of owner's nearest
// scoped ancestor). Declaring into a unit also declares into the unit's
// package when the name is free there.
func (t *Table) Declare(owner ast.Node, name string, n ast.Node) error {
	target := t.ScopeOwner(owner)
	if target == nil {
		return errors.Errorf("declare %q: no enclosing scope", name)
	}
	s := t.Scope(target)
	if prev, dup := s.table[name]; dup {
		if prev == n {
			return nil
		}
		return errors.Wrapf(ErrDuplicate, "%q in %v#%d", name, target.Kind(), target.Meta().ID)
	}
	s.put(name, n)
	if u, ok := target.(*ast.Unit); ok {
		pkg := t.Package(u.PackagePath)
		ps := t.Scope(pkg)
		if _, exists := ps.table[name]; !exists {
			ps.put(name, n)
		}
	}
	return nil
}

// MustDeclare is Declare for pipeline code, where a duplicate is a defect.
func (t *Table) MustDeclare(owner ast.Node, name string, n ast.Node) {
	if err := t.Declare(owner, name, n); err != nil {
		contract.Fail(err)
	}
}

// Lookup finds name starting at from and walking the owner chain. It
// returns nil when the name is declared nowhere.
func (t *Table) Lookup(from ast.Node, name string) ast.Node {
	for n := from; n != nil; n = t.arena.Owner(n) {
		if ContextOf(n.Kind()) == SimpleContext {
			continue
		}
		if found := t.FindLocal(n, name); found != nil {
			return found
		}
	}
	return nil
}

// LookupStrict is Lookup that fails when the name is missing.
func (t *Table) LookupStrict(from ast.Node, name string) ast.Node {
	found := t.Lookup(from, name)
	contract.Assertf(found != nil, "unresolved name %q", name)
	return found
}

// FindLocal looks name up in n itself, applying the per-kind rules: classes
// also see their instantiation bindings and bases, extensions see the
// extended class first, packages see their subpackages.
func (t *Table) FindLocal(n ast.Node, name string) ast.Node {
	return t.findLocal(n, name, 0)
}

func (t *Table) findLocal(n ast.Node, name string, depth int) ast.Node {
	contract.Assertf(depth < maxBaseDepth, "base chain too deep looking up %q", name)
	switch x := n.(type) {
	case *ast.ClassDef:
		if found, ok := t.Scope(x).Local(name); ok {
			return found
		}
		if arg, ok := x.Instantiation.Binding(name); ok {
			return bindingNode(arg)
		}
		for _, base := range x.Bases {
			if b, ok := t.arena.Get(base.Target).(*ast.ClassDef); ok {
				if found := t.findLocal(b, name, depth+1); found != nil {
					return found
				}
			}
		}
		return nil
	case *ast.ExtensionDef:
		if cls, ok := t.arena.Get(x.Class).(*ast.ClassDef); ok {
			if found := t.findLocal(cls, name, depth+1); found != nil {
				return found
			}
		}
	case *ast.Package:
		if found, ok := t.Scope(x).Local(name); ok {
			return found
		}
		if sub := x.Subpackage(name); sub != nil {
			return sub
		}
		return nil
	case *ast.EnumDef:
		if it := x.Item(name); it != nil {
			return it
		}
	}
	if s := t.Scope(n); s != nil {
		if found, ok := s.Local(name); ok {
			return found
		}
	}
	return nil
}

func bindingNode(arg *ast.GenericArg) ast.Node {
	switch arg.Kind() {
	case ast.KindLiteralArg:
		return arg.Literal
	case ast.KindVariadicArg:
		return arg
	}
	return arg.Type
}

// FindMember resolves name as a member of n (a package, class, enum or unit).
func (t *Table) FindMember(n ast.Node, name string) ast.Node {
	switch x := n.(type) {
	case *ast.UserType:
		if target := t.arena.Get(x.Target); target != nil {
			return t.FindMember(target, name)
		}
		return nil
	case *ast.TypeDef:
		return t.FindMember(x.Target, name)
	case *ast.Package, *ast.ClassDef, *ast.EnumDef, *ast.Unit, *ast.Project:
		return t.FindLocal(x, name)
	}
	return nil
}

// ResolvePath resolves the first segment lexically from `from`, then each
// following segment as a member of the previous result.
func (t *Table) ResolvePath(from ast.Node, path []string) ast.Node {
	if len(path) == 0 {
		return nil
	}
	n := t.Lookup(from, path[0])
	for _, seg := range path[1:] {
		if n == nil {
			return nil
		}
		n = t.FindMember(n, seg)
	}
	return n
}

// ResolveQualified resolves a fully-qualified path from the root package.
func (t *Table) ResolveQualified(path []string) ast.Node {
	var n ast.Node = t.root
	for _, seg := range path {
		if n == nil {
			return nil
		}
		n = t.FindMember(n, seg)
	}
	return n
}

// Package returns the package at path, creating missing nodes. Existing
// packages are returned as is.
func (t *Table) Package(path []string) *ast.Package {
	pkg := t.root
	for _, seg := range path {
		child := pkg.Subpackage(seg)
		if child == nil {
			child = t.arena.Subpackage(pkg, seg)
		}
		pkg = child
	}
	return pkg
}
