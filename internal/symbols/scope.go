package symbols

import (
	"github.com/funvibe/gml/internal/ast"
)

// ContextKind is the scoping facility a node kind carries.
type ContextKind int

const (
	// SimpleContext has no symbols; lookups go straight to the owner.
	SimpleContext ContextKind = iota
	// BlockContext is an insertion-ordered name table.
	BlockContext
	// FullContext adds categorized collections to a block context.
	FullContext
)

// ContextOf returns the context kind of nodes of kind k.
func ContextOf(k ast.Kind) ContextKind {
	switch k {
	case ast.KindProject, ast.KindPackage, ast.KindUnit, ast.KindClass, ast.KindLibClass, ast.KindCaseClass:
		return FullContext
	case ast.KindFunc, ast.KindLibFunc, ast.KindClosure, ast.KindBlock, ast.KindExtension,
		ast.KindEnum, ast.KindCaseEntry, ast.KindForEach, ast.KindScript:
		return BlockContext
	}
	return SimpleContext
}

// Category groups declarations of a full context.
type Category int

const (
	CatOther Category = iota
	CatFunction
	CatClass
	CatVar
	CatConst
	CatEnum
	CatType
	CatPackage
)

// CategoryOf classifies a declared node.
func CategoryOf(n ast.Node) Category {
	switch x := n.(type) {
	case *ast.ClassDef:
		return CatClass
	case *ast.FuncDef:
		return CatFunction
	case *ast.VarDef:
		if x.Const {
			return CatConst
		}
		return CatVar
	case *ast.EnumDef:
		return CatEnum
	case *ast.TypeDef:
		return CatType
	case *ast.Package:
		return CatPackage
	}
	return CatOther
}

// Scope is the symbol table of one node.
type Scope struct {
	Kind       ContextKind
	names      []string
	table      map[string]ast.Node
	categories map[Category][]ast.Node
}

func newScope(kind ContextKind) *Scope {
	s := &Scope{Kind: kind, table: map[string]ast.Node{}}
	if kind == FullContext {
		s.categories = map[Category][]ast.Node{}
	}
	return s
}

// Local returns the node declared under name at this level.
func (s *Scope) Local(name string) (ast.Node, bool) {
	if s == nil {
		return nil, false
	}
	n, ok := s.table[name]
	return n, ok
}

// Names returns the declared names in declaration order.
func (s *Scope) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

// Category returns the declarations of c in declaration order. Only full
// contexts keep categories.
func (s *Scope) Category(c Category) []ast.Node {
	if s == nil {
		return nil
	}
	return s.categories[c]
}

func (s *Scope) put(name string, n ast.Node) {
	s.table[name] = n
	s.names = append(s.names, name)
	if s.categories != nil {
		c := CategoryOf(n)
		s.categories[c] = append(s.categories[c], n)
	}
}
