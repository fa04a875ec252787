package ast

import (
	"strings"
)

// Project is the owner of the root package. Its scope holds the prelude.
type Project struct {
	NodeMeta
	Root *Package
}

func (p *Project) Children() []Node { return nil }

// Package is a node of the namespace tree keyed by dotted path.
type Package struct {
	NodeMeta
	Name string
	Path []string

	children map[string]*Package
	order    []string
}

func (p *Package) Children() []Node { return nil }

// QualifiedName returns the dotted path.
func (p *Package) QualifiedName() string { return strings.Join(p.Path, ".") }

// Subpackage returns the cached child package, if any.
func (p *Package) Subpackage(name string) *Package { return p.children[name] }

// Subpackages returns the child packages in creation order.
func (p *Package) Subpackages() []*Package {
	out := make([]*Package, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.children[name])
	}
	return out
}

func (p *Package) putSubpackage(child *Package) {
	if p.children == nil {
		p.children = map[string]*Package{}
	}
	p.children[child.Name] = child
	p.order = append(p.order, child.Name)
}

// Unit is a translation unit.
type Unit struct {
	NodeMeta
	Name        string
	PackagePath []string
	Library     bool
	Imports     []*Import
	Definitions []Node
}

func (u *Unit) Children() []Node {
	out := make([]Node, 0, len(u.Imports)+len(u.Definitions))
	out = each(out, u.Imports)
	return append(out, u.Definitions...)
}

// Import brings Path (or the named members of Path) into the unit scope.
type Import struct {
	NodeMeta
	Path  []string
	Names []string // grouped form: import sys (Console, Logger)
	Alias string
	// Target is the resolved node for a single-name import.
	Target NodeID
}

func (i *Import) Children() []Node { return nil }

// LocalName is the name the import declares.
func (i *Import) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Path[len(i.Path)-1]
}

// Script is a declarative annotation attached to a definition.
type Script struct {
	NodeMeta
	Name      string
	Args      []Expr
	NamedArgs []*NamedArg
	// Inherited marks a copy propagated from a base class.
	Inherited bool
	// Resolved holds the node the script's first argument resolved to.
	Resolved NodeID

	processed bool
	named     bool
}

func (s *Script) Children() []Node {
	out := make([]Node, 0, len(s.Args)+len(s.NamedArgs))
	out = each(out, s.Args)
	return each(out, s.NamedArgs)
}

// MarkProcessed flips the processed flag and reports whether it was already set.
func (s *Script) MarkProcessed() bool {
	was := s.processed
	s.processed = true
	return was
}

// MarkResolved flips the resolved flag and reports whether it was already set.
func (s *Script) MarkResolved() bool {
	was := s.named
	s.named = true
	return was
}

// ClassVariety distinguishes class-like definitions.
type ClassVariety int

const (
	VarietyClass ClassVariety = iota
	VarietyInterface
	VarietyTrait
	VarietyStruct
)

// ClassDef is a class, interface, trait or struct. Library classes use the
// same struct with KindLibClass.
type ClassDef struct {
	NodeMeta
	Name          string
	Variety       ClassVariety
	GenericParams []*GenericParam
	Bases         []*UserType
	// Fields are the primary fields declared in the class header.
	Fields      []*VarDef
	Definitions []Node
	Scripts     []*Script

	// Instantiation is set on clones produced from a prototype.
	Instantiation *Instantiation
	// Prototype is the generic definition this class was cloned from.
	Prototype NodeID
	// Subclasses are recorded while resolving inheritance edges.
	Subclasses   []NodeID
	Constructors []*FuncDef
	Destructor   *FuncDef
	Singleton    bool

	Flags PassFlags
}

func (c *ClassDef) Children() []Node {
	if c.IsPrototype() {
		return each(nil, c.GenericParams)
	}
	return c.AllChildren()
}

// AllChildren ignores the prototype rule; used by owner wiring and cloning.
func (c *ClassDef) AllChildren() []Node {
	out := make([]Node, 0, len(c.GenericParams)+len(c.Bases)+len(c.Fields)+len(c.Definitions)+len(c.Scripts))
	out = each(out, c.GenericParams)
	out = each(out, c.Scripts)
	out = each(out, c.Bases)
	out = each(out, c.Fields)
	return append(out, c.Definitions...)
}

// IsPrototype reports whether c still has unbound generic parameters.
func (c *ClassDef) IsPrototype() bool {
	return len(c.GenericParams) > 0 && c.Instantiation == nil
}

// IsLibrary reports whether c is a built-in class.
func (c *ClassDef) IsLibrary() bool { return c.kind == KindLibClass }

// AddDefinition appends a synthesized member.
func (c *ClassDef) AddDefinition(n Node) { c.Definitions = append(c.Definitions, n) }

// ExtensionDef attaches definitions to an existing class.
type ExtensionDef struct {
	NodeMeta
	Receiver    *UserType
	Definitions []Node
	// Class is the resolved receiver class.
	Class NodeID
	Flags PassFlags
}

func (e *ExtensionDef) Children() []Node {
	out := []Node{e.Receiver}
	return append(out, e.Definitions...)
}

// FuncKind classifies functions.
type FuncKind int

const (
	FuncNormal FuncKind = iota
	FuncConstructor
	FuncDestructor
)

func (k FuncKind) String() string {
	switch k {
	case FuncConstructor:
		return "constructor"
	case FuncDestructor:
		return "destructor"
	default:
		return "normal"
	}
}

// FuncDef is a function or method. Library functions use KindLibFunc and
// carry a Native key instead of a body.
type FuncDef struct {
	NodeMeta
	Name     string
	Spec     *FuncSpec
	Body     *Body
	FuncKind FuncKind
	Static   bool
	// Receiver is the external receiver type as written; pre-expansion
	// moves such functions into an ExtensionDef and clears it.
	Receiver *UserType
	Scripts  []*Script
	// Class is the owning class, set during registration or extension
	// resolution.
	Class NodeID
	// Injected marks methods attached through an extension block.
	Injected bool
	// Native is the registry key of a library function.
	Native string
	// SingletonAccessor marks the synthesized instance() of a singleton.
	SingletonAccessor bool

	Flags PassFlags
}

func (f *FuncDef) Children() []Node {
	out := each(nil, f.Scripts)
	if f.Receiver != nil {
		out = append(out, f.Receiver)
	}
	if f.Spec != nil {
		out = append(out, f.Spec)
	}
	if f.Body != nil {
		out = append(out, f.Body)
	}
	return out
}

// IsLibrary reports whether f is a built-in function.
func (f *FuncDef) IsLibrary() bool { return f.kind == KindLibFunc }

// FuncSpec is a function signature; it doubles as the function type.
type FuncSpec struct {
	NodeMeta
	Params []*Param
	Return Type
}

func (s *FuncSpec) Children() []Node {
	out := each(nil, s.Params)
	if s.Return != nil {
		out = append(out, s.Return)
	}
	return out
}

func (s *FuncSpec) typeNode() {}

func (s *FuncSpec) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = typeString(p.Type)
		if p.Variadic {
			parts[i] += "..."
		}
	}
	return "(" + strings.Join(parts, ", ") + ") => " + typeString(s.Return)
}

// MinArgs is the number of arguments a call must supply.
func (s *FuncSpec) MinArgs() int {
	n := 0
	for _, p := range s.Params {
		if p.Variadic || p.Default != nil {
			break
		}
		n++
	}
	return n
}

// Variadic reports whether the last parameter accepts the remaining args.
func (s *FuncSpec) Variadic() bool {
	return len(s.Params) > 0 && s.Params[len(s.Params)-1].Variadic
}

// Param is a function parameter.
type Param struct {
	NodeMeta
	Name     string
	Type     Type
	Variadic bool
	Default  Expr
}

func (p *Param) Children() []Node {
	var out []Node
	if p.Type != nil {
		out = append(out, p.Type)
	}
	if p.Default != nil {
		out = append(out, p.Default)
	}
	return out
}

// VarDef declares a variable, field or constant.
type VarDef struct {
	NodeMeta
	Name    string
	Decl    Type // declared type, may be nil
	Initial Expr
	Const   bool
	Scripts []*Script
	// Class is set for fields.
	Class NodeID
	// Pending marks a variable whose type waits for a usage context.
	Pending bool

	Flags PassFlags
}

func (v *VarDef) Children() []Node {
	out := each(nil, v.Scripts)
	if v.Decl != nil {
		out = append(out, v.Decl)
	}
	if v.Initial != nil {
		out = append(out, v.Initial)
	}
	return out
}

func (v *VarDef) stmtNode() {}

// EnumDef is an enumeration with ordinal items.
type EnumDef struct {
	NodeMeta
	Name  string
	Items []*EnumItem
	Flags PassFlags
}

func (e *EnumDef) Children() []Node { return each(nil, e.Items) }

// Item returns the named item or nil.
func (e *EnumDef) Item(name string) *EnumItem {
	for _, it := range e.Items {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// EnumItem is one enumeration constant.
type EnumItem struct {
	NodeMeta
	Name  string
	Value int64
}

func (e *EnumItem) Children() []Node { return nil }

// TypeDef is a type alias.
type TypeDef struct {
	NodeMeta
	Name   string
	Target Type
}

func (t *TypeDef) Children() []Node { return []Node{t.Target} }

// GenericParam is a type, variadic or literal generic parameter; the kind
// tells which.
type GenericParam struct {
	NodeMeta
	Name string
	// LiteralType is the value type of a literal parameter.
	LiteralType Type
}

func (g *GenericParam) Children() []Node {
	if g.LiteralType != nil {
		return []Node{g.LiteralType}
	}
	return nil
}

// GenericArg is a type, variadic or literal generic argument.
type GenericArg struct {
	NodeMeta
	Type    Type
	Types   []Type // variadic
	Literal *Literal
	// MayBeTypeParam lets a type argument fill a literal parameter when the
	// argument itself names a generic parameter of an enclosing prototype.
	MayBeTypeParam bool
}

func (g *GenericArg) Children() []Node {
	var out []Node
	if g.Type != nil {
		out = append(out, g.Type)
	}
	out = each(out, g.Types)
	if g.Literal != nil {
		out = append(out, g.Literal)
	}
	return out
}

func (g *GenericArg) String() string {
	switch g.kind {
	case KindLiteralArg:
		return g.Literal.Text
	case KindVariadicArg:
		parts := make([]string, len(g.Types))
		for i, t := range g.Types {
			parts[i] = typeString(t)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return typeString(g.Type)
	}
}

// UserType references a named type, possibly with generic arguments.
type UserType struct {
	NodeMeta
	Path        []string
	GenericArgs []*GenericArg
	// Target is the class, enum, alias or generic parameter this resolves to.
	Target NodeID
}

func (u *UserType) Children() []Node { return each(nil, u.GenericArgs) }

func (u *UserType) typeNode() {}

func (u *UserType) String() string {
	s := strings.Join(u.Path, ".")
	if len(u.GenericArgs) > 0 {
		parts := make([]string, len(u.GenericArgs))
		for i, a := range u.GenericArgs {
			parts[i] = a.String()
		}
		s += "<" + strings.Join(parts, ", ") + ">"
	}
	return s
}

// Instantiation binds generic parameter names to arguments. It belongs to
// exactly one instantiated class.
type Instantiation struct {
	Params []*GenericParam
	Args   []*GenericArg
	Named  map[string]*GenericArg
}

// Binding returns the argument bound to name.
func (i *Instantiation) Binding(name string) (*GenericArg, bool) {
	if i == nil {
		return nil, false
	}
	a, ok := i.Named[name]
	return a, ok
}

// PassFlags records which passes already handled a definition, so catch-up
// and repeated references never process it twice.
type PassFlags struct {
	Headed     bool
	Expanded   bool
	Scripted   bool
	Registered bool
	Named      bool
	Typed      bool
	typing     bool
}

// BeginTyping marks the start of type resolution and reports whether it had
// already begun.
func (p *PassFlags) BeginTyping() bool {
	was := p.typing
	p.typing = true
	return was
}

// Typing reports whether type resolution began but has not finished.
func (p *PassFlags) Typing() bool { return p.typing && !p.Typed }

func typeString(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func each[T Node](out []Node, items []T) []Node {
	for _, it := range items {
		out = append(out, it)
	}
	return out
}
