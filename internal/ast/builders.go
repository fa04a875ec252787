package ast

import (
	"strconv"
	"strings"
)

// Constructors allocate nodes in the arena. They are used by the loader,
// by the registry of built-ins, by passes that synthesize code, and by tests.

func (a *Arena) Project() *Project { return add(a, KindProject, &Project{}) }

// Package allocates a package node. Use symbols.Table.Package to obtain
// cached packages; this only allocates.
func (a *Arena) Package(path []string) *Package {
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	return add(a, KindPackage, &Package{Name: name, Path: append([]string{}, path...)})
}

// Subpackage allocates child under parent and links them.
func (a *Arena) Subpackage(parent *Package, name string) *Package {
	path := append(append([]string{}, parent.Path...), name)
	child := a.Package(path)
	child.Owner = parent.ID
	parent.putSubpackage(child)
	return child
}

func (a *Arena) Unit(name string, pkg string, defs ...Node) *Unit {
	return add(a, KindUnit, &Unit{Name: name, PackagePath: SplitPath(pkg), Definitions: defs})
}

func (a *Arena) Import(path string, names ...string) *Import {
	return add(a, KindImport, &Import{Path: SplitPath(path), Names: names})
}

func (a *Arena) Script(name string, args ...Expr) *Script {
	return add(a, KindScript, &Script{Name: name, Args: args})
}

func (a *Arena) Class(name string, defs ...Node) *ClassDef {
	return add(a, KindClass, &ClassDef{Name: name, Definitions: defs})
}

func (a *Arena) LibClass(name string, defs ...Node) *ClassDef {
	return add(a, KindLibClass, &ClassDef{Name: name, Definitions: defs})
}

func (a *Arena) CaseClass(name string, defs ...Node) *ClassDef {
	return add(a, KindCaseClass, &ClassDef{Name: name, Definitions: defs})
}

func (a *Arena) Extension(recv *UserType, defs ...Node) *ExtensionDef {
	return add(a, KindExtension, &ExtensionDef{Receiver: recv, Definitions: defs})
}

func (a *Arena) Func(name string, spec *FuncSpec, body *Body) *FuncDef {
	if spec == nil {
		spec = a.Spec(nil)
	}
	return add(a, KindFunc, &FuncDef{Name: name, Spec: spec, Body: body})
}

func (a *Arena) LibFunc(name string, spec *FuncSpec, native string) *FuncDef {
	return add(a, KindLibFunc, &FuncDef{Name: name, Spec: spec, Native: native})
}

func (a *Arena) Spec(ret Type, params ...*Param) *FuncSpec {
	return add(a, KindFuncSpec, &FuncSpec{Params: params, Return: ret})
}

func (a *Arena) Param(name string, t Type) *Param {
	return add(a, KindParam, &Param{Name: name, Type: t})
}

func (a *Arena) Var(name string, t Type, initial Expr) *VarDef {
	return add(a, KindVar, &VarDef{Name: name, Decl: t, Initial: initial})
}

func (a *Arena) Enum(name string, items ...string) *EnumDef {
	e := add(a, KindEnum, &EnumDef{Name: name})
	for i, it := range items {
		e.Items = append(e.Items, a.EnumItem(it, int64(i)))
	}
	return e
}

func (a *Arena) EnumItem(name string, value int64) *EnumItem {
	return add(a, KindEnumItem, &EnumItem{Name: name, Value: value})
}

func (a *Arena) TypeDef(name string, target Type) *TypeDef {
	return add(a, KindTypeDef, &TypeDef{Name: name, Target: target})
}

func (a *Arena) TypeParam(name string) *GenericParam {
	return add(a, KindTypeParam, &GenericParam{Name: name})
}

func (a *Arena) VariadicParam(name string) *GenericParam {
	return add(a, KindVariadicParam, &GenericParam{Name: name})
}

func (a *Arena) LiteralParam(name string, t Type) *GenericParam {
	return add(a, KindLiteralParam, &GenericParam{Name: name, LiteralType: t})
}

func (a *Arena) TypeArg(t Type) *GenericArg {
	return add(a, KindTypeArg, &GenericArg{Type: t})
}

func (a *Arena) VariadicArg(ts ...Type) *GenericArg {
	return add(a, KindVariadicArg, &GenericArg{Types: ts})
}

func (a *Arena) LiteralArg(l *Literal) *GenericArg {
	return add(a, KindLiteralArg, &GenericArg{Literal: l})
}

// Named builds a UserType from a dotted path.
func (a *Arena) Named(path string, args ...*GenericArg) *UserType {
	return a.UserType(SplitPath(path), args...)
}

func (a *Arena) UserType(path []string, args ...*GenericArg) *UserType {
	return add(a, KindUserType, &UserType{Path: append([]string{}, path...), GenericArgs: args})
}

// Expressions

func (a *Arena) Ident(name string) *Identifier {
	return add(a, KindIdent, &Identifier{Name: name})
}

func (a *Arena) Int(v int64) *Literal {
	return add(a, KindPrimitive, &Literal{LitKind: LitInt, Int: v, Text: strconv.FormatInt(v, 10)})
}

func (a *Arena) Float(v float64) *Literal {
	return add(a, KindPrimitive, &Literal{LitKind: LitFloat, Float: v, Text: strconv.FormatFloat(v, 'g', -1, 64)})
}

func (a *Arena) Bool(v bool) *Literal {
	return add(a, KindPrimitive, &Literal{LitKind: LitBool, Bool: v, Text: strconv.FormatBool(v)})
}

func (a *Arena) Char(r rune) *Literal {
	return add(a, KindPrimitive, &Literal{LitKind: LitChar, Str: string(r), Text: strconv.QuoteRune(r)})
}

func (a *Arena) Str(s string) *Literal {
	return add(a, KindPrimitive, &Literal{LitKind: LitString, Str: s, Text: strconv.Quote(s)})
}

func (a *Arena) Nil() *Nil   { return add(a, KindNil, &Nil{}) }
func (a *Arena) This() *This { return add(a, KindThis, &This{}) }

func (a *Arena) List(values ...Expr) *ListLiteral {
	return add(a, KindListLiteral, &ListLiteral{Values: values})
}

func (a *Arena) Dict(items ...*DictItem) *DictLiteral {
	return add(a, KindDictLiteral, &DictLiteral{Items: items})
}

func (a *Arena) DictItem(k, v Expr) *DictItem {
	return add(a, KindDictItem, &DictItem{Key: k, Value: v})
}

// StringEval allocates an interpolated string.
func (a *Arena) StringEval(raw string) *StringEval {
	return add(a, KindStringEval, &StringEval{Raw: raw})
}

func (a *Arena) Call(caller Expr, args ...Expr) *Call {
	return add(a, KindCall, &Call{Caller: caller, Args: args})
}

// CallNamed builds a call with named arguments.
func (a *Arena) CallNamed(caller Expr, args []Expr, named ...*NamedArg) *Call {
	c := a.Call(caller, args...)
	c.NamedArgs = named
	return c
}

func (a *Arena) NamedArg(name string, v Expr) *NamedArg {
	return add(a, KindNamedArg, &NamedArg{Name: name, Value: v})
}

func (a *Arena) Attr(obj Expr, name string) *AttrRef {
	return add(a, KindAttr, &AttrRef{Object: obj, Name: name})
}

// Path builds an identifier followed by attribute references.
func (a *Arena) Path(path string) Expr {
	parts := SplitPath(path)
	var e Expr = a.Ident(parts[0])
	for _, p := range parts[1:] {
		e = a.Attr(e, p)
	}
	return e
}

func (a *Arena) Index(coll, key Expr) *Subscript {
	return add(a, KindSubscript, &Subscript{Collection: coll, Key: key})
}

func (a *Arena) Binary(op string, l, r Expr) *BinaryOp {
	return add(a, KindBinary, &BinaryOp{Op: op, Left: l, Right: r})
}

func (a *Arena) Unary(op string, x Expr) *UnaryOp {
	return add(a, KindUnary, &UnaryOp{Op: op, Operand: x})
}

func (a *Arena) IfElse(cond, then, els Expr) *IfElseExpr {
	return add(a, KindIfElse, &IfElseExpr{Cond: cond, Then: then, Else: els})
}

func (a *Arena) Closure(spec *FuncSpec, body *Body) *Closure {
	return add(a, KindClosure, &Closure{Spec: spec, Body: body})
}

func (a *Arena) Generic(base Expr, args ...*GenericArg) *GenericExpr {
	return add(a, KindGenericExpr, &GenericExpr{Base: base, GenericArgs: args})
}

func (a *Arena) Cast(v Expr, to Type) *TypeCast {
	return add(a, KindTypeCast, &TypeCast{Value: v, To: to})
}

// Statements

func (a *Arena) Body(stmts ...Stmt) *Body {
	return add(a, KindBody, &Body{Statements: stmts})
}

func (a *Arena) Block(stmts ...Stmt) *Block {
	return add(a, KindBlock, &Block{Statements: stmts})
}

func (a *Arena) Return(v Expr) *Return { return add(a, KindReturn, &Return{Value: v}) }
func (a *Arena) Break() *Break         { return add(a, KindBreak, &Break{}) }
func (a *Arena) Continue() *Continue   { return add(a, KindContinue, &Continue{}) }

func (a *Arena) If(branches []*IfBranch, els *Block) *If {
	return add(a, KindIf, &If{Branches: branches, Else: els})
}

func (a *Arena) IfBranch(cond Expr, body *Block) *IfBranch {
	return add(a, KindIfBranch, &IfBranch{Cond: cond, Body: body})
}

func (a *Arena) While(cond Expr, body *Block) *While {
	return add(a, KindWhile, &While{Cond: cond, Body: body})
}

func (a *Arena) ForEach(item *VarDef, coll Expr, body *Block) *ForEach {
	return add(a, KindForEach, &ForEach{Item: item, Collection: coll, Body: body})
}

func (a *Arena) Assign(target Expr, op string, v Expr) *Assign {
	return add(a, KindAssign, &Assign{Target: target, Op: op, Value: v})
}

func (a *Arena) ExprStmt(x Expr) *ExprStmt { return add(a, KindExprStmt, &ExprStmt{X: x}) }

func (a *Arena) Switch(subject Expr, entries ...*CaseEntry) *Switch {
	return add(a, KindSwitch, &Switch{Subject: subject, Entries: entries})
}

// Case builds a case entry; a nil pattern is the default case.
func (a *Arena) Case(pattern *VarDef, body *Block) *CaseEntry {
	return add(a, KindCaseEntry, &CaseEntry{Pattern: pattern, Body: body})
}

func (a *Arena) Assert(cond, msg Expr) *Assert {
	return add(a, KindAssert, &Assert{Cond: cond, Message: msg})
}

// SplitPath splits a dotted path; the empty string yields nil.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
