package ast

import (
	"github.com/funvibe/gml/internal/contract"
)

// Clone deep-copies the subtree rooted at n into fresh arena slots. Owners,
// inferred types and pass flags start empty; type references keep their
// resolved targets.
func Clone[T Node](a *Arena, n T) T {
	return a.clone(n).(T)
}

func cloneAll[T Node](a *Arena, items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = a.clone(it).(T)
	}
	return out
}

func cloneOpt[T Node](a *Arena, n T, present bool) T {
	if !present {
		return n
	}
	return a.clone(n).(T)
}

func (a *Arena) cloneExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return a.clone(e).(Expr)
}

func (a *Arena) cloneType(t Type) Type {
	if t == nil {
		return nil
	}
	return a.clone(t).(Type)
}

func (a *Arena) clone(n Node) Node {
	kind := n.Kind()
	switch x := n.(type) {
	case *Import:
		c := *x
		c.NodeMeta = NodeMeta{}
		c.Target = NoNode
		return add(a, kind, &c)
	case *Script:
		c := *x
		c.NodeMeta = NodeMeta{}
		c.Args = cloneAll(a, x.Args)
		c.NamedArgs = cloneAll(a, x.NamedArgs)
		c.Resolved, c.processed, c.named = NoNode, false, false
		return add(a, kind, &c)
	case *ClassDef:
		c := &ClassDef{Name: x.Name, Variety: x.Variety, Singleton: x.Singleton}
		c.GenericParams = cloneAll(a, x.GenericParams)
		c.Bases = cloneAll(a, x.Bases)
		c.Fields = cloneAll(a, x.Fields)
		c.Scripts = cloneAll(a, x.Scripts)
		c.Definitions = cloneAll(a, x.Definitions)
		return add(a, kind, c)
	case *ExtensionDef:
		c := &ExtensionDef{Receiver: Clone(a, x.Receiver), Definitions: cloneAll(a, x.Definitions)}
		return add(a, kind, c)
	case *FuncDef:
		c := &FuncDef{
			Name: x.Name, FuncKind: x.FuncKind, Static: x.Static, Native: x.Native,
			SingletonAccessor: x.SingletonAccessor,
		}
		c.Spec = cloneOpt(a, x.Spec, x.Spec != nil)
		c.Body = cloneOpt(a, x.Body, x.Body != nil)
		c.Receiver = cloneOpt(a, x.Receiver, x.Receiver != nil)
		c.Scripts = cloneAll(a, x.Scripts)
		return add(a, kind, c)
	case *FuncSpec:
		return add(a, kind, &FuncSpec{Params: cloneAll(a, x.Params), Return: a.cloneType(x.Return)})
	case *Param:
		return add(a, kind, &Param{Name: x.Name, Type: a.cloneType(x.Type), Variadic: x.Variadic, Default: a.cloneExpr(x.Default)})
	case *VarDef:
		c := &VarDef{Name: x.Name, Decl: a.cloneType(x.Decl), Initial: a.cloneExpr(x.Initial), Const: x.Const}
		c.Scripts = cloneAll(a, x.Scripts)
		return add(a, kind, c)
	case *EnumDef:
		return add(a, kind, &EnumDef{Name: x.Name, Items: cloneAll(a, x.Items)})
	case *EnumItem:
		return add(a, kind, &EnumItem{Name: x.Name, Value: x.Value})
	case *TypeDef:
		return add(a, kind, &TypeDef{Name: x.Name, Target: a.cloneType(x.Target)})
	case *GenericParam:
		return add(a, kind, &GenericParam{Name: x.Name, LiteralType: a.cloneType(x.LiteralType)})
	case *GenericArg:
		c := &GenericArg{Type: a.cloneType(x.Type), MayBeTypeParam: x.MayBeTypeParam}
		for _, t := range x.Types {
			c.Types = append(c.Types, a.cloneType(t))
		}
		c.Literal = cloneOpt(a, x.Literal, x.Literal != nil)
		return add(a, kind, c)
	case *UserType:
		return add(a, kind, &UserType{Path: append([]string{}, x.Path...), GenericArgs: cloneAll(a, x.GenericArgs), Target: x.Target})

	case *Identifier:
		return add(a, kind, &Identifier{Name: x.Name})
	case *Literal:
		c := *x
		c.NodeMeta = NodeMeta{}
		return add(a, kind, &c)
	case *Nil:
		return add(a, kind, &Nil{})
	case *This:
		return add(a, kind, &This{})
	case *ListLiteral:
		return add(a, kind, &ListLiteral{Values: cloneAll(a, x.Values)})
	case *DictLiteral:
		return add(a, kind, &DictLiteral{Items: cloneAll(a, x.Items)})
	case *DictItem:
		return add(a, kind, &DictItem{Key: a.cloneExpr(x.Key), Value: a.cloneExpr(x.Value)})
	case *StringEval:
		return add(a, kind, &StringEval{Raw: x.Raw})
	case *Call:
		return add(a, kind, &Call{Caller: a.cloneExpr(x.Caller), Args: cloneAll(a, x.Args), NamedArgs: cloneAll(a, x.NamedArgs)})
	case *NamedArg:
		return add(a, kind, &NamedArg{Name: x.Name, Value: a.cloneExpr(x.Value)})
	case *AttrRef:
		return add(a, kind, &AttrRef{Object: a.cloneExpr(x.Object), Name: x.Name})
	case *Subscript:
		return add(a, kind, &Subscript{Collection: a.cloneExpr(x.Collection), Key: a.cloneExpr(x.Key)})
	case *BinaryOp:
		return add(a, kind, &BinaryOp{Op: x.Op, Left: a.cloneExpr(x.Left), Right: a.cloneExpr(x.Right)})
	case *UnaryOp:
		return add(a, kind, &UnaryOp{Op: x.Op, Operand: a.cloneExpr(x.Operand)})
	case *IfElseExpr:
		return add(a, kind, &IfElseExpr{Cond: a.cloneExpr(x.Cond), Then: a.cloneExpr(x.Then), Else: a.cloneExpr(x.Else)})
	case *Closure:
		return add(a, kind, &Closure{Spec: cloneOpt(a, x.Spec, x.Spec != nil), Body: Clone(a, x.Body)})
	case *GenericExpr:
		return add(a, kind, &GenericExpr{Base: a.cloneExpr(x.Base), GenericArgs: cloneAll(a, x.GenericArgs)})
	case *TypeCast:
		return add(a, kind, &TypeCast{Value: a.cloneExpr(x.Value), To: a.cloneType(x.To)})

	case *Body:
		return add(a, kind, &Body{Statements: cloneAll(a, x.Statements)})
	case *Block:
		return add(a, kind, &Block{Statements: cloneAll(a, x.Statements)})
	case *Return:
		return add(a, kind, &Return{Value: a.cloneExpr(x.Value)})
	case *Break:
		return add(a, kind, &Break{})
	case *Continue:
		return add(a, kind, &Continue{})
	case *If:
		return add(a, kind, &If{Branches: cloneAll(a, x.Branches), Else: cloneOpt(a, x.Else, x.Else != nil)})
	case *IfBranch:
		return add(a, kind, &IfBranch{Cond: a.cloneExpr(x.Cond), Body: Clone(a, x.Body)})
	case *While:
		return add(a, kind, &While{Cond: a.cloneExpr(x.Cond), Body: Clone(a, x.Body)})
	case *ForEach:
		return add(a, kind, &ForEach{
			Item: Clone(a, x.Item), Value: cloneOpt(a, x.Value, x.Value != nil),
			Collection: a.cloneExpr(x.Collection), Body: Clone(a, x.Body),
		})
	case *Assign:
		return add(a, kind, &Assign{Target: a.cloneExpr(x.Target), Op: x.Op, Value: a.cloneExpr(x.Value)})
	case *ExprStmt:
		return add(a, kind, &ExprStmt{X: a.cloneExpr(x.X)})
	case *Switch:
		return add(a, kind, &Switch{Subject: a.cloneExpr(x.Subject), Entries: cloneAll(a, x.Entries), IsExpr: x.IsExpr})
	case *CaseEntry:
		return add(a, kind, &CaseEntry{
			Pattern: cloneOpt(a, x.Pattern, x.Pattern != nil),
			Body:    cloneOpt(a, x.Body, x.Body != nil),
			Value:   a.cloneExpr(x.Value),
		})
	case *Assert:
		return add(a, kind, &Assert{Cond: a.cloneExpr(x.Cond), Message: a.cloneExpr(x.Message)})
	}
	contract.Failf("clone: unsupported node %v", kind)
	return nil
}
