package ast

// Identifier references a name.
type Identifier struct {
	NodeMeta
	Name   string
	Target NodeID
}

func (i *Identifier) Children() []Node { return nil }
func (i *Identifier) exprNode()        {}

// LiteralKind distinguishes primitive literals.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitChar
	LitString
)

// Literal is a primitive constant. Text is the canonical source form.
type Literal struct {
	NodeMeta
	LitKind LiteralKind
	Text    string
	Int     int64
	Float   float64
	Bool    bool
	Str     string // string literals and the single rune of a char literal
}

func (l *Literal) Children() []Node { return nil }
func (l *Literal) exprNode()        {}

// Nil is the null literal; its type comes from the expected type.
type Nil struct{ NodeMeta }

func (n *Nil) Children() []Node { return nil }
func (n *Nil) exprNode()        {}

// This refers to the receiver of the enclosing method.
type This struct{ NodeMeta }

func (t *This) Children() []Node { return nil }
func (t *This) exprNode()        {}

// ListLiteral is `[a, b, c]`.
type ListLiteral struct {
	NodeMeta
	Values []Expr
}

func (l *ListLiteral) Children() []Node { return each(nil, l.Values) }
func (l *ListLiteral) exprNode()        {}

// DictLiteral is `{k: v}`.
type DictLiteral struct {
	NodeMeta
	Items []*DictItem
}

func (d *DictLiteral) Children() []Node { return each(nil, d.Items) }
func (d *DictLiteral) exprNode()        {}

// DictItem is one key/value pair of a DictLiteral.
type DictItem struct {
	NodeMeta
	Key   Expr
	Value Expr
}

func (d *DictItem) Children() []Node { return []Node{d.Key, d.Value} }

// StringEval is a string literal with interpolation markers. Name
// resolution fills Format and Args.
type StringEval struct {
	NodeMeta
	Raw    string
	Format string
	Args   []Expr
	// Rewritten is set once Format/Args are populated.
	Rewritten bool
}

func (s *StringEval) Children() []Node { return each(nil, s.Args) }
func (s *StringEval) exprNode()        {}

// Call applies Caller to positional and named arguments.
type Call struct {
	NodeMeta
	Caller    Expr
	Args      []Expr
	NamedArgs []*NamedArg
	// Target is the resolved callee definition (function or class).
	Target NodeID
}

func (c *Call) Children() []Node {
	out := []Node{c.Caller}
	out = each(out, c.Args)
	return each(out, c.NamedArgs)
}
func (c *Call) exprNode() {}

// NamedArg is `name=value` in a call; for constructors it sets a field.
type NamedArg struct {
	NodeMeta
	Name   string
	Value  Expr
	Target NodeID
}

func (n *NamedArg) Children() []Node { return []Node{n.Value} }

// AttrRef is `object.name`.
type AttrRef struct {
	NodeMeta
	Object Expr
	Name   string
	Target NodeID
}

func (a *AttrRef) Children() []Node { return []Node{a.Object} }
func (a *AttrRef) exprNode()        {}

// Subscript is `collection[key]`.
type Subscript struct {
	NodeMeta
	Collection Expr
	Key        Expr
}

func (s *Subscript) Children() []Node { return []Node{s.Collection, s.Key} }
func (s *Subscript) exprNode()        {}

// BinaryOp is `left op right`.
type BinaryOp struct {
	NodeMeta
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryOp) Children() []Node { return []Node{b.Left, b.Right} }
func (b *BinaryOp) exprNode()        {}

// UnaryOp is `op operand`.
type UnaryOp struct {
	NodeMeta
	Op      string
	Operand Expr
}

func (u *UnaryOp) Children() []Node { return []Node{u.Operand} }
func (u *UnaryOp) exprNode()        {}

// IfElseExpr is `cond ? then : else`.
type IfElseExpr struct {
	NodeMeta
	Cond Expr
	Then Expr
	Else Expr
}

func (i *IfElseExpr) Children() []Node { return []Node{i.Cond, i.Then, i.Else} }
func (i *IfElseExpr) exprNode()        {}

// Closure is an anonymous function expression. Spec may be nil when the
// signature comes from the expected type.
type Closure struct {
	NodeMeta
	Spec *FuncSpec
	Body *Body
}

func (c *Closure) Children() []Node {
	var out []Node
	if c.Spec != nil {
		out = append(out, c.Spec)
	}
	return append(out, c.Body)
}
func (c *Closure) exprNode() {}

// GenericExpr is `Base<Args>` in expression position.
type GenericExpr struct {
	NodeMeta
	Base        Expr
	GenericArgs []*GenericArg
	Target      NodeID
}

func (g *GenericExpr) Children() []Node {
	out := []Node{g.Base}
	return each(out, g.GenericArgs)
}
func (g *GenericExpr) exprNode() {}

// TypeCast is `value as To`.
type TypeCast struct {
	NodeMeta
	Value Expr
	To    Type
}

func (t *TypeCast) Children() []Node { return []Node{t.Value, t.To} }
func (t *TypeCast) exprNode()        {}
