package ast

// Body is the statement list of a function or closure; locals declare into
// the function itself.
type Body struct {
	NodeMeta
	Statements []Stmt
}

func (b *Body) Children() []Node { return each(nil, b.Statements) }
func (b *Body) stmtNode()        {}

// Block is a nested statement list with its own scope.
type Block struct {
	NodeMeta
	Statements []Stmt
}

func (b *Block) Children() []Node { return each(nil, b.Statements) }
func (b *Block) stmtNode()        {}

// Return leaves the enclosing function or closure.
type Return struct {
	NodeMeta
	Value Expr
}

func (r *Return) Children() []Node {
	if r.Value == nil {
		return nil
	}
	return []Node{r.Value}
}
func (r *Return) stmtNode() {}

type Break struct{ NodeMeta }

func (b *Break) Children() []Node { return nil }
func (b *Break) stmtNode()        {}

type Continue struct{ NodeMeta }

func (c *Continue) Children() []Node { return nil }
func (c *Continue) stmtNode()        {}

// If is a chain of conditional branches with an optional else block.
type If struct {
	NodeMeta
	Branches []*IfBranch
	Else     *Block
}

func (i *If) Children() []Node {
	out := each(nil, i.Branches)
	if i.Else != nil {
		out = append(out, i.Else)
	}
	return out
}
func (i *If) stmtNode() {}

type IfBranch struct {
	NodeMeta
	Cond Expr
	Body *Block
}

func (b *IfBranch) Children() []Node { return []Node{b.Cond, b.Body} }

type While struct {
	NodeMeta
	Cond Expr
	Body *Block
}

func (w *While) Children() []Node { return []Node{w.Cond, w.Body} }
func (w *While) stmtNode()        {}

// ForEach iterates a list, a string, or a dict's keys. With Value set it
// iterates dict key/value pairs.
type ForEach struct {
	NodeMeta
	Item       *VarDef
	Value      *VarDef
	Collection Expr
	Body       *Block
}

func (f *ForEach) Children() []Node {
	out := []Node{f.Collection, f.Item}
	if f.Value != nil {
		out = append(out, f.Value)
	}
	return append(out, f.Body)
}
func (f *ForEach) stmtNode() {}

// Assign is `target op value` where op is "=" or a compound operator.
type Assign struct {
	NodeMeta
	Target Expr
	Op     string
	Value  Expr
}

func (a *Assign) Children() []Node { return []Node{a.Target, a.Value} }
func (a *Assign) stmtNode()        {}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	NodeMeta
	X Expr
}

func (e *ExprStmt) Children() []Node { return []Node{e.X} }
func (e *ExprStmt) stmtNode()        {}

// Switch is class-hierarchy pattern matching. As an expression each entry
// yields Value.
type Switch struct {
	NodeMeta
	Subject Expr
	Entries []*CaseEntry
	IsExpr  bool
}

func (s *Switch) Children() []Node {
	out := []Node{s.Subject}
	return each(out, s.Entries)
}
func (s *Switch) stmtNode() {}
func (s *Switch) exprNode() {}

// Default returns the default entry, or nil.
func (s *Switch) Default() *CaseEntry {
	for _, e := range s.Entries {
		if e.Pattern == nil {
			return e
		}
	}
	return nil
}

// CaseEntry binds Pattern (a typed variable) when the subject matches its
// class. A nil Pattern is the default case.
type CaseEntry struct {
	NodeMeta
	Pattern *VarDef
	Body    *Block
	Value   Expr
}

func (c *CaseEntry) Children() []Node {
	var out []Node
	if c.Pattern != nil {
		out = append(out, c.Pattern)
	}
	if c.Body != nil {
		out = append(out, c.Body)
	}
	if c.Value != nil {
		out = append(out, c.Value)
	}
	return out
}

// Assert fails the execution when Cond is false.
type Assert struct {
	NodeMeta
	Cond    Expr
	Message Expr
}

func (a *Assert) Children() []Node {
	out := []Node{a.Cond}
	if a.Message != nil {
		out = append(out, a.Message)
	}
	return out
}
func (a *Assert) stmtNode() {}
