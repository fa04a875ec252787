package astload

import (
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/gml/internal/ast"
)

type exprDecoder func(d *decoder, n *yaml.Node) ast.Expr

type stmtDecoder func(d *decoder, n *yaml.Node) ast.Stmt

var (
	exprDecoders map[string]exprDecoder
	stmtDecoders map[string]stmtDecoder
)

func init() {
	exprDecoders = map[string]exprDecoder{
		"int":     (*decoder).intLit,
		"float":   (*decoder).floatLit,
		"bool":    (*decoder).boolLit,
		"char":    (*decoder).charLit,
		"string":  func(d *decoder, n *yaml.Node) ast.Expr { return d.a.Str(d.str(n)) },
		"fstring": func(d *decoder, n *yaml.Node) ast.Expr { return d.a.StringEval(d.str(n)) },
		"nil":     func(d *decoder, _ *yaml.Node) ast.Expr { return d.a.Nil() },
		"this":    func(d *decoder, _ *yaml.Node) ast.Expr { return d.a.This() },
		"name":    func(d *decoder, n *yaml.Node) ast.Expr { return d.a.Path(d.str(n)) },
		"list":    func(d *decoder, n *yaml.Node) ast.Expr { return d.a.List(d.exprs(n)...) },
		"dict":    (*decoder).dict,
		"call":    (*decoder).call,
		"attr":    (*decoder).attr,
		"index":   (*decoder).index,
		"binary":  (*decoder).binary,
		"unary":   (*decoder).unary,
		"ifelse":  (*decoder).ifElse,
		"closure": (*decoder).closure,
		"generic": (*decoder).generic,
		"cast":    (*decoder).cast,
		"match": func(d *decoder, n *yaml.Node) ast.Expr {
			s := d.match(n)
			s.IsExpr = true
			return s
		},
	}
	stmtDecoders = map[string]stmtDecoder{
		"return":   (*decoder).returnStmt,
		"break":    func(d *decoder, _ *yaml.Node) ast.Stmt { return d.a.Break() },
		"continue": func(d *decoder, _ *yaml.Node) ast.Stmt { return d.a.Continue() },
		"var":      func(d *decoder, n *yaml.Node) ast.Stmt { return d.variable(n) },
		"const": func(d *decoder, n *yaml.Node) ast.Stmt {
			x := d.variable(n)
			x.Const = true
			return x
		},
		"block":  func(d *decoder, n *yaml.Node) ast.Stmt { return d.a.Block(d.stmts(n)...) },
		"if":     (*decoder).ifStmt,
		"while":  (*decoder).while,
		"for":    (*decoder).forEach,
		"assign": (*decoder).assign,
		"assert": (*decoder).assert,
		"expr":   func(d *decoder, n *yaml.Node) ast.Stmt { return d.a.ExprStmt(d.expr(n)) },
		"match":  func(d *decoder, n *yaml.Node) ast.Stmt { return d.match(n) },
	}
}

func (d *decoder) expr(n *yaml.Node) ast.Expr {
	if n.Kind == yaml.ScalarNode {
		return d.scalar(n)
	}
	kind, v := d.tagged(n)
	dec, ok := exprDecoders[kind]
	if !ok {
		d.failf(n, "unknown expression kind %q", kind)
	}
	return dec(d, v)
}

func (d *decoder) scalar(n *yaml.Node) ast.Expr {
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		return d.a.Str(n.Value)
	}
	switch n.Tag {
	case "!!int":
		return d.intLit(n)
	case "!!float":
		return d.floatLit(n)
	case "!!bool":
		return d.boolLit(n)
	case "!!null":
		return d.a.Nil()
	}
	return d.a.Path(n.Value)
}

func (d *decoder) exprs(n *yaml.Node) []ast.Expr {
	var out []ast.Expr
	for _, c := range d.seq(n) {
		out = append(out, d.expr(c))
	}
	return out
}

func (d *decoder) intLit(n *yaml.Node) ast.Expr {
	var v int64
	if err := n.Decode(&v); err != nil {
		d.failf(n, "invalid int %q", n.Value)
	}
	return d.a.Int(v)
}

func (d *decoder) floatLit(n *yaml.Node) ast.Expr {
	v, err := strconv.ParseFloat(d.str(n), 64)
	if err != nil {
		d.failf(n, "invalid float %q", n.Value)
	}
	return d.a.Float(v)
}

func (d *decoder) boolLit(n *yaml.Node) ast.Expr {
	return d.a.Bool(d.flag(n))
}

func (d *decoder) charLit(n *yaml.Node) ast.Expr {
	s := d.str(n)
	d.check(n, utf8.RuneCountInString(s) == 1, "char literal %q must be a single character", s)
	r, _ := utf8.DecodeRuneInString(s)
	return d.a.Char(r)
}

func (d *decoder) dict(n *yaml.Node) ast.Expr {
	var items []*ast.DictItem
	for _, c := range d.seq(n) {
		m := d.fields(c, "key", "value")
		items = append(items, d.a.DictItem(d.expr(d.require(c, m, "key")), d.expr(d.require(c, m, "value"))))
	}
	return d.a.Dict(items...)
}

func (d *decoder) namedArgs(n *yaml.Node) []*ast.NamedArg {
	if n == nil || isNull(n) {
		return nil
	}
	d.check(n, n.Kind == yaml.MappingNode, "named arguments must be a mapping")
	var out []*ast.NamedArg
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, d.a.NamedArg(n.Content[i].Value, d.expr(n.Content[i+1])))
	}
	return out
}

func (d *decoder) call(n *yaml.Node) ast.Expr {
	if n.Kind == yaml.ScalarNode {
		return d.a.Call(d.a.Path(n.Value))
	}
	m := d.fields(n, "callee", "args", "named")
	return d.a.CallNamed(d.expr(d.require(n, m, "callee")), d.exprs(m["args"]), d.namedArgs(m["named"])...)
}

func (d *decoder) attr(n *yaml.Node) ast.Expr {
	m := d.fields(n, "object", "name")
	return d.a.Attr(d.expr(d.require(n, m, "object")), d.str(d.require(n, m, "name")))
}

func (d *decoder) index(n *yaml.Node) ast.Expr {
	m := d.fields(n, "collection", "key")
	return d.a.Index(d.expr(d.require(n, m, "collection")), d.expr(d.require(n, m, "key")))
}

func (d *decoder) binary(n *yaml.Node) ast.Expr {
	m := d.fields(n, "op", "left", "right")
	return d.a.Binary(d.str(d.require(n, m, "op")), d.expr(d.require(n, m, "left")), d.expr(d.require(n, m, "right")))
}

func (d *decoder) unary(n *yaml.Node) ast.Expr {
	m := d.fields(n, "op", "operand")
	return d.a.Unary(d.str(d.require(n, m, "op")), d.expr(d.require(n, m, "operand")))
}

func (d *decoder) ifElse(n *yaml.Node) ast.Expr {
	m := d.fields(n, "cond", "then", "else")
	return d.a.IfElse(d.expr(d.require(n, m, "cond")), d.expr(d.require(n, m, "then")), d.expr(d.require(n, m, "else")))
}

func (d *decoder) closure(n *yaml.Node) ast.Expr {
	m := d.fields(n, "params", "returns", "body")
	var spec *ast.FuncSpec
	if _, ok := m["params"]; ok {
		spec = d.spec(n, m)
	} else if _, ok := m["returns"]; ok {
		spec = d.spec(n, m)
	}
	return d.a.Closure(spec, d.a.Body(d.stmts(d.require(n, m, "body"))...))
}

func (d *decoder) generic(n *yaml.Node) ast.Expr {
	m := d.fields(n, "base", "args")
	var args []*ast.GenericArg
	for _, c := range d.seq(d.require(n, m, "args")) {
		args = append(args, d.a.TypeArg(d.typ(c)))
	}
	return d.a.Generic(d.expr(d.require(n, m, "base")), args...)
}

func (d *decoder) cast(n *yaml.Node) ast.Expr {
	m := d.fields(n, "value", "type")
	return d.a.Cast(d.expr(d.require(n, m, "value")), d.typ(d.require(n, m, "type")))
}

// match reads subject and cases; a case without a pattern is the default.
func (d *decoder) match(n *yaml.Node) *ast.Switch {
	m := d.fields(n, "subject", "cases")
	s := d.a.Switch(d.expr(d.require(n, m, "subject")))
	defaults := 0
	for _, c := range d.seq(d.require(n, m, "cases")) {
		cm := d.fields(c, "pattern", "body", "value")
		var pattern *ast.VarDef
		if p, ok := cm["pattern"]; ok {
			pm := d.fields(p, "name", "type")
			pattern = d.a.Var(d.str(d.require(p, pm, "name")), d.typ(d.require(p, pm, "type")), nil)
		} else {
			defaults++
		}
		var body *ast.Block
		if b, ok := cm["body"]; ok {
			body = d.a.Block(d.stmts(b)...)
		}
		e := d.a.Case(pattern, body)
		if v, ok := cm["value"]; ok {
			e.Value = d.expr(v)
		}
		d.check(c, e.Body != nil || e.Value != nil, "case needs a body or a value")
		s.Entries = append(s.Entries, e)
	}
	d.check(n, defaults <= 1, "match has more than one default case")
	return s
}

func (d *decoder) stmts(n *yaml.Node) []ast.Stmt {
	var out []ast.Stmt
	for _, c := range d.seq(n) {
		out = append(out, d.stmt(c))
	}
	return out
}

// stmt decodes a statement; an expression node stands for an expression
// statement.
func (d *decoder) stmt(n *yaml.Node) ast.Stmt {
	kind, v := d.tagged(n)
	if dec, ok := stmtDecoders[kind]; ok {
		return dec(d, v)
	}
	if _, ok := exprDecoders[kind]; ok {
		return d.a.ExprStmt(d.expr(n))
	}
	d.failf(n, "unknown statement kind %q", kind)
	return nil
}

func (d *decoder) block(n *yaml.Node) *ast.Block { return d.a.Block(d.stmts(n)...) }

func (d *decoder) returnStmt(n *yaml.Node) ast.Stmt {
	if isNull(n) {
		return d.a.Return(nil)
	}
	return d.a.Return(d.expr(n))
}

func (d *decoder) ifStmt(n *yaml.Node) ast.Stmt {
	m := d.fields(n, "cond", "then", "elif", "else")
	branches := []*ast.IfBranch{d.a.IfBranch(d.expr(d.require(n, m, "cond")), d.block(d.require(n, m, "then")))}
	for _, c := range d.seq(m["elif"]) {
		cm := d.fields(c, "cond", "then")
		branches = append(branches, d.a.IfBranch(d.expr(d.require(c, cm, "cond")), d.block(d.require(c, cm, "then"))))
	}
	var els *ast.Block
	if e, ok := m["else"]; ok {
		els = d.block(e)
	}
	return d.a.If(branches, els)
}

func (d *decoder) while(n *yaml.Node) ast.Stmt {
	m := d.fields(n, "cond", "body")
	return d.a.While(d.expr(d.require(n, m, "cond")), d.block(d.require(n, m, "body")))
}

func (d *decoder) forEach(n *yaml.Node) ast.Stmt {
	m := d.fields(n, "item", "value", "in", "body")
	f := d.a.ForEach(d.loopVar(d.require(n, m, "item")), d.expr(d.require(n, m, "in")), d.block(d.require(n, m, "body")))
	if v, ok := m["value"]; ok {
		f.Value = d.loopVar(v)
	}
	return f
}

func (d *decoder) loopVar(n *yaml.Node) *ast.VarDef {
	if n.Kind == yaml.ScalarNode {
		return d.a.Var(n.Value, nil, nil)
	}
	m := d.fields(n, "name", "type")
	return d.a.Var(d.str(d.require(n, m, "name")), d.optType(m["type"]), nil)
}

func (d *decoder) assign(n *yaml.Node) ast.Stmt {
	m := d.fields(n, "target", "op", "value")
	op := "="
	if o, ok := m["op"]; ok {
		op = d.str(o)
	}
	return d.a.Assign(d.expr(d.require(n, m, "target")), op, d.expr(d.require(n, m, "value")))
}

func (d *decoder) assert(n *yaml.Node) ast.Stmt {
	m := d.fields(n, "cond", "message")
	var msg ast.Expr
	if v, ok := m["message"]; ok {
		msg = d.expr(v)
	}
	return d.a.Assert(d.expr(d.require(n, m, "cond")), msg)
}
