package astload

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/gml/internal/ast"
)

var classVarieties = map[string]ast.ClassVariety{
	"class":     ast.VarietyClass,
	"interface": ast.VarietyInterface,
	"trait":     ast.VarietyTrait,
	"struct":    ast.VarietyStruct,
}

func (d *decoder) definition(n *yaml.Node) ast.Node {
	kind, v := d.tagged(n)
	switch kind {
	case "class", "interface", "trait", "struct":
		cls := d.a.Class("")
		cls.Variety = classVarieties[kind]
		d.classBody(cls, v)
		return cls
	case "case":
		cls := d.a.CaseClass("")
		d.classBody(cls, v)
		return cls
	case "func":
		return d.function(v)
	case "var", "const":
		x := d.variable(v)
		x.Const = kind == "const"
		return x
	case "enum":
		m := d.fields(v, "name", "items")
		return d.a.Enum(d.str(d.require(v, m, "name")), d.strs(m["items"])...)
	case "typedef":
		m := d.fields(v, "name", "type")
		return d.a.TypeDef(d.str(d.require(v, m, "name")), d.typ(d.require(v, m, "type")))
	case "extension":
		m := d.fields(v, "receiver", "body")
		recv, ok := d.typ(d.require(v, m, "receiver")).(*ast.UserType)
		d.check(v, ok, "extension receiver must name a class")
		ext := d.a.Extension(recv)
		for _, c := range d.seq(m["body"]) {
			ext.Definitions = append(ext.Definitions, d.definition(c))
		}
		return ext
	}
	d.failf(n, "unknown definition kind %q", kind)
	return nil
}

func (d *decoder) classBody(cls *ast.ClassDef, n *yaml.Node) {
	m := d.fields(n, "name", "generics", "bases", "fields", "scripts", "body")
	cls.Name = d.str(d.require(n, m, "name"))
	for _, g := range d.seq(m["generics"]) {
		cls.GenericParams = append(cls.GenericParams, d.genericParam(g))
	}
	for _, b := range d.seq(m["bases"]) {
		base, ok := d.typ(b).(*ast.UserType)
		d.check(b, ok, "base of %s must name a class", cls.Name)
		cls.Bases = append(cls.Bases, base)
	}
	for _, f := range d.seq(m["fields"]) {
		cls.Fields = append(cls.Fields, d.variable(f))
	}
	cls.Scripts = d.scripts(m["scripts"])
	for _, c := range d.seq(m["body"]) {
		cls.Definitions = append(cls.Definitions, d.definition(c))
	}
}

// genericParam reads "T", "Ts..." or "N: Int".
func (d *decoder) genericParam(n *yaml.Node) *ast.GenericParam {
	if n.Kind == yaml.MappingNode {
		d.check(n, len(n.Content) == 2, "literal generic parameter must be a single pair")
		return d.a.LiteralParam(d.str(n.Content[0]), d.typ(n.Content[1]))
	}
	s := d.str(n)
	if name, ok := strings.CutSuffix(s, "..."); ok {
		return d.a.VariadicParam(name)
	}
	return d.a.TypeParam(s)
}

func (d *decoder) scripts(n *yaml.Node) []*ast.Script {
	var out []*ast.Script
	for _, c := range d.seq(n) {
		if c.Kind == yaml.ScalarNode {
			out = append(out, d.a.Script(c.Value))
			continue
		}
		m := d.fields(c, "name", "args", "named")
		s := d.a.Script(d.str(d.require(c, m, "name")), d.exprs(m["args"])...)
		s.NamedArgs = d.namedArgs(m["named"])
		out = append(out, s)
	}
	return out
}

func (d *decoder) function(n *yaml.Node) *ast.FuncDef {
	m := d.fields(n, "name", "params", "returns", "receiver", "static", "scripts", "body")
	spec := d.spec(n, m)
	var body *ast.Body
	if b, ok := m["body"]; ok {
		body = d.a.Body(d.stmts(b)...)
	}
	f := d.a.Func(d.str(d.require(n, m, "name")), spec, body)
	f.Static = d.flag(m["static"])
	f.Scripts = d.scripts(m["scripts"])
	if r, ok := m["receiver"]; ok {
		recv, isUser := d.typ(r).(*ast.UserType)
		d.check(r, isUser, "receiver must name a class")
		f.Receiver = recv
	}
	d.check(n, body != nil, "function %s has no body", f.Name)
	return f
}

// spec reads params and returns; a missing return type is inferred later.
func (d *decoder) spec(n *yaml.Node, m map[string]*yaml.Node) *ast.FuncSpec {
	var params []*ast.Param
	for _, p := range d.seq(m["params"]) {
		params = append(params, d.param(p))
	}
	for i, p := range params {
		d.check(n, !p.Variadic || i == len(params)-1, "only the last parameter can be variadic")
	}
	return d.a.Spec(d.optType(m["returns"]), params...)
}

func (d *decoder) param(n *yaml.Node) *ast.Param {
	if n.Kind == yaml.ScalarNode {
		return d.a.Param(n.Value, nil)
	}
	m := d.fields(n, "name", "type", "default", "variadic")
	p := d.a.Param(d.str(d.require(n, m, "name")), d.optType(m["type"]))
	p.Variadic = d.flag(m["variadic"])
	if def, ok := m["default"]; ok {
		p.Default = d.expr(def)
	}
	return p
}

func (d *decoder) variable(n *yaml.Node) *ast.VarDef {
	m := d.fields(n, "name", "type", "value", "const", "scripts")
	var initial ast.Expr
	if v, ok := m["value"]; ok {
		initial = d.expr(v)
	}
	x := d.a.Var(d.str(d.require(n, m, "name")), d.optType(m["type"]), initial)
	x.Const = d.flag(m["const"])
	x.Scripts = d.scripts(m["scripts"])
	return x
}
