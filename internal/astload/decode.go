// Package astload decodes translation units serialized as YAML by the
// external parser.
//
// A document has the top-level keys package, library, imports and
// definitions. Every node is a single-key map whose key names its kind:
//
//	definitions:
//	  - class:
//	      name: Box
//	      generics: [T]
//	      fields: [{name: value, type: T}]
//	      body:
//	        - func: {name: get, returns: T, body: [{return: value}]}
//
// Types are type strings. A plain scalar in expression position is an int,
// float, bool or nil literal, a quoted scalar is a string literal and any
// other scalar is a dotted name.
package astload

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
)

// Decode parses one unit document into a. Any structural error reports the
// unit name and the YAML line.
func Decode(a *ast.Arena, name string, data []byte) (*ast.Unit, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	var u *ast.Unit
	err := contract.Catch(func() {
		d := &decoder{a: a, name: name}
		root := &doc
		if root.Kind == yaml.DocumentNode {
			d.check(root, len(root.Content) == 1, "expected a single document")
			root = root.Content[0]
		}
		u = d.unit(root)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return u, nil
}

type decoder struct {
	a    *ast.Arena
	name string
}

func (d *decoder) failf(n *yaml.Node, format string, args ...any) {
	contract.Failf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

func (d *decoder) check(n *yaml.Node, cond bool, format string, args ...any) {
	if !cond {
		d.failf(n, format, args...)
	}
}

// fields returns the entries of a mapping node and rejects unknown keys.
func (d *decoder) fields(n *yaml.Node, known ...string) map[string]*yaml.Node {
	d.check(n, n.Kind == yaml.MappingNode, "expected a mapping")
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if !contains(known, k.Value) {
			d.failf(k, "unknown key %q (expected one of %s)", k.Value, strings.Join(known, ", "))
		}
		out[k.Value] = v
	}
	return out
}

func (d *decoder) require(n *yaml.Node, m map[string]*yaml.Node, key string) *yaml.Node {
	v, ok := m[key]
	d.check(n, ok, "missing key %q", key)
	return v
}

// tagged splits a single-key map into its kind and payload.
func (d *decoder) tagged(n *yaml.Node) (string, *yaml.Node) {
	d.check(n, n.Kind == yaml.MappingNode && len(n.Content) == 2, "expected a single-key node")
	return n.Content[0].Value, n.Content[1]
}

func (d *decoder) seq(n *yaml.Node) []*yaml.Node {
	if n == nil || isNull(n) {
		return nil
	}
	d.check(n, n.Kind == yaml.SequenceNode, "expected a sequence")
	return n.Content
}

func (d *decoder) str(n *yaml.Node) string {
	d.check(n, n.Kind == yaml.ScalarNode, "expected a scalar")
	return n.Value
}

func (d *decoder) optStr(n *yaml.Node) string {
	if n == nil || isNull(n) {
		return ""
	}
	return d.str(n)
}

func (d *decoder) strs(n *yaml.Node) []string {
	var out []string
	for _, c := range d.seq(n) {
		out = append(out, d.str(c))
	}
	return out
}

func (d *decoder) flag(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		d.failf(n, "expected a boolean")
	}
	return b
}

func (d *decoder) typ(n *yaml.Node) ast.Type {
	t, err := ast.ParseType(d.a, d.str(n))
	if err != nil {
		d.failf(n, "type %q: %v", n.Value, err)
	}
	return t
}

func (d *decoder) optType(n *yaml.Node) ast.Type {
	if n == nil || isNull(n) {
		return nil
	}
	return d.typ(n)
}

func isNull(n *yaml.Node) bool { return n.Kind == yaml.ScalarNode && n.Tag == "!!null" }

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func (d *decoder) unit(n *yaml.Node) *ast.Unit {
	m := d.fields(n, "package", "library", "imports", "definitions")
	u := d.a.Unit(d.name, d.optStr(m["package"]))
	u.Library = d.flag(m["library"])
	for _, imp := range d.seq(m["imports"]) {
		u.Imports = append(u.Imports, d.importDecl(imp))
	}
	for _, def := range d.seq(m["definitions"]) {
		u.Definitions = append(u.Definitions, d.definition(def))
	}
	return u
}

func (d *decoder) importDecl(n *yaml.Node) *ast.Import {
	if n.Kind == yaml.ScalarNode {
		return d.a.Import(n.Value)
	}
	m := d.fields(n, "path", "names", "alias")
	imp := d.a.Import(d.str(d.require(n, m, "path")), d.strs(m["names"])...)
	imp.Alias = d.optStr(m["alias"])
	d.check(n, imp.Alias == "" || len(imp.Names) == 0, "a grouped import cannot have an alias")
	return imp
}
