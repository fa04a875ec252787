package astload

import (
	"strings"
	"testing"

	"github.com/funvibe/gml/internal/ast"
)

const boxUnit = `
package: app
imports:
  - sys.Console
  - {path: sys, names: [Logger, Env]}
definitions:
  - class:
      name: Box
      generics: [T]
      fields: [{name: value, type: T}]
      scripts: [singleton, {name: mixin, args: [app.Other]}]
      body:
        - func: {name: get, returns: T, body: [{return: value}]}
        - case: {name: Small, body: []}
  - func:
      name: main
      returns: Int
      body:
        - var: {name: xs, value: {list: []}}
        - for: {item: x, in: xs, body: [{expr: {call: {callee: println, args: [x]}}}]}
        - match:
            subject: b
            cases:
              - {pattern: {name: d, type: Dog}, body: [{break: null}]}
              - {value: "fallback"}
        - return: {call: {callee: {generic: {base: Box, args: [Int]}}, named: {value: 5}}}
`

func TestDecodeUnit(t *testing.T) {
	a := ast.NewArena()
	u, err := Decode(a, "box.gml.yaml", []byte(boxUnit))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.Join(u.PackagePath, "."); got != "app" {
		t.Fatalf("package = %q", got)
	}
	if len(u.Imports) != 2 || len(u.Imports[1].Names) != 2 {
		t.Fatalf("imports = %+v", u.Imports)
	}
	cls, ok := u.Definitions[0].(*ast.ClassDef)
	if !ok || cls.Name != "Box" || len(cls.GenericParams) != 1 || len(cls.Fields) != 1 {
		t.Fatalf("class = %+v", u.Definitions[0])
	}
	if len(cls.Scripts) != 2 || cls.Scripts[1].Name != "mixin" || len(cls.Scripts[1].Args) != 1 {
		t.Fatalf("scripts = %+v", cls.Scripts)
	}
	if cls.Definitions[1].Kind() != ast.KindCaseClass {
		t.Errorf("nested case kind = %v", cls.Definitions[1].Kind())
	}
	main := u.Definitions[1].(*ast.FuncDef)
	if len(main.Body.Statements) != 4 {
		t.Fatalf("main has %d statements", len(main.Body.Statements))
	}
	if _, ok := main.Body.Statements[1].(*ast.ForEach); !ok {
		t.Errorf("statement 1 = %T", main.Body.Statements[1])
	}
	sw := main.Body.Statements[2].(*ast.Switch)
	if sw.IsExpr || len(sw.Entries) != 2 || sw.Default() != sw.Entries[1] {
		t.Errorf("switch = %+v", sw)
	}
	if lit, ok := sw.Entries[1].Value.(*ast.Literal); !ok || lit.Str != "fallback" {
		t.Errorf("default value = %+v", sw.Entries[1].Value)
	}
	ret := main.Body.Statements[3].(*ast.Return)
	call := ret.Value.(*ast.Call)
	if _, ok := call.Caller.(*ast.GenericExpr); !ok || len(call.NamedArgs) != 1 {
		t.Errorf("return call = %+v", call)
	}
}

func TestDecodeScalars(t *testing.T) {
	a := ast.NewArena()
	u, err := Decode(a, "s", []byte(`
definitions:
  - var: {name: a, value: 3}
  - var: {name: b, value: 2.5}
  - var: {name: c, value: true}
  - var: {name: d, value: "text"}
  - var: {name: e, value: other.name}
  - var: {name: f, value: {char: "x"}}
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []ast.Kind{ast.KindPrimitive, ast.KindPrimitive, ast.KindPrimitive, ast.KindPrimitive, ast.KindAttr, ast.KindPrimitive}
	for i, d := range u.Definitions {
		x := d.(*ast.VarDef)
		if x.Initial.Kind() != want[i] {
			t.Errorf("%s: kind %v, want %v", x.Name, x.Initial.Kind(), want[i])
		}
	}
	if l := u.Definitions[3].(*ast.VarDef).Initial.(*ast.Literal); l.LitKind != ast.LitString {
		t.Errorf("quoted scalar decoded as %v", l.LitKind)
	}
}

func TestDecodeErrorsReportLine(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown definition", "definitions:\n  - widget: {}\n", "line 2"},
		{"unknown key", "definitions:\n  - var: {name: a, colour: red}\n", "unknown key"},
		{"missing name", "definitions:\n  - class: {body: []}\n", "missing key"},
		{"bad type", "definitions:\n  - var: {name: a, type: \"List<\"}\n", "type"},
		{"bad char", "definitions:\n  - var: {name: a, value: {char: ab}}\n", "single character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(ast.NewArena(), "bad", []byte(tt.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
