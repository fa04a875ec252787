package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/gml/internal/analyzer"
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/pipeline"
)

func TestInstallBuildsOneUnitPerPackage(t *testing.T) {
	ctx := pipeline.NewContext(nil)
	if err := Install(ctx); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(ctx.Units) != len(Libraries()) {
		t.Fatalf("units = %d, want %d", len(ctx.Units), len(Libraries()))
	}
	for i, u := range ctx.Units {
		p := Libraries()[i]
		if !u.Library {
			t.Errorf("%s is not a library unit", u.Name)
		}
		if got := strings.Join(u.PackagePath, "."); got != p.Path {
			t.Errorf("package = %s, want %s", got, p.Path)
		}
		if len(u.Definitions) != len(p.Classes) {
			t.Errorf("%s: %d classes, want %d", p.Path, len(u.Definitions), len(p.Classes))
		}
	}
}

func TestInstallMarksStaticMethods(t *testing.T) {
	ctx := pipeline.NewContext(nil)
	if err := Install(ctx); err != nil {
		t.Fatal(err)
	}
	var console *ast.ClassDef
	for _, u := range ctx.Units {
		for _, d := range u.Definitions {
			if c, ok := d.(*ast.ClassDef); ok && c.Name == "Console" {
				console = c
			}
		}
	}
	if console == nil {
		t.Fatal("Console not installed")
	}
	for _, d := range console.Definitions {
		if f, ok := d.(*ast.FuncDef); ok && !f.Static {
			t.Errorf("Console.%s should be static", f.Name)
		}
	}
}

func TestMethodName(t *testing.T) {
	cases := map[string]string{
		"toString() => String":            "toString",
		"static println(value: Any)":      "println",
		"  static  now() => Int":          "now",
		"get(key: String) => YamlElement": "get",
		"size":                            "size",
	}
	for sig, want := range cases {
		if got := methodName(sig); got != want {
			t.Errorf("methodName(%q) = %q, want %q", sig, got, want)
		}
	}
}

func writeUnit(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDirectoryIsSortedAndDeduplicated(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, filepath.Join(dir, "b.gml.yaml"), "package: app\ndefinitions: []\n")
	writeUnit(t, filepath.Join(dir, "a.gml.yaml"), "package: app\ndefinitions: []\n")
	writeUnit(t, filepath.Join(dir, "notes.txt"), "ignored")

	ctx := pipeline.NewContext(nil)
	l := NewLoader(ctx)
	units, err := l.Load(dir, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("units = %d, want 2", len(units))
	}
	if !strings.HasSuffix(units[0].Name, "a.gml.yaml") {
		t.Errorf("first unit = %s", units[0].Name)
	}
	again, err := l.Load(filepath.Join(dir, "a.gml.yaml"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 || len(ctx.Units) != 2 {
		t.Errorf("reloading added %d units, session has %d", len(again), len(ctx.Units))
	}
}

func TestLoadFlagsLibraries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.gml.yaml")
	writeUnit(t, path, "package: lib\ndefinitions: []\n")
	units, err := NewLoader(pipeline.NewContext(nil)).Load(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || !units[0].Library {
		t.Fatalf("units = %+v", units)
	}
}

func TestLoadMissingPath(t *testing.T) {
	if _, err := NewLoader(pipeline.NewContext(nil)).Load(filepath.Join(t.TempDir(), "nope"), false); err == nil {
		t.Fatal("expected an error")
	}
}

func TestResolveImportLoadsPackageFromRoot(t *testing.T) {
	root := t.TempDir()
	writeUnit(t, filepath.Join(root, "util", "doubler.gml.yaml"), `
package: util
definitions:
  - class:
      name: Doubler
      body:
        - func:
            name: twice
            static: true
            params: [{name: n, type: Int}]
            returns: Int
            body: [{return: {binary: {op: "*", left: n, right: 2}}}]
`)
	main := filepath.Join(t.TempDir(), "main.gml.yaml")
	writeUnit(t, main, `
package: app
imports: [util.Doubler]
definitions:
  - func:
      name: main
      returns: Int
      body: [{return: {call: {callee: Doubler.twice, args: [4]}}}]
`)

	ctx := pipeline.NewContext(nil)
	if err := Install(ctx); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(ctx, root)
	if _, err := l.Load(main, false); err != nil {
		t.Fatal(err)
	}
	ctx = analyzer.Analyze(ctx)
	if ctx.Err != nil {
		t.Fatalf("analyze: %v", ctx.Err)
	}
	cls, ok := ctx.Symbols.ResolveQualified([]string{"util", "Doubler"}).(*ast.ClassDef)
	if !ok {
		t.Fatal("util.Doubler was not loaded")
	}
	if owner, ok := ctx.Arena.Get(cls.Owner).(*ast.Unit); !ok || !owner.Library {
		t.Errorf("imported unit should be a library unit")
	}
}

func TestResolveImportUnknownPackage(t *testing.T) {
	ctx := pipeline.NewContext(nil)
	if got := NewLoader(ctx, t.TempDir()).ResolveImport([]string{"missing", "Thing"}); got != nil {
		t.Errorf("ResolveImport = %v, want nil", got)
	}
}
