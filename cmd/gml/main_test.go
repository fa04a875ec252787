package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/pipeline"
)

func TestSplitArgs(t *testing.T) {
	src, rest := splitArgs([]string{"a.gml.yaml", "lib", "--", "x", "--", "y"})
	if len(src) != 2 || len(rest) != 3 || rest[1] != "--" {
		t.Fatalf("split = %q / %q", src, rest)
	}
	if src, rest := splitArgs([]string{"a"}); len(src) != 1 || rest != nil {
		t.Fatalf("split = %q / %q", src, rest)
	}
}

func TestCompileAndEntryPoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.gml.yaml")
	src := "package: demo\ndefinitions:\n  - func: {name: main, returns: Int, body: [{return: 7}]}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, err := compile(pipeline.NewContext(nil), config.DefaultOptions(), []string{dir})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := entryPoint(ctx, ""); got != "demo.main" {
		t.Errorf("entry = %q", got)
	}
	if got := entryPoint(ctx, "other.start"); got != "other.start" {
		t.Errorf("entry = %q", got)
	}
}
