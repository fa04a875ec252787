package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gml.yaml")
	content := "log_level: debug\nentry: app.main\nprelude:\n  - sys.Env.get\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.Entry != "app.main" {
		t.Errorf("entry = %q", opts.Entry)
	}
	if ParseLevel(opts.LogLevel) != slog.LevelDebug {
		t.Errorf("level = %q", opts.LogLevel)
	}
	list := opts.PreludeList()
	if len(list) != len(PreludeSymbols)+1 || list[len(list)-1] != "sys.Env.get" {
		t.Errorf("prelude list = %v", list)
	}
}

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := LoadOptions("")
	if err != nil {
		t.Fatal(err)
	}
	if opts.LogLevel != "info" {
		t.Errorf("default level = %q", opts.LogLevel)
	}
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
