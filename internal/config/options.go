package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Options is the driver configuration, read from gml.yaml.
type Options struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Entry is the fully-qualified function executed by `gml run`.
	Entry string `yaml:"entry"`
	// Libraries are unit files loaded before the sources, flagged as
	// library units.
	Libraries []string `yaml:"libraries"`
	// ImportPaths are roots searched for package directories when an
	// import names a package no loaded unit defines.
	ImportPaths []string `yaml:"import_paths"`
	// Prelude lists extra fully-qualified symbols made visible everywhere.
	Prelude []string `yaml:"prelude"`
}

// DefaultOptions returns the options used when no file is given.
func DefaultOptions() Options {
	return Options{LogLevel: "info"}
}

// LoadOptions reads options from path. A missing path yields defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, errors.Wrapf(err, "config: parse %s", path)
	}
	return opts, nil
}

// PreludeList returns the curated prelude plus the configured extras.
func (o Options) PreludeList() []string {
	out := append([]string{}, PreludeSymbols...)
	return append(out, o.Prelude...)
}
