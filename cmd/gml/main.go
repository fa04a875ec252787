package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/analyzer"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/evaluator"
	"github.com/funvibe/gml/internal/modules"
	"github.com/funvibe/gml/internal/pipeline"
)

const usage = `Usage:
  %[1]s run [-config gml.yaml] [-entry pkg.func] [-log level] <unit|dir>... [-- args...]
  %[1]s check [-config gml.yaml] [-log level] <unit|dir>...
  %[1]s help
`

type commandFlags struct {
	config string
	entry  string
	level  string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}
	switch os.Args[1] {
	case "run":
		os.Exit(handleRun(os.Args[2:], true))
	case "check":
		os.Exit(handleRun(os.Args[2:], false))
	case "help", "-help", "--help", "-h":
		fmt.Printf(usage, os.Args[0])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}
}

// handleRun loads and analyzes the units, then executes the entry point when
// execute is set. It returns the process exit code.
func handleRun(args []string, execute bool) int {
	fs := flag.NewFlagSet("gml", flag.ContinueOnError)
	var cf commandFlags
	fs.StringVar(&cf.config, "config", "", "options file")
	fs.StringVar(&cf.entry, "entry", "", "fully-qualified function to run")
	fs.StringVar(&cf.level, "log", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	sources, programArgs := splitArgs(fs.Args())
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "no units given")
		return 2
	}

	opts, err := config.LoadOptions(cf.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	if cf.level != "" {
		opts.LogLevel = cf.level
	}
	if cf.entry != "" {
		opts.Entry = cf.entry
	}

	logger := config.NewLogger(os.Stderr, config.ParseLevel(opts.LogLevel))
	ctx, err := compile(pipeline.NewContext(logger), opts, sources)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	if !execute {
		return 0
	}

	ev := evaluator.New(ctx)
	ev.Args = programArgs
	entry := entryPoint(ctx, opts.Entry)
	result, err := ev.Execute(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		var f *evaluator.Failure
		if errors.As(err, &f) {
			for _, frame := range f.Stack {
				fmt.Fprintf(os.Stderr, "  at %s\n", frame)
			}
		}
		return 1
	}
	if result != nil && result != evaluator.NIL {
		fmt.Println(result.Inspect())
	}
	return 0
}

func compile(ctx *pipeline.PipelineContext, opts config.Options, sources []string) (*pipeline.PipelineContext, error) {
	ctx.Prelude = opts.PreludeList()
	if err := modules.Install(ctx); err != nil {
		return nil, err
	}
	loader := modules.NewLoader(ctx, opts.ImportPaths...)
	for _, lib := range opts.Libraries {
		if _, err := loader.Load(lib, true); err != nil {
			return nil, err
		}
	}
	for _, src := range sources {
		if _, err := loader.Load(src, false); err != nil {
			return nil, err
		}
	}
	ctx = analyzer.Analyze(ctx)
	return ctx, ctx.Err
}

// entryPoint qualifies a bare function name with the package of the first
// non-library unit.
func entryPoint(ctx *pipeline.PipelineContext, entry string) string {
	if entry == "" {
		entry = config.DefaultEntryPoint
	}
	if strings.Contains(entry, ".") {
		return entry
	}
	for _, u := range ctx.Units {
		if !u.Library && len(u.PackagePath) > 0 {
			return strings.Join(append(append([]string{}, u.PackagePath...), entry), ".")
		}
	}
	return entry
}

// splitArgs separates unit paths from the arguments after "--".
func splitArgs(args []string) (sources, rest []string) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}
