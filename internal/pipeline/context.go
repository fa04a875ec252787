package pipeline

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/symbols"
	"github.com/funvibe/gml/internal/typesystem"
)

// Node is re-exported for pass signatures.
type Node = ast.Node

// ImportResolver resolves imports the package tree does not know, such as
// libraries defined by scripts.
type ImportResolver interface {
	ResolveImport(path []string) ast.Node
}

// PipelineContext is the compilation session: every component receives it
// instead of reaching for global state.
type PipelineContext struct {
	ID       string
	Arena    *ast.Arena
	Symbols  *symbols.Table
	Generics *typesystem.Engine
	Logger   *slog.Logger
	// Units in load order; Ordered puts library units first.
	Units []*ast.Unit
	// External is consulted for imports missing from the package tree.
	External ImportResolver
	// Prelude lists the fully-qualified symbols injected into the prelude
	// besides the whole of sys.lang.
	Prelude []string
	// CurrentUnit is the unit being processed, for error messages.
	CurrentUnit *ast.Unit

	Err error

	completed []Pass
	current   Pass
	extras    []*extra
}

type extra struct {
	node ast.Node
	seen map[string]bool
}

// NewContext creates a session with its arena, symbol table and generic
// engine.
func NewContext(logger *slog.Logger) *PipelineContext {
	if logger == nil {
		logger = config.DiscardLogger()
	}
	a := ast.NewArena()
	ctx := &PipelineContext{
		ID:       uuid.NewString(),
		Arena:    a,
		Symbols:  symbols.NewTable(a),
		Generics: typesystem.NewEngine(a),
		Prelude:  config.PreludeSymbols,
	}
	ctx.Logger = logger.With("session", ctx.ID)
	ctx.Generics.OnSetup(ctx.setupInstantiation)
	return ctx
}

// AddUnit appends a unit to the session.
func (ctx *PipelineContext) AddUnit(u *ast.Unit) {
	ctx.Units = append(ctx.Units, u)
}

// Ordered returns the units with library units first, load order kept
// otherwise.
func (ctx *PipelineContext) Ordered() []*ast.Unit {
	out := append([]*ast.Unit{}, ctx.Units...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Library && !out[j].Library })
	return out
}

// LangClass returns the built-in class name of sys.lang.
func (ctx *PipelineContext) LangClass(name string) *ast.ClassDef {
	cls, _ := ctx.Symbols.ResolveQualified([]string{config.SysPackage, "lang", name}).(*ast.ClassDef)
	return cls
}

// LangType returns a fresh resolved reference to a sys.lang class.
func (ctx *PipelineContext) LangType(name string) *ast.UserType {
	cls := ctx.LangClass(name)
	contract.Assertf(cls != nil, "sys.lang.%s is not registered", name)
	t := ctx.Arena.Named(name)
	t.Target = cls.ID
	return t
}

// Completed reports whether a pass named name already finished.
func (ctx *PipelineContext) Completed(name string) bool {
	for _, p := range ctx.completed {
		if p.Name() == name {
			return true
		}
	}
	return false
}

// Setup links a synthesized node to owner and runs it through every
// completed pass and the current one.
func (ctx *PipelineContext) Setup(n, owner ast.Node) {
	if owner != nil {
		ctx.Arena.SetOwner(n, owner)
	}
	for _, p := range ctx.completed {
		p.Visit(ctx, n)
	}
	if ctx.current != nil {
		ctx.current.Visit(ctx, n)
	}
}

// SetupAll is Setup for nodes that may refer to each other: each pass runs
// over all of them before the next pass starts.
func (ctx *PipelineContext) SetupAll(nodes []ast.Node) {
	passes := append([]Pass{}, ctx.completed...)
	if ctx.current != nil {
		passes = append(passes, ctx.current)
	}
	for _, p := range passes {
		for _, n := range nodes {
			p.Visit(ctx, n)
		}
	}
}

// AddExtra records a node that no unit reaches, such as an instantiation.
// Passes visit extras after the units; passes already applied at creation
// are marked seen.
func (ctx *PipelineContext) AddExtra(n ast.Node) {
	x := &extra{node: n, seen: map[string]bool{}}
	for _, p := range ctx.completed {
		x.seen[p.Name()] = true
	}
	if ctx.current != nil {
		x.seen[ctx.current.Name()] = true
	}
	ctx.extras = append(ctx.extras, x)
}

// EachExtra visits every extra the named pass has not seen, including
// extras created while visiting.
func (ctx *PipelineContext) EachExtra(pass string, fn func(ast.Node)) {
	for i := 0; i < len(ctx.extras); i++ {
		x := ctx.extras[i]
		if x.seen[pass] {
			continue
		}
		x.seen[pass] = true
		fn(x.node)
	}
}

// Extras returns the recorded extras.
func (ctx *PipelineContext) Extras() []ast.Node {
	out := make([]ast.Node, len(ctx.extras))
	for i, x := range ctx.extras {
		out[i] = x.node
	}
	return out
}

func (ctx *PipelineContext) setupInstantiation(clone, proto *ast.ClassDef) {
	ctx.AddExtra(clone)
	ctx.Setup(clone, ctx.Arena.Owner(proto))
	ctx.Logger.Debug("generics.instantiate", "class", proto.Name, "args", instantiationArgs(clone))
}

func instantiationArgs(c *ast.ClassDef) string {
	s := ""
	for i, a := range c.Instantiation.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s
}

func (ctx *PipelineContext) begin(p Processor) {
	ctx.current, _ = p.(Pass)
	ctx.CurrentUnit = nil
}

func (ctx *PipelineContext) finish(p Processor) {
	if pass, ok := p.(Pass); ok {
		ctx.completed = append(ctx.completed, pass)
	}
	ctx.current = nil
	ctx.CurrentUnit = nil
}

func (ctx *PipelineContext) position() string {
	if ctx.CurrentUnit == nil {
		return ""
	}
	return fmt.Sprintf(" (unit %s)", ctx.CurrentUnit.Name)
}
