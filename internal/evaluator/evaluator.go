// Package evaluator executes a resolved program by walking its tree.
package evaluator

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
	"github.com/funvibe/gml/internal/symbols"
	"github.com/funvibe/gml/internal/typesystem"
)

// Evaluator runs functions of one analyzed session. It is not safe for
// concurrent use.
type Evaluator struct {
	ctx *pipeline.PipelineContext
	a   *ast.Arena
	t   *symbols.Table

	// Out receives Console output.
	Out io.Writer
	// Args are exposed to programs through System.args.
	Args []string
	// Logger receives the evaluator's own events.
	Logger *slog.Logger

	// programLevel is the level of loggers handed to programs.
	programLevel *slog.LevelVar
	programLog   *slog.Logger

	globals      map[ast.NodeID]Object
	initializing map[ast.NodeID]bool
	singletons   map[ast.NodeID]Object
	stack        []*Frame
}

// New creates an evaluator over the session ctx, which must have been
// analyzed without error.
func New(ctx *pipeline.PipelineContext) *Evaluator {
	level := &slog.LevelVar{}
	return &Evaluator{
		ctx:          ctx,
		a:            ctx.Arena,
		t:            ctx.Symbols,
		Out:          os.Stdout,
		Logger:       ctx.Logger,
		programLevel: level,
		programLog:   config.NewLogger(os.Stderr, level),
		globals:      map[ast.NodeID]Object{},
		initializing: map[ast.NodeID]bool{},
		singletons:   map[ast.NodeID]Object{},
	}
}

// SetProgramLogger replaces the handler used by sys.Logger objects.
func (ev *Evaluator) SetProgramLogger(w io.Writer) {
	ev.programLog = config.NewLogger(w, ev.programLevel)
}

// Failure is an execution-time failure: the error and the call stack at the
// point it was raised, innermost first.
type Failure struct {
	Entry string
	Err   error
	Stack []string
}

func (f *Failure) Error() string { return fmt.Sprintf("execute %s: %v", f.Entry, f.Err) }
func (f *Failure) Unwrap() error { return f.Err }

// Execute resolves path through the package tree, initializes the global
// variables and calls the function with args.
func (ev *Evaluator) Execute(path string, args ...Object) (result Object, err error) {
	ev.stack = ev.stack[:0]
	defer func() {
		if r := recover(); r != nil {
			err = ev.failure(path, hostError(r))
			result = nil
		}
	}()
	fn, ok := ev.t.ResolveQualified(ast.SplitPath(path)).(*ast.FuncDef)
	contract.Assertf(ok, "%s is not a function", path)
	ev.Logger.Debug("eval.execute", "entry", path, "args", len(args))
	ev.initGlobals()
	return ev.Call(&Function{Def: fn}, args...), nil
}

// hostError turns a recovered panic into an error. Runtime errors raised by
// the host itself are reported the same way as violations.
func hostError(r any) error {
	switch x := r.(type) {
	case *contract.Violation:
		return x
	case error:
		return errors.Wrap(x, "host panic")
	}
	return errors.Errorf("host panic: %v", r)
}

func (ev *Evaluator) failure(path string, err error) *Failure {
	f := &Failure{Entry: path, Err: err}
	for i := len(ev.stack) - 1; i >= 0; i-- {
		f.Stack = append(f.Stack, ev.describeFrame(ev.stack[i]))
	}
	ev.Logger.Error("eval.failure", "entry", path, "error", err.Error(), "depth", len(f.Stack))
	for i, line := range f.Stack {
		ev.Logger.Error("eval.frame", "index", i, "frame", line)
	}
	ev.stack = ev.stack[:0]
	return f
}

func (ev *Evaluator) describeFrame(f *Frame) string {
	var b strings.Builder
	switch fn := f.Func.(type) {
	case *ast.FuncDef:
		if cls, ok := ev.a.Get(fn.Class).(*ast.ClassDef); ok {
			b.WriteString(cls.Name + ".")
		}
		b.WriteString(fn.Name)
	case *ast.Closure:
		b.WriteString("<closure>")
		if outer, ok := ev.a.OwnerOfKind(fn, ast.KindFunc).(*ast.FuncDef); ok {
			b.WriteString(" in " + outer.Name)
		}
	default:
		b.WriteString("<top>")
	}
	if u := ev.a.UnitOf(f.Func); u != nil {
		b.WriteString(" (" + u.Name + ")")
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = repr(a)
	}
	b.WriteString("(" + strings.Join(parts, ", ") + ")")
	return b.String()
}

func (ev *Evaluator) enter(f *Frame) { ev.stack = append(ev.stack, f) }
func (ev *Evaluator) leave()         { ev.stack = ev.stack[:len(ev.stack)-1] }

// initGlobals evaluates every unit-level variable that is still unset.
func (ev *Evaluator) initGlobals() {
	units := ev.ctx.Ordered()
	for _, x := range ev.ctx.Extras() {
		if u, ok := x.(*ast.Unit); ok {
			units = append(units, u)
		}
	}
	for _, u := range units {
		for _, d := range u.Definitions {
			if x, ok := d.(*ast.VarDef); ok {
				ev.global(x)
			}
		}
	}
}

// global returns the value of a unit-level variable, initializing it on
// first use.
func (ev *Evaluator) global(x *ast.VarDef) Object {
	if v, ok := ev.globals[x.ID]; ok {
		return v
	}
	contract.Assertf(!ev.initializing[x.ID], "global %s depends on itself", x.Name)
	ev.initializing[x.ID] = true
	v := ev.initialValue(x, newFrame(nil, nil, nil))
	delete(ev.initializing, x.ID)
	ev.globals[x.ID] = v
	return v
}

func (ev *Evaluator) initialValue(x *ast.VarDef, f *Frame) Object {
	if x.Initial != nil {
		return ev.eval(x.Initial, f)
	}
	return ev.zero(x.Type)
}

func isGlobal(a *ast.Arena, x *ast.VarDef) bool {
	_, ok := a.Owner(x).(*ast.Unit)
	return ok
}

// typeClass returns the class or enum designated by t.
func (ev *Evaluator) typeClass(t ast.Type) ast.Node {
	if t == nil {
		return nil
	}
	return typesystem.TypeClassOf(ev.a, t)
}

func (ev *Evaluator) classDef(t ast.Type) *ast.ClassDef {
	cls, _ := ev.typeClass(t).(*ast.ClassDef)
	return cls
}

// libName is the sys.lang name of a library class or of its prototype.
func (ev *Evaluator) libName(cls *ast.ClassDef) string {
	if cls == nil || !cls.IsLibrary() {
		return ""
	}
	if proto, ok := ev.a.Get(cls.Prototype).(*ast.ClassDef); ok {
		return proto.Name
	}
	return cls.Name
}

// runtimeClass is the class of a value for pattern matching.
func (ev *Evaluator) runtimeClass(o Object) *ast.ClassDef {
	switch x := o.(type) {
	case *Instance:
		return x.Class
	case *List:
		if x.Class != nil {
			return x.Class
		}
		return ev.ctx.LangClass(config.ListTypeName)
	case *Dict:
		if x.Class != nil {
			return x.Class
		}
		return ev.ctx.LangClass(config.DictTypeName)
	case *Integer:
		return ev.ctx.LangClass(config.IntTypeName)
	case *Float:
		return ev.ctx.LangClass(config.FloatTypeName)
	case *Boolean:
		return ev.ctx.LangClass(config.BoolTypeName)
	case *Char:
		return ev.ctx.LangClass(config.CharTypeName)
	case *String:
		return ev.ctx.LangClass(config.StringTypeName)
	case *Nil:
		return ev.ctx.LangClass(config.NilTypeName)
	case *Function, *Closure:
		return ev.ctx.LangClass(config.FunctionTypeName)
	case *HostObject:
		cls, _ := ev.t.ResolveQualified([]string{config.SysPackage, x.Class}).(*ast.ClassDef)
		return cls
	}
	return nil
}

// zero is the default value of type t.
func (ev *Evaluator) zero(t ast.Type) Object {
	target := ev.typeClass(t)
	if target == nil {
		return NIL
	}
	return evaluateNil.Invoke(target, ev).(Object)
}

// fail raises an execution failure from a native or runtime check.
func fail(err error, format string, args ...any) {
	contract.Fail(errors.Wrapf(err, format, args...))
}
