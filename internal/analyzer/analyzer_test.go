package analyzer

import (
	"strings"
	"testing"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/astload"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/modules"
	"github.com/funvibe/gml/internal/pipeline"
)

func newSession(t *testing.T, srcs ...string) (*pipeline.PipelineContext, []*ast.Unit) {
	t.Helper()
	ctx := pipeline.NewContext(nil)
	if err := modules.Install(ctx); err != nil {
		t.Fatalf("install: %v", err)
	}
	var units []*ast.Unit
	for i, src := range srcs {
		u, err := astload.Decode(ctx.Arena, "unit"+string(rune('a'+i))+".gml.yaml", []byte(src))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		ctx.AddUnit(u)
		units = append(units, u)
	}
	return ctx, units
}

func analyze(t *testing.T, srcs ...string) *pipeline.PipelineContext {
	t.Helper()
	ctx, _ := newSession(t, srcs...)
	ctx = Analyze(ctx)
	if ctx.Err != nil {
		t.Fatalf("analyze: %v", ctx.Err)
	}
	return ctx
}

func analyzeErr(t *testing.T, srcs ...string) error {
	t.Helper()
	ctx, _ := newSession(t, srcs...)
	ctx = Analyze(ctx)
	if ctx.Err == nil {
		t.Fatal("expected analysis to fail")
	}
	return ctx.Err
}

func class(t *testing.T, ctx *pipeline.PipelineContext, path string) *ast.ClassDef {
	t.Helper()
	cls, ok := ctx.Symbols.ResolveQualified(ast.SplitPath(path)).(*ast.ClassDef)
	if !ok {
		t.Fatalf("%s is not a class", path)
	}
	return cls
}

func member[T ast.Node](t *testing.T, ctx *pipeline.PipelineContext, cls *ast.ClassDef, name string) T {
	t.Helper()
	n, ok := ctx.Symbols.FindLocal(cls, name).(T)
	if !ok {
		t.Fatalf("%s has no member %s of the expected kind", cls.Name, name)
	}
	return n
}

const appWithForwardReference = `
package: app
definitions:
  - func:
      name: main
      returns: Int
      body: [{return: {call: {callee: {attr: {object: {call: Helper}, name: value}}}}}]
`

const helperUnit = `
package: app
definitions:
  - class:
      name: Helper
      body:
        - func: {name: value, returns: Int, body: [{return: 42}]}
`

func TestForwardReferenceAcrossUnits(t *testing.T) {
	ctx := analyze(t, appWithForwardReference, helperUnit)
	main, ok := ctx.Symbols.ResolveQualified([]string{"app", "main"}).(*ast.FuncDef)
	if !ok {
		t.Fatal("app.main not declared")
	}
	if got := main.Spec.Return.String(); got != "Int" {
		t.Errorf("main returns %s", got)
	}
}

// Running every pass over one unit before moving to the next breaks forward
// references; the pipeline completes each pass over all units instead.
func TestPassesCompleteOverAllUnitsFirst(t *testing.T) {
	ctx, units := newSession(t, appWithForwardReference, helperUnit)
	early := []UnitPass{&OwnerProcessor{}, &ExpandProcessor{}, &ScriptProcessor{}, &RegisterProcessor{}}
	for _, u := range ctx.Ordered() {
		if u == units[1] {
			continue
		}
		for _, p := range early {
			p.Unit(ctx, u)
		}
	}
	(&PreludeProcessor{}).Process(ctx)
	err := contract.Catch(func() { (&NameProcessor{}).Unit(ctx, units[0]) })
	if err == nil || !strings.Contains(err.Error(), "Helper") {
		t.Fatalf("error = %v, want unresolved Helper", err)
	}
}

func TestPendingVariableBindsFromUse(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - func:
      name: empty
      returns: "List<Int>"
      body:
        - var: {name: xs, value: {list: []}}
        - return: xs
`)
	f := ctx.Symbols.ResolveQualified([]string{"app", "empty"}).(*ast.FuncDef)
	xs := f.Body.Statements[0].(*ast.VarDef)
	if xs.Pending || xs.Type == nil || xs.Type.String() != "List<Int>" {
		t.Fatalf("xs type = %v (pending %v)", xs.Type, xs.Pending)
	}
}

func TestPendingVariableBindsFromAssignment(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - func:
      name: main
      body:
        - var: {name: xs, value: {list: []}}
        - assign: {target: xs, value: {list: ["a"]}}
`)
	f := ctx.Symbols.ResolveQualified([]string{"app", "main"}).(*ast.FuncDef)
	xs := f.Body.Statements[0].(*ast.VarDef)
	if xs.Pending || xs.Type == nil {
		t.Fatalf("xs stayed pending")
	}
}

func TestUnusedPendingVariableFails(t *testing.T) {
	err := analyzeErr(t, `
package: app
definitions:
  - func:
      name: main
      body: [{var: {name: xs, value: {list: []}}}]
`)
	if !strings.Contains(err.Error(), "xs") {
		t.Errorf("error = %v", err)
	}
}

func TestNameScriptIsInherited(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - class: {name: Base, scripts: [name]}
  - class: {name: Derived, bases: [Base]}
`)
	for _, name := range []string{"Base", "Derived"} {
		cls := class(t, ctx, "app."+name)
		f := member[*ast.FuncDef](t, ctx, cls, "getClassName")
		ret := f.Body.Statements[0].(*ast.Return)
		if lit, ok := ret.Value.(*ast.Literal); !ok || lit.Str != name {
			t.Errorf("%s.getClassName returns %v", name, ret.Value)
		}
	}
}

func TestSingletonScriptSynthesizesAccessor(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - class: {name: Config, scripts: [singleton]}
  - class: {name: Child, bases: [Config]}
`)
	cfg := class(t, ctx, "app.Config")
	if !cfg.Singleton {
		t.Error("Config is not marked singleton")
	}
	f := member[*ast.FuncDef](t, ctx, cfg, "instance")
	if !f.Static || !f.SingletonAccessor {
		t.Errorf("instance: static=%v accessor=%v", f.Static, f.SingletonAccessor)
	}
	if class(t, ctx, "app.Child").Singleton {
		t.Error("singleton is not inheritable")
	}
}

func TestLoggerScriptAddsField(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - class:
      name: Service
      scripts: [logger]
      body:
        - func:
            name: run
            body: [{expr: {call: {callee: {attr: {object: logger, name: info}}, args: ["started"]}}}]
`)
	x := member[*ast.VarDef](t, ctx, class(t, ctx, "app.Service"), "logger")
	if x.Type == nil || !strings.HasSuffix(x.Type.String(), "Logger") {
		t.Errorf("logger type = %v", x.Type)
	}
}

func TestMixinForwardsPublicMethods(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - class:
      name: Engine
      body:
        - func: {name: start, returns: String, body: [{return: "vroom"}]}
        - func: {name: _tune, body: []}
  - class:
      name: Car
      scripts: [{name: mixin, args: [Engine, motor, getMotor]}]
      body:
        - func: {name: stop, body: []}
`)
	car := class(t, ctx, "app.Car")
	member[*ast.VarDef](t, ctx, car, "motor")
	member[*ast.FuncDef](t, ctx, car, "getMotor")
	start := member[*ast.FuncDef](t, ctx, car, "start")
	if start.Spec.Return.String() != "String" {
		t.Errorf("forwarded start returns %s", start.Spec.Return)
	}
	if ctx.Symbols.FindLocal(car, "_tune") != nil {
		t.Error("private method was forwarded")
	}
}

func TestMixinForwarderReturnsUndeclaredResult(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - class:
      name: Engine
      body:
        - func: {name: start, body: [{return: "vroom"}]}
  - class:
      name: Car
      scripts: [{name: mixin, args: [Engine]}]
`)
	start := member[*ast.FuncDef](t, ctx, class(t, ctx, "app.Car"), "start")
	if len(start.Body.Statements) != 1 {
		t.Fatalf("forwarder body = %+v", start.Body.Statements)
	}
	if _, ok := start.Body.Statements[0].(*ast.Return); !ok {
		t.Errorf("forwarder does not return the forwarded result")
	}
	if start.Spec.Return.String() != "String" {
		t.Errorf("forwarded start returns %s", start.Spec.Return)
	}
}

func TestMixinForwardsInheritedMethods(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - class:
      name: Engine
      bases: [Motor]
      body:
        - func: {name: start, returns: String, body: [{return: "vroom"}]}
  - class:
      name: Motor
      body:
        - func: {name: hum, returns: String, body: [{return: "hmm"}]}
        - func: {name: start, returns: String, body: [{return: "cough"}]}
  - class:
      name: Car
      scripts: [{name: mixin, args: [Engine]}]
`)
	car := class(t, ctx, "app.Car")
	member[*ast.FuncDef](t, ctx, car, "hum")
	start := member[*ast.FuncDef](t, ctx, car, "start")
	n := 0
	for _, d := range car.Definitions {
		if f, ok := d.(*ast.FuncDef); ok && f.Name == "start" {
			n++
		}
	}
	if n != 1 || start.Spec.Return.String() != "String" {
		t.Errorf("start forwarded %d times", n)
	}
}

func TestMixinPassesConstructorArguments(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - class:
      name: Engine
      fields: [{name: label, type: String}]
      body:
        - func: {name: Engine, params: [{name: power, type: Int}], body: []}
  - class:
      name: Car
      scripts: [{name: mixin, args: [Engine, engine, getEngine, 9], named: {label: "v8"}}]
`)
	engine := member[*ast.VarDef](t, ctx, class(t, ctx, "app.Car"), "engine")
	call, ok := engine.Initial.(*ast.Call)
	if !ok {
		t.Fatalf("engine initializer = %v", engine.Initial)
	}
	if len(call.Args) != 1 || len(call.NamedArgs) != 1 || call.NamedArgs[0].Name != "label" {
		t.Errorf("constructor call has %d args, named %+v", len(call.Args), call.NamedArgs)
	}
	if ctx.Arena.Get(call.Target) == nil {
		t.Error("constructor call was not resolved")
	}
}

func TestUnknownScript(t *testing.T) {
	err := analyzeErr(t, `
package: app
definitions:
  - class: {name: A, scripts: [sparkle]}
`)
	if !strings.Contains(err.Error(), "sparkle") {
		t.Errorf("error = %v", err)
	}
}

func TestCaseClassesAreHoisted(t *testing.T) {
	ctx, units := newSession(t, `
package: app
definitions:
  - class:
      name: Shape
      body:
        - case: {name: Circle, fields: [{name: r, type: Float}]}
        - case: {name: Square}
`)
	ctx = Analyze(ctx)
	if ctx.Err != nil {
		t.Fatal(ctx.Err)
	}
	defs := units[0].Definitions
	if len(defs) != 3 {
		t.Fatalf("definitions = %d, want 3", len(defs))
	}
	shape := defs[0].(*ast.ClassDef)
	for _, d := range defs[1:] {
		c := d.(*ast.ClassDef)
		if len(c.Bases) == 0 || c.Bases[0].Target != shape.ID {
			t.Errorf("%s does not derive from Shape", c.Name)
		}
	}
	if len(shape.Subclasses) != 2 {
		t.Errorf("Shape subclasses = %d", len(shape.Subclasses))
	}
}

func TestReceiverFunctionBecomesExtension(t *testing.T) {
	ctx, units := newSession(t, `
package: app
definitions:
  - func:
      name: double
      receiver: Int
      returns: Int
      body: [{return: {binary: {op: "*", left: {this: null}, right: 2}}}]
  - func:
      name: main
      returns: Int
      body: [{return: {call: {callee: {attr: {object: 21, name: double}}}}}]
`)
	ctx = Analyze(ctx)
	if ctx.Err != nil {
		t.Fatal(ctx.Err)
	}
	ext, ok := units[0].Definitions[0].(*ast.ExtensionDef)
	if !ok {
		t.Fatalf("first definition is %v", units[0].Definitions[0].Kind())
	}
	if ctx.Arena.Get(ext.Class).(*ast.ClassDef).Name != "Int" {
		t.Errorf("extension receiver resolved to %v", ctx.Arena.Get(ext.Class))
	}
}

func TestInterpolationResolvesNames(t *testing.T) {
	analyze(t, `
package: app
definitions:
  - func:
      name: greet
      params: [{name: who, type: String}]
      returns: String
      body: [{return: {fstring: "hi $who, ${who}!"}}]
`)
	err := analyzeErr(t, `
package: app
definitions:
  - func:
      name: greet
      returns: String
      body: [{return: {fstring: "hi $nobody"}}]
`)
	if !strings.Contains(err.Error(), "nobody") {
		t.Errorf("error = %v", err)
	}
}

func TestDefaultConstructor(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - class: {name: Plain}
  - class:
      name: Explicit
      body:
        - func: {name: Explicit, params: [{name: n, type: Int}], body: []}
`)
	plain := class(t, ctx, "app.Plain")
	if len(plain.Constructors) != 1 || len(plain.Constructors[0].Spec.Params) != 0 {
		t.Errorf("Plain constructors = %+v", plain.Constructors)
	}
	explicit := class(t, ctx, "app.Explicit")
	if len(explicit.Constructors) != 1 || len(explicit.Constructors[0].Spec.Params) != 1 {
		t.Errorf("Explicit constructors = %+v", explicit.Constructors)
	}
	if ctx.Symbols.FindLocal(explicit, "Explicit") != nil {
		t.Error("constructor declared as a member")
	}
}

func TestMatchWithoutViableCaseFails(t *testing.T) {
	err := analyzeErr(t, `
package: app
definitions:
  - class: {name: Circle}
  - class: {name: Square}
  - func:
      name: main
      returns: String
      body:
        - return:
            match:
              subject: {call: Circle}
              cases: [{pattern: {name: s, type: Square}, value: "square"}]
`)
	if !strings.Contains(err.Error(), "no case") {
		t.Errorf("error = %v", err)
	}
}

func TestCyclicInheritance(t *testing.T) {
	err := analyzeErr(t, `
package: app
definitions:
  - class: {name: A, bases: [B]}
  - class: {name: B, bases: [A]}
`)
	if !strings.Contains(err.Error(), "cyclic") {
		t.Errorf("error = %v", err)
	}
}

func TestTypesAreInferred(t *testing.T) {
	ctx := analyze(t, `
package: app
definitions:
  - func:
      name: main
      body:
        - var: {name: n, value: 1}
        - var: {name: f, value: {binary: {op: "+", left: n, right: 1.5}}}
        - var: {name: s, value: {call: {callee: {attr: {object: n, name: toString}}}}}
`)
	f := ctx.Symbols.ResolveQualified([]string{"app", "main"}).(*ast.FuncDef)
	want := []string{"Int", "Float", "String"}
	for i, st := range f.Body.Statements {
		x := st.(*ast.VarDef)
		if x.Type == nil || !strings.HasSuffix(x.Type.String(), want[i]) {
			t.Errorf("%s: type %v, want %s", x.Name, x.Type, want[i])
		}
	}
}
