package evaluator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/gml/internal/analyzer"
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/astload"
	"github.com/funvibe/gml/internal/modules"
	"github.com/funvibe/gml/internal/pipeline"
)

// session decodes src as app/main.gml.yaml, analyzes it and returns an
// evaluator writing Console output to out.
func session(t *testing.T, src string) (*Evaluator, *bytes.Buffer) {
	t.Helper()
	ctx := pipeline.NewContext(nil)
	if err := modules.Install(ctx); err != nil {
		t.Fatalf("install: %v", err)
	}
	u, err := astload.Decode(ctx.Arena, "main.gml.yaml", []byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ctx.AddUnit(u)
	ctx = analyzer.Analyze(ctx)
	if ctx.Err != nil {
		t.Fatalf("analyze: %v", ctx.Err)
	}
	ev := New(ctx)
	out := &bytes.Buffer{}
	ev.Out = out
	ev.SetProgramLogger(out)
	return ev, out
}

func run(t *testing.T, src string) (Object, string) {
	t.Helper()
	ev, out := session(t, src)
	res, err := ev.Execute("app.main")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	return res, out.String()
}

func wantInt(t *testing.T, got Object, want int64) {
	t.Helper()
	i, ok := got.(*Integer)
	if !ok || i.Value != want {
		t.Fatalf("result = %s, want %d", repr(got), want)
	}
}

func wantString(t *testing.T, got Object, want string) {
	t.Helper()
	s, ok := got.(*String)
	if !ok || s.Value != want {
		t.Fatalf("result = %s, want %q", repr(got), want)
	}
}

func TestLoopsAndCompoundAssignment(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - func:
      name: sum
      params: [{name: xs, type: "List<Int>"}]
      returns: Int
      body:
        - var: {name: total, value: 0}
        - for: {item: x, in: xs, body: [{assign: {target: total, op: "+=", value: x}}]}
        - return: total
  - func:
      name: main
      returns: Int
      body:
        - var: {name: xs, type: "List<Int>", value: {list: [1, 2, 3, 4]}}
        - return: {call: {callee: sum, args: [xs]}}
`)
	wantInt(t, res, 10)
}

func TestBreakAndContinue(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - func:
      name: main
      returns: Int
      body:
        - var: {name: i, value: 0}
        - var: {name: odd, value: 0}
        - while:
            cond: true
            body:
              - assign: {target: i, op: "+=", value: 1}
              - if: {cond: {binary: {op: ">", left: i, right: 9}}, then: [{break: null}]}
              - if:
                  cond: {binary: {op: "==", left: {binary: {op: "%", left: i, right: 2}}, right: 0}}
                  then: [{continue: null}]
              - assign: {target: odd, op: "+=", value: i}
        - return: odd
`)
	wantInt(t, res, 25)
}

func TestClosureSharesCapturedVariables(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - func:
      name: counter
      returns: "() => Int"
      body:
        - var: {name: n, value: 0}
        - return:
            closure:
              returns: Int
              body:
                - assign: {target: n, op: "+=", value: 1}
                - return: n
  - func:
      name: main
      returns: Int
      body:
        - var: {name: next, value: {call: counter}}
        - expr: {call: next}
        - expr: {call: next}
        - return: {call: next}
`)
	wantInt(t, res, 3)
}

func TestVirtualDispatchAndNearestMatch(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - class:
      name: Animal
      body:
        - func: {name: sound, returns: String, body: [{return: "..."}]}
        - func:
            name: describe
            returns: String
            body: [{return: {binary: {op: "+", left: "says ", right: {call: sound}}}}]
  - class:
      name: Dog
      bases: [Animal]
      body:
        - func: {name: sound, returns: String, body: [{return: "woof"}]}
  - class: {name: Puppy, bases: [Dog]}
  - func:
      name: kind
      params: [{name: a, type: Animal}]
      returns: String
      body:
        - return:
            match:
              subject: a
              cases:
                - {pattern: {name: x, type: Animal}, value: "animal"}
                - {pattern: {name: d, type: Dog}, value: "dog"}
  - func:
      name: main
      returns: String
      body:
        - var: {name: p, type: Animal, value: {call: Puppy}}
        - return:
            binary:
              op: "+"
              left: {call: {callee: kind, args: [p]}}
              right: {binary: {op: "+", left: " ", right: {call: {callee: {attr: {object: p, name: describe}}}}}}
`)
	wantString(t, res, "dog says woof")
}

func TestMatchFallsBackToDefault(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - class: {name: Shape}
  - class: {name: Circle, bases: [Shape]}
  - class: {name: Square, bases: [Shape]}
  - func:
      name: main
      returns: String
      body:
        - var: {name: s, type: Shape, value: {call: Square}}
        - return:
            match:
              subject: s
              cases:
                - {pattern: {name: c, type: Circle}, value: "circle"}
                - {value: "other"}
`)
	wantString(t, res, "other")
}

func TestGenericConstructionWithNamedField(t *testing.T) {
	src := `
package: app
definitions:
  - class:
      name: Box
      generics: [T]
      fields: [{name: value, type: T}]
      body:
        - func: {name: get, returns: T, body: [{return: value}]}
  - func:
      name: main
      returns: Int
      body:
        - var: {name: a, value: {call: {callee: {generic: {base: Box, args: [Int]}}, named: {value: 5}}}}
        - var: {name: b, value: {call: {callee: {generic: {base: Box, args: [Int]}}, named: {value: 2}}}}
        - return: {binary: {op: "+", left: {call: {callee: {attr: {object: a, name: get}}}}, right: {attr: {object: b, name: value}}}}
`
	ev, _ := session(t, src)
	res, err := ev.Execute("app.main")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	wantInt(t, res, 7)
	proto, ok := ev.ctx.Symbols.ResolveQualified([]string{"app", "Box"}).(*ast.ClassDef)
	if !ok {
		t.Fatal("app.Box not found")
	}
	if n := len(ev.ctx.Generics.Instantiator(proto).Instances()); n != 1 {
		t.Errorf("Box instantiated %d times, want 1", n)
	}
}

func TestSingletonIsShared(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - class:
      name: Registry
      scripts: [singleton]
      fields: [{name: count, type: Int, value: 0}]
      body:
        - func:
            name: bump
            returns: Int
            body:
              - assign: {target: count, op: "+=", value: 1}
              - return: count
  - func:
      name: main
      returns: Int
      body:
        - expr: {call: {callee: {attr: {object: {call: Registry.instance}, name: bump}}}}
        - return: {call: {callee: {attr: {object: {call: Registry.instance}, name: bump}}}}
`)
	wantInt(t, res, 2)
}

func TestConsoleInterpolationAndGlobals(t *testing.T) {
	res, out := run(t, `
package: app
definitions:
  - var: {name: greeting, value: "hello"}
  - func:
      name: main
      body:
        - var: {name: name, value: "gml"}
        - var: {name: n, value: 3}
        - expr: {call: {callee: println, args: [{fstring: "$greeting $name x${n} 100%"}]}}
        - expr: {call: {callee: printf, args: ["%s=%d\n", "n", n]}}
`)
	if res != NIL {
		t.Errorf("result = %s, want nil", repr(res))
	}
	if want := "hello gml x3 100%\nn=3\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestLibraryMethods(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - func:
      name: main
      returns: String
      body:
        - var: {name: words, value: {call: {callee: {attr: {object: "b,a,c", name: split}}, args: [","]}}}
        - var: {name: counts, type: "Dict<String, Int>", value: {dict: []}}
        - for:
            item: w
            in: words
            body:
              - assign: {target: {index: {collection: counts, key: w}}, value: {call: {callee: {attr: {object: w, name: size}}}}}
        - expr: {call: {callee: {attr: {object: words, name: append}}, args: [{call: {callee: {attr: {object: "D", name: lower}}}}]}}
        - return:
            binary:
              op: "+"
              left: {call: {callee: {attr: {object: words, name: join}}, args: ["-"]}}
              right: {call: {callee: {attr: {object: {call: {callee: {attr: {object: counts, name: size}}}}, name: toString}}}}
`)
	wantString(t, res, "b-a-c-d3")
}

func TestFailureCarriesStack(t *testing.T) {
	ev, _ := session(t, `
package: app
definitions:
  - func:
      name: inner
      params: [{name: n, type: Int}]
      returns: Int
      body: [{return: {binary: {op: "/", left: 10, right: n}}}]
  - func:
      name: main
      returns: Int
      body: [{return: {call: {callee: inner, args: [0]}}}]
`)
	_, err := ev.Execute("app.main")
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want *Failure", err)
	}
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("error = %v", err)
	}
	if len(f.Stack) != 2 {
		t.Fatalf("stack = %q", f.Stack)
	}
	if !strings.HasPrefix(f.Stack[0], "inner") || !strings.HasSuffix(f.Stack[0], "(0)") {
		t.Errorf("innermost frame = %q", f.Stack[0])
	}
	if !strings.HasPrefix(f.Stack[1], "main") {
		t.Errorf("outer frame = %q", f.Stack[1])
	}
	if len(ev.stack) != 0 {
		t.Error("stack not reset after failure")
	}
}

func TestSystemFailAndAssert(t *testing.T) {
	for name, body := range map[string]string{
		"fail":   `[{expr: {call: {callee: System.fail, args: ["boom"]}}}]`,
		"assert": `[{assert: {cond: {binary: {op: "==", left: 1, right: 2}}, message: "boom"}}]`,
	} {
		t.Run(name, func(t *testing.T) {
			ev, _ := session(t, `
package: app
imports: [sys.System]
definitions:
  - func: {name: main, body: `+body+`}
`)
			if _, err := ev.Execute("app.main"); err == nil || !strings.Contains(err.Error(), "boom") {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestExecuteRejectsUnknownEntry(t *testing.T) {
	ev, _ := session(t, `
package: app
definitions:
  - func: {name: main, body: []}
`)
	if _, err := ev.Execute("app.missing"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestEveryLibraryMethodHasANative(t *testing.T) {
	for _, key := range modules.NativeKeys() {
		if _, ok := natives[key]; !ok {
			t.Errorf("no native for %s", key)
		}
	}
	declared := map[string]bool{}
	for _, key := range modules.NativeKeys() {
		declared[key] = true
	}
	for _, key := range Natives() {
		if !declared[key] {
			t.Errorf("native %s is not declared by any library class", key)
		}
	}
}

func TestExtensionOnLibraryClass(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - func:
      name: shout
      receiver: String
      returns: String
      body:
        - return: {binary: {op: "+", left: {call: {callee: {attr: {object: {this: null}, name: upper}}}}, right: "!"}}
  - func:
      name: main
      returns: String
      body: [{return: {call: {callee: {attr: {object: "hi", name: shout}}}}}]
`)
	wantString(t, res, "HI!")
}

func TestEnumDefaultAndOrdering(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - enum: {name: Level, items: [Low, Mid, High]}
  - class:
      name: Job
      fields: [{name: level, type: Level}]
  - func:
      name: main
      returns: Bool
      body:
        - var: {name: j, value: {call: Job}}
        - return:
            binary:
              op: "&&"
              left: {binary: {op: "==", left: {attr: {object: j, name: level}}, right: Level.Low}}
              right: {binary: {op: "<", left: Level.Mid, right: Level.High}}
`)
	if res != TRUE {
		t.Fatalf("result = %s, want true", repr(res))
	}
}

func TestNativeCallsBackIntoClosure(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - func:
      name: main
      returns: Int
      body:
        - var: {name: total, value: 0}
        - expr:
            call:
              callee: {attr: {object: 4, name: times}}
              args:
                - closure:
                    params: [{name: i, type: Int}]
                    body: [{assign: {target: total, op: "+=", value: i}}]
        - return: total
`)
	wantInt(t, res, 6)
}

func TestYamlElement(t *testing.T) {
	res, _ := run(t, `
package: app
imports: [sys.YamlElement]
definitions:
  - func:
      name: main
      returns: String
      body:
        - var: {name: doc, value: {call: {callee: YamlElement.parse, args: ["a: 2\nb: [x, y]\n"]}}}
        - var: {name: b, value: {call: {callee: {attr: {object: doc, name: get}}, args: ["b"]}}}
        - var: {name: a, value: {call: {callee: {attr: {object: doc, name: get}}, args: ["a"]}}}
        - return:
            binary:
              op: "+"
              left: {call: {callee: {attr: {object: {call: {callee: {attr: {object: b, name: at}}, args: [1]}}, name: asString}}}}
              right: {call: {callee: {attr: {object: a, name: asInt}}}}
`)
	wantString(t, res, "y2")
}

func TestLoggerScriptWritesProgramLog(t *testing.T) {
	_, out := run(t, `
package: app
definitions:
  - class:
      name: Service
      scripts: [logger]
      body:
        - func:
            name: start
            body: [{expr: {call: {callee: {attr: {object: logger, name: info}}, args: ["started"]}}}]
  - func:
      name: main
      body: [{expr: {call: {callee: {attr: {object: {call: Service}, name: start}}}}}]
`)
	if !strings.Contains(out, "started") || !strings.Contains(out, "Service") {
		t.Errorf("program log = %q", out)
	}
}

func TestMixinForwardingAtRuntime(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - class:
      name: Engine
      body:
        - func: {name: start, returns: String, body: [{return: "vroom"}]}
  - class:
      name: Car
      scripts: [{name: mixin, args: [Engine]}]
  - func:
      name: main
      returns: String
      body: [{return: {call: {callee: {attr: {object: {call: Car}, name: start}}}}}]
`)
	wantString(t, res, "vroom")
}

func TestNilOperandFailsInsteadOfPanicking(t *testing.T) {
	ev, _ := session(t, `
package: app
definitions:
  - func:
      name: isUnset
      returns: Bool
      body:
        - var: {name: s, type: String, value: null}
        - return: {binary: {op: "==", left: s, right: null}}
  - func:
      name: main
      returns: String
      body:
        - var: {name: s, type: String, value: null}
        - return: {binary: {op: "+", left: s, right: "x"}}
`)
	res, err := ev.Execute("app.isUnset")
	if err != nil || res != TRUE {
		t.Fatalf("isUnset = %s, %v", repr(res), err)
	}
	_, err = ev.Execute("app.main")
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want *Failure", err)
	}
	if !strings.Contains(err.Error(), "needs a String operand") {
		t.Errorf("error = %v", err)
	}
}

func TestHostPanicBecomesError(t *testing.T) {
	var xs []int
	err := func() (err error) {
		defer func() { err = hostError(recover()) }()
		_ = xs[1]
		return nil
	}()
	if err == nil || !strings.Contains(err.Error(), "host panic") {
		t.Fatalf("error = %v", err)
	}
	if err := hostError("boom"); err == nil || err.Error() != "host panic: boom" {
		t.Errorf("error = %v", err)
	}
}

func TestMixinForwardsInheritedAndInferredMethods(t *testing.T) {
	res, _ := run(t, `
package: app
definitions:
  - class:
      name: Engine
      bases: [Motor]
      fields: [{name: sound, type: String}]
      body:
        - func: {name: start, body: [{return: sound}]}
  - class:
      name: Motor
      body:
        - func: {name: hum, body: [{return: "-hmm"}]}
  - class:
      name: Car
      scripts: [{name: mixin, args: [Engine], named: {sound: "vroom"}}]
  - func:
      name: main
      returns: String
      body:
        - var: {name: car, value: {call: Car}}
        - return:
            binary:
              op: "+"
              left: {call: {callee: {attr: {object: car, name: start}}}}
              right: {call: {callee: {attr: {object: car, name: hum}}}}
`)
	wantString(t, res, "vroom-hmm")
}

func TestIntegralFloatSharesIntDictKey(t *testing.T) {
	d := newDict(nil)
	d.Set(&Integer{Value: 1}, &String{Value: "int"})
	d.Set(&Float{Value: 1.0}, &String{Value: "float"})
	d.Set(&Float{Value: 1.5}, &String{Value: "half"})
	if d.Len() != 2 {
		t.Fatalf("len = %d, want 2", d.Len())
	}
	v, ok := d.Get(&Integer{Value: 1})
	if !ok {
		t.Fatal("1 not found")
	}
	wantString(t, v, "float")
	if !objectsEqual(&Integer{Value: 1}, &Float{Value: 1.0}) {
		t.Error("1 != 1.0")
	}
}
