package evaluator

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
)

// evaluateNil produces the default value of a class or enum.
var evaluateNil = ast.NewOperation("evaluateNil", ast.MustExist)

// evaluateBinaryOp applies a binary operator on the class of the left
// operand.
var evaluateBinaryOp = ast.NewOperation("evaluateBinaryOp", ast.MustExist)

// evaluateUnaryOp applies a unary operator on the class of the operand.
var evaluateUnaryOp = ast.NewOperation("evaluateUnaryOp", ast.MustExist)

type binaryFunc func(op string, l, r Object) (Object, error)
type unaryFunc func(op string, v Object) (Object, error)

var binaryOperators = map[string]binaryFunc{
	config.IntTypeName:    numericBinary,
	config.FloatTypeName:  numericBinary,
	config.CharTypeName:   charBinary,
	config.StringTypeName: stringBinary,
	config.BoolTypeName:   boolBinary,
	config.ListTypeName:   listBinary,
}

var unaryOperators = map[string]unaryFunc{
	config.IntTypeName:   numericUnary,
	config.FloatTypeName: numericUnary,
	config.BoolTypeName:  boolUnary,
}

var errDivisionByZero = errors.New("division by zero")

func init() {
	evaluateNil.
		Register(ast.KindLibClass, func(target ast.Node, args ...any) any {
			ev := args[0].(*Evaluator)
			cls := target.(*ast.ClassDef)
			switch ev.libName(cls) {
			case config.IntTypeName:
				return &Integer{}
			case config.FloatTypeName:
				return &Float{}
			case config.BoolTypeName:
				return FALSE
			case config.CharTypeName:
				return &Char{}
			case config.StringTypeName:
				return &String{}
			case config.ListTypeName:
				return &List{Class: cls}
			case config.DictTypeName:
				return newDict(cls)
			}
			return NIL
		}).
		Register(ast.KindClass, func(ast.Node, ...any) any { return NIL }).
		Register(ast.KindEnum, func(target ast.Node, _ ...any) any {
			e := target.(*ast.EnumDef)
			contract.Assertf(len(e.Items) > 0, "enum %s has no items", e.Name)
			return &EnumValue{Enum: e, Item: e.Items[0]}
		})

	evaluateBinaryOp.
		Register(ast.KindLibClass, func(target ast.Node, args ...any) any {
			ev, op := args[0].(*Evaluator), args[1].(string)
			l, r := args[2].(Object), args[3].(Object)
			fn, ok := binaryOperators[ev.libName(target.(*ast.ClassDef))]
			if !ok {
				fn, ok = binaryOperators[ev.libName(ev.runtimeClass(l))]
			}
			if ok {
				out, err := fn(op, l, r)
				if err != nil {
					fail(err, "%s %s %s", repr(l), op, repr(r))
				}
				if out != nil {
					return out
				}
			}
			return equality(op, l, r)
		}).
		Register(ast.KindClass, func(_ ast.Node, args ...any) any {
			op, l, r := args[1].(string), args[2].(Object), args[3].(Object)
			return equality(op, l, r)
		}).
		Register(ast.KindEnum, func(_ ast.Node, args ...any) any {
			op, l, r := args[1].(string), args[2].(Object), args[3].(Object)
			x, okl := l.(*EnumValue)
			y, okr := r.(*EnumValue)
			if okl && okr {
				if out, ok := compare(op, float64(x.Item.Value), float64(y.Item.Value)); ok {
					return out
				}
			}
			return equality(op, l, r)
		})

	evaluateUnaryOp.
		Register(ast.KindLibClass, func(target ast.Node, args ...any) any {
			ev, op, v := args[0].(*Evaluator), args[1].(string), args[2].(Object)
			fn, ok := unaryOperators[ev.libName(target.(*ast.ClassDef))]
			contract.Assertf(ok, "operator %s is not defined on %s", op, repr(v))
			out, err := fn(op, v)
			if err != nil {
				fail(err, "%s%s", op, repr(v))
			}
			return out
		})
}

func (ev *Evaluator) binaryOp(cls ast.Node, op string, l, r Object) Object {
	switch op {
	case "in":
		return nativeBool(contains(r, l))
	case "not in":
		return nativeBool(!contains(r, l))
	}
	if cls == nil {
		rc := ev.runtimeClass(l)
		if rc == nil {
			return equality(op, l, r)
		}
		cls = rc
	}
	return evaluateBinaryOp.Invoke(cls, ev, op, l, r).(Object)
}

func (ev *Evaluator) unaryOp(cls ast.Node, op string, v Object) Object {
	if cls == nil {
		rc := ev.runtimeClass(v)
		contract.Assertf(rc != nil, "operator %s is not defined on %s", op, repr(v))
		cls = rc
	}
	return evaluateUnaryOp.Invoke(cls, ev, op, v).(Object)
}

func equality(op string, l, r Object) Object {
	switch op {
	case "==":
		return nativeBool(objectsEqual(l, r))
	case "!=":
		return nativeBool(!objectsEqual(l, r))
	}
	contract.Failf("operator %s is not defined on %s", op, repr(l))
	return nil
}

func contains(coll, item Object) bool {
	switch c := coll.(type) {
	case *List:
		for _, e := range c.Elements {
			if objectsEqual(e, item) {
				return true
			}
		}
		return false
	case *Dict:
		_, ok := c.Get(item)
		return ok
	case *String:
		switch x := item.(type) {
		case *String:
			return strings.Contains(c.Value, x.Value)
		case *Char:
			return strings.ContainsRune(c.Value, x.Value)
		}
	}
	contract.Failf("%s does not support in", repr(coll))
	return false
}

func compare(op string, l, r float64) (Object, bool) {
	switch op {
	case "<":
		return nativeBool(l < r), true
	case "<=":
		return nativeBool(l <= r), true
	case ">":
		return nativeBool(l > r), true
	case ">=":
		return nativeBool(l >= r), true
	}
	return nil, false
}

func numericBinary(op string, l, r Object) (Object, error) {
	x, okl := l.(*Integer)
	y, okr := r.(*Integer)
	if okl && okr {
		return intBinary(op, x.Value, y.Value)
	}
	a, okl := toFloat(l)
	b, okr := toFloat(r)
	if !okl || !okr {
		return nil, nil
	}
	if out, ok := compare(op, a, b); ok {
		return out, nil
	}
	switch op {
	case "+":
		return &Float{Value: a + b}, nil
	case "-":
		return &Float{Value: a - b}, nil
	case "*":
		return &Float{Value: a * b}, nil
	case "/":
		if b == 0 {
			return nil, errDivisionByZero
		}
		return &Float{Value: a / b}, nil
	case "%":
		if b == 0 {
			return nil, errDivisionByZero
		}
		return &Float{Value: math.Mod(a, b)}, nil
	case "**":
		return &Float{Value: math.Pow(a, b)}, nil
	}
	return nil, nil
}

func intBinary(op string, a, b int64) (Object, error) {
	switch op {
	case "+":
		return &Integer{Value: a + b}, nil
	case "-":
		return &Integer{Value: a - b}, nil
	case "*":
		return &Integer{Value: a * b}, nil
	case "/", "%":
		if b == 0 {
			return nil, errDivisionByZero
		}
		if op == "/" {
			return &Integer{Value: a / b}, nil
		}
		return &Integer{Value: a % b}, nil
	case "**":
		return &Integer{Value: int64(math.Pow(float64(a), float64(b)))}, nil
	case "&":
		return &Integer{Value: a & b}, nil
	case "|":
		return &Integer{Value: a | b}, nil
	case "^":
		return &Integer{Value: a ^ b}, nil
	case "<<":
		return &Integer{Value: a << uint64(b)}, nil
	case ">>":
		return &Integer{Value: a >> uint64(b)}, nil
	}
	out, _ := compare(op, float64(a), float64(b))
	return out, nil
}

func toFloat(o Object) (float64, bool) {
	switch x := o.(type) {
	case *Integer:
		return float64(x.Value), true
	case *Float:
		return x.Value, true
	}
	return 0, false
}

func charBinary(op string, l, r Object) (Object, error) {
	x, okl := l.(*Char)
	y, okr := r.(*Char)
	if !okl || !okr {
		return nil, nil
	}
	out, _ := compare(op, float64(x.Value), float64(y.Value))
	return out, nil
}

// operandError reports a left operand that does not hold its static class,
// such as nil in a String variable. Equality still falls through.
func operandError(op string, l Object, class string) error {
	if op == "==" || op == "!=" {
		return nil
	}
	return errors.Errorf("operator %s needs a %s operand, got %s", op, class, repr(l))
}

func stringBinary(op string, l, r Object) (Object, error) {
	x, ok := l.(*String)
	if !ok {
		return nil, operandError(op, l, config.StringTypeName)
	}
	s := x.Value
	switch op {
	case "+":
		return &String{Value: s + r.Inspect()}, nil
	case "*":
		if n, ok := r.(*Integer); ok {
			if n.Value < 0 {
				return nil, errors.Errorf("negative repeat count %d", n.Value)
			}
			return &String{Value: strings.Repeat(s, int(n.Value))}, nil
		}
	}
	if y, ok := r.(*String); ok {
		out, _ := compare(op, float64(strings.Compare(s, y.Value)), 0)
		return out, nil
	}
	return nil, nil
}

func boolBinary(op string, l, r Object) (Object, error) {
	x, okl := l.(*Boolean)
	y, okr := r.(*Boolean)
	if !okl || !okr {
		return nil, nil
	}
	switch op {
	case "&":
		return nativeBool(x.Value && y.Value), nil
	case "|":
		return nativeBool(x.Value || y.Value), nil
	case "^":
		return nativeBool(x.Value != y.Value), nil
	}
	return nil, nil
}

func listBinary(op string, l, r Object) (Object, error) {
	x, ok := l.(*List)
	if !ok {
		return nil, operandError(op, l, config.ListTypeName)
	}
	if y, ok := r.(*List); ok && op == "+" {
		out := &List{Class: x.Class}
		out.Elements = append(append(out.Elements, x.Elements...), y.Elements...)
		return out, nil
	}
	return nil, nil
}

func numericUnary(op string, v Object) (Object, error) {
	switch x := v.(type) {
	case *Integer:
		switch op {
		case "-":
			return &Integer{Value: -x.Value}, nil
		case "+":
			return x, nil
		case "~":
			return &Integer{Value: ^x.Value}, nil
		}
	case *Float:
		switch op {
		case "-":
			return &Float{Value: -x.Value}, nil
		case "+":
			return x, nil
		}
	}
	return nil, errors.Errorf("operator %s is not defined on %s", op, repr(v))
}

func boolUnary(op string, v Object) (Object, error) {
	b, ok := v.(*Boolean)
	if !ok || (op != "!" && op != "not") {
		return nil, errors.Errorf("operator %s is not defined on %s", op, repr(v))
	}
	return nativeBool(!b.Value), nil
}
