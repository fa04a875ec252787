package evaluator

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/contract"
)

// NativeFunc implements a library method. this is nil for static methods;
// args are positional, with variadic arguments passed through unpacked.
type NativeFunc func(ev *Evaluator, this Object, args []Object) (Object, error)

var natives = map[string]NativeFunc{}

func register(class string, methods map[string]NativeFunc) {
	for name, fn := range methods {
		natives[class+"."+name] = fn
	}
}

// Natives lists the registered native keys.
func Natives() []string {
	out := make([]string, 0, len(natives))
	for k := range natives {
		out = append(out, k)
	}
	return out
}

func toString(_ *Evaluator, this Object, _ []Object) (Object, error) {
	return &String{Value: this.Inspect()}, nil
}

func init() {
	register("Any", map[string]NativeFunc{"toString": toString})
	register("Bool", map[string]NativeFunc{"toString": toString})
	register("Int", map[string]NativeFunc{
		"toString": toString,
		"toFloat": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Float{Value: float64(intOf(this))}, nil
		},
		"abs": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			v := intOf(this)
			if v < 0 {
				v = -v
			}
			return &Integer{Value: v}, nil
		},
		"max": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			return &Integer{Value: max(intOf(this), intOf(args[0]))}, nil
		},
		"min": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			return &Integer{Value: min(intOf(this), intOf(args[0]))}, nil
		},
		"times": func(ev *Evaluator, this Object, args []Object) (Object, error) {
			for i := int64(0); i < intOf(this); i++ {
				ev.Call(args[0], &Integer{Value: i})
			}
			return nil, nil
		},
		"parse": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			v, err := strconv.ParseInt(strings.TrimSpace(strOf(args[0])), 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "parse Int")
			}
			return &Integer{Value: v}, nil
		},
	})
	register("Float", map[string]NativeFunc{
		"toString": toString,
		"toInt": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Integer{Value: int64(floatOf(this))}, nil
		},
		"round": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Integer{Value: int64(math.Round(floatOf(this)))}, nil
		},
		"floor": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Integer{Value: int64(math.Floor(floatOf(this)))}, nil
		},
		"abs": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Float{Value: math.Abs(floatOf(this))}, nil
		},
		"parse": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(strOf(args[0])), 64)
			if err != nil {
				return nil, errors.Wrap(err, "parse Float")
			}
			return &Float{Value: v}, nil
		},
	})
	register("Char", map[string]NativeFunc{
		"toString": toString,
		"code": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Integer{Value: int64(charOf(this))}, nil
		},
		"isDigit": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return nativeBool(unicode.IsDigit(charOf(this))), nil
		},
		"isLetter": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return nativeBool(unicode.IsLetter(charOf(this))), nil
		},
		"upper": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Char{Value: unicode.ToUpper(charOf(this))}, nil
		},
	})
	register("String", stringNatives())
	register("List", listNatives())
	register("Dict", dictNatives())
}

func stringNatives() map[string]NativeFunc {
	str := func(fn func(s string) string) NativeFunc {
		return func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &String{Value: fn(strOf(this))}, nil
		}
	}
	pred := func(fn func(s, arg string) bool) NativeFunc {
		return func(_ *Evaluator, this Object, args []Object) (Object, error) {
			return nativeBool(fn(strOf(this), strOf(args[0]))), nil
		}
	}
	return map[string]NativeFunc{
		"size": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Integer{Value: int64(len([]rune(strOf(this))))}, nil
		},
		"toString":   str(func(s string) string { return s }),
		"upper":      str(strings.ToUpper),
		"lower":      str(strings.ToLower),
		"trim":       str(strings.TrimSpace),
		"contains":   pred(strings.Contains),
		"startsWith": pred(strings.HasPrefix),
		"endsWith":   pred(strings.HasSuffix),
		"indexOf": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			s, part := strOf(this), strOf(args[0])
			i := strings.Index(s, part)
			if i < 0 {
				return &Integer{Value: -1}, nil
			}
			return &Integer{Value: int64(len([]rune(s[:i])))}, nil
		},
		"substring": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			runes := []rune(strOf(this))
			from, to := intOf(args[0]), intOf(args[1])
			if from < 0 || to > int64(len(runes)) || from > to {
				return nil, errors.Errorf("substring [%d, %d) out of range for length %d", from, to, len(runes))
			}
			return &String{Value: string(runes[from:to])}, nil
		},
		"split": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			out := &List{}
			for _, p := range strings.Split(strOf(this), strOf(args[0])) {
				out.Elements = append(out.Elements, &String{Value: p})
			}
			return out, nil
		},
		"replace": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			return &String{Value: strings.ReplaceAll(strOf(this), strOf(args[0]), strOf(args[1]))}, nil
		},
		"repeat": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			n := intOf(args[0])
			if n < 0 {
				return nil, errors.Errorf("negative repeat count %d", n)
			}
			return &String{Value: strings.Repeat(strOf(this), int(n))}, nil
		},
		"toInt": func(ev *Evaluator, this Object, _ []Object) (Object, error) {
			return natives["Int.parse"](ev, nil, []Object{this})
		},
		"toFloat": func(ev *Evaluator, this Object, _ []Object) (Object, error) {
			return natives["Float.parse"](ev, nil, []Object{this})
		},
		"chars": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			out := &List{}
			for _, r := range strOf(this) {
				out.Elements = append(out.Elements, &Char{Value: r})
			}
			return out, nil
		},
		"join": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			parts := listOf(args[1]).Elements
			strs := make([]string, len(parts))
			for i, p := range parts {
				strs[i] = p.Inspect()
			}
			return &String{Value: strings.Join(strs, strOf(args[0]))}, nil
		},
	}
}

func listNatives() map[string]NativeFunc {
	return map[string]NativeFunc{
		"size": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Integer{Value: int64(len(listOf(this).Elements))}, nil
		},
		"isEmpty": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return nativeBool(len(listOf(this).Elements) == 0), nil
		},
		"append": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			l := listOf(this)
			l.Elements = append(l.Elements, args[0])
			return nil, nil
		},
		"extend": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			l := listOf(this)
			l.Elements = append(l.Elements, listOf(args[0]).Elements...)
			return nil, nil
		},
		"get": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			l := listOf(this)
			i, err := checkIndex(args[0], len(l.Elements))
			if err != nil {
				return nil, err
			}
			return l.Elements[i], nil
		},
		"set": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			l := listOf(this)
			i, err := checkIndex(args[0], len(l.Elements))
			if err != nil {
				return nil, err
			}
			l.Elements[i] = args[1]
			return nil, nil
		},
		"remove": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			l := listOf(this)
			i, err := checkIndex(args[0], len(l.Elements))
			if err != nil {
				return nil, err
			}
			v := l.Elements[i]
			l.Elements = append(l.Elements[:i], l.Elements[i+1:]...)
			return v, nil
		},
		"contains": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			return nativeBool(contains(this, args[0])), nil
		},
		"indexOf": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			for i, e := range listOf(this).Elements {
				if objectsEqual(e, args[0]) {
					return &Integer{Value: int64(i)}, nil
				}
			}
			return &Integer{Value: -1}, nil
		},
		"first": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			l := listOf(this)
			if len(l.Elements) == 0 {
				return nil, errors.New("first of an empty list")
			}
			return l.Elements[0], nil
		},
		"last": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			l := listOf(this)
			if len(l.Elements) == 0 {
				return nil, errors.New("last of an empty list")
			}
			return l.Elements[len(l.Elements)-1], nil
		},
		"reverse": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			l := listOf(this)
			out := &List{Class: l.Class, Elements: make([]Object, len(l.Elements))}
			for i, e := range l.Elements {
				out.Elements[len(l.Elements)-1-i] = e
			}
			return out, nil
		},
		"clear": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			listOf(this).Elements = nil
			return nil, nil
		},
		"each": func(ev *Evaluator, this Object, args []Object) (Object, error) {
			for _, e := range append([]Object{}, listOf(this).Elements...) {
				ev.Call(args[0], e)
			}
			return nil, nil
		},
		"join": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			elems := listOf(this).Elements
			parts := make([]string, len(elems))
			for i, e := range elems {
				parts[i] = e.Inspect()
			}
			return &String{Value: strings.Join(parts, strOf(args[0]))}, nil
		},
		"toString": toString,
	}
}

func dictNatives() map[string]NativeFunc {
	return map[string]NativeFunc{
		"size": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &Integer{Value: int64(dictOf(this).Len())}, nil
		},
		"isEmpty": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return nativeBool(dictOf(this).Len() == 0), nil
		},
		"get": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			v, ok := dictOf(this).Get(args[0])
			if !ok {
				return nil, errors.Errorf("key %s not found", repr(args[0]))
			}
			return v, nil
		},
		"getOr": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			if v, ok := dictOf(this).Get(args[0]); ok {
				return v, nil
			}
			return args[1], nil
		},
		"set": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			dictOf(this).Set(args[0], args[1])
			return nil, nil
		},
		"contains": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			_, ok := dictOf(this).Get(args[0])
			return nativeBool(ok), nil
		},
		"remove": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			dictOf(this).Delete(args[0])
			return nil, nil
		},
		"keys": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &List{Elements: append([]Object{}, dictOf(this).Keys...)}, nil
		},
		"values": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &List{Elements: append([]Object{}, dictOf(this).Values...)}, nil
		},
		"each": func(ev *Evaluator, this Object, args []Object) (Object, error) {
			d := dictOf(this)
			keys, values := append([]Object{}, d.Keys...), append([]Object{}, d.Values...)
			for i := range keys {
				ev.Call(args[0], keys[i], values[i])
			}
			return nil, nil
		},
		"toString": toString,
	}
}

func checkIndex(key Object, n int) (int, error) {
	i := intOf(key)
	if i < 0 || i >= int64(n) {
		return 0, errors.Errorf("index %d out of range [0, %d)", i, n)
	}
	return int(i), nil
}

func intOf(o Object) int64 {
	i, ok := o.(*Integer)
	contract.Assertf(ok, "%s is not an Int", repr(o))
	return i.Value
}

func floatOf(o Object) float64 {
	f, ok := toFloat(o)
	contract.Assertf(ok, "%s is not a Float", repr(o))
	return f
}

func charOf(o Object) rune {
	c, ok := o.(*Char)
	contract.Assertf(ok, "%s is not a Char", repr(o))
	return c.Value
}

func strOf(o Object) string {
	s, ok := o.(*String)
	contract.Assertf(ok, "%s is not a String", repr(o))
	return s.Value
}

func listOf(o Object) *List {
	l, ok := o.(*List)
	contract.Assertf(ok, "%s is not a List", repr(o))
	return l
}

func dictOf(o Object) *Dict {
	d, ok := o.(*Dict)
	contract.Assertf(ok, "%s is not a Dict", repr(o))
	return d
}
