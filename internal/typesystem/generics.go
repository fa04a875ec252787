// Package typesystem implements the class hierarchy queries and the generic
// instantiation engine over the ast arena.
package typesystem

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/ast"
)

// ErrGenericArgs reports generic arguments incompatible with the parameters.
var ErrGenericArgs = errors.New("incompatible generic arguments")

// CheckArgs validates arity and kind compatibility of args against params:
// a type parameter takes a type argument, a variadic parameter (last) takes
// a variadic argument or every remaining type argument, and a literal
// parameter takes a literal argument or a type argument that may itself be a
// generic parameter.
func CheckArgs(params []*ast.GenericParam, args []*ast.GenericArg) error {
	for i, p := range params {
		if p.Kind() == ast.KindVariadicParam {
			if i != len(params)-1 {
				return errors.Wrapf(ErrGenericArgs, "variadic parameter %s must be last", p.Name)
			}
			for _, a := range args[min(i, len(args)):] {
				if a.Kind() == ast.KindLiteralArg {
					return errors.Wrapf(ErrGenericArgs, "literal %s passed to variadic parameter %s", a, p.Name)
				}
			}
			return nil
		}
		if i >= len(args) {
			return errors.Wrapf(ErrGenericArgs, "expected %d arguments, got %d", len(params), len(args))
		}
		a := args[i]
		switch p.Kind() {
		case ast.KindTypeParam:
			if a.Kind() == ast.KindLiteralArg {
				return errors.Wrapf(ErrGenericArgs, "literal %s passed to type parameter %s", a, p.Name)
			}
		case ast.KindLiteralParam:
			if a.Kind() != ast.KindLiteralArg && !(a.Kind() == ast.KindTypeArg && a.MayBeTypeParam) {
				return errors.Wrapf(ErrGenericArgs, "type %s passed to literal parameter %s", a, p.Name)
			}
		}
	}
	if len(args) != len(params) {
		return errors.Wrapf(ErrGenericArgs, "expected %d arguments, got %d", len(params), len(args))
	}
	return nil
}

// Normalize follows resolved references and aliases to the most-resolved
// type node.
func Normalize(a *ast.Arena, t ast.Type) ast.Type {
	for depth := 0; depth < 64; depth++ {
		u, ok := t.(*ast.UserType)
		if !ok {
			return t
		}
		switch target := a.Get(u.Target).(type) {
		case *ast.UserType:
			t = target
		case *ast.TypeDef:
			t = target.Target
		case *ast.FuncSpec:
			t = target
		default:
			return t
		}
	}
	return t
}

// TypeClassOf returns the class or enum a type designates, or nil when the
// type is unresolved, a function type, or a generic parameter.
func TypeClassOf(a *ast.Arena, t ast.Type) ast.Node {
	u, ok := Normalize(a, t).(*ast.UserType)
	if !ok {
		return nil
	}
	switch target := a.Get(u.Target).(type) {
	case *ast.ClassDef, *ast.EnumDef:
		return target
	}
	return nil
}

// literalOf returns the literal an argument carries, following a type
// argument that resolved to a bound literal parameter.
func literalOf(a *ast.Arena, arg *ast.GenericArg) *ast.Literal {
	if arg.Literal != nil {
		return arg.Literal
	}
	if u, ok := arg.Type.(*ast.UserType); ok {
		if l, ok := a.Get(u.Target).(*ast.Literal); ok {
			return l
		}
	}
	return nil
}

// typeKey is the structural identity of a type: the type-class id when it
// has one, the rendered signature for function types.
func typeKey(a *ast.Arena, t ast.Type) string {
	if t == nil {
		return "?"
	}
	n := Normalize(a, t)
	if cls := TypeClassOf(a, n); cls != nil {
		return "#" + strconv.Itoa(int(cls.Meta().ID))
	}
	if spec, ok := n.(*ast.FuncSpec); ok {
		parts := make([]string, 0, len(spec.Params)+1)
		for _, p := range spec.Params {
			parts = append(parts, typeKey(a, p.Type))
		}
		return "fn(" + strings.Join(parts, ",") + ")" + typeKey(a, spec.Return)
	}
	if u, ok := n.(*ast.UserType); ok && u.Target != ast.NoNode {
		return "@" + strconv.Itoa(int(u.Target))
	}
	return "~" + n.String()
}

// argKeys renders args positionally against params, flattening trailing
// type arguments bound to a variadic parameter.
func argKeys(a *ast.Arena, params []*ast.GenericParam, args []*ast.GenericArg) []string {
	keys := make([]string, 0, len(params))
	for i, p := range params {
		switch p.Kind() {
		case ast.KindVariadicParam:
			var elems []string
			for _, arg := range args[min(i, len(args)):] {
				if arg.Kind() == ast.KindVariadicArg {
					for _, t := range arg.Types {
						elems = append(elems, typeKey(a, t))
					}
					continue
				}
				elems = append(elems, typeKey(a, arg.Type))
			}
			keys = append(keys, "v"+strconv.Itoa(len(elems))+"["+strings.Join(elems, ",")+"]")
		case ast.KindLiteralParam:
			if l := literalOf(a, args[i]); l != nil {
				keys = append(keys, "l"+l.Text)
			} else {
				keys = append(keys, "t"+typeKey(a, args[i].Type))
			}
		default:
			keys = append(keys, "t"+typeKey(a, args[i].Type))
		}
	}
	return keys
}

// bind builds the instantiation of params, normalizing type arguments.
func bind(a *ast.Arena, params []*ast.GenericParam, args []*ast.GenericArg) *ast.Instantiation {
	inst := &ast.Instantiation{Params: params, Named: map[string]*ast.GenericArg{}}
	for i, p := range params {
		var bound *ast.GenericArg
		switch p.Kind() {
		case ast.KindVariadicParam:
			var types []ast.Type
			for _, arg := range args[min(i, len(args)):] {
				if arg.Kind() == ast.KindVariadicArg {
					for _, t := range arg.Types {
						types = append(types, Normalize(a, t))
					}
					continue
				}
				types = append(types, Normalize(a, arg.Type))
			}
			bound = a.VariadicArg(types...)
		case ast.KindLiteralParam:
			if l := literalOf(a, args[i]); l != nil {
				bound = a.LiteralArg(l)
			} else {
				bound = a.TypeArg(Normalize(a, args[i].Type))
			}
		default:
			bound = a.TypeArg(Normalize(a, args[i].Type))
		}
		inst.Args = append(inst.Args, bound)
		inst.Named[p.Name] = bound
	}
	return inst
}
