package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/gml/internal/ast"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	BOOLEAN_OBJ  = "BOOLEAN"
	CHAR_OBJ     = "CHAR"
	STRING_OBJ   = "STRING"
	NIL_OBJ      = "NIL"
	LIST_OBJ     = "LIST"
	DICT_OBJ     = "DICT"
	INSTANCE_OBJ = "INSTANCE"
	FUNCTION_OBJ = "FUNCTION"
	CLOSURE_OBJ  = "CLOSURE"
	TYPE_OBJ     = "TYPE"
	PACKAGE_OBJ  = "PACKAGE"
	ENUM_OBJ     = "ENUM"
	HOST_OBJ     = "HOST"
)

// Object is an interpreter value.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType { return CHAR_OBJ }
func (c *Char) Inspect() string  { return string(c.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// List is a mutable sequence. Class is the instantiated List class the
// value was created as, when known.
type List struct {
	Class    *ast.ClassDef
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = repr(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Dict is an insertion-ordered mapping.
type Dict struct {
	Class  *ast.ClassDef
	Keys   []Object
	Values []Object
	index  map[string]int
}

func newDict(cls *ast.ClassDef) *Dict {
	return &Dict{Class: cls, index: map[string]int{}}
}

func (d *Dict) Type() ObjectType { return DICT_OBJ }
func (d *Dict) Inspect() string {
	parts := make([]string, len(d.Keys))
	for i := range d.Keys {
		parts[i] = repr(d.Keys[i]) + ": " + repr(d.Values[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (d *Dict) Len() int { return len(d.Keys) }

func (d *Dict) Get(k Object) (Object, bool) {
	i, ok := d.index[hashKey(k)]
	if !ok {
		return nil, false
	}
	return d.Values[i], true
}

func (d *Dict) Set(k, v Object) {
	h := hashKey(k)
	if i, ok := d.index[h]; ok {
		d.Values[i] = v
		return
	}
	d.index[h] = len(d.Keys)
	d.Keys = append(d.Keys, k)
	d.Values = append(d.Values, v)
}

func (d *Dict) Delete(k Object) bool {
	i, ok := d.index[hashKey(k)]
	if !ok {
		return false
	}
	d.Keys = append(d.Keys[:i], d.Keys[i+1:]...)
	d.Values = append(d.Values[:i], d.Values[i+1:]...)
	d.index = make(map[string]int, len(d.Keys))
	for j, key := range d.Keys {
		d.index[hashKey(key)] = j
	}
	return true
}

// Instance is an object of a user class. Fields are keyed by the defining
// variable; every base class contributes its own sub-object.
type Instance struct {
	Class  *ast.ClassDef
	Fields map[ast.NodeID]Object
	Bases  []*Instance
	order  []*ast.VarDef
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string {
	parts := make([]string, 0, len(i.order))
	for _, f := range i.order {
		parts = append(parts, f.Name+"="+repr(i.Fields[f.ID]))
	}
	return i.Class.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Field finds a field breadth-first over the base sub-objects.
func (i *Instance) Field(id ast.NodeID) (Object, bool) {
	if owner := i.holder(id); owner != nil {
		return owner.Fields[id], true
	}
	return nil, false
}

// SetField assigns an existing field and reports whether it exists.
func (i *Instance) SetField(id ast.NodeID, v Object) bool {
	owner := i.holder(id)
	if owner == nil {
		return false
	}
	owner.Fields[id] = v
	return true
}

func (i *Instance) holder(id ast.NodeID) *Instance {
	queue := []*Instance{i}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := cur.Fields[id]; ok {
			return cur
		}
		queue = append(queue, cur.Bases...)
	}
	return nil
}

// Function is a function or method, bound to This for instance methods.
type Function struct {
	Def  *ast.FuncDef
	This Object
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<func " + f.Def.Name + ">" }

// Closure is an anonymous function with the environment it was created in.
type Closure struct {
	Def *ast.Closure
	Env *Frame
}

func (c *Closure) Type() ObjectType { return CLOSURE_OBJ }
func (c *Closure) Inspect() string  { return "<closure>" }

// TypeRef is a class or enum used as a value, e.g. the object of a static
// call.
type TypeRef struct {
	Def ast.Node
}

func (t *TypeRef) Type() ObjectType { return TYPE_OBJ }
func (t *TypeRef) Inspect() string {
	switch d := t.Def.(type) {
	case *ast.ClassDef:
		return "<class " + d.Name + ">"
	case *ast.EnumDef:
		return "<enum " + d.Name + ">"
	}
	return "<type>"
}

type PackageRef struct {
	Package *ast.Package
}

func (p *PackageRef) Type() ObjectType { return PACKAGE_OBJ }
func (p *PackageRef) Inspect() string  { return "<package " + p.Package.QualifiedName() + ">" }

type EnumValue struct {
	Enum *ast.EnumDef
	Item *ast.EnumItem
}

func (e *EnumValue) Type() ObjectType { return ENUM_OBJ }
func (e *EnumValue) Inspect() string  { return e.Enum.Name + "." + e.Item.Name }

// HostObject wraps a host resource such as a logger or a YAML node. Class
// names the library class whose natives accept it.
type HostObject struct {
	Class string
	Value any
}

func (h *HostObject) Type() ObjectType { return HOST_OBJ }
func (h *HostObject) Inspect() string  { return fmt.Sprintf("<%s>", h.Class) }

// repr quotes strings and chars nested in containers.
func repr(o Object) string {
	switch x := o.(type) {
	case *String:
		return strconv.Quote(x.Value)
	case *Char:
		return strconv.QuoteRune(x.Value)
	case nil:
		return "nil"
	}
	return o.Inspect()
}

// hashKey identifies dict keys: primitives by value, everything else by
// identity. An integral float shares the key of the equal Int.
func hashKey(o Object) string {
	switch x := o.(type) {
	case *Integer:
		return "i:" + strconv.FormatInt(x.Value, 10)
	case *Float:
		if x.Value == math.Trunc(x.Value) && math.Abs(x.Value) < 1<<63 {
			return "i:" + strconv.FormatInt(int64(x.Value), 10)
		}
		return "f:" + strconv.FormatFloat(x.Value, 'g', -1, 64)
	case *Boolean:
		return "b:" + strconv.FormatBool(x.Value)
	case *Char:
		return "c:" + string(x.Value)
	case *String:
		return "s:" + x.Value
	case *Nil:
		return "nil"
	case *EnumValue:
		return fmt.Sprintf("e:%d:%d", x.Enum.ID, x.Item.Value)
	}
	return fmt.Sprintf("p:%p", o)
}

// objectsEqual compares primitives, enums and containers by value and
// everything else by identity.
func objectsEqual(a, b Object) bool {
	switch x := a.(type) {
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			return x.Value == y.Value
		case *Float:
			return float64(x.Value) == y.Value
		}
		return false
	case *Float:
		switch y := b.(type) {
		case *Float:
			return x.Value == y.Value
		case *Integer:
			return x.Value == float64(y.Value)
		}
		return false
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Char:
		y, ok := b.(*Char)
		return ok && x.Value == y.Value
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *EnumValue:
		y, ok := b.(*EnumValue)
		return ok && x.Enum == y.Enum && x.Item == y.Item
	case *TypeRef:
		y, ok := b.(*TypeRef)
		return ok && x.Def == y.Def
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !objectsEqual(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, k := range x.Keys {
			v, ok := y.Get(k)
			if !ok || !objectsEqual(x.Values[i], v) {
				return false
			}
		}
		return true
	}
	return a == b
}
