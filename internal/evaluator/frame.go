package evaluator

import (
	"github.com/funvibe/gml/internal/ast"
)

// Flow is the control-transfer state of a frame.
type Flow int

const (
	FlowNormal Flow = iota
	FlowReturn
	FlowBreak
	FlowContinue
)

func (f Flow) String() string {
	switch f {
	case FlowReturn:
		return "return"
	case FlowBreak:
		return "break"
	case FlowContinue:
		return "continue"
	default:
		return "normal"
	}
}

// Frame is one activation: a function or closure with its arguments, its
// receiver and a stack of block scopes (innermost last). Env is the frame a
// closure was created in.
type Frame struct {
	Func   ast.Node
	Args   []Object
	This   Object
	Flow   Flow
	Result Object
	Env    *Frame

	scopes []map[ast.NodeID]Object
}

func newFrame(fn ast.Node, this Object, env *Frame) *Frame {
	return &Frame{Func: fn, This: this, Env: env, scopes: []map[ast.NodeID]Object{{}}}
}

func (f *Frame) push() { f.scopes = append(f.scopes, map[ast.NodeID]Object{}) }
func (f *Frame) pop()  { f.scopes = f.scopes[:len(f.scopes)-1] }

// declare binds a variable in the innermost scope.
func (f *Frame) declare(id ast.NodeID, v Object) {
	f.scopes[len(f.scopes)-1][id] = v
}

// lookup searches the scopes, then the receiver's fields, then the
// captured environment.
func (f *Frame) lookup(id ast.NodeID) (Object, bool) {
	for fr := f; fr != nil; fr = fr.Env {
		for i := len(fr.scopes) - 1; i >= 0; i-- {
			if v, ok := fr.scopes[i][id]; ok {
				return v, true
			}
		}
		if inst, ok := fr.This.(*Instance); ok {
			if v, ok := inst.Field(id); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// assign updates an existing binding along the lookup order.
func (f *Frame) assign(id ast.NodeID, v Object) bool {
	for fr := f; fr != nil; fr = fr.Env {
		for i := len(fr.scopes) - 1; i >= 0; i-- {
			if _, ok := fr.scopes[i][id]; ok {
				fr.scopes[i][id] = v
				return true
			}
		}
		if inst, ok := fr.This.(*Instance); ok && inst.SetField(id, v) {
			return true
		}
	}
	return false
}

// capture snapshots the scope chain for a closure. The scope maps are
// shared, so writes stay visible on both sides after this frame returns.
func (f *Frame) capture() *Frame {
	return &Frame{
		Func:   f.Func,
		This:   f.This,
		Env:    f.Env,
		scopes: append([]map[ast.NodeID]Object{}, f.scopes...),
	}
}

// running reports whether statements should keep executing.
func (f *Frame) running() bool { return f.Flow == FlowNormal }
