package ast

import (
	"github.com/funvibe/gml/internal/contract"
)

type passthrough struct{}

// Pass is returned by a handler to ask for the next lookup step.
var Pass any = &passthrough{}

// Handler handles one node kind for a traversal.
type Handler func(v *Visitor, n Node) any

type nodeOpKey struct {
	op   string
	kind Kind
}

// nodeOps are the built-in per-kind behaviors consulted when a traversal has
// no handler of its own for a node.
var nodeOps = map[nodeOpKey]Handler{}

// RegisterNodeOp installs the built-in behavior of kind for operation op.
// It is meant to be called from package init functions.
func RegisterNodeOp(op string, kind Kind, h Handler) {
	nodeOps[nodeOpKey{op, kind}] = h
}

// Visitor is a traversal carrying an operation name and a handler per kind.
//
// Visiting a node runs the first handler found along the node's kind chain.
// Without one (or when every candidate returns Pass) the node's built-in
// behavior for the operation runs, and failing that its children are
// visited.
type Visitor struct {
	Op       string
	handlers map[Kind]Handler
}

// NewVisitor creates a traversal for operation op.
func NewVisitor(op string) *Visitor {
	return &Visitor{Op: op, handlers: map[Kind]Handler{}}
}

// On registers h for kind and returns v for chaining.
func (v *Visitor) On(kind Kind, h Handler) *Visitor {
	v.handlers[kind] = h
	return v
}

// Handles reports whether v has a handler anywhere along the chain of kind.
func (v *Visitor) Handles(kind Kind) bool {
	for _, k := range Chain(kind) {
		if _, ok := v.handlers[k]; ok {
			return true
		}
	}
	return false
}

// Visit dispatches n and returns the handler result (nil after a children walk).
func (v *Visitor) Visit(n Node) any {
	if n == nil {
		return nil
	}
	chain := Chain(n.Kind())
	for _, k := range chain {
		if h, ok := v.handlers[k]; ok {
			if r := h(v, n); r != Pass {
				return r
			}
		}
	}
	for _, k := range chain {
		if h, ok := nodeOps[nodeOpKey{v.Op, k}]; ok {
			if r := h(v, n); r != Pass {
				return r
			}
		}
	}
	v.VisitChildren(n)
	return nil
}

// VisitChildren visits every child of n in order.
func (v *Visitor) VisitChildren(n Node) {
	for _, c := range n.Children() {
		v.Visit(c)
	}
}

// VisitEach visits every node of items.
func VisitEach[T Node](v *Visitor, items []T) {
	for _, it := range items {
		v.Visit(it)
	}
}

// Policy says what a target operation does when no handler matches.
type Policy int

const (
	// MustExist fails the program: the operation is mandatory.
	MustExist Policy = iota
	// ReturnOriginal returns the receiver itself.
	ReturnOriginal
	// ReturnNone returns nil.
	ReturnNone
	// Fallback does nothing and returns Pass.
	Fallback
)

// TargetHandler implements an operation for one kind of receiver.
type TargetHandler func(target Node, args ...any) any

// Operation is a named operation dispatched on the kind of a receiver
// node, typically a type-class rather than the expression being evaluated.
type Operation struct {
	Name     string
	Policy   Policy
	handlers map[Kind]TargetHandler
}

// NewOperation declares an operation with its miss policy.
func NewOperation(name string, policy Policy) *Operation {
	return &Operation{Name: name, Policy: policy, handlers: map[Kind]TargetHandler{}}
}

// Register installs h for receivers of kind.
func (o *Operation) Register(kind Kind, h TargetHandler) *Operation {
	o.handlers[kind] = h
	return o
}

// Invoke runs the first handler along the receiver's chain whose result is
// not Pass, and applies the miss policy otherwise.
func (o *Operation) Invoke(target Node, args ...any) any {
	if target != nil {
		for _, k := range Chain(target.Kind()) {
			if h, ok := o.handlers[k]; ok {
				if r := h(target, args...); r != Pass {
					return r
				}
			}
		}
	}
	switch o.Policy {
	case MustExist:
		if target == nil {
			contract.Failf("%s: no receiver", o.Name)
		}
		contract.Failf("%s: no handler for %v#%d", o.Name, target.Kind(), target.Meta().ID)
	case ReturnOriginal:
		return target
	case ReturnNone:
		return nil
	}
	return Pass
}
