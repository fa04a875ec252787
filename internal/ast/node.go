// Package ast defines the arena-allocated program tree: definitions,
// expressions, statements and type references, all addressed by NodeID.
package ast

import (
	"github.com/funvibe/gml/internal/contract"
)

// NodeID is the stable arena index of a node. NoNode is never allocated.
type NodeID int32

const NoNode NodeID = 0

// NodeMeta is the header every node embeds.
type NodeMeta struct {
	ID    NodeID
	kind  Kind
	Owner NodeID // lexically enclosing node, set once by owner wiring

	// Type is the inferred type, assigned exactly once.
	Type Type
	// Expected is the type hint pushed down by the enclosing construct.
	Expected Type
}

func (m *NodeMeta) Meta() *NodeMeta { return m }
func (m *NodeMeta) Kind() Kind      { return m.kind }

// SetType assigns the inferred type. A second assignment is a defect.
func (m *NodeMeta) SetType(t Type) {
	contract.Assertf(t != nil, "nil type assigned to %v#%d", m.kind, m.ID)
	contract.Assertf(m.Type == nil, "type of %v#%d assigned twice", m.kind, m.ID)
	m.Type = t
}

// Node is implemented by every syntax tree node.
type Node interface {
	Meta() *NodeMeta
	Kind() Kind
	// Children returns the owned child nodes in source order.
	Children() []Node
}

// Expr is a node producing a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a node executed for effect.
type Stmt interface {
	Node
	stmtNode()
}

// Type is a type reference: a UserType or a FuncSpec.
type Type interface {
	Node
	typeNode()
	String() string
}

// Arena owns every node of a session.
type Arena struct {
	nodes []Node
}

// NewArena returns an arena with slot 0 reserved for NoNode.
func NewArena() *Arena {
	return &Arena{nodes: []Node{nil}}
}

// Len is the number of allocated nodes.
func (a *Arena) Len() int { return len(a.nodes) - 1 }

// Get returns the node with the given id, or nil for NoNode.
func (a *Arena) Get(id NodeID) Node {
	if id <= NoNode || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// Owner returns the owner of n, or nil.
func (a *Arena) Owner(n Node) Node {
	if n == nil {
		return nil
	}
	return a.Get(n.Meta().Owner)
}

// SetOwner links n to owner. Relinking to a different owner is a defect.
func (a *Arena) SetOwner(n, owner Node) {
	m := n.Meta()
	id := owner.Meta().ID
	contract.Assertf(m.Owner == NoNode || m.Owner == id,
		"owner of %v#%d relinked from #%d to #%d", m.kind, m.ID, m.Owner, id)
	m.Owner = id
}

// OwnerOfKind walks the owner chain of n (excluding n) and returns the first
// node whose chain contains one of kinds.
func (a *Arena) OwnerOfKind(n Node, kinds ...Kind) Node {
	for o := a.Owner(n); o != nil; o = a.Owner(o) {
		for _, k := range kinds {
			if IsA(o.Kind(), k) {
				return o
			}
		}
	}
	return nil
}

// UnitOf returns the translation unit containing n.
func (a *Arena) UnitOf(n Node) *Unit {
	if u, ok := n.(*Unit); ok {
		return u
	}
	if o := a.OwnerOfKind(n, KindUnit); o != nil {
		return o.(*Unit)
	}
	return nil
}

func add[T Node](a *Arena, kind Kind, n T) T {
	m := n.Meta()
	contract.Assertf(m.ID == NoNode, "node registered twice")
	m.ID = NodeID(len(a.nodes))
	m.kind = kind
	a.nodes = append(a.nodes, n)
	return n
}

// Reparent moves n under owner. Only pre-expansion uses it, when a rewrite
// relocates a definition before any later pass has looked at owners.
func (a *Arena) Reparent(n, owner Node) {
	n.Meta().Owner = owner.Meta().ID
}

// Desugar turns a case class into a plain class.
func (a *Arena) Desugar(c *ClassDef) {
	contract.Assertf(c.kind == KindCaseClass, "%s is not a case class", c.Name)
	c.kind = KindClass
}
