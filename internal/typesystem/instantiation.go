package typesystem

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
)

// SetupFunc runs first-time setup on a fresh instantiation.
type SetupFunc func(clone, proto *ast.ClassDef)

// Instantiator caches the instantiations of one prototype.
type Instantiator struct {
	Proto   *ast.ClassDef
	buckets map[uint64][]cached
	ordered []*ast.ClassDef
}

type cached struct {
	key   string
	class *ast.ClassDef
}

// Instances returns the instantiations in creation order.
func (i *Instantiator) Instances() []*ast.ClassDef { return i.ordered }

func (i *Instantiator) find(sum uint64, key string) *ast.ClassDef {
	for _, c := range i.buckets[sum] {
		if c.key == key {
			return c.class
		}
	}
	return nil
}

// Engine owns the instantiators of a session.
type Engine struct {
	arena         *ast.Arena
	instantiators map[ast.NodeID]*Instantiator
	setup         SetupFunc
	requests      int
	created       int
}

// NewEngine returns an engine allocating clones in a.
func NewEngine(a *ast.Arena) *Engine {
	return &Engine{arena: a, instantiators: map[ast.NodeID]*Instantiator{}}
}

// OnSetup installs the first-time setup callback.
func (e *Engine) OnSetup(fn SetupFunc) { e.setup = fn }

// Requests counts Instantiate calls; Created counts cache misses.
func (e *Engine) Requests() int { return e.requests }
func (e *Engine) Created() int  { return e.created }

// Instantiator returns the cache attached to proto.
func (e *Engine) Instantiator(proto *ast.ClassDef) *Instantiator {
	inst, ok := e.instantiators[proto.ID]
	if !ok {
		inst = &Instantiator{Proto: proto, buckets: map[uint64][]cached{}}
		e.instantiators[proto.ID] = inst
	}
	return inst
}

// Instantiate returns the instantiation of proto for args, creating it on
// the first request with structurally new arguments. Incompatible
// arguments are a definition defect.
func (e *Engine) Instantiate(proto *ast.ClassDef, args []*ast.GenericArg) *ast.ClassDef {
	contract.Assertf(proto.IsPrototype(), "%s is not a generic prototype", proto.Name)
	if err := CheckArgs(proto.GenericParams, args); err != nil {
		contract.Fail(errors.Wrapf(err, "instantiate %s", proto.Name))
	}
	e.requests++

	key := strings.Join(argKeys(e.arena, proto.GenericParams, args), ";")
	h := xxh3.New()
	_, _ = io.WriteString(h, key)
	sum := h.Sum64()

	cache := e.Instantiator(proto)
	if hit := cache.find(sum, key); hit != nil {
		return hit
	}

	clone := ast.Clone(e.arena, proto)
	clone.Prototype = proto.ID
	clone.Instantiation = bind(e.arena, clone.GenericParams, args)
	cache.buckets[sum] = append(cache.buckets[sum], cached{key: key, class: clone})
	cache.ordered = append(cache.ordered, clone)
	e.created++

	if e.setup != nil {
		e.setup(clone, proto)
	}
	return clone
}
