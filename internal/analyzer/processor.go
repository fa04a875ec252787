// Package analyzer implements the annotation passes that turn loaded units
// into a fully resolved and typed program.
package analyzer

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/pipeline"
)

// Pass names, in pipeline order.
const (
	OwnersPass   = "owners"
	ExpandPass   = "expand"
	ScriptsPass  = "scripts"
	RegisterPass = "register"
	PreludePass  = "prelude"
	NamesPass    = "names"
	TypesPass    = "types"
)

// UnitPass is an annotation pass that can also run on a single unit.
type UnitPass interface {
	pipeline.Pass
	Unit(ctx *pipeline.PipelineContext, u *ast.Unit)
}

// Passes returns the annotation processors in execution order.
func Passes() []pipeline.Processor {
	return []pipeline.Processor{
		&OwnerProcessor{},
		&ExpandProcessor{},
		&ScriptProcessor{},
		&RegisterProcessor{},
		&PreludeProcessor{},
		&NameProcessor{},
		&TypeProcessor{},
	}
}

// Analyze runs every annotation pass over the units of ctx.
func Analyze(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return pipeline.New(Passes()...).Run(ctx)
}

// processUnits runs p over every unit, then over the extras it has not seen.
func processUnits(ctx *pipeline.PipelineContext, p UnitPass) *pipeline.PipelineContext {
	for _, u := range ctx.Ordered() {
		ctx.CurrentUnit = u
		p.Unit(ctx, u)
	}
	ctx.CurrentUnit = nil
	ctx.EachExtra(p.Name(), func(n ast.Node) { p.Visit(ctx, n) })
	return ctx
}

func skip(*ast.Visitor, ast.Node) any { return nil }

// selfType is a resolved reference to a class, enum or package.
func selfType(a *ast.Arena, n ast.Node) *ast.UserType {
	var t *ast.UserType
	switch x := n.(type) {
	case *ast.ClassDef:
		t = a.UserType([]string{x.Name})
		if x.Instantiation != nil {
			t.GenericArgs = x.Instantiation.Args
		}
	case *ast.EnumDef:
		t = a.UserType([]string{x.Name})
	case *ast.Package:
		t = a.UserType(x.Path)
	default:
		t = a.UserType([]string{n.Kind().String()})
	}
	t.Target = n.Meta().ID
	return t
}

// ownMember reports whether cls itself defines a member called name.
func ownMember(cls *ast.ClassDef, name string) bool {
	for _, f := range cls.Fields {
		if f.Name == name {
			return true
		}
	}
	for _, d := range cls.Definitions {
		switch x := d.(type) {
		case *ast.FuncDef:
			if x.Name == name {
				return true
			}
		case *ast.VarDef:
			if x.Name == name {
				return true
			}
		}
	}
	return false
}

// addMember attaches a synthesized member to cls and brings it up to date.
func addMember(ctx *pipeline.PipelineContext, cls *ast.ClassDef, n ast.Node) {
	cls.AddDefinition(n)
	ctx.Setup(n, cls)
}
