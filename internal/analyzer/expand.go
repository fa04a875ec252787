package analyzer

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
)

// ExpandProcessor rewrites sugar before anything is declared: a function
// with a receiver becomes an extension block, a case class becomes a class
// deriving from its enclosing class and moves next to it.
type ExpandProcessor struct{}

func (p *ExpandProcessor) Name() string { return ExpandPass }

func (p *ExpandProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return processUnits(ctx, p)
}

func (p *ExpandProcessor) Unit(ctx *pipeline.PipelineContext, u *ast.Unit) {
	defs := p.wrapReceivers(ctx, u, u.Definitions)
	out := make([]ast.Node, 0, len(defs))
	for _, d := range defs {
		out = append(out, d)
		if cls, ok := d.(*ast.ClassDef); ok {
			out = append(out, p.expandClass(ctx, cls, u)...)
		}
	}
	u.Definitions = out
}

func (p *ExpandProcessor) Visit(ctx *pipeline.PipelineContext, n ast.Node) {
	if u, ok := n.(*ast.Unit); ok {
		p.Unit(ctx, u)
		return
	}
	cls, ok := n.(*ast.ClassDef)
	if !ok {
		return
	}
	hoisted := p.expandClass(ctx, cls, ctx.Arena.Owner(cls))
	contract.Assertf(len(hoisted) == 0, "case classes of synthesized class %s cannot be hoisted", cls.Name)
}

func (p *ExpandProcessor) wrapReceivers(ctx *pipeline.PipelineContext, container ast.Node, defs []ast.Node) []ast.Node {
	a := ctx.Arena
	out := make([]ast.Node, len(defs))
	for i, d := range defs {
		f, ok := d.(*ast.FuncDef)
		if !ok || f.Receiver == nil {
			out[i] = d
			continue
		}
		recv := f.Receiver
		f.Receiver = nil
		ext := a.Extension(recv, f)
		a.Reparent(ext, container)
		a.Reparent(recv, ext)
		a.Reparent(f, ext)
		ctx.Logger.Debug("expand.extension", "func", f.Name, "receiver", recv.String())
		out[i] = ext
	}
	return out
}

// expandClass returns the case classes that must follow cls in container.
func (p *ExpandProcessor) expandClass(ctx *pipeline.PipelineContext, cls *ast.ClassDef, container ast.Node) []ast.Node {
	if cls.Flags.Expanded {
		return nil
	}
	cls.Flags.Expanded = true

	var kept, hoisted []ast.Node
	for _, d := range cls.Definitions {
		nested, ok := d.(*ast.ClassDef)
		switch {
		case ok && nested.Kind() == ast.KindCaseClass:
			p.desugarCase(ctx, nested, cls, container)
			hoisted = append(hoisted, nested)
			hoisted = append(hoisted, p.expandClass(ctx, nested, container)...)
		case ok:
			kept = append(kept, d)
			kept = append(kept, p.expandClass(ctx, nested, cls)...)
		default:
			kept = append(kept, d)
		}
	}
	cls.Definitions = kept
	return hoisted
}

func (p *ExpandProcessor) desugarCase(ctx *pipeline.PipelineContext, c, enclosing *ast.ClassDef, container ast.Node) {
	a := ctx.Arena
	a.Desugar(c)
	base := a.UserType([]string{enclosing.Name})
	base.Target = enclosing.ID
	c.Bases = append([]*ast.UserType{base}, c.Bases...)
	a.SetOwner(base, c)
	a.Reparent(c, container)
	ctx.Logger.Debug("expand.case_class", "class", c.Name, "base", enclosing.Name)
}
