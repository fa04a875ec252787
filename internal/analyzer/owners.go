package analyzer

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/pipeline"
)

// OwnerProcessor links every node to its lexically enclosing node and every
// unit to its package.
type OwnerProcessor struct{}

func (p *OwnerProcessor) Name() string { return OwnersPass }

func (p *OwnerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return processUnits(ctx, p)
}

func (p *OwnerProcessor) Unit(ctx *pipeline.PipelineContext, u *ast.Unit) {
	ctx.Arena.SetOwner(u, ctx.Symbols.Package(u.PackagePath))
	wireOwners(ctx.Arena, u)
}

func (p *OwnerProcessor) Visit(ctx *pipeline.PipelineContext, n ast.Node) {
	if u, ok := n.(*ast.Unit); ok {
		p.Unit(ctx, u)
		return
	}
	wireOwners(ctx.Arena, n)
}

// wireOwners walks prototype bodies too: clones inherit their structure.
func wireOwners(a *ast.Arena, n ast.Node) {
	children := n.Children()
	if cls, ok := n.(*ast.ClassDef); ok {
		children = cls.AllChildren()
	}
	for _, c := range children {
		a.SetOwner(c, n)
		wireOwners(a, c)
	}
}
