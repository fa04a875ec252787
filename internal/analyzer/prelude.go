package analyzer

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
)

// PreludeProcessor fills sys.prelude once every unit is registered and
// publishes it in the project scope, which ends every owner chain.
type PreludeProcessor struct{}

func (p *PreludeProcessor) Name() string { return PreludePass }

func (p *PreludeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	t := ctx.Symbols
	prelude := t.Package(ast.SplitPath(config.PreludePackage))

	for _, q := range ctx.Prelude {
		path := ast.SplitPath(q)
		n := t.ResolveQualified(path)
		contract.Assertf(n != nil, "prelude symbol %s is not defined", q)
		t.MustDeclare(prelude, path[len(path)-1], n)
	}

	lang := t.Scope(t.Package(ast.SplitPath(config.LangPackage)))
	for _, name := range lang.Names() {
		n, _ := lang.Local(name)
		t.MustDeclare(prelude, name, n)
	}

	scope := t.Scope(prelude)
	for _, name := range scope.Names() {
		n, _ := scope.Local(name)
		t.MustDeclare(t.Project(), name, n)
	}
	ctx.Logger.Debug("prelude.ready", "symbols", len(scope.Names()))
	return ctx
}
