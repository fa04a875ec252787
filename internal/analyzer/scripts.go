package analyzer

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
)

// ScriptHandler implements one script (annotation).
type ScriptHandler interface {
	// Inheritable scripts are copied to subclasses that do not carry them.
	Inheritable() bool
	// Process runs in the scripts pass, or when an inherited copy is made.
	Process(ctx *pipeline.PipelineContext, s *ast.Script, target ast.Node)
	// Resolve runs in the names pass, after the target's bases resolved.
	Resolve(ctx *pipeline.PipelineContext, s *ast.Script, target ast.Node)
}

var scriptHandlers = map[string]ScriptHandler{}

// RegisterScript installs the handler of a script name.
func RegisterScript(name string, h ScriptHandler) {
	scriptHandlers[name] = h
}

func scriptHandler(s *ast.Script) ScriptHandler {
	h, ok := scriptHandlers[s.Name]
	contract.Assertf(ok, "unknown script %q", s.Name)
	return h
}

// ScriptProcessor runs the Process hook of every script attached to a
// class, function or variable.
type ScriptProcessor struct{}

func (p *ScriptProcessor) Name() string { return ScriptsPass }

func (p *ScriptProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return processUnits(ctx, p)
}

func (p *ScriptProcessor) Unit(ctx *pipeline.PipelineContext, u *ast.Unit) {
	p.visitor(ctx).Visit(u)
}

func (p *ScriptProcessor) Visit(ctx *pipeline.PipelineContext, n ast.Node) {
	p.visitor(ctx).Visit(n)
}

func (p *ScriptProcessor) visitor(ctx *pipeline.PipelineContext) *ast.Visitor {
	v := ast.NewVisitor(ScriptsPass)
	v.On(ast.KindClass, func(v *ast.Visitor, n ast.Node) any {
		cls := n.(*ast.ClassDef)
		if cls.IsPrototype() || cls.Flags.Scripted {
			return nil
		}
		cls.Flags.Scripted = true
		processScripts(ctx, cls.Scripts, cls)
		v.VisitChildren(cls)
		return nil
	})
	v.On(ast.KindFunc, func(_ *ast.Visitor, n ast.Node) any {
		f := n.(*ast.FuncDef)
		if !f.Flags.Scripted {
			f.Flags.Scripted = true
			processScripts(ctx, f.Scripts, f)
		}
		return nil
	})
	v.On(ast.KindVar, func(_ *ast.Visitor, n ast.Node) any {
		x := n.(*ast.VarDef)
		if !x.Flags.Scripted {
			x.Flags.Scripted = true
			processScripts(ctx, x.Scripts, x)
		}
		return nil
	})
	v.On(ast.KindScript, skip)
	v.On(ast.KindType, skip)
	return v
}

func processScripts(ctx *pipeline.PipelineContext, scripts []*ast.Script, target ast.Node) {
	for _, s := range scripts {
		if s.MarkProcessed() {
			continue
		}
		scriptHandler(s).Process(ctx, s, target)
		ctx.Logger.Debug("scripts.process", "script", s.Name, "target", target.Kind().String(), "inherited", s.Inherited)
	}
}

func hasScript(cls *ast.ClassDef, name string) bool {
	for _, s := range cls.Scripts {
		if s.Name == name {
			return true
		}
	}
	return false
}
