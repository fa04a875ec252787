package analyzer

import (
	"strings"

	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/pipeline"
)

// RegisterProcessor declares every definition in the scope of its owner.
// It also splits grouped imports, classifies constructors and destructors,
// and gives classes without a constructor a default one.
type RegisterProcessor struct{}

func (p *RegisterProcessor) Name() string { return RegisterPass }

func (p *RegisterProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return processUnits(ctx, p)
}

func (p *RegisterProcessor) Unit(ctx *pipeline.PipelineContext, u *ast.Unit) {
	p.visitor(ctx).Visit(u)
}

func (p *RegisterProcessor) Visit(ctx *pipeline.PipelineContext, n ast.Node) {
	p.visitor(ctx).Visit(n)
}

type registrar struct {
	ctx *pipeline.PipelineContext
	a   *ast.Arena
}

func (p *RegisterProcessor) visitor(ctx *pipeline.PipelineContext) *ast.Visitor {
	r := &registrar{ctx: ctx, a: ctx.Arena}
	return ast.NewVisitor(RegisterPass).
		On(ast.KindUnit, r.unit).
		On(ast.KindClass, r.class).
		On(ast.KindExtension, r.extension).
		On(ast.KindFunc, r.function).
		On(ast.KindVar, r.variable).
		On(ast.KindClosure, r.closure).
		On(ast.KindEnum, r.declared).
		On(ast.KindTypeDef, r.declared).
		On(ast.KindScript, skip).
		On(ast.KindImport, skip).
		On(ast.KindType, skip)
}

func (r *registrar) declare(owner ast.Node, name string, n ast.Node) {
	r.ctx.Symbols.MustDeclare(owner, name, n)
}

func (r *registrar) unit(v *ast.Visitor, n ast.Node) any {
	u := n.(*ast.Unit)
	r.splitImports(u)
	ast.VisitEach(v, u.Definitions)
	return nil
}

// splitImports turns `import a.b (X, Y)` into `import a.b.X` and `import a.b.Y`.
func (r *registrar) splitImports(u *ast.Unit) {
	out := make([]*ast.Import, 0, len(u.Imports))
	for _, imp := range u.Imports {
		if len(imp.Names) == 0 {
			out = append(out, imp)
			continue
		}
		for _, name := range imp.Names {
			one := r.a.Import(strings.Join(append(append([]string{}, imp.Path...), name), "."))
			r.a.SetOwner(one, u)
			out = append(out, one)
		}
	}
	u.Imports = out
}

func (r *registrar) class(v *ast.Visitor, n ast.Node) any {
	cls := n.(*ast.ClassDef)
	if cls.Flags.Registered {
		return nil
	}
	cls.Flags.Registered = true
	if cls.Instantiation == nil {
		r.declare(r.a.Owner(cls), cls.Name, cls)
	}
	if cls.IsPrototype() {
		return nil
	}
	v.VisitChildren(cls)
	if len(cls.Constructors) == 0 && !cls.IsLibrary() {
		ctor := r.a.Func(cls.Name, nil, r.a.Body())
		addMember(r.ctx, cls, ctor)
		r.ctx.Logger.Debug("register.default_constructor", "class", cls.Name)
	}
	return nil
}

func (r *registrar) extension(v *ast.Visitor, n ast.Node) any {
	ext := n.(*ast.ExtensionDef)
	if ext.Flags.Registered {
		return nil
	}
	ext.Flags.Registered = true
	ast.VisitEach(v, ext.Definitions)
	return nil
}

func (r *registrar) function(v *ast.Visitor, n ast.Node) any {
	f := n.(*ast.FuncDef)
	if f.Flags.Registered {
		return nil
	}
	f.Flags.Registered = true

	owner := r.a.Owner(f)
	if cls, ok := owner.(*ast.ClassDef); ok {
		f.Class = cls.ID
		switch f.Name {
		case cls.Name:
			f.FuncKind = ast.FuncConstructor
			cls.Constructors = append(cls.Constructors, f)
		case config.DestructorPrefix + cls.Name:
			contract.Assertf(cls.Destructor == nil, "class %s has two destructors", cls.Name)
			f.FuncKind = ast.FuncDestructor
			cls.Destructor = f
		default:
			r.declare(cls, f.Name, f)
		}
	} else {
		r.declare(owner, f.Name, f)
	}
	r.params(f, f.Spec)
	if f.Body != nil {
		v.Visit(f.Body)
	}
	return nil
}

func (r *registrar) params(owner ast.Node, spec *ast.FuncSpec) {
	if spec == nil {
		return
	}
	for _, p := range spec.Params {
		r.declare(owner, p.Name, p)
	}
}

func (r *registrar) variable(v *ast.Visitor, n ast.Node) any {
	x := n.(*ast.VarDef)
	if x.Flags.Registered {
		return nil
	}
	x.Flags.Registered = true
	owner := r.a.Owner(x)
	if cls, ok := owner.(*ast.ClassDef); ok {
		x.Class = cls.ID
	}
	r.declare(owner, x.Name, x)
	if x.Initial != nil {
		v.Visit(x.Initial)
	}
	return nil
}

func (r *registrar) closure(v *ast.Visitor, n ast.Node) any {
	c := n.(*ast.Closure)
	r.params(c, c.Spec)
	v.Visit(c.Body)
	return nil
}

func (r *registrar) declared(_ *ast.Visitor, n ast.Node) any {
	switch x := n.(type) {
	case *ast.EnumDef:
		if !x.Flags.Registered {
			x.Flags.Registered = true
			r.declare(r.a.Owner(x), x.Name, x)
		}
	case *ast.TypeDef:
		r.declare(r.a.Owner(x), x.Name, x)
	}
	return nil
}
