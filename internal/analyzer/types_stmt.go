package analyzer

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
)

func (ty *typer) statements() {
	a := ty.a
	v := ty.v

	v.On(ast.KindReturn, func(_ *ast.Visitor, n ast.Node) any {
		r := n.(*ast.Return)
		ty.expr(r.Value, ty.returnType(r))
		return nil
	})

	v.On(ast.KindAssign, func(_ *ast.Visitor, n ast.Node) any {
		as := n.(*ast.Assign)
		if id, ok := as.Target.(*ast.Identifier); ok {
			if x, ok := a.Get(id.Target).(*ast.VarDef); ok {
				v.Visit(x)
				if x.Pending {
					vt := ty.expr(as.Value, nil)
					contract.Assertf(vt != nil, "type of %s cannot be inferred from its assignment", x.Name)
					ty.bind(x, vt)
				}
			}
		}
		tt := ty.expr(as.Target, nil)
		ty.expr(as.Value, tt)
		return nil
	})

	v.On(ast.KindIfBranch, func(_ *ast.Visitor, n ast.Node) any {
		b := n.(*ast.IfBranch)
		ty.expr(b.Cond, ty.lang(config.BoolTypeName))
		v.Visit(b.Body)
		return nil
	})

	v.On(ast.KindWhile, func(_ *ast.Visitor, n ast.Node) any {
		w := n.(*ast.While)
		ty.expr(w.Cond, ty.lang(config.BoolTypeName))
		v.Visit(w.Body)
		return nil
	})

	v.On(ast.KindAssert, func(_ *ast.Visitor, n ast.Node) any {
		as := n.(*ast.Assert)
		ty.expr(as.Cond, ty.lang(config.BoolTypeName))
		ty.expr(as.Message, ty.lang(config.StringTypeName))
		return nil
	})

	v.On(ast.KindExprStmt, func(_ *ast.Visitor, n ast.Node) any {
		ty.expr(n.(*ast.ExprStmt).X, nil)
		return nil
	})

	v.On(ast.KindForEach, func(_ *ast.Visitor, n ast.Node) any {
		f := n.(*ast.ForEach)
		ct := ty.expr(f.Collection, nil)
		item, value := ty.iterTypes(ty.classDefOf(ct), f.Value != nil)
		ty.loopVar(f.Item, item)
		if f.Value != nil {
			ty.loopVar(f.Value, value)
		}
		v.Visit(f.Body)
		return nil
	})
}

func (ty *typer) returnType(r *ast.Return) ast.Type {
	switch owner := ty.a.OwnerOfKind(r, ast.KindFunc, ast.KindClosure).(type) {
	case *ast.FuncDef:
		return owner.Spec.Return
	case *ast.Closure:
		if owner.Spec != nil {
			return owner.Spec.Return
		}
	}
	return nil
}

// iterTypes returns the loop variable types for iterating cls: list items,
// string characters, or dict keys (and values when pairs is set).
func (ty *typer) iterTypes(cls *ast.ClassDef, pairs bool) (item, value ast.Type) {
	switch ty.builtin(cls) {
	case config.ListTypeName:
		contract.Assertf(!pairs, "lists iterate single items")
		return binding(cls, config.ListItemParam), nil
	case config.StringTypeName:
		contract.Assertf(!pairs, "strings iterate single characters")
		return ty.lang(config.CharTypeName), nil
	case config.DictTypeName:
		return binding(cls, config.DictKeyParam), binding(cls, config.DictValueParam)
	}
	contract.Failf("%s is not iterable", describe(cls))
	return nil, nil
}

func (ty *typer) loopVar(x *ast.VarDef, t ast.Type) {
	if x.Decl != nil {
		ty.v.Visit(x)
		return
	}
	if !x.Flags.BeginTyping() {
		x.SetType(t)
		x.Flags.Typed = true
	}
}
