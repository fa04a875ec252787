package evaluator

import (
	"github.com/funvibe/gml/internal/ast"
	"github.com/funvibe/gml/internal/contract"
	"github.com/funvibe/gml/internal/typesystem"
)

// match runs the entry whose pattern class is nearest to the runtime class
// of the subject. Ties go to the entry declared first; the default entry
// runs only when no pattern matches.
func (ev *Evaluator) match(s *ast.Switch, f *Frame) Object {
	subject := ev.eval(s.Subject, f)
	entry := ev.selectEntry(s, subject)
	if entry == nil {
		contract.Failf("no case matches %s", repr(subject))
	}
	ev.Logger.Debug("eval.match", "subject", repr(subject), "pattern", patternName(entry))

	f.push()
	defer f.pop()
	if entry.Pattern != nil {
		f.declare(entry.Pattern.ID, subject)
	}
	if entry.Body != nil {
		ev.execStmts(entry.Body.Statements, f)
	}
	if entry.Value != nil && f.running() {
		return ev.eval(entry.Value, f)
	}
	return NIL
}

func (ev *Evaluator) selectEntry(s *ast.Switch, subject Object) *ast.CaseEntry {
	cls := ev.runtimeClass(subject)
	var best *ast.CaseEntry
	bestDistance := typesystem.NoMatch
	for _, e := range s.Entries {
		if e.Pattern == nil || cls == nil {
			continue
		}
		target, ok := ev.typeClass(patternType(e.Pattern)).(*ast.ClassDef)
		if !ok {
			continue
		}
		if d := typesystem.Distance(ev.a, cls, target); d < bestDistance {
			best, bestDistance = e, d
		}
	}
	if best == nil {
		return s.Default()
	}
	return best
}

func patternName(e *ast.CaseEntry) string {
	if e.Pattern == nil {
		return "default"
	}
	return e.Pattern.Name
}

func patternType(p *ast.VarDef) ast.Type {
	if p.Decl != nil {
		return p.Decl
	}
	return p.Type
}
