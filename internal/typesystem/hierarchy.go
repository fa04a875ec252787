package typesystem

import (
	"math"

	"github.com/funvibe/gml/internal/ast"
)

// NoMatch is the distance of an unrelated class.
const NoMatch = math.MaxInt

// Bases returns the resolved base classes of c in declaration order.
func Bases(a *ast.Arena, c *ast.ClassDef) []*ast.ClassDef {
	out := make([]*ast.ClassDef, 0, len(c.Bases))
	for _, b := range c.Bases {
		if cls, ok := TypeClassOf(a, b).(*ast.ClassDef); ok {
			out = append(out, cls)
		}
	}
	return out
}

// IsSubClass reports whether sub is base or inherits from it.
func IsSubClass(a *ast.Arena, sub, base *ast.ClassDef) bool {
	return Distance(a, sub, base) != NoMatch
}

// Distance is the inheritance distance from cls to target: 0 for the same
// class, else one more than the smallest distance of any direct base.
// Bases are searched in declaration order and an exact base match stops
// the search.
func Distance(a *ast.Arena, cls, target *ast.ClassDef) int {
	return distance(a, cls, target, 0)
}

func distance(a *ast.Arena, cls, target *ast.ClassDef, depth int) int {
	if cls == target {
		return 0
	}
	if depth > 64 {
		return NoMatch
	}
	best := NoMatch
	for _, b := range Bases(a, cls) {
		if d := distance(a, b, target, depth+1); d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	if best == NoMatch {
		return NoMatch
	}
	return best + 1
}
