package typesystem

import (
	"testing"

	"github.com/funvibe/gml/internal/ast"
)

func inherit(a *ast.Arena, cls *ast.ClassDef, bases ...*ast.ClassDef) {
	for _, b := range bases {
		ref := a.Named(b.Name)
		ref.Target = b.ID
		cls.Bases = append(cls.Bases, ref)
	}
}

func TestDistance(t *testing.T) {
	a := ast.NewArena()
	animal := a.Class("Animal")
	dog := a.Class("Dog")
	puppy := a.Class("Puppy")
	cat := a.Class("Cat")
	inherit(a, dog, animal)
	inherit(a, puppy, dog)
	inherit(a, cat, animal)

	tests := []struct {
		cls, target *ast.ClassDef
		want        int
	}{
		{puppy, puppy, 0},
		{puppy, dog, 1},
		{puppy, animal, 2},
		{puppy, cat, NoMatch},
		{animal, dog, NoMatch},
	}
	for _, tt := range tests {
		if got := Distance(a, tt.cls, tt.target); got != tt.want {
			t.Errorf("Distance(%s, %s) = %d, want %d", tt.cls.Name, tt.target.Name, got, tt.want)
		}
	}
	if !IsSubClass(a, puppy, animal) || IsSubClass(a, animal, puppy) {
		t.Error("IsSubClass disagrees with Distance")
	}
}

func TestDistanceTakesShortestBase(t *testing.T) {
	a := ast.NewArena()
	root := a.Class("Root")
	mid := a.Class("Mid")
	leaf := a.Class("Leaf")
	inherit(a, mid, root)
	inherit(a, leaf, mid, root)
	if got := Distance(a, leaf, root); got != 1 {
		t.Errorf("Distance = %d, want 1", got)
	}
}
