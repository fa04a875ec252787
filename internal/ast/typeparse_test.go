package ast

import "testing"

func TestParseType(t *testing.T) {
	a := NewArena()
	tests := []struct {
		src  string
		want string
	}{
		{"Int", "Int"},
		{"sys.Logger", "sys.Logger"},
		{"List<Int>", "List<Int>"},
		{"Dict<String, List<Int>>", "Dict<String, List<Int>>"},
		{"(Int, String) => Bool", "(Int, String) => Bool"},
		{"Vec<Float, 3>", "Vec<Float, 3>"},
		{"Tuple<[Int, Bool]>", "Tuple<[Int, Bool]>"},
	}
	for _, tt := range tests {
		got, err := ParseType(a, tt.src)
		if err != nil {
			t.Errorf("ParseType(%q): %v", tt.src, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.src, got.String(), tt.want)
		}
	}
}

func TestParseTypeErrors(t *testing.T) {
	a := NewArena()
	for _, src := range []string{"", "List<Int", "(Int) Bool", "Int Int"} {
		if _, err := ParseType(a, src); err == nil {
			t.Errorf("ParseType(%q) should fail", src)
		}
	}
}

func TestParseSignature(t *testing.T) {
	a := NewArena()
	sig, err := ParseSignature(a, "static printf(format: String, args: Any...) => Void")
	if err != nil {
		t.Fatal(err)
	}
	if !sig.Static || sig.Name != "printf" {
		t.Errorf("sig = %+v", sig)
	}
	if len(sig.Spec.Params) != 2 || !sig.Spec.Variadic() || sig.Spec.MinArgs() != 1 {
		t.Errorf("params = %v", sig.Spec)
	}

	sig, err = ParseSignature(a, "each(f: (T) => Void)")
	if err != nil {
		t.Fatal(err)
	}
	if sig.Spec.Return.String() != "Void" {
		t.Errorf("default return = %v", sig.Spec.Return)
	}
	if _, ok := sig.Spec.Params[0].Type.(*FuncSpec); !ok {
		t.Errorf("param type = %T", sig.Spec.Params[0].Type)
	}
}
