package contract

import (
	"strings"
	"testing"
)

func TestCatchReturnsViolation(t *testing.T) {
	err := Catch(func() { Assertf(1 == 2, "bad %s", "thing") })
	if err == nil {
		t.Fatal("expected a violation")
	}
	if !strings.Contains(err.Error(), "bad thing") {
		t.Errorf("unexpected message: %v", err)
	}
	if _, ok := err.(*Violation); !ok {
		t.Errorf("expected *Violation, got %T", err)
	}
}

func TestCatchPassesThroughSuccess(t *testing.T) {
	if err := Catch(func() { Assert(true) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecoverRepanicsForeignValues(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("expected foreign panic to propagate, got %v", r)
		}
	}()
	_ = Catch(func() { panic("boom") })
}
