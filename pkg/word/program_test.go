package word

import "testing"

func TestEmitRejectsDuplicateLabel(t *testing.T) {
	p := NewProgram()
	p.Emit("t0", Not, 0, "W0")
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on duplicate label")
		}
	}()
	p.Emit("t0", Not, 0, "W0")
}

func TestEmitRejectsWrongArity(t *testing.T) {
	p := NewProgram()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on wrong operand count")
		}
	}()
	p.Emit("bad", And, 0, "W0")
}

func TestEmitRejectsForwardReference(t *testing.T) {
	p := NewProgram()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on an undefined operand")
		}
	}()
	p.Emit("bad", Not, 0, "not-yet-defined")
}

func TestEmitRejectsShiftOutOfRange(t *testing.T) {
	p := NewProgram()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on an out-of-range shift count")
		}
	}()
	p.Emit("bad", Rotr, 0, "W0")
}

func TestBindOutputRejectsUndefinedLabel(t *testing.T) {
	p := NewProgram()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on binding an undefined label")
		}
	}()
	p.BindOutput("H0", "nope")
}

func TestBaseLabelsAreDefined(t *testing.T) {
	p := NewProgram()
	for _, label := range []string{"W0", "W15", "K0", "K63", "H0", "H7"} {
		if !p.defined(label) {
			t.Errorf("expected base label %q to be defined", label)
		}
	}
	if p.defined("W16") {
		t.Error("W16 is not a reserved base label until emitted")
	}
}

func TestArity(t *testing.T) {
	cases := map[OpCode]int{
		Copy: 1, Not: 1, Rotr: 1, Shr: 1,
		Sigma0: 1, Sigma1: 1, SigmaLow0: 1, SigmaLow1: 1,
		And: 2, Or: 2, Xor: 2, Add: 2,
		Ch: 3, Maj: 3,
	}
	for op, want := range cases {
		if got := Arity(op); got != want {
			t.Errorf("Arity(%s) = %d, want %d", op, got, want)
		}
	}
}

func TestHasShift(t *testing.T) {
	for _, op := range []OpCode{Rotr, Shr} {
		if !HasShift(op) {
			t.Errorf("HasShift(%s) = false, want true", op)
		}
	}
	for _, op := range []OpCode{Copy, Not, And, Or, Xor, Add, Ch, Maj} {
		if HasShift(op) {
			t.Errorf("HasShift(%s) = true, want false", op)
		}
	}
}
