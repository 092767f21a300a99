package word

import (
	"fmt"
	"testing"
)

func TestGenerateBindsAllOutputs(t *testing.T) {
	p := Generate()
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("H%d", i)
		if _, ok := p.Output[name]; !ok {
			t.Errorf("output %q was never bound", name)
		}
	}
	if len(p.Output) != 8 {
		t.Errorf("expected exactly 8 bound outputs, got %d", len(p.Output))
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate()
	b := Generate()
	if len(a.Ops) != len(b.Ops) {
		t.Fatalf("op count differs across calls: %d vs %d", len(a.Ops), len(b.Ops))
	}
	for i := range a.Ops {
		if a.Ops[i].Label != b.Ops[i].Label || a.Ops[i].Code != b.Ops[i].Code {
			t.Fatalf("op %d differs across calls: %+v vs %+v", i, a.Ops[i], b.Ops[i])
		}
	}
}

func TestGenerateEveryOpIsWellFormed(t *testing.T) {
	p := Generate()
	seen := map[string]bool{}
	for label := range p.Base {
		seen[label] = true
	}
	for _, op := range p.Ops {
		if seen[op.Label] {
			t.Fatalf("label %q defined more than once", op.Label)
		}
		seen[op.Label] = true
		if n := Arity(op.Code); n >= 0 && n != len(op.Operands) {
			t.Fatalf("op %q (%s) has %d operands, want %d", op.Label, op.Code, len(op.Operands), n)
		}
		for _, operand := range op.Operands {
			if !seen[operand] {
				t.Fatalf("op %q references operand %q before it is defined", op.Label, operand)
			}
		}
		if HasShift(op.Code) && (op.Shift < 1 || op.Shift > 31) {
			t.Fatalf("op %q has out-of-range shift %d", op.Label, op.Shift)
		}
	}
}

func TestGenerateMessageScheduleLength(t *testing.T) {
	p := Generate()
	count := 0
	for round := 16; round < 64; round++ {
		label := fmt.Sprintf("W%d", round)
		for _, op := range p.Ops {
			if op.Label == label && op.Code == Copy {
				count++
				break
			}
		}
	}
	// W16..W63: 48 scheduled words, each re-copied under its own Wn label.
	if count != 48 {
		t.Errorf("expected 48 emitted W-labeled ops (W16..W63), got %d", count)
	}
}
