package bitsig

import "testing"

func TestParseBit(t *testing.T) {
	cases := map[string]Bit{"0": Zero, "1": One, "X": Unknown, "x": Unknown}
	for s, want := range cases {
		got, err := ParseBit(s)
		if err != nil {
			t.Fatalf("ParseBit(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseBit(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseBit("2"); err == nil {
		t.Error("expected an error for an invalid bit value")
	}
}

func TestBitString(t *testing.T) {
	cases := map[Bit]string{Zero: "0", One: "1", Unknown: "X"}
	for b, want := range cases {
		if got := b.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", b, got, want)
		}
	}
}

func TestExpandWordRoundTripsThroughCompactWord(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xffffffff, 0x12345678, 0x80000000} {
		bits := ExpandWord(v)
		got := CompactWord(bits)
		if got != v {
			t.Errorf("ExpandWord/CompactWord round trip: got %#x, want %#x", got, v)
		}
	}
}

func TestExpandWordBitOrderIsLSBFirst(t *testing.T) {
	bits := ExpandWord(1)
	if bits[0] != One {
		t.Fatal("bit 0 should be the LSB and therefore One for value 1")
	}
	for j := 1; j < WordBits; j++ {
		if bits[j] != Zero {
			t.Fatalf("bit %d should be Zero for value 1, got %v", j, bits[j])
		}
	}
}

func TestExpandWordMaskedForcesUnknown(t *testing.T) {
	bits := ExpandWordMasked(0xffffffff, 1<<3)
	for j := 0; j < WordBits; j++ {
		if j == 3 {
			if bits[j] != Unknown {
				t.Fatalf("bit 3 should be masked Unknown, got %v", bits[j])
			}
		} else if bits[j] != One {
			t.Fatalf("bit %d should be One, got %v", j, bits[j])
		}
	}
}

func TestCompactWordPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when compacting an unknown bit")
		}
	}()
	var bits [WordBits]Bit
	bits[0] = Unknown
	CompactWord(bits)
}

func TestLabelHelpersAreStable(t *testing.T) {
	if InputLabel(3, 7) != "INPUT-W3-B7" {
		t.Errorf("InputLabel(3,7) = %q", InputLabel(3, 7))
	}
	if RoundConstLabel(12, 0) != "K-12-B0" {
		t.Errorf("RoundConstLabel(12,0) = %q", RoundConstLabel(12, 0))
	}
	if InitHashLabel(4, 31) != "H-INIT-4-B31" {
		t.Errorf("InitHashLabel(4,31) = %q", InitHashLabel(4, 31))
	}
	if OutputLabel(0, 0) != "OUTPUT-W0-B0" {
		t.Errorf("OutputLabel(0,0) = %q", OutputLabel(0, 0))
	}
}

func TestAllLabelCounts(t *testing.T) {
	if n := len(AllInputLabels()); n != NumInputWords*WordBits {
		t.Errorf("len(AllInputLabels()) = %d, want %d", n, NumInputWords*WordBits)
	}
	if n := len(AllOutputLabels()); n != NumOutputWords*WordBits {
		t.Errorf("len(AllOutputLabels()) = %d, want %d", n, NumOutputWords*WordBits)
	}
	want := 2 + NumRoundConsts*WordBits + NumInitWords*WordBits
	if n := len(AllConstantLabels()); n != want {
		t.Errorf("len(AllConstantLabels()) = %d, want %d", n, want)
	}
}
