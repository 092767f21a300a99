package circio

import (
	"path/filepath"
	"testing"

	"github.com/oisee/nandforge/pkg/bitsig"
)

func TestWriteThenReadWordFileRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	entries := []WordEntry{
		{Label: "W0", Bits: bitsig.ExpandWord(0x01020304)},
		{Label: "W1", Bits: bitsig.ExpandWord(0xffffffff)},
	}
	if err := WriteWordFile(path, entries); err != nil {
		t.Fatalf("WriteWordFile: %v", err)
	}
	got, err := ReadWordFile(path)
	if err != nil {
		t.Fatalf("ReadWordFile: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Label != e.Label {
			t.Errorf("entry %d label = %q, want %q", i, got[i].Label, e.Label)
		}
		if got[i].Bits != e.Bits {
			t.Errorf("entry %d bits = %v, want %v", i, got[i].Bits, e.Bits)
		}
	}
}

func TestWordFileUnknownByteRoundTripsAsXX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	var bits [32]bitsig.Bit
	for i := 24; i < 32; i++ {
		bits[i] = bitsig.Unknown
	}
	if err := WriteWordFile(path, []WordEntry{{Label: "W0", Bits: bits}}); err != nil {
		t.Fatalf("WriteWordFile: %v", err)
	}
	got, err := ReadWordFile(path)
	if err != nil {
		t.Fatalf("ReadWordFile: %v", err)
	}
	for i := 24; i < 32; i++ {
		if got[0].Bits[i] != bitsig.Unknown {
			t.Errorf("bit %d = %v, want Unknown", i, got[0].Bits[i])
		}
	}
	for i := 0; i < 24; i++ {
		if got[0].Bits[i] != bitsig.Zero {
			t.Errorf("bit %d = %v, want Zero", i, got[0].Bits[i])
		}
	}
}

func TestReadWordFileRejectsShortHex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	writeRaw(t, path, "W0,1234\n")
	if _, err := ReadWordFile(path); err == nil {
		t.Fatal("expected an error for a non-8-char hex field")
	}
}
