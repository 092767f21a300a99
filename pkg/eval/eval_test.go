package eval

import (
	"testing"

	"github.com/oisee/nandforge/pkg/bitsig"
	"github.com/oisee/nandforge/pkg/dag"
	"github.com/oisee/nandforge/pkg/padgen"
	"github.com/oisee/nandforge/pkg/synth"
	"github.com/oisee/nandforge/pkg/word"
)

func buildCircuit(t *testing.T) *dag.Graph {
	t.Helper()
	g := dag.New()
	if err := synth.PrepareLeaves(g); err != nil {
		t.Fatalf("PrepareLeaves: %v", err)
	}
	if err := synth.Synthesize(g, word.Generate()); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	return g
}

func bindMessage(t *testing.T, msg []byte) Bindings {
	t.Helper()
	block, err := padgen.Pad(msg)
	if err != nil {
		t.Fatalf("Pad: %v", err)
	}
	words := padgen.Words(block)
	b := make(Bindings, bitsig.NumInputWords*bitsig.WordBits)
	for w := 0; w < bitsig.NumInputWords; w++ {
		bits := bitsig.ExpandWord(words[w])
		for j := 0; j < bitsig.WordBits; j++ {
			b[bitsig.InputLabel(w, j)] = bits[j]
		}
	}
	return b
}

// TestEvaluateKnownVectors checks the seed test suite's four ASCII vectors
// (spec.md §8, rows 1-4) against the circuit's digest.
func TestEvaluateKnownVectors(t *testing.T) {
	g := buildCircuit(t)

	cases := []struct {
		name string
		msg  []byte
		want string
	}{
		{"empty", []byte{}, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"a", []byte("a"), "ca978112ca1bbdcafac231b39a23dc4da786eff8147c4e72b9807785afee48bb"},
		{"hello", []byte("hello"), "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{"josh", []byte("josh"), "386a85d8c88778b00b1355608363c7e3078857f3e9633cfd0802d3bf1c0b5b83"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, err := Evaluate(g, bindMessage(t, c.msg))
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got := result.Digest(); got != c.want {
				t.Errorf("digest = %s, want %s", got, c.want)
			}
		})
	}
}

// TestEvaluatePartialXProducesFullAvalancheUnknown checks seed scenario 6
// (spec.md §8 row 6): binding only INPUT-W0-B0 to X and every other input
// bit to 0 must still make every output bit X, since SHA-256's avalanche
// effect means no output bit is independent of that one input bit.
func TestEvaluatePartialXProducesFullAvalancheUnknown(t *testing.T) {
	g := buildCircuit(t)
	bindings := make(Bindings, bitsig.NumInputWords*bitsig.WordBits)
	for _, label := range bitsig.AllInputLabels() {
		bindings[label] = bitsig.Zero
	}
	bindings[bitsig.InputLabel(0, 0)] = bitsig.Unknown

	result, err := Evaluate(g, bindings)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	digest := result.Digest()
	if len(digest) != 64 {
		t.Fatalf("digest length = %d, want 64", len(digest))
	}
	for _, c := range digest {
		if c != 'x' {
			t.Fatalf("expected every nibble to be unknown with one unknown input bit, got %q in %s", c, digest)
		}
	}
}

func TestEvaluateAllUnknownInputIsUnknownOutput(t *testing.T) {
	g := buildCircuit(t)
	bindings := make(Bindings, bitsig.NumInputWords*bitsig.WordBits)
	for _, label := range bitsig.AllInputLabels() {
		bindings[label] = bitsig.Unknown
	}
	result, err := Evaluate(g, bindings)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	digest := result.Digest()
	if len(digest) != 64 {
		t.Fatalf("digest length = %d, want 64", len(digest))
	}
	for _, c := range digest {
		if c != 'x' {
			t.Fatalf("expected every nibble to be unknown with a fully unbound input, got %q in %s", c, digest)
		}
	}
}

func TestEvaluateMissingBindingFails(t *testing.T) {
	g := buildCircuit(t)
	if _, err := Evaluate(g, Bindings{}); err == nil {
		t.Fatal("expected an error for missing input bindings")
	}
}
