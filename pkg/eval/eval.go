// Package eval implements the evaluator V (spec.md §5): a three-valued
// NAND walk over an immutable graph snapshot, and the differential-fuzzing
// harness that checks a circuit against a reference SHA-256 implementation.
package eval

import (
	"fmt"

	"github.com/oisee/nandforge/pkg/bitsig"
	"github.com/oisee/nandforge/pkg/dag"
)

// Bindings supplies the concrete 0/1/X value for every INPUT-Wi-Bj label;
// evaluation fails fast if a binding is missing.
type Bindings map[string]bitsig.Bit

// Result is the evaluated circuit: one bit per node, plus the 256
// OUTPUT-Wi-Bj digest bits pulled out separately for formatting.
type Result struct {
	Bits   map[dag.NodeID]bitsig.Bit
	Output [bitsig.NumOutputWords][bitsig.WordBits]bitsig.Bit
}

// Evaluate walks g in definition order — always a valid topological order,
// per the definition-before-use invariant — computing each gate's value
// from its already-computed operands via the three-valued NAND table
// (spec.md §5 "three-valued evaluation").
func Evaluate(g *dag.Graph, bindings Bindings) (*Result, error) {
	bits := make(map[dag.NodeID]bitsig.Bit, g.Len())
	for id := dag.NodeID(0); int(id) < g.Len(); id++ {
		n := g.Node(id)
		switch n.Kind {
		case dag.KindConstant, dag.KindBitConstant:
			bits[id] = bitsig.Bit(n.Value)
		case dag.KindInput:
			v, ok := bindings[n.Label]
			if !ok {
				return nil, fmt.Errorf("eval: no binding for input %q", n.Label)
			}
			bits[id] = v
		case dag.KindGate:
			bits[id] = nand(bits[n.InA], bits[n.InB])
		default:
			return nil, fmt.Errorf("eval: unknown node kind %d at %q", n.Kind, n.Label)
		}
	}

	var out [bitsig.NumOutputWords][bitsig.WordBits]bitsig.Bit
	for w := 0; w < bitsig.NumOutputWords; w++ {
		for b := 0; b < bitsig.WordBits; b++ {
			label := bitsig.OutputLabel(w, b)
			id, ok := g.OutputAlias(label)
			if !ok {
				return nil, fmt.Errorf("eval: output %q never bound", label)
			}
			out[w][b] = bits[id]
		}
	}
	return &Result{Bits: bits, Output: out}, nil
}

// nand is the three-valued NAND table of spec.md §5: 1 if either input is
// 0, 0 if both inputs are 1, X otherwise.
func nand(a, b bitsig.Bit) bitsig.Bit {
	if a == bitsig.Zero || b == bitsig.Zero {
		return bitsig.One
	}
	if a == bitsig.One && b == bitsig.One {
		return bitsig.Zero
	}
	return bitsig.Unknown
}

// Digest renders the 256-bit output as 64 hex nibbles, big-endian within
// each word and H0..H7 concatenated MSB-first; any nibble containing an
// unknown bit prints as lowercase 'x' (spec.md §5 "output formatting").
func (r *Result) Digest() string {
	out := make([]byte, 0, 64)
	for w := 0; w < bitsig.NumOutputWords; w++ {
		word := r.Output[w]
		for nibble := 0; nibble < 8; nibble++ {
			// Bit 31 is the word's MSB; each hex nibble covers 4 bits,
			// printed most-significant nibble first.
			hi := 31 - nibble*4
			v := 0
			unknown := false
			for i := 0; i < 4; i++ {
				bitPos := hi - i
				switch word[bitPos] {
				case bitsig.One:
					v |= 1 << (3 - i)
				case bitsig.Unknown:
					unknown = true
				}
			}
			if unknown {
				out = append(out, 'x')
			} else {
				out = append(out, "0123456789abcdef"[v])
			}
		}
	}
	return string(out)
}
