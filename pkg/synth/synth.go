// Package synth is the NAND synthesizer (spec.md §4): it consumes the
// word-level description built by pkg/word and emits the corresponding
// bit-level NAND DAG into a pkg/dag.Graph, using the fixed per-operator
// decomposition table of spec.md §4.1 and the bit-signal naming scheme of
// pkg/bitsig.
package synth

import (
	"fmt"

	"github.com/oisee/nandforge/pkg/bitsig"
	"github.com/oisee/nandforge/pkg/dag"
	"github.com/oisee/nandforge/pkg/word"
)

// PrepareLeaves adds every leaf signal the synthesizer's word-level program
// can reference: the two Boolean constants, the 512 message-block input
// bits, the 64*32 round-constant bits, and the 8*32 initial-hash bits. It
// must run before Synthesize. The round constants and initial hash are the
// builtin standard SHA-256 values (RoundConstants, InitHash); the input
// bits are left Unknown, bound later at evaluation time.
func PrepareLeaves(g *dag.Graph) error {
	if _, err := g.AddConstant(bitsig.Const0, dag.Zero); err != nil {
		return err
	}
	if _, err := g.AddConstant(bitsig.Const1, dag.One); err != nil {
		return err
	}

	for w := 0; w < bitsig.NumInputWords; w++ {
		for b := 0; b < bitsig.WordBits; b++ {
			if _, err := g.AddInput(bitsig.InputLabel(w, b)); err != nil {
				return err
			}
		}
	}

	for k := 0; k < bitsig.NumRoundConsts; k++ {
		bits := bitsig.ExpandWord(RoundConstants[k])
		for b := 0; b < bitsig.WordBits; b++ {
			if _, err := g.AddBitConstant(bitsig.RoundConstLabel(k, b), dag.Bit(bits[b])); err != nil {
				return err
			}
		}
	}

	for h := 0; h < bitsig.NumInitWords; h++ {
		bits := bitsig.ExpandWord(InitHash[h])
		for b := 0; b < bitsig.WordBits; b++ {
			if _, err := g.AddBitConstant(bitsig.InitHashLabel(h, b), dag.Bit(bits[b])); err != nil {
				return err
			}
		}
	}
	return nil
}

// Synthesize walks prog in order, emitting the bit-level NAND expansion of
// each word-level operation and finally binding the 256 OUTPUT-Wi-Bj alias
// labels to the circuit's result bits. g must already carry the leaves
// PrepareLeaves adds.
func Synthesize(g *dag.Graph, prog *word.Program) error {
	values := make(map[string]word32, len(prog.Ops)+88)

	for w := 0; w < bitsig.NumInputWords; w++ {
		label := fmt.Sprintf("W%d", w)
		values[label] = lookupWord(g, func(b int) string { return bitsig.InputLabel(w, b) })
	}
	for k := 0; k < bitsig.NumRoundConsts; k++ {
		label := fmt.Sprintf("K%d", k)
		values[label] = lookupWord(g, func(b int) string { return bitsig.RoundConstLabel(k, b) })
	}
	for h := 0; h < bitsig.NumInitWords; h++ {
		label := fmt.Sprintf("H%d", h)
		values[label] = lookupWord(g, func(b int) string { return bitsig.InitHashLabel(h, b) })
	}

	const0 := g.MustLookup(bitsig.Const0)

	for _, op := range prog.Ops {
		result, err := synthesizeOp(g, const0, values, op)
		if err != nil {
			return fmt.Errorf("synth: op %q (%s): %w", op.Label, op.Code, err)
		}
		values[op.Label] = result
	}

	for w, name := range []string{"H0", "H1", "H2", "H3", "H4", "H5", "H6", "H7"} {
		defLabel, ok := prog.Output[name]
		if !ok {
			return fmt.Errorf("synth: output %q never bound", name)
		}
		bits := values[defLabel]
		for b := 0; b < bitsig.WordBits; b++ {
			g.BindOutput(bitsig.OutputLabel(w, b), bits[b])
		}
	}
	return nil
}

func lookupWord(g *dag.Graph, labelOf func(int) string) word32 {
	var out word32
	for b := 0; b < bitsig.WordBits; b++ {
		out[b] = g.MustLookup(labelOf(b))
	}
	return out
}

func synthesizeOp(g *dag.Graph, const0 dag.NodeID, values map[string]word32, op word.Op) (word32, error) {
	operand := func(i int) word32 { return values[op.Operands[i]] }

	var out word32
	switch op.Code {
	case word.Copy:
		return operand(0), nil

	case word.Not:
		a := operand(0)
		for b := 0; b < bitsig.WordBits; b++ {
			id, err := notGate(g, bitLabel(op.Label, b), a[b])
			if err != nil {
				return out, err
			}
			out[b] = id
		}

	case word.And:
		a, bb := operand(0), operand(1)
		for b := 0; b < bitsig.WordBits; b++ {
			id, err := andGate(g, bitLabel(op.Label, b), a[b], bb[b])
			if err != nil {
				return out, err
			}
			out[b] = id
		}

	case word.Or:
		a, bb := operand(0), operand(1)
		for b := 0; b < bitsig.WordBits; b++ {
			id, err := orGate(g, bitLabel(op.Label, b), a[b], bb[b])
			if err != nil {
				return out, err
			}
			out[b] = id
		}

	case word.Xor:
		a, bb := operand(0), operand(1)
		for b := 0; b < bitsig.WordBits; b++ {
			id, err := xorGate(g, bitLabel(op.Label, b), a[b], bb[b])
			if err != nil {
				return out, err
			}
			out[b] = id
		}

	case word.Ch:
		e, f, gg := operand(0), operand(1), operand(2)
		for b := 0; b < bitsig.WordBits; b++ {
			id, err := chGate(g, bitLabel(op.Label, b), e[b], f[b], gg[b])
			if err != nil {
				return out, err
			}
			out[b] = id
		}

	case word.Maj:
		a, bb, c := operand(0), operand(1), operand(2)
		for b := 0; b < bitsig.WordBits; b++ {
			id, err := majGate(g, bitLabel(op.Label, b), a[b], bb[b], c[b])
			if err != nil {
				return out, err
			}
			out[b] = id
		}

	case word.Rotr:
		return rotr(operand(0), op.Shift), nil

	case word.Shr:
		return shr(operand(0), op.Shift, const0), nil

	case word.Add:
		a, bb := operand(0), operand(1)
		cin := const0
		var err error
		for b := 0; b < bitsig.WordBits; b++ {
			out[b], cin, err = fullAdder(g, bitLabel(op.Label, b), a[b], bb[b], cin)
			if err != nil {
				return out, err
			}
		}
		// 32-bit modular addition: the 33rd carry out of bit 31 is dropped.

	case word.Sigma0:
		return sigmaCompose(g, op.Label, rotr(operand(0), 2), rotr(operand(0), 13), rotr(operand(0), 22))

	case word.Sigma1:
		return sigmaCompose(g, op.Label, rotr(operand(0), 6), rotr(operand(0), 11), rotr(operand(0), 25))

	case word.SigmaLow0:
		return sigmaCompose(g, op.Label, rotr(operand(0), 7), rotr(operand(0), 18), shr(operand(0), 3, const0))

	case word.SigmaLow1:
		return sigmaCompose(g, op.Label, rotr(operand(0), 17), rotr(operand(0), 19), shr(operand(0), 10, const0))

	default:
		return out, fmt.Errorf("unhandled opcode %s", op.Code)
	}
	return out, nil
}

// sigmaCompose emits XOR(XOR(r1,r2),r3) bit by bit: the two chained XORs
// every Sigma/sigma word operator reduces to once its three rotate/shift
// terms are in hand (8 gates/bit).
func sigmaCompose(g *dag.Graph, label string, r1, r2, r3 word32) (word32, error) {
	var out word32
	for b := 0; b < bitsig.WordBits; b++ {
		tmp, err := xorGate(g, bitLabel(label, b)+"-lo", r1[b], r2[b])
		if err != nil {
			return out, err
		}
		id, err := xorGate(g, bitLabel(label, b), tmp, r3[b])
		if err != nil {
			return out, err
		}
		out[b] = id
	}
	return out, nil
}

func bitLabel(wordLabel string, bit int) string {
	return fmt.Sprintf("%s-B%d", wordLabel, bit)
}
