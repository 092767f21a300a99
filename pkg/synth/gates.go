package synth

import "github.com/oisee/nandforge/pkg/dag"

// word32 is the bit-level representation of one 32-bit value inside the
// synthesizer: bit 0 is the word's LSB, matching bitsig's Bj numbering.
type word32 = [32]dag.NodeID

// notGate emits NOT a as a single NAND (spec.md §4.1: "NOT = 1 gate").
func notGate(g *dag.Graph, label string, a dag.NodeID) (dag.NodeID, error) {
	return g.DefineNand(label, a, a)
}

// andGate emits AND(a,b) as 2 NANDs (spec.md §4.1: "AND = 2 gates").
func andGate(g *dag.Graph, label string, a, b dag.NodeID) (dag.NodeID, error) {
	t, err := g.DefineNand(label+"-t", a, b)
	if err != nil {
		return 0, err
	}
	return g.DefineNand(label, t, t)
}

// orGate emits OR(a,b) as 3 NANDs (spec.md §4.1: "OR = 3 gates").
func orGate(g *dag.Graph, label string, a, b dag.NodeID) (dag.NodeID, error) {
	na, err := g.DefineNand(label+"-na", a, a)
	if err != nil {
		return 0, err
	}
	nb, err := g.DefineNand(label+"-nb", b, b)
	if err != nil {
		return 0, err
	}
	return g.DefineNand(label, na, nb)
}

// xorGate emits XOR(a,b) as 4 NANDs, the decomposition every other
// composite operator (the ripple adder, the Sigma/sigma functions) reuses
// (spec.md §4.1: "XOR = 4 gates").
func xorGate(g *dag.Graph, label string, a, b dag.NodeID) (dag.NodeID, error) {
	t, err := g.DefineNand(label+"-t", a, b)
	if err != nil {
		return 0, err
	}
	q, err := g.DefineNand(label+"-q", a, t)
	if err != nil {
		return 0, err
	}
	r, err := g.DefineNand(label+"-r", b, t)
	if err != nil {
		return 0, err
	}
	return g.DefineNand(label, q, r)
}

// chGate emits CH(e,f,g) = (e AND f) XOR (NOT e AND g) in its 4-gate
// Boolean-mux form (spec.md §4.1: "CH = 4 gates/bit").
func chGate(dg *dag.Graph, label string, e, f, gIn dag.NodeID) (dag.NodeID, error) {
	notE, err := dg.DefineNand(label+"-ne", e, e)
	if err != nil {
		return 0, err
	}
	t1, err := dg.DefineNand(label+"-t1", e, f)
	if err != nil {
		return 0, err
	}
	t2, err := dg.DefineNand(label+"-t2", notE, gIn)
	if err != nil {
		return 0, err
	}
	return dg.DefineNand(label, t1, t2)
}

// majGate emits MAJ(a,b,c) in its 6-gate OR-form (spec.md §4.1: "MAJ = 6
// gates/bit"): x = NAND(NAND(a,b), NAND(a,c)); result = NAND(NAND(x,x),
// NAND(b,c)). The adder below re-derives this by hand so it can reuse the
// NAND(a,b) it already has, landing at 5 new gates instead of 6.
func majGate(g *dag.Graph, label string, a, b, c dag.NodeID) (dag.NodeID, error) {
	t1, err := g.DefineNand(label+"-t1", a, b)
	if err != nil {
		return 0, err
	}
	t2, err := g.DefineNand(label+"-t2", a, c)
	if err != nil {
		return 0, err
	}
	x, err := g.DefineNand(label+"-x", t1, t2)
	if err != nil {
		return 0, err
	}
	xx, err := g.DefineNand(label+"-xx", x, x)
	if err != nil {
		return 0, err
	}
	t3, err := g.DefineNand(label+"-t3", b, c)
	if err != nil {
		return 0, err
	}
	return g.DefineNand(label, xx, t3)
}

// fullAdder emits one bit of the 32-bit ripple adder as exactly 13 NANDs,
// the fixed decomposition spec.md §4.1 requires for conformance ("an
// implementation is conformant iff its 32-bit ripple adder uses exactly
// 13×32 gates"). It computes the first XOR (a^b), reuses it for the second
// XOR with cin (the bit sum), and derives the carry as MAJ(a,b,cin) while
// reusing the first XOR's NAND(a,b) rather than recomputing it — 4+4+5 = 13.
func fullAdder(g *dag.Graph, label string, a, b, cin dag.NodeID) (sum, cout dag.NodeID, err error) {
	p, err := g.DefineNand(label+"-p", a, b)
	if err != nil {
		return 0, 0, err
	}
	q, err := g.DefineNand(label+"-q", a, p)
	if err != nil {
		return 0, 0, err
	}
	r, err := g.DefineNand(label+"-r", b, p)
	if err != nil {
		return 0, 0, err
	}
	s1, err := g.DefineNand(label+"-s1", q, r) // a XOR b
	if err != nil {
		return 0, 0, err
	}

	p2, err := g.DefineNand(label+"-p2", s1, cin)
	if err != nil {
		return 0, 0, err
	}
	q2, err := g.DefineNand(label+"-q2", s1, p2)
	if err != nil {
		return 0, 0, err
	}
	r2, err := g.DefineNand(label+"-r2", cin, p2)
	if err != nil {
		return 0, 0, err
	}
	sum, err = g.DefineNand(label+"-sum", q2, r2) // (a XOR b) XOR cin
	if err != nil {
		return 0, 0, err
	}

	m1, err := g.DefineNand(label+"-m1", a, cin)
	if err != nil {
		return 0, 0, err
	}
	x, err := g.DefineNand(label+"-x", p, m1)
	if err != nil {
		return 0, 0, err
	}
	xx, err := g.DefineNand(label+"-xx", x, x)
	if err != nil {
		return 0, 0, err
	}
	m2, err := g.DefineNand(label+"-m2", b, cin)
	if err != nil {
		return 0, 0, err
	}
	cout, err = g.DefineNand(label+"-cout", xx, m2) // MAJ(a,b,cin)
	if err != nil {
		return 0, 0, err
	}
	return sum, cout, nil
}

// rotr returns ROTR_n(x): bit i of the result is bit (i+n) mod 32 of x.
// Pure relabeling, 0 gates (spec.md §4.1: "ROTR = 0 gates").
func rotr(x word32, n int) word32 {
	var out word32
	for i := 0; i < 32; i++ {
		out[i] = x[(i+n)%32]
	}
	return out
}

// shr returns SHR_n(x): bit i of the result is bit (i+n) of x when that
// index is in range, else the vacated bit is const0 (spec.md §4.1: "SHR =
// 0 gates ... vacated high bits become CONST-0").
func shr(x word32, n int, const0 dag.NodeID) word32 {
	var out word32
	for i := 0; i < 32; i++ {
		if i+n < 32 {
			out[i] = x[i+n]
		} else {
			out[i] = const0
		}
	}
	return out
}
