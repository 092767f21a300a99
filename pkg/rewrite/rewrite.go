// Package rewrite implements the optimizer R (spec.md §4.2): the five
// rewrite passes C1 (constant fold/propagate), C2 (algebraic identities),
// C3 (CSE), C4 (dead-code elimination), C5 (shared-inverter merge), run in
// that fixed order to a fixed point or a round cap.
//
// Each round is implemented as a single forward rebuild of the graph
// rather than five separate traversals: pkg/dag.Graph.DefineNand already
// performs commutative CSE interning (C3) and therefore shared-inverter
// merging (C5) for free, so a round only has to decide, per surviving
// gate, whether it folds to a constant (C1), matches an algebraic identity
// (C2), or is dead (C4, decided up front by a backward reachability scan
// from the 256 outputs). This is an implementation-strategy choice, not a
// semantic one: the five passes' observable contract (fixed order, fixed
// point, lower-NodeID tie-break via first-occurrence CSE) is preserved.
package rewrite

import (
	"fmt"

	"github.com/oisee/nandforge/pkg/bitsig"
	"github.com/oisee/nandforge/pkg/dag"
	"go.uber.org/zap"
)

// Stats reports what one round did, for logging and for the optimizer's
// fixed-point test.
type Stats struct {
	GatesBefore int
	GatesAfter  int
}

// Changed reports whether a round altered the gate count at all. A round
// that neither deletes nor creates a gate is, for this implementation, a
// round that reproduces the same gate count — the fixed point.
func (s Stats) Changed() bool {
	return s.GatesAfter != s.GatesBefore
}

// Optimize runs rounds of the five passes, in order, until a round makes
// no change or maxRounds is reached (spec.md §4.2 "a fixed point or a
// round cap, whichever comes first"). It returns the final graph.
func Optimize(g *dag.Graph, maxRounds int, log *zap.SugaredLogger) (*dag.Graph, error) {
	cur := g
	for round := 1; round <= maxRounds; round++ {
		next, stats, err := Round(cur)
		if err != nil {
			return nil, fmt.Errorf("rewrite: round %d: %w", round, err)
		}
		if log != nil {
			log.Infow("rewrite round complete",
				"round", round, "gatesBefore", stats.GatesBefore, "gatesAfter", stats.GatesAfter)
		}
		cur = next
		if !stats.Changed() {
			return cur, nil
		}
	}
	if log != nil {
		log.Warnw("rewrite did not reach a fixed point before the round cap", "maxRounds", maxRounds)
	}
	return cur, nil
}

// Round runs one fused C1-C5 pass over g and returns the rebuilt graph.
func Round(g *dag.Graph) (*dag.Graph, Stats, error) {
	reachable := liveSet(g)

	ng := dag.New()
	resolve := make([]dag.NodeID, g.Len())
	for i := range resolve {
		resolve[i] = -1
	}

	gatesBefore := 0
	for id := dag.NodeID(0); int(id) < g.Len(); id++ {
		n := g.Node(id)
		if n.Kind != dag.KindGate {
			newID, err := copyLeaf(ng, n)
			if err != nil {
				return nil, Stats{}, err
			}
			resolve[id] = newID
			continue
		}
		gatesBefore++
		if !reachable[id] {
			continue // C4: dead, never replayed
		}
		newID, err := resolveGate(ng, resolve, id, n)
		if err != nil {
			return nil, Stats{}, err
		}
		resolve[id] = newID
	}

	for label, oldID := range g.OutputAliases() {
		newID := resolve[oldID]
		if newID < 0 {
			return nil, Stats{}, fmt.Errorf("rewrite: output %q resolved to a dead node", label)
		}
		ng.BindOutput(label, newID)
	}

	gatesAfter := countGates(ng)
	return ng, Stats{GatesBefore: gatesBefore, GatesAfter: gatesAfter}, nil
}

func countGates(g *dag.Graph) int {
	n := 0
	for id := dag.NodeID(0); int(id) < g.Len(); id++ {
		if g.Node(id).Kind == dag.KindGate {
			n++
		}
	}
	return n
}

func copyLeaf(ng *dag.Graph, n dag.Node) (dag.NodeID, error) {
	switch n.Kind {
	case dag.KindConstant:
		return ng.AddConstant(n.Label, n.Value)
	case dag.KindInput:
		return ng.AddInput(n.Label)
	case dag.KindBitConstant:
		return ng.AddBitConstant(n.Label, n.Value)
	default:
		return 0, fmt.Errorf("rewrite: unknown leaf kind %d for %q", n.Kind, n.Label)
	}
}

// liveSet returns, for every NodeID in g, whether it is a transitive
// ancestor of one of the 256 output aliases. Unreachable gates are C4's
// dead code; leaves are always kept regardless (spec.md §3 "Lifecycles":
// "constants and inputs are never deleted").
func liveSet(g *dag.Graph) map[dag.NodeID]bool {
	live := make(map[dag.NodeID]bool)
	var stack []dag.NodeID
	for _, id := range g.OutputAliases() {
		if !live[id] {
			live[id] = true
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := g.Node(id)
		if n.Kind != dag.KindGate {
			continue
		}
		for _, operand := range [2]dag.NodeID{n.InA, n.InB} {
			if !live[operand] {
				live[operand] = true
				stack = append(stack, operand)
			}
		}
	}
	return live
}

// resolveGate computes the NodeID that gate id resolves to in ng, applying
// C1 constant folding and C2 algebraic identities before falling back to a
// plain (CSE-interned) NAND definition.
func resolveGate(ng *dag.Graph, resolve []dag.NodeID, id dag.NodeID, n dag.Node) (dag.NodeID, error) {
	a := resolve[n.InA]
	b := resolve[n.InB]
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("rewrite: gate %q has an unresolved operand (reachability bug)", n.Label)
	}

	const0 := ng.MustLookup(bitsig.Const0)
	const1 := ng.MustLookup(bitsig.Const1)

	// C1: three-valued NAND table, applied structurally through already-
	// resolved (possibly already-folded) operands.
	if a == const0 || b == const0 {
		return const1, nil
	}
	if a == const1 && b == const1 {
		return const0, nil
	}

	// C2: double negation. NAND(p,p) where p is itself NAND(x,x) collapses
	// to x (spec.md §4.2 "double negation").
	if a == b {
		if x, ok := canonicalNot(ng, a); ok {
			return x, nil
		}
		return ng.DefineNand(n.Label, a, a)
	}

	// C2: contradiction. NAND(x, NOT x) is always 1 regardless of x's
	// value (spec.md §4.2 "contradiction").
	if x, ok := canonicalNot(ng, b); ok && x == a {
		return const1, nil
	}
	if x, ok := canonicalNot(ng, a); ok && x == b {
		return const1, nil
	}

	// C2: XOR with a constant input, recognized across the 4-gate XOR
	// shape: XOR(CONST-0, x) becomes x and XOR(CONST-1, x) becomes NOT x.
	if xa, xb, _, ok := matchXOR(ng, a, b); ok {
		switch {
		case xa == const0:
			return xb, nil
		case xb == const0:
			return xa, nil
		case xa == const1:
			return notOf(ng, n.Label, xb)
		case xb == const1:
			return notOf(ng, n.Label, xa)
		}
	}

	return ng.DefineNand(n.Label, a, b)
}

// canonicalNot reports whether id is a gate computing NAND(x,x) (the
// canonical NOT of x), returning x.
func canonicalNot(g *dag.Graph, id dag.NodeID) (dag.NodeID, bool) {
	n := g.Node(id)
	if n.Kind == dag.KindGate && n.InA == n.InB {
		return n.InA, true
	}
	return 0, false
}

// matchXOR reports whether left = NAND(a,t) and right = NAND(b,t) for some
// shared t with t = NAND(a,b) — the structural shape xorGate emits — and
// returns (a, b, t). C2 uses this to spot an XOR(a,b) one of whose inputs
// a, b is CONST-0 or CONST-1.
func matchXOR(g *dag.Graph, left, right dag.NodeID) (a, b, t dag.NodeID, ok bool) {
	ln := g.Node(left)
	rn := g.Node(right)
	if ln.Kind != dag.KindGate || rn.Kind != dag.KindGate {
		return 0, 0, 0, false
	}
	lCand := [2]dag.NodeID{ln.InA, ln.InB}
	rCand := [2]dag.NodeID{rn.InA, rn.InB}
	for _, tc := range lCand {
		for _, rc := range rCand {
			if tc != rc {
				continue
			}
			t = tc
			if ln.InA == t {
				a = ln.InB
			} else {
				a = ln.InA
			}
			if rn.InA == t {
				b = rn.InB
			} else {
				b = rn.InA
			}
			tn := g.Node(t)
			if tn.Kind == dag.KindGate && ((tn.InA == a && tn.InB == b) || (tn.InA == b && tn.InB == a)) {
				return a, b, t, true
			}
		}
	}
	return 0, 0, 0, false
}

// notOf returns (creating if necessary) the canonical NOT of x.
func notOf(g *dag.Graph, label string, x dag.NodeID) (dag.NodeID, error) {
	return g.DefineNand(label+"-not", x, x)
}
