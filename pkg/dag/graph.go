// Package dag implements the NAND DAG arena: the dense node table, label
// interning, fan-out index, CSE canonical-pair table, and output alias
// table described by spec.md §3 ("Ownership") and §9 ("Cyclic fan-out
// bookkeeping", "Commutative CSE", "Alias chains").
package dag

import (
	"fmt"
	"sort"
)

// NodeID indexes the arena. It is assigned monotonically in definition
// order, so definition order and NodeID order always agree — this is what
// makes "lower node-id wins" a well-defined tie-break (spec.md Design
// Notes, "Not re-specified").
type NodeID int32

// Kind distinguishes the four disjoint signal kinds of spec.md §3.
type Kind uint8

const (
	KindConstant Kind = iota
	KindInput
	KindBitConstant // bit-expanded K-/H-INIT- constants
	KindGate
)

// Node is one entry in the arena. Constants and inputs carry no operand
// ids (InA == InB == -1); gates carry the NodeIDs of their two NAND
// operands.
type Node struct {
	Label string
	Kind  Kind
	InA   NodeID
	InB   NodeID
	Value Bit // only meaningful for KindConstant/KindBitConstant
}

// Bit mirrors bitsig.Bit without importing it, so dag stays leaf-level and
// dependency-free of the signal-naming package; pkg/synth is the layer that
// glues the two together. Zero/One/Unknown match bitsig's Bit exactly.
type Bit uint8

const (
	Zero Bit = iota
	One
	Unknown
)

// Graph owns all nodes, the label index, fan-out sets, and the output
// alias table. pkg/rewrite never mutates a *Graph it is given: each round
// replays the surviving gates into a freshly built Graph.
type Graph struct {
	nodes  []Node
	byName map[string]NodeID

	fanout map[NodeID]map[NodeID]struct{} // consumer set, keyed by producer

	// cse maps a canonical (min,max) operand pair to the earliest live gate
	// computing NAND of that pair (spec.md §9 "Commutative CSE").
	cse map[[2]NodeID]NodeID

	// outputAlias maps each of the 256 OUTPUT-Wi-Bj labels to the NodeID
	// currently defining it. Spec.md treats outputs as aliases, never as
	// renamed gates (Design Notes, Open Question).
	outputAlias map[string]NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		byName:      make(map[string]NodeID),
		fanout:      make(map[NodeID]map[NodeID]struct{}),
		cse:         make(map[[2]NodeID]NodeID),
		outputAlias: make(map[string]NodeID),
	}
}

// StructuralError is the "structural dump" spec.md §7 requires when an
// internal invariant is violated. It renders enough about the offending
// node for a human to diagnose it from a single log line.
type StructuralError struct {
	Label   string
	Reason  string
	InA, InB string
}

func (e *StructuralError) Error() string {
	if e.InA == "" && e.InB == "" {
		return fmt.Sprintf("dag: structural violation at %q: %s", e.Label, e.Reason)
	}
	return fmt.Sprintf("dag: structural violation at %q (inputs %s, %s): %s", e.Label, e.InA, e.InB, e.Reason)
}

// Lookup returns the NodeID for label, or false if it has never been
// defined.
func (g *Graph) Lookup(label string) (NodeID, bool) {
	id, ok := g.byName[label]
	return id, ok
}

// MustLookup is Lookup but panics; used where the caller has already
// established the label must exist (e.g. spec-fixed base signals).
func (g *Graph) MustLookup(label string) NodeID {
	id, ok := g.byName[label]
	if !ok {
		panic(fmt.Sprintf("dag: label %q not defined", label))
	}
	return id
}

// Node returns the node at id.
func (g *Graph) Node(id NodeID) Node {
	return g.nodes[id]
}

// Len returns the number of nodes ever allocated. Nodes are never removed
// from a Graph; dead-code elimination (pkg/rewrite) builds a new Graph
// without them instead.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddConstant defines a CONST-0/CONST-1 style leaf. Fatal (duplicate
// label) if label is already defined.
func (g *Graph) AddConstant(label string, value Bit) (NodeID, error) {
	return g.addLeaf(label, KindConstant, value)
}

// AddInput defines an INPUT-Wi-Bj leaf carrying an initially-unknown value;
// its concrete 0/1/X binding is supplied at evaluation time, not here.
func (g *Graph) AddInput(label string) (NodeID, error) {
	return g.addLeaf(label, KindInput, Unknown)
}

// AddBitConstant defines a K-/H-INIT- bit-expanded constant, bound to a
// literal value at synthesis time (spec.md §3).
func (g *Graph) AddBitConstant(label string, value Bit) (NodeID, error) {
	return g.addLeaf(label, KindBitConstant, value)
}

func (g *Graph) addLeaf(label string, kind Kind, value Bit) (NodeID, error) {
	if _, exists := g.byName[label]; exists {
		return 0, &StructuralError{Label: label, Reason: "duplicate label"}
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{Label: label, Kind: kind, InA: -1, InB: -1, Value: value})
	g.byName[label] = id
	return id, nil
}

// canonicalPair orders (a,b) by NodeID so NAND's commutativity is
// recognized for CSE purposes (spec.md §3 "Invariants", §9 "Commutative
// CSE").
func canonicalPair(a, b NodeID) [2]NodeID {
	if a <= b {
		return [2]NodeID{a, b}
	}
	return [2]NodeID{b, a}
}

// DefineNand defines label as NAND(a, b), interning through the CSE table:
// if an equivalent live gate already exists, its NodeID is returned and no
// new node is created. Fatal if a or b index past the allocated arena
// (definition-before-use, spec.md §3 "Invariants").
func (g *Graph) DefineNand(label string, a, b NodeID) (NodeID, error) {
	if _, exists := g.byName[label]; exists {
		return 0, &StructuralError{Label: label, Reason: "duplicate label"}
	}
	if int(a) >= len(g.nodes) || int(b) >= len(g.nodes) || a < 0 || b < 0 {
		return 0, &StructuralError{Label: label, Reason: "operand not yet defined (definition-before-use violation)"}
	}

	key := canonicalPair(a, b)
	if existing, ok := g.cse[key]; ok {
		// Structural duplicate: alias label to the existing gate instead of
		// creating a new node (spec.md §4.1 "each sub-expression interns
		// through a CSE table").
		g.byName[label] = existing
		return existing, nil
	}

	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{Label: label, Kind: KindGate, InA: a, InB: b})
	g.byName[label] = id
	g.cse[key] = id
	g.addFanout(a, id)
	g.addFanout(b, id)
	return id, nil
}

func (g *Graph) addFanout(producer, consumer NodeID) {
	set, ok := g.fanout[producer]
	if !ok {
		set = make(map[NodeID]struct{})
		g.fanout[producer] = set
	}
	set[consumer] = struct{}{}
}

// Fanout returns the NodeIDs that consume id, in ascending NodeID order.
func (g *Graph) Fanout(id NodeID) []NodeID {
	set := g.fanout[id]
	out := make([]NodeID, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BindOutput registers label (one of the 256 OUTPUT-Wi-Bj labels) as
// currently defined by id. Rebinding an already-bound output retargets the
// alias (spec.md §3 "Lifecycles": "if a rewrite replaces an output's
// defining expression, the output label is retargeted").
func (g *Graph) BindOutput(label string, id NodeID) {
	g.outputAlias[label] = id
}

// OutputAlias returns the NodeID currently defining output label, and
// whether it has been bound at all.
func (g *Graph) OutputAlias(label string) (NodeID, bool) {
	id, ok := g.outputAlias[label]
	return id, ok
}

// OutputAliases returns a copy of the full alias table (spec.md Design
// Notes: "implementers should expose the alias table").
func (g *Graph) OutputAliases() map[string]NodeID {
	out := make(map[string]NodeID, len(g.outputAlias))
	for k, v := range g.outputAlias {
		out[k] = v
	}
	return out
}

// Labels returns a copy of the full label -> NodeID table (a gate may
// appear under more than one label if CSE interning aliased later labels
// onto it).
func (g *Graph) Labels() map[string]NodeID {
	out := make(map[string]NodeID, len(g.byName))
	for k, v := range g.byName {
		out[k] = v
	}
	return out
}
