package circio

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/oisee/nandforge/pkg/bitsig"
	"github.com/oisee/nandforge/pkg/dag"
)

// WriteNandsFile serializes every live gate in g as "LABEL,A,B" (meaning
// LABEL := NAND(A,B)), followed by one "LABEL,=,TARGET" line per output
// alias that does not already coincide with a gate's own label — spec.md
// treats outputs as aliases, not renamed gates, so an output line only
// appears when the alias target's defining label differs from the output
// label itself (spec.md §6 nands.txt, Design Notes "Open Question:
// output aliasing").
func WriteNandsFile(path string, g *dag.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("circio: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for id := dag.NodeID(0); int(id) < g.Len(); id++ {
		n := g.Node(id)
		if n.Kind != dag.KindGate {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s,%s,%s\n", n.Label, g.Node(n.InA).Label, g.Node(n.InB).Label); err != nil {
			return fmt.Errorf("circio: write %s: %w", path, err)
		}
	}
	for _, label := range bitsig.AllOutputLabels() {
		id, ok := g.OutputAlias(label)
		if !ok {
			return fmt.Errorf("circio: output %q never bound", label)
		}
		target := g.Node(id).Label
		if target == label {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s,=,%s\n", label, target); err != nil {
			return fmt.Errorf("circio: write %s: %w", path, err)
		}
	}
	return w.Flush()
}

// ReadNandsFile replays a nands.txt on top of a graph that already carries
// its leaves (CONST-0/1, INPUT-*, K-*, H-INIT-*), via dag.Graph's own
// DefineNand/BindOutput so the same definition-before-use, duplicate-label,
// and CSE-interning invariants apply to a file round-trip as to a freshly
// synthesized graph.
func ReadNandsFile(path string, g *dag.Graph) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("circio: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return fmt.Errorf("circio: %s:%d: expected 3 fields, got %d", path, lineNo, len(fields))
		}
		label, op2, op3 := fields[0], fields[1], fields[2]
		if op2 == "=" {
			target, ok := g.Lookup(op3)
			if !ok {
				return fmt.Errorf("circio: %s:%d: alias target %q not defined", path, lineNo, op3)
			}
			g.BindOutput(label, target)
			continue
		}
		a, ok := g.Lookup(op2)
		if !ok {
			return fmt.Errorf("circio: %s:%d: operand %q not defined", path, lineNo, op2)
		}
		b, ok := g.Lookup(op3)
		if !ok {
			return fmt.Errorf("circio: %s:%d: operand %q not defined", path, lineNo, op3)
		}
		if _, err := g.DefineNand(label, a, b); err != nil {
			return fmt.Errorf("circio: %s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}
