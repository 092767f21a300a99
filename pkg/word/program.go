package word

import "fmt"

// Op is a single word-level operation: an output label, an opcode, its
// operand labels (referencing either a reserved base label or an earlier
// Op's label), and a shift count for ROTR/SHR.
type Op struct {
	Label    string
	Code     OpCode
	Operands []string
	Shift    int // 1..31, only meaningful when HasShift(Code)
}

// Program is an ordered, validated sequence of word-level operations plus
// the set of reserved base labels (inputs, round constants, initial hash
// words) that operands may reference without a defining Op.
type Program struct {
	Ops    []Op
	Base   map[string]bool
	Output map[string]string // logical output name ("H0".."H7") -> defining label
}

// NewProgram seeds a Program with the reserved base labels: W0..W15
// (input words), K0..K63 (round constants), H0..H7 (initial hash words).
func NewProgram() *Program {
	p := &Program{Base: make(map[string]bool), Output: make(map[string]string)}
	for i := 0; i < 16; i++ {
		p.Base[fmt.Sprintf("W%d", i)] = true
	}
	for k := 0; k < 64; k++ {
		p.Base[fmt.Sprintf("K%d", k)] = true
	}
	for h := 0; h < 8; h++ {
		p.Base[fmt.Sprintf("H%d", h)] = true
	}
	return p
}

// defined reports whether label is a base label or the output of a
// previously appended Op.
func (p *Program) defined(label string) bool {
	if p.Base[label] {
		return true
	}
	for _, op := range p.Ops {
		if op.Label == label {
			return true
		}
	}
	return false
}

// Emit validates and appends a word operation, returning its label for
// convenient chaining. Panics on malformed construction: for Generate any
// failure here is a bug in the generator; circio.ReadFunctionsFile, which
// replays a file through Emit, recovers the panic into a parse error.
func (p *Program) Emit(label string, code OpCode, shift int, operands ...string) string {
	if p.defined(label) {
		panic(fmt.Sprintf("word: duplicate label %q", label))
	}
	if n := Arity(code); n >= 0 && n != len(operands) {
		panic(fmt.Sprintf("word: %s expects %d operands, got %d", code, n, len(operands)))
	}
	for _, operand := range operands {
		if !p.defined(operand) {
			panic(fmt.Sprintf("word: operand %q of %q is not defined before use", operand, label))
		}
	}
	if HasShift(code) && (shift < 1 || shift > 31) {
		panic(fmt.Sprintf("word: shift count %d out of range for %s %q", shift, code, label))
	}
	p.Ops = append(p.Ops, Op{Label: label, Code: code, Operands: operands, Shift: shift})
	return label
}

// BindOutput designates label as the current definition of logical output
// name (e.g. "H0"). Panics if label is not yet defined.
func (p *Program) BindOutput(name, label string) {
	if !p.defined(label) {
		panic(fmt.Sprintf("word: output %q bound to undefined label %q", name, label))
	}
	p.Output[name] = label
}
