package word

import "fmt"

// Generate builds the full word-level description of the SHA-256
// compression function for a single 512-bit block: the 48-word message
// schedule extension, the 64-round compression loop, and the 8 final
// modular additions that produce H0..H7. A single deterministic pass, run
// once ahead of time, to build a static description.
func Generate() *Program {
	p := NewProgram()

	// Message schedule: W[16..63].
	schedule := make([]string, 64)
	for i := 0; i < 16; i++ {
		schedule[i] = fmt.Sprintf("W%d", i)
	}
	for t := 16; t < 64; t++ {
		s0 := sigmaLow0(p, t, schedule[t-15])
		s1 := sigmaLow1(p, t, schedule[t-2])
		sum := addChain(p, fmt.Sprintf("Wsched%d", t), schedule[t-16], s0, schedule[t-7], s1)
		schedule[t] = p.Emit(fmt.Sprintf("W%d", t), Copy, 0, sum)
	}

	// Working variables, seeded from the initial hash words.
	a, b, c, d, e, f, g, h := "H0", "H1", "H2", "H3", "H4", "H5", "H6", "H7"

	for t := 0; t < 64; t++ {
		s1 := sigma1(p, t, e)
		chv := p.Emit(fmt.Sprintf("ch%d", t), Ch, 0, e, f, g)
		k := fmt.Sprintf("K%d", t)
		temp1 := addChain(p, fmt.Sprintf("temp1_%d", t), h, s1, chv, k, schedule[t])

		s0 := sigma0(p, t, a)
		majv := p.Emit(fmt.Sprintf("maj%d", t), Maj, 0, a, b, c)
		temp2 := p.Emit(fmt.Sprintf("temp2_%d", t), Add, 0, s0, majv)

		newE := p.Emit(fmt.Sprintf("a_e_%d", t), Add, 0, d, temp1)
		newA := p.Emit(fmt.Sprintf("a_a_%d", t), Add, 0, temp1, temp2)

		h, g, f = g, f, e
		e = newE
		d, c, b = c, b, a
		a = newA
	}

	// H-update: Hi <- Hi + {a,b,c,d,e,f,g,h}[i], the circuit's 8 outputs.
	final := []string{a, b, c, d, e, f, g, h}
	for i, v := range final {
		sum := p.Emit(fmt.Sprintf("Hfinal%d", i), Add, 0, fmt.Sprintf("H%d", i), v)
		p.BindOutput(fmt.Sprintf("H%d", i), sum)
	}

	return p
}

// addChain folds a modular sum of two or more terms into a left-associative chain of
// binary ADD ops, returning the final label. Exactly two terms emits a
// single ADD with the given label; more terms emit intermediate labels
// suffixed _1, _2, ... so every Emit call still sees a unique label.
func addChain(p *Program, label string, terms ...string) string {
	if len(terms) < 2 {
		panic("word: addChain needs at least two terms")
	}
	acc := terms[0]
	for i := 1; i < len(terms); i++ {
		l := label
		if i < len(terms)-1 {
			l = fmt.Sprintf("%s_%d", label, i)
		}
		acc = p.Emit(l, Add, 0, acc, terms[i])
	}
	return acc
}

func sigma0(p *Program, round int, x string) string {
	return p.Emit(fmt.Sprintf("S0_%d", round), Sigma0, 0, x)
}

func sigma1(p *Program, round int, x string) string {
	return p.Emit(fmt.Sprintf("S1_%d", round), Sigma1, 0, x)
}

func sigmaLow0(p *Program, round int, x string) string {
	return p.Emit(fmt.Sprintf("s0_%d", round), SigmaLow0, 0, x)
}

func sigmaLow1(p *Program, round int, x string) string {
	return p.Emit(fmt.Sprintf("s1_%d", round), SigmaLow1, 0, x)
}
