package circio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oisee/nandforge/pkg/word"
)

// WriteFunctionsFile serializes prog's operations as "LABEL,OPCODE,SHIFT,
// OPERANDS..." lines (SHIFT is "-" for opcodes that don't carry one),
// followed by "OUTPUT,NAME,LABEL" lines binding the 8 logical outputs
// (spec.md §6 functions.txt).
func WriteFunctionsFile(path string, prog *word.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("circio: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, op := range prog.Ops {
		shift := "-"
		if word.HasShift(op.Code) {
			shift = strconv.Itoa(op.Shift)
		}
		fields := append([]string{op.Label, op.Code.String(), shift}, op.Operands...)
		if _, err := fmt.Fprintln(w, strings.Join(fields, ",")); err != nil {
			return fmt.Errorf("circio: write %s: %w", path, err)
		}
	}
	for _, name := range []string{"H0", "H1", "H2", "H3", "H4", "H5", "H6", "H7"} {
		if label, ok := prog.Output[name]; ok {
			if _, err := fmt.Fprintf(w, "OUTPUT,%s,%s\n", name, label); err != nil {
				return fmt.Errorf("circio: write %s: %w", path, err)
			}
		}
	}
	return w.Flush()
}

var opcodeByName = func() map[string]word.OpCode {
	m := make(map[string]word.OpCode)
	all := []word.OpCode{
		word.Copy, word.Not, word.And, word.Or, word.Xor, word.Add, word.Rotr, word.Shr,
		word.Ch, word.Maj, word.Sigma0, word.Sigma1, word.SigmaLow0, word.SigmaLow1,
	}
	for _, op := range all {
		m[op.String()] = op
	}
	return m
}()

// ReadFunctionsFile parses a functions.txt into a *word.Program, replaying
// every Emit/BindOutput call in file order so the same duplicate-label,
// arity, and definition-before-use checks Generate relies on apply to a
// hand-edited or externally produced file too.
func ReadFunctionsFile(path string) (*word.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("circio: open %s: %w", path, err)
	}
	defer f.Close()

	prog := word.NewProgram()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if fields[0] == "OUTPUT" {
			if len(fields) != 3 {
				return nil, fmt.Errorf("circio: %s:%d: malformed OUTPUT line", path, lineNo)
			}
			if err := bindOutputSafe(prog, fields[1], fields[2]); err != nil {
				return nil, fmt.Errorf("circio: %s:%d: %w", path, lineNo, err)
			}
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("circio: %s:%d: expected at least 3 fields, got %d", path, lineNo, len(fields))
		}
		label, opName, shiftStr := fields[0], fields[1], fields[2]
		code, ok := opcodeByName[opName]
		if !ok {
			return nil, fmt.Errorf("circio: %s:%d: unknown opcode %q", path, lineNo, opName)
		}
		shift := 0
		if shiftStr != "-" {
			shift, err = strconv.Atoi(shiftStr)
			if err != nil {
				return nil, fmt.Errorf("circio: %s:%d: bad shift %q: %w", path, lineNo, shiftStr, err)
			}
		}
		operands := fields[3:]
		if err := emitSafe(prog, label, code, shift, operands...); err != nil {
			return nil, fmt.Errorf("circio: %s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("circio: scan %s: %w", path, err)
	}
	return prog, nil
}

// emitSafe and bindOutputSafe turn word.Program's panic-on-malformed-input
// contract into an error, since here the input is an externally produced
// file, not the trusted, generator-controlled call sites Emit/BindOutput
// are otherwise meant for.
func emitSafe(prog *word.Program, label string, code word.OpCode, shift int, operands ...string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	prog.Emit(label, code, shift, operands...)
	return nil
}

func bindOutputSafe(prog *word.Program, name, label string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	prog.BindOutput(name, label)
	return nil
}
