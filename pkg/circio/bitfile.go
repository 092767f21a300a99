package circio

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/oisee/nandforge/pkg/bitsig"
)

// ReadBitFile parses a bit-level file: lines of "LABEL,0|1|X", one per
// individual bit signal (spec.md §6 input-bits.txt / constants-bits.txt).
func ReadBitFile(path string) (map[string]bitsig.Bit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("circio: open %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]bitsig.Bit)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("circio: %s:%d: expected 2 fields, got %d", path, lineNo, len(fields))
		}
		bit, err := bitsig.ParseBit(fields[1])
		if err != nil {
			return nil, fmt.Errorf("circio: %s:%d: %w", path, lineNo, err)
		}
		out[fields[0]] = bit
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("circio: scan %s: %w", path, err)
	}
	return out, nil
}

// WriteBitFile writes bits in label-sorted order, one "LABEL,value" line
// each.
func WriteBitFile(path string, bits map[string]bitsig.Bit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("circio: create %s: %w", path, err)
	}
	defer f.Close()

	labels := make([]string, 0, len(bits))
	for l := range bits {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	w := bufio.NewWriter(f)
	for _, l := range labels {
		if _, err := fmt.Fprintf(w, "%s,%s\n", l, bits[l]); err != nil {
			return fmt.Errorf("circio: write %s: %w", path, err)
		}
	}
	return w.Flush()
}

// RequireConstants validates that a parsed constants-bits.txt carries the
// two mandatory Boolean constants with their fixed values (spec.md §3: "a
// constants file must also define CONST-0,0 and CONST-1,1").
func RequireConstants(bits map[string]bitsig.Bit) error {
	v0, ok := bits[bitsig.Const0]
	if !ok || v0 != bitsig.Zero {
		return fmt.Errorf("circio: constants file must define %s,0", bitsig.Const0)
	}
	v1, ok := bits[bitsig.Const1]
	if !ok || v1 != bitsig.One {
		return fmt.Errorf("circio: constants file must define %s,1", bitsig.Const1)
	}
	return nil
}
