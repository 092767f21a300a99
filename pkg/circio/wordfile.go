// Package circio reads and writes the six line-oriented text formats
// spec.md §6 defines: input.txt/constants.txt (word-level hex),
// input-bits.txt/constants-bits.txt (bit-level 0/1/X), functions.txt
// (word-level circuit), and nands.txt (bit-level circuit). Every format is
// comma-separated and newline-terminated, parsed by hand the way the
// Bristol-fashion circuit reader in the pack hand-tokenizes with
// bufio.Scanner rather than reaching for encoding/csv — these formats are
// simpler than RFC4180 (no quoting, fixed field counts per line) and a
// full CSV reader would be solving a problem this format doesn't have.
package circio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oisee/nandforge/pkg/bitsig"
)

// WordEntry is one line of a word-level hex file: a label (e.g. "W0",
// "K17") and its 32-bit value, expanded to individual bits so that a
// wholly unknown byte ("XX") round-trips losslessly. A byte with only some
// bits unknown is written as "XX" and reads back as wholly unknown.
type WordEntry struct {
	Label string
	Bits  [32]bitsig.Bit
}

// ReadWordFile parses a word-level hex file: lines of "LABEL,HHHHHHHH"
// where each HH pair is either a hex byte or the literal "XX" for a wholly
// unknown byte, most-significant byte first.
func ReadWordFile(path string) ([]WordEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("circio: open %s: %w", path, err)
	}
	defer f.Close()

	var entries []WordEntry
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
		label := fields[0]
		hex := fields[1]
		if len(hex) != 8 {
			return nil, fmt.Errorf("circio: %s:%d: %q is not an 8-hex-char word", path, lineNo, hex)
		}
		var bits [32]bitsig.Bit
		for i := 0; i < 4; i++ {
			byteStr := hex[i*2 : i*2+2]
			base := (3 - i) * 8
			if strings.EqualFold(byteStr, "XX") {
				for k := 0; k < 8; k++ {
					bits[base+k] = bitsig.Unknown
				}
				continue
			}
			v, err := strconv.ParseUint(byteStr, 16, 8)
			if err != nil {
				return nil, fmt.Errorf("circio: %s:%d: bad byte %q: %w", path, lineNo, byteStr, err)
			}
			for k := 0; k < 8; k++ {
				if (v>>uint(k))&1 == 1 {
					bits[base+k] = bitsig.One
				} else {
					bits[base+k] = bitsig.Zero
				}
			}
		}
		entries = append(entries, WordEntry{Label: label, Bits: bits})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("circio: scan %s: %w", path, err)
	}
	return entries, nil
}

// WriteWordFile writes entries back out in the same word-level hex format;
// a byte with any unknown bit is written as "XX" (spec.md treats
// word-level unknown at byte granularity — finer-grained unknown bits are
// only representable in the bit-level files).
func WriteWordFile(path string, entries []WordEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("circio: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		var sb strings.Builder
		for i := 0; i < 4; i++ {
			base := (3 - i) * 8
			unknown := false
			var v byte
			for k := 0; k < 8; k++ {
				switch e.Bits[base+k] {
				case bitsig.One:
					v |= 1 << uint(k)
				case bitsig.Unknown:
					unknown = true
				}
			}
			if unknown {
				sb.WriteString("XX")
			} else {
				fmt.Fprintf(&sb, "%02x", v)
			}
		}
		if _, err := fmt.Fprintf(w, "%s,%s\n", e.Label, sb.String()); err != nil {
			return fmt.Errorf("circio: write %s: %w", path, err)
		}
	}
	return w.Flush()
}
