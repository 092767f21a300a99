// Package padgen builds a single SHA-256 message block: Merkle-Damgard
// padding for short inputs, and parsing raw bytes into the 16 big-endian
// 32-bit words the circuit takes as input (spec.md §2 "single 512-bit
// block" and §6 "generate-input").
package padgen

import (
	"encoding/binary"
	"fmt"
)

// MaxMessageBytes is the largest message that still pads into a single
// 512-bit block: 64 - 1 (0x80 marker) - 8 (length field) = 55 bytes.
const MaxMessageBytes = 55

// Pad appends the 0x80 marker, zero padding, and the 8-byte big-endian bit
// length to msg, returning exactly one 64-byte block. It rejects messages
// longer than MaxMessageBytes — multi-block padding is out of scope
// (spec.md Non-goals).
func Pad(msg []byte) ([64]byte, error) {
	var block [64]byte
	if len(msg) > MaxMessageBytes {
		return block, fmt.Errorf("padgen: message of %d bytes exceeds the %d-byte single-block limit", len(msg), MaxMessageBytes)
	}
	n := copy(block[:], msg)
	block[n] = 0x80
	binary.BigEndian.PutUint64(block[56:], uint64(len(msg))*8)
	return block, nil
}

// Words splits a 64-byte block into the 16 big-endian 32-bit input words
// W0..W15.
func Words(block [64]byte) [16]uint32 {
	var words [16]uint32
	for i := 0; i < 16; i++ {
		words[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	return words
}
