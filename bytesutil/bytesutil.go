// Package bytesutil packs and unpacks the little-endian multi-byte
// operands chunk uses for wide constant indices.
//
// encoding/binary.LittleEndian already does this; we wrap it rather
// than reinvent it, the same way gmofishsauce/y4's sim.Report packs
// its log records with binary.LittleEndian.PutUint64 directly.
package bytesutil

import "encoding/binary"

// PutUint16 appends the little-endian (LSB-first) encoding of v to dst
// and returns the grown slice.
func PutUint16(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

// Uint16 decodes a little-endian uint16 starting at b[0].
func Uint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}
