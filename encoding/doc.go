// Package encoding implements the primitive wire types of an encoded palette.
//
// An encoded palette is a sequence of three primitive types:
//
//   - a single byte holding the bits per entry
//   - VarInts, the 32-bit LEB128 variant used by the network protocol, for
//     the single value, the table length and the table entries
//   - fixed-width 64-bit words holding the packed indices or raw ids
//
// VarInt Encoding:
//
// Each byte carries 7 payload bits, least significant group first; the high
// bit marks a continuation. A valid VarInt is at most 5 bytes long. Negative
// int32 values are encoded as their two's complement uint32 and therefore
// always take 5 bytes.
//
//	0      -> 0x00
//	127    -> 0x7F
//	128    -> 0x80 0x01
//	25565  -> 0xDD 0xC7 0x01
//
// Word Encoding:
//
// Words are written with the byte order of an endian.EndianEngine. The network
// form is big-endian; persisted columns may choose either order.
//
// SectionEncoder accumulates these primitives in a pooled buffer and
// SectionDecoder reads them back with bounds checking, so a truncated or
// malformed input yields an error wrapping errs.ErrTruncatedData or
// errs.ErrVarIntTooLong instead of a panic.
package encoding
