package encoding

import (
	"fmt"

	"github.com/arloliu/voxpal/errs"
)

// MaxVarIntLen is the maximum length of an encoded VarInt.
const MaxVarIntLen = 5

// AppendVarInt appends the VarInt encoding of v to dst.
func AppendVarInt(dst []byte, v int32) []byte {
	u := uint32(v) //nolint:gosec
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}

	return append(dst, byte(u))
}

// VarIntLen returns the number of bytes AppendVarInt writes for v.
func VarIntLen(v int32) int {
	u := uint32(v) //nolint:gosec
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}

	return n
}

// DecodeVarInt decodes a VarInt from the start of data.
//
// Returns:
//   - int32: The decoded value
//   - int: Number of bytes consumed
//   - error: errs.ErrTruncatedData if data ends mid-value, errs.ErrVarIntTooLong
//     if the value spans more than MaxVarIntLen bytes
func DecodeVarInt(data []byte) (int32, int, error) {
	var result uint32
	for i := range MaxVarIntLen {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("%w: varint ends after %d bytes", errs.ErrTruncatedData, i)
		}
		b := data[i]
		result |= uint32(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return int32(result), i + 1, nil //nolint:gosec
		}
	}

	return 0, 0, errs.ErrVarIntTooLong
}
