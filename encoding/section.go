package encoding

import (
	"fmt"

	"github.com/arloliu/voxpal/endian"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/internal/pool"
)

// SectionEncoder accumulates encoded palettes in a pooled buffer.
//
// Several palettes may be written back to back; Size reports the current
// offset so callers can index them. The encoder is not safe for concurrent use.
type SectionEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	column bool
}

// NewSectionEncoder creates an encoder sized for a single palette.
//
// Parameters:
//   - engine: Byte order of the packed words
//
// Returns:
//   - *SectionEncoder: A new encoder with a buffer from the section pool
func NewSectionEncoder(engine endian.EndianEngine) *SectionEncoder {
	return &SectionEncoder{buf: pool.GetSectionBuffer(), engine: engine}
}

// NewColumnSectionEncoder creates an encoder sized for every palette of a column.
func NewColumnSectionEncoder(engine endian.EndianEngine) *SectionEncoder {
	return &SectionEncoder{buf: pool.GetColumnBuffer(), engine: engine, column: true}
}

// Engine returns the byte order used for words.
func (e *SectionEncoder) Engine() endian.EndianEngine {
	return e.engine
}

// WriteByte appends a single byte. It never fails.
func (e *SectionEncoder) WriteByte(b byte) error {
	e.mustBuffer()
	e.buf.B = append(e.buf.B, b)

	return nil
}

// WriteVarInt appends v as a VarInt.
func (e *SectionEncoder) WriteVarInt(v int32) {
	e.mustBuffer()
	e.buf.Grow(MaxVarIntLen)
	e.buf.B = AppendVarInt(e.buf.B, v)
}

// WriteWords appends words in the encoder's byte order.
func (e *SectionEncoder) WriteWords(words []uint64) {
	e.mustBuffer()
	e.buf.Grow(len(words) * 8)
	for _, w := range words {
		e.buf.B = e.engine.AppendUint64(e.buf.B, w)
	}
}

// Bytes returns the encoded bytes. The slice is valid until the next write,
// Reset or Finish.
func (e *SectionEncoder) Bytes() []byte {
	e.mustBuffer()
	return e.buf.Bytes()
}

// Size returns the number of bytes written.
func (e *SectionEncoder) Size() int {
	e.mustBuffer()
	return e.buf.Len()
}

// Truncate discards everything written after the first n bytes.
func (e *SectionEncoder) Truncate(n int) {
	e.mustBuffer()
	e.buf.B = e.buf.B[:n]
}

// Reset discards all written bytes.
func (e *SectionEncoder) Reset() {
	e.mustBuffer()
	e.buf.Reset()
}

// Finish returns the buffer to its pool. The encoder is unusable afterwards.
func (e *SectionEncoder) Finish() {
	if e.buf == nil {
		return
	}
	if e.column {
		pool.PutColumnBuffer(e.buf)
	} else {
		pool.PutSectionBuffer(e.buf)
	}
	e.buf = nil
}

func (e *SectionEncoder) mustBuffer() {
	if e.buf == nil {
		panic("encoder already finished - cannot use after Finish()")
	}
}

// SectionDecoder reads the primitives written by SectionEncoder.
//
// Every read checks the remaining length first; on error the cursor does not move.
type SectionDecoder struct {
	data   []byte
	off    int
	engine endian.EndianEngine
}

// NewSectionDecoder creates a decoder reading data from the start.
func NewSectionDecoder(data []byte, engine endian.EndianEngine) *SectionDecoder {
	return &SectionDecoder{data: data, engine: engine}
}

// Offset returns the number of bytes consumed so far.
func (d *SectionDecoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes.
func (d *SectionDecoder) Remaining() int {
	return len(d.data) - d.off
}

// ReadByte reads a single byte.
func (d *SectionDecoder) ReadByte() (byte, error) {
	if d.off >= len(d.data) {
		return 0, fmt.Errorf("%w: missing byte at offset %d", errs.ErrTruncatedData, d.off)
	}
	b := d.data[d.off]
	d.off++

	return b, nil
}

// ReadVarInt reads a VarInt.
func (d *SectionDecoder) ReadVarInt() (int32, error) {
	v, n, err := DecodeVarInt(d.data[d.off:])
	if err != nil {
		return 0, fmt.Errorf("varint at offset %d: %w", d.off, err)
	}
	d.off += n

	return v, nil
}

// ReadWords fills dst with words.
func (d *SectionDecoder) ReadWords(dst []uint64) error {
	need := len(dst) * 8
	if d.Remaining() < need {
		return fmt.Errorf("%w: %d words need %d bytes, %d remaining",
			errs.ErrTruncatedData, len(dst), need, d.Remaining())
	}
	for i := range dst {
		dst[i] = d.engine.Uint64(d.data[d.off:])
		d.off += 8
	}

	return nil
}
