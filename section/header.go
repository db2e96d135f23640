package section

import (
	"fmt"

	"github.com/arloliu/voxpal/endian"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/palette"
)

// ColumnHeader represents the fixed-size header at the start of a column blob.
type ColumnHeader struct {
	// Flag is a packed field for options, magic number and compression.
	Flag ColumnFlag // byte offset 0-2

	// BlockDirectBits is the direct width of the block palettes.
	BlockDirectBits uint8 // byte offset 3
	// BiomeDirectBits is the direct width of the biome palettes, derived from
	// the biome registry size when the column was written.
	BiomeDirectBits uint8 // byte offset 4

	// byte offset 5-7 reserved, written as zero

	// MinSection is the y coordinate of the lowest section.
	MinSection int32 // byte offset 8-11
	// SectionCount is the number of sections stored in the column.
	SectionCount uint32 // byte offset 12-15
	// PayloadOffset is the byte offset to the start of the section payload,
	// right after the index.
	PayloadOffset uint32 // byte offset 16-19
	// PayloadSize is the byte length of the uncompressed section payload.
	PayloadSize uint32 // byte offset 20-23
	// Checksum is the xxHash64 of the stored, possibly compressed, payload.
	Checksum uint64 // byte offset 24-31
}

// NewColumnHeader creates a header for a column starting at minSection.
// The section count, payload size and checksum are set when the encoder finishes.
func NewColumnHeader(minSection int32) *ColumnHeader {
	return &ColumnHeader{
		Flag:            NewColumnFlag(),
		BlockDirectBits: palette.BlockDirectBits,
		BiomeDirectBits: palette.BiomeMaxBits + 1,
		MinSection:      minSection,
		PayloadOffset:   IndexOffsetOffset,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 32 bytes, flag or layout validation errors
func (h *ColumnHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// The options word is always little-endian; it carries the endianness bit itself.
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.CompressionType = data[2]
	h.BlockDirectBits = data[3]
	h.BiomeDirectBits = data[4]

	if err := h.Flag.Validate(); err != nil {
		return err
	}
	if data[5] != 0 || data[6] != 0 || data[7] != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	engine := h.Flag.GetEndianEngine()
	h.MinSection = int32(engine.Uint32(data[8:12])) //nolint: gosec
	h.SectionCount = engine.Uint32(data[12:16])
	h.PayloadOffset = engine.Uint32(data[16:20])
	h.PayloadSize = engine.Uint32(data[20:24])
	h.Checksum = engine.Uint64(data[24:32])

	return h.Validate()
}

// Validate checks the direct widths and the index layout.
func (h *ColumnHeader) Validate() error {
	if err := h.Flag.Validate(); err != nil {
		return err
	}
	if h.BlockDirectBits <= palette.BlockMaxBits || h.BlockDirectBits > palette.MaxDirectBits {
		return fmt.Errorf("%w: block direct bits %d", errs.ErrInvalidHeaderFlags, h.BlockDirectBits)
	}
	if h.BiomeDirectBits <= palette.BiomeMaxBits || h.BiomeDirectBits > palette.MaxDirectBits {
		return fmt.Errorf("%w: biome direct bits %d", errs.ErrInvalidHeaderFlags, h.BiomeDirectBits)
	}
	if h.SectionCount == 0 {
		return errs.ErrNoSectionsAdded
	}
	if h.SectionCount > MaxSectionCount {
		return fmt.Errorf("%w: %d", errs.ErrTooManySections, h.SectionCount)
	}
	if want := IndexOffsetOffset + h.SectionCount*IndexEntrySize; h.PayloadOffset != want {
		return fmt.Errorf("%w: %d, index ends at %d", errs.ErrInvalidPayloadOffset, h.PayloadOffset, want)
	}

	return nil
}

// Bytes serializes the ColumnHeader into a byte slice.
func (h *ColumnHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	endian.GetLittleEndianEngine().PutUint16(b[0:2], h.Flag.Options)
	b[2] = h.Flag.CompressionType
	b[3] = h.BlockDirectBits
	b[4] = h.BiomeDirectBits

	engine := h.Flag.GetEndianEngine()
	engine.PutUint32(b[8:12], uint32(h.MinSection)) //nolint: gosec
	engine.PutUint32(b[12:16], h.SectionCount)
	engine.PutUint32(b[16:20], h.PayloadOffset)
	engine.PutUint32(b[20:24], h.PayloadSize)
	engine.PutUint64(b[24:32], h.Checksum)

	return b
}

// MaxSection returns the y coordinate of the highest section.
func (h *ColumnHeader) MaxSection() int32 {
	return h.MinSection + int32(h.SectionCount) - 1 //nolint: gosec
}

// ParseColumnHeader parses a ColumnHeader from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 32 bytes)
//
// Returns:
//   - ColumnHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize or validation errors
func ParseColumnHeader(data []byte) (ColumnHeader, error) {
	if len(data) < HeaderSize {
		return ColumnHeader{}, errs.ErrInvalidHeaderSize
	}

	h := ColumnHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return ColumnHeader{}, err
	}

	return h, nil
}
