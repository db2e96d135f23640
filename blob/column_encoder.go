package blob

import (
	"fmt"

	"github.com/arloliu/voxpal/encoding"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/internal/hash"
	"github.com/arloliu/voxpal/internal/options"
	"github.com/arloliu/voxpal/palette"
	"github.com/arloliu/voxpal/section"
)

// ColumnEncoder encodes a vertical stack of sections into the column blob format.
//
// Sections are added bottom-up starting at the encoder's min section. Each
// section is a block palette followed by a biome palette, both written in the
// palette wire format with the column's byte order.
//
// Note: The ColumnEncoder is NOT thread-safe. Each encoder instance should be used by a single goroutine at a time.
//
// Note: The ColumnEncoder is NOT reusable. After calling Finish, a new encoder must be created for further encoding.
type ColumnEncoder struct {
	*ColumnEncoderConfig

	blockCodec *palette.Codec
	biomeCodec *palette.Codec
	payload    *encoding.SectionEncoder
	finished   bool
}

// NewColumnEncoder creates a new ColumnEncoder for a column whose lowest section is at minSection.
//
// Parameters:
//   - minSection: Y coordinate of the first section added
//   - opts: Optional encoding configuration (endianness, compression, direct widths)
//
// Returns:
//   - *ColumnEncoder: New encoder instance
//   - error: Invalid option error
func NewColumnEncoder(minSection int32, opts ...ColumnEncoderOption) (*ColumnEncoder, error) {
	config := NewColumnEncoderConfig(minSection)
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}
	if err := config.setCodec(); err != nil {
		return nil, err
	}

	blockCodec, biomeCodec, err := paletteCodecs(config.header)
	if err != nil {
		return nil, err
	}

	return &ColumnEncoder{
		ColumnEncoderConfig: config,
		blockCodec:          blockCodec,
		biomeCodec:          biomeCodec,
		payload:             encoding.NewColumnSectionEncoder(config.engine),
	}, nil
}

// paletteCodecs returns the block and biome codecs described by a header.
func paletteCodecs(h *section.ColumnHeader) (*palette.Codec, *palette.Codec, error) {
	byteOrder := palette.WithByteOrder(h.Flag.GetEndianEngine())

	blockCodec, err := palette.NewCodec(palette.BlockDimension, palette.BlockMinBits, palette.BlockMaxBits,
		int(h.BlockDirectBits), byteOrder)
	if err != nil {
		return nil, nil, err
	}
	biomeCodec, err := palette.BiomeCodec(int(h.BiomeDirectBits), byteOrder)
	if err != nil {
		return nil, nil, err
	}

	return blockCodec, biomeCodec, nil
}

// AddSection appends the next section.
//
// Parameters:
//   - blocks: 16³ block-state palette
//   - biomes: 4³ biome palette
//
// Returns:
//   - error: errs.ErrTooManySections, or the codec error for a palette that does
//     not match the column configuration. Nothing is added on error.
func (e *ColumnEncoder) AddSection(blocks, biomes *palette.Palette) error {
	if e.finished {
		return fmt.Errorf("add section: encoder already finished")
	}
	if len(e.indexEntries) >= section.MaxSectionCount {
		return fmt.Errorf("%w: limit is %d", errs.ErrTooManySections, section.MaxSectionCount)
	}

	start := e.payload.Size()
	if err := e.blockCodec.Write(e.payload, blocks); err != nil {
		return fmt.Errorf("section %d blocks: %w", e.nextY(), err)
	}
	biomeStart := e.payload.Size()
	if err := e.biomeCodec.Write(e.payload, biomes); err != nil {
		e.payload.Truncate(start)
		return fmt.Errorf("section %d biomes: %w", e.nextY(), err)
	}

	e.indexEntries = append(e.indexEntries, section.NewIndexEntry(start, biomeStart))

	return nil
}

func (e *ColumnEncoder) nextY() int32 {
	return e.header.MinSection + int32(len(e.indexEntries)) //nolint: gosec
}

// Finish compresses the payload and returns the encoded column blob.
//
// Returns:
//   - []byte: Encoded blob, owned by the caller
//   - error: errs.ErrNoSectionsAdded, or a compression error
func (e *ColumnEncoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, fmt.Errorf("finish: encoder already finished")
	}
	e.finished = true
	// Finish the payload encoder regardless of error to release its buffer
	defer e.payload.Finish()

	if len(e.indexEntries) == 0 {
		return nil, errs.ErrNoSectionsAdded
	}

	raw := e.payload.Bytes()
	payload, err := e.codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compress section payload: %w", err)
	}

	// Compute the final fields on a copy so the configured header stays untouched
	finalHeader := *e.header
	finalHeader.SectionCount = uint32(len(e.indexEntries)) //nolint: gosec
	indexEntriesSize := section.IndexEntrySize * len(e.indexEntries)
	finalHeader.PayloadOffset = section.IndexOffsetOffset + uint32(indexEntriesSize) //nolint: gosec
	finalHeader.PayloadSize = uint32(len(raw))                                       //nolint: gosec
	finalHeader.Checksum = hash.Checksum(payload)

	blobSize := section.HeaderSize + indexEntriesSize + len(payload)
	out := make([]byte, blobSize)
	offset := copy(out, finalHeader.Bytes())
	for _, entry := range e.indexEntries {
		offset = entry.WriteToSlice(out, offset, e.engine)
	}
	copy(out[offset:], payload)

	return out, nil
}
