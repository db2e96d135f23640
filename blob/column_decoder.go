package blob

import (
	"fmt"

	"github.com/arloliu/voxpal/compress"
	"github.com/arloliu/voxpal/endian"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/internal/hash"
	"github.com/arloliu/voxpal/internal/options"
	"github.com/arloliu/voxpal/palette"
	"github.com/arloliu/voxpal/section"
)

// ColumnDecoder decodes column blobs produced by ColumnEncoder.
//
// The header is parsed when the decoder is created. The payload is verified
// and decompressed on first use and kept for later section lookups.
//
// Note: The ColumnDecoder is NOT thread-safe.
type ColumnDecoder struct {
	data           []byte
	header         section.ColumnHeader
	engine         endian.EndianEngine
	blockCodec     *palette.Codec
	biomeCodec     *palette.Codec
	verifyChecksum bool

	payload []byte
	entries []section.IndexEntry
}

// ColumnDecoderOption configures a ColumnDecoder.
type ColumnDecoderOption = options.Option[*ColumnDecoder]

// WithChecksumVerification enables or disables payload checksum verification.
// Verification is enabled by default.
func WithChecksumVerification(enabled bool) ColumnDecoderOption {
	return options.NoError(func(d *ColumnDecoder) {
		d.verifyChecksum = enabled
	})
}

// NewColumnDecoder creates a decoder for the given column blob.
//
// Parameters:
//   - data: Encoded column blob. The decoder keeps a reference to it.
//   - opts: Optional decoder configuration
//
// Returns:
//   - *ColumnDecoder: Decoder with a parsed header
//   - error: Header parsing error, or errs.ErrInvalidPayloadOffset if data ends
//     before the payload
func NewColumnDecoder(data []byte, opts ...ColumnDecoderOption) (*ColumnDecoder, error) {
	header, err := section.ParseColumnHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) < int(header.PayloadOffset) {
		return nil, fmt.Errorf("%w: blob is %d bytes, payload starts at %d",
			errs.ErrInvalidPayloadOffset, len(data), header.PayloadOffset)
	}

	blockCodec, biomeCodec, err := paletteCodecs(&header)
	if err != nil {
		return nil, err
	}

	d := &ColumnDecoder{
		data:           data,
		header:         header,
		engine:         header.Flag.GetEndianEngine(),
		blockCodec:     blockCodec,
		biomeCodec:     biomeCodec,
		verifyChecksum: true,
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

// Header returns the parsed column header.
func (d *ColumnDecoder) Header() section.ColumnHeader {
	return d.header
}

// SectionCount returns the number of sections in the column.
func (d *ColumnDecoder) SectionCount() int {
	return int(d.header.SectionCount)
}

// Decode decodes every section of the column.
//
// Returns:
//   - *Column: The decoded column
//   - error: Checksum, decompression, index or palette decoding error
func (d *ColumnDecoder) Decode() (*Column, error) {
	if err := d.load(); err != nil {
		return nil, err
	}

	sections := make([]Section, len(d.entries))
	for i := range d.entries {
		s, err := d.decodeSection(i)
		if err != nil {
			return nil, err
		}
		sections[i] = s
	}

	return &Column{minSection: d.header.MinSection, sections: sections}, nil
}

// DecodeSection decodes the single section at y.
//
// Returns:
//   - Section: The decoded section
//   - error: errs.ErrSectionOutOfRange if y is outside the column, or a decoding error
func (d *ColumnDecoder) DecodeSection(y int32) (Section, error) {
	if y < d.header.MinSection || y > d.header.MaxSection() {
		return Section{}, fmt.Errorf("%w: %d not in [%d, %d]",
			errs.ErrSectionOutOfRange, y, d.header.MinSection, d.header.MaxSection())
	}
	if err := d.load(); err != nil {
		return Section{}, err
	}

	return d.decodeSection(int(y - d.header.MinSection))
}

// load verifies and decompresses the payload and parses the index.
func (d *ColumnDecoder) load() error {
	if d.payload != nil {
		return nil
	}

	stored := d.data[d.header.PayloadOffset:]
	if d.verifyChecksum {
		if sum := hash.Checksum(stored); sum != d.header.Checksum {
			return fmt.Errorf("%w: got %016x, want %016x", errs.ErrChecksumMismatch, sum, d.header.Checksum)
		}
	}

	codec, err := compress.GetCodec(d.header.Flag.Compression())
	if err != nil {
		return err
	}
	payload, err := codec.Decompress(stored)
	if err != nil {
		return fmt.Errorf("failed to decompress section payload: %w", err)
	}
	if len(payload) != int(d.header.PayloadSize) {
		return fmt.Errorf("%w: payload is %d bytes, header says %d",
			errs.ErrInvalidPayloadOffset, len(payload), d.header.PayloadSize)
	}

	entries, err := section.ParseIndex(d.data[section.IndexOffsetOffset:d.header.PayloadOffset],
		int(d.header.SectionCount), len(payload), d.engine)
	if err != nil {
		return err
	}

	d.payload = payload
	d.entries = entries

	return nil
}

func (d *ColumnDecoder) decodeSection(i int) (Section, error) {
	entry := d.entries[i]
	y := d.header.MinSection + int32(i) //nolint: gosec

	blocks, err := decodeExact(d.blockCodec, d.payload[entry.BlockOffset:entry.BiomeOffset])
	if err != nil {
		return Section{}, fmt.Errorf("section %d blocks: %w", y, err)
	}
	biomeEnd := entry.BiomeOffset + entry.BiomeLength
	biomes, err := decodeExact(d.biomeCodec, d.payload[entry.BiomeOffset:biomeEnd])
	if err != nil {
		return Section{}, fmt.Errorf("section %d biomes: %w", y, err)
	}

	return Section{Y: y, Blocks: blocks, Biomes: biomes}, nil
}

// decodeExact decodes one palette that must span all of data.
func decodeExact(codec *palette.Codec, data []byte) (*palette.Palette, error) {
	p, n, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: palette is %d bytes, index reserves %d", errs.ErrInvalidPayloadOffset, n, len(data))
	}

	return p, nil
}

// DecodeColumn decodes a column blob in one call.
func DecodeColumn(data []byte, opts ...ColumnDecoderOption) (*Column, error) {
	d, err := NewColumnDecoder(data, opts...)
	if err != nil {
		return nil, err
	}

	return d.Decode()
}
