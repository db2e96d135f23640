package blob

import (
	"fmt"

	"github.com/arloliu/voxpal/compress"
	"github.com/arloliu/voxpal/endian"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/format"
	"github.com/arloliu/voxpal/internal/options"
	"github.com/arloliu/voxpal/palette"
	"github.com/arloliu/voxpal/section"
)

// initialIndexCapacity covers the 24 sections of a default overworld column.
const initialIndexCapacity = 24

// ColumnEncoderConfig handles the column encoder configuration.
type ColumnEncoderConfig struct {
	header       *section.ColumnHeader
	indexEntries []section.IndexEntry
	codec        compress.Codec
	engine       endian.EndianEngine
}

// NewColumnEncoderConfig creates a configuration for a column starting at minSection.
func NewColumnEncoderConfig(minSection int32) *ColumnEncoderConfig {
	header := section.NewColumnHeader(minSection)

	return &ColumnEncoderConfig{
		header:       header,
		indexEntries: make([]section.IndexEntry, 0, initialIndexCapacity),
		engine:       header.Flag.GetEndianEngine(),
	}
}

// setCompression sets the payload compression type.
func (c *ColumnEncoderConfig) setCompression(comp format.CompressionType) error {
	if !comp.Valid() {
		return fmt.Errorf("invalid payload compression: %v", comp)
	}
	c.header.Flag.SetCompression(comp)

	return nil
}

// setEndianess sets the endianness option.
func (c *ColumnEncoderConfig) setEndianess(endiness endianness) {
	switch endiness {
	case bigEndianOpt:
		c.header.Flag.WithBigEndian()
	default:
		c.header.Flag.WithLittleEndian()
	}

	// Update the engine after changing endianness
	c.engine = c.header.Flag.GetEndianEngine()
}

func (c *ColumnEncoderConfig) setBlockDirectBits(bits int) error {
	if bits <= palette.BlockMaxBits || bits > palette.MaxDirectBits {
		return fmt.Errorf("%w: block direct bits %d", errs.ErrInvalidBitsRange, bits)
	}
	c.header.BlockDirectBits = uint8(bits) //nolint: gosec

	return nil
}

func (c *ColumnEncoderConfig) setBiomeDirectBits(bits int) error {
	if bits <= palette.BiomeMaxBits || bits > palette.MaxDirectBits {
		return fmt.Errorf("%w: biome direct bits %d", errs.ErrInvalidBitsRange, bits)
	}
	c.header.BiomeDirectBits = uint8(bits) //nolint: gosec

	return nil
}

// ColumnHeader returns the header being built.
func (c *ColumnEncoderConfig) ColumnHeader() *section.ColumnHeader {
	return c.header
}

// SectionCount returns the number of sections added so far.
func (c *ColumnEncoderConfig) SectionCount() int {
	return len(c.indexEntries)
}

// Codec returns the payload compression codec.
func (c *ColumnEncoderConfig) Codec() compress.Codec {
	return c.codec
}

// setCodec resolves the compression codec recorded in the header.
func (c *ColumnEncoderConfig) setCodec() error {
	codec, err := compress.CreateCodec(c.header.Flag.Compression(), "payload")
	if err != nil {
		return err
	}
	c.codec = codec

	return nil
}

// endianness represents the byte order configuration option.
type endianness uint8

const (
	littleEndianOpt endianness = iota
	bigEndianOpt    endianness = iota
)

// ColumnEncoderOption represents a functional option for configuring the ColumnEncoderConfig.
type ColumnEncoderOption = options.Option[*ColumnEncoderConfig]

// WithLittleEndian sets the encoder to use little-endian byte order.
// It is the default option.
func WithLittleEndian() ColumnEncoderOption {
	return options.NoError(func(c *ColumnEncoderConfig) {
		c.setEndianess(littleEndianOpt)
	})
}

// WithBigEndian sets the encoder to use big-endian byte order, the order of
// the network palette form.
func WithBigEndian() ColumnEncoderOption {
	return options.NoError(func(c *ColumnEncoderConfig) {
		c.setEndianess(bigEndianOpt)
	})
}

// WithCompression sets the payload compression. The default is zstd.
func WithCompression(comp format.CompressionType) ColumnEncoderOption {
	return options.New(func(c *ColumnEncoderConfig) error {
		return c.setCompression(comp)
	})
}

// WithBlockDirectBits sets the direct width block palettes are encoded with.
// The default is palette.BlockDirectBits.
func WithBlockDirectBits(bits int) ColumnEncoderOption {
	return options.New(func(c *ColumnEncoderConfig) error {
		return c.setBlockDirectBits(bits)
	})
}

// WithBiomeDirectBits sets the direct width biome palettes are encoded with.
func WithBiomeDirectBits(bits int) ColumnEncoderOption {
	return options.New(func(c *ColumnEncoderConfig) error {
		return c.setBiomeDirectBits(bits)
	})
}

// WithBiomeRegistrySize derives the biome direct width from the number of
// registered biomes, see palette.BiomeDirectBits.
func WithBiomeRegistrySize(size int) ColumnEncoderOption {
	return options.New(func(c *ColumnEncoderConfig) error {
		if size <= 0 {
			return fmt.Errorf("%w: biome registry size %d", errs.ErrInvalidBitsRange, size)
		}

		return c.setBiomeDirectBits(palette.BiomeDirectBits(size))
	})
}
