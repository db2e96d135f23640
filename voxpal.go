// Package voxpal provides compact, bit-packed storage for cubic grids of
// non-negative integer ids, the block and biome sections of a voxel world.
//
// A palette stores one id per cell of an N×N×N cube and switches between three
// encodings as its contents change:
//
//   - single: every cell holds the same id, no word array
//   - indirect: cells hold indices into a small table of distinct ids
//   - direct: cells hold the ids themselves at a fixed registry width
//
// Cells are packed into 64-bit words, floor(64/bits) cells per word starting at
// the least significant bit, in y, z, x order.
//
// # Basic Usage
//
// Creating and filling a block section:
//
//	import "github.com/arloliu/voxpal"
//
//	blocks := voxpal.NewBlockPalette()
//	blocks.FillRegion(stoneID, palette.Region{MaxX: 16, MaxY: 4, MaxZ: 16})
//	blocks.Set(3, 10, 7, oreID)
//
// Encoding a column of sections:
//
//	encoder, _ := voxpal.NewDefaultColumnEncoder(-4)
//	for _, s := range sections {
//	    encoder.AddSection(s.Blocks, s.Biomes)
//	}
//	data, _ := encoder.Finish()
//
// Decoding it again:
//
//	decoder, _ := voxpal.NewColumnDecoder(data)
//	col, _ := decoder.Decode()
//	for y, s := range col.All() {
//	    fmt.Println(y, s.Blocks.Mode())
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the palette and
// blob packages. For advanced usage and fine-grained control, use those
// packages directly.
package voxpal

import (
	"encoding/binary"

	"github.com/arloliu/voxpal/blob"
	"github.com/arloliu/voxpal/format"
	"github.com/arloliu/voxpal/internal/hash"
	"github.com/arloliu/voxpal/internal/pool"
	"github.com/arloliu/voxpal/palette"
)

// Section geometry.
const (
	// SectionSize is the edge length of a block section.
	SectionSize = palette.BlockDimension
	// BiomeSize is the edge length of a biome section.
	BiomeSize = palette.BiomeDimension
	// DefaultMinSection is the lowest section of a default overworld column.
	DefaultMinSection = -4
	// DefaultSectionCount is the number of sections of a default overworld column.
	DefaultSectionCount = 24
)

var defaultColumnOptions = []blob.ColumnEncoderOption{
	blob.WithLittleEndian(),
	blob.WithCompression(format.CompressionZstd),
}

// NewBlockPalette creates an empty 16³ block-state palette using the default
// 15 bit direct width.
func NewBlockPalette() *palette.Palette {
	return palette.NewBlocks()
}

// NewBiomePalette creates an empty 4³ biome palette for a registry of the given size.
//
// Parameters:
//   - registrySize: Number of registered biomes
//
// Returns:
//   - *palette.Palette: The created palette
//   - error: An error if registrySize needs more than 31 bits
func NewBiomePalette(registrySize int) (*palette.Palette, error) {
	return palette.NewBiomes(palette.BiomeDirectBits(registrySize))
}

// NewColumnEncoder creates a column encoder with custom options.
//
// Parameters:
//   - minSection: Y coordinate of the first section
//   - opts: Optional configuration functions (see blob.ColumnEncoderOption)
//
// Returns:
//   - *blob.ColumnEncoder: The created column encoder.
//   - error: An error if the configuration is invalid.
//
// Available options:
//   - blob.WithLittleEndian() / blob.WithBigEndian()
//   - blob.WithCompression(format.CompressionNone|Zstd|S2|LZ4|Snappy)
//   - blob.WithBlockDirectBits(bits)
//   - blob.WithBiomeDirectBits(bits) / blob.WithBiomeRegistrySize(n)
//
// Example:
//
//	encoder, err := voxpal.NewColumnEncoder(-4,
//	    blob.WithCompression(format.CompressionLZ4),
//	    blob.WithBiomeRegistrySize(64),
//	)
func NewColumnEncoder(minSection int32, opts ...blob.ColumnEncoderOption) (*blob.ColumnEncoder, error) {
	return blob.NewColumnEncoder(minSection, opts...)
}

// NewDefaultColumnEncoder creates a column encoder with recommended default settings:
// little-endian words and zstd payload compression.
func NewDefaultColumnEncoder(minSection int32) (*blob.ColumnEncoder, error) {
	return blob.NewColumnEncoder(minSection, defaultColumnOptions...)
}

// NewColumnDecoder creates a decoder for a column blob.
//
// The settings used for encoding (byte order, compression, direct widths) are
// read from the blob header.
func NewColumnDecoder(data []byte, opts ...blob.ColumnDecoderOption) (*blob.ColumnDecoder, error) {
	return blob.NewColumnDecoder(data, opts...)
}

// Fingerprint returns a 64-bit hash of the ids held by p.
//
// Palettes that are Equal share a fingerprint regardless of their encoding,
// which makes it usable as a deduplication key for section contents.
func Fingerprint(p *palette.Palette) uint64 {
	bb := pool.GetSectionBuffer()
	defer pool.PutSectionBuffer(bb)

	var dim [2]byte
	binary.LittleEndian.PutUint16(dim[:], uint16(p.Dimension())) //nolint: gosec
	bb.Grow(4 * p.MaxSize())
	p.GetAll(func(_, _, _, value int) {
		bb.B = binary.LittleEndian.AppendUint32(bb.B, uint32(value)) //nolint: gosec
	})

	return hash.ChecksumParts(dim[:], bb.B)
}
