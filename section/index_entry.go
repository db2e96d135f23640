package section

import (
	"github.com/arloliu/voxpal/endian"
	"github.com/arloliu/voxpal/errs"
)

// IndexEntry locates one section inside the uncompressed column payload.
// It is a fixed size of 8 bytes.
//
// A section is a block palette immediately followed by a biome palette:
//
//	Section 0: BlockOffset=0,    BiomeOffset=2050
//	Section 1: BlockOffset=2052, BiomeOffset=2054
//	Decoded lengths: Blocks=[2050, 2], Biomes=[2, 2]
type IndexEntry struct {
	// BlockOffset is the absolute offset of the block palette from the payload start.
	//
	// Offset: 0, Size: 4 bytes
	BlockOffset int

	// BiomeOffset is the absolute offset of the biome palette from the payload start.
	//
	// Offset: 4, Size: 4 bytes
	BiomeOffset int

	// BlockLength is the byte length of the encoded block palette.
	//
	// This field is not stored on disk. The decoder computes it from the next offset.
	BlockLength int

	// BiomeLength is the byte length of the encoded biome palette.
	//
	// This field is not stored on disk. The decoder computes it from the next
	// section's BlockOffset, or from the payload size for the last section.
	BiomeLength int
}

// NewIndexEntry creates an entry for a section whose palettes start at the given offsets.
func NewIndexEntry(blockOffset, biomeOffset int) IndexEntry {
	return IndexEntry{
		BlockOffset: blockOffset,
		BiomeOffset: biomeOffset,
		BlockLength: biomeOffset - blockOffset,
	}
}

// Bytes returns the index entry as a byte slice using the specified endian engine.
func (e *IndexEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [IndexEntrySize]byte
	e.WriteToSlice(b[:], 0, engine)

	return b[:]
}

// WriteToSlice writes to a pre-allocated slice and returns the next position.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have space for 8 bytes at offset)
//   - offset: Starting position in data slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + 8)
func (e *IndexEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], uint32(e.BlockOffset))   //nolint: gosec
	engine.PutUint32(data[offset+4:offset+8], uint32(e.BiomeOffset)) //nolint: gosec

	return offset + IndexEntrySize
}

// ParseIndexEntry parses an IndexEntry from a byte slice. Lengths are left zero.
//
// Returns:
//   - IndexEntry: Parsed index entry
//   - error: ErrInvalidIndexEntrySize if data is too short
func ParseIndexEntry(data []byte, engine endian.EndianEngine) (IndexEntry, error) {
	if len(data) < IndexEntrySize {
		return IndexEntry{}, errs.ErrInvalidIndexEntrySize
	}

	return IndexEntry{
		BlockOffset: int(engine.Uint32(data[0:4])),
		BiomeOffset: int(engine.Uint32(data[4:8])),
	}, nil
}

// ParseIndex parses count consecutive entries and derives their lengths.
//
// Offsets must be non-decreasing, each biome palette must start after its
// block palette, and the last section must end within payloadSize.
//
// Returns:
//   - []IndexEntry: Entries with lengths filled in
//   - error: ErrInvalidIndexEntrySize if data is too short, ErrInvalidPayloadOffset
//     for offsets that are out of order or out of bounds
func ParseIndex(data []byte, count, payloadSize int, engine endian.EndianEngine) ([]IndexEntry, error) {
	if len(data) < count*IndexEntrySize {
		return nil, errs.ErrInvalidIndexEntrySize
	}

	entries := make([]IndexEntry, count)
	for i := range entries {
		e, err := ParseIndexEntry(data[i*IndexEntrySize:], engine)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}

	for i := range entries {
		e := &entries[i]
		end := payloadSize
		if i+1 < count {
			end = entries[i+1].BlockOffset
		}
		if e.BlockOffset < 0 || e.BiomeOffset <= e.BlockOffset || end <= e.BiomeOffset || end > payloadSize {
			return nil, errs.ErrInvalidPayloadOffset
		}
		if i == 0 && e.BlockOffset != 0 {
			return nil, errs.ErrInvalidPayloadOffset
		}
		e.BlockLength = e.BiomeOffset - e.BlockOffset
		e.BiomeLength = end - e.BiomeOffset
	}

	return entries, nil
}
