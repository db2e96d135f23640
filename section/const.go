package section

const (
	// Bit masks
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits (bits 0, 2 and 3), must be zero
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicColumnV1Opt is the version 1 magic number for column blobs.
	MagicColumnV1Opt = 0xEC10
)

// offset and section sizes in the column blob
const (
	HeaderSize        = 32         // fixed header size in bytes
	IndexEntrySize    = 8          // fixed index entry size in bytes
	IndexOffsetOffset = HeaderSize // byte offset where the index starts

	// MaxSectionCount bounds the number of sections per column. It covers
	// any world height addressable by an int32 section y with room to spare.
	MaxSectionCount = 4096
)
