// Package section defines the low-level binary structures and constants for column blobs.
//
// A column blob stores the palettes of a vertical stack of sections. This
// package handles the byte-level layout of its header, flag and index entries;
// the blob package builds and reads complete columns on top of it.
//
// # Blob Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                                │
//	│  - Flag (3 bytes): options, magic, compression          │
//	│  - Direct widths (2 bytes): block, biome                │
//	│  - MinSection, SectionCount                             │
//	│  - PayloadOffset, PayloadSize, Checksum                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Index (N × 8 bytes, fixed per entry)                    │
//	│  - BlockOffset, BiomeOffset per section                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Payload (variable, compressed as a whole)               │
//	│  - Per section: block palette, then biome palette       │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
//	Bytes  | Field            | Type   | Description
//	-------|------------------|--------|----------------------------------
//	0-1    | Options          | uint16 | Endianness bit, magic number
//	2      | CompressionType  | uint8  | Payload compression
//	3      | BlockDirectBits  | uint8  | Direct width of block palettes
//	4      | BiomeDirectBits  | uint8  | Direct width of biome palettes
//	5-7    | reserved         |        | Must be zero
//	8-11   | MinSection       | int32  | Y of the lowest section
//	12-15  | SectionCount     | uint32 | Number of sections
//	16-19  | PayloadOffset    | uint32 | Byte offset to the payload
//	20-23  | PayloadSize      | uint32 | Uncompressed payload length
//	24-31  | Checksum         | uint64 | xxHash64 of the stored payload
//
// The Options word is always little-endian. Every other multi-byte field, and
// the palette words inside the payload, use the order selected by the
// endianness bit.
//
// # Index Entries
//
// Index offsets are absolute positions in the uncompressed payload. Lengths
// are not stored; ParseIndex derives them from the following offset.
package section
