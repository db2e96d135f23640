package section

import (
	"github.com/arloliu/voxpal/endian"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/format"
)

// ColumnFlag represents the packed flag field at the start of a column header.
type ColumnFlag struct {
	// Options is a packed field for various options.
	// Bit 1 is endianness flag, 0 means little-endian, 1 means big-endian.
	// Bits 0, 2 and 3 are reserved for future use, must be set to 0.
	// Bit 4-15 are magic number to identify the blob format:
	//   - 0xEC10 (0b1110_1100_0001_0000): column blob format v1
	Options uint16

	// CompressionType is the compression applied to the section payload.
	CompressionType uint8
}

// NewColumnFlag creates a new ColumnFlag with default settings:
// little-endian words and zstd compression.
func NewColumnFlag() ColumnFlag {
	flag := ColumnFlag{
		Options:         MagicColumnV1Opt,
		CompressionType: uint8(format.CompressionZstd),
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the data is little-endian.
func (f ColumnFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the data is big-endian.
func (f ColumnFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *ColumnFlag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *ColumnFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// WithEndian sets the byte order matching engine.
func (f *ColumnFlag) WithEndian(engine endian.EndianEngine) {
	if endian.IsBigEndian(engine) {
		f.WithBigEndian()
	} else {
		f.WithLittleEndian()
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f ColumnFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// Compression returns the payload compression type.
func (f ColumnFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the payload compression type.
func (f *ColumnFlag) SetCompression(compression format.CompressionType) {
	f.CompressionType = uint8(compression)
}

// IsValidMagicNumber checks if the magic number is valid.
func (f ColumnFlag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicColumnV1Opt
}

// Validate checks if the flag contains valid values.
func (f ColumnFlag) Validate() error {
	if !f.IsValidMagicNumber() {
		return errs.ErrInvalidHeaderFlags
	}

	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	if !f.Compression().Valid() {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}

// GetEndianEngine returns the appropriate endian engine based on the flag.
func (f ColumnFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
