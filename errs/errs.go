// Package errs defines the sentinel errors shared by the voxpal packages.
//
// Callers should match errors with errors.Is, since most call sites wrap the
// sentinel with additional context.
package errs

import "errors"

// Palette configuration errors.
var (
	ErrInvalidDimension    = errors.New("dimension must be a power of two greater than 1")
	ErrInvalidBitsRange    = errors.New("invalid bits per entry range")
	ErrInvalidBitsPerEntry = errors.New("invalid bits per entry")
	ErrDimensionMismatch   = errors.New("palette dimensions do not match")
	ErrCodecMismatch       = errors.New("palette configuration does not match codec")
)

// Value and coordinate errors.
var (
	ErrNegativeValue        = errors.New("palette value must be non-negative")
	ErrValueOutOfRange      = errors.New("palette value out of range")
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")
)

// Serialized palette errors.
var (
	ErrTruncatedData       = errors.New("truncated palette data")
	ErrInvalidTable        = errors.New("invalid palette table")
	ErrInvalidPaletteIndex = errors.New("packed index outside palette table")
	ErrVarIntTooLong       = errors.New("varint is too long")
)

// Column blob errors.
var (
	ErrInvalidHeaderSize     = errors.New("invalid header size")
	ErrInvalidHeaderFlags    = errors.New("invalid header flags")
	ErrChecksumMismatch      = errors.New("payload checksum mismatch")
	ErrInvalidIndexEntrySize = errors.New("invalid index entry size")
	ErrInvalidPayloadOffset  = errors.New("invalid payload offset")
	ErrSectionOutOfRange     = errors.New("section out of range")
	ErrTooManySections       = errors.New("too many sections")
	ErrNoSectionsAdded       = errors.New("no sections added")
)

// Storage errors.
var (
	ErrNotFound    = errors.New("column not found")
	ErrStoreClosed = errors.New("store is closed")
)
