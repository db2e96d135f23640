// Package format defines the enumerations recorded in column blob headers.
package format

type CompressionType uint8

const (
	CompressionNone   CompressionType = 0x1 // CompressionNone stores the payload as is.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
	CompressionSnappy CompressionType = 0x5 // CompressionSnappy represents Snappy block compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionSnappy:
		return "Snappy"
	default:
		return "Unknown"
	}
}

// Valid reports whether c names a supported compression.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionSnappy
}

// ParseCompression returns the compression named s, as produced by String.
func ParseCompression(s string) (CompressionType, bool) {
	for c := CompressionNone; c <= CompressionSnappy; c++ {
		if c.String() == s {
			return c, true
		}
	}

	return 0, false
}
