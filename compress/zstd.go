package compress

// ZstdCompressor provides Zstandard compression.
//
// It gives the best ratio of the built-in codecs and suits cold storage of
// columns that are written once and read rarely.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
