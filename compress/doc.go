// Package compress provides the compression codecs applied to column blob payloads.
//
// A column payload is the concatenation of encoded block and biome palettes.
// Palettes are already dense, but single-value and low-width sections leave
// long runs of identical words that general-purpose compressors shrink well.
//
// Supported algorithms:
//   - None: the payload is stored as is
//   - Zstd: best ratio at moderate speed (klauspost/compress, pooled encoders)
//   - S2: balanced ratio and speed (klauspost/compress)
//   - LZ4: fastest decompression (pierrec/lz4)
//   - Snappy: fast and widely used by existing world stores (golang/snappy)
//
// Codecs are stateless values and safe for concurrent use:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// Building with the nobuild tag swaps the pure-Go Zstandard implementation for
// the cgo binding of valyala/gozstd.
package compress
