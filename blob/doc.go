// Package blob encodes and decodes whole chunk columns.
//
// A column is a vertical stack of sections, each made of a 16³ block palette
// and a 4³ biome palette. ColumnEncoder writes the palettes back to back in the
// palette wire format, compresses the result and prefixes it with a header and
// a per-section index (see package section for the byte layout).
//
// Basic usage:
//
//	enc, err := blob.NewColumnEncoder(-4, blob.WithCompression(format.CompressionZstd))
//	if err != nil {
//		return err
//	}
//	for _, s := range sections {
//		if err := enc.AddSection(s.Blocks, s.Biomes); err != nil {
//			return err
//		}
//	}
//	data, err := enc.Finish()
//
//	col, err := blob.DecodeColumn(data)
//	for y, s := range col.All() {
//		// ...
//	}
//
// The header records the direct widths of both palette kinds, so a blob can
// be decoded without knowing the registry sizes it was written with.
package blob
