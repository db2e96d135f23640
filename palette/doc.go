// Package palette implements the adaptive bit-packed id container of a voxel section.
//
// A Palette stores one non-negative id per cell of a dimension³ cube and picks
// the cheapest of three encodings for its current contents:
//
//   - single: every cell holds the same id, zero bits per cell
//   - indirect: cells hold minBits..maxBits wide indices into a table of ids
//   - direct: cells hold raw ids at directBits
//
// The encoding changes transparently. Writing a new id to a full table widens
// it, and a table that would exceed maxBits is replaced by raw ids. Fill and
// Optimize shrink the encoding again. Running out of table capacity is never
// an error.
//
// Block sections use a 16³ cube with 4..8 indirect bits and 15 direct bits:
//
//	p := palette.NewBlocks()
//	p.Set(1, 2, 3, stoneID)
//	p.FillRegion(0, palette.Region{MaxX: 16, MaxY: 4, MaxZ: 16})
//
// Codec serializes palettes in the network format, which is also the form
// persisted by the blob package:
//
//	codec := palette.BlockCodec()
//	data, err := codec.Encode(p)
//
// Contract violations (coordinates outside the cube, negative ids, ids wider
// than directBits) panic with an error wrapping the matching errs sentinel and
// are detected before the palette is modified. Construction, loading and
// decoding return errors instead.
//
// Palettes do no locking. Bulk writes (SetAll, ReplaceAll) take an explicitly
// owned Scratch buffer; a ScratchPool hands out one per worker.
package palette
