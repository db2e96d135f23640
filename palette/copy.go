package palette

import (
	"fmt"

	"github.com/arloliu/voxpal/bitpack"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/internal/options"
)

type copyOptions struct {
	offsetX, offsetY, offsetZ int
	valueOffset               int
	presentOnly               bool
}

// CopyOption configures CopyFrom.
type CopyOption = options.Option[*copyOptions]

// WithOffset translates the source by (x, y, z) cells: source cell (sx, sy, sz)
// lands on target cell (sx+x, sy+y, sz+z). Cells moved outside the cube are dropped.
func WithOffset(x, y, z int) CopyOption {
	return options.NoError(func(o *copyOptions) {
		o.offsetX, o.offsetY, o.offsetZ = x, y, z
	})
}

// WithValueOffset adds delta to every non-default id copied from the source.
// It reconciles palettes whose ids come from different local id spaces.
func WithValueOffset(delta int) CopyOption {
	return options.NoError(func(o *copyOptions) {
		o.valueOffset = delta
	})
}

// PresentOnly skips default source cells, leaving the matching target cells untouched.
func PresentOnly() CopyOption {
	return options.NoError(func(o *copyOptions) {
		o.presentOnly = true
	})
}

// CopyFrom copies the cells of src into p.
//
// Without options p becomes a deep copy of src's contents. Offsets, value
// offsets and PresentOnly turn it into a clipped cell-by-cell merge.
//
// Parameters:
//   - src: Source palette with the same dimension
//   - opts: Copy options
//
// Returns:
//   - error: errs.ErrDimensionMismatch for a nil or differently sized src,
//     errs.ErrNegativeValue or errs.ErrValueOutOfRange when a copied id is
//     negative or wider than MaxDirectBits. p is unchanged on error.
func (p *Palette) CopyFrom(src *Palette, opts ...CopyOption) error {
	var cfg copyOptions
	if err := options.Apply(&cfg, opts...); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: nil source", errs.ErrDimensionMismatch)
	}
	if src.dimension != p.dimension {
		return fmt.Errorf("%w: source %d, target %d", errs.ErrDimensionMismatch, src.dimension, p.dimension)
	}

	translated := cfg.offsetX != 0 || cfg.offsetY != 0 || cfg.offsetZ != 0
	if !translated && !cfg.presentOnly && cfg.valueOffset == 0 {
		if src == p {
			return nil
		}

		return p.copyAll(src)
	}

	dim := p.dimension
	if abs(cfg.offsetX) >= dim || abs(cfg.offsetY) >= dim || abs(cfg.offsetZ) >= dim {
		return nil
	}
	if src == p {
		src = p.Clone()
	}

	r := Region{
		MinX: cfg.offsetX, MinY: cfg.offsetY, MinZ: cfg.offsetZ,
		MaxX: dim + cfg.offsetX, MaxY: dim + cfg.offsetY, MaxZ: dim + cfg.offsetZ,
	}

	if v, ok := src.uniformValue(); ok {
		if v == 0 {
			if cfg.presentOnly {
				return nil
			}
		} else {
			v += cfg.valueOffset
		}
		if err := checkStorable(v, v); err != nil {
			return err
		}
		p.FillRegion(v, r)

		return nil
	}

	if lo, hi, ok := src.valueRange(false); ok {
		if err := checkStorable(lo+cfg.valueOffset, hi+cfg.valueOffset); err != nil {
			return err
		}
		p.growFor(hi + cfg.valueOffset)
	}
	p.copyCells(src, r.Clip(dim), cfg)

	return nil
}

// CopyPresentFrom copies the non-default cells of src, adding valueOffset to each id.
func (p *Palette) CopyPresentFrom(src *Palette, valueOffset int, opts ...CopyOption) error {
	opts = append(opts, PresentOnly(), WithValueOffset(valueOffset))
	return p.CopyFrom(src, opts...)
}

// copyAll makes p hold exactly the cells of src.
func (p *Palette) copyAll(src *Palette) error {
	if v, ok := src.uniformValue(); ok {
		p.growFor(v)
		p.setSingle(v)

		return nil
	}
	if _, hi, ok := src.valueRange(false); ok {
		p.growFor(hi)
	}

	if src.minBits != p.minBits || src.maxBits != p.maxBits {
		p.copyCells(src, Region{MaxX: p.dimension, MaxY: p.dimension, MaxZ: p.dimension}, copyOptions{})

		return nil
	}

	c := src.Clone()
	if c.Mode() == ModeDirect && c.directBits != p.directBits {
		c.words = bitpack.Remap(c.dimension, c.bitsPerEntry, p.directBits, c.words, identity)
		c.bitsPerEntry = p.directBits
	}
	p.bitsPerEntry = c.bitsPerEntry
	p.count = c.count
	p.words = c.words
	p.table = c.table
	p.lookup = c.lookup

	return nil
}

// copyCells copies the source cells that land in r, the already clipped
// target region.
func (p *Palette) copyCells(src *Palette, r Region, cfg copyOptions) {
	if p.bitsPerEntry == 0 {
		p.initIndirect()
	}
	in := src.reader()
	for y := r.MinY; y < r.MaxY; y++ {
		sy := y - cfg.offsetY
		for z := r.MinZ; z < r.MaxZ; z++ {
			sz := z - cfg.offsetZ
			for x := r.MinX; x < r.MaxX; x++ {
				v := in.at(src.index(x-cfg.offsetX, sy, sz))
				if v == 0 {
					if cfg.presentOnly {
						continue
					}
				} else {
					v += cfg.valueOffset
				}
				p.store(p.index(x, y, z), v)
			}
		}
	}
}

// cellReader reads ids by linear index with the packing parameters cached.
type cellReader struct {
	bits    int
	perWord int
	mask    uint64
	words   []uint64
	table   []int
	single  int
}

func (p *Palette) reader() cellReader {
	r := cellReader{bits: p.bitsPerEntry, words: p.words, table: p.table, single: p.count}
	if p.bitsPerEntry != 0 {
		r.perWord = bitpack.WordBits / p.bitsPerEntry
		r.mask = 1<<uint(p.bitsPerEntry) - 1
	}

	return r
}

func (r *cellReader) at(index int) int {
	if r.bits == 0 {
		return r.single
	}
	w := index / r.perWord
	field := int((r.words[w] >> uint((index-w*r.perWord)*r.bits)) & r.mask)
	if r.table != nil {
		return r.table[field]
	}

	return field
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
