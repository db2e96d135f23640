package palette

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/voxpal/bitpack"
	"github.com/arloliu/voxpal/errs"
)

// Section configurations.
const (
	BlockDimension  = 16
	BlockMinBits    = 4
	BlockMaxBits    = 8
	BlockDirectBits = 15

	BiomeDimension = 4
	BiomeMinBits   = 1
	BiomeMaxBits   = 3

	// MaxDimension is the largest supported cube edge length.
	MaxDimension = 256
	// MaxDirectBits is the widest direct encoding; ids are non-negative int32 values.
	MaxDirectBits = 31
)

// Mode is the physical encoding currently used by a palette.
type Mode uint8

const (
	// ModeSingle stores one value for every cell and no word array.
	ModeSingle Mode = iota
	// ModeIndirect stores table indices in the word array.
	ModeIndirect
	// ModeDirect stores raw ids in the word array.
	ModeDirect
)

var modeNames = [...]string{"single", "indirect", "direct"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}

	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Palette is a bit-packed cube of non-negative ids.
//
// A palette starts in single-value mode and re-encodes itself as cells are
// written: single -> indirect when a second distinct id appears, indirect at
// width w -> w+1 when its table is full, indirect -> direct when a table would
// need more than maxBits. Fill and Optimize move it back down.
//
// Id 0 is the default value. In indirect mode table slot 0 always holds 0, and
// the cached count of non-default cells is kept exact by every mutation.
//
// A Palette is not safe for concurrent use. Hand a Clone to other goroutines.
type Palette struct {
	dimension  int
	dimBits    int
	minBits    int
	maxBits    int
	directBits int

	// bitsPerEntry is 0 in single mode, in [minBits, maxBits] in indirect
	// mode and equal to directBits in direct mode.
	bitsPerEntry int
	// count is the value of every cell in single mode and the number of
	// non-default cells otherwise.
	count int

	words  []uint64
	table  []int
	lookup map[int]int
}

// New creates an empty palette: every cell holds the default id 0.
//
// Parameters:
//   - dimension: Cube edge length, a power of two in (1, MaxDimension]
//   - minBits: Narrowest indirect width, at least 1
//   - maxBits: Widest indirect width, greater than minBits
//   - directBits: Width of raw ids, greater than maxBits and at most MaxDirectBits
//
// Returns:
//   - *Palette: The empty palette
//   - error: errs.ErrInvalidDimension or errs.ErrInvalidBitsRange
func New(dimension, minBits, maxBits, directBits int) (*Palette, error) {
	if err := validateConfig(dimension, minBits, maxBits, directBits); err != nil {
		return nil, err
	}

	return &Palette{
		dimension:  dimension,
		dimBits:    bitpack.DimensionBits(dimension),
		minBits:    minBits,
		maxBits:    maxBits,
		directBits: directBits,
	}, nil
}

// NewSized creates an empty palette already encoded at the given width.
//
// bitsPerEntry must be 0, within [minBits, maxBits], or equal to directBits.
// Pre-sizing avoids the re-encoding steps of a palette that is known to be
// filled with many distinct ids.
func NewSized(dimension, minBits, maxBits, directBits, bitsPerEntry int) (*Palette, error) {
	p, err := New(dimension, minBits, maxBits, directBits)
	if err != nil {
		return nil, err
	}
	if bitsPerEntry == 0 {
		return p, nil
	}
	if (bitsPerEntry < minBits || bitsPerEntry > maxBits) && bitsPerEntry != directBits {
		return nil, fmt.Errorf("%w: %d not in [%d, %d] and not %d",
			errs.ErrInvalidBitsPerEntry, bitsPerEntry, minBits, maxBits, directBits)
	}

	p.bitsPerEntry = bitsPerEntry
	p.words = make([]uint64, bitpack.ArrayLength(dimension, bitsPerEntry))
	if bitsPerEntry <= maxBits {
		p.table = []int{0}
		p.lookup = map[int]int{0: 0}
	}

	return p, nil
}

// NewBlocks creates an empty 16³ block-state palette.
func NewBlocks() *Palette {
	p, err := New(BlockDimension, BlockMinBits, BlockMaxBits, BlockDirectBits)
	if err != nil {
		panic(err)
	}

	return p
}

// NewBiomes creates an empty 4³ biome palette for a registry whose ids need directBits.
// Use BiomeDirectBits to derive directBits from the registry size.
func NewBiomes(directBits int) (*Palette, error) {
	return New(BiomeDimension, BiomeMinBits, BiomeMaxBits, directBits)
}

// BiomeDirectBits returns the direct width for a biome registry of the given size.
//
// The result is never below BiomeMaxBits+1, so small registries still yield a
// valid configuration. Callers recompute it whenever the registry grows.
func BiomeDirectBits(registrySize int) int {
	return max(BiomeMaxBits+1, bitpack.BitsToRepresent(registrySize-1))
}

func validateConfig(dimension, minBits, maxBits, directBits int) error {
	if dimension <= 1 || dimension > MaxDimension || bits.OnesCount(uint(dimension)) != 1 {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidDimension, dimension)
	}
	if minBits <= 0 {
		return fmt.Errorf("%w: min bits %d must be positive", errs.ErrInvalidBitsRange, minBits)
	}
	if maxBits <= minBits {
		return fmt.Errorf("%w: max bits %d must exceed min bits %d", errs.ErrInvalidBitsRange, maxBits, minBits)
	}
	if directBits <= maxBits || directBits > MaxDirectBits {
		return fmt.Errorf("%w: direct bits %d must be in (%d, %d]",
			errs.ErrInvalidBitsRange, directBits, maxBits, MaxDirectBits)
	}

	return nil
}

// Dimension returns the cube edge length.
func (p *Palette) Dimension() int { return p.dimension }

// MinBits returns the narrowest indirect width.
func (p *Palette) MinBits() int { return p.minBits }

// MaxBits returns the widest indirect width.
func (p *Palette) MaxBits() int { return p.maxBits }

// DirectBits returns the width of raw ids.
func (p *Palette) DirectBits() int { return p.directBits }

// BitsPerEntry returns the current encoding width, 0 in single mode.
func (p *Palette) BitsPerEntry() int { return p.bitsPerEntry }

// MaxSize returns the number of cells.
func (p *Palette) MaxSize() int { return p.dimension * p.dimension * p.dimension }

// MaxValue returns the largest id the current direct width can hold.
func (p *Palette) MaxValue() int { return 1<<p.directBits - 1 }

// Mode returns the current encoding.
func (p *Palette) Mode() Mode {
	switch {
	case p.bitsPerEntry == 0:
		return ModeSingle
	case p.bitsPerEntry <= p.maxBits:
		return ModeIndirect
	default:
		return ModeDirect
	}
}

// Table returns a copy of the index-to-id table, or nil outside indirect mode.
func (p *Palette) Table() []int {
	if p.table == nil {
		return nil
	}
	out := make([]int, len(p.table))
	copy(out, p.table)

	return out
}

// Words returns the packed word array, or nil in single mode.
//
// The slice aliases the palette and is only valid until the next mutation.
func (p *Palette) Words() []uint64 {
	return p.words
}

// SingleValue returns the value of every cell when the palette is uniform by
// construction: in single mode, or when no cell holds a non-default id.
func (p *Palette) SingleValue() (int, bool) {
	if p.bitsPerEntry == 0 {
		return p.count, true
	}
	if p.count == 0 {
		return 0, true
	}

	return 0, false
}

// Count returns the number of cells holding a non-default id.
func (p *Palette) Count() int {
	if p.bitsPerEntry == 0 {
		if p.count == 0 {
			return 0
		}

		return p.MaxSize()
	}

	return p.count
}

// IsEmpty reports whether every cell holds the default id.
func (p *Palette) IsEmpty() bool {
	return p.Count() == 0
}

func (p *Palette) String() string {
	if p.bitsPerEntry == 0 {
		return fmt.Sprintf("palette(%d³ single value=%d)", p.dimension, p.count)
	}

	return fmt.Sprintf("palette(%d³ %s bits=%d table=%d count=%d)",
		p.dimension, p.Mode(), p.bitsPerEntry, len(p.table), p.count)
}

// Get returns the id stored at (x, y, z).
//
// Panics with an error wrapping errs.ErrCoordinateOutOfRange if a coordinate
// is outside [0, Dimension).
func (p *Palette) Get(x, y, z int) int {
	p.checkCoord(x, y, z)
	if p.bitsPerEntry == 0 {
		return p.count
	}

	return p.valueOf(bitpack.ReadIndex(p.bitsPerEntry, p.words, p.index(x, y, z)))
}

// Set stores value at (x, y, z), re-encoding the palette if its table is full.
// An id wider than DirectBits widens the direct encoding first.
//
// Panics with an error wrapping errs.ErrCoordinateOutOfRange or
// errs.ErrNegativeValue, or errs.ErrValueOutOfRange for ids above
// MaxDirectBits, before anything is modified.
func (p *Palette) Set(x, y, z, value int) {
	p.checkCoord(x, y, z)
	p.checkValue(value)
	if p.bitsPerEntry == 0 {
		if value == p.count {
			return
		}
		p.initIndirect()
	}
	p.store(p.index(x, y, z), value)
}

// ReplaceAt replaces the id at (x, y, z) with op applied to it.
func (p *Palette) ReplaceAt(x, y, z int, op func(value int) int) {
	p.Set(x, y, z, op(p.Get(x, y, z)))
}

// Fill sets every cell to value and drops the word array.
func (p *Palette) Fill(value int) {
	p.checkValue(value)
	p.setSingle(value)
}

// GrowDirectBits widens the direct encoding after the owning registry grew.
//
// Narrower or equal widths are ignored. A palette in direct mode re-encodes
// its words at the new width.
func (p *Palette) GrowDirectBits(directBits int) error {
	if directBits <= p.directBits {
		return nil
	}
	if directBits > MaxDirectBits {
		return fmt.Errorf("%w: direct bits %d exceed %d", errs.ErrInvalidBitsRange, directBits, MaxDirectBits)
	}
	p.growDirect(directBits)

	return nil
}

func (p *Palette) growDirect(directBits int) {
	if p.Mode() == ModeDirect {
		p.words = bitpack.Remap(p.dimension, p.bitsPerEntry, directBits, p.words, identity)
		p.bitsPerEntry = directBits
	}
	p.directBits = directBits
}

// growFor widens the direct encoding so hi can be stored. hi must have
// passed checkStorable.
func (p *Palette) growFor(hi int) {
	if hi > p.MaxValue() {
		p.growDirect(bitpack.BitsToRepresent(hi))
	}
}

// Clone returns a deep copy that shares no storage with p.
func (p *Palette) Clone() *Palette {
	c := *p
	if p.words != nil {
		c.words = make([]uint64, len(p.words))
		copy(c.words, p.words)
	}
	if p.table != nil {
		c.table = make([]int, len(p.table))
		copy(c.table, p.table)
		c.lookup = make(map[int]int, len(p.lookup))
		for v, i := range p.lookup {
			c.lookup[v] = i
		}
	}

	return &c
}

func identity(v int) int { return v }

func (p *Palette) index(x, y, z int) int {
	return bitpack.SectionIndex(p.dimBits, x, y, z)
}

// coords is the inverse of index.
func (p *Palette) coords(index int) (x, y, z int) {
	m := p.dimension - 1
	return index & m, index >> (p.dimBits << 1), (index >> p.dimBits) & m
}

func (p *Palette) checkCoord(x, y, z int) {
	d := uint(p.dimension)
	if uint(x) >= d || uint(y) >= d || uint(z) >= d {
		panic(fmt.Errorf("%w: (%d, %d, %d) for dimension %d", errs.ErrCoordinateOutOfRange, x, y, z, p.dimension))
	}
}

// checkValue panics unless value can be stored, widening directBits when
// value needs more bits.
func (p *Palette) checkValue(value int) {
	if err := checkStorable(value, value); err != nil {
		panic(err)
	}
	p.growFor(value)
}

// checkRange validates that every id in [lo, hi] fits the current direct width.
func (p *Palette) checkRange(lo, hi int) error {
	return checkWidth(lo, hi, p.directBits)
}

// checkStorable validates that every id in [lo, hi] fits MaxDirectBits.
func checkStorable(lo, hi int) error {
	return checkWidth(lo, hi, MaxDirectBits)
}

func checkWidth(lo, hi, directBits int) error {
	if lo < 0 {
		return fmt.Errorf("%w: %d", errs.ErrNegativeValue, lo)
	}
	if hi > 1<<directBits-1 {
		return fmt.Errorf("%w: %d needs more than %d bits", errs.ErrValueOutOfRange, hi, directBits)
	}

	return nil
}

// valueOf translates a stored field into an id.
func (p *Palette) valueOf(field int) int {
	if p.table != nil {
		return p.table[field]
	}

	return field
}

func (p *Palette) isDefaultField(field int) bool {
	return p.valueOf(field) == 0
}

func (p *Palette) setSingle(value int) {
	p.bitsPerEntry = 0
	p.count = value
	p.words = nil
	p.table = nil
	p.lookup = nil
}

// initIndirect leaves single mode at minBits. The current value takes slot 1
// unless it is the default.
func (p *Palette) initIndirect() {
	value := p.count
	p.bitsPerEntry = p.minBits
	p.words = make([]uint64, bitpack.ArrayLength(p.dimension, p.minBits))
	p.table = []int{0}
	p.lookup = map[int]int{0: 0}
	p.count = 0
	if value != 0 {
		p.table = append(p.table, value)
		p.lookup[value] = 1
		bitpack.Fill(p.minBits, p.words, 1)
		p.count = p.MaxSize()
	}
}

// indexFor returns the field encoding value, assigning a table slot and
// growing the encoding when needed. The palette must not be in single mode.
func (p *Palette) indexFor(value int) int {
	if p.table == nil {
		return value
	}
	if i, ok := p.lookup[value]; ok {
		return i
	}

	next := len(p.table)
	if next >= bitpack.MaxTableSize(p.bitsPerEntry) {
		p.upsize()
		if p.table == nil {
			return value
		}
	}
	p.table = append(p.table, value)
	p.lookup[value] = next

	return next
}

func (p *Palette) upsize() {
	next := p.bitsPerEntry + 1
	if next > p.maxBits {
		p.makeDirect()
		return
	}
	p.words = bitpack.Remap(p.dimension, p.bitsPerEntry, next, p.words, identity)
	p.bitsPerEntry = next
}

func (p *Palette) makeDirect() {
	switch p.Mode() {
	case ModeDirect:
		return
	case ModeSingle:
		value := p.count
		p.words = make([]uint64, bitpack.ArrayLength(p.dimension, p.directBits))
		p.count = 0
		if value != 0 {
			bitpack.Fill(p.directBits, p.words, value)
			p.count = p.MaxSize()
		}
	case ModeIndirect:
		table := p.table
		p.words = bitpack.Remap(p.dimension, p.bitsPerEntry, p.directBits, p.words, func(f int) int { return table[f] })
	}
	p.table = nil
	p.lookup = nil
	p.bitsPerEntry = p.directBits
}

// store writes value at a linear index and keeps count in step.
func (p *Palette) store(index, value int) {
	field := p.indexFor(value)
	old := bitpack.WriteIndex(p.bitsPerEntry, p.words, index, field)
	wasDefault := p.isDefaultField(old)
	if wasDefault != (value == 0) {
		if wasDefault {
			p.count++
		} else {
			p.count--
		}
	}
}

func (p *Palette) recount() {
	if p.bitsPerEntry == 0 {
		return
	}
	p.count = p.MaxSize() - bitpack.Count(p.dimension, p.bitsPerEntry, p.words, p.isDefaultField)
}

// valueRange returns the smallest and largest id stored in the cells,
// skipping default cells unless withDefault is set. ok is false when no cell
// was considered.
func (p *Palette) valueRange(withDefault bool) (lo, hi int, ok bool) {
	if p.bitsPerEntry == 0 {
		if p.count == 0 && !withDefault {
			return 0, 0, false
		}

		return p.count, p.count, true
	}

	lo, hi = -1, -1
	bitpack.ForEach(p.dimension, p.bitsPerEntry, p.words, func(_, field int) {
		v := p.valueOf(field)
		if v == 0 && !withDefault {
			return
		}
		if lo < 0 || v < lo {
			lo = v
		}
		hi = max(hi, v)
	})

	return lo, hi, lo >= 0
}
