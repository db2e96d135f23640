package palette

import (
	"fmt"
	"slices"

	"github.com/arloliu/voxpal/bitpack"
	"github.com/arloliu/voxpal/errs"
)

// Region is a half-open box of cells, [Min, Max) on every axis.
type Region = bitpack.Region

// Optimization selects what Optimize minimizes.
type Optimization uint8

const (
	// OptimizeSize re-encodes with the narrowest table able to hold the present ids.
	OptimizeSize Optimization = iota
	// OptimizeSpeed switches to direct mode, removing the table lookup from reads.
	OptimizeSpeed
)

// FillRegion sets every cell of r to value.
//
// The region is clipped to the cube. An empty region is a no-op and a region
// covering the whole cube behaves like Fill.
func (p *Palette) FillRegion(value int, r Region) {
	p.checkValue(value)
	if value == p.count && (p.bitsPerEntry == 0 || p.count == 0) {
		return
	}

	r = r.Clip(p.dimension)
	if r.Empty() {
		return
	}
	if r.Covers(p.dimension) {
		p.setSingle(value)
		return
	}

	if p.bitsPerEntry == 0 {
		p.initIndirect()
	}
	field := p.indexFor(value)
	p.count += bitpack.PartialFill(p.dimension, p.bitsPerEntry, p.words, field, r, p.isDefaultField, value == 0)
}

// Replace rewrites every cell holding oldValue to newValue.
//
// When oldValue has a non-default table slot the slot is rewritten in place
// and the word array is left untouched. Other cases re-encode the words.
func (p *Palette) Replace(oldValue, newValue int) {
	if oldValue < 0 {
		panic(fmt.Errorf("%w: %d", errs.ErrNegativeValue, oldValue))
	}
	p.checkValue(newValue)
	if oldValue == newValue {
		return
	}

	switch p.Mode() {
	case ModeSingle:
		if p.count == oldValue {
			p.count = newValue
		}
	case ModeIndirect:
		p.replaceIndirect(oldValue, newValue)
	case ModeDirect:
		if !bitpack.Any(p.dimension, p.bitsPerEntry, p.words, func(f int) bool { return f == oldValue }) {
			return
		}
		p.words = bitpack.Remap(p.dimension, p.bitsPerEntry, p.bitsPerEntry, p.words, func(f int) int {
			if f == oldValue {
				return newValue
			}

			return f
		})
		p.recount()
	}
}

func (p *Palette) replaceIndirect(oldValue, newValue int) {
	oldIndex, ok := p.lookup[oldValue]
	if !ok {
		return
	}

	if oldValue == 0 {
		// Slot 0 must keep the default id, so the cells are redirected instead.
		newIndex := p.indexFor(newValue)
		if p.table == nil {
			p.words = bitpack.Remap(p.dimension, p.bitsPerEntry, p.bitsPerEntry, p.words, func(f int) int {
				if f == 0 {
					return newValue
				}

				return f
			})
		} else {
			table := p.table
			p.words = bitpack.Remap(p.dimension, p.bitsPerEntry, p.bitsPerEntry, p.words, func(f int) int {
				if table[f] == 0 {
					return newIndex
				}

				return f
			})
		}
		p.count = p.MaxSize()

		return
	}

	affected := 0
	if newValue == 0 {
		affected = bitpack.Count(p.dimension, p.bitsPerEntry, p.words, func(f int) bool { return p.table[f] == oldValue })
	}
	for i, v := range p.table {
		if v == oldValue {
			p.table[i] = newValue
		}
	}
	delete(p.lookup, oldValue)
	if _, exists := p.lookup[newValue]; !exists {
		p.lookup[newValue] = oldIndex
	}
	p.count -= affected
}

// SetAll sets every cell to supplier(x, y, z).
//
// The supplied ids are collected into scratch first. A constant result
// collapses to single mode, anything else is stored in direct mode. A nil
// scratch allocates a transient buffer. Ids wider than DirectBits widen the
// direct encoding. Panics, before any change, if the supplier returns a
// negative id or one wider than MaxDirectBits.
func (p *Palette) SetAll(supplier func(x, y, z int) int, scratch *Scratch) {
	p.rewrite(func(x, y, z, _ int) int { return supplier(x, y, z) }, false, scratch)
}

// ReplaceAll sets every cell to fn(x, y, z, current id). See SetAll.
func (p *Palette) ReplaceAll(fn func(x, y, z, value int) int, scratch *Scratch) {
	p.rewrite(fn, true, scratch)
}

func (p *Palette) rewrite(fn func(x, y, z, value int) int, withCurrent bool, scratch *Scratch) {
	size := p.MaxSize()
	buf := scratch.values(size)
	if withCurrent {
		p.collect(buf)
	}

	constant := true
	defaults, hi := 0, 0
	i := 0
	for y := range p.dimension {
		for z := range p.dimension {
			for x := range p.dimension {
				v := fn(x, y, z, int(buf[i]))
				if err := checkStorable(v, v); err != nil {
					panic(err)
				}
				hi = max(hi, v)
				if v == 0 {
					defaults++
				}
				if v != int(buf[0]) && i > 0 {
					constant = false
				}
				buf[i] = int32(v) //nolint:gosec
				i++
			}
		}
	}
	p.growFor(hi)
	if constant {
		p.setSingle(int(buf[0]))
		return
	}

	words := make([]uint64, bitpack.ArrayLength(p.dimension, p.directBits))
	bitpack.PackInto(words, buf[:size], p.directBits)
	p.words = words
	p.table = nil
	p.lookup = nil
	p.bitsPerEntry = p.directBits
	p.count = size - defaults
}

// collect writes the id of every cell, in index order, into dst.
func (p *Palette) collect(dst []int32) {
	if p.bitsPerEntry == 0 {
		for i := range dst[:p.MaxSize()] {
			dst[i] = int32(p.count) //nolint:gosec
		}

		return
	}
	bitpack.ForEach(p.dimension, p.bitsPerEntry, p.words, func(index, field int) {
		dst[index] = int32(p.valueOf(field)) //nolint:gosec
	})
}

// Offset adds delta to the id of every cell, including default cells.
//
// Resulting ids wider than DirectBits widen the direct encoding. It fails
// without modifying the palette if a resulting id would be negative or wider
// than MaxDirectBits.
func (p *Palette) Offset(delta int) error {
	if delta == 0 {
		return nil
	}
	lo, hi, _ := p.valueRange(true)
	if err := checkStorable(lo+delta, hi+delta); err != nil {
		return fmt.Errorf("offset %d: %w", delta, err)
	}
	p.growFor(hi + delta)

	if p.bitsPerEntry == 0 {
		p.count += delta
		return nil
	}
	p.reindex(func(v int) int { return v + delta })

	return nil
}

// CountValue returns the number of cells holding value.
func (p *Palette) CountValue(value int) int {
	if p.bitsPerEntry == 0 {
		if p.count == value {
			return p.MaxSize()
		}

		return 0
	}
	if value == 0 {
		return p.MaxSize() - p.count
	}
	if p.table != nil {
		if _, ok := p.lookup[value]; !ok {
			return 0
		}
		table := p.table

		return bitpack.Count(p.dimension, p.bitsPerEntry, p.words, func(f int) bool { return table[f] == value })
	}
	if value < 0 || value > p.MaxValue() {
		return 0
	}

	return bitpack.CountEqual(p.dimension, p.bitsPerEntry, p.words, value)
}

// Any reports whether at least one cell holds value.
func (p *Palette) Any(value int) bool {
	if p.bitsPerEntry == 0 {
		return p.count == value
	}
	if value == 0 {
		return p.count != p.MaxSize()
	}
	if p.table != nil {
		if _, ok := p.lookup[value]; !ok {
			return false
		}
		table := p.table

		return bitpack.Any(p.dimension, p.bitsPerEntry, p.words, func(f int) bool { return table[f] == value })
	}

	return bitpack.Any(p.dimension, p.bitsPerEntry, p.words, func(f int) bool { return f == value })
}

// GetAll calls fn for every cell in index order: x fastest, then z, then y.
func (p *Palette) GetAll(fn func(x, y, z, value int)) {
	p.forEach(fn, true)
}

// GetAllPresent calls fn for every cell holding a non-default id.
func (p *Palette) GetAllPresent(fn func(x, y, z, value int)) {
	p.forEach(fn, false)
}

func (p *Palette) forEach(fn func(x, y, z, value int), withDefault bool) {
	if p.bitsPerEntry == 0 {
		if p.count == 0 && !withDefault {
			return
		}
		for i := range p.MaxSize() {
			x, y, z := p.coords(i)
			fn(x, y, z, p.count)
		}

		return
	}
	bitpack.ForEach(p.dimension, p.bitsPerEntry, p.words, func(index, field int) {
		v := p.valueOf(field)
		if v == 0 && !withDefault {
			return
		}
		x, y, z := p.coords(index)
		fn(x, y, z, v)
	})
}

// Height returns the highest y in column (x, z) whose cell satisfies
// predicate, scanning downwards, or -1 if no cell does.
func (p *Palette) Height(x, z int, predicate func(x, y, z, value int) bool) int {
	p.checkCoord(x, 0, z)
	top := p.dimension - 1
	if p.bitsPerEntry == 0 {
		if predicate(x, top, z, p.count) {
			return top
		}

		return -1
	}
	for y := top; y >= 0; y-- {
		v := p.valueOf(bitpack.ReadIndex(p.bitsPerEntry, p.words, p.index(x, y, z)))
		if predicate(x, y, z, v) {
			return y
		}
	}

	return -1
}

// Optimize re-encodes the palette without changing any cell.
//
// Both modes collapse a palette holding a single distinct id to single mode.
// OptimizeSize rebuilds the table from the present ids and moves to the
// narrowest width able to hold it, leaving direct mode when the ids fit a
// table again. OptimizeSpeed switches to direct mode.
func (p *Palette) Optimize(focus Optimization) {
	if p.bitsPerEntry == 0 {
		return
	}
	if focus == OptimizeSpeed {
		if v, ok := p.uniformValue(); ok {
			p.setSingle(v)
			return
		}
		p.makeDirect()

		return
	}
	p.reindex(nil)
}

// uniformValue reports whether all cells hold one id.
func (p *Palette) uniformValue() (int, bool) {
	if p.bitsPerEntry == 0 {
		return p.count, true
	}
	if p.count == 0 {
		return 0, true
	}
	first := p.valueOf(bitpack.ReadIndex(p.bitsPerEntry, p.words, 0))
	if first == 0 {
		return 0, false
	}
	diff := bitpack.Any(p.dimension, p.bitsPerEntry, p.words, func(f int) bool { return p.valueOf(f) != first })

	return first, !diff
}

// reindex rebuilds the encoding from the ids present in the cells after
// applying transform (nil for none). Ids are assigned table slots in order of
// first appearance after the default slot.
func (p *Palette) reindex(transform func(int) int) {
	bpe := p.bitsPerEntry
	src := p.table
	table := []int{0}
	lookup := map[int]int{0: 0}
	seenDefault := false

	resolve := func(v int) int {
		if transform != nil {
			v = transform(v)
		}
		if v == 0 {
			seenDefault = true
			return 0
		}
		if i, ok := lookup[v]; ok {
			return i
		}
		i := len(table)
		table = append(table, v)
		lookup[v] = i

		return i
	}

	var slots []int
	var direct map[int]int
	if src != nil {
		slots = make([]int, len(src))
		for i := range slots {
			slots[i] = -1
		}
	} else {
		direct = make(map[int]int)
	}
	bitpack.ForEach(p.dimension, bpe, p.words, func(_, f int) {
		if src != nil {
			if slots[f] < 0 {
				slots[f] = resolve(src[f])
			}

			return
		}
		if _, ok := direct[f]; !ok {
			direct[f] = resolve(f)
		}
	})

	distinct := len(table) - 1
	if seenDefault {
		distinct++
	}
	if distinct == 1 {
		if seenDefault {
			p.setSingle(0)
		} else {
			p.setSingle(table[1])
		}

		return
	}

	mapField := func(f int) int {
		if src != nil {
			return slots[f]
		}

		return direct[f]
	}

	newBits := max(p.minBits, bitpack.BitsToRepresent(len(table)-1))
	if newBits > p.maxBits {
		if src == nil && transform == nil {
			return
		}
		p.words = bitpack.Remap(p.dimension, bpe, p.directBits, p.words, func(f int) int { return table[mapField(f)] })
		p.bitsPerEntry = p.directBits
		p.table = nil
		p.lookup = nil
		p.recount()

		return
	}
	if src != nil && transform == nil && newBits >= bpe && len(table) == len(src) {
		return
	}

	p.words = bitpack.Remap(p.dimension, bpe, newBits, p.words, mapField)
	p.bitsPerEntry = newBits
	p.table = table
	p.lookup = lookup
	p.recount()
}

// Equal reports whether both palettes hold the same id in every cell,
// regardless of encoding.
func (p *Palette) Equal(other *Palette) bool {
	if p == other {
		return true
	}
	if other == nil || p.dimension != other.dimension || p.Count() != other.Count() {
		return false
	}
	a, aUniform := p.uniformValue()
	b, bUniform := other.uniformValue()
	if aUniform || bUniform {
		return aUniform && bUniform && a == b
	}

	r := other.reader()
	equal := true
	bitpack.ForEach(p.dimension, p.bitsPerEntry, p.words, func(index, field int) {
		if equal && p.valueOf(field) != r.at(index) {
			equal = false
		}
	})

	return equal
}

// Load replaces the contents with a table and the indices packed into words.
//
// The width of words is derived from the table length, never below MinBits.
// A table that needs more than MaxBits is converted to direct mode. Excess
// words are ignored; words is copied, never retained.
//
// A table whose first entry is not the default id is reordered so slot 0
// holds 0. Entries wider than DirectBits widen the direct encoding. On error
// the palette is unchanged.
func (p *Palette) Load(table []int, words []uint64) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: empty table", errs.ErrInvalidTable)
	}
	if err := checkTable(table, MaxDirectBits); err != nil {
		return err
	}
	if len(table) == 1 {
		p.growFor(table[0])
		p.setSingle(table[0])

		return nil
	}

	bpe := max(p.minBits, bitpack.BitsToRepresent(len(table)-1))
	if bpe > bitpack.MaxBits {
		return fmt.Errorf("%w: %d entries", errs.ErrInvalidTable, len(table))
	}
	need := bitpack.ArrayLength(p.dimension, bpe)
	if len(words) < need {
		return fmt.Errorf("%w: %d words at %d bits, %d required", errs.ErrTruncatedData, len(words), bpe, need)
	}
	packed := make([]uint64, need)
	copy(packed, words)
	if err := p.checkFields(bpe, table, packed); err != nil {
		return err
	}
	p.growFor(slices.Max(table))

	return p.adoptIndirect(bpe, table, packed)
}

// checkTable validates that every table entry fits directBits.
func checkTable(table []int, directBits int) error {
	for i, v := range table {
		if err := checkWidth(v, v, directBits); err != nil {
			return fmt.Errorf("table entry %d: %w", i, err)
		}
	}

	return nil
}

func (p *Palette) checkFields(bpe int, table []int, words []uint64) error {
	if maxField := bitpack.MaxField(p.dimension, bpe, words); maxField >= len(table) {
		return fmt.Errorf("%w: index %d, table holds %d entries", errs.ErrInvalidPaletteIndex, maxField, len(table))
	}

	return nil
}

// adoptIndirect installs a validated table and words packed at bpe. words is
// owned by the palette afterwards. Widths above maxBits end in direct mode.
func (p *Palette) adoptIndirect(bpe int, table []int, words []uint64) error {
	if err := p.checkFields(bpe, table, words); err != nil {
		return err
	}

	if bpe > p.maxBits {
		p.words = bitpack.Remap(p.dimension, bpe, p.directBits, words, func(f int) int { return table[f] })
		p.bitsPerEntry = p.directBits
		p.table = nil
		p.lookup = nil
		p.recount()

		return nil
	}
	if bpe < p.minBits {
		words = bitpack.Remap(p.dimension, bpe, p.minBits, words, identity)
		bpe = p.minBits
	}

	own := make([]int, len(table))
	copy(own, table)
	lookup := make(map[int]int, len(own))
	for i, v := range own {
		if _, ok := lookup[v]; !ok {
			lookup[v] = i
		}
	}

	p.bitsPerEntry = bpe
	p.words = words
	p.table = own
	p.lookup = lookup
	p.normalizeDefaultSlot()
	p.recount()

	return nil
}

// adoptDirect installs raw ids packed at bpe.
func (p *Palette) adoptDirect(bpe int, words []uint64) {
	if bpe != p.directBits {
		words = bitpack.Remap(p.dimension, bpe, p.directBits, words, identity)
	}
	p.words = words
	p.bitsPerEntry = p.directBits
	p.table = nil
	p.lookup = nil
	p.recount()
}

// normalizeDefaultSlot moves the default id into table slot 0.
func (p *Palette) normalizeDefaultSlot() {
	if p.table[0] == 0 {
		return
	}

	if k, ok := p.lookup[0]; ok {
		first := p.table[0]
		p.table[0], p.table[k] = 0, first
		p.lookup[0] = 0
		if p.lookup[first] == 0 {
			p.lookup[first] = k
		}
		p.words = bitpack.Remap(p.dimension, p.bitsPerEntry, p.bitsPerEntry, p.words, func(f int) int {
			switch f {
			case 0:
				return k
			case k:
				return 0
			}

			return f
		})

		return
	}

	n := len(p.table)
	newBits := p.bitsPerEntry
	if n >= bitpack.MaxTableSize(newBits) {
		newBits++
		if newBits > p.maxBits {
			p.makeDirect()
			return
		}
	}
	first := p.table[0]
	p.table[0] = 0
	p.table = append(p.table, first)
	p.lookup[0] = 0
	if p.lookup[first] == 0 {
		p.lookup[first] = n
	}
	p.words = bitpack.Remap(p.dimension, p.bitsPerEntry, newBits, p.words, func(f int) int {
		if f == 0 {
			return n
		}

		return f
	})
	p.bitsPerEntry = newBits
}
