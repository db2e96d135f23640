// Package bitpack packs fixed-width unsigned fields into 64-bit word arrays.
//
// Fields never straddle a word boundary: a word holds floor(64/bits) fields,
// stored from the least significant bit upwards, and the remaining high bits
// are left zero. Cells of a cube of edge length dimension are linearized as
//
//	index = y<<(2*log2(dimension)) | z<<log2(dimension) | x
//
// which is the layout shared by the in-memory palette, the network codec and
// persisted sections.
//
// All functions are stateless. Malformed input (a word array shorter than
// ArrayLength, a bit width outside [1, MaxBits], a value wider than its field)
// is a programming error and panics.
package bitpack

import (
	"fmt"
	"math/bits"
)

const (
	// WordBits is the width of one storage word.
	WordBits = 64
	// MaxBits is the widest field supported.
	MaxBits = 32
)

// Integer is the set of integer types accepted by Pack and Unpack.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// Region is a half-open box [Min, Max) of cube coordinates.
type Region struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// Empty reports whether the region contains no cell.
func (r Region) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY || r.MinZ >= r.MaxZ
}

// Clip returns the region clipped to a cube of the given dimension.
func (r Region) Clip(dimension int) Region {
	return Region{
		MinX: max(0, r.MinX), MinY: max(0, r.MinY), MinZ: max(0, r.MinZ),
		MaxX: min(dimension, r.MaxX), MaxY: min(dimension, r.MaxY), MaxZ: min(dimension, r.MaxZ),
	}
}

// Covers reports whether the region spans the whole cube.
func (r Region) Covers(dimension int) bool {
	return r.MinX <= 0 && r.MinY <= 0 && r.MinZ <= 0 &&
		r.MaxX >= dimension && r.MaxY >= dimension && r.MaxZ >= dimension
}

// BitsToRepresent returns the number of bits needed to represent n.
// It returns 0 for n <= 0.
func BitsToRepresent(n int) int {
	if n <= 0 {
		return 0
	}

	return bits.Len(uint(n))
}

// DimensionBits returns log2(dimension) for a power-of-two dimension.
func DimensionBits(dimension int) int {
	return BitsToRepresent(dimension - 1)
}

// MaxTableSize returns the number of distinct indices a field of the given width can hold.
func MaxTableSize(bitsPerEntry int) int {
	return 1 << bitsPerEntry
}

// ValuesPerWord returns how many fields of the given width fit in one word.
func ValuesPerWord(bitsPerEntry int) int {
	checkBits(bitsPerEntry)
	return WordBits / bitsPerEntry
}

// ArrayLength returns the number of words needed to pack dimension³ fields.
func ArrayLength(dimension, bitsPerEntry int) int {
	perWord := ValuesPerWord(bitsPerEntry)
	size := dimension * dimension * dimension

	return (size + perWord - 1) / perWord
}

// SectionIndex returns the linear index of (x, y, z) for a cube with 1<<dimBits cells per edge.
func SectionIndex(dimBits, x, y, z int) int {
	return y<<(dimBits<<1) | z<<dimBits | x
}

// Read returns the field at (x, y, z).
func Read(dimension, bitsPerEntry int, words []uint64, x, y, z int) int {
	return ReadIndex(bitsPerEntry, words, SectionIndex(DimensionBits(dimension), x, y, z))
}

// ReadIndex returns the field at a linear index.
func ReadIndex(bitsPerEntry int, words []uint64, index int) int {
	perWord := WordBits / bitsPerEntry
	w := index / perWord
	shift := uint((index - w*perWord) * bitsPerEntry)

	return int((words[w] >> shift) & fieldMask(bitsPerEntry))
}

// Write stores value at (x, y, z) and returns the previous field.
func Write(dimension, bitsPerEntry int, words []uint64, x, y, z, value int) int {
	return WriteIndex(bitsPerEntry, words, SectionIndex(DimensionBits(dimension), x, y, z), value)
}

// WriteIndex stores value at a linear index and returns the previous field.
func WriteIndex(bitsPerEntry int, words []uint64, index, value int) int {
	mask := fieldMask(bitsPerEntry)
	v := checkField(value, mask, bitsPerEntry)

	perWord := WordBits / bitsPerEntry
	w := index / perWord
	shift := uint((index - w*perWord) * bitsPerEntry)

	block := words[w]
	old := (block >> shift) & mask
	words[w] = block&^(mask<<shift) | v<<shift

	return int(old)
}

// Fill sets every field of every word to value.
func Fill(bitsPerEntry int, words []uint64, value int) {
	perWord := ValuesPerWord(bitsPerEntry)
	v := checkField(value, fieldMask(bitsPerEntry), bitsPerEntry)

	var block uint64
	for i := range perWord {
		block |= v << uint(i*bitsPerEntry)
	}
	for i := range words {
		words[i] = block
	}
}

// Remap decodes every field of a dimension³ array packed at oldBits, passes it
// through transform and packs the results at newBits into a new array.
//
// Remap is used for every width change (upsize, downsize, conversion to raw
// ids) and for rewriting indices in place when oldBits == newBits.
func Remap(dimension, oldBits, newBits int, words []uint64, transform func(int) int) []uint64 {
	oldLen := ArrayLength(dimension, oldBits)
	checkLength(words, oldLen, dimension, oldBits)

	result := make([]uint64, ArrayLength(dimension, newBits))
	size := dimension * dimension * dimension
	oldPerWord := WordBits / oldBits
	newPerWord := WordBits / newBits
	oldMask := fieldMask(oldBits)
	newMask := fieldMask(newBits)

	var acc uint64
	lane, out, idx := 0, 0, 0
	for _, word := range words[:oldLen] {
		end := min(oldPerWord, size-idx)
		for range end {
			v := checkField(transform(int(word&oldMask)), newMask, newBits)
			word >>= uint(oldBits)
			acc |= v << uint(lane*newBits)
			lane++
			if lane == newPerWord {
				result[out] = acc
				out++
				acc, lane = 0, 0
			}
		}
		idx += end
	}
	if lane > 0 {
		result[out] = acc
	}

	return result
}

// PartialFill writes value into every cell of the region and returns the change
// in the number of non-default cells. isDefault classifies a stored field,
// valueIsDefault classifies the written one. The region must already be clipped.
func PartialFill(dimension, bitsPerEntry int, words []uint64, value int, r Region,
	isDefault func(field int) bool, valueIsDefault bool,
) int {
	dimBits := DimensionBits(dimension)
	perWord := WordBits / bitsPerEntry
	mask := fieldMask(bitsPerEntry)
	v := checkField(value, mask, bitsPerEntry)

	delta := 0
	for y := r.MinY; y < r.MaxY; y++ {
		for z := r.MinZ; z < r.MaxZ; z++ {
			index := SectionIndex(dimBits, r.MinX, y, z)
			w := index / perWord
			lane := index - w*perWord
			block := words[w]
			for x := r.MinX; x < r.MaxX; x++ {
				shift := uint(lane * bitsPerEntry)
				wasDefault := isDefault(int((block >> shift) & mask))
				if wasDefault != valueIsDefault {
					if wasDefault {
						delta++
					} else {
						delta--
					}
				}
				block = block&^(mask<<shift) | v<<shift
				lane++
				if lane == perWord {
					words[w] = block
					w++
					lane = 0
					if x+1 < r.MaxX {
						block = words[w]
					}
				}
			}
			if lane != 0 {
				words[w] = block
			}
		}
	}

	return delta
}

// ForEach calls fn with the linear index and field of every cell, in index order.
func ForEach(dimension, bitsPerEntry int, words []uint64, fn func(index, field int)) {
	size := dimension * dimension * dimension
	perWord := WordBits / bitsPerEntry
	mask := fieldMask(bitsPerEntry)

	idx := 0
	for _, block := range words {
		end := min(perWord, size-idx)
		for range end {
			fn(idx, int(block&mask))
			block >>= uint(bitsPerEntry)
			idx++
		}
		if idx >= size {
			return
		}
	}
}

// Count returns the number of cells whose field satisfies match.
func Count(dimension, bitsPerEntry int, words []uint64, match func(field int) bool) int {
	n := 0
	ForEach(dimension, bitsPerEntry, words, func(_, field int) {
		if match(field) {
			n++
		}
	})

	return n
}

// CountEqual returns the number of cells whose field equals field.
func CountEqual(dimension, bitsPerEntry int, words []uint64, field int) int {
	return Count(dimension, bitsPerEntry, words, func(f int) bool { return f == field })
}

// Any reports whether some cell's field satisfies match. It stops at the first hit.
func Any(dimension, bitsPerEntry int, words []uint64, match func(field int) bool) bool {
	size := dimension * dimension * dimension
	perWord := WordBits / bitsPerEntry
	mask := fieldMask(bitsPerEntry)

	idx := 0
	for _, block := range words {
		end := min(perWord, size-idx)
		for range end {
			if match(int(block & mask)) {
				return true
			}
			block >>= uint(bitsPerEntry)
		}
		idx += end
		if idx >= size {
			break
		}
	}

	return false
}

// MaxField returns the largest field stored in the dimension³ cells.
func MaxField(dimension, bitsPerEntry int, words []uint64) int {
	checkLength(words, ArrayLength(dimension, bitsPerEntry), dimension, bitsPerEntry)

	best := 0
	ForEach(dimension, bitsPerEntry, words, func(_, field int) {
		best = max(best, field)
	})

	return best
}

// Pack packs values into a new word array, one field per value.
func Pack[T Integer](values []T, bitsPerEntry int) []uint64 {
	perWord := ValuesPerWord(bitsPerEntry)
	words := make([]uint64, (len(values)+perWord-1)/perWord)
	PackInto(words, values, bitsPerEntry)

	return words
}

// PackInto packs values into dst, overwriting it. dst must hold
// ceil(len(values) / ValuesPerWord(bitsPerEntry)) words.
func PackInto[T Integer](dst []uint64, values []T, bitsPerEntry int) {
	perWord := ValuesPerWord(bitsPerEntry)
	need := (len(values) + perWord - 1) / perWord
	if len(dst) < need {
		panic(fmt.Sprintf("bitpack: destination holds %d words, %d required", len(dst), need))
	}
	mask := fieldMask(bitsPerEntry)

	idx := 0
	for i := range need {
		var block uint64
		end := min(perWord, len(values)-idx)
		for j := range end {
			block |= checkField(int(values[idx]), mask, bitsPerEntry) << uint(j*bitsPerEntry)
			idx++
		}
		dst[i] = block
	}
	for i := need; i < len(dst); i++ {
		dst[i] = 0
	}
}

// Unpack decodes len(out) fields from words into out.
func Unpack[T Integer](out []T, words []uint64, bitsPerEntry int) {
	perWord := ValuesPerWord(bitsPerEntry)
	need := (len(out) + perWord - 1) / perWord
	if len(words) < need {
		panic(fmt.Sprintf("bitpack: source holds %d words, %d required", len(words), need))
	}
	mask := fieldMask(bitsPerEntry)

	for i := range out {
		w := i / perWord
		shift := uint((i - w*perWord) * bitsPerEntry)
		out[i] = T((words[w] >> shift) & mask)
	}
}

func fieldMask(bitsPerEntry int) uint64 {
	return 1<<uint(bitsPerEntry) - 1
}

func checkBits(bitsPerEntry int) {
	if bitsPerEntry <= 0 || bitsPerEntry > MaxBits {
		panic(fmt.Sprintf("bitpack: bits per entry %d outside [1, %d]", bitsPerEntry, MaxBits))
	}
}

func checkField(value int, mask uint64, bitsPerEntry int) uint64 {
	if value < 0 || uint64(value) > mask {
		panic(fmt.Sprintf("bitpack: value %d does not fit in %d bits", value, bitsPerEntry))
	}

	return uint64(value)
}

func checkLength(words []uint64, need, dimension, bitsPerEntry int) {
	if len(words) < need {
		panic(fmt.Sprintf("bitpack: %d words cannot hold %d³ entries at %d bits (%d required)",
			len(words), dimension, bitsPerEntry, need))
	}
}
