package blob

import (
	"fmt"
	"iter"

	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/palette"
)

// Section is one 16³ slice of a column.
type Section struct {
	// Y is the section coordinate, counted in sections rather than blocks.
	Y int32
	// Blocks holds the block-state ids.
	Blocks *palette.Palette
	// Biomes holds the biome ids at 4×4×4 resolution.
	Biomes *palette.Palette
}

// Column is a vertical stack of consecutive sections.
type Column struct {
	minSection int32
	sections   []Section
}

// NewColumn creates a column whose first section is at minSection.
// The Y of each given section is reassigned from its position.
func NewColumn(minSection int32, sections ...Section) *Column {
	c := &Column{minSection: minSection, sections: make([]Section, len(sections))}
	for i, s := range sections {
		s.Y = minSection + int32(i) //nolint: gosec
		c.sections[i] = s
	}

	return c
}

// NewEmptyColumn creates count sections of air and the given biome, starting at minSection.
func NewEmptyColumn(minSection int32, count, biome, biomeDirectBits int) (*Column, error) {
	sections := make([]Section, count)
	for i := range sections {
		biomes, err := palette.NewBiomes(biomeDirectBits)
		if err != nil {
			return nil, err
		}
		if biome < 0 || biome > biomes.MaxValue() {
			return nil, fmt.Errorf("%w: biome %d", errs.ErrValueOutOfRange, biome)
		}
		biomes.Fill(biome)
		sections[i] = Section{Blocks: palette.NewBlocks(), Biomes: biomes}
	}

	return NewColumn(minSection, sections...), nil
}

// Len returns the number of sections.
func (c *Column) Len() int { return len(c.sections) }

// MinSection returns the y coordinate of the lowest section.
func (c *Column) MinSection() int32 { return c.minSection }

// MaxSection returns the y coordinate of the highest section.
func (c *Column) MaxSection() int32 { return c.minSection + int32(len(c.sections)) - 1 } //nolint: gosec

// Section returns the section at y.
func (c *Column) Section(y int32) (Section, bool) {
	i := int(y - c.minSection)
	if y < c.minSection || i >= len(c.sections) {
		return Section{}, false
	}

	return c.sections[i], true
}

// All returns an iterator over the sections from bottom to top.
func (c *Column) All() iter.Seq2[int32, Section] {
	return func(yield func(int32, Section) bool) {
		for _, s := range c.sections {
			if !yield(s.Y, s) {
				return
			}
		}
	}
}

// Encode encodes the column with a new ColumnEncoder.
func (c *Column) Encode(opts ...ColumnEncoderOption) ([]byte, error) {
	enc, err := NewColumnEncoder(c.minSection, opts...)
	if err != nil {
		return nil, err
	}
	for _, s := range c.sections {
		if err := enc.AddSection(s.Blocks, s.Biomes); err != nil {
			return nil, err
		}
	}

	return enc.Finish()
}
