package palette

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/voxpal/errs"
)

// requireConsistent checks the cached count against a full scan.
func requireConsistent(t *testing.T, p *Palette) {
	t.Helper()

	present := 0
	p.GetAllPresent(func(_, _, _, v int) {
		require.NotZero(t, v)
		present++
	})
	require.Equal(t, present, p.Count(), "cached count drifted from cell contents: %s", p)

	if p.Mode() == ModeIndirect {
		require.Equal(t, 0, p.table[0], "table slot 0 must hold the default id")
		require.LessOrEqual(t, len(p.table), 1<<p.bitsPerEntry)
	}
}

func newBlocks(t *testing.T) *Palette {
	t.Helper()
	return NewBlocks()
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name                                   string
		dimension, minBits, maxBits, directBit int
		wantErr                                error
	}{
		{"blocks", 16, 4, 8, 15, nil},
		{"biomes", 4, 1, 3, 6, nil},
		{"dimension_one", 1, 1, 3, 6, errs.ErrInvalidDimension},
		{"dimension_not_power_of_two", 12, 4, 8, 15, errs.ErrInvalidDimension},
		{"dimension_too_large", 512, 4, 8, 15, errs.ErrInvalidDimension},
		{"zero_min_bits", 16, 0, 8, 15, errs.ErrInvalidBitsRange},
		{"inverted_bounds", 16, 8, 4, 15, errs.ErrInvalidBitsRange},
		{"equal_bounds", 16, 4, 4, 15, errs.ErrInvalidBitsRange},
		{"direct_not_above_max", 16, 4, 8, 8, errs.ErrInvalidBitsRange},
		{"direct_too_wide", 16, 4, 8, 32, errs.ErrInvalidBitsRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.dimension, tt.minBits, tt.maxBits, tt.directBit)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, p)

				return
			}
			require.NoError(t, err)
			require.Equal(t, ModeSingle, p.Mode())
			require.True(t, p.IsEmpty())
			v, ok := p.SingleValue()
			require.True(t, ok)
			require.Zero(t, v)
		})
	}
}

func TestNewSized(t *testing.T) {
	p, err := NewSized(16, 4, 8, 15, 6)
	require.NoError(t, err)
	require.Equal(t, ModeIndirect, p.Mode())
	require.Equal(t, 6, p.BitsPerEntry())
	require.Equal(t, []int{0}, p.Table())
	require.Len(t, p.Words(), 410)
	require.Zero(t, p.Get(15, 15, 15))

	p, err = NewSized(16, 4, 8, 15, 15)
	require.NoError(t, err)
	require.Equal(t, ModeDirect, p.Mode())
	require.Nil(t, p.Table())

	_, err = NewSized(16, 4, 8, 15, 3)
	require.ErrorIs(t, err, errs.ErrInvalidBitsPerEntry)
	_, err = NewSized(16, 4, 8, 15, 12)
	require.ErrorIs(t, err, errs.ErrInvalidBitsPerEntry)
}

func TestBiomeDirectBits(t *testing.T) {
	require.Equal(t, 4, BiomeDirectBits(1))
	require.Equal(t, 4, BiomeDirectBits(16))
	require.Equal(t, 5, BiomeDirectBits(17))
	require.Equal(t, 6, BiomeDirectBits(64))
	require.Equal(t, 7, BiomeDirectBits(65))

	p, err := NewBiomes(BiomeDirectBits(65))
	require.NoError(t, err)
	require.Equal(t, 4, p.Dimension())
	require.Equal(t, 127, p.MaxValue())
}

func TestSetGet(t *testing.T) {
	p := newBlocks(t)

	p.Set(0, 0, 0, 1)
	require.Equal(t, ModeIndirect, p.Mode())
	require.Equal(t, 4, p.BitsPerEntry())
	require.Equal(t, 1, p.Get(0, 0, 0))
	require.Equal(t, 0, p.Get(1, 0, 0))
	require.Equal(t, 1, p.Count())

	p.Set(15, 15, 15, 20000>>2)
	require.Equal(t, 5000, p.Get(15, 15, 15))
	require.Equal(t, 2, p.Count())

	p.Set(0, 0, 0, 0)
	require.Equal(t, 1, p.Count())
	require.Equal(t, 0, p.Get(0, 0, 0))
	requireConsistent(t, p)
}

func TestSet_SameValueInSingleMode(t *testing.T) {
	p := newBlocks(t)
	p.Fill(7)
	p.Set(3, 3, 3, 7)
	require.Equal(t, ModeSingle, p.Mode())
	require.Equal(t, 4096, p.Count())
}

func TestSet_FromFilledSingle(t *testing.T) {
	p := newBlocks(t)
	p.Fill(9)
	p.Set(1, 1, 1, 0)

	require.Equal(t, ModeIndirect, p.Mode())
	require.Equal(t, []int{0, 9}, p.Table())
	require.Equal(t, 4095, p.Count())
	require.Equal(t, 9, p.Get(0, 0, 0))
	require.Equal(t, 0, p.Get(1, 1, 1))
	requireConsistent(t, p)
}

func TestSet_Panics(t *testing.T) {
	p := newBlocks(t)
	p.Set(0, 0, 0, 5)
	before := p.Clone()

	requirePanicsWith(t, errs.ErrCoordinateOutOfRange, func() { p.Set(16, 0, 0, 1) })
	requirePanicsWith(t, errs.ErrCoordinateOutOfRange, func() { p.Set(0, -1, 0, 1) })
	requirePanicsWith(t, errs.ErrCoordinateOutOfRange, func() { _ = p.Get(0, 0, 16) })
	requirePanicsWith(t, errs.ErrNegativeValue, func() { p.Set(0, 0, 0, -1) })
	requirePanicsWith(t, errs.ErrValueOutOfRange, func() { p.Set(0, 0, 0, 1<<MaxDirectBits) })
	requirePanicsWith(t, errs.ErrNegativeValue, func() { p.Fill(-3) })
	requirePanicsWith(t, errs.ErrValueOutOfRange, func() { p.Fill(1 << 40) })

	require.True(t, p.Equal(before))
	require.Equal(t, before.Words(), p.Words())
	require.Equal(t, BlockDirectBits, p.DirectBits())
}

func TestSet_WideValueGrowsDirectBits(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(1, 2, 3, 40000)
		require.Equal(t, 40000, p.Get(1, 2, 3))
		require.Equal(t, 16, p.DirectBits())
		require.Equal(t, 1<<16-1, p.MaxValue())
		require.Equal(t, ModeIndirect, p.Mode())
		requireConsistent(t, p)
	})

	t.Run("direct", func(t *testing.T) {
		p := newBlocks(t)
		p.SetAll(func(x, y, z int) int { return x + 16*z + 256*y }, nil)
		require.Equal(t, ModeDirect, p.Mode())

		p.Set(0, 0, 0, 1<<17)
		require.Equal(t, 18, p.DirectBits())
		require.Equal(t, 18, p.BitsPerEntry())
		require.Equal(t, 1<<17, p.Get(0, 0, 0))
		require.Equal(t, 5+16*6+256*7, p.Get(5, 7, 6))
		requireConsistent(t, p)
	})

	t.Run("fill", func(t *testing.T) {
		p := newBlocks(t)
		p.Fill(1 << 24)
		require.Equal(t, 25, p.DirectBits())
		v, single := p.SingleValue()
		require.True(t, single)
		require.Equal(t, 1<<24, v)
	})

	t.Run("set_all", func(t *testing.T) {
		p, err := NewBiomes(4)
		require.NoError(t, err)
		p.SetAll(func(x, y, z int) int { return 100 * (x + y + z) }, nil)
		require.Equal(t, 10, p.DirectBits())
		require.Equal(t, ModeDirect, p.Mode())
		require.Equal(t, 900, p.Get(3, 3, 3))
		require.Equal(t, 400, p.Get(1, 2, 1))
		requireConsistent(t, p)
	})

	t.Run("set_all_rejects_before_growing", func(t *testing.T) {
		p := newBlocks(t)
		requirePanicsWith(t, errs.ErrNegativeValue, func() {
			p.SetAll(func(x, _, _ int) int {
				if x == 15 {
					return -1
				}

				return 1 << 20
			}, nil)
		})
		require.Equal(t, BlockDirectBits, p.DirectBits())
		require.True(t, p.IsEmpty())
	})
}

func requirePanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()

	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, target)
	}()
	fn()
}

// Indirect tables grow one bit at a time (4 -> 5 -> ... -> 8) before the
// palette converts to direct ids.
func TestTransitions_ScenarioA(t *testing.T) {
	p, err := NewSized(16, 4, 8, 15, 4)
	require.NoError(t, err)

	for id := 1; id <= 300; id++ {
		i := id - 1
		p.Set(i%16, i/256, (i/16)%16, id)

		switch {
		case id <= 15:
			require.Equal(t, 4, p.BitsPerEntry(), "id %d", id)
		case id <= 31:
			require.Equal(t, 5, p.BitsPerEntry(), "id %d", id)
		case id <= 255:
			require.Equal(t, ModeIndirect, p.Mode(), "id %d", id)
		default:
			require.Equal(t, ModeDirect, p.Mode(), "id %d", id)
		}
	}

	require.Equal(t, 15, p.BitsPerEntry())
	require.Nil(t, p.Table())
	require.Equal(t, 300, p.Count())
	for id := 1; id <= 300; id++ {
		i := id - 1
		require.Equal(t, id, p.Get(i%16, i/256, (i/16)%16))
	}
	requireConsistent(t, p)
}

func TestFill(t *testing.T) {
	p := newBlocks(t)
	p.Set(1, 2, 3, 4)
	p.Set(4, 3, 2, 1)

	p.Fill(3)
	require.Equal(t, ModeSingle, p.Mode())
	require.Nil(t, p.Words())
	require.Equal(t, 4096, p.Count())
	v, ok := p.SingleValue()
	require.True(t, ok)
	require.Equal(t, 3, v)
	p.GetAll(func(_, _, _, value int) { require.Equal(t, 3, value) })

	p.Fill(0)
	require.Zero(t, p.Count())
	require.True(t, p.IsEmpty())
}

func TestFillRegion(t *testing.T) {
	t.Run("partial", func(t *testing.T) {
		p := newBlocks(t)
		p.FillRegion(5, Region{MinX: 2, MinY: 3, MinZ: 4, MaxX: 6, MaxY: 5, MaxZ: 8})

		require.Equal(t, 4*2*4, p.Count())
		require.Equal(t, 5, p.Get(2, 3, 4))
		require.Equal(t, 5, p.Get(5, 4, 7))
		require.Equal(t, 0, p.Get(6, 4, 7))
		require.Equal(t, 0, p.Get(2, 5, 4))
		requireConsistent(t, p)
	})

	t.Run("clipped", func(t *testing.T) {
		p := newBlocks(t)
		p.FillRegion(2, Region{MinX: -5, MinY: 14, MinZ: -1, MaxX: 3, MaxY: 40, MaxZ: 1})
		require.Equal(t, 3*2*1, p.Count())
		require.Equal(t, 2, p.Get(0, 15, 0))
		requireConsistent(t, p)
	})

	t.Run("empty_and_inverted", func(t *testing.T) {
		p := newBlocks(t)
		p.FillRegion(2, Region{MinX: 5, MaxX: 5, MaxY: 16, MaxZ: 16})
		p.FillRegion(2, Region{MinX: 8, MaxX: 3, MaxY: 16, MaxZ: 16})
		p.FillRegion(2, Region{MinX: 16, MaxX: 20, MaxY: 16, MaxZ: 16})
		require.Equal(t, ModeSingle, p.Mode())
		require.Zero(t, p.Count())
	})

	t.Run("whole_cube", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(0, 0, 0, 9)
		p.FillRegion(4, Region{MinX: -1, MinY: -1, MinZ: -1, MaxX: 99, MaxY: 99, MaxZ: 99})
		require.Equal(t, ModeSingle, p.Mode())
		require.Equal(t, 4096, p.Count())
	})

	t.Run("clear_with_default", func(t *testing.T) {
		p := newBlocks(t)
		p.Fill(8)
		p.FillRegion(0, Region{MaxX: 16, MaxY: 8, MaxZ: 16})
		require.Equal(t, 2048, p.Count())
		require.Equal(t, 8, p.Get(0, 8, 0))
		require.Equal(t, 0, p.Get(0, 7, 0))
		requireConsistent(t, p)
	})

	t.Run("grows_table", func(t *testing.T) {
		p := newBlocks(t)
		for v := 1; v <= 20; v++ {
			p.FillRegion(v, Region{MinX: 0, MinY: v - 1, MinZ: 0, MaxX: 16, MaxY: v, MaxZ: 8})
		}
		require.Equal(t, 5, p.BitsPerEntry())
		require.Equal(t, 20*16*8, p.Count())
		require.Equal(t, 15, p.Get(3, 14, 7))
		requireConsistent(t, p)
	})
}

func TestReplace_ScenarioD(t *testing.T) {
	build := func() *Palette {
		p := newBlocks(t)
		p.FillRegion(7, Region{MaxX: 16, MaxY: 2, MaxZ: 16})
		p.FillRegion(9, Region{MinY: 2, MaxX: 4, MaxY: 3, MaxZ: 16})
		return p
	}

	t.Run("both_present_nondefault", func(t *testing.T) {
		p := build()
		words := append([]uint64(nil), p.Words()...)
		count := p.Count()

		p.Replace(7, 9)
		require.Equal(t, words, p.Words(), "packed data must not change")
		require.Equal(t, count, p.Count())
		require.Equal(t, 9, p.Get(0, 0, 0))
		require.Zero(t, p.CountValue(7))
		require.False(t, p.Any(7))
		requireConsistent(t, p)

		p.Set(5, 5, 5, 7)
		require.Equal(t, 7, p.Get(5, 5, 5))
		require.Equal(t, 9, p.Get(1, 1, 1))
		requireConsistent(t, p)
	})

	t.Run("to_default", func(t *testing.T) {
		p := build()
		words := append([]uint64(nil), p.Words()...)
		sevens := p.CountValue(7)
		count := p.Count()

		p.Replace(7, 0)
		require.Equal(t, words, p.Words())
		require.Equal(t, count-sevens, p.Count())
		require.Equal(t, 0, p.Get(3, 1, 3))
		requireConsistent(t, p)
	})

	t.Run("from_default", func(t *testing.T) {
		p := build()
		p.Replace(0, 3)
		require.Equal(t, 4096, p.Count())
		require.Equal(t, 3, p.Get(10, 10, 10))
		require.Equal(t, 7, p.Get(10, 0, 10))
		requireConsistent(t, p)
	})

	t.Run("absent", func(t *testing.T) {
		p := build()
		before := p.Clone()
		p.Replace(42, 1)
		require.True(t, p.Equal(before))
	})

	t.Run("single", func(t *testing.T) {
		p := newBlocks(t)
		p.Fill(4)
		p.Replace(4, 0)
		require.True(t, p.IsEmpty())
		p.Replace(1, 5)
		require.True(t, p.IsEmpty())
	})

	t.Run("direct", func(t *testing.T) {
		p := build()
		p.Optimize(OptimizeSpeed)
		require.Equal(t, ModeDirect, p.Mode())

		p.Replace(9, 0)
		require.Equal(t, 512, p.Count())
		p.Replace(0, 1)
		require.Equal(t, 4096, p.Count())
		require.Equal(t, 1, p.Get(0, 2, 0))
		requireConsistent(t, p)
	})
}

func TestReplaceAt(t *testing.T) {
	p := newBlocks(t)
	p.Set(2, 2, 2, 10)
	p.ReplaceAt(2, 2, 2, func(v int) int { return v + 1 })
	require.Equal(t, 11, p.Get(2, 2, 2))
	p.ReplaceAt(2, 2, 2, func(int) int { return 0 })
	require.True(t, p.IsEmpty())
}

func TestSetAll(t *testing.T) {
	t.Run("varied", func(t *testing.T) {
		p := newBlocks(t)
		p.SetAll(func(x, y, z int) int { return (x + y + z) % 5 }, NewScratch(4096))

		require.Equal(t, ModeDirect, p.Mode())
		require.Equal(t, 3, p.Get(1, 1, 1))
		require.Equal(t, 4096-p.CountValue(0), p.Count())
		requireConsistent(t, p)
	})

	t.Run("constant", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(0, 0, 0, 3)
		p.SetAll(func(_, _, _ int) int { return 6 }, nil)
		require.Equal(t, ModeSingle, p.Mode())
		require.Equal(t, 4096, p.Count())
	})

	t.Run("invalid_value_leaves_palette", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(0, 0, 0, 3)
		before := p.Clone()
		requirePanicsWith(t, errs.ErrNegativeValue, func() {
			p.SetAll(func(x, _, _ int) int { return 1 - x }, nil)
		})
		require.True(t, p.Equal(before))
	})
}

func TestReplaceAll(t *testing.T) {
	p := newBlocks(t)
	p.FillRegion(2, Region{MaxX: 16, MaxY: 8, MaxZ: 16})

	pool := NewScratchPool(16)
	scratch, release := pool.Get()
	defer release()

	p.ReplaceAll(func(x, _, _, v int) int {
		if v == 2 {
			return 2 + x%2
		}

		return v
	}, scratch)
	require.Equal(t, 2048, p.Count())
	require.Equal(t, 1024, p.CountValue(3))
	require.Equal(t, 3, p.Get(1, 0, 0))
	require.Equal(t, 0, p.Get(1, 8, 0))
	requireConsistent(t, p)

	p.ReplaceAll(func(_, _, _, _ int) int { return 0 }, scratch)
	require.Equal(t, ModeSingle, p.Mode())
	require.True(t, p.IsEmpty())
}

func TestCountAndAny(t *testing.T) {
	p := newBlocks(t)
	require.Equal(t, 4096, p.CountValue(0))
	require.True(t, p.Any(0))
	require.False(t, p.Any(1))

	p.FillRegion(4, Region{MaxX: 16, MaxY: 1, MaxZ: 16})
	p.Set(0, 5, 0, 6)
	require.Equal(t, 257, p.Count())
	require.Equal(t, 256, p.CountValue(4))
	require.Equal(t, 1, p.CountValue(6))
	require.Zero(t, p.CountValue(123))
	require.Equal(t, 4096-257, p.CountValue(0))
	require.True(t, p.Any(6))
	require.False(t, p.Any(123))

	p.Fill(4)
	require.False(t, p.Any(0))
	require.Equal(t, 4096, p.CountValue(4))
}

func TestGetAll_Order(t *testing.T) {
	p, err := New(4, 1, 3, 6)
	require.NoError(t, err)
	p.Set(1, 2, 3, 5)

	var cells [][3]int
	p.GetAll(func(x, y, z, _ int) { cells = append(cells, [3]int{x, y, z}) })
	require.Len(t, cells, 64)
	require.Equal(t, [3]int{0, 0, 0}, cells[0])
	require.Equal(t, [3]int{1, 0, 0}, cells[1])
	require.Equal(t, [3]int{0, 0, 1}, cells[4])
	require.Equal(t, [3]int{0, 1, 0}, cells[16])

	var present []int
	p.GetAllPresent(func(x, y, z, v int) {
		require.Equal(t, [3]int{1, 2, 3}, [3]int{x, y, z})
		present = append(present, v)
	})
	require.Equal(t, []int{5}, present)
}

func TestHeight(t *testing.T) {
	p := newBlocks(t)
	solid := func(_, _, _, v int) bool { return v != 0 }
	require.Equal(t, -1, p.Height(3, 3, solid))

	p.FillRegion(1, Region{MaxX: 16, MaxY: 6, MaxZ: 16})
	p.Set(3, 11, 3, 2)
	require.Equal(t, 11, p.Height(3, 3, solid))
	require.Equal(t, 5, p.Height(4, 3, solid))

	p.Fill(1)
	require.Equal(t, 15, p.Height(0, 0, solid))

	requirePanicsWith(t, errs.ErrCoordinateOutOfRange, func() { p.Height(16, 0, solid) })
}

func TestOptimize(t *testing.T) {
	t.Run("size_downsizes", func(t *testing.T) {
		p := newBlocks(t)
		for v := 1; v <= 40; v++ {
			p.Set(v%16, v/16, 0, v)
		}
		require.Equal(t, 6, p.BitsPerEntry())
		for v := 3; v <= 40; v++ {
			p.Set(v%16, v/16, 0, 0)
		}
		before := p.Clone()

		p.Optimize(OptimizeSize)
		require.Equal(t, ModeIndirect, p.Mode())
		require.Equal(t, 4, p.BitsPerEntry())
		require.Equal(t, []int{0, 1, 2}, p.Table())
		require.True(t, p.Equal(before))
		requireConsistent(t, p)
	})

	t.Run("size_leaves_direct", func(t *testing.T) {
		p := newBlocks(t)
		p.SetAll(func(x, _, _ int) int { return x % 3 }, nil)
		require.Equal(t, ModeDirect, p.Mode())
		before := p.Clone()

		p.Optimize(OptimizeSize)
		require.Equal(t, ModeIndirect, p.Mode())
		require.Equal(t, 4, p.BitsPerEntry())
		require.True(t, p.Equal(before))
		requireConsistent(t, p)
	})

	t.Run("size_keeps_wide_direct", func(t *testing.T) {
		p := newBlocks(t)
		p.SetAll(func(x, y, z int) int { return x + 16*z + y }, nil)
		words := append([]uint64(nil), p.Words()...)

		p.Optimize(OptimizeSize)
		require.Equal(t, ModeDirect, p.Mode())
		require.Equal(t, words, p.Words())
	})

	t.Run("speed", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(1, 1, 1, 4)
		p.Set(2, 2, 2, 5)
		before := p.Clone()

		p.Optimize(OptimizeSpeed)
		require.Equal(t, ModeDirect, p.Mode())
		require.Equal(t, 15, p.BitsPerEntry())
		require.True(t, p.Equal(before))
		requireConsistent(t, p)
	})

	t.Run("single_distinct_value", func(t *testing.T) {
		for _, focus := range []Optimization{OptimizeSize, OptimizeSpeed} {
			p := newBlocks(t)
			p.Set(0, 0, 0, 4)
			p.FillRegion(4, Region{MinX: 1, MaxX: 16, MaxY: 16, MaxZ: 16})
			p.FillRegion(4, Region{MaxX: 1, MaxY: 16, MaxZ: 16})
			require.Equal(t, ModeIndirect, p.Mode())

			p.Optimize(focus)
			require.Equal(t, ModeSingle, p.Mode())
			require.Equal(t, 4, p.Get(9, 9, 9))
		}
	})

	t.Run("all_default", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(0, 0, 0, 4)
		p.Set(0, 0, 0, 0)
		p.Optimize(OptimizeSize)
		require.Equal(t, ModeSingle, p.Mode())
		require.True(t, p.IsEmpty())
	})
}

func TestEqual(t *testing.T) {
	a := newBlocks(t)
	b := newBlocks(t)
	require.True(t, a.Equal(b))

	a.Fill(3)
	b.Set(0, 0, 0, 1)
	b.FillRegion(3, Region{MinX: 1, MaxX: 16, MaxY: 16, MaxZ: 16})
	b.FillRegion(3, Region{MaxX: 1, MaxY: 16, MaxZ: 16})
	require.Equal(t, ModeIndirect, b.Mode())
	require.True(t, a.Equal(b), "single and indirect encodings of the same cube")

	b.Set(0, 0, 0, 4)
	require.False(t, a.Equal(b))

	c := b.Clone()
	c.Optimize(OptimizeSpeed)
	require.True(t, b.Equal(c))

	c.Set(5, 5, 5, 3)
	require.True(t, b.Equal(c))
	c.Set(5, 5, 5, 2)
	require.False(t, b.Equal(c))

	biomes, err := NewBiomes(6)
	require.NoError(t, err)
	require.False(t, biomes.Equal(newBlocks(t)))
	require.False(t, a.Equal(nil))
}

func TestClone_Independent(t *testing.T) {
	p := newBlocks(t)
	p.Set(1, 1, 1, 8)
	p.Set(2, 2, 2, 9)

	c := p.Clone()
	c.Set(1, 1, 1, 3)
	c.Set(3, 3, 3, 12)
	c.Replace(9, 10)

	require.Equal(t, 8, p.Get(1, 1, 1))
	require.Equal(t, 9, p.Get(2, 2, 2))
	require.Equal(t, 0, p.Get(3, 3, 3))
	require.Equal(t, []int{0, 8, 9}, p.Table())
	require.Equal(t, 2, p.Count())
	require.Equal(t, 3, c.Count())
}

func TestOffset(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		p := newBlocks(t)
		require.NoError(t, p.Offset(5))
		require.Equal(t, 5, p.Get(0, 0, 0))
		require.Equal(t, 4096, p.Count())
	})

	t.Run("indirect", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(0, 0, 0, 3)
		require.NoError(t, p.Offset(2))
		require.Equal(t, 5, p.Get(0, 0, 0))
		require.Equal(t, 2, p.Get(1, 0, 0))
		require.Equal(t, 4096, p.Count())
		requireConsistent(t, p)

		require.NoError(t, p.Offset(-2))
		require.Equal(t, 3, p.Get(0, 0, 0))
		require.Equal(t, 1, p.Count())
		requireConsistent(t, p)
	})

	t.Run("direct", func(t *testing.T) {
		p := newBlocks(t)
		p.SetAll(func(x, y, z int) int { return x + 16*z + y }, nil)
		require.NoError(t, p.Offset(100))
		require.Equal(t, ModeDirect, p.Mode())
		require.Equal(t, 100+1+32+3, p.Get(1, 3, 2))
		requireConsistent(t, p)
	})

	t.Run("out_of_range", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(0, 0, 0, 3)
		before := p.Clone()

		require.ErrorIs(t, p.Offset(-1), errs.ErrNegativeValue)
		require.ErrorIs(t, p.Offset(1<<MaxDirectBits), errs.ErrValueOutOfRange)
		require.True(t, p.Equal(before))
		require.Equal(t, BlockDirectBits, p.DirectBits())
	})

	t.Run("widens", func(t *testing.T) {
		p := newBlocks(t)
		p.Set(0, 0, 0, 3)
		require.NoError(t, p.Offset(1<<15))
		require.Equal(t, 16, p.DirectBits())
		require.Equal(t, 3+1<<15, p.Get(0, 0, 0))
		require.Equal(t, 1<<15, p.Get(1, 1, 1))
		requireConsistent(t, p)
	})
}

func TestGrowDirectBits(t *testing.T) {
	p, err := NewBiomes(4)
	require.NoError(t, err)

	p.SetAll(func(x, y, z int) int { return x + y + z }, nil)
	require.Equal(t, ModeDirect, p.Mode())

	require.NoError(t, p.GrowDirectBits(6))
	require.Equal(t, 6, p.DirectBits())
	require.Equal(t, 6, p.BitsPerEntry())
	require.Equal(t, 9, p.Get(3, 3, 3))

	p.Set(0, 0, 0, 63)
	require.Equal(t, 63, p.Get(0, 0, 0))
	requireConsistent(t, p)

	require.NoError(t, p.GrowDirectBits(5), "narrowing is ignored")
	require.Equal(t, 6, p.DirectBits())
	require.ErrorIs(t, p.GrowDirectBits(40), errs.ErrInvalidBitsRange)
}

func TestModeString(t *testing.T) {
	require.Equal(t, "single", ModeSingle.String())
	require.Equal(t, "indirect", ModeIndirect.String())
	require.Equal(t, "direct", ModeDirect.String())
	require.Equal(t, "mode(9)", Mode(9).String())

	p := newBlocks(t)
	require.Equal(t, "palette(16³ single value=0)", p.String())
	p.Set(0, 0, 0, 1)
	require.Equal(t, "palette(16³ indirect bits=4 table=2 count=1)", p.String())
}
