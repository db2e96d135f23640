package palette

import "github.com/arloliu/voxpal/internal/pool"

// Scratch is the per-cell buffer used by SetAll and ReplaceAll.
//
// A Scratch belongs to one goroutine at a time. Reusing it across calls
// avoids allocating a dimension³ buffer for every bulk write.
type Scratch struct {
	buf []int32
}

// NewScratch creates a buffer for palettes of up to size cells.
func NewScratch(size int) *Scratch {
	return &Scratch{buf: make([]int32, size)}
}

// values returns a slice of at least n cells. A nil Scratch allocates.
func (s *Scratch) values(n int) []int32 {
	if s == nil {
		return make([]int32, n)
	}
	if cap(s.buf) < n {
		s.buf = make([]int32, n)
	}
	s.buf = s.buf[:n]

	return s.buf
}

// ScratchPool hands out Scratch buffers to concurrent workers.
type ScratchPool struct {
	pool *pool.SlicePool[int32]
}

// NewScratchPool creates a pool of buffers for palettes of the given dimension.
func NewScratchPool(dimension int) *ScratchPool {
	return &ScratchPool{pool: pool.NewSlicePool[int32](dimension * dimension * dimension)}
}

// Get returns a Scratch owned by the caller until the returned release
// function is called.
//
// Example:
//
//	scratch, release := scratchPool.Get()
//	defer release()
//	p.SetAll(generate, scratch)
func (sp *ScratchPool) Get() (*Scratch, func()) {
	buf, cleanup := sp.pool.Get()
	return &Scratch{buf: buf}, cleanup
}
