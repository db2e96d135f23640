package pool

import "sync"

// SlicePool recycles slices of T that all share the same length.
//
// It backs the per-worker scratch buffers used by bulk palette writes: every
// slice handed out is owned exclusively by the caller until it is returned.
type SlicePool[T any] struct {
	pool sync.Pool
	size int
}

// NewSlicePool creates a pool of slices of the given length.
func NewSlicePool[T any](size int) *SlicePool[T] {
	p := &SlicePool[T]{size: size}
	p.pool.New = func() any {
		s := make([]T, size)
		return &s
	}

	return p
}

// Size returns the length of the slices handed out by the pool.
func (p *SlicePool[T]) Size() int {
	return p.size
}

// Get retrieves a slice of length Size. The caller must call the returned
// cleanup function, typically with defer, to give the slice back.
//
// Example:
//
//	buf, cleanup := p.Get()
//	defer cleanup()
func (p *SlicePool[T]) Get() ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	if cap(*ptr) < p.size {
		*ptr = make([]T, p.size)
	}
	*ptr = (*ptr)[:p.size]

	return *ptr, func() { p.pool.Put(ptr) }
}
