package pool

import (
	"io"
	"sync"
)

// Default sizes of the pooled buffers.
//
// A 16³ block palette at the 15-bit direct width needs 1024 words, so a
// single encoded section stays below 10KiB; a column of 24 sections with
// biomes fits in a quarter megabyte.
const (
	SectionBufferDefaultSize  = 1024 * 10       // 10KiB
	SectionBufferMaxThreshold = 1024 * 64       // 64KiB
	ColumnBufferDefaultSize   = 1024 * 256      // 256KiB
	ColumnBufferMaxThreshold  = 1024 * 1024 * 4 // 4MiB
	smallBufferGrowth         = 1024 * 4        // 4KiB
	largeBufferThreshold      = 1024 * 64       // 64KiB
)

// ByteBuffer is an append-only byte slice that can be recycled through a ByteBufferPool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the given initial capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the number of buffered bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Grow makes room for at least n more bytes without another allocation.
//
// Small buffers grow in 4KiB steps, buffers above 64KiB grow by a quarter of
// their capacity.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	growBy := smallBufferGrowth
	if cap(bb.B) > largeBufferThreshold {
		growBy = cap(bb.B) / 4
	}
	growBy = max(growBy, n)

	buf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(buf, bb.B)
	bb.B = buf
}

// Write implements io.Writer. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo implements io.WriterTo.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// Clone returns a copy of the buffered bytes that does not alias the buffer.
func (bb *ByteBuffer) Clone() []byte {
	out := make([]byte, len(bb.B))
	copy(out, bb.B)

	return out
}

// ByteBufferPool recycles ByteBuffers.
//
// Buffers that grew beyond maxThreshold are dropped on Put so one oversized
// column does not pin memory for the lifetime of the process.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given default capacity.
// A maxThreshold of 0 keeps every buffer.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var (
	sectionPool = NewByteBufferPool(SectionBufferDefaultSize, SectionBufferMaxThreshold)
	columnPool  = NewByteBufferPool(ColumnBufferDefaultSize, ColumnBufferMaxThreshold)
)

// GetSectionBuffer retrieves a buffer sized for one encoded palette.
func GetSectionBuffer() *ByteBuffer {
	return sectionPool.Get()
}

// PutSectionBuffer returns a buffer obtained from GetSectionBuffer.
func PutSectionBuffer(bb *ByteBuffer) {
	sectionPool.Put(bb)
}

// GetColumnBuffer retrieves a buffer sized for an encoded column blob.
func GetColumnBuffer() *ByteBuffer {
	return columnPool.Get()
}

// PutColumnBuffer returns a buffer obtained from GetColumnBuffer.
func PutColumnBuffer(bb *ByteBuffer) {
	columnPool.Put(bb)
}
