// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// BytePool hands out fixed-size byte slices, used as per-socket receive
// scratch areas. Slices go back to the pool when the socket closes.
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool creates a pool of size-byte buffers.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultRingCapacity
	}
	bp := &BytePool{size: size}
	bp.p.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return bp
}

// Size returns the length of buffers handed out by the pool.
func (b *BytePool) Size() int { return b.size }

// GetBuffer returns a buffer of exactly Size bytes.
func (b *BytePool) GetBuffer() []byte {
	bp := b.p.Get().(*[]byte)
	return (*bp)[:b.size]
}

// PutBuffer returns a buffer to the pool. Foreign buffers that are too
// small are dropped.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) < b.size {
		return
	}
	buf = buf[:b.size]
	b.p.Put(&buf)
}
