// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity byte ring used as a socket send buffer.
// Not safe for concurrent use; a ring is owned by exactly one socket.

package pool

// DefaultRingCapacity is the send buffer size of a socket.
const DefaultRingCapacity = 8192

// RingBuffer is a fixed-capacity circular byte buffer. It never grows:
// when it is full, Put accepts fewer bytes than offered and the producer
// has to retry later.
type RingBuffer struct {
	buf   []byte
	start int // offset of the first occupied byte, in [0, cap)
	n     int // occupied bytes, in [0, cap]
}

// NewRingBuffer allocates a ring of the given capacity.
// A non-positive capacity selects DefaultRingCapacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &RingBuffer{buf: make([]byte, capacity)}
}

// Put copies as much of p as fits into free space and returns the number
// of bytes written. The copy is split in two when it crosses the end of
// the backing array.
func (r *RingBuffer) Put(p []byte) int {
	w := min(len(p), len(r.buf)-r.n)
	written := 0
	for written < w {
		tail := (r.start + r.n) % len(r.buf)
		c := copy(r.buf[tail:], p[written:w])
		r.n += c
		written += c
	}
	return written
}

// Get returns the longest contiguous run of occupied bytes starting at the
// read position. The run is shorter than Len when the data wraps; call
// Discard and then Get again for the rest. Get does not consume anything.
// The returned slice aliases the ring and is valid until the next Put.
func (r *RingBuffer) Get() []byte {
	if r.n == 0 {
		return nil
	}
	end := min(r.start+r.n, len(r.buf))
	return r.buf[r.start:end:end]
}

// Discard consumes up to k bytes from the front and returns how many were
// consumed.
func (r *RingBuffer) Discard(k int) int {
	k = max(0, min(k, r.n))
	r.start = (r.start + k) % len(r.buf)
	r.n -= k
	if r.n == 0 {
		r.start = 0
	}
	return k
}

// Len returns the number of occupied bytes.
func (r *RingBuffer) Len() int { return r.n }

// Cap returns the fixed capacity.
func (r *RingBuffer) Cap() int { return len(r.buf) }

// Free returns the number of bytes Put can still accept.
func (r *RingBuffer) Free() int { return len(r.buf) - r.n }

// Empty reports whether nothing is buffered.
func (r *RingBuffer) Empty() bool { return r.n == 0 }

// Full reports whether no more bytes can be accepted.
func (r *RingBuffer) Full() bool { return r.n == len(r.buf) }

// Reset drops all buffered bytes.
func (r *RingBuffer) Reset() {
	r.start, r.n = 0, 0
}
