package rawbridge

import (
	"fmt"
	"unsafe"
)

// AlignedBuffer is a byte buffer whose usable region starts on a fixed
// alignment boundary. The engine requires audio decode buffers aligned to
// AudioBufferAlign bytes; Go's allocator gives no such guarantee, so the
// buffer over-allocates and keeps the original allocation for release.
type AlignedBuffer struct {
	base []byte // original allocation, pins the memory
	buf  []byte // aligned sub-slice of base
}

// NewAlignedBuffer allocates size bytes aligned to align, which must be a
// power of two.
func NewAlignedBuffer(size, align int) (*AlignedBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrBufferAlloc, size)
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("%w: alignment %d is not a power of two", ErrBufferAlloc, align)
	}

	base := make([]byte, size+align-1)
	addr := uintptr(unsafe.Pointer(&base[0]))
	off := 0
	if rem := addr & uintptr(align-1); rem != 0 {
		off = align - int(rem)
	}

	return &AlignedBuffer{
		base: base,
		buf:  base[off : off+size],
	}, nil
}

// Bytes returns the aligned region.
func (b *AlignedBuffer) Bytes() []byte {
	return b.buf
}
