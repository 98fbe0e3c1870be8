// Package buffer defines the storage contract addrmap segments consume and
// provides a minimal, reference-counted, slice-backed implementation of it
// for tests and simple in-memory use. Real binary-backed or memory-mapped
// buffers are an external collaborator's responsibility; see spec.md §1.
package buffer

import (
	"sync/atomic"

	"github.com/mdheller/addrmap/addr"
)

// Buffer is random-access storage of values of type T, addressed by A,
// shared (reference-counted) across every Segment that points into it.
type Buffer[A addr.Unsigned, T any] interface {
	// Available returns how many values are readable starting at offset.
	Available(offset A) A

	// Read copies up to n values starting at offset into dst, returning the
	// number actually copied. Implementations must return exactly n when
	// offset+n <= Available(offset).
	Read(dst []T, offset A, n A) A

	// Write copies up to n values from src into the buffer starting at
	// offset, returning the number actually copied.
	Write(src []T, offset A, n A) A

	// Copy returns an independent deep copy with the same Available.
	Copy() Buffer[A, T]

	// IsImmutable is a hint that Write should never succeed on this buffer.
	// The core additionally always honors the segment's own IMMUTABLE access
	// bit regardless of what this reports.
	IsImmutable() bool
}

// SliceBuffer is a reference Buffer implementation backed by a Go slice, with
// an atomic reference count. The core never calls Retain/Release itself (it
// only ever holds a Buffer through a Segment), but a caller managing several
// AddressMaps that alias the same SliceBuffer can use them to know when it is
// safe to discard the backing slice.
type SliceBuffer[A addr.Unsigned, T any] struct {
	data      []T
	immutable bool
	refs      *int32
}

// NewSliceBuffer wraps data (not copied) in a new, unshared SliceBuffer.
func NewSliceBuffer[A addr.Unsigned, T any](data []T) *SliceBuffer[A, T] {
	refs := int32(1)
	return &SliceBuffer[A, T]{data: data, refs: &refs}
}

// NewImmutableSliceBuffer is NewSliceBuffer with IsImmutable() forced true,
// e.g. for data backed by a read-only mapping.
func NewImmutableSliceBuffer[A addr.Unsigned, T any](data []T) *SliceBuffer[A, T] {
	b := NewSliceBuffer[A, T](data)
	b.immutable = true
	return b
}

// Retain increments the reference count and returns the same buffer, for
// callers that want to track how many AddressMaps alias it.
func (b *SliceBuffer[A, T]) Retain() *SliceBuffer[A, T] {
	atomic.AddInt32(b.refs, 1)
	return b
}

// Release decrements the reference count, returning the count after
// decrementing.
func (b *SliceBuffer[A, T]) Release() int32 {
	return atomic.AddInt32(b.refs, -1)
}

// Available implements Buffer.
func (b *SliceBuffer[A, T]) Available(offset A) A {
	if uint64(offset) >= uint64(len(b.data)) {
		return 0
	}
	return A(len(b.data)) - offset
}

// Read implements Buffer.
func (b *SliceBuffer[A, T]) Read(dst []T, offset A, n A) A {
	avail := b.Available(offset)
	if n > avail {
		n = avail
	}
	copy(dst[:n], b.data[offset:offset+n])
	return n
}

// Write implements Buffer.
func (b *SliceBuffer[A, T]) Write(src []T, offset A, n A) A {
	if b.immutable {
		return 0
	}
	avail := b.Available(offset)
	if n > avail {
		n = avail
	}
	copy(b.data[offset:offset+n], src[:n])
	return n
}

// Copy implements Buffer, returning an independent SliceBuffer with a fresh
// refcount of 1.
func (b *SliceBuffer[A, T]) Copy() Buffer[A, T] {
	cp := make([]T, len(b.data))
	copy(cp, b.data)
	return NewSliceBuffer[A, T](cp)
}

// IsImmutable implements Buffer.
func (b *SliceBuffer[A, T]) IsImmutable() bool { return b.immutable }

// Len returns the number of values the buffer holds, for tests and
// diagnostics.
func (b *SliceBuffer[A, T]) Len() int { return len(b.data) }

// Bytes exposes the underlying slice directly; callers must not retain it
// across a Copy-on-write fan-out, since the map may repoint segments at a
// different slice entirely.
func (b *SliceBuffer[A, T]) Bytes() []T { return b.data }
