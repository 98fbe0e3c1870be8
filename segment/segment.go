// Package segment defines the (buffer, offset, access, name, copy-on-write)
// tuple an intervalmap.Map node holds as its value when used as an
// addrmap.AddressMap, and the policy that decides when two adjacent
// segments may be merged or how one is split.
package segment

import (
	"github.com/mdheller/addrmap/access"
	"github.com/mdheller/addrmap/addr"
	"github.com/mdheller/addrmap/buffer"
)

// Segment is a window, starting at Offset, into a shared Buffer. The
// interval of addresses it occupies is held by the enclosing map node, not
// by the segment itself.
type Segment[A addr.Unsigned, T any] struct {
	Buffer buffer.Buffer[A, T]
	Offset A
	Access access.Bits
	Name   string

	// COW, when set, means the next write through this segment must clone
	// Buffer before mutating it, and must retarget every other segment that
	// still points at the old buffer to the clone.
	COW bool
}

// New returns a Segment with no access bits and no name, at offset 0 into
// buf.
func New[A addr.Unsigned, T any](buf buffer.Buffer[A, T]) Segment[A, T] {
	return Segment[A, T]{Buffer: buf}
}

// IsAccessible reports whether the segment has every bit in required and
// none of the bits in prohibited.
func (s Segment[A, T]) IsAccessible(required, prohibited access.Bits) bool {
	return s.Access.Satisfies(required, prohibited)
}

// MergePolicy implements the spec's invariant 3 (adjacent-node merging) and
// invariant 4 (node splitting), ported from Sawyer's
// SegmentMergePolicy::merge/split. It has no truncate operation.
type MergePolicy[A addr.Unsigned, T any] struct{}

// Merge reports whether the segment ending at leftInterval.Greatest() and
// the segment starting at rightInterval.Least() (which must be adjacent,
// leftInterval.Greatest()+1 == rightInterval.Least()) may be collapsed into
// one segment: same access bits, same name, same buffer identity, and a
// contiguous buffer slice.
func (p MergePolicy[A, T]) Merge(leftInterval addr.Interval[A], left Segment[A, T], rightInterval addr.Interval[A], right Segment[A, T]) bool {
	size, overflowed := leftInterval.Size()
	if overflowed {
		return false // leftInterval is the whole address space; nothing can be adjacent to it
	}
	return left.Access == right.Access &&
		left.Name == right.Name &&
		left.Buffer == right.Buffer &&
		left.Offset+size == right.Offset
}

// Split cuts segment at splitPoint, which must lie within interval, and
// returns the segment for the upper half [splitPoint, interval.Greatest()].
// The caller keeps the original (unmodified) segment for the lower half.
func (p MergePolicy[A, T]) Split(interval addr.Interval[A], segment Segment[A, T], splitPoint A) Segment[A, T] {
	right := segment
	right.Offset = segment.Offset + (splitPoint - interval.Least())
	return right
}
