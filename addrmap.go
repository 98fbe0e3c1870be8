package addrmap

import (
	"github.com/mdheller/addrmap/access"
	"github.com/mdheller/addrmap/addr"
	"github.com/mdheller/addrmap/intervalmap"
	"github.com/mdheller/addrmap/segment"
	"github.com/mewkiz/pkg/errutil"
	"github.com/pkg/errors"
)

// node is the (interval, segment) pair an AddressMap stores per entry.
type node[A addr.Unsigned, T any] = intervalmap.Node[A, segment.Segment[A, T]]

// AddressMap is an ordered, non-overlapping mapping from address intervals
// to Segments. The zero value is not usable; construct one with New.
type AddressMap[A addr.Unsigned, T any] struct {
	m *intervalmap.Map[A, segment.Segment[A, T]]
}

// New returns an empty AddressMap.
func New[A addr.Unsigned, T any]() *AddressMap[A, T] {
	return &AddressMap[A, T]{m: intervalmap.New[A, segment.Segment[A, T]](segment.MergePolicy[A, T]{})}
}

// Insert maps interval to seg, replacing and/or splitting whatever was there
// before, and merging with either neighbor if MergePolicy allows it.
func (m *AddressMap[A, T]) Insert(interval addr.Interval[A], seg segment.Segment[A, T]) {
	m.m.Insert(interval, seg)
}

// Erase unconditionally unmaps every address in interval.
func (m *AddressMap[A, T]) Erase(interval addr.Interval[A]) {
	m.m.Erase(interval)
}

// IsEmpty reports whether the map has no segments.
func (m *AddressMap[A, T]) IsEmpty() bool { return m.m.IsEmpty() }

// NSegments returns the number of distinct mapped nodes.
func (m *AddressMap[A, T]) NSegments() int { return m.m.NIntervals() }

// Hull returns the smallest interval containing every mapped address, and
// false if the map is empty.
func (m *AddressMap[A, T]) Hull() (addr.Interval[A], bool) { return m.m.Hull() }

// Nodes returns every (interval, segment) pair in ascending address order.
func (m *AddressMap[A, T]) Nodes() []node[A, T] { return m.m.Nodes() }

// Segments returns every segment, in ascending address order, without its
// interval.
func (m *AddressMap[A, T]) Segments() []segment.Segment[A, T] {
	nodes := m.m.Nodes()
	segs := make([]segment.Segment[A, T], len(nodes))
	for i, n := range nodes {
		segs[i] = n.Value
	}
	return segs
}

// At is shorthand for m.Constraints().At(x).
func (m *AddressMap[A, T]) At(x A) *Constraints[A, T] { return m.Constraints().At(x) }

// AtOrAfter is shorthand for m.Constraints().AtOrAfter(x).
func (m *AddressMap[A, T]) AtOrAfter(x A) *Constraints[A, T] { return m.Constraints().AtOrAfter(x) }

// AtOrBefore is shorthand for m.Constraints().AtOrBefore(x).
func (m *AddressMap[A, T]) AtOrBefore(x A) *Constraints[A, T] { return m.Constraints().AtOrBefore(x) }

// Within is shorthand for m.Constraints().Within(x).
func (m *AddressMap[A, T]) Within(x addr.Interval[A]) *Constraints[A, T] {
	return m.Constraints().Within(x)
}

// Require is shorthand for m.Constraints().Require(bits).
func (m *AddressMap[A, T]) Require(bits access.Bits) *Constraints[A, T] {
	return m.Constraints().Require(bits)
}

// Unmapped returns the lowest (or, with the Backward flag, highest) unmapped
// interval not below (resp. not above) boundary, or the empty interval if
// none exists. Unlike every other operation in this package, Unmapped does
// not take a Constraints: it searches for addresses absent from the map, so
// segment-level constraints have nothing to apply to.
func (m *AddressMap[A, T]) Unmapped(boundary A, flags MatchFlags) addr.Interval[A] {
	if flags.Has(Backward) {
		return m.m.LastUnmapped(boundary)
	}
	return m.m.FirstUnmapped(boundary)
}

// FindFreeSpace finds nValues contiguous unmapped addresses, aligned to
// alignment, within restriction, returning the lowest such address (or, with
// the Backward flag, the highest address such that the region still ends at
// or before restriction's greatest address) and true, or false if no such
// region exists. Like Unmapped, it searches for absence, so it does not take
// a Constraints.
func (m *AddressMap[A, T]) FindFreeSpace(nValues A, alignment A, restriction addr.Interval[A], flags MatchFlags) (A, bool, error) {
	var zero A
	if nValues == zero {
		return zero, false, errutil.Newf("findFreeSpace: nValues must be nonzero")
	}
	if restriction.IsEmpty() {
		return zero, false, nil
	}
	whole := addr.Whole[A]()

	if !flags.Has(Backward) {
		minAddr := restriction.Least()
		for minAddr <= restriction.Greatest() {
			interval := m.Unmapped(minAddr, 0)
			if interval.IsEmpty() {
				return zero, false, nil
			}
			aligned, ok := addr.AlignUp(interval.Least(), alignment)
			if !ok {
				return zero, false, nil
			}
			minAddr = aligned
			maxAddr := minAddr + (nValues - 1)
			size, overflowed := interval.Size()
			if (nValues <= size || overflowed) && maxAddr >= minAddr && maxAddr <= interval.Greatest() && maxAddr <= restriction.Greatest() {
				return minAddr, true, nil
			}
			if interval.Greatest() == whole.Greatest() {
				return zero, false, nil
			}
			minAddr = interval.Greatest() + 1
		}
		return zero, false, nil
	}

	maxAddr := restriction.Greatest()
	for maxAddr >= restriction.Least() {
		interval := m.Unmapped(maxAddr, Backward)
		if interval.IsEmpty() {
			return zero, false, nil
		}
		minAddr := addr.AlignDown(interval.Greatest()-(nValues-1), alignment)
		candidateMax := minAddr + (nValues - 1)
		size, overflowed := interval.Size()
		if (nValues <= size || overflowed) && minAddr >= interval.Least() && candidateMax >= minAddr && candidateMax <= interval.Greatest() && minAddr >= restriction.Least() {
			return minAddr, true, nil
		}
		if interval.Least() == whole.Least() {
			return zero, false, nil
		}
		maxAddr = interval.Least() - 1
	}
	return zero, false, nil
}

// CheckConsistency verifies every segment has a non-nil buffer, and that
// buffer has enough values available at the segment's offset to back the
// address interval it's mapped to. It returns ErrInconsistentMap (wrapped
// with details naming the offending interval) on the first violation found.
func (m *AddressMap[A, T]) CheckConsistency() error {
	for _, n := range m.m.Nodes() {
		seg := n.Value
		if seg.Buffer == nil {
			return errors.Wrapf(ErrInconsistentMap, "null buffer for interval %v", n.Interval)
		}
		size, overflowed := n.Interval.Size()
		bufAvail := seg.Buffer.Available(seg.Offset)
		if !overflowed && bufAvail < size {
			return errors.Wrapf(ErrInconsistentMap, "segment at %v points to only %v values but the interval size is %v", n.Interval, bufAvail, size)
		}
	}
	return nil
}
