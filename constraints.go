package addrmap

import (
	"strings"

	"github.com/mdheller/addrmap/access"
	"github.com/mdheller/addrmap/addr"
	"github.com/mdheller/addrmap/segment"
)

// SegmentPredicate is a caller-supplied extra filter for Constraints.Where;
// it receives the address interval and segment a node occupies and reports
// whether that node qualifies.
type SegmentPredicate[A addr.Unsigned, T any] func(interval addr.Interval[A], seg segment.Segment[A, T]) bool

// Constraints narrows which addresses and segments of an AddressMap an
// operation (Read, Write, Prune, Keep, ChangeAccess, Segments, Nodes, Next,
// Available, Exists, FindNode) acts on. Every builder method
// narrows monotonically: it can only make the constraint more restrictive,
// never less, and narrowing to an empty result (e.g. AtOrAfter after
// AtOrBefore an earlier address) latches the constraints into permanently
// matching nothing. Constraints does not own the AddressMap it is bound to;
// it is cheap to create and safe to discard without affecting the map.
type Constraints[A addr.Unsigned, T any] struct {
	m     *AddressMap[A, T]
	never bool

	least    *A
	greatest *A
	anchored *addr.Interval[A]

	limit          *A
	singleSegment  bool
	requiredAccess access.Bits
	prohibitedAccess access.Bits
	nameSubstring  string
	predicates     []SegmentPredicate[A, T]
}

// Constraints returns a fresh, unrestricted Constraints bound to m.
func (m *AddressMap[A, T]) Constraints() *Constraints[A, T] {
	return &Constraints[A, T]{m: m}
}

func (c *Constraints[A, T]) clone() *Constraints[A, T] {
	cc := *c
	cc.predicates = append([]SegmentPredicate[A, T]{}, c.predicates...)
	return &cc
}

// None makes c match nothing, unconditionally.
func (c *Constraints[A, T]) None() *Constraints[A, T] {
	c.never = true
	return c
}

// Any is a no-op, present for symmetry with None and to let a conditionally
// built query read naturally (cond ? c.Require(x) : c.Any()).
func (c *Constraints[A, T]) Any() *Constraints[A, T] {
	return c
}

// Require adds bits to the set of access bits a qualifying segment must have.
func (c *Constraints[A, T]) Require(bits access.Bits) *Constraints[A, T] {
	c.requiredAccess |= bits
	return c
}

// Prohibit adds bits to the set of access bits a qualifying segment must
// not have.
func (c *Constraints[A, T]) Prohibit(bits access.Bits) *Constraints[A, T] {
	c.prohibitedAccess |= bits
	return c
}

// Substr requires a qualifying segment's Name to contain s. Calling Substr
// again with a different substring makes c match nothing (conjunction of two
// substrings isn't expressible here).
func (c *Constraints[A, T]) Substr(s string) *Constraints[A, T] {
	if c.nameSubstring != "" && c.nameSubstring != s {
		return c.None()
	}
	c.nameSubstring = s
	return c
}

// At restricts the match to the single address x: it must be present in the
// map, and is treated as an anchor: a forward match must start at x and a
// backward match must end at x, or nothing matches.
func (c *Constraints[A, T]) At(x A) *Constraints[A, T] {
	anchor := addr.Singleton(x)
	if c.anchored != nil {
		anchor = c.anchored.Intersect(anchor)
	}
	if anchor.IsEmpty() {
		return c.None()
	}
	c.anchored = &anchor
	return c
}

// AtInterval restricts the match to exactly x, anchored the way At is.
func (c *Constraints[A, T]) AtInterval(x addr.Interval[A]) *Constraints[A, T] {
	anchor := x
	if c.anchored != nil {
		anchor = c.anchored.Intersect(x)
	}
	if anchor.IsEmpty() {
		return c.None()
	}
	c.anchored = &anchor
	return c.AtOrAfter(anchor.Least()).AtOrBefore(anchor.Greatest())
}

// Limit caps the number of values an operation may touch.
func (c *Constraints[A, T]) Limit(x A) *Constraints[A, T] {
	if c.limit == nil || x < *c.limit {
		c.limit = &x
	}
	var zero A
	if *c.limit == zero {
		return c.None()
	}
	return c
}

// AtOrAfter requires every matched address to be >= least.
func (c *Constraints[A, T]) AtOrAfter(least A) *Constraints[A, T] {
	if c.least == nil || least > *c.least {
		c.least = &least
	}
	if c.greatest != nil && *c.greatest < *c.least {
		return c.None()
	}
	return c
}

// AtOrBefore requires every matched address to be <= greatest.
func (c *Constraints[A, T]) AtOrBefore(greatest A) *Constraints[A, T] {
	if c.greatest == nil || greatest < *c.greatest {
		c.greatest = &greatest
	}
	if c.least != nil && *c.least > *c.greatest {
		return c.None()
	}
	return c
}

// Within restricts the match to x.
func (c *Constraints[A, T]) Within(x addr.Interval[A]) *Constraints[A, T] {
	if x.IsEmpty() {
		return c.None()
	}
	return c.AtOrAfter(x.Least()).AtOrBefore(x.Greatest())
}

// WithinRange is Within(addr.Hull(lo, hi)), or None if lo > hi.
func (c *Constraints[A, T]) WithinRange(lo, hi A) *Constraints[A, T] {
	if lo > hi {
		return c.None()
	}
	return c.Within(addr.Hull(lo, hi))
}

// BaseSize is Within(addr.BaseSize(base, size)), or None if size is 0 or
// base+size-1 overflows A.
func (c *Constraints[A, T]) BaseSize(base, size A) *Constraints[A, T] {
	return c.Within(addr.BaseSize(base, size))
}

// After requires every matched address to be > x; None if x is A's maximum.
func (c *Constraints[A, T]) After(x A) *Constraints[A, T] {
	if x == addr.Max[A]() {
		return c.None()
	}
	return c.AtOrAfter(x + 1)
}

// Before requires every matched address to be < x; None if x is zero.
func (c *Constraints[A, T]) Before(x A) *Constraints[A, T] {
	var zero A
	if x == zero {
		return c.None()
	}
	return c.AtOrBefore(x - 1)
}

// SingleSegment forbids a match from crossing a segment boundary.
func (c *Constraints[A, T]) SingleSegment() *Constraints[A, T] {
	c.singleSegment = true
	return c
}

// Where adds a caller-supplied predicate a qualifying node must satisfy, in
// addition to every other constraint. p==nil is treated as None().
func (c *Constraints[A, T]) Where(p SegmentPredicate[A, T]) *Constraints[A, T] {
	if p == nil {
		return c.None()
	}
	c.predicates = append(c.predicates, p)
	return c
}

// hasNonAddressConstraints reports whether satisfying c requires inspecting
// segments one at a time (rather than address arithmetic alone).
func (c *Constraints[A, T]) hasNonAddressConstraints() bool {
	return !c.never &&
		(c.requiredAccess != 0 || c.prohibitedAccess != 0 || c.nameSubstring != "" ||
			c.limit != nil || c.singleSegment || len(c.predicates) > 0)
}

// addressConstraints returns a copy of c with only the address-range and
// anchor constraints, used by Prune/Keep/ChangeAccess to find the candidate
// address range before testing each segment's non-address constraints
// individually.
func (c *Constraints[A, T]) addressConstraints() *Constraints[A, T] {
	return &Constraints[A, T]{m: c.m, never: c.never, least: c.least, greatest: c.greatest, anchored: c.anchored}
}

func isSatisfied[A addr.Unsigned, T any](n node[A, T], c *Constraints[A, T]) bool {
	seg := n.Value
	if !seg.IsAccessible(c.requiredAccess, c.prohibitedAccess) {
		return false
	}
	if !strings.Contains(seg.Name, c.nameSubstring) {
		return false
	}
	for _, p := range c.predicates {
		if !p(n.Interval, seg) {
			return false
		}
	}
	return true
}
