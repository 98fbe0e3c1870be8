// Package addr provides the address arithmetic substrate shared by the
// intervalmap, segment, and addrmap packages: a generic closed interval over
// an unsigned address type, plus the overflow-safe arithmetic the rest of
// this module relies on instead of re-deriving it at each call site.
package addr

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Unsigned is the set of address types an Interval or AddressMap may be
// instantiated over.
type Unsigned = constraints.Unsigned

// Interval is a closed, inclusive range [Least, Greatest] over an unsigned
// address type A. The zero value is the singleton [0, 0], not the empty
// interval; use Empty() for that.
//
// Least/Greatest are only meaningful when !IsEmpty(); use Empty() or the
// IsEmpty predicate rather than comparing fields directly.
type Interval[A Unsigned] struct {
	least, greatest A
	empty           bool
}

// Empty returns the distinguished empty interval.
func Empty[A Unsigned]() Interval[A] {
	return Interval[A]{empty: true}
}

// Singleton returns the interval [x, x].
func Singleton[A Unsigned](x A) Interval[A] {
	return Interval[A]{least: x, greatest: x}
}

// Whole returns [0, A's maximum value], the full address space. Per spec,
// Whole().Size() reports 0 as the sentinel for "overflowed size" rather than
// the true, unrepresentable size.
func Whole[A Unsigned]() Interval[A] {
	var zero A
	return Interval[A]{least: zero, greatest: Max[A]()}
}

// Max returns the maximum representable value of A, via unsigned wraparound.
func Max[A Unsigned]() A {
	var zero A
	return zero - 1
}

// Hull returns the smallest interval containing both a and b.
func Hull[A Unsigned](a, b A) Interval[A] {
	least, greatest := a, b
	if b < a {
		least, greatest = b, a
	}
	return Interval[A]{least: least, greatest: greatest}
}

// HullInterval returns the smallest interval containing both i and j. An
// empty operand is ignored; if both are empty the result is empty.
func HullInterval[A Unsigned](i, j Interval[A]) Interval[A] {
	switch {
	case i.empty:
		return j
	case j.empty:
		return i
	}
	least, greatest := i.least, i.greatest
	if j.least < least {
		least = j.least
	}
	if j.greatest > greatest {
		greatest = j.greatest
	}
	return Interval[A]{least: least, greatest: greatest}
}

// BaseSize returns the interval [base, base+size-1]. Returns the empty
// interval if size is 0, or if base+size-1 would overflow A.
func BaseSize[A Unsigned](base, size A) Interval[A] {
	var zero A
	if size == zero {
		return Interval[A]{empty: true}
	}
	greatest := base + size - 1
	if greatest < base {
		return Interval[A]{empty: true} // base+size-1 overflowed
	}
	return Interval[A]{least: base, greatest: greatest}
}

// IsEmpty reports whether the interval contains no addresses.
func (i Interval[A]) IsEmpty() bool { return i.empty }

// Least returns the lowest address in the interval. Undefined if IsEmpty().
func (i Interval[A]) Least() A { return i.least }

// Greatest returns the highest address in the interval. Undefined if
// IsEmpty().
func (i Interval[A]) Greatest() A { return i.greatest }

// Size returns greatest-least+1 and whether that value overflowed (i.e. the
// interval is the whole address space, whose true size, A's range plus one,
// has no representation in A).
func (i Interval[A]) Size() (size A, overflowed bool) {
	if i.empty {
		return 0, false
	}
	n := i.greatest - i.least + 1
	if n == 0 {
		return 0, true
	}
	return n, false
}

// Contains reports whether x is in the interval.
func (i Interval[A]) Contains(x A) bool {
	return !i.empty && i.least <= x && x <= i.greatest
}

// ContainsInterval reports whether the interval fully contains j.
func (i Interval[A]) ContainsInterval(j Interval[A]) bool {
	if j.empty {
		return true
	}
	return !i.empty && i.least <= j.least && j.greatest <= i.greatest
}

// Intersect returns the intersection of i and j.
func (i Interval[A]) Intersect(j Interval[A]) Interval[A] {
	if i.empty || j.empty {
		return Interval[A]{empty: true}
	}
	least := i.least
	if j.least > least {
		least = j.least
	}
	greatest := i.greatest
	if j.greatest < greatest {
		greatest = j.greatest
	}
	if least > greatest {
		return Interval[A]{empty: true}
	}
	return Interval[A]{least: least, greatest: greatest}
}

// Intersects reports whether i and j share at least one address.
func (i Interval[A]) Intersects(j Interval[A]) bool {
	return !i.Intersect(j).IsEmpty()
}

// String renders the interval as "[least,greatest]", or "{}" when empty.
func (i Interval[A]) String() string {
	if i.empty {
		return "{}"
	}
	return fmt.Sprintf("[%v,%v]", i.least, i.greatest)
}
