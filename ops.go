package addrmap

import (
	"github.com/mdheller/addrmap/access"
	"github.com/mdheller/addrmap/addr"
	"github.com/mdheller/addrmap/buffer"
	"github.com/mdheller/addrmap/segment"
)

func defaultContiguous(flags MatchFlags) MatchFlags {
	if !flags.Has(Contiguous) && !flags.Has(NonContiguous) {
		return flags | Contiguous
	}
	return flags
}

func defaultNonContiguous(flags MatchFlags) MatchFlags {
	if !flags.Has(Contiguous) && !flags.Has(NonContiguous) {
		return flags | NonContiguous
	}
	return flags
}

// Nodes returns the first longest sequence of nodes that satisfy c, in
// ascending address order.
func (c *Constraints[A, T]) Nodes(flags MatchFlags) []node[A, T] {
	return matchConstraints(c.m, c, defaultContiguous(flags)).nodes
}

// Segments is Nodes without the address intervals.
func (c *Constraints[A, T]) Segments(flags MatchFlags) []segment.Segment[A, T] {
	nodes := c.Nodes(flags)
	segs := make([]segment.Segment[A, T], len(nodes))
	for i, n := range nodes {
		segs[i] = n.Value
	}
	return segs
}

// Available returns the largest address interval satisfying c; it may
// contain unmapped addresses unless the NonContiguous flag is cleared (the
// default), but every mapped address within it satisfies c.
func (c *Constraints[A, T]) Available(flags MatchFlags) addr.Interval[A] {
	return matchConstraints(c.m, c, defaultContiguous(flags)).interval
}

// Next returns the minimum (or, with Backward, maximum) address satisfying
// c, and false if none does.
func (c *Constraints[A, T]) Next(flags MatchFlags) (A, bool) {
	flags = defaultContiguous(flags)
	limited := c.clone().Limit(1)
	m := matchConstraints(c.m, limited, flags)
	if m.interval.IsEmpty() {
		var zero A
		return zero, false
	}
	if flags.Has(Backward) {
		return m.interval.Greatest(), true
	}
	return m.interval.Least(), true
}

// Exists reports whether any address satisfies c.
func (c *Constraints[A, T]) Exists(flags MatchFlags) bool {
	_, ok := c.Next(flags)
	return ok
}

// FindNode returns the node containing the first (or, with Backward, last)
// address satisfying c.
func (c *Constraints[A, T]) FindNode(flags MatchFlags) (node[A, T], bool) {
	limited := c.clone().Limit(1)
	nodes := matchConstraints(c.m, limited, defaultContiguous(flags)).nodes
	if len(nodes) == 0 {
		var zero node[A, T]
		return zero, false
	}
	return nodes[0], true
}

// Read copies values from the map into dst according to c, which defaults
// to matching contiguous addresses. Returns the address interval actually
// read, which may be shorter than dst if fewer matching addresses exist.
func (c *Constraints[A, T]) Read(dst []T, flags MatchFlags) addr.Interval[A] {
	flags = defaultContiguous(flags)
	limited := c
	if len(dst) > 0 {
		limited = c.clone().Limit(A(len(dst)))
	}
	m := matchConstraints(c.m, limited, flags)
	if len(dst) == 0 {
		return m.interval
	}
	pos := 0
	for _, nd := range m.nodes {
		part := m.interval.Intersect(nd.Interval)
		if part.IsEmpty() {
			continue
		}
		size, _ := part.Size()
		bufferOffset := nd.Value.Offset + (part.Least() - nd.Interval.Least())
		n := nd.Value.Buffer.Read(dst[pos:pos+int(size)], bufferOffset, size)
		pos += int(n)
	}
	return m.interval
}

// Write copies values from src into the map according to c, which defaults
// to matching contiguous addresses, and is additionally restricted to
// exclude Immutable segments regardless of what c itself required. A
// segment marked copy-on-write is cloned before the first byte is written
// through it, and every other segment in the map still pointing at the same
// buffer (at or after this segment's starting address) is retargeted to the
// clone and has its own copy-on-write flag cleared. Returns the address
// interval actually written.
//
// When c selects a backward match, the matched addresses are still filled in
// ascending order from the front of src by default (matching the documented,
// if counter-intuitive, historical behavior); pass the WriteReverseSource
// flag to fill them from the tail of src instead, so src's last element lands
// at the highest matched (anchor) address. See SPEC_FULL.md §7.
func (c *Constraints[A, T]) Write(src []T, flags MatchFlags) addr.Interval[A] {
	flags = defaultContiguous(flags)
	limited := c.clone().Prohibit(access.Immutable)
	if len(src) > 0 {
		limited = limited.Limit(A(len(src)))
	}
	m := matchConstraints(c.m, limited, flags)
	if len(src) == 0 {
		return m.interval
	}

	pos := 0
	if flags.Has(Backward) && flags.Has(WriteReverseSource) {
		// Start far enough into src that its last element lands on the
		// highest matched address.
		pos = len(src)
		for _, nd := range m.nodes {
			size, _ := m.interval.Intersect(nd.Interval).Size()
			pos -= int(size)
		}
	}

	retargeted := map[buffer.Buffer[A, T]]buffer.Buffer[A, T]{}
	for _, nd := range m.nodes {
		part := m.interval.Intersect(nd.Interval)
		if part.IsEmpty() {
			continue
		}
		size, _ := part.Size()

		buf := nd.Value.Buffer
		if nd.Value.COW {
			newBuf, already := retargeted[buf]
			if !already {
				newBuf = buf.Copy()
				retargeted[buf] = newBuf
				c.m.retargetBufferFrom(nd.Interval.Least(), buf, newBuf)
			}
			buf = newBuf
		}

		bufferOffset := nd.Value.Offset + (part.Least() - nd.Interval.Least())
		n := buf.Write(src[pos:pos+int(size)], bufferOffset, size)
		pos += int(n)
	}
	return m.interval
}

// retargetBufferFrom repoints every node at or after startAddress whose
// segment still points at old to newBuf, clearing its copy-on-write flag.
func (m *AddressMap[A, T]) retargetBufferFrom(startAddress A, old, newBuf buffer.Buffer[A, T]) {
	for _, n := range m.m.Nodes() {
		if n.Interval.Least() < startAddress || n.Value.Buffer != old {
			continue
		}
		seg := n.Value
		seg.Buffer = newBuf
		seg.COW = false
		m.m.Insert(n.Interval, seg)
	}
}

// Prune removes every address satisfying c from the map.
func (c *Constraints[A, T]) Prune(flags MatchFlags) {
	flags = defaultNonContiguous(flags)
	m := matchConstraints(c.m, c.addressConstraints(), flags)
	for _, n := range m.nodes {
		if isSatisfied(n, c) {
			c.m.Erase(n.Interval.Intersect(m.interval))
		}
	}
}

// Keep removes every address not satisfying c from the map, leaving
// addresses outside c's address range untouched.
func (c *Constraints[A, T]) Keep(flags MatchFlags) {
	flags = defaultNonContiguous(flags)
	m := matchConstraints(c.m, c.addressConstraints(), flags)
	if m.interval.IsEmpty() {
		return
	}
	for _, n := range m.nodes {
		if !isSatisfied(n, c) {
			c.m.Erase(n.Interval.Intersect(m.interval))
		}
	}
}

// ChangeAccess adds requiredAccess and removes prohibitedAccess from the
// access bits of every segment satisfying c.
func (c *Constraints[A, T]) ChangeAccess(requiredAccess, prohibitedAccess access.Bits, flags MatchFlags) {
	flags = defaultNonContiguous(flags)
	m := matchConstraints(c.m, c.addressConstraints(), flags)

	type replacement struct {
		interval addr.Interval[A]
		seg      segment.Segment[A, T]
	}
	var repl []replacement
	for _, n := range m.nodes {
		if !isSatisfied(n, c) {
			continue
		}
		toChange := n.Interval.Intersect(m.interval)
		newSeg := n.Value
		newSeg.Access = (n.Value.Access | requiredAccess) &^ prohibitedAccess
		newSeg.Offset = n.Value.Offset + (toChange.Least() - n.Interval.Least())
		repl = append(repl, replacement{interval: toChange, seg: newSeg})
	}
	for _, r := range repl {
		c.m.Insert(r.interval, r.seg)
	}
}
