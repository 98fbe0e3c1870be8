// Package access defines the segment access-bits bitset. The core (package
// addrmap) interprets exactly one bit, Immutable, on writes; every other bit
// is opaque and exists purely for a caller's own constraint predicates. The
// shape mirrors decomp/exp/bin's Perm/PermR/PermW/PermX (the loader-layer
// package the teacher's cmd/bin2asm consumes), reimplemented here rather
// than imported, since that package belongs to the out-of-scope loader layer.
package access

// Bits is a set of access flags attached to a Segment.
type Bits uint32

// Bit values. Immutable is the only bit the core itself ever inspects
// (AddressMap.Write refuses to write through it regardless of a Buffer's own
// IsImmutable hint). Readable/Writable/Executable are the conventional
// domain bits a caller's Require/Prohibit constraints or segment
// predicates would test; the core treats them as opaque.
const (
	Readable Bits = 1 << iota
	Writable
	Executable
	Immutable
)

// Has reports whether all bits set in want are also set in b.
func (b Bits) Has(want Bits) bool {
	return b&want == want
}

// HasAny reports whether any bit set in want is also set in b.
func (b Bits) HasAny(want Bits) bool {
	return b&want != 0
}

// Satisfies reports whether b has every bit in required and none of the
// bits in prohibited.
func (b Bits) Satisfies(required, prohibited Bits) bool {
	return b.Has(required) && !b.HasAny(prohibited)
}

// String renders the conventional bits as "rwx-" style flags, in
// Readable/Writable/Executable/Immutable order, with any remaining unknown
// bits appended in hex.
func (b Bits) String() string {
	flags := [4]byte{'-', '-', '-', '-'}
	if b.Has(Readable) {
		flags[0] = 'r'
	}
	if b.Has(Writable) {
		flags[1] = 'w'
	}
	if b.Has(Executable) {
		flags[2] = 'x'
	}
	if b.Has(Immutable) {
		flags[3] = 'i'
	}
	s := string(flags[:])
	if rest := b &^ (Readable | Writable | Executable | Immutable); rest != 0 {
		s += " +" + hex(uint32(rest))
	}
	return s
}

func hex(v uint32) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}
