package addrmap

// MatchFlags adjusts how a Constraints query selects addresses.
type MatchFlags uint32

const (
	// Backward matches starting from the greatest allowed address and
	// working down, instead of from the least address and working up.
	Backward MatchFlags = 1 << iota

	// Contiguous forces an operation that would otherwise tolerate gaps
	// (Prune, Keep, ChangeAccess) to stop at the first gap instead.
	Contiguous

	// NonContiguous allows an operation that defaults to contiguous
	// (Read, Write) to span gaps—only the matched nodes' own addresses are
	// touched, not the gaps between them. Mutually exclusive with
	// Contiguous; combining the two is a caller error.
	NonContiguous

	// Whole makes a disqualified segment met after the first matched one
	// fail the whole match instead of ending it early with a shorter one.
	// A gap (under Contiguous) still ends the match early without failing
	// it.
	Whole

	// WriteReverseSource changes Constraints.Write's backward-direction
	// convention: by default the matched addresses are filled in ascending
	// order starting from the front of the source buffer (reproducing the
	// original's documented but surprising behavior); with this flag they
	// are filled from the tail of the source buffer, so buf[len(buf)-1]
	// lands at the highest matched (anchor) address. See SPEC_FULL.md §7
	// for why the default is kept as-is.
	WriteReverseSource
)

// Has reports whether every bit set in want is also set in f.
func (f MatchFlags) Has(want MatchFlags) bool {
	return f&want == want
}
