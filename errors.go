// Package addrmap implements a generic, constraint-driven address map: an
// ordered, non-overlapping mapping from address intervals to Segments
// (buffer + offset + access + name + copy-on-write), queried and mutated
// through a fluent Constraints builder the way Sawyer's AddressMap is.
package addrmap

import "github.com/pkg/errors"

// ErrInconsistentMap is returned by CheckConsistency (and wrapped with
// context by the operation that discovered it) when a segment has a nil
// buffer, or its buffer has fewer values available at the segment's offset
// than its address interval requires. Seeing this means a bug in this
// package, not in the caller.
var ErrInconsistentMap = errors.New("address map is inconsistent")
