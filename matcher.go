package addrmap

import "github.com/mdheller/addrmap/addr"

// matched is the result of running a Constraints query: the contiguous (for
// forward/backward default purposes) address interval that was matched, and
// the nodes that cover it, in ascending address order regardless of which
// direction the match ran in.
type matched[A addr.Unsigned, T any] struct {
	interval addr.Interval[A]
	nodes    []node[A, T]
}

func emptyMatch[A addr.Unsigned, T any]() matched[A, T] {
	return matched[A, T]{interval: addr.Empty[A]()}
}

// indexLowerBound returns the first index i with nodes[i].Interval.Greatest()
// >= address, or len(nodes) if there is none. nodes must be sorted ascending
// by Least with disjoint intervals (so Greatest is monotonic too).
func indexLowerBound[A addr.Unsigned, T any](nodes []node[A, T], address A) int {
	lo, hi := 0, len(nodes)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if nodes[mid].Interval.Greatest() >= address {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// indexFindPrior returns the last index i with nodes[i].Interval.Least() <=
// address, or -1 if there is none.
func indexFindPrior[A addr.Unsigned, T any](nodes []node[A, T], address A) int {
	lo, hi := 0, len(nodes)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if nodes[mid].Interval.Least() <= address {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// constraintLowerBound finds the first node index and the minimum address
// that could possibly satisfy c's address constraints, scanning forward if
// useAnchor is false or c has no anchor. It reports false if nothing in
// nodes can possibly satisfy c.
func constraintLowerBound[A addr.Unsigned, T any](nodes []node[A, T], c *Constraints[A, T], useAnchor bool) (beginIdx int, minAddr A, ok bool) {
	if len(nodes) == 0 || c.never {
		return len(nodes), 0, false
	}

	if useAnchor && c.anchored != nil {
		anchor := *c.anchored
		if (c.least != nil && *c.least > anchor.Least()) || (c.greatest != nil && *c.greatest < anchor.Greatest()) {
			return len(nodes), 0, false
		}
		lb := indexLowerBound(nodes, anchor.Least())
		if lb == len(nodes) || anchor.Least() < nodes[lb].Interval.Least() {
			return len(nodes), 0, false
		}
		return lb, anchor.Least(), true
	}

	if c.least != nil {
		lb := indexLowerBound(nodes, *c.least)
		if lb == len(nodes) {
			return lb, 0, false
		}
		minAddr = *c.least
		if nodes[lb].Interval.Least() > minAddr {
			minAddr = nodes[lb].Interval.Least()
		}
		return lb, minAddr, true
	}

	return 0, nodes[0].Interval.Least(), true
}

// constraintUpperBound finds the index one past the last node that could
// possibly satisfy c's address constraints, and the maximum address that
// could satisfy it. It reports false if nothing in nodes can possibly
// satisfy c (mirroring constraintLowerBound's false case: endIdx is then 0,
// the same sentinel used for "no match" by the caller).
func constraintUpperBound[A addr.Unsigned, T any](nodes []node[A, T], c *Constraints[A, T], useAnchor bool) (endIdx int, maxAddr A, ok bool) {
	if len(nodes) == 0 || c.never {
		return 0, 0, false
	}

	if useAnchor && c.anchored != nil {
		anchor := *c.anchored
		if (c.least != nil && *c.least > anchor.Least()) || (c.greatest != nil && *c.greatest < anchor.Greatest()) {
			return 0, 0, false
		}
		ub := indexFindPrior(nodes, anchor.Greatest())
		if ub == -1 || anchor.Greatest() > nodes[ub].Interval.Greatest() {
			return 0, 0, false
		}
		return ub + 1, anchor.Greatest(), true
	}

	if c.greatest != nil {
		ub := indexFindPrior(nodes, *c.greatest)
		if ub == -1 {
			return 0, 0, false
		}
		maxAddr = nodes[ub].Interval.Greatest()
		if *c.greatest < maxAddr {
			maxAddr = *c.greatest
		}
		return ub + 1, maxAddr, true
	}

	return len(nodes), nodes[len(nodes)-1].Interval.Greatest(), true
}

// matchForward runs c against am starting from the lowest candidate address
// and walking up.
func matchForward[A addr.Unsigned, T any](am *AddressMap[A, T], c *Constraints[A, T], flags MatchFlags) matched[A, T] {
	nodes := am.m.Nodes()
	if c.never || len(nodes) == 0 {
		return emptyMatch[A, T]()
	}

	beginIdx, minAddr, ok := constraintLowerBound(nodes, c, true)
	if !ok {
		return emptyMatch[A, T]()
	}
	endIdx, maxAddr, ok := constraintUpperBound(nodes, c, false)
	if !ok || endIdx == 0 {
		return emptyMatch[A, T]()
	}

	for beginIdx != endIdx && !isSatisfied(nodes[beginIdx], c) {
		if c.anchored != nil {
			return emptyMatch[A, T]()
		}
		beginIdx++
	}
	if beginIdx == endIdx {
		return emptyMatch[A, T]()
	}
	if nodes[beginIdx].Interval.Least() > minAddr {
		minAddr = nodes[beginIdx].Interval.Least()
	}

	if flags.Has(Contiguous) || c.hasNonAddressConstraints() {
		address := minAddr
		var found A
		i := beginIdx
		for ; i != endIdx; i++ {
			if i != beginIdx {
				if c.singleSegment {
					break
				}
				if flags.Has(Contiguous) && address+1 != nodes[i].Interval.Least() {
					break
				}
				if !isSatisfied(nodes[i], c) {
					if flags.Has(Whole) {
						return emptyMatch[A, T]()
					}
					break
				}
			}
			lo := minAddr
			if nodes[i].Interval.Least() > lo {
				lo = nodes[i].Interval.Least()
			}
			here, overflowed := addr.Hull(lo, nodes[i].Interval.Greatest()).Size()
			if c.limit != nil {
				need := *c.limit - found
				if overflowed || here >= need {
					address = lo + need - 1
					i++
					break
				}
			}
			address = nodes[i].Interval.Greatest()
			if !overflowed {
				found += here
			}
		}
		endIdx = i
		if address < maxAddr {
			maxAddr = address
		}
	}

	result := make([]node[A, T], endIdx-beginIdx)
	copy(result, nodes[beginIdx:endIdx])
	return matched[A, T]{interval: addr.Hull(minAddr, maxAddr), nodes: result}
}

// matchBackward runs c against am starting from the highest candidate
// address and walking down. Its result's nodes slice is still in ascending
// address order, matching matchForward's.
func matchBackward[A addr.Unsigned, T any](am *AddressMap[A, T], c *Constraints[A, T], flags MatchFlags) matched[A, T] {
	nodes := am.m.Nodes()
	if c.never || len(nodes) == 0 {
		return emptyMatch[A, T]()
	}

	beginIdx, minAddr, ok := constraintLowerBound(nodes, c, false)
	if !ok {
		return emptyMatch[A, T]()
	}
	endIdx, maxAddr, ok := constraintUpperBound(nodes, c, true)
	if !ok || endIdx == 0 {
		return emptyMatch[A, T]()
	}

	for endIdx != beginIdx {
		prevIdx := endIdx - 1
		if isSatisfied(nodes[prevIdx], c) {
			if nodes[prevIdx].Interval.Greatest() < maxAddr {
				maxAddr = nodes[prevIdx].Interval.Greatest()
			}
			break
		}
		if c.anchored != nil {
			return emptyMatch[A, T]()
		}
		endIdx = prevIdx
	}
	if endIdx == beginIdx {
		return emptyMatch[A, T]()
	}

	if flags.Has(Contiguous) || c.hasNonAddressConstraints() {
		address := maxAddr
		var found A
		i := endIdx
		for i != beginIdx {
			prevIdx := i - 1
			if i != endIdx {
				if c.singleSegment {
					break
				}
				if flags.Has(Contiguous) && nodes[prevIdx].Interval.Greatest()+1 != address {
					break
				}
				if !isSatisfied(nodes[prevIdx], c) {
					if flags.Has(Whole) {
						return emptyMatch[A, T]()
					}
					break
				}
			}
			hi := maxAddr
			if nodes[prevIdx].Interval.Greatest() < hi {
				hi = nodes[prevIdx].Interval.Greatest()
			}
			here, overflowed := addr.Hull(nodes[prevIdx].Interval.Least(), hi).Size()
			if c.limit != nil {
				need := *c.limit - found
				if overflowed || here >= need {
					address = hi - need + 1
					i = prevIdx
					break
				}
			}
			address = nodes[prevIdx].Interval.Least()
			if !overflowed {
				found += here
			}
			i = prevIdx
		}
		beginIdx = i
		if address > minAddr {
			minAddr = address
		}
	}

	result := make([]node[A, T], endIdx-beginIdx)
	copy(result, nodes[beginIdx:endIdx])
	return matched[A, T]{interval: addr.Hull(minAddr, maxAddr), nodes: result}
}

// matchConstraints dispatches to matchForward or matchBackward according to
// the Backward flag.
func matchConstraints[A addr.Unsigned, T any](am *AddressMap[A, T], c *Constraints[A, T], flags MatchFlags) matched[A, T] {
	if flags.Has(Backward) {
		return matchBackward(am, c, flags)
	}
	return matchForward(am, c, flags)
}
