// Package intervalmap implements a generic ordered mapping from disjoint
// addr.Interval[A] keys to values of type V, with automatic merging of
// adjacent entries and splitting of an entry that must be partially
// overwritten, both decided by a caller-supplied Policy. It is the
// IntervalMap substrate addrmap.AddressMap is built on, independent of any
// particular segment/buffer representation the way Sawyer's IntervalMap is
// independent of its AddressMap subclass.
package intervalmap

import (
	"github.com/google/btree"
	"github.com/mdheller/addrmap/addr"
)

// Node is a stored (interval, value) pair.
type Node[A addr.Unsigned, V any] struct {
	Interval addr.Interval[A]
	Value    V
}

// Policy decides when two interval-adjacent nodes may be combined into one,
// and how a node is cut in two at a split point.
type Policy[A addr.Unsigned, V any] interface {
	// Merge reports whether the node ending at leftInterval and the node
	// starting at rightInterval (guaranteed adjacent: leftInterval.Greatest()
	// +1 == rightInterval.Least()) may be replaced by a single node spanning
	// their hull.
	Merge(leftInterval addr.Interval[A], left V, rightInterval addr.Interval[A], right V) bool

	// Split returns the value for the upper half [splitPoint,interval.Greatest()]
	// of a node being cut at splitPoint; the caller keeps the original value
	// unmodified for the lower half.
	Split(interval addr.Interval[A], value V, splitPoint A) V
}

func less[A addr.Unsigned, V any](a, b Node[A, V]) bool {
	return a.Interval.Least() < b.Interval.Least()
}

// Map is an ordered map of disjoint intervals to values.
type Map[A addr.Unsigned, V any] struct {
	tree   *btree.BTreeG[Node[A, V]]
	policy Policy[A, V]
}

// New returns an empty Map using policy to decide merges and splits.
func New[A addr.Unsigned, V any](policy Policy[A, V]) *Map[A, V] {
	return &Map[A, V]{
		tree:   btree.NewG(32, less[A, V]),
		policy: policy,
	}
}

// IsEmpty reports whether the map has no nodes.
func (m *Map[A, V]) IsEmpty() bool { return m.tree.Len() == 0 }

// NIntervals returns the number of disjoint nodes currently stored. Multiple
// nodes may share the same underlying storage identity (e.g. point into the
// same buffer); this counts map entries, not distinct storage.
func (m *Map[A, V]) NIntervals() int { return m.tree.Len() }

// Hull returns the smallest interval spanning every mapped address, and
// false if the map is empty.
func (m *Map[A, V]) Hull() (addr.Interval[A], bool) {
	first, ok := m.tree.Min()
	if !ok {
		return addr.Interval[A]{}, false
	}
	last, _ := m.tree.Max()
	return addr.HullInterval(first.Interval, last.Interval), true
}

// Nodes returns every node in ascending address order. O(n); intended for
// consistency checks and full-map iteration, not for bounded queries (use
// LowerBound/AscendFrom/DescendFrom for those).
func (m *Map[A, V]) Nodes() []Node[A, V] {
	nodes := make([]Node[A, V], 0, m.tree.Len())
	m.tree.Ascend(func(n Node[A, V]) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// LowerBound returns the first node whose interval.Greatest() >= address, or
// false if no such node exists.
func (m *Map[A, V]) LowerBound(address A) (Node[A, V], bool) {
	pivot := Node[A, V]{Interval: addr.Singleton(address)}
	var found Node[A, V]
	ok := false
	m.tree.DescendLessOrEqual(pivot, func(n Node[A, V]) bool {
		if n.Interval.Greatest() >= address {
			found, ok = n, true
		}
		return false
	})
	if ok {
		return found, true
	}
	m.tree.AscendGreaterOrEqual(pivot, func(n Node[A, V]) bool {
		found, ok = n, true
		return false
	})
	return found, ok
}

// FindPrior returns the last node whose interval.Least() <= address, or
// false if no such node exists.
func (m *Map[A, V]) FindPrior(address A) (Node[A, V], bool) {
	pivot := Node[A, V]{Interval: addr.Singleton(address)}
	var found Node[A, V]
	ok := false
	m.tree.DescendLessOrEqual(pivot, func(n Node[A, V]) bool {
		found, ok = n, true
		return false
	})
	return found, ok
}

// predecessor returns the node immediately before n in address order.
func (m *Map[A, V]) predecessor(n Node[A, V]) (Node[A, V], bool) {
	var found Node[A, V]
	ok := false
	skipped := false
	m.tree.DescendLessOrEqual(n, func(item Node[A, V]) bool {
		if !skipped {
			skipped = true
			return true
		}
		found, ok = item, true
		return false
	})
	return found, ok
}

// successor returns the node immediately after n in address order.
func (m *Map[A, V]) successor(n Node[A, V]) (Node[A, V], bool) {
	var found Node[A, V]
	ok := false
	skipped := false
	m.tree.AscendGreaterOrEqual(n, func(item Node[A, V]) bool {
		if !skipped {
			skipped = true
			return true
		}
		found, ok = item, true
		return false
	})
	return found, ok
}

// AscendFrom visits every node whose interval.Least() >= pivot.Interval.Least(),
// in ascending order, starting with pivot itself if it is a stored node. The
// visit function should return false to stop early.
func (m *Map[A, V]) AscendFrom(pivot Node[A, V], visit func(Node[A, V]) bool) {
	m.tree.AscendGreaterOrEqual(pivot, visit)
}

// DescendFrom visits every node whose interval.Least() <= pivot.Interval.Least(),
// in descending order, starting with pivot itself if it is a stored node.
func (m *Map[A, V]) DescendFrom(pivot Node[A, V], visit func(Node[A, V]) bool) {
	m.tree.DescendLessOrEqual(pivot, visit)
}

// Insert maps interval to value, erasing any node (or part of a node) that
// previously overlapped interval, then merging with either neighbor the
// policy says may be combined.
func (m *Map[A, V]) Insert(interval addr.Interval[A], value V) {
	if interval.IsEmpty() {
		return
	}
	m.Erase(interval)
	n := Node[A, V]{Interval: interval, Value: value}
	m.tree.ReplaceOrInsert(n)
	m.mergeAround(n)
}

// mergeAround merges n with its predecessor and/or successor node whenever
// the policy allows, repeating on each side until no further merge applies.
func (m *Map[A, V]) mergeAround(n Node[A, V]) {
	for {
		pred, ok := m.predecessor(n)
		if !ok || pred.Interval.Greatest()+1 != n.Interval.Least() {
			break
		}
		if !m.policy.Merge(pred.Interval, pred.Value, n.Interval, n.Value) {
			break
		}
		m.tree.Delete(pred)
		m.tree.Delete(n)
		n = Node[A, V]{Interval: addr.HullInterval(pred.Interval, n.Interval), Value: pred.Value}
		m.tree.ReplaceOrInsert(n)
	}
	for {
		succ, ok := m.successor(n)
		if !ok || n.Interval.Greatest()+1 != succ.Interval.Least() {
			break
		}
		if !m.policy.Merge(n.Interval, n.Value, succ.Interval, succ.Value) {
			break
		}
		m.tree.Delete(n)
		m.tree.Delete(succ)
		n = Node[A, V]{Interval: addr.HullInterval(n.Interval, succ.Interval), Value: n.Value}
		m.tree.ReplaceOrInsert(n)
	}
}

// Erase removes every mapped address in target, splitting any node that is
// only partially covered by target via the policy's Split.
func (m *Map[A, V]) Erase(target addr.Interval[A]) {
	if target.IsEmpty() {
		return
	}

	var overlapping []Node[A, V]
	if pred, ok := m.FindPrior(target.Least()); ok &&
		pred.Interval.Least() < target.Least() && pred.Interval.Greatest() >= target.Least() {
		overlapping = append(overlapping, pred)
	}
	m.tree.AscendGreaterOrEqual(Node[A, V]{Interval: addr.Singleton(target.Least())}, func(n Node[A, V]) bool {
		if n.Interval.Least() > target.Greatest() {
			return false
		}
		overlapping = append(overlapping, n)
		return true
	})

	for _, n := range overlapping {
		m.tree.Delete(n)
		if n.Interval.Least() < target.Least() {
			left := addr.Hull(n.Interval.Least(), target.Least()-1)
			m.tree.ReplaceOrInsert(Node[A, V]{Interval: left, Value: n.Value})
		}
		if n.Interval.Greatest() > target.Greatest() {
			splitPoint := target.Greatest() + 1
			right := addr.Hull(splitPoint, n.Interval.Greatest())
			m.tree.ReplaceOrInsert(Node[A, V]{Interval: right, Value: m.policy.Split(n.Interval, n.Value, splitPoint)})
		}
	}
}

// FirstUnmapped returns the lowest unmapped interval not below boundary, or
// the empty interval if every address from boundary to A's maximum is
// mapped.
func (m *Map[A, V]) FirstUnmapped(boundary A) addr.Interval[A] {
	node, ok := m.LowerBound(boundary)
	if !ok {
		return addr.Hull(boundary, addr.Max[A]())
	}
	if node.Interval.Least() > boundary {
		return addr.Hull(boundary, node.Interval.Least()-1)
	}
	if node.Interval.Greatest() == addr.Max[A]() {
		return addr.Empty[A]()
	}
	gapStart := node.Interval.Greatest() + 1
	if succ, ok := m.successor(node); ok {
		return addr.Hull(gapStart, succ.Interval.Least()-1)
	}
	return addr.Hull(gapStart, addr.Max[A]())
}

// LastUnmapped returns the highest unmapped interval not above boundary, or
// the empty interval if every address from 0 to boundary is mapped.
func (m *Map[A, V]) LastUnmapped(boundary A) addr.Interval[A] {
	var zero A
	node, ok := m.FindPrior(boundary)
	if !ok {
		return addr.Hull(zero, boundary)
	}
	if node.Interval.Greatest() < boundary {
		return addr.Hull(node.Interval.Greatest()+1, boundary)
	}
	if node.Interval.Least() == zero {
		return addr.Empty[A]()
	}
	gapEnd := node.Interval.Least() - 1
	if pred, ok := m.predecessor(node); ok {
		return addr.Hull(pred.Interval.Greatest()+1, gapEnd)
	}
	return addr.Hull(zero, gapEnd)
}
