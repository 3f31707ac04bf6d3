package trie

import "sort"

// node is a single byte of a key. chr is meaningless on the root node.
// children is kept sorted ascending by chr with no duplicates, maintained
// by insertion-sort on every insert — the fan-out at any level is bounded
// by the byte alphabet in practice, so a binary search over a sorted
// slice beats the bookkeeping of a full 256-wide array.
type node struct {
	chr      byte
	children []*node
	entry    *Entry
}

// childIndex returns the position of the child for c, and whether it was
// found, using the sorted-children invariant for a binary search.
func (n *node) childIndex(c byte) (int, bool) {
	i := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].chr >= c
	})
	if i < len(n.children) && n.children[i].chr == c {
		return i, true
	}
	return i, false
}

// child returns the existing child for c, or nil.
func (n *node) child(c byte) *node {
	i, ok := n.childIndex(c)
	if !ok {
		return nil
	}
	return n.children[i]
}

// childOrCreate returns the child for c, creating and inserting it in
// sorted order if absent.
func (n *node) childOrCreate(c byte) *node {
	i, ok := n.childIndex(c)
	if ok {
		return n.children[i]
	}
	child := &node{chr: c}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	return child
}

// removeChildAt drops the child at index i, preserving order.
func (n *node) removeChildAt(i int) {
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
}

// leaf reports whether n has neither children nor a terminal entry, i.e.
// it is a candidate for removal from its parent.
func (n *node) leaf() bool {
	return len(n.children) == 0 && n.entry == nil
}
