package trie

import (
	"iter"
	"strconv"
)

// Database is one named keyspace: a trie root plus a live key count.
// All operations are unlocked — callers (internal/store) serialize access
// with the single store lock coordinating registry and index state.
type Database struct {
	Name    string
	Created int64
	root    node
	size    int
}

// New creates an empty, named database.
func New(name string, now int64) *Database {
	return &Database{Name: name, Created: now}
}

// Size returns the number of keys currently stored.
func (d *Database) Size() int { return d.size }

// Insert ensures a path exists for key and sets its value and TTL. It
// returns the stored entry, so callers (internal/store) can refresh or
// clear its expiration-index record accordingly. created reports whether
// this created a brand new key (size was incremented). An empty key is
// not stored and yields (nil, false).
func (d *Database) Insert(key string, value []byte, ttl int32, now int64) (e *Entry, created bool) {
	if len(key) == 0 {
		return nil, false
	}
	n := &d.root
	for i := 0; i < len(key); i++ {
		n = n.childOrCreate(key[i])
	}
	created = n.entry == nil
	if created {
		n.entry = &Entry{}
		d.size++
	}
	n.entry.Data = value
	n.entry.Latime = now
	if ttl >= 0 {
		n.entry.Ctime = now
		n.entry.TTL = ttl
	} else {
		n.entry.TTL = NoTTL
	}
	return n.entry, created
}

// Search performs an exact lookup. If the stored entry has expired, it is
// lazily evicted (removed from the trie, size decremented) and the miss
// is reported; the evicted entry is returned separately so the caller can
// drop its expiration-index record.
func (d *Database) Search(key string, now int64) (hit *Entry, evicted *Entry) {
	n := d.walk(key)
	if n == nil || n.entry == nil {
		return nil, nil
	}
	if n.entry.expired(now) {
		stale := n.entry
		d.Remove(key)
		return nil, stale
	}
	n.entry.Latime = now
	return n.entry, nil
}

// walk returns the node terminating key, or nil if the path doesn't exist.
func (d *Database) walk(key string) *node {
	n := &d.root
	for i := 0; i < len(key); i++ {
		n = n.child(key[i])
		if n == nil {
			return nil
		}
	}
	return n
}

// Remove deletes the entry at key, if present, then collapses any node
// on the path that becomes childless and entryless. Reports whether an
// entry was actually removed.
func (d *Database) Remove(key string) bool {
	if len(key) == 0 {
		return false
	}
	path := make([]*node, 0, len(key)+1)
	n := &d.root
	path = append(path, n)
	for i := 0; i < len(key); i++ {
		n = n.child(key[i])
		if n == nil {
			return false
		}
		path = append(path, n)
	}
	if n.entry == nil {
		return false
	}
	n.entry = nil
	d.size--

	// Walk back up collapsing empty chains, using the traversal stack
	// instead of recursion (avoiding unbounded call-stack growth on iterative
	// tail-cleanup).
	for i := len(path) - 1; i > 0; i-- {
		child := path[i]
		if !child.leaf() {
			break
		}
		parent := path[i-1]
		idx, ok := parent.childIndex(key[i-1])
		if !ok {
			break
		}
		parent.removeChildAt(idx)
	}
	return true
}

// nodeAtPrefix returns the node terminating prefix, or nil if the prefix
// path doesn't exist. An empty prefix returns the root.
func (d *Database) nodeAtPrefix(prefix string) *node {
	n := &d.root
	for i := 0; i < len(prefix); i++ {
		n = n.child(prefix[i])
		if n == nil {
			return nil
		}
	}
	return n
}

// PrefixSearch returns a lazy, depth-first sequence of (key, entry) pairs
// for every terminal entry in the subtree rooted at prefix, ascending by
// byte at each level, parent entry before children. Entries discovered to
// be expired during the scan are lazily evicted and reported via onEvict
// instead of being yielded.
func (d *Database) PrefixSearch(prefix string, now int64, onEvict func(key string, e *Entry)) iter.Seq2[string, *Entry] {
	return func(yield func(string, *Entry) bool) {
		root := d.nodeAtPrefix(prefix)
		if root == nil {
			return
		}
		var walk func(n *node, key string) bool
		walk = func(n *node, key string) bool {
			if n.entry != nil {
				if n.entry.expired(now) {
					stale := n.entry
					d.Remove(key)
					if onEvict != nil {
						onEvict(key, stale)
					}
				} else {
					n.entry.Latime = now
					if !yield(key, n.entry) {
						return false
					}
				}
			}
			// Range over a copy: evicting an expired entry can unlink
			// nodes from n.children while this loop is still running.
			children := append([]*node(nil), n.children...)
			for _, c := range children {
				if !walk(c, key+string(c.chr)) {
					return false
				}
			}
			return true
		}
		walk(root, prefix)
	}
}

// Keys is PrefixSearch with values omitted, backing the KEYS opcode.
func (d *Database) Keys(prefix string, now int64, onEvict func(key string, e *Entry)) iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range d.PrefixSearch(prefix, now, onEvict) {
			if !yield(k) {
				return
			}
		}
	}
}

// PrefixCount counts terminal entries in the subtree rooted at prefix,
// without evicting expired entries (a cheap, approximate count — callers
// that need an exact live count should drain PrefixSearch instead).
func (d *Database) PrefixCount(prefix string) uint64 {
	root := d.nodeAtPrefix(prefix)
	if root == nil {
		return 0
	}
	var n uint64
	var walk func(n *node)
	walk = func(cur *node) {
		if cur.entry != nil {
			n++
		}
		for _, c := range cur.children {
			walk(c)
		}
	}
	walk(root)
	return n
}

// PrefixRemove deletes every terminal entry in the subtree rooted at
// prefix (including the prefix node's own entry, if any), returning the
// entries removed (for expiration-index cleanup) and collapsing now-empty
// chains up to the prefix node's parent.
func (d *Database) PrefixRemove(prefix string) []*Entry {
	root := d.nodeAtPrefix(prefix)
	if root == nil {
		return nil
	}
	var removed []*Entry
	var collect func(n *node)
	collect = func(n *node) {
		if n.entry != nil {
			removed = append(removed, n.entry)
		}
		for _, c := range n.children {
			collect(c)
		}
	}
	collect(root)
	d.size -= len(removed)
	root.entry = nil
	root.children = nil

	if len(prefix) == 0 {
		return removed
	}
	// Collapse the now-possibly-empty chain from the prefix node's parent
	// back up to the database root.
	path := make([]*node, 0, len(prefix))
	n := &d.root
	path = append(path, n)
	for i := 0; i < len(prefix); i++ {
		n = n.child(prefix[i])
		if n == nil {
			break
		}
		path = append(path, n)
	}
	for i := len(path) - 1; i > 0; i-- {
		child := path[i]
		if !child.leaf() {
			break
		}
		parent := path[i-1]
		idx, ok := parent.childIndex(prefix[i-1])
		if !ok {
			break
		}
		parent.removeChildAt(idx)
	}
	return removed
}

// PrefixSet replaces Data and TTL for every terminal entry in the subtree
// rooted at prefix, refreshing Ctime/Latime as Insert would. Returns the
// mutated entries for expiration-index bookkeeping.
func (d *Database) PrefixSet(prefix string, value []byte, ttl int32, now int64) []*Entry {
	root := d.nodeAtPrefix(prefix)
	if root == nil {
		return nil
	}
	var mutated []*Entry
	var walk func(n *node)
	walk = func(n *node) {
		if n.entry != nil {
			n.entry.Data = value
			n.entry.Latime = now
			if ttl >= 0 {
				n.entry.Ctime = now
				n.entry.TTL = ttl
			} else {
				n.entry.TTL = NoTTL
			}
			mutated = append(mutated, n.entry)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return mutated
}

// IncDec adds delta to the integer value at key, replacing Data with the
// textual form of the result. Reports false (NOK) when key
// doesn't exist or its Data doesn't parse as a base-10 integer.
func (d *Database) IncDec(key string, delta int64, now int64) bool {
	n := d.walk(key)
	if n == nil || n.entry == nil {
		return false
	}
	v, err := strconv.ParseInt(string(n.entry.Data), 10, 64)
	if err != nil {
		return false
	}
	n.entry.Data = []byte(strconv.FormatInt(v+delta, 10))
	n.entry.Latime = now
	return true
}

// PrefixInc and PrefixDec add or subtract one from every terminal entry
// in the subtree whose Data parses as a base-10 integer; non-numeric
// entries are left untouched, never treated as an error.
func (d *Database) PrefixInc(prefix string, now int64) { d.prefixStep(prefix, 1, now) }
func (d *Database) PrefixDec(prefix string, now int64) { d.prefixStep(prefix, -1, now) }

func (d *Database) prefixStep(prefix string, delta int64, now int64) {
	root := d.nodeAtPrefix(prefix)
	if root == nil {
		return
	}
	var walk func(n *node)
	walk = func(n *node) {
		if n.entry != nil {
			if v, err := strconv.ParseInt(string(n.entry.Data), 10, 64); err == nil {
				n.entry.Data = []byte(strconv.FormatInt(v+delta, 10))
				n.entry.Latime = now
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
}

// Flush discards every entry and internal node.
func (d *Database) Flush() {
	d.root = node{}
	d.size = 0
}
