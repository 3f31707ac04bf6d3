// Package trie implements the prefix-indexed keyspace that backs every
// tritedb database: a byte-at-a-time trie whose terminal nodes carry an
// Entry, plus the named-database registry built on top of it.
package trie

// NoTTL is the sentinel TTL value meaning "this entry never expires".
const NoTTL int32 = -1

// Entry is the payload stored at a terminal trie node.
//
// Ctime and Latime are unix seconds. Ctime is reset whenever a TTL >= 0
// is (re)assigned; replacing Data without assigning a TTL, including
// INC/DEC, leaves Ctime (and so the expiry deadline) unchanged. Latime is
// updated on every successful read and on every mutation.
type Entry struct {
	Data   []byte
	TTL    int32
	Ctime  int64
	Latime int64
}

// Expires reports whether the entry carries a TTL at all.
func (e *Entry) Expires() bool {
	return e.TTL >= 0
}

// Deadline returns the unix-second instant at which the entry expires.
// Only meaningful when Expires reports true.
func (e *Entry) Deadline() int64 {
	return e.Ctime + int64(e.TTL)
}

// expired reports whether the entry's deadline has passed as of now.
func (e *Entry) expired(now int64) bool {
	return e.Expires() && e.Deadline() <= now
}
