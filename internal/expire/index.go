// Package expire implements the priority-ordered expiration index (X)
// expiration index (X): a vector of (deadline, entry, key, database)
// records kept sorted ascending by deadline, swept lazily on read and
// periodically by a background sweeper.
package expire

import (
	"sort"

	"github.com/codepr/tritedb/internal/trie"
)

// Record is a single expiration-index entry. It does not own the entry
// it references — the owning Database does — but it does own its copy
// of the key string, since evicting the entry requires re-traversing the
// trie by key.
type Record struct {
	Entry *trie.Entry
	Key   string
	DB    *trie.Database
}

func (r Record) deadline() int64 { return r.Entry.Deadline() }

// Index is the expiration vector X. It is not safe for concurrent use;
// callers serialize access with the store lock, exactly as the trie
// itself is serialized.
type Index struct {
	records []Record
	sorted  bool
}

// NewIndex returns an empty expiration index.
func NewIndex() *Index {
	return &Index{sorted: true}
}

// Len reports the number of tracked records.
func (x *Index) Len() int { return len(x.records) }

// Upsert registers or refreshes the expiration record for entry. If a
// record already references this exact entry pointer it is replaced
// in place; otherwise a new record is appended. The index is marked for
// a full re-sort, performed lazily on the next Sweep call.
func (x *Index) Upsert(entry *trie.Entry, key string, db *trie.Database) {
	for i := range x.records {
		if x.records[i].Entry == entry {
			x.records[i].Key = key
			x.records[i].DB = db
			x.sorted = false
			return
		}
	}
	x.records = append(x.records, Record{Entry: entry, Key: key, DB: db})
	x.sorted = false
}

// Remove drops the record referencing entry, if any. Used when a key's
// TTL is cleared, or the key is deleted or evicted out from under the
// index by a direct store mutation.
func (x *Index) Remove(entry *trie.Entry) {
	for i := range x.records {
		if x.records[i].Entry == entry {
			x.records = append(x.records[:i], x.records[i+1:]...)
			return
		}
	}
}

func (x *Index) ensureSorted() {
	if x.sorted {
		return
	}
	sort.Slice(x.records, func(i, j int) bool {
		return x.records[i].deadline() < x.records[j].deadline()
	})
	x.sorted = true
}

// Sweep walks records from the head, evicting every record whose
// deadline is <= now via onEvict, and stops at the first record whose
// deadline is still in the future — this relies on the sort invariant,
// restored here before the walk begins. Eviction (removing the entry
// from its owning trie and decrementing its size) is the caller's
// responsibility inside onEvict; the record itself is always dropped
// from the index regardless, since a swept record's entry is gone
// either way.
func (x *Index) Sweep(now int64, onEvict func(db *trie.Database, key string)) (evicted int) {
	x.ensureSorted()
	i := 0
	for ; i < len(x.records); i++ {
		r := x.records[i]
		if r.deadline() > now {
			break
		}
		if onEvict != nil {
			onEvict(r.DB, r.Key)
		}
		evicted++
	}
	if i > 0 {
		x.records = x.records[i:]
	}
	return evicted
}
