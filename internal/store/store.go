// Package store is the single synchronization root for the trie registry
// and the expiration index: the single "store lock" in tritedb's concurrency
// model. Every command handler and the periodic sweeper go through here.
package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/codepr/tritedb/internal/expire"
	"github.com/codepr/tritedb/internal/protocol"
	"github.com/codepr/tritedb/internal/trie"
)

// Stats are monotonic per-process counters. The spec explicitly permits
// small races on these (§5, §9), so they're plain atomics read without
// also holding the store lock.
type Stats struct {
	Requests     atomic.Uint64
	BytesRead    atomic.Uint64
	BytesWritten atomic.Uint64
}

// Store owns the database registry and the expiration index behind one
// mutex, exactly as spec.md §5 requires: "every mutation and every scan
// that can observe inconsistent intermediate state must be performed
// under this lock."
type Store struct {
	mu       sync.Mutex
	registry *trie.Registry
	index    *expire.Index

	Stats   Stats
	Started time.Time
	now     func() int64
}

// New builds a store with a fresh registry (pre-seeded with db0) and an
// empty expiration index.
func New() *Store {
	now := func() int64 { return time.Now().Unix() }
	return &Store{
		registry: trie.NewRegistry(now()),
		index:    expire.NewIndex(),
		Started:  time.Now(),
		now:      now,
	}
}

func (s *Store) clock() int64 { return s.now() }

// Use selects or creates the named database, pinning a session to it.
func (s *Store) Use(name string) *trie.Database {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.GetOrCreate(name, s.clock())
}

// Put inserts or replaces key under either exact or prefix semantics,
// depending on prefix. Always reports OK, per the PUT handler contract.
func (s *Store) Put(db *trie.Database, prefix bool, key string, value []byte, ttl int32) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()

	if prefix {
		// Each record must carry its entry's full key, not the prefix.
		keys := make(map[*trie.Entry]string)
		for k, e := range db.PrefixSearch(key, now, s.onEvict) {
			keys[e] = k
		}
		for _, e := range db.PrefixSet(key, value, ttl, now) {
			s.refreshTTL(db, keys[e], e, ttl)
		}
		return protocol.OK
	}

	e, _ := db.Insert(key, value, ttl, now)
	s.refreshTTL(db, key, e, ttl)
	return protocol.OK
}

// refreshTTL keeps the expiration index in sync with an entry's TTL
// after an insert/prefix-set: registers or refreshes the X record when
// ttl >= 0, drops it otherwise.
func (s *Store) refreshTTL(db *trie.Database, key string, e *trie.Entry, ttl int32) {
	if ttl >= 0 {
		s.index.Upsert(e, key, db)
	} else {
		s.index.Remove(e)
	}
}

// Get performs an exact or prefix-scoped read, evicting any expired
// entries discovered along the way.
func (s *Store) Get(db *trie.Database, prefix bool, key string) ([]protocol.Tuple, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()

	if !prefix {
		e, evicted := db.Search(key, now)
		if evicted != nil {
			s.index.Remove(evicted)
		}
		if e == nil {
			return nil, false
		}
		return []protocol.Tuple{{TTL: e.TTL, Key: key, Value: e.Data}}, true
	}

	var tuples []protocol.Tuple
	for k, e := range db.PrefixSearch(key, now, s.onEvict) {
		tuples = append(tuples, protocol.Tuple{TTL: e.TTL, Key: k, Value: e.Data})
	}
	return tuples, len(tuples) > 0
}

// Keys is Get with values omitted, backing the KEYS opcode.
func (s *Store) Keys(db *trie.Database, prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()

	var keys []string
	for k := range db.Keys(prefix, now, s.onEvict) {
		keys = append(keys, k)
	}
	return keys
}

func (s *Store) onEvict(key string, e *trie.Entry) {
	s.index.Remove(e)
}

// Del removes one key, or every key in a subtree when prefix is set.
// Reports OK iff at least one key was removed.
func (s *Store) Del(db *trie.Database, prefix bool, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !prefix {
		e, evicted := db.Search(key, s.clock())
		if evicted != nil {
			s.index.Remove(evicted)
		}
		if e == nil {
			return false
		}
		s.index.Remove(e)
		return db.Remove(key)
	}
	removed := db.PrefixRemove(key)
	for _, e := range removed {
		s.index.Remove(e)
	}
	return len(removed) > 0
}

// SetTTL assigns or refreshes the TTL on an existing key. Reports false
// (NOK) if the key is absent.
func (s *Store) SetTTL(db *trie.Database, key string, ttl int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()

	e, evicted := db.Search(key, now)
	if evicted != nil {
		s.index.Remove(evicted)
	}
	if e == nil {
		return false
	}
	e.Ctime = now
	e.TTL = ttl
	s.refreshTTL(db, key, e, ttl)
	return true
}

// IncDec applies delta to an existing numeric key, or to every numeric
// key in a subtree when prefix is set (silently skipping non-numeric
// entries in that case).
func (s *Store) IncDec(db *trie.Database, prefix bool, key string, delta int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()

	if !prefix {
		return db.IncDec(key, delta, now)
	}
	if delta >= 0 {
		db.PrefixInc(key, now)
	} else {
		db.PrefixDec(key, now)
	}
	return true
}

// Count returns the size of db, or a prefix-scoped count when prefix is
// non-empty.
func (s *Store) Count(db *trie.Database, prefix string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prefix == "" {
		return uint64(db.Size())
	}
	return db.PrefixCount(prefix)
}

// Flush clears db entirely.
func (s *Store) Flush(db *trie.Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range db.PrefixSearch("", s.clock(), s.onEvict) {
		s.index.Remove(e)
	}
	db.Flush()
}

// TotalKeys sums Size() across every database in the registry, for INFO.
func (s *Store) TotalKeys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.TotalSize()
}

// Sweep runs one pass of the expiration sweeper under the store lock,
// evicting every record whose deadline has passed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Sweep(s.clock(), func(db *trie.Database, key string) {
		db.Remove(key)
	})
}
