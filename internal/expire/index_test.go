package expire

import (
	"testing"

	"github.com/codepr/tritedb/internal/trie"
	"github.com/stretchr/testify/assert"
)

func TestSweepStopsAtFirstFutureDeadline(t *testing.T) {
	db := trie.New("db0", 0)
	x := NewIndex()

	db.Insert("a", []byte("1"), 1, 0) // deadline 1
	eA, _ := db.Search("a", 0)
	x.Upsert(eA, "a", db)

	db.Insert("b", []byte("2"), 100, 0) // deadline 100
	eB, _ := db.Search("b", 0)
	x.Upsert(eB, "b", db)

	var evictedKeys []string
	n := x.Sweep(5, func(d *trie.Database, key string) {
		evictedKeys = append(evictedKeys, key)
		d.Remove(key)
	})

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a"}, evictedKeys)
	assert.Equal(t, 1, x.Len())
}

func TestUpsertRefreshesExistingRecord(t *testing.T) {
	db := trie.New("db0", 0)
	x := NewIndex()
	db.Insert("k", []byte("v"), 10, 0)
	e, _ := db.Search("k", 0)
	x.Upsert(e, "k", db)
	x.Upsert(e, "k", db)
	assert.Equal(t, 1, x.Len())
}

func TestRemoveDropsRecord(t *testing.T) {
	db := trie.New("db0", 0)
	x := NewIndex()
	db.Insert("k", []byte("v"), 10, 0)
	e, _ := db.Search("k", 0)
	x.Upsert(e, "k", db)
	x.Remove(e)
	assert.Equal(t, 0, x.Len())
}
