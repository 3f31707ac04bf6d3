package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSearchRoundtrip(t *testing.T) {
	d := New("db0", 1000)
	d.Insert("foo", []byte("bar"), NoTTL, 1000)

	got, evicted := d.Search("foo", 1000)
	require.Nil(t, evicted)
	require.NotNil(t, got)
	assert.Equal(t, []byte("bar"), got.Data)
	assert.Equal(t, NoTTL, got.TTL)

	assert.True(t, d.Remove("foo"))
	got, _ = d.Search("foo", 1000)
	assert.Nil(t, got)
}

func TestChildOrderAscending(t *testing.T) {
	d := New("db0", 0)
	for _, k := range []string{"cat", "apple", "banana", "ant"} {
		d.Insert(k, []byte("v"), NoTTL, 0)
	}
	var check func(n *node)
	check = func(n *node) {
		for i := 1; i < len(n.children); i++ {
			assert.Less(t, n.children[i-1].chr, n.children[i].chr)
		}
		for _, c := range n.children {
			check(c)
		}
	}
	check(&d.root)
}

func TestSizeConsistency(t *testing.T) {
	d := New("db0", 0)
	keys := []string{"alpha", "alphax", "beta", "alphaz"}
	for _, k := range keys {
		d.Insert(k, []byte("v"), NoTTL, 0)
	}
	assert.Equal(t, len(keys), d.Size())

	var dfsCount func(n *node) int
	dfsCount = func(n *node) int {
		c := 0
		if n.entry != nil {
			c = 1
		}
		for _, ch := range n.children {
			c += dfsCount(ch)
		}
		return c
	}
	assert.Equal(t, d.Size(), dfsCount(&d.root))

	d.Remove("alphax")
	assert.Equal(t, len(keys)-1, d.Size())
	assert.Equal(t, d.Size(), dfsCount(&d.root))
}

func TestTTLExpiry(t *testing.T) {
	d := New("db0", 0)
	d.Insert("tmp", []byte("x"), 1, 0)
	assert.Equal(t, 1, d.Size())

	got, evicted := d.Search("tmp", 2)
	assert.Nil(t, got)
	require.NotNil(t, evicted)
	assert.Equal(t, 0, d.Size())
}

func TestRemoveEmptyKeyRejected(t *testing.T) {
	d := New("db0", 0)
	assert.False(t, d.Remove(""))
}

func TestPrefixCountAndRemove(t *testing.T) {
	d := New("db0", 0)
	d.Insert("alpha", []byte("1"), NoTTL, 0)
	d.Insert("alphax", []byte("2"), NoTTL, 0)
	d.Insert("beta", []byte("3"), NoTTL, 0)

	assert.Equal(t, uint64(2), d.PrefixCount("alpha"))

	removed := d.PrefixRemove("alpha")
	assert.Len(t, removed, 2)
	assert.Equal(t, uint64(0), d.PrefixCount("alpha"))
	assert.Equal(t, 1, d.Size())

	got, _ := d.Search("beta", 0)
	assert.NotNil(t, got)
}

func TestPrefixIncDecSkipsNonNumeric(t *testing.T) {
	d := New("db0", 0)
	d.Insert("n", []byte("9"), NoTTL, 0)
	d.Insert("ns", []byte("abc"), NoTTL, 0)

	d.PrefixInc("n", 0)

	got, _ := d.Search("n", 0)
	require.NotNil(t, got)
	assert.Equal(t, "10", string(got.Data))

	got, _ = d.Search("ns", 0)
	require.NotNil(t, got)
	assert.Equal(t, "abc", string(got.Data))
}

func TestPrefixSearchOrderAndLazyEviction(t *testing.T) {
	d := New("db0", 0)
	for _, k := range []string{"alpha", "alphax", "beta"} {
		d.Insert(k, []byte(k), NoTTL, 0)
	}
	d.Insert("alphaold", []byte("dead"), 1, 0)

	var evicted []string
	var keys []string
	for k := range d.PrefixSearch("alpha", 5, func(key string, e *Entry) {
		evicted = append(evicted, key)
	}) {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"alpha", "alphax"}, keys)
	assert.Equal(t, []string{"alphaold"}, evicted)
}

func TestFlush(t *testing.T) {
	d := New("db0", 0)
	d.Insert("a", []byte("1"), NoTTL, 0)
	d.Insert("b", []byte("2"), NoTTL, 0)
	d.Flush()
	assert.Equal(t, 0, d.Size())
	got, _ := d.Search("a", 0)
	assert.Nil(t, got)
}
