package dtrie

import (
	"testing"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Grounded directly on original_source/nidx/nidx_vector/src/data_types/dtrie_ram.rs's insert_search test.
func TestInsertSearch(t *testing.T) {
	const key, n0, n1, n2 = "key", "key_0", "key_1", "key_2"
	tplus0, tplus1, tplus2, tplus3 := ids.Seq(100), ids.Seq(101), ids.Seq(102), ids.Seq(103)

	trie := New()
	trie.Insert([]byte(key), tplus0)
	trie.Insert([]byte(n0), tplus1)
	trie.Insert([]byte(n1), tplus2)
	trie.Insert([]byte(n2), tplus3)

	assertLookup := func(k string, want ids.Seq) {
		got, ok := trie.Lookup([]byte(k))
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assertLookup(n0, tplus1)
	assertLookup(n1, tplus2)
	assertLookup(n2, tplus3)
	assertLookup(key, tplus0)

	// Inserting a prefix clears the values already stored below it: "key_0",
	// inserted before "key", now resolves to the prefix's value, while
	// "key_1" and "key_2", inserted after it, keep their own larger values.
	trie2 := New()
	trie2.Insert([]byte(n0), tplus1)
	trie2.Insert([]byte(key), tplus0)
	trie2.Insert([]byte(n1), tplus2)
	trie2.Insert([]byte(n2), tplus3)
	got, _ := trie2.Lookup([]byte(key))
	assert.Equal(t, tplus0, got)
	got, _ = trie2.Lookup([]byte(n0))
	assert.Equal(t, tplus0, got)
	got, _ = trie2.Lookup([]byte(n1))
	assert.Equal(t, tplus2, got)
	got, _ = trie2.Lookup([]byte(n2))
	assert.Equal(t, tplus3, got)
}

// P4: deletion-log watermark monotonically advances (pruning never
// resurrects a value below the watermark).
func TestPrune(t *testing.T) {
	const key, n0, n1, n2 = "key", "key_0", "key_1", "key_2"
	tplus0, tplus1, tplus2, tplus3 := ids.Seq(100), ids.Seq(101), ids.Seq(102), ids.Seq(103)

	build := func() *DTrie {
		trie := New()
		trie.Insert([]byte(key), tplus0)
		trie.Insert([]byte(n0), tplus1)
		trie.Insert([]byte(n1), tplus2)
		trie.Insert([]byte(n2), tplus3)
		return trie
	}

	// Pruning removes values strictly below the watermark: an entry whose
	// value equals the watermark survives.
	trie := build()
	trie.Prune(tplus0)
	got, ok := trie.Lookup([]byte(key))
	assert.True(t, ok)
	assert.Equal(t, tplus0, got)
	got, _ = trie.Lookup([]byte(n0))
	assert.Equal(t, tplus1, got)

	trie = build()
	trie.Prune(tplus3)
	for _, k := range []string{key, n0, n1} {
		_, ok := trie.Lookup([]byte(k))
		assert.False(t, ok, k)
	}
	got, ok = trie.Lookup([]byte(n2))
	assert.True(t, ok)
	assert.Equal(t, tplus3, got)
}

func TestDeleted(t *testing.T) {
	trie := New()
	trie.Insert([]byte("doc/1"), ids.Seq(10))

	assert.True(t, trie.Deleted([]byte("doc/1"), ids.Seq(10)))
	assert.True(t, trie.Deleted([]byte("doc/1"), ids.Seq(5)))
	assert.False(t, trie.Deleted([]byte("doc/1"), ids.Seq(11)))
	assert.False(t, trie.Deleted([]byte("doc/2"), ids.Seq(5)))
}
