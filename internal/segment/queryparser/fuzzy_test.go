package queryparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevenshteinExactMatch(t *testing.T) {
	d, ok := Levenshtein("hello", "hello", 1)
	require.Equal(t, 0, d)
	require.True(t, ok)
}

func TestLevenshteinOneEditWithinDistance(t *testing.T) {
	_, ok := Levenshtein("hello", "hallo", 1)
	require.True(t, ok)

	_, ok = Levenshtein("hello", "hall", 1)
	require.False(t, ok, "two edits away, should exceed distance 1")
}

func TestFuzzyMatchesNonPrefix(t *testing.T) {
	require.True(t, FuzzyMatches("databse", "database", 1, false), "one insertion away")
	require.False(t, FuzzyMatches("kitten", "sitting", 1, false), "three edits away")
}

func TestFuzzyMatchesPrefix(t *testing.T) {
	// "data" as a fuzzy prefix should match "database" (prefix "data" is
	// within distance of the first 4+1 runes of the candidate)
	require.True(t, FuzzyMatches("data", "database", 1, true))
	require.False(t, FuzzyMatches("data", "unrelated", 1, true))
}
