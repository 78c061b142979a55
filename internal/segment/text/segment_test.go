package text

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleDocs() []Document {
	return []Document{
		{
			ResourceID: "rid1", Field: "/a/title", Text: "The quick brown fox",
			Created: time.Unix(100, 0), Modified: time.Unix(100, 0),
			Facets: []string{"/l/animals/mammal"}, GroupsPublic: true,
		},
		{
			ResourceID: "rid2", Field: "/a/title", Text: "A lazy dog sleeps",
			Created: time.Unix(200, 0), Modified: time.Unix(200, 0),
			Facets: []string{"/l/animals/mammal"}, GroupsPublic: false, GroupsWithAccess: []string{"team-a"},
		},
		{
			ResourceID: "rid3", Field: "/a/body", Text: "Quick foxes jumping",
			Created: time.Unix(300, 0), Modified: time.Unix(300, 0),
			Facets: []string{"/l/animals/bird"}, GroupsPublic: false, GroupsWithAccess: []string{"team-b"},
		},
		{
			ResourceID: "rid4", Field: "/a/body", Text: "foxx nearby den",
			Created: time.Unix(400, 0), Modified: time.Unix(400, 0),
		},
	}
}

func TestSearchExactKeywordMatch(t *testing.T) {
	seg := Build(sampleDocs())
	results := Search(seg, SearchRequest{Query: "brown"})
	require.Len(t, results, 1)
	require.Equal(t, 0, results[0].DocIndex)
}

func TestSearchFuzzyMatchScoresBelowExact(t *testing.T) {
	seg := Build(sampleDocs())
	// "fox" matches rid1 exactly (keyword branch) and fuzzily matches rid4's
	// "foxx" (one insertion away); rid3's "foxes" is two edits away and
	// matches neither branch.
	results := Search(seg, SearchRequest{Query: "fox"})
	require.Len(t, results, 2)
	require.Equal(t, 0, results[0].DocIndex, "exact match must outrank the fuzzy-only match")
	require.Equal(t, 3, results[1].DocIndex)
}

func TestFacetSetMatchesDescendants(t *testing.T) {
	seg := Build(sampleDocs())
	set := seg.FacetSet("/l/animals")
	require.True(t, set.Test(0))
	require.True(t, set.Test(1))
	require.True(t, set.Test(2))

	mammals := seg.FacetSet("/l/animals/mammal")
	require.True(t, mammals.Test(0))
	require.True(t, mammals.Test(1))
	require.False(t, mammals.Test(2))
}

func TestSecuritySetAppliesPublicOrSharedGroupRule(t *testing.T) {
	seg := Build(sampleDocs())
	set := seg.SecuritySet([]string{"team-b"})
	require.True(t, set.Test(0), "public doc always visible")
	require.False(t, set.Test(1), "private doc, no shared group")
	require.True(t, set.Test(2), "private doc, shared group")
}

func TestDateRangeSet(t *testing.T) {
	seg := Build(sampleDocs())
	since := int64(150)
	set := seg.DateRangeSet("created", &since, nil)
	require.False(t, set.Test(0))
	require.True(t, set.Test(1))
	require.True(t, set.Test(2))
}

func TestSegmentWriteOpenRoundTrip(t *testing.T) {
	seg := Build(sampleDocs())
	dir := t.TempDir()
	require.NoError(t, Write(dir, seg))

	got, err := Open(dir)
	require.NoError(t, err)
	require.Len(t, got.Docs, 4)
	require.Equal(t, seg.Docs[0].ResourceID, got.Docs[0].ResourceID)

	results := Search(got, SearchRequest{Query: "fox"})
	require.NotEmpty(t, results)
}
