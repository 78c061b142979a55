package paragraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleParagraphs() []Paragraph {
	return []Paragraph{
		{ResourceID: "rid1", Field: "/a/body", Text: "the quick brown fox jumps", Start: 0, End: 25, Labels: []string{"animals"}},
		{ResourceID: "rid1", Field: "/a/body", Text: "the quick brown fox jumps", Start: 25, End: 50, Labels: []string{"animals"}, RepeatedInField: true},
		{ResourceID: "rid2", Field: "/a/body", Text: "a calm lake at dawn", Start: 0, End: 19, Labels: []string{"nature"}},
		{ResourceID: "rid3", Field: "/a/body", Text: "database systems guide", Start: 0, End: 23},
	}
}

func TestSearchExactPhraseRequiresAdjacency(t *testing.T) {
	seg := Build(sampleParagraphs())
	results := Search(seg, SearchRequest{Query: `"brown fox"`})
	require.Len(t, results, 1)
	require.Equal(t, 0, results[0].ParagraphIndex)
}

func TestSearchPhraseOutOfOrderDoesNotMatch(t *testing.T) {
	seg := Build(sampleParagraphs())
	results := Search(seg, SearchRequest{Query: `"fox brown"`})
	require.Empty(t, results)
}

func TestSearchExcludesRepeatedInFieldByDefault(t *testing.T) {
	seg := Build(sampleParagraphs())
	results := Search(seg, SearchRequest{Query: "fox"})
	require.Len(t, results, 1)
	require.Equal(t, 0, results[0].ParagraphIndex)
}

func TestSearchWithDuplicatesIncludesRepeated(t *testing.T) {
	seg := Build(sampleParagraphs())
	results := Search(seg, SearchRequest{Query: "fox", WithDuplicates: true})
	require.Len(t, results, 2)
}

func TestFuzzyPrefixOnlyWhenSuggestEnabled(t *testing.T) {
	seg := Build(sampleParagraphs())

	// without the suggest flag, "data" is compared against the whole term
	// "database" (distance 4) and never matches
	withoutSuggest := Search(seg, SearchRequest{Query: "data", WithDuplicates: true})
	require.Empty(t, withoutSuggest)

	// with the suggest flag, "data" becomes a fuzzy *prefix* query, which
	// truncates "database" before comparing and matches within distance 1
	withSuggest := Search(seg, SearchRequest{Query: "data", Suggest: true, WithDuplicates: true})
	require.Len(t, withSuggest, 1)
	require.Equal(t, 3, withSuggest[0].ParagraphIndex)
}

func TestFieldKeySetRestrictsToMatchingResourceField(t *testing.T) {
	seg := Build(sampleParagraphs())
	keys := seg.FieldKeySet([]string{"rid2/a/body"})
	require.False(t, keys.Test(0))
	require.True(t, keys.Test(2))
}

func TestSegmentWriteOpenRoundTrip(t *testing.T) {
	seg := Build(sampleParagraphs())
	dir := t.TempDir()
	require.NoError(t, Write(dir, seg))

	got, err := Open(dir)
	require.NoError(t, err)
	require.Len(t, got.Paragraphs, 4)

	results := Search(got, SearchRequest{Query: "fox"})
	require.Len(t, results, 1)
}
