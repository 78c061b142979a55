package queryparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKeywordEmptyQueryIsAllQuery(t *testing.T) {
	q := ParseKeyword(nil)
	require.IsType(t, AllQuery{}, q)
}

func TestParseKeywordOneClauseSimplification(t *testing.T) {
	q := ParseKeyword([]Token{{TokenLiteral, "nucliadb"}})
	require.Equal(t, TermQuery{Term: "nucliadb"}, q)
}

func TestParseKeywordQuotedPhraseVsSingleWord(t *testing.T) {
	tokens := []Token{
		{TokenLiteral, "nucliadb"},
		{TokenExcluded, "is"},
		{TokenQuoted, "RAG database"},
		{TokenQuoted, "superpowers"},
	}
	q := ParseKeyword(tokens).(BooleanQuery)
	require.Len(t, q.Clauses, 4)
	require.Equal(t, TermQuery{Term: "nucliadb"}, q.Clauses[0].Query)
	require.Equal(t, excludedQuery("is"), q.Clauses[1].Query)
	require.Equal(t, PhraseQuery{Terms: []string{"RAG", "database"}}, q.Clauses[2].Query)
	// a single-word quoted span becomes a term query, not a one-term phrase
	require.Equal(t, TermQuery{Term: "superpowers"}, q.Clauses[3].Query)
}

func TestFuzzyShortLiteralsStayExactTerms(t *testing.T) {
	// "ab" is shorter than MinFuzzyLen
	q := ParseFuzzy([]Token{{TokenLiteral, "ab"}}, false)
	require.Equal(t, TermQuery{Term: "ab"}, q)
}

func TestFuzzyLongLiteralsBecomeFuzzyTerms(t *testing.T) {
	q := ParseFuzzy([]Token{{TokenLiteral, "abcd"}}, false)
	fq, ok := q.(FuzzyQuery)
	require.True(t, ok)
	require.False(t, fq.Prefix)
	require.Equal(t, FuzzyDistance, fq.Distance)
}

func TestFuzzyLastLiteralBecomesPrefixOnlyWhenFlagSet(t *testing.T) {
	tokens := []Token{{TokenLiteral, "abcd"}}

	q := ParseFuzzy(tokens, false).(FuzzyQuery)
	require.False(t, q.Prefix)

	q = ParseFuzzy(tokens, true).(FuzzyQuery)
	require.True(t, q.Prefix)

	// only the last literal becomes a prefix query when there are several
	multi := ParseFuzzy([]Token{{TokenLiteral, "abcd"}, {TokenLiteral, "abcd"}}, true).(BooleanQuery)
	require.Len(t, multi.Clauses, 2)
	first := multi.Clauses[0].Query.(FuzzyQuery)
	second := multi.Clauses[1].Query.(FuzzyQuery)
	require.False(t, first.Prefix)
	require.True(t, second.Prefix)

	// shorter terms never become a fuzzy prefix, flag or not
	short := ParseFuzzy([]Token{{TokenLiteral, "abc"}}, true).(FuzzyQuery)
	require.False(t, short.Prefix)
}

func TestParseAppliesStopWordRemovalBeforeBuildingBothQueries(t *testing.T) {
	parsed := Parse("music is classical", false)
	kw := parsed.Keyword.(BooleanQuery)
	require.Len(t, kw.Clauses, 2)
	require.Equal(t, TermQuery{Term: "music"}, kw.Clauses[0].Query)
	require.Equal(t, TermQuery{Term: "classical"}, kw.Clauses[1].Query)

	fz := parsed.Fuzzy.(BooleanQuery)
	require.Len(t, fz.Clauses, 2)
	require.Equal(t, FuzzyQuery{Term: "music", Distance: FuzzyDistance}, fz.Clauses[0].Query)
	require.Equal(t, FuzzyQuery{Term: "classical", Distance: FuzzyDistance}, fz.Clauses[1].Query)
}
