package queryparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeEmptyQuery(t *testing.T) {
	require.Empty(t, Tokenize(""))
	require.Empty(t, Tokenize("   "))
}

func TestTokenizeSimpleQuery(t *testing.T) {
	got := Tokenize("This is a simple query")
	want := []Token{
		{TokenLiteral, "This"}, {TokenLiteral, "is"}, {TokenLiteral, "a"},
		{TokenLiteral, "simple"}, {TokenLiteral, "query"},
	}
	require.Equal(t, want, got)
}

func TestTokenizeExcludedWords(t *testing.T) {
	got := Tokenize("This is an -excluded word")
	want := []Token{
		{TokenLiteral, "This"}, {TokenLiteral, "is"}, {TokenLiteral, "an"},
		{TokenExcluded, "excluded"}, {TokenLiteral, "word"},
	}
	require.Equal(t, want, got)

	got = Tokenize("-Everything -is -excluded")
	want = []Token{
		{TokenExcluded, "Everything"}, {TokenExcluded, "is"}, {TokenExcluded, "excluded"},
	}
	require.Equal(t, want, got)
}

func TestTokenizeQuotedStrings(t *testing.T) {
	require.Equal(t, []Token{{TokenQuoted, "quoted"}}, Tokenize(`"quoted"`))

	require.Equal(t, []Token{
		{TokenLiteral, "This"}, {TokenLiteral, "is"}, {TokenQuoted, "really important"},
	}, Tokenize(`This is "really important"`))

	// unterminated quote: drop the quote mark, rescan the rest as literals
	require.Equal(t, []Token{
		{TokenLiteral, "half"}, {TokenLiteral, "quoted"}, {TokenLiteral, "string"},
	}, Tokenize(`half "quoted string`))

	require.Equal(t, []Token{
		{TokenLiteral, "half"}, {TokenLiteral, "quoted"}, {TokenLiteral, "string"},
	}, Tokenize(`half" quoted string`))

	require.Equal(t, []Token{
		{TokenLiteral, "half"}, {TokenLiteral, "q"}, {TokenLiteral, "uoted"}, {TokenLiteral, "string"},
	}, Tokenize(`half q"uoted string`))
}

func TestTokenizeExcludedInsideQuotesIsNotExcluded(t *testing.T) {
	got := Tokenize(`This is "really -important"`)
	want := []Token{
		{TokenLiteral, "This"}, {TokenLiteral, "is"}, {TokenQuoted, "really -important"},
	}
	require.Equal(t, want, got)
}

func TestTokenizeComplexCombinations(t *testing.T) {
	got := Tokenize(`This is "really" "important stuff" -except for this`)
	want := []Token{
		{TokenLiteral, "This"}, {TokenLiteral, "is"},
		{TokenQuoted, "really"}, {TokenQuoted, "important stuff"},
		{TokenExcluded, "except"}, {TokenLiteral, "for"}, {TokenLiteral, "this"},
	}
	require.Equal(t, want, got)
}
