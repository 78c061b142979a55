package queryparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsStopWordCaseInsensitive(t *testing.T) {
	require.True(t, IsStopWord("is"))
	require.True(t, IsStopWord("IS"))
	require.True(t, IsStopWord("le"))
	require.True(t, IsStopWord("el"))
	require.False(t, IsStopWord("nuclia"))
}

func TestRemoveStopWordsDropsMiddleButKeepsLast(t *testing.T) {
	tokens := []Token{
		{TokenLiteral, "music"}, {TokenLiteral, "is"}, {TokenLiteral, "classical"},
	}
	got := RemoveStopWords(tokens)
	want := []Token{{TokenLiteral, "music"}, {TokenLiteral, "classical"}}
	require.Equal(t, want, got)
}

func TestRemoveStopWordsOnlyAffectsLiterals(t *testing.T) {
	tokens := []Token{
		{TokenLiteral, "music"}, {TokenQuoted, "is"}, {TokenLiteral, "classical"},
	}
	got := RemoveStopWords(tokens)
	require.Equal(t, tokens, got)
}

func TestRemoveStopWordsKeepsTrailingStopWord(t *testing.T) {
	tokens := []Token{
		{TokenLiteral, "classical"}, {TokenLiteral, "music"}, {TokenLiteral, "is"},
	}
	got := RemoveStopWords(tokens)
	require.Equal(t, tokens, got)
}

func TestRemoveStopWordsAllStopWordsKeepsOnlyLast(t *testing.T) {
	tokens := []Token{
		{TokenLiteral, "and"}, {TokenLiteral, "the"}, {TokenLiteral, "was"}, {TokenLiteral, "here"},
	}
	got := RemoveStopWords(tokens)
	require.Equal(t, []Token{{TokenLiteral, "here"}}, got)
}
