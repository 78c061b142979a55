package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitSeparatesPrefilterFromInParagraph(t *testing.T) {
	e := And(Security([]string{"g1"}), Keyword("hello"))
	pre, inPara := Split(e)

	require.True(t, Eval(pre, Facts{Public: true}))
	require.False(t, Eval(inPara, Facts{Keywords: []string{"nope"}}))
	require.True(t, Eval(inPara, Facts{Keywords: []string{"hello"}}))
}

func TestSplitPreservesOrStructure(t *testing.T) {
	e := Or(Security([]string{"g1"}), Keyword("hello"))
	pre, inPara := Split(e)

	// The keyword atom is replaced with "true" in the prefilter
	// projection, so a non-public, non-member record is still
	// allowed through the prefilter — the in-paragraph half is what
	// actually constrains it.
	require.True(t, Eval(pre, Facts{Public: false}))
	require.False(t, Eval(inPara, Facts{Keywords: nil}))
}

func TestSplitEmptyExpressionIsVacuouslyTrue(t *testing.T) {
	pre, inPara := Split(And())
	require.True(t, Eval(pre, Facts{}))
	require.True(t, Eval(inPara, Facts{}))
}
