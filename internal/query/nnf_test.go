package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNNFNotOfAndBecomesOrOfNots(t *testing.T) {
	e := Not(And(Keyword("a"), Keyword("b")))
	got := ToNNF(e)

	require.Equal(t, KindOr, got.Kind)
	require.Len(t, got.Operands, 2)
	for _, op := range got.Operands {
		require.Equal(t, KindNot, op.Kind)
	}
}

func TestNNFNotOfOrBecomesAndOfNots(t *testing.T) {
	e := Not(Or(Keyword("a"), Keyword("b")))
	got := ToNNF(e)

	require.Equal(t, KindAnd, got.Kind)
	require.Len(t, got.Operands, 2)
	for _, op := range got.Operands {
		require.Equal(t, KindNot, op.Kind)
	}
}

func TestNNFDoubleNegationEliminated(t *testing.T) {
	e := Not(Not(Keyword("a")))
	got := ToNNF(e)
	require.Equal(t, Keyword("a"), got)
}

func TestNNFFlattensNestedAnd(t *testing.T) {
	e := And(And(Keyword("a"), Keyword("b")), Keyword("c"))
	got := ToNNF(e)

	require.Equal(t, KindAnd, got.Kind)
	require.Len(t, got.Operands, 3)
}

func TestNNFFlattensNestedOr(t *testing.T) {
	e := Or(Or(Keyword("a"), Keyword("b")), Keyword("c"))
	got := ToNNF(e)

	require.Equal(t, KindOr, got.Kind)
	require.Len(t, got.Operands, 3)
}

func TestNNFLeavesNotOfAtomAlone(t *testing.T) {
	e := Not(Keyword("a"))
	got := ToNNF(e)
	require.Equal(t, KindNot, got.Kind)
	require.Equal(t, Keyword("a"), got.Operands[0])
}

func TestNNFDeMorganThroughMixedNesting(t *testing.T) {
	// Not(And(a, Or(b, c))) -> Or(Not(a), And(Not(b), Not(c)))
	e := Not(And(Keyword("a"), Or(Keyword("b"), Keyword("c"))))
	got := ToNNF(e)

	require.Equal(t, KindOr, got.Kind)
	require.Len(t, got.Operands, 2)
	require.Equal(t, KindNot, got.Operands[0].Kind)
	require.Equal(t, KindAnd, got.Operands[1].Kind)
}
