package relation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeConcatenatesAllInputs(t *testing.T) {
	triples := sampleTriples()
	a := MergeInput{Triples: triples[:1]}
	b := MergeInput{Triples: triples[1:]}

	seg := Merge([]MergeInput{a, b})
	require.Len(t, seg.Triples, len(triples))
}
