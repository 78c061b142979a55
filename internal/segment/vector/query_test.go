package vector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/fstindex"
)

func TestSearchAppliesFilterAndMinScoreAndDedup(t *testing.T) {
	vectors := [][]float32{
		{1, 0},
		{0.9, 0.1},
		{0, 1},
	}
	records := []Record{
		{Key: "a", Vector: Quantize(vectors[0]), Labels: []string{"keep"}},
		{Key: "b", Vector: Quantize(vectors[1]), Labels: []string{"drop"}},
		{Key: "c", Vector: Quantize(vectors[2]), Labels: []string{"keep"}},
	}

	retriever := &sliceRetriever{vectors: vectors, similarity: SimilarityDot}
	builder := NewBuilder(DefaultParams(), retriever)
	graph := NewGraph()
	for i := range vectors {
		builder.Insert(Address(i), graph)
	}

	labels := fstindex.NewBuilder()
	labels.Add("keep", 0)
	labels.Add("drop", 1)
	labels.Add("keep", 2)
	idx := SegmentIndex{Labels: labels.Build(), Fields: fstindex.NewBuilder().Build(), Records: 3}

	formula := Formula{Clauses: []Clause{LabelAtom("keep")}}
	results := Search(graph, records, SimilarityDot, idx, SearchRequest{
		Query:    []float32{1, 0},
		K:        5,
		EfSearch: 10,
		Filter:   &formula,
		MinScore: -1,
	})

	for _, r := range results {
		require.NotEqual(t, "b", r.Key, "result with a filtered-out label must not appear")
	}
	require.NotEmpty(t, results)
}

func TestSearchRespectsK(t *testing.T) {
	vectors := make([][]float32, 20)
	records := make([]Record, 20)
	for i := range vectors {
		v := []float32{float32(i), 1}
		vectors[i] = v
		records[i] = Record{Key: "k", Vector: Quantize(v)}
	}
	retriever := &sliceRetriever{vectors: vectors, similarity: SimilarityDot}
	builder := NewBuilder(DefaultParams(), retriever)
	graph := NewGraph()
	for i := range vectors {
		builder.Insert(Address(i), graph)
	}

	idx := SegmentIndex{Labels: fstindex.NewBuilder().Build(), Fields: fstindex.NewBuilder().Build(), Records: 20}
	results := Search(graph, records, SimilarityDot, idx, SearchRequest{
		Query: []float32{19, 1}, K: 3, EfSearch: 20, WithDuplicates: true, MinScore: -1000,
	})
	require.LessOrEqual(t, len(results), 3)
}
