package vector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSegmentWriteOpenRoundTrip(t *testing.T) {
	dim := 4
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	retriever := &sliceRetriever{vectors: vectors, similarity: SimilarityDot}
	params := DefaultParams()
	builder := NewBuilder(params, retriever)
	graph := NewGraph()

	records := make([]Record, len(vectors))
	for i, v := range vectors {
		records[i] = Record{
			Key:      "rid/title/" + string(rune('a'+i)),
			Vector:   Quantize(v),
			Labels:   []string{"lang/en"},
			Metadata: []byte("meta"),
		}
		builder.Insert(Address(i), graph)
	}

	fields, labels := BuildFSTs(records)
	seg := Segment{
		Journal: Journal{Similarity: SimilarityDot, Dimension: dim, Count: len(records), CreatedTime: time.Unix(0, 0).UTC()},
		Records: records,
		Graph:   graph,
		Index:   SegmentIndex{Fields: fields, Labels: labels, Records: len(records)},
	}

	dir := t.TempDir()
	require.NoError(t, Write(dir, seg))

	got, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, seg.Journal.Dimension, got.Journal.Dimension)
	require.Equal(t, seg.Journal.Count, got.Journal.Count)
	require.Len(t, got.Records, len(records))
	for i, rec := range got.Records {
		require.Equal(t, records[i].Key, rec.Key)
		require.Equal(t, records[i].Vector.Values, rec.Vector.Values)
	}
	require.NotNil(t, got.Graph.EntryPoint)
	require.Equal(t, len(graph.Layers), len(got.Graph.Layers))
}
