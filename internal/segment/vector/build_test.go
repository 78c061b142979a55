package vector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type sliceRetriever struct {
	vectors    [][]float32
	similarity Similarity
}

func (r *sliceRetriever) Vector(x Address) []float32 { return r.vectors[x] }
func (r *sliceRetriever) Similarity() Similarity      { return r.similarity }

func randomUnitVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(rng.Float64()*2 - 1)
	}
	Normalize(v)
	return v
}

func TestBuilderInsertFindsNearestNeighborByBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 200
	const dim = 16

	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = randomUnitVector(rng, dim)
	}
	retriever := &sliceRetriever{vectors: vectors, similarity: SimilarityCosine}

	params := DefaultParams()
	builder := NewBuilder(params, retriever)
	graph := NewGraph()
	for i := range vectors {
		builder.Insert(Address(i), graph)
	}

	query := randomUnitVector(rng, dim)
	bruteBest := bruteForceTopK(vectors, query, 5)

	found := layerSearch(retriever, graph.Layers[0], query, 50, []Address{graph.EntryPoint.Node})
	require.NotEmpty(t, found)

	foundSet := make(map[Address]struct{}, len(found))
	for _, f := range found {
		foundSet[f.Addr] = struct{}{}
	}
	hits := 0
	for _, b := range bruteBest {
		if _, ok := foundSet[b]; ok {
			hits++
		}
	}
	require.GreaterOrEqual(t, hits, 3, "HNSW beam search should recall most of the true nearest neighbors")
}

func bruteForceTopK(vectors [][]float32, query []float32, k int) []Address {
	type scored struct {
		addr  Address
		score float32
	}
	var all []scored
	for i, v := range vectors {
		all = append(all, scored{addr: Address(i), score: SimilarityCosine.Score(query, v)})
	}
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].score > all[j-1].score; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	if len(all) > k {
		all = all[:k]
	}
	out := make([]Address, len(all))
	for i, s := range all {
		out[i] = s.addr
	}
	return out
}

func TestEntryPointPromotesToHighestLayerNode(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	retriever := &sliceRetriever{similarity: SimilarityDot}
	for i := 0; i < 50; i++ {
		retriever.vectors = append(retriever.vectors, randomUnitVector(rng, 4))
	}

	params := DefaultParams()
	builder := NewBuilder(params, retriever)
	graph := NewGraph()
	for i := range retriever.vectors {
		builder.Insert(Address(i), graph)
	}

	require.NotNil(t, graph.EntryPoint)
	require.Equal(t, len(graph.Layers)-1, graph.EntryPoint.Layer)
}
