package indexer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/segment/relation"
)

func sampleResource() Resource {
	return Resource{
		ResourceID: "rid1",
		Fields: map[string]Field{
			"a/title":   {Text: "Quick fox"},
			"a/summary": {Text: "A fox jumps over a lazy dog"},
		},
		Paragraphs: map[string]ParagraphField{
			"rid1/a/summary/0": {Field: "a/summary", Text: "A fox jumps", Start: 0, End: 11, Labels: []string{"animals"}},
			"rid1/a/summary/1": {Field: "a/summary", Text: "over a lazy dog", Start: 12, End: 27},
		},
		Sentences: map[string]Sentence{
			"rid1/a/summary/0/0-11": {
				Field: "a/summary", Vector: []float32{1, 0, 0},
				Cardinality: CardinalitySingle, Vectorset: "__default__",
			},
			"rid1/a/summary/1/12-27": {
				Field: "a/summary", Vector: []float32{0, 1, 0, 0, 0, 1},
				Cardinality: CardinalityMulti, TokenDim: 3, Vectorset: "__default__",
			},
		},
		Relations: []RelationField{
			{
				Source:       relation.Entity{Value: "fox", Type: "entity"},
				Relationship: "chases",
				Target:       relation.Entity{Value: "dog", Type: "entity"},
			},
		},
		Labels:           []string{"/n/i/doc"},
		GroupsPublic:     true,
		Created:          time.Unix(1000, 0),
		Modified:         time.Unix(2000, 0),
		DeletedKeys: map[ids.IndexKind][]string{
			ids.IndexKindParagraph: {"rid1/a/old/0"},
		},
	}
}

func TestBuildTextDocumentsOnePerField(t *testing.T) {
	docs := BuildTextDocuments(sampleResource())
	require.Len(t, docs, 2)
	require.Equal(t, "a/summary", docs[0].Field)
	require.Equal(t, "a/title", docs[1].Field)
	require.True(t, docs[0].GroupsPublic)
	require.Contains(t, docs[0].Facets, "/n/i/doc")
}

func TestBuildParagraphsMergesResourceAndOwnLabels(t *testing.T) {
	paragraphs := BuildParagraphs(sampleResource())
	require.Len(t, paragraphs, 2)
	require.Contains(t, paragraphs[0].Labels, "/n/i/doc")
	require.Contains(t, paragraphs[0].Labels, "animals")
	require.Equal(t, "a/summary", paragraphs[0].Field)
}

func TestBuildRelationTriples(t *testing.T) {
	triples := BuildRelationTriples(sampleResource())
	require.Len(t, triples, 1)
	require.Equal(t, "fox", triples[0].Source.Value)
	require.Equal(t, "chases", triples[0].Relationship)
}

func TestBuildVectorElemsSplitsMultiCardinality(t *testing.T) {
	elems := BuildVectorElems(sampleResource(), "__default__", false)
	require.Len(t, elems, 3) // 1 single + 2 tokens from the multi sentence

	var keys []string
	for _, e := range elems {
		keys = append(keys, e.Key)
	}
	require.Contains(t, keys, "rid1/a/summary/0/0-11")
	require.Contains(t, keys, "rid1/a/summary/1/12-27/0")
	require.Contains(t, keys, "rid1/a/summary/1/12-27/1")
}

func TestBuildVectorElemsFiltersByVectorset(t *testing.T) {
	elems := BuildVectorElems(sampleResource(), "other-vectorset", false)
	require.Empty(t, elems)
}

func TestBuildVectorElemsNormalizes(t *testing.T) {
	elems := BuildVectorElems(sampleResource(), "__default__", true)
	for _, e := range elems {
		var sumSq float64
		for _, v := range e.Vector {
			sumSq += float64(v) * float64(v)
		}
		require.InDelta(t, 1.0, sumSq, 1e-6)
	}
}

func TestCountVectorElemsMatchesBuildVectorElems(t *testing.T) {
	r := sampleResource()
	require.Equal(t, len(BuildVectorElems(r, "__default__", false)), countVectorElems(r, "__default__"))
	require.Equal(t, len(BuildVectorElems(r, "other-vectorset", false)), countVectorElems(r, "other-vectorset"))
}

func TestCountVectorElemsSkipsMalformedMultiCardinality(t *testing.T) {
	r := Resource{
		Sentences: map[string]Sentence{
			"bad": {Vector: []float32{1, 2, 3}, Cardinality: CardinalityMulti, TokenDim: 2, Vectorset: "v"},
		},
	}
	require.Equal(t, 0, countVectorElems(r, "v"))
	require.Empty(t, BuildVectorElems(r, "v", false))
}

func TestDeleteKeysReturnsPerKindSet(t *testing.T) {
	r := sampleResource()
	require.Equal(t, []string{"rid1/a/old/0"}, r.DeleteKeys(ids.IndexKindParagraph))
	require.Nil(t, r.DeleteKeys(ids.IndexKindText))
}
