package searcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/query"
	"github.com/nidxlabs/nidx/internal/segment/paragraph"
	"github.com/nidxlabs/nidx/internal/segment/text"
	"github.com/nidxlabs/nidx/internal/segment/vector"
)

func textFixture() *text.Segment {
	now := time.Now()
	return text.Build([]text.Document{
		{
			ResourceID:       "r1",
			Field:            "/a/title",
			Text:             "hello world",
			Key:              "r1/title",
			Created:          now,
			Modified:         now,
			Facets:           []string{"/l/topic/sports"},
			GroupsPublic:     false,
			GroupsWithAccess: []string{"g1"},
		},
		{
			ResourceID:       "r2",
			Field:            "/a/title",
			Text:             "goodbye",
			Key:              "r2/title",
			Created:          now,
			Modified:         now,
			Facets:           []string{"/l/topic/news"},
			GroupsPublic:     true,
		},
	})
}

func TestEvalTextPrefilterAppliesFacetAtom(t *testing.T) {
	seg := textFixture()
	pf := query.Facet("/l/topic/sports")

	out := evalTextPrefilter(pf, nil, seg)
	require.Equal(t, 1, out.Count())
	require.True(t, out.Test(0))
	require.False(t, out.Test(1))
}

func TestEvalTextPrefilterAppliesSecurityAtom(t *testing.T) {
	seg := textFixture()
	sec := query.Security([]string{"g1"})

	out := evalTextPrefilter(sec, []string{"g1"}, seg)
	require.True(t, out.Test(0)) // r1 visible via shared group
	require.True(t, out.Test(1)) // r2 public

	out2 := evalTextPrefilter(sec, []string{"other"}, seg)
	require.False(t, out2.Test(0))
	require.True(t, out2.Test(1))
}

func TestFieldKeysOfReturnsKeysOfSetBitsOnly(t *testing.T) {
	seg := textFixture()
	set := evalTextPrefilter(query.Resource("r1"), nil, seg)

	keys := fieldKeysOf(seg, set)
	require.Equal(t, []string{"r1/title"}, keys)
}

func paragraphFixture() *paragraph.Segment {
	return paragraph.Build([]paragraph.Paragraph{
		{ResourceID: "r1", Field: "/a/title", Text: "hello world", Labels: []string{"/l/topic/sports"}},
		{ResourceID: "r2", Field: "/a/title", Text: "goodbye", Labels: []string{"/l/topic/news"}},
	})
}

func TestEvalParagraphInFilterMatchesLabel(t *testing.T) {
	seg := paragraphFixture()
	out := evalParagraphInFilter(query.Facet("/l/topic/sports"), seg)

	require.True(t, out.Test(0))
	require.False(t, out.Test(1))
}

func TestFieldKeySetRestrictsToPrefilteredResources(t *testing.T) {
	seg := paragraphFixture()
	out := seg.FieldKeySet([]string{"r2/a/title"})

	require.False(t, out.Test(0))
	require.True(t, out.Test(1))
}

func TestPrefilterToFormulaTranslatesFacetAndField(t *testing.T) {
	_, ok := prefilterToFormula(query.Facet("/l/topic/sports"))
	require.True(t, ok)

	_, ok = prefilterToFormula(query.Field("a", "title"))
	require.True(t, ok)

	_, ok = prefilterToFormula(query.Field("a", ""))
	require.True(t, ok)
}

func TestPrefilterToFormulaDropsUntranslatableAtoms(t *testing.T) {
	_, ok := prefilterToFormula(query.Resource("r1"))
	require.False(t, ok)

	_, ok = prefilterToFormula(query.Date("created", nil, nil))
	require.False(t, ok)

	_, ok = prefilterToFormula(query.Security([]string{"g1"}))
	require.False(t, ok)
}

func TestPrefilterToFormulaAndDropsPartiallyTranslatableOperands(t *testing.T) {
	e := query.And(query.Facet("/l/topic/sports"), query.Resource("r1"))
	c, ok := prefilterToFormula(e)
	require.True(t, ok)
	require.Equal(t, vector.And(vector.LabelAtom("/l/topic/sports")), c)
}

func TestPrefilterToFormulaAndAllUntranslatableDrops(t *testing.T) {
	e := query.And(query.Resource("r1"), query.Date("created", nil, nil))
	_, ok := prefilterToFormula(e)
	require.False(t, ok)
}

func TestPrefilterToFormulaNot(t *testing.T) {
	c, ok := prefilterToFormula(query.Not(query.Facet("/l/topic/sports")))
	require.True(t, ok)
	require.Equal(t, vector.Not(vector.LabelAtom("/l/topic/sports")), c)
}

func TestBuildFormulaEmptyWhenNothingTranslatable(t *testing.T) {
	f := buildFormula(query.Resource("r1"))
	require.Empty(t, f.Clauses)
}

func TestBuildFormulaWrapsTranslatedClause(t *testing.T) {
	f := buildFormula(query.Facet("/l/topic/sports"))
	require.Len(t, f.Clauses, 1)
}
