package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/query"
)

func TestSplitFieldSpecWithAndWithoutID(t *testing.T) {
	typ, id := splitFieldSpec("text/title")
	require.Equal(t, "text", typ)
	require.Equal(t, "title", id)

	typ, id = splitFieldSpec("text")
	require.Equal(t, "text", typ)
	require.Equal(t, "", id)
}

func TestBuildExprVacuouslyTrueWhenRequestHasNoFilters(t *testing.T) {
	e := buildExpr(Request{})
	require.Equal(t, query.KindAnd, e.Kind)
	require.Empty(t, e.Operands)
}

func TestBuildExprFoldsSecurityAndFieldsAndKeys(t *testing.T) {
	req := Request{
		AccessGroups: []string{"g1"},
		Fields:       []string{"text/title"},
		KeyFilters:   []string{"r1"},
	}
	e := buildExpr(req)
	require.Equal(t, query.KindAnd, e.Kind)
	require.Len(t, e.Operands, 3)

	var kinds []query.Kind
	for _, op := range e.Operands {
		kinds = append(kinds, op.Kind)
	}
	require.Contains(t, kinds, query.KindSecurity)
	require.Contains(t, kinds, query.KindField)
	require.Contains(t, kinds, query.KindResource)
}

func TestBuildExprFoldsCreatedAndModifiedTimestamps(t *testing.T) {
	since := int64(10)
	req := Request{Timestamps: &TimestampFilter{FromCreated: &since, FromModified: &since}}
	e := buildExpr(req)
	require.Len(t, e.Operands, 2)
	require.Equal(t, query.KindDate, e.Operands[0].Kind)
	require.Equal(t, "created", e.Operands[0].DateField)
	require.Equal(t, "modified", e.Operands[1].DateField)
}

func TestBuildExprIncludesUserSuppliedFilterExpr(t *testing.T) {
	custom := query.Keyword("hello")
	req := Request{FilterExpr: &custom}
	e := buildExpr(req)
	require.Len(t, e.Operands, 1)
	require.Equal(t, custom, e.Operands[0])
}

func TestDateExprOfFindsTopLevelDateAtom(t *testing.T) {
	since := int64(5)
	dateExpr := query.Date("created", &since, nil)
	e := query.And(query.Keyword("a"), dateExpr)

	got, ok := dateExprOf(e)
	require.True(t, ok)
	require.Equal(t, dateExpr, got)
}

func TestDateExprOfAbsentReturnsFalse(t *testing.T) {
	e := query.And(query.Keyword("a"), query.Keyword("b"))
	_, ok := dateExprOf(e)
	require.False(t, ok)
}

func TestDateExprOfNonAndAtom(t *testing.T) {
	_, ok := dateExprOf(query.Keyword("a"))
	require.False(t, ok)
}

func TestResourceIDFromVectorKeySplitsOnFirstSlash(t *testing.T) {
	require.Equal(t, "r1", resourceIDFromVectorKey("r1/title/0/0-10"))
	require.Equal(t, "novelslash", resourceIDFromVectorKey("novelslash"))
}

func TestPageDefaultsTo20(t *testing.T) {
	require.Equal(t, 20, page(Request{}))
	require.Equal(t, 5, page(Request{ResultPerPage: 5}))
}

func TestPageBoundsClampsToLength(t *testing.T) {
	req := Request{PageNumber: 0, ResultPerPage: 2}
	lo, hi := pageBounds(5, req)
	require.Equal(t, 0, lo)
	require.Equal(t, 2, hi)

	req2 := Request{PageNumber: 2, ResultPerPage: 2}
	lo, hi = pageBounds(5, req2)
	require.Equal(t, 4, lo)
	require.Equal(t, 5, hi)

	req3 := Request{PageNumber: 10, ResultPerPage: 2}
	lo, hi = pageBounds(5, req3)
	require.Equal(t, 5, lo)
	require.Equal(t, 5, hi)
}

func TestPaginateDocumentsSlicesByPage(t *testing.T) {
	hits := []DocumentHit{{ResourceID: "a"}, {ResourceID: "b"}, {ResourceID: "c"}}
	got := paginateDocuments(hits, Request{PageNumber: 1, ResultPerPage: 2})
	require.Equal(t, []DocumentHit{{ResourceID: "c"}}, got)
}
