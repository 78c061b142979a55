package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/query"
)

func TestCollectResourceFactsIndexesBySingleResourceAcrossDocs(t *testing.T) {
	seg := textFixture()
	rf := collectResourceFacts([]TextSegment{{Seg: seg}})

	require.Len(t, rf, 2)
	require.False(t, rf["r1"].public)
	require.Equal(t, []string{"g1"}, rf["r1"].groups)
	require.True(t, rf["r2"].public)
}

func TestResourceFactsIndexVisibleUnknownResourceDenied(t *testing.T) {
	rf := resourceFactsIndex{}
	require.False(t, rf.visible("missing", query.Expr{}, false, nil))
}

func TestResourceFactsIndexVisibleAppliesSecurityRule(t *testing.T) {
	rf := resourceFactsIndex{"r1": resourceFacts{public: false, groups: []string{"g1"}}}

	require.True(t, rf.visible("r1", query.Expr{}, false, []string{"g1"}))
	require.False(t, rf.visible("r1", query.Expr{}, false, []string{"other"}))
}

func TestResourceFactsIndexVisibleNoAccessGroupsSkipsSecurityFilter(t *testing.T) {
	// Mirrors buildExpr: an empty AccessGroups means no Security atom is
	// ever added to the filter expression, so every stream -- including
	// vector/relation hits resolved through this index -- must see a
	// non-public resource too, not just text/paragraph hits.
	rf := resourceFactsIndex{"r1": resourceFacts{public: false, groups: []string{"g1"}}}
	require.True(t, rf.visible("r1", query.Expr{}, false, nil))
	require.True(t, rf.visible("r1", query.Expr{}, false, []string{}))
}

func TestResourceFactsIndexVisibleAppliesDateRange(t *testing.T) {
	rf := resourceFactsIndex{"r1": resourceFacts{public: true, created: 100, modified: 200}}

	since, until := int64(50), int64(150)
	createdExpr := query.Date("created", &since, &until)
	require.True(t, rf.visible("r1", createdExpr, true, nil))

	since2 := int64(300)
	outOfRange := query.Date("created", &since2, nil)
	require.False(t, rf.visible("r1", outOfRange, true, nil))

	modifiedExpr := query.Date("modified", &since, &until)
	require.False(t, rf.visible("r1", modifiedExpr, true, nil)) // modified=200 > until=150
}
