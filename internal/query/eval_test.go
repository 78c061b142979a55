package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvalFacetMatchesPrefix(t *testing.T) {
	f := Facts{Facets: []string{"/l/topic/sports"}}
	require.True(t, Eval(Facet("/l/topic"), f))
	require.True(t, Eval(Facet("/l/topic/sports"), f))
	require.False(t, Eval(Facet("/l/topic/news"), f))
}

func TestEvalDateRange(t *testing.T) {
	ts := int64(100)
	f := Facts{Timestamp: func(field string) (int64, bool) {
		if field == "modified" {
			return ts, true
		}
		return 0, false
	}}
	since, until := int64(50), int64(150)
	require.True(t, Eval(Date("modified", &since, &until), f))

	since2 := int64(200)
	require.False(t, Eval(Date("modified", &since2, nil), f))

	require.False(t, Eval(Date("created", nil, nil), f))
}

func TestEvalFieldWithAndWithoutID(t *testing.T) {
	f := Facts{FieldType: "text", FieldID: "title"}
	require.True(t, Eval(Field("text", ""), f))
	require.True(t, Eval(Field("text", "title"), f))
	require.False(t, Eval(Field("text", "body"), f))
	require.False(t, Eval(Field("file", ""), f))
}
