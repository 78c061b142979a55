package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVisiblePublicAlwaysVisible(t *testing.T) {
	require.True(t, Visible(true, nil, nil))
}

func TestVisibleRequiresSharedGroup(t *testing.T) {
	require.True(t, Visible(false, []string{"g1", "g2"}, []string{"g2"}))
	require.False(t, Visible(false, []string{"g1", "g2"}, []string{"g3"}))
}

func TestVisibleNoAccessGroupsDenied(t *testing.T) {
	require.False(t, Visible(false, nil, []string{"g1"}))
	require.False(t, Visible(false, []string{"g1"}, nil))
}
