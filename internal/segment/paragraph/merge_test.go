package paragraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/dtrie"
	"github.com/nidxlabs/nidx/internal/ids"
)

func TestMergeConcatenatesOldestFirst(t *testing.T) {
	older := MergeInput{
		Seq:        1,
		Paragraphs: []Paragraph{{ResourceID: "rid1", Field: "a/body", Text: "first", Key: "rid1/a/body/0"}},
	}
	newer := MergeInput{
		Seq:        2,
		Paragraphs: []Paragraph{{ResourceID: "rid1", Field: "a/body", Text: "second", Key: "rid1/a/body/1"}},
	}

	seg := Merge([]MergeInput{older, newer})
	require.Len(t, seg.Paragraphs, 2)
	require.Equal(t, "first", seg.Paragraphs[0].Text)
	require.Equal(t, "second", seg.Paragraphs[1].Text)
}

func TestMergeDropsDeletedParagraphKeys(t *testing.T) {
	deletes := dtrie.New()
	deletes.Insert([]byte("rid1/a/body/0"), ids.Seq(1))

	in := MergeInput{
		Seq: 1,
		Paragraphs: []Paragraph{
			{ResourceID: "rid1", Field: "a/body", Text: "stale", Key: "rid1/a/body/0"},
			{ResourceID: "rid1", Field: "a/body", Text: "kept", Key: "rid1/a/body/1"},
		},
		Deletes: deletes,
	}

	seg := Merge([]MergeInput{in})
	require.Len(t, seg.Paragraphs, 1)
	require.Equal(t, "kept", seg.Paragraphs[0].Text)
}
