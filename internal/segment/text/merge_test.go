package text

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/dtrie"
	"github.com/nidxlabs/nidx/internal/ids"
)

func TestMergeConcatenatesOldestFirst(t *testing.T) {
	older := MergeInput{
		Seq: 1,
		Docs: []Document{
			{ResourceID: "rid1", Field: "/a/title", Text: "hello world", Key: "rid1/a/title"},
		},
	}
	newer := MergeInput{
		Seq: 2,
		Docs: []Document{
			{ResourceID: "rid2", Field: "/a/title", Text: "goodbye", Key: "rid2/a/title"},
		},
	}

	seg := Merge([]MergeInput{older, newer})
	require.Len(t, seg.Docs, 2)
	require.Equal(t, "rid1", seg.Docs[0].ResourceID)
	require.Equal(t, "rid2", seg.Docs[1].ResourceID)
}

func TestMergeDropsKeysDeletedAtOrAfterSegmentSeq(t *testing.T) {
	deletes := dtrie.New()
	deletes.Insert([]byte("rid1/a/title"), ids.Seq(1))

	in := MergeInput{
		Seq: 1,
		Docs: []Document{
			{ResourceID: "rid1", Field: "/a/title", Text: "stale", Key: "rid1/a/title"},
			{ResourceID: "rid1", Field: "/a/body", Text: "kept", Key: "rid1/a/body"},
		},
		Deletes: deletes,
	}

	seg := Merge([]MergeInput{in})
	require.Len(t, seg.Docs, 1)
	require.Equal(t, "kept", seg.Docs[0].Text)
}
