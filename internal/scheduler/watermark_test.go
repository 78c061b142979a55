package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/store"
)

func TestSegmentsBelowWatermarkFiltersAndOrdersBySeq(t *testing.T) {
	segs := []store.Segment{
		{ID: 3, Seq: 30},
		{ID: 1, Seq: 10},
		{ID: 4, Seq: 40},
		{ID: 2, Seq: 20},
	}
	got := segmentsBelowWatermark(segs, 35)

	seqs := make([]ids.Seq, len(got))
	for i, seg := range got {
		seqs[i] = seg.Seq
	}
	require.Equal(t, []ids.Seq{10, 20, 30}, seqs)
}

func TestSegmentsBelowWatermarkKeepsDuplicateSeqs(t *testing.T) {
	segs := []store.Segment{
		{ID: 1, Seq: 10},
		{ID: 2, Seq: 10},
	}
	got := segmentsBelowWatermark(segs, 20)
	require.Len(t, got, 2)
}

func TestSegmentsBelowWatermarkEmptyBelowWatermark(t *testing.T) {
	segs := []store.Segment{{ID: 1, Seq: 50}}
	require.Empty(t, segmentsBelowWatermark(segs, 10))
}
