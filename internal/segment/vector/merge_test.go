package vector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/dtrie"
	"github.com/nidxlabs/nidx/internal/ids"
)

func TestMergeDropsRecordsHiddenByTheirSegmentDeletionLog(t *testing.T) {
	oldRecords := []Record{
		{Key: "rid1/title/0", Vector: Quantize([]float32{1, 0})},
		{Key: "rid2/title/0", Vector: Quantize([]float32{0, 1})},
	}
	newRecords := []Record{
		{Key: "rid3/title/0", Vector: Quantize([]float32{1, 1})},
	}

	deletes := dtrie.New()
	deletes.Insert([]byte("rid1/title/0"), ids.Seq(15))

	inputs := []MergeInput{
		{Seq: ids.Seq(10), Records: oldRecords, Deletes: deletes},
		{Seq: ids.Seq(20), Records: newRecords, Deletes: dtrie.New()},
	}

	retained, graph := Merge(inputs, DefaultParams(), SimilarityDot)
	require.Len(t, retained, 2)
	keys := []string{retained[0].Key, retained[1].Key}
	require.ElementsMatch(t, []string{"rid2/title/0", "rid3/title/0"}, keys)
	require.NotNil(t, graph.EntryPoint)
}

func TestMergeKeepsRecordWhenDeletionPredatesSegment(t *testing.T) {
	// A deletion recorded at a seq below the segment's own seq cannot
	// apply to it: the record didn't exist yet when that deletion was
	// logged (Deleted(key, segSeq) requires value >= segSeq).
	records := []Record{{Key: "rid1/title/0", Vector: Quantize([]float32{1, 0})}}
	deletes := dtrie.New()
	deletes.Insert([]byte("rid1/title/0"), ids.Seq(1))

	inputs := []MergeInput{{Seq: ids.Seq(10), Records: records, Deletes: deletes}}
	retained, _ := Merge(inputs, DefaultParams(), SimilarityDot)
	require.Len(t, retained, 1)
}

func TestBuildFSTsIndexesFieldsByFieldKeyNotRecordKey(t *testing.T) {
	records := []Record{
		{Key: "rid1/f/title/0/0-10", Vector: Quantize([]float32{1, 0}), Labels: []string{"lang/en"}},
		{Key: "rid2/f/body/0/0-10", Vector: Quantize([]float32{0, 1}), Labels: []string{"lang/es"}},
	}
	fields, labels := BuildFSTs(records)

	require.Equal(t, []int{0}, fields.LookupPrefix("f/title"))
	require.Equal(t, []int{1}, fields.LookupPrefix("f/body"))
	require.ElementsMatch(t, []int{0, 1}, fields.LookupPrefix("f"))
	require.Empty(t, fields.LookupPrefix("rid1"))

	require.Equal(t, []int{0}, labels.LookupPrefix("lang/en"))
}

func TestFieldKeyOfExtractsTypeAndFieldID(t *testing.T) {
	require.Equal(t, "f/title", fieldKeyOf("rid1/f/title/0/0-10"))
	require.Equal(t, "f/title", fieldKeyOf("rid1/f/title/0/0-10#vset"))
}
