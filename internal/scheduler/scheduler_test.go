package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nidxlabs/nidx/internal/segment/vector"
)

func TestSortPlannerInputsDescOrdersLargestFirst(t *testing.T) {
	inputs := []vector.PlannerInput{
		{Index: 0, Records: 10},
		{Index: 1, Records: 100},
		{Index: 2, Records: 50},
		{Index: 3, Records: 1},
	}
	sortPlannerInputsDesc(inputs)

	records := make([]int, len(inputs))
	for i, in := range inputs {
		records[i] = in.Records
	}
	require.Equal(t, []int{100, 50, 10, 1}, records)
}

func TestSortPlannerInputsDescStableOnTies(t *testing.T) {
	inputs := []vector.PlannerInput{
		{Index: 0, Records: 5},
		{Index: 1, Records: 5},
	}
	sortPlannerInputsDesc(inputs)
	require.Equal(t, 0, inputs[0].Index)
	require.Equal(t, 1, inputs[1].Index)
}

func TestSortPlannerInputsDescEmptyAndSingle(t *testing.T) {
	require.NotPanics(t, func() { sortPlannerInputsDesc(nil) })
	single := []vector.PlannerInput{{Index: 0, Records: 1}}
	sortPlannerInputsDesc(single)
	require.Len(t, single, 1)
}
