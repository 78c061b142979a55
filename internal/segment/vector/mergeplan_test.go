package vector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanBigBucketMergesWhenAboveThreshold(t *testing.T) {
	params := PlannerParams{MinNumberOfSegments: 2, MaxSegmentSize: 1000, SmallSegmentThreshold: 100}
	inputs := []PlannerInput{
		{Index: 0, Records: 600},
		{Index: 1, Records: 500},
	}
	groups := Plan(inputs, params)
	require.Len(t, groups, 1)
	require.ElementsMatch(t, []int{0, 1}, groups[0].Indexes)
}

func TestPlanBigBucketSkipsBelowMinSegments(t *testing.T) {
	params := PlannerParams{MinNumberOfSegments: 3, MaxSegmentSize: 1000, SmallSegmentThreshold: 100}
	inputs := []PlannerInput{
		{Index: 0, Records: 600},
		{Index: 1, Records: 500},
	}
	groups := Plan(inputs, params)
	require.Empty(t, groups)
}

func TestPlanBigBucketForceFlagBypassesMinSegments(t *testing.T) {
	params := PlannerParams{MinNumberOfSegments: 3, MaxSegmentSize: 1000, SmallSegmentThreshold: 100}
	inputs := []PlannerInput{
		{Index: 0, Records: 600, ForceFlag: true},
		{Index: 1, Records: 500},
	}
	groups := Plan(inputs, params)
	require.Len(t, groups, 1)
}

func TestPlanNeverMergesSingleOversizedSegmentUnlessForced(t *testing.T) {
	params := PlannerParams{MinNumberOfSegments: 1, MaxSegmentSize: 1000, SmallSegmentThreshold: 100}
	inputs := []PlannerInput{
		{Index: 0, Records: 2000},
	}
	groups := Plan(inputs, params)
	require.Empty(t, groups)

	inputs[0].ForceFlag = true
	groups = Plan(inputs, params)
	require.Len(t, groups, 1)
}

func TestPlanSmallBucketWalksSmallestFirst(t *testing.T) {
	params := PlannerParams{MinNumberOfSegments: 10, MaxSegmentSize: 10000, SmallSegmentThreshold: 50}
	inputs := []PlannerInput{
		{Index: 0, Records: 45},
		{Index: 1, Records: 5},
		{Index: 2, Records: 3},
	}
	groups := Plan(inputs, params)
	require.Len(t, groups, 1)
	// smallest-first packing fills {2,1} (3+5=8 <= 50); adding 45 would
	// push the running total to 53 > 50, so it flushes the {2,1} group
	// and starts a fresh (single-member, unmerged) accumulator for 45.
	require.ElementsMatch(t, []int{2, 1}, groups[0].Indexes)
}

func TestPlanSmallBucketSingleSegmentNotMerged(t *testing.T) {
	params := PlannerParams{MinNumberOfSegments: 10, MaxSegmentSize: 10000, SmallSegmentThreshold: 50}
	inputs := []PlannerInput{
		{Index: 0, Records: 10},
	}
	groups := Plan(inputs, params)
	require.Empty(t, groups)
}
