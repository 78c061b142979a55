// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vector

import "sort"

// PlannerInput is one merge candidate: a segment's id opaque to this
// package (callers pass their own store id type via Index), its record
// count and whether it is flagged to force a merge regardless of size
// thresholds (§4.4.7).
type PlannerInput struct {
	Index     int // caller-assigned position, returned in MergeGroup.Indexes
	Records   int
	ForceFlag bool
}

// PlannerParams are the tunables of §4.4.7.
type PlannerParams struct {
	MinNumberOfSegments   int
	MaxSegmentSize        int
	SmallSegmentThreshold int
}

// MergeGroup is one proposed merge: the set of input indexes to combine.
type MergeGroup struct {
	Indexes []int
}

// Plan implements §4.4.7's tiered merge planner. inputs is expected
// sorted largest-first by the caller (the spec's stated precondition);
// Plan does not re-sort the big-bucket pass, but does walk the small
// bucket smallest-first per the resolved Open Question (§9).
func Plan(inputs []PlannerInput, params PlannerParams) []MergeGroup {
	var groups []MergeGroup

	var big, small []PlannerInput
	for _, in := range inputs {
		if in.Records > params.SmallSegmentThreshold {
			big = append(big, in)
		} else {
			small = append(small, in)
		}
	}

	groups = append(groups, planBigBucket(big, params)...)
	groups = append(groups, planSmallBucket(small, params)...)
	return groups
}

// planBigBucket accumulates large segments, largest-first as handed in,
// until the running total exceeds max_segment_size, then emits a merge
// if the accumulator has enough members (or any is forced). A single
// segment already over max_segment_size is never merged unless forced.
func planBigBucket(inputs []PlannerInput, params PlannerParams) []MergeGroup {
	var groups []MergeGroup
	var acc []PlannerInput
	total := 0

	flush := func() {
		if len(acc) == 0 {
			return
		}
		forced := anyForced(acc)
		if len(acc) >= params.MinNumberOfSegments || forced {
			groups = append(groups, toGroup(acc))
		}
		acc = nil
		total = 0
	}

	for _, in := range inputs {
		if in.Records > params.MaxSegmentSize && !in.ForceFlag {
			flush()
			continue
		}
		acc = append(acc, in)
		total += in.Records
		if total > params.MaxSegmentSize {
			flush()
		}
	}
	flush()
	return groups
}

// planSmallBucket accumulates smallest-first until the running total
// would exceed small_segment_threshold, emitting a merge once the group
// has at least two members (or any is forced) — the resolved Open
// Question of §9.
//
// The threshold check happens before adding the next segment to the
// running total (check-then-add), so the segment that would tip the
// group over the threshold starts a new group instead of joining it. The
// original (vector_merge.rs) adds first and checks after, which can pull
// that tipping segment in anyway -- e.g. with threshold 50 and inputs
// [45,5,3], add-then-check merges all three (total reaches 53 only after
// all are added) while this check-then-add boundary leaves 45 unmerged
// once 5+3 alone would fit. This follows §4.4.7's literal "while running
// total ≤ threshold" wording; the grouping it produces can differ from
// the original at that boundary.
func planSmallBucket(inputs []PlannerInput, params PlannerParams) []MergeGroup {
	sorted := append([]PlannerInput(nil), inputs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Records < sorted[j].Records })

	var groups []MergeGroup
	var acc []PlannerInput
	total := 0

	flush := func() {
		if len(acc) == 0 {
			return
		}
		if len(acc) >= 2 || anyForced(acc) {
			groups = append(groups, toGroup(acc))
		}
		acc = nil
		total = 0
	}

	for _, in := range sorted {
		if total+in.Records > params.SmallSegmentThreshold && len(acc) > 0 {
			flush()
		}
		acc = append(acc, in)
		total += in.Records
	}
	flush()
	return groups
}

func anyForced(inputs []PlannerInput) bool {
	for _, in := range inputs {
		if in.ForceFlag {
			return true
		}
	}
	return false
}

func toGroup(inputs []PlannerInput) MergeGroup {
	g := MergeGroup{Indexes: make([]int, len(inputs))}
	for i, in := range inputs {
		g.Indexes[i] = in.Index
	}
	return g
}
