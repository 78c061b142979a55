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

package scheduler

import (
	"github.com/google/btree"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/store"
)

// segmentsBelowWatermark returns the subset of segs with Seq strictly
// below watermark, ordered by Seq ascending. scheduleMergesForIndex treats
// its store-returned candidate slice as an unordered set and rebuilds the
// ordering here via an in-memory btree, the same ordered-index structure
// the deletion-watermark cursor in pruneDeletions would need if the store
// ever stopped doing that filtering in SQL.
func segmentsBelowWatermark(segs []store.Segment, watermark ids.Seq) []store.Segment {
	tree := btree.NewG(32, segmentLess)
	for _, seg := range segs {
		tree.ReplaceOrInsert(seg)
	}

	out := make([]store.Segment, 0, len(segs))
	pivot := store.Segment{Seq: watermark}
	tree.AscendLessThan(pivot, func(seg store.Segment) bool {
		out = append(out, seg)
		return true
	})
	return out
}

// segmentLess orders segments by Seq first, falling back to ID so two
// segments can never compare equal and silently collide in the btree.
func segmentLess(a, b store.Segment) bool {
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	return a.ID < b.ID
}
