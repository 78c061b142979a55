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

package relation

// MergeInput is one segment's triples contributing to a merge.
//
// Unlike the other segment kinds, §6.3 names no relation deletion-key
// scheme (only paragraph/sentence keys are listed as deletable): a
// resource's relations are carried wholesale on every ingest rather than
// individually deleted and re-added, so a relation merge has no deletion
// log to consult — it is a pure stream-concatenation (§4.4.6 steps 1-2
// degenerate to a no-op filter for this kind).
type MergeInput struct {
	Triples []Triple
}

// Merge implements §4.4.6 for relation segments: concatenate every
// input's triples and rebuild the segment.
func Merge(inputs []MergeInput) *Segment {
	var all []Triple
	for _, in := range inputs {
		all = append(all, in.Triples...)
	}
	return Build(all)
}
