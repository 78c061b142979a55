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

import "github.com/nidxlabs/nidx/internal/bitset"

// SearchRequest constrains a triple search by any combination of endpoint
// values and relationship; empty fields are unconstrained. Values are
// normalized the same way the index was built, so queries are
// case/accent-insensitive per §4.1.3.
type SearchRequest struct {
	SourceValue  string
	TargetValue  string
	Relationship string
	Prefilter    *bitset.Set
}

// Search returns the triple indices matching every non-empty constraint in
// req.
func Search(seg *Segment, req SearchRequest) []int {
	result := bitset.Full(len(seg.Triples))
	if req.SourceValue != "" {
		result = result.And(seg.SourceSet(req.SourceValue))
	}
	if req.TargetValue != "" {
		result = result.And(seg.TargetSet(req.TargetValue))
	}
	if req.Relationship != "" {
		result = result.And(seg.RelationshipSet(req.Relationship))
	}
	if req.Prefilter != nil {
		result = result.And(req.Prefilter)
	}

	var out []int
	result.Each(func(i int) { out = append(out, i) })
	return out
}
