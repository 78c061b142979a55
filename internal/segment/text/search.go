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

package text

import (
	"sort"

	"github.com/nidxlabs/nidx/internal/bitset"
	"github.com/nidxlabs/nidx/internal/segment/queryparser"
)

// fuzzyBoost down-weights fuzzy matches so exact keyword hits always rank
// ahead of fuzzy ones (§4.5).
const fuzzyBoost = 0.5

// SearchRequest is one text-index query.
type SearchRequest struct {
	Query string
	// Prefilter, if non-nil, restricts results to this doc set (the
	// cross-index security/label/date prefilter of §4.6).
	Prefilter *bitset.Set
	K         int
}

type SearchResult struct {
	DocIndex int
	Score    float64
}

// Search runs the keyword+fuzzy query planner of §4.5 against seg.
func Search(seg *Segment, req SearchRequest) []SearchResult {
	parsed := queryparser.Parse(req.Query, false)
	m := &matcher{seg: seg}

	keywordSet := queryparser.MatchSet(parsed.Keyword, m)
	fuzzySet := queryparser.MatchSet(parsed.Fuzzy, m)
	if req.Prefilter != nil {
		keywordSet = keywordSet.And(req.Prefilter)
		fuzzySet = fuzzySet.And(req.Prefilter)
	}

	combined := keywordSet.Or(fuzzySet)
	var results []SearchResult
	combined.Each(func(i int) {
		score := queryparser.Score(parsed.Keyword, m, i) + fuzzyBoost*queryparser.Score(parsed.Fuzzy, m, i)
		results = append(results, SearchResult{DocIndex: i, Score: score})
	})

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if req.K > 0 && len(results) > req.K {
		results = results[:req.K]
	}
	return results
}
