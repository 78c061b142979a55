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

package paragraph

import (
	"sort"

	"github.com/nidxlabs/nidx/internal/bitset"
	"github.com/nidxlabs/nidx/internal/segment/queryparser"
)

const fuzzyBoost = 0.5

// SearchRequest is one paragraph-index query (§4.5).
type SearchRequest struct {
	Query string
	// Prefilter restricts results to this paragraph set — typically
	// FieldKeySet() applied to the cross-index prefilter's valid field
	// keys, or a direct LabelSet() intersection.
	Prefilter *bitset.Set
	// Suggest enables "last literal as fuzzy prefix", for as-you-type
	// search boxes.
	Suggest        bool
	WithDuplicates bool
	MinScore       float64
	K              int
}

type SearchResult struct {
	ParagraphIndex int
	Score          float64
}

func Search(seg *Segment, req SearchRequest) []SearchResult {
	parsed := queryparser.Parse(req.Query, req.Suggest)
	m := &matcher{seg: seg}

	keywordSet := queryparser.MatchSet(parsed.Keyword, m)
	fuzzySet := queryparser.MatchSet(parsed.Fuzzy, m)

	if req.Prefilter != nil {
		keywordSet = keywordSet.And(req.Prefilter)
		fuzzySet = fuzzySet.And(req.Prefilter)
	}
	if !req.WithDuplicates {
		unique := seg.NotRepeatedSet()
		keywordSet = keywordSet.And(unique)
		fuzzySet = fuzzySet.And(unique)
	}

	combined := keywordSet.Or(fuzzySet)
	var results []SearchResult
	combined.Each(func(i int) {
		score := queryparser.Score(parsed.Keyword, m, i) + fuzzyBoost*queryparser.Score(parsed.Fuzzy, m, i)
		if score < req.MinScore {
			return
		}
		results = append(results, SearchResult{ParagraphIndex: i, Score: score})
	})

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if req.K > 0 && len(results) > req.K {
		results = results[:req.K]
	}
	return results
}
