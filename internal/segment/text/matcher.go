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
	"github.com/nidxlabs/nidx/internal/bitset"
	"github.com/nidxlabs/nidx/internal/segment/queryparser"
	"github.com/nidxlabs/nidx/internal/segment/textnorm"
)

// matcher adapts a Segment to queryparser.TermMatcher. Text documents carry
// no token positions, so PhraseQuery degrades to "every word of the phrase
// appears somewhere in the document" rather than true adjacency — text
// fields are titles/summaries where this rarely matters; paragraph.matcher
// implements true adjacency since paragraphs are the unit the spec gives
// offsets for.
type matcher struct {
	seg *Segment
}

func (m *matcher) Universe() *bitset.Set { return bitset.Full(len(m.seg.Docs)) }

func (m *matcher) MatchTerm(term string) *bitset.Set {
	return addrsToBitset(m.seg.Terms.Lookup(textnorm.Fold(term)), len(m.seg.Docs))
}

func (m *matcher) MatchPhrase(terms []string) *bitset.Set {
	result := bitset.Full(len(m.seg.Docs))
	for _, term := range terms {
		result = result.And(m.MatchTerm(term))
	}
	return result
}

func (m *matcher) MatchFuzzy(term string, distance int, prefix bool) *bitset.Set {
	out := bitset.New(len(m.seg.Docs))
	folded := textnorm.Fold(term)
	for _, candidate := range m.seg.Terms.Keys() {
		if queryparser.FuzzyMatches(folded, candidate, distance, prefix) {
			out = out.Or(addrsToBitset(m.seg.Terms.Lookup(candidate), len(m.seg.Docs)))
		}
	}
	return out
}
