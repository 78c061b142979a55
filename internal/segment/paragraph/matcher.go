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
	"github.com/nidxlabs/nidx/internal/bitset"
	"github.com/nidxlabs/nidx/internal/segment/queryparser"
	"github.com/nidxlabs/nidx/internal/segment/textnorm"
)

type matcher struct {
	seg *Segment
}

func (m *matcher) Universe() *bitset.Set { return bitset.Full(len(m.seg.Paragraphs)) }

func (m *matcher) MatchTerm(term string) *bitset.Set {
	return addrsToBitset(m.seg.Terms.Lookup(textnorm.Fold(term)), len(m.seg.Paragraphs))
}

// MatchPhrase requires the folded terms to appear as a contiguous
// subsequence of a paragraph's token stream, true phrase adjacency rather
// than text.matcher's document-wide co-occurrence approximation.
func (m *matcher) MatchPhrase(terms []string) *bitset.Set {
	out := bitset.New(len(m.seg.Paragraphs))
	if len(terms) == 0 {
		return out
	}
	folded := make([]string, len(terms))
	for i, t := range terms {
		folded[i] = textnorm.Fold(t)
	}
	for i, toks := range m.seg.Tokens {
		if containsSubsequence(toks, folded) {
			out.Set(i)
		}
	}
	return out
}

func (m *matcher) MatchFuzzy(term string, distance int, prefix bool) *bitset.Set {
	out := bitset.New(len(m.seg.Paragraphs))
	folded := textnorm.Fold(term)
	for _, candidate := range m.seg.Terms.Keys() {
		if queryparser.FuzzyMatches(folded, candidate, distance, prefix) {
			out = out.Or(addrsToBitset(m.seg.Terms.Lookup(candidate), len(m.seg.Paragraphs)))
		}
	}
	return out
}

func containsSubsequence(haystack, needle []string) bool {
	if len(needle) == 0 {
		return true
	}
	if len(needle) > len(haystack) {
		return false
	}
	for start := 0; start+len(needle) <= len(haystack); start++ {
		match := true
		for j, n := range needle {
			if haystack[start+j] != n {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
