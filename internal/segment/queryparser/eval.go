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

package queryparser

import "github.com/nidxlabs/nidx/internal/bitset"

// TermMatcher is implemented once per segment kind (text, paragraph) to
// resolve the leaf queries against that kind's own postings. MatchTerm,
// MatchPhrase and MatchFuzzy all return bitsets over the same universe
// Universe() describes.
type TermMatcher interface {
	Universe() *bitset.Set
	MatchTerm(term string) *bitset.Set
	MatchPhrase(terms []string) *bitset.Set
	MatchFuzzy(term string, distance int, prefix bool) *bitset.Set
}

// MatchSet evaluates q against m, combining Must (AND), Should (union, then
// ANDed into the result so an all-Should boolean still requires at least
// one Should to match) and MustNot (AND NOT) clauses the way tantivy's
// BooleanQuery does.
func MatchSet(q Query, m TermMatcher) *bitset.Set {
	switch v := q.(type) {
	case AllQuery:
		return m.Universe()
	case TermQuery:
		return m.MatchTerm(v.Term)
	case PhraseQuery:
		return m.MatchPhrase(v.Terms)
	case FuzzyQuery:
		return m.MatchFuzzy(v.Term, v.Distance, v.Prefix)
	case BoostQuery:
		return MatchSet(v.Inner, m)
	case BooleanQuery:
		universe := m.Universe()
		result := universe
		var should []*bitset.Set
		for _, c := range v.Clauses {
			switch c.Occur {
			case OccurMust:
				result = result.And(MatchSet(c.Query, m))
			case OccurMustNot:
				result = result.And(MatchSet(c.Query, m).Not())
			case OccurShould:
				should = append(should, MatchSet(c.Query, m))
			}
		}
		if len(should) > 0 {
			union := bitset.New(universe.Len())
			for _, s := range should {
				union = union.Or(s)
			}
			result = result.And(union)
		}
		return result
	default:
		return bitset.New(0)
	}
}

// Score returns q's contribution to doc's rank: the number of Should/Must
// leaf clauses that matched doc, scaled by any enclosing BoostQuery.
// MustNot clauses never contribute (they can only exclude, per
// filter_query's use of MustNot as a pure veto).
func Score(q Query, m TermMatcher, doc int) float64 {
	switch v := q.(type) {
	case AllQuery:
		return 0
	case TermQuery:
		if m.MatchTerm(v.Term).Test(doc) {
			return 1
		}
		return 0
	case PhraseQuery:
		if m.MatchPhrase(v.Terms).Test(doc) {
			return 1
		}
		return 0
	case FuzzyQuery:
		if m.MatchFuzzy(v.Term, v.Distance, v.Prefix).Test(doc) {
			return 1
		}
		return 0
	case BoostQuery:
		return Score(v.Inner, m, doc) * v.Boost
	case BooleanQuery:
		var total float64
		for _, c := range v.Clauses {
			if c.Occur == OccurMustNot {
				continue
			}
			total += Score(c.Query, m, doc)
		}
		return total
	default:
		return 0
	}
}
