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
	"github.com/nidxlabs/nidx/internal/fstindex"
	"github.com/nidxlabs/nidx/internal/segment/textnorm"
)

// Segment is the built, queryable form of a batch of Documents. Term and
// facet postings are FSTs (see internal/fstindex) keyed by document index,
// rebuilt fresh whenever the segment is opened (see segmentio.go) so they
// can never drift from the document store itself.
type Segment struct {
	Docs   []Document
	Terms  *fstindex.Index // folded literal -> doc indices
	Facets *fstindex.Index // facet path -> doc indices
	Groups *fstindex.Index // access group -> doc indices
}

// Build indexes docs into a queryable Segment.
func Build(docs []Document) *Segment {
	terms := fstindex.NewBuilder()
	facets := fstindex.NewBuilder()
	groups := fstindex.NewBuilder()

	for i, d := range docs {
		for _, tok := range tokenizeLiterals(d.Text) {
			terms.Add(tok, i)
		}
		for _, f := range d.Facets {
			facets.Add(f, i)
		}
		for _, g := range d.GroupsWithAccess {
			groups.Add(g, i)
		}
	}

	return &Segment{
		Docs:   docs,
		Terms:  terms.Build(),
		Facets: facets.Build(),
		Groups: groups.Build(),
	}
}

func tokenizeLiterals(text string) []string {
	return tokenize(textnorm.Fold(text))
}

func addrsToBitset(addrs []int, n int) *bitset.Set {
	s := bitset.New(n)
	for _, a := range addrs {
		s.Set(a)
	}
	return s
}

// FacetSet returns every doc whose Facets contains path itself or any
// descendant of path (the Facet(path) atom of §4.6), mirroring
// internal/query.Eval's KindFacet prefix-matching rule.
func (s *Segment) FacetSet(path string) *bitset.Set {
	out := addrsToBitset(s.Facets.Lookup(path), len(s.Docs))
	for _, a := range s.Facets.LookupPrefix(path + "/") {
		out.Set(a)
	}
	return out
}

// GroupSet returns every doc whose GroupsWithAccess contains group.
func (s *Segment) GroupSet(group string) *bitset.Set {
	return addrsToBitset(s.Groups.Lookup(group), len(s.Docs))
}

// SecuritySet returns every doc visible to a principal in userGroups, per
// §4.6's "public OR shared group" rule.
func (s *Segment) SecuritySet(userGroups []string) *bitset.Set {
	out := bitset.New(len(s.Docs))
	access := make(map[string]struct{}, len(userGroups))
	for _, g := range userGroups {
		access[g] = struct{}{}
	}
	for i, d := range s.Docs {
		if d.GroupsPublic {
			out.Set(i)
			continue
		}
		for _, g := range d.GroupsWithAccess {
			if _, ok := access[g]; ok {
				out.Set(i)
				break
			}
		}
	}
	return out
}

// DateRangeSet returns every doc whose created/modified timestamp falls
// within [since, until]; a nil bound is unconstrained on that side.
func (s *Segment) DateRangeSet(field string, since, until *int64) *bitset.Set {
	out := bitset.New(len(s.Docs))
	for i, d := range s.Docs {
		var t int64
		switch field {
		case "created":
			t = d.Created.Unix()
		case "modified":
			t = d.Modified.Unix()
		default:
			continue
		}
		if since != nil && t < *since {
			continue
		}
		if until != nil && t > *until {
			continue
		}
		out.Set(i)
	}
	return out
}
