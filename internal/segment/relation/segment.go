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

import (
	"github.com/nidxlabs/nidx/internal/bitset"
	"github.com/nidxlabs/nidx/internal/fstindex"
	"github.com/nidxlabs/nidx/internal/segment/textnorm"
)

// Segment is the built, queryable form of a batch of Triples.
type Segment struct {
	Triples      []Triple
	BySourceNorm *fstindex.Index // normalized source value -> triple indices
	ByTargetNorm *fstindex.Index // normalized target value -> triple indices
	ByRelation   *fstindex.Index // relationship -> triple indices
}

func Build(triples []Triple) *Segment {
	src := fstindex.NewBuilder()
	tgt := fstindex.NewBuilder()
	rel := fstindex.NewBuilder()

	for i, t := range triples {
		src.Add(textnorm.Fold(t.Source.Value), i)
		tgt.Add(textnorm.Fold(t.Target.Value), i)
		rel.Add(t.Relationship, i)
	}

	return &Segment{
		Triples:      triples,
		BySourceNorm: src.Build(),
		ByTargetNorm: tgt.Build(),
		ByRelation:   rel.Build(),
	}
}

func addrsToBitset(addrs []int, n int) *bitset.Set {
	s := bitset.New(n)
	for _, a := range addrs {
		s.Set(a)
	}
	return s
}

// SourceSet returns every triple whose source value folds to value.
func (s *Segment) SourceSet(value string) *bitset.Set {
	return addrsToBitset(s.BySourceNorm.Lookup(textnorm.Fold(value)), len(s.Triples))
}

// TargetSet returns every triple whose target value folds to value.
func (s *Segment) TargetSet(value string) *bitset.Set {
	return addrsToBitset(s.ByTargetNorm.Lookup(textnorm.Fold(value)), len(s.Triples))
}

// RelationshipSet returns every triple with the given relationship.
func (s *Segment) RelationshipSet(relationship string) *bitset.Set {
	return addrsToBitset(s.ByRelation.Lookup(relationship), len(s.Triples))
}
