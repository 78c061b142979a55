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

package vector

import (
	"github.com/nidxlabs/nidx/internal/bitset"
	"github.com/nidxlabs/nidx/internal/fstindex"
)

// AtomKind discriminates the two leaf clause types of §4.4.5.
type AtomKind int

const (
	AtomKindLabel AtomKind = iota
	AtomKindKeyPrefix
)

type Atom struct {
	Kind  AtomKind
	Value string
}

func LabelAtom(value string) Clause     { return Clause{IsAtom: true, Atom: Atom{Kind: AtomKindLabel, Value: value}} }
func KeyPrefixAtom(value string) Clause { return Clause{IsAtom: true, Atom: Atom{Kind: AtomKindKeyPrefix, Value: value}} }

type BooleanOperator int

const (
	OpAnd BooleanOperator = iota
	OpOr
	OpNot
)

// Clause is the tagged union of §4.4.5: an atom, or a compound of
// {And|Or|Not} over further clauses. Grounded on
// original_source/nucliadb_vectors2/src/formula/mod.rs's Clause enum.
type Clause struct {
	IsAtom   bool
	Atom     Atom
	Operator BooleanOperator
	Operands []Clause
}

func And(operands ...Clause) Clause { return Clause{Operator: OpAnd, Operands: operands} }
func Or(operands ...Clause) Clause  { return Clause{Operator: OpOr, Operands: operands} }
func Not(operands ...Clause) Clause { return Clause{Operator: OpNot, Operands: operands} }

// Formula is a conjunction of clauses (§4.4.5: "A formula is a
// conjunction of clauses").
type Formula struct {
	Clauses []Clause
}

// SegmentIndex is the per-segment resolver a Formula filters against:
// FST-backed label and field-prefix lookups plus the record count
// needed to build the "full universe" bitset for Not.
type SegmentIndex struct {
	Labels  *fstindex.Index
	Fields  *fstindex.Index
	Records int
}

// Filter evaluates f against idx, returning a single bitset over the
// segment's record addresses. Matches can still be traversed by search
// (§4.4.4 step 3); only scoring is gated on formula membership.
func (f Formula) Filter(idx SegmentIndex) *bitset.Set {
	if len(f.Clauses) == 0 {
		return bitset.Full(idx.Records)
	}
	result := evalClause(f.Clauses[0], idx)
	for _, c := range f.Clauses[1:] {
		result = result.And(evalClause(c, idx))
	}
	return result
}

func evalClause(c Clause, idx SegmentIndex) *bitset.Set {
	if c.IsAtom {
		return evalAtom(c.Atom, idx)
	}

	if len(c.Operands) == 0 {
		return bitset.New(idx.Records)
	}

	// Not(S) = ¬S ∩ universe: resolved per the Open Question, the
	// negation inverts over the FULL segment universe, not a working
	// subset — ground truth: paragraph.rs's filter_clause treats Not's
	// operands like And (intersected), then flips the whole bitset.
	if c.Operator == OpNot {
		acc := evalClause(c.Operands[0], idx)
		for _, op := range c.Operands[1:] {
			acc = acc.And(evalClause(op, idx))
		}
		return acc.Not()
	}

	acc := evalClause(c.Operands[0], idx)
	for _, op := range c.Operands[1:] {
		next := evalClause(op, idx)
		if c.Operator == OpAnd {
			acc = acc.And(next)
		} else {
			acc = acc.Or(next)
		}
	}
	return acc
}

func evalAtom(a Atom, idx SegmentIndex) *bitset.Set {
	bs := bitset.New(idx.Records)
	var addrs []int
	switch a.Kind {
	case AtomKindLabel:
		if idx.Labels != nil {
			addrs = idx.Labels.Lookup(a.Value)
		}
	case AtomKindKeyPrefix:
		if idx.Fields != nil {
			addrs = idx.Fields.LookupPrefix(a.Value)
		}
	}
	for _, addr := range addrs {
		bs.Set(addr)
	}
	return bs
}
