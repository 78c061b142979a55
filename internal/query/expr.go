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

// Package query implements the cross-index filter expression of
// SPEC_FULL.md §4.6: a tagged-union AST, negated-normal-form translation,
// the label/keyword split and security evaluation, grounded on the
// Clause/CompoundClause shape of
// original_source/nucliadb_vectors2/src/formula/mod.rs and the
// planner passes described in
// original_source/nucliadb_core/src/query_language/mod.rs.
package query

// Kind discriminates the tagged union of Expr.
type Kind int

const (
	KindField Kind = iota
	KindResource
	KindFacet
	KindKeyword
	KindDate
	KindSecurity
	KindAnd
	KindOr
	KindNot
)

// Expr is the recursive filter expression of §4.6. Only the fields
// relevant to Kind are populated; And/Or/Not carry Operands and leave
// the atom fields zero.
type Expr struct {
	Kind Kind

	// Field atom.
	FieldType string
	FieldID   string // empty means "any field of FieldType"

	// Resource atom.
	ResourceID string

	// Facet / Keyword atom.
	Value string

	// Date atom.
	DateField string
	Since     *int64 // unix seconds, nil means unbounded
	Until     *int64

	// Security atom.
	Groups []string

	// Compound.
	Operands []Expr
}

func Field(typ, id string) Expr  { return Expr{Kind: KindField, FieldType: typ, FieldID: id} }
func Resource(id string) Expr    { return Expr{Kind: KindResource, ResourceID: id} }
func Facet(path string) Expr     { return Expr{Kind: KindFacet, Value: path} }
func Keyword(s string) Expr      { return Expr{Kind: KindKeyword, Value: s} }
func Security(groups []string) Expr {
	return Expr{Kind: KindSecurity, Groups: append([]string(nil), groups...)}
}
func Date(field string, since, until *int64) Expr {
	return Expr{Kind: KindDate, DateField: field, Since: since, Until: until}
}

func And(operands ...Expr) Expr { return Expr{Kind: KindAnd, Operands: operands} }
func Or(operands ...Expr) Expr  { return Expr{Kind: KindOr, Operands: operands} }
func Not(e Expr) Expr            { return Expr{Kind: KindNot, Operands: []Expr{e}} }

// IsAtom reports whether e is a leaf of the expression tree.
func (e Expr) IsAtom() bool {
	switch e.Kind {
	case KindAnd, KindOr, KindNot:
		return false
	default:
		return true
	}
}

// IsPrefilterAtom reports whether an atom belongs to the cross-index
// prefilter (labels/fields/timestamps/security) rather than the
// in-paragraph filter (§4.6 pass 2).
func (e Expr) IsPrefilterAtom() bool {
	switch e.Kind {
	case KindField, KindResource, KindFacet, KindDate, KindSecurity:
		return true
	default:
		return false
	}
}
