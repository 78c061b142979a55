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

package query

import "strings"

// Facts is the minimal set of per-record attributes an Expr needs to
// evaluate against, gathered from a segment's stored fields. Index
// packages that want bitset-batched evaluation instead (the vector
// segment's formula engine) build their own Facts-equivalent directly
// against internal/bitset + internal/fstindex; Eval here is the
// reference, one-record-at-a-time semantics used by text/paragraph/
// relation segments and by tests asserting NNF/Split correctness.
type Facts struct {
	ResourceID string
	FieldType  string
	FieldID    string
	Facets     []string // hierarchical label/facet paths present on the record
	Keywords   []string
	Public     bool
	Groups     []string // groups_with_access
	Timestamp  func(field string) (int64, bool)
	UserGroups []string
}

// Eval evaluates an NNF'd Expr against f. KindDate/KindSecurity read
// from the UserGroups/Timestamp callbacks of Facts so the same Expr
// tree can be reused across a whole query's candidate set.
func Eval(e Expr, f Facts) bool {
	switch e.Kind {
	case KindAnd:
		for _, op := range e.Operands {
			if !Eval(op, f) {
				return false
			}
		}
		return true
	case KindOr:
		for _, op := range e.Operands {
			if Eval(op, f) {
				return true
			}
		}
		return false
	case KindNot:
		return !Eval(e.Operands[0], f)
	case KindField:
		if f.FieldType != e.FieldType {
			return false
		}
		return e.FieldID == "" || f.FieldID == e.FieldID
	case KindResource:
		return f.ResourceID == e.ResourceID
	case KindFacet:
		for _, facet := range f.Facets {
			if facet == e.Value || strings.HasPrefix(facet, e.Value+"/") {
				return true
			}
		}
		return false
	case KindKeyword:
		for _, kw := range f.Keywords {
			if kw == e.Value {
				return true
			}
		}
		return false
	case KindDate:
		if f.Timestamp == nil {
			return false
		}
		ts, ok := f.Timestamp(e.DateField)
		if !ok {
			return false
		}
		if e.Since != nil && ts < *e.Since {
			return false
		}
		if e.Until != nil && ts > *e.Until {
			return false
		}
		return true
	case KindSecurity:
		return Visible(f.Public, f.Groups, f.UserGroups)
	default:
		return false
	}
}
