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

package searcher

import (
	"strings"

	"github.com/nidxlabs/nidx/internal/bitset"
	"github.com/nidxlabs/nidx/internal/query"
	"github.com/nidxlabs/nidx/internal/segment/paragraph"
	"github.com/nidxlabs/nidx/internal/segment/text"
	"github.com/nidxlabs/nidx/internal/segment/vector"
)

// evalTextPrefilter evaluates the cross-index prefilter half of §4.6
// against every document of seg, using internal/query.Eval's reference,
// one-record-at-a-time semantics directly (the text segment kind's
// Document already carries every fact atom needs: resource id, field,
// facets, security groups and timestamps).
func evalTextPrefilter(prefilter query.Expr, userGroups []string, seg *text.Segment) *bitset.Set {
	out := bitset.New(len(seg.Docs))
	for i, d := range seg.Docs {
		fieldType, fieldID := splitFieldSpec(strings.TrimPrefix(d.Field, "/"))
		f := query.Facts{
			ResourceID: d.ResourceID,
			FieldType:  fieldType,
			FieldID:    fieldID,
			Facets:     d.Facets,
			Public:     d.GroupsPublic,
			Groups:     d.GroupsWithAccess,
			UserGroups: userGroups,
			Timestamp: func(field string) (int64, bool) {
				switch field {
				case "created":
					return d.Created.Unix(), true
				case "modified":
					return d.Modified.Unix(), true
				default:
					return 0, false
				}
			},
		}
		if query.Eval(prefilter, f) {
			out.Set(i)
		}
	}
	return out
}

// fieldKeysOf returns the "{resource_id}/{field}" key of every doc set
// in prefiltered -- the "set of valid field keys" §4.6 says the
// field-level prefilter passes to the paragraph query as an additional
// Must.
func fieldKeysOf(seg *text.Segment, prefiltered *bitset.Set) []string {
	var keys []string
	prefiltered.Each(func(i int) {
		if k := seg.Docs[i].Key; k != "" {
			keys = append(keys, k)
		}
	})
	return keys
}

// evalParagraphInFilter evaluates the in-paragraph half of a Split'd
// expression against a paragraph segment. Paragraph carries a single
// undifferentiated Labels list (matching the wire format's combined
// label scheme), so both Facet and Keyword filter atoms are matched
// against it -- there is no separate "keyword fact" on a paragraph
// distinct from its labels.
func evalParagraphInFilter(inPara query.Expr, seg *paragraph.Segment) *bitset.Set {
	out := bitset.New(len(seg.Paragraphs))
	for i, p := range seg.Paragraphs {
		f := query.Facts{
			ResourceID: p.ResourceID,
			FieldID:    p.Field,
			Facets:     p.Labels,
			Keywords:   p.Labels,
			Public:     true, // security is enforced by the field-level prefilter, not here
		}
		if query.Eval(inPara, f) {
			out.Set(i)
		}
	}
	return out
}

// prefilterToFormula translates the prefilter half of a cross-index
// expression into a vector.Formula (§4.4.5's Label/KeyPrefix clause
// algebra). Facet atoms become Label clauses (vector records carry
// their resource's label facets directly, per the indexer's
// BuildVectorElems); Field atoms become KeyPrefix clauses over the
// field dictionary, which indexes each record under the
// "{type}/{field_id}" part of its "{rid}/{type}/{field_id}/..." Key.
// Date and Security atoms have no vector-side representation -- records
// don't carry per-record timestamps or security groups -- so they are
// resolved by the searcher's shared resource-visibility/date pass
// instead (see security.go). Resource atoms are dropped here and that
// pass does not check them either, so vector hits are not narrowed by
// resource key filters.
func prefilterToFormula(e query.Expr) (vector.Clause, bool) {
	switch e.Kind {
	case query.KindFacet:
		return vector.LabelAtom(e.Value), true
	case query.KindField:
		prefix := e.FieldType
		if e.FieldID != "" {
			prefix = e.FieldType + "/" + e.FieldID
		}
		return vector.KeyPrefixAtom(prefix), true
	case query.KindAnd, query.KindOr:
		var operands []vector.Clause
		for _, op := range e.Operands {
			if c, ok := prefilterToFormula(op); ok {
				operands = append(operands, c)
			}
		}
		if len(operands) == 0 {
			return vector.Clause{}, false
		}
		if e.Kind == query.KindAnd {
			return vector.And(operands...), true
		}
		return vector.Or(operands...), true
	case query.KindNot:
		if c, ok := prefilterToFormula(e.Operands[0]); ok {
			return vector.Not(c), true
		}
		return vector.Clause{}, false
	default:
		// Resource, Date, Security: no vector-side representation.
		return vector.Clause{}, false
	}
}

// buildFormula wraps the translated prefilter clauses into a Formula
// (§4.4.5: "A formula is a conjunction of clauses").
func buildFormula(prefilter query.Expr) vector.Formula {
	if c, ok := prefilterToFormula(prefilter); ok {
		return vector.Formula{Clauses: []vector.Clause{c}}
	}
	return vector.Formula{}
}
