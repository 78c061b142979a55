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
	"strings"

	"github.com/nidxlabs/nidx/internal/bitset"
	"github.com/nidxlabs/nidx/internal/fstindex"
	"github.com/nidxlabs/nidx/internal/segment/queryparser"
	"github.com/nidxlabs/nidx/internal/segment/textnorm"
)

// Segment is the built, queryable form of a batch of Paragraphs. Unlike the
// text segment kind, Tokens keeps each paragraph's folded token sequence in
// order so PhraseQuery can check true adjacency instead of document-wide
// co-occurrence — paragraphs are short enough that a linear scan per
// candidate is cheap, and exact offsets are the reason this index kind
// exists at all (§4.1.2).
type Segment struct {
	Paragraphs []Paragraph
	Tokens     [][]string // folded literal tokens, parallel to Paragraphs
	Terms      *fstindex.Index
	Labels     *fstindex.Index
}

func Build(paragraphs []Paragraph) *Segment {
	terms := fstindex.NewBuilder()
	labels := fstindex.NewBuilder()
	tokens := make([][]string, len(paragraphs))

	for i, p := range paragraphs {
		folded := textnorm.Fold(p.Text)
		var toks []string
		for _, tok := range queryparser.Tokenize(folded) {
			if tok.Kind == queryparser.TokenLiteral {
				toks = append(toks, tok.Text)
				terms.Add(tok.Text, i)
			}
		}
		tokens[i] = toks
		for _, l := range p.Labels {
			labels.Add(l, i)
		}
	}

	return &Segment{
		Paragraphs: paragraphs,
		Tokens:     tokens,
		Terms:      terms.Build(),
		Labels:     labels.Build(),
	}
}

func addrsToBitset(addrs []int, n int) *bitset.Set {
	s := bitset.New(n)
	for _, a := range addrs {
		s.Set(a)
	}
	return s
}

// LabelSet returns every paragraph tagged with label.
func (s *Segment) LabelSet(label string) *bitset.Set {
	return addrsToBitset(s.Labels.Lookup(label), len(s.Paragraphs))
}

// FieldKeySet returns every paragraph belonging to one of the given
// "resourceID/field" keys — the prefilter-to-paragraph-query bridge of
// §4.6's second planner pass.
func (s *Segment) FieldKeySet(keys []string) *bitset.Set {
	out := bitset.New(len(s.Paragraphs))
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	for i, p := range s.Paragraphs {
		if _, ok := want[p.ResourceID+"/"+strings.TrimPrefix(p.Field, "/")]; ok {
			out.Set(i)
		}
	}
	return out
}

// NotRepeatedSet returns every paragraph that is not a duplicate within its
// field, used to implement "unique paragraph filtering" (§4.5) unless
// with_duplicates is requested.
func (s *Segment) NotRepeatedSet() *bitset.Set {
	out := bitset.New(len(s.Paragraphs))
	for i, p := range s.Paragraphs {
		if !p.RepeatedInField {
			out.Set(i)
		}
	}
	return out
}
