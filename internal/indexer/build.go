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

package indexer

import (
	"sort"
	"strconv"

	"github.com/nidxlabs/nidx/internal/segment/paragraph"
	"github.com/nidxlabs/nidx/internal/segment/relation"
	"github.com/nidxlabs/nidx/internal/segment/text"
	"github.com/nidxlabs/nidx/internal/segment/vector"
)

// BuildTextDocuments derives one text.Document per field (§4.3 step 2),
// carrying the resource's labels/security/timestamps onto every field
// document — the text segment kind has no per-field security facets of
// its own.
func BuildTextDocuments(r Resource) []text.Document {
	keys := sortedFieldKeys(r.Fields)
	docs := make([]text.Document, 0, len(keys))
	for _, key := range keys {
		f := r.Fields[key]
		docs = append(docs, text.Document{
			ResourceID:       r.ResourceID,
			Field:            key,
			Text:             f.Text,
			Key:              r.ResourceID + "/" + key,
			Created:          r.Created,
			Modified:         r.Modified,
			Facets:           r.Labels,
			GroupsPublic:     r.GroupsPublic,
			GroupsWithAccess: r.GroupsWithAccess,
		})
	}
	return docs
}

func sortedFieldKeys(fields map[string]Field) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildParagraphs derives one paragraph.Paragraph per paragraph entry
// (§4.3 step 2). Paragraph-level labels merge the resource's own labels
// with the paragraph's own, matching the original's practice of
// propagating resource-level facets down onto every paragraph so a
// paragraph-only query can still filter by them.
func BuildParagraphs(r Resource) []paragraph.Paragraph {
	keys := make([]string, 0, len(r.Paragraphs))
	for k := range r.Paragraphs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]paragraph.Paragraph, 0, len(keys))
	for _, key := range keys {
		p := r.Paragraphs[key]
		labels := append(append([]string{}, r.Labels...), p.Labels...)
		out = append(out, paragraph.Paragraph{
			ResourceID:      r.ResourceID,
			Field:           p.Field,
			Text:            p.Text,
			Start:           p.Start,
			End:             p.End,
			Labels:          labels,
			RepeatedInField: p.RepeatedInField,
			SplitID:         p.SplitID,
			Key:             key,
		})
	}
	return out
}

// BuildRelationTriples derives one relation.Triple per relation entry.
func BuildRelationTriples(r Resource) []relation.Triple {
	out := make([]relation.Triple, 0, len(r.Relations))
	for _, rel := range r.Relations {
		out = append(out, relation.Triple{
			Source:       rel.Source,
			Relationship: rel.Relationship,
			Target:       rel.Target,
			Metadata:     rel.Metadata,
		})
	}
	return out
}

// BuildVectorElems enumerates the resource's sentences belonging to
// vectorset, expanding each into one or more vector.Elem (§4.3 step 3):
// a CardinalityMulti sentence's concatenated buffer is split into
// TokenDim-sized per-token vectors, each becoming its own Elem keyed by
// appending "/<index>" to the sentence key so every token address stays
// distinct. normalize applies vector.Normalize (L2) before quantization,
// matching a Cosine-similarity index's ingest-time normalization (§4.4.2).
func BuildVectorElems(r Resource, vectorset string, normalize bool) []vector.Elem {
	keys := make([]string, 0, len(r.Sentences))
	for k, s := range r.Sentences {
		if s.Vectorset == vectorset {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []vector.Elem
	for _, key := range keys {
		s := r.Sentences[key]
		switch s.Cardinality {
		case CardinalityMulti:
			if s.TokenDim <= 0 || len(s.Vector)%s.TokenDim != 0 {
				continue
			}
			n := len(s.Vector) / s.TokenDim
			for i := 0; i < n; i++ {
				tok := append([]float32(nil), s.Vector[i*s.TokenDim:(i+1)*s.TokenDim]...)
				if normalize {
					vector.Normalize(tok)
				}
				out = append(out, vector.Elem{
					Key:      tokenKey(key, i),
					Vector:   tok,
					Labels:   s.Labels,
					Metadata: s.Metadata,
				})
			}
		default:
			v := append([]float32(nil), s.Vector...)
			if normalize {
				vector.Normalize(v)
			}
			out = append(out, vector.Elem{Key: key, Vector: v, Labels: s.Labels, Metadata: s.Metadata})
		}
	}
	return out
}

// countVectorElems reports how many vector.Elem BuildVectorElems would
// produce for vectorset, without materializing them — used by the
// indexer to decide whether a vector index needs a segment at all before
// paying for quantization and graph insertion.
func countVectorElems(r Resource, vectorset string) int {
	n := 0
	for _, s := range r.Sentences {
		if s.Vectorset != vectorset {
			continue
		}
		if s.Cardinality == CardinalityMulti {
			if s.TokenDim <= 0 || len(s.Vector)%s.TokenDim != 0 {
				continue
			}
			n += len(s.Vector) / s.TokenDim
		} else {
			n++
		}
	}
	return n
}

func tokenKey(sentenceKey string, i int) string {
	return sentenceKey + "/" + strconv.Itoa(i)
}
