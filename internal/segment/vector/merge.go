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
	"strings"

	"github.com/nidxlabs/nidx/internal/dtrie"
	"github.com/nidxlabs/nidx/internal/fstindex"
	"github.com/nidxlabs/nidx/internal/ids"
)

// MergeInput is one segment contributing to a merge, paired with the
// deletion log active at its seq (§4.4.6).
type MergeInput struct {
	Seq     ids.Seq
	Records []Record
	Deletes *dtrie.DTrie
}

// Merge implements §4.4.6: stream-concatenate inputs (oldest first,
// caller's responsibility per the spec's ordering precondition),
// dropping records masked by their segment's own deletion log, then
// rebuild the graph and FSTs from scratch over the retained records.
//
// "Bulk-insert may reuse the existing top layer of the largest input as
// a seed" (§4.4.6 step 3) is a builder-internal optimization the
// reference leaves optional; this implementation always re-inserts
// every retained record through Builder.Insert, which is simpler and
// produces an equivalent graph at the cost of not special-casing the
// largest input's existing topology.
func Merge(inputs []MergeInput, params Params, similarity Similarity) ([]Record, *Graph) {
	var retained []Record
	for _, in := range inputs {
		for _, rec := range in.Records {
			if in.Deletes != nil && in.Deletes.Deleted([]byte(rec.Key), in.Seq) {
				continue
			}
			retained = append(retained, rec)
		}
	}

	retriever := &mergeRetriever{records: retained, similarity: similarity}
	builder := NewBuilder(params, retriever)
	graph := NewGraph()
	for i := range retained {
		builder.Insert(Address(i), graph)
	}
	return retained, graph
}

// BuildFSTs rebuilds fst_fields.idx / fst_labels.idx from a retained
// record set, the final step of §4.4.6. fst_fields.idx is keyed by the
// record's field key ("{type}/{field_id}"), not its full record key
// ("{rid}/{type}/{field_id}/{ord}/{start-end}[#vectorset]") -- a Field
// atom's KeyPrefixAtom (e.g. "f/field1") is a prefix of the field key, not
// of the rid-first record key, so indexing by the record key would leave
// every field-filtered query matching nothing (§8 scenario 4).
func BuildFSTs(records []Record) (fields, labels *fstindex.Index) {
	fieldBuilder := fstindex.NewBuilder()
	labelBuilder := fstindex.NewBuilder()
	for addr, rec := range records {
		fieldBuilder.Add(fieldKeyOf(rec.Key), addr)
		for _, l := range rec.Labels {
			labelBuilder.Add(l, addr)
		}
	}
	return fieldBuilder.Build(), labelBuilder.Build()
}

// fieldKeyOf extracts "{type}/{field_id}" from a record key of the form
// "{rid}/{type}/{field_id}/{ord}/{start-end}[#vectorset]".
func fieldKeyOf(key string) string {
	parts := strings.SplitN(key, "/", 4)
	if len(parts) < 3 {
		return key
	}
	return parts[1] + "/" + parts[2]
}

type mergeRetriever struct {
	records    []Record
	similarity Similarity
}

func (r *mergeRetriever) Vector(x Address) []float32 {
	return r.records[x].Vector.Dequantize()
}

func (r *mergeRetriever) Similarity() Similarity { return r.similarity }
