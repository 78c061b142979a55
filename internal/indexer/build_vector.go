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
	"time"

	"github.com/nidxlabs/nidx/internal/segment/vector"
)

// BuildVectorSegment inserts elems one at a time through a fresh
// vector.Builder, quantizing each vector as it lands in the record
// store, then rebuilds the field/label FSTs over the result — the
// ingest-time half of §4.4 (insertion is identical to a merge's
// re-insertion pass, just over freshly-ingested records instead of
// retained ones).
func BuildVectorSegment(elems []vector.Elem, params vector.Params, similarity vector.Similarity) vector.Segment {
	records := make([]vector.Record, len(elems))
	for i, e := range elems {
		records[i] = vector.Record{
			Key:      e.Key,
			Vector:   vector.Quantize(e.Vector),
			Labels:   e.Labels,
			Metadata: e.Metadata,
		}
	}

	retriever := &ingestRetriever{records: records, similarity: similarity}
	builder := vector.NewBuilder(params, retriever)
	graph := vector.NewGraph()
	for i := range records {
		builder.Insert(vector.Address(i), graph)
	}

	fields, labels := vector.BuildFSTs(records)
	dimension := 0
	if len(elems) > 0 {
		dimension = len(elems[0].Vector)
	}

	return vector.Segment{
		Journal: vector.Journal{
			Similarity:  similarity,
			Dimension:   dimension,
			Count:       len(records),
			CreatedTime: time.Now().UTC(),
		},
		Records: records,
		Graph:   graph,
		Index:   vector.SegmentIndex{Fields: fields, Labels: labels, Records: len(records)},
	}
}

type ingestRetriever struct {
	records    []vector.Record
	similarity vector.Similarity
}

func (r *ingestRetriever) Vector(x vector.Address) []float32 {
	return r.records[x].Vector.Dequantize()
}

func (r *ingestRetriever) Similarity() vector.Similarity { return r.similarity }
