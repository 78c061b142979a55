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
	"hash/fnv"
	"sort"

	"github.com/nidxlabs/nidx/internal/bitset"
)

// SearchRequest captures the parameters of §4.4.4.
type SearchRequest struct {
	Query          []float32
	K              int
	EfSearch       int
	Filter         *Formula
	WithDuplicates bool
	MinScore       float32
}

// SearchResult is one scored match, carrying enough of the record to
// dedupe and to let the caller resolve the rest from the record store.
type SearchResult struct {
	Addr  Address
	Key   string
	Score float32
}

// recordRetriever adapts a segment's retained records to the Retriever
// interface used by layerSearch, dequantizing lazily.
type recordRetriever struct {
	records    []Record
	similarity Similarity
}

func (r *recordRetriever) Vector(x Address) []float32 { return r.records[x].Vector.Dequantize() }
func (r *recordRetriever) Similarity() Similarity     { return r.similarity }

// Search implements §4.4.4: greedy-descend through upper layers to a
// single best entry point, beam search at layer 0 with a width of
// max(k, ef_search), evaluate the filter formula per candidate (a
// non-matching node is still traversed, just not scored), keep the
// best k by similarity, drop duplicates and sub-min_score results.
func Search(graph *Graph, records []Record, similarity Similarity, idx SegmentIndex, req SearchRequest) []SearchResult {
	if graph.EntryPoint == nil || len(records) == 0 {
		return nil
	}

	retriever := &recordRetriever{records: records, similarity: similarity}

	ef := req.EfSearch
	if req.K > ef {
		ef = req.K
	}
	if ef < 1 {
		ef = 1
	}

	eps := []Address{graph.EntryPoint.Node}
	for l := graph.EntryPoint.Layer; l > 0; l-- {
		found := layerSearch(retriever, graph.Layers[l], req.Query, 1, eps)
		if len(found) > 0 {
			eps = []Address{found[0].Addr}
		}
	}

	var matchSet *bitset.Set
	if req.Filter != nil {
		matchSet = req.Filter.Filter(idx)
	}

	candidates := layerSearch(retriever, graph.Layers[0], req.Query, ef, eps)

	seen := make(map[string]struct{})
	var results []SearchResult
	for _, c := range candidates {
		if matchSet != nil && !matchSet.Test(int(c.Addr)) {
			continue
		}
		if c.Score < req.MinScore {
			continue
		}
		rec := records[c.Addr]
		if !req.WithDuplicates {
			dk := dedupeKey(rec.Key, rec.Vector.Values)
			if _, ok := seen[dk]; ok {
				continue
			}
			seen[dk] = struct{}{}
		}
		results = append(results, SearchResult{Addr: c.Addr, Key: rec.Key, Score: c.Score})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > req.K {
		results = results[:req.K]
	}
	return results
}

func dedupeKey(key string, vector []uint8) string {
	h := fnv.New64a()
	h.Write([]byte(key))
	h.Write(vector)
	return string(h.Sum(nil))
}
