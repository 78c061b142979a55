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

import "container/heap"

// Retriever is the vector segment's view a searcher/builder needs:
// fetch a stored vector by address and score it against a query.
type Retriever interface {
	Vector(x Address) []float32
	Similarity() Similarity
}

// Scored pairs an address with its similarity to the query of the
// current search ("higher is better", §4.4.2).
type Scored struct {
	Addr  Address
	Score float32
}

// candidateHeap is a max-heap on Score: the frontier of nodes still to
// be expanded, nearest (highest score) popped first so the search can
// stop as soon as the frontier can no longer beat the current results.
type candidateHeap []Scored

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].Score > h[j].Score }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x interface{}) { *h = append(*h, x.(Scored)) }
func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// resultHeap is a min-heap on Score: the current best-ef results, so
// the single worst entry can be evicted in O(log ef) when a better
// candidate is found.
type resultHeap []Scored

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(Scored)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// layerSearch is the classic HNSW SEARCH-LAYER: beam search with width
// ef starting from entryPoints, returning up to ef results sorted by
// descending score. Used both by Builder (efConstruction) and Search
// (ef_search at layer 0, width 1 greedy descent above it).
func layerSearch(retriever Retriever, layer *Layer, query []float32, ef int, entryPoints []Address) []Scored {
	visited := make(map[Address]struct{}, len(entryPoints))
	candidates := &candidateHeap{}
	results := &resultHeap{}
	heap.Init(candidates)
	heap.Init(results)

	for _, ep := range entryPoints {
		if !layer.Has(ep) {
			continue
		}
		if _, ok := visited[ep]; ok {
			continue
		}
		visited[ep] = struct{}{}
		score := retriever.Similarity().Score(query, retriever.Vector(ep))
		heap.Push(candidates, Scored{Addr: ep, Score: score})
		heap.Push(results, Scored{Addr: ep, Score: score})
	}

	for candidates.Len() > 0 {
		c := heap.Pop(candidates).(Scored)
		if results.Len() >= ef && c.Score < (*results)[0].Score {
			break
		}
		for _, edge := range layer.OutEdges(c.Addr) {
			if _, ok := visited[edge.To]; ok {
				continue
			}
			visited[edge.To] = struct{}{}
			score := retriever.Similarity().Score(query, retriever.Vector(edge.To))
			if results.Len() < ef || score > (*results)[0].Score {
				heap.Push(candidates, Scored{Addr: edge.To, Score: score})
				heap.Push(results, Scored{Addr: edge.To, Score: score})
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	out := make([]Scored, len(*results))
	copy(out, *results)
	return sortDescending(out)
}

func sortDescending(s []Scored) []Scored {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Score > s[j-1].Score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	return s
}
