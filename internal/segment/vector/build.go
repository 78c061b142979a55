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
	"container/heap"
	"math"
	"math/rand"
)

// Builder inserts records into a Graph one at a time, implementing the
// insert algorithm of §4.4.3. Grounded directly on
// original_source/nidx/nidx_vector/src/hnsw/build.rs's HnswBuilder,
// including its seeded layer RNG (seed 2 there) so layer assignment is
// reproducible across a rebuild of the same input — relied on by
// merge's "bulk-insert may reuse the existing top layer" optimization.
type Builder struct {
	params    Params
	retriever Retriever
	rng       *rand.Rand
}

func NewBuilder(params Params, retriever Retriever) *Builder {
	return &Builder{params: params, retriever: retriever, rng: rand.New(rand.NewSource(2))}
}

func (b *Builder) randomLayer() int {
	sample := b.rng.Float64()
	if sample <= 0 {
		sample = math.SmallestNonzeroFloat64
	}
	picked := -math.Log(sample) * b.params.LevelFactor()
	return int(math.Round(picked))
}

// selectNeighboursHeuristic implements §4.4.3's neighbor-selection
// heuristic: accept a candidate iff it is more similar to x than to
// every already-accepted result (diversifies directions across
// clusters); once exhausted, fill remaining slots from discarded
// candidates, highest similarity first.
func (b *Builder) selectNeighboursHeuristic(k int, candidates []Scored, layer *Layer) []Scored {
	var results []Scored
	discarded := &candidateHeap{}
	heap.Init(discarded)

	for _, c := range candidates {
		if len(results) == k {
			break
		}
		accept := true
		for _, y := range results {
			interSim := b.edgeSimilarity(layer, c.Addr, y.Addr)
			if !(c.Score > interSim) {
				accept = false
				break
			}
		}
		if accept {
			results = append(results, c)
		} else {
			heap.Push(discarded, c)
		}
	}

	for len(results) < k && discarded.Len() > 0 {
		results = append(results, heap.Pop(discarded).(Scored))
	}
	return results
}

// edgeSimilarity prefers an existing graph edge's stored score over
// recomputing similarity from scratch, matching build.rs's
// layer.get_out_edges(x).find(...) fallback.
func (b *Builder) edgeSimilarity(layer *Layer, x, y Address) float32 {
	for _, e := range layer.OutEdges(x) {
		if e.To == y {
			return e.Score
		}
	}
	return b.retriever.Similarity().Score(b.retriever.Vector(x), b.retriever.Vector(y))
}

// layerInsert inserts x into one layer, returning the set of neighbors
// it was linked to (the entry points handed down to the next layer).
func (b *Builder) layerInsert(x Address, layer *Layer, entryPoints []Address, mmax int) []Address {
	searchResults := layerSearch(b.retriever, layer, b.retriever.Vector(x), b.params.EfConstruction, entryPoints)
	neighbours := b.selectNeighboursHeuristic(b.params.M, searchResults, layer)

	layer.AddNode(x)
	needsRepair := make(map[Address]struct{})
	result := make([]Address, 0, len(neighbours))
	for _, n := range neighbours {
		result = append(result, n.Addr)
		layer.AddEdge(x, n.Score, n.Addr)
		layer.AddEdge(n.Addr, n.Score, x)
		if layer.OutDegree(n.Addr) > mmax {
			needsRepair[n.Addr] = struct{}{}
		}
	}
	for addr := range needsRepair {
		edges := layer.TakeOutEdges(addr)
		candidates := make([]Scored, len(edges))
		for i, e := range edges {
			candidates[i] = Scored{Addr: e.To, Score: e.Score}
		}
		repaired := b.selectNeighboursHeuristic(b.params.PruneM(mmax), candidates, layer)
		newEdges := make([]Edge, len(repaired))
		for i, r := range repaired {
			newEdges[i] = Edge{To: r.Addr, Score: r.Score}
		}
		layer.ReplaceEdges(addr, newEdges)
	}
	return result
}

// Insert adds x to graph, implementing §4.4.3 end to end.
func (b *Builder) Insert(x Address, graph *Graph) {
	level := b.randomLayer()
	graph.GrowTo(level)

	if graph.EntryPoint == nil {
		for l := 0; l <= level; l++ {
			graph.Layers[l].AddNode(x)
		}
		graph.UpdateEntryPoint(x, level)
		return
	}

	entryPoint := *graph.EntryPoint
	topLayer := entryPoint.Layer
	if level > topLayer {
		topLayer = level
	}
	eps := []Address{entryPoint.Node}

	for l := topLayer; l >= 0; l-- {
		if l > level {
			// Above the insertion point: greedy-descend, keep only the
			// single best neighbor.
			found := layerSearch(b.retriever, graph.Layers[l], b.retriever.Vector(x), 1, eps)
			if len(found) > 0 {
				eps = []Address{found[0].Addr}
			}
			continue
		}
		eps = b.layerInsert(x, graph.Layers[l], eps, b.params.MMax(l))
	}
	graph.UpdateEntryPoint(x, level)
}
