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

// Edge is a scored undirected link between two nodes of a layer.
type Edge struct {
	To    Address
	Score float32
}

// Layer stores one level of the proximity graph: undirected edges keyed
// by node, plus the set of nodes present at this level (a node appears
// in layer l iff it was sampled into >= l layers, §4.4.1).
type Layer struct {
	edges map[Address][]Edge
}

func newLayer() *Layer {
	return &Layer{edges: make(map[Address][]Edge)}
}

func (l *Layer) AddNode(x Address) {
	if _, ok := l.edges[x]; !ok {
		l.edges[x] = nil
	}
}

func (l *Layer) Has(x Address) bool {
	_, ok := l.edges[x]
	return ok
}

func (l *Layer) AddEdge(from Address, score float32, to Address) {
	l.edges[from] = append(l.edges[from], Edge{To: to, Score: score})
}

func (l *Layer) OutEdges(x Address) []Edge {
	return l.edges[x]
}

func (l *Layer) OutDegree(x Address) int {
	return len(l.edges[x])
}

// ReplaceEdges overwrites x's adjacency list, used to prune an
// over-degree node back down to its repaired neighbor set.
func (l *Layer) ReplaceEdges(x Address, edges []Edge) {
	l.edges[x] = edges
}

// TakeOutEdges removes and returns x's current edges, the candidate
// pool the repair pass re-runs the selection heuristic over.
func (l *Layer) TakeOutEdges(x Address) []Edge {
	edges := l.edges[x]
	l.edges[x] = nil
	return edges
}

// EntryPoint records the current top-of-graph node and the highest
// layer it participates in.
type EntryPoint struct {
	Node  Address
	Layer int
}

// Graph is the layered proximity graph of §4.4.1, built incrementally by
// Builder.Insert and queried by Search.
type Graph struct {
	Layers     []*Layer
	EntryPoint *EntryPoint
}

func NewGraph() *Graph {
	return &Graph{}
}

// GrowTo ensures layers 0..level exist, creating any missing ones.
func (g *Graph) GrowTo(level int) {
	for len(g.Layers) <= level {
		g.Layers = append(g.Layers, newLayer())
	}
}

// UpdateEntryPoint promotes x to entry point if its top layer exceeds
// the current entry point's layer, or if there is no entry point yet.
func (g *Graph) UpdateEntryPoint(x Address, topLayer int) {
	if g.EntryPoint == nil || topLayer > g.EntryPoint.Layer {
		g.EntryPoint = &EntryPoint{Node: x, Layer: topLayer}
	}
}

func (g *Graph) TopLayer() int {
	if g.EntryPoint == nil {
		return -1
	}
	return g.EntryPoint.Layer
}
