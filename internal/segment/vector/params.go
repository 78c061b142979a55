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

// Package vector implements the HNSW vector index engine of
// SPEC_FULL.md §4.4: the layered proximity graph, its insert and search
// algorithms, formula-based prefiltering, merge and tiered merge
// planning. Grounded on
// original_source/nidx/nidx_vector/src/hnsw/build.rs (insert algorithm,
// neighbor-selection heuristic), original_source/nidx/nidx_vector/src/
// inverted_index/paragraph.rs (bitset-based formula filtering, FST
// lookups) and original_source/nucliadb_vectors2/src/formula/mod.rs
// (the Clause/CompoundClause AST).
package vector

import "math"

// Params holds the tunables of §4.4.1. Defaults match the table there.
type Params struct {
	M              int // target out-degree on layers >= 1
	M0             int // target out-degree on layer 0 (2*M)
	EfConstruction int // beam width while inserting
}

func DefaultParams() Params {
	return Params{M: 16, M0: 32, EfConstruction: 100}
}

// LevelFactor is mL = 1/ln(M), the scale of the exponential layer
// distribution (§4.4.1).
func (p Params) LevelFactor() float64 {
	return 1 / math.Log(float64(p.M))
}

// MMax returns the out-degree cap for a given layer: M0 at layer 0, M
// above it.
func (p Params) MMax(layer int) int {
	if layer == 0 {
		return p.M0
	}
	return p.M
}

// PruneM is the neighbor count kept when re-running the heuristic to
// repair an over-degree node; build.rs reuses mmax itself for this.
func (p Params) PruneM(mmax int) int { return mmax }
