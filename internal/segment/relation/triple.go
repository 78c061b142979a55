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

// Package relation implements the relation segment kind of
// SPEC_FULL.md §4.1.3: an inverted index over (source, relationship,
// target) triples where each endpoint carries a typed value and subtype,
// plus a normalized (deunicoded, lowercased) form of each endpoint value
// for case/accent-insensitive search. Grounded on spec.md's field list;
// normalization reuses internal/segment/textnorm, the same pass the
// paragraph segment kind uses for tokenization.
package relation

// Entity is one endpoint of a relation triple.
type Entity struct {
	Value   string
	Type    string
	Subtype string
}

// Triple is one (source, relationship, target) record.
type Triple struct {
	Source       Entity
	Relationship string
	Target       Entity
	Metadata     []byte
}
