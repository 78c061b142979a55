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

// Package paragraph implements the paragraph segment kind of
// SPEC_FULL.md §4.1.2: an inverted index over uuid, field, paragraph text,
// start/end offsets, labels, the repeated_in_field flag and split id.
// Grounded on spec.md's own field list and
// original_source/nidx/nidx_paragraph/src/search_query.rs for how the
// repeated_in_field veto composes with the rest of the query.
package paragraph

// Paragraph is one indexed unit: a contiguous span of a resource field's
// text, plus the metadata the query planner filters and dedups on.
type Paragraph struct {
	ResourceID string
	Field      string
	Text       string
	Start      int
	End        int
	Labels     []string

	// Key identifies this paragraph for deletion-log matching across
	// merges, "{resource_id}/{field}/{para_id}" per §6.3's paragraph key
	// convention. Empty for paragraphs built outside the indexer.
	Key string
	// RepeatedInField marks a paragraph that duplicates another paragraph's
	// text within the same field (e.g. a repeated boilerplate block); the
	// search planner excludes these unless with_duplicates is set.
	RepeatedInField bool
	SplitID         string
}
