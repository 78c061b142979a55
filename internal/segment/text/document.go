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

// Package text implements the text segment kind of SPEC_FULL.md §4.1.1: a
// single inverted index over resource uuid, field facet, tokenized text,
// timestamps, status, label facets and the security facets. Grounded on
// spec.md's own field list plus
// original_source/nidx/nidx_text/src/schema.rs for field naming (the
// Tantivy-specific encoded_field_id fast-field trick is not carried over —
// Go gives us plain struct fields instead of a columnar schema to work
// around).
package text

import "time"

// Document is one field's text content for one resource, the unit this
// segment kind indexes.
type Document struct {
	ResourceID string
	// Field is the hierarchical facet path, e.g. "/a/title".
	Field string
	Text  string

	// Key identifies this document for deletion-log matching across
	// merges, "{resource_id}/{field}" per §6.3's field key convention.
	// Empty for documents built outside the indexer (e.g. test fixtures
	// that never merge).
	Key string

	Created  time.Time
	Modified time.Time
	Status   int

	// Facets holds arbitrary label facets (hierarchical paths), matched by
	// both exact value and "is an ancestor of" per §4.6's Facet atom.
	Facets []string

	GroupsPublic     bool
	GroupsWithAccess []string
}
