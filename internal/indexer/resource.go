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

// Package indexer implements the indexer role of SPEC_FULL.md §4.3: turn
// one ingest message into, for each of a shard's indexes, either a new
// ready segment or a set of deletion keys, committed in a single logical
// transaction alongside the uploaded segment blob.
package indexer

import (
	"time"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/segment/relation"
)

// Resource is the decoded payload of an ingest message (§6.3): the
// already-fetched contents of the blob an ingest message's storage_key
// points at. Fields/paragraphs/sentences are keyed exactly as the wire
// format names them so the deletion-key lists can reference them
// directly.
type Resource struct {
	ResourceID string

	// Fields are keyed "{type}/{field_id}", e.g. "a/title".
	Fields map[string]Field

	// Paragraphs are keyed "{rid}/{field}/{para_id}".
	Paragraphs map[string]ParagraphField

	// Sentences are keyed "{rid}/{field}/{ord}/{start-end}[#vectorset]".
	Sentences map[string]Sentence

	Relations []RelationField

	Labels           []string
	GroupsPublic     bool
	GroupsWithAccess []string
	Created          time.Time
	Modified         time.Time

	// DeletedKeys lists, per index kind, the keys that must be masked by
	// a deletion batch at this resource's seq — e.g. paragraph/sentence
	// keys belonging to a field the resource no longer has.
	DeletedKeys map[ids.IndexKind][]string
}

// Field is one field's plain text content, the text segment kind's unit.
type Field struct {
	Text string
}

// ParagraphField is one paragraph span within a field.
type ParagraphField struct {
	Field           string
	Text            string
	Start           int
	End             int
	Labels          []string
	RepeatedInField bool
	SplitID         string
}

// Cardinality distinguishes a sentence carrying one vector from one
// carrying a concatenated buffer of several per-token vectors (§4.3 step 3).
type Cardinality int

const (
	CardinalitySingle Cardinality = iota
	CardinalityMulti
)

// Sentence is one vector-capable span of a field.
type Sentence struct {
	Field       string
	Vector      []float32
	Cardinality Cardinality
	// TokenDim is the per-token dimension when Cardinality is
	// CardinalityMulti: Vector is treated as len(Vector)/TokenDim
	// consecutive vectors to be split into one Elem each.
	TokenDim  int
	Labels    []string
	Metadata  []byte
	Vectorset string
}

// RelationField is one relation triple carried by the resource, reusing
// relation.Entity/Triple's shape directly rather than duplicating it.
type RelationField struct {
	Source       relation.Entity
	Relationship string
	Target       relation.Entity
	Metadata     []byte
}

// DeleteKeys returns the deletion-set for kind, or nil if the resource
// names none.
func (r Resource) DeleteKeys(kind ids.IndexKind) []string {
	if r.DeletedKeys == nil {
		return nil
	}
	return r.DeletedKeys[kind]
}
