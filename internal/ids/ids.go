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

// Package ids defines the identifier and sequence types of SPEC_FULL.md §3.1.
package ids

import "github.com/google/uuid"

// ShardID is the 128-bit UUID identifying a tenant-isolated shard.
type ShardID = uuid.UUID

// IndexID is an opaque integer assigned by the metadata store.
type IndexID int64

// SegmentID is a globally unique opaque integer mapping to blob key
// "segments/<segment_id>".
type SegmentID int64

// MergeJobID identifies a row in the merge_jobs table.
type MergeJobID int64

// Seq is a 64-bit strictly monotonic sequence number per producer stream.
type Seq int64

// IndexKind enumerates the kinds of index an index row may have.
type IndexKind string

const (
	IndexKindText      IndexKind = "text"
	IndexKindParagraph IndexKind = "paragraph"
	IndexKindRelation  IndexKind = "relation"
	IndexKindVector    IndexKind = "vector"
)

// DefaultVectorset is the reserved, unremovable vectorset name (§4.2).
const DefaultVectorset = "__default__"

func NewShardID() ShardID { return uuid.New() }
