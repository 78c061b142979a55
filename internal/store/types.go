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

package store

import (
	"strconv"
	"time"

	"github.com/nidxlabs/nidx/internal/ids"
)

type Shard struct {
	ID        ids.ShardID
	KBID      ids.ShardID
	CreatedAt time.Time
	DeletedAt *time.Time
}

type Index struct {
	ID        ids.IndexID
	ShardID   ids.ShardID
	Kind      ids.IndexKind
	Name      string
	Config    []byte // JSON
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Segment mirrors §3.2: "ready" iff Records and SizeBytes are non-nil and
// DeleteAt is nil.
type Segment struct {
	ID            ids.SegmentID
	IndexID       ids.IndexID
	Seq           ids.Seq
	Records       *int64
	SizeBytes     *int64
	DeleteAt      *time.Time
	MergeJobID    *ids.MergeJobID
	IndexMetadata []byte // JSON
}

func (s Segment) Ready() bool {
	return s.Records != nil && s.SizeBytes != nil && s.DeleteAt == nil
}

type Deletion struct {
	IndexID ids.IndexID
	Seq     ids.Seq
	Keys    []string
}

type MergeJob struct {
	ID         ids.MergeJobID
	IndexID    ids.IndexID
	Seq        ids.Seq
	SegmentIDs []ids.SegmentID
	StartedAt  *time.Time
	RunningAt  *time.Time
	Retries    int
	FinishedAt *time.Time
}

// BlobKey returns the write-once object key for a segment (§3.1, §6.2).
func BlobKey(id ids.SegmentID) string {
	return segmentBlobPrefix + strconv.FormatInt(int64(id), 10)
}

const segmentBlobPrefix = "segments/"
