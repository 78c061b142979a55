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

package searcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nidxlabs/nidx/internal/blob"
	"github.com/nidxlabs/nidx/internal/codec"
	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
	"github.com/nidxlabs/nidx/internal/segment/paragraph"
	"github.com/nidxlabs/nidx/internal/segment/relation"
	"github.com/nidxlabs/nidx/internal/segment/text"
	"github.com/nidxlabs/nidx/internal/segment/vector"
	"github.com/nidxlabs/nidx/internal/store"
)

// TextSegment, ParagraphSegment, RelationSegment and VectorSegment pair
// an opened, queryable segment with the seq it was written at, the unit
// Search needs to resolve which records a deletion batch still hides
// (§4.6) -- though by construction every segment handed to a reader is
// already ready and un-tombstoned, so in practice this is informational.
type TextSegment struct {
	Seq ids.Seq
	Seg *text.Segment
}

type ParagraphSegment struct {
	Seq ids.Seq
	Seg *paragraph.Segment
}

type RelationSegment struct {
	Seq ids.Seq
	Seg *relation.Segment
}

type VectorSegment struct {
	Seq ids.Seq
	Seg vector.Segment
}

// defaultMaxConcurrentSegmentLoads bounds how many segment blobs a single
// OpenReader call downloads at once when the caller doesn't override it
// (Searcher.MaxConcurrentSegmentLoads), per §5's "blocking-pool dispatch
// for segment loads".
const defaultMaxConcurrentSegmentLoads = 8

// OpenReader downloads and unpacks every ready segment of idx into a
// fresh temp directory under baseDir and opens each with its kind's
// package, mirroring internal/worker's downloadAll -- both packages read
// the same write-once blob layout of §6.2, just for different purposes
// (merge vs. query). Downloads run concurrently but bounded by maxLoads
// (§5: errgroup for the fan-out, golang.org/x/sync/semaphore to cap how
// many blob fetches are in flight at once, rather than one goroutine per
// segment regardless of count).
func OpenReader(ctx context.Context, st *store.Store, blobStore blob.Store, baseDir string, idx store.Index, maxLoads int) (*IndexReader, error) {
	if maxLoads <= 0 {
		maxLoads = defaultMaxConcurrentSegmentLoads
	}
	segments, err := st.ListReadySegments(ctx, idx.ID)
	if err != nil {
		return nil, err
	}
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].Seq != segments[j].Seq {
			return segments[i].Seq < segments[j].Seq
		}
		return segments[i].ID < segments[j].ID
	})

	localDir, err := os.MkdirTemp(baseDir, "nidx-reader-*")
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "create reader dir")
	}

	dirs := make([]string, len(segments))
	sem := semaphore.NewWeighted(int64(maxLoads))
	g, gctx := errgroup.WithContext(ctx)
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			data, err := blobStore.Get(gctx, store.BlobKey(seg.ID))
			if err != nil {
				return err
			}
			files, err := codec.UnpackArchive(data)
			if err != nil {
				return nidxerrors.Wrap(nidxerrors.KindCorruption, err, "unpack segment archive")
			}
			dir := filepath.Join(localDir, strconv.FormatInt(int64(seg.ID), 10))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create segment dir")
			}
			for name, contents := range files {
				if err := os.WriteFile(filepath.Join(dir, name), contents, 0o644); err != nil {
					return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write segment file "+name)
				}
			}
			dirs[i] = dir
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = os.RemoveAll(localDir)
		return nil, err
	}

	reader := &IndexReader{IndexID: idx.ID, Kind: idx.Kind, localDir: localDir}
	for i, seg := range segments {
		reader.SegmentIDs = append(reader.SegmentIDs, seg.ID)
		switch idx.Kind {
		case ids.IndexKindText:
			s, err := text.Open(dirs[i])
			if err != nil {
				_ = os.RemoveAll(localDir)
				return nil, err
			}
			reader.Text = append(reader.Text, TextSegment{Seq: seg.Seq, Seg: s})
		case ids.IndexKindParagraph:
			s, err := paragraph.Open(dirs[i])
			if err != nil {
				_ = os.RemoveAll(localDir)
				return nil, err
			}
			reader.Paragraph = append(reader.Paragraph, ParagraphSegment{Seq: seg.Seq, Seg: s})
		case ids.IndexKindRelation:
			s, err := relation.Open(dirs[i])
			if err != nil {
				_ = os.RemoveAll(localDir)
				return nil, err
			}
			reader.Relation = append(reader.Relation, RelationSegment{Seq: seg.Seq, Seg: s})
		case ids.IndexKindVector:
			s, err := vector.Open(dirs[i])
			if err != nil {
				_ = os.RemoveAll(localDir)
				return nil, err
			}
			reader.Vector = append(reader.Vector, VectorSegment{Seq: seg.Seq, Seg: s})
		default:
			_ = os.RemoveAll(localDir)
			return nil, nidxerrors.Newf(nidxerrors.KindValidation, "unknown index kind %q", idx.Kind)
		}
	}
	return reader, nil
}

// segmentIDsOf is Cache.Acquire's freshSegmentIDs argument: the id list
// of an index's currently-ready segments in (seq, id) order, the same
// order OpenReader records, cheap to fetch and compare against a cached
// reader's generation before paying for a reopen.
func segmentIDsOf(ctx context.Context, st *store.Store, indexID ids.IndexID) ([]ids.SegmentID, error) {
	segments, err := st.ListReadySegments(ctx, indexID)
	if err != nil {
		return nil, err
	}
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].Seq != segments[j].Seq {
			return segments[i].Seq < segments[j].Seq
		}
		return segments[i].ID < segments[j].ID
	})
	out := make([]ids.SegmentID, len(segments))
	for i, seg := range segments {
		out[i] = seg.ID
	}
	return out, nil
}
