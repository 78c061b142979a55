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

package indexer

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/nidxlabs/nidx/internal/blob"
	"github.com/nidxlabs/nidx/internal/codec"
	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/log"
	"github.com/nidxlabs/nidx/internal/metrics"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
	"github.com/nidxlabs/nidx/internal/segment/paragraph"
	"github.com/nidxlabs/nidx/internal/segment/relation"
	"github.com/nidxlabs/nidx/internal/segment/text"
	"github.com/nidxlabs/nidx/internal/segment/vector"
	"github.com/nidxlabs/nidx/internal/store"
)

// Indexer turns one resource into segments for every index of a shard
// and commits them, grounded on the orchestration shape of
// original_source/nidx/nidx_relation/src/... ingest callers (build, then
// upload, then a single metadata commit).
type Indexer struct {
	Store     *store.Store
	Blob      blob.Store
	TempDir   string
	Vector    vector.Params
	Normalize bool
}

// IndexResult reports what happened to one index for one resource.
type IndexResult struct {
	IndexID     ids.IndexID
	Kind        ids.IndexKind
	SegmentID   ids.SegmentID
	Records     int64
	Deleted     int
	SkippedNoop bool
}

// IndexResource implements §4.3 end to end for one index: build the
// appropriate in-memory segment, finalize its directory, upload it as a
// single compressed blob, then commit the segment-ready row and any
// deletion row in one transaction. A resource contributing zero records
// and zero deletions to an index produces no segment (SkippedNoop=true) —
// there is nothing to make visible.
func (ix *Indexer) IndexResource(ctx context.Context, idx store.Index, r Resource, vectorset string) (IndexResult, error) {
	start := time.Now()
	res := IndexResult{IndexID: idx.ID, Kind: idx.Kind}

	var recordCount int
	deleteKeys := r.DeleteKeys(idx.Kind)

	switch idx.Kind {
	case ids.IndexKindText:
		recordCount = len(r.Fields)
	case ids.IndexKindParagraph:
		recordCount = len(r.Paragraphs)
	case ids.IndexKindRelation:
		recordCount = len(r.Relations)
	case ids.IndexKindVector:
		recordCount = countVectorElems(r, vectorset)
	default:
		return res, nidxerrors.Newf(nidxerrors.KindValidation, "unknown index kind %q", idx.Kind)
	}
	if recordCount == 0 && len(deleteKeys) == 0 {
		res.SkippedNoop = true
		return res, nil
	}

	var records int64
	var sizeBytes int64
	var segID ids.SegmentID
	var err error

	// Build and upload before the metadata commit (§4.3: "failures before
	// step 6 are safe, the row does not exist and the blob is orphan"). A
	// deletion-only resource (recordCount == 0) skips this branch entirely:
	// no segment row is created for it, only the deletion batch.
	if recordCount > 0 {
		var dir string
		dir, err = os.MkdirTemp(ix.TempDir, "nidx-segment-*")
		if err != nil {
			return res, nidxerrors.Wrap(nidxerrors.KindTransient, err, "create segment build dir")
		}
		defer os.RemoveAll(dir)

		switch idx.Kind {
		case ids.IndexKindText:
			docs := BuildTextDocuments(r)
			if err := text.Write(dir, text.Build(docs)); err != nil {
				return res, err
			}
			records = int64(len(docs))
		case ids.IndexKindParagraph:
			paragraphs := BuildParagraphs(r)
			if err := paragraph.Write(dir, paragraph.Build(paragraphs)); err != nil {
				return res, err
			}
			records = int64(len(paragraphs))
		case ids.IndexKindRelation:
			triples := BuildRelationTriples(r)
			if err := relation.Write(dir, relation.Build(triples)); err != nil {
				return res, err
			}
			records = int64(len(triples))
		case ids.IndexKindVector:
			elems := BuildVectorElems(r, vectorset, ix.Normalize)
			seg := BuildVectorSegment(elems, ix.Vector, similarityFromConfig(idx.Config))
			if err := vector.Write(dir, seg); err != nil {
				return res, err
			}
			records = int64(len(elems))
		}

		var blobBytes []byte
		sizeBytes, blobBytes, err = packDirectory(dir)
		if err != nil {
			return res, err
		}
		err = ix.Store.WithTx(ctx, func(tx *sql.Tx) error {
			seq, err := ix.Store.NextSeq(ctx, tx, idx.ID)
			if err != nil {
				return err
			}
			segID, err = ix.Store.CreatePendingSegment(ctx, tx, idx.ID, seq)
			if err != nil {
				return err
			}
			if err := ix.Store.InsertDeletions(ctx, tx, idx.ID, seq, deleteKeys); err != nil {
				return err
			}
			if err := ix.Blob.Put(ctx, store.BlobKey(segID), blobBytes); err != nil {
				return err
			}
			if err := ix.Store.CompleteSegment(ctx, tx, segID, records, sizeBytes, nil); err != nil {
				return err
			}
			return ix.Store.TouchIndex(ctx, tx, idx.ID)
		})
	} else {
		err = ix.Store.WithTx(ctx, func(tx *sql.Tx) error {
			seq, err := ix.Store.NextSeq(ctx, tx, idx.ID)
			if err != nil {
				return err
			}
			if err := ix.Store.InsertDeletions(ctx, tx, idx.ID, seq, deleteKeys); err != nil {
				return err
			}
			return ix.Store.TouchIndex(ctx, tx, idx.ID)
		})
	}
	if err != nil {
		return res, err
	}

	res.SegmentID = segID
	res.Records = records
	res.Deleted = len(deleteKeys)

	metrics.IndexerSegmentsBuilt.WithLabelValues(string(idx.Kind)).Inc()
	metrics.IndexerSegmentBuildLatency.WithLabelValues(string(idx.Kind)).Observe(time.Since(start).Seconds())
	log.Ctx(ctx).Debug("indexed resource",
		zap.String("resource", r.ResourceID), zap.String("kind", string(idx.Kind)),
		zap.Int64("records", records), zap.Int("deleted", len(deleteKeys)))

	return res, nil
}

// IndexAll runs IndexResource over every index of a shard, used by the
// role loop consuming ingest messages (§4.3's top-level contract: "for
// each index belonging to that shard").
func (ix *Indexer) IndexAll(ctx context.Context, indexes []store.Index, r Resource) ([]IndexResult, error) {
	out := make([]IndexResult, 0, len(indexes))
	for _, idx := range indexes {
		vectorset := idx.Name
		res, err := ix.IndexResource(ctx, idx, r, vectorset)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// vectorsetConfig is the JSON shape of an index row's config column for
// kind=vector (§6.1): just the similarity function, since M/efConstruction
// are process-wide tunables (internal/config) rather than per-vectorset.
type vectorsetConfig struct {
	Similarity string `json:"similarity"`
}

func similarityFromConfig(raw []byte) vector.Similarity {
	var cfg vectorsetConfig
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &cfg)
	}
	if cfg.Similarity == "dot" {
		return vector.SimilarityDot
	}
	return vector.SimilarityCosine
}

// packDirectory reads every regular file directly under dir and packs
// them into a single zstd-compressed archive via internal/codec,
// returning the archive's size alongside its bytes (§4.3 steps 4-5,
// §6.2's "single compressed archive" layout).
func packDirectory(dir string) (int64, []byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "read segment build dir")
	}
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return 0, nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "read segment file "+e.Name())
		}
		files[e.Name()] = data
	}
	archive, err := codec.PackArchive(files)
	if err != nil {
		return 0, nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "pack segment archive")
	}
	return int64(len(archive)), archive, nil
}
