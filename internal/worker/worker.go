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

// Package worker implements the worker role of SPEC_FULL.md §4.8: claim
// one merge job, download its input segment blobs, invoke the index
// kind's merger, upload the result and swap it in for the inputs in a
// single transaction. Grounded on the teacher's internal/datacoord
// compaction executor shape (claim -> keepalive goroutine -> do the work
// -> one commit), generalized from vector's §4.4.6 merge to all four
// segment kinds via internal/segment/{text,paragraph,relation}.Merge.
package worker

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nidxlabs/nidx/internal/blob"
	"github.com/nidxlabs/nidx/internal/codec"
	"github.com/nidxlabs/nidx/internal/dtrie"
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

// Config are the tunables of §4.8/§5.
type Config struct {
	KeepaliveInterval   time.Duration
	SegmentGracePeriod  time.Duration
	Vector              vector.Params
	PollEmptyQueueSleep time.Duration
}

type Worker struct {
	Store   *store.Store
	Blob    blob.Store
	TempDir string
	Config  Config
}

// Run claims and executes merge jobs in a loop until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		ran, err := w.RunOnce(ctx)
		if err != nil {
			log.Ctx(ctx).Warn("merge job failed", zap.Error(err))
		}
		if !ran {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.Config.PollEmptyQueueSleep):
			}
		}
	}
}

// RunOnce claims at most one merge job and executes it to completion.
// Reports false if no job was available to claim.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, segIDs, found, err := w.Store.ClaimMergeJob(ctx)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	start := time.Now()
	metrics.WorkerJobsInFlight.WithLabelValues().Inc()
	defer metrics.WorkerJobsInFlight.WithLabelValues().Dec()

	keepaliveCtx, stopKeepalive := context.WithCancel(ctx)
	keepaliveDone := make(chan struct{})
	go func() {
		defer close(keepaliveDone)
		w.keepAlive(keepaliveCtx, job.ID)
	}()
	defer func() {
		stopKeepalive()
		<-keepaliveDone
	}()

	idx, err := w.Store.GetIndex(ctx, job.IndexID)
	if err != nil {
		_ = w.Store.FailMergeJob(ctx, job.ID, -1) // index gone: never retry, abandon immediately
		return true, err
	}

	if err := w.runMerge(ctx, job, segIDs, idx); err != nil {
		if failErr := w.Store.FailMergeJob(ctx, job.ID, mergeMaxRetries); failErr != nil {
			log.Ctx(ctx).Warn("failed to release merge job after error", zap.Error(failErr))
		}
		return true, err
	}

	metrics.WorkerMergeLatency.WithLabelValues(string(idx.Kind)).Observe(time.Since(start).Seconds())
	return true, nil
}

// mergeMaxRetries bounds FailMergeJob's abandon threshold for a job that
// failed mid-merge (as opposed to one the scheduler's stuck-job loop
// reclaims, which uses the configured scheduler.job_max_retries).
const mergeMaxRetries = 4

func (w *Worker) keepAlive(ctx context.Context, jobID ids.MergeJobID) {
	ticker := time.NewTicker(w.Config.KeepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Store.KeepAlive(ctx, jobID); err != nil {
				log.Ctx(ctx).Warn("merge job keepalive failed", zap.Int64("job_id", int64(jobID)), zap.Error(err))
				return
			}
		}
	}
}

// runMerge implements §4.8 steps 3-5 for one job: download every input
// segment's blob in parallel, invoke the index kind's merger, upload the
// result, then commit the swap.
func (w *Worker) runMerge(ctx context.Context, job store.MergeJob, segIDs []ids.SegmentID, idx store.Index) error {
	segments, err := w.Store.SegmentsByIDs(ctx, segIDs)
	if err != nil {
		return err
	}
	if len(segments) != len(segIDs) {
		return nidxerrors.Newf(nidxerrors.KindValidation, "merge job %d: expected %d input segments, found %d", job.ID, len(segIDs), len(segments))
	}

	deletions, err := w.Store.AllDeletions(ctx, idx.ID)
	if err != nil {
		return err
	}
	deletes := dtrie.New()
	for _, d := range deletions {
		for _, key := range d.Keys {
			deletes.Insert([]byte(key), d.Seq)
		}
	}

	dirs, err := w.downloadAll(ctx, segments)
	for _, dir := range dirs {
		if dir != "" {
			defer os.RemoveAll(dir)
		}
	}
	if err != nil {
		return err
	}

	buildDir, err := os.MkdirTemp(w.TempDir, "nidx-merge-*")
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create merge build dir")
	}
	defer os.RemoveAll(buildDir)

	records, err := w.mergeSegments(idx.Kind, segments, dirs, deletes, buildDir)
	if err != nil {
		return err
	}

	blobBytes, sizeBytes, err := packDirectory(buildDir)
	if err != nil {
		return err
	}

	outSeq := job.Seq
	newSegID, err := w.uploadAndSwap(ctx, job, idx, outSeq, int64(records), sizeBytes, blobBytes)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Info("merged segments",
		zap.Int64("job_id", int64(job.ID)), zap.Int64("index_id", int64(idx.ID)),
		zap.Int64("new_segment_id", int64(newSegID)), zap.Int("inputs", len(segments)), zap.Int("records", records))
	return nil
}

// downloadAll fetches and unpacks every input segment's blob into its own
// temp directory, in parallel (§4.8 step 3).
func (w *Worker) downloadAll(ctx context.Context, segments []store.Segment) ([]string, error) {
	dirs := make([]string, len(segments))
	g, ctx := errgroup.WithContext(ctx)
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			data, err := w.Blob.Get(ctx, store.BlobKey(seg.ID))
			if err != nil {
				return err
			}
			files, err := codec.UnpackArchive(data)
			if err != nil {
				return nidxerrors.Wrap(nidxerrors.KindCorruption, err, "unpack segment archive")
			}
			dir, err := os.MkdirTemp(w.TempDir, "nidx-input-*")
			if err != nil {
				return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create input dir")
			}
			for name, contents := range files {
				if err := os.WriteFile(filepath.Join(dir, name), contents, 0o644); err != nil {
					return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write input file "+name)
				}
			}
			dirs[i] = dir
			return nil
		})
	}
	err := g.Wait()
	return dirs, err
}

// mergeSegments dispatches to the index kind's Merge function and writes
// the result to buildDir, returning the retained record count.
func (w *Worker) mergeSegments(kind ids.IndexKind, segments []store.Segment, dirs []string, deletes *dtrie.DTrie, buildDir string) (int, error) {
	switch kind {
	case ids.IndexKindText:
		var inputs []text.MergeInput
		for i, seg := range segments {
			s, err := text.Open(dirs[i])
			if err != nil {
				return 0, err
			}
			inputs = append(inputs, text.MergeInput{Seq: seg.Seq, Docs: s.Docs, Deletes: deletes})
		}
		merged := text.Merge(inputs)
		if err := text.Write(buildDir, merged); err != nil {
			return 0, err
		}
		return len(merged.Docs), nil

	case ids.IndexKindParagraph:
		var inputs []paragraph.MergeInput
		for i, seg := range segments {
			s, err := paragraph.Open(dirs[i])
			if err != nil {
				return 0, err
			}
			inputs = append(inputs, paragraph.MergeInput{Seq: seg.Seq, Paragraphs: s.Paragraphs, Deletes: deletes})
		}
		merged := paragraph.Merge(inputs)
		if err := paragraph.Write(buildDir, merged); err != nil {
			return 0, err
		}
		return len(merged.Paragraphs), nil

	case ids.IndexKindRelation:
		var inputs []relation.MergeInput
		for i := range segments {
			s, err := relation.Open(dirs[i])
			if err != nil {
				return 0, err
			}
			inputs = append(inputs, relation.MergeInput{Triples: s.Triples})
		}
		merged := relation.Merge(inputs)
		if err := relation.Write(buildDir, merged); err != nil {
			return 0, err
		}
		return len(merged.Triples), nil

	case ids.IndexKindVector:
		var inputs []vector.MergeInput
		var similarity vector.Similarity
		for i, seg := range segments {
			s, err := vector.Open(dirs[i])
			if err != nil {
				return 0, err
			}
			similarity = s.Journal.Similarity
			inputs = append(inputs, vector.MergeInput{Seq: seg.Seq, Records: s.Records, Deletes: deletes})
		}
		records, graph := vector.Merge(inputs, w.Config.Vector, similarity)
		fields, labels := vector.BuildFSTs(records)
		dimension := 0
		if len(records) > 0 {
			dimension = len(records[0].Vector.Dequantize())
		}
		merged := vector.Segment{
			Journal: vector.Journal{Similarity: similarity, Dimension: dimension, Count: len(records), CreatedTime: time.Now().UTC()},
			Records: records,
			Graph:   graph,
			Index:   vector.SegmentIndex{Fields: fields, Labels: labels, Records: len(records)},
		}
		if err := vector.Write(buildDir, merged); err != nil {
			return 0, err
		}
		return len(records), nil

	default:
		return 0, nidxerrors.Newf(nidxerrors.KindValidation, "unknown index kind %q", kind)
	}
}

// uploadAndSwap implements §4.8 step 5. The output segment's id is
// reserved first (a pending row, same as the indexer's §4.3 step) so its
// blob key is known before the upload; failures before the final commit
// leave only an orphan pending row and an orphan blob, both inert and
// swept up by normal operation, never a visible half-merged index.
func (w *Worker) uploadAndSwap(ctx context.Context, job store.MergeJob, idx store.Index, outSeq ids.Seq, records, sizeBytes int64, blobBytes []byte) (ids.SegmentID, error) {
	var newSegID ids.SegmentID
	err := w.Store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		newSegID, err = w.Store.CreatePendingSegment(ctx, tx, idx.ID, outSeq)
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := w.Blob.Put(ctx, store.BlobKey(newSegID), blobBytes); err != nil {
		return newSegID, err
	}

	if err := w.Store.CompleteMergeJob(ctx, job.ID, idx.ID, newSegID, records, sizeBytes, nil, int(w.Config.SegmentGracePeriod.Seconds())); err != nil {
		return newSegID, err
	}
	return newSegID, nil
}

func packDirectory(dir string) ([]byte, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, nidxerrors.Wrap(nidxerrors.KindTransient, err, "read merge build dir")
	}
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, 0, nidxerrors.Wrap(nidxerrors.KindTransient, err, "read merge output file "+e.Name())
		}
		files[e.Name()] = data
	}
	archive, err := codec.PackArchive(files)
	if err != nil {
		return nil, 0, nidxerrors.Wrap(nidxerrors.KindTransient, err, "pack merge output archive")
	}
	return archive, int64(len(archive)), nil
}
