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

// Package scheduler implements the scheduler role of SPEC_FULL.md §4.7:
// four independent periodic loops over the metadata store — retry stuck
// merge jobs, purge tombstoned segments (and the shards/indexes left
// empty behind them), prune obsolete deletion rows, and plan new merge
// jobs per index. Grounded on the teacher's internal/datacoord/compaction.go
// ticker-driven loop shape (one goroutine per concern, each with its own
// interval, all stopped via a shared context).
package scheduler

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nidxlabs/nidx/internal/blob"
	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/log"
	"github.com/nidxlabs/nidx/internal/metrics"
	"github.com/nidxlabs/nidx/internal/segment/vector"
	"github.com/nidxlabs/nidx/internal/store"
)

// Config are the tunables of §4.7/§6.5, sourced from internal/config's
// scheduler.* and merge.* keys.
type Config struct {
	RetryJobsInterval      time.Duration
	PurgeSegmentsInterval  time.Duration
	PurgeDeletionsInterval time.Duration
	ScheduleMergesInterval time.Duration

	JobStuckAfter time.Duration
	JobMaxRetries int

	// OldestUnprocessedSeq reports the consumer's ack floor + 1 (§6.5), the
	// watermark below which segments are safe to merge away and deletion
	// rows are safe to prune. Supplied as a callback since it comes from
	// the ingest stream's consumer position, not the metadata store.
	OldestUnprocessedSeq func(ctx context.Context, indexID ids.IndexID) (ids.Seq, error)

	Merge vector.PlannerParams
}

type Scheduler struct {
	Store  *store.Store
	Blob   blob.Store
	Config Config
}

// Run starts all four loops and blocks until ctx is cancelled or one loop
// returns a non-recoverable error. Each loop logs and continues past
// per-cycle errors (§5: "all loops are individually crash-safe because
// all persistent state lives in the metadata store").
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.loop(ctx, s.Config.RetryJobsInterval, s.retryStuckJobs) })
	g.Go(func() error { return s.loop(ctx, s.Config.PurgeSegmentsInterval, s.purgeSegments) })
	g.Go(func() error { return s.loop(ctx, s.Config.PurgeDeletionsInterval, s.pruneDeletions) })
	g.Go(func() error { return s.loop(ctx, s.Config.ScheduleMergesInterval, s.scheduleMerges) })
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, cycle func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := cycle(ctx); err != nil {
				log.Ctx(ctx).Warn("scheduler cycle failed", zap.Error(err))
			}
		}
	}
}

// retryStuckJobs implements §4.7 point 1: a job whose running_at has not
// advanced in JobStuckAfter is either requeued (retries < max) or
// abandoned (retries >= max), both handled atomically by FailMergeJob.
func (s *Scheduler) retryStuckJobs(ctx context.Context) error {
	stuck, err := s.Store.StuckJobs(ctx, s.Config.JobStuckAfter)
	if err != nil {
		return err
	}
	for _, jobID := range stuck {
		if err := s.Store.FailMergeJob(ctx, jobID, s.Config.JobMaxRetries); err != nil {
			log.Ctx(ctx).Warn("failed to retry stuck merge job", zap.Int64("job_id", int64(jobID)), zap.Error(err))
			continue
		}
		log.Ctx(ctx).Info("reclaimed stuck merge job", zap.Int64("job_id", int64(jobID)))
	}
	return nil
}

// purgeSegments implements §4.7 point 2: delete blobs for tombstoned
// segments (ignoring NotFound, which blob.Store.Delete already does),
// then the row, then cascades to indexes/shards left fully empty behind
// them.
func (s *Scheduler) purgeSegments(ctx context.Context) error {
	segs, err := s.Store.SegmentsDueForPurge(ctx, 1000)
	if err != nil {
		return err
	}
	purged := 0
	for _, seg := range segs {
		if err := s.Blob.Delete(ctx, store.BlobKey(seg.ID)); err != nil {
			log.Ctx(ctx).Warn("failed to delete segment blob, leaving row for retry",
				zap.Int64("segment_id", int64(seg.ID)), zap.Error(err))
			continue
		}
		err := s.Store.WithTx(ctx, func(tx *sql.Tx) error {
			return s.Store.DeleteSegmentRow(ctx, tx, seg.ID)
		})
		if err != nil {
			log.Ctx(ctx).Warn("failed to delete segment row after blob delete",
				zap.Int64("segment_id", int64(seg.ID)), zap.Error(err))
			continue
		}
		purged++
	}
	if purged > 0 {
		metrics.SchedulerSegmentsPurged.WithLabelValues().Add(float64(purged))
	}
	return s.purgeEmptiedShardsAndIndexes(ctx)
}

func (s *Scheduler) purgeEmptiedShardsAndIndexes(ctx context.Context) error {
	shards, err := s.Store.TombstonedShards(ctx)
	if err != nil {
		return err
	}
	for _, shardID := range shards {
		emptied, err := s.Store.IndexesWithAllSegmentsGone(ctx, shardID)
		if err != nil {
			log.Ctx(ctx).Warn("failed to list emptied indexes", zap.Error(err))
			continue
		}
		for _, indexID := range emptied {
			if err := s.Store.DeleteIndex(ctx, indexID); err != nil {
				log.Ctx(ctx).Warn("failed to delete emptied index", zap.Int64("index_id", int64(indexID)), zap.Error(err))
			}
		}

		done, err := s.Store.ShardDeleted(ctx, shardID)
		if err != nil {
			log.Ctx(ctx).Warn("failed to check shard cascade", zap.Error(err))
			continue
		}
		if done {
			if err := s.Store.DeleteShard(ctx, shardID); err != nil {
				log.Ctx(ctx).Warn("failed to delete emptied shard", zap.Error(err))
			}
		}
	}
	return nil
}

// pruneDeletions implements §4.7 point 3: a deletion row is obsolete once
// every segment it could apply to either no longer exists below that seq
// or has already been read past it, bounded by the oldest sequence the
// producer stream has not finished delivering.
func (s *Scheduler) pruneDeletions(ctx context.Context) error {
	indexes, err := s.Store.ListAllIndexes(ctx)
	if err != nil {
		return err
	}
	for _, idx := range indexes {
		minSeq, ok, err := s.Store.MinReadySeq(ctx, idx.ID)
		if err != nil {
			log.Ctx(ctx).Warn("failed to compute min ready seq", zap.Int64("index_id", int64(idx.ID)), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		watermark := minSeq
		if s.Config.OldestUnprocessedSeq != nil {
			oldest, err := s.Config.OldestUnprocessedSeq(ctx, idx.ID)
			if err != nil {
				log.Ctx(ctx).Warn("failed to read oldest unprocessed seq", zap.Error(err))
				continue
			}
			if oldest < watermark {
				watermark = oldest
			}
		}
		if err := s.Store.PruneDeletionsBefore(ctx, idx.ID, watermark); err != nil {
			log.Ctx(ctx).Warn("failed to prune deletions", zap.Int64("index_id", int64(idx.ID)), zap.Error(err))
		}
	}
	return nil
}

// scheduleMerges implements §4.7 point 4: for every index, gather ready
// segments not already claimed by a merge job and below the
// oldest-unprocessed watermark, run the tiered planner of §4.4.7 (reused
// verbatim for every index kind — it only operates on record counts, so
// it realizes "length-based coalescing" for non-vector kinds exactly as
// it realizes the vector planner), and atomically claim each proposed
// group as a merge job.
func (s *Scheduler) scheduleMerges(ctx context.Context) error {
	indexes, err := s.Store.ListAllIndexes(ctx)
	if err != nil {
		return err
	}
	for _, idx := range indexes {
		if err := s.scheduleMergesForIndex(ctx, idx); err != nil {
			log.Ctx(ctx).Warn("failed to schedule merges for index", zap.Int64("index_id", int64(idx.ID)), zap.Error(err))
		}
	}
	return nil
}

func (s *Scheduler) scheduleMergesForIndex(ctx context.Context, idx store.Index) error {
	segs, err := s.Store.SegmentsWithoutPendingMerge(ctx, idx.ID)
	if err != nil {
		return err
	}
	if len(segs) < 2 {
		return nil
	}

	var oldest ids.Seq = 1<<63 - 1
	if s.Config.OldestUnprocessedSeq != nil {
		oldest, err = s.Config.OldestUnprocessedSeq(ctx, idx.ID)
		if err != nil {
			return err
		}
	}

	candidates := segmentsBelowWatermark(segs, oldest)
	if len(candidates) < 2 {
		return nil
	}

	inputs := make([]vector.PlannerInput, len(candidates))
	for i, seg := range candidates {
		inputs[i] = vector.PlannerInput{Index: i, Records: int(*seg.Records)}
	}
	// §4.4.7 expects largest-first input; SegmentsWithoutPendingMerge is
	// ordered by seq, so sort a local copy before planning.
	sortPlannerInputsDesc(inputs)

	groups := vector.Plan(inputs, s.Config.Merge)
	for _, group := range groups {
		segIDs := make([]ids.SegmentID, len(group.Indexes))
		maxSeq := ids.Seq(0)
		for i, idx2 := range group.Indexes {
			segIDs[i] = candidates[idx2].ID
			if candidates[idx2].Seq > maxSeq {
				maxSeq = candidates[idx2].Seq
			}
		}
		if _, err := s.Store.PlanMergeJob(ctx, idx.ID, maxSeq, segIDs); err != nil {
			log.Ctx(ctx).Warn("failed to plan merge job", zap.Int64("index_id", int64(idx.ID)), zap.Error(err))
			continue
		}
		metrics.SchedulerMergeJobsPlanned.WithLabelValues(string(idx.Kind)).Inc()
	}
	return nil
}

func sortPlannerInputsDesc(inputs []vector.PlannerInput) {
	for i := 1; i < len(inputs); i++ {
		for j := i; j > 0 && inputs[j].Records > inputs[j-1].Records; j-- {
			inputs[j], inputs[j-1] = inputs[j-1], inputs[j]
		}
	}
}
