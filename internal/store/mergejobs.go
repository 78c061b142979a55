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
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// PlanMergeJob inserts a merge job and marks the segments it covers with
// merge_job_id, so the scheduler's planner never proposes the same
// segment to two jobs at once (§4.7's tiered merge planner).
func (s *Store) PlanMergeJob(ctx context.Context, indexID ids.IndexID, seq ids.Seq, segmentIDs []ids.SegmentID) (ids.MergeJobID, error) {
	var jobID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ids64 := make([]int64, len(segmentIDs))
		for i, id := range segmentIDs {
			ids64[i] = int64(id)
		}
		row := tx.QueryRowContext(ctx,
			`INSERT INTO merge_jobs (index_id, seq, segment_ids) VALUES ($1, $2, $3) RETURNING id`,
			indexID, seq, pq.Array(ids64))
		if err := row.Scan(&jobID); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "insert merge job")
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE segments SET merge_job_id = $1 WHERE id = ANY($2) AND merge_job_id IS NULL`,
			jobID, pq.Array(ids64))
		if err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "assign merge job to segments")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "rows affected")
		}
		if int(n) != len(segmentIDs) {
			return nidxerrors.Newf(nidxerrors.KindValidation, "merge plan raced: %d of %d segments already claimed", len(segmentIDs)-int(n), len(segmentIDs))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ids.MergeJobID(jobID), nil
}

// ClaimMergeJob atomically takes ownership of one unstarted job, using
// SELECT ... FOR UPDATE SKIP LOCKED so concurrent workers never block on
// or double-claim the same row (§4.8).
func (s *Store) ClaimMergeJob(ctx context.Context) (MergeJob, []ids.SegmentID, bool, error) {
	var job MergeJob
	var segIDs64 []int64
	found := false

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, index_id, seq, segment_ids, started_at, running_at, retries, finished_at
			FROM merge_jobs
			WHERE started_at IS NULL AND finished_at IS NULL
			ORDER BY id
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		`)
		if err := row.Scan(&job.ID, &job.IndexID, &job.Seq, pq.Array(&segIDs64), &job.StartedAt, &job.RunningAt, &job.Retries, &job.FinishedAt); err != nil {
			if isNoRows(err) {
				return nil
			}
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "claim merge job: select")
		}
		found = true
		_, err := tx.ExecContext(ctx,
			`UPDATE merge_jobs SET started_at = now(), running_at = now() WHERE id = $1`, job.ID)
		if err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "claim merge job: update")
		}
		return nil
	})
	if err != nil || !found {
		return MergeJob{}, nil, false, err
	}

	segIDs := make([]ids.SegmentID, len(segIDs64))
	for i, id := range segIDs64 {
		segIDs[i] = ids.SegmentID(id)
	}
	job.SegmentIDs = segIDs
	now := time.Now()
	job.StartedAt, job.RunningAt = &now, &now
	return job, segIDs, true, nil
}

// KeepAlive refreshes running_at so the scheduler's stuck-job retry loop
// does not reclaim a job that is still actively being worked (§4.8).
func (s *Store) KeepAlive(ctx context.Context, jobID ids.MergeJobID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE merge_jobs SET running_at = now() WHERE id = $1 AND finished_at IS NULL`, jobID)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "keepalive merge job")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "keepalive rows affected")
	}
	if n == 0 {
		return nidxerrors.Wrap(nidxerrors.KindCancellation, nidxerrors.ErrJobNotClaimable, "job no longer owned")
	}
	return nil
}

// CompleteMergeJob swaps a job's input segments for its already-uploaded
// merged output (outSegmentID, reserved earlier via CreatePendingSegment
// with the job's seq so its blob key is known before upload — the same
// reserve-then-upload-then-commit order the indexer uses for §4.3) in a
// single transaction: the new segment becomes ready, the consumed
// segments are tombstoned with the configured grace period, the index's
// updated_at advances, and the job is marked finished (§4.8 step 5).
func (s *Store) CompleteMergeJob(ctx context.Context, jobID ids.MergeJobID, indexID ids.IndexID, outSegmentID ids.SegmentID, records, sizeBytes int64, metadata []byte, graceSeconds int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var segIDs64 []int64
		row := tx.QueryRowContext(ctx, `SELECT segment_ids FROM merge_jobs WHERE id = $1 FOR UPDATE`, jobID)
		if err := row.Scan(pq.Array(&segIDs64)); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "load merge job for completion")
		}

		if err := s.CompleteSegment(ctx, tx, outSegmentID, records, sizeBytes, metadata); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE segments SET delete_at = now() + make_interval(secs => $2) WHERE id = ANY($1)`,
			pq.Array(segIDs64), graceSeconds); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "tombstone merged-away segments")
		}

		if err := s.TouchIndex(ctx, tx, indexID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE merge_jobs SET finished_at = now() WHERE id = $1`, jobID); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "finish merge job")
		}
		return nil
	})
}

// FailMergeJob releases a job back to the queue (clearing started_at so
// it can be re-claimed), incrementing retries; its segments stay attached
// to the job.
// Once retries exceeds maxRetries the job is abandoned: finished_at is
// set without producing an output segment, and the input segments'
// merge_job_id is cleared so the planner may regroup them (§4.7).
func (s *Store) FailMergeJob(ctx context.Context, jobID ids.MergeJobID, maxRetries int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var retries int
		var segIDs64 []int64
		row := tx.QueryRowContext(ctx, `SELECT retries, segment_ids FROM merge_jobs WHERE id = $1 FOR UPDATE`, jobID)
		if err := row.Scan(&retries, pq.Array(&segIDs64)); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "load merge job for failure")
		}
		retries++

		if retries > maxRetries {
			if _, err := tx.ExecContext(ctx,
				`UPDATE merge_jobs SET retries = $2, finished_at = now() WHERE id = $1`, jobID, retries); err != nil {
				return nidxerrors.Wrap(nidxerrors.KindTransient, err, "abandon merge job")
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE segments SET merge_job_id = NULL WHERE id = ANY($1)`, pq.Array(segIDs64)); err != nil {
				return nidxerrors.Wrap(nidxerrors.KindTransient, err, "release abandoned segments")
			}
			return nil
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE merge_jobs SET retries = $2, started_at = NULL, running_at = NULL WHERE id = $1`,
			jobID, retries)
		if err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "requeue merge job")
		}
		return nil
	})
}

// StuckJobs returns started-but-unfinished jobs whose running_at has not
// advanced in longer than stuckAfter — the scheduler's retry loop input
// (§4.7: a worker that died mid-merge leaves its job stuck).
func (s *Store) StuckJobs(ctx context.Context, stuckAfter time.Duration) ([]ids.MergeJobID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM merge_jobs
		WHERE started_at IS NOT NULL AND finished_at IS NULL AND running_at < now() - $1::interval
	`, stuckAfter.String())
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list stuck merge jobs")
	}
	defer rows.Close()
	var out []ids.MergeJobID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, ids.MergeJobID(id))
	}
	return out, rows.Err()
}

// SegmentsWithoutPendingMerge returns an index's ready segments that are
// not already claimed by a merge job, the candidate pool for the tiered
// merge planner (§4.7).
func (s *Store) SegmentsWithoutPendingMerge(ctx context.Context, indexID ids.IndexID) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, index_id, seq, records, size_bytes, delete_at, merge_job_id, index_metadata
		FROM segments
		WHERE index_id = $1 AND records IS NOT NULL AND size_bytes IS NOT NULL
		  AND delete_at IS NULL AND merge_job_id IS NULL
		ORDER BY seq, id
	`, indexID)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list unmerged segments")
	}
	defer rows.Close()
	return scanSegments(rows)
}
