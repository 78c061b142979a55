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
	"encoding/json"

	"github.com/lib/pq"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// NextSeq returns the next monotonic seq for an index: one greater than
// the max seq ever assigned to a segment or deletion batch of that index
// (§3.2 — seq numbers are never reused, even across merges).
func (s *Store) NextSeq(ctx context.Context, tx *sql.Tx, indexID ids.IndexID) (ids.Seq, error) {
	var maxSeq sql.NullInt64
	row := tx.QueryRowContext(ctx, `
		SELECT max(seq) FROM (
			SELECT max(seq) AS seq FROM segments WHERE index_id = $1
			UNION ALL
			SELECT max(seq) AS seq FROM deletions WHERE index_id = $1
		) s
	`, indexID)
	if err := row.Scan(&maxSeq); err != nil {
		return 0, nidxerrors.Wrap(nidxerrors.KindTransient, err, "next seq")
	}
	return ids.Seq(maxSeq.Int64 + 1), nil
}

// CreatePendingSegment reserves a segment row before the blob is
// uploaded: records/size_bytes are nil, so Ready() is false until
// CompleteSegment fills them in (§3.2/§4.3).
func (s *Store) CreatePendingSegment(ctx context.Context, tx *sql.Tx, indexID ids.IndexID, seq ids.Seq) (ids.SegmentID, error) {
	var id int64
	row := tx.QueryRowContext(ctx,
		`INSERT INTO segments (index_id, seq) VALUES ($1, $2) RETURNING id`, indexID, seq)
	if err := row.Scan(&id); err != nil {
		return 0, nidxerrors.Wrap(nidxerrors.KindTransient, err, "create pending segment")
	}
	return ids.SegmentID(id), nil
}

// CompleteSegment marks a pending segment ready by recording its record
// count, blob size and any index-kind-specific metadata (e.g. an HNSW
// entry point). Once this commits the segment is visible to readers.
func (s *Store) CompleteSegment(ctx context.Context, tx *sql.Tx, segmentID ids.SegmentID, records, sizeBytes int64, metadata []byte) error {
	if metadata == nil {
		metadata = []byte("{}")
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE segments SET records = $2, size_bytes = $3, index_metadata = $4 WHERE id = $1`,
		segmentID, records, sizeBytes, metadata)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "complete segment")
	}
	return nil
}

// InsertDeletions records a batch of deleted keys at seq, in the same
// transaction as the segment that produced them (§4.3).
func (s *Store) InsertDeletions(ctx context.Context, tx *sql.Tx, indexID ids.IndexID, seq ids.Seq, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO deletions (index_id, seq, keys) VALUES ($1, $2, $3)`,
		indexID, seq, pq.Array(keys))
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "insert deletions")
	}
	return nil
}

// ListReadySegments returns every ready, non-tombstoned segment of an
// index ordered by (seq, id) — the order readers and mergers must
// observe per §5's consistent-visibility guarantee.
func (s *Store) ListReadySegments(ctx context.Context, indexID ids.IndexID) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, index_id, seq, records, size_bytes, delete_at, merge_job_id, index_metadata
		FROM segments
		WHERE index_id = $1 AND records IS NOT NULL AND size_bytes IS NOT NULL AND delete_at IS NULL
		ORDER BY seq, id
	`, indexID)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list ready segments")
	}
	defer rows.Close()
	return scanSegments(rows)
}

// ListDeletionsSince returns deletion batches with seq strictly greater
// than since, ordered by seq — the entries a reader must fold into its
// DTrie to mask records of older segments (§4.6).
func (s *Store) ListDeletionsSince(ctx context.Context, indexID ids.IndexID, since ids.Seq) ([]Deletion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT index_id, seq, keys FROM deletions WHERE index_id = $1 AND seq > $2 ORDER BY seq`,
		indexID, since)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list deletions")
	}
	defer rows.Close()

	var out []Deletion
	for rows.Next() {
		var d Deletion
		if err := rows.Scan(&d.IndexID, &d.Seq, pq.Array(&d.Keys)); err != nil {
			return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "scan deletion")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SegmentsByIDs returns the segment rows for ids, in arbitrary order — a
// worker's lookup of a merge job's input segments (§4.8), which names
// segments by id but not by their seq/record-count metadata.
func (s *Store) SegmentsByIDs(ctx context.Context, segmentIDs []ids.SegmentID) ([]Segment, error) {
	if len(segmentIDs) == 0 {
		return nil, nil
	}
	ids64 := make([]int64, len(segmentIDs))
	for i, id := range segmentIDs {
		ids64[i] = int64(id)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, index_id, seq, records, size_bytes, delete_at, merge_job_id, index_metadata
		FROM segments WHERE id = ANY($1)
	`, pq.Array(ids64))
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list segments by id")
	}
	defer rows.Close()
	return scanSegments(rows)
}

func scanSegments(rows *sql.Rows) ([]Segment, error) {
	var out []Segment
	for rows.Next() {
		var sg Segment
		var meta []byte
		if err := rows.Scan(&sg.ID, &sg.IndexID, &sg.Seq, &sg.Records, &sg.SizeBytes, &sg.DeleteAt, &sg.MergeJobID, &meta); err != nil {
			return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "scan segment")
		}
		sg.IndexMetadata = meta
		out = append(out, sg)
	}
	return out, rows.Err()
}

// UnmarshalIndexMetadata is a convenience for index-kind packages storing
// their own JSON shape (e.g. the vector index's HNSW entry points) in the
// segment row's index_metadata column.
func UnmarshalIndexMetadata(sg Segment, v any) error {
	if len(sg.IndexMetadata) == 0 {
		return nil
	}
	return json.Unmarshal(sg.IndexMetadata, v)
}

// TombstoneSegments marks segments as scheduled for deletion, called once
// a merge consuming them has completed (§4.8) or a shard/index has been
// removed (§4.7). grace controls how long the purge loop must wait before
// physically removing them, giving in-flight searchers time to close.
func (s *Store) TombstoneSegments(ctx context.Context, tx *sql.Tx, segmentIDs []ids.SegmentID, graceSeconds int) error {
	if len(segmentIDs) == 0 {
		return nil
	}
	ids64 := make([]int64, len(segmentIDs))
	for i, id := range segmentIDs {
		ids64[i] = int64(id)
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE segments SET delete_at = now() + make_interval(secs => $2) WHERE id = ANY($1)`,
		pq.Array(ids64), graceSeconds)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "tombstone segments")
	}
	return nil
}

// SegmentsDueForPurge returns tombstoned segments whose delete_at has
// elapsed, for the scheduler's purge loop (§4.7).
func (s *Store) SegmentsDueForPurge(ctx context.Context, limit int) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, index_id, seq, records, size_bytes, delete_at, merge_job_id, index_metadata
		FROM segments
		WHERE delete_at IS NOT NULL AND delete_at <= now()
		ORDER BY delete_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list segments due for purge")
	}
	defer rows.Close()
	return scanSegments(rows)
}

func (s *Store) DeleteSegmentRow(ctx context.Context, tx *sql.Tx, segmentID ids.SegmentID) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE id = $1`, segmentID)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "delete segment row")
	}
	return nil
}

// PruneDeletionsBefore removes deletion batches with seq below the
// watermark: once every live segment's seq is >= watermark, those
// entries can no longer hide any record a reader could see (§4.7, DTrie
// Prune in internal/dtrie).
func (s *Store) PruneDeletionsBefore(ctx context.Context, indexID ids.IndexID, watermark ids.Seq) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM deletions WHERE index_id = $1 AND seq < $2`, indexID, watermark)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "prune deletions")
	}
	return nil
}

// MinReadySeq returns the lowest seq among an index's ready segments, the
// watermark below which deletion log entries are dead weight.
func (s *Store) MinReadySeq(ctx context.Context, indexID ids.IndexID) (ids.Seq, bool, error) {
	var minSeq sql.NullInt64
	row := s.db.QueryRowContext(ctx, `
		SELECT min(seq) FROM segments
		WHERE index_id = $1 AND records IS NOT NULL AND size_bytes IS NOT NULL AND delete_at IS NULL
	`, indexID)
	if err := row.Scan(&minSeq); err != nil {
		return 0, false, nidxerrors.Wrap(nidxerrors.KindTransient, err, "min ready seq")
	}
	if !minSeq.Valid {
		return 0, false, nil
	}
	return ids.Seq(minSeq.Int64), true, nil
}
