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

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// CreateIndex inserts a new index row. kind=vector may be created many
// times per shard (vectorsets, §3.2); the default vectorset is created
// once, at shard-creation time, by the caller and is never removed.
func (s *Store) CreateIndex(ctx context.Context, shardID ids.ShardID, kind ids.IndexKind, name string, config []byte) (ids.IndexID, error) {
	var id int64
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO indexes (shard_id, kind, name, config) VALUES ($1, $2, $3, $4) RETURNING id`,
		shardID, kind, name, config)
	if err := row.Scan(&id); err != nil {
		return 0, nidxerrors.Wrap(nidxerrors.KindTransient, err, "create index")
	}
	return ids.IndexID(id), nil
}

func (s *Store) GetIndex(ctx context.Context, indexID ids.IndexID) (Index, error) {
	var idx Index
	row := s.db.QueryRowContext(ctx,
		`SELECT id, shard_id, kind, name, config, updated_at, deleted_at FROM indexes WHERE id = $1`, indexID)
	if err := row.Scan(&idx.ID, &idx.ShardID, &idx.Kind, &idx.Name, &idx.Config, &idx.UpdatedAt, &idx.DeletedAt); err != nil {
		if isNoRows(err) {
			return Index{}, nidxerrors.ErrIndexNotFound
		}
		return Index{}, nidxerrors.Wrap(nidxerrors.KindTransient, err, "get index")
	}
	return idx, nil
}

func (s *Store) ListIndexesForShard(ctx context.Context, shardID ids.ShardID) ([]Index, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, shard_id, kind, name, config, updated_at, deleted_at FROM indexes WHERE shard_id = $1 AND deleted_at IS NULL`,
		shardID)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list indexes")
	}
	defer rows.Close()

	var out []Index
	for rows.Next() {
		var idx Index
		if err := rows.Scan(&idx.ID, &idx.ShardID, &idx.Kind, &idx.Name, &idx.Config, &idx.UpdatedAt, &idx.DeletedAt); err != nil {
			return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "scan index")
		}
		out = append(out, idx)
	}
	return out, rows.Err()
}

// ListAllIndexes returns every non-deleted index across every shard, the
// scheduler's iteration set for the per-index loops of §4.7 (merge
// planning, deletion pruning) that are not scoped to one shard.
func (s *Store) ListAllIndexes(ctx context.Context) ([]Index, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, shard_id, kind, name, config, updated_at, deleted_at FROM indexes WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list all indexes")
	}
	defer rows.Close()

	var out []Index
	for rows.Next() {
		var idx Index
		if err := rows.Scan(&idx.ID, &idx.ShardID, &idx.Kind, &idx.Name, &idx.Config, &idx.UpdatedAt, &idx.DeletedAt); err != nil {
			return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "scan index")
		}
		out = append(out, idx)
	}
	return out, rows.Err()
}

func (s *Store) TouchIndex(ctx context.Context, tx *sql.Tx, indexID ids.IndexID) error {
	_, err := tx.ExecContext(ctx, `UPDATE indexes SET updated_at = now() WHERE id = $1`, indexID)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "touch index")
	}
	return nil
}

// IndexesWithAllSegmentsGone are tombstoned indexes with zero remaining
// segment rows, safe for the purger to delete outright (§4.7 cascade).
func (s *Store) IndexesWithAllSegmentsGone(ctx context.Context, shardID ids.ShardID) ([]ids.IndexID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id FROM indexes i
		WHERE i.shard_id = $1 AND i.deleted_at IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM segments sg WHERE sg.index_id = i.id)
	`, shardID)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list emptied indexes")
	}
	defer rows.Close()
	var out []ids.IndexID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, ids.IndexID(id))
	}
	return out, rows.Err()
}

func (s *Store) DeleteIndex(ctx context.Context, indexID ids.IndexID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM indexes WHERE id = $1`, indexID)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "delete index")
	}
	return nil
}
