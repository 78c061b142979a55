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

func (s *Store) CreateShard(ctx context.Context, shardID, kbID ids.ShardID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shards (id, kbid) VALUES ($1, $2)`, shardID, kbID)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create shard")
	}
	return nil
}

func (s *Store) GetShard(ctx context.Context, shardID ids.ShardID) (Shard, error) {
	var sh Shard
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kbid, created_at, deleted_at FROM shards WHERE id = $1`, shardID)
	if err := row.Scan(&sh.ID, &sh.KBID, &sh.CreatedAt, &sh.DeletedAt); err != nil {
		if isNoRows(err) {
			return Shard{}, nidxerrors.ErrShardNotFound
		}
		return Shard{}, nidxerrors.Wrap(nidxerrors.KindTransient, err, "get shard")
	}
	return sh, nil
}

// TombstoneShard marks a shard and, per §3.2, recursively its indexes
// deleted. Segments are left for the scheduler's purge loop, which cascades
// once no merge job references them.
func (s *Store) TombstoneShard(ctx context.Context, shardID ids.ShardID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE shards SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, shardID); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "tombstone shard")
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE indexes SET deleted_at = now() WHERE shard_id = $1 AND deleted_at IS NULL`, shardID); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "tombstone shard indexes")
		}
		return nil
	})
}

// TombstonedShards returns every shard already marked deleted_at, the
// purger's candidate pool for the cascade-delete rule of §4.7 (a
// tombstoned shard whose indexes and segments have all been removed is
// safe to drop outright).
func (s *Store) TombstonedShards(ctx context.Context) ([]ids.ShardID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM shards WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list tombstoned shards")
	}
	defer rows.Close()
	var out []ids.ShardID
	for rows.Next() {
		var id ids.ShardID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ShardDeleted reports whether every one of the shard's index rows has
// already been removed (segment rows go with their index), i.e. it is
// safe for the purger to delete the shard row itself (§4.7's cascade
// rule). It does not check the shard's own tombstone.
func (s *Store) ShardDeleted(ctx context.Context, shardID ids.ShardID) (bool, error) {
	var remaining int
	row := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM indexes i
		WHERE i.shard_id = $1
	`, shardID)
	if err := row.Scan(&remaining); err != nil {
		return false, nidxerrors.Wrap(nidxerrors.KindTransient, err, "count shard indexes")
	}
	return remaining == 0, nil
}

// DeleteShard removes a shard row once ShardDeleted reports true.
func (s *Store) DeleteShard(ctx context.Context, shardID ids.ShardID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shards WHERE id = $1 AND deleted_at IS NOT NULL`, shardID)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "delete shard")
	}
	return nil
}
