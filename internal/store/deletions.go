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

	"github.com/lib/pq"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// AllDeletions returns the complete deletion log of an index, ordered by
// seq, for a reader building a fresh DTrie from scratch (e.g. a cold
// searcher cache load — §4.6, §4.9).
func (s *Store) AllDeletions(ctx context.Context, indexID ids.IndexID) ([]Deletion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT index_id, seq, keys FROM deletions WHERE index_id = $1 ORDER BY seq`, indexID)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "list all deletions")
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

// MaxDeletionSeq reports the highest seq present in the deletion log, or
// false if empty.
func (s *Store) MaxDeletionSeq(ctx context.Context, indexID ids.IndexID) (ids.Seq, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT max(seq) FROM deletions WHERE index_id = $1`, indexID)
	var scanned *int64
	if err := row.Scan(&scanned); err != nil {
		return 0, false, nidxerrors.Wrap(nidxerrors.KindTransient, err, "max deletion seq")
	}
	if scanned == nil {
		return 0, false, nil
	}
	return ids.Seq(*scanned), true, nil
}
