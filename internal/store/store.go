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

// Package store implements the relational metadata store of
// SPEC_FULL.md §3.4/§6.1 over database/sql + github.com/lib/pq, grounded
// on other_examples/22a5e299_snappyloop-stories__internal-database-segment_repository.go
// (parameterized $N queries, ExecContext, RowsAffected checks).
package store

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "open metadata store")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema applies the idempotent DDL of schema.go.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "ensure schema")
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Exported so callers that need several of this
// package's tx-taking methods to commit atomically (e.g. the indexer's
// §4.3 step 6: segment + deletion rows in one commit) can compose them.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.withTx(ctx, fn)
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "commit transaction")
	}
	return nil
}

func isNoRows(err error) bool { return err == sql.ErrNoRows }
