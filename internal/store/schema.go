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

// Schema is the logical schema of SPEC_FULL.md §6.1, realized over
// Postgres via database/sql + lib/pq. Roles call EnsureSchema once at
// startup; production deployments would instead run this through a
// migration tool, but a single idempotent DDL script matches the spec's
// "specified only as a relational store" framing (the migration tool
// itself is an external collaborator, out of scope per §1).
const Schema = `
CREATE TABLE IF NOT EXISTS shards (
	id UUID PRIMARY KEY,
	kbid UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS indexes (
	id BIGSERIAL PRIMARY KEY,
	shard_id UUID NOT NULL REFERENCES shards(id),
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	config JSONB NOT NULL DEFAULT '{}',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ,
	UNIQUE (shard_id, name)
);

CREATE TABLE IF NOT EXISTS segments (
	id BIGSERIAL PRIMARY KEY,
	index_id BIGINT NOT NULL REFERENCES indexes(id),
	seq BIGINT NOT NULL,
	records BIGINT,
	size_bytes BIGINT,
	delete_at TIMESTAMPTZ,
	merge_job_id BIGINT,
	index_metadata JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS segments_index_seq_id ON segments (index_id, seq, id);

CREATE TABLE IF NOT EXISTS deletions (
	index_id BIGINT NOT NULL REFERENCES indexes(id),
	seq BIGINT NOT NULL,
	keys TEXT[] NOT NULL
);
CREATE INDEX IF NOT EXISTS deletions_index_seq ON deletions (index_id, seq);

CREATE TABLE IF NOT EXISTS merge_jobs (
	id BIGSERIAL PRIMARY KEY,
	index_id BIGINT NOT NULL REFERENCES indexes(id),
	seq BIGINT NOT NULL,
	segment_ids BIGINT[] NOT NULL,
	started_at TIMESTAMPTZ,
	running_at TIMESTAMPTZ,
	retries INT NOT NULL DEFAULT 0,
	finished_at TIMESTAMPTZ
);
`
