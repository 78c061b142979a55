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

// Package shard implements the per-process shard metadata manager of
// SPEC_FULL.md §4.2, grounded on the mutex-guarded in-memory map pattern
// of _examples/yanliang567-milvus/internal/querynode/collection.go
// (Collection cache keyed by id, guarded by a RWMutex, refreshed via
// small setter/getter pairs that log at debug level).
package shard

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/log"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// DefaultVectorset is reserved: every shard is created with it and it
// can never be removed (§4.2).
const DefaultVectorset = ids.DefaultVectorset

// Metadata is the JSON document persisted at <shard dir>/metadata.json.
type Metadata struct {
	KBID    ids.ShardID `json:"kbid"`
	ID      ids.ShardID `json:"id"`
	Channel string      `json:"channel"`
}

// VectorsetEntry maps a vectorset name to its relative directory name,
// recorded in indexes.json.
type VectorsetEntry struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

type indexesFile struct {
	Vectorsets []VectorsetEntry `json:"vectorsets"`
}

// Manager keeps a per-process shard_id -> Metadata cache, mirroring what
// is on disk. Every write bumps generation_id so searchers holding a
// stale generation know to reopen the shard (§4.9, §5 "Reload").
type Manager struct {
	baseDir string

	mu    sync.RWMutex
	cache map[ids.ShardID]*entry
}

type entry struct {
	meta         Metadata
	generationID int64
	vectorsets   []VectorsetEntry
}

func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir, cache: make(map[ids.ShardID]*entry)}
}

func (m *Manager) shardDir(id ids.ShardID) string {
	return filepath.Join(m.baseDir, id.String())
}

// Create writes a new shard directory with its metadata.json,
// generation_id and indexes.json (seeded with only the default
// vectorset), and populates the in-memory cache.
func (m *Manager) Create(ctx context.Context, shardID, kbID ids.ShardID, channel string) error {
	dir := m.shardDir(shardID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create shard directory")
	}

	meta := Metadata{KBID: kbID, ID: shardID, Channel: channel}
	idx := indexesFile{Vectorsets: []VectorsetEntry{{Name: DefaultVectorset, Dir: DefaultVectorset}}}

	m.mu.Lock()
	defer m.mu.Unlock()
	e := &entry{meta: meta, vectorsets: idx.Vectorsets}
	if err := m.persistLocked(dir, e); err != nil {
		return err
	}
	m.cache[shardID] = e
	log.Ctx(ctx).Debug("created shard", zap.Stringer("shard", shardID))
	return nil
}

// Open loads a shard's metadata from disk into the cache, for process
// startup or after a generation_id mismatch forces a reopen.
func (m *Manager) Open(ctx context.Context, shardID ids.ShardID) (Metadata, error) {
	dir := m.shardDir(shardID)

	metaBytes, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, nidxerrors.ErrShardNotFound
		}
		return Metadata{}, nidxerrors.Wrap(nidxerrors.KindTransient, err, "read shard metadata")
	}
	var meta Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return Metadata{}, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "parse shard metadata")
	}

	gen, err := readGeneration(dir)
	if err != nil {
		return Metadata{}, err
	}

	idxBytes, err := os.ReadFile(filepath.Join(dir, "indexes.json"))
	var idx indexesFile
	if err == nil {
		if jerr := json.Unmarshal(idxBytes, &idx); jerr != nil {
			return Metadata{}, nidxerrors.Wrap(nidxerrors.KindCorruption, jerr, "parse indexes.json")
		}
	} else if !os.IsNotExist(err) {
		return Metadata{}, nidxerrors.Wrap(nidxerrors.KindTransient, err, "read indexes.json")
	}

	m.mu.Lock()
	m.cache[shardID] = &entry{meta: meta, generationID: gen, vectorsets: idx.Vectorsets}
	m.mu.Unlock()

	log.Ctx(ctx).Debug("opened shard", zap.Stringer("shard", shardID), zap.Int64("generation", gen))
	return meta, nil
}

// Generation returns the cached generation_id for a shard, or false if
// the shard is not in the cache yet.
func (m *Manager) Generation(shardID ids.ShardID) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.cache[shardID]
	if !ok {
		return 0, false
	}
	return e.generationID, true
}

// NeedsReload reports whether diskGen (freshly read from the
// generation_id file) differs from the cached generation — the
// condition a searcher checks before reopening a shard (§5).
func (m *Manager) NeedsReload(shardID ids.ShardID, diskGen int64) bool {
	cached, ok := m.Generation(shardID)
	return !ok || cached != diskGen
}

// AddVectorset registers a new named vector index directory, rejecting
// duplicates and refreshing generation_id.
func (m *Manager) AddVectorset(ctx context.Context, shardID ids.ShardID, name, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cache[shardID]
	if !ok {
		return nidxerrors.ErrShardNotFound
	}
	for _, v := range e.vectorsets {
		if v.Name == name {
			return nidxerrors.Newf(nidxerrors.KindValidation, "vectorset %q already exists", name)
		}
	}
	e.vectorsets = append(e.vectorsets, VectorsetEntry{Name: name, Dir: dir})
	if err := m.persistLocked(m.shardDir(shardID), e); err != nil {
		return err
	}
	log.Ctx(ctx).Info("added vectorset", zap.Stringer("shard", shardID), zap.String("vectorset", name))
	return nil
}

// RemoveVectorset deletes a named vector index's registry entry. The
// default vectorset can never be removed (§4.2).
func (m *Manager) RemoveVectorset(ctx context.Context, shardID ids.ShardID, name string) error {
	if name == DefaultVectorset {
		return nidxerrors.New(nidxerrors.KindValidation, "the default vectorset cannot be removed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cache[shardID]
	if !ok {
		return nidxerrors.ErrShardNotFound
	}
	out := e.vectorsets[:0]
	removed := false
	for _, v := range e.vectorsets {
		if v.Name == name {
			removed = true
			continue
		}
		out = append(out, v)
	}
	if !removed {
		return nidxerrors.Newf(nidxerrors.KindNotFound, "vectorset %q not found", name)
	}
	e.vectorsets = out
	if err := m.persistLocked(m.shardDir(shardID), e); err != nil {
		return err
	}
	log.Ctx(ctx).Info("removed vectorset", zap.Stringer("shard", shardID), zap.String("vectorset", name))
	return nil
}

func (m *Manager) Vectorsets(shardID ids.ShardID) ([]VectorsetEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.cache[shardID]
	if !ok {
		return nil, nidxerrors.ErrShardNotFound
	}
	out := make([]VectorsetEntry, len(e.vectorsets))
	copy(out, e.vectorsets)
	return out, nil
}

// Evict drops a shard from the in-memory cache without touching disk,
// called once the scheduler's purge loop has removed the shard's rows.
func (m *Manager) Evict(shardID ids.ShardID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, shardID)
}

// persistLocked must be called with m.mu held. It writes metadata.json,
// indexes.json and bumps generation_id, all under the same lock so a
// concurrent reader never observes a generation bump without the data
// it describes.
func (m *Manager) persistLocked(dir string, e *entry) error {
	metaBytes, err := json.Marshal(e.meta)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindValidation, err, "marshal shard metadata")
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), metaBytes, 0o644); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write shard metadata")
	}

	idxBytes, err := json.Marshal(indexesFile{Vectorsets: e.vectorsets})
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindValidation, err, "marshal indexes.json")
	}
	if err := os.WriteFile(filepath.Join(dir, "indexes.json"), idxBytes, 0o644); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write indexes.json")
	}

	e.generationID++
	genBytes := []byte(strconv.FormatInt(e.generationID, 10))
	if err := os.WriteFile(filepath.Join(dir, "generation_id"), genBytes, 0o644); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write generation_id")
	}
	return nil
}

func readGeneration(dir string) (int64, error) {
	b, err := os.ReadFile(filepath.Join(dir, "generation_id"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, nidxerrors.Wrap(nidxerrors.KindTransient, err, "read generation_id")
	}
	gen, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "parse generation_id")
	}
	return gen, nil
}
