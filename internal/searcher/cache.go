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

// Package searcher implements the searcher role of SPEC_FULL.md §4.5,
// §4.6 and §4.9: a per-process cache of opened index readers plus the
// hybrid keyword+fuzzy+vector+relation query planner that runs the
// cross-index filter expression of §4.6 uniformly across every result
// stream. Grounded on the teacher's internal/querynode/shard_cluster.go
// and segment_loader.go (a mutex-guarded map of reference-counted,
// lazily-loaded segment handles), generalized from collection/segment
// loading to nidx's index-kind readers.
package searcher

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/metrics"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// Cache implements §4.9's access protocol: one IndexReader per index id,
// reference-counted so a reload or delete never invalidates a handle a
// caller already holds.
type Cache struct {
	DeletePoll time.Duration // sleep between strong-count polls on Delete; defaults to 50ms

	mu      sync.Mutex
	entries map[ids.IndexID]*cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[ids.IndexID]*cacheEntry)}
}

type cacheEntry struct {
	mu      sync.Mutex
	cond    *sync.Cond
	current *IndexReader
	loading bool
	blocked bool
}

func (c *Cache) entryFor(id ids.IndexID) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		e = &cacheEntry{}
		e.cond = sync.NewCond(&e.mu)
		c.entries[id] = e
	}
	return e
}

// Handle is a borrowed, reference-counted IndexReader. Release must be
// called exactly once.
type Handle struct {
	Reader  *IndexReader
	release func()
}

func (h *Handle) Release() { h.release() }

// Acquire returns a strong reference to indexID's reader. If the cached
// reader's segment set (its generation) matches freshSegmentIDs, the
// cached reader is reused with no I/O (§4.9 step 2). Otherwise exactly
// one concurrent caller invokes load to build a fresh reader while the
// rest wait on the entry's condition variable and re-check (§4.9 step
// 3); the superseded reader is marked stale and torn down once its last
// holder releases it, so in-flight queries on the old generation are
// never disrupted by a reload.
func (c *Cache) Acquire(ctx context.Context, indexID ids.IndexID, freshSegmentIDs []ids.SegmentID, load func(context.Context) (*IndexReader, error)) (*Handle, error) {
	e := c.entryFor(indexID)
	e.mu.Lock()
	for {
		if e.blocked {
			e.mu.Unlock()
			return nil, nidxerrors.ErrIndexNotFound
		}
		if e.current != nil && sameGeneration(e.current.SegmentIDs, freshSegmentIDs) {
			r := e.current
			e.mu.Unlock()
			r.acquire()
			return &Handle{Reader: r, release: r.release}, nil
		}
		if !e.loading {
			break
		}
		e.cond.Wait()
	}
	e.loading = true
	e.mu.Unlock()

	newReader, err := load(ctx)

	e.mu.Lock()
	e.loading = false
	if err != nil {
		e.cond.Broadcast()
		e.mu.Unlock()
		return nil, err
	}
	old := e.current
	e.current = newReader
	e.mu.Unlock()
	e.cond.Broadcast()

	if old != nil {
		old.markStale()
	}
	newReader.acquire()
	metrics.SearcherCacheOpenSegments.WithLabelValues().Add(float64(len(newReader.SegmentIDs)))
	return &Handle{Reader: newReader, release: newReader.release}, nil
}

// Delete implements §4.9's delete protocol: mark the entry blocked so no
// new Acquire succeeds, then poll until every strong reference has been
// released, then remove the reader's local files and drop the entry.
func (c *Cache) Delete(ctx context.Context, indexID ids.IndexID) error {
	e := c.entryFor(indexID)
	e.mu.Lock()
	e.blocked = true
	current := e.current
	e.current = nil
	e.mu.Unlock()
	e.cond.Broadcast()

	if current != nil {
		poll := c.DeletePoll
		if poll <= 0 {
			poll = 50 * time.Millisecond
		}
		for atomic.LoadInt32(&current.refCount) > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(poll):
			}
		}
		current.Close()
		metrics.SearcherCacheOpenSegments.WithLabelValues().Sub(float64(len(current.SegmentIDs)))
	}

	c.mu.Lock()
	delete(c.entries, indexID)
	c.mu.Unlock()
	return nil
}

func sameGeneration(a, b []ids.SegmentID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IndexReader is one index's opened, queryable segments, downloaded and
// unpacked into localDir (removed entirely on Close). SegmentIDs is kept
// sorted by (seq, id) — both the reader's generation fingerprint and the
// order §5 requires results to be assembled in.
type IndexReader struct {
	IndexID    ids.IndexID
	Kind       ids.IndexKind
	SegmentIDs []ids.SegmentID
	localDir   string

	Text      []TextSegment
	Paragraph []ParagraphSegment
	Relation  []RelationSegment
	Vector    []VectorSegment

	refCount int32
	stale    int32
}

func (r *IndexReader) acquire() { atomic.AddInt32(&r.refCount, 1) }

func (r *IndexReader) release() {
	if atomic.AddInt32(&r.refCount, -1) == 0 && atomic.LoadInt32(&r.stale) == 1 {
		r.Close()
	}
}

func (r *IndexReader) markStale() {
	atomic.StoreInt32(&r.stale, 1)
	if atomic.LoadInt32(&r.refCount) == 0 {
		r.Close()
	}
}

// Close removes the reader's local segment directories. Safe to call
// more than once.
func (r *IndexReader) Close() {
	if r.localDir != "" {
		_ = os.RemoveAll(r.localDir)
	}
}
