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

package searcher

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nidxlabs/nidx/internal/blob"
	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/metrics"
	"github.com/nidxlabs/nidx/internal/query"
	"github.com/nidxlabs/nidx/internal/segment/paragraph"
	"github.com/nidxlabs/nidx/internal/segment/relation"
	"github.com/nidxlabs/nidx/internal/segment/text"
	"github.com/nidxlabs/nidx/internal/segment/vector"
	"github.com/nidxlabs/nidx/internal/store"
)

// TimestampFilter bounds a search by created/modified range, both ends
// optional (§6.4).
type TimestampFilter struct {
	FromCreated, ToCreated   *int64
	FromModified, ToModified *int64
}

// Request is the core search surface of §6.4.
type Request struct {
	Shard           ids.ShardID
	Body            string
	Fields          []string
	KeyFilters      []string
	FilterExpr      *query.Expr
	Timestamps      *TimestampFilter
	AccessGroups    []string
	Vector          []float32
	Vectorset       string
	MinScoreVector  float32
	MinScoreBM25    float64
	PageNumber      int
	ResultPerPage   int
	Document        bool
	Paragraph       bool
	Relations       bool
	WithDuplicates  bool
}

type DocumentHit struct {
	ResourceID string
	Field      string
	Score      float64
}

type ParagraphHit struct {
	ResourceID string
	Field      string
	Text       string
	Start, End int
	Score      float64
}

type VectorHit struct {
	Key   string
	Score float32
}

type RelationHit struct {
	Source, Target relation.Entity
	Relationship   string
}

// Response bundles per-requested-section results (§6.4).
type Response struct {
	Documents  []DocumentHit
	Paragraphs []ParagraphHit
	Vectors    []VectorHit
	Relations  []RelationHit
	Page       int
	PerPage    int
}

// Searcher runs Search against the shard's currently-ready segments,
// caching opened readers per index (§4.9).
type Searcher struct {
	Store    *store.Store
	Blob     blob.Store
	Cache    *Cache
	LocalDir string

	// MaxConcurrentSegmentLoads bounds OpenReader's parallel blob fetches
	// (§5); zero uses defaultMaxConcurrentSegmentLoads.
	MaxConcurrentSegmentLoads int
	// MaxConcurrentStreams bounds how many of the document/paragraph/
	// vector/relation result streams a single Search call evaluates at
	// once (§5's bounded worker pool for "search handlers"); zero means
	// unbounded (all requested streams run concurrently).
	MaxConcurrentStreams int64
}

// Search implements §4.5/§4.6: build the cross-index filter, evaluate it
// uniformly against every requested result stream, and paginate.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	indexes, err := s.Store.ListIndexesForShard(ctx, req.Shard)
	if err != nil {
		return nil, err
	}
	byKind := make(map[ids.IndexKind]store.Index, len(indexes))
	for _, idx := range indexes {
		byKind[idx.Kind] = idx
	}

	// The text index is opened whenever present regardless of
	// req.Document: it is the source of the field-level prefilter
	// (§4.6 pass 2) and of the resource security/timestamp facts every
	// other stream's results are checked against uniformly.
	var textReader *Handle
	if idx, ok := byKind[ids.IndexKindText]; ok {
		textReader, err = s.acquire(ctx, idx)
		if err != nil {
			return nil, err
		}
		defer textReader.Release()
	}

	expr := buildExpr(req)
	nnf := query.ToNNF(expr)
	prefilter, inPara := query.Split(nnf)

	var facts resourceFactsIndex
	hasTextIndex := textReader != nil
	var fieldKeys []string
	if hasTextIndex {
		facts = collectResourceFacts(textReader.Reader.Text)
		for _, ts := range textReader.Reader.Text {
			set := evalTextPrefilter(prefilter, req.AccessGroups, ts.Seg)
			fieldKeys = append(fieldKeys, fieldKeysOf(ts.Seg, set)...)
		}
	}

	resp := &Response{Page: req.PageNumber, PerPage: req.ResultPerPage}

	// Each requested result stream is independent of the others once the
	// shared prefilter/facts above are built, so they run concurrently
	// bounded by a semaphore (§5's "blocking-pool dispatch ... for search
	// handlers") rather than one after another.
	streamSem := newStreamSemaphore(s.MaxConcurrentStreams)
	g, gctx := errgroup.WithContext(ctx)

	if req.Document && hasTextIndex {
		g.Go(func() error {
			if err := streamSem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer streamSem.Release(1)
			resp.Documents = s.searchText(textReader.Reader.Text, req, prefilter)
			return nil
		})
	}

	if req.Paragraph {
		if idx, ok := byKind[ids.IndexKindParagraph]; ok {
			g.Go(func() error {
				if err := streamSem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer streamSem.Release(1)
				h, err := s.acquire(gctx, idx)
				if err != nil {
					return err
				}
				defer h.Release()
				resp.Paragraphs = s.searchParagraph(h.Reader.Paragraph, req, inPara, fieldKeys, hasTextIndex)
				return nil
			})
		}
	}

	if len(req.Vector) > 0 {
		if idx, ok := byKind[ids.IndexKindVector]; ok {
			g.Go(func() error {
				if err := streamSem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer streamSem.Release(1)
				h, err := s.acquire(gctx, idx)
				if err != nil {
					return err
				}
				defer h.Release()
				resp.Vectors = s.searchVector(h.Reader.Vector, req, prefilter, facts, hasTextIndex)
				return nil
			})
		}
	}

	if req.Relations {
		if idx, ok := byKind[ids.IndexKindRelation]; ok {
			g.Go(func() error {
				if err := streamSem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer streamSem.Release(1)
				h, err := s.acquire(gctx, idx)
				if err != nil {
					return err
				}
				defer h.Release()
				resp.Relations = s.searchRelation(h.Reader.Relation, req)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.SearcherQueryLatency.WithLabelValues("hybrid").Observe(time.Since(start).Seconds())
	return resp, nil
}

// newStreamSemaphore returns a semaphore.Weighted bounding concurrent
// result-stream dispatch to n, or to the number of stream kinds (4) when
// n is zero, since a weight of zero would block every Acquire forever.
func newStreamSemaphore(n int64) *semaphore.Weighted {
	if n <= 0 {
		n = 4
	}
	return semaphore.NewWeighted(n)
}

func (s *Searcher) acquire(ctx context.Context, idx store.Index) (*Handle, error) {
	freshIDs, err := segmentIDsOf(ctx, s.Store, idx.ID)
	if err != nil {
		return nil, err
	}
	return s.Cache.Acquire(ctx, idx.ID, freshIDs, func(ctx context.Context) (*IndexReader, error) {
		return OpenReader(ctx, s.Store, s.Blob, s.LocalDir, idx, s.MaxConcurrentSegmentLoads)
	})
}

// buildExpr folds the request's filter_expression, security and
// timestamp constraints into one Expr, the AST §4.6's two-pass planner
// then processes uniformly.
func buildExpr(req Request) query.Expr {
	var operands []query.Expr
	if req.FilterExpr != nil {
		operands = append(operands, *req.FilterExpr)
	}
	if len(req.AccessGroups) > 0 {
		operands = append(operands, query.Security(req.AccessGroups))
	}
	if req.Timestamps != nil {
		t := req.Timestamps
		if t.FromCreated != nil || t.ToCreated != nil {
			operands = append(operands, query.Date("created", t.FromCreated, t.ToCreated))
		}
		if t.FromModified != nil || t.ToModified != nil {
			operands = append(operands, query.Date("modified", t.FromModified, t.ToModified))
		}
	}
	for _, f := range req.Fields {
		typ, id := splitFieldSpec(f)
		operands = append(operands, query.Field(typ, id))
	}
	for _, k := range req.KeyFilters {
		operands = append(operands, query.Resource(k))
	}
	if len(operands) == 0 {
		return query.And() // vacuously true
	}
	return query.And(operands...)
}

func splitFieldSpec(f string) (typ, id string) {
	parts := strings.SplitN(f, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func dateExprOf(e query.Expr) (query.Expr, bool) {
	switch e.Kind {
	case query.KindDate:
		return e, true
	case query.KindAnd:
		for _, op := range e.Operands {
			if d, ok := dateExprOf(op); ok {
				return d, true
			}
		}
	}
	return query.Expr{}, false
}

func (s *Searcher) searchText(segs []TextSegment, req Request, prefilter query.Expr) []DocumentHit {
	var hits []DocumentHit
	for _, ts := range segs {
		pf := evalTextPrefilter(prefilter, req.AccessGroups, ts.Seg)
		results := text.Search(ts.Seg, text.SearchRequest{Query: req.Body, Prefilter: pf, K: (req.PageNumber + 1) * page(req)})
		for _, r := range results {
			d := ts.Seg.Docs[r.DocIndex]
			if r.Score < req.MinScoreBM25 {
				continue
			}
			hits = append(hits, DocumentHit{ResourceID: d.ResourceID, Field: d.Field, Score: r.Score})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return paginateDocuments(hits, req)
}

func (s *Searcher) searchParagraph(segs []ParagraphSegment, req Request, inPara query.Expr, fieldKeys []string, restrictFieldKeys bool) []ParagraphHit {
	var hits []ParagraphHit
	for _, ps := range segs {
		pf := evalParagraphInFilter(inPara, ps.Seg)
		if restrictFieldKeys {
			pf = pf.And(ps.Seg.FieldKeySet(fieldKeys))
		}
		results := paragraph.Search(ps.Seg, paragraph.SearchRequest{
			Query:          req.Body,
			Prefilter:      pf,
			WithDuplicates: req.WithDuplicates,
			MinScore:       req.MinScoreBM25,
			K:              (req.PageNumber + 1) * page(req),
		})
		for _, r := range results {
			p := ps.Seg.Paragraphs[r.ParagraphIndex]
			hits = append(hits, ParagraphHit{ResourceID: p.ResourceID, Field: p.Field, Text: p.Text, Start: p.Start, End: p.End, Score: r.Score})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return paginateParagraphs(hits, req)
}

func (s *Searcher) searchVector(segs []VectorSegment, req Request, prefilter query.Expr, facts resourceFactsIndex, hasTextIndex bool) []VectorHit {
	formula := buildFormula(prefilter)
	dateExpr, hasDate := dateExprOf(prefilter)

	var hits []VectorHit
	for _, vs := range segs {
		results := vector.Search(vs.Seg.Graph, vs.Seg.Records, vs.Seg.Journal.Similarity, vs.Seg.Index, vector.SearchRequest{
			Query:          req.Vector,
			K:              page(req),
			EfSearch:       page(req) * 2,
			Filter:         &formula,
			WithDuplicates: req.WithDuplicates,
			MinScore:       req.MinScoreVector,
		})
		for _, r := range results {
			if req.Vectorset != "" && !strings.HasSuffix(r.Key, "#"+req.Vectorset) {
				continue
			}
			if req.Vectorset == "" && strings.Contains(r.Key, "#") {
				continue
			}
			rid := resourceIDFromVectorKey(r.Key)
			if hasTextIndex && !facts.visible(rid, dateExpr, hasDate, req.AccessGroups) {
				continue
			}
			hits = append(hits, VectorHit{Key: r.Key, Score: r.Score})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k := page(req); len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// resourceIDFromVectorKey extracts the leading "{rid}" component of a
// vector record key "{rid}/{field}/{ord}/{start-end}[#vectorset]" (§6.3).
func resourceIDFromVectorKey(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return key
}

// searchRelation has no filter_expression-level constraints in §6.4's
// surface beyond the relations bool; every open relation segment's
// triples are returned verbatim, bounded by the page size, since the
// relation segment kind carries no security facets of its own (§6.3
// names no relation deletion key and, likewise, no relation security
// facet -- the graph is resource-adjacent, not resource-secured).
func (s *Searcher) searchRelation(segs []RelationSegment, req Request) []RelationHit {
	var hits []RelationHit
	limit := page(req)
	for _, rs := range segs {
		for _, t := range rs.Seg.Triples {
			hits = append(hits, RelationHit{Source: t.Source, Target: t.Target, Relationship: t.Relationship})
			if len(hits) >= limit {
				return hits
			}
		}
	}
	return hits
}

func page(req Request) int {
	if req.ResultPerPage > 0 {
		return req.ResultPerPage
	}
	return 20
}

func paginateDocuments(hits []DocumentHit, req Request) []DocumentHit {
	lo, hi := pageBounds(len(hits), req)
	return hits[lo:hi]
}

func paginateParagraphs(hits []ParagraphHit, req Request) []ParagraphHit {
	lo, hi := pageBounds(len(hits), req)
	return hits[lo:hi]
}

func pageBounds(n int, req Request) (int, int) {
	per := page(req)
	lo := req.PageNumber * per
	if lo > n {
		lo = n
	}
	hi := lo + per
	if hi > n {
		hi = n
	}
	return lo, hi
}
