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

// Package dtrie implements the deletion-log trie of SPEC_FULL.md §4.1.4 and
// §9: a byte-key trie whose Lookup returns the greatest seq recorded at any
// prefix of the queried key. Grounded directly on
// original_source/nidx/nidx_vector/src/data_types/dtrie_ram.rs.
package dtrie

import "github.com/nidxlabs/nidx/internal/ids"

type node struct {
	hasValue bool
	value    ids.Seq
	children map[byte]*node
}

// DTrie maps byte-key prefixes to the sequence at which they were deleted.
type DTrie struct {
	root *node
}

func New() *DTrie {
	return &DTrie{root: &node{}}
}

// Insert records that key (and everything under it) was deleted at seq.
// Inserting a shorter prefix clears any more-specific children, matching
// the reference's `self.go_table.clear()` on an exact-key insert.
func (t *DTrie) Insert(key []byte, seq ids.Seq) {
	n := t.root
	for _, b := range key {
		if n.children == nil {
			n.children = make(map[byte]*node)
		}
		child, ok := n.children[b]
		if !ok {
			child = &node{}
			n.children[b] = child
		}
		n = child
	}
	n.hasValue = true
	n.value = seq
	n.children = nil
}

// Lookup returns the greatest seq recorded at any prefix of key, and
// whether any such value exists.
func (t *DTrie) Lookup(key []byte) (ids.Seq, bool) {
	n := t.root
	var best ids.Seq
	found := false
	if n.hasValue {
		best, found = n.value, true
	}
	for _, b := range key {
		child, ok := n.children[b]
		if !ok {
			break
		}
		n = child
		if n.hasValue && (!found || n.value > best) {
			best, found = n.value, true
		}
	}
	return best, found
}

// Deleted reports whether key is hidden by a deletion at or after
// segmentSeq — i.e. whether the record whose containing segment carries
// segmentSeq should be suppressed because it (or a prefix of it) was
// deleted at a seq >= segmentSeq.
func (t *DTrie) Deleted(key []byte, segmentSeq ids.Seq) bool {
	v, ok := t.Lookup(key)
	return ok && v >= segmentSeq
}

// Prune removes every entry with value strictly below watermark, via a
// post-order walk, matching the reference's inner_prune.
func (t *DTrie) Prune(watermark ids.Seq) {
	pruneNode(t.root, watermark)
}

func pruneNode(n *node, watermark ids.Seq) bool {
	if n.hasValue && n.value < watermark {
		n.hasValue = false
	}
	for k, child := range n.children {
		if pruneNode(child, watermark) {
			delete(n.children, k)
		}
	}
	return !n.hasValue && len(n.children) == 0
}

// Merge composes two deletion logs by taking the pointwise max, per
// SPEC_FULL.md §9 ("merges compose by taking pointwise max"). Merging is
// implemented by re-inserting every leaf of src into dst; correctness
// relies on Insert already resolving prefix/suffix precedence the same
// way a fresh build would.
func Merge(dst *DTrie, src *DTrie) {
	var walk func(prefix []byte, n *node)
	walk = func(prefix []byte, n *node) {
		if n.hasValue {
			if existing, ok := dst.Lookup(prefix); !ok || n.value > existing {
				dst.Insert(prefix, n.value)
			}
		}
		for b, child := range n.children {
			walk(append(append([]byte{}, prefix...), b), child)
		}
	}
	walk(nil, src.root)
}
