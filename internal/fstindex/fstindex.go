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

// Package fstindex is a sorted-slice + binary-search surrogate for the
// fst_fields.idx / fst_labels.idx contract of SPEC_FULL.md §4.1.4: map a
// label or field-key prefix to a sorted list of record addresses. See
// DESIGN.md for why this is a documented standard-library fallback rather
// than a wired third-party FST library (none appears anywhere in the
// example pack).
package fstindex

import "sort"

type entry struct {
	key       string
	addresses []int
}

// Index is an immutable, sorted dictionary built once per segment (or
// segment merge) and queried many times.
type Index struct {
	entries []entry
}

// Builder accumulates key -> address associations before Build sorts and
// dedupes them into an Index.
type Builder struct {
	byKey map[string][]int
}

func NewBuilder() *Builder {
	return &Builder{byKey: make(map[string][]int)}
}

func (b *Builder) Add(key string, address int) {
	b.byKey[key] = append(b.byKey[key], address)
}

func (b *Builder) Build() *Index {
	entries := make([]entry, 0, len(b.byKey))
	for k, addrs := range b.byKey {
		sort.Ints(addrs)
		uniq := addrs[:0]
		for _, a := range addrs {
			if len(uniq) == 0 || uniq[len(uniq)-1] != a {
				uniq = append(uniq, a)
			}
		}
		entries = append(entries, entry{key: k, addresses: uniq})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	return &Index{entries: entries}
}

// Lookup returns the addresses stored for an exact key.
func (idx *Index) Lookup(key string) []int {
	i := sort.Search(len(idx.entries), func(i int) bool { return idx.entries[i].key >= key })
	if i < len(idx.entries) && idx.entries[i].key == key {
		return idx.entries[i].addresses
	}
	return nil
}

// LookupPrefix returns the union of addresses for every key sharing the
// given prefix (used for the KeyPrefix formula atom and field-key
// filtering), in ascending address order.
func (idx *Index) LookupPrefix(prefix string) []int {
	lo := sort.Search(len(idx.entries), func(i int) bool { return idx.entries[i].key >= prefix })
	seen := make(map[int]struct{})
	var out []int
	for i := lo; i < len(idx.entries) && hasPrefix(idx.entries[i].key, prefix); i++ {
		for _, a := range idx.entries[i].addresses {
			if _, ok := seen[a]; !ok {
				seen[a] = struct{}{}
				out = append(out, a)
			}
		}
	}
	sort.Ints(out)
	return out
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Keys returns every distinct key in the index, in sorted order.
func (idx *Index) Keys() []string {
	keys := make([]string, len(idx.entries))
	for i, e := range idx.entries {
		keys[i] = e.key
	}
	return keys
}
