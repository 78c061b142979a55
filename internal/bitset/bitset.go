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

// Package bitset implements a fixed-universe bitset over record addresses,
// used by the vector formula evaluator (SPEC_FULL.md §4.4.5) to combine
// label/key-prefix predicates with set operations.
package bitset

import "math/bits"

type Set struct {
	words []uint64
	n     int
}

// New returns a Set over the universe [0, n).
func New(n int) *Set {
	return &Set{words: make([]uint64, (n+63)/64), n: n}
}

// Full returns a Set over [0, n) with every bit set.
func Full(n int) *Set {
	s := New(n)
	for i := range s.words {
		s.words[i] = ^uint64(0)
	}
	s.clearTail()
	return s
}

func (s *Set) clearTail() {
	if s.n%64 == 0 || len(s.words) == 0 {
		return
	}
	last := len(s.words) - 1
	validBits := s.n % 64
	s.words[last] &= (uint64(1) << validBits) - 1
}

func (s *Set) Len() int { return s.n }

func (s *Set) Set(i int) {
	s.words[i/64] |= 1 << (uint(i) % 64)
}

func (s *Set) Clear(i int) {
	s.words[i/64] &^= 1 << (uint(i) % 64)
}

func (s *Set) Test(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	return s.words[i/64]&(1<<(uint(i)%64)) != 0
}

// Count returns the number of set bits.
func (s *Set) Count() int {
	c := 0
	for _, w := range s.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// And returns the intersection of s and other (same universe size).
func (s *Set) And(other *Set) *Set {
	out := New(s.n)
	for i := range s.words {
		out.words[i] = s.words[i] & other.words[i]
	}
	return out
}

// Or returns the union of s and other.
func (s *Set) Or(other *Set) *Set {
	out := New(s.n)
	for i := range s.words {
		out.words[i] = s.words[i] | other.words[i]
	}
	return out
}

// Not returns the complement of s over its own universe — "invert over the
// full universe" per SPEC_FULL.md §9's resolved Open Question for the
// formula Not operator, rather than inverting over some smaller working
// set.
func (s *Set) Not() *Set {
	out := New(s.n)
	for i := range s.words {
		out.words[i] = ^s.words[i]
	}
	out.clearTail()
	return out
}

// Each calls fn for every set bit, in ascending order.
func (s *Set) Each(fn func(i int)) {
	for wi, w := range s.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			fn(wi*64 + tz)
			w &^= 1 << uint(tz)
		}
	}
}
