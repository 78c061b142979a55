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

// Package textnorm implements the diacritic-folding and case-normalizing
// pass shared by every inverted-index segment kind: paragraph tokenization
// (SPEC_FULL.md §4.1.2 "folds diacritics and lowercases") and relation
// endpoint normalization (§4.1.3 "deunicoded, ASCII-lowercased"). Grounded
// on the teacher's direct dependency on golang.org/x/text.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold decomposes s, strips combining (accent) marks, and lowercases the
// result. "Café" and "cafe" fold to the same string.
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// transform.String only errs on a broken Transformer chain, never on
		// input content; fall back to the unfolded (but still lowercased)
		// string rather than losing the value.
		folded = s
	}
	return strings.ToLower(folded)
}
