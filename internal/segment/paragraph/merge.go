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

package paragraph

import (
	"github.com/nidxlabs/nidx/internal/dtrie"
	"github.com/nidxlabs/nidx/internal/ids"
)

// MergeInput is one segment contributing to a merge, paired with the
// deletion log active at its seq (§4.4.6, applied to the paragraph kind).
type MergeInput struct {
	Seq        ids.Seq
	Paragraphs []Paragraph
	Deletes    *dtrie.DTrie
}

// Merge implements §4.4.6 generically for paragraph segments:
// stream-concatenate inputs oldest-first, dropping paragraphs masked by
// their segment's own deletion log, then rebuild the segment from the
// retained paragraphs.
func Merge(inputs []MergeInput) *Segment {
	var retained []Paragraph
	for _, in := range inputs {
		for _, p := range in.Paragraphs {
			if in.Deletes != nil && p.Key != "" && in.Deletes.Deleted([]byte(p.Key), in.Seq) {
				continue
			}
			retained = append(retained, p)
		}
	}
	return Build(retained)
}
