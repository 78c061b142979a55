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
	"github.com/nidxlabs/nidx/internal/query"
	"github.com/nidxlabs/nidx/internal/segment/text"
)

// resourceFacts is the subset of a resource's security/timestamp facts
// needed to evaluate the Date and Security atoms of a cross-index filter
// expression against the vector stream, whose records don't carry those
// facts. Relation hits are not checked against it: the relation stream
// applies no security, date or resource filter. Built once per query from
// whichever text segments are open, since every resource indexes at
// least one text field and security/timestamps are resource-scoped, not
// field-scoped (§3.3 Ownership).
type resourceFacts struct {
	public   bool
	groups   []string
	created  int64
	modified int64
}

// resourceFactsIndex maps a resource id to its security/timestamp facts.
type resourceFactsIndex map[string]resourceFacts

func collectResourceFacts(textSegments []TextSegment) resourceFactsIndex {
	out := make(resourceFactsIndex)
	for _, ts := range textSegments {
		for _, d := range ts.Seg.Docs {
			out[d.ResourceID] = resourceFacts{
				public:   d.GroupsPublic,
				groups:   d.GroupsWithAccess,
				created:  d.Created.Unix(),
				modified: d.Modified.Unix(),
			}
		}
	}
	return out
}

// visible applies §4.6's uniform security/date rule to a resource that
// has no facts of its own in the current stream (a vector hit) by
// looking its resource id up in facts. A resource with
// no text segment open (or none indexed at all) is treated as invisible
// rather than silently bypassing the check. The security half of the
// check only runs when the caller supplied access groups -- mirroring
// buildExpr, which only adds a Security atom in that case -- so an empty
// userGroups means "no security filter" (every stream sees all
// resources) rather than "deny everything non-public", keeping the
// vector stream uniform with text/paragraph (§4.6).
func (rf resourceFactsIndex) visible(resourceID string, dateField query.Expr, hasDate bool, userGroups []string) bool {
	f, ok := rf[resourceID]
	if !ok {
		return false
	}
	if len(userGroups) > 0 && !query.Visible(f.public, f.groups, userGroups) {
		return false
	}
	if hasDate {
		ts := f.created
		if dateField.DateField == "modified" {
			ts = f.modified
		}
		if dateField.Since != nil && ts < *dateField.Since {
			return false
		}
		if dateField.Until != nil && ts > *dateField.Until {
			return false
		}
	}
	return true
}
