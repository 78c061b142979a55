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

package query

import "github.com/samber/lo"

// Visible implements §4.6's uniform security rule: a resource is
// visible iff it is public, or the caller belongs to at least one of
// the resource's groups_with_access. Every result stream (text,
// paragraph, relation, vector) calls this with the same userGroups set
// so visibility never diverges across index kinds.
func Visible(public bool, resourceGroups, userGroups []string) bool {
	if public {
		return true
	}
	if len(resourceGroups) == 0 || len(userGroups) == 0 {
		return false
	}
	return len(lo.Intersect(resourceGroups, userGroups)) > 0
}
