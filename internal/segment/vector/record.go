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

package vector

// Address indexes a record within a single segment's record store
// (ParagraphAddr/VectorAddr in the original implementation).
type Address uint32

// Record is one packed entry of vectors.bin (§4.1.4): a key, its
// quantized vector, a label set and opaque metadata. Key is the
// `{rid}/{type}/{field_id}/{ord}/{start-end}[#vectorset]` string used for
// deletion-by-key; field-prefix filtering indexes its `{type}/{field_id}`
// part (see BuildFSTs).
type Record struct {
	Key      string
	Vector   Quantized
	Labels   []string
	Metadata []byte
}

// Elem is the ingest-time shape the indexer builds from a resource's
// paragraphs before quantization (§4.3 step 3).
type Elem struct {
	Key      string
	Vector   []float32
	Labels   []string
	Metadata []byte
}
