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

package relation

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nidxlabs/nidx/internal/codec"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// Journal is the small JSON sidecar every segment kind carries per
// SPEC_FULL.md §4.1 ("a small JSON journal holding counts, version,
// creation time, and any per-kind auxiliary metadata").
type Journal struct {
	Count       int       `json:"count"`
	CreatedTime time.Time `json:"created_time"`
}

const triplesFile = "triples.bin"
const journalFile = "journal.json"

// Write persists seg to dir as triples.bin (codec-framed JSON records) plus
// journal.json. The normalized-value and relationship FSTs are never
// persisted — Open rebuilds them from the decoded triples, the same "cheap
// to rebuild, can't drift" choice the other segment kinds make.
func Write(dir string, seg *Segment) error {
	f, err := os.Create(filepath.Join(dir, triplesFile))
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create triples.bin")
	}
	w := codec.NewWriter(f)
	for _, t := range seg.Triples {
		payload, err := json.Marshal(t)
		if err != nil {
			f.Close()
			return nidxerrors.Wrap(nidxerrors.KindValidation, err, "encode triple")
		}
		if err := w.WriteRecord(payload); err != nil {
			f.Close()
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write triple record")
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "flush triples.bin")
	}
	if err := f.Close(); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "close triples.bin")
	}

	journal := Journal{Count: len(seg.Triples), CreatedTime: time.Now().UTC()}
	journalBytes, err := json.Marshal(journal)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindValidation, err, "encode journal")
	}
	if err := os.WriteFile(filepath.Join(dir, journalFile), journalBytes, 0o644); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write journal.json")
	}
	return nil
}

// Open reads a segment directory back and rebuilds its postings.
func Open(dir string) (*Segment, error) {
	f, err := os.Open(filepath.Join(dir, triplesFile))
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "open triples.bin")
	}
	defer f.Close()

	r := codec.NewReader(f)
	var triples []Triple
	for {
		payload, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var t Triple
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "decode triple")
		}
		triples = append(triples, t)
	}

	return Build(triples), nil
}
