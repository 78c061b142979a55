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
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nidxlabs/nidx/internal/codec"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

type Journal struct {
	Count       int       `json:"count"`
	CreatedTime time.Time `json:"created_time"`
}

const paragraphsFile = "paragraphs.bin"
const journalFile = "journal.json"

// Write persists seg to dir; Terms/Labels/Tokens are rebuilt by Open rather
// than serialized, matching the vector and text segment kinds.
func Write(dir string, seg *Segment) error {
	f, err := os.Create(filepath.Join(dir, paragraphsFile))
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create paragraphs.bin")
	}
	w := codec.NewWriter(f)
	for _, p := range seg.Paragraphs {
		payload, err := json.Marshal(p)
		if err != nil {
			f.Close()
			return nidxerrors.Wrap(nidxerrors.KindValidation, err, "encode paragraph")
		}
		if err := w.WriteRecord(payload); err != nil {
			f.Close()
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write paragraph record")
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "flush paragraphs.bin")
	}
	if err := f.Close(); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "close paragraphs.bin")
	}

	journal := Journal{Count: len(seg.Paragraphs), CreatedTime: time.Now().UTC()}
	journalBytes, err := json.Marshal(journal)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindValidation, err, "encode journal")
	}
	return nidxerrors.Wrap(nidxerrors.KindTransient,
		os.WriteFile(filepath.Join(dir, journalFile), journalBytes, 0o644), "write journal.json")
}

func Open(dir string) (*Segment, error) {
	f, err := os.Open(filepath.Join(dir, paragraphsFile))
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "open paragraphs.bin")
	}
	defer f.Close()

	r := codec.NewReader(f)
	var paragraphs []Paragraph
	for {
		payload, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var p Paragraph
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "decode paragraph")
		}
		paragraphs = append(paragraphs, p)
	}

	return Build(paragraphs), nil
}
