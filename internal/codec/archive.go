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

package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

// PackArchive compresses a segment directory's named files into a single
// blob for upload (§6.2's "single compressed archive" contract), grounded
// on the teacher's direct dependency on github.com/klauspost/compress.
// The archive format is a simple sequence of framed (name, contents)
// records so it round-trips without needing tar's full feature set.
func PackArchive(files map[string][]byte) ([]byte, error) {
	var raw bytes.Buffer
	fw := NewWriter(&raw)
	// deterministic order keeps archive bytes reproducible for a given
	// segment, which matters for the write-once blob contract of §5.
	names := sortedKeys(files)
	if err := fw.WriteRecord(encodeUint(uint64(len(names)))); err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := fw.WriteRecord([]byte(name)); err != nil {
			return nil, err
		}
		if err := fw.WriteRecord(files[name]); err != nil {
			return nil, err
		}
	}
	if err := fw.Flush(); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw.Bytes(), nil), nil
}

// UnpackArchive reverses PackArchive.
func UnpackArchive(blob []byte) (map[string][]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, err
	}

	r := NewReader(bytes.NewReader(raw))
	countBuf, err := r.ReadRecord()
	if err != nil {
		return nil, err
	}
	count := decodeUint(countBuf)
	out := make(map[string][]byte, count)
	for i := uint64(0); i < count; i++ {
		name, err := r.ReadRecord()
		if err != nil {
			return nil, err
		}
		contents, err := r.ReadRecord()
		if err != nil {
			return nil, err
		}
		out[string(name)] = contents
	}
	return out, nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// insertion sort is fine: segment directories have a handful of files
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func encodeUint(v uint64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return buf
}

func decodeUint(buf []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(buf); i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return v
}

var _ io.Writer = (*bytes.Buffer)(nil)
