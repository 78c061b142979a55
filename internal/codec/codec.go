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

// Package codec provides the leaf-level binary framing shared by every
// segment file format (SPEC_FULL.md §4.1.5): length-prefixed records with
// a CRC32 trailer, so a truncated or bit-flipped segment is detected as
// corruption (§7) rather than silently misparsed.
package codec

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// Writer frames records as: varint(len) | payload | crc32(payload).
type Writer struct {
	w   *bufio.Writer
	buf [binary.MaxVarintLen64]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (rw *Writer) WriteRecord(payload []byte) error {
	n := binary.PutUvarint(rw.buf[:], uint64(len(payload)))
	if _, err := rw.w.Write(rw.buf[:n]); err != nil {
		return err
	}
	if _, err := rw.w.Write(payload); err != nil {
		return err
	}
	sum := crc32.ChecksumIEEE(payload)
	var sumBuf [4]byte
	binary.LittleEndian.PutUint32(sumBuf[:], sum)
	_, err := rw.w.Write(sumBuf[:])
	return err
}

func (rw *Writer) Flush() error { return rw.w.Flush() }

// Reader reads back records framed by Writer, returning io.EOF cleanly at
// the end of a well-formed stream and a KindCorruption error otherwise.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

func (rr *Reader) ReadRecord() ([]byte, error) {
	n, err := binary.ReadUvarint(rr.r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "read record length")
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(rr.r, payload); err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "read record payload")
	}
	var sumBuf [4]byte
	if _, err := io.ReadFull(rr.r, sumBuf[:]); err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "read record checksum")
	}
	want := binary.LittleEndian.Uint32(sumBuf[:])
	got := crc32.ChecksumIEEE(payload)
	if want != got {
		return nil, nidxerrors.Newf(nidxerrors.KindCorruption, "record checksum mismatch: want %x got %x", want, got)
	}
	return payload, nil
}
