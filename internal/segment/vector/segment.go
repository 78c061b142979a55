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

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nidxlabs/nidx/internal/codec"
	"github.com/nidxlabs/nidx/internal/nidxerrors"
)

// Journal is journal.json's contents (§4.1.4).
type Journal struct {
	Similarity  Similarity `json:"similarity"`
	Dimension   int        `json:"dimension"`
	Count       int        `json:"count"`
	CreatedTime time.Time  `json:"created_time"`
	Tags        []string   `json:"tags"`
}

// recordWire is the JSON-serializable shape of a Record, one payload
// per codec.Writer frame in vectors.bin.
type recordWire struct {
	Key      string  `json:"key"`
	QMin     float32 `json:"q_min"`
	QMax     float32 `json:"q_max"`
	QValues  []byte  `json:"q_values"`
	Labels   []string `json:"labels"`
	Metadata []byte  `json:"metadata"`
}

// Segment is a fully materialized vector index segment: the record
// store, its graph and the field/label FSTs built over it (§4.1.4's
// vectors.bin + hnsw.bin + fst_fields.idx + fst_labels.idx + journal.json).
type Segment struct {
	Journal Journal
	Records []Record
	Graph   *Graph
	Index   SegmentIndex
}

// Write persists a Segment to dir as vectors.bin, hnsw.bin and
// journal.json. The field and label FSTs are not written; Open rebuilds
// them from the records.
func Write(dir string, seg Segment) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create segment directory")
	}

	if err := writeVectors(filepath.Join(dir, "vectors.bin"), seg.Records); err != nil {
		return err
	}
	if err := writeGraph(filepath.Join(dir, "hnsw.bin"), seg.Graph); err != nil {
		return err
	}

	journalBytes, err := json.Marshal(seg.Journal)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindValidation, err, "marshal journal")
	}
	if err := os.WriteFile(filepath.Join(dir, "journal.json"), journalBytes, 0o644); err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write journal")
	}
	return nil
}

func writeVectors(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create vectors.bin")
	}
	defer f.Close()

	w := codec.NewWriter(f)
	for _, rec := range records {
		wire := recordWire{
			Key: rec.Key, QMin: rec.Vector.Min, QMax: rec.Vector.Max,
			QValues: rec.Vector.Values, Labels: rec.Labels, Metadata: rec.Metadata,
		}
		payload, err := json.Marshal(wire)
		if err != nil {
			return nidxerrors.Wrap(nidxerrors.KindValidation, err, "marshal record")
		}
		if err := w.WriteRecord(payload); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write record")
		}
	}
	return w.Flush()
}

// layerWire is one hnsw.bin frame: a layer's adjacency list plus, on
// the first frame only, the entry point.
type layerWire struct {
	EntryPoint *EntryPoint        `json:"entry_point,omitempty"`
	Nodes      []Address          `json:"nodes"`
	Edges      map[Address][]Edge `json:"edges"`
}

func writeGraph(path string, graph *Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return nidxerrors.Wrap(nidxerrors.KindTransient, err, "create hnsw.bin")
	}
	defer f.Close()

	w := codec.NewWriter(f)
	for i, layer := range graph.Layers {
		wire := layerWire{Edges: map[Address][]Edge{}}
		if i == 0 {
			wire.EntryPoint = graph.EntryPoint
		}
		for node, edges := range layer.edges {
			wire.Nodes = append(wire.Nodes, node)
			wire.Edges[node] = edges
		}
		payload, err := json.Marshal(wire)
		if err != nil {
			return nidxerrors.Wrap(nidxerrors.KindValidation, err, "marshal layer")
		}
		if err := w.WriteRecord(payload); err != nil {
			return nidxerrors.Wrap(nidxerrors.KindTransient, err, "write layer")
		}
	}
	return w.Flush()
}

// Open reads a Segment back from dir, rebuilding the FST indices in
// memory from the decoded records (the FSTs themselves are not
// persisted separately in this layout — they are cheap to rebuild and
// doing so guarantees they can never drift from vectors.bin).
func Open(dir string) (Segment, error) {
	var seg Segment

	journalBytes, err := os.ReadFile(filepath.Join(dir, "journal.json"))
	if err != nil {
		return seg, nidxerrors.Wrap(nidxerrors.KindTransient, err, "read journal")
	}
	if err := json.Unmarshal(journalBytes, &seg.Journal); err != nil {
		return seg, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "parse journal")
	}

	records, err := readVectors(filepath.Join(dir, "vectors.bin"))
	if err != nil {
		return seg, err
	}
	seg.Records = records

	graph, err := readGraph(filepath.Join(dir, "hnsw.bin"))
	if err != nil {
		return seg, err
	}
	seg.Graph = graph

	fields, labels := BuildFSTs(records)
	seg.Index = SegmentIndex{Fields: fields, Labels: labels, Records: len(records)}
	return seg, nil
}

func readVectors(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "open vectors.bin")
	}
	defer f.Close()

	r := codec.NewReader(f)
	var records []Record
	for {
		payload, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var wire recordWire
		if err := json.Unmarshal(payload, &wire); err != nil {
			return nil, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "parse record")
		}
		records = append(records, Record{
			Key:      wire.Key,
			Vector:   Quantized{Min: wire.QMin, Max: wire.QMax, Values: wire.QValues},
			Labels:   wire.Labels,
			Metadata: wire.Metadata,
		})
	}
	return records, nil
}

func readGraph(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nidxerrors.Wrap(nidxerrors.KindTransient, err, "open hnsw.bin")
	}
	defer f.Close()

	r := codec.NewReader(f)
	graph := NewGraph()
	for {
		payload, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var wire layerWire
		if err := json.Unmarshal(payload, &wire); err != nil {
			return nil, nidxerrors.Wrap(nidxerrors.KindCorruption, err, "parse layer")
		}
		layer := newLayer()
		for _, n := range wire.Nodes {
			layer.AddNode(n)
			layer.ReplaceEdges(n, wire.Edges[n])
		}
		graph.Layers = append(graph.Layers, layer)
		if wire.EntryPoint != nil {
			graph.EntryPoint = wire.EntryPoint
		}
	}
	return graph, nil
}
