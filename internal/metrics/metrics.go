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

// Package metrics carries the ambient Prometheus instrumentation for all
// four roles, grounded on internal/metrics/indexcoord_metrics.go.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "nidx"

var (
	IndexerSegmentsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "segments_built_total",
			Help:      "number of segments successfully built and uploaded",
		}, []string{"kind"})

	IndexerSegmentBuildLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "segment_build_seconds",
			Help:      "latency of building and uploading one segment",
		}, []string{"kind"})

	SchedulerMergeJobsPlanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "merge_jobs_planned_total",
			Help:      "number of merge jobs inserted by the planner",
		}, []string{"kind"})

	SchedulerSegmentsPurged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "segments_purged_total",
			Help:      "number of tombstoned segment blobs deleted",
		}, []string{})

	WorkerJobsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "jobs_in_flight",
			Help:      "number of merge jobs currently being executed by this worker",
		}, []string{})

	WorkerMergeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "merge_seconds",
			Help:      "latency of a full merge job (download+merge+upload+swap)",
		}, []string{"kind"})

	SearcherQueryLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "searcher",
			Name:      "query_seconds",
			Help:      "latency of a hybrid search request",
		}, []string{"result_type"})

	SearcherCacheOpenSegments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "searcher",
			Name:      "open_segments",
			Help:      "number of segment handles currently held open by the cache",
		}, []string{})
)

// Register registers every collector with registry. Roles call this once
// at startup with their own *prometheus.Registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		IndexerSegmentsBuilt,
		IndexerSegmentBuildLatency,
		SchedulerMergeJobsPlanned,
		SchedulerSegmentsPurged,
		WorkerJobsInFlight,
		WorkerMergeLatency,
		SearcherQueryLatency,
		SearcherCacheOpenSegments,
	)
}
