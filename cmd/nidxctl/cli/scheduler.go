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

package cli

import (
	"context"
	"math"

	"github.com/spf13/cobra"

	"github.com/nidxlabs/nidx/internal/config"
	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/scheduler"
	"github.com/nidxlabs/nidx/internal/segment/vector"
)

func newSchedulerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the scheduler role's four periodic loops (§4.7) until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			bl, err := openBlob(cfg)
			if err != nil {
				return err
			}
			go serveMetrics(cmd.Context(), cfg)

			s := &scheduler.Scheduler{
				Store: st,
				Blob:  bl,
				Config: scheduler.Config{
					RetryJobsInterval:      cfg.Duration("scheduler.retry_jobs_interval"),
					PurgeSegmentsInterval:  cfg.Duration("scheduler.purge_segments_interval"),
					PurgeDeletionsInterval: cfg.Duration("scheduler.purge_deletions_interval"),
					ScheduleMergesInterval: cfg.Duration("scheduler.schedule_merges_interval"),
					JobStuckAfter:          cfg.Duration("scheduler.job_stuck_after"),
					JobMaxRetries:          cfg.Int("scheduler.job_max_retries"),
					OldestUnprocessedSeq:   everythingProcessed,
					Merge:                  mergeParams(cfg),
				},
			}
			return s.Run(cmd.Context())
		},
	}
	return cmd
}

// everythingProcessed stands in for the real ingest stream's consumer
// position (§6.5), which this standalone CLI never runs: nidxctl indexes
// resources synchronously via "nidxctl index put", so every committed
// segment is always safe to merge or prune immediately.
func everythingProcessed(ctx context.Context, indexID ids.IndexID) (ids.Seq, error) {
	return ids.Seq(math.MaxInt64), nil
}

func mergeParams(cfg *config.Config) vector.PlannerParams {
	return vector.PlannerParams{
		MinNumberOfSegments:   cfg.Int("merge.min_number_of_segments"),
		MaxSegmentSize:        int(cfg.Int64("merge.max_segment_size")),
		SmallSegmentThreshold: int(cfg.Int64("merge.small_segment_threshold")),
	}
}
