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
	"github.com/spf13/cobra"

	"github.com/nidxlabs/nidx/internal/worker"
)

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the worker role's merge job loop (§4.8) until interrupted",
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
			dir, err := tempDir(cfg, "worker")
			if err != nil {
				return err
			}
			go serveMetrics(cmd.Context(), cfg)

			w := &worker.Worker{
				Store:   st,
				Blob:    bl,
				TempDir: dir,
				Config: worker.Config{
					KeepaliveInterval:   cfg.Duration("worker.keepalive_interval"),
					SegmentGracePeriod:  cfg.Duration("scheduler.segment_grace_period"),
					Vector:              vectorParams(cfg),
					PollEmptyQueueSleep: cfg.Duration("worker.poll_empty_queue_sleep"),
				},
			}
			return w.Run(cmd.Context())
		},
	}
	return cmd
}
