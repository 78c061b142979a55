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
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nidxlabs/nidx/internal/indexer"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "index", Short: "Run the indexer role (§4.3) against a shard"}
	cmd.AddCommand(newIndexPutCmd())
	return cmd
}

func newIndexPutCmd() *cobra.Command {
	var shard string

	cmd := &cobra.Command{
		Use:   "put <resource.json>",
		Short: "Index one resource (§4.3) into every index of a shard",
		Args:  cobra.ExactArgs(1),
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
			dir, err := tempDir(cfg, "indexer")
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var r indexer.Resource
			if err := json.Unmarshal(data, &r); err != nil {
				return err
			}

			shardID, err := uuid.Parse(shard)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			indexes, err := st.ListIndexesForShard(ctx, shardID)
			if err != nil {
				return err
			}

			ix := &indexer.Indexer{
				Store:     st,
				Blob:      bl,
				TempDir:   dir,
				Vector:    vectorParams(cfg),
				Normalize: true,
			}
			results, err := ix.IndexAll(ctx, indexes, r)
			if err != nil {
				return err
			}
			for _, res := range results {
				cmd.Printf("index=%d kind=%s segment=%d records=%d deleted=%d skipped=%v\n",
					res.IndexID, res.Kind, res.SegmentID, res.Records, res.Deleted, res.SkippedNoop)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&shard, "shard", "", "shard id (uuid) to index into")
	_ = cmd.MarkFlagRequired("shard")
	return cmd
}
