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
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nidxlabs/nidx/internal/ids"
	"github.com/nidxlabs/nidx/internal/shard"
)

func newShardCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "shard", Short: "Manage shards (§3.1)"}
	cmd.AddCommand(newShardCreateCmd())
	return cmd
}

func newShardCreateCmd() *cobra.Command {
	var kb string
	var vectorset, similarity string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a shard and its four indexes (text/paragraph/relation/vector)",
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

			kbID, err := uuid.Parse(kb)
			if err != nil {
				return err
			}
			shardID := ids.NewShardID()
			ctx := cmd.Context()
			if err := st.CreateShard(ctx, shardID, kbID); err != nil {
				return err
			}

			kinds := []ids.IndexKind{ids.IndexKindText, ids.IndexKindParagraph, ids.IndexKindRelation}
			for _, kind := range kinds {
				if _, err := st.CreateIndex(ctx, shardID, kind, string(kind), nil); err != nil {
					return err
				}
			}
			vecConfig := []byte(`{"similarity":"` + similarity + `"}`)
			if _, err := st.CreateIndex(ctx, shardID, ids.IndexKindVector, vectorset, vecConfig); err != nil {
				return err
			}

			dir, err := tempDir(cfg, "shards")
			if err != nil {
				return err
			}
			if err := shard.NewManager(dir).Create(ctx, shardID, kbID, ""); err != nil {
				return err
			}

			cmd.Println(shardID.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&kb, "kb", "", "knowledge box id (uuid) this shard belongs to")
	cmd.Flags().StringVar(&vectorset, "vectorset", "default", "name of the default vectorset index")
	cmd.Flags().StringVar(&similarity, "similarity", "cosine", "similarity function for the default vectorset (cosine|dot)")
	_ = cmd.MarkFlagRequired("kb")
	return cmd
}
