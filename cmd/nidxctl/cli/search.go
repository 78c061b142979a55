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

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nidxlabs/nidx/internal/searcher"
)

func newSearchCmd() *cobra.Command {
	var shard, body string
	var fields, keyFilters, accessGroups []string
	var document, paragraph, relations bool
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one hybrid search (§4.5/§4.6) against a shard and print the JSON response",
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
			dir, err := tempDir(cfg, "searcher")
			if err != nil {
				return err
			}

			shardID, err := uuid.Parse(shard)
			if err != nil {
				return err
			}

			s := &searcher.Searcher{
				Store:    st,
				Blob:     bl,
				Cache:    searcher.NewCache(),
				LocalDir: dir,
			}

			resp, err := s.Search(cmd.Context(), searcher.Request{
				Shard:         shardID,
				Body:          body,
				Fields:        fields,
				KeyFilters:    keyFilters,
				AccessGroups:  accessGroups,
				Document:      document,
				Paragraph:     paragraph,
				Relations:     relations,
				PageNumber:    page,
				ResultPerPage: perPage,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&shard, "shard", "", "shard id (uuid) to search")
	cmd.Flags().StringVar(&body, "body", "", "query text")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "restrict to field(s), \"type\" or \"type/id\"")
	cmd.Flags().StringSliceVar(&keyFilters, "key", nil, "restrict to resource id(s)")
	cmd.Flags().StringSliceVar(&accessGroups, "access-group", nil, "caller's access groups (§4.6 security)")
	cmd.Flags().BoolVar(&document, "documents", true, "include the document result stream")
	cmd.Flags().BoolVar(&paragraph, "paragraphs", true, "include the paragraph result stream")
	cmd.Flags().BoolVar(&relations, "relations", false, "include the relation result stream")
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "results per page")
	_ = cmd.MarkFlagRequired("shard")
	return cmd
}
