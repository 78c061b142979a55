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

// Package cli wires the four roles of SPEC_FULL.md §2 into a single
// spf13/cobra front end (§4.11) for local development and the scenario
// tests of §8, grounded on the teacher's cmd/roles + cmd/components
// command wiring.
package cli

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nidxlabs/nidx/internal/blob"
	"github.com/nidxlabs/nidx/internal/config"
	"github.com/nidxlabs/nidx/internal/log"
	"github.com/nidxlabs/nidx/internal/metrics"
	"github.com/nidxlabs/nidx/internal/segment/vector"
	"github.com/nidxlabs/nidx/internal/store"
)

var configFile string

// Execute builds the root command and runs it to completion, grounded on
// the go-mizu-mizu blueprint's cli.Execute(ctx) shape.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:          "nidxctl",
		Short:        "nidx — local driver for the indexer, scheduler, worker and searcher roles",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	root.AddCommand(
		newSchemaCmd(),
		newShardCmd(),
		newIndexCmd(),
		newSearchCmd(),
		newSchedulerCmd(),
		newWorkerCmd(),
	)

	return root.ExecuteContext(ctx)
}

// loadConfig resolves the layered configuration of §4.10 from the
// persistent --config flag, environment variables and cmd's own flags,
// then wires the process-wide logger from log.level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	cmd.Flags().VisitAll(func(f *pflag.Flag) { flags.AddFlag(f) })

	cfg, err := config.New(configFile, flags)
	if err != nil {
		return nil, err
	}
	replaceLogger(cfg.String("log.level"))
	return cfg, nil
}

func replaceLogger(level string) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	l, err := zcfg.Build()
	if err != nil {
		return
	}
	log.Replace(l)
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// openStore opens the metadata store from store.dsn and ensures its
// schema exists, so every subcommand can run against a fresh Postgres
// instance without a separate migration step.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.String("store.dsn"))
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func openBlob(cfg *config.Config) (blob.Store, error) {
	return blob.New(blob.Config{
		Endpoint:  cfg.String("blob.endpoint"),
		AccessKey: cfg.String("blob.access_key"),
		SecretKey: cfg.String("blob.secret_key"),
		UseSSL:    cfg.Bool("blob.use_ssl"),
		Bucket:    cfg.String("blob.bucket"),
	})
}

// vectorParams reads vector.m/vector.ef_construction from the layered
// config (§4.4.1's tunables), falling back to vector.DefaultParams()
// when unset.
func vectorParams(cfg *config.Config) vector.Params {
	p := vector.DefaultParams()
	if m := cfg.Int("vector.m"); m > 0 {
		p.M = m
		p.M0 = 2 * m
	}
	if ef := cfg.Int("vector.ef_construction"); ef > 0 {
		p.EfConstruction = ef
	}
	return p
}

// serveMetrics starts the §2 Prometheus exposition endpoint for a
// long-running role (scheduler, worker) on metrics.listen_addr and returns
// once ctx is cancelled. A listen failure is logged, not fatal: a role
// should keep running even if its metrics port is already taken.
func serveMetrics(ctx context.Context, cfg *config.Config) {
	addr := cfg.String("metrics.listen_addr")
	if addr == "" {
		return
	}
	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}

func tempDir(cfg *config.Config, subdir string) (string, error) {
	base := cfg.String("local.work_dir")
	if base == "" {
		base = os.TempDir()
	}
	dir := base + "/nidx-" + subdir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
