// Copyright 2021 Andrew Werner.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajwerner/intrusive/internal/workout"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"entries":      "entries",
	"rounds":       "rounds",
	"threads":      "threads",
	"seed":         "seed",
	"verify":       "verify",
	"heap":         "heap_kind",
	"metrics-addr": "metrics_addr",
	"log-level":    "log_level",
	"log-format":   "log_format",
}

func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a workout and print per-phase timings",
		Long: `Run links a set of records into an AVL tree and a binary heap at the same
time, then looks them up, reorders them and removes them again, round after
round. Settings come from flags, INTRUSIVE_* environment variables and an
optional intrusive-workout.yaml, in that order of precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			for flag, key := range flagKeys {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			cfg, err := workout.LoadConfig(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flags.Int("entries", workout.DefaultEntries, "records per thread")
	flags.Int("rounds", workout.DefaultRounds, "rounds per thread")
	flags.Int("threads", workout.DefaultThreads, "worker goroutines, each with its own containers")
	flags.Int64("seed", workout.DefaultSeed, "random seed; thread i uses seed+i")
	flags.Bool("verify", false, "check the tree against a B-tree model after every phase")
	flags.String("heap", workout.DefaultHeapKind, `heap kind, "min" or "max"`)
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.String("log-level", workout.DefaultLogLevel, "log level")
	flags.String("log-format", workout.DefaultLogFormat, `log format, "text" or "json"`)
	return cmd
}

func run(cmd *cobra.Command, cfg *workout.Config) error {
	log := newLogger(cfg)
	metrics := workout.NewMetrics()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server failed")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		log.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := workout.Run(ctx, cfg, log, metrics)
	if err != nil {
		log.WithField("details", merry.Details(err)).Debug("workout failed")
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), report.Table())
	return err
}

func newLogger(cfg *workout.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
