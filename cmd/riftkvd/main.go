// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Command riftkvd hosts the catalog façade behind a minimal HTTP
// surface: Prometheus metrics and a health endpoint that polls every
// registered diag.Healthy component. It exists to give the backend
// drivers, the config binder, and the diagnostics registry a concrete
// process to be wired into.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/riftdb/riftkv/internal/config"
	"github.com/riftdb/riftkv/internal/diag"
	"github.com/riftdb/riftkv/internal/kv"
	_ "github.com/riftdb/riftkv/internal/kv/kvfdb"
	_ "github.com/riftdb/riftkv/internal/kv/kvfile"
	_ "github.com/riftdb/riftkv/internal/kv/kvindexed"
	_ "github.com/riftdb/riftkv/internal/kv/kvmem"
	_ "github.com/riftdb/riftkv/internal/kv/kvtikv"
	"github.com/riftdb/riftkv/internal/stopper"
)

// serverConfig layers a bind address onto the façade's own config.
type serverConfig struct {
	config.Config
	BindAddr string
}

func (c *serverConfig) bind(flags *pflag.FlagSet) {
	c.Config.Bind(flags)
	flags.StringVar(&c.BindAddr, "bindAddr", ":26258",
		"the network address the metrics and health endpoints listen on")
}

func (c *serverConfig) preflight() error {
	if err := c.Config.Preflight(); err != nil {
		return err
	}
	if c.BindAddr == "" {
		return errors.New("bindAddr unset")
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("riftkvd exiting")
	}
}

func run() error {
	cfg := &serverConfig{}
	flags := pflag.NewFlagSet("riftkvd", pflag.ContinueOnError)
	cfg.bind(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if err := cfg.preflight(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sc := stopper.WithContext(ctx)

	store, err := provideStore(sc, &cfg.Config)
	if err != nil {
		return errors.Wrap(err, "opening backend")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("closing backend")
		}
	}()

	diags, err := provideDiagnostics(store)
	if err != nil {
		return err
	}

	srv := provideHTTPServer(cfg.BindAddr, diags)
	sc.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})

	log.WithFields(log.Fields{
		"backend": cfg.Backend,
		"addr":    cfg.BindAddr,
	}).Info("riftkvd listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return sc.Stop()
}

// provideStore opens the configured backend: a single constructor
// that turns config fields into a live resource.
func provideStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	return kv.Open(ctx, cfg.Backend, cfg.DSN)
}

// provideDiagnostics registers the backend under its driver name, the
// way ProvideTargetStatements registers the statement cache.
func provideDiagnostics(store kv.Store) (*diag.Diagnostics, error) {
	diags := diag.New()
	if healthy, ok := store.(diag.Healthy); ok {
		if err := diags.Register(store.Name(), healthy); err != nil {
			return nil, err
		}
	}
	return diags, nil
}

// provideHTTPServer wires the metrics and health endpoints onto a
// single mux, named by BindAddr the same way the rest of this
// process's HTTP handlers would be mounted onto it.
func provideHTTPServer(addr string, diags *diag.Diagnostics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := diags.HealthCheck(r.Context())
		status := http.StatusOK
		body := make(map[string]string, len(results))
		for name, err := range results {
			if err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
	return &http.Server{Addr: addr, Handler: mux}
}
