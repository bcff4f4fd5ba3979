// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/blockflow/internal/config"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/hcl_adapter"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/metrics"
	"github.com/specialistvlad/blockflow/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx       context.Context
	outW      io.Writer
	logger    *slog.Logger
	logCloser io.Closer
	config    *Config

	static  *registry.Static
	kinds   *kind.Registry
	loader  config.Loader
	promReg *prometheus.Registry
	metrics *metrics.Collector

	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results are written
// to outW (unless the config names an output file) and logs to logW. With
// no modules, the core modules are registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger, logCloser := newLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules()
	}
	static := registry.NewStatic(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "blocks", len(static.Blocks()))

	promReg := prometheus.NewRegistry()
	collector, err := metrics.New(promReg)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	a := &App{
		ctx:       ctx,
		outW:      outW,
		logger:    logger,
		logCloser: logCloser,
		config:    cfg,
		static:    static,
		kinds:     kind.Default(),
		loader:    config.NewDispatcher(config.NewDataLoader(), hcl_adapter.NewLoader()),
		promReg:   promReg,
		metrics:   collector,
	}
	a.healthCheckServer()
	return a, nil
}

// Static returns the compiled-in blocks. This is primarily for testing.
func (a *App) Static() *registry.Static {
	return a.static
}

// Close stops the health check server and releases the log file.
func (a *App) Close() error {
	return errors.Join(a.closeHealthCheckServer(), a.logCloser.Close())
}
