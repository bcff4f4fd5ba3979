// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockflow/internal/compiler"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/executor"
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/specialistvlad/blockflow/internal/remote"
)

// Describe writes the block catalog, the declared kinds and every legal
// connection, including the configured dynamic blocks.
func (a *App) Describe(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	defs, err := a.loadBlocks()
	if err != nil {
		return err
	}
	desc, err := registry.Describe(ctx, a.kinds, a.static, defs)
	if err != nil {
		return err
	}
	a.logger.Info("Blocks described.", "blocks", len(desc.Blocks), "dynamic", len(desc.Dynamic))
	return a.writeJSON(desc)
}

// ValidationReport summarizes a compiled workflow.
type ValidationReport struct {
	Valid   bool     `json:"valid"`
	Steps   []string `json:"execution_order"`
	Batched bool     `json:"batched"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// Validate compiles the workflow without running it and writes a report.
func (a *App) Validate(ctx context.Context) (*compiler.Graph, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	wf, desc, err := a.loadWorkflow()
	if err != nil {
		return nil, err
	}
	g, err := compiler.Compile(ctx, wf, desc)
	if err != nil {
		return nil, fmt.Errorf("workflow is invalid: %w", err)
	}

	report := &ValidationReport{Valid: true, Steps: g.TopologicalOrder(), Batched: g.Batched()}
	for _, in := range g.Inputs {
		report.Inputs = append(report.Inputs, in.Name)
	}
	for _, out := range g.Outputs {
		report.Outputs = append(report.Outputs, out.Name)
	}
	a.logger.Info("✅ Workflow is valid.", "steps", len(report.Steps))
	return g, a.writeJSON(report)
}

// Run compiles the workflow, executes it over the configured inputs and
// writes one result object per batch element.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	wf, desc, err := a.loadWorkflow()
	if err != nil {
		return err
	}
	inputs, err := a.loadInputs()
	if err != nil {
		return err
	}

	params := executor.InitParameters{
		Mode:        executor.Mode(a.config.ExecutionMode),
		StepTimeout: a.config.StepTimeout,
		Metrics:     a.metrics,
	}
	if params.Mode == executor.ModeRemote {
		backend, err := remote.Dial(ctx, remote.DialOptions{URL: a.config.RemoteURL})
		if err != nil {
			return fmt.Errorf("failed to connect to remote worker: %w", err)
		}
		defer backend.Close()
		params.Backend = backend
	}

	engine, err := executor.Init(ctx, wf, desc, params, a.config.MaxConcurrentSteps)
	if err != nil {
		return fmt.Errorf("workflow is invalid: %w", err)
	}

	a.logger.Info("🚀 Starting workflow execution...")
	results, err := engine.Run(ctx, inputs)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.", "results", len(results))
	return a.writeJSON(results)
}
