// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package executor runs compiled workflows.
//
// An Engine is created once per workflow with Init, which compiles the graph
// and binds the engine-level collaborators. Every call to Run gets its own
// execution state and its own bounded worker pool, so runs never share
// anything mutable.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/blockflow/internal/compiler"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/metrics"
	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/specialistvlad/blockflow/internal/registry"
)

// Mode selects where delegable blocks run.
type Mode string

const (
	// ModeLocal runs every block in-process.
	ModeLocal Mode = "local"
	// ModeRemote sends delegable blocks to the Backend.
	ModeRemote Mode = "remote"
)

// ParseMode parses a mode name. An empty name is ModeLocal.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeLocal:
		return ModeLocal, nil
	case ModeRemote:
		return ModeRemote, nil
	}
	return "", fmt.Errorf("unknown execution mode %q, expected local or remote", s)
}

// Backend runs a block outside the process.
type Backend interface {
	Invoke(ctx context.Context, blockType string, params manifest.Params) (manifest.Outputs, error)
}

// InitParameters are the engine-level collaborators.
type InitParameters struct {
	Mode Mode
	// Backend is required in ModeRemote.
	Backend Backend
	// StepTimeout bounds every block invocation. Zero means no limit. A block
	// that ignores its context keeps running after the timeout while the
	// worker moves on, so its body may overlap later steps even with one
	// worker.
	StepTimeout time.Duration
	// Metrics may be nil.
	Metrics        *metrics.Collector
	CompileOptions []compiler.Option
}

// Engine executes one compiled workflow any number of times.
type Engine struct {
	graph   *compiler.Graph
	kinds   *kind.Registry
	workers int
	params  InitParameters
}

// Init compiles the workflow and binds the engine collaborators.
func Init(ctx context.Context, wf *model.Workflow, desc *registry.BlocksDescription, params InitParameters, maxConcurrentSteps int) (*Engine, error) {
	logger := ctxlog.FromContext(ctx)

	if maxConcurrentSteps < 1 {
		return nil, fmt.Errorf("max concurrent steps must be at least 1, got %d", maxConcurrentSteps)
	}
	if params.StepTimeout < 0 {
		return nil, fmt.Errorf("step timeout must not be negative, got %s", params.StepTimeout)
	}
	mode, err := ParseMode(string(params.Mode))
	if err != nil {
		return nil, err
	}
	params.Mode = mode
	if mode == ModeRemote && params.Backend == nil {
		return nil, fmt.Errorf("execution mode %s requires a backend", mode)
	}

	g, err := compiler.Compile(ctx, wf, desc, params.CompileOptions...)
	if err != nil {
		return nil, err
	}

	logger.Debug("Engine initialized.", "steps", len(g.Steps()), "workers", maxConcurrentSteps, "mode", mode, "step_timeout", params.StepTimeout)
	return &Engine{
		graph:   g,
		kinds:   desc.Kinds(),
		workers: maxConcurrentSteps,
		params:  params,
	}, nil
}

// Graph returns the compiled workflow.
func (e *Engine) Graph() *compiler.Graph {
	return e.graph
}
