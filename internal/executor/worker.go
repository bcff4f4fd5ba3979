// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/node"
	"github.com/specialistvlad/blockflow/internal/nodestore"
)

// run is the state of one Run call.
type run struct {
	engine *Engine
	store  nodestore.Store
	inputs map[string]any
	size   int

	nodes map[string]*node.Node
	wg    sync.WaitGroup
}

// execute schedules every step onto a pool of workers and waits until each
// one has completed, failed or been skipped.
func (r *run) execute(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	g := r.engine.graph
	order := g.TopologicalOrder()

	r.nodes = make(map[string]*node.Node, len(order))
	for _, name := range order {
		r.nodes[name] = node.New(name, len(g.Dependencies(name)))
	}
	for _, name := range order {
		for _, dep := range g.Dependents(name) {
			r.nodes[name].Dependents = append(r.nodes[name].Dependents, r.nodes[dep])
		}
	}

	readyChan := make(chan *node.Node, len(order))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.wg.Add(len(order))
	roots := 0
	for _, name := range order {
		if n := r.nodes[name]; n.DepCount() == 0 {
			logger.Debug("Found root step.", "step", name)
			readyChan <- n
			roots++
		}
	}

	workers := min(r.engine.workers, max(len(order), 1))
	logger.Debug("Starting worker pool.", "workers", workers, "roots", roots)
	for i := 0; i < workers; i++ {
		go r.worker(runCtx, readyChan, cancel, i)
	}

	r.wg.Wait()
	close(readyChan)
	logger.Debug("All steps completed.")

	for _, name := range order {
		n := r.nodes[name]
		if n.Status() == node.StatusFailed {
			return n.Error
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled: %w", err)
	}
	return nil
}

// worker is the core processing loop for a single concurrent worker.
func (r *run) worker(ctx context.Context, readyChan chan *node.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "step", n.Name)

		if ctx.Err() != nil {
			workerLogger.Warn("Run cancelled, skipping step.")
			r.skip(ctx, n, ctx.Err())
			continue
		}

		workerLogger.Debug("Worker picked up step for execution.")
		n.SetStatus(node.StatusRunning)
		r.recordStatus(ctx, n.Name, node.StatusRunning)

		// Dispatched steps always finish, even if the run is cancelled.
		outputs, err := r.runStep(context.WithoutCancel(ctx), n.Name)
		if err != nil {
			workerLogger.Error("Step execution failed.", "error", err)
			n.Finish(node.StatusFailed, err)
			r.recordFailure(ctx, n.Name, err)
			cancel()
			r.skipDependents(ctx, n)
			r.wg.Done()
			continue
		}

		if err := r.store.SetOutputs(ctx, n.Name, outputs); err != nil {
			workerLogger.Error("Failed to record step outputs.", "error", err)
		}
		n.Finish(node.StatusDone, nil)
		workerLogger.Debug("Step execution succeeded.")

		for _, dependent := range n.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent step.", "dependent", dependent.Name)
				readyChan <- dependent
			}
		}
		r.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// skip marks a queued step as skipped and skips everything downstream.
func (r *run) skip(ctx context.Context, n *node.Node, reason error) {
	if !n.Skip(reason) {
		return
	}
	r.recordFailure(ctx, n.Name, reason)
	r.recordStatus(ctx, n.Name, node.StatusSkipped)
	r.wg.Done()
	r.skipDependents(ctx, n)
}

// skipDependents recursively marks all downstream steps as skipped.
func (r *run) skipDependents(ctx context.Context, n *node.Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.Dependents {
		reason := &upstreamError{step: n.Name}
		if dependent.Status() == node.StatusPending {
			logger.Warn("Skipping dependent step due to upstream failure.", "step", dependent.Name, "dependency", n.Name)
		}
		r.skip(ctx, dependent, reason)
	}
}

// upstreamError is the reason recorded for a skipped step.
type upstreamError struct {
	step string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("skipped due to upstream failure of '%s'", e.step)
}

// recordStatus stores a status change. A rejected write is logged, the run
// goes on.
func (r *run) recordStatus(ctx context.Context, step string, status node.Status) {
	if err := r.store.SetStatus(ctx, step, status); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to record step status.", "step", step, "status", status, "error", err)
	}
}

// recordFailure stores the failure of a step as its completion write.
func (r *run) recordFailure(ctx context.Context, step string, stepErr error) {
	if err := r.store.SetError(ctx, step, stepErr); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to record step failure.", "step", step, "cause", stepErr, "error", err)
	}
}
