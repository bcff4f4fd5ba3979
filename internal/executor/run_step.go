// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/blockflow/internal/compiler"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/metrics"
)

// runStep executes one step for every batch element and returns one output
// mapping per element.
//
// Non-batched steps run once and their result is shared by every element.
// Batched steps either run once over the whole batch (batch-capable blocks)
// or once per element (scalar blocks). Elements whose parameters carry
// NoOutput are not invoked and propagate NoOutput.
func (r *run) runStep(ctx context.Context, name string) ([]manifest.Outputs, error) {
	st, _ := r.engine.graph.Step(name)
	logger := ctxlog.FromContext(ctx).With("step", name, "block_type", st.Manifest.Type)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("▶️ Starting step", "batched", st.Batched)

	var (
		outputs []manifest.Outputs
		err     error
	)
	switch {
	case !st.Batched:
		outputs, err = r.runOnce(ctx, st)
	case st.Manifest.Batch:
		outputs, err = r.runBatch(ctx, st)
	default:
		outputs, err = r.runPerElement(ctx, st)
	}
	if err != nil {
		return nil, &StepExecutionError{Step: name, BlockType: st.Manifest.Type, Cause: err}
	}

	logger.Info("✅ Finished step")
	return outputs, nil
}

func (r *run) runOnce(ctx context.Context, st *compiler.Step) ([]manifest.Outputs, error) {
	logger := ctxlog.FromContext(ctx)

	params, active, err := r.params(ctx, st, 0)
	if err != nil {
		return nil, err
	}

	out := noOutputs(st)
	if !active {
		logger.Debug("Parameters carry no output, propagating.")
		return repeat(out, r.size), nil
	}

	if st.Manifest.Batch {
		for _, p := range st.Manifest.Parameters {
			if v, ok := params[p.Name]; ok && p.Batch {
				params[p.Name] = []any{v}
			}
		}
	}

	res, err := r.invoke(ctx, st, params)
	if err == nil && st.Manifest.Batch {
		var split []manifest.Outputs
		if split, err = splitBatch(st, res, 1); err == nil {
			res = split[0]
		}
	}
	switch {
	case err == nil:
		out = complete(st, res)
	case st.Manifest.ErrorPolicy == manifest.ErrorPolicyTolerate:
		logger.Warn("Step failed, recording no output.", "error", err)
	default:
		return nil, err
	}
	return repeat(out, r.size), nil
}

func (r *run) runBatch(ctx context.Context, st *compiler.Step) ([]manifest.Outputs, error) {
	logger := ctxlog.FromContext(ctx)

	results := make([]manifest.Outputs, r.size)
	elems := make([]manifest.Params, r.size)
	var active []int
	for i := 0; i < r.size; i++ {
		params, ok, err := r.params(ctx, st, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			results[i] = noOutputs(st)
			continue
		}
		elems[i] = params
		active = append(active, i)
	}
	if len(active) == 0 {
		logger.Debug("No batch element is active, propagating no output.")
		return results, nil
	}

	call := make(manifest.Params, len(st.Bindings))
	for _, p := range st.Manifest.Parameters {
		if _, bound := st.Bindings[p.Name]; !bound {
			continue
		}
		if !p.Batch {
			call[p.Name] = elems[active[0]][p.Name]
			continue
		}
		list := make([]any, len(active))
		for j, i := range active {
			list[j] = elems[i][p.Name]
		}
		call[p.Name] = list
	}

	logger.Debug("Invoking batch block.", "elements", len(active), "batch_size", r.size)
	res, err := r.invoke(ctx, st, call)
	var split []manifest.Outputs
	if err == nil {
		split, err = splitBatch(st, res, len(active))
	}
	if err != nil {
		if st.Manifest.ErrorPolicy != manifest.ErrorPolicyTolerate {
			return nil, err
		}
		logger.Warn("Batch invocation failed, recording no output for its elements.", "elements", len(active), "error", err)
		for _, i := range active {
			results[i] = noOutputs(st)
		}
		return results, nil
	}
	for j, i := range active {
		results[i] = split[j]
	}
	return results, nil
}

func (r *run) runPerElement(ctx context.Context, st *compiler.Step) ([]manifest.Outputs, error) {
	logger := ctxlog.FromContext(ctx)

	results := make([]manifest.Outputs, r.size)
	for i := 0; i < r.size; i++ {
		params, ok, err := r.params(ctx, st, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Debug("Parameters carry no output, propagating.", "element", i)
			results[i] = noOutputs(st)
			continue
		}

		res, err := r.invoke(ctx, st, params)
		switch {
		case err == nil:
			results[i] = complete(st, res)
		case st.Manifest.ErrorPolicy == manifest.ErrorPolicyTolerate:
			logger.Warn("Step failed for element, recording no output.", "element", i, "error", err)
			results[i] = noOutputs(st)
		default:
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return results, nil
}

// invoke calls the block once, locally or through the remote backend. The
// step timeout applies to each call and is enforced even if the block
// ignores its context.
func (r *run) invoke(ctx context.Context, st *compiler.Step, params manifest.Params) (manifest.Outputs, error) {
	e := r.engine
	if e.params.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.params.StepTimeout)
		defer cancel()
	}

	call := st.Block.Run
	if e.params.Mode == ModeRemote && st.Manifest.Delegable {
		call = func(ctx context.Context, p manifest.Params) (manifest.Outputs, error) {
			return e.params.Backend.Invoke(ctx, st.Manifest.Type, p)
		}
	}

	type result struct {
		out manifest.Outputs
		err error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("block panicked: %v", rec)}
			}
		}()
		out, err := call(ctx, params)
		done <- result{out: out, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: fmt.Errorf("invocation timed out after %s: %w", e.params.StepTimeout, ctx.Err())}
	}

	status := metrics.StatusSucceeded
	switch {
	case res.err == nil:
	case st.Manifest.ErrorPolicy == manifest.ErrorPolicyTolerate:
		status = metrics.StatusTolerated
	default:
		status = metrics.StatusFailed
	}
	e.params.Metrics.StepInvoked(st.Manifest.Type, status, time.Since(start))
	return res.out, res.err
}

// splitBatch turns the outputs of a batch invocation, one list per output,
// into one mapping per element.
func splitBatch(st *compiler.Step, res manifest.Outputs, n int) ([]manifest.Outputs, error) {
	out := make([]manifest.Outputs, n)
	for i := range out {
		out[i] = make(manifest.Outputs, len(st.Manifest.Outputs))
	}
	for _, o := range st.Manifest.Outputs {
		list, ok := asList(res[o.Name])
		if !ok || len(list) != n {
			return nil, fmt.Errorf("batch block returned %T for output '%s', expected a list of %d elements", res[o.Name], o.Name, n)
		}
		for i, v := range list {
			out[i][o.Name] = v
		}
	}
	return out, nil
}

// complete returns res with every declared output present.
func complete(st *compiler.Step, res manifest.Outputs) manifest.Outputs {
	out := make(manifest.Outputs, len(st.Manifest.Outputs))
	for k, v := range res {
		out[k] = v
	}
	for _, o := range st.Manifest.Outputs {
		if _, ok := out[o.Name]; !ok {
			out[o.Name] = nil
		}
	}
	return out
}

// noOutputs is the mapping recorded for an element a step produced nothing
// for.
func noOutputs(st *compiler.Step) manifest.Outputs {
	out := make(manifest.Outputs, len(st.Manifest.Outputs))
	for _, o := range st.Manifest.Outputs {
		out[o.Name] = manifest.NoOutput
	}
	return out
}

func repeat(out manifest.Outputs, n int) []manifest.Outputs {
	res := make([]manifest.Outputs, n)
	for i := range res {
		res[i] = out
	}
	return res
}
