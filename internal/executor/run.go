// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/specialistvlad/blockflow/internal/compiler"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/specialistvlad/blockflow/internal/inmemorystore"
	"github.com/specialistvlad/blockflow/internal/metrics"
)

// RunState is the lifecycle state of one Run call.
type RunState string

const (
	RunPending   RunState = "pending"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// Run executes the workflow over the given runtime parameters and returns
// one output mapping per batch element, in input order.
//
// A batched input may be given as a list (one element per batch entry) or
// as a single value (a batch of one). Non-batched inputs are broadcast to
// every element.
func (e *Engine) Run(ctx context.Context, runtime map[string]any) ([]map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Debug("Run state changed.", "state", RunPending)
	e.params.Metrics.RunStarted()
	status := metrics.StatusFailed
	defer func() { e.params.Metrics.RunFinished(status) }()

	inputs, size, err := e.prepareInputs(runtime)
	if err != nil {
		logger.Error("Run rejected.", "state", RunFailed, "error", err)
		return nil, err
	}

	logger.Info("▶️ Starting run", "state", RunRunning, "batch_size", size, "steps", len(e.graph.Steps()))
	if size == 0 {
		logger.Info("✅ Finished run", "state", RunCompleted, "batch_size", 0)
		status = metrics.StatusCompleted
		return []map[string]any{}, nil
	}

	r := &run{
		engine: e,
		store:  inmemorystore.New(),
		inputs: inputs,
		size:   size,
	}
	if err := r.execute(ctx); err != nil {
		if ctx.Err() != nil {
			status = metrics.StatusCancelled
		}
		logger.Error("Run finished.", "state", RunFailed, "error", err)
		return nil, err
	}

	results, err := r.collectOutputs(ctx)
	if err != nil {
		logger.Error("Run finished.", "state", RunFailed, "error", err)
		return nil, err
	}
	status = metrics.StatusCompleted
	logger.Info("✅ Finished run", "state", RunCompleted, "batch_size", size)
	return results, nil
}

// prepareInputs applies defaults, validates kinds and determines the batch
// size. Batched inputs are returned as []any; a nil entry means the input
// has no value for any element.
func (e *Engine) prepareInputs(runtime map[string]any) (map[string]any, int, error) {
	values := make(map[string]any, len(e.graph.Inputs))
	sizes := make(map[string]int)

	for _, in := range e.graph.Inputs {
		v, ok := runtime[in.Name]
		if !ok || v == nil {
			switch {
			case in.HasDefault:
				v = in.Default
			case in.Required():
				return nil, 0, &InputValidationError{Input: in.Name, Reason: "required input is missing"}
			}
		}

		if !in.Batched || v == nil {
			if err := e.validate(in, v); err != nil {
				return nil, 0, &InputValidationError{Input: in.Name, Reason: err.Error()}
			}
			values[in.Name] = v
			continue
		}

		elems, isList := asList(v)
		if !isList {
			elems = []any{v}
		}
		for i, el := range elems {
			if err := e.validate(in, el); err != nil {
				return nil, 0, &InputValidationError{Input: in.Name, Reason: fmt.Sprintf("element %d: %v", i, err)}
			}
		}
		values[in.Name] = elems
		sizes[in.Name] = len(elems)
	}

	size := 1
	for i, name := range ctyconv.SortedKeys(sizes) {
		if i == 0 {
			size = sizes[name]
			continue
		}
		if sizes[name] != size {
			return nil, 0, &BatchSizeMismatchError{Sizes: sizes}
		}
	}
	return values, size, nil
}

// validate checks v against the input's kinds: any one kind accepting it is
// enough. A nil value is always accepted.
func (e *Engine) validate(in *compiler.Input, v any) error {
	if v == nil {
		return nil
	}
	kinds, err := e.kinds.ResolveSet(in.Kinds)
	if err != nil {
		return err
	}
	for _, k := range kinds {
		if k.Accepts(v) {
			return nil
		}
	}
	return fmt.Errorf("value of type %T is not a valid %s", v, in.Kinds)
}

// asList converts any slice other than []byte to []any.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// collectOutputs resolves every declared output for every batch element.
func (r *run) collectOutputs(ctx context.Context) ([]map[string]any, error) {
	results := make([]map[string]any, r.size)
	for i := range results {
		m := make(map[string]any, len(r.engine.graph.Outputs))
		for _, o := range r.engine.graph.Outputs {
			v, err := r.lookup(ctx, o.Selector, i)
			if err != nil {
				return nil, fmt.Errorf("output '%s': %w", o.Name, err)
			}
			m[o.Name] = v
		}
		results[i] = m
	}
	return results, nil
}
