// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package executor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockflow/internal/compiler"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/selector"
)

// params resolves the bindings of a step for batch element i. It reports
// false when any resolved value carries NoOutput.
func (r *run) params(ctx context.Context, st *compiler.Step, i int) (manifest.Params, bool, error) {
	params := make(manifest.Params, len(st.Bindings))
	for name, b := range st.Bindings {
		v, err := r.resolve(ctx, b.Value, i)
		if err != nil {
			return nil, false, fmt.Errorf("parameter '%s': %w", name, err)
		}
		if containsNoOutput(v) {
			return nil, false, nil
		}
		params[name] = v
	}
	return params, true, nil
}

// resolve replaces every selector in v with its value for element i.
func (r *run) resolve(ctx context.Context, v any, i int) (any, error) {
	switch t := v.(type) {
	case *selector.Selector:
		return r.lookup(ctx, t, i)
	case []any:
		out := make([]any, len(t))
		for j, item := range t {
			resolved, err := r.resolve(ctx, item, i)
			if err != nil {
				return nil, err
			}
			out[j] = resolved
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			resolved, err := r.resolve(ctx, item, i)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	}
	return v, nil
}

// lookup returns the value a selector points at for element i. Steps are
// only read after their completion has been signalled.
func (r *run) lookup(ctx context.Context, sel *selector.Selector, i int) (any, error) {
	if sel.Scope == selector.Inputs {
		v := r.inputs[sel.Name]
		if in, _ := r.engine.graph.Input(sel.Name); in != nil && in.Batched {
			if elems, ok := v.([]any); ok {
				return elems[i], nil
			}
		}
		return v, nil
	}

	select {
	case <-r.store.Done(sel.Name):
	default:
		return nil, fmt.Errorf("step '%s' has not completed", sel.Name)
	}
	outputs, err := r.store.GetOutputs(ctx, sel.Name)
	if err != nil {
		return nil, err
	}
	if outputs == nil {
		return nil, fmt.Errorf("step '%s' produced no outputs", sel.Name)
	}

	elem := outputs[i]
	if sel.IsWildcard() {
		return wholeOutputs(elem), nil
	}
	return elem[sel.Field], nil
}

// wholeOutputs copies an element's outputs. An element with only NoOutput
// values is NoOutput itself.
func wholeOutputs(elem manifest.Outputs) any {
	if len(elem) > 0 {
		empty := true
		for _, v := range elem {
			if !manifest.IsNoOutput(v) {
				empty = false
				break
			}
		}
		if empty {
			return manifest.NoOutput
		}
	}
	out := make(map[string]any, len(elem))
	for k, v := range elem {
		out[k] = v
	}
	return out
}

func containsNoOutput(v any) bool {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if containsNoOutput(item) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, item := range t {
			if containsNoOutput(item) {
				return true
			}
		}
		return false
	}
	return manifest.IsNoOutput(v)
}
