// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dynamic

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/specialistvlad/blockflow/internal/manifest"
)

// Block is a compiled dynamic block.
type Block struct {
	def     manifest.Definition
	body    map[string]expr.Node
	outputs []string
}

var _ manifest.Block = (*Block)(nil)

// Definition implements manifest.Block.
func (b *Block) Definition() manifest.Definition {
	return b.def
}

// Expression returns the compiled expression of an output.
func (b *Block) Expression(output string) (expr.Node, bool) {
	n, ok := b.body[output]
	return n, ok
}

// Run evaluates every output expression against params. A batch block
// evaluates its body once per element, broadcasting non-batch parameters,
// and returns one list per output. An unbound optional batch parameter takes
// its default in every element.
func (b *Block) Run(ctx context.Context, params manifest.Params) (manifest.Outputs, error) {
	if !b.def.Batch {
		return b.evaluate(params)
	}

	size := -1
	var batched []string
	for _, p := range b.def.Parameters {
		if !p.Batch {
			continue
		}
		if params[p.Name] == nil && p.Optional {
			continue
		}
		items, ok := params[p.Name].([]any)
		if !ok {
			return nil, fmt.Errorf("batch parameter '%s' must be a list, got %T", p.Name, params[p.Name])
		}
		if size >= 0 && len(items) != size {
			return nil, fmt.Errorf("batch parameter '%s' has %d elements, expected %d", p.Name, len(items), size)
		}
		size = len(items)
		batched = append(batched, p.Name)
	}
	if size < 0 {
		size = 1
	}

	out := make(manifest.Outputs, len(b.outputs))
	for _, name := range b.outputs {
		out[name] = make([]any, size)
	}
	for i := 0; i < size; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		elem := make(manifest.Params, len(params))
		for k, v := range params {
			if v != nil {
				elem[k] = v
			}
		}
		for _, name := range batched {
			elem[name] = params[name].([]any)[i]
		}
		res, err := b.evaluate(elem)
		if err != nil {
			return nil, fmt.Errorf("batch element %d: %w", i, err)
		}
		for _, name := range b.outputs {
			out[name].([]any)[i] = res[name]
		}
	}
	return out, nil
}

func (b *Block) evaluate(params manifest.Params) (manifest.Outputs, error) {
	scope := make(map[string]any, len(b.def.Parameters))
	for _, p := range b.def.Parameters {
		v, ok := params[p.Name]
		if !ok {
			v = p.Default
		}
		scope[p.Name] = v
	}

	out := make(manifest.Outputs, len(b.outputs))
	for _, name := range b.outputs {
		v, err := expr.Eval(b.body[name], scope)
		if err != nil {
			return nil, fmt.Errorf("output '%s': %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
