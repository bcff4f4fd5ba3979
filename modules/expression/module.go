// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package expression provides core/expression@v1, which evaluates an
// expression over a dictionary of named values.
package expression

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/specialistvlad/blockflow/internal/hcl_adapter"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/registry"
)

// Type is the manifest type identifier of the block.
const Type = "core/expression@v1"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the block.
func (m *Module) Register(r *registry.Static) {
	r.Add(&Block{})
}

// Block is the expression block.
type Block struct{}

// Definition implements manifest.Block.
func (b *Block) Definition() manifest.Definition {
	return manifest.Definition{
		Type:             Type,
		Name:             "Expression",
		ShortDescription: "Evaluates an expression over named values.",
		LongDescription: "The expression is either an HCL expression string such as \"count > 2 ? \\\"many\\\" : \\\"few\\\"\" " +
			"or the object form of an expression tree. Every entry of data is available by name.",
		Category: "transformation",
		License:  "MIT",
		Tags:     []string{"logic", "math"},
		Parameters: []manifest.ParameterDefinition{
			{Name: "data", Description: "Named values the expression reads.", Accepts: manifest.AcceptsEither, Kinds: []string{kind.Wildcard}, Container: manifest.ContainerDict, Default: map[string]any{}},
			{Name: "expression", Description: "Expression to evaluate.", Accepts: manifest.AcceptsLiteral},
		},
		Outputs: []manifest.OutputDefinition{
			{Name: "output", Description: "Result of the expression.", Kinds: []string{kind.Wildcard}},
		},
	}
}

// Run implements manifest.Block.
func (b *Block) Run(ctx context.Context, params manifest.Params) (manifest.Outputs, error) {
	logger := ctxlog.FromContext(ctx)

	n, err := parse(params["expression"])
	if err != nil {
		return nil, fmt.Errorf("invalid expression: %w", err)
	}
	data, _ := params["data"].(map[string]any)

	v, err := expr.Eval(n, data)
	if err != nil {
		return nil, err
	}
	logger.Debug("Evaluated expression.", "variant", n.Variant())
	return manifest.Outputs{"output": v}, nil
}

func parse(raw any) (expr.Node, error) {
	switch v := raw.(type) {
	case string:
		return hcl_adapter.ParseExpression(v)
	case map[string]any:
		return expr.Decode(v)
	}
	return nil, fmt.Errorf("expected an expression string or object, got %T", raw)
}
