// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package property provides core/property_definition@v1, which extracts
// data from a step output with a JSONPath expression.
package property

import (
	"context"
	"fmt"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Type is the manifest type identifier of the block.
const Type = "core/property_definition@v1"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the block.
func (m *Module) Register(r *registry.Static) {
	r.Add(&Block{})
}

// Block is the property extraction block. Parsed paths are cached because
// the same literal path is evaluated for every batch element.
type Block struct {
	paths sync.Map // string -> jp.Expr
}

// Definition implements manifest.Block.
func (b *Block) Definition() manifest.Definition {
	return manifest.Definition{
		Type:             Type,
		Name:             "Property Definition",
		ShortDescription: "Extracts a property from data with a JSONPath expression.",
		LongDescription: "Evaluates the JSONPath expression against the data. A single match is returned as is, " +
			"several matches as a list. With no match the default is returned.",
		Category: "formatter",
		License:  "MIT",
		Tags:     []string{"jsonpath", "extract"},
		Parameters: []manifest.ParameterDefinition{
			{Name: "data", Description: "Data to extract from.", Accepts: manifest.AcceptsSelector, Kinds: []string{kind.Wildcard}},
			{Name: "path", Description: "JSONPath expression, for example $.predictions[*].class.", Accepts: manifest.AcceptsLiteral, Type: cty.String, Examples: []any{"$.predictions[*].class"}},
			{Name: "default", Description: "Value returned when nothing matches.", Accepts: manifest.AcceptsLiteral, Optional: true},
		},
		Outputs: []manifest.OutputDefinition{
			{Name: "output", Description: "Extracted value.", Kinds: []string{kind.Wildcard}},
		},
		Delegable: true,
	}
}

// Run implements manifest.Block.
func (b *Block) Run(ctx context.Context, params manifest.Params) (manifest.Outputs, error) {
	logger := ctxlog.FromContext(ctx)

	path, _ := params["path"].(string)
	x, err := b.parse(path)
	if err != nil {
		return nil, err
	}

	results := x.Get(params["data"])
	logger.Debug("Evaluated JSONPath.", "path", path, "matches", len(results))
	switch len(results) {
	case 0:
		return manifest.Outputs{"output": params["default"]}, nil
	case 1:
		return manifest.Outputs{"output": results[0]}, nil
	}
	return manifest.Outputs{"output": results}, nil
}

func (b *Block) parse(path string) (jp.Expr, error) {
	if x, ok := b.paths.Load(path); ok {
		return x.(jp.Expr), nil
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath expression '%s': %w", path, err)
	}
	b.paths.Store(path, x)
	return x, nil
}
