// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package print provides core/print@v1, which writes a value to the
// console and passes it through unchanged.
package print

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Type is the manifest type identifier of the block.
const Type = "core/print@v1"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out defaults to os.Stdout.
	Out io.Writer
}

// Register registers the block.
func (m *Module) Register(r *registry.Static) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.Add(&Block{out: out})
}

// Block is the print block.
type Block struct {
	mu  sync.Mutex
	out io.Writer
}

// Definition implements manifest.Block.
func (b *Block) Definition() manifest.Definition {
	return manifest.Definition{
		Type:             Type,
		Name:             "Print",
		ShortDescription: "Writes a value to the console.",
		LongDescription:  "Writes the value as JSON, prefixed with its label, and returns it unchanged so it can feed further steps.",
		Category:         "sink",
		License:          "MIT",
		Tags:             []string{"debug", "console"},
		Parameters: []manifest.ParameterDefinition{
			{Name: "value", Description: "Value to print.", Accepts: manifest.AcceptsEither, Kinds: []string{kind.Wildcard}},
			{Name: "label", Description: "Prefix of the printed line.", Accepts: manifest.AcceptsLiteral, Type: cty.String, Default: "value"},
		},
		Outputs: []manifest.OutputDefinition{
			{Name: "value", Description: "The printed value.", Kinds: []string{kind.Wildcard}},
		},
	}
}

// Run implements manifest.Block.
func (b *Block) Run(ctx context.Context, params manifest.Params) (manifest.Outputs, error) {
	logger := ctxlog.FromContext(ctx)
	label, _ := params["label"].(string)
	value := params["value"]

	text, err := json.Marshal(value)
	if err != nil {
		text = []byte(fmt.Sprintf("%v", value))
	}
	logger.Info("Printing value", "label", label)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := fmt.Fprintf(b.out, "      %s = %s\n", label, text); err != nil {
		return nil, fmt.Errorf("failed to print: %w", err)
	}
	return manifest.Outputs{"value": value}, nil
}
