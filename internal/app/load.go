// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/blockflow/internal/config"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/specialistvlad/blockflow/internal/registry"
)

// loadBlocks loads the dynamic block documents. A workflow found among them
// is ignored.
func (a *App) loadBlocks() ([]*model.DynamicBlockDefinition, error) {
	if len(a.config.BlockPaths) == 0 {
		return nil, nil
	}
	doc, err := a.loader.Load(a.ctx, a.config.BlockPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load block definitions: %w", err)
	}
	return doc.Blocks, nil
}

// loadWorkflow loads the workflow document together with the block
// documents and builds the request-scoped block catalog. Blocks defined
// inline in the workflow document are part of the catalog.
func (a *App) loadWorkflow() (*model.Workflow, *registry.BlocksDescription, error) {
	logger := ctxlog.FromContext(a.ctx)
	if a.config.WorkflowPath == "" {
		return nil, nil, fmt.Errorf("no workflow path given")
	}

	doc, err := a.loader.Load(a.ctx, a.config.WorkflowPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	if doc.Workflow == nil {
		return nil, nil, fmt.Errorf("no workflow found in %s", a.config.WorkflowPath)
	}
	blocks, err := a.loadBlocks()
	if err != nil {
		return nil, nil, err
	}
	defs := append(doc.Blocks, blocks...)

	desc, err := registry.Load(a.ctx, a.kinds, a.static, defs)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Workflow loaded.", "path", a.config.WorkflowPath, "steps", len(doc.Workflow.Steps), "dynamic_blocks", len(defs))
	return doc.Workflow, desc, nil
}

// loadInputs reads the runtime parameters. No inputs file means no
// parameters.
func (a *App) loadInputs() (map[string]any, error) {
	if a.config.InputsPath == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(a.config.InputsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs: %w", err)
	}
	data, err := config.Decode(raw, filepath.Ext(a.config.InputsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to decode inputs %s: %w", a.config.InputsPath, err)
	}
	if data == nil {
		return map[string]any{}, nil
	}
	inputs, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("inputs %s must be an object of input names to values, got %T", a.config.InputsPath, data)
	}
	return inputs, nil
}

// writeJSON writes v as indented JSON to the output file or writer.
func (a *App) writeJSON(v any) error {
	var w io.Writer = a.outW
	if a.config.OutputPath != "" {
		f, err := os.Create(a.config.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
