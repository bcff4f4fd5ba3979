// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/model"
	"gopkg.in/yaml.v3"
)

// DataLoader reads JSON and YAML documents.
type DataLoader struct{}

// NewDataLoader creates a loader for JSON and YAML documents.
func NewDataLoader() *DataLoader {
	return &DataLoader{}
}

// Extensions implements Loader.
func (l *DataLoader) Extensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

// Load implements Loader.
func (l *DataLoader) Load(ctx context.Context, paths ...string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)
	doc := &Document{}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		data, err := Decode(raw, filepath.Ext(path))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		part, err := Interpret(data, model.NewFSInfo(path))
		if err != nil {
			return nil, err
		}
		if err := doc.Merge(part); err != nil {
			return nil, err
		}
		logger.Debug("Loaded document.", "path", path, "has_workflow", part.Workflow != nil, "blocks", len(part.Blocks))
	}
	return doc, nil
}

// Decode parses raw bytes as JSON or YAML depending on ext into a generic
// tree of maps, slices and scalars.
func Decode(raw []byte, ext string) (any, error) {
	var data any
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&data); err != nil {
			return nil, err
		}
		return data, nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
		return normalize(data), nil
	}
	return nil, fmt.Errorf("unsupported document extension %q", ext)
}

// normalize rewrites YAML mappings with non-string keys so the result has
// the same shape as decoded JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	}
	return v
}

// Interpret classifies a decoded document. A list is a list of dynamic
// blocks. An object with "steps" (optionally wrapped in "specification") is
// a workflow, which may carry inline "dynamic_blocks_definitions". An object
// with "manifest" is a single dynamic block.
func Interpret(data any, src *model.FSInfo) (*Document, error) {
	doc := &Document{}
	switch v := data.(type) {
	case []any:
		blocks, err := model.ParseDynamicBlocks(v, src)
		if err != nil {
			return nil, err
		}
		doc.Blocks = blocks
		return doc, nil

	case map[string]any:
		root := v
		if inner, ok := v["specification"].(map[string]any); ok {
			root = inner
		}
		if defs, ok := root["dynamic_blocks_definitions"]; ok {
			blocks, err := model.ParseDynamicBlocks(map[string]any{"dynamic_blocks_definitions": defs}, src)
			if err != nil {
				return nil, err
			}
			doc.Blocks = blocks
		}
		if _, ok := root["manifest"]; ok {
			blocks, err := model.ParseDynamicBlocks(root, src)
			if err != nil {
				return nil, err
			}
			doc.Blocks = append(doc.Blocks, blocks...)
		}
		if _, ok := root["steps"]; ok {
			wf, err := model.ParseWorkflow(root, src)
			if err != nil {
				return nil, err
			}
			doc.Workflow = wf
		}
		if doc.Workflow == nil && len(doc.Blocks) == 0 {
			return nil, &model.DefinitionError{Source: src.String(), Problems: []string{"$: document holds neither a workflow nor dynamic blocks"}}
		}
		return doc, nil
	}
	return nil, &model.DefinitionError{Source: src.String(), Problems: []string{fmt.Sprintf("$: expected an object or a list, got %T", data)}}
}
