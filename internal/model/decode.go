// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file turns generic decoded documents (map[string]any trees from JSON
// or YAML) into model values.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// DefinitionError reports every structural problem found in a document.
type DefinitionError struct {
	Source   string
	Problems []string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid definition in %s:\n- %s", e.Source, strings.Join(e.Problems, "\n- "))
}

// reader walks a generic document and accumulates problems instead of
// stopping at the first one.
type reader struct {
	problems []string
}

func (r *reader) fail(path, format string, args ...any) {
	r.problems = append(r.problems, path+": "+fmt.Sprintf(format, args...))
}

func (r *reader) object(v any, path string) map[string]any {
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		r.fail(path, "expected an object, got %T", v)
		return nil
	}
	return m
}

func (r *reader) list(v any, path string) []any {
	if v == nil {
		return nil
	}
	l, ok := v.([]any)
	if !ok {
		r.fail(path, "expected a list, got %T", v)
		return nil
	}
	return l
}

func (r *reader) str(m map[string]any, key, path string, required bool) string {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			r.fail(path+"."+key, "is required")
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(path+"."+key, "expected a string, got %T", v)
		return ""
	}
	if required && s == "" {
		r.fail(path+"."+key, "must not be empty")
	}
	return s
}

func (r *reader) boolean(m map[string]any, key, path string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(path+"."+key, "expected a boolean, got %T", v)
	}
	return b
}

// strings accepts either a single string or a list of strings.
func (r *reader) strings(m map[string]any, key, path string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return []string{s}
	}
	items := r.list(v, path+"."+key)
	out := make([]string, 0, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			r.fail(fmt.Sprintf("%s.%s[%d]", path, key, i), "expected a string, got %T", it)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r *reader) err(src *FSInfo) error {
	if len(r.problems) == 0 {
		return nil
	}
	return &DefinitionError{Source: src.String(), Problems: r.problems}
}

// ParseWorkflow builds a Workflow from a decoded document of the form
//
//	{"version": "1.0",
//	 "inputs":  [{"type": "WorkflowImage", "name": "image"}],
//	 "steps":   [{"type": "...", "name": "...", <params>}],
//	 "outputs": [{"type": "JsonField", "name": "...", "selector": "..."}]}
func ParseWorkflow(raw any, src *FSInfo) (*Workflow, error) {
	r := &reader{}
	root := r.object(raw, "$")
	if root == nil {
		if len(r.problems) == 0 {
			r.fail("$", "document is empty")
		}
		return nil, r.err(src)
	}
	if def, ok := root["specification"]; ok {
		root = r.object(def, "$.specification")
		if root == nil {
			return nil, r.err(src)
		}
	}

	wf := &Workflow{FSInformation: src}
	wf.Version = r.str(root, "version", "$", false)

	for i, it := range r.list(root["inputs"], "$.inputs") {
		path := fmt.Sprintf("$.inputs[%d]", i)
		m := r.object(it, path)
		if m == nil {
			continue
		}
		in := &Input{
			Type:  InputType(r.str(m, "type", path, true)),
			Name:  r.str(m, "name", path, true),
			Kinds: r.strings(m, "kind", path),
		}
		if in.Type != "" && !in.Type.Known() {
			r.fail(path+".type", "unknown input type %q", in.Type)
		}
		if def, ok := m["default_value"]; ok {
			in.Default = def
			in.HasDefault = true
		}
		wf.Inputs = append(wf.Inputs, in)
	}

	for i, it := range r.list(root["steps"], "$.steps") {
		path := fmt.Sprintf("$.steps[%d]", i)
		m := r.object(it, path)
		if m == nil {
			continue
		}
		st := &Step{
			Type:          r.str(m, "type", path, true),
			Name:          r.str(m, "name", path, true),
			Params:        make(map[string]any, len(m)),
			FSInformation: src,
		}
		for k, v := range m {
			if k == "type" || k == "name" {
				continue
			}
			st.Params[k] = v
		}
		wf.Steps = append(wf.Steps, st)
	}

	for i, it := range r.list(root["outputs"], "$.outputs") {
		path := fmt.Sprintf("$.outputs[%d]", i)
		m := r.object(it, path)
		if m == nil {
			continue
		}
		out := &Output{
			Type:              r.str(m, "type", path, false),
			Name:              r.str(m, "name", path, true),
			Selector:          r.str(m, "selector", path, true),
			CoordinatesSystem: r.str(m, "coordinates_system", path, false),
		}
		if out.Type == "" {
			out.Type = "JsonField"
		}
		if out.CoordinatesSystem == "" {
			out.CoordinatesSystem = "own"
		}
		wf.Outputs = append(wf.Outputs, out)
	}

	if err := r.err(src); err != nil {
		return nil, err
	}
	return wf, nil
}

// ParseDynamicBlocks accepts a single definition, a list of definitions, or
// an object holding them under "dynamic_blocks_definitions".
func ParseDynamicBlocks(raw any, src *FSInfo) ([]*DynamicBlockDefinition, error) {
	r := &reader{}
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		if nested, ok := v["dynamic_blocks_definitions"]; ok {
			items = r.list(nested, "$.dynamic_blocks_definitions")
		} else {
			items = []any{v}
		}
	case nil:
		return nil, nil
	default:
		r.fail("$", "expected an object or a list, got %T", raw)
	}

	defs := make([]*DynamicBlockDefinition, 0, len(items))
	for i, it := range items {
		if def := parseDynamicBlock(r, it, fmt.Sprintf("$[%d]", i), src); def != nil {
			defs = append(defs, def)
		}
	}
	if err := r.err(src); err != nil {
		return nil, err
	}
	return defs, nil
}

func parseDynamicBlock(r *reader, raw any, path string, src *FSInfo) *DynamicBlockDefinition {
	root := r.object(raw, path)
	if root == nil {
		return nil
	}
	mpath := path + ".manifest"
	m := r.object(root["manifest"], mpath)
	if m == nil {
		r.fail(mpath, "is required")
		return nil
	}

	def := &DynamicBlockDefinition{FSInformation: src}
	man := &def.Manifest
	man.Type = r.str(m, "block_type", mpath, true)
	man.Name = r.str(m, "name", mpath, false)
	man.Description = r.str(m, "description", mpath, false)
	man.Category = r.str(m, "block_category", mpath, false)
	man.License = r.str(m, "license", mpath, false)
	man.Tags = r.strings(m, "tags", mpath)
	man.Batch = r.boolean(m, "accepts_batch_input", mpath)
	man.ErrorPolicy = r.str(m, "error_policy", mpath, false)

	inputs := r.object(m["inputs"], mpath+".inputs")
	for _, name := range sortedKeys(inputs) {
		ipath := mpath + ".inputs." + name
		im := r.object(inputs[name], ipath)
		if im == nil {
			continue
		}
		in := &DynamicInput{
			Name:        name,
			Description: r.str(im, "description", ipath, false),
			Accepts:     r.str(im, "accepts", ipath, false),
			Kinds:       r.strings(im, "kind", ipath),
			Container:   r.str(im, "container", ipath, false),
			ValueType:   r.str(im, "value_type", ipath, false),
			Optional:    r.boolean(im, "is_optional", ipath),
			Batch:       r.boolean(im, "batch", ipath),
		}
		if dv, ok := im["default_value"]; ok {
			in.Default = dv
			in.HasDefault = true
		}
		man.Inputs = append(man.Inputs, in)
	}

	outputs := r.object(m["outputs"], mpath+".outputs")
	for _, name := range sortedKeys(outputs) {
		opath := mpath + ".outputs." + name
		om := r.object(outputs[name], opath)
		if om == nil {
			continue
		}
		man.Outputs = append(man.Outputs, &DynamicOutput{
			Name:        name,
			Description: r.str(om, "description", opath, false),
			Kinds:       r.strings(om, "kind", opath),
		})
	}

	for i, it := range r.list(m["kinds"], mpath+".kinds") {
		kpath := fmt.Sprintf("%s.kinds[%d]", mpath, i)
		km := r.object(it, kpath)
		if km == nil {
			continue
		}
		man.Kinds = append(man.Kinds, &DynamicKind{
			Name:        r.str(km, "name", kpath, true),
			Description: r.str(km, "description", kpath, false),
		})
	}

	body := r.object(root["body"], path+".body")
	if body != nil {
		if outs, ok := body["outputs"]; ok {
			def.Body = r.object(outs, path+".body.outputs")
		} else {
			def.Body = body
		}
	}
	return def
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
