// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dynamic

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/specialistvlad/blockflow/internal/hcl_adapter"
	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// Category is the catalog category given to dynamic blocks that do not name
// one.
const Category = "dynamic"

// Compile turns definitions into blocks. Kinds declared by the definitions
// are registered in kinds, which should be a request-scoped child of the
// process registry. Two definitions sharing a type identifier fail with
// manifest.DuplicateBlockTypeError.
func Compile(ctx context.Context, defs []*model.DynamicBlockDefinition, kinds *kind.Registry) ([]manifest.Block, error) {
	logger := ctxlog.FromContext(ctx)

	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		t := def.Manifest.Type
		if _, dup := seen[t]; dup && t != "" {
			return nil, &manifest.DuplicateBlockTypeError{Type: t}
		}
		seen[t] = struct{}{}
	}

	// Kinds first, so a definition may use a kind declared by another one.
	for _, def := range defs {
		for _, k := range def.Manifest.Kinds {
			if err := kinds.Register(kind.Kind{Name: k.Name, Description: k.Description}); err != nil {
				return nil, &InvalidDynamicBlockError{
					Type:     def.Manifest.Type,
					Source:   def.FSInformation.String(),
					Problems: []string{err.Error()},
				}
			}
		}
	}

	blocks := make([]manifest.Block, 0, len(defs))
	for _, def := range defs {
		b, err := compileOne(def, kinds)
		if err != nil {
			return nil, err
		}
		logger.Debug("Compiled dynamic block.", "block_type", def.Manifest.Type, "outputs", len(b.outputs))
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func compileOne(def *model.DynamicBlockDefinition, kinds *kind.Registry) (*Block, error) {
	m := def.Manifest
	var problems []string
	addProblem := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	policy, err := manifest.ParseErrorPolicy(m.ErrorPolicy)
	if err != nil {
		addProblem("%v", err)
	}
	category := m.Category
	if category == "" {
		category = Category
	}

	md := manifest.Definition{
		Type:             m.Type,
		Name:             m.Name,
		ShortDescription: m.Description,
		Category:         category,
		License:          m.License,
		Tags:             m.Tags,
		Batch:            m.Batch,
		ErrorPolicy:      policy,
	}

	declared := make(map[string]struct{}, len(m.Inputs))
	for _, in := range m.Inputs {
		pd, inputProblems := parameterDefinition(in)
		for _, p := range inputProblems {
			addProblem("input '%s': %s", in.Name, p)
		}
		declared[in.Name] = struct{}{}
		md.Parameters = append(md.Parameters, pd)
	}
	for _, out := range m.Outputs {
		md.Outputs = append(md.Outputs, manifest.OutputDefinition{
			Name:        out.Name,
			Description: out.Description,
			Kinds:       out.Kinds,
		})
	}

	b := &Block{def: md, body: make(map[string]expr.Node, len(m.Outputs))}
	for _, out := range m.Outputs {
		raw, ok := def.Body[out.Name]
		if !ok {
			addProblem("output '%s' has no expression in the body", out.Name)
			continue
		}
		node, err := compileExpression(raw)
		if err != nil {
			addProblem("output '%s': %v", out.Name, err)
			continue
		}
		for _, name := range expr.Parameters(node) {
			if _, ok := declared[name]; !ok {
				addProblem("output '%s' references undeclared input '%s'", out.Name, name)
			}
		}
		for _, fn := range expr.Functions(node) {
			if !expr.HasFunction(fn) {
				addProblem("output '%s' calls unknown operation '%s'", out.Name, fn)
			}
		}
		b.body[out.Name] = node
		b.outputs = append(b.outputs, out.Name)
	}
	for _, name := range ctyconv.SortedKeys(def.Body) {
		if !hasOutput(m.Outputs, name) {
			addProblem("body defines '%s' which is not a declared output", name)
		}
	}
	sort.Strings(b.outputs)

	// The manifest checks shared with static blocks run last so every
	// problem is reported together.
	if _, err := manifest.Extract(b, kinds); err != nil {
		var invalid *manifest.InvalidManifestError
		if !errors.As(err, &invalid) {
			return nil, err
		}
		problems = append(problems, invalid.Problems...)
	}

	if len(problems) > 0 {
		return nil, &InvalidDynamicBlockError{Type: m.Type, Source: def.FSInformation.String(), Problems: problems}
	}
	return b, nil
}

// parameterDefinition maps a declared input onto the static parameter
// shape. An input that leaves both accepts and kind unset takes selectors of
// any kind as well as literals.
func parameterDefinition(in *model.DynamicInput) (manifest.ParameterDefinition, []string) {
	var problems []string
	pd := manifest.ParameterDefinition{
		Name:        in.Name,
		Description: in.Description,
		Kinds:       in.Kinds,
		Optional:    in.Optional,
		Batch:       in.Batch,
	}

	accepts, err := manifest.ParseAccepts(in.Accepts)
	if err != nil {
		problems = append(problems, err.Error())
	}
	pd.Accepts = accepts
	if in.Accepts == "" && len(in.Kinds) == 0 {
		pd.Kinds = []string{kind.Wildcard}
	}

	container, err := manifest.ParseContainer(in.Container)
	if err != nil {
		problems = append(problems, err.Error())
	}
	pd.Container = container

	ty, err := ctyconv.ParseType(in.ValueType)
	if err != nil {
		problems = append(problems, err.Error())
		ty = cty.DynamicPseudoType
	}
	pd.Type = ty

	if in.HasDefault {
		pd.Default = in.Default
		pd.Optional = true
	}
	return pd, problems
}

// compileExpression accepts an expression tree, the object form of one, or
// an HCL expression string. Other scalars become literals.
func compileExpression(raw any) (expr.Node, error) {
	switch v := raw.(type) {
	case expr.Node:
		return v, nil
	case string:
		return hcl_adapter.ParseExpression(v)
	case map[string]any:
		return expr.Decode(v)
	case nil, bool, int, int64, float64:
		return &expr.Literal{Value: v}, nil
	}
	return nil, fmt.Errorf("unsupported expression of type %T", raw)
}

func hasOutput(outs []*model.DynamicOutput, name string) bool {
	for _, o := range outs {
		if o.Name == name {
			return true
		}
	}
	return false
}
