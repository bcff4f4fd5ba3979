// This file contains the logic for translating HCL schema structs (decoded
// by gohcl) into the format-agnostic model.

package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/specialistvlad/blockflow/internal/ctxlog"
	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/specialistvlad/blockflow/internal/model"
)

// translateInput converts an HCL input block into the agnostic model.
func (l *Loader) translateInput(in *inputBlock) (*model.Input, error) {
	out := &model.Input{
		Type:  model.InputType(in.Type),
		Name:  in.Name,
		Kinds: in.Kinds,
	}
	if !out.Type.Known() {
		return nil, fmt.Errorf("input '%s': unknown input type %q", in.Name, in.Type)
	}
	def, ok, err := attrValue(in.Default)
	if err != nil {
		return nil, fmt.Errorf("input '%s': invalid default: %w", in.Name, err)
	}
	out.Default, out.HasDefault = def, ok
	return out, nil
}

// translateStep converts an HCL step block into the agnostic model.
func (l *Loader) translateStep(ctx context.Context, s *stepBlock, src *model.FSInfo) (*model.Step, error) {
	logger := ctxlog.FromContext(ctx).With("step_type", s.Type, "step_name", s.Name)
	logger.Debug("Translating HCL step to internal model.")

	attrs, diags := s.Params.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("step '%s': %w", s.Name, diags)
	}
	st := &model.Step{
		Type:          s.Type,
		Name:          s.Name,
		Params:        make(map[string]any, len(attrs)),
		FSInformation: src,
	}
	for name, attr := range attrs {
		v, err := staticValue(attr.Expr)
		if err != nil {
			return nil, fmt.Errorf("step '%s', parameter '%s': %w", s.Name, name, err)
		}
		st.Params[name] = v
	}
	return st, nil
}

// translateOutput converts an HCL output block into the agnostic model. The
// selector may be written as a reference or as a selector string.
func (l *Loader) translateOutput(o *outputBlock) (*model.Output, error) {
	v, err := staticValue(o.Selector)
	if err != nil {
		return nil, fmt.Errorf("output '%s': %w", o.Name, err)
	}
	sel, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("output '%s': selector must reference a step output or an input", o.Name)
	}
	out := &model.Output{
		Type:              o.Type,
		Name:              o.Name,
		Selector:          sel,
		CoordinatesSystem: o.CoordinatesSystem,
	}
	if out.Type == "" {
		out.Type = "JsonField"
	}
	if out.CoordinatesSystem == "" {
		out.CoordinatesSystem = "own"
	}
	return out, nil
}

// translateBlockDefinition converts an HCL block definition into a dynamic
// block definition. Output expressions are translated into expression trees
// here; the dynamic compiler validates them.
func (l *Loader) translateBlockDefinition(ctx context.Context, b *blockDefinition, src *model.FSInfo) (*model.DynamicBlockDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("block_type", b.Type)
	logger.Debug("Translating HCL block definition to internal model.")

	def := &model.DynamicBlockDefinition{
		Manifest: model.DynamicManifest{
			Type:        b.Type,
			Name:        b.Name,
			Description: b.Description,
			Category:    b.Category,
			License:     b.License,
			Tags:        b.Tags,
			Batch:       b.Batch,
			ErrorPolicy: b.ErrorPolicy,
		},
		Body:          make(map[string]any),
		FSInformation: src,
	}

	for _, k := range b.Kinds {
		def.Manifest.Kinds = append(def.Manifest.Kinds, &model.DynamicKind{Name: k.Name, Description: k.Description})
	}

	for _, in := range b.Inputs {
		di := &model.DynamicInput{
			Name:        in.Name,
			Description: in.Description,
			Accepts:     in.Accepts,
			Kinds:       in.Kinds,
			Container:   in.Container,
			Optional:    in.Optional,
			Batch:       in.Batch,
		}
		if in.Type != nil {
			ty, diags := typeexpr.TypeConstraint(in.Type.Expr)
			if diags.HasErrors() {
				return nil, fmt.Errorf("in block '%s', input '%s': %w", b.Type, in.Name, diags)
			}
			di.ValueType = ctyconv.TypeString(ty)
		}
		dv, ok, err := attrValue(in.Default)
		if err != nil {
			return nil, fmt.Errorf("in block '%s', input '%s': invalid default: %w", b.Type, in.Name, err)
		}
		di.Default, di.HasDefault = dv, ok
		def.Manifest.Inputs = append(def.Manifest.Inputs, di)
	}

	for _, out := range b.Outputs {
		def.Manifest.Outputs = append(def.Manifest.Outputs, &model.DynamicOutput{
			Name:        out.Name,
			Description: out.Description,
			Kinds:       out.Kinds,
		})
	}

	if b.Body != nil {
		names := make([]string, 0, len(b.Body.Expressions))
		for name := range b.Body.Expressions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			node, err := TranslateExpression(b.Body.Expressions[name].Expr)
			if err != nil {
				return nil, fmt.Errorf("in block '%s', output '%s': %w", b.Type, name, err)
			}
			def.Body[name] = node
		}
	}
	return def, nil
}

// versionString reads the optional top-level version attribute.
func versionString(attr *hcl.Attribute) (string, error) {
	v, ok, err := attrValue(attr)
	if err != nil || !ok {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return fmt.Sprintf("%g", t), nil
	}
	return "", fmt.Errorf("version must be a string")
}
