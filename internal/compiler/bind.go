// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package compiler

import (
	"fmt"

	"github.com/specialistvlad/blockflow/internal/ctyconv"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/model"
	"github.com/specialistvlad/blockflow/internal/selector"
)

// bindStep binds every parameter of a step and adds the dependency edges its
// selectors induce.
func (c *compilation) bindStep(st *Step, decl *model.Step) error {
	for _, name := range ctyconv.SortedKeys(decl.Params) {
		if _, ok := st.Manifest.Parameter(name); !ok {
			return &InvalidStepParameterError{Step: st.Name, Parameter: name, Reason: fmt.Sprintf("block '%s' has no such parameter", st.Manifest.Type)}
		}
	}

	for _, p := range st.Manifest.Parameters {
		raw := decl.Params[p.Name]
		if raw == nil {
			if !p.Optional {
				return &InvalidStepParameterError{Step: st.Name, Parameter: p.Name, Reason: "required parameter is missing"}
			}
			if p.Default != nil {
				st.Bindings[p.Name] = &Binding{Parameter: p, Value: p.Default}
			}
			continue
		}

		b := &Binding{Parameter: p}
		value, err := c.walk(st, b, raw, true)
		if err != nil {
			return err
		}
		b.Value = value

		if len(b.Selectors) == 0 {
			if !p.Accepts.AllowsLiteral() {
				return &InvalidStepParameterError{Step: st.Name, Parameter: p.Name, Reason: "expects a selector, got a literal value"}
			}
			conformed, err := ctyconv.Conform(value, p.Type)
			if err != nil {
				return &InvalidStepParameterError{
					Step:      st.Name,
					Parameter: p.Name,
					Reason:    fmt.Sprintf("value does not match type %s: %v", ctyconv.TypeString(p.Type), err),
				}
			}
			b.Value = conformed
		}
		st.Bindings[p.Name] = b
	}
	return nil
}

// walk copies a parameter value, replacing selector strings with parsed and
// resolved selectors. A selector may appear at the top level, or one level
// down when the parameter is a list or dict container.
func (c *compilation) walk(st *Step, b *Binding, v any, top bool) (any, error) {
	p := b.Parameter
	switch t := v.(type) {
	case string:
		if !selector.Is(t) {
			return t, nil
		}
		if !p.Accepts.AllowsSelector() {
			return nil, &InvalidStepParameterError{Step: st.Name, Parameter: p.Name, Reason: fmt.Sprintf("does not accept selectors, got '%s'", t)}
		}
		sel, err := selector.Parse(t)
		if err != nil {
			return nil, &InvalidStepParameterError{Step: st.Name, Parameter: p.Name, Reason: err.Error()}
		}
		if err := c.resolve(st, p, sel); err != nil {
			return nil, err
		}
		b.Selectors = append(b.Selectors, sel)
		return sel, nil

	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			if err := c.checkNesting(st, p, item, top && p.Container == manifest.ContainerList); err != nil {
				return nil, err
			}
			v, err := c.walk(st, b, item, false)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range ctyconv.SortedKeys(t) {
			if err := c.checkNesting(st, p, t[k], top && p.Container == manifest.ContainerDict); err != nil {
				return nil, err
			}
			v, err := c.walk(st, b, t[k], false)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return v, nil
}

// checkNesting rejects a nested selector where the container does not allow
// one.
func (c *compilation) checkNesting(st *Step, p *manifest.Parameter, item any, allowed bool) error {
	if allowed || !selector.Is(item) {
		return nil
	}
	return &InvalidStepParameterError{
		Step:      st.Name,
		Parameter: p.Name,
		Reason:    fmt.Sprintf("selector '%v' is nested inside a value but the parameter container is %s", item, p.Container),
	}
}

// resolve checks that sel points at something that exists, that its kinds
// fit the parameter, and adds the dependency edge.
func (c *compilation) resolve(st *Step, p *manifest.Parameter, sel *selector.Selector) error {
	if reason := c.missing(sel); reason != "" {
		return &UnresolvedSelectorError{
			Step:      st.Name,
			Parameter: p.Name,
			Selector:  sel.String(),
			Target:    sel.Name,
			Field:     sel.Field,
			Reason:    reason,
		}
	}

	if sel.Scope == selector.Steps {
		if sel.Name == st.Name {
			return &CyclicGraphError{Steps: []string{st.Name, st.Name}}
		}
		if c.opts.declarationOrder && c.g.steps[sel.Name].Index > st.Index {
			return &ForwardReferenceError{Step: st.Name, Parameter: p.Name, Target: sel.Name}
		}
	}

	produced := c.producedKinds(sel)
	if !c.kinds.IsCompatible(produced, p.Kinds) {
		return &IncompatibleKindError{
			Step:      st.Name,
			Parameter: p.Name,
			Selector:  sel.String(),
			Produced:  produced,
			Accepted:  p.Kinds,
		}
	}

	return c.g.dag.AddEdge(sel.NodeID(), selector.StepNodeID(st.Name))
}
